package controller

import (
	"context"
	"fmt"
	"math"

	e "github.com/gurisdeprograma/ProjetoJPA/internal/portal/errors"
	"github.com/gurisdeprograma/ProjetoJPA/internal/portal/models"
	"github.com/gurisdeprograma/ProjetoJPA/internal/portal/session"
	"go.uber.org/zap"
)

// RatingsBackend is the slice of the api client the rating views need.
type RatingsBackend interface {
	CreateRating(ctx context.Context, studentID, vacancyID int64, score int, comment string) (*models.Rating, error)
	VacancyStats(ctx context.Context, vacancyID int64) (*models.VacancyStats, error)
	RatingsByStudent(ctx context.Context, studentID int64) ([]models.Rating, error)
}

// RatingService handles the write path for a student's ratings and the two
// aggregate read views: a vacancy's backend-computed stats and the
// student's own rating history.
type RatingService struct {
	backend RatingsBackend
	guard   *session.Guard
	logger  *zap.Logger
}

// NewRatingService constructs a RatingService.
func NewRatingService(backend RatingsBackend, guard *session.Guard, logger *zap.Logger) *RatingService {
	return &RatingService{
		backend: backend,
		guard:   guard,
		logger:  logger.Named("rating_service"),
	}
}

// Rate submits a score and optional comment for one vacancy on behalf of
// the session student. A second rating for the same vacancy is refused
// before any POST.
func (s *RatingService) Rate(ctx context.Context, vacancyID int64, score int, comment string) (*models.Rating, error) {
	st, err := require(s.guard, models.RoleStudent)
	if err != nil {
		return nil, err
	}
	if score < models.MinScore || score > models.MaxScore {
		return nil, fmt.Errorf("%w: score must be between %d and %d", e.ErrInvalidInput, models.MinScore, models.MaxScore)
	}
	if len([]rune(comment)) > models.MaxCommentLength {
		return nil, fmt.Errorf("%w: comment longer than %d characters", e.ErrInvalidInput, models.MaxCommentLength)
	}

	rated, err := s.HasRated(ctx, vacancyID)
	if err != nil {
		return nil, err
	}
	if rated {
		return nil, e.ErrAlreadyRated
	}

	rating, err := s.backend.CreateRating(ctx, st.Identity.ID, vacancyID, score, comment)
	if err != nil {
		return nil, fmt.Errorf("create rating: %w", err)
	}
	s.logger.Info("rating submitted",
		zap.Int64("vacancy_id", vacancyID),
		zap.Int("score", score),
	)
	return rating, nil
}

// HasRated reports whether the session student already rated the vacancy.
func (s *RatingService) HasRated(ctx context.Context, vacancyID int64) (bool, error) {
	st, err := require(s.guard, models.RoleStudent)
	if err != nil {
		return false, err
	}
	ratings, err := s.backend.RatingsByStudent(ctx, st.Identity.ID)
	if err != nil {
		return false, fmt.Errorf("list own ratings: %w", err)
	}
	for _, r := range ratings {
		if r.Vacancy != nil && r.Vacancy.ID == vacancyID {
			return true, nil
		}
	}
	return false, nil
}

// VacancyStats returns a vacancy's rating list and mean exactly as the
// backend computed them. The mean is never recomputed from the list here;
// the backend owns the rounding rules.
func (s *RatingService) VacancyStats(ctx context.Context, vacancyID int64) (*models.VacancyStats, error) {
	if _, err := require(s.guard); err != nil {
		return nil, err
	}
	stats, err := s.backend.VacancyStats(ctx, vacancyID)
	if err != nil {
		return nil, fmt.Errorf("vacancy %d stats: %w", vacancyID, err)
	}
	return stats, nil
}

// MyRatings is the student's rating history plus their own mean given
// score. This is the one aggregate the client computes itself: the
// backend only aggregates per vacancy, not per student.
type MyRatings struct {
	Ratings []models.Rating
	Mean    float64
}

// DisplayMean formats the mean with one decimal for display.
func (m MyRatings) DisplayMean() string {
	return fmt.Sprintf("%.1f", m.Mean)
}

// Stars is the iconographic star count: the mean rounded to the nearest
// integer, not floored or ceiled.
func (m MyRatings) Stars() int {
	return int(math.Round(m.Mean))
}

// MyRatings fetches the session student's rating history and computes the
// arithmetic mean of the scores given. An empty history yields a zero mean.
func (s *RatingService) MyRatings(ctx context.Context) (*MyRatings, error) {
	st, err := require(s.guard, models.RoleStudent)
	if err != nil {
		return nil, err
	}
	ratings, err := s.backend.RatingsByStudent(ctx, st.Identity.ID)
	if err != nil {
		return nil, fmt.Errorf("list own ratings: %w", err)
	}

	out := &MyRatings{Ratings: ratings}
	if len(ratings) > 0 {
		sum := 0
		for _, r := range ratings {
			sum += r.Score
		}
		out.Mean = float64(sum) / float64(len(ratings))
	}
	return out, nil
}
