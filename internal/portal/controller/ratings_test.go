package controller

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"

	e "github.com/gurisdeprograma/ProjetoJPA/internal/portal/errors"
	"github.com/gurisdeprograma/ProjetoJPA/internal/portal/models"
	"go.uber.org/zap/zaptest"
)

type mockRatingsBackend struct {
	calls int32

	createRating     func(ctx context.Context, studentID, vacancyID int64, score int, comment string) (*models.Rating, error)
	vacancyStats     func(ctx context.Context, vacancyID int64) (*models.VacancyStats, error)
	ratingsByStudent func(ctx context.Context, studentID int64) ([]models.Rating, error)
}

func (m *mockRatingsBackend) CreateRating(ctx context.Context, studentID, vacancyID int64, score int, comment string) (*models.Rating, error) {
	atomic.AddInt32(&m.calls, 1)
	return m.createRating(ctx, studentID, vacancyID, score, comment)
}

func (m *mockRatingsBackend) VacancyStats(ctx context.Context, vacancyID int64) (*models.VacancyStats, error) {
	atomic.AddInt32(&m.calls, 1)
	return m.vacancyStats(ctx, vacancyID)
}

func (m *mockRatingsBackend) RatingsByStudent(ctx context.Context, studentID int64) ([]models.Rating, error) {
	atomic.AddInt32(&m.calls, 1)
	return m.ratingsByStudent(ctx, studentID)
}

func newRatingService(t *testing.T, backend *mockRatingsBackend, id int64, role models.Role) *RatingService {
	t.Helper()
	guard, _ := testSession(t, id, role)
	return NewRatingService(backend, guard, zaptest.NewLogger(t))
}

func ratingsOf(scores ...int) []models.Rating {
	out := make([]models.Rating, len(scores))
	for i, s := range scores {
		out[i] = models.Rating{ID: int64(i + 1), Score: s}
	}
	return out
}

func TestMyRatingsMeanAndStars(t *testing.T) {
	tests := []struct {
		name        string
		scores      []int
		wantDisplay string
		wantStars   int
	}{
		{"5 4 5 rounds up", []int{5, 4, 5}, "4.7", 5},
		{"half rounds away from zero", []int{4, 5}, "4.5", 5},
		{"low mean rounds down", []int{1, 2}, "1.5", 2},
		{"single rating", []int{3}, "3.0", 3},
		{"no ratings gives zero", nil, "0.0", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := &mockRatingsBackend{
				ratingsByStudent: func(_ context.Context, _ int64) ([]models.Rating, error) {
					return ratingsOf(tt.scores...), nil
				},
			}
			svc := newRatingService(t, backend, 12, models.RoleStudent)

			mine, err := svc.MyRatings(context.Background())
			if err != nil {
				t.Fatalf("MyRatings: %v", err)
			}
			if got := mine.DisplayMean(); got != tt.wantDisplay {
				t.Errorf("DisplayMean() = %s, want %s", got, tt.wantDisplay)
			}
			if got := mine.Stars(); got != tt.wantStars {
				t.Errorf("Stars() = %d, want %d", got, tt.wantStars)
			}
		})
	}
}

func TestVacancyStatsMeanIsNotRecomputed(t *testing.T) {
	// the backend mean deliberately disagrees with the list: the client
	// must pass it through untouched
	backend := &mockRatingsBackend{
		vacancyStats: func(_ context.Context, _ int64) (*models.VacancyStats, error) {
			return &models.VacancyStats{
				Ratings:   ratingsOf(5, 5),
				MeanScore: 4.2,
			}, nil
		},
	}
	svc := newRatingService(t, backend, 12, models.RoleStudent)

	stats, err := svc.VacancyStats(context.Background(), 10)
	if err != nil {
		t.Fatalf("VacancyStats: %v", err)
	}
	if stats.MeanScore != 4.2 {
		t.Errorf("mean = %v, want the backend's 4.2 verbatim", stats.MeanScore)
	}
}

func TestRateValidatesScoreAndComment(t *testing.T) {
	tests := []struct {
		name    string
		score   int
		comment string
	}{
		{"score too low", 0, ""},
		{"score too high", 6, ""},
		{"comment too long", 4, strings.Repeat("a", 501)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := &mockRatingsBackend{}
			svc := newRatingService(t, backend, 12, models.RoleStudent)
			_, err := svc.Rate(context.Background(), 10, tt.score, tt.comment)
			if !errors.Is(err, e.ErrInvalidInput) {
				t.Fatalf("err = %v, want ErrInvalidInput", err)
			}
			if backend.calls != 0 {
				t.Error("invalid rating must not reach the backend")
			}
		})
	}
}

func TestRateRefusesDuplicate(t *testing.T) {
	var created int32
	vacancy := models.Vacancy{ID: 10}
	backend := &mockRatingsBackend{
		ratingsByStudent: func(_ context.Context, _ int64) ([]models.Rating, error) {
			return []models.Rating{{ID: 1, Score: 5, Vacancy: &vacancy}}, nil
		},
		createRating: func(_ context.Context, _, _ int64, _ int, _ string) (*models.Rating, error) {
			atomic.AddInt32(&created, 1)
			return nil, nil
		},
	}
	svc := newRatingService(t, backend, 12, models.RoleStudent)

	_, err := svc.Rate(context.Background(), 10, 4, "ok")
	if !errors.Is(err, e.ErrAlreadyRated) {
		t.Fatalf("err = %v, want ErrAlreadyRated", err)
	}
	if created != 0 {
		t.Error("no POST may be issued for a duplicate rating")
	}
}

func TestRateSubmitsOnFirstRating(t *testing.T) {
	backend := &mockRatingsBackend{
		ratingsByStudent: func(_ context.Context, _ int64) ([]models.Rating, error) {
			return nil, nil
		},
		createRating: func(_ context.Context, studentID, vacancyID int64, score int, comment string) (*models.Rating, error) {
			if studentID != 12 || vacancyID != 10 || score != 4 {
				t.Errorf("unexpected payload: student=%d vacancy=%d score=%d", studentID, vacancyID, score)
			}
			return &models.Rating{ID: 33, Score: score, Comment: comment}, nil
		},
	}
	svc := newRatingService(t, backend, 12, models.RoleStudent)

	r, err := svc.Rate(context.Background(), 10, 4, "boa experiência")
	if err != nil {
		t.Fatalf("Rate: %v", err)
	}
	if r.ID != 33 {
		t.Errorf("id = %d, want 33", r.ID)
	}
}

func TestRateRejectsCompanyRole(t *testing.T) {
	backend := &mockRatingsBackend{}
	svc := newRatingService(t, backend, 9, models.RoleCompany)

	_, err := svc.Rate(context.Background(), 10, 5, "")
	if !errors.Is(err, e.ErrForbiddenRole) {
		t.Fatalf("err = %v, want ErrForbiddenRole", err)
	}
	if backend.calls != 0 {
		t.Error("wrong-role rating must not reach the backend")
	}
}
