package controller

import (
	"context"
	"errors"
	"fmt"

	"github.com/gurisdeprograma/ProjetoJPA/internal/portal/api"
	e "github.com/gurisdeprograma/ProjetoJPA/internal/portal/errors"
	"github.com/gurisdeprograma/ProjetoJPA/internal/portal/models"
	"github.com/gurisdeprograma/ProjetoJPA/internal/portal/session"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// VacanciesBackend is the slice of the api client the directory needs.
type VacanciesBackend interface {
	OpenVacancies(ctx context.Context) ([]models.Vacancy, error)
	AllVacancies(ctx context.Context) ([]models.Vacancy, error)
	VacanciesByCompany(ctx context.Context, companyID int64) ([]models.Vacancy, error)
	Vacancy(ctx context.Context, id int64) (*models.Vacancy, error)
	CreateVacancy(ctx context.Context, req api.VacancyRequest) (*models.Vacancy, error)
	UpdateVacancy(ctx context.Context, id int64, req api.VacancyRequest) (*models.Vacancy, error)
	DeleteVacancy(ctx context.Context, id int64) error
	CloseVacancy(ctx context.Context, id int64) error
	VacancyStats(ctx context.Context, vacancyID int64) (*models.VacancyStats, error)
	ApplicationsByStudent(ctx context.Context, studentID int64) ([]models.Application, error)
}

// VacancyDraft is the user-entered form for creating or editing a vacancy.
type VacancyDraft struct {
	Title        string
	Description  string
	Location     string
	Modality     models.Modality
	WeeklyHours  int
	Requirements string
	AreaID       int64
}

// validate applies the form rules before anything goes over the wire.
func (d VacancyDraft) validate() error {
	if d.Title == "" {
		return fmt.Errorf("%w: title is required", e.ErrInvalidInput)
	}
	if d.Description == "" {
		return fmt.Errorf("%w: description is required", e.ErrInvalidInput)
	}
	if d.WeeklyHours < 0 || d.WeeklyHours > models.MaxWeeklyHours {
		return fmt.Errorf("%w: weekly hours must be between 0 and %d", e.ErrInvalidInput, models.MaxWeeklyHours)
	}
	switch d.Modality {
	case models.OnSite, models.Remote, models.Hybrid, models.ModalityUnset:
	default:
		return fmt.Errorf("%w: unknown modality %q", e.ErrInvalidInput, d.Modality)
	}
	return nil
}

// VacancyService provides the per-role views over vacancies: the public
// open listing, the owner-scoped full listing, and the admin listing, plus
// the create/update/close/delete transitions.
type VacancyService struct {
	backend VacanciesBackend
	guard   *session.Guard
	logger  *zap.Logger
}

// NewVacancyService constructs a VacancyService.
func NewVacancyService(backend VacanciesBackend, guard *session.Guard, logger *zap.Logger) *VacancyService {
	return &VacancyService{
		backend: backend,
		guard:   guard,
		logger:  logger.Named("vacancy_service"),
	}
}

// Browse lists open vacancies for any authenticated actor.
func (s *VacancyService) Browse(ctx context.Context) ([]models.Vacancy, error) {
	if _, err := require(s.guard); err != nil {
		return nil, err
	}
	vacancies, err := s.backend.OpenVacancies(ctx)
	if err != nil {
		return nil, fmt.Errorf("list open vacancies: %w", err)
	}
	return vacancies, nil
}

// Mine lists the session company's own vacancies, open and closed.
func (s *VacancyService) Mine(ctx context.Context) ([]models.Vacancy, error) {
	st, err := require(s.guard, models.RoleCompany)
	if err != nil {
		return nil, err
	}
	vacancies, err := s.backend.VacanciesByCompany(ctx, st.Identity.ID)
	if err != nil {
		return nil, fmt.Errorf("list own vacancies: %w", err)
	}
	return vacancies, nil
}

// All lists every vacancy regardless of owner or state. Admin view.
func (s *VacancyService) All(ctx context.Context) ([]models.Vacancy, error) {
	if _, err := require(s.guard, models.RoleAdmin); err != nil {
		return nil, err
	}
	vacancies, err := s.backend.AllVacancies(ctx)
	if err != nil {
		return nil, fmt.Errorf("list all vacancies: %w", err)
	}
	return vacancies, nil
}

// VacancyDetail is the detail view: the vacancy, its rating aggregate, and
// whether the viewing student already applied.
type VacancyDetail struct {
	Vacancy models.Vacancy
	// Stats is nil when the aggregate could not be loaded; the view
	// degrades instead of failing.
	Stats   *models.VacancyStats
	Applied bool
}

// Detail loads the vacancy page data. The vacancy itself is required; the
// rating aggregate and the viewer's applied flag are independent resources
// fetched concurrently and degraded on failure.
func (s *VacancyService) Detail(ctx context.Context, id int64) (*VacancyDetail, error) {
	st, err := require(s.guard)
	if err != nil {
		return nil, err
	}

	detail := &VacancyDetail{}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		v, err := s.backend.Vacancy(gctx, id)
		if err != nil {
			return fmt.Errorf("get vacancy %d: %w", id, err)
		}
		detail.Vacancy = *v
		return nil
	})
	g.Go(func() error {
		stats, err := s.backend.VacancyStats(gctx, id)
		if err != nil {
			s.logger.Warn("stats fetch failed, degrading",
				zap.Int64("vacancy_id", id),
				zap.Error(err),
			)
			return nil
		}
		detail.Stats = stats
		return nil
	})
	if st.Identity.Role == models.RoleStudent {
		g.Go(func() error {
			apps, err := s.backend.ApplicationsByStudent(gctx, st.Identity.ID)
			if err != nil {
				s.logger.Warn("applied check failed, degrading",
					zap.Int64("vacancy_id", id),
					zap.Error(err),
				)
				return nil
			}
			for _, a := range apps {
				if a.Vacancy.ID == id {
					detail.Applied = true
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return detail, nil
}

// Create posts a new open vacancy owned by the session company.
func (s *VacancyService) Create(ctx context.Context, draft VacancyDraft) (*models.Vacancy, error) {
	st, err := require(s.guard, models.RoleCompany)
	if err != nil {
		return nil, err
	}
	if err := draft.validate(); err != nil {
		return nil, err
	}
	v, err := s.backend.CreateVacancy(ctx, draft.request(st.Identity.ID, true))
	if err != nil {
		return nil, fmt.Errorf("create vacancy: %w", err)
	}
	s.logger.Info("vacancy created", zap.Int64("vacancy_id", v.ID))
	return v, nil
}

// Update edits an existing vacancy. A company may only edit its own;
// ownership is checked against the fetched record before the PUT.
func (s *VacancyService) Update(ctx context.Context, id int64, draft VacancyDraft) (*models.Vacancy, error) {
	st, err := require(s.guard, models.RoleCompany, models.RoleAdmin)
	if err != nil {
		return nil, err
	}
	if err := draft.validate(); err != nil {
		return nil, err
	}
	current, err := s.owned(ctx, st, id)
	if err != nil {
		return nil, err
	}
	updated, err := s.backend.UpdateVacancy(ctx, id, draft.request(current.Company.ID, current.Open))
	if err != nil {
		return nil, fmt.Errorf("update vacancy %d: %w", id, err)
	}
	return updated, nil
}

// Close drives the vacancy from open to closed. Closing an already closed
// vacancy is a local no-op; there is no operation that reopens one.
func (s *VacancyService) Close(ctx context.Context, id int64) error {
	st, err := require(s.guard, models.RoleCompany, models.RoleAdmin)
	if err != nil {
		return err
	}
	current, err := s.owned(ctx, st, id)
	if err != nil {
		return err
	}
	if !current.Open {
		return nil
	}
	if err := s.backend.CloseVacancy(ctx, id); err != nil {
		return fmt.Errorf("close vacancy %d: %w", id, err)
	}
	s.logger.Info("vacancy closed", zap.Int64("vacancy_id", id))
	return nil
}

// Delete removes a vacancy permanently. Owner or admin only.
func (s *VacancyService) Delete(ctx context.Context, id int64) error {
	st, err := require(s.guard, models.RoleCompany, models.RoleAdmin)
	if err != nil {
		return err
	}
	if _, err := s.owned(ctx, st, id); err != nil {
		return err
	}
	if err := s.backend.DeleteVacancy(ctx, id); err != nil {
		return fmt.Errorf("delete vacancy %d: %w", id, err)
	}
	s.logger.Info("vacancy deleted", zap.Int64("vacancy_id", id))
	return nil
}

// owned fetches the vacancy and enforces that a company actor owns it.
// Admins pass the ownership check unconditionally.
func (s *VacancyService) owned(ctx context.Context, st *session.State, id int64) (*models.Vacancy, error) {
	v, err := s.backend.Vacancy(ctx, id)
	if err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("get vacancy %d: %w", id, err)
	}
	if st.Identity.Role == models.RoleCompany && v.Company.ID != st.Identity.ID {
		return nil, e.ErrForbiddenRole
	}
	return v, nil
}

func (d VacancyDraft) request(companyID int64, open bool) api.VacancyRequest {
	return api.VacancyRequest{
		Title:        d.Title,
		Description:  d.Description,
		Location:     d.Location,
		Modality:     d.Modality,
		WeeklyHours:  d.WeeklyHours,
		Requirements: d.Requirements,
		AreaID:       d.AreaID,
		Company:      models.CompanyRef{ID: companyID},
		Open:         open,
	}
}
