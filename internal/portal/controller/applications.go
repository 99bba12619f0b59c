package controller

import (
	"context"
	"fmt"
	"sync"

	e "github.com/gurisdeprograma/ProjetoJPA/internal/portal/errors"
	"github.com/gurisdeprograma/ProjetoJPA/internal/portal/models"
	"github.com/gurisdeprograma/ProjetoJPA/internal/portal/session"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ApplicationsBackend is the slice of the api client the application
// lifecycle needs.
type ApplicationsBackend interface {
	CreateApplication(ctx context.Context, studentID, vacancyID int64) (*models.Application, error)
	UpdateApplicationStatus(ctx context.Context, id int64, status models.ApplicationStatus) error
	ApplicationsByVacancy(ctx context.Context, vacancyID int64) ([]models.Application, error)
	ApplicationsByStudent(ctx context.Context, studentID int64) ([]models.Application, error)
	VacanciesByCompany(ctx context.Context, companyID int64) ([]models.Vacancy, error)
}

// ApplicationService tracks a student's candidatures through their status
// states and the company's transitions between them. Fetched lists are kept
// as local view state; a confirmed status change is reconciled into every
// cached copy of the application.
type ApplicationService struct {
	backend ApplicationsBackend
	guard   *session.Guard
	logger  *zap.Logger

	mu        sync.Mutex
	byVacancy map[int64][]models.Application
	mine      []models.Application
	applied   map[int64]bool
}

// NewApplicationService constructs an ApplicationService.
func NewApplicationService(backend ApplicationsBackend, guard *session.Guard, logger *zap.Logger) *ApplicationService {
	return &ApplicationService{
		backend:   backend,
		guard:     guard,
		logger:    logger.Named("application_service"),
		byVacancy: make(map[int64][]models.Application),
		applied:   make(map[int64]bool),
	}
}

// MyApplications lists the session student's candidatures.
func (s *ApplicationService) MyApplications(ctx context.Context) ([]models.Application, error) {
	st, err := require(s.guard, models.RoleStudent)
	if err != nil {
		return nil, err
	}
	apps, err := s.backend.ApplicationsByStudent(ctx, st.Identity.ID)
	if err != nil {
		return nil, fmt.Errorf("list my applications: %w", err)
	}
	s.mu.Lock()
	s.mine = apps
	for _, a := range apps {
		s.applied[a.Vacancy.ID] = true
	}
	s.mu.Unlock()
	return apps, nil
}

// HasApplied reports whether the session student already holds an
// application for the vacancy. The student's list is fetched on first use.
func (s *ApplicationService) HasApplied(ctx context.Context, vacancyID int64) (bool, error) {
	s.mu.Lock()
	known := s.applied[vacancyID]
	fetched := s.mine != nil
	s.mu.Unlock()
	if known {
		return true, nil
	}
	if fetched {
		return false, nil
	}
	if _, err := s.MyApplications(ctx); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.applied[vacancyID], nil
}

// Apply submits a candidature for the vacancy on behalf of the session
// student. At most one application per (student, vacancy) pair is created:
// a known prior application short-circuits with ErrAlreadyApplied before
// any POST. The applied flag flips only after the server confirms.
func (s *ApplicationService) Apply(ctx context.Context, vacancyID int64) (*models.Application, error) {
	st, err := require(s.guard, models.RoleStudent)
	if err != nil {
		return nil, err
	}
	already, err := s.HasApplied(ctx, vacancyID)
	if err != nil {
		return nil, err
	}
	if already {
		return nil, e.ErrAlreadyApplied
	}

	app, err := s.backend.CreateApplication(ctx, st.Identity.ID, vacancyID)
	if err != nil {
		return nil, fmt.Errorf("create application: %w", err)
	}
	s.mu.Lock()
	s.applied[vacancyID] = true
	if s.mine != nil {
		s.mine = append(s.mine, *app)
	}
	s.mu.Unlock()
	s.logger.Info("application submitted",
		zap.Int64("vacancy_id", vacancyID),
		zap.Int64("application_id", app.ID),
	)
	return app, nil
}

// ByVacancy lists every candidature for one vacancy, for the owning
// company's review view.
func (s *ApplicationService) ByVacancy(ctx context.Context, vacancyID int64) ([]models.Application, error) {
	if _, err := require(s.guard, models.RoleCompany, models.RoleAdmin); err != nil {
		return nil, err
	}
	apps, err := s.backend.ApplicationsByVacancy(ctx, vacancyID)
	if err != nil {
		return nil, fmt.Errorf("list applications for vacancy %d: %w", vacancyID, err)
	}
	s.mu.Lock()
	s.byVacancy[vacancyID] = apps
	s.mu.Unlock()
	return apps, nil
}

// VacancyApplications pairs one vacancy with its candidatures.
type VacancyApplications struct {
	Vacancy      models.Vacancy
	Applications []models.Application
}

// ReviewBoard builds the company's full review view: every owned vacancy
// with its application sublist, fetched concurrently. A failing sublist
// degrades to empty for that vacancy rather than failing the whole view.
func (s *ApplicationService) ReviewBoard(ctx context.Context) ([]VacancyApplications, error) {
	st, err := require(s.guard, models.RoleCompany)
	if err != nil {
		return nil, err
	}
	vacancies, err := s.backend.VacanciesByCompany(ctx, st.Identity.ID)
	if err != nil {
		return nil, fmt.Errorf("list own vacancies: %w", err)
	}

	board := make([]VacancyApplications, len(vacancies))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fanOutLimit)
	for i, v := range vacancies {
		i, v := i, v
		g.Go(func() error {
			apps, err := s.backend.ApplicationsByVacancy(gctx, v.ID)
			if err != nil {
				s.logger.Warn("sublist fetch failed, degrading to empty",
					zap.Int64("vacancy_id", v.ID),
					zap.Error(err),
				)
				apps = nil
			}
			board[i] = VacancyApplications{Vacancy: v, Applications: apps}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	for _, entry := range board {
		s.byVacancy[entry.Vacancy.ID] = entry.Applications
	}
	s.mu.Unlock()
	return board, nil
}

// SetStatus moves one application to a new status. The transition is
// validated against the state machine before any network call: only
// PENDENTE may move, same-state updates are local no-ops, and nothing
// leaves a terminal state. Cached views update only after the server
// confirms the change.
func (s *ApplicationService) SetStatus(ctx context.Context, applicationID int64, to models.ApplicationStatus) error {
	if _, err := require(s.guard, models.RoleCompany, models.RoleAdmin); err != nil {
		return err
	}
	if !to.Valid() {
		return fmt.Errorf("%w: unknown status %q", e.ErrInvalidInput, to)
	}

	current, ok := s.lookup(applicationID)
	if !ok {
		return fmt.Errorf("application %d not loaded: %w", applicationID, e.ErrNotFound)
	}
	if current.Status == to {
		return nil
	}
	if !models.CanTransition(current.Status, to) {
		return fmt.Errorf("%w: %s -> %s", e.ErrInvalidTransition, current.Status, to)
	}

	if err := s.backend.UpdateApplicationStatus(ctx, applicationID, to); err != nil {
		return fmt.Errorf("update application %d: %w", applicationID, err)
	}
	s.reconcile(applicationID, to)
	s.logger.Info("application status changed",
		zap.Int64("application_id", applicationID),
		zap.String("status", string(to)),
	)
	return nil
}

// lookup finds the cached copy of an application in any loaded list.
func (s *ApplicationService) lookup(id int64) (models.Application, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, apps := range s.byVacancy {
		for _, a := range apps {
			if a.ID == id {
				return a, true
			}
		}
	}
	for _, a := range s.mine {
		if a.ID == id {
			return a, true
		}
	}
	return models.Application{}, false
}

// reconcile writes the confirmed status into every cached list that holds
// the application.
func (s *ApplicationService) reconcile(id int64, status models.ApplicationStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, apps := range s.byVacancy {
		for i := range apps {
			if apps[i].ID == id {
				apps[i].Status = status
			}
		}
	}
	for i := range s.mine {
		if s.mine[i].ID == id {
			s.mine[i].Status = status
		}
	}
}
