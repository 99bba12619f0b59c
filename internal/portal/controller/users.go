package controller

import (
	"context"
	"fmt"

	"github.com/gurisdeprograma/ProjetoJPA/internal/portal/api"
	"github.com/gurisdeprograma/ProjetoJPA/internal/portal/models"
	"github.com/gurisdeprograma/ProjetoJPA/internal/portal/session"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// UsersBackend is the slice of the api client the account views need.
type UsersBackend interface {
	Login(ctx context.Context, email, password string) (*api.LoginResult, error)
	RegisterStudent(ctx context.Context, reg api.StudentRegistration) (*models.StudentProfile, error)
	RegisterCompany(ctx context.Context, reg api.CompanyRegistration) (*models.CompanyProfile, error)
	Students(ctx context.Context) ([]models.User, error)
	Companies(ctx context.Context) ([]models.User, error)
	Admins(ctx context.Context) ([]models.User, error)
	StudentProfile(ctx context.Context, id int64) (*models.StudentProfile, error)
	UpdateStudentProfile(ctx context.Context, id int64, p models.StudentProfile) (*models.StudentProfile, error)
	CompanyProfile(ctx context.Context, id int64) (*models.CompanyProfile, error)
	UpdateCompanyProfile(ctx context.Context, id int64, p models.CompanyProfile) (*models.CompanyProfile, error)
	DeleteUser(ctx context.Context, id int64, role models.Role) error
	AdminDashboard(ctx context.Context) (*models.DashboardStats, error)
}

// UserService owns the session lifecycle (login creates it, logout destroys
// it), registration, profile editing, and the admin account views.
type UserService struct {
	backend UsersBackend
	store   session.Store
	guard   *session.Guard
	logger  *zap.Logger
}

// NewUserService constructs a UserService.
func NewUserService(backend UsersBackend, store session.Store, guard *session.Guard, logger *zap.Logger) *UserService {
	return &UserService{
		backend: backend,
		store:   store,
		guard:   guard,
		logger:  logger.Named("user_service"),
	}
}

// Login exchanges credentials for a session and persists it. This is the
// only operation that creates the identity/credential pair.
func (s *UserService) Login(ctx context.Context, email, password string) (*models.Identity, error) {
	result, err := s.backend.Login(ctx, email, password)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	st := &session.State{Identity: result.Identity, Token: result.Token}
	if err := s.store.Save(st); err != nil {
		return nil, fmt.Errorf("persist session: %w", err)
	}
	s.logger.Info("session created",
		zap.Int64("user_id", result.Identity.ID),
		zap.String("role", string(result.Identity.Role)),
	)
	return &result.Identity, nil
}

// Logout destroys the persisted session. The caller navigates to the
// public root.
func (s *UserService) Logout() error {
	s.logger.Info("session destroyed")
	return s.store.Clear()
}

// RegisterStudent creates a student account. The new account still logs in
// explicitly afterwards; registration does not mint a session.
func (s *UserService) RegisterStudent(ctx context.Context, reg api.StudentRegistration) (*models.StudentProfile, error) {
	p, err := s.backend.RegisterStudent(ctx, reg)
	if err != nil {
		return nil, fmt.Errorf("register student: %w", err)
	}
	return p, nil
}

// RegisterCompany creates a company account.
func (s *UserService) RegisterCompany(ctx context.Context, reg api.CompanyRegistration) (*models.CompanyProfile, error) {
	p, err := s.backend.RegisterCompany(ctx, reg)
	if err != nil {
		return nil, fmt.Errorf("register company: %w", err)
	}
	return p, nil
}

// MyStudentProfile loads the session student's editable record.
func (s *UserService) MyStudentProfile(ctx context.Context) (*models.StudentProfile, error) {
	st, err := require(s.guard, models.RoleStudent)
	if err != nil {
		return nil, err
	}
	p, err := s.backend.StudentProfile(ctx, st.Identity.ID)
	if err != nil {
		return nil, fmt.Errorf("load student profile: %w", err)
	}
	return p, nil
}

// UpdateMyStudentProfile saves the session student's record.
func (s *UserService) UpdateMyStudentProfile(ctx context.Context, p models.StudentProfile) (*models.StudentProfile, error) {
	st, err := require(s.guard, models.RoleStudent)
	if err != nil {
		return nil, err
	}
	p.ID = st.Identity.ID
	updated, err := s.backend.UpdateStudentProfile(ctx, st.Identity.ID, p)
	if err != nil {
		return nil, fmt.Errorf("update student profile: %w", err)
	}
	return updated, nil
}

// MyCompanyProfile loads the session company's editable record.
func (s *UserService) MyCompanyProfile(ctx context.Context) (*models.CompanyProfile, error) {
	st, err := require(s.guard, models.RoleCompany)
	if err != nil {
		return nil, err
	}
	p, err := s.backend.CompanyProfile(ctx, st.Identity.ID)
	if err != nil {
		return nil, fmt.Errorf("load company profile: %w", err)
	}
	return p, nil
}

// UpdateMyCompanyProfile saves the session company's record.
func (s *UserService) UpdateMyCompanyProfile(ctx context.Context, p models.CompanyProfile) (*models.CompanyProfile, error) {
	st, err := require(s.guard, models.RoleCompany)
	if err != nil {
		return nil, err
	}
	p.ID = st.Identity.ID
	updated, err := s.backend.UpdateCompanyProfile(ctx, st.Identity.ID, p)
	if err != nil {
		return nil, fmt.Errorf("update company profile: %w", err)
	}
	return updated, nil
}

// Directory is the admin user listing, merged from the three role-specific
// sources fetched concurrently. A failing source degrades to an empty list
// for that source; the view never fails as a whole.
func (s *UserService) Directory(ctx context.Context) ([]models.User, error) {
	if _, err := require(s.guard, models.RoleAdmin); err != nil {
		return nil, err
	}

	sources := []struct {
		role  models.Role
		fetch func(context.Context) ([]models.User, error)
	}{
		{models.RoleStudent, s.backend.Students},
		{models.RoleCompany, s.backend.Companies},
		{models.RoleAdmin, s.backend.Admins},
	}

	results := make([][]models.User, len(sources))
	g, gctx := errgroup.WithContext(ctx)
	for i, src := range sources {
		i, src := i, src
		g.Go(func() error {
			users, err := src.fetch(gctx)
			if err != nil {
				s.logger.Warn("user source failed, degrading to empty",
					zap.String("role", string(src.role)),
					zap.Error(err),
				)
				return nil
			}
			for j := range users {
				users[j].Role = src.role
			}
			results[i] = users
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var combined []models.User
	for _, users := range results {
		combined = append(combined, users...)
	}
	return combined, nil
}

// DeleteUser removes an account of the given role. Admin view.
func (s *UserService) DeleteUser(ctx context.Context, id int64, role models.Role) error {
	if _, err := require(s.guard, models.RoleAdmin); err != nil {
		return err
	}
	if err := s.backend.DeleteUser(ctx, id, role); err != nil {
		return fmt.Errorf("delete user %d: %w", id, err)
	}
	s.logger.Info("user deleted",
		zap.Int64("user_id", id),
		zap.String("role", string(role)),
	)
	return nil
}

// DashboardStats fetches the admin aggregate counters. The payload is
// consumed verbatim; no counter is derived client-side.
func (s *UserService) DashboardStats(ctx context.Context) (*models.DashboardStats, error) {
	if _, err := require(s.guard, models.RoleAdmin); err != nil {
		return nil, err
	}
	stats, err := s.backend.AdminDashboard(ctx)
	if err != nil {
		return nil, fmt.Errorf("load dashboard stats: %w", err)
	}
	return stats, nil
}
