package controller

import (
	"context"
	"fmt"

	"github.com/gurisdeprograma/ProjetoJPA/internal/portal/api"
	e "github.com/gurisdeprograma/ProjetoJPA/internal/portal/errors"
	"github.com/gurisdeprograma/ProjetoJPA/internal/portal/models"
	"github.com/gurisdeprograma/ProjetoJPA/internal/portal/session"
	"go.uber.org/zap"
)

// AreasBackend is the slice of the api client the taxonomy views need.
type AreasBackend interface {
	Areas(ctx context.Context) ([]models.InterestArea, error)
	CreateArea(ctx context.Context, req api.AreaRequest) (*models.InterestArea, error)
	UpdateArea(ctx context.Context, id int64, req api.AreaRequest) (*models.InterestArea, error)
	DeleteArea(ctx context.Context, id int64) error
}

// AreaService manages the interest-area taxonomy. Reads are open to anyone
// (the registration form lists areas before a session exists); writes are
// admin-gated before any call leaves the client.
type AreaService struct {
	backend AreasBackend
	guard   *session.Guard
	logger  *zap.Logger
}

// NewAreaService constructs an AreaService.
func NewAreaService(backend AreasBackend, guard *session.Guard, logger *zap.Logger) *AreaService {
	return &AreaService{
		backend: backend,
		guard:   guard,
		logger:  logger.Named("area_service"),
	}
}

// List returns the taxonomy. No guard: the registration form uses it.
func (s *AreaService) List(ctx context.Context) ([]models.InterestArea, error) {
	areas, err := s.backend.Areas(ctx)
	if err != nil {
		return nil, fmt.Errorf("list areas: %w", err)
	}
	return areas, nil
}

// Create adds a taxonomy entry. Admin only.
func (s *AreaService) Create(ctx context.Context, name, description string) (*models.InterestArea, error) {
	if _, err := require(s.guard, models.RoleAdmin); err != nil {
		return nil, err
	}
	if name == "" {
		return nil, fmt.Errorf("%w: area name is required", e.ErrInvalidInput)
	}
	area, err := s.backend.CreateArea(ctx, api.AreaRequest{Name: name, Description: description})
	if err != nil {
		return nil, fmt.Errorf("create area: %w", err)
	}
	s.logger.Info("area created", zap.Int64("area_id", area.ID))
	return area, nil
}

// Update edits a taxonomy entry. Admin only.
func (s *AreaService) Update(ctx context.Context, id int64, name, description string) (*models.InterestArea, error) {
	if _, err := require(s.guard, models.RoleAdmin); err != nil {
		return nil, err
	}
	if name == "" {
		return nil, fmt.Errorf("%w: area name is required", e.ErrInvalidInput)
	}
	area, err := s.backend.UpdateArea(ctx, id, api.AreaRequest{Name: name, Description: description})
	if err != nil {
		return nil, fmt.Errorf("update area %d: %w", id, err)
	}
	return area, nil
}

// Delete removes a taxonomy entry. Admin only.
func (s *AreaService) Delete(ctx context.Context, id int64) error {
	if _, err := require(s.guard, models.RoleAdmin); err != nil {
		return err
	}
	if err := s.backend.DeleteArea(ctx, id); err != nil {
		return fmt.Errorf("delete area %d: %w", id, err)
	}
	s.logger.Info("area deleted", zap.Int64("area_id", id))
	return nil
}
