package controller

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/gurisdeprograma/ProjetoJPA/internal/portal/api"
	e "github.com/gurisdeprograma/ProjetoJPA/internal/portal/errors"
	"github.com/gurisdeprograma/ProjetoJPA/internal/portal/models"
	"go.uber.org/zap/zaptest"
)

type mockAreasBackend struct {
	writes int32

	areas func(ctx context.Context) ([]models.InterestArea, error)
}

func (m *mockAreasBackend) Areas(ctx context.Context) ([]models.InterestArea, error) {
	return m.areas(ctx)
}

func (m *mockAreasBackend) CreateArea(ctx context.Context, req api.AreaRequest) (*models.InterestArea, error) {
	atomic.AddInt32(&m.writes, 1)
	return &models.InterestArea{ID: 1, Name: req.Name, Description: req.Description}, nil
}

func (m *mockAreasBackend) UpdateArea(ctx context.Context, id int64, req api.AreaRequest) (*models.InterestArea, error) {
	atomic.AddInt32(&m.writes, 1)
	return &models.InterestArea{ID: id, Name: req.Name, Description: req.Description}, nil
}

func (m *mockAreasBackend) DeleteArea(ctx context.Context, id int64) error {
	atomic.AddInt32(&m.writes, 1)
	return nil
}

func TestAreaListNeedsNoSession(t *testing.T) {
	// the registration form lists areas before anyone is logged in
	backend := &mockAreasBackend{
		areas: func(_ context.Context) ([]models.InterestArea, error) {
			return []models.InterestArea{{ID: 1, Name: "TI"}}, nil
		},
	}
	guard, _ := testSession(t, 0, "")
	svc := NewAreaService(backend, guard, zaptest.NewLogger(t))

	areas, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(areas) != 1 {
		t.Errorf("len = %d, want 1", len(areas))
	}
}

func TestAreaWritesAreAdminGated(t *testing.T) {
	for _, role := range []models.Role{models.RoleStudent, models.RoleCompany} {
		t.Run(string(role), func(t *testing.T) {
			backend := &mockAreasBackend{}
			guard, _ := testSession(t, 5, role)
			svc := NewAreaService(backend, guard, zaptest.NewLogger(t))

			_, err := svc.Create(context.Background(), "TI", "")
			if !errors.Is(err, e.ErrForbiddenRole) {
				t.Fatalf("Create err = %v, want ErrForbiddenRole", err)
			}
			if err := svc.Delete(context.Background(), 1); !errors.Is(err, e.ErrForbiddenRole) {
				t.Fatalf("Delete err = %v, want ErrForbiddenRole", err)
			}
			if backend.writes != 0 {
				t.Error("no write may reach the backend for a non-admin")
			}
		})
	}
}

func TestAreaCreateAsAdmin(t *testing.T) {
	backend := &mockAreasBackend{}
	guard, _ := testSession(t, 3, models.RoleAdmin)
	svc := NewAreaService(backend, guard, zaptest.NewLogger(t))

	area, err := svc.Create(context.Background(), "Engenharia", "vagas de engenharia")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if area.Name != "Engenharia" {
		t.Errorf("name = %s", area.Name)
	}
	if backend.writes != 1 {
		t.Errorf("writes = %d, want 1", backend.writes)
	}
}

func TestAreaCreateRequiresName(t *testing.T) {
	backend := &mockAreasBackend{}
	guard, _ := testSession(t, 3, models.RoleAdmin)
	svc := NewAreaService(backend, guard, zaptest.NewLogger(t))

	_, err := svc.Create(context.Background(), "", "desc")
	if !errors.Is(err, e.ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
	if backend.writes != 0 {
		t.Error("invalid create must not reach the backend")
	}
}
