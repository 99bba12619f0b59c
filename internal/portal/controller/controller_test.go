package controller

import (
	"path/filepath"
	"testing"

	"github.com/gurisdeprograma/ProjetoJPA/internal/portal/models"
	"github.com/gurisdeprograma/ProjetoJPA/internal/portal/session"
	tr "github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// testSession fabricates a persisted session for the given role (or none
// when role is empty) and returns a guard over it.
func testSession(t *testing.T, id int64, role models.Role) (*session.Guard, session.Store) {
	t.Helper()
	store := session.NewFileStore(filepath.Join(t.TempDir(), "session.json"))
	if role != "" {
		tr.NoError(t, store.Save(&session.State{
			Identity: models.Identity{ID: id, Name: "Teste", Role: role},
			Token:    "tok-test",
		}))
	}
	guard := session.NewGuard(store, zaptest.NewLogger(t))
	return guard, store
}
