package session

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gurisdeprograma/ProjetoJPA/internal/portal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "12",
		"exp": exp.Unix(),
	})
	s, err := tok.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return s
}

func guardWith(t *testing.T, st *State) (*Guard, *FileStore) {
	t.Helper()
	store := tempStore(t)
	if st != nil {
		require.NoError(t, store.Save(st))
	}
	return NewGuard(store, zaptest.NewLogger(t)), store
}

func TestGuardNoSessionRedirectsToLogin(t *testing.T) {
	g, _ := guardWith(t, nil)
	st, d := g.Check(models.RoleStudent)
	assert.Equal(t, RedirectLogin, d)
	assert.Nil(t, st)
}

func TestGuardAllowsMatchingRole(t *testing.T) {
	g, _ := guardWith(t, &State{
		Identity: models.Identity{ID: 12, Name: "Ana", Role: models.RoleStudent},
		Token:    "tok-opaque",
	})
	st, d := g.Check(models.RoleStudent)
	assert.Equal(t, Allow, d)
	require.NotNil(t, st)
	assert.Equal(t, int64(12), st.Identity.ID)
}

func TestGuardAllowsAnyRoleWhenUnrestricted(t *testing.T) {
	g, _ := guardWith(t, &State{
		Identity: models.Identity{ID: 9, Name: "Corp", Role: models.RoleCompany},
		Token:    "tok",
	})
	_, d := g.Check()
	assert.Equal(t, Allow, d)
}

func TestGuardWrongRoleRedirectsHome(t *testing.T) {
	g, _ := guardWith(t, &State{
		Identity: models.Identity{ID: 9, Name: "Corp", Role: models.RoleCompany},
		Token:    "tok",
	})
	st, d := g.Check(models.RoleStudent)
	assert.Equal(t, RedirectHome, d)
	assert.NotNil(t, st, "identity is still known on a role mismatch")
}

func TestGuardCorruptTokenRedirectsAndPurges(t *testing.T) {
	for _, bad := range []string{"undefined", "null", "   ", ""} {
		t.Run("token="+bad, func(t *testing.T) {
			g, store := guardWith(t, &State{
				Identity: models.Identity{ID: 12, Name: "Ana", Role: models.RoleStudent},
				Token:    bad,
			})
			_, d := g.Check(models.RoleStudent)
			assert.Equal(t, RedirectLogin, d)

			st, err := store.Load()
			require.NoError(t, err)
			assert.Empty(t, st.Token, "corrupt credential must be purged")
		})
	}
}

func TestGuardExpiredTokenRedirectsAndPurges(t *testing.T) {
	g, store := guardWith(t, &State{
		Identity: models.Identity{ID: 12, Name: "Ana", Role: models.RoleStudent},
		Token:    signedToken(t, time.Now().Add(-time.Hour)),
	})
	_, d := g.Check(models.RoleStudent)
	assert.Equal(t, RedirectLogin, d)

	st, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, st.Token)
}

func TestGuardFreshTokenAllowed(t *testing.T) {
	g, _ := guardWith(t, &State{
		Identity: models.Identity{ID: 12, Name: "Ana", Role: models.RoleStudent},
		Token:    signedToken(t, time.Now().Add(time.Hour)),
	})
	_, d := g.Check(models.RoleStudent)
	assert.Equal(t, Allow, d)
}

func TestGuardLogoutClearsSession(t *testing.T) {
	g, store := guardWith(t, &State{
		Identity: models.Identity{ID: 12, Name: "Ana", Role: models.RoleStudent},
		Token:    "tok",
	})
	require.NoError(t, g.Logout())
	_, err := store.Load()
	assert.Error(t, err)
}

func TestUsableToken(t *testing.T) {
	tests := []struct {
		tok  string
		want bool
	}{
		{"tok-abc", true},
		{"  tok-abc  ", true},
		{"undefined", false},
		{"null", false},
		{"   ", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := UsableToken(tt.tok); got != tt.want {
			t.Errorf("UsableToken(%q) = %v, want %v", tt.tok, got, tt.want)
		}
	}
}

func TestExpiredOpaqueTokenNeverExpires(t *testing.T) {
	assert.False(t, Expired("not-a-jwt", time.Now()))
}
