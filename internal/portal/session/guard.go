package session

import (
	"time"

	"github.com/gurisdeprograma/ProjetoJPA/internal/portal/models"
	"go.uber.org/zap"
)

// Decision is the outcome of a guard check.
type Decision int

const (
	// Allow lets the view proceed to its data fetches.
	Allow Decision = iota
	// RedirectLogin means no usable session exists; nothing may be fetched.
	RedirectLogin
	// RedirectHome means the actor is authenticated but the view belongs to
	// a different role.
	RedirectHome
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case RedirectLogin:
		return "redirect-login"
	case RedirectHome:
		return "redirect-home"
	}
	return "unknown"
}

// Guard gates protected views by session presence and role. The check is
// synchronous and must run before any data fetch the view would issue.
type Guard struct {
	store  Store
	logger *zap.Logger
	now    func() time.Time
}

// NewGuard constructs a Guard over the given store.
func NewGuard(store Store, logger *zap.Logger) *Guard {
	return &Guard{
		store:  store,
		logger: logger.Named("guard"),
		now:    time.Now,
	}
}

// Check loads the session and matches its role against the view's allowed
// set. An empty allowed set admits any authenticated role. Missing, corrupt,
// or expired credentials fail closed to RedirectLogin; a role mismatch
// yields RedirectHome. The returned State is non-nil only for Allow and
// RedirectHome.
func (g *Guard) Check(allowed ...models.Role) (*State, Decision) {
	st, err := g.store.Load()
	if err != nil {
		return nil, RedirectLogin
	}
	if !UsableToken(st.Token) {
		g.logger.Warn("unusable credential in store, purging")
		_ = g.store.ClearToken()
		return nil, RedirectLogin
	}
	if Expired(st.Token, g.now()) {
		g.logger.Info("credential expired, purging",
			zap.Int64("user_id", st.Identity.ID),
		)
		_ = g.store.ClearToken()
		return nil, RedirectLogin
	}

	if len(allowed) == 0 {
		return st, Allow
	}
	for _, r := range allowed {
		if st.Identity.Role == r.Normalize() {
			return st, Allow
		}
	}
	g.logger.Debug("role not allowed for view",
		zap.String("role", string(st.Identity.Role)),
	)
	return st, RedirectHome
}

// Logout clears both session keys. The caller navigates to the public root.
func (g *Guard) Logout() error {
	return g.store.Clear()
}
