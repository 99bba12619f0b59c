// Package controller implements the role-scoped view services of the
// portal: vacancy directory, application lifecycle, rating aggregation,
// account administration, and the interest-area taxonomy. Every service
// runs the session guard before issuing any backend call.
package controller

import (
	e "github.com/gurisdeprograma/ProjetoJPA/internal/portal/errors"
	"github.com/gurisdeprograma/ProjetoJPA/internal/portal/models"
	"github.com/gurisdeprograma/ProjetoJPA/internal/portal/session"
)

// fanOutLimit bounds concurrent backend fetches within one view.
const fanOutLimit = 4

// require runs the guard for a view's allowed role set and converts the
// redirect decisions into sentinel errors: a missing session maps to
// ErrNoSession (re-login), a role mismatch to ErrForbiddenRole (home).
func require(g *session.Guard, allowed ...models.Role) (*session.State, error) {
	st, decision := g.Check(allowed...)
	switch decision {
	case session.Allow:
		return st, nil
	case session.RedirectHome:
		return nil, e.ErrForbiddenRole
	default:
		return nil, e.ErrNoSession
	}
}
