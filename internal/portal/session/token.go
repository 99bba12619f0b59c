package session

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// corrupt token literals observed leaking from the storage layer. They must
// never reach the Authorization header.
var corruptTokenValues = map[string]bool{
	"undefined": true,
	"null":      true,
}

// UsableToken reports whether tok is structurally fit to send as a bearer
// credential: non-empty after trimming and not one of the known corrupt
// literals.
func UsableToken(tok string) bool {
	trimmed := strings.TrimSpace(tok)
	if trimmed == "" {
		return false
	}
	return !corruptTokenValues[trimmed]
}

// Expired inspects tok without verifying its signature and reports whether
// it carries an exp claim in the past. Tokens that are not parsable JWTs are
// treated as opaque and never expired; the client only consumes tokens, the
// backend remains the authority on their validity.
func Expired(tok string, now time.Time) bool {
	parser := jwt.NewParser()
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(tok, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(now)
}
