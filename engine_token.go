package authflow

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// tokenExpired reports whether token is a JWT whose exp claim lies in the
// past. The signature is not verified: this is a local pre-check to skip a
// doomed round-trip, not an authorization decision; the server remains the
// authority. Opaque tokens and JWTs without an exp claim are never considered
// expired.
func tokenExpired(token string, now time.Time) bool {
	parser := jwt.NewParser()

	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return false
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(now)
}
