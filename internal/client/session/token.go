package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// tokenExpiry peeks at the expiry claim of a bearer token. The token is
// opaque by contract, so everything here is best effort: a token that is not
// a JWT, or carries no exp claim, yields ok == false and the caller must fall
// back to asking the backend. The signature is deliberately not verified;
// the backend stays the authority on validity.
func tokenExpiry(token string) (expiry time.Time, ok bool) {
	parser := jwt.NewParser()

	var claims jwt.RegisteredClaims
	if _, _, err := parser.ParseUnverified(token, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}

// tokenExpired reports whether the token carries an expiry claim that has
// already passed.
func tokenExpired(token string, now time.Time) bool {
	expiry, ok := tokenExpiry(token)
	return ok && now.After(expiry)
}
