// Package common contains shared constants and small utilities used across
// DevMatch client components.
package common

import "time"

const (
	// AuthStorageKey is the durable state slot holding the restorable
	// session blob ({user, token, isAuthenticated}).
	AuthStorageKey = "auth-storage"

	// TokenStateKey is the plaintext token slot kept for ad hoc legacy reads.
	TokenStateKey = "token"

	// TokenCookieName is the cookie mirror of the bearer token.
	TokenCookieName = "token"

	// TokenCookieTTL is the lifetime of the token cookie mirror.
	TokenCookieTTL = 7 * 24 * time.Hour

	// RequestIDHeaderName carries the per-request correlation id.
	RequestIDHeaderName = "X-Request-Id"
)
