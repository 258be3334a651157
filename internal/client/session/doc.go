// Package session owns the authenticated user's identity, profile, and
// bearer token. The Store is the single authority for authentication state:
// it fans the token out to the HTTP client's default Authorization header,
// the token cookie, and durable local storage, and restores a session across
// process restarts. No other component writes to those sinks.
package session
