package api

import "errors"

var (
	// ErrUnavailable means the backend could not be reached or answered 5xx.
	ErrUnavailable = errors.New("server unavailable")

	// ErrUnauthorized means the backend rejected the request's credentials.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrRateLimited means the backend answered 429.
	ErrRateLimited = errors.New("rate limited")

	// ErrRequestFailed is any other non-success status (validation, conflict).
	ErrRequestFailed = errors.New("request failed")

	// ErrMalformedResponse means an HTTP-success response was missing
	// required fields. Treated like a failure, never a partial success.
	ErrMalformedResponse = errors.New("malformed response")
)
