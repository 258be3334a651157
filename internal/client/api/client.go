// Package api implements the DevMatch REST API client. The HTTP client owns
// two of the three token mirrors (the default Authorization header and the
// token cookie); the session store is their sole writer.
package api

import (
	"context"

	"github.com/akashshetty1997/devmatch-cli/internal/client/models"
)

// RegisterRequest carries the registration form. CompanyName is only
// meaningful for recruiter accounts.
type RegisterRequest struct {
	Username    string      `json:"username"`
	Email       string      `json:"email"`
	Password    string      `json:"password"`
	Role        models.Role `json:"role"`
	CompanyName string      `json:"companyName,omitempty"`
}

// Client is the DevMatch API surface the rest of the application depends on.
//
// Contract:
//   - Login/Register: authenticate and return {user, token}; a 2xx response
//     missing either field fails with ErrMalformedResponse.
//   - GetMe: return the current account with its profile; retried on
//     429/5xx.
//   - SetAuthToken/ClearAuthToken: arm or disarm the default
//     "Authorization: Bearer <token>" header on every outgoing request.
//   - SetSessionCookie/ClearSessionCookie/SessionCookie: maintain and read
//     the "token" cookie mirror scoped to the API base URL.
//
// All network methods honor context cancellation.
type Client interface {
	Login(ctx context.Context, email, password string) (*models.Credentials, error)
	Register(ctx context.Context, req RegisterRequest) (*models.Credentials, error)
	GetMe(ctx context.Context) (*models.Account, error)

	SearchRepositories(ctx context.Context, query string, page int) ([]models.Repo, *models.Pagination, error)
	Feed(ctx context.Context, page int) ([]models.Post, *models.Pagination, error)
	Jobs(ctx context.Context, filter models.JobFilter) ([]models.Job, *models.Pagination, error)
	ApplyToJob(ctx context.Context, jobID, coverLetter string) error
	UpdateProfile(ctx context.Context, profile *models.Profile) (*models.Profile, error)

	SetAuthToken(token string)
	ClearAuthToken()
	AuthToken() string

	SetSessionCookie(token string)
	ClearSessionCookie()
	SessionCookie() string

	Close() error
}
