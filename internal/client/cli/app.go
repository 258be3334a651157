// Package cli implements the interactive DevMatch terminal client.
package cli

import (
	"bufio"
	"context"
	"database/sql"
	"io"
	"os"
	"path/filepath"

	"github.com/akashshetty1997/devmatch-cli/internal/client/api"
	"github.com/akashshetty1997/devmatch-cli/internal/client/config"
	"github.com/akashshetty1997/devmatch-cli/internal/client/models"
	"github.com/akashshetty1997/devmatch-cli/internal/client/services"
	"github.com/akashshetty1997/devmatch-cli/internal/client/session"
	"github.com/akashshetty1997/devmatch-cli/internal/client/state"
	"github.com/akashshetty1997/devmatch-cli/internal/cryptox"
	"github.com/akashshetty1997/devmatch-cli/internal/filex"
	"github.com/akashshetty1997/devmatch-cli/internal/logging"
)

// SessionService is the slice of the session store the CLI consumes.
// Declared here so command tests can substitute a fake.
type SessionService interface {
	Login(ctx context.Context, email, password string) error
	Register(ctx context.Context, req api.RegisterRequest) error
	Logout(ctx context.Context) error
	FetchUser(ctx context.Context) error
	Restore(ctx context.Context) error
	User() *models.User
	Profile() *models.Profile
	IsAuthenticated() bool
}

type App struct {
	config  *config.Config
	session SessionService
	browse  services.BrowseService
	api     api.Client
	db      *sql.DB
	reader  *bufio.Reader
	out     io.Writer
	log     logging.Logger
}

func NewApp(cfg *config.Config, log logging.Logger) (*App, error) {
	ctx := context.Background()

	dir, err := filex.EnsureDir(cfg.StateDir)
	if err != nil {
		return nil, err
	}

	db, err := state.Open(ctx, filepath.Join(dir, "state.db"))
	if err != nil {
		log.Error(ctx, "error initializing state database", "error", err)
		return nil, err
	}

	secret, err := cryptox.LoadOrCreateDeviceSecret(filepath.Join(dir, "device.key"))
	if err != nil {
		return nil, err
	}

	apiClient, err := api.NewHTTPClient(cfg.BaseURL, cfg.RequestTimeout, log)
	if err != nil {
		return nil, err
	}

	store := session.NewStore(apiClient, state.NewSQLiteRepository(db), secret, log)

	return &App{
		config:  cfg,
		session: store,
		browse:  services.NewBrowseService(apiClient),
		api:     apiClient,
		db:      db,
		reader:  bufio.NewReader(os.Stdin),
		out:     os.Stdout,
		log:     log,
	}, nil
}

// Run rehydrates the session and enters the REPL. A restored session is
// refreshed through FetchUser so the profile is re-derived; an expired one
// quietly settles into a logged-out prompt.
func (a *App) Run(ctx context.Context) {
	defer a.Close()

	if err := a.session.Restore(ctx); err != nil {
		a.log.Warn(ctx, "session restore failed", "error", err)
	}
	if err := a.session.FetchUser(ctx); err != nil {
		a.log.Warn(ctx, "session refresh failed", "error", err)
	}

	a.Root(ctx)
}

func (a *App) Close() {
	if a.api != nil {
		_ = a.api.Close()
	}
	if a.db != nil {
		_ = a.db.Close()
	}
}

func (a *App) isLoggedIn() bool {
	return a.session.IsAuthenticated()
}
