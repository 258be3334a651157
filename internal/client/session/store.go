package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/akashshetty1997/devmatch-cli/internal/client/api"
	"github.com/akashshetty1997/devmatch-cli/internal/client/models"
	"github.com/akashshetty1997/devmatch-cli/internal/client/state"
	"github.com/akashshetty1997/devmatch-cli/internal/common"
	"github.com/akashshetty1997/devmatch-cli/internal/cryptox"
	"github.com/akashshetty1997/devmatch-cli/internal/logging"
)

// ErrSuperseded is returned when an operation completed after a newer
// operation (login, register, logout) took over the session. The late
// result was discarded; the caller should re-read the store state.
var ErrSuperseded = errors.New("session superseded by a newer operation")

// persistedState is the restorable subset of the session. Profile and the
// loading flag are deliberately excluded: they always start fresh after a
// restart and are re-derived via FetchUser.
type persistedState struct {
	User            *models.User `json:"user"`
	Token           string       `json:"token"`
	IsAuthenticated bool         `json:"isAuthenticated"`
}

// Store is the client-side session/auth-state store.
//
// Invariants:
//   - IsAuthenticated() == (user != nil), always; never set independently.
//   - Whenever the in-memory token is non-empty, the HTTP client's default
//     Authorization header, the token cookie, and the durable token slot all
//     hold the same value; whenever it is empty, all three are cleared.
//   - The profile is never populated while the user is nil.
type Store struct {
	api    api.Client
	state  state.Repository
	secret []byte
	log    logging.Logger
	now    func() time.Time

	mu      sync.Mutex
	gen     uint64
	user    *models.User
	profile *models.Profile
	token   string
	loading bool

	// sinkMu serializes every write to the token sinks (header, cookie,
	// durable slots) together with its generation check. Lock order: sinkMu
	// before mu, never the reverse.
	sinkMu sync.Mutex
}

// NewStore wires the store to its collaborators. secret is the per-device
// secret used to seal the persisted session blob.
func NewStore(client api.Client, repo state.Repository, secret []byte, log logging.Logger) *Store {
	return &Store{
		api:    client,
		state:  repo,
		secret: secret,
		log:    log.With("component", "session"),
		now:    time.Now,
	}
}

// User returns a copy of the authenticated user, or nil.
func (s *Store) User() *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// Profile returns a copy of the enriched profile, or nil if it has not been
// fetched yet.
func (s *Store) Profile() *models.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.profile == nil {
		return nil
	}
	p := *s.profile
	return &p
}

// Token returns the current bearer token, or "" when logged out.
func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// IsAuthenticated reports whether a user is logged in. Derived from the user
// field, never stored separately.
func (s *Store) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user != nil
}

// IsLoading reports whether an auth operation is in flight.
func (s *Store) IsLoading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Login authenticates with email and password.
//
// On success the store holds the user and token, all three token mirrors
// agree, and a best-effort profile fetch has been attempted; a failure of
// that follow-up is logged and does not undo the login. On failure the store
// is rolled back to a clean logged-out state before the error is returned,
// so callers catching it may assume nothing leaked.
func (s *Store) Login(ctx context.Context, email, password string) error {
	gen, err := s.beginAuth(ctx)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}

	creds, err := s.api.Login(ctx, email, password)
	if err != nil {
		s.rollback(ctx, gen)
		return fmt.Errorf("login: %w", err)
	}

	return s.commitCredentials(ctx, gen, creds)
}

// Register creates an account. Identical contract to Login.
func (s *Store) Register(ctx context.Context, req api.RegisterRequest) error {
	gen, err := s.beginAuth(ctx)
	if err != nil {
		return fmt.Errorf("register: %w", err)
	}

	creds, err := s.api.Register(ctx, req)
	if err != nil {
		s.rollback(ctx, gen)
		return fmt.Errorf("register: %w", err)
	}

	return s.commitCredentials(ctx, gen, creds)
}

// Logout clears the in-memory session, all three token mirrors, and the
// persisted blob. The generation bump makes any in-flight operation discard
// its late result instead of resurrecting the session.
func (s *Store) Logout(ctx context.Context) error {
	s.mu.Lock()
	s.gen++
	s.user = nil
	s.profile = nil
	s.token = ""
	s.loading = false
	s.mu.Unlock()

	return s.clearSinks(ctx)
}

// SetToken mirrors the given token into the HTTP default header, the cookie,
// and the durable token slot, and records it in memory. An empty token
// clears all three. This is the single fan-out writer for the sinks.
func (s *Store) SetToken(ctx context.Context, token string) error {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
	return s.applyToken(ctx, token)
}

// FetchUser resolves the current user from the backend.
//
// A token is looked up in order of preference: in-memory state, the
// persisted session blob, the legacy durable token slot, the cookie. If none
// is found the store quietly settles into a logged-out state; not being
// logged in is a normal outcome, not an error. A found token is re-armed
// into the HTTP default header before the request, covering the case where
// state was restored but the header was not yet wired.
//
// A rejected call (expired or invalid token) clears the session exactly like
// Logout and returns nil: callers should observe IsAuthenticated afterward.
// Only the caller's own cancellation is surfaced as an error.
func (s *Store) FetchUser(ctx context.Context) error {
	s.mu.Lock()
	gen := s.gen
	token := s.token
	s.mu.Unlock()

	if token == "" {
		token = s.storedToken(ctx)
	}
	if token == "" {
		s.settle(gen)
		return nil
	}

	// Locally detectable expiry saves the round trip; outcome is identical
	// to a 401 from the backend.
	if tokenExpired(token, s.now()) {
		s.log.Info(ctx, "stored token expired, clearing session")
		s.invalidate(ctx, gen)
		return nil
	}

	if !s.armHeader(token, gen) {
		return nil
	}

	acct, err := s.api.GetMe(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			s.settle(gen)
			return err
		}
		s.log.Info(ctx, "session rejected by backend, clearing", "error", err)
		s.invalidate(ctx, gen)
		return nil
	}

	s.mu.Lock()
	if s.gen != gen {
		s.mu.Unlock()
		return nil
	}
	user := acct.User
	s.user = &user
	s.profile = acct.Profile
	s.token = token
	s.loading = false
	s.mu.Unlock()

	if err := s.flushSinks(ctx, gen); err != nil && !errors.Is(err, ErrSuperseded) {
		s.log.Warn(ctx, "token mirror update failed", "error", err)
	}
	return nil
}

// Restore rehydrates the session from the persisted blob on process start.
// The token is re-armed into the HTTP default header before returning, so it
// is in place before any component issues its first authenticated request.
// Profile and the loading flag always start fresh.
func (s *Store) Restore(ctx context.Context) error {
	blob, err := s.state.Get(ctx, common.AuthStorageKey)
	if err != nil {
		return fmt.Errorf("restore session: %w", err)
	}
	if blob == nil {
		return nil
	}

	plain, err := cryptox.Open(blob, s.secret)
	if err != nil {
		// Unreadable blob (device secret rotated, corruption): start clean.
		s.log.Warn(ctx, "persisted session unreadable, discarding", "error", err)
		return s.state.Delete(ctx, common.AuthStorageKey)
	}

	var st persistedState
	if err := json.Unmarshal(plain, &st); err != nil {
		s.log.Warn(ctx, "persisted session corrupt, discarding", "error", err)
		return s.state.Delete(ctx, common.AuthStorageKey)
	}
	if st.Token == "" || st.User == nil {
		return nil
	}

	s.mu.Lock()
	s.user = st.User
	s.token = st.Token
	s.profile = nil
	s.loading = false
	s.mu.Unlock()

	s.sinkMu.Lock()
	s.api.SetAuthToken(st.Token)
	s.api.SetSessionCookie(st.Token)
	s.sinkMu.Unlock()
	s.log.Debug(ctx, "session restored", "user", st.User.Username)
	return nil
}

// beginAuth starts a mutating auth operation: bumps the generation, raises
// the loading flag, and defensively clears any pre-existing session so a
// stale one cannot bleed through into the new login.
func (s *Store) beginAuth(ctx context.Context) (uint64, error) {
	s.mu.Lock()
	s.gen++
	gen := s.gen
	s.user = nil
	s.profile = nil
	s.token = ""
	s.loading = true
	s.mu.Unlock()

	if err := s.clearSinks(ctx); err != nil {
		s.settle(gen)
		return gen, err
	}
	return gen, nil
}

// flushSinks mirrors the committed token into the sinks and persists the
// session blob. The write is serialized with every other sink writer and
// re-gated on the generation, so a logout landing between the in-memory
// commit and the fan-out wins: the stale write is skipped entirely instead
// of resurrecting the token in a mirror.
func (s *Store) flushSinks(ctx context.Context, gen uint64) error {
	s.sinkMu.Lock()
	defer s.sinkMu.Unlock()

	s.mu.Lock()
	if s.gen != gen {
		s.mu.Unlock()
		return ErrSuperseded
	}
	token := s.token
	s.mu.Unlock()

	if err := s.applyToken(ctx, token); err != nil {
		return err
	}
	return s.persist(ctx)
}

// commitCredentials publishes a successful login/register. The token is
// written to the header mirror before the follow-up profile fetch so that
// call goes out authenticated.
func (s *Store) commitCredentials(ctx context.Context, gen uint64, creds *models.Credentials) error {
	s.mu.Lock()
	if s.gen != gen {
		s.mu.Unlock()
		return ErrSuperseded
	}
	user := *creds.User
	s.user = &user
	s.token = creds.Token
	s.loading = false
	s.mu.Unlock()

	if err := s.flushSinks(ctx, gen); err != nil {
		if errors.Is(err, ErrSuperseded) {
			return ErrSuperseded
		}
		s.log.Warn(ctx, "token mirror update failed", "error", err)
	}

	// Best-effort enrichment. The user is authenticated either way; only
	// the profile data is at stake.
	if err := s.enrichProfile(ctx, gen); err != nil {
		s.log.Warn(ctx, "profile fetch after auth failed", "error", err)
	}
	return nil
}

// enrichProfile fetches the full account to populate the profile after a
// login or registration.
func (s *Store) enrichProfile(ctx context.Context, gen uint64) error {
	acct, err := s.api.GetMe(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen || s.user == nil {
		return nil
	}
	user := acct.User
	s.user = &user
	s.profile = acct.Profile
	return nil
}

// rollback restores a clean logged-out state after a failed login/register,
// unless a newer operation already owns the session.
func (s *Store) rollback(ctx context.Context, gen uint64) {
	s.mu.Lock()
	if s.gen != gen {
		s.mu.Unlock()
		return
	}
	s.user = nil
	s.profile = nil
	s.token = ""
	s.loading = false
	s.mu.Unlock()

	if err := s.clearSinks(ctx); err != nil {
		s.log.Warn(ctx, "rollback: clearing token mirrors failed", "error", err)
	}
}

// invalidate clears the session after the backend rejected the token,
// mirroring Logout, gated on the generation.
func (s *Store) invalidate(ctx context.Context, gen uint64) {
	s.mu.Lock()
	if s.gen != gen {
		s.mu.Unlock()
		return
	}
	s.user = nil
	s.profile = nil
	s.token = ""
	s.loading = false
	s.mu.Unlock()

	if err := s.clearSinks(ctx); err != nil {
		s.log.Warn(ctx, "invalidate: clearing token mirrors failed", "error", err)
	}
}

// settle drops the loading flag without touching anything else.
func (s *Store) settle(gen uint64) {
	s.mu.Lock()
	if s.gen == gen {
		s.loading = false
	}
	s.mu.Unlock()
}

// applyToken mirrors a token into the header, the cookie, and the legacy
// durable slot. Empty clears all three. Callers observing the store after
// this returns see the three sinks in agreement.
func (s *Store) applyToken(ctx context.Context, token string) error {
	if token == "" {
		s.api.ClearAuthToken()
		s.api.ClearSessionCookie()
		if err := s.state.Delete(ctx, common.TokenStateKey); err != nil {
			return fmt.Errorf("clear token slot: %w", err)
		}
		return nil
	}
	s.api.SetAuthToken(token)
	s.api.SetSessionCookie(token)
	if err := s.state.Set(ctx, common.TokenStateKey, []byte(token)); err != nil {
		return fmt.Errorf("write token slot: %w", err)
	}
	return nil
}

// armHeader installs the resolved token into the default Authorization
// header and marks the fetch in flight, iff the generation is still current.
// Serialized with the sink writers so a concurrent logout is not overwritten
// by a stale arm. Reports whether the caller still owns the session.
func (s *Store) armHeader(token string, gen uint64) bool {
	s.sinkMu.Lock()
	defer s.sinkMu.Unlock()

	s.mu.Lock()
	if s.gen != gen {
		s.mu.Unlock()
		return false
	}
	s.token = token
	s.loading = true
	s.mu.Unlock()

	s.api.SetAuthToken(token)
	return true
}

// clearSinks clears all three token mirrors and the persisted blob.
func (s *Store) clearSinks(ctx context.Context) error {
	s.sinkMu.Lock()
	defer s.sinkMu.Unlock()

	err := s.applyToken(ctx, "")
	if derr := s.state.Delete(ctx, common.AuthStorageKey); derr != nil && err == nil {
		err = fmt.Errorf("clear persisted session: %w", derr)
	}
	return err
}

// persist seals and writes the restorable subset of the session.
func (s *Store) persist(ctx context.Context) error {
	s.mu.Lock()
	st := persistedState{
		User:            s.user,
		Token:           s.token,
		IsAuthenticated: s.user != nil,
	}
	s.mu.Unlock()

	plain, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	sealed, err := cryptox.Seal(plain, s.secret)
	if err != nil {
		return fmt.Errorf("seal session: %w", err)
	}
	return s.state.Set(ctx, common.AuthStorageKey, sealed)
}

// storedToken resolves a token from the durable mirrors: the persisted
// session blob first, then the legacy plaintext slot, then the cookie.
func (s *Store) storedToken(ctx context.Context) string {
	if blob, err := s.state.Get(ctx, common.AuthStorageKey); err == nil && blob != nil {
		if plain, err := cryptox.Open(blob, s.secret); err == nil {
			var st persistedState
			if err := json.Unmarshal(plain, &st); err == nil && st.Token != "" {
				return st.Token
			}
		}
	}
	if raw, err := s.state.Get(ctx, common.TokenStateKey); err == nil && len(raw) > 0 {
		return string(raw)
	}
	return s.api.SessionCookie()
}
