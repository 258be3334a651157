package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"

	"github.com/akashshetty1997/devmatch-cli/internal/client/models"
	"github.com/akashshetty1997/devmatch-cli/internal/common"
	"github.com/akashshetty1997/devmatch-cli/internal/logging"
)

const (
	readRetryAttempts = 3
	readRetryBase     = 200 * time.Millisecond
)

// authTransport injects the default bearer token and a request id into every
// outgoing request. The token is guarded because the session store writes it
// while other goroutines may be issuing requests.
type authTransport struct {
	mu    sync.RWMutex
	token string
	base  http.RoundTripper
}

func (t *authTransport) current() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.token
}

func (t *authTransport) set(token string) {
	t.mu.Lock()
	t.token = token
	t.mu.Unlock()
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// RoundTrippers must not mutate the caller's request.
	clone := req.Clone(req.Context())
	if token := t.current(); token != "" {
		clone.Header.Set("Authorization", "Bearer "+token)
	}
	if clone.Header.Get(common.RequestIDHeaderName) == "" {
		clone.Header.Set(common.RequestIDHeaderName, uuid.NewString())
	}
	return t.base.RoundTrip(clone)
}

// HTTPClient talks JSON to the DevMatch backend.
type HTTPClient struct {
	baseURL   *url.URL
	hc        *http.Client
	transport *authTransport
	log       logging.Logger
}

var _ Client = (*HTTPClient)(nil)

// NewHTTPClient builds a client for the given base URL, e.g.
// "http://localhost:8080/api". The timeout bounds each individual request.
func NewHTTPClient(baseURL string, timeout time.Duration, log logging.Logger) (*HTTPClient, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid base url %q", baseURL)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("init cookie jar: %w", err)
	}

	t := &authTransport{base: http.DefaultTransport}
	return &HTTPClient{
		baseURL:   u,
		hc:        &http.Client{Transport: t, Jar: jar, Timeout: timeout},
		transport: t,
		log:       log,
	}, nil
}

// dataEnvelope is the success wrapper every endpoint uses.
type dataEnvelope struct {
	Data json.RawMessage `json:"data"`
}

// errorEnvelope is the failure wrapper; Message is user-displayable.
type errorEnvelope struct {
	Message string `json:"message"`
}

func (c *HTTPClient) endpoint(path string, query url.Values) (string, error) {
	u := *c.baseURL
	joined, err := url.JoinPath(u.Path, path)
	if err != nil {
		return "", fmt.Errorf("join url path %q: %w", path, err)
	}
	u.Path = joined
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String(), nil
}

// do performs one request and decodes the data envelope into out (if non-nil).
func (c *HTTPClient) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reqBody = bytes.NewReader(buf)
	}

	target, err := c.endpoint(path, query)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reqBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read body: %v", ErrUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.statusError(resp.StatusCode, raw)
	}
	if out == nil {
		return nil
	}

	var env dataEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if len(env.Data) == 0 {
		return fmt.Errorf("%w: missing data", ErrMalformedResponse)
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}

// doRetry wraps do with fibonacci backoff on 429 and transport/5xx failures.
// Only used for read endpoints, which are safe to repeat.
func (c *HTTPClient) doRetry(ctx context.Context, method, path string, query url.Values, body, out any) error {
	backoff := retry.WithMaxRetries(readRetryAttempts, retry.NewFibonacci(readRetryBase))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := c.do(ctx, method, path, query, body, out)
		if errors.Is(err, ErrRateLimited) || errors.Is(err, ErrUnavailable) {
			c.log.Debug(ctx, "retrying request", "method", method, "path", path, "error", err)
			return retry.RetryableError(err)
		}
		return err
	})
}

func (c *HTTPClient) statusError(status int, body []byte) error {
	var env errorEnvelope
	_ = json.Unmarshal(body, &env)
	msg := env.Message
	if msg == "" {
		msg = http.StatusText(status)
	}

	var base error
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		base = ErrUnauthorized
	case status == http.StatusTooManyRequests:
		base = ErrRateLimited
	case status >= 500:
		base = ErrUnavailable
	default:
		base = ErrRequestFailed
	}
	return fmt.Errorf("%w: %s", base, msg)
}

// decodeCredentials enforces that a login/register success actually carries
// both the user and the token. A 2xx with either missing is a malformed
// response, not a partial login.
func decodeCredentials(creds *models.Credentials) error {
	if creds.User == nil || creds.Token == "" {
		return fmt.Errorf("%w: missing user or token", ErrMalformedResponse)
	}
	return nil
}

func (c *HTTPClient) Login(ctx context.Context, email, password string) (*models.Credentials, error) {
	body := map[string]string{"email": email, "password": password}
	var creds models.Credentials
	if err := c.do(ctx, http.MethodPost, "auth/login", nil, body, &creds); err != nil {
		return nil, err
	}
	if err := decodeCredentials(&creds); err != nil {
		return nil, err
	}
	return &creds, nil
}

func (c *HTTPClient) Register(ctx context.Context, req RegisterRequest) (*models.Credentials, error) {
	var creds models.Credentials
	if err := c.do(ctx, http.MethodPost, "auth/register", nil, req, &creds); err != nil {
		return nil, err
	}
	if err := decodeCredentials(&creds); err != nil {
		return nil, err
	}
	return &creds, nil
}

func (c *HTTPClient) GetMe(ctx context.Context) (*models.Account, error) {
	var acct models.Account
	if err := c.doRetry(ctx, http.MethodGet, "auth/me", nil, nil, &acct); err != nil {
		return nil, err
	}
	if acct.ID == "" {
		return nil, fmt.Errorf("%w: missing user id", ErrMalformedResponse)
	}
	return &acct, nil
}

// pagedEnvelope is the shape of list endpoints inside the data envelope.
type pagedEnvelope[T any] struct {
	Items      []T                `json:"items"`
	Pagination *models.Pagination `json:"pagination"`
}

func (c *HTTPClient) SearchRepositories(ctx context.Context, query string, page int) ([]models.Repo, *models.Pagination, error) {
	q := url.Values{"q": {query}}
	if page > 1 {
		q.Set("page", strconv.Itoa(page))
	}
	var out pagedEnvelope[models.Repo]
	if err := c.doRetry(ctx, http.MethodGet, "search/repositories", q, nil, &out); err != nil {
		return nil, nil, err
	}
	return out.Items, out.Pagination, nil
}

func (c *HTTPClient) Feed(ctx context.Context, page int) ([]models.Post, *models.Pagination, error) {
	q := url.Values{}
	if page > 1 {
		q.Set("page", strconv.Itoa(page))
	}
	var out pagedEnvelope[models.Post]
	if err := c.doRetry(ctx, http.MethodGet, "posts", q, nil, &out); err != nil {
		return nil, nil, err
	}
	return out.Items, out.Pagination, nil
}

func (c *HTTPClient) Jobs(ctx context.Context, filter models.JobFilter) ([]models.Job, *models.Pagination, error) {
	q := url.Values{}
	if filter.Query != "" {
		q.Set("q", filter.Query)
	}
	if filter.Location != "" {
		q.Set("location", filter.Location)
	}
	if filter.Remote != nil {
		q.Set("remote", strconv.FormatBool(*filter.Remote))
	}
	if filter.Page > 1 {
		q.Set("page", strconv.Itoa(filter.Page))
	}
	var out pagedEnvelope[models.Job]
	if err := c.doRetry(ctx, http.MethodGet, "jobs", q, nil, &out); err != nil {
		return nil, nil, err
	}
	return out.Items, out.Pagination, nil
}

func (c *HTTPClient) ApplyToJob(ctx context.Context, jobID, coverLetter string) error {
	body := map[string]string{"coverLetter": coverLetter}
	return c.do(ctx, http.MethodPost, "jobs/"+url.PathEscape(jobID)+"/apply", nil, body, nil)
}

func (c *HTTPClient) UpdateProfile(ctx context.Context, profile *models.Profile) (*models.Profile, error) {
	var updated models.Profile
	if err := c.do(ctx, http.MethodPut, "profile", nil, profile, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (c *HTTPClient) SetAuthToken(token string) {
	c.transport.set(token)
}

func (c *HTTPClient) ClearAuthToken() {
	c.transport.set("")
}

func (c *HTTPClient) AuthToken() string {
	return c.transport.current()
}

func (c *HTTPClient) SetSessionCookie(token string) {
	c.hc.Jar.SetCookies(c.baseURL, []*http.Cookie{{
		Name:    common.TokenCookieName,
		Value:   token,
		Path:    "/",
		Expires: time.Now().Add(common.TokenCookieTTL),
	}})
}

func (c *HTTPClient) ClearSessionCookie() {
	c.hc.Jar.SetCookies(c.baseURL, []*http.Cookie{{
		Name:   common.TokenCookieName,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	}})
}

func (c *HTTPClient) SessionCookie() string {
	for _, ck := range c.hc.Jar.Cookies(c.baseURL) {
		if ck.Name == common.TokenCookieName {
			return ck.Value
		}
	}
	return ""
}

func (c *HTTPClient) Close() error {
	c.hc.CloseIdleConnections()
	return nil
}
