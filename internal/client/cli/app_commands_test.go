package cli

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/akashshetty1997/devmatch-cli/internal/client/api"
	"github.com/akashshetty1997/devmatch-cli/internal/client/models"
)

// ------------ helpers ------------

func readerFromLines(lines ...string) *bufio.Reader {
	if len(lines) == 0 || lines[len(lines)-1] != "" {
		lines = append(lines, "")
	}
	return bufio.NewReader(strings.NewReader(strings.Join(lines, "\n")))
}

func newTestApp(s SessionService, bs *fakeBS, r *bufio.Reader) (*App, *bytes.Buffer) {
	var out bytes.Buffer
	return &App{session: s, browse: bs, reader: r, out: &out}, &out
}

func stubPassword(t *testing.T, pw string) {
	t.Helper()
	old := getPassword
	t.Cleanup(func() { getPassword = old })
	getPassword = func(io.Writer) ([]byte, error) {
		return []byte(pw), nil
	}
}

type fakeSession struct {
	loginEmail    string
	loginPassword string
	loginErr      error

	registerReq api.RegisterRequest
	registerErr error

	logoutCalled  bool
	restoreCalled bool

	fetchCount int
	fetchErr   error

	user    *models.User
	profile *models.Profile
}

func (f *fakeSession) Login(ctx context.Context, email, password string) error {
	f.loginEmail = email
	f.loginPassword = password
	if f.loginErr == nil && f.user == nil {
		f.user = &models.User{Username: "alice"}
	}
	return f.loginErr
}

func (f *fakeSession) Register(ctx context.Context, req api.RegisterRequest) error {
	f.registerReq = req
	return f.registerErr
}

func (f *fakeSession) Logout(ctx context.Context) error {
	f.logoutCalled = true
	f.user = nil
	f.profile = nil
	return nil
}

func (f *fakeSession) FetchUser(ctx context.Context) error {
	f.fetchCount++
	return f.fetchErr
}

func (f *fakeSession) Restore(ctx context.Context) error {
	f.restoreCalled = true
	return nil
}

func (f *fakeSession) User() *models.User       { return f.user }
func (f *fakeSession) Profile() *models.Profile { return f.profile }
func (f *fakeSession) IsAuthenticated() bool    { return f.user != nil }

type fakeBS struct {
	searchQuery string
	searchPage  int
	repos       []models.Repo

	feedPage int
	posts    []models.Post

	jobsFilter models.JobFilter
	jobs       []models.Job

	applyJobID  string
	applyLetter string
	applyErr    error

	updated    *models.Profile
	updateErr  error
	pagination *models.Pagination
}

func (f *fakeBS) SearchRepositories(ctx context.Context, query string, page int) ([]models.Repo, *models.Pagination, error) {
	f.searchQuery = query
	f.searchPage = page
	return f.repos, f.pagination, nil
}

func (f *fakeBS) Feed(ctx context.Context, page int) ([]models.Post, *models.Pagination, error) {
	f.feedPage = page
	return f.posts, f.pagination, nil
}

func (f *fakeBS) Jobs(ctx context.Context, filter models.JobFilter) ([]models.Job, *models.Pagination, error) {
	f.jobsFilter = filter
	return f.jobs, f.pagination, nil
}

func (f *fakeBS) Apply(ctx context.Context, jobID, coverLetter string) error {
	f.applyJobID = jobID
	f.applyLetter = coverLetter
	return f.applyErr
}

func (f *fakeBS) UpdateProfile(ctx context.Context, profile *models.Profile) (*models.Profile, error) {
	f.updated = profile
	return profile, f.updateErr
}

// fakeAPIClient only tracks Close; the embedded interface covers the rest.
type fakeAPIClient struct {
	api.Client
	closed bool
}

func (f *fakeAPIClient) Close() error {
	f.closed = true
	return nil
}

// ------------ tests ------------

func TestClose_ReleasesAPIClient(t *testing.T) {
	fc := &fakeAPIClient{}
	app := &App{api: fc}

	app.Close()

	require.True(t, fc.closed)
}

func TestLogin_PassesCredentials(t *testing.T) {
	stubPassword(t, "pw123456")
	fs := &fakeSession{}
	app, out := newTestApp(fs, &fakeBS{}, readerFromLines("a@b.com"))

	require.NoError(t, app.Login(context.Background()))
	require.Equal(t, "a@b.com", fs.loginEmail)
	require.Equal(t, "pw123456", fs.loginPassword)
	require.Contains(t, out.String(), "Logged in as alice")
}

func TestLogin_ErrorPropagates(t *testing.T) {
	stubPassword(t, "pw")
	fs := &fakeSession{loginErr: errors.New("invalid credentials")}
	app, _ := newTestApp(fs, &fakeBS{}, readerFromLines("a@b.com"))

	require.Error(t, app.Login(context.Background()))
}

func TestRegister_Developer(t *testing.T) {
	stubPassword(t, "pw123456")
	fs := &fakeSession{}
	app, out := newTestApp(fs, &fakeBS{}, readerFromLines(
		"alice",     // username
		"a@b.com",   // email
		"developer", // role
	))

	require.NoError(t, app.Register(context.Background()))
	require.Equal(t, "alice", fs.registerReq.Username)
	require.Equal(t, models.RoleDeveloper, fs.registerReq.Role)
	require.Empty(t, fs.registerReq.CompanyName)
	require.Contains(t, out.String(), "Success!")
}

func TestRegister_RecruiterPromptsCompany(t *testing.T) {
	stubPassword(t, "pw123456")
	fs := &fakeSession{}
	app, _ := newTestApp(fs, &fakeBS{}, readerFromLines(
		"bob",
		"b@c.com",
		"recruiter",
		"Acme Inc",
	))

	require.NoError(t, app.Register(context.Background()))
	require.Equal(t, models.RoleRecruiter, fs.registerReq.Role)
	require.Equal(t, "Acme Inc", fs.registerReq.CompanyName)
}

func TestRegister_UnknownRole(t *testing.T) {
	fs := &fakeSession{}
	app, _ := newTestApp(fs, &fakeBS{}, readerFromLines("alice", "a@b.com", "wizard"))

	require.Error(t, app.Register(context.Background()))
	require.Empty(t, fs.registerReq.Username)
}

func TestLogout(t *testing.T) {
	fs := &fakeSession{user: &models.User{Username: "alice"}}
	app, out := newTestApp(fs, &fakeBS{}, readerFromLines())

	require.NoError(t, app.Logout(context.Background()))
	require.True(t, fs.logoutCalled)
	require.Contains(t, out.String(), "Logged out")
}

func TestWhoAmI_PrintsAccount(t *testing.T) {
	fs := &fakeSession{
		user:    &models.User{Username: "alice", Email: "a@b.com", Role: models.RoleDeveloper},
		profile: &models.Profile{Headline: "Gopher", Skills: []string{"go", "sql"}},
	}
	app, out := newTestApp(fs, &fakeBS{}, readerFromLines())

	require.NoError(t, app.WhoAmI(context.Background()))
	require.Equal(t, 1, fs.fetchCount)
	require.Contains(t, out.String(), "alice <a@b.com> (DEVELOPER)")
	require.Contains(t, out.String(), "Gopher")
	require.Contains(t, out.String(), "go, sql")
}

func TestWhoAmI_NotLoggedIn(t *testing.T) {
	fs := &fakeSession{}
	app, out := newTestApp(fs, &fakeBS{}, readerFromLines())

	require.NoError(t, app.WhoAmI(context.Background()))
	require.Contains(t, out.String(), "Not logged in")
}

func TestSearch_QueryAndPage(t *testing.T) {
	bs := &fakeBS{
		repos:      []models.Repo{{FullName: "golang/go", Stars: 120000, Language: "Go"}},
		pagination: &models.Pagination{Page: 2, TotalPages: 5, Total: 42},
	}
	app, out := newTestApp(&fakeSession{}, bs, readerFromLines())

	require.NoError(t, app.Search(context.Background(), []string{"http", "router", "-p", "2"}))
	require.Equal(t, "http router", bs.searchQuery)
	require.Equal(t, 2, bs.searchPage)
	require.Contains(t, out.String(), "golang/go")
	require.Contains(t, out.String(), "page 2/5 (42 total)")
}

func TestFeed_DefaultsToFirstPage(t *testing.T) {
	bs := &fakeBS{posts: []models.Post{{Author: models.User{Username: "bob"}, Body: "hi"}}}
	app, out := newTestApp(&fakeSession{}, bs, readerFromLines())

	require.NoError(t, app.Feed(context.Background(), nil))
	require.Equal(t, 1, bs.feedPage)
	require.Contains(t, out.String(), "@bob")
}

func TestJobs_ParsesFilterFlags(t *testing.T) {
	bs := &fakeBS{jobs: []models.Job{{ID: "j1", Title: "Go Dev", CompanyName: "Acme", Remote: true}}}
	app, out := newTestApp(&fakeSession{}, bs, readerFromLines())

	require.NoError(t, app.Jobs(context.Background(), []string{"backend", "go", "-l", "Berlin", "-r", "-p", "3"}))
	require.Equal(t, "backend go", bs.jobsFilter.Query)
	require.Equal(t, "Berlin", bs.jobsFilter.Location)
	require.NotNil(t, bs.jobsFilter.Remote)
	require.True(t, *bs.jobsFilter.Remote)
	require.Equal(t, 3, bs.jobsFilter.Page)
	require.Contains(t, out.String(), "Go Dev")
	require.Contains(t, out.String(), "(remote)")
}

func TestApply_ReadsCoverLetter(t *testing.T) {
	bs := &fakeBS{}
	app, out := newTestApp(&fakeSession{}, bs, readerFromLines("Dear team,", "I build things.", ""))

	require.NoError(t, app.Apply(context.Background(), []string{"j42"}))
	require.Equal(t, "j42", bs.applyJobID)
	require.Equal(t, "Dear team,\nI build things.", bs.applyLetter)
	require.Contains(t, out.String(), "Application submitted")
}

func TestApply_NoArgsPrintsUsage(t *testing.T) {
	bs := &fakeBS{}
	app, out := newTestApp(&fakeSession{}, bs, readerFromLines())

	require.NoError(t, app.Apply(context.Background(), nil))
	require.Empty(t, bs.applyJobID)
	require.Contains(t, out.String(), "Usage: apply")
}

func TestEditProfile_MergesAndRefreshes(t *testing.T) {
	fs := &fakeSession{
		user:    &models.User{Username: "alice"},
		profile: &models.Profile{Headline: "Old headline", Location: "Riga"},
	}
	bs := &fakeBS{}
	app, out := newTestApp(fs, bs, readerFromLines(
		"New headline", // headline
		"",             // bio (keep)
		"go, grpc",     // skills
		"",             // location (keep)
		"",
	))

	require.NoError(t, app.EditProfile(context.Background()))
	require.NotNil(t, bs.updated)
	require.Equal(t, "New headline", bs.updated.Headline)
	require.Equal(t, []string{"go", "grpc"}, bs.updated.Skills)
	require.Equal(t, "Riga", bs.updated.Location)
	require.Equal(t, 1, fs.fetchCount)
	require.Contains(t, out.String(), "Profile updated")
}

func TestRoot_HelpAndExit(t *testing.T) {
	fs := &fakeSession{user: &models.User{Username: "alice"}}
	app, out := newTestApp(fs, &fakeBS{}, readerFromLines("help", "exit"))

	app.Root(context.Background())

	require.Contains(t, out.String(), "devmatch (alice)>")
	require.Contains(t, out.String(), "whoami")
	require.Contains(t, out.String(), "Bye!")
}

func TestRoot_UnknownCommand(t *testing.T) {
	app, out := newTestApp(&fakeSession{}, &fakeBS{}, readerFromLines("frobnicate", "quit"))

	app.Root(context.Background())

	require.Contains(t, out.String(), "Unknown command: frobnicate")
}

func TestRoot_CommandErrorIsPrinted(t *testing.T) {
	stubPassword(t, "pw")
	fs := &fakeSession{loginErr: errors.New("invalid credentials")}
	app, out := newTestApp(fs, &fakeBS{}, readerFromLines("login", "a@b.com", "exit"))

	app.Root(context.Background())

	require.Contains(t, out.String(), "Error: invalid credentials")
}
