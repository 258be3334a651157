package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/akashshetty1997/devmatch-cli/internal/client/api"
	"github.com/akashshetty1997/devmatch-cli/internal/client/models"
)

// fakeBrowseClient implements the browse surface of api.Client and records
// the arguments of the last call.
type fakeBrowseClient struct {
	api.Client

	SearchRet []models.Repo
	SearchErr error
	JobsRet   []models.Job
	FeedRet   []models.Post
	ApplyErr  error

	LastQuery  string
	LastPage   int
	LastFilter models.JobFilter
	LastJobID  string
	LastLetter string
}

func (f *fakeBrowseClient) SearchRepositories(ctx context.Context, query string, page int) ([]models.Repo, *models.Pagination, error) {
	f.LastQuery = query
	f.LastPage = page
	return f.SearchRet, &models.Pagination{Page: page}, f.SearchErr
}

func (f *fakeBrowseClient) Feed(ctx context.Context, page int) ([]models.Post, *models.Pagination, error) {
	f.LastPage = page
	return f.FeedRet, &models.Pagination{Page: page}, nil
}

func (f *fakeBrowseClient) Jobs(ctx context.Context, filter models.JobFilter) ([]models.Job, *models.Pagination, error) {
	f.LastFilter = filter
	return f.JobsRet, &models.Pagination{Page: filter.Page}, nil
}

func (f *fakeBrowseClient) ApplyToJob(ctx context.Context, jobID, coverLetter string) error {
	f.LastJobID = jobID
	f.LastLetter = coverLetter
	return f.ApplyErr
}

func (f *fakeBrowseClient) UpdateProfile(ctx context.Context, p *models.Profile) (*models.Profile, error) {
	return p, nil
}

func TestSearchRepositories_TrimsQueryAndNormalizesPage(t *testing.T) {
	f := &fakeBrowseClient{SearchRet: []models.Repo{{ID: "r1", FullName: "alice/cliparse"}}}
	svc := NewBrowseService(f)

	repos, pg, err := svc.SearchRepositories(context.Background(), "  cli parser  ", 0)
	require.NoError(t, err)
	require.Equal(t, "cli parser", f.LastQuery)
	require.Equal(t, 1, f.LastPage)
	require.Len(t, repos, 1)
	require.Equal(t, 1, pg.Page)
}

func TestSearchRepositories_EmptyQuery(t *testing.T) {
	svc := NewBrowseService(&fakeBrowseClient{})

	_, _, err := svc.SearchRepositories(context.Background(), "   ", 1)
	require.ErrorIs(t, err, ErrEmptyQuery)
}

func TestSearchRepositories_WrapsClientError(t *testing.T) {
	f := &fakeBrowseClient{SearchErr: api.ErrUnavailable}
	svc := NewBrowseService(f)

	_, _, err := svc.SearchRepositories(context.Background(), "go", 1)
	require.ErrorIs(t, err, api.ErrUnavailable)
}

func TestJobs_NormalizesPage(t *testing.T) {
	f := &fakeBrowseClient{}
	svc := NewBrowseService(f)

	_, _, err := svc.Jobs(context.Background(), models.JobFilter{Query: "go"})
	require.NoError(t, err)
	require.Equal(t, 1, f.LastFilter.Page)
	require.Equal(t, "go", f.LastFilter.Query)
}

func TestApply_RequiresJobID(t *testing.T) {
	svc := NewBrowseService(&fakeBrowseClient{})

	err := svc.Apply(context.Background(), "  ", "letter")
	require.Error(t, err)
}

func TestApply_PassesThrough(t *testing.T) {
	f := &fakeBrowseClient{}
	svc := NewBrowseService(f)

	require.NoError(t, svc.Apply(context.Background(), "j42", "hire me"))
	require.Equal(t, "j42", f.LastJobID)
	require.Equal(t, "hire me", f.LastLetter)
}

func TestApply_WrapsError(t *testing.T) {
	wantErr := errors.New("boom")
	f := &fakeBrowseClient{ApplyErr: wantErr}
	svc := NewBrowseService(f)

	err := svc.Apply(context.Background(), "j42", "")
	require.ErrorIs(t, err, wantErr)
	require.Contains(t, err.Error(), "j42")
}
