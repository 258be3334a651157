// Package services contains application services for the DevMatch client.
// This file defines the browse service: repository search, the social feed,
// and job listings/applications, all read through the shared API client.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/akashshetty1997/devmatch-cli/internal/client/api"
	"github.com/akashshetty1997/devmatch-cli/internal/client/models"
)

var ErrEmptyQuery = errors.New("empty query")

// BrowseService defines the non-auth operations of the CLI.
//
// Contract:
//   - SearchRepositories: paginated repository search; the query must be
//     non-blank.
//   - Feed: one page of the social feed.
//   - Jobs: one page of job postings matching the filter.
//   - Apply: submit an application for a job posting.
//   - UpdateProfile: replace the current user's profile.
//
// All methods must honor context cancellation/timeouts.
type BrowseService interface {
	SearchRepositories(ctx context.Context, query string, page int) ([]models.Repo, *models.Pagination, error)
	Feed(ctx context.Context, page int) ([]models.Post, *models.Pagination, error)
	Jobs(ctx context.Context, filter models.JobFilter) ([]models.Job, *models.Pagination, error)
	Apply(ctx context.Context, jobID, coverLetter string) error
	UpdateProfile(ctx context.Context, profile *models.Profile) (*models.Profile, error)
}

type browseService struct {
	client api.Client
}

// NewBrowseService constructs a BrowseService bound to the given API client.
func NewBrowseService(client api.Client) BrowseService {
	return &browseService{client: client}
}

func (b *browseService) SearchRepositories(ctx context.Context, query string, page int) ([]models.Repo, *models.Pagination, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil, ErrEmptyQuery
	}
	if page < 1 {
		page = 1
	}
	repos, pg, err := b.client.SearchRepositories(ctx, query, page)
	if err != nil {
		return nil, nil, fmt.Errorf("search repositories: %w", err)
	}
	return repos, pg, nil
}

func (b *browseService) Feed(ctx context.Context, page int) ([]models.Post, *models.Pagination, error) {
	if page < 1 {
		page = 1
	}
	posts, pg, err := b.client.Feed(ctx, page)
	if err != nil {
		return nil, nil, fmt.Errorf("feed: %w", err)
	}
	return posts, pg, nil
}

func (b *browseService) Jobs(ctx context.Context, filter models.JobFilter) ([]models.Job, *models.Pagination, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	jobs, pg, err := b.client.Jobs(ctx, filter)
	if err != nil {
		return nil, nil, fmt.Errorf("jobs: %w", err)
	}
	return jobs, pg, nil
}

func (b *browseService) Apply(ctx context.Context, jobID, coverLetter string) error {
	if strings.TrimSpace(jobID) == "" {
		return errors.New("job id required")
	}
	if err := b.client.ApplyToJob(ctx, jobID, coverLetter); err != nil {
		return fmt.Errorf("apply to job %s: %w", jobID, err)
	}
	return nil
}

func (b *browseService) UpdateProfile(ctx context.Context, profile *models.Profile) (*models.Profile, error) {
	updated, err := b.client.UpdateProfile(ctx, profile)
	if err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return updated, nil
}
