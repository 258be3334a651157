package models

import "time"

// Repo is a repository search result.
type Repo struct {
	ID          string `json:"id"`
	FullName    string `json:"fullName"`
	Description string `json:"description,omitempty"`
	Language    string `json:"language,omitempty"`
	Stars       int    `json:"stars"`
	URL         string `json:"url"`
}

// Post is a social feed entry.
type Post struct {
	ID        string    `json:"id"`
	Author    User      `json:"author"`
	Body      string    `json:"body"`
	Likes     int       `json:"likes"`
	CreatedAt time.Time `json:"createdAt"`
}

// Job is a job posting.
type Job struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	CompanyName string    `json:"companyName"`
	Location    string    `json:"location,omitempty"`
	Remote      bool      `json:"remote"`
	SalaryMin   int       `json:"salaryMin,omitempty"`
	SalaryMax   int       `json:"salaryMax,omitempty"`
	Tags        []string  `json:"tags,omitempty"`
	PostedAt    time.Time `json:"postedAt"`
}

// JobFilter narrows a job listing request. Zero values mean "no filter";
// Page below 1 is treated as the first page.
type JobFilter struct {
	Query    string
	Location string
	Remote   *bool
	Page     int
}

// Pagination describes the position of a returned page within a listing.
type Pagination struct {
	Page       int `json:"page"`
	TotalPages int `json:"totalPages"`
	Total      int `json:"total"`
}
