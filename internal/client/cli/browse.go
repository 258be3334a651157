package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/akashshetty1997/devmatch-cli/internal/client/models"
)

// getMultiline is an indirection over GetMultiline, replaceable in tests.
var getMultiline = GetMultiline

func parsePage(args []string) int {
	for i, a := range args {
		if a == "-p" && i+1 < len(args) {
			if n, err := strconv.Atoi(args[i+1]); err == nil {
				return n
			}
		}
	}
	return 1
}

func (a *App) printPagination(pg *models.Pagination) {
	if pg == nil {
		return
	}
	fmt.Fprintf(a.out, "page %d/%d (%d total)\n", pg.Page, pg.TotalPages, pg.Total)
}

// Search runs a repository search. Usage: search <query> [-p page]
func (a *App) Search(ctx context.Context, args []string) error {
	var terms []string
	for i := 0; i < len(args); i++ {
		if args[i] == "-p" {
			i++
			continue
		}
		terms = append(terms, args[i])
	}
	query := strings.Join(terms, " ")

	repos, pg, err := a.browse.SearchRepositories(ctx, query, parsePage(args))
	if err != nil {
		return err
	}

	for _, r := range repos {
		fmt.Fprintf(a.out, "%-40s ★%-6d %s\n", r.FullName, r.Stars, r.Language)
		if r.Description != "" {
			fmt.Fprintf(a.out, "  %s\n", r.Description)
		}
	}
	a.printPagination(pg)
	return nil
}

// Feed prints one page of the social feed. Usage: feed [-p page]
func (a *App) Feed(ctx context.Context, args []string) error {
	posts, pg, err := a.browse.Feed(ctx, parsePage(args))
	if err != nil {
		return err
	}

	for _, p := range posts {
		fmt.Fprintf(a.out, "@%s (%d likes, %s)\n", p.Author.Username, p.Likes, p.CreatedAt.Format("2006-01-02"))
		fmt.Fprintf(a.out, "  %s\n", p.Body)
	}
	a.printPagination(pg)
	return nil
}

// Jobs lists job postings. Usage: jobs [query terms] [-l location] [-r] [-p page]
func (a *App) Jobs(ctx context.Context, args []string) error {
	filter := models.JobFilter{Page: parsePage(args)}
	var terms []string
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "-p":
			i++
		case "-l":
			if i+1 < len(args) {
				i++
				filter.Location = args[i]
			}
		case "-r":
			remote := true
			filter.Remote = &remote
		default:
			terms = append(terms, args[i])
		}
	}
	filter.Query = strings.Join(terms, " ")

	jobs, pg, err := a.browse.Jobs(ctx, filter)
	if err != nil {
		return err
	}

	for _, j := range jobs {
		loc := j.Location
		if j.Remote {
			loc = strings.TrimSpace(loc + " (remote)")
		}
		fmt.Fprintf(a.out, "[%s] %s — %s %s\n", j.ID, j.Title, j.CompanyName, loc)
		if j.SalaryMax > 0 {
			fmt.Fprintf(a.out, "  $%d–$%d\n", j.SalaryMin, j.SalaryMax)
		}
	}
	a.printPagination(pg)
	return nil
}

// Apply submits a job application with an interactively entered cover letter.
// Usage: apply <job-id>
func (a *App) Apply(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprintln(a.out, "Usage: apply <job-id>")
		return nil
	}

	letter, err := getMultiline(a.reader, "Cover letter", a.out)
	if err != nil {
		return err
	}

	if err := a.browse.Apply(ctx, args[0], letter); err != nil {
		return err
	}

	fmt.Fprintln(a.out, "Application submitted")
	return nil
}

// EditProfile interactively edits and saves the current profile. Fields left
// blank keep their previous value.
func (a *App) EditProfile(ctx context.Context) error {
	current := a.session.Profile()
	if current == nil {
		current = &models.Profile{}
	}
	updated := *current

	headline, err := getSimpleText(a.reader, fmt.Sprintf("Headline [%s]", current.Headline), a.out)
	if err != nil {
		return err
	}
	if headline != "" {
		updated.Headline = headline
	}

	bio, err := getMultiline(a.reader, "Bio", a.out)
	if err != nil {
		return err
	}
	if bio != "" {
		updated.Bio = bio
	}

	skills, err := getSimpleText(a.reader, fmt.Sprintf("Skills, comma-separated [%s]", strings.Join(current.Skills, ",")), a.out)
	if err != nil {
		return err
	}
	if skills != "" {
		updated.Skills = nil
		for _, s := range strings.Split(skills, ",") {
			if s = strings.TrimSpace(s); s != "" {
				updated.Skills = append(updated.Skills, s)
			}
		}
	}

	location, err := getSimpleText(a.reader, fmt.Sprintf("Location [%s]", current.Location), a.out)
	if err != nil {
		return err
	}
	if location != "" {
		updated.Location = location
	}

	if _, err := a.browse.UpdateProfile(ctx, &updated); err != nil {
		return err
	}

	// Re-derive the cached account and profile from the backend.
	if err := a.session.FetchUser(ctx); err != nil {
		return err
	}

	fmt.Fprintln(a.out, "Profile updated")
	return nil
}
