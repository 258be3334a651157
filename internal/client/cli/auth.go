package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/akashshetty1997/devmatch-cli/internal/client/api"
	"github.com/akashshetty1997/devmatch-cli/internal/client/models"
	"github.com/akashshetty1997/devmatch-cli/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Login prompts for credentials and authenticates. On success the prompt
// switches to the logged-in state; the error from the session store already
// carries a user-displayable message.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.session.Login(ctx, email, string(password)); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Logged in as %s\n", a.session.User().Username)
	return nil
}

// Register prompts for the registration form and creates an account.
// Recruiter accounts are additionally asked for a company name.
func (a *App) Register(ctx context.Context) error {
	username, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	role, err := getSimpleText(a.reader, "Role (developer/recruiter)", a.out)
	if err != nil {
		return err
	}
	req := api.RegisterRequest{Username: username, Email: email}
	switch strings.ToLower(strings.TrimSpace(role)) {
	case "", "developer":
		req.Role = models.RoleDeveloper
	case "recruiter":
		req.Role = models.RoleRecruiter
		if req.CompanyName, err = getSimpleText(a.reader, "Company name", a.out); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown role %q", role)
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)
	req.Password = string(password)

	if err := a.session.Register(ctx, req); err != nil {
		return err
	}

	fmt.Fprintln(a.out, "Success!")
	return nil
}

// Logout clears the session and every token mirror.
func (a *App) Logout(ctx context.Context) error {
	if err := a.session.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

// WhoAmI refreshes the current user from the backend and prints the account
// with its profile. An invalid session degrades to a "not logged in" notice
// rather than an error.
func (a *App) WhoAmI(ctx context.Context) error {
	if err := a.session.FetchUser(ctx); err != nil {
		return err
	}

	user := a.session.User()
	if user == nil {
		fmt.Fprintln(a.out, "Not logged in")
		return nil
	}

	fmt.Fprintf(a.out, "%s <%s> (%s)\n", user.Username, user.Email, user.Role)
	if p := a.session.Profile(); p != nil {
		if p.Headline != "" {
			fmt.Fprintf(a.out, "  %s\n", p.Headline)
		}
		if len(p.Skills) > 0 {
			fmt.Fprintf(a.out, "  skills: %s\n", strings.Join(p.Skills, ", "))
		}
		if p.CompanyName != "" {
			fmt.Fprintf(a.out, "  company: %s\n", p.CompanyName)
		}
	}
	return nil
}
