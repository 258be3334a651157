package cli

import (
	"context"
	"fmt"
	"strings"
)

func (a *App) getStatus() string {
	if u := a.session.User(); u != nil {
		return fmt.Sprintf("(%s)", u.Username)
	}
	return ""
}

// Root runs the read-eval-print loop. It reads a line, parses the first token
// as the command, and dispatches to methods on the App. The loop exits on EOF
// or when the user types "exit" or "quit". Errors returned by command
// handlers are printed and the loop continues.
func (a *App) Root(ctx context.Context) {
	fmt.Fprintln(a.out, "Welcome to DevMatch CLI (type 'help' for commands)")

	for {
		fmt.Fprintf(a.out, "devmatch %s> ", a.getStatus())
		// Commands share a.reader with the interactive prompts, so the loop
		// must not buffer ahead of them.
		line, readErr := a.reader.ReadString('\n')
		if readErr != nil && line == "" {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		cmd := parts[0]
		args := parts[1:]

		var err error
		switch cmd {
		case "help":
			if a.isLoggedIn() {
				fmt.Fprintln(a.out, "Available commands: search, feed, jobs, apply, whoami, profile, logout, exit")
			} else {
				fmt.Fprintln(a.out, "Available commands: register, login, search, jobs, exit")
			}

		case "register":
			err = a.Register(ctx)
		case "login":
			err = a.Login(ctx)
		case "logout":
			err = a.Logout(ctx)
		case "whoami", "me":
			err = a.WhoAmI(ctx)
		case "profile":
			err = a.EditProfile(ctx)
		case "search":
			err = a.Search(ctx, args)
		case "feed":
			err = a.Feed(ctx, args)
		case "jobs":
			err = a.Jobs(ctx, args)
		case "apply":
			err = a.Apply(ctx, args)
		case "exit", "quit":
			fmt.Fprintln(a.out, "Bye!")
			return
		default:
			fmt.Fprintln(a.out, "Unknown command:", cmd)
		}

		if err != nil {
			fmt.Fprintln(a.out, "Error:", err)
		}
	}
}
