// Package cli implements the interactive ops client: a small REPL for
// exercising the authgate API (register, confirm, login, profile) from a
// terminal.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sergeyk-dev/authgate/internal/client/api"
	"github.com/sergeyk-dev/authgate/internal/client/config"
)

type App struct {
	client *api.Client
	in     *bufio.Reader
	out    io.Writer
}

func NewApp(cfg *config.Config) *App {
	return &App{
		client: api.New(cfg.ServerURL),
		in:     bufio.NewReader(os.Stdin),
		out:    os.Stdout,
	}
}

// Run reads commands until "exit" or EOF.
func (a *App) Run() {
	fmt.Fprintln(a.out, "authgate cli — commands: register, confirm, login, profile, update, exit")

	for {
		cmd, err := GetSimpleText(a.in, "Enter command", a.out)
		if err != nil {
			return
		}

		switch strings.ToLower(cmd) {
		case "register":
			a.register()
		case "confirm":
			a.confirm()
		case "login":
			a.login()
		case "profile":
			a.profile()
		case "update":
			a.updateProfile()
		case "exit", "quit":
			return
		case "":
		default:
			fmt.Fprintf(a.out, "unknown command %q\n", cmd)
		}
	}
}

func (a *App) register() {
	username, err := GetSimpleText(a.in, "Enter username", a.out)
	if err != nil {
		fmt.Fprintln(a.out, err.Error())
		return
	}
	email, err := GetSimpleText(a.in, "Enter email", a.out)
	if err != nil {
		fmt.Fprintln(a.out, err.Error())
		return
	}
	password, err := GetPassword("Enter password", a.out)
	if err != nil {
		fmt.Fprintln(a.out, err.Error())
		return
	}

	resp, err := a.client.SignUp(context.Background(), username, email, password)
	if err != nil {
		fmt.Fprintln(a.out, err.Error())
		return
	}
	fmt.Fprintln(a.out, resp.Message)
}

func (a *App) confirm() {
	username, err := GetSimpleText(a.in, "Enter username", a.out)
	if err != nil {
		fmt.Fprintln(a.out, err.Error())
		return
	}
	code, err := GetSimpleText(a.in, "Enter confirmation code", a.out)
	if err != nil {
		fmt.Fprintln(a.out, err.Error())
		return
	}

	if err := a.client.Confirm(context.Background(), username, code); err != nil {
		fmt.Fprintln(a.out, err.Error())
		return
	}
	fmt.Fprintln(a.out, "Confirmed. You can login now.")
}

func (a *App) login() {
	login, err := GetSimpleText(a.in, "Enter username or email", a.out)
	if err != nil {
		fmt.Fprintln(a.out, err.Error())
		return
	}
	password, err := GetPassword("Enter password", a.out)
	if err != nil {
		fmt.Fprintln(a.out, err.Error())
		return
	}

	user, _, err := a.client.Login(context.Background(), login, password)
	if err != nil {
		fmt.Fprintln(a.out, err.Error())
		return
	}
	fmt.Fprintf(a.out, "Logged in as %s (role %s)\n", user.Username, user.Role)
}

func (a *App) profile() {
	if !a.client.LoggedIn() {
		fmt.Fprintln(a.out, "login first")
		return
	}

	p, err := a.client.Profile(context.Background())
	if err != nil {
		fmt.Fprintln(a.out, err.Error())
		return
	}
	fmt.Fprintf(a.out, "first_name: %s\nlast_name: %s\nnumber: %s\n",
		strOrDash(p.FirstName), strOrDash(p.LastName), strOrDash(p.Number))
}

func (a *App) updateProfile() {
	if !a.client.LoggedIn() {
		fmt.Fprintln(a.out, "login first")
		return
	}

	first, err := GetSimpleText(a.in, "First name", a.out)
	if err != nil {
		fmt.Fprintln(a.out, err.Error())
		return
	}
	last, err := GetSimpleText(a.in, "Last name", a.out)
	if err != nil {
		fmt.Fprintln(a.out, err.Error())
		return
	}
	number, err := GetSimpleText(a.in, "Phone number", a.out)
	if err != nil {
		fmt.Fprintln(a.out, err.Error())
		return
	}

	if _, err := a.client.UpdateProfile(context.Background(), first, last, number); err != nil {
		fmt.Fprintln(a.out, err.Error())
		return
	}
	fmt.Fprintln(a.out, "Profile updated.")
}

func strOrDash(s *string) string {
	if s == nil || *s == "" {
		return "-"
	}
	return *s
}
