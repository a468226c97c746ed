package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v3"
	"golang.org/x/term"
)

func loginCommand() *cli.Command {
	return &cli.Command{
		Name:  "login",
		Usage: "Sign in and store the access token",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "username", Aliases: []string{"u"}},
			&cli.StringFlag{Name: "password", Aliases: []string{"p"}, Sources: cli.EnvVars("CASEDESK_PASSWORD")},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			a, err := newApp(ctx, cmd)
			if err != nil {
				return err
			}
			username := cmd.String("username")
			if username == "" {
				if username, err = prompt("Username: "); err != nil {
					return err
				}
			}
			password := cmd.String("password")
			if password == "" {
				if password, err = promptPassword("Password: "); err != nil {
					return err
				}
			}
			if err := a.session.Login(ctx, username, password); err != nil {
				return err
			}
			u := a.session.User()
			fmt.Fprintf(a.out, "logged in as %s (%s)\n", u.Username, u.Role)
			return nil
		},
	}
}

func logoutCommand() *cli.Command {
	return &cli.Command{
		Name:  "logout",
		Usage: "Revoke and forget the stored token",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			a, err := newApp(ctx, cmd)
			if err != nil {
				return err
			}
			a.session.Logout(ctx)
			fmt.Fprintln(a.out, "logged out")
			return nil
		},
	}
}

func whoamiCommand() *cli.Command {
	return &cli.Command{
		Name:  "whoami",
		Usage: "Show the signed-in user",
		Action: authed(func(ctx context.Context, a *app, cmd *cli.Command) error {
			u := a.session.User()
			if a.asJSON {
				return a.printJSON(u)
			}
			a.fields(
				"ID", fmtID(u.ID),
				"Username", u.Username,
				"Email", u.Email,
				"Role", u.Role,
			)
			return nil
		}),
	}
}

func prompt(label string) (string, error) {
	fmt.Fprint(os.Stderr, label)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func promptPassword(label string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", errors.New("password is required: pass --password or set CASEDESK_PASSWORD")
	}
	fmt.Fprint(os.Stderr, label)
	b, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(b), nil
}
