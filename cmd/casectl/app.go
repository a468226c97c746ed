package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/urfave/cli/v3"

	"github.com/starford/casedesk/internal/models"
	"github.com/starford/casedesk/pkg/client"
)

const timeLayout = "2006-01-02 15:04"

var errNotLoggedIn = errors.New("not logged in: run `casectl login` first")

// app is the per-invocation state shared by every command.
type app struct {
	client  *client.Client
	session *client.Session
	out     io.Writer
	asJSON  bool
}

// newApp builds the client, restores the stored session and returns the app.
func newApp(ctx context.Context, cmd *cli.Command) (*app, error) {
	store, err := tokenStore(cmd)
	if err != nil {
		return nil, err
	}
	root := cmd.Root()
	a := &app{
		client: client.New(client.WithBaseURL(cmd.String("server"))),
		out:    root.Writer,
		asJSON: cmd.Bool("json"),
	}
	a.session = client.NewSession(a.client, store,
		client.WithOnLogout(func() {
			fmt.Fprintln(root.ErrWriter, "session ended, log in again")
		}),
	)
	if err := a.session.Init(ctx); err != nil {
		return nil, err
	}
	return a, nil
}

func tokenStore(cmd *cli.Command) (client.TokenStore, error) {
	path := cmd.String("token-file")
	if path == "" {
		var err error
		if path, err = client.DefaultTokenPath(); err != nil {
			return nil, err
		}
	}
	return client.NewFileTokenStore(path), nil
}

// authed wraps an action that needs a signed-in user.
func authed(fn func(ctx context.Context, a *app, cmd *cli.Command) error) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		a, err := newApp(ctx, cmd)
		if err != nil {
			return err
		}
		if !a.session.IsAuthenticated() {
			return errNotLoggedIn
		}
		return fn(ctx, a, cmd)
	}
}

func (a *app) printJSON(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// table writes rows under a header, padded into columns.
func (a *app) table(header []string, rows [][]string) {
	w := tabwriter.NewWriter(a.out, 0, 0, 3, ' ', 0)
	for i, h := range header {
		if i > 0 {
			fmt.Fprint(w, "\t")
		}
		fmt.Fprint(w, h)
	}
	fmt.Fprintln(w)
	for _, row := range rows {
		for i, cell := range row {
			if i > 0 {
				fmt.Fprint(w, "\t")
			}
			fmt.Fprint(w, cell)
		}
		fmt.Fprintln(w)
	}
	_ = w.Flush()
}

// fields writes label/value pairs, one per line.
func (a *app) fields(pairs ...string) {
	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	for i := 0; i+1 < len(pairs); i += 2 {
		fmt.Fprintf(w, "%s:\t%s\n", pairs[i], pairs[i+1])
	}
	_ = w.Flush()
}

func (a *app) pagination(p models.Pagination) {
	fmt.Fprintf(a.out, "page %d of %d (%d total)\n", p.Page, max(p.Pages, 1), p.Total)
}

func (a *app) heading(s string) {
	fmt.Fprintln(a.out)
	fmt.Fprintln(a.out, color.New(color.Bold).Sprint(s))
}

var statusColors = map[models.Status]*color.Color{
	models.StatusOpen:       color.New(color.FgGreen),
	models.StatusInProgress: color.New(color.FgYellow),
	models.StatusClosed:     color.New(color.FgHiBlack),
	models.StatusOnHold:     color.New(color.FgMagenta),
}

func statusLabel(s models.Status) string {
	if c, ok := statusColors[s]; ok {
		return c.Sprint(string(s))
	}
	return string(s)
}

func fmtID(v int64) string {
	return strconv.FormatInt(v, 10)
}

func date(d *models.Date) string {
	if d == nil {
		return "-"
	}
	return d.String()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// argID parses the first positional argument as a record id.
func argID(cmd *cli.Command) (int64, error) {
	raw := cmd.Args().First()
	if raw == "" {
		return 0, errors.New("record id is required")
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("invalid record id %q", raw)
	}
	return v, nil
}
