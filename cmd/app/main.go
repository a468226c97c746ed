package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/casedesk/internal"
	"github.com/starford/casedesk/internal/models"
	pkgconfig "github.com/starford/casedesk/pkg/config"
)

var version = "dev"

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.Load(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.Bool("seed") {
		cfg.Seed.OnStart = true
	}

	opts := []internal.Option{
		internal.WithConfig(cfg),
	}
	if cmd.Bool("watch-config") {
		opts = append(opts, internal.WithConfigPath(cmd.String("config")))
	}

	if err := internal.Run(ctx, opts...); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func seedDB(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return internal.Seed(ctx, internal.WithConfig(cfg))
}

func serveMCP(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return internal.ServeMCP(ctx, version, internal.WithConfig(cfg))
}

func showConfig(_ context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	data, err := pkgconfig.Marshal(cfg.Redacted())
	if err != nil {
		return err
	}
	_, err = cmd.Root().Writer.Write(data)
	return err
}

func addUser(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	u, err := internal.AddUser(ctx, models.UserInput{
		Username: cmd.String("username"),
		Email:    cmd.String("email"),
		Password: cmd.String("password"),
		Role:     cmd.String("role"),
	}, internal.WithConfig(cfg))
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.Root().Writer, "created user %d (%s, %s)\n", u.ID, u.Username, u.Role)
	return nil
}

func main() {
	serveFlags := []cli.Flag{
		&cli.BoolFlag{
			Name:  "seed",
			Usage: "Seed demo data into an empty database before serving",
		},
		&cli.BoolFlag{
			Name:    "watch-config",
			Usage:   "Reload the log level when the config file changes",
			Value:   true,
			Sources: cli.EnvVars("APP_WATCH_CONFIG"),
		},
	}

	cmd := &cli.Command{
		Name:    "casedesk",
		Usage:   "Case management backend: cases, customers, investigations and targets over a REST API",
		Version: version,
		Action:  serve,
		Flags: append([]cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
		}, serveFlags...),
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP API (default)",
				Flags:  serveFlags,
				Action: serve,
			},
			{
				Name:   "seed",
				Usage:  "Create the demo accounts and sample records if no user exists",
				Action: seedDB,
			},
			{
				Name:   "mcp",
				Usage:  "Serve read and search tools over MCP on stdio",
				Action: serveMCP,
			},
			{
				Name:   "config",
				Usage:  "Print the effective configuration with secrets masked",
				Action: showConfig,
			},
			{
				Name:  "user",
				Usage: "Manage accounts",
				Commands: []*cli.Command{
					{
						Name:   "add",
						Usage:  "Create an account",
						Action: addUser,
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "username", Required: true},
							&cli.StringFlag{Name: "email", Required: true},
							&cli.StringFlag{Name: "password", Required: true, Sources: cli.EnvVars("CASEDESK_NEW_PASSWORD")},
							&cli.StringFlag{Name: "role", Value: models.RoleGeneral, Usage: "admin or general"},
						},
					},
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
