// Command casectl is the terminal front end for a casedesk server.
package main

import (
	"context"
	"fmt"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/casedesk/pkg/client"
)

func rootCommand() *cli.Command {
	return &cli.Command{
		Name:  "casectl",
		Usage: "Browse, edit and search casedesk records",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "server",
				Aliases: []string{"s"},
				Usage:   "API base URL",
				Value:   client.DefaultBaseURL,
				Sources: cli.EnvVars("CASEDESK_API_URL"),
			},
			&cli.StringFlag{
				Name:    "token-file",
				Usage:   "Where the access token is kept (default: user config dir)",
				Sources: cli.EnvVars("CASEDESK_TOKEN_FILE"),
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Print raw JSON instead of tables",
			},
		},
		Commands: []*cli.Command{
			loginCommand(),
			logoutCommand(),
			whoamiCommand(),
			dashboardCommand(),
			casesCommand(),
			customersCommand(),
			investigationsCommand(),
			targetsCommand(),
			searchCommand(),
		},
	}
}

func main() {
	if err := rootCommand().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
