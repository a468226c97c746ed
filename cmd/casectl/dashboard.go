package main

import (
	"context"
	"strconv"

	"github.com/urfave/cli/v3"

	"github.com/starford/casedesk/internal/models"
)

func dashboardCommand() *cli.Command {
	return &cli.Command{
		Name:  "dashboard",
		Usage: "Show record totals and the case status distribution",
		Action: authed(func(ctx context.Context, a *app, cmd *cli.Command) error {
			sum, err := a.client.Dashboard.Summary(ctx)
			if err != nil {
				return err
			}
			if a.asJSON {
				return a.printJSON(sum)
			}
			a.fields(
				"Cases", strconv.Itoa(sum.TotalCases),
				"Customers", strconv.Itoa(sum.TotalCustomers),
				"Investigations", strconv.Itoa(sum.TotalInvestigations),
				"Targets", strconv.Itoa(sum.TotalTargets),
			)
			a.heading("Case status")
			rows := make([][]string, 0, len(models.Statuses))
			for _, s := range models.Statuses {
				rows = append(rows, []string{statusLabel(s), strconv.Itoa(sum.CaseStatus[s])})
			}
			a.table([]string{"STATUS", "CASES"}, rows)
			return nil
		}),
	}
}
