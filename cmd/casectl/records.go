package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/urfave/cli/v3"

	"github.com/starford/casedesk/internal/models"
)

// detailPerPage is how many child records a detail view fetches.
const detailPerPage = 100

func pageFlags(extra ...cli.Flag) []cli.Flag {
	return append([]cli.Flag{
		&cli.IntFlag{Name: "page", Value: models.DefaultPage},
		&cli.IntFlag{Name: "per-page", Value: models.DefaultPerPage},
	}, extra...)
}

func statusFlag() cli.Flag {
	return &cli.StringFlag{Name: "status", Usage: "open, in_progress, closed or on_hold"}
}

func page(cmd *cli.Command) (int, int) {
	return int(cmd.Int("page")), int(cmd.Int("per-page"))
}

func stringField(cmd *cli.Command, name string) models.Field[string] {
	if !cmd.IsSet(name) {
		return models.Field[string]{}
	}
	return models.NewField(cmd.String(name))
}

func statusField(cmd *cli.Command) models.Field[models.Status] {
	if !cmd.IsSet("status") {
		return models.Field[models.Status]{}
	}
	return models.NewField(models.Status(cmd.String("status")))
}

func idField(cmd *cli.Command, name string) models.Field[int64] {
	if !cmd.IsSet(name) {
		return models.Field[int64]{}
	}
	return models.NewField(int64(cmd.Int(name)))
}

// crud assembles the list/get/create/update/delete subcommands of one entity.
type crud struct {
	name        string
	list        cli.ActionFunc
	listFlags   []cli.Flag
	get         cli.ActionFunc
	create      cli.ActionFunc
	createFlags []cli.Flag
	update      cli.ActionFunc
	updateFlags []cli.Flag
	remove      func(ctx context.Context, a *app, id int64) error
}

func (c crud) command(usage string) *cli.Command {
	return &cli.Command{
		Name:  c.name,
		Usage: usage,
		Commands: []*cli.Command{
			{Name: "list", Usage: "List " + c.name, Flags: pageFlags(c.listFlags...), Action: c.list},
			{Name: "get", Usage: "Show one record", ArgsUsage: "ID", Action: c.get},
			{Name: "create", Usage: "Create a record", Flags: c.createFlags, Action: c.create},
			{Name: "update", Usage: "Change the given fields of a record", ArgsUsage: "ID", Flags: c.updateFlags, Action: c.update},
			{
				Name: "delete", Usage: "Delete a record", ArgsUsage: "ID",
				Action: authed(func(ctx context.Context, a *app, cmd *cli.Command) error {
					id, err := argID(cmd)
					if err != nil {
						return err
					}
					if err := c.remove(ctx, a, id); err != nil {
						return err
					}
					fmt.Fprintf(a.out, "deleted %d\n", id)
					return nil
				}),
			},
		},
	}
}

// Cases

func casesCommand() *cli.Command {
	flags := func(required bool) []cli.Flag {
		return []cli.Flag{
			&cli.StringFlag{Name: "name", Required: required},
			&cli.StringFlag{Name: "description"},
			statusFlag(),
		}
	}
	return crud{
		name: "cases",
		list: authed(func(ctx context.Context, a *app, cmd *cli.Command) error {
			p, per := page(cmd)
			res, err := a.client.Cases.List(ctx, p, per)
			if err != nil {
				return err
			}
			if a.asJSON {
				return a.printJSON(res)
			}
			a.printCases(res.Items)
			a.pagination(res.Pagination)
			return nil
		}),
		get: authed(func(ctx context.Context, a *app, cmd *cli.Command) error {
			id, err := argID(cmd)
			if err != nil {
				return err
			}
			return a.showCase(ctx, id)
		}),
		createFlags: flags(true),
		create: authed(func(ctx context.Context, a *app, cmd *cli.Command) error {
			c, err := a.client.Cases.Create(ctx, models.CaseInput{
				Name:        cmd.String("name"),
				Description: cmd.String("description"),
				Status:      models.Status(cmd.String("status")),
			})
			if err != nil {
				return err
			}
			return a.showCase(ctx, c.ID)
		}),
		updateFlags: flags(false),
		update: authed(func(ctx context.Context, a *app, cmd *cli.Command) error {
			id, err := argID(cmd)
			if err != nil {
				return err
			}
			if _, err := a.client.Cases.Update(ctx, id, models.CasePatch{
				Name:        stringField(cmd, "name"),
				Description: stringField(cmd, "description"),
				Status:      statusField(cmd),
			}); err != nil {
				return err
			}
			return a.showCase(ctx, id)
		}),
		remove: func(ctx context.Context, a *app, id int64) error {
			return a.client.Cases.Delete(ctx, id)
		},
	}.command("Browse and edit cases")
}

func (a *app) printCases(items []models.Case) {
	rows := make([][]string, 0, len(items))
	for _, c := range items {
		rows = append(rows, []string{fmtID(c.ID), c.Name, statusLabel(c.Status), strconv.Itoa(c.CustomerCount), strconv.Itoa(c.InvestigationCount)})
	}
	a.table([]string{"ID", "NAME", "STATUS", "CUSTOMERS", "INVESTIGATIONS"}, rows)
}

func (a *app) showCase(ctx context.Context, caseID int64) error {
	c, err := a.client.Cases.Get(ctx, caseID)
	if err != nil {
		return err
	}
	customers, err := a.client.Customers.ListByCase(ctx, caseID, 1, detailPerPage)
	if err != nil {
		return err
	}
	investigations, err := a.client.Investigations.ListByCase(ctx, caseID, 1, detailPerPage)
	if err != nil {
		return err
	}
	if a.asJSON {
		return a.printJSON(map[string]any{
			"case":           c,
			"customers":      customers.Items,
			"investigations": investigations.Items,
		})
	}
	a.fields(
		"ID", fmtID(c.ID),
		"Name", c.Name,
		"Description", orDash(c.Description),
		"Status", statusLabel(c.Status),
		"Created", c.CreatedAt.Format(timeLayout),
		"Updated", c.UpdatedAt.Format(timeLayout),
	)
	a.heading("Customers")
	a.printCustomers(customers.Items)
	a.heading("Investigations")
	a.printInvestigations(investigations.Items)
	return nil
}

// Customers

func customersCommand() *cli.Command {
	flags := func(required bool) []cli.Flag {
		return []cli.Flag{
			&cli.IntFlag{Name: "case", Required: required, Usage: "owning case id"},
			&cli.StringFlag{Name: "name", Required: required},
			&cli.StringFlag{Name: "email"},
			&cli.StringFlag{Name: "phone"},
			&cli.StringFlag{Name: "address"},
			statusFlag(),
		}
	}
	return crud{
		name:      "customers",
		listFlags: []cli.Flag{&cli.IntFlag{Name: "case", Usage: "only customers of this case"}},
		list: authed(func(ctx context.Context, a *app, cmd *cli.Command) error {
			p, per := page(cmd)
			var res *models.Page[models.Customer]
			var err error
			if cmd.IsSet("case") {
				res, err = a.client.Customers.ListByCase(ctx, int64(cmd.Int("case")), p, per)
			} else {
				res, err = a.client.Customers.List(ctx, p, per)
			}
			if err != nil {
				return err
			}
			if a.asJSON {
				return a.printJSON(res)
			}
			a.printCustomers(res.Items)
			a.pagination(res.Pagination)
			return nil
		}),
		get: authed(func(ctx context.Context, a *app, cmd *cli.Command) error {
			id, err := argID(cmd)
			if err != nil {
				return err
			}
			return a.showCustomer(ctx, id)
		}),
		createFlags: flags(true),
		create: authed(func(ctx context.Context, a *app, cmd *cli.Command) error {
			c, err := a.client.Customers.Create(ctx, models.CustomerInput{
				CaseID:  int64(cmd.Int("case")),
				Name:    cmd.String("name"),
				Email:   cmd.String("email"),
				Phone:   cmd.String("phone"),
				Address: cmd.String("address"),
				Status:  models.Status(cmd.String("status")),
			})
			if err != nil {
				return err
			}
			return a.showCustomer(ctx, c.ID)
		}),
		updateFlags: flags(false),
		update: authed(func(ctx context.Context, a *app, cmd *cli.Command) error {
			id, err := argID(cmd)
			if err != nil {
				return err
			}
			if _, err := a.client.Customers.Update(ctx, id, models.CustomerPatch{
				CaseID:  idField(cmd, "case"),
				Name:    stringField(cmd, "name"),
				Email:   stringField(cmd, "email"),
				Phone:   stringField(cmd, "phone"),
				Address: stringField(cmd, "address"),
				Status:  statusField(cmd),
			}); err != nil {
				return err
			}
			return a.showCustomer(ctx, id)
		}),
		remove: func(ctx context.Context, a *app, id int64) error {
			return a.client.Customers.Delete(ctx, id)
		},
	}.command("Browse and edit customers")
}

func (a *app) printCustomers(items []models.Customer) {
	rows := make([][]string, 0, len(items))
	for _, c := range items {
		rows = append(rows, []string{fmtID(c.ID), fmtID(c.CaseID), c.Name, orDash(c.Email), orDash(c.Phone), statusLabel(c.Status)})
	}
	a.table([]string{"ID", "CASE", "NAME", "EMAIL", "PHONE", "STATUS"}, rows)
}

func (a *app) showCustomer(ctx context.Context, customerID int64) error {
	c, err := a.client.Customers.Get(ctx, customerID)
	if err != nil {
		return err
	}
	if a.asJSON {
		return a.printJSON(c)
	}
	a.fields(
		"ID", fmtID(c.ID),
		"Case", fmtID(c.CaseID),
		"Name", c.Name,
		"Email", orDash(c.Email),
		"Phone", orDash(c.Phone),
		"Address", orDash(c.Address),
		"Status", statusLabel(c.Status),
		"Created", c.CreatedAt.Format(timeLayout),
		"Updated", c.UpdatedAt.Format(timeLayout),
	)
	return nil
}

// Investigations

func investigationsCommand() *cli.Command {
	flags := func(required bool) []cli.Flag {
		return []cli.Flag{
			&cli.IntFlag{Name: "case", Required: required, Usage: "owning case id"},
			&cli.StringFlag{Name: "title", Required: required},
			&cli.StringFlag{Name: "description"},
			statusFlag(),
			&cli.StringFlag{Name: "start-date", Usage: "YYYY-MM-DD"},
			&cli.StringFlag{Name: "end-date", Usage: "YYYY-MM-DD, empty clears it on update"},
		}
	}
	return crud{
		name:      "investigations",
		listFlags: []cli.Flag{&cli.IntFlag{Name: "case", Usage: "only investigations of this case"}},
		list: authed(func(ctx context.Context, a *app, cmd *cli.Command) error {
			p, per := page(cmd)
			var res *models.Page[models.Investigation]
			var err error
			if cmd.IsSet("case") {
				res, err = a.client.Investigations.ListByCase(ctx, int64(cmd.Int("case")), p, per)
			} else {
				res, err = a.client.Investigations.List(ctx, p, per)
			}
			if err != nil {
				return err
			}
			if a.asJSON {
				return a.printJSON(res)
			}
			a.printInvestigations(res.Items)
			a.pagination(res.Pagination)
			return nil
		}),
		get: authed(func(ctx context.Context, a *app, cmd *cli.Command) error {
			id, err := argID(cmd)
			if err != nil {
				return err
			}
			return a.showInvestigation(ctx, id)
		}),
		createFlags: flags(true),
		create: authed(func(ctx context.Context, a *app, cmd *cli.Command) error {
			inv, err := a.client.Investigations.Create(ctx, models.InvestigationInput{
				CaseID:      int64(cmd.Int("case")),
				Title:       cmd.String("title"),
				Description: cmd.String("description"),
				Status:      models.Status(cmd.String("status")),
				StartDate:   cmd.String("start-date"),
				EndDate:     cmd.String("end-date"),
			})
			if err != nil {
				return err
			}
			return a.showInvestigation(ctx, inv.ID)
		}),
		updateFlags: flags(false),
		update: authed(func(ctx context.Context, a *app, cmd *cli.Command) error {
			id, err := argID(cmd)
			if err != nil {
				return err
			}
			if _, err := a.client.Investigations.Update(ctx, id, models.InvestigationPatch{
				CaseID:      idField(cmd, "case"),
				Title:       stringField(cmd, "title"),
				Description: stringField(cmd, "description"),
				Status:      statusField(cmd),
				StartDate:   stringField(cmd, "start-date"),
				EndDate:     stringField(cmd, "end-date"),
			}); err != nil {
				return err
			}
			return a.showInvestigation(ctx, id)
		}),
		remove: func(ctx context.Context, a *app, id int64) error {
			return a.client.Investigations.Delete(ctx, id)
		},
	}.command("Browse and edit investigations")
}

func (a *app) printInvestigations(items []models.Investigation) {
	rows := make([][]string, 0, len(items))
	for _, inv := range items {
		rows = append(rows, []string{fmtID(inv.ID), fmtID(inv.CaseID), inv.Title, statusLabel(inv.Status), date(inv.StartDate), date(inv.EndDate), strconv.Itoa(inv.TargetCount)})
	}
	a.table([]string{"ID", "CASE", "TITLE", "STATUS", "START", "END", "TARGETS"}, rows)
}

func (a *app) showInvestigation(ctx context.Context, investigationID int64) error {
	inv, err := a.client.Investigations.Get(ctx, investigationID)
	if err != nil {
		return err
	}
	targets, err := a.client.Targets.ListByInvestigation(ctx, investigationID, 1, detailPerPage)
	if err != nil {
		return err
	}
	if a.asJSON {
		return a.printJSON(map[string]any{
			"investigation": inv,
			"targets":       targets.Items,
		})
	}
	a.fields(
		"ID", fmtID(inv.ID),
		"Case", fmtID(inv.CaseID),
		"Title", inv.Title,
		"Description", orDash(inv.Description),
		"Status", statusLabel(inv.Status),
		"Start", date(inv.StartDate),
		"End", date(inv.EndDate),
		"Created", inv.CreatedAt.Format(timeLayout),
		"Updated", inv.UpdatedAt.Format(timeLayout),
	)
	a.heading("Targets")
	a.printTargets(targets.Items)
	return nil
}

// Targets

func targetsCommand() *cli.Command {
	flags := func(required bool) []cli.Flag {
		return []cli.Flag{
			&cli.IntFlag{Name: "investigation", Required: required, Usage: "owning investigation id"},
			&cli.StringFlag{Name: "name", Required: required},
			&cli.StringFlag{Name: "type", Usage: "e.g. person, organization, vehicle"},
			&cli.StringFlag{Name: "details"},
			statusFlag(),
		}
	}
	return crud{
		name:      "targets",
		listFlags: []cli.Flag{&cli.IntFlag{Name: "investigation", Usage: "only targets of this investigation"}},
		list: authed(func(ctx context.Context, a *app, cmd *cli.Command) error {
			p, per := page(cmd)
			var res *models.Page[models.Target]
			var err error
			if cmd.IsSet("investigation") {
				res, err = a.client.Targets.ListByInvestigation(ctx, int64(cmd.Int("investigation")), p, per)
			} else {
				res, err = a.client.Targets.List(ctx, p, per)
			}
			if err != nil {
				return err
			}
			if a.asJSON {
				return a.printJSON(res)
			}
			a.printTargets(res.Items)
			a.pagination(res.Pagination)
			return nil
		}),
		get: authed(func(ctx context.Context, a *app, cmd *cli.Command) error {
			id, err := argID(cmd)
			if err != nil {
				return err
			}
			return a.showTarget(ctx, id)
		}),
		createFlags: flags(true),
		create: authed(func(ctx context.Context, a *app, cmd *cli.Command) error {
			t, err := a.client.Targets.Create(ctx, models.TargetInput{
				InvestigationID: int64(cmd.Int("investigation")),
				Name:            cmd.String("name"),
				Type:            cmd.String("type"),
				Details:         cmd.String("details"),
				Status:          models.Status(cmd.String("status")),
			})
			if err != nil {
				return err
			}
			return a.showTarget(ctx, t.ID)
		}),
		updateFlags: flags(false),
		update: authed(func(ctx context.Context, a *app, cmd *cli.Command) error {
			id, err := argID(cmd)
			if err != nil {
				return err
			}
			if _, err := a.client.Targets.Update(ctx, id, models.TargetPatch{
				InvestigationID: idField(cmd, "investigation"),
				Name:            stringField(cmd, "name"),
				Type:            stringField(cmd, "type"),
				Details:         stringField(cmd, "details"),
				Status:          statusField(cmd),
			}); err != nil {
				return err
			}
			return a.showTarget(ctx, id)
		}),
		remove: func(ctx context.Context, a *app, id int64) error {
			return a.client.Targets.Delete(ctx, id)
		},
	}.command("Browse and edit targets")
}

func (a *app) printTargets(items []models.Target) {
	rows := make([][]string, 0, len(items))
	for _, t := range items {
		rows = append(rows, []string{fmtID(t.ID), fmtID(t.InvestigationID), t.Name, orDash(t.Type), statusLabel(t.Status)})
	}
	a.table([]string{"ID", "INVESTIGATION", "NAME", "TYPE", "STATUS"}, rows)
}

func (a *app) showTarget(ctx context.Context, targetID int64) error {
	t, err := a.client.Targets.Get(ctx, targetID)
	if err != nil {
		return err
	}
	if a.asJSON {
		return a.printJSON(t)
	}
	a.fields(
		"ID", fmtID(t.ID),
		"Investigation", fmtID(t.InvestigationID),
		"Name", t.Name,
		"Type", orDash(t.Type),
		"Details", orDash(t.Details),
		"Status", statusLabel(t.Status),
		"Created", t.CreatedAt.Format(timeLayout),
		"Updated", t.UpdatedAt.Format(timeLayout),
	)
	return nil
}
