package main

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/starford/casedesk/internal/models"
)

var errNoEntities = errors.New("select at least one entity type to search")

var searchTextFilters = []string{
	"name", "status", "description", "email", "phone", "address",
	"title", "type", "details", "customer-name", "target-name",
}

func searchCommand() *cli.Command {
	flags := pageFlags(
		&cli.BoolFlag{Name: models.EntityCases, Value: true, Usage: "include cases"},
		&cli.BoolFlag{Name: models.EntityCustomers, Value: true, Usage: "include customers"},
		&cli.BoolFlag{Name: models.EntityInvestigations, Value: true, Usage: "include investigations"},
		&cli.BoolFlag{Name: models.EntityTargets, Value: true, Usage: "include targets"},
		&cli.IntFlag{Name: "case", Usage: "case_id filter for customers and investigations"},
		&cli.IntFlag{Name: "investigation", Usage: "investigation_id filter for targets"},
		&cli.BoolFlag{Name: "cross-entity", Usage: "match cases by customer name and investigations by target name"},
	)
	for _, name := range searchTextFilters {
		flags = append(flags, &cli.StringFlag{Name: name})
	}

	return &cli.Command{
		Name:  "search",
		Usage: "Search across cases, customers, investigations and targets",
		Flags: flags,
		Action: authed(func(ctx context.Context, a *app, cmd *cli.Command) error {
			params, err := searchParams(cmd)
			if err != nil {
				return err
			}
			p, per := page(cmd)
			res, err := a.client.Search.Advanced(ctx, params, p, per)
			if err != nil {
				return err
			}
			if a.asJSON {
				return a.printJSON(res)
			}
			a.printResults(params.Entities, res)
			return nil
		}),
	}
}

// searchParams collects the selected entity types and the non-empty filters.
func searchParams(cmd *cli.Command) (models.SearchParams, error) {
	var p models.SearchParams
	for _, e := range models.AllEntities {
		if cmd.Bool(e) {
			p.Entities = append(p.Entities, e)
		}
	}
	if len(p.Entities) == 0 {
		return p, errNoEntities
	}

	text := func(name string) models.Field[string] {
		v := cmd.String(name)
		if v == "" {
			return models.Field[string]{}
		}
		return models.NewField(v)
	}
	p.Name = text("name")
	p.Status = text("status")
	p.Description = text("description")
	p.Email = text("email")
	p.Phone = text("phone")
	p.Address = text("address")
	p.Title = text("title")
	p.Type = text("type")
	p.Details = text("details")
	p.CustomerName = text("customer-name")
	p.TargetName = text("target-name")

	if v := cmd.Int("case"); v != 0 {
		p.CaseID = models.NewField(models.NewSearchID(int64(v)))
	}
	if v := cmd.Int("investigation"); v != 0 {
		p.InvestigationID = models.NewField(models.NewSearchID(int64(v)))
	}
	p.CrossEntity = cmd.Bool("cross-entity")
	return p, nil
}

func resultCount(res *models.SearchResults, entity string) int {
	switch entity {
	case models.EntityCases:
		return len(res.Cases)
	case models.EntityCustomers:
		return len(res.Customers)
	case models.EntityInvestigations:
		return len(res.Investigations)
	case models.EntityTargets:
		return len(res.Targets)
	}
	return 0
}

// sectionOrder lists the selected entity types with the first one that has
// results moved to the front.
func sectionOrder(selected []string, res *models.SearchResults) []string {
	order := slices.Clone(selected)
	i := slices.IndexFunc(order, func(e string) bool { return resultCount(res, e) > 0 })
	if i > 0 {
		first := order[i]
		order = slices.Delete(order, i, i+1)
		order = slices.Insert(order, 0, first)
	}
	return order
}

func (a *app) printResults(selected []string, res *models.SearchResults) {
	for _, e := range sectionOrder(selected, res) {
		a.heading(fmt.Sprintf("%s (%d)", strings.ToUpper(e[:1])+e[1:], resultCount(res, e)))
		switch e {
		case models.EntityCases:
			a.printCases(res.Cases)
		case models.EntityCustomers:
			a.printCustomers(res.Customers)
		case models.EntityInvestigations:
			a.printInvestigations(res.Investigations)
		case models.EntityTargets:
			a.printTargets(res.Targets)
		}
	}
}
