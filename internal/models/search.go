package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Entity names accepted by the advanced search.
const (
	EntityCases          = "cases"
	EntityCustomers      = "customers"
	EntityInvestigations = "investigations"
	EntityTargets        = "targets"
)

// AllEntities is the default entity selection.
var AllEntities = []string{EntityCases, EntityCustomers, EntityInvestigations, EntityTargets}

// SearchParams is the body of an advanced search. A filter applies only when
// its key was sent.
type SearchParams struct {
	Entities []string `json:"entities,omitempty"`

	Name        Field[string] `json:"name,omitzero"`
	Status      Field[string] `json:"status,omitzero"`
	Description Field[string] `json:"description,omitzero"`

	Email   Field[string]   `json:"email,omitzero"`
	Phone   Field[string]   `json:"phone,omitzero"`
	Address Field[string]   `json:"address,omitzero"`
	CaseID  Field[SearchID] `json:"case_id,omitzero"`

	Title Field[string] `json:"title,omitzero"`

	Type            Field[string]   `json:"type,omitzero"`
	Details         Field[string]   `json:"details,omitzero"`
	InvestigationID Field[SearchID] `json:"investigation_id,omitzero"`

	CrossEntity  bool          `json:"cross_entity,omitempty"`
	CustomerName Field[string] `json:"customer_name,omitzero"`
	TargetName   Field[string] `json:"target_name,omitzero"`
}

// Validate checks the entity selection and the id filters.
func (p SearchParams) Validate() error {
	for _, e := range p.Entities {
		if !slices.Contains(AllEntities, e) {
			return fmt.Errorf("unknown entity %q", e)
		}
	}
	if err := p.CaseID.Validate(); err != nil {
		return fmt.Errorf("case_id %w", err)
	}
	if err := p.InvestigationID.Validate(); err != nil {
		return fmt.Errorf("investigation_id %w", err)
	}
	return nil
}

// SearchID is an id filter sent either as a JSON number or as a numeric
// string, the way search forms post text inputs.
type SearchID struct {
	n   int64
	bad bool
}

// NewSearchID returns a SearchID for id.
func NewSearchID(id int64) SearchID {
	return SearchID{n: id}
}

// Int64 returns the parsed id.
func (id SearchID) Int64() int64 {
	return id.n
}

// UnmarshalJSON accepts 12 and "12". Anything else is kept for Validate.
func (id *SearchID) UnmarshalJSON(data []byte) error {
	text := string(bytes.TrimSpace(data))
	if strings.HasPrefix(text, `"`) {
		if err := json.Unmarshal(data, &text); err != nil {
			return err
		}
		text = strings.TrimSpace(text)
	}
	n, err := strconv.ParseInt(text, 10, 64)
	*id = SearchID{n: n, bad: err != nil}
	return nil
}

// MarshalJSON always encodes a number.
func (id SearchID) MarshalJSON() ([]byte, error) {
	return strconv.AppendInt(nil, id.n, 10), nil
}

var errNotANumber = errors.New("must be a number")

// Validate rejects values that did not parse as a whole number.
func (id SearchID) Validate() error {
	if id.bad {
		return errNotANumber
	}
	return nil
}

// Wants reports whether entity is part of the selection. A nil selection
// means every entity.
func (p SearchParams) Wants(entity string) bool {
	if p.Entities == nil {
		return true
	}
	return slices.Contains(p.Entities, entity)
}

// SearchResults groups the hits per entity. Unselected entities stay empty.
type SearchResults struct {
	Cases          []Case          `json:"cases"`
	Customers      []Customer      `json:"customers"`
	Investigations []Investigation `json:"investigations"`
	Targets        []Target        `json:"targets"`
}

// NewSearchResults returns results with every list non-nil.
func NewSearchResults() *SearchResults {
	return &SearchResults{
		Cases:          []Case{},
		Customers:      []Customer{},
		Investigations: []Investigation{},
		Targets:        []Target{},
	}
}

// DashboardSummary aggregates record totals for the overview screen.
type DashboardSummary struct {
	TotalCases          int            `json:"total_cases"`
	TotalCustomers      int            `json:"total_customers"`
	TotalInvestigations int            `json:"total_investigations"`
	TotalTargets        int            `json:"total_targets"`
	CaseStatus          map[Status]int `json:"case_status_distribution"`
}
