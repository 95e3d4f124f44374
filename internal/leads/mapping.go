package leads

import (
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/prospect-labs/prospect/pkg/query"
	"github.com/prospect-labs/prospect/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "leads", "l").
	Project("id", "ID").
	Project("company", "Company").
	Project("website", "Website").
	Project("contact_name", "ContactName").
	Project("contact_email", "ContactEmail").
	Project("source", "Source").
	Project("status", "Status").
	Project("agent_errors", "AgentErrors").
	Project("qualification", "Qualification").
	Project("created_at", "CreatedAt").
	Project("updated_at", "UpdatedAt")

var defaultSort = query.SortField{
	Field:      "CreatedAt",
	Descending: true,
}

// Filters contains optional filtering criteria for lead queries.
// Nil fields are ignored. Status and Source use exact matching;
// Company and Website use case-insensitive contains matching.
type Filters struct {
	Status  *string `json:"status,omitempty"`
	Company *string `json:"company,omitempty"`
	Website *string `json:"website,omitempty"`
	Source  *string `json:"source,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("Status", f.Status).
		WhereContains("Company", f.Company).
		WhereContains("Website", f.Website).
		WhereEquals("Source", f.Source)
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if s := values.Get("status"); s != "" {
		f.Status = &s
	}
	if c := values.Get("company"); c != "" {
		f.Company = &c
	}
	if w := values.Get("website"); w != "" {
		f.Website = &w
	}
	if src := values.Get("source"); src != "" {
		f.Source = &src
	}

	return f
}

func scanLead(s repository.Scanner) (Lead, error) {
	var (
		l         Lead
		rawErrors []byte
		rawQual   []byte
	)

	if err := s.Scan(
		&l.ID,
		&l.Company,
		&l.Website,
		&l.ContactName,
		&l.ContactEmail,
		&l.Source,
		&l.Status,
		&rawErrors,
		&rawQual,
		&l.CreatedAt,
		&l.UpdatedAt,
	); err != nil {
		return l, err
	}

	if len(rawErrors) > 0 {
		if err := json.Unmarshal(rawErrors, &l.AgentErrors); err != nil {
			return l, fmt.Errorf("decode agent_errors: %w", err)
		}
	}
	if len(rawQual) > 0 {
		l.Qualification = json.RawMessage(rawQual)
	}

	return l, nil
}
