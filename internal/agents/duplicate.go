package agents

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/prospect-labs/prospect/internal/leads"
	"github.com/prospect-labs/prospect/internal/retry"
	"github.com/prospect-labs/prospect/pkg/pagination"
)

const duplicateScanLimit = 50

// DuplicateCheckOp returns the best-effort duplicate detection operation.
// It is a pure database pass over existing leads; no model call is involved.
func DuplicateCheckOp(rt *Runtime, lead *leads.Lead) retry.Operation[DuplicateCheckResult] {
	return func(ctx context.Context) (DuplicateCheckResult, error) {
		result := DuplicateCheckResult{
			Matches:   []DuplicateMatch{},
			CheckedAt: time.Now().UTC(),
		}

		page := pagination.PageRequest{Page: 1, PageSize: duplicateScanLimit}

		byCompany, err := rt.Leads.List(ctx, page, leads.Filters{Company: &lead.Company})
		if err != nil {
			return result, err
		}
		appendMatches(&result, lead, byCompany.Data, "company name match")

		if host := siteHost(lead.Website); host != "" {
			byWebsite, err := rt.Leads.List(ctx, page, leads.Filters{Website: &host})
			if err != nil {
				return result, err
			}
			appendMatches(&result, lead, byWebsite.Data, "website match")
		}

		return result, nil
	}
}

func appendMatches(result *DuplicateCheckResult, subject *leads.Lead, candidates []leads.Lead, reason string) {
	for _, c := range candidates {
		if c.ID == subject.ID || contains(result.Matches, c.ID) {
			continue
		}
		result.Matches = append(result.Matches, DuplicateMatch{
			LeadID:  c.ID,
			Company: c.Company,
			Website: c.Website,
			Reason:  reason,
		})
	}
}

func contains(matches []DuplicateMatch, id uuid.UUID) bool {
	for _, m := range matches {
		if m.LeadID == id {
			return true
		}
	}
	return false
}

func siteHost(site string) string {
	u, err := url.Parse(site)
	if err != nil || u.Host == "" {
		return strings.TrimPrefix(strings.TrimPrefix(site, "https://"), "http://")
	}
	return strings.TrimPrefix(u.Host, "www.")
}
