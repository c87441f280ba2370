// Package readiness evaluates the preconditions a lead must meet before it
// may enter certain stages.
package readiness

import (
	"context"
	"errors"
	"fmt"

	"leadflow_backend/internal/leads/domain"
	"leadflow_backend/internal/leads/repository"
	"leadflow_backend/internal/leads/taxonomy"
	"leadflow_backend/platform/apperr"
)

// Gate names a readiness check.
type Gate string

const (
	GateSiteReadinessToDispatchPlanning Gate = "site-readiness-to-dispatch-planning"
	GateClientDocumentationToTechCheck  Gate = "client-documentation-to-tech-check"
)

// Reason keys reported in Report.Reasons.
const (
	ReasonCurrentSitePhotos = "has_current_site_photos"
	ReasonAllItems          = "has_all_items"
	ReasonClientDocuments   = "has_client_documents"
)

// Report is the outcome of one gate. Ready is the conjunction of every reason.
type Report struct {
	Gate    Gate            `json:"gate"`
	Ready   bool            `json:"ready"`
	Reasons map[string]bool `json:"reasons"`
}

// Missing lists the reasons that failed.
func (r Report) Missing() []string {
	missing := make([]string, 0)
	for _, key := range []string{ReasonCurrentSitePhotos, ReasonAllItems, ReasonClientDocuments} {
		if ok, present := r.Reasons[key]; present && !ok {
			missing = append(missing, key)
		}
	}
	return missing
}

// ParseGate validates a gate name from a route.
func ParseGate(s string) (Gate, bool) {
	switch g := Gate(s); g {
	case GateSiteReadinessToDispatchPlanning, GateClientDocumentationToTechCheck:
		return g, true
	}
	return "", false
}

// Reader is what the checker reads.
type Reader interface {
	repository.TypeLookup
	repository.LeadReader
	repository.ReadinessReader
}

type Checker struct {
	repo     Reader
	resolver *taxonomy.Resolver
}

func New(repo Reader) *Checker {
	return &Checker{repo: repo, resolver: taxonomy.New(repo)}
}

// With returns a checker reading through repo, typically a transaction.
func (c *Checker) With(repo Reader) *Checker {
	return New(repo)
}

// Check evaluates gate for a lead. Zero rows mean not ready, never an error.
func (c *Checker) Check(ctx context.Context, vendorID, leadID int64, gate Gate) (Report, error) {
	if _, ok := ParseGate(string(gate)); !ok {
		return Report{}, apperr.Validation(fmt.Sprintf("unknown readiness gate %q", gate))
	}

	if _, err := c.repo.GetLead(ctx, vendorID, leadID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return Report{}, apperr.NotFound("lead not found")
		}
		return Report{}, err
	}

	report := Report{Gate: gate, Reasons: map[string]bool{}}
	switch gate {
	case GateSiteReadinessToDispatchPlanning:
		photos, err := c.hasDocument(ctx, vendorID, leadID, domain.DocSiteReadinessPhotos)
		if err != nil {
			return Report{}, err
		}
		items, err := c.repo.CountChecklistItems(ctx, vendorID, leadID, domain.SiteReadinessItems)
		if err != nil {
			return Report{}, err
		}
		report.Reasons[ReasonCurrentSitePhotos] = photos
		report.Reasons[ReasonAllItems] = items >= len(domain.SiteReadinessItems)

	case GateClientDocumentationToTechCheck:
		docs, err := c.hasDocument(ctx, vendorID, leadID, domain.DocClientDocumentation)
		if err != nil {
			return Report{}, err
		}
		report.Reasons[ReasonClientDocuments] = docs
	}

	report.Ready = true
	for _, ok := range report.Reasons {
		report.Ready = report.Ready && ok
	}
	return report, nil
}

func (c *Checker) hasDocument(ctx context.Context, vendorID, leadID int64, tag domain.DocumentTag) (bool, error) {
	docType, err := c.resolver.ResolveDocument(ctx, vendorID, tag)
	if err != nil {
		return false, err
	}
	n, err := c.repo.CountDocuments(ctx, vendorID, leadID, docType.ID)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
