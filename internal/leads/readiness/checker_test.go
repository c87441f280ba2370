package readiness

import (
	"context"
	"reflect"
	"testing"

	"leadflow_backend/internal/leads/domain"
	"leadflow_backend/internal/leads/leadstest"
	"leadflow_backend/internal/leads/repository"
	"leadflow_backend/platform/apperr"
)

func setup(t *testing.T) (*leadstest.Store, repository.Lead) {
	t.Helper()
	store := leadstest.New()
	store.SeedVendor(1)
	lead := store.AddLead(repository.Lead{VendorID: 1, StatusID: leadstest.StatusID(1, domain.StatusSiteReadiness)})
	return store, lead
}

func addChecklist(store *leadstest.Store, lead repository.Lead, n int) {
	for i := 0; i < n; i++ {
		store.AddChecklistItem(repository.ChecklistItem{
			VendorID: lead.VendorID, LeadID: lead.ID, Type: domain.SiteReadinessItems[i%len(domain.SiteReadinessItems)], Value: true,
		})
	}
}

func addDocument(store *leadstest.Store, lead repository.Lead, tag domain.DocumentTag) {
	store.AddDocument(repository.Document{
		VendorID: lead.VendorID, LeadID: lead.ID, DocTypeID: leadstest.DocumentTypeID(lead.VendorID, tag),
	})
}

func TestSiteReadinessGate(t *testing.T) {
	cases := []struct {
		name    string
		items   int
		photo   bool
		ready   bool
		reasons map[string]bool
	}{
		{"all items and photo", 6, true, true, map[string]bool{ReasonCurrentSitePhotos: true, ReasonAllItems: true}},
		{"five items and photo", 5, true, false, map[string]bool{ReasonCurrentSitePhotos: true, ReasonAllItems: false}},
		{"all items no photo", 6, false, false, map[string]bool{ReasonCurrentSitePhotos: false, ReasonAllItems: true}},
		{"nothing recorded", 0, false, false, map[string]bool{ReasonCurrentSitePhotos: false, ReasonAllItems: false}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store, lead := setup(t)
			addChecklist(store, lead, tc.items)
			if tc.photo {
				addDocument(store, lead, domain.DocSiteReadinessPhotos)
			}

			report, err := New(store).Check(context.Background(), 1, lead.ID, GateSiteReadinessToDispatchPlanning)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if report.Ready != tc.ready {
				t.Fatalf("expected ready=%v, got %v", tc.ready, report.Ready)
			}
			if !reflect.DeepEqual(report.Reasons, tc.reasons) {
				t.Fatalf("expected reasons %v, got %v", tc.reasons, report.Reasons)
			}
		})
	}
}

func TestSiteReadinessIgnoresOtherDocumentTypes(t *testing.T) {
	store, lead := setup(t)
	addChecklist(store, lead, 6)
	addDocument(store, lead, domain.DocCurrentSitePhotos)

	report, err := New(store).Check(context.Background(), 1, lead.ID, GateSiteReadinessToDispatchPlanning)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Ready || report.Reasons[ReasonCurrentSitePhotos] {
		t.Fatalf("expected Type 2 photos not to satisfy the gate, got %+v", report)
	}
	if got := report.Missing(); !reflect.DeepEqual(got, []string{ReasonCurrentSitePhotos}) {
		t.Fatalf("unexpected missing reasons %v", got)
	}
}

func TestClientDocumentationGate(t *testing.T) {
	store, lead := setup(t)
	checker := New(store)

	report, err := checker.Check(context.Background(), 1, lead.ID, GateClientDocumentationToTechCheck)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Ready || report.Reasons[ReasonClientDocuments] {
		t.Fatalf("expected not ready without client documents, got %+v", report)
	}

	addDocument(store, lead, domain.DocClientDocumentation)
	report, err = checker.Check(context.Background(), 1, lead.ID, GateClientDocumentationToTechCheck)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !report.Ready {
		t.Fatalf("expected ready with one client document, got %+v", report)
	}
}

func TestCheckErrors(t *testing.T) {
	store, lead := setup(t)
	checker := New(store)
	ctx := context.Background()

	if _, err := checker.Check(ctx, 1, lead.ID, Gate("bogus")); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error for unknown gate, got %v", err)
	}
	if _, err := checker.Check(ctx, 1, 424242, GateClientDocumentationToTechCheck); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found for missing lead, got %v", err)
	}
	if _, err := checker.Check(ctx, 2, lead.ID, GateClientDocumentationToTechCheck); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found for lead of another vendor, got %v", err)
	}

	store.RemoveType("document", 1, string(domain.DocClientDocumentation))
	if _, err := checker.Check(ctx, 1, lead.ID, GateClientDocumentationToTechCheck); !apperr.Is(err, apperr.KindConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}
