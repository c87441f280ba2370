package transition

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"

	"leadflow_backend/internal/events"
	"leadflow_backend/internal/leads/domain"
	"leadflow_backend/internal/leads/leadstest"
	"leadflow_backend/internal/leads/repository"
	"leadflow_backend/platform/apperr"
	"leadflow_backend/platform/logger"
	"leadflow_backend/platform/metrics"
)

var fixedNow = time.Date(2024, 3, 10, 9, 30, 0, 0, time.UTC)

type harness struct {
	store   *leadstest.Store
	objects *leadstest.ObjectStore
	bus     *events.InMemoryBus
	metrics *metrics.Metrics
	exec    *Executor

	mu        sync.Mutex
	published []events.Event
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		store:   leadstest.New(),
		objects: leadstest.NewObjectStore(),
		bus:     events.NewInMemoryBus(logger.Discard()),
		metrics: metrics.New(),
	}
	h.store.SeedVendor(1)
	h.store.Now = func() time.Time { return fixedNow }

	record := events.HandlerFunc(func(_ context.Context, e events.Event) error {
		h.mu.Lock()
		defer h.mu.Unlock()
		h.published = append(h.published, e)
		return nil
	})
	h.bus.Subscribe(events.LeadTransitioned{}.EventName(), record)
	h.bus.Subscribe(events.LeadTransitionFailed{}.EventName(), record)

	h.exec = New(h.store, h.objects, nil, h.bus, h.metrics, logger.Discard())
	h.exec.SetClock(func() time.Time { return fixedNow })
	return h
}

func (h *harness) lead(tag domain.StatusTag) repository.Lead {
	return h.store.AddLead(repository.Lead{VendorID: 1, StatusID: leadstest.StatusID(1, tag), Name: "Asha", ContactNo: "+919876543210"})
}

func (h *harness) events() []events.Event {
	h.bus.Wait()
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]events.Event(nil), h.published...)
}

func file(name string) File {
	body := "content of " + name
	return File{
		Name:        name,
		ContentType: "application/pdf",
		Size:        int64(len(body)),
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader(body)), nil
		},
	}
}

func assertNothingWritten(t *testing.T, h *harness) {
	t.Helper()
	if n := len(h.store.Documents()); n != 0 {
		t.Fatalf("expected no documents, got %d", n)
	}
	if n := len(h.store.Payments()); n != 0 {
		t.Fatalf("expected no payments, got %d", n)
	}
	if n := len(h.store.Ledger()); n != 0 {
		t.Fatalf("expected no ledger entries, got %d", n)
	}
	if n := len(h.store.DetailedLogs()); n != 0 {
		t.Fatalf("expected no detailed logs, got %d", n)
	}
	if n := len(h.store.StatusLogs()); n != 0 {
		t.Fatalf("expected no status logs, got %d", n)
	}
}

func TestBookingTransition(t *testing.T) {
	h := newHarness(t)
	lead := h.lead(domain.StatusOpen)
	if lead.StatusID != 101 {
		t.Fatalf("expected seeded Open status 101, got %d", lead.StatusID)
	}

	result, err := h.exec.Execute(context.Background(), Input{
		Stage:    "booking",
		VendorID: 1,
		LeadID:   lead.ID,
		ActorID:  7,
		Files:    map[string][]File{"final_documents": {file("Signed Quote.pdf")}},
		Payment:  &Payment{Amount: decimal.NewFromInt(50000)},
		Remark:   "token received",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stored, _ := h.store.Lead(lead.ID)
	if stored.StatusID != 104 || result.Lead.StatusID != 104 {
		t.Fatalf("expected lead status 104, got stored=%d result=%d", stored.StatusID, result.Lead.StatusID)
	}
	if !result.StatusChanged || result.PreviousStatusID != 101 {
		t.Fatalf("expected status change from 101, got %+v", result)
	}
	if !stored.FinalBookingAmount.Valid || !stored.FinalBookingAmount.Decimal.Equal(decimal.NewFromInt(50000)) {
		t.Fatalf("expected final booking amount 50000, got %+v", stored.FinalBookingAmount)
	}

	payments := h.store.Payments()
	if len(payments) != 1 || !payments[0].Amount.Equal(decimal.NewFromInt(50000)) {
		t.Fatalf("expected one payment of 50000, got %+v", payments)
	}
	if payments[0].PaymentTypeID != leadstest.PaymentTypeID(1, domain.PaymentBookingAmount) {
		t.Fatalf("expected booking payment type, got %d", payments[0].PaymentTypeID)
	}
	if payments[0].PaymentFileID == nil || *payments[0].PaymentFileID != result.Documents[0].ID {
		t.Fatal("expected payment to reference the uploaded final document")
	}

	ledger := h.store.Ledger()
	if len(ledger) != 1 || ledger[0].Type != "credit" || !ledger[0].Amount.Equal(decimal.NewFromInt(50000)) {
		t.Fatalf("expected one credit ledger entry of 50000, got %+v", ledger)
	}
	if ledger[0].PaymentInfoID == nil || *ledger[0].PaymentInfoID != payments[0].ID {
		t.Fatal("expected ledger entry to reference the payment")
	}

	logs := h.store.DetailedLogs()
	if len(logs) != 1 {
		t.Fatalf("expected one detailed log, got %d", len(logs))
	}
	want := "Booking: 1 final document uploaded, payment of 50000 recorded, status moved to Booking. Remark: token received"
	if logs[0].Description != want {
		t.Fatalf("unexpected audit message:\n got %q\nwant %q", logs[0].Description, want)
	}
	if logs[0].Action != "stage:booking" {
		t.Fatalf("unexpected action %q", logs[0].Action)
	}

	statusLogs := h.store.StatusLogs()
	if len(statusLogs) != 1 || statusLogs[0].StatusID != 104 {
		t.Fatalf("expected one status log for 104, got %+v", statusLogs)
	}

	wantKey := fmt.Sprintf("final-documents/1/%d/%d-Signed_Quote.pdf", lead.ID, fixedNow.UnixMilli())
	if keys := h.objects.Keys(); len(keys) != 1 || keys[0] != wantKey {
		t.Fatalf("expected object key %q, got %v", wantKey, keys)
	}
	if result.Documents[0].StorageKey != wantKey || result.Documents[0].OriginalName != "Signed Quote.pdf" {
		t.Fatalf("unexpected document row %+v", result.Documents[0])
	}

	if got := testutil.ToFloat64(h.metrics.Transitions.WithLabelValues("booking", "success")); got != 1 {
		t.Fatalf("expected one successful transition metric, got %v", got)
	}
	published := h.events()
	if len(published) != 1 {
		t.Fatalf("expected one event, got %d", len(published))
	}
	evt, ok := published[0].(events.LeadTransitioned)
	if !ok || evt.FromStatusID != 101 || evt.ToStatusID != 104 || evt.Documents != 1 {
		t.Fatalf("unexpected event %+v", published[0])
	}
}

func TestDocumentLogsMatchDocuments(t *testing.T) {
	h := newHarness(t)
	lead := h.lead(domain.StatusInitialSiteMeasurement)

	result, err := h.exec.Execute(context.Background(), Input{
		Stage:    "site-measurement",
		VendorID: 1,
		LeadID:   lead.ID,
		ActorID:  7,
		Files: map[string][]File{
			"site_measurement_docs": {file("plan.pdf"), file("plan.pdf")},
			"current_site_photos":   {file("kitchen.jpg")},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Documents) != 3 || len(result.DocumentLogs) != 3 {
		t.Fatalf("expected 3 documents and 3 document logs, got %d and %d", len(result.Documents), len(result.DocumentLogs))
	}
	if len(h.store.DocumentLogs()) != len(h.store.Documents()) {
		t.Fatal("document log rows must match document rows")
	}
	for _, dl := range result.DocumentLogs {
		if dl.LeadLogID != result.Log.ID {
			t.Fatalf("document log %d does not reference the detailed log", dl.ID)
		}
	}

	keys := h.objects.Keys()
	seen := map[string]bool{}
	for _, k := range keys {
		if seen[k] {
			t.Fatalf("duplicate storage key %q", k)
		}
		seen[k] = true
	}
	if result.Documents[2].DocTypeID != leadstest.DocumentTypeID(1, domain.DocCurrentSitePhotos) {
		t.Fatalf("expected photo to use the current site photo type, got %d", result.Documents[2].DocTypeID)
	}

	want := "Site Measurement: 2 site measurement documents uploaded, 1 current site photo uploaded, status moved to Designing. No remark provided"
	if result.Log.Description != want {
		t.Fatalf("unexpected audit message:\n got %q\nwant %q", result.Log.Description, want)
	}
}

func TestValidationFailureWritesNothing(t *testing.T) {
	h := newHarness(t)
	lead := h.lead(domain.StatusOpen)

	_, err := h.exec.Execute(context.Background(), Input{
		Stage:    "booking",
		VendorID: 1,
		LeadID:   lead.ID,
		ActorID:  7,
		Payment:  &Payment{Amount: decimal.NewFromInt(50000)},
	})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		t.Fatal("expected *apperr.Error")
	}
	details, _ := appErr.Details.(map[string]string)
	if details["final_documents"] == "" {
		t.Fatalf("expected final_documents detail, got %v", appErr.Details)
	}

	if h.store.Calls("InTx") != 0 {
		t.Fatal("expected no transaction to be opened")
	}
	if len(h.objects.Keys()) != 0 {
		t.Fatal("expected no uploads")
	}
	assertNothingWritten(t, h)
	if got := testutil.ToFloat64(h.metrics.Transitions.WithLabelValues("booking", "failure")); got != 1 {
		t.Fatalf("expected one failed transition metric, got %v", got)
	}
}

func TestValidationRules(t *testing.T) {
	h := newHarness(t)
	lead := h.lead(domain.StatusOpen)
	date := fixedNow.Add(72 * time.Hour)

	cases := []struct {
		name  string
		input Input
		field string
	}{
		{"missing payment", Input{Stage: "booking", Files: map[string][]File{"final_documents": {file("a.pdf")}}}, "payment"},
		{"zero amount", Input{Stage: "booking", Files: map[string][]File{"final_documents": {file("a.pdf")}}, Payment: &Payment{}}, "payment.amount"},
		{"payment not accepted", Input{Stage: "designing", Files: map[string][]File{"design_files": {file("a.pdf")}}, Payment: &Payment{Amount: decimal.NewFromInt(1)}}, "payment"},
		{"unknown file field", Input{Stage: "designing", Files: map[string][]File{"design_files": {file("a.pdf")}, "selfie": {file("b.jpg")}}}, "selfie"},
		{"missing dispatch date", Input{Stage: "dispatch-planning"}, "dispatchDate"},
		{"date not accepted", Input{Stage: "complete", Date: &date}, "dispatchDate"},
		{"empty checklist", Input{Stage: "site-readiness"}, "checklist"},
		{"unknown checklist item", Input{Stage: "site-readiness", Checklist: []ChecklistEntry{{Type: "roof_done"}}}, "checklist"},
		{"duplicate checklist item", Input{Stage: "site-readiness", Checklist: []ChecklistEntry{{Type: "site_cleared"}, {Type: "site_cleared"}}}, "checklist"},
		{"checklist not accepted", Input{Stage: "complete", Checklist: []ChecklistEntry{{Type: "site_cleared"}}}, "checklist"},
		{"file without name", Input{Stage: "designing", Files: map[string][]File{"design_files": {{Open: file("x").Open}}}}, "design_files"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := tc.input
			in.VendorID, in.LeadID, in.ActorID = 1, lead.ID, 7

			_, err := h.exec.Execute(context.Background(), in)
			var appErr *apperr.Error
			if !errors.As(err, &appErr) || appErr.Kind != apperr.KindValidation {
				t.Fatalf("expected validation error, got %v", err)
			}
			details, _ := appErr.Details.(map[string]string)
			if _, ok := details[tc.field]; !ok {
				t.Fatalf("expected detail for %q, got %v", tc.field, appErr.Details)
			}
		})
	}
	assertNothingWritten(t, h)
}

func TestUnknownStage(t *testing.T) {
	h := newHarness(t)
	_, err := h.exec.Execute(context.Background(), Input{Stage: "teleport", VendorID: 1, LeadID: 1, ActorID: 1})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

type rejectAll struct{}

func (rejectAll) ValidateContentType(ct string) error { return fmt.Errorf("content type %q is not allowed", ct) }
func (rejectAll) ValidateFileSize(int64) error        { return nil }

func TestUploadPolicyRejectsBeforeAnyWrite(t *testing.T) {
	h := newHarness(t)
	h.exec.SetUploadPolicy(rejectAll{})
	lead := h.lead(domain.StatusBooking)

	_, err := h.exec.Execute(context.Background(), Input{
		Stage: "designing", VendorID: 1, LeadID: lead.ID, ActorID: 7,
		Files: map[string][]File{"design_files": {file("a.exe")}},
	})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(h.objects.Keys()) != 0 {
		t.Fatal("expected no uploads")
	}
}

func TestMissingPaymentTagIsConfigurationErrorBeforeUpload(t *testing.T) {
	h := newHarness(t)
	h.store.RemoveType("payment", 1, string(domain.PaymentBookingAmount))
	lead := h.lead(domain.StatusOpen)

	_, err := h.exec.Execute(context.Background(), Input{
		Stage: "booking", VendorID: 1, LeadID: lead.ID, ActorID: 7,
		Files:   map[string][]File{"final_documents": {file("a.pdf")}},
		Payment: &Payment{Amount: decimal.NewFromInt(50000)},
	})
	if !apperr.Is(err, apperr.KindConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	if err.Error() != "payment type 'Type 2' not configured for vendor" {
		t.Fatalf("unexpected message %q", err.Error())
	}
	if len(h.objects.Keys()) != 0 {
		t.Fatal("expected tags to be resolved before uploading")
	}
	assertNothingWritten(t, h)
}

func TestFailureAfterUploadRollsBackRows(t *testing.T) {
	h := newHarness(t)
	h.store.FailOn["CreateLedgerEntry"] = errors.New("ledger unavailable")
	lead := h.lead(domain.StatusOpen)

	_, err := h.exec.Execute(context.Background(), Input{
		Stage: "booking", VendorID: 1, LeadID: lead.ID, ActorID: 7,
		Files:   map[string][]File{"final_documents": {file("a.pdf")}},
		Payment: &Payment{Amount: decimal.NewFromInt(50000)},
	})
	if err == nil || !strings.Contains(err.Error(), "ledger unavailable") {
		t.Fatalf("expected ledger failure, got %v", err)
	}

	assertNothingWritten(t, h)
	stored, _ := h.store.Lead(lead.ID)
	if stored.StatusID != 101 {
		t.Fatalf("expected status to stay 101, got %d", stored.StatusID)
	}
	if len(h.objects.Keys()) != 1 {
		t.Fatal("expected the uploaded object to remain in the store")
	}

	published := h.events()
	if len(published) != 1 {
		t.Fatalf("expected one failure event, got %d", len(published))
	}
	if _, ok := published[0].(events.LeadTransitionFailed); !ok {
		t.Fatalf("expected LeadTransitionFailed, got %T", published[0])
	}
}

func TestUploadFailureRollsBack(t *testing.T) {
	h := newHarness(t)
	h.objects.FailPut = 1
	lead := h.lead(domain.StatusInitialSiteMeasurement)

	_, err := h.exec.Execute(context.Background(), Input{
		Stage: "site-measurement", VendorID: 1, LeadID: lead.ID, ActorID: 7,
		Files: map[string][]File{"site_measurement_docs": {file("a.pdf"), file("b.pdf")}},
	})
	if !apperr.Is(err, apperr.KindInternal) {
		t.Fatalf("expected internal error, got %v", err)
	}
	assertNothingWritten(t, h)
}

func TestBackwardTransitionIsRejected(t *testing.T) {
	h := newHarness(t)
	lead := h.lead(domain.StatusProduction)

	_, err := h.exec.Execute(context.Background(), Input{
		Stage: "booking", VendorID: 1, LeadID: lead.ID, ActorID: 7,
		Files:   map[string][]File{"final_documents": {file("a.pdf")}},
		Payment: &Payment{Amount: decimal.NewFromInt(1000)},
	})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	assertNothingWritten(t, h)
}

func TestStageWithoutNextStatusKeepsStatus(t *testing.T) {
	h := newHarness(t)
	lead := h.lead(domain.StatusDesigning)

	result, err := h.exec.Execute(context.Background(), Input{
		Stage: "designing", VendorID: 1, LeadID: lead.ID, ActorID: 7,
		Files: map[string][]File{"design_files": {file("layout.dwg")}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.StatusChanged || result.StatusLog != nil || result.Lead.StatusID != lead.StatusID {
		t.Fatalf("expected status to stay %d, got %+v", lead.StatusID, result)
	}
	if result.Log.Description != "Designing: 1 design file uploaded. No remark provided" {
		t.Fatalf("unexpected audit message %q", result.Log.Description)
	}
	if len(h.store.StatusLogs()) != 0 {
		t.Fatal("expected no status log")
	}
}

func TestRepeatingTransitionAtSameStageDoesNotMoveStatus(t *testing.T) {
	h := newHarness(t)
	lead := h.lead(domain.StatusBooking)

	result, err := h.exec.Execute(context.Background(), Input{
		Stage: "booking", VendorID: 1, LeadID: lead.ID, ActorID: 7,
		Files:   map[string][]File{"final_documents": {file("a.pdf")}},
		Payment: &Payment{Amount: decimal.NewFromInt(2500)},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.StatusChanged {
		t.Fatal("expected no status change when already at Booking")
	}
	if len(h.store.Payments()) != 1 {
		t.Fatal("expected the repeated call to still record its payment")
	}
}

func TestSiteMeasurementClosesOnlyItsTasks(t *testing.T) {
	h := newHarness(t)
	lead := h.lead(domain.StatusInitialSiteMeasurement)
	h.store.AddTask(repository.Task{VendorID: 1, LeadID: lead.ID, UserID: 9, TaskType: "site measurement", DueDate: fixedNow})
	h.store.AddTask(repository.Task{VendorID: 1, LeadID: lead.ID, UserID: 9, TaskType: "Follow Up", DueDate: fixedNow})

	result, err := h.exec.Execute(context.Background(), Input{
		Stage: "site-measurement", VendorID: 1, LeadID: lead.ID, ActorID: 7,
		Files:  map[string][]File{"site_measurement_docs": {file("m.pdf")}},
		Remark: "measured",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.ClosedTasks) != 1 {
		t.Fatalf("expected one closed task, got %d", len(result.ClosedTasks))
	}
	closed := result.ClosedTasks[0]
	if closed.Status != "completed" || closed.ClosedBy == nil || *closed.ClosedBy != 7 || closed.ClosingRemark == nil || *closed.ClosingRemark != "measured" {
		t.Fatalf("unexpected closure metadata %+v", closed)
	}
	open := 0
	for _, task := range h.store.Tasks() {
		if task.Status == "open" {
			open++
		}
	}
	if open != 1 {
		t.Fatalf("expected the follow-up task to stay open, got %d open", open)
	}
	if !strings.Contains(result.Log.Description, "1 task closed") {
		t.Fatalf("expected closure in audit message, got %q", result.Log.Description)
	}
}

func TestDispatchPlanningRequiresReadiness(t *testing.T) {
	h := newHarness(t)
	lead := h.lead(domain.StatusSiteReadiness)
	date := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	in := Input{Stage: "dispatch-planning", VendorID: 1, LeadID: lead.ID, ActorID: 7, Date: &date}

	_, err := h.exec.Execute(context.Background(), in)
	var appErr *apperr.Error
	if !errors.As(err, &appErr) || appErr.Kind != apperr.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	reasons, _ := appErr.Details.(map[string]bool)
	if reasons["has_all_items"] || reasons["has_current_site_photos"] {
		t.Fatalf("expected both reasons false, got %v", appErr.Details)
	}

	checklist := make([]ChecklistEntry, 0, len(domain.SiteReadinessItems))
	for _, item := range domain.SiteReadinessItems {
		checklist = append(checklist, ChecklistEntry{Type: item, Value: true})
	}
	_, err = h.exec.Execute(context.Background(), Input{
		Stage: "site-readiness", VendorID: 1, LeadID: lead.ID, ActorID: 7,
		Files:     map[string][]File{"current_site_photos": {file("site.jpg")}},
		Checklist: checklist,
	})
	if err != nil {
		t.Fatalf("unexpected site readiness error: %v", err)
	}

	result, err := h.exec.Execute(context.Background(), in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Lead.StatusID != leadstest.StatusID(1, domain.StatusDispatchPlanning) {
		t.Fatalf("expected dispatch planning status, got %d", result.Lead.StatusID)
	}
	if result.Lead.DispatchDate == nil || !result.Lead.DispatchDate.Equal(date) {
		t.Fatalf("expected dispatch date to be stored, got %v", result.Lead.DispatchDate)
	}
	want := "Dispatch Planning: dispatch date set to 15/03/2024, status moved to Dispatch Planning. No remark provided"
	if result.Log.Description != want {
		t.Fatalf("unexpected audit message:\n got %q\nwant %q", result.Log.Description, want)
	}
}

func TestRepeatedChecklistItemsCountOnce(t *testing.T) {
	h := newHarness(t)
	lead := h.lead(domain.StatusSiteReadiness)
	first := domain.SiteReadinessItems[:3]

	submit := func(items []string, value bool) {
		t.Helper()
		checklist := make([]ChecklistEntry, 0, len(items))
		for _, item := range items {
			checklist = append(checklist, ChecklistEntry{Type: item, Value: value})
		}
		_, err := h.exec.Execute(context.Background(), Input{
			Stage: "site-readiness", VendorID: 1, LeadID: lead.ID, ActorID: 7,
			Files:     map[string][]File{"current_site_photos": {file("site.jpg")}},
			Checklist: checklist,
		})
		if err != nil {
			t.Fatalf("unexpected site readiness error: %v", err)
		}
	}
	submit(first, true)
	submit(first, false)

	if got := len(h.store.Checklist()); got != len(first) {
		t.Fatalf("expected %d checklist rows after resubmission, got %d", len(first), got)
	}
	for _, item := range h.store.Checklist() {
		if item.Value {
			t.Fatalf("expected resubmitted answer to replace the first one, got %+v", item)
		}
	}

	date := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	dispatch := Input{Stage: "dispatch-planning", VendorID: 1, LeadID: lead.ID, ActorID: 7, Date: &date}
	_, err := h.exec.Execute(context.Background(), dispatch)
	var appErr *apperr.Error
	if !errors.As(err, &appErr) || appErr.Kind != apperr.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	reasons, _ := appErr.Details.(map[string]bool)
	if reasons["has_all_items"] || !reasons["has_current_site_photos"] {
		t.Fatalf("expected only has_all_items to fail, got %v", appErr.Details)
	}

	submit(domain.SiteReadinessItems[3:], true)
	result, err := h.exec.Execute(context.Background(), dispatch)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Lead.StatusID != leadstest.StatusID(1, domain.StatusDispatchPlanning) {
		t.Fatalf("expected dispatch planning status, got %d", result.Lead.StatusID)
	}
}

func TestFinalMeasurementStoresNotes(t *testing.T) {
	h := newHarness(t)
	lead := h.lead(domain.StatusBooking)
	notes := "customer wants soft-close drawers"

	result, err := h.exec.Execute(context.Background(), Input{
		Stage: "final-measurement", VendorID: 1, LeadID: lead.ID, ActorID: 7,
		Files: map[string][]File{"final_measurement_doc": {file("fm.pdf")}},
		Notes: &notes,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Lead.CriticalDiscussionNotes == nil || *result.Lead.CriticalDiscussionNotes != notes {
		t.Fatalf("expected notes to be stored, got %v", result.Lead.CriticalDiscussionNotes)
	}
	if result.Lead.StatusID != leadstest.StatusID(1, domain.StatusClientDocumentation) {
		t.Fatalf("expected client documentation status, got %d", result.Lead.StatusID)
	}
}

func TestMissingLead(t *testing.T) {
	h := newHarness(t)
	_, err := h.exec.Execute(context.Background(), Input{
		Stage: "complete", VendorID: 1, LeadID: 999999, ActorID: 7,
	})
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
