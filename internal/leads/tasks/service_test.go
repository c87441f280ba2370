package tasks

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"leadflow_backend/internal/leads/domain"
	"leadflow_backend/internal/leads/leadstest"
	"leadflow_backend/internal/leads/repository"
	"leadflow_backend/platform/apperr"
	"leadflow_backend/platform/logger"
	"leadflow_backend/platform/metrics"
)

var due = time.Date(2024, 4, 2, 10, 0, 0, 0, time.UTC)

type fixture struct {
	store    *leadstest.Store
	metrics  *metrics.Metrics
	svc      *Service
	lead     repository.Lead
	assignee repository.User
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	store := leadstest.New()
	store.SeedVendor(1)
	store.SeedVendor(2)
	m := metrics.New()
	return fixture{
		store:    store,
		metrics:  m,
		svc:      New(store, nil, m, logger.Discard()),
		lead:     store.AddLead(repository.Lead{VendorID: 1, StatusID: leadstest.StatusID(1, domain.StatusOpen), Name: "Ravi"}),
		assignee: store.AddUser(repository.User{VendorID: 1, Name: "Meena", Role: "sales"}),
	}
}

func (f fixture) input(taskType string, target domain.StatusTag) AssignInput {
	return AssignInput{
		VendorID:    1,
		LeadID:      f.lead.ID,
		ActorID:     5,
		AssigneeID:  f.assignee.ID,
		TaskType:    taskType,
		DueDate:     due,
		Remark:      "call before noon",
		TargetStage: target,
	}
}

func TestFollowUpNeverChangesStage(t *testing.T) {
	for _, taskType := range []string{"Follow Up", "follow up", "  FOLLOW UP "} {
		f := newFixture(t)

		result, err := f.svc.Assign(context.Background(), f.input(taskType, domain.StatusFinalMeasurement))
		if err != nil {
			t.Fatalf("%q: unexpected error: %v", taskType, err)
		}
		if result.StatusChanged || result.StatusLog != nil {
			t.Fatalf("%q: follow-up must not move the lead", taskType)
		}
		stored, _ := f.store.Lead(f.lead.ID)
		if stored.StatusID != f.lead.StatusID {
			t.Fatalf("%q: expected status %d, got %d", taskType, f.lead.StatusID, stored.StatusID)
		}
		if len(f.store.StatusLogs()) != 0 {
			t.Fatalf("%q: expected no status log", taskType)
		}
		if result.Task.Status != domain.TaskStatusOpen {
			t.Fatalf("%q: expected open task, got %q", taskType, result.Task.Status)
		}
		if got := testutil.ToFloat64(f.metrics.TasksAssigned.WithLabelValues("false")); got != 1 {
			t.Fatalf("%q: expected one non-advancing assignment metric, got %v", taskType, got)
		}
	}
}

func TestOtherTaskTypesAdvanceToTarget(t *testing.T) {
	f := newFixture(t)

	result, err := f.svc.Assign(context.Background(), f.input("Site Measurement", domain.StatusInitialSiteMeasurement))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := leadstest.StatusID(1, domain.StatusInitialSiteMeasurement)
	if !result.StatusChanged || result.Lead.StatusID != want {
		t.Fatalf("expected lead at %d, got %+v", want, result.Lead)
	}
	logs := f.store.StatusLogs()
	if len(logs) != 1 || logs[0].StatusID != want {
		t.Fatalf("expected one status log for %d, got %+v", want, logs)
	}

	detailed := f.store.DetailedLogs()
	if len(detailed) != 1 {
		t.Fatalf("expected one detailed log, got %d", len(detailed))
	}
	wantMsg := "Task 'Site Measurement' assigned to Meena due 02/04/2024. Lead moved to Initial Site Measurement. Remark: call before noon"
	if detailed[0].Description != wantMsg {
		t.Fatalf("unexpected audit message:\n got %q\nwant %q", detailed[0].Description, wantMsg)
	}
}

func TestRepeatedAssignmentWritesAnotherStatusLog(t *testing.T) {
	f := newFixture(t)
	in := f.input("Final Measurement", domain.StatusFinalMeasurement)

	for i := 0; i < 2; i++ {
		if _, err := f.svc.Assign(context.Background(), in); err != nil {
			t.Fatalf("assignment %d: %v", i+1, err)
		}
	}
	if n := len(f.store.StatusLogs()); n != 2 {
		t.Fatalf("expected two status logs, got %d", n)
	}
	if n := len(f.store.Tasks()); n != 2 {
		t.Fatalf("expected two tasks, got %d", n)
	}
}

func TestAssigneeFromAnotherVendorIsForbidden(t *testing.T) {
	f := newFixture(t)
	outsider := f.store.AddUser(repository.User{VendorID: 2, Name: "Outsider"})
	in := f.input("Follow Up", "")
	in.AssigneeID = outsider.ID

	_, err := f.svc.Assign(context.Background(), in)
	if !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if len(f.store.Tasks()) != 0 {
		t.Fatal("expected no task to be created")
	}
}

func TestAssignErrors(t *testing.T) {
	f := newFixture(t)

	missingLead := f.input("Follow Up", "")
	missingLead.LeadID = 424242
	if _, err := f.svc.Assign(context.Background(), missingLead); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found for lead, got %v", err)
	}

	missingUser := f.input("Follow Up", "")
	missingUser.AssigneeID = 424242
	if _, err := f.svc.Assign(context.Background(), missingUser); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found for assignee, got %v", err)
	}

	noDate := f.input("Follow Up", "")
	noDate.DueDate = time.Time{}
	if _, err := f.svc.Assign(context.Background(), noDate); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	if _, err := f.svc.Assign(context.Background(), f.input("Design", "Type 99")); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error for unknown target, got %v", err)
	}

	f.store.RemoveType("status", 1, string(domain.StatusDesigning))
	if _, err := f.svc.Assign(context.Background(), f.input("Design", domain.StatusDesigning)); !apperr.Is(err, apperr.KindConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	if len(f.store.Tasks()) != 0 {
		t.Fatal("expected failed assignments to leave no tasks")
	}
}

func TestComplete(t *testing.T) {
	f := newFixture(t)
	closedAt := time.Date(2024, 4, 3, 8, 0, 0, 0, time.UTC)
	f.svc.SetClock(func() time.Time { return closedAt })
	task := f.store.AddTask(repository.Task{VendorID: 1, LeadID: f.lead.ID, UserID: f.assignee.ID, TaskType: "Follow Up", DueDate: due})

	done, err := f.svc.Complete(context.Background(), CompleteInput{VendorID: 1, TaskID: task.ID, ActorID: f.assignee.ID, ClosingRemark: "spoke to client"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if done.Status != domain.TaskStatusCompleted || done.ClosedAt == nil || !done.ClosedAt.Equal(closedAt) {
		t.Fatalf("unexpected closed task %+v", done)
	}

	_, err = f.svc.Complete(context.Background(), CompleteInput{VendorID: 1, TaskID: task.ID, ActorID: f.assignee.ID})
	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}

	_, err = f.svc.Complete(context.Background(), CompleteInput{VendorID: 2, TaskID: task.ID, ActorID: 1})
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found across vendors, got %v", err)
	}
}
