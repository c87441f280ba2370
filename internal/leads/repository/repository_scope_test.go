package repository

import (
	"strings"
	"testing"
)

func TestVisibilityQueriesAreVendorScoped(t *testing.T) {
	cases := map[string][]string{
		"mapped": {
			"from lead_user_mapping",
			"where vendor_id = $1 and user_id = $2 and status = 'active'",
		},
		"tasks": {
			"from user_lead_tasks",
			"where vendor_id = $1 and (created_by = $2 or user_id = $2)",
		},
	}
	queries := map[string]string{
		"mapped": listMappedLeadIDsQuery,
		"tasks":  listTaskLeadIDsQuery,
	}

	for name, fragments := range cases {
		query := strings.ToLower(queries[name])
		for _, fragment := range fragments {
			if !strings.Contains(query, fragment) {
				t.Fatalf("%s query: expected fragment %q", name, fragment)
			}
		}
	}
}

func TestListLeadsQueryFiltersActiveLeadsOfOneStage(t *testing.T) {
	query := strings.ToLower(listLeadsQuery)

	requiredFragments := []string{
		"where vendor_id = $1",
		"and status_id = $2",
		"and is_deleted = false",
		"and activity_status = 'ongoing'",
		"id = any($4::bigint[])",
	}
	for _, fragment := range requiredFragments {
		if !strings.Contains(query, fragment) {
			t.Fatalf("expected listing query fragment %q", fragment)
		}
	}
}

func TestAggregateQueriesAreVendorScoped(t *testing.T) {
	queries := map[string]string{
		"open tasks":      countOpenTasksDueQuery,
		"completed tasks": countCompletedTasksQuery,
		"overdue tasks":   countOverdueTasksQuery,
		"by status":       countLeadsByStatusQuery,
		"created":         countLeadsCreatedQuery,
		"status entries":  countStatusEntriesQuery,
		"payments":        sumPaymentsQuery,
		"status logs":     listStatusLogsQuery,
		"documents":       countDocumentsQuery,
		"checklist":       countChecklistItemsQuery,
		"close tasks":     completeOpenTasksQuery,
	}
	for name, query := range queries {
		if !strings.Contains(strings.ToLower(query), "vendor_id = $1") {
			t.Fatalf("%s query must filter on vendor_id = $1", name)
		}
	}
}

func TestStatusLogScanIsOrderedOldestFirst(t *testing.T) {
	if !strings.Contains(strings.ToLower(listStatusLogsQuery), "order by created_at asc") {
		t.Fatal("status log scan must be ordered by created_at ascending to keep first occurrences")
	}
}

func TestStatusWiseCountsExcludePausedAndDeletedLeads(t *testing.T) {
	query := strings.ToLower(countLeadsByStatusQuery)
	for _, fragment := range []string{"is_deleted = false", "activity_status = 'ongoing'", "group by status_id"} {
		if !strings.Contains(query, fragment) {
			t.Fatalf("expected status-wise count fragment %q", fragment)
		}
	}
}

func TestChecklistKeepsOneRowPerItemType(t *testing.T) {
	count := strings.ToLower(countChecklistItemsQuery)
	for _, fragment := range []string{"count(distinct type)", "type = any($3::text[])"} {
		if !strings.Contains(count, fragment) {
			t.Fatalf("expected checklist count fragment %q", fragment)
		}
	}
	upsert := strings.ToLower(upsertChecklistItemQuery)
	if !strings.Contains(upsert, "on conflict (vendor_id, lead_id, type) do update") {
		t.Fatal("expected checklist writes to upsert on (vendor_id, lead_id, type)")
	}
}
