package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Every aggregate below is one independent statement so the dashboard can run
// them concurrently on separate pool connections.

const countOpenTasksDueQuery = `
	SELECT COUNT(*)
	FROM user_lead_tasks
	WHERE vendor_id = $1
		AND ($2::bigint IS NULL OR user_id = $2)
		AND status = 'open'
		AND ($3::timestamptz IS NULL OR due_date >= $3)
		AND ($4::timestamptz IS NULL OR due_date < $4)`

const countCompletedTasksQuery = `
	SELECT COUNT(*)
	FROM user_lead_tasks
	WHERE vendor_id = $1
		AND ($2::bigint IS NULL OR user_id = $2)
		AND status = 'completed'
		AND ($3::timestamptz IS NULL OR closed_at >= $3)
		AND ($4::timestamptz IS NULL OR closed_at < $4)`

const countOverdueTasksQuery = `
	SELECT COUNT(*)
	FROM user_lead_tasks
	WHERE vendor_id = $1
		AND ($2::bigint IS NULL OR user_id = $2)
		AND status = 'open'
		AND due_date < $3`

const countLeadsByStatusQuery = `
	SELECT status_id, COUNT(*)
	FROM leads
	WHERE vendor_id = $1
		AND ($2::boolean = false OR id = ANY($3::bigint[]))
		AND is_deleted = false
		AND activity_status = 'onGoing'
	GROUP BY status_id`

const countLeadsCreatedQuery = `
	SELECT COUNT(*)
	FROM leads
	WHERE vendor_id = $1
		AND ($2::boolean = false OR id = ANY($3::bigint[]))
		AND is_deleted = false
		AND ($4::timestamptz IS NULL OR created_at >= $4)
		AND ($5::timestamptz IS NULL OR created_at < $5)`

const countStatusEntriesQuery = `
	SELECT COUNT(*)
	FROM lead_status_logs
	WHERE vendor_id = $1
		AND ($2::boolean = false OR lead_id = ANY($3::bigint[]))
		AND status_id = $4
		AND ($5::timestamptz IS NULL OR created_at >= $5)
		AND ($6::timestamptz IS NULL OR created_at < $6)`

const sumPaymentsQuery = `
	SELECT COALESCE(SUM(amount), 0)
	FROM payment_info
	WHERE vendor_id = $1
		AND ($2::boolean = false OR lead_id = ANY($3::bigint[]))
		AND payment_type_id = $4
		AND ($5::timestamptz IS NULL OR payment_date >= $5)
		AND ($6::timestamptz IS NULL OR payment_date < $6)`

const listStatusLogsQuery = `
	SELECT id, vendor_id, lead_id, status_id, created_by, created_at
	FROM lead_status_logs
	WHERE vendor_id = $1
		AND ($2::boolean = false OR lead_id = ANY($3::bigint[]))
		AND status_id = ANY($4::bigint[])
	ORDER BY created_at ASC, id ASC`

func bound(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func scopeIDs(scope Scope) []int64 {
	if scope.LeadIDs == nil {
		return []int64{}
	}
	return scope.LeadIDs
}

func (r *Repository) count(ctx context.Context, query string, args ...any) (int, error) {
	var n int
	err := r.q.QueryRow(ctx, query, args...).Scan(&n)
	return n, err
}

func (r *Repository) CountOpenTasksDue(ctx context.Context, scope TaskScope, window Window) (int, error) {
	return r.count(ctx, countOpenTasksDueQuery, scope.VendorID, scope.AssigneeID, bound(window.From), bound(window.To))
}

func (r *Repository) CountCompletedTasks(ctx context.Context, scope TaskScope, window Window) (int, error) {
	return r.count(ctx, countCompletedTasksQuery, scope.VendorID, scope.AssigneeID, bound(window.From), bound(window.To))
}

func (r *Repository) CountOverdueTasks(ctx context.Context, scope TaskScope, now time.Time) (int, error) {
	return r.count(ctx, countOverdueTasksQuery, scope.VendorID, scope.AssigneeID, now)
}

func (r *Repository) CountLeadsByStatus(ctx context.Context, scope Scope) ([]StatusCount, error) {
	rows, err := r.q.Query(ctx, countLeadsByStatusQuery, scope.VendorID, scope.Restricted, scopeIDs(scope))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]StatusCount, 0)
	for rows.Next() {
		var c StatusCount
		if err := rows.Scan(&c.StatusID, &c.Count); err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

func (r *Repository) CountLeadsCreated(ctx context.Context, scope Scope, window Window) (int, error) {
	return r.count(ctx, countLeadsCreatedQuery, scope.VendorID, scope.Restricted, scopeIDs(scope), bound(window.From), bound(window.To))
}

func (r *Repository) CountStatusEntries(ctx context.Context, scope Scope, statusID int64, window Window) (int, error) {
	return r.count(ctx, countStatusEntriesQuery, scope.VendorID, scope.Restricted, scopeIDs(scope), statusID, bound(window.From), bound(window.To))
}

func (r *Repository) SumPayments(ctx context.Context, scope Scope, paymentTypeID int64, window Window) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := r.q.QueryRow(ctx, sumPaymentsQuery, scope.VendorID, scope.Restricted, scopeIDs(scope), paymentTypeID, bound(window.From), bound(window.To)).Scan(&sum)
	return sum, err
}

// ListStatusLogs returns the status log rows for statusIDs ordered oldest first.
func (r *Repository) ListStatusLogs(ctx context.Context, scope Scope, statusIDs []int64) ([]StatusLog, error) {
	rows, err := r.q.Query(ctx, listStatusLogsQuery, scope.VendorID, scope.Restricted, scopeIDs(scope), statusIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]StatusLog, 0)
	for rows.Next() {
		var l StatusLog
		if err := rows.Scan(&l.ID, &l.VendorID, &l.LeadID, &l.StatusID, &l.CreatedBy, &l.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, l)
	}
	return items, rows.Err()
}
