package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
)

const taskColumns = `id, vendor_id, lead_id, user_id, created_by, task_type, due_date, remark, status,
	closed_by, closed_at, closing_remark, created_at`

func scanTask(row pgx.Row) (Task, error) {
	var t Task
	err := row.Scan(
		&t.ID, &t.VendorID, &t.LeadID, &t.UserID, &t.CreatedBy, &t.TaskType, &t.DueDate, &t.Remark, &t.Status,
		&t.ClosedBy, &t.ClosedAt, &t.ClosingRemark, &t.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Task{}, ErrNotFound
	}
	return t, err
}

func (r *Repository) CreateTask(ctx context.Context, params CreateTaskParams) (Task, error) {
	return scanTask(r.q.QueryRow(ctx, `
		INSERT INTO user_lead_tasks (vendor_id, lead_id, user_id, created_by, task_type, due_date, remark, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, 'open')
		RETURNING `+taskColumns,
		params.VendorID, params.LeadID, params.UserID, params.CreatedBy, params.TaskType, params.DueDate, params.Remark,
	))
}

func (r *Repository) GetTask(ctx context.Context, vendorID, taskID int64) (Task, error) {
	return scanTask(r.q.QueryRow(ctx, `
		SELECT `+taskColumns+`
		FROM user_lead_tasks
		WHERE vendor_id = $1 AND id = $2
	`, vendorID, taskID))
}

// CompleteTask closes one open task. A task that is already completed yields ErrNotFound.
func (r *Repository) CompleteTask(ctx context.Context, params CompleteTaskParams) (Task, error) {
	return scanTask(r.q.QueryRow(ctx, `
		UPDATE user_lead_tasks
		SET status = 'completed', closed_by = $3, closed_at = $4, closing_remark = $5
		WHERE vendor_id = $1 AND id = $2 AND status = 'open'
		RETURNING `+taskColumns,
		params.VendorID, params.TaskID, params.ClosedBy, params.ClosedAt, params.ClosingRemark,
	))
}

const completeOpenTasksQuery = `
	UPDATE user_lead_tasks
	SET status = 'completed', closed_by = $4, closed_at = $5, closing_remark = $6
	WHERE vendor_id = $1 AND lead_id = $2 AND lower(task_type) = lower($3) AND status = 'open'
	RETURNING ` + taskColumns

func (r *Repository) CompleteOpenTasks(ctx context.Context, params CompleteOpenTasksParams) ([]Task, error) {
	rows, err := r.q.Query(ctx, completeOpenTasksQuery,
		params.VendorID, params.LeadID, params.TaskType, params.ClosedBy, params.ClosedAt, params.ClosingRemark,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]Task, 0)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, t)
	}
	return items, rows.Err()
}
