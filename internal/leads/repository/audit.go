package repository

import (
	"context"
)

func (r *Repository) CreateDetailedLog(ctx context.Context, params CreateDetailedLogParams) (DetailedLog, error) {
	var l DetailedLog
	err := r.q.QueryRow(ctx, `
		INSERT INTO lead_detailed_logs (vendor_id, lead_id, action, description, created_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, vendor_id, lead_id, action, description, created_by, created_at
	`, params.VendorID, params.LeadID, params.Action, params.Description, params.CreatedBy).Scan(
		&l.ID, &l.VendorID, &l.LeadID, &l.Action, &l.Description, &l.CreatedBy, &l.CreatedAt,
	)
	return l, err
}

func (r *Repository) CreateDocumentLog(ctx context.Context, params CreateDocumentLogParams) (DocumentLog, error) {
	var l DocumentLog
	err := r.q.QueryRow(ctx, `
		INSERT INTO lead_document_logs (vendor_id, lead_id, doc_id, lead_log_id, created_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, vendor_id, lead_id, doc_id, lead_log_id, created_by, created_at
	`, params.VendorID, params.LeadID, params.DocID, params.LeadLogID, params.CreatedBy).Scan(
		&l.ID, &l.VendorID, &l.LeadID, &l.DocID, &l.LeadLogID, &l.CreatedBy, &l.CreatedAt,
	)
	return l, err
}

func (r *Repository) CreateStatusLog(ctx context.Context, params CreateStatusLogParams) (StatusLog, error) {
	var l StatusLog
	err := r.q.QueryRow(ctx, `
		INSERT INTO lead_status_logs (vendor_id, lead_id, status_id, created_by)
		VALUES ($1, $2, $3, $4)
		RETURNING id, vendor_id, lead_id, status_id, created_by, created_at
	`, params.VendorID, params.LeadID, params.StatusID, params.CreatedBy).Scan(
		&l.ID, &l.VendorID, &l.LeadID, &l.StatusID, &l.CreatedBy, &l.CreatedAt,
	)
	return l, err
}

func (r *Repository) CreateActivityLog(ctx context.Context, params CreateActivityLogParams) (ActivityLog, error) {
	var l ActivityLog
	err := r.q.QueryRow(ctx, `
		INSERT INTO lead_activity_status_logs (vendor_id, lead_id, old_status, new_status, remark, created_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, vendor_id, lead_id, old_status, new_status, remark, created_by, created_at
	`, params.VendorID, params.LeadID, params.OldStatus, params.NewStatus, params.Remark, params.CreatedBy).Scan(
		&l.ID, &l.VendorID, &l.LeadID, &l.OldStatus, &l.NewStatus, &l.Remark, &l.CreatedBy, &l.CreatedAt,
	)
	return l, err
}

// ListDetailedLogs returns the newest entries first.
func (r *Repository) ListDetailedLogs(ctx context.Context, vendorID, leadID int64, limit int) ([]DetailedLog, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, vendor_id, lead_id, action, description, created_by, created_at
		FROM lead_detailed_logs
		WHERE vendor_id = $1 AND lead_id = $2
		ORDER BY created_at DESC, id DESC
		LIMIT $3
	`, vendorID, leadID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]DetailedLog, 0)
	for rows.Next() {
		var l DetailedLog
		if err := rows.Scan(&l.ID, &l.VendorID, &l.LeadID, &l.Action, &l.Description, &l.CreatedBy, &l.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, l)
	}
	return items, rows.Err()
}
