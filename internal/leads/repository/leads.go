package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
)

const leadColumns = `id, vendor_id, account_id, status_id, activity_status, name, contact_no, email, site_address,
	final_booking_amount, critical_discussion_notes, dispatch_date, notes, is_deleted, created_by, created_at, updated_at`

func scanLead(row pgx.Row) (Lead, error) {
	var l Lead
	err := row.Scan(
		&l.ID, &l.VendorID, &l.AccountID, &l.StatusID, &l.ActivityStatus, &l.Name, &l.ContactNo, &l.Email, &l.SiteAddress,
		&l.FinalBookingAmount, &l.CriticalDiscussionNotes, &l.DispatchDate, &l.Notes, &l.IsDeleted, &l.CreatedBy, &l.CreatedAt, &l.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Lead{}, ErrNotFound
	}
	return l, err
}

func (r *Repository) CreateLead(ctx context.Context, params CreateLeadParams) (Lead, error) {
	return scanLead(r.q.QueryRow(ctx, `
		INSERT INTO leads (vendor_id, account_id, status_id, activity_status, name, contact_no, email, site_address, notes, created_by)
		VALUES ($1, $2, $3, 'onGoing', $4, $5, $6, $7, $8, $9)
		RETURNING `+leadColumns,
		params.VendorID, params.AccountID, params.StatusID, params.Name, params.ContactNo, params.Email, params.SiteAddress,
		params.Notes, params.CreatedBy,
	))
}

func (r *Repository) GetLead(ctx context.Context, vendorID, leadID int64) (Lead, error) {
	return scanLead(r.q.QueryRow(ctx, `
		SELECT `+leadColumns+`
		FROM leads
		WHERE vendor_id = $1 AND id = $2 AND is_deleted = false
	`, vendorID, leadID))
}

const listLeadsQuery = `
	SELECT ` + leadColumns + `, COUNT(*) OVER() AS total
	FROM leads
	WHERE vendor_id = $1
		AND status_id = $2
		AND is_deleted = false
		AND activity_status = 'onGoing'
		AND ($3::boolean = false OR id = ANY($4::bigint[]))
	ORDER BY updated_at DESC, id DESC
	LIMIT $5 OFFSET $6`

// ListLeads returns one page of active leads in a stage together with the total count.
func (r *Repository) ListLeads(ctx context.Context, params ListLeadsParams) ([]Lead, int, error) {
	ids := params.LeadIDs
	if ids == nil {
		ids = []int64{}
	}

	rows, err := r.q.Query(ctx, listLeadsQuery, params.VendorID, params.StatusID, params.Restricted, ids, params.Limit, params.Offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	items := make([]Lead, 0)
	total := 0
	for rows.Next() {
		var l Lead
		if err := rows.Scan(
			&l.ID, &l.VendorID, &l.AccountID, &l.StatusID, &l.ActivityStatus, &l.Name, &l.ContactNo, &l.Email, &l.SiteAddress,
			&l.FinalBookingAmount, &l.CriticalDiscussionNotes, &l.DispatchDate, &l.Notes, &l.IsDeleted, &l.CreatedBy, &l.CreatedAt, &l.UpdatedAt,
			&total,
		); err != nil {
			return nil, 0, err
		}
		items = append(items, l)
	}
	if rows.Err() != nil {
		return nil, 0, rows.Err()
	}

	if len(items) == 0 && params.Offset > 0 {
		err := r.q.QueryRow(ctx, `
			SELECT COUNT(*) FROM leads
			WHERE vendor_id = $1 AND status_id = $2 AND is_deleted = false AND activity_status = 'onGoing'
				AND ($3::boolean = false OR id = ANY($4::bigint[]))
		`, params.VendorID, params.StatusID, params.Restricted, ids).Scan(&total)
		if err != nil {
			return nil, 0, err
		}
	}

	return items, total, nil
}

func (r *Repository) UpdateLeadStage(ctx context.Context, params UpdateLeadStageParams) (Lead, error) {
	return scanLead(r.q.QueryRow(ctx, `
		UPDATE leads SET
			status_id = COALESCE($3, status_id),
			final_booking_amount = COALESCE($4, final_booking_amount),
			critical_discussion_notes = COALESCE($5, critical_discussion_notes),
			dispatch_date = COALESCE($6, dispatch_date),
			notes = COALESCE($7, notes),
			updated_at = now()
		WHERE vendor_id = $1 AND id = $2 AND is_deleted = false
		RETURNING `+leadColumns,
		params.VendorID, params.LeadID, params.StatusID, params.FinalBookingAmount, params.CriticalDiscussionNotes,
		params.DispatchDate, params.Notes,
	))
}

func (r *Repository) UpdateActivityStatus(ctx context.Context, vendorID, leadID int64, status string) (Lead, error) {
	return scanLead(r.q.QueryRow(ctx, `
		UPDATE leads SET activity_status = $3, updated_at = now()
		WHERE vendor_id = $1 AND id = $2 AND is_deleted = false
		RETURNING `+leadColumns,
		vendorID, leadID, status,
	))
}

// =====================================
// Visibility
// =====================================

const listMappedLeadIDsQuery = `
	SELECT DISTINCT lead_id
	FROM lead_user_mapping
	WHERE vendor_id = $1 AND user_id = $2 AND status = 'active'`

const listTaskLeadIDsQuery = `
	SELECT DISTINCT lead_id
	FROM user_lead_tasks
	WHERE vendor_id = $1 AND (created_by = $2 OR user_id = $2)`

func (r *Repository) ListMappedLeadIDs(ctx context.Context, vendorID, userID int64) ([]int64, error) {
	rows, err := r.q.Query(ctx, listMappedLeadIDsQuery, vendorID, userID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[int64])
}

func (r *Repository) ListTaskLeadIDs(ctx context.Context, vendorID, userID int64) ([]int64, error) {
	rows, err := r.q.Query(ctx, listTaskLeadIDsQuery, vendorID, userID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[int64])
}

// =====================================
// Mappings
// =====================================

func (r *Repository) CreateMapping(ctx context.Context, params CreateMappingParams) (Mapping, error) {
	var m Mapping
	err := r.q.QueryRow(ctx, `
		INSERT INTO lead_user_mapping (vendor_id, lead_id, user_id, type, status, created_by)
		VALUES ($1, $2, $3, $4, 'active', $5)
		RETURNING id, vendor_id, lead_id, user_id, type, status, created_by, created_at
	`, params.VendorID, params.LeadID, params.UserID, params.Type, params.CreatedBy).Scan(
		&m.ID, &m.VendorID, &m.LeadID, &m.UserID, &m.Type, &m.Status, &m.CreatedBy, &m.CreatedAt,
	)
	return m, err
}
