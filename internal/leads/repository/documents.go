package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
)

const documentColumns = `id, vendor_id, lead_id, account_id, doc_type_id, doc_og_name, doc_sys_name, tech_check_status,
	is_deleted, created_by, created_at`

func scanDocument(row pgx.Row) (Document, error) {
	var d Document
	err := row.Scan(
		&d.ID, &d.VendorID, &d.LeadID, &d.AccountID, &d.DocTypeID, &d.OriginalName, &d.StorageKey, &d.TechCheckStatus,
		&d.IsDeleted, &d.CreatedBy, &d.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Document{}, ErrNotFound
	}
	return d, err
}

func collectDocuments(rows pgx.Rows) ([]Document, error) {
	defer rows.Close()
	items := make([]Document, 0)
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, d)
	}
	return items, rows.Err()
}

func (r *Repository) CreateDocument(ctx context.Context, params CreateDocumentParams) (Document, error) {
	return scanDocument(r.q.QueryRow(ctx, `
		INSERT INTO lead_documents (vendor_id, lead_id, account_id, doc_type_id, doc_og_name, doc_sys_name, tech_check_status, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+documentColumns,
		params.VendorID, params.LeadID, params.AccountID, params.DocTypeID, params.OriginalName, params.StorageKey,
		params.TechCheckStatus, params.CreatedBy,
	))
}

func (r *Repository) GetDocument(ctx context.Context, vendorID, docID int64) (Document, error) {
	return scanDocument(r.q.QueryRow(ctx, `
		SELECT `+documentColumns+`
		FROM lead_documents
		WHERE vendor_id = $1 AND id = $2 AND is_deleted = false
	`, vendorID, docID))
}

func (r *Repository) ListDocumentsByType(ctx context.Context, vendorID, leadID, docTypeID int64) ([]Document, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+documentColumns+`
		FROM lead_documents
		WHERE vendor_id = $1 AND lead_id = $2 AND doc_type_id = $3 AND is_deleted = false
		ORDER BY id ASC
	`, vendorID, leadID, docTypeID)
	if err != nil {
		return nil, err
	}
	return collectDocuments(rows)
}

// SetTechCheckStatus flips the review state of the given documents and returns them.
func (r *Repository) SetTechCheckStatus(ctx context.Context, vendorID int64, docIDs []int64, status string) ([]Document, error) {
	rows, err := r.q.Query(ctx, `
		UPDATE lead_documents SET tech_check_status = $3
		WHERE vendor_id = $1 AND id = ANY($2::bigint[]) AND is_deleted = false
		RETURNING `+documentColumns,
		vendorID, docIDs, status,
	)
	if err != nil {
		return nil, err
	}
	return collectDocuments(rows)
}

const countDocumentsQuery = `
	SELECT COUNT(*)
	FROM lead_documents
	WHERE vendor_id = $1 AND lead_id = $2 AND doc_type_id = $3 AND is_deleted = false`

const countChecklistItemsQuery = `
	SELECT COUNT(DISTINCT type)
	FROM site_readiness
	WHERE vendor_id = $1 AND lead_id = $2 AND type = ANY($3::text[])`

func (r *Repository) CountDocuments(ctx context.Context, vendorID, leadID, docTypeID int64) (int, error) {
	var n int
	err := r.q.QueryRow(ctx, countDocumentsQuery, vendorID, leadID, docTypeID).Scan(&n)
	return n, err
}

// CountChecklistItems counts the distinct item types recorded for the lead,
// restricted to types.
func (r *Repository) CountChecklistItems(ctx context.Context, vendorID, leadID int64, types []string) (int, error) {
	var n int
	err := r.q.QueryRow(ctx, countChecklistItemsQuery, vendorID, leadID, types).Scan(&n)
	return n, err
}

const upsertChecklistItemQuery = `
		INSERT INTO site_readiness (vendor_id, lead_id, type, value, remark, created_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (vendor_id, lead_id, type) DO UPDATE
		SET value = EXCLUDED.value, remark = EXCLUDED.remark, created_by = EXCLUDED.created_by, created_at = now()
		RETURNING id, vendor_id, lead_id, type, value, remark, created_by, created_at`

// UpsertChecklistItem records one checklist answer. A lead keeps one row per
// item type; answering an item again replaces the earlier answer.
func (r *Repository) UpsertChecklistItem(ctx context.Context, params UpsertChecklistItemParams) (ChecklistItem, error) {
	var c ChecklistItem
	err := r.q.QueryRow(ctx, upsertChecklistItemQuery,
		params.VendorID, params.LeadID, params.Type, params.Value, params.Remark, params.CreatedBy).Scan(
		&c.ID, &c.VendorID, &c.LeadID, &c.Type, &c.Value, &c.Remark, &c.CreatedBy, &c.CreatedAt,
	)
	return c, err
}

// =====================================
// Payments
// =====================================

func (r *Repository) CreatePayment(ctx context.Context, params CreatePaymentParams) (Payment, error) {
	var p Payment
	err := r.q.QueryRow(ctx, `
		INSERT INTO payment_info (vendor_id, lead_id, account_id, payment_type_id, amount, payment_date, payment_file_id, payment_text, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, vendor_id, lead_id, account_id, payment_type_id, amount, payment_date, payment_file_id, payment_text, created_by, created_at
	`, params.VendorID, params.LeadID, params.AccountID, params.PaymentTypeID, params.Amount, params.PaymentDate,
		params.PaymentFileID, params.PaymentText, params.CreatedBy).Scan(
		&p.ID, &p.VendorID, &p.LeadID, &p.AccountID, &p.PaymentTypeID, &p.Amount, &p.PaymentDate, &p.PaymentFileID,
		&p.PaymentText, &p.CreatedBy, &p.CreatedAt,
	)
	return p, err
}

func (r *Repository) CreateLedgerEntry(ctx context.Context, params CreateLedgerEntryParams) (LedgerEntry, error) {
	var l LedgerEntry
	err := r.q.QueryRow(ctx, `
		INSERT INTO ledger (vendor_id, lead_id, account_id, payment_info_id, amount, type, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, vendor_id, lead_id, account_id, payment_info_id, amount, type, created_by, created_at
	`, params.VendorID, params.LeadID, params.AccountID, params.PaymentInfoID, params.Amount, params.Type, params.CreatedBy).Scan(
		&l.ID, &l.VendorID, &l.LeadID, &l.AccountID, &l.PaymentInfoID, &l.Amount, &l.Type, &l.CreatedBy, &l.CreatedAt,
	)
	return l, err
}
