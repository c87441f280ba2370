package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("not found")

// dbtx is satisfied by both *pgxpool.Pool and pgx.Tx.
type dbtx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Repository struct {
	pool *pgxpool.Pool
	q    dbtx
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool, q: pool}
}

// InTx runs fn inside one transaction. The Tx handed to fn shares every query
// method with Repository but executes on the transaction.
func (r *Repository) InTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	if r.pool == nil {
		return errors.New("repository: nested transactions are not supported")
	}

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(ctx, &Repository{q: tx}); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// =====================================
// Type masters
// =====================================

const findTypeQuery = `
	SELECT id, vendor_id, tag, name
	FROM %s
	WHERE vendor_id = $1 AND tag = $2 AND is_deleted = false
	LIMIT 1`

func (r *Repository) findType(ctx context.Context, table string, vendorID int64, tag string) (TypeMaster, error) {
	var t TypeMaster
	err := r.q.QueryRow(ctx, fmt.Sprintf(findTypeQuery, table), vendorID, tag).Scan(&t.ID, &t.VendorID, &t.Tag, &t.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return TypeMaster{}, ErrNotFound
	}
	return t, err
}

func (r *Repository) FindStatusType(ctx context.Context, vendorID int64, tag string) (TypeMaster, error) {
	return r.findType(ctx, "status_type_master", vendorID, tag)
}

func (r *Repository) FindDocumentType(ctx context.Context, vendorID int64, tag string) (TypeMaster, error) {
	return r.findType(ctx, "document_type_master", vendorID, tag)
}

func (r *Repository) FindPaymentType(ctx context.Context, vendorID int64, tag string) (TypeMaster, error) {
	return r.findType(ctx, "payment_type_master", vendorID, tag)
}

func (r *Repository) GetStatusType(ctx context.Context, vendorID, statusID int64) (TypeMaster, error) {
	var t TypeMaster
	err := r.q.QueryRow(ctx, `
		SELECT id, vendor_id, tag, name
		FROM status_type_master
		WHERE vendor_id = $1 AND id = $2
	`, vendorID, statusID).Scan(&t.ID, &t.VendorID, &t.Tag, &t.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return TypeMaster{}, ErrNotFound
	}
	return t, err
}

func (r *Repository) ListStatusTypes(ctx context.Context, vendorID int64) ([]TypeMaster, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, vendor_id, tag, name
		FROM status_type_master
		WHERE vendor_id = $1 AND is_deleted = false
		ORDER BY id ASC
	`, vendorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]TypeMaster, 0)
	for rows.Next() {
		var t TypeMaster
		if err := rows.Scan(&t.ID, &t.VendorID, &t.Tag, &t.Name); err != nil {
			return nil, err
		}
		items = append(items, t)
	}
	return items, rows.Err()
}

// =====================================
// Users
// =====================================

func (r *Repository) GetUser(ctx context.Context, userID int64) (User, error) {
	var u User
	err := r.q.QueryRow(ctx, `
		SELECT id, vendor_id, name, email, role, is_active
		FROM users
		WHERE id = $1
	`, userID).Scan(&u.ID, &u.VendorID, &u.Name, &u.Email, &u.Role, &u.IsActive)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrNotFound
	}
	return u, err
}

func (r *Repository) ListVendorIDs(ctx context.Context) ([]int64, error) {
	rows, err := r.q.Query(ctx, `SELECT id FROM vendors WHERE is_deleted = false ORDER BY id`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[int64])
}
