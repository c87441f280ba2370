// Package taxonomy resolves the stable "Type N" tags to the numeric ids a
// vendor configured in its status, document and payment masters.
package taxonomy

import (
	"context"
	"errors"
	"fmt"

	"leadflow_backend/internal/leads/domain"
	"leadflow_backend/internal/leads/repository"
	"leadflow_backend/platform/apperr"
)

// Resolver looks tags up on every call. Vendors edit their masters at runtime,
// so nothing is memoized.
type Resolver struct {
	types repository.TypeLookup
}

func New(types repository.TypeLookup) *Resolver {
	return &Resolver{types: types}
}

// With returns a resolver reading through types, typically a transaction.
func (r *Resolver) With(types repository.TypeLookup) *Resolver {
	return &Resolver{types: types}
}

func (r *Resolver) ResolveStatus(ctx context.Context, vendorID int64, tag domain.StatusTag) (repository.TypeMaster, error) {
	t, err := r.types.FindStatusType(ctx, vendorID, string(tag))
	return t, notConfigured(err, "status", string(tag))
}

func (r *Resolver) ResolveDocument(ctx context.Context, vendorID int64, tag domain.DocumentTag) (repository.TypeMaster, error) {
	t, err := r.types.FindDocumentType(ctx, vendorID, string(tag))
	return t, notConfigured(err, "document", string(tag))
}

func (r *Resolver) ResolvePayment(ctx context.Context, vendorID int64, tag domain.PaymentTag) (repository.TypeMaster, error) {
	t, err := r.types.FindPaymentType(ctx, vendorID, string(tag))
	return t, notConfigured(err, "payment", string(tag))
}

// StatusTagOf maps a lead's status id back to its tag.
func (r *Resolver) StatusTagOf(ctx context.Context, vendorID, statusID int64) (domain.StatusTag, error) {
	t, err := r.types.GetStatusType(ctx, vendorID, statusID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", apperr.Configuration(fmt.Sprintf("status id %d not configured for vendor", statusID))
		}
		return "", err
	}
	return domain.StatusTag(t.Tag), nil
}

func notConfigured(err error, kind, tag string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.Configuration(fmt.Sprintf("%s type '%s' not configured for vendor", kind, tag))
	}
	return err
}
