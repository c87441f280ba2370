package taxonomy

import (
	"context"
	"errors"
	"testing"

	"leadflow_backend/internal/leads/domain"
	"leadflow_backend/internal/leads/leadstest"
	"leadflow_backend/platform/apperr"
)

func TestResolveStatusReturnsVendorSpecificID(t *testing.T) {
	store := leadstest.New()
	store.SeedVendor(1)
	store.SeedVendor(2)
	r := New(store)

	got, err := r.ResolveStatus(context.Background(), 2, domain.StatusBooking)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != 204 || got.VendorID != 2 {
		t.Fatalf("expected vendor 2 booking id 204, got %+v", got)
	}
}

func TestResolveMissingTagIsConfigurationError(t *testing.T) {
	store := leadstest.New()
	store.SeedVendor(1)
	store.RemoveType("payment", 1, string(domain.PaymentBookingAmount))
	r := New(store)

	_, err := r.ResolvePayment(context.Background(), 1, domain.PaymentBookingAmount)
	if !apperr.Is(err, apperr.KindConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	if err.Error() != "payment type 'Type 2' not configured for vendor" {
		t.Fatalf("unexpected message %q", err.Error())
	}

	_, err = r.ResolveDocument(context.Background(), 9, domain.DocDesignFiles)
	if err == nil || err.Error() != "document type 'Type 3' not configured for vendor" {
		t.Fatalf("expected missing document type error, got %v", err)
	}
}

func TestResolveDoesNotMemoize(t *testing.T) {
	store := leadstest.New()
	store.SeedVendor(1)
	r := New(store)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := r.ResolveStatus(ctx, 1, domain.StatusOpen); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if calls := store.Calls("FindStatusType"); calls != 3 {
		t.Fatalf("expected every resolve to hit the store, got %d calls", calls)
	}

	store.RemoveType("status", 1, string(domain.StatusOpen))
	if _, err := r.ResolveStatus(ctx, 1, domain.StatusOpen); !apperr.Is(err, apperr.KindConfiguration) {
		t.Fatalf("expected removed tag to fail immediately, got %v", err)
	}
}

func TestResolveStoreFailureIsPassedThrough(t *testing.T) {
	store := leadstest.New()
	boom := errors.New("connection reset")
	store.FailOn["FindStatusType"] = boom

	_, err := New(store).ResolveStatus(context.Background(), 1, domain.StatusOpen)
	if !errors.Is(err, boom) {
		t.Fatalf("expected store error, got %v", err)
	}
}

func TestStatusTagOf(t *testing.T) {
	store := leadstest.New()
	store.SeedVendor(1)
	r := New(store)

	tag, err := r.StatusTagOf(context.Background(), 1, 104)
	if err != nil || tag != domain.StatusBooking {
		t.Fatalf("expected booking tag, got %q (%v)", tag, err)
	}
	if _, err := r.StatusTagOf(context.Background(), 1, 999); !apperr.Is(err, apperr.KindConfiguration) {
		t.Fatalf("expected configuration error for unknown id, got %v", err)
	}
}
