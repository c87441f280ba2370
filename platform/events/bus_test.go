package events

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"leadflow_backend/platform/logger"
)

type pingEvent struct {
	BaseEvent
}

func (pingEvent) EventName() string { return "test.ping" }

func TestPublishSyncJoinsHandlerErrors(t *testing.T) {
	bus := NewInMemoryBus(nil)
	var calls int32
	bus.Subscribe("test.ping", HandlerFunc(func(ctx context.Context, event Event) error {
		atomic.AddInt32(&calls, 1)
		return errors.New("first")
	}))
	bus.Subscribe("test.ping", HandlerFunc(func(ctx context.Context, event Event) error {
		atomic.AddInt32(&calls, 1)
		return nil
	}))

	ctx := context.Background()
	err := bus.PublishSync(ctx, pingEvent{BaseEvent: NewBaseEvent(ctx)})
	if err == nil || err.Error() != "first" {
		t.Fatalf("expected joined error 'first', got %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected both handlers to run, got %d", calls)
	}
}

func TestPublishRecoversFromPanics(t *testing.T) {
	bus := NewInMemoryBus(nil)
	var delivered int32
	bus.Subscribe("test.ping", HandlerFunc(func(ctx context.Context, event Event) error {
		panic("boom")
	}))
	bus.Subscribe("test.ping", HandlerFunc(func(ctx context.Context, event Event) error {
		atomic.AddInt32(&delivered, 1)
		return nil
	}))

	ctx, cancel := context.WithCancel(context.Background())
	bus.Publish(ctx, pingEvent{BaseEvent: NewBaseEvent(ctx)})
	cancel()
	bus.Wait()

	if atomic.LoadInt32(&delivered) != 1 {
		t.Fatalf("expected surviving handler to run once, got %d", delivered)
	}
}

func TestPublishWithoutSubscribersIsNoop(t *testing.T) {
	bus := NewInMemoryBus(nil)
	done := make(chan struct{})
	go func() {
		ctx := context.Background()
		bus.Publish(ctx, pingEvent{BaseEvent: NewBaseEvent(ctx)})
		bus.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish without subscribers blocked")
	}
}

func TestBaseEventCarriesRequestID(t *testing.T) {
	ctx := context.WithValue(context.Background(), logger.RequestIDKey, "req-42")
	e := NewBaseEvent(ctx)
	if e.RequestID != "req-42" {
		t.Fatalf("expected request id req-42, got %q", e.RequestID)
	}
	if e.OccurredAt().Location() != time.UTC {
		t.Fatal("expected a UTC timestamp")
	}
	if NewBaseEvent(context.Background()).RequestID != "" {
		t.Fatal("expected no request id outside a request")
	}
}
