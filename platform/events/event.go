// Package events is the in-process event bus the lead services publish to
// after a unit of work commits.
package events

import (
	"context"
	"time"

	"leadflow_backend/platform/logger"
)

// Event is implemented by every published event. EventName is the
// subscription key.
type Event interface {
	EventName() string
	OccurredAt() time.Time
}

// BaseEvent carries the fields every event shares. RequestID is empty for
// events raised outside an HTTP request, such as scheduler jobs.
type BaseEvent struct {
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"requestId,omitempty"`
}

func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// NewBaseEvent stamps the current UTC time and the request id found in ctx.
func NewBaseEvent(ctx context.Context) BaseEvent {
	requestID, _ := ctx.Value(logger.RequestIDKey).(string)
	return BaseEvent{Timestamp: time.Now().UTC(), RequestID: requestID}
}

type Handler interface {
	Handle(ctx context.Context, event Event) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, event Event) error

func (f HandlerFunc) Handle(ctx context.Context, event Event) error {
	return f(ctx, event)
}

// Bus delivers events to the handlers subscribed to their name. Publish is
// fire-and-forget; PublishSync returns the joined handler errors.
type Bus interface {
	Publish(ctx context.Context, event Event)
	PublishSync(ctx context.Context, event Event) error
	Subscribe(eventName string, handler Handler)
}
