package transmute

import (
	"context"
	"time"
)

// EventType names the kind of lifecycle event the coordinator emits.
// Observers switch on this value rather than the Event's concrete shape.
type EventType string

const (
	EventEdgeRegistered     EventType = "registry.edge_registered"
	EventDetectorRegistered EventType = "registry.detector_registered"
	EventPlanStarted        EventType = "plan.started"
	EventPlanFound          EventType = "plan.found"
	EventPlanExhausted      EventType = "plan.exhausted"
	EventEdgeStarted        EventType = "edge.started"
	EventEdgeSucceeded      EventType = "edge.succeeded"
	EventEdgeFailed         EventType = "edge.failed"
	EventEdgeRetrying       EventType = "edge.retrying"
	EventTransmuteSucceeded EventType = "transmute.succeeded"
	EventTransmuteFailed    EventType = "transmute.failed"
	EventTransmuteRecovered EventType = "transmute.recovered"
	EventHousekeeping       EventType = "registry.housekeeping"
)

// Event describes one point in the lifecycle of a registration or a
// Transmute call. Fields irrelevant to a given Type are left zero.
type Event struct {
	Type        EventType
	ExecutionID string
	SrcCat      string
	DstCat      string
	EdgeName    string
	Attempt     int
	Err         error
	Timestamp   time.Time
	Metadata    map[string]any
}

// Observer receives lifecycle events. Implementations must not block the
// caller for long; the coordinator notifies observers synchronously on the
// calling goroutine and a slow observer delays Transmute itself unless the
// observer manager wrapping it offloads to a goroutine (see
// internal/observer.Manager).
type Observer interface {
	Notify(ctx context.Context, event Event)
}

// NopObserver discards every event. It is the default when a Registry is
// built without WithObserver.
type NopObserver struct{}

func (NopObserver) Notify(context.Context, Event) {}
