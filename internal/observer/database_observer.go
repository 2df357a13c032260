package observer

import (
	"context"
	"time"

	"github.com/nyxwell/transmute/pkg/transmute"
)

// EventRecord is the persistence-shaped projection of a transmute.Event,
// independent of any particular storage engine.
type EventRecord struct {
	ExecutionID string
	EventType   string
	SrcCat      string
	DstCat      string
	EdgeName    string
	Attempt     int
	Err         string
	Timestamp   time.Time
	Metadata    map[string]any
}

// EventRepository persists EventRecords, implemented by internal/storage
// against a bun-backed audit table.
type EventRepository interface {
	Append(ctx context.Context, rec *EventRecord) error
}

// DatabaseObserver persists every event it receives as an audit-log row.
type DatabaseObserver struct {
	repo EventRepository
}

// NewDatabaseObserver builds a DatabaseObserver writing through repo.
func NewDatabaseObserver(repo EventRepository) *DatabaseObserver {
	return &DatabaseObserver{repo: repo}
}

func (o *DatabaseObserver) Name() string       { return "database" }
func (o *DatabaseObserver) Filter() EventFilter { return nil }

func (o *DatabaseObserver) OnEvent(ctx context.Context, event transmute.Event) error {
	rec := &EventRecord{
		ExecutionID: event.ExecutionID,
		EventType:   string(event.Type),
		SrcCat:      event.SrcCat,
		DstCat:      event.DstCat,
		EdgeName:    event.EdgeName,
		Attempt:     event.Attempt,
		Timestamp:   event.Timestamp,
		Metadata:    event.Metadata,
	}
	if event.Err != nil {
		rec.Err = event.Err.Error()
	}
	return o.repo.Append(ctx, rec)
}
