package storage

import (
	"context"
	"fmt"

	"github.com/nyxwell/transmute/internal/observer"
	"github.com/uptrace/bun"
)

// EventRepository persists transmute.Event occurrences to the
// transmute_events table. It implements observer.EventRepository, so an
// observer.DatabaseObserver can be constructed directly over it.
type EventRepository struct {
	db bun.IDB
}

// NewEventRepository builds an EventRepository.
func NewEventRepository(db bun.IDB) *EventRepository {
	return &EventRepository{db: db}
}

// Append implements observer.EventRepository.
func (r *EventRepository) Append(ctx context.Context, rec *observer.EventRecord) error {
	model := &EventModel{
		ExecutionID: rec.ExecutionID,
		EventType:   rec.EventType,
		SrcCat:      rec.SrcCat,
		DstCat:      rec.DstCat,
		EdgeName:    rec.EdgeName,
		Attempt:     rec.Attempt,
		Err:         rec.Err,
		Metadata:    rec.Metadata,
	}
	if _, err := r.db.NewInsert().Model(model).Exec(ctx); err != nil {
		return fmt.Errorf("append event: %w", err)
	}
	return nil
}

// Recent returns the most recently recorded events for an execution, newest
// first, bounded by limit.
func (r *EventRepository) Recent(ctx context.Context, executionID string, limit int) ([]*EventModel, error) {
	var models []*EventModel
	err := r.db.NewSelect().Model(&models).
		Where("execution_id = ?", executionID).
		Order("id DESC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list events for execution %q: %w", executionID, err)
	}
	return models, nil
}

var _ observer.EventRepository = (*EventRepository)(nil)
