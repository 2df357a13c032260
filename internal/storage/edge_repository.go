package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/nyxwell/transmute/pkg/transmute"
	"github.com/uptrace/bun"
)

// ErrUnknownFunction is returned by Rehydrate when an EdgeModel's FuncRef
// names a function that was never registered with the FunctionRegistry in
// use for this process.
var ErrUnknownFunction = errors.New("storage: edge references an unregistered function")

// EdgeRepository persists transmute.Edge definitions so a Registry's
// EdgeTable can be rebuilt across process restarts.
type EdgeRepository struct {
	db bun.IDB
}

// NewEdgeRepository builds an EdgeRepository over db, which may be a
// *bun.DB or a bun.Tx.
func NewEdgeRepository(db bun.IDB) *EdgeRepository {
	return &EdgeRepository{db: db}
}

// Save inserts a row describing e. funcRef names the process-local function
// implementing e's behavior, resolved later via FunctionRegistry.
func (r *EdgeRepository) Save(ctx context.Context, e *transmute.Edge, funcRef string) error {
	model := &EdgeModel{
		Name:    e.Name,
		Cost:    e.Cost,
		CatIn:   e.CatIn.String(),
		CatOut:  e.CatOut.String(),
		ReqIn:   tagLabels(e.ReqIn),
		ProvOut: tagLabels(e.ProvOut),
		FuncRef: funcRef,
	}
	_, err := r.db.NewInsert().Model(model).Exec(ctx)
	if err != nil {
		return fmt.Errorf("save edge %q: %w", e.Name, err)
	}
	return nil
}

// List returns every persisted edge definition.
func (r *EdgeRepository) List(ctx context.Context) ([]*EdgeModel, error) {
	var models []*EdgeModel
	if err := r.db.NewSelect().Model(&models).Order("id ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("list edges: %w", err)
	}
	return models, nil
}

// Rehydrate loads every persisted edge and registers it against reg, using
// funcs to resolve each row's FuncRef back to a live transmute.EdgeFunc. It
// returns the number of edges registered, and fails fast on the first
// unresolvable reference rather than silently skipping it.
func (r *EdgeRepository) Rehydrate(ctx context.Context, reg *transmute.Registry, funcs *FunctionRegistry) (int, error) {
	models, err := r.List(ctx)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, m := range models {
		fn, ok := funcs.Lookup(m.FuncRef)
		if !ok {
			return count, fmt.Errorf("%w: %q (edge %q)", ErrUnknownFunction, m.FuncRef, m.Name)
		}
		reg.RegisterEdge(ctx, m.Cost, transmute.CatKey(m.CatIn), tagsFromLabels(m.ReqIn), transmute.CatKey(m.CatOut), tagsFromLabels(m.ProvOut), fn, m.Name)
		count++
	}
	return count, nil
}

// tagLabels extracts a persistable label slice from a TagSet. Tag identity
// is recovered on rehydration by re-deriving the same xxhash key from the
// label via transmute.TagKey, so order and the original Tag values need not
// survive the round trip.
func tagLabels(s transmute.TagSet) []string {
	tags := s.Slice()
	labels := make([]string, len(tags))
	for i, t := range tags {
		labels[i] = t.String()
	}
	return labels
}

func tagsFromLabels(labels []string) []transmute.Tag {
	tags := make([]transmute.Tag, len(labels))
	for i, l := range labels {
		tags[i] = transmute.TagKey(l)
	}
	return tags
}
