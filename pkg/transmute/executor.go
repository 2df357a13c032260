package transmute

import (
	"context"
	"fmt"
)

// Executor applies a resolved Chain's edges in order, stopping at the
// first one that raises. It holds no state between Run calls.
type Executor struct{}

// NewExecutor builds an Executor.
func NewExecutor() *Executor { return &Executor{} }

// Run applies chain to input, edge by edge. On success it returns the
// final value. On failure it returns the last successful edge's output
// (the input the failing edge was given), the edge that raised, and the
// error it raised (recovering
// a panicking edge function into a plain error, since edge functions are
// opaque and may be arbitrary caller code).
//
// observer and execID, if non-nil/non-empty, receive an EventEdgeStarted
// before each edge runs and an EventEdgeSucceeded once it returns cleanly,
// mirroring the per-node lifecycle events the coordinator already emits
// around planning and the chain as a whole. A nil observer is treated as
// NopObserver.
func (x *Executor) Run(ctx context.Context, chain Chain, input any, observer Observer, execID string) (result any, failedAt *Edge, err error) {
	if observer == nil {
		observer = NopObserver{}
	}
	value := input
	for _, e := range chain {
		if err := ctx.Err(); err != nil {
			return value, nil, err
		}
		observer.Notify(ctx, Event{
			Type:        EventEdgeStarted,
			ExecutionID: execID,
			EdgeName:    e.String(),
			Timestamp:   timeNow(),
		})
		next, callErr := callEdge(e, value)
		if callErr != nil {
			return value, e, callErr
		}
		value = next
		observer.Notify(ctx, Event{
			Type:        EventEdgeSucceeded,
			ExecutionID: execID,
			EdgeName:    e.String(),
			Timestamp:   timeNow(),
		})
	}
	return value, nil, nil
}

func callEdge(e *Edge, value any) (out any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("edge %s panicked: %v", e, r)
		}
	}()
	return e.Fn(value)
}
