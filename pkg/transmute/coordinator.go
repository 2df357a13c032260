package transmute

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Registry is the top-level external interface spec.md section 6
// describes: register_edge, register_detector, and transmute, composed
// from an EdgeTable, a DetectorTable, a Planner, and an Executor.
type Registry struct {
	edges     *EdgeTable
	detectors *DetectorTable
	planner   *Planner
	executor  *Executor

	observer    Observer
	retryBudget int
	tracer      trace.Tracer

	namesMu sync.RWMutex
	byName  map[string]*Edge
}

// NewRegistry builds an empty Registry ready for edge and detector
// registration.
func NewRegistry(opts ...RegistryOption) *Registry {
	cfg := registryConfig{observer: NopObserver{}, retryBudget: DefaultRetryBudget}
	for _, opt := range opts {
		opt(&cfg)
	}
	edges := NewEdgeTable()
	return &Registry{
		edges:       edges,
		detectors:   NewDetectorTable(),
		planner:     NewPlanner(edges),
		executor:    NewExecutor(),
		observer:    cfg.observer,
		retryBudget: cfg.retryBudget,
		tracer:      cfg.tracer,
		byName:      make(map[string]*Edge),
	}
}

// EdgeByName returns the edge registered under name, if any. It exists so
// out-of-package infrastructure (a plan cache, a persistence layer
// rehydrating edges across restarts) can resolve a serialized chain back
// into live *Edge pointers without the core exposing its search internals.
func (r *Registry) EdgeByName(name string) (*Edge, bool) {
	r.namesMu.RLock()
	defer r.namesMu.RUnlock()
	e, ok := r.byName[name]
	return e, ok
}

// EdgeTable exposes the registry's underlying edge table to infrastructure
// that needs direct planner access (e.g. a cache computing a request key
// before deciding whether to invoke Search at all).
func (r *Registry) EdgeTable() *EdgeTable { return r.edges }

// PlannerFor exposes the registry's Planner for callers that need to run a
// Search directly (bypassing Transmute's retry-by-banning loop), such as a
// plan cache.
func (r *Registry) PlannerFor() *Planner { return r.planner }

// RegisterEdge inscribes a new conversion step into the registry,
// immediately available to future Transmute calls.
func (r *Registry) RegisterEdge(ctx context.Context, cost float64, catIn Category, reqIn []Tag, catOut Category, provOut []Tag, fn EdgeFunc, name string) *Edge {
	e := r.edges.Register(cost, catIn, reqIn, catOut, provOut, fn)
	e.Name = name
	if name != "" {
		r.namesMu.Lock()
		r.byName[name] = e
		r.namesMu.Unlock()
	}
	r.observer.Notify(ctx, Event{
		Type:      EventEdgeRegistered,
		SrcCat:    catIn.String(),
		DstCat:    catOut.String(),
		EdgeName:  e.String(),
		Timestamp: timeNow(),
	})
	return e
}

// RegisterDetector inscribes an Inspector consulted whenever Transmute
// infers tags for values of category cat.
func (r *Registry) RegisterDetector(ctx context.Context, cat Category, inspector Inspector) {
	r.detectors.Register(cat, inspector)
	r.observer.Notify(ctx, Event{
		Type:      EventDetectorRegistered,
		SrcCat:    cat.String(),
		Timestamp: timeNow(),
	})
}

// Transmute converts value into the dstCat category, taking the source
// category from srcCat (see WithSrcCategory; the zero Category means
// CatType(value)) and tags from a
// combination of detection and explicit options, per spec.md section 4.5:
// plan, execute, and on a runtime edge failure ban that edge and retry
// planning, up to the retry budget.
func (r *Registry) Transmute(ctx context.Context, value any, srcCat, dstCat Category, opts ...TransmuteOption) (any, error) {
	cfg := transmuteConfig{retryBudget: r.retryBudget}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.srcCatSet {
		srcCat = cfg.srcCat
	}
	if srcCat.IsZero() {
		srcCat = CatType(value)
	}
	budget := r.retryBudget
	if cfg.retrySet {
		budget = cfg.retryBudget
	}

	execID := uuid.NewString()

	srcTags := cfg.srcTags
	if !cfg.explicit {
		detected := r.detectors.Detect(srcCat, value)
		if srcTags == nil {
			srcTags = detected
		} else {
			srcTags = srcTags.Union(detected)
		}
	}
	if srcTags == nil {
		srcTags = NewTagSet()
	}
	dstTags := cfg.dstTags
	if dstTags == nil {
		dstTags = NewTagSet()
	}

	r.observer.Notify(ctx, Event{
		Type:        EventPlanStarted,
		ExecutionID: execID,
		SrcCat:      srcCat.String(),
		DstCat:      dstCat.String(),
		Timestamp:   timeNow(),
	})

	banned := make(map[*Edge]struct{})
	var failures []ExecutionFailure

	for attempt := 1; attempt <= budget; attempt++ {
		chain, err := r.search(ctx, PlanRequest{
			SrcCat:  srcCat,
			SrcTags: srcTags,
			DstCat:  dstCat,
			DstTags: dstTags,
			Banned:  banned,
		})
		if err != nil {
			r.observer.Notify(ctx, Event{Type: EventTransmuteFailed, ExecutionID: execID, Err: err, Timestamp: timeNow()})
			return nil, err
		}
		if chain == nil {
			if len(failures) > 0 {
				execErr := &ExecutionFailedError{Failures: failures}
				r.observer.Notify(ctx, Event{Type: EventPlanExhausted, ExecutionID: execID, Err: execErr, Timestamp: timeNow()})
				return nil, execErr
			}
			chainErr := &GraphError{Err: ErrNoChain, Detail: "no chain from " + srcCat.String() + " to " + dstCat.String()}
			r.observer.Notify(ctx, Event{Type: EventPlanExhausted, ExecutionID: execID, Err: chainErr, Timestamp: timeNow()})
			return nil, chainErr
		}
		r.observer.Notify(ctx, Event{Type: EventPlanFound, ExecutionID: execID, Metadata: map[string]any{"chain": chain.String()}, Timestamp: timeNow()})

		result, failedAt, runErr := r.run(ctx, chain, value, execID)
		if runErr == nil {
			if len(failures) > 0 {
				r.observer.Notify(ctx, Event{
					Type:        EventTransmuteRecovered,
					ExecutionID: execID,
					Metadata:    map[string]any{"prior_failures": failures},
					Timestamp:   timeNow(),
				})
			}
			r.observer.Notify(ctx, Event{Type: EventTransmuteSucceeded, ExecutionID: execID, Timestamp: timeNow()})
			return result, nil
		}

		failures = append(failures, ExecutionFailure{EdgeName: failedAt.String(), Attempt: attempt, Err: runErr})
		banned[failedAt] = struct{}{}
		r.observer.Notify(ctx, Event{
			Type:        EventEdgeFailed,
			ExecutionID: execID,
			EdgeName:    failedAt.String(),
			Attempt:     attempt,
			Err:         runErr,
			Timestamp:   timeNow(),
		})
		if attempt < budget {
			r.observer.Notify(ctx, Event{Type: EventEdgeRetrying, ExecutionID: execID, Attempt: attempt + 1, Timestamp: timeNow()})
		}
	}

	execErr := &ExecutionFailedError{Failures: failures}
	r.observer.Notify(ctx, Event{Type: EventTransmuteFailed, ExecutionID: execID, Err: execErr, Timestamp: timeNow()})
	return nil, execErr
}

func (r *Registry) search(ctx context.Context, req PlanRequest) (Chain, error) {
	if r.tracer == nil {
		return r.planner.Search(ctx, req)
	}
	ctx, span := r.tracer.Start(ctx, "transmute.plan",
		trace.WithAttributes(
			attribute.String("src_cat", req.SrcCat.String()),
			attribute.String("dst_cat", req.DstCat.String()),
		))
	defer span.End()
	chain, err := r.planner.Search(ctx, req)
	if err != nil {
		span.RecordError(err)
	}
	return chain, err
}

func (r *Registry) run(ctx context.Context, chain Chain, value any, execID string) (any, *Edge, error) {
	if r.tracer == nil {
		return r.executor.Run(ctx, chain, value, r.observer, execID)
	}
	ctx, span := r.tracer.Start(ctx, "transmute.execute", trace.WithAttributes(attribute.Int("chain_len", len(chain))))
	defer span.End()
	result, failedAt, err := r.executor.Run(ctx, chain, value, r.observer, execID)
	if err != nil {
		span.RecordError(err)
	}
	return result, failedAt, err
}

// timeNow is a thin indirection so tests can hold timestamps
// deterministic without reaching into the coordinator's internals.
var timeNow = func() time.Time { return time.Now() }
