package storage

import "github.com/nyxwell/transmute/pkg/transmute"

// FunctionRegistry maps a stable name to a live transmute.EdgeFunc. An
// EdgeModel row only stores the name (FuncRef); rehydrating a Registry after
// a restart requires resolving that name back to a Go closure, which can
// only ever live in process memory. Process startup registers every
// built-in edge function by name before EdgeRepository.Rehydrate runs.
type FunctionRegistry struct {
	fns map[string]transmute.EdgeFunc
}

// NewFunctionRegistry returns an empty FunctionRegistry.
func NewFunctionRegistry() *FunctionRegistry {
	return &FunctionRegistry{fns: make(map[string]transmute.EdgeFunc)}
}

// Register associates name with fn. A later call with the same name
// replaces the earlier registration.
func (r *FunctionRegistry) Register(name string, fn transmute.EdgeFunc) {
	r.fns[name] = fn
}

// Lookup resolves name to its registered function.
func (r *FunctionRegistry) Lookup(name string) (transmute.EdgeFunc, bool) {
	fn, ok := r.fns[name]
	return fn, ok
}

// Names returns every currently registered function name.
func (r *FunctionRegistry) Names() []string {
	names := make([]string, 0, len(r.fns))
	for name := range r.fns {
		names = append(names, name)
	}
	return names
}
