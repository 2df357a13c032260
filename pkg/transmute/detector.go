package transmute

import "sync"

// Inspector examines a value and returns the tags it observes. Inspectors
// are assumed infallible by contract: a panicking Inspector is a
// programmer error and is not guarded against here, matching the core's
// treatment of edge functions as opaque but Detect callers as trusted
// registration-time code.
type Inspector func(value any) []Tag

// DetectorTable indexes registered Inspectors by the category of value
// they inspect.
type DetectorTable struct {
	mu    sync.RWMutex
	byCat map[uint64][]Inspector
}

// NewDetectorTable creates an empty detector table.
func NewDetectorTable() *DetectorTable {
	return &DetectorTable{byCat: make(map[uint64][]Inspector)}
}

// Register adds inspector to the set consulted for values of category cat.
// Inspectors for the same category run in registration order.
func (t *DetectorTable) Register(cat Category, inspector Inspector) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.byCat[cat.Key()] = append(t.byCat[cat.Key()], inspector)
}

// Detect runs every inspector registered for cat against value and unions
// their output into a single TagSet. An unregistered category yields an
// empty set, not an error.
func (t *DetectorTable) Detect(cat Category, value any) TagSet {
	t.mu.RLock()
	inspectors := t.byCat[cat.Key()]
	t.mu.RUnlock()

	out := make(TagSet)
	for _, inspect := range inspectors {
		for _, tag := range inspect(value) {
			out[tag.Key()] = tag
		}
	}
	return out
}
