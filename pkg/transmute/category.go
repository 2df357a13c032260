package transmute

import (
	"fmt"
	"reflect"

	"github.com/cespare/xxhash/v2"
)

// Category identifies a class of values an Edge accepts or produces. It is
// an opaque, comparable key wrapping whatever hashable handle the caller
// used at registration time (a type token, a string, a composite key) so
// that heterogeneous category kinds can coexist in one registry.
//
// Category is intentionally NOT keyed on the handle's Go equality: the
// handle is kept only for diagnostics. Two categories are the same category
// iff their Key() values match.
type Category struct {
	key   uint64
	label string
}

// CatKey builds a Category from an explicit string key. This is the
// preferred constructor when the domain's categories are naturally
// strings or composite string keys (e.g. "json", "csv", "webpage:clean").
func CatKey(key string) Category {
	return Category{key: xxhash.Sum64String(key), label: key}
}

// CatType builds a Category from a Go type, analogous to inscribing a
// transmutation against a type token in a dynamically typed host.
func CatType(v any) Category {
	t := reflect.TypeOf(v)
	label := "<nil>"
	if t != nil {
		label = t.String()
	}
	return CatKey("type:" + label)
}

// Cat builds a Category from any value with a stable formatted
// representation. Two handles that format identically collide onto the
// same Category; use CatKey directly when that is not acceptable.
func Cat(handle any) Category {
	return CatKey(fmt.Sprintf("%#v", handle))
}

// Key returns the opaque hash identifying this category.
func (c Category) Key() uint64 { return c.key }

// IsZero reports whether c is the zero Category (never produced by the
// constructors above; useful as a "not set" sentinel).
func (c Category) IsZero() bool { return c == Category{} }

func (c Category) String() string {
	if c.label != "" {
		return c.label
	}
	return fmt.Sprintf("category(%016x)", c.key)
}
