package transmute

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Tag is an opaque, comparable symbol representing a refinement,
// dependency, or capability carried alongside a value between edges. Like
// Category, it is hash-identified rather than compared by Go equality of
// an underlying handle.
type Tag struct {
	key   uint64
	label string
}

// TagKey builds a Tag from an explicit string key.
func TagKey(key string) Tag {
	return Tag{key: xxhash.Sum64String(key), label: key}
}

// TagOf builds a Tag from any value with a stable formatted representation.
func TagOf(handle any) Tag {
	return TagKey(fmt.Sprintf("%#v", handle))
}

func (t Tag) Key() uint64 { return t.key }

func (t Tag) String() string {
	if t.label != "" {
		return t.label
	}
	return fmt.Sprintf("tag(%016x)", t.key)
}

// TagSet is the set of tags available at some point in planning or
// execution. The zero value is a valid, empty set.
type TagSet map[uint64]Tag

// NewTagSet builds a TagSet from a sequence of tags, de-duplicating them.
func NewTagSet(tags ...Tag) TagSet {
	s := make(TagSet, len(tags))
	for _, t := range tags {
		s[t.key] = t
	}
	return s
}

// Contains reports whether t is a member of s.
func (s TagSet) Contains(t Tag) bool {
	_, ok := s[t.key]
	return ok
}

// IsSubsetOf reports whether every tag in s is also in other (s ⊆ other).
func (s TagSet) IsSubsetOf(other TagSet) bool {
	for k := range s {
		if _, ok := other[k]; !ok {
			return false
		}
	}
	return true
}

// Union returns a new set containing every tag in s or other.
func (s TagSet) Union(other TagSet) TagSet {
	out := make(TagSet, len(s)+len(other))
	for k, t := range s {
		out[k] = t
	}
	for k, t := range other {
		out[k] = t
	}
	return out
}

// Sub returns s \ other: every tag of s not present in other.
func (s TagSet) Sub(other TagSet) TagSet {
	out := make(TagSet, len(s))
	for k, t := range s {
		if _, ok := other[k]; !ok {
			out[k] = t
		}
	}
	return out
}

// Intersect returns s ∩ other.
func (s TagSet) Intersect(other TagSet) TagSet {
	out := make(TagSet)
	for k, t := range s {
		if _, ok := other[k]; ok {
			out[k] = t
		}
	}
	return out
}

// Len returns the number of tags in s.
func (s TagSet) Len() int { return len(s) }

// Slice returns the tags of s in no particular order.
func (s TagSet) Slice() []Tag {
	out := make([]Tag, 0, len(s))
	for _, t := range s {
		out = append(out, t)
	}
	return out
}

// signature returns an order-independent uint64 fingerprint of s, used to
// key the planner's visited tables. It is a commutative combination (XOR)
// of member hashes, not a cryptographic digest: collisions across distinct
// tag sets are possible in principle but are not a correctness concern for
// a search-space memoization key.
func (s TagSet) signature() uint64 {
	var sig uint64
	for k := range s {
		sig ^= k
	}
	return sig
}

func (s TagSet) String() string {
	names := make([]string, 0, len(s))
	for _, t := range s {
		names = append(names, t.String())
	}
	sort.Strings(names)
	return "{" + strings.Join(names, ",") + "}"
}
