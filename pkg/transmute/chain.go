package transmute

import "strings"

// Chain is a resolved, ordered sequence of edges from a source category to
// a destination category, ready for execution in order.
type Chain []*Edge

// CatIn returns the category the chain starts from, or the zero Category
// if the chain is empty.
func (c Chain) CatIn() Category {
	if len(c) == 0 {
		return Category{}
	}
	return c[0].CatIn
}

// CatOut returns the category the chain ends at, or the zero Category if
// the chain is empty.
func (c Chain) CatOut() Category {
	if len(c) == 0 {
		return Category{}
	}
	return c[len(c)-1].CatOut
}

// Cost is the sum of every edge's cost along the chain.
func (c Chain) Cost() float64 {
	var total float64
	for _, e := range c {
		total += e.Cost
	}
	return total
}

// Names returns the chain's edge names in order, for the
// "start -> A -> B -> C" style of diagnostic and test output.
func (c Chain) Names() []string {
	out := make([]string, len(c))
	for i, e := range c {
		out[i] = e.String()
	}
	return out
}

func (c Chain) String() string {
	if len(c) == 0 {
		return "start"
	}
	return "start -> " + strings.Join(c.Names(), " -> ")
}
