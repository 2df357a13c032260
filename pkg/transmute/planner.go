package transmute

import (
	"container/heap"
	"context"
)

// PlanRequest describes a single planning query: transmute a value carrying
// srcTags from srcCat into dstCat while satisfying dstTags, without using
// any edge in banned.
type PlanRequest struct {
	SrcCat  Category
	SrcTags TagSet
	DstCat  Category
	DstTags TagSet
	Banned  map[*Edge]struct{}
}

// searchNode is one frontier entry of the bidirectional search: the edge
// being considered, the parent node it was reached from (nil at the
// frontier root), the accumulated cost and priority, and the tag state in
// effect after firing edge (forward direction) or required before firing
// edge (backward direction).
type searchNode struct {
	edge       *Edge
	parent     *searchNode
	cost       float64
	priority   float64
	stateAfter TagSet
	seq        int64
}

// visitedKey distinguishes "no parent" (has=false) from "parent reached
// with the empty tag set" (has=true, key=0) so the two can never collide
// in a visited table keyed only by a tag-state signature.
type visitedKey struct {
	has bool
	key uint64
}

func keyForParent(parent *searchNode) visitedKey {
	if parent == nil {
		return visitedKey{has: false}
	}
	return visitedKey{has: true, key: parent.stateAfter.signature()}
}

func keyForState(s TagSet) visitedKey {
	return visitedKey{has: true, key: s.signature()}
}

// nodeHeap is a min-heap of *searchNode ordered by priority, breaking ties
// by insertion sequence (oldest first) to give the search a deterministic
// order over equal-priority candidates.
type nodeHeap []*searchNode

func (h nodeHeap) Len() int { return len(h) }
func (h nodeHeap) Less(i, j int) bool {
	if h[i].priority != h[j].priority {
		return h[i].priority < h[j].priority
	}
	return h[i].seq < h[j].seq
}
func (h nodeHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *nodeHeap) Push(x any)   { *h = append(*h, x.(*searchNode)) }
func (h *nodeHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return item
}

// Planner resolves a PlanRequest into a Chain by bidirectional Dijkstra
// search over an EdgeTable, as spec'd in section 4.3: forward and backward
// frontiers expand in lock-step (the smaller non-empty queue advances),
// each side checking for a direct goal before checking whether it has met
// the other side's visited set.
type Planner struct {
	edges *EdgeTable
}

// NewPlanner builds a Planner searching over edges.
func NewPlanner(edges *EdgeTable) *Planner {
	return &Planner{edges: edges}
}

// Search finds a minimum-cost Chain satisfying req, or returns a nil Chain
// with a nil error if none exists reachable within req's banned set and tag
// constraints (the caller distinguishes "no chain" from "no edge at all"
// using the sentinel errors in errors.go). ctx is checked between frontier pops so
// a caller can bound search time.
func (p *Planner) Search(ctx context.Context, req PlanRequest) (Chain, error) {
	fwdSeeds := p.edges.EdgesFrom(req.SrcCat)
	if len(fwdSeeds) == 0 {
		return nil, &RegistryError{Err: ErrNoStartingOrTerminatingEdge, Detail: "no edge starts at " + req.SrcCat.String()}
	}
	bwdSeeds := p.edges.EdgesTo(req.DstCat)
	if len(bwdSeeds) == 0 {
		return nil, &RegistryError{Err: ErrNoStartingOrTerminatingEdge, Detail: "no edge ends at " + req.DstCat.String()}
	}

	var seq int64
	nextSeq := func() int64 { seq++; return seq }

	fwdQueue := &nodeHeap{}
	bwdQueue := &nodeHeap{}
	heap.Init(fwdQueue)
	heap.Init(bwdQueue)

	fwdVisited := make(map[*Edge]map[visitedKey]*searchNode)
	bwdVisited := make(map[*Edge]map[visitedKey]*searchNode)

	anySeed := false
	for _, e := range fwdSeeds {
		if !e.ReqIn.IsSubsetOf(req.SrcTags) {
			continue
		}
		anySeed = true
		if isBanned(req.Banned, e) {
			continue
		}
		heap.Push(fwdQueue, &searchNode{
			edge:       e,
			parent:     nil,
			cost:       e.Cost,
			priority:   e.Cost / float64(e.ReqIn.Len()+1),
			stateAfter: req.SrcTags.Sub(e.ReqIn).Union(e.ProvOut),
			seq:        nextSeq(),
		})
	}
	if !anySeed {
		return nil, &RegistryError{Err: ErrNoStartingOrTerminatingEdge, Detail: "no edge starting at " + req.SrcCat.String() + " satisfies required tags " + req.SrcTags.String()}
	}
	for _, e := range bwdSeeds {
		if isBanned(req.Banned, e) {
			continue
		}
		heap.Push(bwdQueue, &searchNode{
			edge:       e,
			parent:     nil,
			cost:       e.Cost,
			priority:   e.Cost / float64(req.DstTags.Intersect(e.ProvOut).Len()+1),
			stateAfter: req.DstTags.Sub(e.ProvOut).Union(e.ReqIn),
			seq:        nextSeq(),
		})
	}

	for fwdQueue.Len() > 0 || bwdQueue.Len() > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		advanceFwd := fwdQueue.Len() > 0 && (bwdQueue.Len() == 0 || fwdQueue.Len() <= bwdQueue.Len())

		if advanceFwd {
			node := heap.Pop(fwdQueue).(*searchNode)
			if isBanned(req.Banned, node.edge) {
				continue
			}
			if node.edge.CatOut == req.DstCat && req.DstTags.IsSubsetOf(node.stateAfter) {
				return walkForward(node), nil
			}
			if matches, ok := bwdVisited[node.edge]; ok {
				parentState := req.SrcTags
				if node.parent != nil {
					parentState = node.parent.stateAfter
				}
				for _, m := range matches {
					if m.stateAfter.IsSubsetOf(parentState) {
						return spliceMeet(node, m), nil
					}
				}
			}
			recordVisited(fwdVisited, node.edge, keyForParent(node.parent), node)

			for _, e2 := range p.edges.EdgesFrom(node.edge.CatOut) {
				if isBanned(req.Banned, e2) {
					continue
				}
				if !e2.ReqIn.IsSubsetOf(node.stateAfter) {
					continue
				}
				if alreadyVisited(fwdVisited, e2, keyForState(node.stateAfter)) {
					continue
				}
				nextState := node.stateAfter.Sub(e2.ReqIn).Union(e2.ProvOut)
				heap.Push(fwdQueue, &searchNode{
					edge:       e2,
					parent:     node,
					cost:       node.cost + e2.Cost,
					priority:   node.cost + e2.Cost/float64(e2.ReqIn.Len()+1),
					stateAfter: nextState,
					seq:        nextSeq(),
				})
			}
			continue
		}

		node := heap.Pop(bwdQueue).(*searchNode)
		if isBanned(req.Banned, node.edge) {
			continue
		}
		if node.edge.CatIn == req.SrcCat && node.stateAfter.IsSubsetOf(req.SrcTags) {
			return walkBackward(node), nil
		}
		if matches, ok := fwdVisited[node.edge]; ok {
			for _, m := range matches {
				if node.stateAfter.IsSubsetOf(m.stateAfter) {
					return spliceMeet(m, node), nil
				}
			}
		}
		recordVisited(bwdVisited, node.edge, keyForParent(node.parent), node)

		for _, e2 := range p.edges.EdgesTo(node.edge.CatIn) {
			if isBanned(req.Banned, e2) {
				continue
			}
			if !e2.ProvOut.IsSubsetOf(node.stateAfter) {
				continue
			}
			if alreadyVisited(bwdVisited, e2, keyForState(node.stateAfter)) {
				continue
			}
			nextState := node.stateAfter.Sub(e2.ProvOut).Union(e2.ReqIn)
			heap.Push(bwdQueue, &searchNode{
				edge:       e2,
				parent:     node,
				cost:       node.cost + e2.Cost,
				priority:   node.cost + e2.Cost/float64(node.stateAfter.Intersect(e2.ProvOut).Len()+1),
				stateAfter: nextState,
				seq:        nextSeq(),
			})
		}
	}

	return nil, nil
}

func isBanned(banned map[*Edge]struct{}, e *Edge) bool {
	if banned == nil {
		return false
	}
	_, ok := banned[e]
	return ok
}

func recordVisited(table map[*Edge]map[visitedKey]*searchNode, e *Edge, key visitedKey, node *searchNode) {
	m, ok := table[e]
	if !ok {
		m = make(map[visitedKey]*searchNode)
		table[e] = m
	}
	m[key] = node
}

func alreadyVisited(table map[*Edge]map[visitedKey]*searchNode, e *Edge, key visitedKey) bool {
	m, ok := table[e]
	if !ok {
		return false
	}
	_, ok = m[key]
	return ok
}

// walkForward reconstructs the chain from a forward-frontier node back to
// its root, producing edges in source-to-destination execution order.
func walkForward(n *searchNode) Chain {
	var rev Chain
	for cur := n; cur != nil; cur = cur.parent {
		rev = append(rev, cur.edge)
	}
	out := make(Chain, len(rev))
	for i, e := range rev {
		out[len(rev)-1-i] = e
	}
	return out
}

// walkBackward reconstructs the chain from a backward-frontier node
// outward to the destination, which is already in source-to-destination
// execution order (the backward frontier grows from the goal edge
// outward, so its parent chain walks toward the source).
func walkBackward(n *searchNode) Chain {
	var out Chain
	for cur := n; cur != nil; cur = cur.parent {
		out = append(out, cur.edge)
	}
	return out
}

// spliceMeet joins a forward-frontier node with the backward-frontier node
// it met at the same edge into one end-to-end chain: the forward node's
// ancestors (excluding itself, since the backward node supplies this shared
// edge), followed by the backward node's own chain.
func spliceMeet(fwdNode, bwdNode *searchNode) Chain {
	var ancestors Chain
	if fwdNode.parent != nil {
		ancestors = walkForward(fwdNode.parent)
	}
	return append(ancestors, walkBackward(bwdNode)...)
}
