package mcts

import "sync/atomic"

// Edge is a child slot: an integer vertex, a prior policy, and a lazily
// allocated owned Node. An edge is uninflated (policy-only, zero memory
// overhead beyond the slot) until a selector requests Inflate just before
// descending through it. Inflation is one-way during a search and
// idempotent under concurrent callers; Release collapses it back to
// uninflated on destruction.
type Edge struct {
	vertex int
	policy float32
	node   atomic.Pointer[Node]
}

func newEdge(vertex int, policy float32) Edge {
	return Edge{vertex: vertex, policy: policy}
}

func (e *Edge) Vertex() int { return e.vertex }

func (e *Edge) Policy() float32 { return e.policy }

// Get returns the owned node, or nil if the edge has not been inflated.
func (e *Edge) Get() *Node { return e.node.Load() }

// Inflate allocates the owned node if absent, installs params on it, and
// returns it. Safe under concurrent callers racing to inflate the same
// edge: exactly one allocation wins, the rest observe it.
func (e *Edge) Inflate(params *Parameters) *Node {
	if n := e.node.Load(); n != nil {
		return n
	}
	candidate := newNode(int16(e.vertex), e.policy)
	candidate.params = params
	if e.node.CompareAndSwap(nil, candidate) {
		return candidate
	}
	return e.node.Load()
}

// Release drops the owned node, collapsing the edge back to uninflated.
func (e *Edge) Release() {
	e.node.Store(nil)
}
