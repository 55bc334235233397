package mcts

import (
	"context"
	"math"
	"math/rand/v2"

	"github.com/kurobane-go/gozen/pkg/game"
)

// PrepareRootNode expands the root (if not already expanded), inflates
// every child up front so Dirichlet noise and superko pruning have
// concrete nodes to act on, and applies the root-only adjustments: noise
// injection, superko removal, and the first-pass-bonus score bias.
func (n *Node) PrepareRootNode(ctx context.Context, board game.Board, evaluator game.Evaluator, avoid game.AvoidFunc, rng *rand.Rand) error {
	if !n.IsExpanded() {
		if n.AcquireExpanding() {
			// The root's own net evaluation is discarded here: root visits
			// only grow through playout's backup, the same as every other
			// node, so nothing should count this as visit zero.
			if _, err := n.ExpandChildren(ctx, board, evaluator, avoid, true); err != nil {
				return err
			}
		} else {
			n.WaitExpanded()
		}
	}

	n.inflateAllChildren()

	if n.params != nil && n.params.DirichletNoise {
		legalMoves := len(n.children)
		if legalMoves > 0 {
			alpha := n.params.DirichletInit * n.params.DirichletFactor / float32(legalMoves)
			n.ApplyDirichletNoise(alpha, rng)
		}
	}

	n.KillRootSuperkos(board)

	n.SetScoreBonus(0)
	for i := range n.children {
		child := n.children[i].Get()
		if child == nil {
			continue
		}
		if n.params != nil && n.params.FirstPassBonus && n.children[i].Vertex() == game.Pass {
			child.SetScoreBonus(0.5)
		} else {
			child.SetScoreBonus(0)
		}
	}
	return nil
}

// ApplyDirichletNoise samples a Dirichlet(alpha) vector over the root's
// children and stashes it in the shared Parameters buffer, keyed by
// vertex, for GetSearchPolicy to mix in. Go's standard library has no
// gamma sampler, so each coordinate is drawn via Marsaglia & Tsang's
// squeeze method and the vector is renormalized to sum to one.
func (n *Node) ApplyDirichletNoise(alpha float32, rng *rand.Rand) {
	if rng == nil {
		rng = defaultRand()
	}
	buffer := make([]float32, len(n.children))
	var sampleSum float32
	for i := range buffer {
		buffer[i] = float32(sampleGamma(rng, float64(alpha)))
		sampleSum += buffer[i]
	}

	for i := range n.params.dirichletBuffer {
		n.params.dirichletBuffer[i] = 0
	}

	if sampleSum < math.SmallestNonzeroFloat32 {
		return
	}

	for i := range buffer {
		buffer[i] /= sampleSum
	}
	for i := range n.children {
		vertex := n.children[i].Vertex()
		if vertex < 0 {
			continue // pass has no board position slot in the noise buffer
		}
		n.params.dirichletBuffer[vertex] = buffer[i]
	}
}

// sampleGamma draws from Gamma(shape, 1) via Marsaglia & Tsang (2000),
// falling back to the boost-by-one trick for shape < 1.
func sampleGamma(rng *rand.Rand, shape float64) float64 {
	if shape < 1 {
		u := rng.Float64()
		for u <= 0 {
			u = rng.Float64()
		}
		return sampleGamma(rng, shape+1) * math.Pow(u, 1.0/shape)
	}

	d := shape - 1.0/3.0
	c := 1.0 / math.Sqrt(9.0*d)
	for {
		var x, v float64
		for {
			x = sampleNormal(rng)
			v = 1.0 + c*x
			if v > 0 {
				break
			}
		}
		v = v * v * v
		u := rng.Float64()
		for u <= 0 {
			u = rng.Float64()
		}
		if u < 1.0-0.0331*(x*x*x*x) {
			return d * v
		}
		if math.Log(u) < 0.5*x*x+d*(1.0-v+math.Log(v)) {
			return d * v
		}
	}
}

func sampleNormal(rng *rand.Rand) float64 {
	u1 := rng.Float64()
	for u1 <= 0 {
		u1 = rng.Float64()
	}
	u2 := rng.Float64()
	return math.Sqrt(-2.0*math.Log(u1)) * math.Cos(2*math.Pi*u2)
}

// GetSearchPolicy returns the edge's policy prior, mixed with the root's
// cached Dirichlet noise sample when noise is requested.
func (n *Node) GetSearchPolicy(e *Edge, noise bool) float32 {
	policy := e.Policy()
	if noise && n.params != nil {
		vertex := e.Vertex()
		if vertex >= 0 && vertex < len(n.params.dirichletBuffer) {
			eta := n.params.dirichletBuffer[vertex]
			policy = policy*(1-n.params.DirichletEpsilon) + n.params.DirichletEpsilon*eta
		}
	}
	return policy
}

// KillRootSuperkos invalidates and drops any root child whose move would
// repeat an earlier position under positional superko, simplifying the
// tree the search actually has to explore.
func (n *Node) KillRootSuperkos(board game.Board) {
	kept := n.children[:0]
	for i := range n.children {
		e := n.children[i]
		vertex := e.Vertex()
		if vertex != game.Pass {
			fork := board.Clone()
			if err := fork.PlayMove(vertex); err == nil && fork.IsSuperko() {
				if child := e.Get(); child != nil {
					child.Invalidate()
				}
				continue
			}
		}
		kept = append(kept, e)
	}
	n.children = kept
}

// PopChild removes and returns the named child edge's node, used when
// reusing a subtree across moves: the caller takes ownership of the
// returned node and becomes responsible for treating it as a fresh root.
func (n *Node) PopChild(vertex int) *Node {
	node := n.GetChild(vertex)
	if node == nil {
		return nil
	}
	out := n.children[:0]
	for i := range n.children {
		if n.children[i].Get() != node {
			out = append(out, n.children[i])
		}
	}
	n.children = out
	return node
}

// ComputeKlDivergence reports how concentrated the visit distribution is
// on the current best move, in nats: zero means every visit went to the
// best move, -1 is the sentinel for "not enough data yet".
func (n *Node) ComputeKlDivergence(rng *rand.Rand) float64 {
	best := n.GetBestMove(n.color, rng)
	if best == nil {
		return -1
	}
	bestVertex := best.Vertex()

	var parentVisits, bestVisits int64
	for i := range n.children {
		child := n.children[i].Get()
		if child == nil || !child.IsActive() {
			continue
		}
		v := child.Visits()
		parentVisits += v
		if n.children[i].Vertex() == bestVertex {
			bestVisits = v
		}
	}

	if parentVisits == bestVisits {
		return 0
	}
	if parentVisits == 0 || bestVisits == 0 {
		return -1
	}
	return -math.Log(float64(bestVisits) / float64(parentVisits))
}

// ComputeTreeComplexity estimates how unsettled n's own win-rate estimate
// still is: sqrt(100 * GetLcbVariance), zero before a second visit makes
// the variance meaningful at all.
func (n *Node) ComputeTreeComplexity() float64 {
	if n.Visits() <= 1 {
		return 0
	}
	variance := n.GetLcbVariance(1.0)
	return math.Sqrt(100 * variance)
}

// ComputeNodeCount walks the owned subtree depth-first and returns the
// number of inflated nodes and uninflated edges reachable from n,
// including pruned and invalid nodes — used to estimate memory use.
func (n *Node) ComputeNodeCount() (nodes, edges int) {
	stack := []*Node{n}
	nodes++
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for i := range cur.children {
			child := cur.children[i].Get()
			if child != nil {
				if !child.IsExpanding() {
					stack = append(stack, child)
				}
				nodes++
			} else {
				edges++
			}
		}
	}
	return nodes, edges
}
