package mcts

import (
	"math"
	"math/rand/v2"

	"github.com/kurobane-go/gozen/pkg/game"
)

// GetGumbelQValue is the non-normalized completed-Q value the Gumbel-top-k
// root selector mixes with policy logits: the node's own win-rate blended
// with its score-utility bonus, in color's perspective.
func (n *Node) GetGumbelQValue(color game.Color, parentScore float64) float64 {
	factor := float64(0.2)
	div := float32(20.0)
	if n.params != nil {
		factor = float64(n.params.CompletedQUtilityFactor)
		div = n.params.ScoreUtilityDiv
	}
	return n.GetWL(color, false) + factor*n.GetScoreUtility(color, div, parentScore)
}

// NormalizeCompletedQ progressively widens the completed-Q scale and
// narrows the influence of the prior as the subtree accumulates visits,
// the same transform the root's Gumbel mixing uses.
func (n *Node) NormalizeCompletedQ(completedQ float64, maxVisits int64) float64 {
	return (50.0 + float64(maxVisits)) * 0.1 * completedQ
}

// ShouldApplyGumbel reports whether the root should still use Gumbel-top-k
// selection rather than falling back to ordinary PUCT: it is only active
// for the first GumbelPlayouts visits of a search.
func (n *Node) ShouldApplyGumbel() bool {
	if n.params == nil || !n.params.Gumbel {
		return false
	}
	return int64(n.params.GumbelPlayouts) > n.Visits()
}

// gumbelSchedule mirrors the original engine's variant of Sequential
// Halving with Gumbel: it returns, for the current root visit count, the
// visit count a child must already have to remain "considered" this round.
// considered moves below that bar get knocked out of contention for one
// round (represented by the caller assigning them the -1e6 floor).
func gumbelSchedule(rootVisits, consideredMoves int, onlyMaxVisit bool, maxVisits int64) int64 {
	n := int(math.Log2(float64(maxInt(1, consideredMoves)))) + 1
	adjConsidered := 1 << (n - 1)

	table := make([]int, adjConsidered)
	for i, r, w := 0, 1, adjConsidered; i < n; i, w, r = i+1, w/2, r*2 {
		for j := 0; j < w; j++ {
			table[adjConsidered-j-1] += r
		}
	}

	visitsPerRound := n * adjConsidered
	if visitsPerRound == 0 {
		visitsPerRound = 1
	}
	rounds := rootVisits / visitsPerRound
	visitsThisRound := rootVisits - rounds*visitsPerRound
	m := visitsThisRound / adjConsidered

	height := 0
	width := adjConsidered
	offset := 0
	for i, t := 0, 1; i < m; i, t = i+1, t*2 {
		height += t
		width /= 2
		offset += width
	}
	if width == 0 {
		width = 1
	}

	idx := offset + rootVisits%width
	if idx >= len(table) {
		idx = len(table) - 1
	}
	if onlyMaxVisit {
		return maxVisits
	}
	return int64(table[idx])*int64(rounds) + int64(height) + int64((visitsThisRound-m*adjConsidered)/width)
}

// processGumbelLogits mutates logits in place: children whose visit count
// matches the round's considered-visit threshold get their completed-Q
// folded into the Gumbel noise already seeded there; everyone else is
// pinned to the floor value so they lose the argmax this round.
func (n *Node) processGumbelLogits(logits map[int]float64, color game.Color, rootVisits int, maxVisits int64, consideredMoves int, floor float64, onlyMaxVisit bool) {
	consideredVisits := gumbelSchedule(rootVisits, consideredMoves, onlyMaxVisit, maxVisits)
	parentScore := n.GetFinalScore(color)

	for i := range n.children {
		e := &n.children[i]
		child := e.Get()
		if child != nil && !child.IsActive() {
			continue
		}
		var visits int64
		if child != nil {
			visits = child.Visits()
		}
		if visits == consideredVisits {
			if visits > 0 {
				logits[e.Vertex()] += n.NormalizeCompletedQ(child.GetGumbelQValue(color, parentScore), maxVisits)
			}
		} else {
			logits[e.Vertex()] = floor
		}
	}
}

// sampleGumbel draws from the standard Gumbel(0,1) distribution via
// inverse-CDF sampling, matching std::extreme_value_distribution<float>(0,1).
func sampleGumbel(rng *rand.Rand) float64 {
	u := rng.Float64()
	for u <= 0 {
		u = rng.Float64()
	}
	return -math.Log(-math.Log(u))
}

// GumbelSelectChild runs one step of Gumbel-top-k selection: every child is
// scored by fresh Gumbel noise plus log-policy, then knocked in or out of
// contention by processGumbelLogits according to the current sequential
// halving round, and the argmax wins.
func (n *Node) GumbelSelectChild(rng *rand.Rand, color game.Color, onlyMaxVisit bool) *Edge {
	n.WaitExpanded()

	logits := make(map[int]float64, len(n.children))
	var parentVisits int
	var maxVisits int64

	for i := range n.children {
		e := &n.children[i]
		child := e.Get()
		logits[e.Vertex()] = sampleGumbel(rng) + math.Log(float64(e.Policy())+1e-8)
		if child != nil && child.IsValid() {
			v := child.Visits()
			parentVisits += int(v)
			if v > maxVisits {
				maxVisits = v
			}
		}
	}

	consideredMoves := n.params.GumbelConsideredMoves
	if consideredMoves > len(n.children) {
		consideredMoves = len(n.children)
	}
	n.processGumbelLogits(logits, color, parentVisits, maxVisits, consideredMoves, -1e6, onlyMaxVisit)

	var best *Edge
	bestValue := math.Inf(-1)
	for i := range n.children {
		e := &n.children[i]
		if v := logits[e.Vertex()]; v > bestValue {
			bestValue = v
			best = e
		}
	}
	if best != nil {
		best.Inflate(n.params)
	}
	return best
}

// GetGumbelMove returns the vertex Gumbel-top-k selection would commit to
// as the final move, using only the max-visits child among survivors.
func (n *Node) GetGumbelMove(rng *rand.Rand) int {
	n.WaitExpanded()
	e := n.GumbelSelectChild(rng, n.color, true)
	if e == nil {
		return game.Pass
	}
	return e.Vertex()
}
