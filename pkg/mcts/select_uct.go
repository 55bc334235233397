package mcts

import (
	"math"

	"github.com/kurobane-go/gozen/pkg/game"
)

// computeWidth bounds how many of n's children UctSelectChild scans before
// giving up and taking the best value seen so far: progressive widening,
// growing logarithmically with the parent's own visit count so a flat
// rollout search never pays to rank every sibling while the subtree is
// still mostly unvisited.
func computeWidth(parentVisits int64) int {
	if parentVisits <= 0 {
		return 1
	}
	return int(math.Log2(float64(parentVisits))) + 1
}

// UctSelectChild is the classical UCB1-style alternative to PUCT, used
// when Parameters.UseRollout is set: a flat exploration bonus plus a
// policy-weighted nudge (bonus) rather than PUCT's policy-scaled one. It
// walks children in their existing policy-descending order and widens the
// scanned window as parentVisits grows, breaking early rather than
// ranking the whole child list every call; a move that would capture
// stones earns the window one extra slot since it is worth a look even
// past the cutoff.
func (n *Node) UctSelectChild(color game.Color, board game.Board) *Edge {
	n.WaitExpanded()

	cpuct := float64(n.params.CpuctInit)
	parentQ := n.GetWL(color, false)

	var parentVisits int64
	for i := range n.children {
		child := n.children[i].Get()
		if child != nil && child.IsValid() {
			parentVisits += child.Visits()
		}
	}
	numerator := math.Log(float64(parentVisits) + 1)

	width := maxInt(computeWidth(parentVisits), 1)

	var best *Edge
	bestValue := math.Inf(-1)

	i := 0
	for idx := range n.children {
		e := &n.children[idx]
		if board != nil && board.IsCaptureMove(e.Vertex(), color) {
			width++
		}
		i++
		if i > width {
			break
		}

		child := e.Get()
		if child != nil && !child.IsActive() {
			continue
		}

		q := parentQ
		var visits int64
		if child != nil {
			visits = child.Visits()
			switch {
			case child.IsExpanding():
				q = -1.0
			case visits > 0:
				q = child.GetWL(color, false)
			}
		}

		denom := 1.0 + float64(visits)
		psa := float64(e.Policy())
		bonus := math.Sqrt(1000.0/(float64(parentVisits)+1000.0)) * psa
		uct := cpuct * math.Sqrt(numerator/denom)
		value := q + uct + bonus

		if value > bestValue {
			bestValue = value
			best = e
		}
	}
	if best != nil {
		best.Inflate(n.params)
	}
	return best
}
