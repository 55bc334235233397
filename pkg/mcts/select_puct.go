package mcts

import (
	"math"

	"github.com/kurobane-go/gozen/pkg/game"
)

// cpuct returns the exploration coefficient at the current parent visit
// count, following the KataGo/AlphaZero growing-base schedule: it starts at
// CpuctInit and grows logarithmically, scaled by CpuctBaseFactor, as the
// subtree accumulates visits. A non-positive CpuctBase disables the growth.
func (p *Parameters) cpuct(parentVisits int64) float32 {
	base := p.CpuctBase
	if base <= 0 {
		return p.CpuctInit
	}
	return p.CpuctInit + p.CpuctBaseFactor*float32(math.Log((float64(parentVisits)+float64(base)+1.0)/float64(base)))
}

// PuctSelectChild walks n's children and returns the edge maximizing the
// PUCT score: an exploitation term (child Q in parent's perspective, tanh
// score-utility and draw shaping included) plus an exploration term driven
// by prior policy and parent/child visit counts. Pruned and invalid
// children are skipped entirely. An unvisited child falls back to the net
// FPU baseline, scaled down by the policy mass already committed to
// visited siblings; a child another goroutine is currently Expanding gets
// a fixed pessimistic Q so the subtree is never mistaken for unexplored.
func (n *Node) PuctSelectChild(color game.Color, isRoot bool) *Edge {
	parentVisits := n.Visits() + n.VirtualLoss()
	cpuct := n.params.cpuct(parentVisits)

	fpuReduction := n.params.FpuReduction
	if isRoot && n.params.DirichletNoise {
		fpuReduction = n.params.FpuRootReduction
	}

	var totalVisitedPolicy float64
	for i := range n.children {
		child := n.children[i].Get()
		if child != nil && child.Visits()+child.VirtualLoss() > 0 {
			totalVisitedPolicy += float64(n.children[i].Policy())
		}
	}
	fpu := n.GetNetWL(color) - float64(fpuReduction)*math.Sqrt(totalVisitedPolicy)
	parentScore := n.GetFinalScore(color)

	var best *Edge
	var bestValue float64 = math.Inf(-1)

	sqrtParent := math.Sqrt(float64(maxInt(int(parentVisits), 1)))

	for i := range n.children {
		e := &n.children[i]
		child := e.Get()

		var q, denom float64
		var visits int64
		policy := float64(e.Policy())

		switch {
		case child == nil:
			q = fpu
		case !child.IsValid() || child.IsPruned():
			continue
		case child.IsExpanding():
			visits = child.Visits() + child.VirtualLoss()
			q = -1 - float64(fpuReduction)
		default:
			visits = child.Visits() + child.VirtualLoss()
			if visits > 0 {
				q = child.GetWL(color, true)
				q += child.GetDraw() * float64(n.params.DrawFactor)
				q += float64(n.params.ScoreUtilityFactor) * child.GetScoreUtility(color, n.params.ScoreUtilityDiv, parentScore)
			} else {
				q = fpu
			}
		}
		denom = float64(visits) + 1.0

		puct := float64(cpuct) * policy * sqrtParent / denom
		value := q + puct
		if value > bestValue {
			bestValue = value
			best = e
		}
	}
	return best
}
