package mcts

import (
	"math"
	"math/rand/v2"
)

// ProbSelectChild draws a child proportionally to its prior policy,
// ignoring visit counts entirely. GetBestMove falls back to it when no
// child has been visited. Children are drawn regardless of their status,
// so a pruned or invalid child can be returned.
func (n *Node) ProbSelectChild(rng *rand.Rand) *Edge {
	if len(n.children) == 0 {
		return nil
	}
	var total float64
	for i := range n.children {
		total += float64(n.children[i].Policy())
	}
	if total <= 0 {
		return &n.children[0]
	}
	draw := rng.Float64() * total
	var acc float64
	for i := range n.children {
		acc += float64(n.children[i].Policy())
		if draw <= acc {
			return &n.children[i]
		}
	}
	return &n.children[len(n.children)-1]
}

// RandomizeFirstProportionally replaces the greedy best-move choice with a
// random draw among visited, valid, unpruned children, each weighted by
// visits^(1/temp); there is no cutoff relative to the most-visited child,
// and the prior policy plays no part. When no child qualifies it returns
// the first child. This mirrors opening-book randomization in self-play
// training pipelines without touching the underlying statistics.
func (n *Node) RandomizeFirstProportionally(rng *rand.Rand, temp float64) *Edge {
	if len(n.children) == 0 {
		return nil
	}
	if temp <= 0 {
		temp = 1.0
	}

	type weighted struct {
		edge   *Edge
		weight float64
	}
	weights := make([]weighted, 0, len(n.children))
	var total float64
	for i := range n.children {
		child := n.children[i].Get()
		if child == nil || !child.IsValid() || child.IsPruned() {
			continue
		}
		v := float64(child.Visits())
		if v <= 0 {
			continue
		}
		w := math.Pow(v, 1.0/temp)
		weights = append(weights, weighted{edge: &n.children[i], weight: w})
		total += w
	}
	if len(weights) == 0 {
		return &n.children[0]
	}
	draw := rng.Float64() * total
	var acc float64
	for _, w := range weights {
		acc += w.weight
		if draw <= acc {
			return w.edge
		}
	}
	return weights[len(weights)-1].edge
}
