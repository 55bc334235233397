package mcts

import (
	"math"
	"testing"

	"github.com/kurobane-go/gozen/pkg/game"
	"github.com/stretchr/testify/require"
)

func TestPuctSelectChildPrefersUnexploredOverVisitedLoser(t *testing.T) {
	params := NewParameters()
	root := rootWithChildren(t, params)

	// vertex 10 is explored and loses badly; 20 and 30 stay unvisited and
	// should still be competitive via the FPU baseline and prior policy.
	strong := root.GetChild(10)
	for i := 0; i < 20; i++ {
		strong.Update(&NodeEvals{BlackWL: 0.0})
	}

	edge := root.PuctSelectChild(game.Black, false)
	require.NotNil(t, edge)
	require.NotEqual(t, 10, edge.Vertex())
}

func TestPuctSelectChildSkipsPrunedChildren(t *testing.T) {
	params := NewParameters()
	root := rootWithChildren(t, params)

	top := root.GetChild(10)
	top.Update(&NodeEvals{BlackWL: 0.99})
	top.SetActive(true)
	top.SetActive(false)

	for i := 0; i < 50; i++ {
		edge := root.PuctSelectChild(game.Black, false)
		require.NotNil(t, edge)
		require.NotEqual(t, 10, edge.Vertex())
	}
}

func TestCpuctGrowsWithParentVisits(t *testing.T) {
	params := NewParameters()
	low := params.cpuct(0)
	high := params.cpuct(1_000_000)
	require.Greater(t, high, low)
}

func TestCpuctMatchesClosedForm(t *testing.T) {
	params := NewParameters()
	const parentVisits = int64(4000)
	want := params.CpuctInit + params.CpuctBaseFactor*float32(
		math.Log((float64(parentVisits)+float64(params.CpuctBase)+1.0)/float64(params.CpuctBase)))
	require.InDelta(t, float64(want), float64(params.cpuct(parentVisits)), 1e-6)
}

func TestPuctSelectChildFPUUsesNetWLAndVisitedPolicyMass(t *testing.T) {
	params := NewParameters()
	root := rootWithChildren(t, params)

	visited := root.GetChild(10) // policy 0.6
	for i := 0; i < 50; i++ {
		visited.Update(&NodeEvals{BlackWL: 0.3})
	}
	unvisited := root.GetChild(20) // policy 0.3, never updated

	// With a high net baseline, the unvisited child's FPU comfortably beats
	// the weak visited child even after the sqrt(visited policy) reduction.
	root.netBlackWL = 0.9
	edge := root.PuctSelectChild(game.Black, false)
	require.Equal(t, unvisited.Vertex(), edge.Vertex())

	// With a low net baseline, the same weak visited child now wins: the
	// FPU baseline tracks GetNetWL, not the unconditional 0.5 GetWL would
	// report for this never-updated root.
	root.netBlackWL = 0.05
	edge = root.PuctSelectChild(game.Black, false)
	require.Equal(t, visited.Vertex(), edge.Vertex())
}

func TestPuctSelectChildAddsDrawTermToVisitedQ(t *testing.T) {
	params := NewParameters()
	params.DrawFactor = 0.5
	root := newNode(int16(game.NullVertex), 1.0)
	root.setParams(params)
	root.color = game.Black
	root.netBlackWL = 0.5
	root.linkNodeList([]candidate{
		{vertex: 10, policy: 0.5},
		{vertex: 20, policy: 0.5},
	})

	low := root.GetChild(10)
	high := root.GetChild(20)
	for i := 0; i < 10; i++ {
		low.Update(&NodeEvals{BlackWL: 0.4, Draw: 0.0})
		high.Update(&NodeEvals{BlackWL: 0.4, Draw: 0.9})
	}

	// Equal policy, equal visits, equal win-rate: only the draw term can
	// break the tie in favor of vertex 20.
	edge := root.PuctSelectChild(game.Black, false)
	require.Equal(t, 20, edge.Vertex())
}

func TestPuctSelectChildTreatsExpandingChildAsPessimistic(t *testing.T) {
	params := NewParameters()
	root := newNode(int16(game.NullVertex), 1.0)
	root.setParams(params)
	root.color = game.Black
	root.netBlackWL = 0.5
	root.linkNodeList([]candidate{
		{vertex: 10, policy: 0.9}, // a prior this strong would otherwise always win
		{vertex: 20, policy: 0.1},
	})

	expanding := root.GetChild(10)
	require.True(t, expanding.AcquireExpanding())

	edge := root.PuctSelectChild(game.Black, false)
	require.Equal(t, 20, edge.Vertex())
}

