package mcts

import (
	"testing"

	"github.com/kurobane-go/gozen/pkg/game"
	"github.com/stretchr/testify/require"
)

// captureBoard stubs game.Board, reporting a fixed set of vertices as
// capture moves and panicking on every other method — UctSelectChild only
// ever calls IsCaptureMove on the board it's handed.
type captureBoard struct {
	game.Board
	captures map[int]bool
}

func (b captureBoard) IsCaptureMove(vertex int, color game.Color) bool {
	return b.captures[vertex]
}

func TestComputeWidthGrowsLogarithmicallyWithParentVisits(t *testing.T) {
	require.Equal(t, 1, computeWidth(0))
	require.Equal(t, 1, computeWidth(1))
	require.Equal(t, 2, computeWidth(2))
	require.Greater(t, computeWidth(1_000_000), computeWidth(10))
}

func TestUctSelectChildPrefersUnexploredOverVisitedLoser(t *testing.T) {
	params := NewParameters()
	root := rootWithChildren(t, params)

	strong := root.GetChild(10)
	for i := 0; i < 10; i++ {
		strong.Update(&NodeEvals{BlackWL: 0.0})
	}

	edge := root.UctSelectChild(game.Black, nil)
	require.NotNil(t, edge)
	require.NotEqual(t, 10, edge.Vertex())
}

func TestUctSelectChildSkipsPrunedChildren(t *testing.T) {
	params := NewParameters()
	root := rootWithChildren(t, params)

	top := root.GetChild(10)
	for i := 0; i < 20; i++ {
		top.Update(&NodeEvals{BlackWL: 0.99})
	}
	top.SetActive(true)
	top.SetActive(false)

	edge := root.UctSelectChild(game.Black, nil)
	require.NotNil(t, edge)
	require.NotEqual(t, 10, edge.Vertex())
}

func TestUctSelectChildTreatsExpandingChildAsPessimistic(t *testing.T) {
	params := NewParameters()
	root := newNode(int16(game.NullVertex), 1.0)
	root.setParams(params)
	root.color = game.Black
	root.linkNodeList([]candidate{
		{vertex: 10, policy: 0.9},
		{vertex: 20, policy: 0.1},
	})
	root.ExpandDone()

	expanding := root.GetChild(10)
	require.True(t, expanding.AcquireExpanding())

	// Give vertex 20 enough visits that the window opens wide enough to
	// reach past vertex 10's higher-policy slot.
	other := root.GetChild(20)
	for i := 0; i < 2; i++ {
		other.Update(&NodeEvals{BlackWL: 0.5})
	}

	edge := root.UctSelectChild(game.Black, nil)
	require.NotNil(t, edge)
	require.Equal(t, 20, edge.Vertex())
}

// TestUctSelectChildCaptureMoveExtendsWindow pins down the one-slot window
// extension a capture move earns: with parentVisits==1 the base window
// only covers the first (highest-policy) child, so a weak vertex 10 would
// otherwise be the only candidate ever scored. Flagging it as a capture
// move lets the scan reach vertex 20, which then wins outright.
func TestUctSelectChildCaptureMoveExtendsWindow(t *testing.T) {
	params := NewParameters()
	root := rootWithChildren(t, params)

	weak := root.GetChild(10)
	weak.Update(&NodeEvals{BlackWL: 0.0})

	withoutCapture := root.UctSelectChild(game.Black, nil)
	require.NotNil(t, withoutCapture)
	require.Equal(t, 10, withoutCapture.Vertex())

	board := captureBoard{captures: map[int]bool{10: true}}
	withCapture := root.UctSelectChild(game.Black, board)
	require.NotNil(t, withCapture)
	require.Equal(t, 20, withCapture.Vertex())
}
