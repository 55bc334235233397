package mcts

import (
	"context"
	"testing"

	"github.com/kurobane-go/gozen/internal/fakeeval"
	"github.com/kurobane-go/gozen/internal/testboard"
	"github.com/kurobane-go/gozen/pkg/game"
	"github.com/stretchr/testify/require"
)

func TestSearchReturnsLegalMoveAndAccumulatesVisits(t *testing.T) {
	board := testboard.NewBoard(5, 7.5)
	eval := fakeeval.New()
	engine := NewEngine(board, eval, nil)
	engine.SetLimits(DefaultLimits().SetCycles(64).SetThreads(2))

	move, err := engine.Search(context.Background(), board)
	require.NoError(t, err)
	require.True(t, move == game.Pass || board.IsLegalMove(move, board.ToMove(), nil))
	require.GreaterOrEqual(t, engine.Root().Visits(), int64(64))
}

func TestSearchIsDeterministicUnderSingleThread(t *testing.T) {
	board := testboard.NewBoard(5, 7.5)
	eval := fakeeval.New()

	engine1 := NewEngine(board, eval, nil)
	engine1.SetLimits(DefaultLimits().SetCycles(32).SetThreads(1))
	move1, err := engine1.Search(context.Background(), board)
	require.NoError(t, err)

	engine2 := NewEngine(board, eval, nil)
	engine2.SetLimits(DefaultLimits().SetCycles(32).SetThreads(1))
	move2, err := engine2.Search(context.Background(), board)
	require.NoError(t, err)

	require.Equal(t, move1, move2)
}

func TestSearchRespectsContextCancellation(t *testing.T) {
	board := testboard.NewBoard(9, 7.5)
	eval := fakeeval.New()
	engine := NewEngine(board, eval, nil)
	engine.SetLimits(DefaultLimits().SetThreads(2)) // no cycle bound, only ctx can stop it

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := engine.Search(ctx, board)
	require.NoError(t, err)
}

func TestEngineIDIsUniquePerInstance(t *testing.T) {
	board := testboard.NewBoard(5, 7.5)
	eval := fakeeval.New()
	e1 := NewEngine(board, eval, nil)
	e2 := NewEngine(board, eval, nil)
	require.NotEqual(t, e1.ID(), e2.ID())
}

func TestAvoidFuncExcludesVetoedMoves(t *testing.T) {
	board := testboard.NewBoard(5, 7.5)
	eval := fakeeval.New()
	banned := board.Vertex(2, 2)

	engine := NewEngine(board, eval, nil)
	engine.SetAvoidFunc(func(vertex int, color game.Color) bool { return vertex == banned })
	engine.SetLimits(DefaultLimits().SetCycles(64).SetThreads(1))

	_, err := engine.Search(context.Background(), board)
	require.NoError(t, err)
	require.Nil(t, engine.Root().GetChild(banned))
}
