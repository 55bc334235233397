package testboard

import (
	"math/rand/v2"
	"testing"

	"github.com/kurobane-go/gozen/pkg/game"
	"github.com/stretchr/testify/require"
)

func TestNewBoardEmpty(t *testing.T) {
	b := NewBoard(9, 7.5)
	require.Equal(t, 9, b.BoardSize())
	require.Equal(t, 81, b.NumIntersections())
	require.Equal(t, game.Black, b.ToMove())
	require.Equal(t, 0, b.MoveNumber())
	require.Len(t, b.LegalMoves(game.Black, nil), 81)
}

func TestPlayMoveAlternatesSideToMove(t *testing.T) {
	b := NewBoard(5, 7.5)
	require.NoError(t, b.PlayMove(b.Vertex(2, 2)))
	require.Equal(t, game.White, b.ToMove())
	require.Equal(t, 1, b.MoveNumber())
}

func TestPlayMoveRejectsOccupiedPoint(t *testing.T) {
	b := NewBoard(5, 7.5)
	v := b.Vertex(2, 2)
	require.NoError(t, b.PlayMove(v))
	require.ErrorIs(t, b.PlayMove(v), ErrIllegalMove)
}

func TestPassIncrementsPassesAndResetsOnMove(t *testing.T) {
	b := NewBoard(5, 7.5)
	require.NoError(t, b.PlayMove(game.Pass))
	require.Equal(t, 1, b.Passes())
	require.NoError(t, b.PlayMove(game.Pass))
	require.Equal(t, 2, b.Passes())

	b2 := NewBoard(5, 7.5)
	require.NoError(t, b2.PlayMove(game.Pass))
	require.NoError(t, b2.PlayMove(b2.Vertex(1, 1)))
	require.Equal(t, 0, b2.Passes())
}

func TestSuicideIsIllegal(t *testing.T) {
	b := NewBoard(5, 7.5)
	// Surround (0,0) with black, then white cannot play there.
	for _, v := range []int{b.Vertex(1, 0), b.Vertex(0, 1)} {
		require.True(t, b.IsLegalMove(v, game.Black, nil))
	}
	require.NoError(t, b.PlayMove(b.Vertex(1, 0))) // black
	require.NoError(t, b.PlayMove(b.Vertex(4, 4))) // white elsewhere
	require.NoError(t, b.PlayMove(b.Vertex(0, 1))) // black
	require.NoError(t, b.PlayMove(b.Vertex(4, 3))) // white elsewhere

	require.False(t, b.IsLegalMove(b.Vertex(0, 0), game.White, nil))
}

func TestCaptureRemovesDeadGroup(t *testing.T) {
	b := NewBoard(5, 7.5)
	// Black surrounds a single white stone at (1,1), whose four neighbors
	// are (0,1), (2,1), (1,0), (1,2).
	require.NoError(t, b.PlayMove(b.Vertex(4, 4)))    // black elsewhere
	require.NoError(t, b.PlayMove(b.Vertex(1, 1)))    // white plants the stone
	require.NoError(t, b.PlayMove(b.Vertex(0, 1)))    // black
	require.NoError(t, b.PlayMove(b.Vertex(4, 3)))    // white elsewhere
	require.NoError(t, b.PlayMove(b.Vertex(2, 1)))    // black
	require.NoError(t, b.PlayMove(b.Vertex(4, 2)))    // white elsewhere
	require.NoError(t, b.PlayMove(b.Vertex(1, 2)))    // black
	require.NoError(t, b.PlayMove(b.Vertex(4, 1)))    // white elsewhere

	require.True(t, b.IsCaptureMove(b.Vertex(1, 0), game.Black))
	require.NoError(t, b.PlayMove(b.Vertex(1, 0))) // black captures

	require.Equal(t, empty, b.stones[b.Vertex(1, 1)]) // point is empty again
}

func TestSuperkoHistoryRecordsDistinctPositions(t *testing.T) {
	b := NewBoard(2, 0)
	require.False(t, b.IsSuperko())
	// On a 2x2 board the starting empty position can't be legally repeated
	// without captures, so just exercise that the hash-history plumbing
	// records distinct positions as the game proceeds.
	require.NoError(t, b.PlayMove(b.Vertex(0, 0)))
	h1 := b.Hash()
	require.NoError(t, b.PlayMove(b.Vertex(1, 1)))
	require.NotEqual(t, h1, b.Hash())
	require.False(t, b.IsSuperko())
}

func TestCloneIsIndependent(t *testing.T) {
	b := NewBoard(5, 7.5)
	require.NoError(t, b.PlayMove(b.Vertex(2, 2)))
	clone := b.Clone().(*Board)
	require.NoError(t, clone.PlayMove(b.Vertex(3, 3)))

	require.NotEqual(t, b.MoveNumber(), clone.MoveNumber())
	require.Equal(t, game.White, b.ToMove())
}

func TestComputeSymmetryHashIdentityMatchesHash(t *testing.T) {
	b := NewBoard(5, 7.5)
	require.NoError(t, b.PlayMove(b.Vertex(1, 2)))
	require.NoError(t, b.PlayMove(b.Vertex(3, 3)))
	require.Equal(t, b.Hash()^b.zobrist.emptyHash, b.ComputeSymmetryHash(symmIdentity))
}

func TestVertexTextSkipsLetterI(t *testing.T) {
	b := NewBoard(19, 7.5)
	require.Equal(t, "pass", b.VertexText(game.Pass))
	// Column index 8 ('I' would be the 9th letter) should render as 'J'.
	require.Equal(t, "J1", b.VertexText(b.Vertex(8, 0)))
}

func TestRandomStartProducesLegalPosition(t *testing.T) {
	b := NewBoard(9, 7.5)
	rng := rand.New(rand.NewPCG(1, 2))
	RandomStart(b, 20, rng)
	require.LessOrEqual(t, b.MoveNumber(), 20)
}
