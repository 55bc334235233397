package mcts

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestProbSelectChildNeverReturnsNilWithChildren(t *testing.T) {
	root := rootWithChildren(t, NewParameters())
	rng := rand.New(rand.NewPCG(1, 2))

	for i := 0; i < 50; i++ {
		edge := root.ProbSelectChild(rng)
		require.NotNil(t, edge)
	}
}

func TestProbSelectChildNilWithNoChildren(t *testing.T) {
	n := newNode(0, 1.0)
	require.Nil(t, n.ProbSelectChild(rand.New(rand.NewPCG(1, 1))))
}

func TestRandomizeFirstProportionallySkipsUnvisitedChildren(t *testing.T) {
	root := rootWithChildren(t, NewParameters())
	visited := root.GetChild(10)
	visited.Update(&NodeEvals{BlackWL: 0.5})

	rng := rand.New(rand.NewPCG(9, 9))
	for i := 0; i < 20; i++ {
		edge := root.RandomizeFirstProportionally(rng, 1.0)
		require.NotNil(t, edge)
		require.Equal(t, 10, edge.Vertex())
	}
}

func TestRandomizeFirstProportionallyFallsBackWhenNothingVisited(t *testing.T) {
	root := rootWithChildren(t, NewParameters())
	edge := root.RandomizeFirstProportionally(rand.New(rand.NewPCG(1, 1)), 1.0)
	require.NotNil(t, edge)
}
