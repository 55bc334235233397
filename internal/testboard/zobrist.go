package testboard

import (
	"math/rand/v2"
	"sync"

	"github.com/kurobane-go/gozen/pkg/game"
)

// zobristTable holds per-(vertex, color) hash keys for one board size. Go
// positions of the same size always share a table so ComputeSymmetryHash
// results are comparable across independently constructed boards, the way
// the original engine's process-global Zobrist table is.
type zobristTable struct {
	black     []uint64
	white     []uint64
	emptyHash uint64
	passHash  uint64
}

func newZobristTable(size int, seed uint64) *zobristTable {
	rng := rand.New(rand.NewPCG(seed, seed^0xdeadbeef))
	n := size * size
	t := &zobristTable{
		black: make([]uint64, n),
		white: make([]uint64, n),
	}
	for i := 0; i < n; i++ {
		t.black[i] = rng.Uint64()
		t.white[i] = rng.Uint64()
	}
	t.emptyHash = rng.Uint64()
	t.passHash = rng.Uint64()
	return t
}

func (t *zobristTable) stoneHash(vertex int, color game.Color) uint64 {
	if vertex < 0 || vertex >= len(t.black) {
		return 0
	}
	if color == game.Black {
		return t.black[vertex]
	}
	return t.white[vertex]
}

var (
	zobristMu    sync.Mutex
	zobristCache = map[int]*zobristTable{}
)

// sharedZobrist returns the process-wide table for a board size, building
// it once with a fixed seed so two boards of the same size always agree.
func sharedZobrist(size int) *zobristTable {
	zobristMu.Lock()
	defer zobristMu.Unlock()
	if t, ok := zobristCache[size]; ok {
		return t
	}
	t := newZobristTable(size, uint64(size)*0x9e3779b97f4a7c15+1)
	zobristCache[size] = t
	return t
}
