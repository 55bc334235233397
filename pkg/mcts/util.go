package mcts

import (
	"math"
	"math/rand/v2"
	"runtime"
	"time"
)

// yieldToScheduler gives other goroutines a chance to run without parking
// the calling thread, used by the spin-wait in WaitExpanded.
func yieldToScheduler() {
	runtime.Gosched()
}

// tanhf maps a score difference into a bounded (-1, 1) utility, the shaping
// used for both the PUCT score-utility term and the LCB best-move bonus.
func tanhf(diff, div float64) float64 {
	if div <= 0 {
		return 0
	}
	return math.Tanh(diff / div)
}

func clampFloat64(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// defaultRand returns a fresh, time-seeded generator for call sites that
// have no caller-supplied *rand.Rand to hand, e.g. a GetBestMove fallback
// reached outside of a search loop that already carries one.
func defaultRand() *rand.Rand {
	seed := uint64(time.Now().UnixNano())
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}
