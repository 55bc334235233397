// Package cache provides a bounded, MiB-sized, single-flight-deduplicated
// store for network evaluations keyed by a position fingerprint, so that
// two selection paths racing toward the same not-yet-expanded position
// trigger at most one evaluator call between them.
package cache

import (
	"hash/maphash"

	"github.com/kurobane-go/gozen/pkg/game"
)

// Fingerprint identifies a cacheable (position, symmetry, ensemble)
// triple. It folds in everything that can change the evaluator's output
// for otherwise-identical board content: the raw Zobrist hash, komi (since
// the same stones under different komi are different positions for value
// purposes), side to move, and which D4 symmetry was requested.
type Fingerprint uint64

var seed = maphash.MakeSeed()

// NewFingerprint combines a board's position hash with the extra axes that
// affect evaluator output into one 64-bit key.
func NewFingerprint(board game.Board, symmetry int, ensemble game.Ensemble) Fingerprint {
	var h maphash.Hash
	h.SetSeed(seed)

	var buf [8]byte
	putUint64(buf[:], board.Hash())
	h.Write(buf[:])

	putUint64(buf[:], uint64(board.ToMove()))
	h.Write(buf[:])

	putUint64(buf[:], uint64(int64(board.Komi()*1000)))
	h.Write(buf[:])

	putUint64(buf[:], uint64(symmetry))
	h.Write(buf[:])

	putUint64(buf[:], uint64(ensemble))
	h.Write(buf[:])

	return Fingerprint(h.Sum64())
}

func putUint64(b []byte, v uint64) {
	for i := 0; i < 8; i++ {
		b[i] = byte(v >> (8 * i))
	}
}
