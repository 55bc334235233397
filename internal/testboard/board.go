// Package testboard is a compact, correctness-focused Go rules
// implementation used to drive mcts core tests and the searchdemo CLI. It
// is not tuned for performance: groups and liberties are recomputed by
// flood fill rather than incrementally maintained, which is fine at the
// small board sizes tests exercise.
package testboard

import (
	"errors"
	"math/rand/v2"

	"github.com/kurobane-go/gozen/pkg/game"
)

const empty = game.Color(game.Invalid)

var ErrIllegalMove = errors.New("testboard: illegal move")

// Board is a minimal, independently cloneable Go position.
type Board struct {
	size    int
	komi    float64
	stones  []game.Color // size*size, empty entries hold game.Invalid
	toMove  game.Color
	moveNum int
	passes  int

	history []uint64 // position hashes after each move, for positional superko

	zobrist *zobristTable
	hash    uint64
}

// NewBoard returns an empty board of the given side length and komi.
func NewBoard(size int, komi float64) *Board {
	b := &Board{
		size:    size,
		komi:    komi,
		stones:  make([]game.Color, size*size),
		toMove:  game.Black,
		zobrist: sharedZobrist(size),
	}
	for i := range b.stones {
		b.stones[i] = empty
	}
	b.hash = b.zobrist.emptyHash
	b.history = append(b.history, b.hash)
	return b
}

func (b *Board) BoardSize() int         { return b.size }
func (b *Board) NumIntersections() int  { return b.size * b.size }
func (b *Board) Komi() float64          { return b.komi }
func (b *Board) ToMove() game.Color     { return b.toMove }
func (b *Board) MoveNumber() int        { return b.moveNum }
func (b *Board) Passes() int            { return b.passes }

func (b *Board) Vertex(x, y int) int { return y*b.size + x }
func (b *Board) X(vertex int) int    { return vertex % b.size }
func (b *Board) Y(vertex int) int    { return vertex / b.size }
func (b *Board) Index(vertex int) int {
	if vertex < 0 || vertex >= len(b.stones) {
		return -1
	}
	return vertex
}

func (b *Board) inBounds(vertex int) bool {
	return vertex >= 0 && vertex < len(b.stones)
}

func (b *Board) neighbors(vertex int) []int {
	x, y := b.X(vertex), b.Y(vertex)
	var out []int
	if x > 0 {
		out = append(out, b.Vertex(x-1, y))
	}
	if x < b.size-1 {
		out = append(out, b.Vertex(x+1, y))
	}
	if y > 0 {
		out = append(out, b.Vertex(x, y-1))
	}
	if y < b.size-1 {
		out = append(out, b.Vertex(x, y+1))
	}
	return out
}

// groupAndLiberties flood-fills the group containing vertex, returning its
// stones and the set of liberty vertices.
func (b *Board) groupAndLiberties(vertex int) (group []int, liberties map[int]bool) {
	color := b.stones[vertex]
	visited := map[int]bool{vertex: true}
	liberties = map[int]bool{}
	stack := []int{vertex}
	for len(stack) > 0 {
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		group = append(group, v)
		for _, n := range b.neighbors(v) {
			if b.stones[n] == empty {
				liberties[n] = true
			} else if b.stones[n] == color && !visited[n] {
				visited[n] = true
				stack = append(stack, n)
			}
		}
	}
	return group, liberties
}

// IsLegalMove reports whether vertex is playable by color: empty,
// avoid-clear, and not a suicide unless it captures.
func (b *Board) IsLegalMove(vertex int, color game.Color, avoid game.AvoidFunc) bool {
	if vertex == game.Pass {
		return true
	}
	if !b.inBounds(vertex) || b.stones[vertex] != empty {
		return false
	}
	if avoid != nil && avoid(vertex, color) {
		return false
	}

	fork := b.Clone().(*Board)
	fork.stones[vertex] = color
	opponent := color.Opponent()
	captured := false
	for _, n := range fork.neighbors(vertex) {
		if fork.stones[n] == opponent {
			_, libs := fork.groupAndLiberties(n)
			if len(libs) == 0 {
				captured = true
			}
		}
	}
	if !captured {
		_, libs := fork.groupAndLiberties(vertex)
		if len(libs) == 0 {
			return false // suicide
		}
	}
	return true
}

// LegalMoves enumerates every legal vertex for color.
func (b *Board) LegalMoves(color game.Color, avoid game.AvoidFunc) []int {
	var out []int
	for v := 0; v < len(b.stones); v++ {
		if b.IsLegalMove(v, color, avoid) {
			out = append(out, v)
		}
	}
	return out
}

// StrictSafeArea reports nothing as unconditionally safe; this minimal
// board does not implement Benson's algorithm.
func (b *Board) StrictSafeArea() []bool {
	return make([]bool, len(b.stones))
}

func (b *Board) IsCaptureMove(vertex int, color game.Color) bool {
	if !b.inBounds(vertex) || b.stones[vertex] != empty {
		return false
	}
	opponent := color.Opponent()
	for _, n := range b.neighbors(vertex) {
		if b.stones[n] == opponent {
			fork := b.Clone().(*Board)
			fork.stones[vertex] = color
			_, libs := fork.groupAndLiberties(n)
			if len(libs) == 0 {
				return true
			}
		}
	}
	return false
}

// IsRealEye approximates a real eye as an empty point whose orthogonal
// neighbours are all color's stones; diagonal points are not examined — a
// simplification adequate for pruning obviously-pointless fill-ins in
// tests, not tournament-strength eye detection.
func (b *Board) IsRealEye(vertex int, color game.Color) bool {
	if !b.inBounds(vertex) || b.stones[vertex] != empty {
		return false
	}
	for _, n := range b.neighbors(vertex) {
		if b.stones[n] != color {
			return false
		}
	}
	return true
}

func (b *Board) Hash() uint64 { return b.hash }

// MoveHash returns the hash delta playing vertex as color would apply,
// not accounting for captures — adequate for the opening-stage symmetry
// pruning heuristic that is its only caller.
func (b *Board) MoveHash(vertex int, color game.Color) uint64 {
	if vertex == game.Pass {
		return b.zobrist.passHash
	}
	return b.zobrist.stoneHash(vertex, color)
}

func (b *Board) ComputeSymmetryHash(symm int) uint64 {
	var h uint64
	for v, c := range b.stones {
		if c == empty {
			continue
		}
		sv := transformVertex(b.size, symm, v)
		h ^= b.zobrist.stoneHash(sv, c)
	}
	return h
}

// IsSuperko reports whether the current position hash repeats any earlier
// entry in the history (positional superko). The hash does not include the
// side to move, and a pass records the unchanged hash again, so IsSuperko
// reports true right after a pass.
func (b *Board) IsSuperko() bool {
	if len(b.history) < 2 {
		return false
	}
	cur := b.history[len(b.history)-1]
	for _, h := range b.history[:len(b.history)-1] {
		if h == cur {
			return true
		}
	}
	return false
}

// GammasPolicy returns a uniform distribution over legal moves, standing
// in for the classical heuristics a no-DCNN mode would otherwise use.
func (b *Board) GammasPolicy(color game.Color) []float32 {
	out := make([]float32, len(b.stones))
	legal := b.LegalMoves(color, nil)
	if len(legal) == 0 {
		return out
	}
	p := float32(1.0) / float32(len(legal))
	for _, v := range legal {
		out[v] = p
	}
	return out
}

// PlayMove plays vertex (or Pass) as the side to move, removing any
// captured opposing groups and updating the superko history.
func (b *Board) PlayMove(vertex int) error {
	color := b.toMove
	if vertex == game.Pass {
		b.passes++
		b.moveNum++
		b.toMove = color.Opponent()
		b.history = append(b.history, b.hash)
		return nil
	}
	if !b.IsLegalMove(vertex, color, nil) {
		return ErrIllegalMove
	}

	b.passes = 0
	b.stones[vertex] = color
	b.hash ^= b.zobrist.stoneHash(vertex, color)

	opponent := color.Opponent()
	seen := map[int]bool{}
	for _, n := range b.neighbors(vertex) {
		if b.stones[n] == opponent && !seen[n] {
			group, libs := b.groupAndLiberties(n)
			for _, g := range group {
				seen[g] = true
			}
			if len(libs) == 0 {
				for _, g := range group {
					b.hash ^= b.zobrist.stoneHash(g, b.stones[g])
					b.stones[g] = empty
				}
			}
		}
	}

	b.moveNum++
	b.toMove = opponent
	b.history = append(b.history, b.hash)
	return nil
}

// Clone returns a deep, independent copy.
func (b *Board) Clone() game.Board {
	cp := &Board{
		size:    b.size,
		komi:    b.komi,
		stones:  append([]game.Color(nil), b.stones...),
		toMove:  b.toMove,
		moveNum: b.moveNum,
		passes:  b.passes,
		history: append([]uint64(nil), b.history...),
		zobrist: b.zobrist,
		hash:    b.hash,
	}
	return cp
}

// VertexText renders a vertex the way a GTP-speaking client expects:
// letter-number coordinates skipping 'I', or "pass".
func (b *Board) VertexText(vertex int) string {
	if vertex == game.Pass {
		return "pass"
	}
	if !b.inBounds(vertex) {
		return "null"
	}
	x, y := b.X(vertex), b.Y(vertex)
	letters := "ABCDEFGHJKLMNOPQRSTUVWXYZ"
	return string(letters[x]) + itoa(y+1)
}

func itoa(v int) string {
	if v == 0 {
		return "0"
	}
	var digits []byte
	neg := v < 0
	if neg {
		v = -v
	}
	for v > 0 {
		digits = append([]byte{byte('0' + v%10)}, digits...)
		v /= 10
	}
	if neg {
		return "-" + string(digits)
	}
	return string(digits)
}

// RandomStart plays n uniformly random legal moves to seed a non-trivial
// position for tests, alternating colors and skipping passes where a
// board move remains.
func RandomStart(b *Board, n int, rng *rand.Rand) {
	for i := 0; i < n; i++ {
		legal := b.LegalMoves(b.toMove, nil)
		if len(legal) == 0 {
			_ = b.PlayMove(game.Pass)
			continue
		}
		v := legal[rng.IntN(len(legal))]
		_ = b.PlayMove(v)
	}
}
