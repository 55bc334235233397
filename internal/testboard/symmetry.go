package testboard

// The eight D4 symmetries: identity, three rotations, and the four
// reflections of those. Symmetry index follows the same ordering the
// original engine's Symmetry helper uses, though the exact index-to-
// transform assignment is this package's own since board.go never reads
// it for anything beyond "same index means same transform".
const (
	symmIdentity = iota
	symmRot90
	symmRot180
	symmRot270
	symmFlip
	symmFlipRot90
	symmFlipRot180
	symmFlipRot270
)

func transformVertex(size, symm, vertex int) int {
	x, y := vertex%size, vertex/size
	last := size - 1

	switch symm {
	case symmRot90:
		x, y = y, last-x
	case symmRot180:
		x, y = last-x, last-y
	case symmRot270:
		x, y = last-y, x
	case symmFlip:
		x = last - x
	case symmFlipRot90:
		x, y = y, last-x
		x = last - x
	case symmFlipRot180:
		x, y = last-x, last-y
		x = last - x
	case symmFlipRot270:
		x, y = last-y, x
		x = last - x
	}
	return y*size + x
}
