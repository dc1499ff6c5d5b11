// Package compact is a fixed-capacity, bit-packed Battlesnake board and a
// joint-move simulator over it.
//
// A CellBoard is a flat array of packed cells plus per-snake scalars. Bodies are
// stored as intrusive chains: the head cell records the tail index and every body
// cell records the index of the next segment toward the head, so the tail can be
// advanced in O(1) without pointers. Boards are plain values; copying one copies
// everything and the simulator never mutates its input.
package compact

import "github.com/brensch/snekcell/game"

// CellNum is the integer width used for linear cell indexes.
type CellNum interface {
	~uint8 | ~uint16
}

// CellIndex is a linear offset into a board's cell array: idx = y*width + x.
type CellIndex[T CellNum] struct {
	raw T
}

// NewCellIndex converts a coordinate to a linear index. The caller must have
// checked the coordinate against the board dimensions first.
func NewCellIndex[T CellNum](p game.Point, width uint8) CellIndex[T] {
	return CellIndex[T]{raw: T(int(p.Y)*int(width) + int(p.X))}
}

// CellIndexFromInt wraps a raw offset.
func CellIndexFromInt[T CellNum](i int) CellIndex[T] {
	return CellIndex[T]{raw: T(i)}
}

// IntoPosition is the inverse of NewCellIndex.
func (i CellIndex[T]) IntoPosition(width uint8) game.Point {
	w := int(width)
	v := int(i.raw)
	return game.Point{X: int32(v % w), Y: int32(v / w)}
}

// Int returns the offset as an int for array addressing.
func (i CellIndex[T]) Int() int {
	return int(i.raw)
}
