package compact

import "github.com/brensch/snekcell/game"

// Occupancy lives in the low two bits of a cell's flag byte. Food and hazard are
// independent bits above it so either can be toggled without touching occupancy.
const (
	kindEmpty uint8 = 0
	kindHead  uint8 = 1
	kindBody  uint8 = 2
	kindMask  uint8 = 0x03

	foodBit   uint8 = 1 << 2
	hazardBit uint8 = 1 << 3
)

// Cell is one packed grid square.
//
// An occupied cell carries its owner, the number of body segments stacked on the
// square, and a linked index. For a head the index is the snake's tail (the head
// itself when the whole snake sits on one square). For a body segment it is the
// next segment toward the head.
type Cell[T CellNum] struct {
	flags uint8
	stack uint8
	id    game.SnakeID
	idx   CellIndex[T]
}

// EmptyCell returns an unoccupied square with no food or hazard.
func EmptyCell[T CellNum]() Cell[T] {
	return Cell[T]{}
}

// MakeBodyPiece is a single body segment linked toward the head.
func MakeBodyPiece[T CellNum](owner game.SnakeID, next CellIndex[T]) Cell[T] {
	return Cell[T]{flags: kindBody, stack: 1, id: owner, idx: next}
}

// MakeDoubleStackedPiece is two coincident body segments, the shape a tail takes
// the turn after its snake eats.
func MakeDoubleStackedPiece[T CellNum](owner game.SnakeID, next CellIndex[T]) Cell[T] {
	return Cell[T]{flags: kindBody, stack: 2, id: owner, idx: next}
}

// MakeTripleStackedPiece is three coincident body segments. At spawn the whole
// snake sits on one square and that square is the head (see MakeSpawnHead); a
// linked triple only appears after a spawned snake eats on its first move.
func MakeTripleStackedPiece[T CellNum](owner game.SnakeID, next CellIndex[T]) Cell[T] {
	return Cell[T]{flags: kindBody, stack: 3, id: owner, idx: next}
}

// MakeSnakeHead is a head pointing at the snake's tail.
func MakeSnakeHead[T CellNum](owner game.SnakeID, tail CellIndex[T]) Cell[T] {
	return Cell[T]{flags: kindHead, stack: 1, id: owner, idx: tail}
}

// MakeSpawnHead is a snake of the given length occupying only its own square.
func MakeSpawnHead[T CellNum](owner game.SnakeID, self CellIndex[T], length uint8) Cell[T] {
	return Cell[T]{flags: kindHead, stack: length, id: owner, idx: self}
}

func (c *Cell[T]) SetFood()     { c.flags |= foodBit }
func (c *Cell[T]) ClearFood()   { c.flags &^= foodBit }
func (c *Cell[T]) SetHazard()   { c.flags |= hazardBit }
func (c *Cell[T]) ClearHazard() { c.flags &^= hazardBit }

// Remove clears occupancy, keeping food and hazard.
func (c *Cell[T]) Remove() {
	c.flags &^= kindMask
	c.stack = 0
	c.id = 0
	c.idx = CellIndex[T]{}
}

// SetHead turns the square into a single-segment head, keeping food and hazard.
func (c *Cell[T]) SetHead(owner game.SnakeID, tail CellIndex[T]) {
	c.flags = c.flags&^kindMask | kindHead
	c.stack = 1
	c.id = owner
	c.idx = tail
}

// setOccupant replaces occupancy with o's, keeping this cell's food and hazard.
func (c *Cell[T]) setOccupant(o Cell[T]) {
	c.flags = c.flags&^kindMask | o.flags&kindMask
	c.stack = o.stack
	c.id = o.id
	c.idx = o.idx
}

func (c Cell[T]) IsEmpty() bool  { return c.flags&kindMask == kindEmpty }
func (c Cell[T]) IsFood() bool   { return c.flags&foodBit != 0 }
func (c Cell[T]) IsHazard() bool { return c.flags&hazardBit != 0 }
func (c Cell[T]) IsHead() bool   { return c.flags&kindMask == kindHead }
func (c Cell[T]) IsBody() bool   { return c.flags&kindMask == kindBody }

// IsStacked reports more than one segment on the square.
func (c Cell[T]) IsStacked() bool       { return c.stack > 1 }
func (c Cell[T]) IsDoubleStacked() bool { return c.stack == 2 }

// IsTripleStacked reports three or more segments on the square.
func (c Cell[T]) IsTripleStacked() bool { return c.stack >= 3 }

// StackCount is the number of body segments on the square, 0 when empty.
func (c Cell[T]) StackCount() int { return int(c.stack) }

// GetSnakeID returns the owner of an occupied cell.
func (c Cell[T]) GetSnakeID() (game.SnakeID, bool) {
	if c.IsEmpty() {
		return 0, false
	}
	return c.id, true
}

// GetIdx returns the linked index. It is only meaningful when occupied.
func (c Cell[T]) GetIdx() CellIndex[T] {
	return c.idx
}
