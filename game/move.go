package game

import "fmt"

// Move is a direction (0: Up, 1: Down, 2: Left, 3: Right).
type Move uint8

const (
	MoveUp Move = iota
	MoveDown
	MoveLeft
	MoveRight
)

// AllMoves lists every move in index order.
var AllMoves = [4]Move{MoveUp, MoveDown, MoveLeft, MoveRight}

var moveVectors = [4]Point{
	MoveUp:    {X: 0, Y: 1},
	MoveDown:  {X: 0, Y: -1},
	MoveLeft:  {X: -1, Y: 0},
	MoveRight: {X: 1, Y: 0},
}

var moveNames = [4]string{"up", "down", "left", "right"}

// Vector returns the unit offset applied to a head by this move.
func (m Move) Vector() Point {
	return moveVectors[m&3]
}

func (m Move) String() string {
	if int(m) >= len(moveNames) {
		return fmt.Sprintf("Move(%d)", m)
	}
	return moveNames[m]
}

// ParseMove converts a wire move name into a Move.
func ParseMove(s string) (Move, error) {
	for i, name := range moveNames {
		if name == s {
			return Move(i), nil
		}
	}
	return MoveUp, fmt.Errorf("unknown move %q", s)
}

// MoveBetween returns the move that takes from to to, if they are adjacent.
func MoveBetween(from, to Point) (Move, bool) {
	d := Point{X: to.X - from.X, Y: to.Y - from.Y}
	for i, v := range moveVectors {
		if v == d {
			return Move(i), true
		}
	}
	return MoveUp, false
}
