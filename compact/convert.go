package compact

import (
	"errors"
	"fmt"
	"math"

	"github.com/brensch/snekcell/game"
)

var (
	ErrWrappedRuleset = errors.New("wrapped games are not supported")
	ErrBoardTooLarge  = errors.New("game size doesn't fit in the given board size")
	ErrTooManySnakes  = errors.New("too many snakes")
	ErrUnknownSnake   = errors.New("snake missing from id map")
	ErrMalformedBody  = errors.New("malformed snake body")
)

// BadBodyStackError reports three segments on one square in a snake that also
// occupies other squares.
type BadBodyStackError struct {
	SnakeID string
}

func (e *BadBodyStackError) Error() string {
	return fmt.Sprintf("snake %s has a bad body stack (3 segs on same square and more than one unique position)", e.SnakeID)
}

// ConvertFromGame fills b from a snapshot. On error b is left untouched.
//
// Snakes with zero health are skipped and own no cells. Food and hazard points
// outside the grid are ignored.
func (b *CellBoard[T, C, S]) ConvertFromGame(state *game.GameState, ids game.SnakeIDMap) error {
	if state.IsWrapped() {
		return ErrWrappedRuleset
	}

	if state.Width <= 0 || state.Height <= 0 || state.Width > math.MaxUint8 || state.Height > math.MaxUint8 ||
		int(state.Width)*int(state.Height) > len(b.cells) {
		return fmt.Errorf("%w: %dx%d into %d cells", ErrBoardTooLarge, state.Width, state.Height, len(b.cells))
	}

	if len(state.Snakes) > len(b.snakes) {
		return fmt.Errorf("%w: %d > %d", ErrTooManySnakes, len(state.Snakes), len(b.snakes))
	}

	for _, s := range state.Snakes {
		if err := checkStacks(&s); err != nil {
			return err
		}
	}

	var next CellBoard[T, C, S]
	next.width = uint8(state.Width)
	next.height = uint8(state.Height)
	next.hazardDamage = uint8(min(max(state.HazardDamage(), 0), math.MaxUint8))

	for si := range state.Snakes {
		s := &state.Snakes[si]
		if s.Health <= 0 {
			continue
		}
		id, ok := ids[s.Id]
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownSnake, s.Id)
		}
		if int(id) >= len(next.snakes) {
			return fmt.Errorf("%w: snake %s has id %d", ErrTooManySnakes, s.Id, id)
		}
		if next.snakes[id].health > 0 {
			return fmt.Errorf("%w: id %d assigned twice", ErrMalformedBody, id)
		}
		if err := next.placeSnake(id, s); err != nil {
			return fmt.Errorf("snake %s: %w", s.Id, err)
		}
	}

	for _, p := range state.Hazards {
		next.SetHazard(p)
	}
	for _, p := range state.Food {
		next.AddFood(p)
	}

	*b = next
	return nil
}

func checkStacks(s *game.Snake) error {
	counts := make(map[game.Point]int, len(s.Body))
	for _, p := range s.Body {
		counts[p]++
	}
	if len(counts) == 1 {
		return nil
	}
	for _, c := range counts {
		if c == 3 {
			return &BadBodyStackError{SnakeID: s.Id}
		}
	}
	return nil
}

type run struct {
	p     game.Point
	count int
}

// placeSnake writes one live snake's cells. Consecutive repeats of a square are
// collapsed into a single stacked cell.
func (b *CellBoard[T, C, S]) placeSnake(id game.SnakeID, s *game.Snake) error {
	if len(s.Body) == 0 {
		return fmt.Errorf("%w: empty body", ErrMalformedBody)
	}
	if len(s.Body) > math.MaxUint16 {
		return fmt.Errorf("%w: body too long", ErrMalformedBody)
	}

	runs := make([]run, 0, len(s.Body))
	for i, p := range s.Body {
		if b.OffBoard(p) {
			return fmt.Errorf("%w: segment %d at %v is off the board", ErrMalformedBody, i, p)
		}
		if n := len(runs); n > 0 && runs[n-1].p == p {
			runs[n-1].count++
			continue
		}
		if n := len(runs); n > 0 {
			if _, ok := game.MoveBetween(runs[n-1].p, p); !ok {
				return fmt.Errorf("%w: segment %d at %v is not adjacent to %v", ErrMalformedBody, i, p, runs[n-1].p)
			}
		}
		runs = append(runs, run{p: p, count: 1})
	}

	for _, r := range runs {
		if r.count > math.MaxUint8 {
			return fmt.Errorf("%w: %d segments stacked at %v", ErrMalformedBody, r.count, r.p)
		}
		if !b.cells[NewCellIndex[T](r.p, b.width).Int()].IsEmpty() {
			return fmt.Errorf("%w: square %v is occupied twice", ErrMalformedBody, r.p)
		}
		// Mark as we go so a snake crossing itself is caught too.
		b.cells[NewCellIndex[T](r.p, b.width).Int()].setOccupant(MakeBodyPiece[T](id, CellIndex[T]{}))
	}

	head := NewCellIndex[T](runs[0].p, b.width)
	if len(runs) == 1 {
		b.cells[head.Int()].setOccupant(MakeSpawnHead(id, head, uint8(runs[0].count)))
	} else {
		if runs[0].count > 1 {
			return fmt.Errorf("%w: stacked head at %v", ErrMalformedBody, runs[0].p)
		}
		tail := NewCellIndex[T](runs[len(runs)-1].p, b.width)
		b.cells[head.Int()].setOccupant(MakeSnakeHead(id, tail))
		prev := head
		for _, r := range runs[1:] {
			ci := NewCellIndex[T](r.p, b.width)
			b.cells[ci.Int()].setOccupant(Cell[T]{flags: kindBody, stack: uint8(r.count), id: id, idx: prev})
			prev = ci
		}
	}

	b.snakes[id] = snakeState[T]{
		health: uint8(min(s.Health, math.MaxUint8)),
		length: uint16(len(s.Body)),
		head:   head,
	}
	return nil
}
