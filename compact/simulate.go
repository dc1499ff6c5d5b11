package compact

import (
	"iter"
	"slices"
	"time"

	"github.com/brensch/snekcell/game"
)

// SnakeMoves is the candidate move set for one snake.
type SnakeMoves struct {
	ID    game.SnakeID
	Moves []game.Move
}

// SimulateWithMoves yields one (outcome, next board) pair per combination of
// candidate moves. The first entry varies slowest. A later entry for the same id
// replaces an earlier one, and a later empty set clears it; entries for dead
// snakes are ignored. A live snake with no entry, or whose last entry is empty,
// is eliminated with CauseNoMove.
//
// The receiver is copied when called, and every yielded board is an independent
// value. The sequence can be ranged over more than once.
func (b *CellBoard[T, C, S]) SimulateWithMoves(moves []SnakeMoves) iter.Seq2[Outcome, CellBoard[T, C, S]] {
	return b.SimulateWithInstruments(nil, moves)
}

// SimulateWithInstruments is SimulateWithMoves reporting the time spent on each
// combination to inst. A nil inst skips timing.
func (b *CellBoard[T, C, S]) SimulateWithInstruments(inst SimulatorInstruments, moves []SnakeMoves) iter.Seq2[Outcome, CellBoard[T, C, S]] {
	base := *b

	var sets [MaxSnakeCapacity][]game.Move
	var order []game.SnakeID
	for _, sm := range moves {
		if !base.IsAlive(sm.ID) {
			continue
		}
		if len(sm.Moves) == 0 {
			if sets[sm.ID] != nil {
				sets[sm.ID] = nil
				order = slices.DeleteFunc(order, func(id game.SnakeID) bool { return id == sm.ID })
			}
			continue
		}
		if sets[sm.ID] == nil {
			order = append(order, sm.ID)
		}
		sets[sm.ID] = slices.Clone(sm.Moves)
	}

	return func(yield func(Outcome, CellBoard[T, C, S]) bool) {
		var digits [MaxSnakeCapacity]int
		var chosen [MaxSnakeCapacity]game.Move
		var has uint16
		for _, id := range order {
			has |= 1 << id
		}

		for {
			for i, id := range order {
				chosen[id] = sets[id][digits[i]]
			}

			var start time.Time
			if inst != nil {
				start = time.Now()
			}
			out, next := base.step(&chosen, has)
			if inst != nil {
				inst.ObserveSimulation(time.Since(start))
			}
			if !yield(out, next) {
				return
			}

			j := len(order) - 1
			for ; j >= 0; j-- {
				digits[j]++
				if digits[j] < len(sets[order[j]]) {
					break
				}
				digits[j] = 0
			}
			if j < 0 {
				return
			}
		}
	}
}

// Step advances one tick with one move per snake.
func (b *CellBoard[T, C, S]) Step(moves []SnakeMove) (Outcome, CellBoard[T, C, S]) {
	var chosen [MaxSnakeCapacity]game.Move
	var has uint16
	for _, m := range moves {
		if b.IsAlive(m.ID) {
			chosen[m.ID] = m.Move
			has |= 1 << m.ID
		}
	}
	return b.step(&chosen, has)
}

// step computes a single combination. All decisions read the receiver; the
// result is built on a copy.
func (b *CellBoard[T, C, S]) step(moves *[MaxSnakeCapacity]game.Move, has uint16) (Outcome, CellBoard[T, C, S]) {
	var out Outcome
	n := len(b.snakes)

	var (
		live     uint16 // alive before the tick
		moving   uint16 // survived the wall, starvation and missing-move pass
		grown    uint16 // length one eaters, whose new head is also their tail
		newHead  [MaxSnakeCapacity]CellIndex[T]
		newLen   [MaxSnakeCapacity]uint16
		health   [MaxSnakeCapacity]uint8
		tailOf   [MaxSnakeCapacity]CellIndex[T]
		vacating [MaxSnakeCapacity]bool
	)

	for i := 0; i < n; i++ {
		s := &b.snakes[i]
		if s.health == 0 {
			continue
		}
		bit := uint16(1) << i
		live |= bit
		tailOf[i] = b.cells[s.head.Int()].idx
		vacating[i] = b.cells[tailOf[i].Int()].stack == 1

		if has&bit == 0 {
			out.Eliminated[i] = CauseNoMove
			continue
		}
		out.Moves[i] = moves[i]
		out.Moved |= bit

		p := s.head.IntoPosition(b.width).Add(moves[i].Vector())
		if b.OffBoard(p) {
			out.Eliminated[i] = CauseWall
			continue
		}
		ni := NewCellIndex[T](p, b.width)
		newHead[i] = ni
		target := b.cells[ni.Int()]

		newLen[i] = s.length
		if target.IsFood() {
			out.Ate |= bit
			if s.length == 1 {
				grown |= bit
			}
			health[i] = game.MaxHealth
			if newLen[i] < ^uint16(0) {
				newLen[i]++
			}
		} else {
			h := int(s.health) - 1
			if target.IsHazard() {
				h -= int(b.hazardDamage)
			}
			if h <= 0 {
				out.Eliminated[i] = CauseStarvation
				continue
			}
			health[i] = uint8(h)
		}
		moving |= bit
	}

	// Collisions are judged against snakes that survived the first pass.
	for i := 0; i < n; i++ {
		if moving&(1<<i) == 0 {
			continue
		}
		ni := newHead[i]
		if grown&(1<<i) != 0 {
			out.Eliminated[i] = CauseSelfCollision
			continue
		}
		if occ := b.cells[ni.Int()]; !occ.IsEmpty() {
			o := int(occ.id)
			vacated := ni == tailOf[o] && vacating[o]
			if moving&(1<<o) != 0 && !vacated {
				if o == i {
					out.Eliminated[i] = CauseSelfCollision
				} else {
					out.Eliminated[i] = CauseBodyCollision
				}
				continue
			}
		}
		// A grown snake's tail sits under its head, so arriving there is a body hit.
		hit := false
		for j := 0; j < n; j++ {
			if j != i && grown&(1<<j) != 0 && newHead[j] == ni {
				hit = true
				break
			}
		}
		if hit {
			out.Eliminated[i] = CauseBodyCollision
			continue
		}
		for j := 0; j < n; j++ {
			if j == i || moving&(1<<j) == 0 {
				continue
			}
			if newHead[j] == ni && newLen[j] >= newLen[i] {
				out.Eliminated[i] = CauseHeadToHead
				break
			}
		}
	}

	next := *b
	for i := 0; i < n; i++ {
		if live&(1<<i) != 0 && out.Eliminated[i] != CauseNone {
			next.clearSnake(i)
		}
	}

	var (
		survivors uint16
		tails     [MaxSnakeCapacity]CellIndex[T]
		headStack [MaxSnakeCapacity]uint8
	)
	for i := 0; i < n; i++ {
		if moving&(1<<i) != 0 && out.Eliminated[i] == CauseNone {
			survivors |= 1 << i
			tails[i], headStack[i] = next.advance(i, newHead[i], out.Ate&(1<<i) != 0)
		}
	}
	// Heads go in after every tail has moved so a head can take a square vacated
	// this tick.
	for i := 0; i < n; i++ {
		if survivors&(1<<i) == 0 {
			continue
		}
		c := &next.cells[newHead[i].Int()]
		c.SetHead(game.SnakeID(i), tails[i])
		c.stack = headStack[i]
		next.snakes[i] = snakeState[T]{health: health[i], length: newLen[i], head: newHead[i]}
	}
	for i := 0; i < n; i++ {
		if out.Ate&(1<<i) != 0 {
			next.cells[newHead[i].Int()].ClearFood()
		}
	}
	return out, next
}

// advance moves snake i's tail and turns its old head into body. It returns the
// tail the new head at to should point at and the stack depth of the new head,
// which is above one only when the whole snake ends up on that square.
func (b *CellBoard[T, C, S]) advance(i int, to CellIndex[T], ate bool) (CellIndex[T], uint8) {
	id := game.SnakeID(i)
	head := b.snakes[i].head
	hc := &b.cells[head.Int()]
	tail := hc.idx

	if tail == head {
		left := hc.stack - 1
		if ate {
			left++
		}
		if hc.stack == 1 {
			// a length one snake that eats never gets here
			hc.Remove()
			return to, 1
		}
		hc.setOccupant(Cell[T]{flags: kindBody, stack: left, id: id, idx: to})
		return head, 1
	}

	tc := &b.cells[tail.Int()]
	if tc.stack == 1 {
		tail = tc.idx
		tc.Remove()
	} else {
		tc.stack--
	}
	hc.setOccupant(MakeBodyPiece(id, to))
	if ate {
		if tc := &b.cells[tail.Int()]; tc.stack < ^uint8(0) {
			tc.stack++
		}
	}
	return tail, 1
}

// clearSnake removes every cell of snake i and zeroes its state.
func (b *CellBoard[T, C, S]) clearSnake(i int) {
	head := b.snakes[i].head
	cur := b.cells[head.Int()].idx
	for range len(b.cells) {
		c := &b.cells[cur.Int()]
		next := c.idx
		c.Remove()
		if cur == head {
			break
		}
		cur = next
	}
	b.snakes[i] = snakeState[T]{}
}
