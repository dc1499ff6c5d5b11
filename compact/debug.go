package compact

import (
	"errors"
	"fmt"
	"strings"

	"github.com/brensch/snekcell/game"
)

// String renders the board top row first. Heads are upper case letters by snake
// id, bodies lower case, '*' food, 'x' an empty hazard and '.' empty.
func (b *CellBoard[T, C, S]) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%dx%d hazard=%d\n", b.width, b.height, b.hazardDamage)
	for i := 0; i < len(b.snakes); i++ {
		s := b.snakes[i]
		if s.health == 0 {
			continue
		}
		fmt.Fprintf(&sb, "snake %c health=%d length=%d head=%v\n", 'A'+i, s.health, s.length, s.head.IntoPosition(b.width))
	}
	for y := int(b.height) - 1; y >= 0; y-- {
		for x := 0; x < int(b.width); x++ {
			c := b.cells[y*int(b.width)+x]
			switch {
			case c.IsHead():
				sb.WriteByte(byte('A' + c.id))
			case c.IsBody():
				sb.WriteByte(byte('a' + c.id))
			case c.IsFood():
				sb.WriteByte('*')
			case c.IsHazard():
				sb.WriteByte('x')
			default:
				sb.WriteByte('.')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Validate walks every chain and checks the board's structural invariants. It is
// a debugging aid and is never called by the simulator.
func (b *CellBoard[T, C, S]) Validate() error {
	var errs []error
	area := int(b.width) * int(b.height)
	if area > len(b.cells) {
		return fmt.Errorf("dimensions %dx%d exceed %d cells", b.width, b.height, len(b.cells))
	}

	owned := make([]int, len(b.snakes))
	for i := 0; i < len(b.cells); i++ {
		c := b.cells[i]
		if c.IsEmpty() {
			continue
		}
		if i >= area {
			errs = append(errs, fmt.Errorf("cell %d outside %dx%d is occupied", i, b.width, b.height))
			continue
		}
		if int(c.id) >= len(b.snakes) || b.snakes[c.id].health == 0 {
			errs = append(errs, fmt.Errorf("cell %d owned by dead or unknown snake %d", i, c.id))
			continue
		}
		owned[c.id]++
	}

	for i := 0; i < len(b.snakes); i++ {
		s := b.snakes[i]
		if s.health == 0 {
			continue
		}
		if s.head.Int() >= area {
			errs = append(errs, fmt.Errorf("snake %d head %d off the board", i, s.head.Int()))
			continue
		}
		hc := b.cells[s.head.Int()]
		if !hc.IsHead() || int(hc.id) != i {
			errs = append(errs, fmt.Errorf("snake %d head cell %d is not its head", i, s.head.Int()))
			continue
		}
		if hc.stack > 1 && hc.idx != s.head {
			errs = append(errs, fmt.Errorf("snake %d has a stacked head that is not its tail", i))
		}

		segments, visited := 0, 0
		cur := hc.idx
		closed := false
		for range len(b.cells) {
			if cur.Int() >= area {
				errs = append(errs, fmt.Errorf("snake %d chain leaves the board at %d", i, cur.Int()))
				break
			}
			c := b.cells[cur.Int()]
			if c.IsEmpty() || int(c.id) != i {
				errs = append(errs, fmt.Errorf("snake %d chain reaches foreign cell %d", i, cur.Int()))
				break
			}
			segments += int(c.stack)
			visited++
			if cur == s.head {
				closed = true
				break
			}
			if c.IsHead() {
				errs = append(errs, fmt.Errorf("snake %d chain passes through a head at %d", i, cur.Int()))
				break
			}
			cur = c.idx
		}
		if !closed {
			errs = append(errs, fmt.Errorf("snake %d chain does not reach its head", i))
			continue
		}
		if segments != int(s.length) {
			errs = append(errs, fmt.Errorf("snake %d chain holds %d segments, length is %d", i, segments, s.length))
		}
		if visited != owned[i] {
			errs = append(errs, fmt.Errorf("snake %d owns %d cells but its chain visits %d", i, owned[i], visited))
		}
	}
	return errors.Join(errs...)
}

// ToGameState expands the board back into a snapshot of live snakes. ids maps
// engine ids to board ids; slots missing from it get a synthetic "snake-N" id.
func (b *CellBoard[T, C, S]) ToGameState(ids game.SnakeIDMap) *game.GameState {
	names := ids.Reverse()
	damage := int32(b.hazardDamage)
	state := &game.GameState{
		Width:               int32(b.width),
		Height:              int32(b.height),
		Food:                b.GetAllFood(),
		Hazards:             b.GetAllHazards(),
		Ruleset:             game.RulesetStandard,
		HazardDamagePerTurn: &damage,
	}
	for _, id := range b.LivingSnakes() {
		name, ok := names[id]
		if !ok {
			name = fmt.Sprintf("snake-%d", id)
		}
		if id == 0 {
			state.YouId = name
		}
		state.Snakes = append(state.Snakes, game.Snake{
			Id:     name,
			Health: int32(b.snakes[id].health),
			Body:   b.GetSnakeBody(id),
		})
	}
	return state
}
