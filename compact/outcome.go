package compact

import (
	"fmt"
	"strings"
	"time"

	"github.com/brensch/snekcell/game"
)

// Cause is why a snake was eliminated on a tick.
type Cause uint8

const (
	CauseNone Cause = iota
	CauseWall
	CauseStarvation
	CauseSelfCollision
	CauseBodyCollision
	CauseHeadToHead
	// CauseNoMove is a live snake that was given no candidate move.
	CauseNoMove
)

var causeNames = [...]string{
	CauseNone:          "",
	CauseWall:          "wall-collision",
	CauseStarvation:    "starvation",
	CauseSelfCollision: "snake-self-collision",
	CauseBodyCollision: "snake-collision",
	CauseHeadToHead:    "head-collision",
	CauseNoMove:        "no-move",
}

func (c Cause) String() string {
	if int(c) < len(causeNames) {
		return causeNames[c]
	}
	return fmt.Sprintf("Cause(%d)", c)
}

// Outcome describes one simulated tick.
type Outcome struct {
	// Moves holds the move applied to each snake whose bit is set in Moved.
	Moves [MaxSnakeCapacity]game.Move
	Moved uint16
	// Ate has a bit set for every snake whose new head landed on food, including
	// eaters that then died in a collision.
	Ate        uint16
	Eliminated [MaxSnakeCapacity]Cause
}

func (o *Outcome) MoveFor(id game.SnakeID) (game.Move, bool) {
	if o.Moved&(1<<id) == 0 {
		return 0, false
	}
	return o.Moves[id], true
}

func (o *Outcome) AteFood(id game.SnakeID) bool {
	return o.Ate&(1<<id) != 0
}

func (o *Outcome) CauseOf(id game.SnakeID) Cause {
	if int(id) >= MaxSnakeCapacity {
		return CauseNone
	}
	return o.Eliminated[id]
}

// EliminatedSnakes lists snakes that died on this tick.
func (o *Outcome) EliminatedSnakes() []game.SnakeID {
	var out []game.SnakeID
	for i, c := range o.Eliminated {
		if c != CauseNone {
			out = append(out, game.SnakeID(i))
		}
	}
	return out
}

func (o Outcome) String() string {
	var sb strings.Builder
	for i := range MaxSnakeCapacity {
		id := game.SnakeID(i)
		mv, moved := o.MoveFor(id)
		cause := o.Eliminated[i]
		if !moved && cause == CauseNone {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%d", i)
		if moved {
			fmt.Fprintf(&sb, ":%s", mv)
		}
		if o.AteFood(id) {
			sb.WriteString("+food")
		}
		if cause != CauseNone {
			fmt.Fprintf(&sb, "!%s", cause)
		}
	}
	return sb.String()
}

// SimulatorInstruments receives the wall time of every simulated combination.
type SimulatorInstruments interface {
	ObserveSimulation(time.Duration)
}

// NopInstruments discards observations.
type NopInstruments struct{}

func (NopInstruments) ObserveSimulation(time.Duration) {}
