package selfplay

import (
	"fmt"
	"io"

	"github.com/brensch/snekcell/compact"
	"github.com/brensch/snekcell/game"
)

// tracer prints boards and tick outcomes for debugging. A nil writer makes
// every method a no-op.
type tracer struct {
	w     io.Writer
	names map[game.SnakeID]string
}

func newTracer(w io.Writer, ids game.SnakeIDMap) *tracer {
	return &tracer{w: w, names: ids.Reverse()}
}

func (t *tracer) board(turn int32, b compact.BestCellBoard) {
	if t.w == nil {
		return
	}
	fmt.Fprintf(t.w, "\n=== turn %d (%s) ===\n", turn, b.Tier())
	fmt.Fprint(t.w, b.String())
	if err := b.Validate(); err != nil {
		fmt.Fprintf(t.w, "INVALID: %v\n", err)
	}
}

func (t *tracer) outcome(out *compact.Outcome) {
	if t.w == nil {
		return
	}
	for _, id := range out.EliminatedSnakes() {
		fmt.Fprintf(t.w, "%s eliminated: %s\n", t.names[id], out.CauseOf(id))
	}
	fmt.Fprintf(t.w, "moves: %s\n", out)
}

func (t *tracer) result(r GameResult) {
	if t.w == nil {
		return
	}
	winner := r.WinnerId
	if winner == "" {
		winner = "draw"
	}
	fmt.Fprintf(t.w, "\ngame %s over after %d turns, winner: %s\n", r.GameID, r.Steps, winner)
}
