package downloader

import "github.com/brensch/snekcell/game"

func toPoints(cs []Coord) []game.Point {
	out := make([]game.Point, len(cs))
	for i, c := range cs {
		out[i] = game.Point{X: int32(c.X), Y: int32(c.Y)}
	}
	return out
}

// FrameToState converts a frame into a snapshot holding only the snakes still
// alive in it.
func FrameToState(info GameInfo, frame *FrameData) *game.GameState {
	state := &game.GameState{
		Width:   int32(info.Game.Width),
		Height:  int32(info.Game.Height),
		Turn:    int32(frame.Turn),
		Ruleset: info.Game.Ruleset.Name,
		Food:    toPoints(frame.Food),
		Hazards: toPoints(frame.Hazards),
	}
	if d, ok := info.Game.Ruleset.HazardDamage(); ok {
		state.HazardDamagePerTurn = &d
	}
	for _, s := range frame.Snakes {
		if s.Death != nil || len(s.Body) == 0 {
			continue
		}
		state.Snakes = append(state.Snakes, game.Snake{
			Id:     s.ID,
			Health: int32(s.Health),
			Body:   toPoints(s.Body),
		})
	}
	return state
}

// InferMoves recovers each move made between prev and next from head deltas.
// Snakes eliminated in next still carry the head they died on, so their move
// is recovered too. Snakes whose head did not move one square are omitted.
func InferMoves(prev, next *FrameData) map[string]game.Move {
	heads := make(map[string]Coord, len(next.Snakes))
	for _, s := range next.Snakes {
		if len(s.Body) > 0 {
			heads[s.ID] = s.Body[0]
		}
	}

	moves := make(map[string]game.Move, len(prev.Snakes))
	for _, s := range prev.Snakes {
		if s.Death != nil || len(s.Body) == 0 {
			continue
		}
		to, ok := heads[s.ID]
		if !ok {
			continue
		}
		from := s.Body[0]
		mv, ok := game.MoveBetween(
			game.Point{X: int32(from.X), Y: int32(from.Y)},
			game.Point{X: int32(to.X), Y: int32(to.Y)},
		)
		if ok {
			moves[s.ID] = mv
		}
	}
	return moves
}

// Eliminated returns the snakes that died in next, keyed by id, with the
// engine's cause string.
func Eliminated(prev, next *FrameData) map[string]string {
	alive := make(map[string]bool, len(prev.Snakes))
	for _, s := range prev.Snakes {
		if s.Death == nil {
			alive[s.ID] = true
		}
	}
	out := make(map[string]string)
	for _, s := range next.Snakes {
		if s.Death != nil && alive[s.ID] {
			out[s.ID] = s.Death.Cause
		}
	}
	return out
}
