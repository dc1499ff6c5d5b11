// Package replay checks the compact simulator against recorded engine games.
//
// Every consecutive pair of frames is replayed: the earlier frame is packed,
// the moves inferred from head deltas are applied with one tick, and the
// result is compared with the later frame. Food spawned by the engine after
// the tick is not predicted, so food is only checked for removal.
package replay

import (
	"fmt"
	"maps"
	"slices"

	"github.com/brensch/snekcell/compact"
	"github.com/brensch/snekcell/game"
	"github.com/brensch/snekcell/rules"
	"github.com/brensch/snekcell/scraper/downloader"
	"github.com/brensch/snekcell/scraper/store"
)

// Mismatch is one field where a prediction disagreed with the recorded frame.
// Source is "compact" or "rules".
type Mismatch struct {
	Turn   int
	Source string
	Snake  string
	Field  string
	Want   string
	Got    string
}

func (m Mismatch) String() string {
	return fmt.Sprintf("turn %d %s %s.%s: want %s got %s", m.Turn, m.Source, m.Snake, m.Field, m.Want, m.Got)
}

// Report summarises one replayed game.
type Report struct {
	GameID     string
	Tier       compact.Tier
	Ticks      int
	Skipped    string // reason the game was not replayed, if any
	Mismatches []Mismatch
	// Rows are the packed snapshots of every replayed frame.
	Rows []store.ArchiveTurnRow
}

func (r *Report) OK() bool { return r.Skipped == "" && len(r.Mismatches) == 0 }

// Game replays g and reports every disagreement. The rules reference engine
// runs alongside so a mismatch can be blamed on the packing or on the rules.
func Game(g *downloader.Game) *Report {
	rep := &Report{GameID: g.ID}
	if len(g.Frames) < 2 {
		rep.Skipped = "fewer than two frames"
		return rep
	}

	first := downloader.FrameToState(g.Info, &g.Frames[0])
	if first.IsWrapped() {
		rep.Skipped = "wrapped ruleset"
		return rep
	}
	tier, ok := compact.SelectTier(first.Width, first.Height, len(first.Snakes))
	if !ok {
		rep.Skipped = "no tier fits"
		return rep
	}
	rep.Tier = tier
	ids := game.BuildSnakeIDMap(first)

	for i := 0; i+1 < len(g.Frames); i++ {
		prev, next := &g.Frames[i], &g.Frames[i+1]
		state := downloader.FrameToState(g.Info, prev)
		if len(state.Snakes) == 0 {
			break
		}
		board, err := compact.ConvertForTier(tier, state, ids)
		if err != nil {
			rep.Skipped = fmt.Sprintf("turn %d: %v", prev.Turn, err)
			return rep
		}

		moves := downloader.InferMoves(prev, next)
		joint := make([]compact.SnakeMove, 0, len(moves))
		for _, name := range slices.Sorted(maps.Keys(moves)) {
			joint = append(joint, compact.SnakeMove{ID: ids[name], Move: moves[name]})
		}

		row := store.RowFromBoard(g.ID, "scrape", int32(prev.Turn), board, ids)
		out, predicted := board.Advance(joint)
		store.RecordOutcome(&row, &out, ids)
		rep.Rows = append(rep.Rows, row)
		rep.Ticks++

		observed := downloader.FrameToState(g.Info, next)
		rep.Mismatches = append(rep.Mismatches, compare(next.Turn, "compact", predicted.ToGameState(ids), observed, state.Food)...)

		refNext, _ := rules.NextStateSimultaneous(state, moves)
		rep.Mismatches = append(rep.Mismatches, compare(next.Turn, "rules", refNext, observed, state.Food)...)
	}
	return rep
}

// compare checks survivors, bodies and health, and that each piece of food
// from before the tick was eaten in both states or in neither.
func compare(turn int, source string, got, want *game.GameState, prevFood []game.Point) []Mismatch {
	var out []Mismatch
	add := func(snake, field, w, g string) {
		out = append(out, Mismatch{Turn: turn, Source: source, Snake: snake, Field: field, Want: w, Got: g})
	}

	alive := func(s *game.GameState, id string) bool { return s.SnakeByID(id) != nil }
	var names []string
	for _, s := range want.Snakes {
		names = append(names, s.Id)
	}
	for _, s := range got.Snakes {
		if !alive(want, s.Id) {
			names = append(names, s.Id)
		}
	}

	for _, name := range names {
		w, g := want.SnakeByID(name), got.SnakeByID(name)
		switch {
		case w == nil:
			add(name, "alive", "false", "true")
			continue
		case g == nil:
			add(name, "alive", "true", "false")
			continue
		}
		if !slices.Equal(w.Body, g.Body) {
			add(name, "body", fmt.Sprint(w.Body), fmt.Sprint(g.Body))
		}
		if w.Health != g.Health {
			add(name, "health", fmt.Sprint(w.Health), fmt.Sprint(g.Health))
		}
	}

	for _, f := range prevFood {
		inWant, inGot := slices.Contains(want.Food, f), slices.Contains(got.Food, f)
		if inWant != inGot {
			add(fmt.Sprint(f), "food", fmt.Sprint(inWant), fmt.Sprint(inGot))
		}
	}
	return out
}
