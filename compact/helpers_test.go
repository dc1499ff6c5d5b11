package compact

import (
	"testing"

	"github.com/brensch/snekcell/game"
)

func pts(xy ...int32) []game.Point {
	out := make([]game.Point, 0, len(xy)/2)
	for i := 0; i+1 < len(xy); i += 2 {
		out = append(out, game.Point{X: xy[i], Y: xy[i+1]})
	}
	return out
}

func stacked(p game.Point, n int) []game.Point {
	out := make([]game.Point, n)
	for i := range out {
		out[i] = p
	}
	return out
}

// spawnState is the start of a standard four player game.
func spawnState() *game.GameState {
	return &game.GameState{
		Width:   11,
		Height:  11,
		YouId:   "a",
		Ruleset: game.RulesetStandard,
		Snakes: []game.Snake{
			{Id: "a", Health: 100, Body: stacked(game.Point{X: 1, Y: 1}, 3)},
			{Id: "b", Health: 100, Body: stacked(game.Point{X: 9, Y: 1}, 3)},
			{Id: "c", Health: 100, Body: stacked(game.Point{X: 1, Y: 9}, 3)},
			{Id: "d", Health: 100, Body: stacked(game.Point{X: 9, Y: 9}, 3)},
		},
		Food: pts(5, 5, 0, 2),
	}
}

func mustStandard(t testing.TB, state *game.GameState) CellBoard4Snakes11x11 {
	t.Helper()
	var b CellBoard4Snakes11x11
	if err := b.ConvertFromGame(state, game.BuildSnakeIDMap(state)); err != nil {
		t.Fatalf("convert: %v", err)
	}
	mustValid(t, &b)
	return b
}

func mustTiny(t testing.TB, state *game.GameState) CellBoard4Snakes7x7 {
	t.Helper()
	var b CellBoard4Snakes7x7
	if err := b.ConvertFromGame(state, game.BuildSnakeIDMap(state)); err != nil {
		t.Fatalf("convert: %v", err)
	}
	mustValid(t, &b)
	return b
}

func mustValid(t testing.TB, b interface {
	Validate() error
	String() string
}) {
	t.Helper()
	if err := b.Validate(); err != nil {
		t.Fatalf("invalid board: %v\n%s", err, b)
	}
}

func logStep(t *testing.T, name string, before, after interface{ String() string }, out Outcome) {
	t.Helper()
	t.Logf("=== %s ===\nBefore:\n%sOutcome: %s\nAfter:\n%s", name, before, out, after)
}

func assertPoints(t *testing.T, what string, got, want []game.Point) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("%s=%v want=%v", what, got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("%s[%d]=%v want=%v (got %v)", what, i, got[i], want[i], got)
		}
	}
}
