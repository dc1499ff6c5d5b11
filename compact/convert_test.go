package compact

import (
	"errors"
	"testing"

	"github.com/brensch/snekcell/game"
)

func TestConvert_Spawn(t *testing.T) {
	state := spawnState()
	b := mustStandard(t, state)

	if b.Width() != 11 || b.Height() != 11 {
		t.Fatalf("size=%dx%d want=11x11", b.Width(), b.Height())
	}
	if b.HazardDamage() != game.DefaultHazardDamagePerTurn {
		t.Fatalf("hazard damage=%d want=%d", b.HazardDamage(), game.DefaultHazardDamagePerTurn)
	}
	for id := range game.SnakeID(4) {
		if b.GetHealth(id) != 100 || b.GetLength(id) != 3 {
			t.Fatalf("snake %d health=%d length=%d", id, b.GetHealth(id), b.GetLength(id))
		}
		head := b.cells[b.GetHeadIndex(id)]
		if !head.IsHead() || !head.IsTripleStacked() {
			t.Fatalf("snake %d spawn cell=%+v want stacked head", id, head)
		}
		if b.GetTail(id) != b.GetHeadAsNativePosition(id) {
			t.Fatalf("snake %d spawn tail is not its head", id)
		}
	}
	if got := b.GetHeadAsPosition(2); got != (game.Point{X: 1, Y: 9}) {
		t.Fatalf("head c=%v", got)
	}
	assertPoints(t, "food", b.GetAllFood(), pts(0, 2, 5, 5))
}

func TestConvert_Idempotent(t *testing.T) {
	state := spawnState()
	state.Hazards = pts(0, 0, 10, 10)
	a := mustStandard(t, state)
	b := mustStandard(t, state)
	if a != b {
		t.Fatalf("two conversions differ:\n%s\n%s", &a, &b)
	}
}

func TestConvert_BodyChain(t *testing.T) {
	state := &game.GameState{
		Width:  11,
		Height: 11,
		YouId:  "me",
		Snakes: []game.Snake{{
			Id:     "me",
			Health: 80,
			Body:   pts(4, 6, 4, 5, 3, 5, 3, 4, 3, 4),
		}},
	}
	b := mustStandard(t, state)
	if got := b.GetHeadAsNativePosition(0).Int(); got != 6*11+4 {
		t.Fatalf("head index=%d want=%d", got, 6*11+4)
	}
	if b.GetLength(0) != 5 {
		t.Fatalf("length=%d want=5", b.GetLength(0))
	}
	tail := b.cells[b.GetTail(0).Int()]
	if !tail.IsDoubleStacked() {
		t.Fatalf("tail=%+v want double stacked", tail)
	}
	assertPoints(t, "body", b.GetSnakeBody(0), state.Snakes[0].Body)
}

func TestConvert_Errors(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*game.GameState)
		want   error
	}{
		{"wrapped", func(s *game.GameState) { s.Ruleset = "wrapped" }, ErrWrappedRuleset},
		{"too wide", func(s *game.GameState) { s.Width = 12 }, ErrBoardTooLarge},
		{"too many snakes", func(s *game.GameState) {
			s.Snakes = append(s.Snakes, game.Snake{Id: "e", Health: 100, Body: stacked(game.Point{X: 5, Y: 5}, 3)})
		}, ErrTooManySnakes},
		{"off board", func(s *game.GameState) { s.Snakes[0].Body = pts(0, 0, -1, 0, -2, 0) }, ErrMalformedBody},
		{"gap", func(s *game.GameState) { s.Snakes[0].Body = pts(1, 1, 1, 3, 1, 4) }, ErrMalformedBody},
		{"overlap", func(s *game.GameState) { s.Snakes[0].Body = pts(9, 2, 9, 1, 9, 0) }, ErrMalformedBody},
		{"self cross", func(s *game.GameState) { s.Snakes[0].Body = pts(1, 1, 1, 2, 2, 2, 2, 1, 1, 1) }, ErrMalformedBody},
		{"stacked head", func(s *game.GameState) { s.Snakes[0].Body = pts(1, 1, 1, 1, 1, 2) }, ErrMalformedBody},
		{"empty body", func(s *game.GameState) { s.Snakes[0].Body = nil }, ErrMalformedBody},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			state := spawnState()
			tc.mutate(state)
			var b CellBoard4Snakes11x11
			err := b.ConvertFromGame(state, game.BuildSnakeIDMap(state))
			if !errors.Is(err, tc.want) {
				t.Fatalf("err=%v want=%v", err, tc.want)
			}
		})
	}
}

func TestConvert_UnknownSnake(t *testing.T) {
	state := spawnState()
	ids := game.BuildSnakeIDMap(state)
	delete(ids, "c")
	var b CellBoard4Snakes11x11
	if err := b.ConvertFromGame(state, ids); !errors.Is(err, ErrUnknownSnake) {
		t.Fatalf("err=%v want=%v", err, ErrUnknownSnake)
	}
}

func TestConvert_BadBodyStack(t *testing.T) {
	state := spawnState()
	state.Snakes[1].Body = pts(8, 1, 9, 1, 9, 1, 9, 1)
	var b CellBoard4Snakes11x11
	err := b.ConvertFromGame(state, game.BuildSnakeIDMap(state))
	var stackErr *BadBodyStackError
	if !errors.As(err, &stackErr) {
		t.Fatalf("err=%v want BadBodyStackError", err)
	}
	if stackErr.SnakeID != "b" {
		t.Fatalf("snake=%q want=b", stackErr.SnakeID)
	}
}

func TestConvert_FailureLeavesBoardUntouched(t *testing.T) {
	good := mustStandard(t, spawnState())
	b := good
	bad := spawnState()
	bad.Snakes[3].Body = pts(9, 9, 9, 7, 9, 6)
	if err := b.ConvertFromGame(bad, game.BuildSnakeIDMap(bad)); err == nil {
		t.Fatalf("expected error")
	}
	if b != good {
		t.Fatalf("failed conversion modified the board")
	}
}

func TestConvert_DeadSnakesAndFlags(t *testing.T) {
	dmg := int32(300)
	state := &game.GameState{
		Width:               7,
		Height:              7,
		HazardDamagePerTurn: &dmg,
		Snakes: []game.Snake{
			{Id: "alive", Health: 1000, Body: pts(3, 3, 3, 2, 3, 1)},
			{Id: "dead", Health: 0, Body: pts(5, 5, 5, 4, 5, 3)},
		},
		Food:    pts(5, 5, 9, 9, -1, 0),
		Hazards: pts(3, 3, 0, 6),
	}
	b := mustTiny(t, state)
	if b.GetHealth(0) != 255 {
		t.Fatalf("health=%d want clamped 255", b.GetHealth(0))
	}
	if b.HazardDamage() != 255 {
		t.Fatalf("hazard damage=%d want clamped 255", b.HazardDamage())
	}
	if b.IsAlive(1) || b.IsOccupied(game.Point{X: 5, Y: 4}) {
		t.Fatalf("dead snake placed on board:\n%s", &b)
	}
	if !b.IsFood(game.Point{X: 5, Y: 5}) || len(b.GetAllFood()) != 1 {
		t.Fatalf("food=%v want only (5,5)", b.GetAllFood())
	}
	head := b.CellAt(game.Point{X: 3, Y: 3})
	if !head.IsHead() || !head.IsHazard() {
		t.Fatalf("head cell=%+v want head on hazard", head)
	}
	assertPoints(t, "hazards", b.GetAllHazards(), pts(3, 3, 0, 6))
}

func TestConvert_ToGameStateRoundTrip(t *testing.T) {
	state := &game.GameState{
		Width:   11,
		Height:  11,
		YouId:   "me",
		Ruleset: game.RulesetStandard,
		Snakes: []game.Snake{
			{Id: "me", Health: 73, Body: pts(4, 6, 4, 5, 3, 5, 3, 4, 3, 4)},
			{Id: "you", Health: 12, Body: pts(8, 8)},
		},
		Food:    pts(0, 0),
		Hazards: pts(10, 10),
	}
	ids := game.BuildSnakeIDMap(state)
	b := mustStandard(t, state)

	snap := b.ToGameState(ids)
	if snap.YouId != "me" || len(snap.Snakes) != 2 {
		t.Fatalf("snapshot=%+v", snap)
	}
	for _, s := range state.Snakes {
		got := snap.SnakeByID(s.Id)
		if got == nil || got.Health != s.Health {
			t.Fatalf("snake %s=%+v want health %d", s.Id, got, s.Health)
		}
		assertPoints(t, "body "+s.Id, got.Body, s.Body)
	}

	var again CellBoard4Snakes11x11
	if err := again.ConvertFromGame(snap, ids); err != nil {
		t.Fatalf("reconvert: %v", err)
	}
	if again != b {
		t.Fatalf("round trip changed the board:\n%s\n%s", &b, &again)
	}
}
