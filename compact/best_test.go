package compact

import (
	"errors"
	"testing"

	"github.com/brensch/snekcell/game"
)

func TestSelectTier(t *testing.T) {
	cases := []struct {
		w, h   int32
		snakes int
		want   Tier
		ok     bool
	}{
		{7, 7, 4, TierTiny, true},
		{7, 7, 5, TierLargestU8, true},
		{11, 11, 4, TierStandard, true},
		{12, 12, 2, TierLargestU8, true},
		{7, 12, 2, TierLargestU8, true},
		{19, 19, 8, TierLarge, true},
		{25, 25, 9, TierSilly, true},
		{50, 50, 16, TierSilly, true},
		{51, 10, 2, 0, false},
		{11, 11, 17, 0, false},
	}
	for _, tc := range cases {
		got, ok := SelectTier(tc.w, tc.h, tc.snakes)
		if ok != tc.ok || (ok && got != tc.want) {
			t.Fatalf("SelectTier(%d,%d,%d)=%v,%v want=%v,%v", tc.w, tc.h, tc.snakes, got, ok, tc.want, tc.ok)
		}
	}
}

func TestToBestCellBoard(t *testing.T) {
	tiny := spawnState()
	tiny.Width, tiny.Height = 7, 7
	for i := range tiny.Snakes {
		tiny.Snakes[i].Body = stacked(game.Point{X: int32(i), Y: int32(i)}, 3)
	}
	tiny.Food = nil

	b, err := ToBestCellBoard(tiny)
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if b.Tier() != TierTiny {
		t.Fatalf("tier=%v want=%v", b.Tier(), TierTiny)
	}
	if _, ok := b.(*CellBoard4Snakes7x7); !ok {
		t.Fatalf("board type=%T", b)
	}

	standard, err := ToBestCellBoard(spawnState())
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if standard.Tier() != TierStandard || standard.MaxSnakes() != 4 {
		t.Fatalf("tier=%v snakes=%d", standard.Tier(), standard.MaxSnakes())
	}

	bigger := spawnState()
	bigger.Width, bigger.Height = 12, 12
	up, err := ToBestCellBoard(bigger)
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if up.Tier() != TierLargestU8 {
		t.Fatalf("tier=%v want=%v", up.Tier(), TierLargestU8)
	}
}

func TestBestCellBoard_IDPastCapacity(t *testing.T) {
	b, err := ToBestCellBoard(spawnState())
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	const id = game.SnakeID(5)
	if b.IsAlive(id) || b.GetHealth(id) != 0 || b.GetLength(id) != 0 || b.GetSnakeBody(id) != nil {
		t.Fatalf("snake %d reported alive on a %d snake board", id, b.MaxSnakes())
	}
	if got := b.GetHeadIndex(id); got != 0 {
		t.Fatalf("head index=%d want=0", got)
	}
	if got := b.GetHeadAsPosition(id); got != (game.Point{}) {
		t.Fatalf("head=%v want=(0,0)", got)
	}
	std := b.(*CellBoard4Snakes11x11)
	if std.GetTail(id).Int() != 0 || std.GetHeadAsNativePosition(id).Int() != 0 {
		t.Fatalf("tail=%d head=%d want=0,0", std.GetTail(id).Int(), std.GetHeadAsNativePosition(id).Int())
	}
	out, _ := b.Advance([]SnakeMove{{ID: 0, Move: game.MoveUp}})
	if out.CauseOf(id) != CauseNone || out.CauseOf(game.SnakeID(40)) != CauseNone {
		t.Fatalf("cause=%v want none", out.CauseOf(id))
	}
}

func TestToBestCellBoard_Error(t *testing.T) {
	state := spawnState()
	state.Ruleset = "wrapped_islands"
	b, err := ToBestCellBoard(state)
	if !errors.Is(err, ErrWrappedRuleset) {
		t.Fatalf("err=%v want=%v", err, ErrWrappedRuleset)
	}
	if b != nil {
		t.Fatalf("board=%v want nil interface", b)
	}
}

func TestToBestCellBoard_PanicsWhenNothingFits(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic")
		}
	}()
	state := &game.GameState{Width: 60, Height: 60}
	_, _ = ToBestCellBoard(state)
}

func TestBestCellBoard_Simulate(t *testing.T) {
	state := spawnState()
	state.Width, state.Height = 19, 19
	b, err := ToBestCellBoard(state)
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if b.Tier() != TierLarge {
		t.Fatalf("tier=%v", b.Tier())
	}

	moves := []SnakeMoves{
		{ID: 0, Moves: b.PossibleMovesFrom(b.GetHeadAsPosition(0))},
		{ID: 1, Moves: []game.Move{game.MoveUp}},
		{ID: 2, Moves: []game.Move{game.MoveUp}},
		{ID: 3, Moves: []game.Move{game.MoveUp}},
	}
	if len(moves[0].Moves) != 4 {
		t.Fatalf("moves from (1,1)=%v want all four", moves[0].Moves)
	}
	n := 0
	for out, next := range b.Simulate(moves) {
		n++
		if len(out.EliminatedSnakes()) != 0 {
			t.Fatalf("unexpected elimination: %s", out)
		}
		if next.Tier() != TierLarge {
			t.Fatalf("next tier=%v", next.Tier())
		}
		if err := next.Validate(); err != nil {
			t.Fatalf("invalid: %v", err)
		}
	}
	if n != 4 {
		t.Fatalf("combinations=%d want=4", n)
	}

	c := b.Clone()
	c.AddFood(game.Point{X: 18, Y: 18})
	if b.IsFood(game.Point{X: 18, Y: 18}) {
		t.Fatalf("clone shares storage")
	}
}
