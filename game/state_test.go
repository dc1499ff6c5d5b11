package game

import (
	"math/rand"
	"testing"
)

func TestBuildSnakeIDMap_YouFirst(t *testing.T) {
	state := &GameState{
		YouId: "b",
		Snakes: []Snake{
			{Id: "a"}, {Id: "b"}, {Id: "c"},
		},
	}
	ids := BuildSnakeIDMap(state)
	if ids["b"] != 0 {
		t.Fatalf("you id=%d want=0", ids["b"])
	}
	if ids["a"] != 1 || ids["c"] != 2 {
		t.Fatalf("ids=%v want a=1 c=2", ids)
	}
	rev := ids.Reverse()
	if rev[2] != "c" {
		t.Fatalf("reverse[2]=%q want=c", rev[2])
	}
}

func TestBuildSnakeIDMap_NoYou(t *testing.T) {
	state := &GameState{Snakes: []Snake{{Id: "x"}, {Id: "y"}}}
	ids := BuildSnakeIDMap(state)
	if ids["x"] != 0 || ids["y"] != 1 {
		t.Fatalf("ids=%v", ids)
	}
}

func TestClone_Deep(t *testing.T) {
	dmg := int32(7)
	state := &GameState{
		Width:               11,
		Height:              11,
		Snakes:              []Snake{{Id: "a", Health: 90, Body: []Point{{X: 1, Y: 1}}}},
		Food:                []Point{{X: 2, Y: 2}},
		Hazards:             []Point{{X: 0, Y: 0}},
		HazardDamagePerTurn: &dmg,
	}
	c := state.Clone()
	c.Snakes[0].Body[0].X = 5
	c.Food[0].X = 5
	*c.HazardDamagePerTurn = 1
	if state.Snakes[0].Body[0].X != 1 || state.Food[0].X != 2 || *state.HazardDamagePerTurn != 7 {
		t.Fatalf("clone aliased original: %+v", state)
	}
}

func TestHazardDamage_Default(t *testing.T) {
	state := &GameState{}
	if got := state.HazardDamage(); got != DefaultHazardDamagePerTurn {
		t.Fatalf("damage=%d want=%d", got, DefaultHazardDamagePerTurn)
	}
}

func TestMoveBetween(t *testing.T) {
	from := Point{X: 3, Y: 3}
	for _, m := range AllMoves {
		got, ok := MoveBetween(from, from.Add(m.Vector()))
		if !ok || got != m {
			t.Fatalf("move=%v got=%v ok=%v", m, got, ok)
		}
	}
	if _, ok := MoveBetween(from, Point{X: 5, Y: 3}); ok {
		t.Fatalf("non-adjacent points reported a move")
	}
	if m, err := ParseMove("left"); err != nil || m != MoveLeft {
		t.Fatalf("ParseMove(left)=%v,%v", m, err)
	}
	if _, err := ParseMove("sideways"); err == nil {
		t.Fatalf("expected error for unknown move")
	}
}

func TestApplyFoodSettings_MinimumOnFreeSquares(t *testing.T) {
	state := &GameState{
		Width:  3,
		Height: 3,
		Snakes: []Snake{{
			Id:     "a",
			Health: 100,
			Body:   []Point{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 2, Y: 0}},
		}},
	}
	ApplyFoodSettings(state, rand.New(rand.NewSource(1)), FoodSettings{MinimumFood: 4})
	if len(state.Food) != 4 {
		t.Fatalf("food=%d want=4", len(state.Food))
	}
	seen := map[Point]bool{}
	for _, f := range state.Food {
		if f.Y == 0 {
			t.Fatalf("food spawned on snake at %v", f)
		}
		if seen[f] {
			t.Fatalf("duplicate food at %v", f)
		}
		seen[f] = true
	}
}

func TestApplyFoodSettings_FullBoard(t *testing.T) {
	state := &GameState{
		Width:  2,
		Height: 1,
		Snakes: []Snake{{Id: "a", Health: 100, Body: []Point{{X: 0, Y: 0}, {X: 1, Y: 0}}}},
	}
	ApplyFoodSettings(state, nil, FoodSettings{MinimumFood: 3, FoodSpawnChance: 100})
	if len(state.Food) != 0 {
		t.Fatalf("food=%v want none", state.Food)
	}
}

func TestApplyFoodSettings_DeterministicWithoutRNG(t *testing.T) {
	base := &GameState{Width: 11, Height: 11, Turn: 12}
	a := base.Clone()
	b := base.Clone()
	ApplyFoodSettings(a, nil, FoodSettings{MinimumFood: 3})
	ApplyFoodSettings(b, nil, FoodSettings{MinimumFood: 3})
	if len(a.Food) != 3 || len(b.Food) != 3 {
		t.Fatalf("food a=%d b=%d want=3", len(a.Food), len(b.Food))
	}
	for i := range a.Food {
		if a.Food[i] != b.Food[i] {
			t.Fatalf("food[%d] a=%v b=%v", i, a.Food[i], b.Food[i])
		}
	}
}
