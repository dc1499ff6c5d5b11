package selfplay

import (
	"bytes"
	"context"
	"math/rand"
	"strings"
	"testing"

	"github.com/brensch/snekcell/game"
)

func TestCreateInitialState(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Snakes = 4
	state, err := CreateInitialState(rand.New(rand.NewSource(1)), cfg)
	if err != nil {
		t.Fatal(err)
	}
	if len(state.Snakes) != 4 {
		t.Fatalf("snakes=%d want=4", len(state.Snakes))
	}
	heads := make(map[game.Point]bool)
	for _, s := range state.Snakes {
		if len(s.Body) != 3 || s.Body[0] != s.Body[2] {
			t.Fatalf("snake %s not spawned stacked: %v", s.Id, s.Body)
		}
		if heads[s.Body[0]] {
			t.Fatalf("two snakes spawned on %v", s.Body[0])
		}
		heads[s.Body[0]] = true
	}
	if len(state.Food) < cfg.Food.MinimumFood {
		t.Fatalf("food=%d want>=%d", len(state.Food), cfg.Food.MinimumFood)
	}
}

func TestCreateInitialStateRejects(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Snakes = 9
	if _, err := CreateInitialState(rand.New(rand.NewSource(1)), cfg); err == nil {
		t.Fatalf("nine snakes accepted")
	}
	cfg = DefaultConfig()
	cfg.Width, cfg.Height = 60, 60
	if _, err := CreateInitialState(rand.New(rand.NewSource(1)), cfg); err == nil {
		t.Fatalf("60x60 accepted")
	}
}

func TestPlayGameRandom(t *testing.T) {
	for seed := int64(0); seed < 20; seed++ {
		cfg := DefaultConfig()
		cfg.Snakes = 4
		steps := 0
		rows, res, err := PlayGame(context.Background(), cfg, rand.New(rand.NewSource(seed)), func() { steps++ })
		if err != nil {
			t.Fatal(err)
		}
		if steps != res.Steps || len(rows) != res.Steps+1 {
			t.Fatalf("seed %d: steps=%d result=%d rows=%d", seed, steps, res.Steps, len(rows))
		}
		for i, r := range rows {
			if r.Turn != int32(i) || r.GameID != res.GameID {
				t.Fatalf("seed %d: row %d turn=%d game=%s", seed, i, r.Turn, r.GameID)
			}
		}
		last := rows[len(rows)-1]
		alive := 0
		for _, s := range last.Snakes {
			if s.Alive {
				alive++
			}
			if s.Policy != -1 {
				t.Fatalf("seed %d: terminal row has policy %d", seed, s.Policy)
			}
		}
		if res.WinnerId != "" {
			if alive != 1 {
				t.Fatalf("seed %d: winner %s with %d alive", seed, res.WinnerId, alive)
			}
			for _, s := range rows[0].Snakes {
				want := float32(-1)
				if s.ID == res.WinnerId {
					want = 1
				}
				if s.Value != want {
					t.Fatalf("seed %d: %s value=%v want=%v", seed, s.ID, s.Value, want)
				}
			}
		}
	}
}

func TestPlayGameSearchTraced(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Policy = PolicySearch
	cfg.MaxTurns = 30
	var buf bytes.Buffer
	cfg.Trace = &buf

	rows, res, err := PlayGame(context.Background(), cfg, rand.New(rand.NewSource(7)), nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) == 0 || res.Steps > cfg.MaxTurns {
		t.Fatalf("rows=%d steps=%d", len(rows), res.Steps)
	}
	out := buf.String()
	if strings.Contains(out, "INVALID") {
		t.Fatalf("board failed validation:\n%s", out)
	}
	if !strings.Contains(out, "=== turn 0") || !strings.Contains(out, "over after") {
		t.Fatalf("trace missing sections:\n%s", out)
	}
}

func TestPlayGameCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	rows, _, err := PlayGame(ctx, DefaultConfig(), rand.New(rand.NewSource(1)), nil)
	if err == nil || rows != nil {
		t.Fatalf("rows=%d err=%v", len(rows), err)
	}
}
