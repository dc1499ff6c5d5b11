// Package selfplay plays complete games on packed boards and records one
// archive row per turn.
package selfplay

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/brensch/snekcell/compact"
	"github.com/brensch/snekcell/game"
	"github.com/brensch/snekcell/scraper/store"
	"github.com/brensch/snekcell/search"
)

const (
	PolicyRandom = "random"
	PolicySearch = "search"
)

type Config struct {
	Width, Height int32
	Snakes        int
	// MaxTurns ends the game as a draw; 0 means no limit.
	MaxTurns int
	Food     game.FoodSettings
	// HazardDamage is applied to every snake standing on a hazard square.
	HazardDamage int32

	// Policy is PolicyRandom or PolicySearch.
	Policy string
	Search search.Config
	// MoveBudget bounds each snake's search per turn.
	MoveBudget time.Duration

	// Trace, when set, receives every board as it is played.
	Trace io.Writer
}

func DefaultConfig() Config {
	return Config{
		Width:        11,
		Height:       11,
		Snakes:       2,
		MaxTurns:     1000,
		Food:         game.DefaultFoodSettings,
		HazardDamage: game.DefaultHazardDamagePerTurn,
		Policy:       PolicyRandom,
		Search:       search.Config{Depth: 1, MaxOpponents: 1},
		MoveBudget:   50 * time.Millisecond,
	}
}

type GameResult struct {
	GameID   string
	WinnerId string // empty on a draw
	Steps    int
}

// CreateInitialState places cfg.Snakes snakes fully stacked on the standard
// spawn squares (corners first, then edge midpoints) and tops up food.
func CreateInitialState(rng *rand.Rand, cfg Config) (*game.GameState, error) {
	spawns := spawnPoints(cfg.Width, cfg.Height)
	if cfg.Snakes <= 0 || cfg.Snakes > len(spawns) {
		return nil, fmt.Errorf("cannot spawn %d snakes on %dx%d", cfg.Snakes, cfg.Width, cfg.Height)
	}
	if _, ok := compact.SelectTier(cfg.Width, cfg.Height, cfg.Snakes); !ok {
		return nil, fmt.Errorf("no board tier fits %dx%d with %d snakes", cfg.Width, cfg.Height, cfg.Snakes)
	}

	rng.Shuffle(len(spawns), func(i, j int) { spawns[i], spawns[j] = spawns[j], spawns[i] })
	damage := cfg.HazardDamage
	state := &game.GameState{
		Width:               cfg.Width,
		Height:              cfg.Height,
		Ruleset:             game.RulesetStandard,
		HazardDamagePerTurn: &damage,
	}
	for i := range cfg.Snakes {
		p := spawns[i]
		state.Snakes = append(state.Snakes, game.Snake{
			Id:     fmt.Sprintf("snake%d", i+1),
			Health: game.MaxHealth,
			Body:   []game.Point{p, p, p},
		})
	}
	state.YouId = state.Snakes[0].Id

	// Chance 0: only enforce the minimum at game start.
	game.ApplyFoodSettings(state, rng, game.FoodSettings{MinimumFood: cfg.Food.MinimumFood})
	return state, nil
}

func spawnPoints(w, h int32) []game.Point {
	if w < 3 || h < 3 {
		return nil
	}
	midX, midY := w/2, h/2
	pts := []game.Point{
		{X: 1, Y: 1}, {X: w - 2, Y: h - 2}, {X: 1, Y: h - 2}, {X: w - 2, Y: 1},
		{X: 1, Y: midY}, {X: midX, Y: 1}, {X: w - 2, Y: midY}, {X: midX, Y: h - 2},
	}
	// small boards collapse some of these onto each other
	out := pts[:0]
	seen := make(map[game.Point]bool)
	for _, p := range pts {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	return out
}

// PlayGame plays one game to completion. onStep is called after every tick.
// A cancelled ctx abandons the game and returns ctx.Err().
func PlayGame(ctx context.Context, cfg Config, rng *rand.Rand, onStep func()) ([]store.ArchiveTurnRow, GameResult, error) {
	state, err := CreateInitialState(rng, cfg)
	if err != nil {
		return nil, GameResult{}, err
	}
	ids := game.BuildSnakeIDMap(state)
	board, err := compact.ToBestCellBoard(state)
	if err != nil {
		return nil, GameResult{}, err
	}

	result := GameResult{GameID: uuid.NewString()}
	rows := make([]store.ArchiveTurnRow, 0, 256)
	trace := newTracer(cfg.Trace, ids)

	for turn := int32(0); ; turn++ {
		if err := ctx.Err(); err != nil {
			return nil, result, err
		}
		trace.board(turn, board)
		row := store.RowFromBoard(result.GameID, "selfplay", turn, board, ids)
		if board.IsOver() || (cfg.MaxTurns > 0 && int(turn) >= cfg.MaxTurns) {
			rows = append(rows, row)
			break
		}

		moves := chooseMoves(ctx, cfg, board, rng)
		out, next := board.Advance(moves)
		store.RecordOutcome(&row, &out, ids)
		rows = append(rows, row)
		trace.outcome(&out)

		spawnFood(next, ids, rng, cfg.Food)
		board = next
		result.Steps++
		if onStep != nil {
			onStep()
		}
	}

	if board.IsOver() {
		if id, ok := board.Winner(); ok {
			result.WinnerId = ids.Reverse()[id]
		}
	}
	store.SetValues(rows, result.WinnerId)
	trace.result(result)
	return rows, result, nil
}

// chooseMoves starts from a random reasonable move for every living snake and,
// under PolicySearch, replaces each with that snake's search result when the
// search finishes inside the budget.
func chooseMoves(ctx context.Context, cfg Config, board compact.BestCellBoard, rng *rand.Rand) []compact.SnakeMove {
	moves := board.RandomReasonableMoves(rng)
	if cfg.Policy != PolicySearch {
		return moves
	}
	for i := range moves {
		sctx, cancel := context.WithTimeout(ctx, cfg.MoveBudget)
		res, err := search.BestMove(sctx, board, moves[i].ID, cfg.Search)
		cancel()
		if err == nil {
			moves[i].Move = res.Move
		}
	}
	return moves
}

// spawnFood runs the engine food rules against the board and stamps whatever
// they add.
func spawnFood(board compact.BestCellBoard, ids game.SnakeIDMap, rng *rand.Rand, settings game.FoodSettings) {
	state := board.ToGameState(ids)
	before := len(state.Food)
	game.ApplyFoodSettings(state, rng, settings)
	for _, f := range state.Food[before:] {
		board.AddFood(f)
	}
}
