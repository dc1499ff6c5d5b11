// Command debuggame prints a game board by board. With -archive it replays a
// stored game from a Parquet batch; otherwise it plays a fresh self-play game.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"time"

	"github.com/brensch/snekcell/compact"
	"github.com/brensch/snekcell/executor/selfplay"
	"github.com/brensch/snekcell/game"
	"github.com/brensch/snekcell/scraper/store"
)

func main() {
	archive := flag.String("archive", "", "Parquet batch to replay from")
	gameID := flag.String("game", "", "Game id within -archive (default: first game)")
	seed := flag.Int64("seed", time.Now().UnixNano(), "RNG seed for a fresh game")
	snakes := flag.Int("snakes", 2, "Snakes in a fresh game")
	policy := flag.String("policy", selfplay.PolicySearch, "Move policy for a fresh game: random or search")
	maxTurns := flag.Int("max-turns", 300, "Turn limit for a fresh game")
	flag.Parse()

	if *archive != "" {
		if err := replayArchive(*archive, *gameID); err != nil {
			log.Fatalf("replay: %v", err)
		}
		return
	}

	cfg := selfplay.DefaultConfig()
	cfg.Snakes = *snakes
	cfg.Policy = *policy
	cfg.MaxTurns = *maxTurns
	cfg.Trace = os.Stdout

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	log.Printf("Playing debug game: seed=%d snakes=%d policy=%s", *seed, cfg.Snakes, cfg.Policy)
	_, result, err := selfplay.PlayGame(ctx, cfg, rand.New(rand.NewSource(*seed)), nil)
	if err != nil {
		log.Fatalf("play: %v", err)
	}
	log.Printf("Game complete: %d turns, winner: %q", result.Steps, result.WinnerId)
}

// replayArchive packs every stored turn of one game, prints it with the moves
// recorded for that turn, and checks that stepping those moves reproduces the
// next stored turn.
func replayArchive(path, gameID string) error {
	rows, err := store.ReadArchive(path)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return fmt.Errorf("%s has no rows", path)
	}
	if gameID == "" {
		gameID = rows[0].GameID
	}
	rows = store.GameRows(rows, gameID)
	if len(rows) == 0 {
		return fmt.Errorf("game %s not in %s", gameID, path)
	}

	ids := make(game.SnakeIDMap)
	for i, s := range rows[0].Snakes {
		ids[s.ID] = game.SnakeID(i)
	}
	first := rows[0].ToGameState()
	tier, ok := compact.SelectTier(first.Width, first.Height, len(rows[0].Snakes))
	if !ok {
		return fmt.Errorf("no tier fits %dx%d", first.Width, first.Height)
	}

	for i := range rows {
		board, err := compact.ConvertForTier(tier, rows[i].ToGameState(), ids)
		if err != nil {
			return fmt.Errorf("turn %d: %w", rows[i].Turn, err)
		}
		fmt.Printf("\n=== %s turn %d (%s) ===\n%s", gameID, rows[i].Turn, tier, board)

		var moves []compact.SnakeMove
		for _, s := range rows[i].Snakes {
			if s.Alive && s.Policy >= 0 {
				moves = append(moves, compact.SnakeMove{ID: ids[s.ID], Move: game.Move(s.Policy)})
			}
		}
		if len(moves) == 0 || i+1 == len(rows) {
			continue
		}
		out, next := board.Advance(moves)
		fmt.Printf("moves: %s\n", out)

		// food spawns between turns, so compare snakes only
		want := rows[i+1].ToGameState()
		got := next.ToGameState(ids)
		for _, s := range want.Snakes {
			g := got.SnakeByID(s.Id)
			if g == nil || fmt.Sprint(g.Body) != fmt.Sprint(s.Body) || g.Health != s.Health {
				fmt.Printf("DIVERGED at turn %d on %s\n", rows[i+1].Turn, s.Id)
			}
		}
	}
	return nil
}
