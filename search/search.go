// Package search picks a move by looking a few ticks ahead on a compact board.
//
// It is a paranoid minimax: each of our moves is scored by the worst outcome over
// every joint move of the opponents, recursively, with a flood-fill heuristic at
// the leaves.
package search

import (
	"context"
	"math"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/brensch/snekcell/compact"
	"github.com/brensch/snekcell/game"
)

const (
	winScore  = 1e6
	lossScore = -1e6
)

type Config struct {
	// Depth is the number of ticks simulated below the root.
	Depth int
	// MaxOpponents caps how many opponents (nearest first) get full move sets.
	// The rest are assumed to keep going straight.
	MaxOpponents int
}

func DefaultConfig() Config {
	return Config{Depth: 2, MaxOpponents: 3}
}

// Result is the chosen move and the per-move scores behind it.
type Result struct {
	Move  game.Move
	Score float64
	// Scores is indexed by move; moves that leave the board are -Inf.
	Scores [4]float64
	Nodes  int64
}

type searcher struct {
	you   game.SnakeID
	cfg   Config
	nodes atomic.Int64
}

// BestMove scores every on-board move for you in parallel. It returns ctx's
// error if the deadline passes before all root moves finish.
func BestMove(ctx context.Context, board compact.BestCellBoard, you game.SnakeID, cfg Config) (Result, error) {
	res := Result{Move: game.MoveUp, Score: math.Inf(-1)}
	for i := range res.Scores {
		res.Scores[i] = math.Inf(-1)
	}
	if !board.IsAlive(you) {
		return res, nil
	}
	moves := board.PossibleMovesFrom(board.GetHeadAsPosition(you))
	if len(moves) == 0 {
		return res, nil
	}

	s := &searcher{you: you, cfg: cfg}
	g, gctx := errgroup.WithContext(ctx)
	for _, mv := range moves {
		g.Go(func() error {
			score, err := s.worstCase(gctx, board, mv, cfg.Depth)
			res.Scores[mv] = score
			return err
		})
	}
	err := g.Wait()
	res.Nodes = s.nodes.Load()
	if err != nil {
		return res, err
	}

	for _, mv := range moves {
		if res.Scores[mv] > res.Score {
			res.Move, res.Score = mv, res.Scores[mv]
		}
	}
	return res, nil
}

// worstCase is the minimum value over opponent replies to our move.
func (s *searcher) worstCase(ctx context.Context, board compact.BestCellBoard, mv game.Move, depth int) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	joint := s.opponentMoves(board)
	joint = append(joint, compact.SnakeMoves{ID: s.you, Moves: []game.Move{mv}})

	worst := math.Inf(1)
	for _, next := range board.Simulate(joint) {
		s.nodes.Add(1)
		v, err := s.value(ctx, next, depth-1)
		if err != nil {
			return 0, err
		}
		worst = min(worst, v)
		if worst <= lossScore {
			break
		}
	}
	return worst, nil
}

func (s *searcher) value(ctx context.Context, board compact.BestCellBoard, depth int) (float64, error) {
	if !board.IsAlive(s.you) {
		return lossScore, nil
	}
	if board.LiveCount() == 1 {
		return winScore, nil
	}
	if depth <= 0 {
		return Evaluate(board, s.you), nil
	}

	best := math.Inf(-1)
	for _, mv := range board.PossibleMovesFrom(board.GetHeadAsPosition(s.you)) {
		v, err := s.worstCase(ctx, board, mv, depth)
		if err != nil {
			return 0, err
		}
		best = max(best, v)
	}
	if math.IsInf(best, -1) {
		return lossScore, nil
	}
	return best, nil
}

// opponentMoves gives the nearest opponents every move that does not run into
// an occupied square, and everyone else a single such move.
func (s *searcher) opponentMoves(board compact.BestCellBoard) []compact.SnakeMoves {
	me := board.GetHeadAsPosition(s.you)
	var opps []game.SnakeID
	for _, id := range board.LivingSnakes() {
		if id != s.you {
			opps = append(opps, id)
		}
	}
	// Insertion sort by distance; there are at most 15.
	for i := 1; i < len(opps); i++ {
		for j := i; j > 0 && manhattan(me, board.GetHeadAsPosition(opps[j])) < manhattan(me, board.GetHeadAsPosition(opps[j-1])); j-- {
			opps[j], opps[j-1] = opps[j-1], opps[j]
		}
	}

	out := make([]compact.SnakeMoves, 0, len(opps)+1)
	for i, id := range opps {
		moves := safeMoves(board, id)
		if i >= s.cfg.MaxOpponents {
			moves = moves[:1]
		}
		out = append(out, compact.SnakeMoves{ID: id, Moves: moves})
	}
	return out
}

func safeMoves(board compact.BestCellBoard, id game.SnakeID) []game.Move {
	head := board.GetHeadAsPosition(id)
	all := board.PossibleMovesFrom(head)
	var safe []game.Move
	for _, mv := range all {
		if !board.IsOccupied(head.Add(mv.Vector())) {
			safe = append(safe, mv)
		}
	}
	switch {
	case len(safe) > 0:
		return safe
	case len(all) > 0:
		return all[:1]
	default:
		return []game.Move{game.MoveUp}
	}
}

func manhattan(a, b game.Point) int32 {
	dx, dy := a.X-b.X, a.Y-b.Y
	if dx < 0 {
		dx = -dx
	}
	if dy < 0 {
		dy = -dy
	}
	return dx + dy
}
