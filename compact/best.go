package compact

import (
	"fmt"
	"iter"
	"math/rand"

	"github.com/brensch/snekcell/game"
)

// Tier names a board capacity.
type Tier uint8

const (
	TierTiny      Tier = iota // 7x7, 4 snakes
	TierStandard              // 11x11, 4 snakes
	TierLargestU8             // 15x15, 8 snakes
	TierLarge                 // 25x25, 8 snakes
	TierSilly                 // 50x50, 16 snakes
)

var tiers = [...]struct {
	tier   Tier
	dim    int32
	snakes int
	name   string
}{
	{TierTiny, 7, 4, "tiny"},
	{TierStandard, 11, 4, "standard"},
	{TierLargestU8, 15, 8, "largest-u8"},
	{TierLarge, 25, 8, "large"},
	{TierSilly, 50, 16, "silly"},
}

func (t Tier) String() string {
	if int(t) < len(tiers) {
		return tiers[t].name
	}
	return fmt.Sprintf("Tier(%d)", t)
}

// SelectTier returns the smallest tier whose side fits max(width, height) and
// whose snake slots fit the snake count.
func SelectTier(width, height int32, snakes int) (Tier, bool) {
	dim := max(width, height)
	for _, t := range tiers {
		if dim <= t.dim && snakes <= t.snakes {
			return t.tier, true
		}
	}
	return 0, false
}

// BestCellBoard is a board of any tier. Only the tier aliases of CellBoard
// implement it. Snake queries with an id past MaxSnakes report a dead snake
// at index 0 instead of panicking.
type BestCellBoard interface {
	Tier() Tier
	Width() int
	Height() int
	HazardDamage() int
	MaxSnakes() int

	GetHealth(id game.SnakeID) int
	IsAlive(id game.SnakeID) bool
	GetLength(id game.SnakeID) int
	GetHeadAsPosition(id game.SnakeID) game.Point
	GetHeadIndex(id game.SnakeID) int
	GetSnakeBody(id game.SnakeID) []game.Point

	OffBoard(p game.Point) bool
	IsFood(p game.Point) bool
	IsHazard(p game.Point) bool
	IsOccupied(p game.Point) bool
	GetAllFood() []game.Point
	GetAllHazards() []game.Point
	AddFood(p game.Point)
	SetHazard(p game.Point)
	ClearHazard(p game.Point)

	LivingSnakes() []game.SnakeID
	LiveCount() int
	IsOver() bool
	Winner() (game.SnakeID, bool)
	PossibleMovesFrom(p game.Point) []game.Move
	RandomReasonableMoves(rng *rand.Rand) []SnakeMove

	// Simulate boxes every resulting board.
	Simulate(moves []SnakeMoves) iter.Seq2[Outcome, BestCellBoard]
	Advance(moves []SnakeMove) (Outcome, BestCellBoard)
	Clone() BestCellBoard

	ToGameState(ids game.SnakeIDMap) *game.GameState
	Validate() error
	String() string

	bestCellBoard()
}

func (b *CellBoard[T, C, S]) bestCellBoard() {}

func (b *CellBoard[T, C, S]) Tier() Tier {
	switch len(b.cells) {
	case 7 * 7:
		return TierTiny
	case 11 * 11:
		return TierStandard
	case 15 * 15:
		return TierLargestU8
	case 25 * 25:
		return TierLarge
	default:
		return TierSilly
	}
}

func (b *CellBoard[T, C, S]) Simulate(moves []SnakeMoves) iter.Seq2[Outcome, BestCellBoard] {
	seq := b.SimulateWithMoves(moves)
	return func(yield func(Outcome, BestCellBoard) bool) {
		for out, next := range seq {
			boxed := next
			if !yield(out, &boxed) {
				return
			}
		}
	}
}

func (b *CellBoard[T, C, S]) Advance(moves []SnakeMove) (Outcome, BestCellBoard) {
	out, next := b.Step(moves)
	return out, &next
}

func (b *CellBoard[T, C, S]) Clone() BestCellBoard {
	c := *b
	return &c
}

// ConvertForTier builds a board of the given tier.
func ConvertForTier(tier Tier, state *game.GameState, ids game.SnakeIDMap) (BestCellBoard, error) {
	var (
		board BestCellBoard
		err   error
	)
	switch tier {
	case TierTiny:
		b := new(CellBoard4Snakes7x7)
		board, err = b, b.ConvertFromGame(state, ids)
	case TierStandard:
		b := new(CellBoard4Snakes11x11)
		board, err = b, b.ConvertFromGame(state, ids)
	case TierLargestU8:
		b := new(CellBoard8Snakes15x15)
		board, err = b, b.ConvertFromGame(state, ids)
	case TierLarge:
		b := new(CellBoard8Snakes25x25)
		board, err = b, b.ConvertFromGame(state, ids)
	case TierSilly:
		b := new(CellBoard16Snakes50x50)
		board, err = b, b.ConvertFromGame(state, ids)
	default:
		return nil, fmt.Errorf("unknown tier %d", tier)
	}
	if err != nil {
		return nil, err
	}
	return board, nil
}

// ToBestCellBoard converts state into the smallest tier that holds it, with ids
// from game.BuildSnakeIDMap. It panics when no tier is large enough.
func ToBestCellBoard(state *game.GameState) (BestCellBoard, error) {
	tier, ok := SelectTier(state.Width, state.Height, len(state.Snakes))
	if !ok {
		panic(fmt.Sprintf("no board was big enough for %dx%d with %d snakes", state.Width, state.Height, len(state.Snakes)))
	}
	return ConvertForTier(tier, state, game.BuildSnakeIDMap(state))
}
