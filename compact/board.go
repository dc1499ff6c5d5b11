package compact

import (
	"math/rand"

	"github.com/brensch/snekcell/game"
)

// MaxSnakeCapacity is the largest snake count of any board tier. Outcome arrays
// are sized by it so they do not depend on the tier.
const MaxSnakeCapacity = 16

type snakeState[T CellNum] struct {
	health uint8
	length uint16
	head   CellIndex[T]
}

type cellArray[T CellNum] interface {
	~[7 * 7]Cell[T] | ~[11 * 11]Cell[T] | ~[15 * 15]Cell[T] | ~[25 * 25]Cell[T] | ~[50 * 50]Cell[T]
}

type snakeArray[T CellNum] interface {
	~[4]snakeState[T] | ~[8]snakeState[T] | ~[16]snakeState[T]
}

// CellBoard is a fixed-capacity board. C fixes the number of cells and S the
// number of snake slots; use one of the tier aliases below.
type CellBoard[T CellNum, C cellArray[T], S snakeArray[T]] struct {
	cells        C
	snakes       S
	width        uint8
	height       uint8
	hazardDamage uint8
}

// CellBoard4Snakes7x7 is a 7x7 board with 4 snakes.
type CellBoard4Snakes7x7 = CellBoard[uint8, [7 * 7]Cell[uint8], [4]snakeState[uint8]]

// CellBoard4Snakes11x11 is the standard 11x11 game with up to 4 snakes.
type CellBoard4Snakes11x11 = CellBoard[uint8, [11 * 11]Cell[uint8], [4]snakeState[uint8]]

// CellBoard8Snakes15x15 is the largest board that still indexes with uint8.
type CellBoard8Snakes15x15 = CellBoard[uint8, [15 * 15]Cell[uint8], [8]snakeState[uint8]]

// CellBoard8Snakes25x25 is the largest board selectable in the UI.
type CellBoard8Snakes25x25 = CellBoard[uint16, [25 * 25]Cell[uint16], [8]snakeState[uint16]]

// CellBoard16Snakes50x50 is an absolutely silly board.
type CellBoard16Snakes50x50 = CellBoard[uint16, [50 * 50]Cell[uint16], [16]snakeState[uint16]]

func (b *CellBoard[T, C, S]) Width() int        { return int(b.width) }
func (b *CellBoard[T, C, S]) Height() int       { return int(b.height) }
func (b *CellBoard[T, C, S]) HazardDamage() int { return int(b.hazardDamage) }

// MaxSnakes is the number of snake slots of this tier.
func (b *CellBoard[T, C, S]) MaxSnakes() int { return len(b.snakes) }

// BoardSize is the number of cells of this tier.
func (b *CellBoard[T, C, S]) BoardSize() int { return len(b.cells) }

func (b *CellBoard[T, C, S]) validID(id game.SnakeID) bool {
	return int(id) < len(b.snakes)
}

func (b *CellBoard[T, C, S]) GetHealth(id game.SnakeID) int {
	if !b.validID(id) {
		return 0
	}
	return int(b.snakes[id].health)
}

func (b *CellBoard[T, C, S]) IsAlive(id game.SnakeID) bool {
	return b.validID(id) && b.snakes[id].health > 0
}

// GetLength is the body length including stacked segments, 0 for a dead snake.
func (b *CellBoard[T, C, S]) GetLength(id game.SnakeID) int {
	if !b.IsAlive(id) {
		return 0
	}
	return int(b.snakes[id].length)
}

// GetHeadAsNativePosition returns the head index. Meaningless for dead snakes;
// index 0 for ids beyond the tier's capacity.
func (b *CellBoard[T, C, S]) GetHeadAsNativePosition(id game.SnakeID) CellIndex[T] {
	if !b.validID(id) {
		return CellIndex[T]{}
	}
	return b.snakes[id].head
}

func (b *CellBoard[T, C, S]) GetHeadAsPosition(id game.SnakeID) game.Point {
	return b.GetHeadAsNativePosition(id).IntoPosition(b.width)
}

// GetHeadIndex is the head index as an int, for tier-agnostic callers.
func (b *CellBoard[T, C, S]) GetHeadIndex(id game.SnakeID) int {
	return b.GetHeadAsNativePosition(id).Int()
}

// GetTail reads the tail index stored in the head cell.
func (b *CellBoard[T, C, S]) GetTail(id game.SnakeID) CellIndex[T] {
	if !b.validID(id) {
		return CellIndex[T]{}
	}
	return b.cells[b.snakes[id].head.Int()].idx
}

// GetSnakeBody returns positions head to tail, repeating stacked squares.
func (b *CellBoard[T, C, S]) GetSnakeBody(id game.SnakeID) []game.Point {
	if !b.IsAlive(id) {
		return nil
	}
	head := b.snakes[id].head
	body := make([]game.Point, 0, b.snakes[id].length)

	// Chains point toward the head, so walk tail first and reverse.
	cur := b.cells[head.Int()].idx
	for range len(b.cells) {
		c := b.cells[cur.Int()]
		p := cur.IntoPosition(b.width)
		for range c.stack {
			body = append(body, p)
		}
		if cur == head {
			break
		}
		cur = c.idx
	}
	for i, j := 0, len(body)-1; i < j; i, j = i+1, j-1 {
		body[i], body[j] = body[j], body[i]
	}
	return body
}

// OffBoard reports whether p lies outside the playable grid.
func (b *CellBoard[T, C, S]) OffBoard(p game.Point) bool {
	return p.X < 0 || p.X >= int32(b.width) || p.Y < 0 || p.Y >= int32(b.height)
}

// CellAt returns the cell at a position. Off-board positions read as empty.
func (b *CellBoard[T, C, S]) CellAt(p game.Point) Cell[T] {
	if b.OffBoard(p) {
		return Cell[T]{}
	}
	return b.cells[NewCellIndex[T](p, b.width).Int()]
}

func (b *CellBoard[T, C, S]) IsFood(p game.Point) bool   { return b.CellAt(p).IsFood() }
func (b *CellBoard[T, C, S]) IsHazard(p game.Point) bool { return b.CellAt(p).IsHazard() }

// IsOccupied reports a head or body segment on p.
func (b *CellBoard[T, C, S]) IsOccupied(p game.Point) bool {
	return !b.CellAt(p).IsEmpty()
}

func (b *CellBoard[T, C, S]) mutateAt(p game.Point, f func(*Cell[T])) {
	if b.OffBoard(p) {
		return
	}
	f(&b.cells[NewCellIndex[T](p, b.width).Int()])
}

// AddFood places food on p. Used by drivers spawning food between ticks.
func (b *CellBoard[T, C, S]) AddFood(p game.Point) {
	b.mutateAt(p, (*Cell[T]).SetFood)
}

func (b *CellBoard[T, C, S]) SetHazard(p game.Point) {
	b.mutateAt(p, (*Cell[T]).SetHazard)
}

func (b *CellBoard[T, C, S]) ClearHazard(p game.Point) {
	b.mutateAt(p, (*Cell[T]).ClearHazard)
}

func (b *CellBoard[T, C, S]) collect(match func(Cell[T]) bool) []game.Point {
	var out []game.Point
	n := int(b.width) * int(b.height)
	for i := 0; i < n; i++ {
		if match(b.cells[i]) {
			out = append(out, CellIndexFromInt[T](i).IntoPosition(b.width))
		}
	}
	return out
}

// GetAllFood lists food squares in index order.
func (b *CellBoard[T, C, S]) GetAllFood() []game.Point {
	return b.collect(Cell[T].IsFood)
}

// GetAllHazards lists hazard squares in index order.
func (b *CellBoard[T, C, S]) GetAllHazards() []game.Point {
	return b.collect(Cell[T].IsHazard)
}

// LivingSnakes lists live snake ids in ascending order.
func (b *CellBoard[T, C, S]) LivingSnakes() []game.SnakeID {
	var out []game.SnakeID
	for i := 0; i < len(b.snakes); i++ {
		if b.snakes[i].health > 0 {
			out = append(out, game.SnakeID(i))
		}
	}
	return out
}

// LiveCount is the number of snakes with positive health.
func (b *CellBoard[T, C, S]) LiveCount() int {
	n := 0
	for i := 0; i < len(b.snakes); i++ {
		if b.snakes[i].health > 0 {
			n++
		}
	}
	return n
}

// IsOver reports whether at most one snake remains.
func (b *CellBoard[T, C, S]) IsOver() bool {
	return b.LiveCount() <= 1
}

// Winner returns the sole survivor of a finished game.
func (b *CellBoard[T, C, S]) Winner() (game.SnakeID, bool) {
	alive := b.LivingSnakes()
	if len(alive) != 1 {
		return 0, false
	}
	return alive[0], true
}

// PossibleMove pairs a move with the index it leads to.
type PossibleMove[T CellNum] struct {
	Move game.Move
	To   CellIndex[T]
}

// PossibleMoves lists on-board moves from any index, occupied or not.
func (b *CellBoard[T, C, S]) PossibleMoves(from CellIndex[T]) []PossibleMove[T] {
	p := from.IntoPosition(b.width)
	out := make([]PossibleMove[T], 0, 4)
	for _, mv := range game.AllMoves {
		n := p.Add(mv.Vector())
		if b.OffBoard(n) {
			continue
		}
		out = append(out, PossibleMove[T]{Move: mv, To: NewCellIndex[T](n, b.width)})
	}
	return out
}

// Neighbors lists on-board indexes adjacent to from.
func (b *CellBoard[T, C, S]) Neighbors(from CellIndex[T]) []CellIndex[T] {
	moves := b.PossibleMoves(from)
	out := make([]CellIndex[T], len(moves))
	for i, m := range moves {
		out[i] = m.To
	}
	return out
}

// PossibleMovesFrom is PossibleMoves addressed by coordinate.
func (b *CellBoard[T, C, S]) PossibleMovesFrom(p game.Point) []game.Move {
	if b.OffBoard(p) {
		return nil
	}
	moves := b.PossibleMoves(NewCellIndex[T](p, b.width))
	out := make([]game.Move, len(moves))
	for i, m := range moves {
		out[i] = m.Move
	}
	return out
}

// SnakeMove is a single chosen move.
type SnakeMove struct {
	ID   game.SnakeID
	Move game.Move
}

// RandomReasonableMoves picks, for each live snake, a random move that stays on
// the board and avoids every head and body square. A snake with no such move gets
// MoveUp.
func (b *CellBoard[T, C, S]) RandomReasonableMoves(rng *rand.Rand) []SnakeMove {
	var out []SnakeMove
	for i := 0; i < len(b.snakes); i++ {
		if b.snakes[i].health == 0 {
			continue
		}
		var options [4]game.Move
		n := 0
		for _, pm := range b.PossibleMoves(b.snakes[i].head) {
			if b.cells[pm.To.Int()].IsEmpty() {
				options[n] = pm.Move
				n++
			}
		}
		mv := game.MoveUp
		if n > 0 {
			mv = options[rng.Intn(n)]
		}
		out = append(out, SnakeMove{ID: game.SnakeID(i), Move: mv})
	}
	return out
}
