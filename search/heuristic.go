package search

import (
	"github.com/brensch/snekcell/compact"
	"github.com/brensch/snekcell/game"
)

// Evaluate scores a board for you: reachable space dominates, then length
// relative to the longest opponent, then health.
func Evaluate(board compact.BestCellBoard, you game.SnakeID) float64 {
	if !board.IsAlive(you) {
		return lossScore
	}
	space := FloodFill(board, board.GetHeadAsPosition(you))
	if space < board.GetLength(you) {
		// Not enough room to fit our own body.
		return float64(space) - 1000
	}

	longest := 0
	for _, id := range board.LivingSnakes() {
		if id != you {
			longest = max(longest, board.GetLength(id))
		}
	}
	return float64(space) + 2*float64(board.GetLength(you)-longest) + 0.1*float64(board.GetHealth(you))
}

// FloodFill counts empty squares reachable from start without passing through
// any snake.
func FloodFill(board compact.BestCellBoard, start game.Point) int {
	w := board.Width()
	seen := make([]bool, w*board.Height())
	queue := []game.Point{start}
	seen[int(start.Y)*w+int(start.X)] = true
	count := 0
	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]
		for _, mv := range board.PossibleMovesFrom(p) {
			n := p.Add(mv.Vector())
			i := int(n.Y)*w + int(n.X)
			if seen[i] || board.IsOccupied(n) {
				continue
			}
			seen[i] = true
			count++
			queue = append(queue, n)
		}
	}
	return count
}
