// Package rules is the straightforward object-graph implementation of the
// Battlesnake standard ruleset. It is slow and allocates freely; it exists as the
// reference the compact simulator is checked against.
package rules

import (
	"slices"

	"github.com/brensch/snekcell/game"
)

const (
	DeathCauseSnakeCollision      = "snake-collision"
	DeathCauseSnakeSelfCollision  = "snake-self-collision"
	DeathCauseStarvation          = "starvation"
	DeathCauseHeadToHeadCollision = "head-collision"
	DeathCauseWallCollision       = "wall-collision"
	DeathCauseNoMove              = "no-move"
)

// GetLegalMoves returns moves for YouId that stay on the board and avoid every
// snake segment. Tails are treated as solid.
func GetLegalMoves(state *game.GameState) []game.Move {
	you := state.SnakeByID(state.YouId)
	if you == nil || you.Health <= 0 || len(you.Body) == 0 {
		return nil
	}

	var moves []game.Move
	for _, mv := range game.AllMoves {
		if isSafe(state, you.Body[0].Add(mv.Vector())) {
			moves = append(moves, mv)
		}
	}
	return moves
}

func isSafe(state *game.GameState, p game.Point) bool {
	if !state.InBounds(p) {
		return false
	}
	for _, s := range state.Snakes {
		if s.Health <= 0 {
			continue
		}
		if slices.Contains(s.Body, p) {
			return false
		}
	}
	return true
}

// NextStateSimultaneous advances every live snake by its move and returns the
// new state plus the elimination cause of each snake that died this turn.
// Eliminated snakes are dropped from the result. Food is not respawned.
func NextStateSimultaneous(state *game.GameState, moves map[string]game.Move) (*game.GameState, map[string]string) {
	next := state.Clone()
	next.Turn++
	causes := make(map[string]string)

	live := next.Snakes[:0]
	for _, s := range next.Snakes {
		if s.Health > 0 && len(s.Body) > 0 {
			live = append(live, s)
		}
	}
	next.Snakes = live

	// 1. Move. A snake with no move is out before anything else happens.
	for i := range next.Snakes {
		s := &next.Snakes[i]
		mv, ok := moves[s.Id]
		if !ok {
			causes[s.Id] = DeathCauseNoMove
			continue
		}
		head := s.Body[0].Add(mv.Vector())
		s.Body = append([]game.Point{head}, s.Body[:len(s.Body)-1]...)
	}

	// 2. Health and hazards.
	damage := next.HazardDamage()
	for i := range next.Snakes {
		s := &next.Snakes[i]
		if _, out := causes[s.Id]; out {
			continue
		}
		s.Health--
		head := s.Body[0]
		if slices.Contains(next.Hazards, head) && !slices.Contains(next.Food, head) {
			s.Health -= damage
		}
	}

	// 3. Feed.
	var eaten []game.Point
	for i := range next.Snakes {
		s := &next.Snakes[i]
		if _, out := causes[s.Id]; out {
			continue
		}
		head := s.Body[0]
		if slices.Contains(next.Food, head) {
			s.Health = game.MaxHealth
			s.Body = append(s.Body, s.Body[len(s.Body)-1])
			eaten = append(eaten, head)
		}
	}
	next.Food = slices.DeleteFunc(next.Food, func(p game.Point) bool {
		return slices.Contains(eaten, p)
	})

	// 4. Walls and starvation.
	for _, s := range next.Snakes {
		if _, out := causes[s.Id]; out {
			continue
		}
		switch {
		case !next.InBounds(s.Body[0]):
			causes[s.Id] = DeathCauseWallCollision
		case s.Health <= 0:
			causes[s.Id] = DeathCauseStarvation
		}
	}

	// 5. Collisions, judged against everyone still standing after step 4.
	var standing []*game.Snake
	for i := range next.Snakes {
		if _, out := causes[next.Snakes[i].Id]; !out {
			standing = append(standing, &next.Snakes[i])
		}
	}
	collided := make(map[string]string)
	for _, s := range standing {
		head := s.Body[0]
		if slices.Contains(s.Body[1:], head) {
			collided[s.Id] = DeathCauseSnakeSelfCollision
			continue
		}
		hit := false
		for _, o := range standing {
			if o.Id != s.Id && slices.Contains(o.Body[1:], head) {
				hit = true
				break
			}
		}
		if hit {
			collided[s.Id] = DeathCauseSnakeCollision
			continue
		}
		for _, o := range standing {
			if o.Id != s.Id && o.Body[0] == head && len(o.Body) >= len(s.Body) {
				collided[s.Id] = DeathCauseHeadToHeadCollision
				break
			}
		}
	}
	for id, c := range collided {
		causes[id] = c
	}

	next.Snakes = slices.DeleteFunc(next.Snakes, func(s game.Snake) bool {
		_, out := causes[s.Id]
		return out
	})
	return next, causes
}

// IsGameOver reports whether at most one snake is alive.
func IsGameOver(state *game.GameState) bool {
	living := 0
	for _, s := range state.Snakes {
		if s.Health > 0 {
			living++
		}
	}
	return living <= 1
}
