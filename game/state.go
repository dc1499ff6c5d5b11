// Package game defines the external game snapshot consumed by the compact board.
//
// These types mirror the Battlesnake wire representation closely enough that the
// HTTP server, the engine scraper and self-play can all produce them. They are the
// slow, pointer-rich form of a board; package compact converts them into the packed
// representation used for simulation.
package game

import "strings"

// Point is a board coordinate.
// Coordinates follow Battlesnake conventions: (0,0) is bottom-left.
type Point struct {
	X int32
	Y int32
}

// Add returns p translated by v.
func (p Point) Add(v Point) Point {
	return Point{X: p.X + v.X, Y: p.Y + v.Y}
}

// Snake is one agent. Body is ordered head to tail and may repeat a square when
// segments are stacked (spawn, or the turn after eating).
type Snake struct {
	Id     string
	Health int32
	Body   []Point
}

// Head returns the first body segment.
func (s *Snake) Head() (Point, bool) {
	if len(s.Body) == 0 {
		return Point{}, false
	}
	return s.Body[0], true
}

const (
	// MaxHealth is the health a snake is reset to when it eats.
	MaxHealth = 100
	// DefaultHazardDamagePerTurn applies when the ruleset does not say otherwise.
	DefaultHazardDamagePerTurn = 15

	RulesetStandard = "standard"
	RulesetWrapped  = "wrapped"
)

// GameState is the complete snapshot needed for rules, conversion and archival.
// YouId selects the ego snake perspective.
type GameState struct {
	Width   int32
	Height  int32
	Snakes  []Snake
	Food    []Point
	Hazards []Point
	YouId   string
	Turn    int32

	// Ruleset is the engine ruleset name ("standard", "royale", "wrapped", ...).
	Ruleset string
	// HazardDamagePerTurn is nil when the ruleset settings omitted it.
	HazardDamagePerTurn *int32
}

// HazardDamage returns the configured hazard damage or the engine default.
func (s *GameState) HazardDamage() int32 {
	if s.HazardDamagePerTurn == nil {
		return DefaultHazardDamagePerTurn
	}
	return *s.HazardDamagePerTurn
}

// IsWrapped reports whether the ruleset uses a toroidal board.
func (s *GameState) IsWrapped() bool {
	return strings.HasPrefix(s.Ruleset, RulesetWrapped)
}

// SnakeByID returns the snake with the given id.
func (s *GameState) SnakeByID(id string) *Snake {
	for i := range s.Snakes {
		if s.Snakes[i].Id == id {
			return &s.Snakes[i]
		}
	}
	return nil
}

// InBounds reports whether p lies on the board.
func (s *GameState) InBounds(p Point) bool {
	return p.X >= 0 && p.X < s.Width && p.Y >= 0 && p.Y < s.Height
}

// Clone performs a deep copy of the game state.
func (s *GameState) Clone() *GameState {
	if s == nil {
		return nil
	}

	out := &GameState{
		Width:   s.Width,
		Height:  s.Height,
		YouId:   s.YouId,
		Turn:    s.Turn,
		Ruleset: s.Ruleset,
	}
	if s.HazardDamagePerTurn != nil {
		d := *s.HazardDamagePerTurn
		out.HazardDamagePerTurn = &d
	}

	if len(s.Food) > 0 {
		out.Food = make([]Point, len(s.Food))
		copy(out.Food, s.Food)
	}
	if len(s.Hazards) > 0 {
		out.Hazards = make([]Point, len(s.Hazards))
		copy(out.Hazards, s.Hazards)
	}

	if len(s.Snakes) > 0 {
		out.Snakes = make([]Snake, len(s.Snakes))
		for i := range s.Snakes {
			out.Snakes[i] = Snake{Id: s.Snakes[i].Id, Health: s.Snakes[i].Health}
			if len(s.Snakes[i].Body) > 0 {
				out.Snakes[i].Body = make([]Point, len(s.Snakes[i].Body))
				copy(out.Snakes[i].Body, s.Snakes[i].Body)
			}
		}
	}

	return out
}
