package game

import (
	"encoding/binary"
	"hash/fnv"
	"math/rand"
)

// FoodSettings matches the Battlesnake server knobs:
//   - MinimumFood: ensure at least this many food items exist after each turn
//   - FoodSpawnChance: percentage chance (0-100) to spawn one extra food
type FoodSettings struct {
	MinimumFood     int
	FoodSpawnChance int
}

// DefaultFoodSettings are the engine defaults.
var DefaultFoodSettings = FoodSettings{MinimumFood: 1, FoodSpawnChance: 15}

// ApplyFoodSettings tops food up to the minimum and rolls for one extra piece.
// A nil rng derives a deterministic stream from the state so repeated calls on the
// same snapshot place food identically.
func ApplyFoodSettings(state *GameState, rng *rand.Rand, settings FoodSettings) {
	if state == nil || state.Width <= 0 || state.Height <= 0 {
		return
	}
	settings.MinimumFood = max(settings.MinimumFood, 0)
	settings.FoodSpawnChance = min(max(settings.FoodSpawnChance, 0), 100)

	if rng == nil {
		seed := int64(stateSeed(state))
		if seed == 0 {
			seed = 1
		}
		rng = rand.New(rand.NewSource(seed))
	}

	toSpawn := max(settings.MinimumFood-len(state.Food), 0)
	if settings.FoodSpawnChance > 0 && rng.Intn(100) < settings.FoodSpawnChance {
		toSpawn++
	}
	if toSpawn == 0 {
		return
	}

	w := int(state.Width)
	occupied := make([]bool, w*int(state.Height))
	mark := func(p Point) {
		if state.InBounds(p) {
			occupied[int(p.Y)*w+int(p.X)] = true
		}
	}
	for _, s := range state.Snakes {
		if s.Health <= 0 {
			continue
		}
		for _, p := range s.Body {
			mark(p)
		}
	}
	for _, f := range state.Food {
		mark(f)
	}

	free := make([]Point, 0, len(occupied))
	for i, taken := range occupied {
		if !taken {
			free = append(free, Point{X: int32(i % w), Y: int32(i / w)})
		}
	}

	for ; toSpawn > 0 && len(free) > 0; toSpawn-- {
		i := rng.Intn(len(free))
		state.Food = append(state.Food, free[i])
		free[i] = free[len(free)-1]
		free = free[:len(free)-1]
	}
}

// stateSeed mixes turn, dimensions, food count and live heads.
func stateSeed(state *GameState) uint64 {
	h := fnv.New64a()
	var buf [8]byte
	put := func(v uint64) {
		binary.LittleEndian.PutUint64(buf[:], v)
		_, _ = h.Write(buf[:])
	}

	put(uint64(uint32(state.Width)) | uint64(uint32(state.Height))<<32)
	put(uint64(uint32(state.Turn)))
	put(uint64(len(state.Food)))
	for _, s := range state.Snakes {
		if s.Health <= 0 || len(s.Body) == 0 {
			continue
		}
		_, _ = h.Write([]byte(s.Id))
		put(uint64(uint32(s.Body[0].X))<<32 | uint64(uint32(s.Body[0].Y)))
	}
	return h.Sum64()
}
