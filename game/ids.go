package game

// SnakeID is a dense, stable index assigned to a snake for array addressing.
type SnakeID uint8

// SnakeIDMap is the bijection from engine snake ids to dense SnakeIDs. It is built
// once per game and passed explicitly to every conversion.
type SnakeIDMap map[string]SnakeID

// BuildSnakeIDMap assigns dense ids in snapshot order, with the ego snake (YouId)
// always receiving id 0 so search code can treat index 0 as "us".
func BuildSnakeIDMap(state *GameState) SnakeIDMap {
	ids := make(SnakeIDMap, len(state.Snakes))
	next := SnakeID(0)
	if state.YouId != "" && state.SnakeByID(state.YouId) != nil {
		ids[state.YouId] = 0
		next = 1
	}
	for _, s := range state.Snakes {
		if _, ok := ids[s.Id]; ok {
			continue
		}
		ids[s.Id] = next
		next++
	}
	return ids
}

// Reverse returns the engine id for each dense id.
func (m SnakeIDMap) Reverse() map[SnakeID]string {
	out := make(map[SnakeID]string, len(m))
	for name, id := range m {
		out[id] = name
	}
	return out
}
