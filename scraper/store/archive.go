// Package store persists per-turn game snapshots as Parquet and tracks which
// games have already been written.
package store

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/compress/zstd"

	"github.com/brensch/snekcell/compact"
	"github.com/brensch/snekcell/game"
)

const archiveSchema = "archive_turn_v2"

// ArchiveTurnRow is a single (game, turn) snapshot: one row per turn with
// nested snake data.
type ArchiveTurnRow struct {
	GameID string `parquet:"game_id,dict"`
	Turn   int32  `parquet:"turn"`
	Width  int32  `parquet:"width"`
	Height int32  `parquet:"height"`

	HazardDamage int32 `parquet:"hazard_damage"`

	FoodX []int32 `parquet:"food_x"`
	FoodY []int32 `parquet:"food_y"`

	HazardX []int32 `parquet:"hazard_x"`
	HazardY []int32 `parquet:"hazard_y"`

	Snakes []ArchiveSnake `parquet:"snakes"`

	// Source is "scrape" or "selfplay".
	Source string `parquet:"source,dict"`
}

// ArchiveSnake is one snake within a turn. Policy is the move made from this
// turn (0=Up, 1=Down, 2=Left, 3=Right) or -1 when none was recorded. Value is
// the final result from this snake's perspective: 1 won, -1 lost, 0 draw.
type ArchiveSnake struct {
	ID     string `parquet:"id,dict"`
	Alive  bool   `parquet:"alive"`
	Health int32  `parquet:"health"`

	BodyX []int32 `parquet:"body_x"`
	BodyY []int32 `parquet:"body_y"`

	Policy int32   `parquet:"policy"`
	Value  float32 `parquet:"value"`
	// Eliminated is the cause of death when this turn's move killed the snake.
	Eliminated string `parquet:"eliminated,dict,optional"`
}

func splitPoints(ps []game.Point) (xs, ys []int32) {
	xs = make([]int32, len(ps))
	ys = make([]int32, len(ps))
	for i, p := range ps {
		xs[i], ys[i] = p.X, p.Y
	}
	return xs, ys
}

func joinPoints(xs, ys []int32) []game.Point {
	n := min(len(xs), len(ys))
	out := make([]game.Point, n)
	for i := range n {
		out[i] = game.Point{X: xs[i], Y: ys[i]}
	}
	return out
}

// RowFromBoard snapshots board. Snakes appear in dense id order; dead snakes
// are kept with Alive false and no body.
func RowFromBoard(gameID, source string, turn int32, board compact.BestCellBoard, ids game.SnakeIDMap) ArchiveTurnRow {
	row := ArchiveTurnRow{
		GameID:       gameID,
		Turn:         turn,
		Width:        int32(board.Width()),
		Height:       int32(board.Height()),
		HazardDamage: int32(board.HazardDamage()),
		Source:       source,
	}
	row.FoodX, row.FoodY = splitPoints(board.GetAllFood())
	row.HazardX, row.HazardY = splitPoints(board.GetAllHazards())

	names := ids.Reverse()
	for i := range board.MaxSnakes() {
		id := game.SnakeID(i)
		name, ok := names[id]
		if !ok {
			continue
		}
		s := ArchiveSnake{ID: name, Policy: -1}
		if board.IsAlive(id) {
			s.Alive = true
			s.Health = int32(board.GetHealth(id))
			s.BodyX, s.BodyY = splitPoints(board.GetSnakeBody(id))
		}
		row.Snakes = append(row.Snakes, s)
	}
	return row
}

// RecordOutcome copies the moves and eliminations of the tick played from row.
func RecordOutcome(row *ArchiveTurnRow, out *compact.Outcome, ids game.SnakeIDMap) {
	for i := range row.Snakes {
		id, ok := ids[row.Snakes[i].ID]
		if !ok {
			continue
		}
		if mv, moved := out.MoveFor(id); moved {
			row.Snakes[i].Policy = int32(mv)
		}
		if c := out.CauseOf(id); c != compact.CauseNone {
			row.Snakes[i].Eliminated = c.String()
		}
	}
}

// SetValues stamps the final result on every snake of every row. An empty
// winner marks a draw.
func SetValues(rows []ArchiveTurnRow, winner string) {
	for r := range rows {
		for i := range rows[r].Snakes {
			s := &rows[r].Snakes[i]
			switch {
			case winner == "":
				s.Value = 0
			case s.ID == winner:
				s.Value = 1
			default:
				s.Value = -1
			}
		}
	}
}

// ToGameState rebuilds the snapshot of the row's live snakes.
func (r *ArchiveTurnRow) ToGameState() *game.GameState {
	damage := r.HazardDamage
	state := &game.GameState{
		Width:               r.Width,
		Height:              r.Height,
		Turn:                r.Turn,
		Food:                joinPoints(r.FoodX, r.FoodY),
		Hazards:             joinPoints(r.HazardX, r.HazardY),
		Ruleset:             game.RulesetStandard,
		HazardDamagePerTurn: &damage,
	}
	for _, s := range r.Snakes {
		if !s.Alive {
			continue
		}
		state.Snakes = append(state.Snakes, game.Snake{
			Id:     s.ID,
			Health: s.Health,
			Body:   joinPoints(s.BodyX, s.BodyY),
		})
	}
	return state
}

func writeOptions() []parquet.WriterOption {
	return []parquet.WriterOption{
		parquet.Compression(&zstd.Codec{Level: zstd.SpeedBetterCompression}),
		parquet.KeyValueMetadata("schema", archiveSchema),
	}
}

// WriteArchiveBatch writes rows to outDir/tmp and renames the file into outDir
// so readers never see a partial file. It returns the final path.
func WriteArchiveBatch(outDir string, rows []ArchiveTurnRow) (string, error) {
	tmpDir := filepath.Join(outDir, "tmp")
	if err := os.MkdirAll(tmpDir, 0o755); err != nil {
		return "", fmt.Errorf("create tmp dir: %w", err)
	}

	name := fmt.Sprintf("batch_%d.parquet", time.Now().UnixNano())
	finalPath := filepath.Join(outDir, name)
	tmpPath := filepath.Join(tmpDir, name+".tmp")

	if err := parquet.WriteFile(tmpPath, rows, writeOptions()...); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("write parquet: %w", err)
	}
	if err := os.Rename(tmpPath, finalPath); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("rename parquet: %w", err)
	}
	return finalPath, nil
}

// ReadArchive streams every row of an archive file into memory.
func ReadArchive(path string) ([]ArchiveTurnRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := parquet.NewGenericReader[ArchiveTurnRow](f)
	defer reader.Close()

	rows := make([]ArchiveTurnRow, 0, reader.NumRows())
	for {
		// rows keep references into buf, so each read gets its own
		buf := make([]ArchiveTurnRow, 256)
		n, err := reader.Read(buf)
		rows = append(rows, buf[:n]...)
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read parquet %s: %w", path, err)
		}
	}
}

// GameRows returns the rows of gameID in turn order, assuming rows are grouped
// by game as the writers produce them.
func GameRows(rows []ArchiveTurnRow, gameID string) []ArchiveTurnRow {
	var out []ArchiveTurnRow
	for _, r := range rows {
		if r.GameID == gameID {
			out = append(out, r)
		}
	}
	return out
}
