package main

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/brensch/snekcell/scraper/downloader"
	"github.com/brensch/snekcell/scraper/store"
)

func TestEnvHelpers(t *testing.T) {
	t.Setenv("SCRAPER_TEST_INT", "12")
	t.Setenv("SCRAPER_TEST_DUR", "3s")
	t.Setenv("SCRAPER_TEST_BOOL", "yes")
	t.Setenv("SCRAPER_TEST_BAD", "twelve")

	if got := getEnvIntOrDefault("SCRAPER_TEST_INT", 1); got != 12 {
		t.Fatalf("int=%d want=12", got)
	}
	if got := getEnvIntOrDefault("SCRAPER_TEST_BAD", 1); got != 1 {
		t.Fatalf("bad int=%d want=1", got)
	}
	if got := getEnvDurationOrDefault("SCRAPER_TEST_DUR", time.Second); got != 3*time.Second {
		t.Fatalf("dur=%v want=3s", got)
	}
	if !getEnvBoolOrDefault("SCRAPER_TEST_BOOL", false) {
		t.Fatalf("bool=false want=true")
	}
	if got := getEnvOrDefault("SCRAPER_TEST_UNSET", "x"); got != "x" {
		t.Fatalf("string=%q want=x", got)
	}
}

func c(x, y int) downloader.Coord { return downloader.Coord{X: x, Y: y} }

func TestHandleFlushesAtCount(t *testing.T) {
	dir := t.TempDir()
	written, err := store.OpenWrittenLog(filepath.Join(dir, "written.log"))
	if err != nil {
		t.Fatal(err)
	}
	defer written.Close()

	s := &scraper{
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		written:    written,
		outDir:     filepath.Join(dir, "out"),
		flushGames: 1,
	}
	g := &downloader.Game{
		ID:   "g1",
		Info: downloader.GameInfo{Game: downloader.GameDetails{Width: 7, Height: 7, Ruleset: downloader.RulesetInfo{Name: "standard"}}},
		Frames: []downloader.FrameData{
			{Turn: 0, Snakes: []downloader.SnakeData{{ID: "a", Health: 100, Body: []downloader.Coord{c(3, 3), c(3, 3), c(3, 3)}}}},
			{Turn: 1, Snakes: []downloader.SnakeData{{ID: "a", Health: 99, Body: []downloader.Coord{c(3, 4), c(3, 3), c(3, 3)}}}},
		},
	}
	s.handle(g)

	if s.clean != 1 || s.replayed != 1 {
		t.Fatalf("clean=%d replayed=%d", s.clean, s.replayed)
	}
	if !written.Has("g1") {
		t.Fatalf("g1 not in written log")
	}
	entries, err := os.ReadDir(s.outDir)
	if err != nil {
		t.Fatal(err)
	}
	files := 0
	for _, e := range entries {
		if !e.IsDir() {
			files++
		}
	}
	if files != 1 {
		t.Fatalf("parquet files=%d want=1", files)
	}
	if len(s.games) != 0 || len(s.rows) != 0 {
		t.Fatalf("buffers not reset: games=%d rows=%d", len(s.games), len(s.rows))
	}
}
