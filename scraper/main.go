// Command scraper downloads recent leaderboard games, replays every turn
// through the compact simulator and archives the packed snapshots.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/brensch/snekcell/scraper/discovery"
	"github.com/brensch/snekcell/scraper/downloader"
	"github.com/brensch/snekcell/scraper/logging"
	"github.com/brensch/snekcell/scraper/replay"
	"github.com/brensch/snekcell/scraper/store"
)

func main() {
	outDir := flag.String("out-dir", getEnvOrDefault("OUT_DIR", "data"), "Directory to write batch .parquet files")
	logPath := flag.String("log-path", getEnvOrDefault("WRITTEN_LOG", "scraper-data/written_games.log"), "Append-only log of game IDs already replayed")
	flushGames := flag.Int("flush-games", getEnvIntOrDefault("FLUSH_GAMES", 200), "Flush when buffered games reaches this count")
	flushEvery := flag.Duration("flush-every", getEnvDurationOrDefault("FLUSH_EVERY", time.Hour), "Flush at this interval regardless of buffered count")
	maxPlayers := flag.Int("max-players", getEnvIntOrDefault("MAX_PLAYERS", 50), "Maximum number of players to check per leaderboard")
	requestDelay := flag.Duration("delay", getEnvDurationOrDefault("DELAY", 500*time.Millisecond), "Delay between HTTP requests")
	workers := flag.Int("workers", getEnvIntOrDefault("WORKERS", 4), "Concurrent game downloads")
	leaderboards := flag.String("leaderboards", getEnvOrDefault("LEADERBOARDS", "standard,standard-duels"), "Comma separated leaderboard arenas")
	logFormat := flag.String("log-format", getEnvOrDefault("LOG_FORMAT", "text"), "Log format: text, json or pretty")
	verbose := flag.Bool("v", getEnvBoolOrDefault("VERBOSE", false), "Log every mismatch")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger, err := logging.NewLogger(os.Stderr, *logFormat, level)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	written, err := store.OpenWrittenLog(*logPath)
	if err != nil {
		logger.Error("open written log", "err", err)
		os.Exit(1)
	}
	defer written.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	disc := discovery.DefaultConfig()
	disc.Leaderboards = strings.Split(*leaderboards, ",")
	disc.MaxPlayers = *maxPlayers
	disc.RequestDelay = *requestDelay

	dl := downloader.DefaultConfig()
	dl.NumWorkers = *workers

	logger.Info("starting scraper", "out_dir", *outDir, "already_written", written.Count(),
		"flush_games", *flushGames, "flush_every", *flushEvery, "workers", *workers)

	s := &scraper{logger: logger, written: written, outDir: *outDir, flushGames: max(*flushGames, 1)}
	s.run(ctx, disc, dl, *flushEvery)
}

type scraper struct {
	logger     *slog.Logger
	written    *store.WrittenLog
	outDir     string
	flushGames int

	rows  []store.ArchiveTurnRow
	games []string

	replayed, clean, skipped, mismatched int
}

func (s *scraper) run(ctx context.Context, disc discovery.Config, dl downloader.Config, flushEvery time.Duration) {
	ids := make(chan string, 1000)
	go func() {
		defer close(ids)
		if err := discovery.NewWorker(disc, s.logger, s.written.Known()).Discover(ctx, ids); err != nil {
			s.logger.Warn("discovery stopped", "err", err)
		}
	}()

	games := make(chan *downloader.Game, dl.NumWorkers)
	pool := downloader.NewPool(dl, s.logger)
	go pool.Run(ctx, ids, games)

	ticker := time.NewTicker(flushEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.flush("signal")
			s.logger.Info("interrupted")
			return
		case <-ticker.C:
			s.flush("ticker")
		case g, ok := <-games:
			if !ok {
				s.flush("final")
				st := pool.Stats()
				s.logger.Info("scraping complete", "downloaded", st.GamesDownloaded, "download_failed", st.GamesFailed,
					"replayed", s.replayed, "clean", s.clean, "mismatched", s.mismatched, "skipped", s.skipped)
				return
			}
			s.handle(g)
		}
	}
}

func (s *scraper) handle(g *downloader.Game) {
	rep := replay.Game(g)
	switch {
	case rep.Skipped != "":
		s.skipped++
		s.logger.Debug("game skipped", "game", g.ID, "reason", rep.Skipped)
		return
	case rep.OK():
		s.clean++
	default:
		s.mismatched++
		s.logger.Warn("replay mismatch", "game", g.ID, "tier", rep.Tier.String(), "mismatches", len(rep.Mismatches), "first", rep.Mismatches[0].String())
		for _, m := range rep.Mismatches {
			s.logger.Debug("mismatch", "game", g.ID, "detail", m.String())
		}
	}
	s.replayed++

	s.rows = append(s.rows, rep.Rows...)
	s.games = append(s.games, g.ID)
	if s.replayed%50 == 0 {
		s.logger.Info("progress", "replayed", s.replayed, "clean", s.clean, "mismatched", s.mismatched, "buffered_games", len(s.games))
	}
	if len(s.games) >= s.flushGames {
		s.flush("count")
	}
}

func (s *scraper) flush(reason string) {
	if len(s.games) == 0 {
		return
	}
	path, err := store.WriteArchiveBatch(s.outDir, s.rows)
	if err != nil {
		s.logger.Error("flush failed", "reason", reason, "err", err)
		return
	}
	// the parquet file is already published; a failed log append only means
	// these games may be replayed again
	if err := s.written.AddMany(s.games...); err != nil {
		s.logger.Warn("written log append failed", "err", err)
	}
	s.logger.Info("flushed batch", "reason", reason, "games", len(s.games), "rows", len(s.rows), "path", path)
	s.rows = s.rows[:0]
	s.games = s.games[:0]
}

// Environment variable helpers
func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvIntOrDefault(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		var i int
		if _, err := fmt.Sscanf(val, "%d", &i); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvDurationOrDefault(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}

func getEnvBoolOrDefault(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		return val == "true" || val == "1" || val == "yes"
	}
	return defaultVal
}
