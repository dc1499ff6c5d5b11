// Command executor runs self-play games on packed boards and writes every
// turn to Parquet batches.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/brensch/snekcell/executor/selfplay"
	"github.com/brensch/snekcell/scraper/logging"
	"github.com/brensch/snekcell/scraper/store"
)

var (
	totalMoves atomic.Int64
	totalGames atomic.Int64
)

type GameUpdate struct {
	WorkerID int
	Result   selfplay.GameResult
	Rows     int
}

type model struct {
	gamesPlayed int
	totalRows   int
	moves       int64
	startTime   time.Time
	recentGames []string
	updates     <-chan GameUpdate
}

func initialModel(updates <-chan GameUpdate) model {
	return model{startTime: time.Now(), updates: updates}
}

type TickMsg time.Time

func tickCmd() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func (m model) Init() tea.Cmd {
	return tea.Batch(waitForUpdate(m.updates), tickCmd())
}

func waitForUpdate(updates <-chan GameUpdate) tea.Cmd {
	return func() tea.Msg {
		u, ok := <-updates
		if !ok {
			return tea.Quit()
		}
		return u
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "q" || msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	case TickMsg:
		m.moves = totalMoves.Load()
		return m, tickCmd()
	case GameUpdate:
		m.gamesPlayed++
		m.totalRows += msg.Rows
		m.recentGames = append([]string{describe(msg)}, m.recentGames...)
		if len(m.recentGames) > 10 {
			m.recentGames = m.recentGames[:10]
		}
		return m, waitForUpdate(m.updates)
	}
	return m, nil
}

func (m model) View() string {
	duration := time.Since(m.startTime)
	var gamesPerSec, movesPerSec float64
	if duration >= time.Second {
		gamesPerSec = float64(m.gamesPlayed) / duration.Seconds()
		movesPerSec = float64(m.moves) / duration.Seconds()
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Games Played:   %d\n", m.gamesPlayed)
	fmt.Fprintf(&sb, "Rows Recorded:  %d\n", m.totalRows)
	fmt.Fprintf(&sb, "Total Ticks:    %d\n", m.moves)
	fmt.Fprintf(&sb, "Duration:       %s\n", duration.Round(time.Second))
	fmt.Fprintf(&sb, "Games/Sec:      %.2f\n", gamesPerSec)
	fmt.Fprintf(&sb, "Ticks/Sec:      %.2f\n\n", movesPerSec)
	sb.WriteString("Recent Games:\n")
	for _, g := range m.recentGames {
		sb.WriteString(g + "\n")
	}
	sb.WriteString("\nPress q to quit.\n")
	return sb.String()
}

func describe(u GameUpdate) string {
	winner := u.Result.WinnerId
	if winner == "" {
		winner = "draw"
	}
	return fmt.Sprintf("Worker %d: Winner %s, Steps %d, Rows %d", u.WorkerID, winner, u.Result.Steps, u.Rows)
}

func main() {
	defaults := selfplay.DefaultConfig()
	outDir := flag.String("out-dir", "data/generated", "Output directory for self-play parquet batches")
	workers := flag.Int("workers", 8, "Number of self-play workers")
	gamesPerFlush := flag.Int("games-per-flush", 50, "Number of games per parquet file")
	maxGames := flag.Int64("max-games", 0, "If > 0, stop after this many games across all workers")
	width := flag.Int("width", int(defaults.Width), "Board width")
	height := flag.Int("height", int(defaults.Height), "Board height")
	snakes := flag.Int("snakes", defaults.Snakes, "Snakes per game")
	maxTurns := flag.Int("max-turns", defaults.MaxTurns, "Turn limit per game (0 = none)")
	policy := flag.String("policy", defaults.Policy, "Move policy: random or search")
	depth := flag.Int("depth", defaults.Search.Depth, "Search depth when -policy=search")
	budget := flag.Duration("move-budget", defaults.MoveBudget, "Search time per snake per turn")
	tui := flag.Bool("tui", true, "Show the live stats view instead of log lines")
	logFormat := flag.String("log-format", "text", "Log format: text, json or pretty")
	flag.Parse()

	logger, err := logging.NewLogger(os.Stderr, *logFormat, slog.LevelInfo)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	cfg := defaults
	cfg.Width, cfg.Height = int32(*width), int32(*height)
	cfg.Snakes = *snakes
	cfg.MaxTurns = *maxTurns
	cfg.Policy = *policy
	cfg.Search.Depth = *depth
	cfg.MoveBudget = *budget
	if _, err := selfplay.CreateInitialState(rand.New(rand.NewSource(1)), cfg); err != nil {
		logger.Error("invalid game config", "err", err)
		os.Exit(2)
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(sigCtx)
	defer cancel()

	games := make(chan []store.ArchiveTurnRow, *workers*4)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		parquetWriterLoop(logger, *outDir, *gamesPerFlush, games)
	}()

	updates := make(chan GameUpdate, *workers)
	var workerWG sync.WaitGroup
	for i := range *workers {
		workerWG.Add(1)
		go func(workerID int) {
			defer workerWG.Done()
			rng := rand.New(rand.NewSource(time.Now().UnixNano() + int64(workerID)*1000003))
			for ctx.Err() == nil {
				rows, result, err := selfplay.PlayGame(ctx, cfg, rng, func() { totalMoves.Add(1) })
				if err != nil {
					return
				}
				if n := totalGames.Add(1); *maxGames > 0 && n >= *maxGames {
					cancel()
				}
				games <- rows
				select {
				case updates <- GameUpdate{WorkerID: workerID, Result: result, Rows: len(rows)}:
				default:
				}
			}
		}(i)
	}

	go func() {
		workerWG.Wait()
		close(games)
		close(updates)
	}()

	logger.Info("self-play started", "workers", *workers, "policy", cfg.Policy,
		"board", fmt.Sprintf("%dx%d", cfg.Width, cfg.Height), "snakes", cfg.Snakes)

	if *tui {
		if _, err := tea.NewProgram(initialModel(updates)).Run(); err != nil {
			logger.Error("tui", "err", err)
		}
		cancel()
	} else {
		logUpdates(ctx, logger, updates)
	}

	<-writerDone
	logger.Info("shutdown complete", "games", totalGames.Load(), "ticks", totalMoves.Load())
}

func logUpdates(ctx context.Context, logger *slog.Logger, updates <-chan GameUpdate) {
	start := time.Now()
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()
	done := ctx.Done()
	for {
		select {
		case u, ok := <-updates:
			if !ok {
				return
			}
			logger.Debug("game finished", "detail", describe(u))
		case <-ticker.C:
			secs := time.Since(start).Seconds()
			logger.Info("stats", "games", totalGames.Load(), "ticks", totalMoves.Load(),
				"ticks_per_sec", fmt.Sprintf("%.0f", float64(totalMoves.Load())/secs))
		case <-done:
			// keep draining until the workers close the channel
			done = nil
		}
	}
}

func parquetWriterLoop(logger *slog.Logger, outDir string, gamesPerFlush int, in <-chan []store.ArchiveTurnRow) {
	if gamesPerFlush <= 0 {
		gamesPerFlush = 50
	}

	var bw *store.BatchWriter
	finalize := func() {
		if bw == nil {
			return
		}
		path, err := bw.Finalize()
		if err != nil {
			logger.Error("parquet flush failed", "games", bw.Games(), "rows", bw.Rows(), "err", err)
		} else if path != "" {
			logger.Info("parquet flush ok", "path", path, "games", bw.Games(), "rows", bw.Rows())
		}
		bw = nil
	}

	for rows := range in {
		if bw == nil {
			var err error
			if bw, err = store.NewBatchWriter(outDir); err != nil {
				logger.Error("open batch writer", "err", err)
				continue
			}
		}
		if err := bw.WriteGame(rows); err != nil {
			logger.Error("write game", "err", err)
		}
		if bw.Games() >= gamesPerFlush {
			finalize()
		}
	}
	finalize()
}
