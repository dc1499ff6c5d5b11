// Package main implements a Battlesnake API server.
//
// Each /move request is converted into the smallest compact board tier that
// fits and searched with a depth-limited paranoid minimax inside the engine's
// time budget.
package main

import (
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/brensch/snekcell/scraper/logging"
	"github.com/brensch/snekcell/search"
)

func main() {
	fs := flag.NewFlagSet(os.Args[0], flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	defaults := search.DefaultConfig()
	listen := fs.String("listen", ":8080", "HTTP listen address")
	moveTimeout := fs.Duration("move-timeout", 500*time.Millisecond, "Default move timeout when the engine sends none")
	depth := fs.Int("depth", defaults.Depth, "Search depth in ticks below the root")
	maxOpponents := fs.Int("max-opponents", defaults.MaxOpponents, "Opponents (nearest first) given full move sets")
	logFormat := fs.String("log-format", "text", "Log format: text, json or pretty")
	verbose := fs.Bool("v", false, "Log every move")

	if err := fs.Parse(os.Args[1:]); err != nil {
		os.Exit(2)
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger, err := logging.NewLogger(os.Stderr, *logFormat, level)
	if err != nil {
		slog.Error("logger", "err", err)
		os.Exit(2)
	}

	gin.SetMode(gin.ReleaseMode)
	server := NewServer(logger, search.Config{Depth: *depth, MaxOpponents: *maxOpponents}, *moveTimeout)

	srv := &http.Server{
		Addr:              *listen,
		Handler:           newRouter(server),
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("battlesnake server listening", "addr", *listen, "depth", *depth, "max_opponents", *maxOpponents)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server stopped", "err", err)
		os.Exit(1)
	}
}
