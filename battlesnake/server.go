package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/brensch/snekcell/compact"
	"github.com/brensch/snekcell/game"
	"github.com/brensch/snekcell/rules"
	"github.com/brensch/snekcell/search"
)

// latencyBuffer is reserved out of the engine timeout for network and encoding.
const (
	latencyBuffer  = 200 * time.Millisecond
	minComputeTime = 50 * time.Millisecond
)

// Server answers the Battlesnake API with a shallow search over packed boards.
type Server struct {
	logger      *slog.Logger
	search      search.Config
	moveTimeout time.Duration

	mu    sync.Mutex
	games map[string]time.Time
}

func NewServer(logger *slog.Logger, cfg search.Config, moveTimeout time.Duration) *Server {
	return &Server{
		logger:      logger,
		search:      cfg,
		moveTimeout: moveTimeout,
		games:       make(map[string]time.Time),
	}
}

func newRouter(s *Server) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.GET("/", s.handleIndex)
	r.POST("/start", s.handleStart)
	r.POST("/move", s.handleMove)
	r.POST("/end", s.handleEnd)
	return r
}

func (s *Server) handleIndex(c *gin.Context) {
	c.JSON(http.StatusOK, BattlesnakeInfoResponse{
		APIVersion: "1",
		Author:     "snekcell",
		Color:      "#00ff00",
		Head:       "default",
		Tail:       "default",
		Version:    "1.0.0",
	})
}

func (s *Server) handleStart(c *gin.Context) {
	var req GameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s.mu.Lock()
	s.games[req.Game.ID] = time.Now()
	active := len(s.games)
	s.mu.Unlock()

	s.logger.Info("game started", "game", req.Game.ID, "ruleset", req.Game.Ruleset.Name,
		"width", req.Board.Width, "height", req.Board.Height, "snakes", len(req.Board.Snakes), "active", active)
	c.Status(http.StatusOK)
}

func (s *Server) handleMove(c *gin.Context) {
	start := time.Now()

	var req GameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	state := convertToGameState(&req)

	ctx, cancel := context.WithTimeout(c.Request.Context(), computeTime(req.Game.Timeout, s.moveTimeout))
	defer cancel()

	move, shout := s.chooseMove(ctx, state)

	s.logger.Debug("move", "game", req.Game.ID, "turn", req.Turn, "move", move.String(),
		"shout", shout, "took", time.Since(start))
	c.JSON(http.StatusOK, MoveResponse{Move: move.String(), Shout: shout})
}

func (s *Server) handleEnd(c *gin.Context) {
	var req GameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result := "lost"
	for _, snake := range req.Board.Snakes {
		if snake.ID == req.You.ID {
			result = "won"
			break
		}
	}
	if len(req.Board.Snakes) == 0 {
		result = "draw"
	}

	s.mu.Lock()
	started, ok := s.games[req.Game.ID]
	delete(s.games, req.Game.ID)
	s.mu.Unlock()

	attrs := []any{"game", req.Game.ID, "turn", req.Turn, "result", result}
	if ok {
		attrs = append(attrs, "duration", time.Since(started))
	}
	s.logger.Info("game ended", attrs...)
	c.Status(http.StatusOK)
}

// chooseMove searches when the board fits a compact tier and otherwise falls
// back to the first legal move. It never fails.
func (s *Server) chooseMove(ctx context.Context, state *game.GameState) (game.Move, string) {
	if state.SnakeByID(state.YouId) == nil {
		return game.MoveUp, "not on board"
	}
	if _, ok := compact.SelectTier(state.Width, state.Height, len(state.Snakes)); !ok {
		return fallbackMove(state), "board too large"
	}

	board, err := compact.ToBestCellBoard(state)
	if err != nil {
		s.logger.Warn("board conversion failed", "turn", state.Turn, "err", err)
		return fallbackMove(state), "fallback"
	}

	res, err := search.BestMove(ctx, board, 0, s.search)
	if err != nil {
		s.logger.Warn("search cut short", "turn", state.Turn, "nodes", res.Nodes, "err", err)
		return fallbackMove(state), "timeout"
	}
	return res.Move, fmt.Sprintf("searched %d nodes", res.Nodes)
}

func fallbackMove(state *game.GameState) game.Move {
	legal := rules.GetLegalMoves(state)
	if len(legal) == 0 {
		return game.MoveUp
	}
	return legal[0]
}

// computeTime is the engine timeout (or def when unset) minus latencyBuffer,
// floored at minComputeTime.
func computeTime(timeoutMs int, def time.Duration) time.Duration {
	timeout := def
	if timeoutMs > 0 {
		timeout = time.Duration(timeoutMs) * time.Millisecond
	}
	return max(timeout-latencyBuffer, minComputeTime)
}
