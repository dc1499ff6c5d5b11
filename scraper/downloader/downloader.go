// Package downloader streams finished games from the engine's websocket event
// feed and turns their frames into game snapshots.
package downloader

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

type Config struct {
	NumWorkers     int
	EngineURL      string // websocket URL template with one %s for the game id
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
}

func DefaultConfig() Config {
	return Config{
		NumWorkers:     4,
		EngineURL:      "wss://engine.battlesnake.com/games/%s/events",
		ConnectTimeout: 10 * time.Second,
		ReadTimeout:    30 * time.Second,
	}
}

// ErrNoFrames is returned when the stream closed before any frame arrived.
var ErrNoFrames = errors.New("no frames received")

// GameEvent is one message from the event stream.
type GameEvent struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// GameInfo is the payload of the "game_info" event.
type GameInfo struct {
	Game GameDetails `json:"game"`
}

type GameDetails struct {
	ID      string      `json:"id"`
	Width   int         `json:"width"`
	Height  int         `json:"height"`
	Timeout int         `json:"timeout"`
	Ruleset RulesetInfo `json:"ruleset"`
}

type RulesetInfo struct {
	Name     string          `json:"name"`
	Version  string          `json:"version"`
	Settings json.RawMessage `json:"settings"`
}

// HazardDamage returns settings.hazardDamagePerTurn when present.
func (r RulesetInfo) HazardDamage() (int32, bool) {
	if len(r.Settings) == 0 {
		return 0, false
	}
	var s struct {
		HazardDamagePerTurn *int32 `json:"hazardDamagePerTurn"`
	}
	if err := json.Unmarshal(r.Settings, &s); err != nil || s.HazardDamagePerTurn == nil {
		return 0, false
	}
	return *s.HazardDamagePerTurn, true
}

// FrameData is the payload of a "frame" event. Eliminated snakes stay in the
// frame with Death set and the body they died with.
type FrameData struct {
	Turn    int         `json:"turn"`
	Snakes  []SnakeData `json:"snakes"`
	Food    []Coord     `json:"food"`
	Hazards []Coord     `json:"hazards"`
}

type SnakeData struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Health int     `json:"health"`
	Body   []Coord `json:"body"`
	Author string  `json:"author,omitempty"`
	Death  *Death  `json:"death,omitempty"`
}

type Coord struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type Death struct {
	Cause string `json:"cause"`
	Turn  int    `json:"turn"`
}

// Game is a downloaded game: its info event and every frame in turn order.
type Game struct {
	ID     string
	Info   GameInfo
	Frames []FrameData
}

// DownloadGame reads the whole event stream for gameID. A stream that breaks
// after some frames arrived is returned as is; callers check the frame count.
func DownloadGame(ctx context.Context, gameID string, config Config) (*Game, error) {
	dialer := websocket.Dialer{HandshakeTimeout: config.ConnectTimeout}
	conn, _, err := dialer.DialContext(ctx, fmt.Sprintf(config.EngineURL, gameID), nil)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	g := &Game{ID: gameID}
	for {
		if config.ReadTimeout > 0 {
			conn.SetReadDeadline(time.Now().Add(config.ReadTimeout))
		}
		_, message, err := conn.ReadMessage()
		if err != nil {
			if len(g.Frames) > 0 || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				break
			}
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, fmt.Errorf("read: %w", err)
		}

		var event GameEvent
		if err := json.Unmarshal(message, &event); err != nil {
			continue
		}
		done := false
		switch event.Type {
		case "game_info":
			if err := json.Unmarshal(event.Data, &g.Info); err != nil {
				return nil, fmt.Errorf("decode game_info: %w", err)
			}
		case "frame":
			var frame FrameData
			if err := json.Unmarshal(event.Data, &frame); err != nil {
				return nil, fmt.Errorf("decode frame: %w", err)
			}
			g.Frames = append(g.Frames, frame)
		case "game_end":
			done = true
		}
		if done {
			break
		}
	}

	if len(g.Frames) == 0 {
		return nil, ErrNoFrames
	}
	return g, nil
}

// Stats counts pool outcomes.
type Stats struct {
	GamesDownloaded int64
	GamesFailed     int64
	FramesTotal     int64
}

// Pool downloads games from an id channel with NumWorkers connections.
type Pool struct {
	config Config
	logger *slog.Logger

	downloaded atomic.Int64
	failed     atomic.Int64
	frames     atomic.Int64
}

func NewPool(config Config, logger *slog.Logger) *Pool {
	if config.NumWorkers <= 0 {
		config.NumWorkers = 1
	}
	return &Pool{config: config, logger: logger.With("component", "downloader")}
}

// Run downloads every id from ids and sends the games to out. It returns once
// ids is drained or ctx is done, and closes out.
func (p *Pool) Run(ctx context.Context, ids <-chan string, out chan<- *Game) {
	var wg sync.WaitGroup
	for range p.config.NumWorkers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for id := range ids {
				g, err := DownloadGame(ctx, id, p.config)
				if err != nil {
					if ctx.Err() != nil {
						return
					}
					p.failed.Add(1)
					p.logger.Debug("download failed", "game", id, "err", err)
					continue
				}
				p.downloaded.Add(1)
				p.frames.Add(int64(len(g.Frames)))
				select {
				case out <- g:
				case <-ctx.Done():
					return
				}
			}
		}()
	}
	wg.Wait()
	close(out)
}

func (p *Pool) Stats() Stats {
	return Stats{
		GamesDownloaded: p.downloaded.Load(),
		GamesFailed:     p.failed.Load(),
		FramesTotal:     p.frames.Load(),
	}
}
