// Package discovery crawls the public leaderboards for recent game ids whose
// replays can be checked against the compact simulator.
package discovery

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const userAgent = "snekcell-replay/1.0"

type Config struct {
	// BaseURL prefixes relative player links found on leaderboard pages.
	BaseURL      string
	Leaderboards []string // arena names, e.g. "standard"
	RequestDelay time.Duration
	MaxPlayers   int // per leaderboard, 0 = unlimited
}

func DefaultConfig() Config {
	return Config{
		BaseURL:      "https://play.battlesnake.com",
		Leaderboards: []string{"standard", "standard-duels"},
		RequestDelay: 500 * time.Millisecond,
		MaxPlayers:   100,
	}
}

var (
	gameIDRe = regexp.MustCompile(`/game/([a-f0-9-]+)`)
	playerRe = regexp.MustCompile(`/leaderboard/[^/]+/([^/]+)/stats`)
)

// Worker discovers game ids not already in its known set.
type Worker struct {
	config Config
	client *http.Client
	logger *slog.Logger

	mu    sync.Mutex
	known map[string]bool
}

func NewWorker(config Config, logger *slog.Logger, known map[string]bool) *Worker {
	if known == nil {
		known = make(map[string]bool)
	}
	return &Worker{
		config: config,
		client: &http.Client{Timeout: 30 * time.Second},
		logger: logger.With("component", "discovery"),
		known:  known,
	}
}

// Discover sends every new game id to out and returns when all leaderboards
// are crawled or ctx is done. It does not close out.
func (w *Worker) Discover(ctx context.Context, out chan<- string) error {
	total := 0
	for _, arena := range w.config.Leaderboards {
		url := w.config.BaseURL + "/leaderboard/" + arena
		players, err := w.fetchPlayers(ctx, url)
		if err != nil {
			w.logger.Warn("leaderboard fetch failed", "arena", arena, "err", err)
			continue
		}
		if w.config.MaxPlayers > 0 && len(players) > w.config.MaxPlayers {
			players = players[:w.config.MaxPlayers]
		}
		w.logger.Info("leaderboard", "arena", arena, "players", len(players))

		found := 0
		for _, statsPath := range players {
			ids, err := w.fetchGames(ctx, w.config.BaseURL+statsPath)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				w.logger.Warn("player fetch failed", "path", statsPath, "err", err)
				continue
			}
			for _, id := range ids {
				if !w.markKnown(id) {
					continue
				}
				select {
				case out <- id:
					found++
				case <-ctx.Done():
					return ctx.Err()
				}
			}
			select {
			case <-time.After(w.config.RequestDelay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		w.logger.Info("leaderboard done", "arena", arena, "new_games", found)
		total += found
	}
	w.logger.Info("discovery complete", "new_games", total)
	return nil
}

// markKnown records id and reports whether it was new.
func (w *Worker) markKnown(id string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.known[id] {
		return false
	}
	w.known[id] = true
	return true
}

func (w *Worker) fetchPlayers(ctx context.Context, url string) ([]string, error) {
	body, err := w.get(ctx, url)
	if err != nil {
		return nil, err
	}
	defer body.Close()
	return ParsePlayerLinks(body)
}

func (w *Worker) fetchGames(ctx context.Context, url string) ([]string, error) {
	body, err := w.get(ctx, url)
	if err != nil {
		return nil, err
	}
	defer body.Close()
	return ParseGameIDs(body)
}

func (w *Worker) get(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	resp, err := w.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("GET %s: status %d", url, resp.StatusCode)
	}
	return resp.Body, nil
}

// ParsePlayerLinks returns the distinct /leaderboard/{arena}/{user}/stats paths
// on a leaderboard page, in page order.
func ParsePlayerLinks(r io.Reader) ([]string, error) {
	return uniqueLinks(r, "a[href*='/leaderboard/']", func(href string) (string, bool) {
		if !playerRe.MatchString(href) {
			return "", false
		}
		if i := strings.Index(href, "/leaderboard/"); i > 0 {
			href = href[i:]
		}
		return href, true
	})
}

// ParseGameIDs returns the distinct game ids linked from a player page.
func ParseGameIDs(r io.Reader) ([]string, error) {
	return uniqueLinks(r, "a[href*='/game/']", func(href string) (string, bool) {
		m := gameIDRe.FindStringSubmatch(href)
		if len(m) < 2 {
			return "", false
		}
		return m[1], true
	})
}

func uniqueLinks(r io.Reader, selector string, extract func(string) (string, bool)) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}
	var out []string
	seen := make(map[string]bool)
	doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		if !ok {
			return
		}
		v, ok := extract(href)
		if ok && !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	})
	return out, nil
}
