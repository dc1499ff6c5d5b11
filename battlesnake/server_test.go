package main

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/brensch/snekcell/search"
)

func testServer() *Server {
	gin.SetMode(gin.TestMode)
	return NewServer(slog.New(slog.NewTextHandler(io.Discard, nil)), search.Config{Depth: 1, MaxOpponents: 3}, 500*time.Millisecond)
}

func post(t *testing.T, r http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if s, ok := body.(string); ok {
		buf.WriteString(s)
	} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func cornerRequest(width, height int, ruleset string) GameRequest {
	you := Battlesnake{ID: "you", Health: 90, Body: []Coord{{0, 0}, {0, 1}, {0, 2}}, Head: Coord{0, 0}, Length: 3}
	other := Battlesnake{ID: "other", Health: 90, Body: []Coord{{width - 1, height - 1}, {width - 1, height - 2}, {width - 1, height - 3}}, Length: 3}
	return GameRequest{
		Game:  Game{ID: "g1", Ruleset: Ruleset{Name: ruleset}, Timeout: 500},
		Turn:  10,
		Board: Board{Width: width, Height: height, Snakes: []Battlesnake{you, other}, Food: []Coord{{5, 5}}},
		You:   you,
	}
}

func decodeMove(t *testing.T, w *httptest.ResponseRecorder) MoveResponse {
	t.Helper()
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d want=%d body=%s", w.Code, http.StatusOK, w.Body.String())
	}
	var resp MoveResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return resp
}

func TestIndex(t *testing.T) {
	r := newRouter(testServer())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	var info BattlesnakeInfoResponse
	if err := json.Unmarshal(w.Body.Bytes(), &info); err != nil {
		t.Fatal(err)
	}
	if info.APIVersion != "1" {
		t.Fatalf("apiversion=%q want=1", info.APIVersion)
	}
}

func TestMoveEscapesCorner(t *testing.T) {
	r := newRouter(testServer())
	resp := decodeMove(t, post(t, r, "/move", cornerRequest(11, 11, "standard")))
	if resp.Move != "right" {
		t.Fatalf("move=%q want=right", resp.Move)
	}
}

func TestMoveFallsBackForUnsupportedBoards(t *testing.T) {
	r := newRouter(testServer())
	tests := []struct {
		name string
		req  GameRequest
	}{
		{"wrapped", cornerRequest(11, 11, "wrapped")},
		{"too large", cornerRequest(60, 60, "standard")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := decodeMove(t, post(t, r, "/move", tt.req))
			if resp.Move != "right" {
				t.Fatalf("move=%q want=right", resp.Move)
			}
		})
	}
}

func TestMoveRejectsBadJSON(t *testing.T) {
	r := newRouter(testServer())
	w := post(t, r, "/move", "{not json")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status=%d want=%d", w.Code, http.StatusBadRequest)
	}
}

func TestStartEndTracksGames(t *testing.T) {
	s := testServer()
	r := newRouter(s)
	req := cornerRequest(11, 11, "standard")
	if w := post(t, r, "/start", req); w.Code != http.StatusOK {
		t.Fatalf("start status=%d", w.Code)
	}
	if len(s.games) != 1 {
		t.Fatalf("games=%d want=1", len(s.games))
	}
	if w := post(t, r, "/end", req); w.Code != http.StatusOK {
		t.Fatalf("end status=%d", w.Code)
	}
	if len(s.games) != 0 {
		t.Fatalf("games=%d want=0", len(s.games))
	}
}

func TestConvertToGameState(t *testing.T) {
	req := cornerRequest(11, 11, "royale")
	dmg := 30
	req.Game.Ruleset.Settings.HazardDamagePerTurn = &dmg
	req.Board.Hazards = []Coord{{0, 10}}

	state := convertToGameState(&req)
	if state.HazardDamage() != 30 {
		t.Fatalf("hazard damage=%d want=30", state.HazardDamage())
	}
	if len(state.Hazards) != 1 || state.Hazards[0].Y != 10 {
		t.Fatalf("hazards=%v", state.Hazards)
	}
	if state.Ruleset != "royale" || state.YouId != "you" || len(state.Snakes) != 2 {
		t.Fatalf("state=%+v", state)
	}
}

func TestComputeTime(t *testing.T) {
	tests := []struct {
		timeoutMs int
		want      time.Duration
	}{
		{500, 300 * time.Millisecond},
		{0, 300 * time.Millisecond},
		{100, minComputeTime},
	}
	for _, tt := range tests {
		if got := computeTime(tt.timeoutMs, 500*time.Millisecond); got != tt.want {
			t.Fatalf("computeTime(%d)=%v want=%v", tt.timeoutMs, got, tt.want)
		}
	}
}
