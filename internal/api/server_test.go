package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ironrails/internal/config"
	"ironrails/internal/store"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	st, err := store.Open(context.Background(), "", filepath.Join(t.TempDir(), "games.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(config.APIConfig{}, logger, st)
}

func doJSON(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func createGame(t *testing.T, s *Server) map[string]any {
	t.Helper()
	rec := doJSON(t, s, http.MethodPost, "/v1/games", map[string]any{
		"players": []string{"Ada", "Ben", "Cal"},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decodeBody(t, rec)
}

func firstActor(t *testing.T, state map[string]any) string {
	t.Helper()
	actor, ok := state["actor"].(string)
	require.True(t, ok)
	require.NotEmpty(t, actor)
	return actor
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t)
	rec := doJSON(t, s, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCreateGame(t *testing.T) {
	s := newTestServer(t)
	state := createGame(t, s)

	assert.Equal(t, "buy_private", state["state"])
	assert.Len(t, state["players"], 3)
	assert.NotEmpty(t, state["id"])
}

func TestCreateGameRejectsBadPlayerCount(t *testing.T) {
	s := newTestServer(t)
	rec := doJSON(t, s, http.MethodPost, "/v1/games", map[string]any{"players": []string{"Solo"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSubmitMove(t *testing.T) {
	s := newTestServer(t)
	state := createGame(t, s)
	id := state["id"].(string)
	actor := firstActor(t, state)

	rec := doJSON(t, s, http.MethodPost, "/v1/games/"+id+"/moves", map[string]any{
		"actor": actor,
		"kind":  "buy",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	out := decodeBody(t, rec)
	assert.Equal(t, true, out["ok"])

	// The journal records the accepted move.
	rec = doJSON(t, s, http.MethodGet, "/v1/games/"+id+"/journal", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	journal := decodeBody(t, rec)["journal"].([]any)
	assert.Len(t, journal, 1)
}

func TestRejectedMoveReturns422(t *testing.T) {
	s := newTestServer(t)
	state := createGame(t, s)
	id := state["id"].(string)

	rec := doJSON(t, s, http.MethodPost, "/v1/games/"+id+"/moves", map[string]any{
		"actor": "nobody",
		"kind":  "BUY",
	})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	out := decodeBody(t, rec)
	assert.Equal(t, false, out["ok"])
	assert.NotEmpty(t, out["errors"])
}

func TestUnknownMoveKind(t *testing.T) {
	s := newTestServer(t)
	state := createGame(t, s)
	id := state["id"].(string)
	actor := firstActor(t, state)

	rec := doJSON(t, s, http.MethodPost, "/v1/games/"+id+"/moves", map[string]any{
		"actor": actor,
		"kind":  "TELEPORT",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGameSurvivesRestart(t *testing.T) {
	s := newTestServer(t)
	state := createGame(t, s)
	id := state["id"].(string)
	actor := firstActor(t, state)

	rec := doJSON(t, s, http.MethodPost, "/v1/games/"+id+"/moves", map[string]any{
		"actor": actor, "kind": "BUY",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	// A second server over the same store restores the game lazily.
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	fresh := New(config.APIConfig{}, logger, s.store)
	rec = doJSON(t, fresh, http.MethodGet, "/v1/games/"+id, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	restored := decodeBody(t, rec)
	assert.Equal(t, "buy_private", restored["state"])
	assert.NotEqual(t, actor, restored["actor"], "the turn advanced past the buyer")
}

func TestJournalKeepsRejectionsAcrossRestart(t *testing.T) {
	s := newTestServer(t)
	state := createGame(t, s)
	id := state["id"].(string)

	rec := doJSON(t, s, http.MethodPost, "/v1/games/"+id+"/moves", map[string]any{
		"actor": "nobody", "kind": "BUY",
	})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	fresh := New(config.APIConfig{}, logger, s.store)
	rec = doJSON(t, fresh, http.MethodGet, "/v1/games/"+id+"/journal", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	journal := decodeBody(t, rec)["journal"].([]any)
	require.Len(t, journal, 1)
	entry := journal[0].(map[string]any)
	assert.Equal(t, false, entry["ok"])
}

func TestGameNotFound(t *testing.T) {
	s := newTestServer(t)
	rec := doJSON(t, s, http.MethodGet, "/v1/games/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteGame(t *testing.T) {
	s := newTestServer(t)
	state := createGame(t, s)
	id := state["id"].(string)

	rec := doJSON(t, s, http.MethodDelete, "/v1/games/"+id, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, s, http.MethodGet, "/v1/games", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	games, ok := decodeBody(t, rec)["games"]
	require.True(t, ok)
	assert.Empty(t, games)
}
