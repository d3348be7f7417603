package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *Client) CreateGame(ctx context.Context, players []string) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodPost, "/v1/games", map[string]any{
		"players": players,
	}, &out)
	return out, err
}

func (c *Client) ListGames(ctx context.Context) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodGet, "/v1/games", nil, &out)
	return out, err
}

func (c *Client) GameState(ctx context.Context, gameID string) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodGet, "/v1/games/"+url.PathEscape(gameID), nil, &out)
	return out, err
}

func (c *Client) DeleteGame(ctx context.Context, gameID string) error {
	return c.jsonRequest(ctx, http.MethodDelete, "/v1/games/"+url.PathEscape(gameID), nil, nil)
}

func (c *Client) Journal(ctx context.Context, gameID string) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodGet, "/v1/games/"+url.PathEscape(gameID)+"/journal", nil, &out)
	return out, err
}

// SubmitMove posts a raw move payload. The API reports rule violations
// with a 422 and an errors array; those come back as MoveRejectedError
// so callers can render them rather than fail.
func (c *Client) SubmitMove(ctx context.Context, gameID string, move map[string]any) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodPost, "/v1/games/"+url.PathEscape(gameID)+"/moves", move, &out)
	return out, err
}

// MoveRejectedError carries the rule violations of a refused move.
type MoveRejectedError struct {
	Errors []string
}

func (e *MoveRejectedError) Error() string {
	return "move rejected: " + strings.Join(e.Errors, "; ")
}

func (c *Client) jsonRequest(ctx context.Context, method, path string, in any, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusUnprocessableEntity {
		var rejected struct {
			Errors []string `json:"errors"`
		}
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
		if err := json.Unmarshal(raw, &rejected); err == nil && len(rejected.Errors) > 0 {
			return &MoveRejectedError{Errors: rejected.Errors}
		}
		return fmt.Errorf("api status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("api status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
