// Package api exposes the rules engine over HTTP: create a game, read
// its state, submit moves, and inspect the move journal.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"ironrails/internal/board"
	"ironrails/internal/config"
	"ironrails/internal/engine"
	"ironrails/internal/entity"
	"ironrails/internal/minigame"
	"ironrails/internal/store"
	"ironrails/internal/variant"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

type Server struct {
	cfg   config.APIConfig
	log   *slog.Logger
	store *store.Store
	mux   *chi.Mux

	mu    sync.Mutex
	games map[string]*engine.Engine
}

func New(cfg config.APIConfig, logger *slog.Logger, st *store.Store) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		cfg:   cfg,
		log:   logger,
		store: st,
		mux:   chi.NewRouter(),
		games: make(map[string]*engine.Engine),
	}
	s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) routes() {
	r := s.mux
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})

	r.Route("/v1", func(r chi.Router) {
		r.Post("/games", s.handleCreateGame)
		r.Get("/games", s.handleListGames)
		r.Get("/games/{id}", s.handleGameState)
		r.Delete("/games/{id}", s.handleDeleteGame)
		r.Post("/games/{id}/moves", s.handleMove)
		r.Get("/games/{id}/journal", s.handleJournal)
	})
}

func (s *Server) handleCreateGame(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Players []string `json:"players"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	v, err := s.variant()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	e, err := engine.New(v, in.Players, s.log)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	id := uuid.NewString()
	s.mu.Lock()
	s.games[id] = e
	s.mu.Unlock()
	s.persist(r.Context(), id, e)

	writeJSON(w, http.StatusCreated, s.stateView(id, e))
}

func (s *Server) variant() (*variant.Variant, error) {
	if s.cfg.VariantPath != "" {
		return variant.Load(s.cfg.VariantPath)
	}
	return variant.Default(), nil
}

func (s *Server) handleListGames(w http.ResponseWriter, r *http.Request) {
	ids, err := s.store.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"games": ids})
}

func (s *Server) handleGameState(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	e, err := s.game(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.stateView(id, e))
}

func (s *Server) handleDeleteGame(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.store.Delete(r.Context(), id); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.mu.Lock()
	delete(s.games, id)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// moveRequest is the wire form of a move; kind and tile color travel as
// strings and are parsed before dispatch.
type moveRequest struct {
	Actor        string             `json:"actor"`
	Kind         string             `json:"kind"`
	CompanyID    string             `json:"company_id"`
	PrivateOrder int                `json:"private_order"`
	Amount       int                `json:"amount"`
	IPOPrice     int                `json:"ipo_price"`
	Source       string             `json:"source"`
	Sales        []minigame.SaleLot `json:"sales"`
	Hex          string             `json:"hex"`
	TileColor    string             `json:"tile_color"`
	TileCities   int                `json:"tile_cities"`
	TileTowns    int                `json:"tile_towns"`
	Routes       [][]string         `json:"routes"`
	TrainKind    string             `json:"train_kind"`
	Payout       bool               `json:"payout"`
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	e, err := s.game(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	var in moveRequest
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	kind, ok := minigame.ParseKind(strings.ToUpper(strings.TrimSpace(in.Kind)))
	if !ok {
		writeError(w, http.StatusBadRequest, "unknown move kind "+in.Kind)
		return
	}
	mv := minigame.Move{
		ActorID:      in.Actor,
		Kind:         kind,
		CompanyID:    in.CompanyID,
		PrivateOrder: in.PrivateOrder,
		Amount:       in.Amount,
		IPOPrice:     in.IPOPrice,
		Source:       in.Source,
		Sales:        in.Sales,
		Hex:          in.Hex,
		TileCities:   in.TileCities,
		TileTowns:    in.TileTowns,
		Routes:       in.Routes,
		TrainKind:    in.TrainKind,
		Payout:       in.Payout,
	}
	if in.TileColor != "" {
		color, ok := board.ParseTileColor(strings.ToLower(in.TileColor))
		if !ok {
			writeError(w, http.StatusBadRequest, "unknown tile color "+in.TileColor)
			return
		}
		mv.TileColor = color
	}

	res := e.HandleMove(mv)
	// Rejected moves leave the game untouched but are journaled, so they
	// persist too.
	s.persist(r.Context(), id, e)
	if res.OK {
		writeJSON(w, http.StatusOK, moveView(res))
		return
	}
	writeJSON(w, http.StatusUnprocessableEntity, moveView(res))
}

func (s *Server) handleJournal(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	e, err := s.game(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"journal": e.Journal()})
}

// game returns the live engine, pulling it out of the store on first
// access after a restart.
func (s *Server) game(ctx context.Context, id string) (*engine.Engine, error) {
	s.mu.Lock()
	if e, ok := s.games[id]; ok {
		s.mu.Unlock()
		return e, nil
	}
	s.mu.Unlock()

	rec, err := s.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	e, err := engine.Restore(rec.Game, rec.Variant, rec.Snap, s.log)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.games[id] = e
	s.mu.Unlock()
	return e, nil
}

func (s *Server) persist(ctx context.Context, id string, e *engine.Engine) {
	snap, err := e.Snapshot()
	if err != nil {
		s.log.Error("snapshot failed", "game", id, "err", err)
		return
	}
	if err := s.store.Save(ctx, id, e.Game(), e.Env().Var, snap); err != nil {
		s.log.Error("persist failed", "game", id, "err", err)
	}
}

func (s *Server) stateView(id string, e *engine.Engine) map[string]any {
	g := e.Game()
	return map[string]any{
		"id":           id,
		"state":        e.State().String(),
		"actor":        e.CurrentActor(),
		"players":      g.Players,
		"companies":    g.Companies,
		"privates":     g.Privates,
		"round":        g.Round,
		"train_supply": g.TrainSupply,
		"auction":      g.Auction,
		"holdings":     g.HoldingRecords(),
	}
}

func moveView(res minigame.Result) map[string]any {
	return map[string]any{
		"ok":      res.OK,
		"errors":  res.Errors,
		"next":    res.Next.String(),
		"reorder": res.Reorder,
	}
}

func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrGameNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, engine.ErrPlayerCount):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, entity.ErrPlayerNotFound), errors.Is(err, entity.ErrCompanyNotFound), errors.Is(err, entity.ErrPrivateNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func decodeJSON(r *http.Request, out any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return err
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": strings.TrimSpace(message)})
}
