// Package engine is the orchestrator: it owns the running game, drives
// the minigame state machine, and keeps the generator stack deciding who
// acts next. Minigames validate and mutate; the engine sequences them.
package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"ironrails/internal/entity"
	"ironrails/internal/minigame"
	"ironrails/internal/turnorder"
	"ironrails/internal/variant"
)

var (
	ErrPlayerCount = errors.New("unsupported player count")
	ErrNoGenerator = errors.New("no turn generator for state")
)

// frame pairs an active minigame state with the generator sequencing its
// actors. Interrupting phases stack a frame on top; resolving them pops
// back to the interrupted one with its cursor intact.
type frame struct {
	state minigame.State
	gen   turnorder.Generator
}

// Engine drives one game instance. All access goes through its mutex, so
// one Engine can back a concurrent HTTP surface directly.
type Engine struct {
	mu    sync.Mutex
	env   *minigame.Env
	table map[minigame.State]minigame.Minigame
	stack []frame

	journal []MoveRecord
	seq     int

	log *slog.Logger
}

// New seats the named players, builds the game world from the variant,
// and opens the first phase.
func New(v *variant.Variant, playerNames []string, logger *slog.Logger) (*Engine, error) {
	if logger == nil {
		logger = slog.Default()
	}
	cash, ok := v.StartingCash[len(playerNames)]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrPlayerCount, len(playerNames))
	}

	g := entity.NewGame()
	for i, name := range playerNames {
		g.Players = append(g.Players, &entity.Player{
			ID:       uuid.NewString(),
			Name:     name,
			Cash:     cash,
			OrderIdx: i,
		})
	}
	for _, spec := range v.Companies {
		g.Companies = append(g.Companies, &entity.PublicCompany{
			ID:          spec.ID,
			Name:        spec.Name,
			IPOShares:   entity.TotalShares,
			TokensTotal: spec.Tokens,
			BaseHex:     spec.BaseHex,
		})
	}
	for i, spec := range v.Privates {
		g.Privates = append(g.Privates, &entity.PrivateCompany{
			ID:         spec.ID,
			Order:      i + 1,
			Name:       spec.Name,
			FaceCost:   spec.FaceCost,
			ActualCost: spec.FaceCost,
			Revenue:    spec.Revenue,
		})
	}
	for _, t := range v.Trains {
		g.TrainSupply[t.Kind] = t.Count
	}

	e := &Engine{
		env:   minigame.NewEnv(g, v.Lattice(), v.Board(), v, logger),
		table: minigame.Table(),
		log:   logger,
	}

	opening := minigame.ScanPrivates(e.env)
	e.stack = []frame{{state: opening, gen: e.generatorFor(opening)}}
	mg := e.table[opening]
	mg.OnStart(e.env)
	mg.OnTurnStart(e.env, e.top().gen.Current())
	logger.Info("game created", "players", len(playerNames), "variant", v.Name, "opening", opening.String())
	return e, nil
}

func (e *Engine) top() *frame { return &e.stack[len(e.stack)-1] }

// State returns the active minigame state.
func (e *Engine) State() minigame.State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.top().state
}

// CurrentActor returns the player or company whose turn it is.
func (e *Engine) CurrentActor() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.top().gen.Current()
}

// Game exposes the aggregate for read access and persistence. Callers
// must not mutate it.
func (e *Engine) Game() *entity.Game { return e.env.G }

// Env exposes the collaborator bundle for persistence.
func (e *Engine) Env() *minigame.Env { return e.env }

// HandleMove validates the move against the active minigame, applies it
// when legal, and advances the state machine. A rejected move changes
// nothing: not the entities, not the turn, not the state.
func (e *Engine) HandleMove(mv minigame.Move) minigame.Result {
	e.mu.Lock()
	defer e.mu.Unlock()

	f := e.top()
	mg := e.table[f.state]

	if cur := f.gen.Current(); mv.ActorID != cur {
		res := minigame.Result{
			Next:   f.state,
			Errors: []string{fmt.Sprintf("it is %s's turn, not %s's", cur, mv.ActorID)},
		}
		e.record(mv, f.state, res)
		return res
	}

	res := mg.Run(mv, e.env)
	if !res.OK {
		res.Next = f.state
		e.record(mv, f.state, res)
		return res
	}

	if res.TurnDone {
		mg.OnTurnComplete(e.env, mv.ActorID)
	}
	next := mg.Next(e.env)
	res.Next = next
	e.record(mv, f.state, res)

	switch {
	case next == f.state:
		e.sameState(f, mg, res)
	case e.stackHas(next):
		e.returnTo(next, res)
	default:
		e.transition(f, mg, next, res)
	}
	return res
}

// sameState keeps the phase and moves the turn along. A reorder signal
// rebuilds the generator from current game state instead of advancing
// the stale one.
func (e *Engine) sameState(f *frame, mg minigame.Minigame, res minigame.Result) {
	r := e.env.G.Round
	if res.Reorder || r.ORReorder {
		r.ORReorder = false
		f.gen = e.generatorFor(f.state)
	} else if res.TurnDone {
		f.gen.Next()
	}
	if res.TurnDone {
		mg.OnTurnStart(e.env, f.gen.Current())
	}
}

func (e *Engine) stackHas(s minigame.State) bool {
	for _, f := range e.stack {
		if f.state == s {
			return true
		}
	}
	return false
}

// returnTo pops resolved frames down to the interrupted phase. The
// interrupted actor's turn is consumed only when the resolution says so;
// a rejected side-auction, for instance, hands the turn straight back.
func (e *Engine) returnTo(next minigame.State, res minigame.Result) {
	for e.top().state != next {
		e.table[e.top().state].OnComplete(e.env)
		e.stack = e.stack[:len(e.stack)-1]
	}
	f := e.top()
	if res.ConsumeOuter {
		f.gen.Next()
	}
	e.table[f.state].OnTurnStart(e.env, f.gen.Current())
}

// transition closes the old phase and opens the new one, merging the new
// generator into the stack per its composition rule.
func (e *Engine) transition(f *frame, old minigame.Minigame, next minigame.State, res minigame.Result) {
	if res.TurnDone {
		f.gen.Next()
	}
	old.OnComplete(e.env)

	gen := e.generatorFor(next)
	if next == minigame.StateOperatingRound && gen.Len() == 0 {
		// Nothing floated yet: run another stock round instead.
		next = minigame.StateStockRound
		gen = e.generatorFor(next)
		res.Next = next
	}

	nf := frame{state: next, gen: gen}
	switch gen.Compose() {
	case turnorder.ResetAll:
		e.stack = append(e.stack[:0], nf)
	case turnorder.Replace:
		e.stack[len(e.stack)-1] = nf
	default:
		e.stack = append(e.stack, nf)
	}

	mg := e.table[next]
	mg.OnStart(e.env)
	mg.OnTurnStart(e.env, gen.Current())
	e.log.Info("phase change", "state", next.String(), "actor", gen.Current())
}

// generatorFor builds the turn sequence a state opens with, from current
// game state.
func (e *Engine) generatorFor(s minigame.State) turnorder.Generator {
	g := e.env.G
	switch s {
	case minigame.StateBuyPrivate:
		return turnorder.NewRoundRobin(e.playerIDs())
	case minigame.StateBidding:
		if p := minigame.ContestedPrivate(e.env); p != nil {
			return turnorder.NewRestricted(p.LiveBidders())
		}
		return turnorder.NewRestricted(nil)
	case minigame.StateStockRound:
		ids := e.playerIDs()
		start := g.Round.PriorityDealID
		if start == "" && len(ids) > 0 {
			start = ids[0]
		}
		return turnorder.NewPivot(ids, start)
	case minigame.StateAuction:
		return turnorder.NewAfterOwner(e.playerIDs(), g.Auction.SellerID)
	case minigame.StateAuctionDecision:
		return turnorder.NewSingle(g.Auction.SellerID)
	case minigame.StateOperatingRound:
		var actors []turnorder.PricedActor
		for _, c := range g.Companies {
			if c.Floated && !c.Bankrupt {
				actors = append(actors, turnorder.PricedActor{ID: c.ID, Price: c.BankPrice, Row: c.Row})
			}
		}
		return turnorder.NewOperating(actors)
	case minigame.StateTrainsRusted:
		return turnorder.NewSingle(g.Round.RustVictims[0])
	}
	panic(fmt.Sprintf("%v: %v", ErrNoGenerator, s))
}

// playerIDs lists the seated, still-solvent players in seat order.
func (e *Engine) playerIDs() []string {
	var ids []string
	for _, p := range e.env.G.Players {
		if !p.Bankrupt {
			ids = append(ids, p.ID)
		}
	}
	return ids
}
