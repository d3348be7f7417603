package minigame

import (
	"log/slog"

	"ironrails/internal/board"
	"ironrails/internal/entity"
	"ironrails/internal/market"
	"ironrails/internal/variant"
)

// Env bundles the collaborators every minigame runs against: the entity
// aggregate, the price lattice, the board oracle, and the static variant
// data. One Env serves one game instance for its whole life.
type Env struct {
	G      *entity.Game
	Market *market.Lattice
	Board  board.Map
	Var    *variant.Variant
	Log    *slog.Logger
}

// NewEnv wires an environment. A nil logger falls back to slog.Default.
func NewEnv(g *entity.Game, lattice *market.Lattice, b board.Map, v *variant.Variant, logger *slog.Logger) *Env {
	if logger == nil {
		logger = slog.Default()
	}
	return &Env{G: g, Market: lattice, Board: b, Var: v, Log: logger}
}

// Minigame is one phase of the state machine: validate and apply a move,
// then name the phase that follows. Lifecycle hooks run at phase and turn
// boundaries, driven by the orchestrator.
type Minigame interface {
	State() State
	Run(mv Move, env *Env) Result
	Next(env *Env) State

	OnStart(env *Env)
	OnTurnStart(env *Env, actorID string)
	OnTurnComplete(env *Env, actorID string)
	OnComplete(env *Env)
}

// hooks is the no-op lifecycle base most minigames embed.
type hooks struct{}

func (hooks) OnStart(*Env)                {}
func (hooks) OnTurnStart(*Env, string)    {}
func (hooks) OnTurnComplete(*Env, string) {}
func (hooks) OnComplete(*Env)             {}

// Table builds the full dispatch table keyed by state identity.
func Table() map[State]Minigame {
	return map[State]Minigame{
		StateBuyPrivate:      &BuyPrivate{},
		StateBidding:         &Bidding{},
		StateStockRound:      &StockRound{},
		StateAuction:         &Auction{},
		StateAuctionDecision: &AuctionDecision{},
		StateOperatingRound:  &OperatingRound{},
		StateTrainsRusted:    &TrainsRusted{},
	}
}
