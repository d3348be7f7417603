package entity

// RoundState is the single value object carrying all round-scoped counters.
// It is passed into every minigame call instead of being scattered across
// the entities. Version is bumped whenever a round boundary is crossed so
// stale references are detectable.
type RoundState struct {
	Version int `json:"version"`

	// Stock round counters.
	StockRoundCount   int `json:"stock_round_count"`
	Plays             int `json:"plays"`
	ConsecutivePasses int `json:"consecutive_passes"`

	// PriorityDealID is the player who opens the next stock round; it is
	// set to the player seated after the last buyer/seller of the round.
	PriorityDealID string `json:"priority_deal_id,omitempty"`
	LastDealerID   string `json:"last_dealer_id,omitempty"`

	// Per-round trade history keyed by player then company. Used to block
	// same-round buy-then-sell and sell-then-buy on one company; current
	// holdings are deliberately not consulted for this rule.
	BoughtThisRound map[string]map[string]bool `json:"bought_this_round,omitempty"`
	SoldThisRound   map[string]map[string]bool `json:"sold_this_round,omitempty"`

	// Operating round counters.
	ORTurn        int `json:"or_turn"`
	ORPhase       int `json:"or_phase"`
	ORPhasesTotal int `json:"or_phases_total"`
	ORCount       int `json:"or_count"`

	// PendingRust names a train kind to strip from every company at the
	// top of the next operating scan. Empty when no rust is pending.
	PendingRust string `json:"pending_rust,omitempty"`

	// RustVictims queues companies stripped of their last train that can
	// still demonstrate a route; each must buy a train in TrainsRusted.
	RustVictims []string `json:"rust_victims,omitempty"`

	// RunRevenue records the revenue each company ran this operating
	// turn, keyed by company; consumed by the dividend choice.
	RunRevenue map[string]int `json:"run_revenue,omitempty"`

	// ORReorder is raised when a phase boundary was crossed and the
	// company order must be rebuilt from current stock prices. It is a
	// one-shot signal consumed by the orchestrator, never persisted.
	ORReorder bool `json:"-"`

	// ORDone is raised when the final phase's last turn completed and the
	// operating round is over. One-shot, never persisted.
	ORDone bool `json:"-"`

	// BankruptcyDeclared is raised when a forced train purchase failed
	// outright and the operating round must be abandoned. One-shot,
	// never persisted.
	BankruptcyDeclared bool `json:"-"`
}

func NewRoundState() *RoundState {
	return &RoundState{
		BoughtThisRound: make(map[string]map[string]bool),
		SoldThisRound:   make(map[string]map[string]bool),
		RunRevenue:      make(map[string]int),
	}
}

// NextRound bumps the version and clears everything scoped to one round.
func (r *RoundState) NextRound() {
	r.Version++
	r.Plays = 0
	r.ConsecutivePasses = 0
	r.BoughtThisRound = make(map[string]map[string]bool)
	r.SoldThisRound = make(map[string]map[string]bool)
}

// RecordBuy marks that the player bought this company's stock this round.
func (r *RoundState) RecordBuy(playerID, companyID string) {
	if r.BoughtThisRound[playerID] == nil {
		r.BoughtThisRound[playerID] = make(map[string]bool)
	}
	r.BoughtThisRound[playerID][companyID] = true
}

// RecordSale marks that the player sold this company's stock this round.
func (r *RoundState) RecordSale(playerID, companyID string) {
	if r.SoldThisRound[playerID] == nil {
		r.SoldThisRound[playerID] = make(map[string]bool)
	}
	r.SoldThisRound[playerID][companyID] = true
}

func (r *RoundState) BoughtCompany(playerID, companyID string) bool {
	return r.BoughtThisRound[playerID][companyID]
}

func (r *RoundState) SoldCompany(playerID, companyID string) bool {
	return r.SoldThisRound[playerID][companyID]
}
