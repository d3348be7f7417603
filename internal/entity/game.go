package entity

import (
	"fmt"
	"sort"
)

// holdKey addresses one (company, player) cell of the ownership ledger.
type holdKey struct {
	CompanyID string
	PlayerID  string
}

// Game is the aggregate root owning every entity of one game instance.
// Share holdings live in a single ledger keyed by (company, player) rather
// than as back-references on the entities themselves.
// AuctionState tracks one player-initiated side-auction for a privately
// owned company, from the first rival bid to the owner's decision.
type AuctionState struct {
	PrivateID string   `json:"private_id"`
	SellerID  string   `json:"seller_id"`
	Bids      []Bid    `json:"bids,omitempty"`
	Responded []string `json:"responded,omitempty"`
}

// HasResponded reports whether the player already bid or passed.
func (a *AuctionState) HasResponded(playerID string) bool {
	for _, id := range a.Responded {
		if id == playerID {
			return true
		}
	}
	return false
}

// MarkResponded records a player's response, once.
func (a *AuctionState) MarkResponded(playerID string) {
	if !a.HasResponded(playerID) {
		a.Responded = append(a.Responded, playerID)
	}
}

// BidBy returns the player's standing auction bid, if any.
func (a *AuctionState) BidBy(playerID string) (Bid, bool) {
	for _, b := range a.Bids {
		if b.PlayerID == playerID {
			return b, true
		}
	}
	return Bid{}, false
}

type Game struct {
	Players   []*Player
	Companies []*PublicCompany
	Privates  []*PrivateCompany
	Round     *RoundState

	// TrainSupply is the bank's remaining train stock by kind.
	TrainSupply map[string]int

	// Auction is the in-flight private-company side-auction, nil when none.
	Auction *AuctionState

	holdings map[holdKey]int
}

// NewGame builds an empty aggregate. Entities are registered once at game
// start and live until the game ends; bankruptcy flags them, it does not
// remove them.
func NewGame() *Game {
	return &Game{
		Round:       NewRoundState(),
		TrainSupply: make(map[string]int),
		holdings:    make(map[holdKey]int),
	}
}

func (g *Game) PlayerByID(id string) (*Player, error) {
	for _, p := range g.Players {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrPlayerNotFound, id)
}

func (g *Game) CompanyByID(id string) (*PublicCompany, error) {
	for _, c := range g.Companies {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrCompanyNotFound, id)
}

func (g *Game) PrivateByOrder(order int) (*PrivateCompany, error) {
	for _, p := range g.Privates {
		if p.Order == order {
			return p, nil
		}
	}
	return nil, fmt.Errorf("%w: order %d", ErrPrivateNotFound, order)
}

func (g *Game) PrivateByID(id string) (*PrivateCompany, error) {
	for _, p := range g.Privates {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrPrivateNotFound, id)
}

// Holding returns the player's percentage stake in the company.
func (g *Game) Holding(companyID, playerID string) int {
	return g.holdings[holdKey{CompanyID: companyID, PlayerID: playerID}]
}

// SetHolding overwrites one ledger cell. Used by snapshot restore.
func (g *Game) SetHolding(companyID, playerID string, pct int) {
	k := holdKey{CompanyID: companyID, PlayerID: playerID}
	if pct == 0 {
		delete(g.holdings, k)
		return
	}
	g.holdings[k] = pct
}

// AddHolding adjusts one ledger cell by delta percentage points.
func (g *Game) AddHolding(companyID, playerID string, delta int) {
	g.SetHolding(companyID, playerID, g.Holding(companyID, playerID)+delta)
}

// Holders returns every player with a non-zero stake in the company,
// ordered by seat for determinism.
func (g *Game) Holders(companyID string) []*Player {
	var out []*Player
	for _, p := range g.Players {
		if g.Holding(companyID, p.ID) > 0 {
			out = append(out, p)
		}
	}
	return out
}

// PlayerShareTotal sums every player's stake in the company.
func (g *Game) PlayerShareTotal(companyID string) int {
	total := 0
	for _, p := range g.Players {
		total += g.Holding(companyID, p.ID)
	}
	return total
}

// CertificateCount counts the player's certificates across all companies.
// A president's 20% block counts as a single certificate; every other 10%
// block counts as one.
func (g *Game) CertificateCount(playerID string) int {
	count := 0
	for _, c := range g.Companies {
		pct := g.Holding(c.ID, playerID)
		if pct <= 0 {
			continue
		}
		if c.PresidentID == playerID {
			pct -= PresidentShare
			count++
		}
		count += pct / ShareStep
	}
	return count
}

// ShareConservationOK verifies the core invariant: for the given company,
// IPO pool + bank pool + player holdings == TotalShares.
func (g *Game) ShareConservationOK(companyID string) bool {
	c, err := g.CompanyByID(companyID)
	if err != nil {
		return false
	}
	return c.IPOShares+c.BankShares+g.PlayerShareTotal(companyID) == TotalShares
}

// CheckPresident re-evaluates the presidency of the company after any
// change in share ownership. The presidency moves when some holder's stake
// is strictly greater than the current president's and meets the threshold.
// Ties for the maximum are broken by seat proximity to the outgoing
// president, not by insertion order.
func (g *Game) CheckPresident(c *PublicCompany, threshold int) {
	maxPct := 0
	for _, p := range g.Players {
		if pct := g.Holding(c.ID, p.ID); pct > maxPct {
			maxPct = pct
		}
	}
	if maxPct < threshold {
		return
	}
	current := 0
	currentIdx := 0
	if c.PresidentID != "" {
		current = g.Holding(c.ID, c.PresidentID)
		if p, err := g.PlayerByID(c.PresidentID); err == nil {
			currentIdx = p.OrderIdx
		}
		if maxPct <= current {
			return
		}
	}

	var candidates []*Player
	for _, p := range g.Players {
		if g.Holding(c.ID, p.ID) == maxPct {
			candidates = append(candidates, p)
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		di := seatDistance(candidates[i].OrderIdx, currentIdx)
		dj := seatDistance(candidates[j].OrderIdx, currentIdx)
		return di < dj
	})
	if len(candidates) > 0 {
		c.PresidentID = candidates[0].ID
	}
}

// HoldingRecord is one ledger cell in exportable form, used by the
// persistence snapshot.
type HoldingRecord struct {
	CompanyID string `json:"company_id"`
	PlayerID  string `json:"player_id"`
	Percent   int    `json:"percent"`
}

// HoldingRecords exports the ledger in deterministic order.
func (g *Game) HoldingRecords() []HoldingRecord {
	var out []HoldingRecord
	for _, c := range g.Companies {
		for _, p := range g.Players {
			if pct := g.Holding(c.ID, p.ID); pct > 0 {
				out = append(out, HoldingRecord{CompanyID: c.ID, PlayerID: p.ID, Percent: pct})
			}
		}
	}
	return out
}

// LoadHoldings replaces the ledger with the given records.
func (g *Game) LoadHoldings(recs []HoldingRecord) {
	g.holdings = make(map[holdKey]int, len(recs))
	for _, r := range recs {
		g.SetHolding(r.CompanyID, r.PlayerID, r.Percent)
	}
}

func seatDistance(a, b int) int {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d
}
