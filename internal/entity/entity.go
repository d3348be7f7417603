// Package entity holds the shared data model for a running game: players,
// public railway companies, private companies, trains, and the ownership
// ledger that ties them together. All mutation happens through the Game
// aggregate; nothing in this package performs rule validation.
package entity

import "errors"

const (
	// TotalShares is the full share capital of a public company, in
	// percentage points. IPO pool + bank pool + player holdings must
	// always sum to this.
	TotalShares = 100

	// ShareStep is the granularity of a single ordinary certificate.
	ShareStep = 10

	// PresidentShare is the size of the initial president's certificate.
	PresidentShare = 20
)

var (
	ErrPlayerNotFound  = errors.New("player not found")
	ErrCompanyNotFound = errors.New("company not found")
	ErrPrivateNotFound = errors.New("private company not found")
)

// Source identifies which pool a share certificate is bought from.
type Source int

const (
	SourceIPO Source = iota
	SourceBank
)

func (s Source) String() string {
	if s == SourceBank {
		return "bank"
	}
	return "ipo"
}

// Player is one seated participant. Cash is in whole currency units and
// must never be committed negative; rejected moves leave it untouched.
type Player struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Cash     int    `json:"cash"`
	OrderIdx int    `json:"order_idx"`
	Bankrupt bool   `json:"bankrupt"`
}

// Train is a locomotive certificate held by a public company.
type Train struct {
	Kind    string `json:"kind"`
	Cost    int    `json:"cost"`
	Reach   int    `json:"reach"`
	RustsOn string `json:"rusts_on,omitempty"`
}

// PublicCompany is a railway corporation whose shares trade on the
// stock-market lattice. Row/Col is its marker position; the price fields
// are kept in sync with the cell under the marker.
type PublicCompany struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	PresidentID string  `json:"president_id,omitempty"`
	IPOShares   int     `json:"ipo_shares"`
	BankShares  int     `json:"bank_shares"`
	IPOPrice    int     `json:"ipo_price"`
	BankPrice   int     `json:"bank_price"`
	Treasury    int     `json:"treasury"`
	Floated     bool    `json:"floated"`
	Trains      []Train `json:"trains,omitempty"`

	TokensTotal  int    `json:"tokens_total"`
	TokensPlaced int    `json:"tokens_placed"`
	BaseHex      string `json:"base_hex"`

	Row int `json:"row"`
	Col int `json:"col"`

	// Per-turn flags, cleared when the company's operating turn starts.
	LaidTrack   bool `json:"laid_track"`
	PlacedToken bool `json:"placed_token"`
	BoughtTrain bool `json:"bought_train"`

	Bankrupt bool `json:"bankrupt"`
}

// PoolShares returns the shares available from the given source.
func (c *PublicCompany) PoolShares(src Source) int {
	if src == SourceBank {
		return c.BankShares
	}
	return c.IPOShares
}

// PriceFrom returns the per-10% price when buying from the given source.
func (c *PublicCompany) PriceFrom(src Source) int {
	if src == SourceBank {
		return c.BankPrice
	}
	return c.IPOPrice
}

// HasTrain reports whether the company holds at least one train of any kind.
func (c *PublicCompany) HasTrain() bool { return len(c.Trains) > 0 }

// RemoveTrains strips every train of the given kind, returning how many
// were removed.
func (c *PublicCompany) RemoveTrains(kind string) int {
	kept := c.Trains[:0]
	removed := 0
	for _, t := range c.Trains {
		if t.Kind == kind {
			removed++
			continue
		}
		kept = append(kept, t)
	}
	c.Trains = kept
	return removed
}

// Bid is a standing offer by a player on a private company.
type Bid struct {
	PlayerID string `json:"player_id"`
	Amount   int    `json:"amount"`
}

// PrivateCompany is a minor company auctioned off before the first stock
// round and tradeable between players afterwards. Order fixes the priority
// sequence in the initial sale.
type PrivateCompany struct {
	ID         string `json:"id"`
	Order      int    `json:"order"`
	Name       string `json:"name"`
	FaceCost   int    `json:"face_cost"`
	ActualCost int    `json:"actual_cost"`
	Revenue    int    `json:"revenue"`

	OwnerPlayerID  string `json:"owner_player_id,omitempty"`
	OwnerCompanyID string `json:"owner_company_id,omitempty"`

	Bids      []Bid    `json:"bids,omitempty"`
	Passed    []string `json:"passed,omitempty"`
	PassCount int      `json:"pass_count"`
}

// Sold reports whether the company has found an owner. Once true, no
// further bids are legal.
func (p *PrivateCompany) Sold() bool {
	return p.OwnerPlayerID != "" || p.OwnerCompanyID != ""
}

// BidBy returns the standing bid of the given player, if any.
func (p *PrivateCompany) BidBy(playerID string) (Bid, bool) {
	for _, b := range p.Bids {
		if b.PlayerID == playerID {
			return b, true
		}
	}
	return Bid{}, false
}

// SetBid records or raises the player's bid.
func (p *PrivateCompany) SetBid(playerID string, amount int) {
	for i, b := range p.Bids {
		if b.PlayerID == playerID {
			p.Bids[i].Amount = amount
			return
		}
	}
	p.Bids = append(p.Bids, Bid{PlayerID: playerID, Amount: amount})
}

// MaxBid returns the highest standing bid.
func (p *PrivateCompany) MaxBid() (Bid, bool) {
	var best Bid
	found := false
	for _, b := range p.Bids {
		if !found || b.Amount > best.Amount {
			best = b
			found = true
		}
	}
	return best, found
}

// HasPassed reports whether the player has passed on this company's auction.
func (p *PrivateCompany) HasPassed(playerID string) bool {
	for _, id := range p.Passed {
		if id == playerID {
			return true
		}
	}
	return false
}

// MarkPassed records a pass, once per player.
func (p *PrivateCompany) MarkPassed(playerID string) {
	if !p.HasPassed(playerID) {
		p.Passed = append(p.Passed, playerID)
	}
}

// LiveBidders returns the players with a standing bid who have not passed.
func (p *PrivateCompany) LiveBidders() []string {
	var out []string
	for _, b := range p.Bids {
		if !p.HasPassed(b.PlayerID) {
			out = append(out, b.PlayerID)
		}
	}
	return out
}

// ClearAuction resets bid state after the company is sold.
func (p *PrivateCompany) ClearAuction() {
	p.Bids = nil
	p.Passed = nil
	p.PassCount = 0
}
