// Package minigame implements the named phases of the game as
// validator+mutator units. Each minigame checks a move against the
// entity and round state, accumulating every violation as a
// human-readable string, applies its effects only when all checks pass,
// and declares which minigame runs next.
package minigame

// State is the closed set of minigame identities. The orchestrator keys
// its dispatch table on it; adding a state without a table entry is a
// construction-time panic, not a silent fallthrough.
type State int

const (
	StateBuyPrivate State = iota
	StateBidding
	StateStockRound
	StateAuction
	StateAuctionDecision
	StateOperatingRound
	StateTrainsRusted
)

func (s State) String() string {
	switch s {
	case StateBuyPrivate:
		return "buy_private"
	case StateBidding:
		return "bidding"
	case StateStockRound:
		return "stock_round"
	case StateAuction:
		return "auction"
	case StateAuctionDecision:
		return "auction_decision"
	case StateOperatingRound:
		return "operating_round"
	case StateTrainsRusted:
		return "trains_rusted"
	}
	return "unknown"
}
