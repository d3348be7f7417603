package minigame

import "ironrails/internal/board"

// Kind tags what a move is asking for. Which kinds are legal depends on
// the active minigame.
type Kind int

const (
	KindBuy Kind = iota
	KindBid
	KindPass
	KindSell
	KindBuySell
	KindSellPrivate
	KindAccept
	KindReject
	KindLayTrack
	KindPlaceToken
	KindRunRoutes
	KindBuyTrain
	KindDividend
)

var kindNames = map[Kind]string{
	KindBuy:         "BUY",
	KindBid:         "BID",
	KindPass:        "PASS",
	KindSell:        "SELL",
	KindBuySell:     "BUYSELL",
	KindSellPrivate: "SELL_PRIVATE_COMPANY",
	KindAccept:      "ACCEPT",
	KindReject:      "REJECT",
	KindLayTrack:    "LAY_TRACK",
	KindPlaceToken:  "PLACE_TOKEN",
	KindRunRoutes:   "RUN_ROUTES",
	KindBuyTrain:    "BUY_TRAIN",
	KindDividend:    "DIVIDEND",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "UNKNOWN"
}

// ParseKind maps a wire tag to a Kind.
func ParseKind(s string) (Kind, bool) {
	for k, name := range kindNames {
		if name == s {
			return k, true
		}
	}
	return 0, false
}

// SaleLot is one (company, amount) tuple in a sell or buy-sell move.
type SaleLot struct {
	CompanyID string `json:"company_id"`
	Percent   int    `json:"percent"`
}

// Move is the full input contract: an actor, a kind, and kind-specific
// payload fields. References are by id and resolved against the live
// entity set before validation; an unresolvable reference rejects the
// move, it never crashes.
type Move struct {
	ActorID string `json:"actor"`
	Kind    Kind   `json:"-"`

	// Stock round / private sale payloads.
	CompanyID    string    `json:"company_id,omitempty"`
	PrivateOrder int       `json:"private_order,omitempty"`
	Amount       int       `json:"amount,omitempty"`
	IPOPrice     int       `json:"ipo_price,omitempty"`
	Source       string    `json:"source,omitempty"` // "ipo" (default) or "bank"
	Sales        []SaleLot `json:"sales,omitempty"`

	// Auction payloads.
	BidderID string `json:"bidder_id,omitempty"`

	// Operating round payloads.
	Hex        string          `json:"hex,omitempty"`
	TileColor  board.TileColor `json:"-"`
	TileCities int             `json:"tile_cities,omitempty"`
	TileTowns  int             `json:"tile_towns,omitempty"`
	Routes     [][]string      `json:"routes,omitempty"`
	TrainKind  string          `json:"train_kind,omitempty"`
	Payout     bool            `json:"payout,omitempty"`
}
