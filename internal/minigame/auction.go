package minigame

import "ironrails/internal/entity"

// Auction is the player-initiated sale of an owned private company. Every
// player other than the owner responds once, bidding within a band around
// face cost or passing; the owner may do neither on their own company.
type Auction struct {
	hooks
}

func (m *Auction) State() State { return StateAuction }

func (m *Auction) Run(mv Move, env *Env) Result {
	var e errs
	a := env.G.Auction
	if a == nil {
		e.add("no private company auction is running")
		return e.fail()
	}
	player, err := env.G.PlayerByID(mv.ActorID)
	if err != nil {
		e.add("unknown player %q", mv.ActorID)
		return e.fail()
	}
	p, err := env.G.PrivateByID(a.PrivateID)
	if err != nil {
		e.add("auction references missing private %q", a.PrivateID)
		return e.fail()
	}
	if player.ID == a.SellerID {
		e.add("the owner may neither bid nor pass on their own company")
		return e.fail()
	}
	if a.HasResponded(player.ID) {
		e.add("you have already responded to this auction")
		return e.fail()
	}

	switch mv.Kind {
	case KindBid:
		lo, hi := p.FaceCost/2, p.FaceCost*2
		if mv.Amount < lo || mv.Amount > hi {
			e.add("bid on %s must be between %d and %d", p.Name, lo, hi)
		}
		if player.Cash < mv.Amount {
			e.add("insufficient funds: bid is %d, you have %d", mv.Amount, player.Cash)
		}
		if !e.empty() {
			return e.fail()
		}
		a.Bids = append(a.Bids, entity.Bid{PlayerID: player.ID, Amount: mv.Amount})
		a.MarkResponded(player.ID)
		return ok(true)
	case KindPass:
		a.MarkResponded(player.ID)
		return ok(true)
	default:
		e.add("move %s is not valid during a private company auction", mv.Kind)
		return e.fail()
	}
}

// Next hands control to the owner once every non-owner has responded.
func (m *Auction) Next(env *Env) State {
	a := env.G.Auction
	if a == nil {
		return StateStockRound
	}
	if len(a.Responded) >= len(env.G.Players)-1 {
		return StateAuctionDecision
	}
	return StateAuction
}

// AuctionDecision is the owner's accept/reject call on the collected
// bids. Acceptance transfers ownership and cash at the bid amount, not
// face value; rejection returns to the interrupted stock-round turn
// without consuming it.
type AuctionDecision struct {
	hooks
}

func (m *AuctionDecision) State() State { return StateAuctionDecision }

func (m *AuctionDecision) Run(mv Move, env *Env) Result {
	var e errs
	a := env.G.Auction
	if a == nil {
		e.add("no private company auction is awaiting a decision")
		return e.fail()
	}
	if mv.ActorID != a.SellerID {
		e.add("only the owner decides this auction")
		return e.fail()
	}
	seller, err := env.G.PlayerByID(a.SellerID)
	if err != nil {
		e.add("unknown player %q", a.SellerID)
		return e.fail()
	}
	p, err := env.G.PrivateByID(a.PrivateID)
	if err != nil {
		e.add("auction references missing private %q", a.PrivateID)
		return e.fail()
	}

	switch mv.Kind {
	case KindAccept:
		bid, has := a.BidBy(mv.BidderID)
		if !has {
			e.add("player %q has no standing bid", mv.BidderID)
			return e.fail()
		}
		buyer, err := env.G.PlayerByID(bid.PlayerID)
		if err != nil {
			e.add("unknown player %q", bid.PlayerID)
			return e.fail()
		}
		if buyer.Cash < bid.Amount {
			e.add("%s can no longer afford the bid of %d", buyer.ID, bid.Amount)
			return e.fail()
		}
		buyer.Cash -= bid.Amount
		seller.Cash += bid.Amount
		p.OwnerPlayerID = buyer.ID
		p.ActualCost = bid.Amount
		env.G.Auction = nil
		env.Log.Info("private auction accepted", "private", p.ID, "buyer", buyer.ID, "price", bid.Amount)
		res := ok(true)
		res.ConsumeOuter = true
		return res
	case KindReject:
		env.G.Auction = nil
		env.Log.Info("private auction rejected", "private", p.ID, "seller", seller.ID)
		return ok(false)
	default:
		e.add("move %s is not valid for the auction decision", mv.Kind)
		return e.fail()
	}
}

func (m *AuctionDecision) Next(env *Env) State { return StateStockRound }
