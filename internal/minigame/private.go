package minigame

import "ironrails/internal/entity"

// BuyPrivate is the initial sale of private companies in fixed priority
// order: buy the earliest unsold outright, bid on a later one, or pass.
type BuyPrivate struct {
	hooks
}

func (m *BuyPrivate) State() State { return StateBuyPrivate }

// EarliestUnsold returns the first private, in priority order, without an
// owner. Second result is false when everything has sold.
func EarliestUnsold(env *Env) (*entity.PrivateCompany, bool) {
	for _, p := range env.G.Privates {
		if !p.Sold() {
			return p, true
		}
	}
	return nil, false
}

func (m *BuyPrivate) Run(mv Move, env *Env) Result {
	var e errs
	player, err := env.G.PlayerByID(mv.ActorID)
	if err != nil {
		e.add("unknown player %q", mv.ActorID)
		return e.fail()
	}
	earliest, ok := EarliestUnsold(env)
	if !ok {
		e.add("no private company is for sale")
		return e.fail()
	}

	switch mv.Kind {
	case KindBuy:
		return m.runBuy(player, earliest, mv, env)
	case KindBid:
		return m.runBid(player, earliest, mv, env)
	case KindPass:
		return m.runPass(player, earliest, env)
	default:
		e.add("move %s is not valid during the private company sale", mv.Kind)
		return e.fail()
	}
}

func (m *BuyPrivate) runBuy(player *entity.Player, earliest *entity.PrivateCompany, mv Move, env *Env) Result {
	var e errs
	if mv.PrivateOrder != 0 && mv.PrivateOrder != earliest.Order {
		e.add("only %s (priority %d) may be bought outright", earliest.Name, earliest.Order)
	}
	if player.Cash < earliest.ActualCost {
		e.add("insufficient funds: %s costs %d, you have %d", earliest.Name, earliest.ActualCost, player.Cash)
	}
	if !e.empty() {
		return e.fail()
	}

	player.Cash -= earliest.ActualCost
	earliest.OwnerPlayerID = player.ID
	earliest.ClearAuction()
	env.Log.Info("private bought", "player", player.ID, "private", earliest.ID, "price", earliest.ActualCost)
	return ok(true)
}

func (m *BuyPrivate) runBid(player *entity.Player, earliest *entity.PrivateCompany, mv Move, env *Env) Result {
	var e errs
	target, err := env.G.PrivateByOrder(mv.PrivateOrder)
	if err != nil {
		e.add("unknown private company order %d", mv.PrivateOrder)
		return e.fail()
	}
	if target.Sold() {
		e.add("%s has already been sold", target.Name)
	}
	if target.Order == earliest.Order {
		e.add("%s is openly for sale and must be bought, not bid on", target.Name)
	}
	floor := target.ActualCost
	if best, has := target.MaxBid(); has {
		floor = best.Amount
	}
	min := floor + env.Var.BidIncrement
	if mv.Amount < min {
		e.add("bid on %s must be at least %d", target.Name, min)
	}
	if player.Cash < mv.Amount {
		e.add("insufficient funds: bid is %d, you have %d", mv.Amount, player.Cash)
	}
	if !e.empty() {
		return e.fail()
	}

	target.SetBid(player.ID, mv.Amount)
	// Bidding elsewhere counts as passing on the open company.
	m.recordPass(player, earliest, env)
	env.Log.Info("private bid", "player", player.ID, "private", target.ID, "amount", mv.Amount)
	return ok(true)
}

func (m *BuyPrivate) runPass(player *entity.Player, earliest *entity.PrivateCompany, env *Env) Result {
	var e errs
	if earliest.ActualCost == 0 {
		e.add("%s is free and must be bought, passing is not allowed", earliest.Name)
		return e.fail()
	}
	m.recordPass(player, earliest, env)
	return ok(true)
}

// recordPass marks the pass and, once every player has passed in one
// cycle, discounts the open company and resets the cycle.
func (m *BuyPrivate) recordPass(player *entity.Player, earliest *entity.PrivateCompany, env *Env) {
	earliest.MarkPassed(player.ID)
	earliest.PassCount++
	if earliest.PassCount < len(env.G.Players) {
		return
	}
	earliest.ActualCost -= env.Var.BidIncrement
	if earliest.ActualCost < 0 {
		earliest.ActualCost = 0
	}
	earliest.PassCount = 0
	earliest.Passed = nil
	env.Log.Info("private discounted", "private", earliest.ID, "cost", earliest.ActualCost)
}

func (m *BuyPrivate) Next(env *Env) State { return ScanPrivates(env) }

// ScanPrivates walks the privates in priority order and decides which
// phase handles the first unsold one: open sale when it has no live bids,
// a bidding round when contested, immediate resolution when exactly one
// live bid stands. All sold means the stock rounds begin.
func ScanPrivates(env *Env) State {
	for _, p := range env.G.Privates {
		if p.Sold() {
			continue
		}
		live := p.LiveBidders()
		switch {
		case len(live) >= 2:
			return StateBidding
		case len(live) == 1:
			resolvePrivate(p, live[0], env)
		default:
			return StateBuyPrivate
		}
	}
	return StateStockRound
}

// ContestedPrivate returns the private company currently under a bidding
// round, or nil.
func ContestedPrivate(env *Env) *entity.PrivateCompany {
	for _, p := range env.G.Privates {
		if p.Sold() {
			continue
		}
		if len(p.LiveBidders()) >= 2 {
			return p
		}
		if len(p.LiveBidders()) == 0 {
			return nil
		}
	}
	return nil
}

// resolvePrivate sells the company to its sole live bidder. The winner
// pays their own standing bid, not the highest overall, and the price is
// set to that amount.
func resolvePrivate(p *entity.PrivateCompany, winnerID string, env *Env) {
	winner, err := env.G.PlayerByID(winnerID)
	if err != nil {
		return
	}
	bid, _ := p.BidBy(winnerID)
	winner.Cash -= bid.Amount
	p.ActualCost = bid.Amount
	p.OwnerPlayerID = winnerID
	p.ClearAuction()
	env.Log.Info("private auction resolved", "private", p.ID, "winner", winnerID, "price", bid.Amount)
}

// Bidding is the contested-auction phase: registered bidders raise or
// pass until one live bidder remains.
type Bidding struct {
	hooks
}

func (m *Bidding) State() State { return StateBidding }

func (m *Bidding) Run(mv Move, env *Env) Result {
	var e errs
	player, err := env.G.PlayerByID(mv.ActorID)
	if err != nil {
		e.add("unknown player %q", mv.ActorID)
		return e.fail()
	}
	target := ContestedPrivate(env)
	if target == nil {
		e.add("no private company is under auction")
		return e.fail()
	}
	if _, has := target.BidBy(player.ID); !has {
		e.add("only registered bidders may act on %s", target.Name)
		return e.fail()
	}
	if target.HasPassed(player.ID) {
		e.add("you have already passed on %s", target.Name)
		return e.fail()
	}

	switch mv.Kind {
	case KindBid:
		best, _ := target.MaxBid()
		min := best.Amount + env.Var.BidIncrement
		if mv.Amount < min {
			e.add("raise on %s must be at least %d", target.Name, min)
		}
		if player.Cash < mv.Amount {
			e.add("insufficient funds: bid is %d, you have %d", mv.Amount, player.Cash)
		}
		if !e.empty() {
			return e.fail()
		}
		target.SetBid(player.ID, mv.Amount)
		return ok(true)
	case KindPass:
		if len(target.LiveBidders()) <= 1 {
			e.add("you are the last bidder on %s and must receive it", target.Name)
			return e.fail()
		}
		target.MarkPassed(player.ID)
		res := ok(true)
		// The passed bidder drops out of the rotation.
		res.Reorder = true
		return res
	default:
		e.add("move %s is not valid during bidding", mv.Kind)
		return e.fail()
	}
}

func (m *Bidding) Next(env *Env) State { return ScanPrivates(env) }
