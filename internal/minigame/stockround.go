package minigame

import "ironrails/internal/entity"

// StockRound handles share trading: buying from the IPO or bank pool,
// selling to the bank pool, combined buy-sell turns, passing, and
// triggering a private-company side-auction.
type StockRound struct {
	hooks
}

func (m *StockRound) State() State { return StateStockRound }

func (m *StockRound) OnStart(env *Env) {
	r := env.G.Round
	r.StockRoundCount++
	r.Plays = 0
	r.ConsecutivePasses = 0
	env.Log.Info("stock round started", "round", r.StockRoundCount)
}

// OnComplete applies the end-of-round effects: a one-step price bump for
// every sold-out company, priority deal rotation, and clearing the
// per-round trade history.
func (m *StockRound) OnComplete(env *Env) {
	for _, c := range env.G.Companies {
		if c.IPOShares == 0 && c.BankShares == 0 {
			env.Market.OnSoldOut(c)
		}
	}
	r := env.G.Round
	if r.LastDealerID != "" {
		r.PriorityDealID = m.playerAfter(env, r.LastDealerID)
	}
	r.NextRound()
	env.Log.Info("stock round complete", "round", r.StockRoundCount, "priority_deal", r.PriorityDealID)
}

func (m *StockRound) playerAfter(env *Env, id string) string {
	players := env.G.Players
	for i, p := range players {
		if p.ID == id {
			return players[(i+1)%len(players)].ID
		}
	}
	return id
}

func (m *StockRound) Run(mv Move, env *Env) Result {
	var e errs
	player, err := env.G.PlayerByID(mv.ActorID)
	if err != nil {
		e.add("unknown player %q", mv.ActorID)
		return e.fail()
	}

	switch mv.Kind {
	case KindBuy:
		return m.runBuySell(player, &mv, nil, env)
	case KindSell:
		return m.runBuySell(player, nil, mv.Sales, env)
	case KindBuySell:
		return m.runBuySell(player, &mv, mv.Sales, env)
	case KindPass:
		env.G.Round.ConsecutivePasses++
		return ok(true)
	case KindSellPrivate:
		return m.runSellPrivate(player, mv, env)
	default:
		e.add("move %s is not valid during a stock round", mv.Kind)
		return e.fail()
	}
}

// plannedBuy is the validated buy half of a turn, ready to apply.
type plannedBuy struct {
	company   *entity.PublicCompany
	source    entity.Source
	amount    int // percentage points
	price     int // per 10% block
	president bool
	parPrice  int
}

// plannedSale is one validated sale lot.
type plannedSale struct {
	company *entity.PublicCompany
	amount  int
	price   int
}

// runBuySell validates the whole turn eagerly against current state,
// including funding the buy from the sale proceeds, then applies sales
// before the buy. Any failure leaves the state untouched.
func (m *StockRound) runBuySell(player *entity.Player, buyMv *Move, sales []SaleLot, env *Env) Result {
	var e errs

	plannedSales, proceeds := m.checkSales(player, sales, env, &e)
	var buy *plannedBuy
	if buyMv != nil {
		buy = m.checkBuy(player, *buyMv, proceeds, env, &e)
	}
	if !e.empty() {
		return e.fail()
	}

	for _, s := range plannedSales {
		m.applySale(player, s, env)
	}
	if buy != nil {
		m.applyBuy(player, *buy, env)
	}

	env.G.Round.Plays++
	env.G.Round.ConsecutivePasses = 0
	env.G.Round.LastDealerID = player.ID
	return ok(true)
}

func (m *StockRound) checkBuy(player *entity.Player, mv Move, proceeds int, env *Env, e *errs) *plannedBuy {
	c, err := env.G.CompanyByID(mv.CompanyID)
	if err != nil {
		e.add("unknown company %q", mv.CompanyID)
		return nil
	}
	if env.G.Round.SoldCompany(player.ID, c.ID) {
		e.add("cannot buy %s: you sold its stock this round", c.ID)
	}
	for _, lot := range mv.Sales {
		if lot.CompanyID == c.ID {
			e.add("cannot buy and sell %s in the same turn", c.ID)
		}
	}

	source := entity.SourceIPO
	if mv.Source == "bank" {
		source = entity.SourceBank
	}

	buy := &plannedBuy{company: c, source: source, amount: entity.ShareStep}
	if c.PresidentID == "" {
		// First purchase: the 20% president's certificate at a chosen
		// par price from the variant's ladder.
		buy.president = true
		buy.amount = entity.PresidentShare
		buy.source = entity.SourceIPO
		if !env.Var.ValidIPOPrice(mv.IPOPrice) {
			e.add("IPO price %d is not on the ladder %v", mv.IPOPrice, env.Var.IPOPrices)
		}
		buy.parPrice = mv.IPOPrice
		buy.price = mv.IPOPrice
	} else {
		buy.price = c.PriceFrom(source)
	}

	limit, okLimit := env.Var.CertLimit[len(env.G.Players)]
	if okLimit && env.G.CertificateCount(player.ID) >= limit {
		e.add("certificate limit reached: %d certificates allowed for %d players", limit, len(env.G.Players))
	}
	if env.G.Holding(c.ID, player.ID)+buy.amount > env.Var.MaxHolding {
		e.add("holding cap: at most %d%% of %s per player", env.Var.MaxHolding, c.ID)
	}
	if c.PoolShares(buy.source) < buy.amount {
		e.add("%s pool of %s has only %d%% left", buy.source, c.ID, c.PoolShares(buy.source))
	}
	cost := buy.price * buy.amount / entity.ShareStep
	if player.Cash+proceeds < cost {
		e.add("insufficient funds: %s share costs %d, you have %d", c.ID, cost, player.Cash+proceeds)
	}
	return buy
}

func (m *StockRound) applyBuy(player *entity.Player, buy plannedBuy, env *Env) {
	c := buy.company
	cost := buy.price * buy.amount / entity.ShareStep
	player.Cash -= cost

	if buy.source == entity.SourceBank {
		c.BankShares -= buy.amount
	} else {
		c.IPOShares -= buy.amount
	}
	env.G.AddHolding(c.ID, player.ID, buy.amount)
	env.G.Round.RecordBuy(player.ID, c.ID)

	if buy.president {
		c.PresidentID = player.ID
		c.IPOPrice = buy.parPrice
		c.BankPrice = buy.parPrice
		if row, col, found := env.Market.PositionOfPrice(buy.parPrice); found {
			env.Market.Place(c, row, col)
		}
	}

	env.G.CheckPresident(c, env.Var.PresidentThreshold)

	if !c.Floated && c.IPOShares < env.Var.FloatThreshold {
		c.Floated = true
		c.Treasury = c.IPOPrice * entity.TotalShares / entity.ShareStep
		env.Log.Info("company floated", "company", c.ID, "treasury", c.Treasury)
	}
	env.Log.Info("shares bought", "player", player.ID, "company", c.ID, "amount", buy.amount, "cost", cost)
}

func (m *StockRound) checkSales(player *entity.Player, sales []SaleLot, env *Env, e *errs) ([]plannedSale, int) {
	var planned []plannedSale
	proceeds := 0
	// Percent committed to earlier lots of the same company in this move,
	// so repeated lots validate against the remaining holding and the
	// already-grown bank pool instead of pre-move state.
	pending := make(map[string]int)
	for _, lot := range sales {
		c, err := env.G.CompanyByID(lot.CompanyID)
		if err != nil {
			e.add("unknown company %q", lot.CompanyID)
			continue
		}
		if env.G.Round.BoughtCompany(player.ID, c.ID) {
			e.add("cannot sell %s: you bought its stock this round", c.ID)
		}
		if lot.Percent <= 0 || lot.Percent%entity.ShareStep != 0 {
			e.add("sale amount for %s must be a positive multiple of %d", c.ID, entity.ShareStep)
			continue
		}
		holding := env.G.Holding(c.ID, player.ID) - pending[c.ID]
		if holding < lot.Percent {
			e.add("cannot sell %d%% of %s: you hold %d%%", lot.Percent, c.ID, holding)
		}
		if c.BankShares+pending[c.ID]+lot.Percent > env.Var.PoolCeiling {
			e.add("bank pool of %s cannot exceed %d%%", c.ID, env.Var.PoolCeiling)
		}
		if holding-lot.Percent < env.Var.PresidentThreshold {
			if !m.otherPotentialPresident(env, c, player.ID) {
				e.add("selling %d%% of %s would leave no potential president", lot.Percent, c.ID)
			}
		}
		pending[c.ID] += lot.Percent
		price := c.BankPrice
		planned = append(planned, plannedSale{company: c, amount: lot.Percent, price: price})
		proceeds += price * lot.Percent / entity.ShareStep
	}
	return planned, proceeds
}

// otherPotentialPresident reports whether any other player holds at least
// the president threshold in the company.
func (m *StockRound) otherPotentialPresident(env *Env, c *entity.PublicCompany, sellerID string) bool {
	for _, p := range env.G.Players {
		if p.ID == sellerID {
			continue
		}
		if env.G.Holding(c.ID, p.ID) >= env.Var.PresidentThreshold {
			return true
		}
	}
	return false
}

func (m *StockRound) applySale(player *entity.Player, s plannedSale, env *Env) {
	c := s.company
	env.G.AddHolding(c.ID, player.ID, -s.amount)
	c.BankShares += s.amount
	player.Cash += s.price * s.amount / entity.ShareStep
	env.G.Round.RecordSale(player.ID, c.ID)
	env.Market.OnSale(c, s.amount)
	env.G.CheckPresident(c, env.Var.PresidentThreshold)
	env.Log.Info("shares sold", "player", player.ID, "company", c.ID, "amount", s.amount)
}

// runSellPrivate opens a side-auction for a player-owned private
// company. It does not consume the initiator's stock-round turn; the
// round resumes with them if the sale falls through.
func (m *StockRound) runSellPrivate(player *entity.Player, mv Move, env *Env) Result {
	var e errs
	p, err := env.G.PrivateByOrder(mv.PrivateOrder)
	if err != nil {
		e.add("unknown private company order %d", mv.PrivateOrder)
		return e.fail()
	}
	if p.OwnerPlayerID != player.ID {
		e.add("%s does not belong to you", p.Name)
	}
	if env.G.Round.StockRoundCount < 2 {
		e.add("private companies cannot be auctioned before the second stock round")
	}
	if env.G.Auction != nil {
		e.add("another private company auction is already running")
	}
	if !e.empty() {
		return e.fail()
	}

	env.G.Auction = &entity.AuctionState{PrivateID: p.ID, SellerID: player.ID}
	env.Log.Info("private auction opened", "private", p.ID, "seller", player.ID)
	return ok(false)
}

// Next keeps the stock round running until every player has passed
// consecutively, then hands over to the first operating round. A pending
// side-auction diverts to the auction phase.
func (m *StockRound) Next(env *Env) State {
	if env.G.Auction != nil {
		return StateAuction
	}
	if env.G.Round.ConsecutivePasses >= len(env.G.Players) {
		return StateOperatingRound
	}
	return StateStockRound
}
