package minigame

import (
	"ironrails/internal/board"
	"ironrails/internal/entity"
	"ironrails/internal/variant"
)

// OperatingRound runs each floated company, in stock-price descending
// order, through one turn: optionally lay a tile, place a station token,
// run routes, buy a train, and finally choose a dividend. The dividend
// choice ends the company's turn.
type OperatingRound struct {
	hooks
}

func (m *OperatingRound) State() State { return StateOperatingRound }

func (m *OperatingRound) OnStart(env *Env) {
	r := env.G.Round
	r.ORCount++
	r.ORPhase = 1
	r.ORPhasesTotal = env.Var.ORPhases
	r.ORTurn = 0
	r.ORDone = false
	env.Log.Info("operating round started", "round", r.ORCount, "phases", r.ORPhasesTotal)
}

// OnTurnStart clears the company's per-turn flags and route revenue.
func (m *OperatingRound) OnTurnStart(env *Env, actorID string) {
	c, err := env.G.CompanyByID(actorID)
	if err != nil {
		return
	}
	c.LaidTrack = false
	c.PlacedToken = false
	c.BoughtTrain = false
	delete(env.G.Round.RunRevenue, c.ID)
}

// OnTurnComplete advances the round counters and, with a rust event
// pending, strips the rusted train kind from every company before the
// next company acts. Stripped companies that can still demonstrate a
// route queue up for TrainsRusted.
func (m *OperatingRound) OnTurnComplete(env *Env, actorID string) {
	r := env.G.Round
	r.ORTurn++
	if r.PendingRust != "" {
		m.applyRust(env)
	}
	if r.ORTurn >= m.floatedCount(env) {
		r.ORTurn = 0
		if r.ORPhase < r.ORPhasesTotal {
			r.ORPhase++
			r.ORReorder = true
		} else {
			r.ORDone = true
		}
	}
}

func (m *OperatingRound) OnComplete(env *Env) {
	env.G.Round.ORDone = false
}

func (m *OperatingRound) floatedCount(env *Env) int {
	n := 0
	for _, c := range env.G.Companies {
		if c.Floated && !c.Bankrupt {
			n++
		}
	}
	return n
}

func (m *OperatingRound) applyRust(env *Env) {
	r := env.G.Round
	kind := r.PendingRust
	r.PendingRust = ""
	for _, c := range env.G.Companies {
		if !c.Floated || c.Bankrupt {
			continue
		}
		removed := c.RemoveTrains(kind)
		if removed == 0 {
			continue
		}
		env.Log.Info("trains rusted", "company", c.ID, "kind", kind, "count", removed)
		if !c.HasTrain() && m.hasDemonstrableRoute(env, c) {
			r.RustVictims = append(r.RustVictims, c.ID)
		}
	}
}

// hasDemonstrableRoute reports whether the company could legally run a
// route if it had a train: a station on tracked ground with a tracked
// neighbor to reach.
func (m *OperatingRound) hasDemonstrableRoute(env *Env, c *entity.PublicCompany) bool {
	for _, hex := range env.Board.TokenHexes(c.ID) {
		if env.Board.Tile(hex) == board.ColorNone {
			continue
		}
		loc, found := env.Board.Location(hex)
		if !found {
			continue
		}
		for _, n := range loc.Neighbors {
			if env.Board.Tile(n) != board.ColorNone {
				return true
			}
		}
	}
	return false
}

func (m *OperatingRound) Run(mv Move, env *Env) Result {
	var e errs
	c, err := env.G.CompanyByID(mv.ActorID)
	if err != nil {
		e.add("unknown company %q", mv.ActorID)
		return e.fail()
	}
	if !c.Floated {
		e.add("%s has not floated and cannot operate", c.ID)
		return e.fail()
	}
	if c.Bankrupt {
		e.add("%s is bankrupt", c.ID)
		return e.fail()
	}

	switch mv.Kind {
	case KindLayTrack:
		return m.runLayTrack(c, mv, env)
	case KindPlaceToken:
		return m.runPlaceToken(c, mv, env)
	case KindRunRoutes:
		return m.runRoutes(c, mv, env)
	case KindBuyTrain:
		return m.runBuyTrain(c, mv, env)
	case KindDividend:
		return m.runDividend(c, mv, env)
	default:
		e.add("move %s is not valid during an operating round", mv.Kind)
		return e.fail()
	}
}

func (m *OperatingRound) runLayTrack(c *entity.PublicCompany, mv Move, env *Env) Result {
	var e errs
	if c.LaidTrack {
		e.add("%s already laid track this turn", c.ID)
	}
	loc, found := env.Board.Location(mv.Hex)
	if !found {
		e.add("hex %q does not exist", mv.Hex)
		return e.fail()
	}

	current := env.Board.Tile(mv.Hex)
	if current == board.ColorRed {
		e.add("hex %s carries red track and cannot be upgraded further", mv.Hex)
	} else if mv.TileColor != current+1 {
		e.add("hex %s carries %s track: the next tile must be %s, not %s",
			mv.Hex, current, current+1, mv.TileColor)
	}
	if mv.Hex != c.BaseHex && !m.reachesNetwork(env, c, mv.Hex, loc) {
		e.add("hex %s is not connected to %s's network", mv.Hex, c.ID)
	}
	if mv.TileCities != loc.Cities || mv.TileTowns != loc.Towns {
		e.add("tile with %d cities and %d towns does not fit hex %s (%d cities, %d towns)",
			mv.TileCities, mv.TileTowns, mv.Hex, loc.Cities, loc.Towns)
	}
	cost := 0
	if current == board.ColorNone {
		cost = loc.Cost
	}
	if c.Treasury < cost {
		e.add("insufficient treasury: terrain costs %d, %s has %d", cost, c.ID, c.Treasury)
	}
	if loc.OwnedBy != "" && !m.mayUseReservedHex(env, c, loc.OwnedBy) {
		e.add("hex %s is reserved for the owner of private company %s", mv.Hex, loc.OwnedBy)
	}
	if !e.empty() {
		return e.fail()
	}

	env.Board.LayTrack(mv.Hex, mv.TileColor)
	c.Treasury -= cost
	c.LaidTrack = true
	env.Log.Info("track laid", "company", c.ID, "hex", mv.Hex, "color", mv.TileColor.String(), "cost", cost)
	return ok(false)
}

// reachesNetwork reports whether the hex can be reached from one of the
// company's stations. An upgrade target already carries track and is
// queried directly; a fresh lay qualifies through a tracked neighbor.
func (m *OperatingRound) reachesNetwork(env *Env, c *entity.PublicCompany, hex string, loc board.Location) bool {
	if env.Board.Connected(c.ID, hex) {
		return true
	}
	for _, n := range loc.Neighbors {
		if env.Board.Tile(n) != board.ColorNone && env.Board.Connected(c.ID, n) {
			return true
		}
	}
	return false
}

// mayUseReservedHex allows a reserved hex when the restricting private
// company belongs to the operating company or to its president.
func (m *OperatingRound) mayUseReservedHex(env *Env, c *entity.PublicCompany, privateID string) bool {
	p, err := env.G.PrivateByID(privateID)
	if err != nil {
		return true
	}
	if !p.Sold() {
		return false
	}
	return p.OwnerCompanyID == c.ID || p.OwnerPlayerID == c.PresidentID
}

func (m *OperatingRound) runPlaceToken(c *entity.PublicCompany, mv Move, env *Env) Result {
	var e errs
	if c.PlacedToken {
		e.add("%s already placed a token this turn", c.ID)
	}
	if c.TokensPlaced >= c.TokensTotal {
		e.add("%s has no tokens left (%d placed)", c.ID, c.TokensPlaced)
	}
	loc, found := env.Board.Location(mv.Hex)
	if !found {
		e.add("hex %q does not exist", mv.Hex)
		return e.fail()
	}
	if loc.Cities == 0 {
		e.add("hex %s has no city to token", mv.Hex)
	}
	if env.Board.Tile(mv.Hex) == board.ColorNone {
		e.add("hex %s has no track yet", mv.Hex)
	}
	if len(env.Board.Tokens(mv.Hex)) >= loc.Slots {
		e.add("no free station slot at %s", mv.Hex)
	}
	if env.Board.HasToken(mv.Hex, c.ID) {
		e.add("%s already has a station at %s", c.ID, mv.Hex)
	}
	if c.TokensPlaced == 0 {
		if mv.Hex != c.BaseHex {
			e.add("the first token of %s must go on its base hex %s", c.ID, c.BaseHex)
		}
	} else if mv.Hex != c.BaseHex && !env.Board.Connected(c.ID, mv.Hex) {
		e.add("hex %s is not connected to %s's stations", mv.Hex, c.ID)
	}
	if !e.empty() {
		return e.fail()
	}

	env.Board.PlaceToken(mv.Hex, c.ID)
	c.TokensPlaced++
	c.PlacedToken = true
	env.Log.Info("token placed", "company", c.ID, "hex", mv.Hex)
	return ok(false)
}

func (m *OperatingRound) runRoutes(c *entity.PublicCompany, mv Move, env *Env) Result {
	var e errs
	if !c.HasTrain() {
		e.add("%s holds no train and cannot run routes", c.ID)
	}
	if len(mv.Routes) == 0 {
		e.add("at least one route is required")
	}
	if len(mv.Routes) > len(c.Trains) {
		e.add("%d routes exceed %s's %d trains", len(mv.Routes), c.ID, len(c.Trains))
	}
	maxReach := 0
	for _, t := range c.Trains {
		if t.Reach > maxReach {
			maxReach = t.Reach
		}
	}

	used := make(map[string]bool)
	revenue := 0
	for i, route := range mv.Routes {
		if len(route) < 2 {
			e.add("route %d needs at least two distinct stops", i+1)
			continue
		}
		if len(route) > maxReach {
			e.add("route %d has %d stops, beyond train reach %d", i+1, len(route), maxReach)
		}
		seen := make(map[string]bool)
		touchesStation := false
		for _, hex := range route {
			if seen[hex] {
				e.add("route %d visits %s twice", i+1, hex)
			}
			seen[hex] = true
			if used[hex] {
				e.add("routes may not share stop %s", hex)
			}
			if _, found := env.Board.Location(hex); !found {
				e.add("route %d stop %q does not exist", i+1, hex)
				continue
			}
			if env.Board.Tile(hex) == board.ColorNone {
				e.add("route %d stop %s has no track", i+1, hex)
			}
			if env.Board.HasToken(hex, c.ID) {
				touchesStation = true
			}
		}
		for _, hex := range route {
			used[hex] = true
		}
		if !touchesStation {
			e.add("route %d does not touch a station of %s", i+1, c.ID)
		}
		for j := 0; j+1 < len(route); j++ {
			if !env.Board.PathExists(route[j], route[j+1]) {
				e.add("route %d has no track between %s and %s", i+1, route[j], route[j+1])
			}
		}
		revenue += env.Board.RouteCost(route)
	}
	if !e.empty() {
		return e.fail()
	}

	env.G.Round.RunRevenue[c.ID] = revenue
	env.Log.Info("routes run", "company", c.ID, "routes", len(mv.Routes), "revenue", revenue)
	return ok(false)
}

func (m *OperatingRound) runBuyTrain(c *entity.PublicCompany, mv Move, env *Env) Result {
	var e errs
	if c.BoughtTrain {
		e.add("%s already bought a train this turn", c.ID)
	}
	spec, found := trainSpec(env, mv.TrainKind)
	if !found {
		e.add("unknown train kind %q", mv.TrainKind)
		return e.fail()
	}
	if env.G.TrainSupply[spec.Kind] <= 0 {
		e.add("no %s trains left in the bank", spec.Kind)
	}
	if c.Treasury < spec.Cost {
		e.add("insufficient treasury: %s train costs %d, %s has %d", spec.Kind, spec.Cost, c.ID, c.Treasury)
	}
	if !e.empty() {
		return e.fail()
	}

	buyTrain(c, spec, env)
	c.BoughtTrain = true
	return ok(false)
}

func (m *OperatingRound) runDividend(c *entity.PublicCompany, mv Move, env *Env) Result {
	revenue := env.G.Round.RunRevenue[c.ID]

	if mv.Payout && revenue > 0 {
		for _, p := range env.G.Players {
			pct := env.G.Holding(c.ID, p.ID)
			if pct > 0 {
				p.Cash += revenue * pct / entity.TotalShares
			}
		}
		// Pool and IPO shares pay the treasury.
		c.Treasury += revenue * (c.IPOShares + c.BankShares) / entity.TotalShares
		env.Market.OnPayout(c)
		env.Log.Info("dividend paid", "company", c.ID, "revenue", revenue)
	} else {
		c.Treasury += revenue
		receiverless := env.G.PlayerShareTotal(c.ID) == 0
		env.Market.OnWithhold(c, receiverless)
		env.Log.Info("dividend withheld", "company", c.ID, "revenue", revenue, "receiverless", receiverless)
	}
	delete(env.G.Round.RunRevenue, c.ID)
	return ok(true)
}

// Next diverts to TrainsRusted when the rust cascade queued up victims,
// returns to the stock round once the final phase has played out, and
// otherwise keeps operating.
func (m *OperatingRound) Next(env *Env) State {
	r := env.G.Round
	if len(r.RustVictims) > 0 {
		return StateTrainsRusted
	}
	if r.ORDone {
		return StateStockRound
	}
	return StateOperatingRound
}

// trainSpec finds a kind in the variant roster.
func trainSpec(env *Env, kind string) (variant.TrainSpec, bool) {
	for _, t := range env.Var.Trains {
		if t.Kind == kind {
			return t, true
		}
	}
	return variant.TrainSpec{}, false
}

// buyTrain moves one train from the bank to the company and flags the
// rust event its purchase triggers.
func buyTrain(c *entity.PublicCompany, spec variant.TrainSpec, env *Env) {
	c.Treasury -= spec.Cost
	c.Trains = append(c.Trains, entity.Train{Kind: spec.Kind, Cost: spec.Cost, Reach: spec.Reach, RustsOn: spec.RustsOn})
	env.G.TrainSupply[spec.Kind]--
	for _, t := range env.Var.Trains {
		if t.RustsOn == spec.Kind {
			env.G.Round.PendingRust = t.Kind
			break
		}
	}
	env.Log.Info("train bought", "company", c.ID, "kind", spec.Kind, "cost", spec.Cost)
}
