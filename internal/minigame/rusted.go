package minigame

// TrainsRusted forces one trainless company at a time to buy a
// replacement. The company's treasury pays first; the president covers
// any shortfall from personal cash. When even the cheapest available
// train is out of reach the company folds and the game falls back to a
// stock round.
type TrainsRusted struct {
	hooks
}

func (m *TrainsRusted) State() State { return StateTrainsRusted }

func (m *TrainsRusted) Run(mv Move, env *Env) Result {
	var e errs
	r := env.G.Round
	if len(r.RustVictims) == 0 {
		e.add("no company is waiting on a forced train purchase")
		return e.fail()
	}
	victim := r.RustVictims[0]
	if mv.ActorID != victim {
		e.add("it is %s that must buy a train, not %s", victim, mv.ActorID)
		return e.fail()
	}
	c, err := env.G.CompanyByID(victim)
	if err != nil {
		e.add("unknown company %q", victim)
		return e.fail()
	}
	president, err := env.G.PlayerByID(c.PresidentID)
	if err != nil {
		e.add("company %s has no president on record", c.ID)
		return e.fail()
	}

	if !m.anyAffordable(env, c.Treasury+president.Cash) {
		c.Bankrupt = true
		president.Bankrupt = true
		r.RustVictims = r.RustVictims[1:]
		r.BankruptcyDeclared = true
		env.Log.Info("bankruptcy declared", "company", c.ID, "president", president.ID)
		return ok(true)
	}

	if mv.Kind != KindBuyTrain {
		e.add("%s must buy a train before anything else happens", c.ID)
		return e.fail()
	}
	spec, found := trainSpec(env, mv.TrainKind)
	if !found {
		e.add("unknown train kind %q", mv.TrainKind)
		return e.fail()
	}
	if env.G.TrainSupply[spec.Kind] <= 0 {
		e.add("no %s trains left in the bank", spec.Kind)
	}
	if c.Treasury+president.Cash < spec.Cost {
		e.add("%s train costs %d but %s and its president hold only %d together",
			spec.Kind, spec.Cost, c.ID, c.Treasury+president.Cash)
	}
	if !e.empty() {
		return e.fail()
	}

	if shortfall := spec.Cost - c.Treasury; shortfall > 0 {
		president.Cash -= shortfall
		c.Treasury = spec.Cost
		env.Log.Info("president covered shortfall", "company", c.ID, "president", president.ID, "amount", shortfall)
	}
	buyTrain(c, spec, env)
	r.RustVictims = r.RustVictims[1:]

	res := ok(true)
	res.Reorder = len(r.RustVictims) > 0
	return res
}

func (m *TrainsRusted) anyAffordable(env *Env, budget int) bool {
	for _, t := range env.Var.Trains {
		if env.G.TrainSupply[t.Kind] > 0 && t.Cost <= budget {
			return true
		}
	}
	return false
}

func (m *TrainsRusted) Next(env *Env) State {
	r := env.G.Round
	if len(r.RustVictims) > 0 {
		return StateTrainsRusted
	}
	if r.BankruptcyDeclared || r.ORDone {
		return StateStockRound
	}
	return StateOperatingRound
}

func (m *TrainsRusted) OnComplete(env *Env) {
	env.G.Round.BankruptcyDeclared = false
}
