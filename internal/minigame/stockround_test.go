package minigame

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ironrails/internal/entity"
)

func TestPresidentPurchase(t *testing.T) {
	env := newTestEnv(t, 3)
	m := &StockRound{}

	res := m.Run(Move{ActorID: "p1", Kind: KindBuy, CompanyID: "PRR", IPOPrice: 90}, env)
	require.True(t, res.OK, "errors: %v", res.Errors)

	p1, _ := env.G.PlayerByID("p1")
	c, _ := env.G.CompanyByID("PRR")
	assert.Equal(t, 800-180, p1.Cash, "president's certificate costs two shares at par")
	assert.Equal(t, 20, env.G.Holding("PRR", "p1"))
	assert.Equal(t, "p1", c.PresidentID)
	assert.Equal(t, 80, c.IPOShares)
	assert.Equal(t, 90, c.IPOPrice)
	assert.Equal(t, 90, c.BankPrice)
	assert.False(t, c.Floated, "80% in the IPO pool is above the float threshold")
	assert.Equal(t, "p1", env.G.Round.LastDealerID)
	assert.True(t, env.G.ShareConservationOK("PRR"))
}

func TestPresidentPurchaseNeedsLadderPrice(t *testing.T) {
	env := newTestEnv(t, 3)
	res := (&StockRound{}).Run(Move{ActorID: "p1", Kind: KindBuy, CompanyID: "PRR", IPOPrice: 91}, env)
	requireRejected(t, res)
}

func TestCompanyFloatsBelowThreshold(t *testing.T) {
	env := newTestEnv(t, 3)
	m := &StockRound{}

	require.True(t, m.Run(Move{ActorID: "p1", Kind: KindBuy, CompanyID: "PRR", IPOPrice: 67}, env).OK)
	buys := []string{"p2", "p3", "p2", "p3"}
	for i, id := range buys {
		res := m.Run(Move{ActorID: id, Kind: KindBuy, CompanyID: "PRR"}, env)
		require.True(t, res.OK, "buy %d errors: %v", i, res.Errors)
	}

	c, _ := env.G.CompanyByID("PRR")
	assert.Equal(t, 40, c.IPOShares)
	assert.True(t, c.Floated)
	assert.Equal(t, 670, c.Treasury, "treasury is funded at par for the full share capital")
}

func TestBuyAfterSellingSameCompanyRejected(t *testing.T) {
	env := newTestEnv(t, 3)
	m := &StockRound{}
	c := floatTestCompany(t, env, "NYC", "p2", 76)
	env.G.AddHolding(c.ID, "p1", 20)
	c.IPOShares -= 20

	res := m.Run(Move{ActorID: "p1", Kind: KindSell, Sales: []SaleLot{{CompanyID: "NYC", Percent: 10}}}, env)
	require.True(t, res.OK, "errors: %v", res.Errors)

	res = m.Run(Move{ActorID: "p1", Kind: KindBuy, CompanyID: "NYC"}, env)
	requireRejected(t, res)
	assert.Contains(t, res.Errors[0], "sold its stock this round")
}

func TestBuySellSameCompanyInOneTurnRejected(t *testing.T) {
	env := newTestEnv(t, 3)
	c := floatTestCompany(t, env, "NYC", "p2", 76)
	env.G.AddHolding(c.ID, "p1", 20)
	c.IPOShares -= 20

	res := (&StockRound{}).Run(Move{
		ActorID:   "p1",
		Kind:      KindBuySell,
		CompanyID: "NYC",
		Sales:     []SaleLot{{CompanyID: "NYC", Percent: 10}},
	}, env)
	requireRejected(t, res)
}

func TestBuySellFundedByProceeds(t *testing.T) {
	env := newTestEnv(t, 3)
	m := &StockRound{}
	c := floatTestCompany(t, env, "PRR", "p2", 90)
	env.G.AddHolding(c.ID, "p1", 30)
	c.IPOShares -= 30
	p1, _ := env.G.PlayerByID("p1")
	p1.Cash = 50

	// Selling 10% of PRR at 90 funds the NYC president's certificate at
	// par 67; cash alone would not.
	res := m.Run(Move{
		ActorID:   "p1",
		Kind:      KindBuySell,
		CompanyID: "NYC",
		IPOPrice:  67,
		Sales:     []SaleLot{{CompanyID: "PRR", Percent: 10}},
	}, env)
	require.True(t, res.OK, "errors: %v", res.Errors)
	assert.Equal(t, 50+90-134, p1.Cash)
	assert.Equal(t, 20, env.G.Holding("NYC", "p1"))
	assert.Equal(t, 20, env.G.Holding("PRR", "p1"))
}

func TestCertificateLimit(t *testing.T) {
	env := newTestEnv(t, 3)
	m := &StockRound{}
	// Nineteen certificates, one under the limit for three players.
	for _, id := range []string{"PRR", "NYC", "CPR"} {
		c, _ := env.G.CompanyByID(id)
		c.PresidentID = "p2"
		env.G.AddHolding(id, "p1", 60)
		c.IPOShares -= 60
	}
	bo, _ := env.G.CompanyByID("BO")
	bo.PresidentID = "p2"
	env.G.AddHolding("BO", "p1", 10)
	bo.IPOShares -= 10
	require.Equal(t, 19, env.G.CertificateCount("p1"))

	res := m.Run(Move{ActorID: "p1", Kind: KindBuy, CompanyID: "CO", IPOPrice: 67}, env)
	require.True(t, res.OK, "one under the limit still buys, errors: %v", res.Errors)
	require.Equal(t, 20, env.G.CertificateCount("p1"))

	res = m.Run(Move{ActorID: "p1", Kind: KindBuy, CompanyID: "CO"}, env)
	requireRejected(t, res)
	assert.Contains(t, res.Errors, "certificate limit reached: 20 certificates allowed for 3 players")
}

func TestHoldingCap(t *testing.T) {
	env := newTestEnv(t, 3)
	c := floatTestCompany(t, env, "PRR", "p1", 67)
	require.Equal(t, 60, env.G.Holding("PRR", "p1"))

	res := (&StockRound{}).Run(Move{ActorID: "p1", Kind: KindBuy, CompanyID: "PRR"}, env)
	requireRejected(t, res)
	assert.Equal(t, 60, env.G.Holding("PRR", "p1"))
	_ = c
}

func TestDuplicateSaleLotsCannotOversell(t *testing.T) {
	env := newTestEnv(t, 3)
	c := floatTestCompany(t, env, "NYC", "p2", 76)
	env.G.AddHolding(c.ID, "p1", 20)
	c.IPOShares -= 20
	p1, _ := env.G.PlayerByID("p1")
	before := p1.Cash

	// The second lot must be judged against what the first one leaves.
	res := (&StockRound{}).Run(Move{
		ActorID: "p1",
		Kind:    KindSell,
		Sales:   []SaleLot{{CompanyID: "NYC", Percent: 20}, {CompanyID: "NYC", Percent: 20}},
	}, env)
	requireRejected(t, res)
	assert.Contains(t, res.Errors, "cannot sell 20% of NYC: you hold 0%")
	assert.Equal(t, 20, env.G.Holding("NYC", "p1"))
	assert.Equal(t, 0, c.BankShares)
	assert.Equal(t, before, p1.Cash)
	assert.True(t, env.G.ShareConservationOK("NYC"))
}

func TestRepeatedSaleLotsRespectPoolCeiling(t *testing.T) {
	env := newTestEnv(t, 3)
	c, _ := env.G.CompanyByID("NYC")
	c.PresidentID = "p2"
	c.Floated = true
	env.G.AddHolding("NYC", "p2", 20)
	env.G.AddHolding("NYC", "p1", 40)
	c.BankShares = 20
	c.IPOShares = 20

	// Each lot alone keeps the pool at 40%; together they push it to 60%.
	res := (&StockRound{}).Run(Move{
		ActorID: "p1",
		Kind:    KindSell,
		Sales:   []SaleLot{{CompanyID: "NYC", Percent: 20}, {CompanyID: "NYC", Percent: 20}},
	}, env)
	requireRejected(t, res)
	assert.Contains(t, res.Errors, "bank pool of NYC cannot exceed 50%")
	assert.Equal(t, 40, env.G.Holding("NYC", "p1"))
	assert.Equal(t, 20, c.BankShares)
}

func TestPoolCeilingBlocksSale(t *testing.T) {
	env := newTestEnv(t, 3)
	c := floatTestCompany(t, env, "PRR", "p2", 67)
	env.G.AddHolding(c.ID, "p1", 20)
	c.IPOShares -= 20
	c.BankShares = 50
	c.IPOShares -= 50

	res := (&StockRound{}).Run(Move{ActorID: "p1", Kind: KindSell, Sales: []SaleLot{{CompanyID: "PRR", Percent: 10}}}, env)
	requireRejected(t, res)
}

func TestSaleMovesPriceDownOneRow(t *testing.T) {
	env := newTestEnv(t, 3)
	c := floatTestCompany(t, env, "PRR", "p2", 67)
	env.G.AddHolding(c.ID, "p1", 10)
	c.IPOShares -= 10

	// Walk the marker to the 77 cell first.
	row, col, found := env.Market.PositionOfPrice(77)
	require.True(t, found)
	env.Market.Place(c, row, col)

	res := (&StockRound{}).Run(Move{ActorID: "p1", Kind: KindSell, Sales: []SaleLot{{CompanyID: "PRR", Percent: 10}}}, env)
	require.True(t, res.OK, "errors: %v", res.Errors)
	assert.Equal(t, col, c.Col, "a sale stays in its column")
	assert.Equal(t, row+1, c.Row)
	assert.Equal(t, 71, c.BankPrice)
	assert.Equal(t, 71, c.IPOPrice, "both price fields track the marker")

	p1, _ := env.G.PlayerByID("p1")
	assert.Equal(t, 800+77, p1.Cash, "the sale settles at the pre-drop price")
}

func TestSaleCannotOrphanPresidency(t *testing.T) {
	env := newTestEnv(t, 3)
	c := floatTestCompany(t, env, "PRR", "p1", 67)
	_ = c

	res := (&StockRound{}).Run(Move{ActorID: "p1", Kind: KindSell, Sales: []SaleLot{{CompanyID: "PRR", Percent: 50}}}, env)
	requireRejected(t, res)
}

func TestSaleTransfersPresidency(t *testing.T) {
	env := newTestEnv(t, 3)
	c := floatTestCompany(t, env, "PRR", "p1", 67)
	env.G.AddHolding(c.ID, "p2", 30)
	c.IPOShares -= 30

	res := (&StockRound{}).Run(Move{ActorID: "p1", Kind: KindSell, Sales: []SaleLot{{CompanyID: "PRR", Percent: 50}}}, env)
	require.True(t, res.OK, "errors: %v", res.Errors)
	assert.Equal(t, "p2", c.PresidentID)
}

func TestConsecutivePassesEndTheRound(t *testing.T) {
	env := newTestEnv(t, 3)
	m := &StockRound{}
	m.OnStart(env)

	for _, id := range []string{"p1", "p2"} {
		require.True(t, m.Run(Move{ActorID: id, Kind: KindPass}, env).OK)
		assert.Equal(t, StateStockRound, m.Next(env))
	}
	require.True(t, m.Run(Move{ActorID: "p3", Kind: KindPass}, env).OK)
	assert.Equal(t, StateOperatingRound, m.Next(env))
}

func TestTradeResetsPassCount(t *testing.T) {
	env := newTestEnv(t, 3)
	m := &StockRound{}
	m.OnStart(env)

	require.True(t, m.Run(Move{ActorID: "p1", Kind: KindPass}, env).OK)
	require.True(t, m.Run(Move{ActorID: "p2", Kind: KindBuy, CompanyID: "PRR", IPOPrice: 67}, env).OK)
	assert.Zero(t, env.G.Round.ConsecutivePasses)
}

func TestSoldOutBumpAndPriorityDeal(t *testing.T) {
	env := newTestEnv(t, 3)
	m := &StockRound{}
	c := floatTestCompany(t, env, "PRR", "p1", 67)
	c.IPOShares = 0
	env.G.AddHolding(c.ID, "p2", 40)
	env.G.Round.LastDealerID = "p2"

	// Drop the marker off the top row so the bump has somewhere to go.
	startRow, startCol, found := env.Market.PositionOfPrice(77)
	require.True(t, found)
	env.Market.Place(c, startRow, startCol)

	m.OnComplete(env)
	assert.Equal(t, startRow-1, c.Row, "a sold-out company climbs one row")
	assert.Equal(t, "p3", env.G.Round.PriorityDealID, "priority deal passes to the seat after the last dealer")
}

func TestSellPrivateOpensSideAuction(t *testing.T) {
	env := newTestEnv(t, 3)
	m := &StockRound{}
	cs, _ := env.G.PrivateByOrder(2)
	cs.OwnerPlayerID = "p1"

	env.G.Round.StockRoundCount = 1
	res := m.Run(Move{ActorID: "p1", Kind: KindSellPrivate, PrivateOrder: 2}, env)
	requireRejected(t, res)

	env.G.Round.StockRoundCount = 2
	res = m.Run(Move{ActorID: "p1", Kind: KindSellPrivate, PrivateOrder: 2}, env)
	require.True(t, res.OK, "errors: %v", res.Errors)
	assert.False(t, res.TurnDone, "opening an auction does not consume the turn")
	require.NotNil(t, env.G.Auction)
	assert.Equal(t, "CS", env.G.Auction.PrivateID)
	assert.Equal(t, StateAuction, m.Next(env))
}

func TestSellPrivateRequiresOwnership(t *testing.T) {
	env := newTestEnv(t, 3)
	cs, _ := env.G.PrivateByOrder(2)
	cs.OwnerPlayerID = "p2"
	env.G.Round.StockRoundCount = 2

	res := (&StockRound{}).Run(Move{ActorID: "p1", Kind: KindSellPrivate, PrivateOrder: 2}, env)
	requireRejected(t, res)
}

func TestRejectedBuyLeavesNoTrace(t *testing.T) {
	env := newTestEnv(t, 3)
	p1, _ := env.G.PlayerByID("p1")
	before := p1.Cash

	res := (&StockRound{}).Run(Move{ActorID: "p1", Kind: KindBuy, CompanyID: "GHOST"}, env)
	requireRejected(t, res)
	assert.Equal(t, before, p1.Cash)
	assert.Equal(t, 0, env.G.Round.Plays)
	for _, c := range env.G.Companies {
		assert.Equal(t, entity.TotalShares, c.IPOShares)
	}
}
