package entity

import "testing"

func newThreeSeatGame() *Game {
	g := NewGame()
	g.Players = []*Player{
		{ID: "p1", Name: "Ada", Cash: 800, OrderIdx: 0},
		{ID: "p2", Name: "Ben", Cash: 800, OrderIdx: 1},
		{ID: "p3", Name: "Cal", Cash: 800, OrderIdx: 2},
	}
	g.Companies = []*PublicCompany{
		{ID: "PRR", IPOShares: TotalShares},
		{ID: "NYC", IPOShares: TotalShares},
	}
	return g
}

func TestHoldingLedger(t *testing.T) {
	g := newThreeSeatGame()
	g.AddHolding("PRR", "p1", 20)
	g.AddHolding("PRR", "p1", 10)
	if got := g.Holding("PRR", "p1"); got != 30 {
		t.Fatalf("holding = %d, want 30", got)
	}
	g.AddHolding("PRR", "p1", -30)
	if got := g.Holding("PRR", "p1"); got != 0 {
		t.Fatalf("holding after sell-off = %d, want 0", got)
	}
	if recs := g.HoldingRecords(); len(recs) != 0 {
		t.Fatalf("zeroed cell still exported: %v", recs)
	}
}

func TestShareConservation(t *testing.T) {
	g := newThreeSeatGame()
	c := g.Companies[0]
	c.IPOShares -= 30
	g.AddHolding(c.ID, "p1", 20)
	g.AddHolding(c.ID, "p2", 10)
	if !g.ShareConservationOK(c.ID) {
		t.Fatal("conserved split reported as broken")
	}
	c.BankShares += 10
	if g.ShareConservationOK(c.ID) {
		t.Fatal("over-issued split reported as conserved")
	}
	if g.ShareConservationOK("GHOST") {
		t.Fatal("unknown company reported as conserved")
	}
}

func TestCertificateCount(t *testing.T) {
	g := newThreeSeatGame()
	g.Companies[0].PresidentID = "p1"
	g.AddHolding("PRR", "p1", 40) // president 20% block + two 10% certs
	g.AddHolding("NYC", "p1", 20) // two plain 10% certs
	if got := g.CertificateCount("p1"); got != 5 {
		t.Fatalf("certificates = %d, want 5", got)
	}
	if got := g.CertificateCount("p2"); got != 0 {
		t.Fatalf("empty portfolio = %d certificates, want 0", got)
	}
}

func TestCheckPresidentTransfers(t *testing.T) {
	g := newThreeSeatGame()
	c := g.Companies[0]
	c.PresidentID = "p1"
	g.AddHolding(c.ID, "p1", 20)
	g.AddHolding(c.ID, "p2", 30)
	g.CheckPresident(c, PresidentShare)
	if c.PresidentID != "p2" {
		t.Fatalf("president = %q, want p2", c.PresidentID)
	}
}

func TestCheckPresidentKeepsIncumbentOnTie(t *testing.T) {
	g := newThreeSeatGame()
	c := g.Companies[0]
	c.PresidentID = "p1"
	g.AddHolding(c.ID, "p1", 30)
	g.AddHolding(c.ID, "p2", 30)
	g.CheckPresident(c, PresidentShare)
	if c.PresidentID != "p1" {
		t.Fatalf("president = %q, want the incumbent p1", c.PresidentID)
	}
}

func TestCheckPresidentTieBreaksBySeatProximity(t *testing.T) {
	g := newThreeSeatGame()
	c := g.Companies[0]
	c.PresidentID = "p1"
	g.AddHolding(c.ID, "p1", 10)
	g.AddHolding(c.ID, "p2", 30)
	g.AddHolding(c.ID, "p3", 30)
	g.CheckPresident(c, PresidentShare)
	if c.PresidentID != "p2" {
		t.Fatalf("president = %q, want the nearer seat p2", c.PresidentID)
	}
}

func TestCheckPresidentBelowThreshold(t *testing.T) {
	g := newThreeSeatGame()
	c := g.Companies[0]
	g.AddHolding(c.ID, "p1", 10)
	g.CheckPresident(c, PresidentShare)
	if c.PresidentID != "" {
		t.Fatalf("president = %q, want none below threshold", c.PresidentID)
	}
}

func TestRemoveTrains(t *testing.T) {
	c := &PublicCompany{Trains: []Train{
		{Kind: "2"}, {Kind: "3"}, {Kind: "2"},
	}}
	if got := c.RemoveTrains("2"); got != 2 {
		t.Fatalf("removed = %d, want 2", got)
	}
	if len(c.Trains) != 1 || c.Trains[0].Kind != "3" {
		t.Fatalf("remaining trains = %v", c.Trains)
	}
}

func TestPrivateBidding(t *testing.T) {
	p := &PrivateCompany{ID: "SV"}
	p.SetBid("p1", 25)
	p.SetBid("p2", 30)
	p.SetBid("p1", 35)
	if len(p.Bids) != 2 {
		t.Fatalf("bids = %v, want raise not duplicate", p.Bids)
	}
	best, ok := p.MaxBid()
	if !ok || best.PlayerID != "p1" || best.Amount != 35 {
		t.Fatalf("max bid = %+v, want p1 at 35", best)
	}
	p.MarkPassed("p2")
	p.MarkPassed("p2")
	if len(p.Passed) != 1 {
		t.Fatalf("passes = %v, want single entry", p.Passed)
	}
	if live := p.LiveBidders(); len(live) != 1 || live[0] != "p1" {
		t.Fatalf("live bidders = %v, want [p1]", live)
	}
}

func TestHoldingRecordsRoundTrip(t *testing.T) {
	g := newThreeSeatGame()
	g.AddHolding("PRR", "p1", 20)
	g.AddHolding("NYC", "p3", 10)
	recs := g.HoldingRecords()

	fresh := newThreeSeatGame()
	fresh.LoadHoldings(recs)
	if got := fresh.Holding("PRR", "p1"); got != 20 {
		t.Fatalf("restored PRR/p1 = %d, want 20", got)
	}
	if got := fresh.Holding("NYC", "p3"); got != 10 {
		t.Fatalf("restored NYC/p3 = %d, want 10", got)
	}
}

func TestRoundStateRecords(t *testing.T) {
	r := NewRoundState()
	r.RecordBuy("p1", "PRR")
	r.RecordSale("p1", "NYC")
	if !r.BoughtCompany("p1", "PRR") || !r.SoldCompany("p1", "NYC") {
		t.Fatal("round history lost a recorded action")
	}
	if r.BoughtCompany("p1", "NYC") {
		t.Fatal("round history invented a purchase")
	}
	r.NextRound()
	if r.BoughtCompany("p1", "PRR") {
		t.Fatal("round history survived the round boundary")
	}
	if r.Version != 1 {
		t.Fatalf("version = %d, want 1 after one boundary", r.Version)
	}
}
