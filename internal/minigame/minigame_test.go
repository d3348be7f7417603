package minigame

import (
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"ironrails/internal/entity"
	"ironrails/internal/variant"
)

// newTestEnv seats n players on the built-in variant with a silent logger.
func newTestEnv(t *testing.T, n int) *Env {
	t.Helper()
	v := variant.Default()
	cash, found := v.StartingCash[n]
	require.True(t, found, "no starting cash for %d players", n)

	g := entity.NewGame()
	for i := 0; i < n; i++ {
		g.Players = append(g.Players, &entity.Player{
			ID:       fmt.Sprintf("p%d", i+1),
			Name:     fmt.Sprintf("Player %d", i+1),
			Cash:     cash,
			OrderIdx: i,
		})
	}
	for _, cs := range v.Companies {
		g.Companies = append(g.Companies, &entity.PublicCompany{
			ID:          cs.ID,
			Name:        cs.Name,
			IPOShares:   entity.TotalShares,
			TokensTotal: cs.Tokens,
			BaseHex:     cs.BaseHex,
		})
	}
	for i, ps := range v.Privates {
		g.Privates = append(g.Privates, &entity.PrivateCompany{
			ID:         ps.ID,
			Order:      i + 1,
			Name:       ps.Name,
			FaceCost:   ps.FaceCost,
			ActualCost: ps.FaceCost,
			Revenue:    ps.Revenue,
		})
	}
	for _, ts := range v.Trains {
		g.TrainSupply[ts.Kind] = ts.Count
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewEnv(g, v.Lattice(), v.Board(), v, logger)
}

// floatTestCompany hand-floats a company the way a completed stock round
// would have: president holds 60%, the marker sits at par, and the
// treasury holds ten times par.
func floatTestCompany(t *testing.T, env *Env, id, presidentID string, par int) *entity.PublicCompany {
	t.Helper()
	c, err := env.G.CompanyByID(id)
	require.NoError(t, err)
	c.PresidentID = presidentID
	c.IPOShares -= 60
	env.G.AddHolding(c.ID, presidentID, 60)
	row, col, found := env.Market.PositionOfPrice(par)
	require.True(t, found, "par %d not on the grid", par)
	env.Market.Place(c, row, col)
	c.Floated = true
	c.Treasury = par * entity.TotalShares / entity.ShareStep
	return c
}

// requireRejected asserts a failed, non-mutating result carrying at
// least one violation.
func requireRejected(t *testing.T, res Result) {
	t.Helper()
	require.False(t, res.OK)
	require.NotEmpty(t, res.Errors)
}
