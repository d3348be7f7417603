// Package variant carries the static configuration of one game variant:
// company and private rosters, the stock-market grid, the train roster
// with rust triggers, certificate limits, and the money constants. It is
// loaded once at game start and handed to the core as plain data.
package variant

import (
	"encoding/json"
	"fmt"
	"os"

	"ironrails/internal/board"
	"ironrails/internal/market"
)

type CompanySpec struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Tokens  int    `json:"tokens"`
	BaseHex string `json:"base_hex"`
}

type PrivateSpec struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	FaceCost int    `json:"face_cost"`
	Revenue  int    `json:"revenue"`
}

type TrainSpec struct {
	Kind    string `json:"kind"`
	Cost    int    `json:"cost"`
	Reach   int    `json:"reach"`
	RustsOn string `json:"rusts_on,omitempty"`
	Count   int    `json:"count"`
}

// CellSpec is one lattice cell in serializable form.
type CellSpec struct {
	Price int    `json:"price"`
	Band  string `json:"band,omitempty"`  // "", "yellow", "brown"
	Arrow string `json:"arrow,omitempty"` // "", "down_left", "up_right"
}

type Variant struct {
	Name string `json:"name"`

	// StartingCash and CertLimit are indexed by player count.
	StartingCash map[int]int `json:"starting_cash"`
	CertLimit    map[int]int `json:"cert_limit"`

	IPOPrices []int `json:"ipo_prices"`

	PoolCeiling        int `json:"pool_ceiling"`
	FloatThreshold     int `json:"float_threshold"`
	PresidentThreshold int `json:"president_threshold"`
	MaxHolding         int `json:"max_holding"`
	BidIncrement       int `json:"bid_increment"`

	// ORPhases is how many operating rounds run between stock rounds.
	ORPhases int `json:"or_phases"`

	Companies []CompanySpec    `json:"companies"`
	Privates  []PrivateSpec    `json:"privates"`
	Trains    []TrainSpec      `json:"trains"`
	Grid      [][]CellSpec     `json:"grid"`
	Hexes     []board.Location `json:"hexes"`
}

// Load reads a variant definition from a JSON file.
func Load(path string) (*Variant, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read variant: %w", err)
	}
	var v Variant
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("parse variant: %w", err)
	}
	if err := v.Validate(); err != nil {
		return nil, err
	}
	return &v, nil
}

// Validate rejects variants the core cannot run on.
func (v *Variant) Validate() error {
	if len(v.Grid) == 0 || len(v.Grid[0]) == 0 {
		return fmt.Errorf("variant %q: empty stock-market grid", v.Name)
	}
	if len(v.Companies) == 0 {
		return fmt.Errorf("variant %q: no public companies", v.Name)
	}
	if len(v.IPOPrices) == 0 {
		return fmt.Errorf("variant %q: no IPO price ladder", v.Name)
	}
	if v.ORPhases <= 0 {
		return fmt.Errorf("variant %q: or_phases must be positive", v.Name)
	}
	for n := range v.StartingCash {
		if _, ok := v.CertLimit[n]; !ok {
			return fmt.Errorf("variant %q: no certificate limit for %d players", v.Name, n)
		}
	}
	return nil
}

// ValidIPOPrice reports whether the price is on the variant's ladder.
func (v *Variant) ValidIPOPrice(price int) bool {
	for _, p := range v.IPOPrices {
		if p == price {
			return true
		}
	}
	return false
}

// Lattice builds the market lattice from the grid spec.
func (v *Variant) Lattice() *market.Lattice {
	cells := make([][]market.Cell, len(v.Grid))
	for r, row := range v.Grid {
		cells[r] = make([]market.Cell, len(row))
		for c, spec := range row {
			cell := market.Cell{Price: spec.Price}
			switch spec.Band {
			case "yellow":
				cell.Band = market.BandYellow
			case "brown":
				cell.Band = market.BandBrown
			}
			switch spec.Arrow {
			case "down_left":
				cell.Arrow = market.DownLeft
			case "up_right":
				cell.Arrow = market.UpRight
			}
			cells[r][c] = cell
		}
	}
	return market.New(cells)
}

// Board builds a fresh board graph from the hex roster.
func (v *Variant) Board() *board.Graph {
	return board.NewGraph(v.Hexes)
}

// TrainRoster expands the train specs into the bank's for-sale queue,
// cheapest first.
func (v *Variant) TrainRoster() []TrainSpec {
	return v.Trains
}
