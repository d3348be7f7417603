package variant

import "ironrails/internal/board"

// Default is the built-in "classic" variant: eight railways, six private
// companies, a nine-by-ten price grid, and a rusting train ladder.
func Default() *Variant {
	return &Variant{
		Name: "classic",
		StartingCash: map[int]int{
			2: 1200, 3: 800, 4: 600, 5: 480, 6: 400,
		},
		CertLimit: map[int]int{
			2: 28, 3: 20, 4: 16, 5: 13, 6: 11,
		},
		IPOPrices:          []int{67, 71, 76, 82, 90, 100},
		PoolCeiling:        50,
		FloatThreshold:     50,
		PresidentThreshold: 20,
		MaxHolding:         60,
		BidIncrement:       5,
		ORPhases:           2,
		Companies: []CompanySpec{
			{ID: "PRR", Name: "Pennsylvania", Tokens: 4, BaseHex: "H12"},
			{ID: "NYC", Name: "New York Central", Tokens: 4, BaseHex: "E19"},
			{ID: "CPR", Name: "Canadian Pacific", Tokens: 4, BaseHex: "A19"},
			{ID: "BO", Name: "Baltimore & Ohio", Tokens: 3, BaseHex: "I15"},
			{ID: "CO", Name: "Chesapeake & Ohio", Tokens: 3, BaseHex: "F6"},
			{ID: "ERIE", Name: "Erie", Tokens: 3, BaseHex: "E11"},
			{ID: "NNH", Name: "New Haven & Hartford", Tokens: 2, BaseHex: "G19"},
			{ID: "BM", Name: "Boston & Maine", Tokens: 2, BaseHex: "E23"},
		},
		Privates: []PrivateSpec{
			{ID: "SV", Name: "Schuylkill Valley", FaceCost: 20, Revenue: 5},
			{ID: "CS", Name: "Champlain & St. Lawrence", FaceCost: 40, Revenue: 10},
			{ID: "DH", Name: "Delaware & Hudson", FaceCost: 70, Revenue: 15},
			{ID: "MH", Name: "Mohawk & Hudson", FaceCost: 110, Revenue: 20},
			{ID: "CA", Name: "Camden & Amboy", FaceCost: 160, Revenue: 25},
			{ID: "BOP", Name: "Baltimore & Ohio Charter", FaceCost: 220, Revenue: 30},
		},
		Trains: []TrainSpec{
			{Kind: "2", Cost: 80, Reach: 2, RustsOn: "4", Count: 6},
			{Kind: "3", Cost: 180, Reach: 3, RustsOn: "6", Count: 5},
			{Kind: "4", Cost: 300, Reach: 4, RustsOn: "D", Count: 4},
			{Kind: "5", Cost: 450, Reach: 5, Count: 3},
			{Kind: "6", Cost: 630, Reach: 6, Count: 2},
			{Kind: "D", Cost: 1100, Reach: 99, Count: 6},
		},
		Grid:  defaultGrid(),
		Hexes: defaultHexes(),
	}
}

// defaultGrid lays out the price lattice. Row 0 is the top (sold-out
// bonuses clamp there); prices fall downward and leftward. The IPO
// ladder prices all sit on row 0.
func defaultGrid() [][]CellSpec {
	prices := [][]int{
		{60, 67, 71, 76, 82, 90, 100, 112, 126, 142},
		{53, 60, 66, 70, 76, 82, 90, 100, 112, 126},
		{46, 55, 60, 65, 70, 77, 83, 91, 101, 113},
		{39, 48, 54, 60, 65, 71, 77, 84, 92, 103},
		{32, 41, 48, 55, 60, 66, 72, 78, 85, 95},
		{25, 34, 42, 50, 56, 62, 67, 72, 79, 88},
		{18, 27, 36, 45, 52, 58, 62, 67, 74, 82},
		{10, 20, 30, 40, 48, 54, 58, 62, 69, 76},
	}
	grid := make([][]CellSpec, len(prices))
	for r, row := range prices {
		grid[r] = make([]CellSpec, len(row))
		for c, p := range row {
			cell := CellSpec{Price: p}
			switch {
			case p < 30:
				cell.Band = "brown"
			case p < 50:
				cell.Band = "yellow"
			}
			// The leftmost column funnels withheld companies downward.
			if c == 0 && r < len(prices)-1 {
				cell.Arrow = "down_left"
			}
			grid[r][c] = cell
		}
	}
	return grid
}

// defaultHexes is a compact eastern-seaboard map: enough cities to token
// and run routes on, not a full prototype board.
func defaultHexes() []board.Location {
	return []board.Location{
		{ID: "A19", Cities: 1, Slots: 2, Revenue: 40, Neighbors: []string{"C17"}},
		{ID: "C17", Towns: 1, Slots: 1, Revenue: 10, Neighbors: []string{"A19", "E19"}},
		{ID: "E19", Cities: 1, Slots: 2, Revenue: 30, Neighbors: []string{"C17", "E23", "G19", "E11"}},
		{ID: "E23", Cities: 1, Slots: 2, Revenue: 30, Neighbors: []string{"E19", "G19"}},
		{ID: "G19", Cities: 2, Slots: 3, Revenue: 50, Neighbors: []string{"E19", "E23", "H16"}},
		{ID: "H16", Towns: 1, Slots: 1, Revenue: 10, Cost: 40, Neighbors: []string{"G19", "H12", "I15"}},
		{ID: "H12", Cities: 1, Slots: 2, Revenue: 30, Neighbors: []string{"H16", "E11", "F6", "I15"}},
		{ID: "I15", Cities: 1, Slots: 2, Revenue: 30, Neighbors: []string{"H16", "H12"}},
		{ID: "E11", Cities: 1, Slots: 1, Revenue: 20, Neighbors: []string{"E19", "H12", "F6"}},
		{ID: "F6", Cities: 1, Slots: 2, Revenue: 40, Cost: 80, Neighbors: []string{"H12", "E11"}},
	}
}
