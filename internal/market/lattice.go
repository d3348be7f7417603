// Package market implements the 2-D stock-market lattice. A company's
// price is its marker position on the grid, never a bare number; price
// changes are marker movements with clamping at every edge.
package market

import "ironrails/internal/entity"

// Band is a cell's color band, which modulates payout movement.
type Band int

const (
	BandWhite Band = iota
	BandYellow
	BandBrown
)

func (b Band) String() string {
	switch b {
	case BandYellow:
		return "yellow"
	case BandBrown:
		return "brown"
	default:
		return "white"
	}
}

// Direction is one lattice step. Rows grow downward, columns rightward;
// down means a lower price, right a higher one.
type Direction int

const (
	None Direction = iota
	Up
	Down
	Left
	Right
	UpRight
	DownLeft
)

func (d Direction) delta() (dr, dc int) {
	switch d {
	case Up:
		return -1, 0
	case Down:
		return 1, 0
	case Left:
		return 0, -1
	case Right:
		return 0, 1
	case UpRight:
		return -1, 1
	case DownLeft:
		return 1, -1
	}
	return 0, 0
}

// Cell is one grid position: a price, a color band, and an optional
// directional arrow overriding the default payout/withhold movement.
type Cell struct {
	Price int
	Band  Band
	Arrow Direction
}

// Lattice is the rectangular price grid. Ragged variant layouts are
// normalized at construction; out-of-row positions clamp like edges.
type Lattice struct {
	cells [][]Cell
}

// New builds a lattice from row-major cells. At least one non-empty row
// is required by every variant; callers validate their static data.
func New(cells [][]Cell) *Lattice {
	return &Lattice{cells: cells}
}

func (l *Lattice) Rows() int { return len(l.cells) }

func (l *Lattice) Cols(row int) int {
	if row < 0 || row >= len(l.cells) {
		return 0
	}
	return len(l.cells[row])
}

// At returns the cell at the given position. Positions are always kept
// in bounds by the movement functions.
func (l *Lattice) At(row, col int) Cell {
	return l.cells[row][col]
}

func (l *Lattice) inBounds(row, col int) bool {
	return row >= 0 && row < len(l.cells) && col >= 0 && col < len(l.cells[row])
}

// Price reads the price under the company's marker.
func (l *Lattice) Price(c *entity.PublicCompany) int {
	if !l.inBounds(c.Row, c.Col) {
		return 0
	}
	return l.cells[c.Row][c.Col].Price
}

// Place puts the marker on a cell and syncs the company's price fields.
func (l *Lattice) Place(c *entity.PublicCompany, row, col int) {
	if !l.inBounds(row, col) {
		return
	}
	c.Row, c.Col = row, col
	l.sync(c)
}

// PositionOfPrice finds the topmost-leftmost cell carrying the price,
// used to seat a marker at a chosen IPO price.
func (l *Lattice) PositionOfPrice(price int) (row, col int, ok bool) {
	for r := range l.cells {
		for cl := range l.cells[r] {
			if l.cells[r][cl].Price == price {
				return r, cl, true
			}
		}
	}
	return 0, 0, false
}

// MoveMarker steps the marker one cell at a time in the direction. It
// stops early, without wrapping or erroring, if the next step would leave
// the grid.
func (l *Lattice) MoveMarker(c *entity.PublicCompany, dir Direction, steps int) {
	for i := 0; i < steps; i++ {
		dr, dc := dir.delta()
		nr, nc := c.Row+dr, c.Col+dc
		if !l.inBounds(nr, nc) {
			break
		}
		c.Row, c.Col = nr, nc
	}
	l.sync(c)
}

// OnSale depresses the price by one row per 10% sold.
func (l *Lattice) OnSale(c *entity.PublicCompany, percentageSold int) {
	l.MoveMarker(c, Down, percentageSold/entity.ShareStep)
}

// OnWithhold moves left, or down-left when the current cell's arrow says
// so. When the diagonal is blocked by the left edge the marker falls
// straight down instead. A receiverless withhold (no legal dividend
// recipient) drops one additional row.
func (l *Lattice) OnWithhold(c *entity.PublicCompany, receiverless bool) {
	dir := Left
	if l.inBounds(c.Row, c.Col) && l.At(c.Row, c.Col).Arrow == DownLeft {
		dir = DownLeft
		if !l.inBounds(c.Row+1, c.Col-1) {
			dir = Down
		}
	}
	l.MoveMarker(c, dir, 1)
	if receiverless {
		l.MoveMarker(c, Down, 1)
	}
}

// OnPayout advances the marker after a paid dividend: follow the cell's
// arrow when present, otherwise right, or up-right on a brown cell.
// Yellow cells never move on payout.
func (l *Lattice) OnPayout(c *entity.PublicCompany) {
	if !l.inBounds(c.Row, c.Col) {
		return
	}
	cell := l.At(c.Row, c.Col)
	if cell.Band == BandYellow {
		return
	}
	dir := Right
	switch {
	case cell.Arrow != None:
		dir = cell.Arrow
	case cell.Band == BandBrown:
		dir = UpRight
	}
	l.MoveMarker(c, dir, 1)
}

// OnSoldOut bumps the marker one row up unless already at the top.
func (l *Lattice) OnSoldOut(c *entity.PublicCompany) {
	l.MoveMarker(c, Up, 1)
}

// sync mirrors the cell price into the company's per-source price fields.
func (l *Lattice) sync(c *entity.PublicCompany) {
	if !l.inBounds(c.Row, c.Col) {
		return
	}
	p := l.cells[c.Row][c.Col].Price
	c.IPOPrice = p
	c.BankPrice = p
}
