// Package board supplies the map collaborator consumed by the operating
// round. The rules core only depends on the Map interface; Graph is a
// simplified hex-map implementation good enough to play on, not a
// prototype-accurate pathfinder.
package board

// TileColor is the upgrade progression of a hex. Yellow must precede
// brown, brown must precede red.
type TileColor int

const (
	ColorNone TileColor = iota
	ColorYellow
	ColorBrown
	ColorRed
)

func (t TileColor) String() string {
	switch t {
	case ColorYellow:
		return "yellow"
	case ColorBrown:
		return "brown"
	case ColorRed:
		return "red"
	default:
		return "none"
	}
}

// ParseTileColor maps a wire string to a TileColor.
func ParseTileColor(s string) (TileColor, bool) {
	switch s {
	case "yellow":
		return ColorYellow, true
	case "brown":
		return ColorBrown, true
	case "red":
		return ColorRed, true
	}
	return ColorNone, false
}

// Location is the static description of one hex.
type Location struct {
	ID        string   `json:"id"`
	Cities    int      `json:"cities"`
	Towns     int      `json:"towns"`
	Slots     int      `json:"slots"`
	Revenue   int      `json:"revenue"`
	Cost      int      `json:"cost"`
	OwnedBy   string   `json:"owned_by,omitempty"`
	Neighbors []string `json:"neighbors"`
}

// Map is everything the operating round asks of the board: the
// route-oracle queries plus the track/token bookkeeping behind them.
type Map interface {
	// PathExists reports whether laid track connects the two hexes.
	PathExists(from, to string) bool
	// RouteCost values a route: the total revenue of its stops.
	RouteCost(stops []string) int

	Location(id string) (Location, bool)
	Tile(hexID string) TileColor
	LayTrack(hexID string, color TileColor)
	Tokens(hexID string) []string
	PlaceToken(hexID, companyID string)
	HasToken(hexID, companyID string) bool
	TokenHexes(companyID string) []string
	Connected(companyID, hexID string) bool
}

// Graph is the concrete Map: locations, laid tiles, and placed tokens.
type Graph struct {
	locs   map[string]Location
	tiles  map[string]TileColor
	tokens map[string][]string
}

// NewGraph builds a board from static location data. Tiles and tokens
// start empty.
func NewGraph(locs []Location) *Graph {
	g := &Graph{
		locs:   make(map[string]Location, len(locs)),
		tiles:  make(map[string]TileColor),
		tokens: make(map[string][]string),
	}
	for _, l := range locs {
		g.locs[l.ID] = l
	}
	return g
}

func (g *Graph) Location(id string) (Location, bool) {
	l, ok := g.locs[id]
	return l, ok
}

func (g *Graph) Tile(hexID string) TileColor {
	return g.tiles[hexID]
}

func (g *Graph) LayTrack(hexID string, color TileColor) {
	g.tiles[hexID] = color
}

func (g *Graph) Tokens(hexID string) []string {
	return g.tokens[hexID]
}

func (g *Graph) PlaceToken(hexID, companyID string) {
	g.tokens[hexID] = append(g.tokens[hexID], companyID)
}

func (g *Graph) HasToken(hexID, companyID string) bool {
	for _, id := range g.tokens[hexID] {
		if id == companyID {
			return true
		}
	}
	return false
}

// TokenHexes lists every hex carrying one of the company's stations.
func (g *Graph) TokenHexes(companyID string) []string {
	var out []string
	for hex, owners := range g.tokens {
		for _, id := range owners {
			if id == companyID {
				out = append(out, hex)
				break
			}
		}
	}
	return out
}

// tracked reports whether the hex carries any tile.
func (g *Graph) tracked(hexID string) bool {
	return g.tiles[hexID] != ColorNone
}

// PathExists walks laid track between the two hexes. Both endpoints must
// carry track.
func (g *Graph) PathExists(from, to string) bool {
	if !g.tracked(from) || !g.tracked(to) {
		return false
	}
	if from == to {
		return true
	}
	seen := map[string]bool{from: true}
	queue := []string{from}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		loc, ok := g.locs[cur]
		if !ok {
			continue
		}
		for _, n := range loc.Neighbors {
			if seen[n] || !g.tracked(n) {
				continue
			}
			if n == to {
				return true
			}
			seen[n] = true
			queue = append(queue, n)
		}
	}
	return false
}

// Connected reports whether the hex is reachable from any of the
// company's station tokens over laid track.
func (g *Graph) Connected(companyID, hexID string) bool {
	for hex, owners := range g.tokens {
		for _, id := range owners {
			if id != companyID {
				continue
			}
			if hex == hexID || g.PathExists(hex, hexID) {
				return true
			}
		}
	}
	return false
}

// RouteCost sums the revenue of every stop on the route.
func (g *Graph) RouteCost(stops []string) int {
	total := 0
	for _, s := range stops {
		if loc, ok := g.locs[s]; ok {
			total += loc.Revenue
		}
	}
	return total
}

// Export captures the mutable board state for persistence.
type Export struct {
	Tiles  map[string]TileColor `json:"tiles"`
	Tokens map[string][]string  `json:"tokens"`
}

func (g *Graph) Export() Export {
	out := Export{
		Tiles:  make(map[string]TileColor, len(g.tiles)),
		Tokens: make(map[string][]string, len(g.tokens)),
	}
	for k, v := range g.tiles {
		out.Tiles[k] = v
	}
	for k, v := range g.tokens {
		out.Tokens[k] = append([]string(nil), v...)
	}
	return out
}

func (g *Graph) Restore(e Export) {
	g.tiles = make(map[string]TileColor, len(e.Tiles))
	for k, v := range e.Tiles {
		g.tiles[k] = v
	}
	g.tokens = make(map[string][]string, len(e.Tokens))
	for k, v := range e.Tokens {
		g.tokens[k] = append([]string(nil), v...)
	}
}
