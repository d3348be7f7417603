// Package turnorder provides the sequencing strategies deciding which
// player or company acts next. Variants differ only in how the initial
// actor list and starting cursor are computed; composition with the
// orchestrator's generator stack is declared per generator.
package turnorder

import "sort"

// Compose tells the orchestrator how to merge a freshly built generator
// with the active stack, so nested interruptions (an auction inside a
// stock round) keep the outer sequence's cursor.
type Compose int

const (
	// Push stacks the new generator on top of the active one.
	Push Compose = iota
	// Replace swaps the top of the stack.
	Replace
	// ResetAll discards the whole stack.
	ResetAll
)

func (c Compose) String() string {
	switch c {
	case Replace:
		return "replace"
	case ResetAll:
		return "reset"
	default:
		return "push"
	}
}

// Generator yields actor identifiers in turn order.
type Generator interface {
	// Current returns the actor whose turn it is, without advancing.
	Current() string
	// Next returns the current actor and advances the cursor, wrapping
	// modulo the actor count.
	Next() string
	// Remove revokes a participant, e.g. a bidder priced out of an
	// auction. Removing the current actor shifts the turn to the next.
	Remove(id string)
	// Len reports how many actors remain.
	Len() int
	// Compose declares how the orchestrator merges this generator with
	// the active stack.
	Compose() Compose
}

type base struct {
	actors  []string
	cursor  int
	compose Compose
}

func (g *base) Current() string {
	if len(g.actors) == 0 {
		return ""
	}
	return g.actors[g.cursor]
}

func (g *base) Next() string {
	if len(g.actors) == 0 {
		return ""
	}
	id := g.actors[g.cursor]
	g.cursor = (g.cursor + 1) % len(g.actors)
	return id
}

func (g *base) Remove(id string) {
	for i, a := range g.actors {
		if a != id {
			continue
		}
		g.actors = append(g.actors[:i], g.actors[i+1:]...)
		if len(g.actors) == 0 {
			g.cursor = 0
			return
		}
		if i < g.cursor {
			g.cursor--
		}
		if g.cursor >= len(g.actors) {
			g.cursor = 0
		}
		return
	}
}

func (g *base) Len() int         { return len(g.actors) }
func (g *base) Compose() Compose { return g.compose }

// NewRoundRobin is the plain wrapping sequence over the given actors,
// starting at the first. Used for the initial private-company sale.
func NewRoundRobin(actors []string) Generator {
	return &base{actors: append([]string(nil), actors...), compose: ResetAll}
}

// NewPivot starts the sequence at the given actor, preserving seat order.
// Used for stock rounds, where the priority-deal holder opens.
func NewPivot(actors []string, startID string) Generator {
	g := &base{actors: append([]string(nil), actors...), compose: ResetAll}
	for i, a := range g.actors {
		if a == startID {
			g.cursor = i
			break
		}
	}
	return g
}

// NewAfterOwner asks every actor except owner, left to right starting
// with the seat after the owner. Used for player-initiated private
// company auctions, which interrupt the stock round.
func NewAfterOwner(actors []string, ownerID string) Generator {
	ownerAt := -1
	for i, a := range actors {
		if a == ownerID {
			ownerAt = i
			break
		}
	}
	var seq []string
	n := len(actors)
	for i := 1; i <= n; i++ {
		a := actors[(ownerAt+i)%n]
		if a != ownerID {
			seq = append(seq, a)
		}
	}
	return &base{actors: seq, compose: Push}
}

// NewRestricted keeps only the listed participants, in the given order.
// Used for bidding rounds limited to live bidders.
func NewRestricted(bidders []string) Generator {
	return &base{actors: append([]string(nil), bidders...), compose: Push}
}

// NewSingle yields one actor until replaced. Used for the auction
// owner's accept/reject decision and for TrainsRusted interludes.
func NewSingle(id string) Generator {
	return &base{actors: []string{id}, compose: Push}
}

// ByPrice orders company ids by price descending, breaking ties by lower
// lattice row (the company that reached the price earlier). The result
// feeds an operating-round generator.
type PricedActor struct {
	ID    string
	Price int
	Row   int
}

// Snapshot is the serializable form of a generator, used by game
// persistence.
type Snapshot struct {
	Actors  []string `json:"actors"`
	Cursor  int      `json:"cursor"`
	Compose Compose  `json:"compose"`
}

// Export captures a generator built by this package. The second result
// is false for foreign implementations.
func Export(g Generator) (Snapshot, bool) {
	b, ok := g.(*base)
	if !ok {
		return Snapshot{}, false
	}
	return Snapshot{
		Actors:  append([]string(nil), b.actors...),
		Cursor:  b.cursor,
		Compose: b.compose,
	}, true
}

// FromSnapshot rebuilds a generator captured by Export.
func FromSnapshot(s Snapshot) Generator {
	g := &base{
		actors:  append([]string(nil), s.Actors...),
		cursor:  s.Cursor,
		compose: s.Compose,
	}
	if g.cursor >= len(g.actors) {
		g.cursor = 0
	}
	return g
}

// NewOperating sequences floated companies in stock-price descending
// order for one operating round. It replaces the top of the stack so a
// repeated round reshuffles in place.
func NewOperating(actors []PricedActor) Generator {
	sorted := append([]PricedActor(nil), actors...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Price != sorted[j].Price {
			return sorted[i].Price > sorted[j].Price
		}
		return sorted[i].Row < sorted[j].Row
	})
	ids := make([]string, len(sorted))
	for i, a := range sorted {
		ids[i] = a.ID
	}
	return &base{actors: ids, compose: Replace}
}
