package engine

import (
	"fmt"
	"log/slog"

	"ironrails/internal/board"
	"ironrails/internal/entity"
	"ironrails/internal/minigame"
	"ironrails/internal/turnorder"
	"ironrails/internal/variant"
)

// FrameSnapshot is one serialized stack frame.
type FrameSnapshot struct {
	State minigame.State     `json:"state"`
	Gen   turnorder.Snapshot `json:"gen"`
}

// Snapshot is everything needed to resurrect an Engine on top of a
// restored entity aggregate and board.
type Snapshot struct {
	Stack   []FrameSnapshot        `json:"stack"`
	Journal []MoveRecord           `json:"journal,omitempty"`
	Seq     int                    `json:"seq"`
	Board   board.Export           `json:"board"`
	Holders []entity.HoldingRecord `json:"holders,omitempty"`
}

// Snapshot captures the orchestration state. The entity aggregate is
// serialized separately by the store.
func (e *Engine) Snapshot() (Snapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	snap := Snapshot{
		Seq:     e.seq,
		Journal: append([]MoveRecord(nil), e.journal...),
		Holders: e.env.G.HoldingRecords(),
	}
	for _, f := range e.stack {
		gs, ok := turnorder.Export(f.gen)
		if !ok {
			return Snapshot{}, fmt.Errorf("generator for %s is not serializable", f.state)
		}
		snap.Stack = append(snap.Stack, FrameSnapshot{State: f.state, Gen: gs})
	}
	if g, ok := e.env.Board.(*board.Graph); ok {
		snap.Board = g.Export()
	}
	return snap, nil
}

// Restore rebuilds an Engine from a restored aggregate and a snapshot.
// Lifecycle hooks do not re-fire; the game continues exactly where the
// snapshot left it.
func Restore(g *entity.Game, v *variant.Variant, snap Snapshot, logger *slog.Logger) (*Engine, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if len(snap.Stack) == 0 {
		return nil, fmt.Errorf("snapshot has no active state")
	}
	g.LoadHoldings(snap.Holders)
	b := v.Board()
	b.Restore(snap.Board)

	e := &Engine{
		env:     minigame.NewEnv(g, v.Lattice(), b, v, logger),
		table:   minigame.Table(),
		journal: append([]MoveRecord(nil), snap.Journal...),
		seq:     snap.Seq,
		log:     logger,
	}
	for _, fs := range snap.Stack {
		e.stack = append(e.stack, frame{state: fs.State, gen: turnorder.FromSnapshot(fs.Gen)})
	}
	return e, nil
}
