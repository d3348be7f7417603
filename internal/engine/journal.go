package engine

import (
	"time"

	"ironrails/internal/minigame"
)

// MoveRecord is one journal entry: the move as submitted, the state that
// judged it, and the verdict. Rejected moves are journaled too; replaying
// only the accepted ones reproduces the game.
type MoveRecord struct {
	Seq    int            `json:"seq"`
	State  string         `json:"state"`
	Move   minigame.Move  `json:"move"`
	Kind   string         `json:"kind"`
	OK     bool           `json:"ok"`
	Errors []string       `json:"errors,omitempty"`
	Next   string         `json:"next"`
	At     time.Time      `json:"at"`
}

func (e *Engine) record(mv minigame.Move, s minigame.State, res minigame.Result) {
	e.seq++
	e.journal = append(e.journal, MoveRecord{
		Seq:    e.seq,
		State:  s.String(),
		Move:   mv,
		Kind:   mv.Kind.String(),
		OK:     res.OK,
		Errors: res.Errors,
		Next:   res.Next.String(),
		At:     time.Now().UTC(),
	})
}

// Journal returns a copy of the move journal.
func (e *Engine) Journal() []MoveRecord {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]MoveRecord(nil), e.journal...)
}
