package minigame

import "fmt"

// Result is a minigame's answer to one move. Failures carry every
// independently-checked violation, not just the first, so a client can
// show all problems at once. A failed result guarantees zero mutation.
type Result struct {
	OK     bool     `json:"ok"`
	Errors []string `json:"errors,omitempty"`

	// Next and Reorder are filled by the orchestrator after a success:
	// the next minigame identity and whether turn order must be rebuilt.
	Next    State `json:"next"`
	Reorder bool  `json:"reorder"`

	// TurnDone marks that the acting player/company's turn is consumed.
	TurnDone bool `json:"-"`

	// ConsumeOuter marks that, on returning to an interrupted minigame,
	// the interrupted actor's turn is consumed as well (an accepted
	// side-auction uses up the seller's stock-round turn).
	ConsumeOuter bool `json:"-"`
}

// errs accumulates validation failures during the check phase.
type errs struct {
	list []string
}

func (e *errs) add(format string, args ...any) {
	e.list = append(e.list, fmt.Sprintf(format, args...))
}

func (e *errs) empty() bool { return len(e.list) == 0 }

func (e *errs) fail() Result {
	return Result{OK: false, Errors: e.list}
}

func ok(turnDone bool) Result {
	return Result{OK: true, TurnDone: turnDone}
}
