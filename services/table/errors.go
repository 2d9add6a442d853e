package table

import "errors"

// Typed rejections for player actions. A rejected action leaves the
// table state untouched; the socket layer translates these into error
// events for the acting client only.
var (
	ErrTableFull     = errors.New("table is full")
	ErrWrongPhase    = errors.New("action not allowed in current phase")
	ErrNotYourTurn   = errors.New("not your turn")
	ErrAlreadySeated = errors.New("already seated at this table")
	ErrNotSeated     = errors.New("not seated at this table")
	ErrWagerTooSmall = errors.New("wager below table minimum")
	ErrTableNotFound = errors.New("table not found")
)

// errNoTransition aborts a CAS mutate when the document is no longer
// in the expected pre-transition phase: another actor already
// performed the transition, which is not an error for the engine.
var errNoTransition = errors.New("transition already performed")
