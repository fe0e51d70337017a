// Package draw implements lead registration and winner selection.
//
// A door moves NoEntries -> HasEntries -> WinnerSelected and a landing
// campaign moves NoLeads -> HasLeads -> WinnerSelected. Both terminal states
// are guarded twice: a read-check that gives callers a fast "already
// selected" answer, and a uniqueness constraint in the store that decides
// the race when two draws run at once. Only the constraint is relied on for
// correctness; the losing draw receives ErrWinnerAlreadySelected.
//
// A landing winner can be hidden, shown or deleted. Deleting it re-opens the
// campaign to a fresh draw. Door winners have no undo path.
package draw
