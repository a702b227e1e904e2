package bfs

import "errors"

var (
	// ErrBadPriority is returned when Edit is called with Fixed strength;
	// editable variables cannot be required.
	ErrBadPriority = errors.New("bfs: priority must not be Fixed for an edit variable")

	// ErrBadEditVariable is returned when Suggest is called on a variable
	// that was never registered via Edit.
	ErrBadEditVariable = errors.New("bfs: variable is not registered as editable")

	// ErrBadTermInConstraint is returned when a constraint references a
	// variable that does not belong to (or has been released from) this
	// System.
	ErrBadTermInConstraint = errors.New("bfs: constraint term references an unknown variable")

	// ErrInfeasible is returned when, after Phase I, a restricted row still
	// has a negative constant. Minimize still runs computeValues and
	// returns best-effort values alongside this error.
	ErrInfeasible = errors.New("bfs: system is infeasible after phase I")

	// ErrIterationLimit is returned when Phase I or Phase II exceeds its
	// hard iteration cap without converging. Minimize still runs
	// computeValues and returns best-effort values alongside this error.
	ErrIterationLimit = errors.New("bfs: iteration cap exceeded")
)
