package tournamentdomain

import "errors"

var (
	// ErrInvalidConfiguration is returned when a tournament cannot be started
	// or advanced because its configuration is incomplete or out of range.
	ErrInvalidConfiguration = errors.New("invalid tournament configuration")

	// ErrEmptyActiveSet is returned when ranking or elimination is requested
	// for a tournament that has no active players left.
	ErrEmptyActiveSet = errors.New("no active players")

	// ErrTournamentFinished is returned by any step invoked after termination.
	ErrTournamentFinished = errors.New("tournament already finished")

	// ErrOutOfOrder is returned when an engine step is invoked in the wrong stage
	// of a round (for example eliminating twice without scoring in between).
	ErrOutOfOrder = errors.New("engine step out of order")

	// ErrInvalidScore is returned for a reported round score outside
	// [0, MaxRoundScore].
	ErrInvalidScore = errors.New("invalid round score")
)
