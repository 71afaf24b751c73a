package tournamentservice

import "errors"

var (
	ErrSessionNotFound = errors.New("tournament session not found")
	ErrUnknownVariant  = errors.New("unknown tournament variant")
	ErrInvalidBuyIn    = errors.New("buy-in is not an offered contest option")
	ErrInvalidPhase    = errors.New("action not allowed in current phase")
	ErrStaleEvent      = errors.New("event refers to a round that has already moved on")
	ErrNotYourSession  = errors.New("session belongs to another account")
)
