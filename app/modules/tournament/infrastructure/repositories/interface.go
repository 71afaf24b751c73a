package tournamentdb

import "context"

// Repository stores live sessions. Update serialises mutations per session.
type Repository interface {
	// Create stores a new session.
	Create(ctx context.Context, session *Session) error

	// Get returns a snapshot of a session.
	Get(ctx context.Context, id string) (*Session, error)

	// Update runs fn against a copy of the session while holding that
	// session's lock, and stores the copy when fn returns nil.
	Update(ctx context.Context, id string, fn func(*Session) error) (*Session, error)

	// Delete removes a session.
	Delete(ctx context.Context, id string) error

	// ListByAccount returns the account's sessions, oldest first.
	ListByAccount(ctx context.Context, accountID string) ([]*Session, error)
}
