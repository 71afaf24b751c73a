package tournamentdb

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
)

var (
	// ErrNotFound is returned when a session does not exist.
	ErrNotFound = errors.New("session not found")
	// ErrAlreadyExists is returned when creating a session twice.
	ErrAlreadyExists = errors.New("session already exists")
)

type entry struct {
	mu      sync.Mutex
	session *Session
	deleted bool
}

// MemoryRepository keeps sessions in process memory.
type MemoryRepository struct {
	mu       sync.RWMutex
	sessions map[string]*entry
}

// NewRepository creates an empty in-memory repository.
func NewRepository() Repository {
	return &MemoryRepository{sessions: make(map[string]*entry)}
}

func (r *MemoryRepository) lookup(id string) (*entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return e, nil
}

// Create stores a new session.
func (r *MemoryRepository) Create(ctx context.Context, session *Session) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[session.ID]; ok {
		return fmt.Errorf("%w: %s", ErrAlreadyExists, session.ID)
	}
	r.sessions[session.ID] = &entry{session: session.Clone()}
	return nil
}

// Get returns a snapshot of a session.
func (r *MemoryRepository) Get(ctx context.Context, id string) (*Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	e, err := r.lookup(id)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.deleted {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return e.session.Clone(), nil
}

// Update mutates a session under its own lock.
func (r *MemoryRepository) Update(ctx context.Context, id string, fn func(*Session) error) (*Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	e, err := r.lookup(id)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.deleted {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	working := e.session.Clone()
	if err := fn(working); err != nil {
		return nil, err
	}
	e.session = working
	return working.Clone(), nil
}

// Delete removes a session.
func (r *MemoryRepository) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	e, ok := r.sessions[id]
	if ok {
		delete(r.sessions, id)
	}
	r.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	e.mu.Lock()
	e.deleted = true
	e.mu.Unlock()
	return nil
}

// ListByAccount returns the account's sessions, oldest first.
func (r *MemoryRepository) ListByAccount(ctx context.Context, accountID string) ([]*Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	entries := make([]*entry, 0, len(r.sessions))
	for _, e := range r.sessions {
		entries = append(entries, e)
	}
	r.mu.RUnlock()

	var out []*Session
	for _, e := range entries {
		e.mu.Lock()
		if !e.deleted && e.session.AccountID == accountID {
			out = append(out, e.session.Clone())
		}
		e.mu.Unlock()
	}
	slices.SortFunc(out, func(a, b *Session) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out, nil
}
