// Package session keeps per-client interactive state for the HTTP surface.
//
// Every browser tab talking to `flowprof serve` owns one [Session] holding a
// [surface.State]. Requests are concurrent, so stores synchronise access;
// each event replaces a session's state wholesale.
//
// Two backends are provided:
//   - [MemoryStore]: in-process map, the default
//   - [FileStore]: JSON files in a directory, so sessions survive restarts
//
// # Usage
//
//	store := session.NewMemoryStore()
//	sess := session.New(surface.Initial(rep), session.DefaultTTL)
//	_ = store.Set(ctx, sess)
//
//	sess, err := store.Get(ctx, id)
//	if err != nil {
//	    return err
//	}
//	if sess == nil {
//	    // unknown or expired
//	}
package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/flowprof/pkg/surface"
)

// ErrInvalidID is returned for session IDs that are not UUIDs.
var ErrInvalidID = errors.New("invalid session id")

// DefaultTTL is how long an idle session is kept.
const DefaultTTL = 12 * time.Hour

// Session is the state of one client.
type Session struct {
	ID        string        `json:"id"`
	State     surface.State `json:"state"`
	CreatedAt time.Time     `json:"created_at"`
	ExpiresAt time.Time     `json:"expires_at"`
}

// IsExpired returns true if the session has expired.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// Touch replaces the state and extends the expiry by ttl.
func (s *Session) Touch(state surface.State, ttl time.Duration) {
	s.State = state
	s.ExpiresAt = time.Now().Add(ttl)
}

// New creates a session with a random ID.
func New(state surface.State, ttl time.Duration) *Session {
	now := time.Now()
	return &Session{
		ID:        uuid.NewString(),
		State:     state,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

// ValidateID checks that id is a UUID. Stores call it before using an ID
// in a file name or key.
func ValidateID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrInvalidID
	}
	return nil
}

// Store is the interface for session storage backends.
type Store interface {
	// Get retrieves a session by ID.
	// Returns nil, nil if the session doesn't exist or has expired.
	Get(ctx context.Context, id string) (*Session, error)

	// Set stores a session.
	Set(ctx context.Context, s *Session) error

	// Delete removes a session.
	Delete(ctx context.Context, id string) error

	// Cleanup removes expired sessions.
	Cleanup(ctx context.Context) error
}
