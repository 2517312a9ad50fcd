// Package session keeps the expand/collapse state of interactive viewers.
//
// Every viewer of the HTTP host (and the terminal explorer) starts from the
// same freshly built tree. What differs between viewers is the sequence of
// toggles they issued, so a [Session] records exactly that and the state is
// rebuilt by replaying it onto a new tree with [Session.Replay].
//
// Stores implement [Store] for different backends:
//   - [MemoryStore]: in-process map for a single HTTP host
//   - [FileStore]: JSON files for the CLI explorer and single-node hosts
//   - [RedisStore]: Redis for several HTTP hosts behind a load balancer
//   - [MongoStore]: MongoDB with a TTL index
//
// # Usage
//
//	sess, err := session.New(session.DefaultTTL)
//	if err != nil {
//	    return err
//	}
//	sess.Record("awake")
//	store.Set(ctx, sess)
//
//	// Later, possibly on another replica
//	sess, err = store.Get(ctx, id)
//	if err != nil {
//	    return err
//	}
//	if sess == nil {
//	    // Unknown or expired: start a new session
//	}
//	t, _ := breakdown.Tree(inputs)
//	skipped := sess.Replay(t)
package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	errs "github.com/matzehuels/weekflow/pkg/errors"
	"github.com/matzehuels/weekflow/pkg/tree"
)

// ErrNotFound is returned by [Require] when a session does not exist or has
// expired.
var ErrNotFound = errors.New("session not found")

// ErrConflict is returned by [Store.Swap] when the stored session has moved
// past the expected version.
var ErrConflict = errors.New("session changed concurrently")

// DefaultTTL is the default session duration.
const DefaultTTL = 24 * time.Hour

// maxToggles bounds the recorded history; older entries are compacted away.
const maxToggles = 512

// Session is the toggle history of one viewer.
type Session struct {
	ID        string    `json:"id" bson:"_id"`
	Toggles   []string  `json:"toggles" bson:"toggles"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
	ExpiresAt time.Time `json:"expires_at" bson:"expires_at"`
	// Version counts successful Swaps.
	Version uint64 `json:"version" bson:"version"`
}

// New creates a session with a random UUID.
func New(ttl time.Duration) (*Session, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInternal, err, "generate session id")
	}
	return newWithID(id.String(), ttl), nil
}

// NewNamed creates a session whose ID is derived from name, so the same name
// always resolves to the same stored session.
func NewNamed(name string, ttl time.Duration) *Session {
	return newWithID(NamedID(name), ttl)
}

// NamedID returns the stable session ID for name.
func NamedID(name string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("weekflow:"+name)).String()
}

func newWithID(id string, ttl time.Duration) *Session {
	now := time.Now()
	return &Session{
		ID:        id,
		CreatedAt: now,
		UpdatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

// IsExpired returns true if the session has expired.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// Touch extends the session by ttl from now.
func (s *Session) Touch(ttl time.Duration) {
	s.UpdatedAt = time.Now()
	s.ExpiresAt = s.UpdatedAt.Add(ttl)
}

// Record appends a toggle to the history.
func (s *Session) Record(nodeID string) {
	s.Toggles = append(s.Toggles, nodeID)
	if len(s.Toggles) > maxToggles {
		s.Compact()
	}
}

// Compact drops toggle pairs that cancel out. Only the parity of each node's
// toggles matters, so the result replays to the same state.
func (s *Session) Compact() {
	odd := make(map[string]bool, len(s.Toggles))
	for _, id := range s.Toggles {
		odd[id] = !odd[id]
	}
	out := s.Toggles[:0]
	seen := make(map[string]bool, len(odd))
	for _, id := range s.Toggles {
		if odd[id] && !seen[id] {
			out = append(out, id)
			seen[id] = true
		}
	}
	s.Toggles = out
}

// Replay applies the recorded toggles to t in order. Node IDs that no longer
// exist are skipped and returned.
func (s *Session) Replay(t *tree.Tree) (skipped []string) {
	for _, id := range s.Toggles {
		if err := t.Toggle(id); err != nil {
			skipped = append(skipped, id)
		}
	}
	return skipped
}

// Store is the interface for session storage backends.
type Store interface {
	// Get retrieves a session by ID.
	// Returns nil, nil if the session doesn't exist or has expired.
	Get(ctx context.Context, sessionID string) (*Session, error)

	// Set stores a session.
	Set(ctx context.Context, session *Session) error

	// Swap stores sess only if the stored copy is missing or still at
	// version prev, and sets sess.Version to prev+1 on success. Otherwise it
	// returns an error wrapping [ErrConflict].
	Swap(ctx context.Context, sess *Session, prev uint64) error

	// Delete removes a session.
	Delete(ctx context.Context, sessionID string) error

	// Cleanup removes expired sessions (may be a no-op for backends with
	// native expiry).
	Cleanup(ctx context.Context) error

	// Close releases backend resources.
	Close() error
}

func conflict(sessionID string, prev uint64) error {
	return errs.Wrap(errs.ErrCodeConflict, ErrConflict, "session %s moved past version %d", sessionID, prev)
}

// Require fetches a session and turns a miss into an error wrapping
// [ErrNotFound] with code SESSION_NOT_FOUND.
func Require(ctx context.Context, store Store, sessionID string) (*Session, error) {
	sess, err := store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, errs.Wrap(errs.ErrCodeSessionNotFound, ErrNotFound, "session %s", sessionID)
	}
	return sess, nil
}
