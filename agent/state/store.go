package state

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	contractx "github.com/tanpawarit/Deskive-Supervised-Support-Workflow/agent/contract"
)

var ErrSessionNotFound = errors.New("session not found")

const (
	defaultSessionTTL = 30 * time.Minute
)

// Store is the session persistence contract used by the orchestrator.
//
// Acquire serializes turns within a session: the caller must hold the
// returned release for the whole turn. All other methods are safe to call
// concurrently across sessions.
type Store interface {
	GetOrCreate(ctx context.Context, sessionID string) (*Session, error)
	Append(ctx context.Context, sessionID string, turn Turn) error
	History(ctx context.Context, sessionID string, limit int) ([]contractx.HistoryEntry, error)
	Reset(ctx context.Context, sessionID string) error
	Terminate(ctx context.Context, sessionID string) error
	Acquire(ctx context.Context, sessionID string) (release func(), err error)
}

// StoreOption customizes MemoryStore.
type StoreOption func(*MemoryStore)

// WithTTL sets the inactivity window after which a session may be evicted.
// Zero disables eviction.
func WithTTL(ttl time.Duration) StoreOption {
	return func(s *MemoryStore) {
		s.ttl = ttl
	}
}

func WithClock(now func() time.Time) StoreOption {
	return func(s *MemoryStore) {
		if now != nil {
			s.now = now
		}
	}
}

type sessionEntry struct {
	// turnMu is held across a whole turn; EvictExpired only removes an
	// entry when it can take this lock, so a session is never purged
	// mid-turn.
	turnMu sync.Mutex

	// dataMu guards Turns and the session flags for readers that do not
	// hold turnMu.
	dataMu sync.RWMutex

	sess     *Session
	lastSeen time.Time
}

// MemoryStore keeps sessions in process memory. Creation is exactly-once
// per id even under concurrent first access.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]*sessionEntry

	creating singleflight.Group
	ttl      time.Duration
	now      func() time.Time
}

func NewMemoryStore(opts ...StoreOption) *MemoryStore {
	s := &MemoryStore{
		entries: make(map[string]*sessionEntry),
		ttl:     defaultSessionTTL,
		now:     time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *MemoryStore) GetOrCreate(ctx context.Context, sessionID string) (*Session, error) {
	entry, err := s.entry(sessionID, true)
	if err != nil {
		return nil, err
	}
	return entry.sess, nil
}

func (s *MemoryStore) Append(ctx context.Context, sessionID string, turn Turn) error {
	if !turn.Finalized() {
		return ErrTurnNotTerminal
	}
	if err := turn.Validate(); err != nil {
		return err
	}

	entry, err := s.entry(sessionID, false)
	if err != nil {
		return err
	}

	entry.dataMu.Lock()
	defer entry.dataMu.Unlock()
	entry.sess.Turns = append(entry.sess.Turns, turn)
	entry.sess.Touch(s.now())
	entry.lastSeen = s.now()
	return nil
}

func (s *MemoryStore) History(ctx context.Context, sessionID string, limit int) ([]contractx.HistoryEntry, error) {
	entry, err := s.entry(sessionID, false)
	if err != nil {
		return nil, err
	}

	entry.dataMu.RLock()
	defer entry.dataMu.RUnlock()
	return entry.sess.History(limit), nil
}

func (s *MemoryStore) Reset(ctx context.Context, sessionID string) error {
	entry, err := s.entry(sessionID, false)
	if err != nil {
		return err
	}

	entry.dataMu.Lock()
	defer entry.dataMu.Unlock()
	entry.sess.Reset(s.now())
	entry.lastSeen = s.now()
	return nil
}

func (s *MemoryStore) Terminate(ctx context.Context, sessionID string) error {
	entry, err := s.entry(sessionID, false)
	if err != nil {
		return err
	}

	entry.dataMu.Lock()
	defer entry.dataMu.Unlock()
	entry.sess.Terminated = true
	entry.sess.Touch(s.now())
	entry.lastSeen = s.now()
	return nil
}

func (s *MemoryStore) Acquire(ctx context.Context, sessionID string) (func(), error) {
	entry, err := s.entry(sessionID, true)
	if err != nil {
		return nil, err
	}

	entry.turnMu.Lock()
	released := false
	return func() {
		if released {
			return
		}
		released = true
		entry.dataMu.Lock()
		entry.lastSeen = s.now()
		entry.dataMu.Unlock()
		entry.turnMu.Unlock()
	}, nil
}

// EvictExpired removes sessions inactive beyond the TTL. Sessions whose
// turn lock is held are skipped. Returns the number of evicted sessions.
func (s *MemoryStore) EvictExpired() int {
	if s.ttl <= 0 {
		return 0
	}
	cutoff := s.now().Add(-s.ttl)

	s.mu.Lock()
	defer s.mu.Unlock()

	evicted := 0
	for id, entry := range s.entries {
		if !entry.turnMu.TryLock() {
			continue
		}
		entry.dataMu.RLock()
		expired := entry.lastSeen.Before(cutoff)
		entry.dataMu.RUnlock()
		if expired {
			delete(s.entries, id)
			evicted++
		}
		entry.turnMu.Unlock()
	}
	return evicted
}

func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func (s *MemoryStore) entry(sessionID string, create bool) (*sessionEntry, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, ErrInvalidSession
	}

	s.mu.RLock()
	entry, ok := s.entries[sessionID]
	s.mu.RUnlock()
	if ok {
		return entry, nil
	}
	if !create {
		return nil, ErrSessionNotFound
	}

	// singleflight collapses concurrent first accesses so exactly one
	// Session is ever constructed per id.
	v, err, _ := s.creating.Do(sessionID, func() (any, error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		if entry, ok := s.entries[sessionID]; ok {
			return entry, nil
		}
		entry := &sessionEntry{
			sess:     NewSession(sessionID, s.now()),
			lastSeen: s.now(),
		}
		s.entries[sessionID] = entry
		return entry, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*sessionEntry), nil
}
