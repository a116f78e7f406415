// Package store keeps the live veto sessions, one per channel key.
// Operations on a single key are serialized; different keys proceed in
// parallel. Every successful mutation re-arms the key's inactivity
// timer, and an expired or completed session is evicted atomically with
// its timer so no stray expiry can reference a defunct session.
package store

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"mapveto/internal/clock"
	"mapveto/internal/domain"
)

// ExpiryFunc is notified, best-effort, after an idle session has been
// discarded. It runs outside all store locks.
type ExpiryFunc func(key string, idle time.Duration)

// Store holds sessions keyed by channel ID.
type Store struct {
	idle     time.Duration
	clk      clock.Clock
	onExpire ExpiryFunc
	log      *logrus.Logger

	mu      sync.Mutex
	entries map[string]*entry
}

type entry struct {
	mu      sync.Mutex
	session *domain.Session
	timer   clock.Timer
	// gen invalidates stale timer callbacks after a re-arm.
	gen int
	// gone marks an evicted entry so a waiter that raced eviction
	// retries against a fresh one.
	gone bool
}

// New builds a Store. onExpire may be nil; log must not be.
func New(idle time.Duration, clk clock.Clock, onExpire ExpiryFunc, log *logrus.Logger) *Store {
	return &Store{
		idle:     idle,
		clk:      clk,
		onExpire: onExpire,
		log:      log,
		entries:  make(map[string]*entry),
	}
}

// Update runs fn on the key's session under the key's lock, creating an
// empty session on first access. When fn succeeds it either re-arms the
// inactivity timer or, if fn reports destroy, evicts the session and
// cancels the timer. When fn returns an error the session and timer are
// left exactly as they were.
func (s *Store) Update(key string, fn func(sess *domain.Session) (destroy bool, err error)) error {
	for {
		e := s.acquire(key)
		e.mu.Lock()
		if e.gone {
			e.mu.Unlock()
			continue
		}

		destroy, err := fn(e.session)
		switch {
		case err != nil:
			// leave state and timer untouched
		case destroy:
			s.evict(key, e)
		default:
			s.arm(key, e)
		}
		e.mu.Unlock()
		return err
	}
}

// Peek runs fn read-only against the key's session without creating,
// destroying, or touching its timer. Absent keys observe an empty
// session. Used for autocomplete listings.
func (s *Store) Peek(key string, fn func(sess *domain.Session)) {
	s.mu.Lock()
	e, ok := s.entries[key]
	s.mu.Unlock()
	if !ok {
		fn(&domain.Session{})
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.gone {
		fn(&domain.Session{})
		return
	}
	fn(e.session)
}

// Destroy discards the key's session and cancels its timer. Idempotent;
// destroying an absent key is a no-op.
func (s *Store) Destroy(key string) {
	s.mu.Lock()
	e, ok := s.entries[key]
	s.mu.Unlock()
	if !ok {
		return
	}
	e.mu.Lock()
	if !e.gone {
		s.evict(key, e)
	}
	e.mu.Unlock()
}

// acquire returns the live entry for key, creating one if needed.
func (s *Store) acquire(key string) *entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok {
		e = &entry{session: &domain.Session{ID: uuid.NewString()}}
		s.entries[key] = e
		s.log.WithFields(logrus.Fields{"channel": key, "session": e.session.ID}).Debug("session created")
	}
	return e
}

// arm (re)starts the entry's inactivity timer. Caller holds e.mu.
func (s *Store) arm(key string, e *entry) {
	if e.timer != nil {
		e.timer.Stop()
	}
	e.gen++
	gen := e.gen
	e.timer = s.clk.AfterFunc(s.idle, func() { s.expire(key, e, gen) })
}

// evict removes the entry from the map and cancels its timer. Caller
// holds e.mu; the map lock is nested inside, never the other way around.
func (s *Store) evict(key string, e *entry) {
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
	e.gen++
	e.gone = true
	s.mu.Lock()
	if s.entries[key] == e {
		delete(s.entries, key)
	}
	s.mu.Unlock()
	s.log.WithFields(logrus.Fields{"channel": key, "session": e.session.ID}).Debug("session destroyed")
}

// expire is the timer callback. The generation check discards firings
// that lost a race against a re-arm or an eviction.
func (s *Store) expire(key string, e *entry, gen int) {
	e.mu.Lock()
	if e.gone || e.gen != gen {
		e.mu.Unlock()
		return
	}
	s.evict(key, e)
	id := e.session.ID
	e.mu.Unlock()

	s.log.WithFields(logrus.Fields{"channel": key, "session": id}).Info("session expired after inactivity")
	if s.onExpire != nil {
		s.onExpire(key, s.idle)
	}
}
