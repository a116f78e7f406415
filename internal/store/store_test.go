package store

import (
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"mapveto/internal/clock"
	"mapveto/internal/domain"
)

const idle = 72 * time.Hour

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

type expiry struct {
	mu    sync.Mutex
	calls []string
}

func (e *expiry) notify(key string, _ time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls = append(e.calls, key)
}

func (e *expiry) keys() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.calls...)
}

func newTestStore() (*Store, *clock.FakeClock, *expiry) {
	clk := clock.Fake(time.Unix(0, 0))
	exp := &expiry{}
	return New(idle, clk, exp.notify, quietLogger()), clk, exp
}

// touch runs a successful no-op update, creating the session and arming
// its timer.
func touch(t *testing.T, s *Store, key string) {
	t.Helper()
	err := s.Update(key, func(sess *domain.Session) (bool, error) { return false, nil })
	if err != nil {
		t.Fatalf("touch %s: %v", key, err)
	}
}

func TestLazyCreateAndIsolation(t *testing.T) {
	s, _, _ := newTestStore()

	var idA, idB string
	s.Update("chan-a", func(sess *domain.Session) (bool, error) {
		idA = sess.ID
		sess.PoolName = "SS25"
		return false, nil
	})
	s.Update("chan-b", func(sess *domain.Session) (bool, error) {
		idB = sess.ID
		return false, nil
	})
	if idA == "" || idB == "" || idA == idB {
		t.Fatalf("sessions must get distinct non-empty IDs: %q vs %q", idA, idB)
	}

	// chan-b must not observe chan-a's state.
	s.Peek("chan-b", func(sess *domain.Session) {
		if sess.PoolName != "" {
			t.Fatalf("cross-key leakage: %q", sess.PoolName)
		}
	})
	// Same key returns the same session.
	s.Update("chan-a", func(sess *domain.Session) (bool, error) {
		if sess.ID != idA || sess.PoolName != "SS25" {
			t.Fatalf("session not stable across updates")
		}
		return false, nil
	})
}

func TestErrorLeavesStateAndTimerAlone(t *testing.T) {
	s, clk, exp := newTestStore()
	touch(t, s, "chan")
	clk.Advance(idle / 2)

	boom := errors.New("boom")
	if err := s.Update("chan", func(sess *domain.Session) (bool, error) { return false, boom }); !errors.Is(err, boom) {
		t.Fatalf("Update err = %v, want boom", err)
	}

	// The failed update must not have reset the original countdown.
	clk.Advance(idle / 2)
	if got := exp.keys(); len(got) != 1 || got[0] != "chan" {
		t.Fatalf("expiries = %v, want the original countdown to fire", got)
	}
}

func TestInactivityExpiry(t *testing.T) {
	s, clk, exp := newTestStore()
	touch(t, s, "chan")

	var id string
	s.Peek("chan", func(sess *domain.Session) { id = sess.ID })

	clk.Advance(idle - time.Second)
	if len(exp.keys()) != 0 {
		t.Fatalf("expired early")
	}
	clk.Advance(time.Second)
	if got := exp.keys(); len(got) != 1 || got[0] != "chan" {
		t.Fatalf("expiries = %v, want [chan]", got)
	}

	// The key now behaves as a fresh empty session.
	s.Update("chan", func(sess *domain.Session) (bool, error) {
		if sess.Started() || sess.ID == id {
			t.Fatalf("expired session must not be observable again")
		}
		return false, nil
	})
}

func TestUpdateResetsCountdown(t *testing.T) {
	s, clk, exp := newTestStore()
	touch(t, s, "chan")

	clk.Advance(idle - time.Minute)
	touch(t, s, "chan") // re-arms
	clk.Advance(idle - time.Minute)
	if len(exp.keys()) != 0 {
		t.Fatalf("session expired despite activity")
	}
	clk.Advance(time.Minute)
	if got := exp.keys(); len(got) != 1 {
		t.Fatalf("expiries = %v, want one", got)
	}
}

func TestDestroyCancelsTimerAndIsIdempotent(t *testing.T) {
	s, clk, exp := newTestStore()
	touch(t, s, "chan")

	s.Destroy("chan")
	s.Destroy("chan")       // idempotent
	s.Destroy("never-seen") // absent key is a no-op
	clk.Advance(10 * idle)

	if got := exp.keys(); len(got) != 0 {
		t.Fatalf("destroyed session must not fire a late expiry: %v", got)
	}
}

func TestDestroyViaUpdateCompletion(t *testing.T) {
	s, clk, exp := newTestStore()
	touch(t, s, "chan")

	err := s.Update("chan", func(sess *domain.Session) (bool, error) { return true, nil })
	if err != nil {
		t.Fatalf("completing update: %v", err)
	}
	clk.Advance(10 * idle)
	if got := exp.keys(); len(got) != 0 {
		t.Fatalf("completed session must not fire an expiry: %v", got)
	}

	// A fresh session appears on next use.
	s.Update("chan", func(sess *domain.Session) (bool, error) {
		if sess.Started() {
			t.Fatalf("completed session leaked into new one")
		}
		return false, nil
	})
}

func TestPerKeyCountdownsAreIndependent(t *testing.T) {
	s, clk, exp := newTestStore()
	touch(t, s, "chan-a")
	clk.Advance(idle / 2)
	touch(t, s, "chan-b")

	clk.Advance(idle / 2)
	if got := exp.keys(); len(got) != 1 || got[0] != "chan-a" {
		t.Fatalf("expiries = %v, want only chan-a", got)
	}
	clk.Advance(idle / 2)
	if got := exp.keys(); len(got) != 2 || got[1] != "chan-b" {
		t.Fatalf("expiries = %v, want chan-b second", got)
	}
}

func TestConcurrentUpdatesSerializePerKey(t *testing.T) {
	s, _, _ := newTestStore()

	const workers = 16
	const rounds = 50
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < rounds; i++ {
				s.Update("chan", func(sess *domain.Session) (bool, error) {
					// PoolName doubles as a counter scratchpad: read,
					// then write, relying on Update's serialization.
					sess.PoolName += "x"
					return false, nil
				})
			}
		}()
	}
	wg.Wait()

	s.Peek("chan", func(sess *domain.Session) {
		if len(sess.PoolName) != workers*rounds {
			t.Fatalf("lost updates: %d writes recorded, want %d", len(sess.PoolName), workers*rounds)
		}
	})
}
