package lock

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/hackgods/pickup-appointment-scheduling/internal/clock"
)

var (
	ErrLockNotAcquired = errors.New("slot lock not acquired")
)

// Key identifies one booking attempt: an order and the slot it wants.
type Key struct {
	OrderNumber string
	Slot        int64 // unix seconds, UTC
}

func NewKey(orderNumber string, slot time.Time) Key {
	return Key{OrderNumber: strings.TrimSpace(orderNumber), Slot: slot.Unix()}
}

// Locker is used by the booking service to guard the read-modify-write of
// the appointment list for one (order, slot) pair.
type Locker interface {
	WithSlotLock(ctx context.Context, key Key, fn func(ctx context.Context) error) error
}

// Memory is a single-process lock table. Entries older than the timeout are
// swept lazily on every acquisition, so a holder that never releases blocks
// its key for at most one timeout. It gives no exclusivity across processes.
type Memory struct {
	mu      sync.Mutex
	entries map[Key]time.Time
	timeout time.Duration
	clock   clock.Clock
}

func NewMemory(timeout time.Duration, clk clock.Clock) *Memory {
	if clk == nil {
		clk = clock.NewReal()
	}
	return &Memory{
		entries: make(map[Key]time.Time),
		timeout: timeout,
		clock:   clk,
	}
}

// Acquire reports whether the key was free and is now held by the caller.
func (m *Memory) Acquire(key Key) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.clock.Now()
	m.sweep(now)

	if _, held := m.entries[key]; held {
		return false
	}
	m.entries[key] = now
	return true
}

// Release drops the entry for key. Releasing a free key is a no-op.
func (m *Memory) Release(key Key) {
	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()
}

// Held returns the number of entries currently in the table, expired or not.
func (m *Memory) Held() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

func (m *Memory) WithSlotLock(ctx context.Context, key Key, fn func(ctx context.Context) error) error {
	if !m.Acquire(key) {
		return ErrLockNotAcquired
	}
	defer m.Release(key)

	ctxWithTimeout, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	return fn(ctxWithTimeout)
}

// sweep must be called with mu held.
func (m *Memory) sweep(now time.Time) {
	for k, acquired := range m.entries {
		if now.Sub(acquired) > m.timeout {
			delete(m.entries, k)
		}
	}
}
