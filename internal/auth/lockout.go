package auth

import (
	"sync"
	"time"
)

// Lockout policy defaults.
const (
	// DefaultMaxAttempts is how many consecutive failures lock a client out.
	DefaultMaxAttempts = 5

	// DefaultLockoutWindow is how long failures count before they expire.
	DefaultLockoutWindow = 60 * time.Minute
)

type attemptRecord struct {
	count       int
	lastAttempt time.Time
}

// LockoutTracker counts failed login attempts per client key (normally the
// client IP) and locks a key out after too many failures in a window.
//
// State is process-local and resets on restart. With a single admin and a
// single instance that is an accepted tradeoff; a multi-instance deployment
// would move this to shared storage.
type LockoutTracker struct {
	maxAttempts int
	window      time.Duration
	now         func() time.Time

	mu       sync.Mutex
	attempts map[string]*attemptRecord
}

// NewLockoutTracker creates a tracker with the default policy.
func NewLockoutTracker() *LockoutTracker {
	return &LockoutTracker{
		maxAttempts: DefaultMaxAttempts,
		window:      DefaultLockoutWindow,
		now:         time.Now,
		attempts:    make(map[string]*attemptRecord),
	}
}

// IsLockedOut reports whether the key has exhausted its attempts. A record
// older than the window is discarded, which also ends the lockout.
func (t *LockoutTracker) IsLockedOut(key string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	record, ok := t.attempts[key]
	if !ok {
		return false
	}

	if t.now().Sub(record.lastAttempt) > t.window {
		delete(t.attempts, key)
		return false
	}

	return record.count >= t.maxAttempts
}

// RecordFailure counts a failed attempt for the key.
func (t *LockoutTracker) RecordFailure(key string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	record, ok := t.attempts[key]
	if !ok {
		t.attempts[key] = &attemptRecord{count: 1, lastAttempt: t.now()}
		return
	}

	record.count++
	record.lastAttempt = t.now()
}

// Clear forgets the key's failures, typically after a successful login.
func (t *LockoutTracker) Clear(key string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	delete(t.attempts, key)
}
