package auth

import (
	"sync"
	"time"
)

// LoginLimiter counts failed password attempts per client IP and locks the
// IP out for a while once the limit is reached.
type LoginLimiter struct {
	mu          sync.Mutex
	attempts    map[string]*attemptRecord
	maxAttempts int
	window      time.Duration
	lockout     time.Duration
	now         func() time.Time
}

type attemptRecord struct {
	count       int
	firstTry    time.Time
	lockedUntil time.Time
}

// NewLoginLimiter allows maxAttempts failures within window before locking
// the client out for lockout.
func NewLoginLimiter(maxAttempts int, window, lockout time.Duration) *LoginLimiter {
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	if window <= 0 {
		window = 15 * time.Minute
	}
	if lockout <= 0 {
		lockout = 15 * time.Minute
	}
	return &LoginLimiter{
		attempts:    make(map[string]*attemptRecord),
		maxAttempts: maxAttempts,
		window:      window,
		lockout:     lockout,
		now:         time.Now,
	}
}

// Allow reports whether ip may try again and, if not, how long it must wait.
func (l *LoginLimiter) Allow(ip string) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.sweep()
	rec, ok := l.attempts[ip]
	if !ok {
		return true, 0
	}
	if wait := rec.lockedUntil.Sub(l.now()); wait > 0 {
		return false, wait
	}
	return true, 0
}

// RecordFailure notes a failed attempt and reports whether ip is now locked.
func (l *LoginLimiter) RecordFailure(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	rec, ok := l.attempts[ip]
	if !ok || now.Sub(rec.firstTry) > l.window {
		rec = &attemptRecord{firstTry: now}
		l.attempts[ip] = rec
	}
	rec.count++
	if rec.count >= l.maxAttempts {
		rec.lockedUntil = now.Add(l.lockout)
		return true
	}
	return false
}

func (l *LoginLimiter) RecordSuccess(ip string) {
	l.mu.Lock()
	delete(l.attempts, ip)
	l.mu.Unlock()
}

// sweep drops stale records. Caller holds mu.
func (l *LoginLimiter) sweep() {
	now := l.now()
	for ip, rec := range l.attempts {
		if now.After(rec.lockedUntil) && now.Sub(rec.firstTry) > l.window {
			delete(l.attempts, ip)
		}
	}
}
