package ledger

import (
	"context"
	"sync"
	"time"
)

// MemoryLedger is an in-process idempotency ledger. Entries expire after
// the configured TTL so a long-lived process does not grow without bound.
// Suitable for a single instance; multi-instance deployments need the
// Redis ledger so replicas share one view of processed payments.
type MemoryLedger struct {
	mu      sync.Mutex
	entries map[string]time.Time
	ttl     time.Duration
	now     func() time.Time
}

// NewMemoryLedger creates a memory ledger. A non-positive ttl means
// entries never expire.
func NewMemoryLedger(ttl time.Duration) *MemoryLedger {
	return &MemoryLedger{
		entries: make(map[string]time.Time),
		ttl:     ttl,
		now:     time.Now,
	}
}

// MarkIfAbsent records the end-to-end id and reports whether this call was
// the first to see it.
func (l *MemoryLedger) MarkIfAbsent(ctx context.Context, endToEndID string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if expiry, ok := l.entries[endToEndID]; ok {
		if expiry.IsZero() || now.Before(expiry) {
			return false, nil
		}
	}

	var expiry time.Time
	if l.ttl > 0 {
		expiry = now.Add(l.ttl)
	}
	l.entries[endToEndID] = expiry

	// Opportunistic sweep of expired entries.
	for id, exp := range l.entries {
		if !exp.IsZero() && !now.Before(exp) {
			delete(l.entries, id)
		}
	}

	return true, nil
}
