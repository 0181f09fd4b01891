package intelligence

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Clock returns the current time
type Clock func() time.Time

// SendQuota caps proactive messages per tenant per calendar day (UTC).
// Counters roll over automatically when the clock crosses midnight.
type SendQuota struct {
	mu     sync.Mutex
	limit  int
	clock  Clock
	day    string
	counts map[uuid.UUID]int
}

// NewSendQuota creates a quota. A limit of 0 or less means unlimited.
func NewSendQuota(limit int, clock Clock) *SendQuota {
	if clock == nil {
		clock = time.Now
	}
	return &SendQuota{
		limit:  limit,
		clock:  clock,
		counts: make(map[uuid.UUID]int),
	}
}

func (q *SendQuota) rollover() {
	today := q.clock().UTC().Format(time.DateOnly)
	if today != q.day {
		q.day = today
		q.counts = make(map[uuid.UUID]int)
	}
}

// Allow reports whether another message may be sent for the tenant today
func (q *SendQuota) Allow(tenantID uuid.UUID) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.rollover()
	return q.limit <= 0 || q.counts[tenantID] < q.limit
}

// Record counts one sent message for the tenant
func (q *SendQuota) Record(tenantID uuid.UUID) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.rollover()
	q.counts[tenantID]++
}

// Used returns how many messages were recorded for the tenant today
func (q *SendQuota) Used(tenantID uuid.UUID) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.rollover()
	return q.counts[tenantID]
}

// Reset clears all counters
func (q *SendQuota) Reset() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.day = ""
	q.counts = make(map[uuid.UUID]int)
}
