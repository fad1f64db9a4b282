package webhook

import (
	"sync"
	"time"
)

// deliveryDeduper remembers webhook delivery IDs for a while so redelivered
// events do not enqueue the same work twice.
type deliveryDeduper struct {
	mu      sync.Mutex
	entries map[string]time.Time
	ttl     time.Duration
}

func newDeliveryDeduper(ttl time.Duration) *deliveryDeduper {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &deliveryDeduper{
		entries: make(map[string]time.Time),
		ttl:     ttl,
	}
}

// markIfNew returns true if the delivery ID has not been seen recently.
// When it returns true, the ID is recorded with an expiry timestamp.
func (d *deliveryDeduper) markIfNew(id string) bool {
	now := time.Now()

	d.mu.Lock()
	defer d.mu.Unlock()

	for key, expiry := range d.entries {
		if now.After(expiry) {
			delete(d.entries, key)
		}
	}

	if expiry, ok := d.entries[id]; ok && now.Before(expiry) {
		return false
	}

	d.entries[id] = now.Add(d.ttl)
	return true
}
