package cache

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/erp/crm/internal/domain/sales"
	gocache "github.com/patrickmn/go-cache"
)

// recencyEntry is one ranked id; entries are kept sorted most recent first
type recencyEntry struct {
	id     int64
	member string
	score  int64
}

// before reports whether e ranks ahead of other, matching ZREVRANGE order:
// higher score first, equal scores by member descending.
func (e recencyEntry) before(other recencyEntry) bool {
	if e.score != other.score {
		return e.score > other.score
	}
	return e.member > other.member
}

// lockStripes is the number of mutexes customers are hashed onto
const lockStripes = 64

// InMemoryRecencyCache implements sales.RecencyCache in process memory.
// It is suitable for single-instance deployments and testing; state is not
// shared across processes.
type InMemoryRecencyCache struct {
	store    *gocache.Cache
	locks    [lockStripes]sync.Mutex
	capacity int
}

// NewInMemoryRecencyCache creates an in-memory recency cache holding up to
// capacity ids per customer. A non-positive capacity uses the default.
func NewInMemoryRecencyCache(capacity int) *InMemoryRecencyCache {
	if capacity <= 0 {
		capacity = sales.DefaultRecentCapacity
	}
	return &InMemoryRecencyCache{
		store:    gocache.New(gocache.NoExpiration, 0),
		capacity: capacity,
	}
}

// lock serializes read-modify-write of one customer's entries
func (c *InMemoryRecencyCache) lock(customerID int64) func() {
	m := &c.locks[uint64(customerID)%lockStripes]
	m.Lock()
	return m.Unlock
}

func (c *InMemoryRecencyCache) load(key string) []recencyEntry {
	item, ok := c.store.Get(key)
	if !ok {
		return nil
	}
	entries, _ := item.([]recencyEntry)
	return entries
}

// Touch records the id at time at and trims to capacity. An id already
// present keeps the later of its stored and supplied times.
func (c *InMemoryRecencyCache) Touch(ctx context.Context, customerID, opportunityID int64, at time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	key := strconv.FormatInt(customerID, 10)
	defer c.lock(customerID)()

	current := c.load(key)
	score := at.UnixMicro()
	entries := make([]recencyEntry, 0, len(current)+1)
	for _, e := range current {
		if e.id == opportunityID {
			score = max(score, e.score)
			continue
		}
		entries = append(entries, e)
	}
	entries = append(entries, recencyEntry{
		id:     opportunityID,
		member: strconv.FormatInt(opportunityID, 10),
		score:  score,
	})
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].before(entries[j]) })
	if len(entries) > c.capacity {
		entries = entries[:c.capacity]
	}

	c.store.Set(key, entries, gocache.NoExpiration)
	return nil
}

// Recent returns up to capacity ids, most recent first
func (c *InMemoryRecencyCache) Recent(ctx context.Context, customerID int64) ([]int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	key := strconv.FormatInt(customerID, 10)
	defer c.lock(customerID)()

	entries := c.load(key)
	ids := make([]int64, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.id)
	}
	return ids, nil
}

// Evict removes the id from the customer's set
func (c *InMemoryRecencyCache) Evict(ctx context.Context, customerID, opportunityID int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	key := strconv.FormatInt(customerID, 10)
	defer c.lock(customerID)()

	current := c.load(key)
	if len(current) == 0 {
		return nil
	}
	entries := make([]recencyEntry, 0, len(current))
	for _, e := range current {
		if e.id != opportunityID {
			entries = append(entries, e)
		}
	}
	if len(entries) == 0 {
		c.store.Delete(key)
		return nil
	}
	c.store.Set(key, entries, gocache.NoExpiration)
	return nil
}

// ResetAll removes every customer's set
func (c *InMemoryRecencyCache) ResetAll(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.store.Flush()
	return nil
}

// Ping always succeeds
func (c *InMemoryRecencyCache) Ping(context.Context) error {
	return nil
}

// Backend returns the backend name
func (c *InMemoryRecencyCache) Backend() string {
	return BackendMemory
}

// Close is a no-op
func (c *InMemoryRecencyCache) Close() error {
	return nil
}

// Ensure InMemoryRecencyCache implements RecencyCache
var _ sales.RecencyCache = (*InMemoryRecencyCache)(nil)
