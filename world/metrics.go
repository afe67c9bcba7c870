package world

import "sync"

// Metrics tracks streaming counters for diagnostics. All methods are safe for
// concurrent use.
type Metrics struct {
	mu         sync.Mutex
	loads      uint64
	evictions  uint64
	staleDrops uint64
	cancelled  uint64
	cacheHits  uint64
	queueLen   int
}

// MetricsSnapshot is a point-in-time copy of the streaming counters.
type MetricsSnapshot struct {
	// Loads is the number of chunks materialised and handed to viewers.
	Loads uint64
	// Evictions is the number of chunks removed after their unload grace
	// period expired.
	Evictions uint64
	// StaleDrops counts queue entries skipped because the viewpoint moved away
	// before they were materialised.
	StaleDrops uint64
	// Cancelled counts asynchronous generation jobs abandoned mid-build.
	Cancelled uint64
	// CacheHits counts columns served from the provider instead of generated.
	CacheHits uint64
	// QueueLen is the load queue length at the end of the last tick.
	QueueLen int
}

func (m *Metrics) addLoad() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loads++
}

func (m *Metrics) addEviction() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.evictions++
}

func (m *Metrics) addStaleDrop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.staleDrops++
}

func (m *Metrics) addCancelled() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cancelled++
}

func (m *Metrics) addCacheHit() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cacheHits++
}

func (m *Metrics) setQueueLen(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queueLen = n
}

// Snapshot returns a copy of the current counters.
func (m *Metrics) Snapshot() MetricsSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return MetricsSnapshot{
		Loads:      m.loads,
		Evictions:  m.evictions,
		StaleDrops: m.staleDrops,
		Cancelled:  m.cancelled,
		CacheHits:  m.cacheHits,
		QueueLen:   m.queueLen,
	}
}
