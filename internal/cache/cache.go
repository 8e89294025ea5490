// Package cache holds derived report views so repeated reads skip the
// engine. Views are opaque bytes scoped to a user and dropped as a group
// whenever that user's ledger changes.
package cache

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Cache is the minimal key/value surface of LRUCache.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, data T)
	Delete(key string)
	Size() int
}

var _ Cache[[]byte] = (*LRUCache[[]byte])(nil)

// ViewCache stores rendered report views per user.
//
// Readers take Version before loading the ledger and hand it to Set. A Set
// whose version predates the latest Invalidate is not visible to Get.
type ViewCache interface {
	Get(ctx context.Context, userID, key string) ([]byte, bool, error)
	Version(ctx context.Context, userID string) (int64, error)
	Set(ctx context.Context, userID, key string, version int64, view []byte) error
	// Invalidate drops every view of userID.
	Invalidate(ctx context.Context, userID string) error
}

// Cleaner is implemented by caches that can drop expired entries on demand.
type Cleaner interface {
	CleanExpired() int
}

// Manager sweeps registered caches on a ticker. Entries also expire lazily
// on Get; the sweep only bounds memory held by keys nobody reads again.
type Manager struct {
	logger *slog.Logger
	caches []Cleaner

	stop     chan struct{}
	stopped  chan struct{}
	stopOnce sync.Once
	started  bool
}

func NewManager(logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		logger:  logger,
		stop:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
}

// Register adds c to the sweep. Call it before StartCleanup.
func (m *Manager) Register(c Cleaner) {
	m.caches = append(m.caches, c)
}

// StartCleanup sweeps every interval until Stop.
func (m *Manager) StartCleanup(interval time.Duration) {
	m.started = true
	go func() {
		defer close(m.stopped)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-m.stop:
				return
			case <-ticker.C:
				m.sweep()
			}
		}
	}()
}

func (m *Manager) sweep() {
	if n := m.CleanNow(); n > 0 {
		m.logger.Debug("Expired cache entries removed", "count", n)
	}
	for _, c := range m.caches {
		if s, ok := c.(interface{ Stats() Stats }); ok {
			st := s.Stats()
			m.logger.Debug("Cache stats", "hits", st.Hits, "misses", st.Misses, "evictions", st.Evictions)
		}
	}
}

// CleanNow sweeps once and returns how many entries were removed.
func (m *Manager) CleanNow() int {
	n := 0
	for _, c := range m.caches {
		n += c.CleanExpired()
	}
	return n
}

// Stop ends the sweep and waits for it. It is safe to call more than once,
// and without StartCleanup.
func (m *Manager) Stop() {
	m.stopOnce.Do(func() {
		close(m.stop)
		if m.started {
			<-m.stopped
		}
	})
}
