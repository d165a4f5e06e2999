package cart

import (
	"Marketplace-Cart/internal/utils/storage"
	"context"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/log"
)

type (
	// CartManager hands out one CartStore per identity over a shared key-value provider.
	CartManager interface {
		// For returns the store for identityID, loading it on first use.
		For(ctx context.Context, identityID string) (CartStore, error)
		// Forget waits for identityID's in-flight operation, closes its store and drops it.
		// The persisted cart is kept and the next For loads a fresh store.
		Forget(ctx context.Context, identityID string) error
		// EvictIdle forgets every store not handed out by For since cutoff.
		EvictIdle(ctx context.Context, cutoff time.Time) int
		// RunJanitor evicts stores idle for longer than maxIdle every interval until ctx ends.
		RunJanitor(ctx context.Context, interval, maxIdle time.Duration)
		Identities() []string
	}

	managedStore struct {
		store    CartStore
		lastUsed time.Time
	}

	cartManager struct {
		kv     storage.KVStore
		opts   []Option
		mu     sync.Mutex
		stores map[string]*managedStore
	}
)

func NewCartManager(kv storage.KVStore, opts ...Option) CartManager {
	return &cartManager{
		kv:     kv,
		opts:   opts,
		stores: make(map[string]*managedStore),
	}
}

func (m *cartManager) For(ctx context.Context, identityID string) (CartStore, error) {
	if err := ValidateIdentity(identityID); err != nil {
		return nil, err
	}

	m.mu.Lock()
	entry, ok := m.stores[identityID]
	// a closed store has drained its queue, so replacing it cannot overlap its writes
	if !ok || entry.store.Closed() {
		opts := append(append([]Option{}, m.opts...), WithIdentity(identityID))
		entry = &managedStore{store: NewCartStore(m.kv, opts...)}
		m.stores[identityID] = entry
	}
	entry.lastUsed = time.Now()
	store := entry.store
	m.mu.Unlock()

	if store.State() == StateUninitialized {
		if err := store.Load(ctx); err != nil {
			return nil, err
		}
	}
	return store, nil
}

func (m *cartManager) Forget(ctx context.Context, identityID string) error {
	m.mu.Lock()
	entry, ok := m.stores[identityID]
	m.mu.Unlock()
	if !ok {
		return nil
	}

	if err := entry.store.Close(ctx); err != nil {
		return err
	}

	m.mu.Lock()
	if current, ok := m.stores[identityID]; ok && current == entry {
		delete(m.stores, identityID)
	}
	m.mu.Unlock()
	return nil
}

func (m *cartManager) EvictIdle(ctx context.Context, cutoff time.Time) int {
	m.mu.Lock()
	idle := make([]string, 0)
	for id, entry := range m.stores {
		if entry.lastUsed.Before(cutoff) {
			idle = append(idle, id)
		}
	}
	m.mu.Unlock()

	evicted := 0
	for _, id := range idle {
		if err := m.Forget(ctx, id); err != nil {
			log.Warnw("cart eviction failed", "identity", id, "error", err)
			continue
		}
		evicted++
	}
	return evicted
}

func (m *cartManager) RunJanitor(ctx context.Context, interval, maxIdle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := m.EvictIdle(ctx, now.Add(-maxIdle)); n > 0 {
				log.Infow("idle carts evicted", "count", n)
			}
		}
	}
}

func (m *cartManager) Identities() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.stores))
	for id := range m.stores {
		ids = append(ids, id)
	}
	return ids
}
