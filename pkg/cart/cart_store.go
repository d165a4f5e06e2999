package cart

import (
	"Marketplace-Cart/domain"
	"Marketplace-Cart/internal/utils/storage"
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/log"
)

type State int

const (
	StateUninitialized State = iota
	StateLoading
	StateReady
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	default:
		return "uninitialized"
	}
}

type (
	// CartStore owns the validated, persisted line items of one identity at a time.
	// Mutations are serialized through a per-store queue; reads never wait on I/O.
	CartStore interface {
		// Load (re)reads the current identity's cart. It never fails on I/O or corrupt data;
		// the only error is ctx ending before the load completes.
		Load(ctx context.Context) error
		// Reset switches to identityID ("" for anonymous) and loads its cart.
		Reset(ctx context.Context, identityID string) error

		AddOrMerge(ctx context.Context, item domain.CartLineItem) error
		Accumulate(ctx context.Context, item domain.CartLineItem) error
		RemoveByID(ctx context.Context, id string) error
		Clear(ctx context.Context) error

		Count() int
		Items() []domain.CartLineItem
		OptimizedItems() []domain.OptimizedLineItem
		Get(id string) (domain.CartLineItem, bool)
		Summary() domain.CartSummary
		State() State
		Identity() string

		// Close waits for the operation in flight, if any, and makes every later Load,
		// Reset or mutation fail with domain.ErrStoreClosed. Reads keep the last state.
		Close(ctx context.Context) error
		Closed() bool
	}

	Option func(*cartStore)

	cartStore struct {
		kv        storage.KVStore
		namespace string
		validator *LineItemValidator
		clock     func() time.Time
		queue     mutationQueue

		mu        sync.RWMutex
		state     State
		closed    bool
		identity  string
		items     []domain.CartLineItem
		optimized []domain.OptimizedLineItem
	}
)

// WithNamespace sets the key prefix. A namespace containing domain.CartKeySeparator is ignored.
func WithNamespace(namespace string) Option {
	return func(s *cartStore) {
		if namespace != "" && !strings.Contains(namespace, domain.CartKeySeparator) {
			s.namespace = namespace
		}
	}
}

func WithClock(clock func() time.Time) Option {
	return func(s *cartStore) { s.clock = clock }
}

func WithValidator(v *LineItemValidator) Option {
	return func(s *cartStore) { s.validator = v }
}

// WithIdentity sets the identity used by the first Load.
func WithIdentity(identityID string) Option {
	return func(s *cartStore) { s.identity = identityID }
}

func NewCartStore(kv storage.KVStore, opts ...Option) CartStore {
	s := &cartStore{
		kv:        kv,
		namespace: domain.DefaultCartKey,
		clock:     time.Now,
		queue:     newMutationQueue(),
		items:     []domain.CartLineItem{},
		optimized: []domain.OptimizedLineItem{},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.validator == nil {
		s.validator = NewLineItemValidator(nil)
	}
	return s
}

// ValidateIdentity rejects ids that could produce a backup key as their primary key.
func ValidateIdentity(identityID string) error {
	if strings.Contains(identityID, domain.CartKeySeparator) {
		return fmt.Errorf("%w: %q", domain.ErrInvalidIdentity, identityID)
	}
	return nil
}

// StorageKeys returns the primary and backup keys of identityID's cart under namespace.
// Primary keys never contain domain.CartKeySeparator and every backup key does.
func StorageKeys(namespace, identityID string) (primary, backup string) {
	primary = namespace
	if identityID != "" {
		primary = namespace + "_" + identityID
	}
	return primary, primary + domain.CartBackupSuffix
}

func (s *cartStore) Load(ctx context.Context) error {
	s.mu.RLock()
	identityID := s.identity
	s.mu.RUnlock()
	return s.Reset(ctx, identityID)
}

func (s *cartStore) Reset(ctx context.Context, identityID string) error {
	if err := ValidateIdentity(identityID); err != nil {
		return err
	}
	if err := s.queue.acquire(ctx); err != nil {
		return err
	}
	defer s.queue.release()

	if s.Closed() {
		return domain.ErrStoreClosed
	}
	return s.reload(ctx, identityID)
}

func (s *cartStore) Close(ctx context.Context) error {
	if err := s.queue.acquire(ctx); err != nil {
		return err
	}
	defer s.queue.release()

	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}

func (s *cartStore) Closed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}

// reload must be called with the queue held. A ctx that ends mid-load leaves the store
// Uninitialized rather than publishing what the aborted reads made look empty.
func (s *cartStore) reload(ctx context.Context, identityID string) error {
	if err := ValidateIdentity(identityID); err != nil {
		return err
	}

	s.mu.Lock()
	if identityID != s.identity {
		// never show the previous identity's cart while the new one loads
		s.items = []domain.CartLineItem{}
		s.optimized = []domain.OptimizedLineItem{}
	}
	s.identity = identityID
	s.state = StateLoading
	s.mu.Unlock()

	items := s.load(ctx, identityID)
	if err := ctx.Err(); err != nil {
		s.mu.Lock()
		s.state = StateUninitialized
		s.mu.Unlock()
		return err
	}
	s.publish(items)
	return nil
}

func (s *cartStore) load(ctx context.Context, identityID string) []domain.CartLineItem {
	primaryKey, backupKey := StorageKeys(s.namespace, identityID)
	now := s.clock()

	if items, ok := s.readSnapshot(ctx, primaryKey, now); ok {
		if items.dropped > 0 {
			log.Infow("cart repaired on load", "key", primaryKey, "dropped", items.dropped, "kept", len(items.items))
			if err := s.persist(ctx, identityID, items.items, now); err != nil {
				log.Warnw("cart repair write failed", "key", primaryKey, "error", err)
			}
		}
		return items.items
	}

	if items, ok := s.readSnapshot(ctx, backupKey, now); ok && len(items.items) > 0 {
		log.Infow("cart recovered from backup", "key", primaryKey, "items", len(items.items))
		if err := s.persist(ctx, identityID, items.items, now); err != nil {
			log.Warnw("cart recovery write failed", "key", primaryKey, "error", err)
		}
		return items.items
	}

	return []domain.CartLineItem{}
}

type cleanedItems struct {
	items   []domain.CartLineItem
	dropped int
}

// readSnapshot reports ok=false when key is absent, unreadable, corrupt or of another version.
func (s *cartStore) readSnapshot(ctx context.Context, key string, now time.Time) (cleanedItems, bool) {
	raw, found, err := s.kv.Get(ctx, key)
	if err != nil {
		log.Warnw("cart snapshot read failed", "key", key, "error", fmt.Errorf("%w: %w", domain.ErrPersistenceIO, err))
		return cleanedItems{}, false
	}
	if !found {
		return cleanedItems{}, false
	}

	snap, err := decodeSnapshot(raw)
	if err != nil {
		log.Warnw("cart snapshot discarded", "key", key, "error", err)
		return cleanedItems{}, false
	}

	items, dropped := s.clean(snap.Items, now)
	return cleanedItems{items: items, dropped: dropped + snap.Rejected}, true
}

func (s *cartStore) AddOrMerge(ctx context.Context, item domain.CartLineItem) error {
	if err := s.validator.Check(item); err != nil {
		return err
	}
	return s.mutate(ctx, func(current []domain.CartLineItem) ([]domain.CartLineItem, error) {
		return upsert(current, item), nil
	})
}

func (s *cartStore) Accumulate(ctx context.Context, item domain.CartLineItem) error {
	if err := s.validator.Check(item); err != nil {
		return err
	}
	return s.mutate(ctx, func(current []domain.CartLineItem) ([]domain.CartLineItem, error) {
		for _, existing := range current {
			if existing.ID != item.ID {
				continue
			}
			merged := MergeLineItems(existing, item)
			if err := s.validator.Check(merged); err != nil {
				return nil, err
			}
			return upsert(current, merged), nil
		}
		return upsert(current, item), nil
	})
}

func (s *cartStore) RemoveByID(ctx context.Context, id string) error {
	return s.mutate(ctx, func(current []domain.CartLineItem) ([]domain.CartLineItem, error) {
		next := make([]domain.CartLineItem, 0, len(current))
		for _, existing := range current {
			if existing.ID != id {
				next = append(next, existing)
			}
		}
		return next, nil
	})
}

func (s *cartStore) Clear(ctx context.Context) error {
	return s.mutate(ctx, func([]domain.CartLineItem) ([]domain.CartLineItem, error) {
		return []domain.CartLineItem{}, nil
	})
}

// mutate runs fn against the current items and saves the result, all inside the queue.
// fn must not modify the slice it is given.
func (s *cartStore) mutate(ctx context.Context, fn func([]domain.CartLineItem) ([]domain.CartLineItem, error)) error {
	if err := s.queue.acquire(ctx); err != nil {
		return err
	}
	defer s.queue.release()

	s.mu.RLock()
	state, closed, identityID, current := s.state, s.closed, s.identity, s.items
	s.mu.RUnlock()

	if closed {
		return domain.ErrStoreClosed
	}

	if state != StateReady {
		if err := s.reload(ctx, identityID); err != nil {
			return err
		}
		s.mu.RLock()
		current = s.items
		s.mu.RUnlock()
	}

	next, err := fn(current)
	if err != nil {
		return err
	}
	return s.save(ctx, identityID, next)
}

// save is the shared write path: validate, expire, persist (backup then primary), publish.
// The in-memory items only change when the primary write succeeds.
func (s *cartStore) save(ctx context.Context, identityID string, items []domain.CartLineItem) error {
	now := s.clock()
	cleaned, dropped := s.clean(items, now)
	if err := s.persist(ctx, identityID, cleaned, now); err != nil {
		return err
	}
	if dropped > 0 {
		log.Debugw("cart items dropped on save", "identity", identityID, "dropped", dropped)
	}
	s.publish(cleaned)
	return nil
}

func (s *cartStore) persist(ctx context.Context, identityID string, items []domain.CartLineItem, now time.Time) error {
	primaryKey, backupKey := StorageKeys(s.namespace, identityID)

	payload, err := encodeSnapshot(items, now)
	if err != nil {
		return fmt.Errorf("%w: encode snapshot: %w", domain.ErrPersistenceIO, err)
	}
	if len(payload) > domain.CartMaxSnapshotSize {
		return fmt.Errorf("%w: snapshot is %d bytes, limit %d", domain.ErrStorageQuotaExceeded, len(payload), domain.CartMaxSnapshotSize)
	}

	backup, err := encodeBackup(items, now)
	if err == nil {
		err = s.kv.Set(ctx, backupKey, string(backup))
	}
	if err != nil {
		log.Warnw("cart backup write failed", "key", backupKey, "error", err)
	}

	if err := s.kv.Set(ctx, primaryKey, string(payload)); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrPersistenceIO, err)
	}
	return nil
}

// clean keeps valid, unexpired items in order. A repeated id keeps its first position and
// its last value.
func (s *cartStore) clean(items []domain.CartLineItem, now time.Time) ([]domain.CartLineItem, int) {
	out := make([]domain.CartLineItem, 0, len(items))
	index := make(map[string]int, len(items))
	for _, item := range items {
		if !s.validator.IsValid(item) || isExpired(item, now) {
			continue
		}
		item = item.Clone()
		if i, ok := index[item.ID]; ok {
			out[i] = item
			continue
		}
		index[item.ID] = len(out)
		out = append(out, item)
	}
	return out, len(items) - len(out)
}

func isExpired(item domain.CartLineItem, now time.Time) bool {
	addedAt, err := domain.ParseCartTimestamp(item.AddedAt)
	if err != nil {
		return true
	}
	return now.Sub(addedAt) > domain.CartRetentionWindow
}

func (s *cartStore) publish(items []domain.CartLineItem) {
	optimized := make([]domain.OptimizedLineItem, 0, len(items))
	for _, item := range items {
		optimized = append(optimized, item.Optimized())
	}

	s.mu.Lock()
	s.items = items
	s.optimized = optimized
	s.state = StateReady
	s.mu.Unlock()
}

func upsert(current []domain.CartLineItem, item domain.CartLineItem) []domain.CartLineItem {
	next := make([]domain.CartLineItem, 0, len(current)+1)
	replaced := false
	for _, existing := range current {
		if existing.ID == item.ID {
			next = append(next, item)
			replaced = true
			continue
		}
		next = append(next, existing)
	}
	if !replaced {
		next = append(next, item)
	}
	return next
}

func (s *cartStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state != StateReady {
		return 0
	}
	return len(s.items)
}

func (s *cartStore) Items() []domain.CartLineItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.CartLineItem, 0, len(s.items))
	for _, item := range s.items {
		out = append(out, item.Clone())
	}
	return out
}

func (s *cartStore) OptimizedItems() []domain.OptimizedLineItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.OptimizedLineItem, len(s.optimized))
	copy(out, s.optimized)
	return out
}

func (s *cartStore) Get(id string) (domain.CartLineItem, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, item := range s.items {
		if item.ID == id {
			return item.Clone(), true
		}
	}
	return domain.CartLineItem{}, false
}

func (s *cartStore) Summary() domain.CartSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	summary := domain.CartSummary{Totals: make(map[string]float64)}
	if s.state != StateReady {
		return summary
	}
	summary.ItemCount = len(s.items)
	for _, item := range s.items {
		summary.TotalQuantity += item.TotalQuantity
		summary.Totals[item.Currency] += item.TotalPrice
	}
	return summary
}

func (s *cartStore) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *cartStore) Identity() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.identity
}

// mutationQueue admits one store operation at a time, in arrival order.
type mutationQueue chan struct{}

func newMutationQueue() mutationQueue {
	return make(mutationQueue, 1)
}

func (q mutationQueue) acquire(ctx context.Context) error {
	select {
	case q <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q mutationQueue) release() {
	<-q
}
