package order

import (
	"context"
	"sort"
	"sync"
)

// Store exposes order lookup and seeding.
type Store interface {
	List(ctx context.Context) ([]Order, error)
	FindByID(ctx context.Context, orderID string) (Order, error)
	Upsert(ctx context.Context, orders []Order) error
}

// MemoryStore implements Store with an in-process map.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]Order
}

// NewMemoryStore returns a MemoryStore preloaded with the supplied orders.
func NewMemoryStore(items []Order) *MemoryStore {
	s := &MemoryStore{items: make(map[string]Order, len(items))}
	for _, item := range items {
		s.items[item.OrderID] = item
	}
	return s
}

// List returns all orders sorted by identifier.
func (s *MemoryStore) List(_ context.Context) ([]Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Order, 0, len(s.items))
	for _, item := range s.items {
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderID < out[j].OrderID })
	return out, nil
}

// FindByID looks up an order by identifier.
func (s *MemoryStore) FindByID(_ context.Context, orderID string) (Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.items[orderID]
	if !ok {
		return Order{}, ErrOrderNotFound
	}
	return item, nil
}

// Upsert inserts or replaces orders keyed by OrderID.
func (s *MemoryStore) Upsert(_ context.Context, orders []Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, item := range orders {
		s.items[item.OrderID] = item
	}
	return nil
}
