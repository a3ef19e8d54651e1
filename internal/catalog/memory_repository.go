package catalog

import (
	"context"
	"sync"
)

// MemoryRepository keeps products in process memory. It is meant for local
// runs and tests; contents are lost on restart.
type MemoryRepository struct {
	mu     sync.RWMutex
	nextID int64
	byID   map[int64]Product
	order  []int64
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		nextID: 1,
		byID:   make(map[int64]Product),
	}
}

func (r *MemoryRepository) Create(_ context.Context, name string, price int64) (Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.nameTaken(name, 0) {
		return Product{}, ErrDuplicateName
	}

	p := Product{ID: r.nextID, Name: name, Price: price}
	r.nextID++
	r.byID[p.ID] = p
	r.order = append(r.order, p.ID)

	return p, nil
}

func (r *MemoryRepository) Get(_ context.Context, id int64) (Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.byID[id]
	if !ok {
		return Product{}, ErrNotFound
	}
	return p, nil
}

func (r *MemoryRepository) List(_ context.Context) ([]Product, error) {
	return r.collect(func(Product) bool { return true }), nil
}

func (r *MemoryRepository) ListPricedUpTo(_ context.Context, maxPrice int64) ([]Product, error) {
	return r.collect(func(p Product) bool { return p.Price <= maxPrice }), nil
}

func (r *MemoryRepository) Update(_ context.Context, id int64, u Update) (Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.byID[id]
	if !ok {
		return Product{}, ErrNotFound
	}
	if u.Name != nil && r.nameTaken(*u.Name, id) {
		return Product{}, ErrDuplicateName
	}

	p = u.apply(p)
	r.byID[id] = p

	return p, nil
}

func (r *MemoryRepository) Delete(_ context.Context, id int64) (Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.byID[id]
	if !ok {
		return Product{}, ErrNotFound
	}

	delete(r.byID, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}

	return p, nil
}

func (r *MemoryRepository) collect(keep func(Product) bool) []Product {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Product, 0, len(r.order))
	for _, id := range r.order {
		if p := r.byID[id]; keep(p) {
			out = append(out, p)
		}
	}
	return out
}

// nameTaken must be called with the lock held.
func (r *MemoryRepository) nameTaken(name string, exceptID int64) bool {
	for id, p := range r.byID {
		if id != exceptID && p.Name == name {
			return true
		}
	}
	return false
}
