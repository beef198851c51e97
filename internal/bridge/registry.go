package bridge

import "sync"

// Entity is anything the host identifies by a positive integer id.
type Entity interface {
	ID() int
}

// Registry is an ordered, id-unique collection of entities. Insertion order
// is creation order. All methods are safe for concurrent use.
type Registry[E Entity] struct {
	mu    sync.RWMutex
	items []E
	byID  map[int]E
}

// NewRegistry creates an empty registry.
func NewRegistry[E Entity]() *Registry[E] {
	return &Registry[E]{byID: make(map[int]E)}
}

// Add appends e unless an entity with the same id is already present, in
// which case the existing entity is returned and added is false.
func (r *Registry[E]) Add(e E) (got E, added bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.byID[e.ID()]; ok {
		return existing, false
	}
	r.items = append(r.items, e)
	r.byID[e.ID()] = e
	return e, true
}

// Get looks up an entity by id.
func (r *Registry[E]) Get(id int) (E, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.byID[id]
	return e, ok
}

// Remove deletes the entity with id and reports whether it was present.
func (r *Registry[E]) Remove(id int) (E, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.byID[id]
	if !ok {
		return e, false
	}
	delete(r.byID, id)
	for i, item := range r.items {
		if item.ID() == id {
			r.items = append(r.items[:i], r.items[i+1:]...)
			break
		}
	}
	return e, true
}

// List returns a snapshot in creation order.
func (r *Registry[E]) List() []E {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]E, len(r.items))
	copy(out, r.items)
	return out
}

// IDs returns the ids in creation order.
func (r *Registry[E]) IDs() []int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]int, len(r.items))
	for i, item := range r.items {
		out[i] = item.ID()
	}
	return out
}

// Len returns the number of entities.
func (r *Registry[E]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}

// Reconcile removes every entity whose id is not in alive and returns the
// removed entities in creation order. Ids in alive that were never added
// are ignored.
func (r *Registry[E]) Reconcile(alive []int) []E {
	live := make(map[int]bool, len(alive))
	for _, id := range alive {
		live[id] = true
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var removed []E
	kept := r.items[:0]
	for _, item := range r.items {
		if live[item.ID()] {
			kept = append(kept, item)
			continue
		}
		removed = append(removed, item)
		delete(r.byID, item.ID())
	}
	// Clear the tail so removed entities can be collected.
	var zero E
	for i := len(kept); i < len(r.items); i++ {
		r.items[i] = zero
	}
	r.items = kept
	return removed
}

// Clear removes and returns every entity.
func (r *Registry[E]) Clear() []E {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.items
	r.items = nil
	r.byID = make(map[int]E)
	return out
}
