// Package store holds the authoritative in-memory geometry state for one
// board. Persistence is an external collaborator fed by change events; the
// store itself never touches the network or disk.
package store

import (
	"sort"
	"sync"

	"github.com/samirrijal/geosketch/internal/core/domain"
)

// GeometryStore maps shape IDs to shapes. It owns its Shape instances
// exclusively: accessors return clones, mutations copy their input.
// All mutations are atomic with respect to concurrent readers.
type GeometryStore struct {
	mu     sync.RWMutex
	shapes map[string]*domain.Shape
}

// New creates an empty GeometryStore.
func New() *GeometryStore {
	return &GeometryStore{shapes: make(map[string]*domain.Shape)}
}

// Get returns a copy of the shape, or domain.ErrNotFound.
func (g *GeometryStore) Get(id string) (*domain.Shape, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	s, ok := g.shapes[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return s.Clone(), nil
}

// Has reports whether a shape with the given ID exists.
func (g *GeometryStore) Has(id string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.shapes[id]
	return ok
}

// Put inserts or replaces a shape and increments its version counter.
// It returns a copy of the stored shape.
func (g *GeometryStore) Put(s *domain.Shape) *domain.Shape {
	g.mu.Lock()
	defer g.mu.Unlock()
	stored := s.Clone()
	if prev, ok := g.shapes[s.ID]; ok {
		stored.Version = prev.Version + 1
		stored.CreatedAt = prev.CreatedAt
	} else {
		stored.Version = 1
	}
	g.shapes[s.ID] = stored
	return stored.Clone()
}

// Restore reinstates a shape exactly as given, version included. Used by
// undo replay so a round trip leaves the store byte-for-byte identical.
func (g *GeometryStore) Restore(s *domain.Shape) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.shapes[s.ID] = s.Clone()
}

// Remove deletes a shape, returning the removed copy or domain.ErrNotFound.
func (g *GeometryStore) Remove(id string) (*domain.Shape, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	s, ok := g.shapes[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	delete(g.shapes, id)
	return s, nil
}

// Len returns the number of shapes held.
func (g *GeometryStore) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.shapes)
}

// List returns copies of all shapes ordered by ID.
func (g *GeometryStore) List() []*domain.Shape {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]*domain.Shape, 0, len(g.shapes))
	for _, s := range g.shapes {
		out = append(out, s.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ListInBounds returns copies of shapes whose bounding box intersects b,
// ordered by ID.
func (g *GeometryStore) ListInBounds(b domain.Bounds) []*domain.Shape {
	g.mu.RLock()
	defer g.mu.RUnlock()
	var out []*domain.Shape
	for _, s := range g.shapes {
		sb := s.BoundingBox()
		if sb.MinLat > b.MaxLat || sb.MaxLat < b.MinLat ||
			sb.MinLon > b.MaxLon || sb.MaxLon < b.MinLon {
			continue
		}
		out = append(out, s.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
