package materialize

import (
	"github.com/ppiankov/factgraph/internal/hierarchy"
	"github.com/ppiankov/factgraph/internal/store"
)

// PlacementIndex maps each entity to the container it was materialized
// into during one pass. It owns the hierarchy traversal so the claimed set
// and the placements stay in step.
type PlacementIndex struct {
	paths     map[string]store.Path
	traversal *hierarchy.Traversal
}

func newPlacementIndex() *PlacementIndex {
	return &PlacementIndex{
		paths:     make(map[string]store.Path),
		traversal: hierarchy.NewTraversal(),
	}
}

func (p *PlacementIndex) place(entity string, path store.Path) {
	if _, ok := p.paths[entity]; ok {
		return
	}
	p.paths[entity] = path
}

// Lookup returns the container an entity was placed in
func (p *PlacementIndex) Lookup(entity string) (store.Path, bool) {
	path, ok := p.paths[entity]
	return path, ok
}

// Len returns how many entities were placed
func (p *PlacementIndex) Len() int {
	return len(p.paths)
}
