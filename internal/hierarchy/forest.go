// Package hierarchy builds the containment forest from hierarchical facts
// and walks it in a deterministic order.
package hierarchy

import (
	"fmt"

	"github.com/ppiankov/factgraph/internal/model"
)

// Edge is a parent -> child containment edge
type Edge struct {
	Predicate string // Predicate of the first fact that introduced the edge
	Parent    string
	Child     string

	// Claimed is set during a walk when Child had already been claimed, so
	// the walk reports the edge but does not descend into it.
	Claimed bool
}

// Forest is the parent -> children relation of the hierarchical facts.
//
// Children keep the insertion order of the facts that introduced them and
// each parent/child pair appears once. The relation may contain cycles:
// FindRoot stops at the first entity it meets twice and Walk never descends
// into a claimed entity.
type Forest struct {
	children map[string][]Edge
	parents  map[string][]string
	edges    map[[2]string]struct{}
	entities []string
	known    map[string]struct{}
}

func newForest() *Forest {
	return &Forest{
		children: make(map[string][]Edge),
		parents:  make(map[string][]string),
		edges:    make(map[[2]string]struct{}),
		known:    make(map[string]struct{}),
	}
}

// Build creates the forest from hierarchical facts, in order. Self-referential
// facts are dropped. An edge closing a cycle is kept and reported; the walk
// places each entity of the cycle once.
func Build(hierarchical []model.BinaryFact) (*Forest, []model.Diagnostic) {
	f := newForest()
	var diags []model.Diagnostic

	for _, fact := range hierarchical {
		if fact.IsSelfReferential() {
			diags = append(diags, model.Diagnostic{
				Kind:    model.DiagSelfReferential,
				Message: fmt.Sprintf("dropped %s", fact),
			})
			continue
		}

		parent, child := fact.Subject, fact.Object
		key := [2]string{parent, child}
		if _, dup := f.edges[key]; dup {
			continue
		}

		f.remember(parent)
		f.remember(child)

		if f.reaches(child, parent) {
			diags = append(diags, model.Diagnostic{
				Kind:    model.DiagCycleBroken,
				Message: fmt.Sprintf("%s closes a cycle; %q is linked but not nested again", fact, child),
			})
		}

		f.edges[key] = struct{}{}
		f.children[parent] = append(f.children[parent], Edge{Predicate: fact.Predicate, Parent: parent, Child: child})
		f.parents[child] = append(f.parents[child], parent)
	}

	return f, diags
}

func (f *Forest) remember(entity string) {
	if _, ok := f.known[entity]; ok {
		return
	}
	f.known[entity] = struct{}{}
	f.entities = append(f.entities, entity)
}

// reaches reports whether target is reachable from start by child edges
func (f *Forest) reaches(start, target string) bool {
	if start == target {
		return true
	}
	seen := map[string]struct{}{start: {}}
	stack := []string{start}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, e := range f.children[n] {
			if e.Child == target {
				return true
			}
			if _, ok := seen[e.Child]; !ok {
				seen[e.Child] = struct{}{}
				stack = append(stack, e.Child)
			}
		}
	}
	return false
}

// FindRoot walks backward from entity through its first parent until it
// reaches an entity without a parent. Inside a cycle the walk ends at the
// first entity met twice, which is returned as the root.
func (f *Forest) FindRoot(entity string) string {
	visited := make(map[string]struct{})
	cur := entity
	for {
		if _, seen := visited[cur]; seen {
			return cur
		}
		visited[cur] = struct{}{}

		ps := f.parents[cur]
		if len(ps) == 0 {
			return cur
		}
		cur = ps[0]
	}
}

// Walk traverses the subtree under root in pre-order, calling visit for
// every edge. The traversal claims every entity it descends into; an
// already claimed child is reported with Claimed set and not descended
// into. A root that is already claimed is not walked again.
func (f *Forest) Walk(root string, t *Traversal, visit func(Edge) error) error {
	if !t.Claim(root) {
		return nil
	}
	return f.walk(root, t, visit)
}

func (f *Forest) walk(node string, t *Traversal, visit func(Edge) error) error {
	for _, e := range f.children[node] {
		e.Claimed = !t.Claim(e.Child)
		if err := visit(e); err != nil {
			return err
		}
		if e.Claimed {
			continue
		}
		if err := f.walk(e.Child, t, visit); err != nil {
			return err
		}
	}
	return nil
}

// Children returns the edges leaving entity, in insertion order
func (f *Forest) Children(entity string) []Edge {
	out := make([]Edge, len(f.children[entity]))
	copy(out, f.children[entity])
	return out
}

// Parents returns the parents of entity, in insertion order
func (f *Forest) Parents(entity string) []string {
	out := make([]string, len(f.parents[entity]))
	copy(out, f.parents[entity])
	return out
}

// HasEdge reports whether parent -> child is a forest edge
func (f *Forest) HasEdge(parent, child string) bool {
	_, ok := f.edges[[2]string{parent, child}]
	return ok
}

// Entities returns every entity seen in an edge, first-seen order
func (f *Forest) Entities() []string {
	out := make([]string, len(f.entities))
	copy(out, f.entities)
	return out
}

// Roots returns entities that have no parent, first-seen order
func (f *Forest) Roots() []string {
	var roots []string
	for _, e := range f.entities {
		if len(f.parents[e]) == 0 {
			roots = append(roots, e)
		}
	}
	return roots
}
