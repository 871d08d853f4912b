package hierarchy

// Traversal carries the claimed-entity set across the walks of one pass.
// It is owned by the caller and threaded through Forest.Walk explicitly.
type Traversal struct {
	claimed map[string]struct{}
	order   []string
}

// NewTraversal creates an empty traversal
func NewTraversal() *Traversal {
	return &Traversal{claimed: make(map[string]struct{})}
}

// Claim marks entity as placed. It returns false if it was already claimed.
func (t *Traversal) Claim(entity string) bool {
	if _, ok := t.claimed[entity]; ok {
		return false
	}
	t.claimed[entity] = struct{}{}
	t.order = append(t.order, entity)
	return true
}

// Claimed reports whether entity has been claimed
func (t *Traversal) Claimed(entity string) bool {
	_, ok := t.claimed[entity]
	return ok
}

// Order returns claimed entities in claim order
func (t *Traversal) Order() []string {
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}
