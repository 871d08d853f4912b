// Package relation partitions binary facts into hierarchical relations,
// which become containment, and associative relations, which become
// cross-links.
package relation

import (
	"strings"

	"github.com/ppiankov/factgraph/internal/model"
)

// Class is the role a binary relation plays in the materialized tree
type Class int

const (
	Associative  Class = iota // Rendered as a cross-link
	Hierarchical              // Subject contains object
)

func (c Class) String() string {
	if c == Hierarchical {
		return "hierarchical"
	}
	return "associative"
}

// Names is an immutable set of normalized relation names
type Names struct {
	set   map[string]struct{}
	order []string
}

// ParseNames parses a comma-separated relation list such as
// "has part, contains". Entries are trimmed and internal whitespace is
// replaced with underscores so they match predicate names.
func ParseNames(list string) Names {
	n := Names{set: make(map[string]struct{})}
	for _, entry := range strings.Split(list, ",") {
		name := Normalize(entry)
		if name == "" {
			continue
		}
		if _, dup := n.set[name]; dup {
			continue
		}
		n.set[name] = struct{}{}
		n.order = append(n.order, name)
	}
	return n
}

// Normalize trims a relation name and joins its words with underscores
func Normalize(name string) string {
	return strings.Join(strings.Fields(name), "_")
}

// Contains reports whether predicate is in the set (case-sensitive)
func (n Names) Contains(predicate string) bool {
	_, ok := n.set[predicate]
	return ok
}

// List returns the names in the order they were configured
func (n Names) List() []string {
	out := make([]string, len(n.order))
	copy(out, n.order)
	return out
}

// Len returns the number of distinct names
func (n Names) Len() int {
	return len(n.order)
}

// Classifier holds the parent and child relation sets for one invocation
type Classifier struct {
	parent Names
	child  Names
}

// NewClassifier parses both relation lists once
func NewClassifier(parentNames, childNames string) *Classifier {
	return &Classifier{
		parent: ParseNames(parentNames),
		child:  ParseNames(childNames),
	}
}

// Classified holds binary facts split by class, each in input order
type Classified struct {
	Hierarchical []model.BinaryFact
	Associative  []model.BinaryFact
}

// ClassOf returns the class of a predicate
func (c *Classifier) ClassOf(predicate string) Class {
	if c.parent.Contains(predicate) {
		return Hierarchical
	}
	return Associative
}

// IsChildRelation reports whether predicate was configured as a child
// relation. Child relations are still associative; this only lets callers
// describe them.
func (c *Classifier) IsChildRelation(predicate string) bool {
	return c.child.Contains(predicate)
}

// Parents returns the configured parent relation names
func (c *Classifier) Parents() Names { return c.parent }

// Children returns the configured child relation names
func (c *Classifier) Children() Names { return c.child }

// Classify splits facts into hierarchical and associative sequences
func (c *Classifier) Classify(facts []model.BinaryFact) Classified {
	var out Classified
	for _, f := range facts {
		if c.ClassOf(f.Predicate) == Hierarchical {
			out.Hierarchical = append(out.Hierarchical, f)
		} else {
			out.Associative = append(out.Associative, f)
		}
	}
	return out
}
