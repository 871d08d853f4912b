package model

import "fmt"

// UnaryFact is a single-argument assertion such as person(alice).
type UnaryFact struct {
	Predicate string `json:"predicate"`
	Argument  string `json:"argument"`
}

// BinaryFact is a two-argument assertion such as has_part(body, arm).
// Facts are compared by their full tuple.
type BinaryFact struct {
	Predicate string `json:"predicate"`
	Subject   string `json:"subject"`
	Object    string `json:"object"`
}

func (f BinaryFact) String() string {
	return fmt.Sprintf("%s(%s, %s)", f.Predicate, f.Subject, f.Object)
}

// IsSelfReferential reports whether subject and object are the same entity
func (f BinaryFact) IsSelfReferential() bool {
	return f.Subject == f.Object
}

// FactSet is the result of parsing fact-bearing text.
//
// Unary arguments are unique per predicate. Binary facts keep their input
// order (including duplicates) because order decides write order and
// first-match placement downstream.
type FactSet struct {
	Binary []BinaryFact `json:"binary"`

	unaryOrder []string
	unary      map[string][]string
	unarySeen  map[string]map[string]struct{}
}

// NewFactSet creates an empty fact set
func NewFactSet() *FactSet {
	return &FactSet{
		unary:     make(map[string][]string),
		unarySeen: make(map[string]map[string]struct{}),
	}
}

// AddBinary appends a binary fact
func (s *FactSet) AddBinary(f BinaryFact) {
	s.Binary = append(s.Binary, f)
}

// AddUnary records argument under predicate. It returns false when the pair
// was already present.
func (s *FactSet) AddUnary(predicate, argument string) bool {
	seen, ok := s.unarySeen[predicate]
	if !ok {
		seen = make(map[string]struct{})
		s.unarySeen[predicate] = seen
		s.unaryOrder = append(s.unaryOrder, predicate)
	}
	if _, dup := seen[argument]; dup {
		return false
	}
	seen[argument] = struct{}{}
	s.unary[predicate] = append(s.unary[predicate], argument)
	return true
}

// UnaryPredicates returns unary predicate names in first-seen order
func (s *FactSet) UnaryPredicates() []string {
	out := make([]string, len(s.unaryOrder))
	copy(out, s.unaryOrder)
	return out
}

// Arguments returns the distinct arguments recorded for a unary predicate
func (s *FactSet) Arguments(predicate string) []string {
	args := s.unary[predicate]
	out := make([]string, len(args))
	copy(out, args)
	return out
}

// Unary flattens the unary mapping into facts, predicates and arguments in
// first-seen order.
func (s *FactSet) Unary() []UnaryFact {
	var out []UnaryFact
	for _, p := range s.unaryOrder {
		for _, a := range s.unary[p] {
			out = append(out, UnaryFact{Predicate: p, Argument: a})
		}
	}
	return out
}

// UnaryCount returns the number of distinct unary facts
func (s *FactSet) UnaryCount() int {
	n := 0
	for _, args := range s.unary {
		n += len(args)
	}
	return n
}

// Merge appends other's facts to s, keeping binary order and unary
// uniqueness.
func (s *FactSet) Merge(other *FactSet) {
	if other == nil {
		return
	}
	s.Binary = append(s.Binary, other.Binary...)
	for _, f := range other.Unary() {
		s.AddUnary(f.Predicate, f.Argument)
	}
}
