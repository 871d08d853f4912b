package relation

import (
	"testing"

	"github.com/ppiankov/factgraph/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestParseNames(t *testing.T) {
	tests := []struct {
		name string
		list string
		want []string
	}{
		{"single", "has part", []string{"has_part"}},
		{"comma space", "has part, contains", []string{"has_part", "contains"}},
		{"comma only", "has_part,contains", []string{"has_part", "contains"}},
		{"extra whitespace", "  has   proper part ,  ", []string{"has_proper_part"}},
		{"duplicates", "has part, has_part", []string{"has_part"}},
		{"empty", "", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseNames(tt.list).List())
		})
	}
}

func TestClassify_PreservesOrder(t *testing.T) {
	c := NewClassifier("has part, contains", "part of")

	facts := []model.BinaryFact{
		{Predicate: "has_part", Subject: "body", Object: "arm"},
		{Predicate: "likes", Subject: "alice", Object: "bob"},
		{Predicate: "part_of", Subject: "hand", Object: "arm"},
		{Predicate: "contains", Subject: "arm", Object: "hand"},
	}

	got := c.Classify(facts)

	assert.Equal(t, []model.BinaryFact{facts[0], facts[3]}, got.Hierarchical)
	assert.Equal(t, []model.BinaryFact{facts[1], facts[2]}, got.Associative)
}

func TestClassify_CaseSensitive(t *testing.T) {
	c := NewClassifier("has part", "")
	assert.Equal(t, Associative, c.ClassOf("Has_Part"))
	assert.Equal(t, Hierarchical, c.ClassOf("has_part"))
}

func TestClassify_ChildRelationsAreAssociative(t *testing.T) {
	c := NewClassifier("has part", "part of")
	assert.Equal(t, Associative, c.ClassOf("part_of"))
	assert.True(t, c.IsChildRelation("part_of"))
	assert.False(t, c.IsChildRelation("likes"))
}

func TestClassify_EmptyLists(t *testing.T) {
	c := NewClassifier("", "")
	got := c.Classify([]model.BinaryFact{
		{Predicate: "likes", Subject: "alice", Object: "bob"},
		{Predicate: "likes", Subject: "bob", Object: "alice"},
	})
	assert.Empty(t, got.Hierarchical)
	assert.Len(t, got.Associative, 2)
}
