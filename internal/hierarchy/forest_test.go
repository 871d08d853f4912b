package hierarchy

import (
	"testing"

	"github.com/ppiankov/factgraph/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hp(parent, child string) model.BinaryFact {
	return model.BinaryFact{Predicate: "has_part", Subject: parent, Object: child}
}

func collect(t *testing.T, f *Forest, tr *Traversal, root string) []Edge {
	t.Helper()
	var edges []Edge
	require.NoError(t, f.Walk(root, tr, func(e Edge) error {
		edges = append(edges, e)
		return nil
	}))
	return edges
}

func TestBuild_ChainAndRoot(t *testing.T) {
	f, diags := Build([]model.BinaryFact{hp("body", "arm"), hp("arm", "hand")})
	require.Empty(t, diags)

	assert.Equal(t, "body", f.FindRoot("hand"))
	assert.Equal(t, "body", f.FindRoot("arm"))
	assert.Equal(t, "body", f.FindRoot("body"))
	assert.Equal(t, []string{"body"}, f.Roots())
}

func TestBuild_RootResolvedAcrossFactOrder(t *testing.T) {
	// The parent of x only appears after x's own fact.
	f, _ := Build([]model.BinaryFact{hp("x", "y"), hp("z", "x")})
	assert.Equal(t, "z", f.FindRoot("x"))
	assert.Equal(t, "z", f.FindRoot("y"))
}

func TestBuild_SelfReferentialDropped(t *testing.T) {
	f, diags := Build([]model.BinaryFact{hp("a", "a"), hp("a", "b")})

	require.Len(t, diags, 1)
	assert.Equal(t, model.DiagSelfReferential, diags[0].Kind)
	assert.False(t, f.HasEdge("a", "a"))
	assert.True(t, f.HasEdge("a", "b"))
}

func TestBuild_DuplicateEdgesCollapsed(t *testing.T) {
	f, diags := Build([]model.BinaryFact{
		hp("body", "arm"),
		hp("body", "arm"),
		{Predicate: "contains", Subject: "body", Object: "arm"},
	})
	require.Empty(t, diags)

	children := f.Children("body")
	require.Len(t, children, 1)
	assert.Equal(t, "has_part", children[0].Predicate)
}

func TestBuild_TwoCycleKept(t *testing.T) {
	f, diags := Build([]model.BinaryFact{hp("a", "b"), hp("b", "a")})

	require.Len(t, diags, 1)
	assert.Equal(t, model.DiagCycleBroken, diags[0].Kind)
	assert.True(t, f.HasEdge("a", "b"))
	assert.True(t, f.HasEdge("b", "a"))
	assert.Empty(t, f.Roots())

	assert.Equal(t, "a", f.FindRoot("a"))
	assert.Equal(t, "b", f.FindRoot("b"))

	edges := collect(t, f, NewTraversal(), "a")
	require.Len(t, edges, 2)
	assert.Equal(t, Edge{Predicate: "has_part", Parent: "a", Child: "b"}, edges[0])
	assert.Equal(t, Edge{Predicate: "has_part", Parent: "b", Child: "a", Claimed: true}, edges[1])
}

func TestWalk_PlacedStructureIsAcyclic(t *testing.T) {
	facts := []model.BinaryFact{
		hp("a", "b"), hp("b", "c"), hp("c", "a"),
		hp("c", "d"), hp("d", "b"), hp("e", "e"),
		hp("x", "y"), hp("y", "z"), hp("z", "x"), hp("z", "y"),
	}
	f, _ := Build(facts)
	tr := NewTraversal()

	placedUnder := make(map[string]string)
	for _, fact := range facts {
		if fact.IsSelfReferential() {
			continue
		}
		for _, e := range collect(t, f, tr, f.FindRoot(fact.Subject)) {
			if e.Claimed {
				continue
			}
			_, dup := placedUnder[e.Child]
			require.False(t, dup, "%q nested twice", e.Child)
			placedUnder[e.Child] = e.Parent
		}
	}

	for _, entity := range f.Entities() {
		assert.True(t, tr.Claimed(entity), "%q never placed", entity)
		assert.False(t, f.HasEdge(entity, entity))

		seen := make(map[string]bool)
		for cur, ok := entity, true; ok; cur, ok = placedUnder[cur] {
			require.False(t, seen[cur], "%q is its own ancestor", entity)
			seen[cur] = true
		}
	}
}

func TestFindRoot_TerminatesOnEveryEntity(t *testing.T) {
	var facts []model.BinaryFact
	names := []string{"n0", "n1", "n2", "n3", "n4", "n5"}
	for i := range names {
		facts = append(facts, hp(names[i], names[(i+1)%len(names)]))
	}
	f, diags := Build(facts)
	require.Len(t, diags, 1)
	assert.Equal(t, model.DiagCycleBroken, diags[0].Kind)

	// Every entity of a pure cycle walks all the way around back to itself.
	for _, n := range names {
		assert.Equal(t, n, f.FindRoot(n))
	}
}

func TestFindRoot_CycleRootIsFirstRevisited(t *testing.T) {
	f, _ := Build([]model.BinaryFact{hp("b", "c"), hp("a", "b"), hp("c", "a")})

	assert.Equal(t, "b", f.FindRoot("b"))
	assert.Equal(t, "a", f.FindRoot("a"))
	assert.Equal(t, "c", f.FindRoot("c"))

	var got [][2]string
	for _, e := range collect(t, f, NewTraversal(), "b") {
		got = append(got, [2]string{e.Parent, e.Child})
	}
	assert.Equal(t, [][2]string{{"b", "c"}, {"c", "a"}, {"a", "b"}}, got)
}

func TestFindRoot_UnknownEntityIsItsOwnRoot(t *testing.T) {
	f, _ := Build(nil)
	assert.Equal(t, "ghost", f.FindRoot("ghost"))
}

func TestFindRoot_GuardsAgainstCyclicParents(t *testing.T) {
	// Bypass Build to exercise the revisit guard directly.
	f := newForest()
	f.parents["a"] = []string{"b"}
	f.parents["b"] = []string{"c"}
	f.parents["c"] = []string{"b"}

	assert.Equal(t, "b", f.FindRoot("a"))
}

func TestWalk_PreOrderInsertionOrder(t *testing.T) {
	f, _ := Build([]model.BinaryFact{
		hp("root", "b"), hp("root", "a"), hp("b", "b1"), hp("a", "a1"),
	})

	edges := collect(t, f, NewTraversal(), "root")

	var got [][2]string
	for _, e := range edges {
		got = append(got, [2]string{e.Parent, e.Child})
	}
	assert.Equal(t, [][2]string{
		{"root", "b"}, {"b", "b1"}, {"root", "a"}, {"a", "a1"},
	}, got)
}

func TestWalk_DAGNodeDescendedOnce(t *testing.T) {
	f, _ := Build([]model.BinaryFact{hp("a", "c"), hp("b", "c"), hp("c", "d")})
	tr := NewTraversal()

	first := collect(t, f, tr, "a")
	require.Len(t, first, 2)
	assert.False(t, first[0].Claimed)
	assert.Equal(t, "d", first[1].Child)

	second := collect(t, f, tr, "b")
	require.Len(t, second, 1)
	assert.Equal(t, "c", second[0].Child)
	assert.True(t, second[0].Claimed)
}

func TestWalk_ClaimedRootSkipped(t *testing.T) {
	f, _ := Build([]model.BinaryFact{hp("a", "b")})
	tr := NewTraversal()

	assert.Len(t, collect(t, f, tr, "a"), 1)
	assert.Empty(t, collect(t, f, tr, "a"))
	assert.Equal(t, []string{"a", "b"}, tr.Order())
}
