package graph_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alextanhongpin/go-social/pkg/graph"
)

func newGraph(t *testing.T, nodes []string, edges [][2]string) *graph.Graph {
	t.Helper()

	g := graph.New()
	for _, n := range nodes {
		g.AddNode(n)
	}
	for _, e := range edges {
		require.True(t, g.AddEdge(e[0], e[1]))
	}
	return g
}

func TestAddNode(t *testing.T) {
	g := graph.New()

	assert.True(t, g.AddNode("alice"))
	assert.False(t, g.AddNode("alice"), "second insert is not a new node")
	assert.True(t, g.HasNode("alice"))
	assert.False(t, g.HasNode("bob"))
	assert.Equal(t, 1, g.Len())
}

func TestAddEdge(t *testing.T) {
	g := newGraph(t, []string{"alice", "bob"}, nil)

	assert.False(t, g.AddEdge("alice", "carol"), "both endpoints must exist")
	assert.False(t, g.AddEdge("alice", "alice"), "no self loops")

	assert.True(t, g.AddEdge("alice", "bob"))
	assert.True(t, g.HasEdge("alice", "bob"))
	assert.True(t, g.HasEdge("bob", "alice"), "edges are undirected")

	// Idempotent: no duplicate edge, no error.
	assert.True(t, g.AddEdge("alice", "bob"))
	assert.Equal(t, 1, g.Degree("alice"))
	assert.Equal(t, 1, g.Degree("bob"))
}

func TestRemoveEdge(t *testing.T) {
	g := newGraph(t, []string{"alice", "bob", "carol"}, [][2]string{{"alice", "bob"}})

	assert.False(t, g.RemoveEdge("alice", "carol"), "missing edge reports failure")
	assert.True(t, g.RemoveEdge("alice", "bob"))
	assert.False(t, g.HasEdge("bob", "alice"))
	assert.False(t, g.RemoveEdge("alice", "bob"), "second remove reports failure")
}

func TestShortestPath(t *testing.T) {
	// a-b-c-d path plus a disconnected node.
	g := newGraph(t,
		[]string{"a", "b", "c", "d", "loner"},
		[][2]string{{"a", "b"}, {"b", "c"}, {"c", "d"}},
	)

	path, ok := g.ShortestPath("a", "d")
	require.True(t, ok)
	assert.Equal(t, []string{"a", "b", "c", "d"}, path)

	path, ok = g.ShortestPath("a", "a")
	require.True(t, ok)
	assert.Equal(t, []string{"a"}, path)

	_, ok = g.ShortestPath("a", "loner")
	assert.False(t, ok, "different components have no path")

	_, ok = g.ShortestPath("a", "ghost")
	assert.False(t, ok, "absent node has no path")
}

func TestShortestPathPicksMinimumLength(t *testing.T) {
	// Two routes from a to d: a-b-d (2 edges) and a-x-y-d (3 edges).
	g := newGraph(t,
		[]string{"a", "b", "d", "x", "y"},
		[][2]string{{"a", "b"}, {"b", "d"}, {"a", "x"}, {"x", "y"}, {"y", "d"}},
	)

	path, ok := g.ShortestPath("a", "d")
	require.True(t, ok)
	assert.Len(t, path, 3)
	assert.Equal(t, []string{"a", "b", "d"}, path)
}

func TestStats(t *testing.T) {
	t.Run("empty graph", func(t *testing.T) {
		_, ok := graph.New().Stats()
		assert.False(t, ok)
	})

	t.Run("degrees", func(t *testing.T) {
		// a:3 b:1 c:2 d:2 over edges a-b, a-c, a-d, c-d.
		g := newGraph(t,
			[]string{"a", "b", "c", "d"},
			[][2]string{{"a", "b"}, {"a", "c"}, {"a", "d"}, {"c", "d"}},
		)

		stats, ok := g.Stats()
		require.True(t, ok)
		assert.Equal(t, "a", stats.MaxUser)
		assert.Equal(t, 3, stats.Max)
		assert.Equal(t, "b", stats.MinUser)
		assert.Equal(t, 1, stats.Min)
		assert.Equal(t, 2.0, stats.Avg)
	})

	t.Run("single isolated node", func(t *testing.T) {
		g := newGraph(t, []string{"a"}, nil)

		stats, ok := g.Stats()
		require.True(t, ok)
		assert.Equal(t, "a", stats.MaxUser)
		assert.Equal(t, 0, stats.Max)
		assert.Equal(t, 0.0, stats.Avg)
	})
}

func TestSuggestions(t *testing.T) {
	// Square: a-b, a-c, b-d, c-d. For a, d is reachable through both b
	// and c.
	g := newGraph(t,
		[]string{"a", "b", "c", "d", "e"},
		[][2]string{{"a", "b"}, {"a", "c"}, {"b", "d"}, {"c", "d"}, {"b", "e"}},
	)

	got := g.Suggestions("a", 10)
	require.Len(t, got, 2)
	assert.Equal(t, graph.Candidate{Username: "d", Common: 2}, got[0], "two mutual friends ranks first")
	assert.Equal(t, graph.Candidate{Username: "e", Common: 1}, got[1])
}

func TestSuggestionsExcludesSelfAndFriends(t *testing.T) {
	g := newGraph(t,
		[]string{"a", "b", "c"},
		[][2]string{{"a", "b"}, {"a", "c"}, {"b", "c"}},
	)

	// All of b's and c's friends are either a itself or already a's
	// friends.
	assert.Empty(t, g.Suggestions("a", 10))
}

func TestSuggestionsNoFriends(t *testing.T) {
	g := newGraph(t, []string{"a", "b", "c"}, [][2]string{{"b", "c"}})

	assert.Empty(t, g.Suggestions("a", 10))
	assert.Empty(t, g.Suggestions("ghost", 10))
}

func TestSuggestionsLimit(t *testing.T) {
	g := graph.New()
	g.AddNode("hub")
	g.AddNode("me")
	g.AddEdge("me", "hub")

	// hub has 15 other friends; all are candidates for me.
	for _, n := range []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k", "l", "m", "n", "o"} {
		g.AddNode(n)
		g.AddEdge("hub", n)
	}

	assert.Len(t, g.Suggestions("me", 10), 10)
}
