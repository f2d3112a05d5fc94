package topic

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chain() *Graph {
	return NewGraph([]Entry{
		{Source: "A", Edges: []Edge{{Target: "B", Weight: 2}}},
		{Source: "B", Edges: []Edge{{Target: "C", Weight: 3}}},
		{Source: "Z"},
	})
}

func TestDistanceToSelfIsZero(t *testing.T) {
	g := DefaultGraph()
	for _, name := range g.Topics() {
		assert.Zero(t, g.Distance(name, name), name)
	}
}

func TestDistanceAlongChain(t *testing.T) {
	g := chain()
	assert.Equal(t, 2.0, g.Distance("A", "B"))
	assert.Equal(t, 5.0, g.Distance("A", "C"))
}

func TestDistanceIsDirected(t *testing.T) {
	g := chain()
	assert.True(t, math.IsInf(g.Distance("C", "A"), 1))
}

func TestDistanceToIsolatedNodeIsInfinite(t *testing.T) {
	g := chain()
	require.True(t, g.Has("Z"))
	for _, from := range []string{"A", "B", "C"} {
		assert.True(t, math.IsInf(g.Distance(from, "Z"), 1), from)
	}
}

func TestDistanceFromUnknownStartIsInfinite(t *testing.T) {
	g := chain()
	assert.True(t, math.IsInf(g.Distance("missing", "A"), 1))
	assert.True(t, math.IsInf(g.Distance("missing", "missing"), 1))
}

func TestDistancePrefersCheaperPath(t *testing.T) {
	g := NewGraph([]Entry{
		{Source: "S", Edges: []Edge{{Target: "T", Weight: 10}, {Target: "M", Weight: 1}}},
		{Source: "M", Edges: []Edge{{Target: "T", Weight: 2}}},
	})
	assert.Equal(t, 3.0, g.Distance("S", "T"))
}

func TestDefaultGraphShape(t *testing.T) {
	g := DefaultGraph()
	topics := g.Topics()
	assert.Len(t, topics, 74)
	assert.Equal(t, "Health", topics[0])
	assert.Equal(t, 2.0, g.Distance("Parenting", "Role Model")+g.Distance("Role Model", "Parenting"))
	assert.Equal(t, 3.0, g.Distance("Health", "Hypertension"))
	// Leaf topics that only appear as targets have no outgoing edges.
	assert.True(t, math.IsInf(g.Distance("Maternal Health", "Health"), 1))
}

func TestLoadGraphJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "graph.json")
	data := `{"B": {"C": 3}, "A": {"B": 2}}`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	g, err := LoadGraphJSON(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C"}, g.Topics())
	assert.Equal(t, 5.0, g.Distance("A", "C"))
}
