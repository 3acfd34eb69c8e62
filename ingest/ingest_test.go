package ingest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const jsonDoc = `{
  "name": "demo",
  "nodes": [
    {"id": "a", "label": "Alpha", "pinned": true},
    {"id": "b", "label": "Beta", "position": {"x": 1, "y": 2, "z": 3}, "size": 2}
  ],
  "edges": [
    {"id": "ab", "from": "a", "to": "b", "kind": "supports", "bidirectional": true},
    {"from": "b", "to": "ghost", "kind": "cites"}
  ]
}`

const yamlDoc = `
name: demo
nodes:
  - id: a
    label: Alpha
    pinned: true
  - id: b
    position: {x: 1, y: 2, z: 3}
edges:
  - id: ab
    from: a
    to: b
    bidirectional: true
`

func TestDecodeJSON_FullDocument(t *testing.T) {
	g, err := DecodeJSON([]byte(jsonDoc))
	require.NoError(t, err)

	assert.Equal(t, 2, g.NodeCount())
	assert.Equal(t, 2, g.EdgeCount())

	a := g.Node("a")
	require.NotNil(t, a)
	assert.True(t, a.Pinned)
	assert.Equal(t, 1.0, a.Size, "missing size defaults to 1")

	b := g.Node("b")
	require.NotNil(t, b)
	assert.Equal(t, 1.0, b.Position.X)
	assert.Equal(t, 2.0, b.Size)

	assert.True(t, g.IsConnected("a", "b"))
	assert.True(t, g.IsConnected("b", "a"))
	// The dangling edge is kept but contributes no adjacency.
	assert.False(t, g.IsConnected("b", "ghost"))
}

func TestDecodeJSON_GeneratesMissingEdgeIDs(t *testing.T) {
	g, err := DecodeJSON([]byte(jsonDoc))
	require.NoError(t, err)

	for _, e := range g.Edges() {
		assert.NotEmpty(t, e.ID)
	}
}

func TestDecodeYAML_MatchesJSONShape(t *testing.T) {
	g, err := DecodeYAML([]byte(yamlDoc))
	require.NoError(t, err)

	assert.Equal(t, 2, g.NodeCount())
	assert.Equal(t, 1, g.EdgeCount())
	assert.True(t, g.Node("a").Pinned)
	assert.Equal(t, 3.0, g.Node("b").Position.Z)
}

func TestBuild_RejectsBadDocuments(t *testing.T) {
	_, err := DecodeJSON([]byte(`{"nodes": [{"label": "no id"}]}`))
	assert.ErrorContains(t, err, "no id")

	_, err = DecodeJSON([]byte(`{"nodes": [{"id": "a"}, {"id": "a"}]}`))
	assert.ErrorContains(t, err, "duplicate")

	_, err = DecodeJSON([]byte(`{"nodes": [{"id": "a"}], "edges": [{"from": "a"}]}`))
	assert.ErrorContains(t, err, "missing an endpoint")

	_, err = DecodeJSON([]byte(`{not json`))
	assert.Error(t, err)
}

func TestLoadGraph_DispatchesOnExtension(t *testing.T) {
	dir := t.TempDir()

	jsonPath := filepath.Join(dir, "g.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(jsonDoc), 0o644))
	g, err := LoadGraph(jsonPath)
	require.NoError(t, err)
	assert.Equal(t, 2, g.NodeCount())

	yamlPath := filepath.Join(dir, "g.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(yamlDoc), 0o644))
	g, err = LoadGraph(yamlPath)
	require.NoError(t, err)
	assert.Equal(t, 2, g.NodeCount())

	badPath := filepath.Join(dir, "g.csv")
	require.NoError(t, os.WriteFile(badPath, []byte("a,b"), 0o644))
	_, err = LoadGraph(badPath)
	assert.ErrorContains(t, err, "unsupported graph format")

	_, err = LoadGraph(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}

func TestLoadParams_LayeredOverDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "params.yaml")
	require.NoError(t, os.WriteFile(path, []byte("optimalDistance: 2.5\naccel: octree\n"), 0o644))

	p, err := LoadParams(path)
	require.NoError(t, err)
	assert.Equal(t, 2.5, p.OptimalDistance)
	assert.EqualValues(t, "octree", p.Accel)
	// Untouched fields keep their defaults.
	assert.Equal(t, 0.8, p.Damping)
}

func TestLoadParams_ValidatesResult(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "params.yaml")
	require.NoError(t, os.WriteFile(path, []byte("damping: 7\n"), 0o644))

	_, err := LoadParams(path)
	assert.ErrorContains(t, err, "damping")
}
