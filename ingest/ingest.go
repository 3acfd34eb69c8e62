// Package ingest reads graph documents (JSON or YAML) and layout parameter
// files into the engine's in-memory types. It is a caller-side convenience;
// the engine itself never touches the filesystem.
package ingest

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/TFMV/gravmesh/graph"
	"github.com/TFMV/gravmesh/physics"
)

// Document is the wire shape of a graph file.
type Document struct {
	Name  string        `json:"name,omitempty" yaml:"name,omitempty"`
	Nodes []*graph.Node `json:"nodes" yaml:"nodes"`
	Edges []*graph.Edge `json:"edges,omitempty" yaml:"edges,omitempty"`
}

// Build assembles a Graph from the document. Node ids must be present and
// unique; edge ids are generated when omitted. Edges referencing unknown
// nodes are accepted and stay dangling, matching the engine's tolerance.
func (d *Document) Build() (*graph.Graph, error) {
	g := graph.New()
	for i, n := range d.Nodes {
		if n.ID == "" {
			return nil, errors.Errorf("ingest: node %d has no id", i)
		}
		if g.Node(n.ID) != nil {
			return nil, errors.Errorf("ingest: duplicate node id %q", n.ID)
		}
		if n.Size == 0 {
			n.Size = 1.0
		}
		g.AddNode(n)
	}
	for _, e := range d.Edges {
		if e.From == "" || e.To == "" {
			return nil, errors.Errorf("ingest: edge %q is missing an endpoint", e.ID)
		}
		if e.ID == "" {
			withID := graph.NewEdge(e.From, e.To, e.Kind)
			withID.Bidirectional = e.Bidirectional
			withID.Note = e.Note
			e = withID
		}
		g.AddEdge(e)
	}
	return g, nil
}

// DecodeJSON parses a JSON graph document.
func DecodeJSON(data []byte) (*graph.Graph, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(err, "ingest: parsing JSON graph")
	}
	return doc.Build()
}

// DecodeYAML parses a YAML graph document.
func DecodeYAML(data []byte) (*graph.Graph, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(err, "ingest: parsing YAML graph")
	}
	return doc.Build()
}

// LoadGraph reads a graph document, choosing the decoder by file extension.
func LoadGraph(path string) (*graph.Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "ingest: reading %s", path)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return DecodeJSON(data)
	case ".yaml", ".yml":
		return DecodeYAML(data)
	default:
		return nil, errors.Errorf("ingest: unsupported graph format %q", filepath.Ext(path))
	}
}

// LoadParams reads a YAML parameter file layered over the defaults, so a
// file only needs to name the values it changes. The result is validated
// before it is returned.
func LoadParams(path string) (physics.Params, error) {
	p := physics.DefaultParams()
	data, err := os.ReadFile(path)
	if err != nil {
		return p, errors.Wrapf(err, "ingest: reading %s", path)
	}
	if err := yaml.Unmarshal(data, &p); err != nil {
		return p, errors.Wrap(err, "ingest: parsing params")
	}
	if err := p.Validate(); err != nil {
		return p, err
	}
	return p, nil
}
