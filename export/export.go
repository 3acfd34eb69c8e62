// Package export serializes a laid-out graph for downstream consumers:
// JSON for programmatic use and Graphviz DOT for quick visual inspection.
// Exporters read the graph; they never mutate it.
package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/TFMV/gravmesh/graph"
)

// Exporter turns a graph into a byte representation.
type Exporter interface {
	Export(g *graph.Graph) ([]byte, error)
	Name() string
}

// New returns the exporter for the given format name.
func New(format string) (Exporter, error) {
	switch format {
	case "json":
		return &JSONExporter{Indent: true}, nil
	case "dot":
		return &DOTExporter{}, nil
	default:
		return nil, fmt.Errorf("export: unsupported format %q (want json or dot)", format)
	}
}

// JSONExporter emits the graph document shape ingest reads, positions
// included, so a layout round-trips through files.
type JSONExporter struct {
	Indent bool
}

func (e *JSONExporter) Name() string { return "json" }

type jsonDocument struct {
	Nodes []*graph.Node `json:"nodes"`
	Edges []*graph.Edge `json:"edges,omitempty"`
}

func (e *JSONExporter) Export(g *graph.Graph) ([]byte, error) {
	doc := jsonDocument{Nodes: g.Nodes(), Edges: g.Edges()}
	if e.Indent {
		return json.MarshalIndent(doc, "", "  ")
	}
	return json.Marshal(doc)
}

// DOTExporter emits a Graphviz digraph. Node positions land in a pos
// attribute ("x,y,z"); bidirectional edges render with dir=both.
type DOTExporter struct{}

func (e *DOTExporter) Name() string { return "dot" }

func (e *DOTExporter) Export(g *graph.Graph) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("digraph layout {\n")
	buf.WriteString("  node [shape=circle];\n")

	for _, n := range g.Nodes() {
		label := n.Label
		if label == "" {
			label = n.ID
		}
		fmt.Fprintf(&buf, "  %s [label=%s, pos=\"%.4f,%.4f,%.4f\"];\n",
			quoteID(n.ID), quoteID(label), n.Position.X, n.Position.Y, n.Position.Z)
	}

	for _, e := range g.Edges() {
		attrs := make([]string, 0, 2)
		if e.Kind != "" {
			attrs = append(attrs, fmt.Sprintf("label=%s", quoteID(e.Kind)))
		}
		if e.Bidirectional {
			attrs = append(attrs, "dir=both")
		}
		fmt.Fprintf(&buf, "  %s -> %s", quoteID(e.From), quoteID(e.To))
		if len(attrs) > 0 {
			fmt.Fprintf(&buf, " [%s]", strings.Join(attrs, ", "))
		}
		buf.WriteString(";\n")
	}

	buf.WriteString("}\n")
	return buf.Bytes(), nil
}

// quoteID wraps a value in DOT double quotes, escaping embedded ones.
func quoteID(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
}
