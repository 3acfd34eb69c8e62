// Package graph provides the canonical in-memory graph structure consumed by
// the layout engine: nodes with 3D positions and velocities, directed
// (optionally bidirectional) edges, and a derived adjacency index.
package graph

import (
	"sort"

	"github.com/google/uuid"
)

// Node is a point entity in the graph. Position and velocity are mutated by
// the simulator every tick unless the node is pinned; Size only matters to
// renderers and never affects physics.
type Node struct {
	ID       string  `json:"id" yaml:"id"`
	Label    string  `json:"label,omitempty" yaml:"label,omitempty"`
	Position Vector3 `json:"position" yaml:"position"`
	Velocity Vector3 `json:"velocity,omitempty" yaml:"velocity,omitempty"`
	Size     float64 `json:"size,omitempty" yaml:"size,omitempty"`
	Pinned   bool    `json:"pinned,omitempty" yaml:"pinned,omitempty"`
}

// Edge is a directed relationship between two nodes. Kind is opaque to the
// layout engine; callers use it to classify relationships. An edge whose
// endpoints are missing from the graph is retained but exerts no force and
// appears in no adjacency entry.
type Edge struct {
	ID            string `json:"id" yaml:"id"`
	From          string `json:"from" yaml:"from"`
	To            string `json:"to" yaml:"to"`
	Bidirectional bool   `json:"bidirectional,omitempty" yaml:"bidirectional,omitempty"`
	Kind          string `json:"kind,omitempty" yaml:"kind,omitempty"`
	Note          string `json:"note,omitempty" yaml:"note,omitempty"`
}

// NewNode creates an unpinned node with a generated id and default size.
func NewNode(label string) *Node {
	return &Node{
		ID:    uuid.New().String(),
		Label: label,
		Size:  1.0,
	}
}

// NewEdge creates a directed edge with a generated id.
func NewEdge(from, to, kind string) *Edge {
	return &Edge{
		ID:   uuid.New().String(),
		From: from,
		To:   to,
		Kind: kind,
	}
}

// Graph owns the node and edge maps plus three derived indexes:
//
//   - adjacency: node id -> reachable neighbor ids, kept only for edges
//     whose endpoints both exist
//   - incident: node id -> ids of edges naming that (existing) node
//   - pending: missing node id -> ids of edges waiting for it to appear
//
// The indexes are maintained on every mutation, so neighbor lookup is O(1),
// RemoveNode is O(degree), and edges added before their endpoints exist
// reconcile lazily when the endpoint arrives.
//
// The Graph is not safe for concurrent mutation; during a layout run it is
// exclusively owned by the orchestrator.
type Graph struct {
	nodes     map[string]*Node
	edges     map[string]*Edge
	adjacency map[string]map[string]struct{}
	incident  map[string]map[string]struct{}
	pending   map[string]map[string]struct{}
}

// New creates an empty Graph.
func New() *Graph {
	return &Graph{
		nodes:     make(map[string]*Node),
		edges:     make(map[string]*Edge),
		adjacency: make(map[string]map[string]struct{}),
		incident:  make(map[string]map[string]struct{}),
		pending:   make(map[string]map[string]struct{}),
	}
}

// AddNode inserts n, replacing any node with the same id. Dangling edges
// that were waiting on this id are linked into the indexes.
func (g *Graph) AddNode(n *Node) {
	if n == nil || n.ID == "" {
		return
	}
	g.nodes[n.ID] = n
	if _, ok := g.adjacency[n.ID]; !ok {
		g.adjacency[n.ID] = make(map[string]struct{})
	}
	if _, ok := g.incident[n.ID]; !ok {
		g.incident[n.ID] = make(map[string]struct{})
	}

	waiting := g.pending[n.ID]
	delete(g.pending, n.ID)
	for edgeID := range waiting {
		if e := g.edges[edgeID]; e != nil {
			g.link(e)
		}
	}
}

// RemoveNode deletes the node and every edge referencing it, dangling ones
// included. Removing an unknown id is a no-op.
func (g *Graph) RemoveNode(id string) {
	if _, ok := g.nodes[id]; !ok {
		return
	}
	for edgeID := range g.incident[id] {
		g.RemoveEdge(edgeID)
	}
	delete(g.nodes, id)
	delete(g.adjacency, id)
	delete(g.incident, id)
}

// AddEdge inserts e, replacing any edge with the same id. Edges whose
// endpoints do not (yet) exist are stored but contribute no adjacency until
// both endpoints appear.
func (g *Graph) AddEdge(e *Edge) {
	if e == nil || e.ID == "" {
		return
	}
	if old, ok := g.edges[e.ID]; ok {
		g.unlink(old)
	}
	g.edges[e.ID] = e
	g.link(e)
}

// RemoveEdge deletes the edge and its index entries. Removing an unknown id
// is a no-op.
func (g *Graph) RemoveEdge(id string) {
	e, ok := g.edges[id]
	if !ok {
		return
	}
	g.unlink(e)
	delete(g.edges, id)
}

// link records e in the indexes. Each existing endpoint gains an incidence
// entry; each missing endpoint parks the edge in pending; adjacency is
// recorded only when both endpoints exist. Adjacency follows edge direction,
// with bidirectional edges linking both ways.
func (g *Graph) link(e *Edge) {
	_, fromOK := g.nodes[e.From]
	_, toOK := g.nodes[e.To]

	for endpoint, ok := range map[string]bool{e.From: fromOK, e.To: toOK} {
		if ok {
			g.incident[endpoint][e.ID] = struct{}{}
			continue
		}
		if _, exists := g.pending[endpoint]; !exists {
			g.pending[endpoint] = make(map[string]struct{})
		}
		g.pending[endpoint][e.ID] = struct{}{}
	}

	if fromOK && toOK {
		g.adjacency[e.From][e.To] = struct{}{}
		if e.Bidirectional {
			g.adjacency[e.To][e.From] = struct{}{}
		}
	}
}

// unlink removes e from every index, keeping adjacency entries that another
// edge still justifies.
func (g *Graph) unlink(e *Edge) {
	for _, endpoint := range [2]string{e.From, e.To} {
		if set, ok := g.incident[endpoint]; ok {
			delete(set, e.ID)
		}
		if set, ok := g.pending[endpoint]; ok {
			delete(set, e.ID)
			if len(set) == 0 {
				delete(g.pending, endpoint)
			}
		}
	}

	if !g.stillReaches(e.From, e.To, e.ID) {
		if set, ok := g.adjacency[e.From]; ok {
			delete(set, e.To)
		}
	}
	if !g.stillReaches(e.To, e.From, e.ID) {
		if set, ok := g.adjacency[e.To]; ok {
			delete(set, e.From)
		}
	}
}

// stillReaches reports whether an edge other than skipID still connects
// from -> to, scanning only the edges incident to from.
func (g *Graph) stillReaches(from, to, skipID string) bool {
	for id := range g.incident[from] {
		if id == skipID {
			continue
		}
		e := g.edges[id]
		if e == nil {
			continue
		}
		if e.From == from && e.To == to {
			return true
		}
		if e.Bidirectional && e.From == to && e.To == from {
			return true
		}
	}
	return false
}

// Node returns the node with the given id, or nil.
func (g *Graph) Node(id string) *Node {
	return g.nodes[id]
}

// Edge returns the edge with the given id, or nil.
func (g *Graph) Edge(id string) *Edge {
	return g.edges[id]
}

// Neighbors returns the ids directly reachable from id, sorted for
// deterministic iteration.
func (g *Graph) Neighbors(id string) []string {
	set, ok := g.adjacency[id]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(set))
	for n := range set {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// IsConnected reports whether a direct edge reaches from -> to, following
// bidirectional edges in either direction.
func (g *Graph) IsConnected(from, to string) bool {
	set, ok := g.adjacency[from]
	if !ok {
		return false
	}
	_, ok = set[to]
	return ok
}

// Degree returns the number of edges incident to id, counting an edge whose
// other endpoint is missing as well.
func (g *Graph) Degree(id string) int {
	return len(g.incident[id])
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

// EdgeCount returns the number of edges, dangling ones included.
func (g *Graph) EdgeCount() int {
	return len(g.edges)
}

// AdjacencyCount returns the number of adjacency entries. It always equals
// NodeCount; exposed so callers can verify the invariant.
func (g *Graph) AdjacencyCount() int {
	return len(g.adjacency)
}

// NodeIDs returns all node ids in sorted order. The simulator and placement
// strategies iterate this so results are deterministic despite map ordering.
func (g *Graph) NodeIDs() []string {
	ids := make([]string, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Nodes returns the node values in id order.
func (g *Graph) Nodes() []*Node {
	ids := g.NodeIDs()
	out := make([]*Node, 0, len(ids))
	for _, id := range ids {
		out = append(out, g.nodes[id])
	}
	return out
}

// Edges returns the edge values in id order.
func (g *Graph) Edges() []*Edge {
	ids := make([]string, 0, len(g.edges))
	for id := range g.edges {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]*Edge, 0, len(ids))
	for _, id := range ids {
		out = append(out, g.edges[id])
	}
	return out
}
