// Package spatial provides the acceleration structures the force simulator
// uses to keep the repulsion pass sub-quadratic: a uniform grid for
// near-field neighbor queries and a Barnes-Hut octree for approximate
// far-field forces. Both are transient snapshots rebuilt from current node
// positions each tick; neither is ever the source of truth.
package spatial

import (
	"github.com/TFMV/gravmesh/graph"
)

// minSeparation is the distance floor substituted for nearly coincident
// nodes so repulsion never divides by zero.
const minSeparation = 0.05

// Index answers repulsion queries over a snapshot of node positions.
// Implementations are read-only between Rebuild calls and are never shared
// across concurrent ticks.
type Index interface {
	// Rebuild replaces the snapshot with the given nodes' current positions.
	Rebuild(nodes []*graph.Node)

	// Repulsion returns the aggregate repulsive force exerted on n by the
	// indexed nodes. Pair magnitude is strength * k^2 / distance, directed
	// away from the other node.
	Repulsion(n *graph.Node, k, strength float64) graph.Vector3
}

// PairRepulsion returns the repulsive force on a point at p exerted by mass
// bodies at q (mass 1 for a single node). Exact, grid and octree repulsion
// all run through this so the three paths stay numerically consistent.
func PairRepulsion(p, q graph.Vector3, mass, k, strength float64) graph.Vector3 {
	delta := p.Sub(q)
	dist := delta.Length()
	if dist == 0 {
		// Perfectly coincident points have no defined direction; skip the
		// pair rather than invent one.
		return graph.Vector3{}
	}
	if dist < minSeparation {
		dist = minSeparation
	}
	magnitude := strength * k * k * mass / dist
	return delta.Scale(magnitude / dist)
}
