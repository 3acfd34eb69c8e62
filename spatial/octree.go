package spatial

import (
	"fmt"
	"math"

	"github.com/TFMV/gravmesh/graph"
)

// maxOctreeDepth stops subdivision once cells are vanishingly small, which
// otherwise recurses forever when two nodes share a position.
const maxOctreeDepth = 32

// Octree is a Barnes-Hut acceleration structure: an axis-aligned cube
// recursively split into octants, each internal node caching its subtree's
// total mass and center of mass. Repulsion from distant subtrees is
// approximated by a single pseudo-node at the center of mass whenever
// extent/distance falls below theta, giving O(n log n) total repulsion cost.
type Octree struct {
	theta float64
	root  *octant
}

// octant is one cube of the subdivision. A leaf holds at most one body;
// internal octants hold only aggregates.
type octant struct {
	center graph.Vector3
	half   float64 // half the edge length

	mass         float64
	centerOfMass graph.Vector3
	body         *graph.Node
	children     *[8]*octant
}

// NewOctree creates a Barnes-Hut octree with the given acceptance parameter.
// Smaller theta descends deeper and is more accurate; theta must be positive.
func NewOctree(theta float64) (*Octree, error) {
	if theta <= 0 {
		return nil, fmt.Errorf("spatial: theta must be positive, got %v", theta)
	}
	return &Octree{theta: theta}, nil
}

// Rebuild constructs the tree over the nodes' current positions.
func (t *Octree) Rebuild(nodes []*graph.Node) {
	t.root = nil
	if len(nodes) == 0 {
		return
	}

	// Bounding cube with 10% padding so boundary positions insert cleanly.
	min := nodes[0].Position
	max := nodes[0].Position
	for _, n := range nodes[1:] {
		min.X = math.Min(min.X, n.Position.X)
		min.Y = math.Min(min.Y, n.Position.Y)
		min.Z = math.Min(min.Z, n.Position.Z)
		max.X = math.Max(max.X, n.Position.X)
		max.Y = math.Max(max.Y, n.Position.Y)
		max.Z = math.Max(max.Z, n.Position.Z)
	}
	extent := math.Max(max.X-min.X, math.Max(max.Y-min.Y, max.Z-min.Z))
	half := extent*0.55 + minSeparation
	center := min.Add(max).Scale(0.5)

	t.root = &octant{center: center, half: half}
	for _, n := range nodes {
		t.root.insert(n, 0)
	}
}

// insert adds one body, subdividing leaves that already hold a body.
func (o *octant) insert(n *graph.Node, depth int) {
	// Empty leaf: store the body here.
	if o.mass == 0 && o.children == nil {
		o.body = n
		o.mass = 1
		o.centerOfMass = n.Position
		return
	}

	// Occupied leaf: push the resident body down before descending, unless
	// the depth cap is hit, in which case coincident bodies share the leaf
	// as pure aggregate mass.
	if o.children == nil {
		if depth >= maxOctreeDepth {
			total := o.mass + 1
			o.centerOfMass = o.centerOfMass.Scale(o.mass / total).Add(n.Position.Scale(1 / total))
			o.mass = total
			o.body = nil
			return
		}
		resident := o.body
		o.body = nil
		o.children = &[8]*octant{}
		o.childFor(resident.Position, depth).insert(resident, depth+1)
	}

	total := o.mass + 1
	o.centerOfMass = o.centerOfMass.Scale(o.mass / total).Add(n.Position.Scale(1 / total))
	o.mass = total
	o.childFor(n.Position, depth).insert(n, depth+1)
}

// childFor returns the octant containing p, creating it on first use.
func (o *octant) childFor(p graph.Vector3, depth int) *octant {
	idx := 0
	if p.X >= o.center.X {
		idx |= 1
	}
	if p.Y >= o.center.Y {
		idx |= 2
	}
	if p.Z >= o.center.Z {
		idx |= 4
	}
	if o.children[idx] == nil {
		quarter := o.half / 2
		offset := graph.Vector3{X: -quarter, Y: -quarter, Z: -quarter}
		if idx&1 != 0 {
			offset.X = quarter
		}
		if idx&2 != 0 {
			offset.Y = quarter
		}
		if idx&4 != 0 {
			offset.Z = quarter
		}
		o.children[idx] = &octant{center: o.center.Add(offset), half: quarter}
	}
	return o.children[idx]
}

// Repulsion returns the Barnes-Hut approximate repulsive force on n.
func (t *Octree) Repulsion(n *graph.Node, k, strength float64) graph.Vector3 {
	if t.root == nil {
		return graph.Vector3{}
	}
	return t.root.accumulate(n, t.theta, k, strength)
}

// AccumulateForce returns the approximate repulsive force on a free point p
// that is not itself in the tree, using the given acceptance parameter.
func (t *Octree) AccumulateForce(p graph.Vector3, theta, k, strength float64) graph.Vector3 {
	if t.root == nil {
		return graph.Vector3{}
	}
	return t.root.accumulatePoint(nil, p, theta, k, strength)
}

func (o *octant) accumulate(n *graph.Node, theta, k, strength float64) graph.Vector3 {
	return o.accumulatePoint(n, n.Position, theta, k, strength)
}

// accumulatePoint walks the tree top-down applying the multipole acceptance
// criterion. self, when non-nil, is excluded from the force sum.
func (o *octant) accumulatePoint(self *graph.Node, p graph.Vector3, theta, k, strength float64) graph.Vector3 {
	// Empty subtrees contribute nothing, never NaN.
	if o.mass == 0 {
		return graph.Vector3{}
	}
	if o.body == self && o.body != nil {
		return graph.Vector3{}
	}

	dist := o.centerOfMass.DistanceTo(p)
	extent := o.half * 2

	// Far enough away (or a leaf): treat the subtree as one pseudo-node at
	// its center of mass.
	if o.children == nil || (dist > 0 && extent/dist < theta) {
		mass := o.mass
		if self != nil && o.contains(self.Position) && o.children != nil {
			// Shouldn't happen once the acceptance test passes, but guard
			// against counting self in an aggregated near-field cell.
			mass--
		}
		if mass <= 0 {
			return graph.Vector3{}
		}
		return PairRepulsion(p, o.centerOfMass, mass, k, strength)
	}

	var total graph.Vector3
	for _, child := range o.children {
		if child != nil {
			total = total.Add(child.accumulatePoint(self, p, theta, k, strength))
		}
	}
	return total
}

// contains reports whether p falls inside this octant's cube.
func (o *octant) contains(p graph.Vector3) bool {
	return math.Abs(p.X-o.center.X) <= o.half &&
		math.Abs(p.Y-o.center.Y) <= o.half &&
		math.Abs(p.Z-o.center.Z) <= o.half
}
