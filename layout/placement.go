// Package layout is the public face of the engine: initial placement
// strategies, the orchestrator that drives the simulation to convergence,
// and summary statistics over the finished layout.
package layout

import (
	"math"
	"math/rand"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/TFMV/gravmesh/graph"
)

// Strategy seeds initial node positions. Every strategy skips pinned nodes,
// leaving caller-chosen anchors exactly where they are, and zeroes the
// velocity of each node it places. Nodes are visited in sorted-id order so a
// strategy's output is deterministic for a given graph.
type Strategy interface {
	Name() string
	Apply(g *graph.Graph)
}

// placeable returns the nodes a strategy may move, in deterministic order.
func placeable(g *graph.Graph) []*graph.Node {
	nodes := g.Nodes()
	out := nodes[:0]
	for _, n := range nodes {
		if !n.Pinned {
			out = append(out, n)
		}
	}
	return out
}

// Spherical distributes nodes over a sphere using the golden-spiral
// lattice, which spaces any node count near-uniformly.
type Spherical struct {
	Radius float64
}

func (s Spherical) Name() string { return "spherical" }

func (s Spherical) Apply(g *graph.Graph) {
	nodes := placeable(g)
	n := float64(len(nodes))
	golden := math.Pi * (3 - math.Sqrt(5))
	for i, node := range nodes {
		y := 1 - 2*(float64(i)+0.5)/n
		ring := math.Sqrt(1 - y*y)
		angle := golden * float64(i)
		node.Position = graph.Vector3{
			X: s.Radius * ring * math.Cos(angle),
			Y: s.Radius * y,
			Z: s.Radius * ring * math.Sin(angle),
		}
		node.Velocity = graph.Vector3{}
	}
}

// Circular arranges nodes evenly on a circle in the XY plane.
type Circular struct {
	Radius float64
}

func (c Circular) Name() string { return "circular" }

func (c Circular) Apply(g *graph.Graph) {
	nodes := placeable(g)
	n := float64(len(nodes))
	for i, node := range nodes {
		angle := 2 * math.Pi * float64(i) / n
		node.Position = graph.Vector3{
			X: c.Radius * math.Cos(angle),
			Y: c.Radius * math.Sin(angle),
		}
		node.Velocity = graph.Vector3{}
	}
}

// GridLattice arranges nodes on a cubic lattice centered on the origin.
type GridLattice struct {
	Spacing float64
}

func (l GridLattice) Name() string { return "grid" }

func (l GridLattice) Apply(g *graph.Graph) {
	nodes := placeable(g)
	if len(nodes) == 0 {
		return
	}
	side := int(math.Ceil(math.Cbrt(float64(len(nodes)))))
	offset := float64(side-1) / 2
	for i, node := range nodes {
		x := i % side
		y := (i / side) % side
		z := i / (side * side)
		node.Position = graph.Vector3{
			X: (float64(x) - offset) * l.Spacing,
			Y: (float64(y) - offset) * l.Spacing,
			Z: (float64(z) - offset) * l.Spacing,
		}
		node.Velocity = graph.Vector3{}
	}
}

// Random scatters nodes uniformly inside a sphere. The same seed always
// produces the same placement.
type Random struct {
	Radius float64
	Seed   int64
}

func (r Random) Name() string { return "random" }

func (r Random) Apply(g *graph.Graph) {
	rng := rand.New(rand.NewSource(r.Seed))
	for _, node := range placeable(g) {
		// Rejection sampling keeps the distribution uniform over the ball.
		for {
			p := graph.Vector3{
				X: rng.Float64()*2 - 1,
				Y: rng.Float64()*2 - 1,
				Z: rng.Float64()*2 - 1,
			}
			if p.Length() <= 1 {
				node.Position = p.Scale(r.Radius)
				break
			}
		}
		node.Velocity = graph.Vector3{}
	}
}

// OrganicDrift decorates a base strategy with seeded simplex-noise
// displacement, breaking up the base pattern's regularity without losing
// determinism.
type OrganicDrift struct {
	Base      Strategy
	Seed      int64
	Amplitude float64 // displacement scale, in world units
	Frequency float64 // noise sampling frequency over position
}

func (o OrganicDrift) Name() string { return o.Base.Name() + "+drift" }

func (o OrganicDrift) Apply(g *graph.Graph) {
	o.Base.Apply(g)

	noise := opensimplex.New(o.Seed)
	freq := o.Frequency
	if freq == 0 {
		freq = 0.5
	}
	for _, node := range placeable(g) {
		p := node.Position
		node.Position = p.Add(graph.Vector3{
			X: noise.Eval3(p.X*freq, p.Y*freq, p.Z*freq) * o.Amplitude,
			Y: noise.Eval3(p.Y*freq+100, p.Z*freq+100, p.X*freq+100) * o.Amplitude,
			Z: noise.Eval3(p.Z*freq+200, p.X*freq+200, p.Y*freq+200) * o.Amplitude,
		})
	}
}
