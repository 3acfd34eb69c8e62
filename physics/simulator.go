package physics

import (
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/TFMV/gravmesh/graph"
	"github.com/TFMV/gravmesh/spatial"
)

// parallelThreshold is the node count below which the exact pass runs
// sequentially; small graphs don't repay the goroutine overhead.
const parallelThreshold = 64

// maxWorkers caps the parallel exact pass regardless of CPU count.
const maxWorkers = 8

// Simulator advances a graph one tick at a time. It borrows the Graph for
// the duration of each Step call and writes positions and velocities back in
// place; it never owns graph topology.
type Simulator struct {
	params Params
	index  spatial.Index // nil in exact mode

	// scratch buffers reused across ticks
	nodes  []*graph.Node
	forces []graph.Vector3
	byID   map[string]int
}

// NewSimulator validates the parameters and prepares the configured
// repulsion path.
func NewSimulator(p Params) (*Simulator, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	s := &Simulator{params: p, byID: make(map[string]int)}
	switch p.Accel {
	case AccelGrid:
		grid, err := spatial.NewUniformGrid(p.CellSize, p.GridRadius)
		if err != nil {
			return nil, err
		}
		s.index = grid
	case AccelOctree:
		tree, err := spatial.NewOctree(p.Theta)
		if err != nil {
			return nil, err
		}
		s.index = tree
	}
	return s, nil
}

// Params returns the simulator's configuration.
func (s *Simulator) Params() Params {
	return s.params
}

// Step computes one full tick: accumulate repulsion, spring and centering
// forces over the old positions, then integrate velocities and positions.
// It returns the average per-node displacement, the quantity convergence is
// judged on. Pinned nodes contribute forces but are never moved.
func (s *Simulator) Step(g *graph.Graph) float64 {
	s.snapshot(g)
	if len(s.nodes) == 0 {
		return 0
	}

	for i := range s.forces {
		s.forces[i] = graph.Vector3{}
	}

	s.applyRepulsion()
	s.applySprings(g)
	s.applyCentering()

	return s.integrate()
}

// snapshot captures the node set in deterministic order and sizes the
// scratch buffers.
func (s *Simulator) snapshot(g *graph.Graph) {
	s.nodes = g.Nodes()
	if cap(s.forces) < len(s.nodes) {
		s.forces = make([]graph.Vector3, len(s.nodes))
	}
	s.forces = s.forces[:len(s.nodes)]
	clear(s.byID)
	for i, n := range s.nodes {
		s.byID[n.ID] = i
	}
}

// applyRepulsion dispatches to the configured repulsion path.
func (s *Simulator) applyRepulsion() {
	if s.index != nil {
		s.index.Rebuild(s.nodes)
		for i, n := range s.nodes {
			s.forces[i] = s.forces[i].Add(s.index.Repulsion(n, s.params.OptimalDistance, s.params.RepulsionStrength))
		}
		return
	}

	if len(s.nodes) >= parallelThreshold {
		s.exactRepulsionParallel()
		return
	}
	s.exactRepulsionSequential()
}

// exactRepulsionSequential walks every unordered pair once, applying equal
// and opposite forces.
func (s *Simulator) exactRepulsionSequential() {
	k := s.params.OptimalDistance
	strength := s.params.RepulsionStrength
	for i := range s.nodes {
		for j := i + 1; j < len(s.nodes); j++ {
			f := spatial.PairRepulsion(s.nodes[i].Position, s.nodes[j].Position, 1, k, strength)
			s.forces[i] = s.forces[i].Add(f)
			s.forces[j] = s.forces[j].Sub(f)
		}
	}
}

// exactRepulsionParallel shards the node set across workers; each worker
// computes the full force on its own nodes so no two goroutines write the
// same slot.
func (s *Simulator) exactRepulsionParallel() {
	workers := s.params.Workers
	if workers == 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > maxWorkers {
		workers = maxWorkers
	}
	if workers < 1 {
		workers = 1
	}

	k := s.params.OptimalDistance
	strength := s.params.RepulsionStrength
	chunk := (len(s.nodes) + workers - 1) / workers

	var eg errgroup.Group
	for w := 0; w < workers; w++ {
		lo := w * chunk
		hi := min(lo+chunk, len(s.nodes))
		if lo >= hi {
			break
		}
		eg.Go(func() error {
			for i := lo; i < hi; i++ {
				var total graph.Vector3
				p := s.nodes[i].Position
				for j, other := range s.nodes {
					if j == i {
						continue
					}
					total = total.Add(spatial.PairRepulsion(p, other.Position, 1, k, strength))
				}
				s.forces[i] = s.forces[i].Add(total)
			}
			return nil
		})
	}
	// Workers never return errors; Wait is only a join point.
	_ = eg.Wait()
}

// applySprings pulls every edge's endpoints toward the rest length k.
// Dangling edges and self-loops exert nothing.
func (s *Simulator) applySprings(g *graph.Graph) {
	k := s.params.OptimalDistance
	stiffness := s.params.AttractionStrength

	for _, e := range g.Edges() {
		fi, ok := s.byID[e.From]
		if !ok {
			continue
		}
		ti, ok := s.byID[e.To]
		if !ok || fi == ti {
			continue
		}

		from := s.nodes[fi]
		to := s.nodes[ti]
		delta := to.Position.Sub(from.Position)
		dist := delta.Length()
		if dist == 0 {
			continue
		}

		// Positive magnitude stretches pull together, compressed push apart.
		magnitude := stiffness * (dist - k)
		f := delta.Scale(magnitude / dist)
		s.forces[fi] = s.forces[fi].Add(f)
		s.forces[ti] = s.forces[ti].Sub(f)
	}
}

// applyCentering pulls every node toward the origin in proportion to its
// distance from it.
func (s *Simulator) applyCentering() {
	c := s.params.CenteringForce
	if c == 0 {
		return
	}
	for i, n := range s.nodes {
		s.forces[i] = s.forces[i].Sub(n.Position.Scale(c))
	}
}

// integrate advances velocities and positions and returns the average
// displacement. Positions are clamped to the bounding volume; pinned nodes
// are left exactly where they are with zero velocity.
func (s *Simulator) integrate() float64 {
	dt := s.params.TimeStep
	damping := s.params.Damping
	bounds := s.params.BoundsRadius

	total := 0.0
	for i, n := range s.nodes {
		if n.Pinned {
			n.Velocity = graph.Vector3{}
			continue
		}
		n.Velocity = n.Velocity.Add(s.forces[i].Scale(dt)).Scale(damping)
		next := n.Position.Add(n.Velocity.Scale(dt)).Clamp(bounds)
		total += next.DistanceTo(n.Position)
		n.Position = next
	}
	return total / float64(len(s.nodes))
}
