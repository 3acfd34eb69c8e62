package layout

import (
	"context"
	"log/slog"
	"math"
	"sync/atomic"

	"github.com/TFMV/gravmesh/graph"
	"github.com/TFMV/gravmesh/physics"
)

// Outcome classifies how a convergence run ended. All three are normal
// results, not errors.
type Outcome int

const (
	// OutcomeConverged means average displacement fell below the threshold.
	OutcomeConverged Outcome = iota
	// OutcomeIterationCap means the run hit MaxIterations first.
	OutcomeIterationCap
	// OutcomeCancelled means the caller cancelled between ticks.
	OutcomeCancelled
)

func (o Outcome) String() string {
	switch o {
	case OutcomeConverged:
		return "converged"
	case OutcomeIterationCap:
		return "iteration-cap"
	case OutcomeCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Result summarizes a RunUntilConvergence call.
type Result struct {
	Outcome         Outcome
	Iterations      int
	AvgDisplacement float64
}

// Stats summarizes a layout for callers and log lines.
type Stats struct {
	NodeCount      int
	EdgeCount      int
	MeanEdgeLength float64
	BoundsDiagonal float64
}

// Orchestrator drives the simulation over a Graph it exclusively borrows:
// nobody else may mutate the graph while a run is in progress. The iteration
// counter is atomic so other goroutines can watch progress during a long
// run; everything else is single-writer state.
type Orchestrator struct {
	g      *graph.Graph
	sim    *physics.Simulator
	logger *slog.Logger

	iteration atomic.Int64
	lastDisp  float64
}

// New validates the parameters and builds an orchestrator over g. A nil
// logger disables progress logging.
func New(g *graph.Graph, p physics.Params, logger *slog.Logger) (*Orchestrator, error) {
	sim, err := physics.NewSimulator(p)
	if err != nil {
		return nil, err
	}
	return &Orchestrator{g: g, sim: sim, logger: logger}, nil
}

// Graph returns the graph the orchestrator is driving.
func (o *Orchestrator) Graph() *graph.Graph {
	return o.g
}

// Place seeds initial positions with the given strategy.
func (o *Orchestrator) Place(s Strategy) {
	s.Apply(o.g)
	if o.logger != nil {
		o.logger.Debug("placed initial layout",
			slog.String("strategy", s.Name()),
			slog.Int("nodes", o.g.NodeCount()))
	}
}

// Step advances exactly one tick and returns the average displacement.
func (o *Orchestrator) Step() float64 {
	o.lastDisp = o.sim.Step(o.g)
	o.iteration.Add(1)
	return o.lastDisp
}

// RunIterations advances n ticks synchronously and returns the final tick's
// average displacement.
func (o *Orchestrator) RunIterations(n int) float64 {
	for i := 0; i < n; i++ {
		o.Step()
	}
	return o.lastDisp
}

// RunUntilConvergence ticks until the layout settles, MaxIterations is
// reached, or ctx is cancelled, whichever comes first. Cancellation is
// honored only at tick boundaries so the graph is always left in a
// consistent, fully-integrated state.
func (o *Orchestrator) RunUntilConvergence(ctx context.Context) Result {
	p := o.sim.Params()
	if o.logger != nil {
		o.logger.Info("layout run starting",
			slog.Int("nodes", o.g.NodeCount()),
			slog.Int("edges", o.g.EdgeCount()),
			slog.Int("maxIterations", p.MaxIterations),
			slog.String("accel", string(p.Accel)))
	}

	res := Result{Outcome: OutcomeIterationCap}
	for i := 0; i < p.MaxIterations; i++ {
		if ctx.Err() != nil {
			res.Outcome = OutcomeCancelled
			break
		}
		disp := o.Step()
		res.Iterations++
		res.AvgDisplacement = disp
		if disp < p.ConvergenceThreshold {
			res.Outcome = OutcomeConverged
			break
		}
	}

	if o.logger != nil {
		o.logger.Info("layout run finished",
			slog.String("outcome", res.Outcome.String()),
			slog.Int("iterations", res.Iterations),
			slog.Float64("avgDisplacement", res.AvgDisplacement))
	}
	return res
}

// Reset zeroes all velocities and the iteration counter, keeping positions.
func (o *Orchestrator) Reset() {
	for _, n := range o.g.Nodes() {
		n.Velocity = graph.Vector3{}
	}
	o.iteration.Store(0)
	o.lastDisp = 0
}

// Iteration returns the tick count. Safe to call from another goroutine
// while a run is in progress.
func (o *Orchestrator) Iteration() int {
	return int(o.iteration.Load())
}

// Stats computes summary statistics over the current layout.
func (o *Orchestrator) Stats() Stats {
	s := Stats{
		NodeCount: o.g.NodeCount(),
		EdgeCount: o.g.EdgeCount(),
	}

	total := 0.0
	spans := 0
	for _, e := range o.g.Edges() {
		from := o.g.Node(e.From)
		to := o.g.Node(e.To)
		if from == nil || to == nil || from == to {
			continue
		}
		total += from.Position.DistanceTo(to.Position)
		spans++
	}
	if spans > 0 {
		s.MeanEdgeLength = total / float64(spans)
	}

	nodes := o.g.Nodes()
	if len(nodes) > 0 {
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
		s.BoundsDiagonal = max.Sub(min).Length()
	}
	return s
}
