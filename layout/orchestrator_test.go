package layout

import (
	"context"
	"fmt"
	"math"
	"testing"

	"github.com/TFMV/gravmesh/graph"
	"github.com/TFMV/gravmesh/physics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOrchestrator(t *testing.T, g *graph.Graph, mutate func(*physics.Params)) *Orchestrator {
	t.Helper()
	p := physics.DefaultParams()
	if mutate != nil {
		mutate(&p)
	}
	o, err := New(g, p, nil)
	require.NoError(t, err)
	return o
}

// chainGraph builds a path graph n0 - n1 - ... - n(k-1).
func chainGraph(k int) *graph.Graph {
	g := graph.New()
	for i := 0; i < k; i++ {
		g.AddNode(&graph.Node{ID: fmt.Sprintf("n%02d", i), Size: 1})
	}
	for i := 0; i < k-1; i++ {
		g.AddEdge(&graph.Edge{
			ID:            fmt.Sprintf("e%02d", i),
			From:          fmt.Sprintf("n%02d", i),
			To:            fmt.Sprintf("n%02d", i+1),
			Bidirectional: true,
		})
	}
	return g
}

func TestNew_RejectsInvalidParams(t *testing.T) {
	p := physics.DefaultParams()
	p.Damping = 2.0

	_, err := New(graph.New(), p, nil)
	assert.Error(t, err)
}

func TestStep_EmptyGraphIncrementsCounterOnly(t *testing.T) {
	o := newOrchestrator(t, graph.New(), nil)

	o.Step()
	o.Step()
	assert.Equal(t, 2, o.Iteration())
}

func TestRunUntilConvergence_TenNodeGraphSettles(t *testing.T) {
	g := chainGraph(10)
	o := newOrchestrator(t, g, func(p *physics.Params) {
		p.MaxIterations = 300
		p.ConvergenceThreshold = 0.01
	})
	o.Place(Spherical{Radius: 1.5})

	res := o.RunUntilConvergence(context.Background())
	assert.Equal(t, OutcomeConverged, res.Outcome)
	assert.Less(t, res.Iterations, 300)
	assert.Less(t, res.AvgDisplacement, 0.01)
}

func TestRunUntilConvergence_SingleNodeEndsNearOrigin(t *testing.T) {
	g := graph.New()
	n := &graph.Node{ID: "solo", Position: graph.Vector3{X: 4, Y: 4, Z: 4}, Size: 1}
	g.AddNode(n)

	o := newOrchestrator(t, g, nil)
	res := o.RunUntilConvergence(context.Background())

	assert.Equal(t, OutcomeConverged, res.Outcome)
	assert.Less(t, n.Position.Length(), 0.5)
}

func TestRunUntilConvergence_IterationCap(t *testing.T) {
	g := chainGraph(10)
	o := newOrchestrator(t, g, func(p *physics.Params) {
		p.MaxIterations = 3
		p.ConvergenceThreshold = 1e-12 // unreachable in three ticks
	})
	o.Place(Spherical{Radius: 1.5})

	res := o.RunUntilConvergence(context.Background())
	assert.Equal(t, OutcomeIterationCap, res.Outcome)
	assert.Equal(t, 3, res.Iterations)
}

func TestRunUntilConvergence_CancelledIsNotAnError(t *testing.T) {
	g := chainGraph(10)
	o := newOrchestrator(t, g, nil)
	o.Place(Spherical{Radius: 1.5})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := o.RunUntilConvergence(ctx)
	assert.Equal(t, OutcomeCancelled, res.Outcome)
	assert.Zero(t, res.Iterations)

	// The graph is still usable: a fresh, uncancelled run completes.
	res = o.RunUntilConvergence(context.Background())
	assert.Equal(t, OutcomeConverged, res.Outcome)
}

func TestPinnedNode_HoldsOriginThroughFiftyIterations(t *testing.T) {
	g := chainGraph(8)
	pinned := &graph.Node{ID: "anchor", Pinned: true, Size: 1}
	g.AddNode(pinned)
	g.AddEdge(&graph.Edge{ID: "ea", From: "anchor", To: "n00", Bidirectional: true})

	o := newOrchestrator(t, g, nil)
	o.Place(Spherical{Radius: 1.5})
	o.RunIterations(50)

	assert.InDelta(t, 0, pinned.Position.X, 1e-12)
	assert.InDelta(t, 0, pinned.Position.Y, 1e-12)
	assert.InDelta(t, 0, pinned.Position.Z, 1e-12)
}

func TestRepulsionOnly_DisconnectedNodesSpread(t *testing.T) {
	g := graph.New()
	for i := 0; i < 12; i++ {
		// All nodes start at the same point.
		g.AddNode(&graph.Node{ID: fmt.Sprintf("n%02d", i), Size: 1})
	}

	o := newOrchestrator(t, g, nil)
	o.Place(Random{Radius: 0.5, Seed: 3})
	o.RunIterations(50)

	total := 0.0
	pairs := 0
	nodes := g.Nodes()
	for i, a := range nodes {
		for _, b := range nodes[i+1:] {
			total += a.Position.DistanceTo(b.Position)
			pairs++
		}
	}
	assert.Greater(t, total/float64(pairs), 0.3,
		"disconnected nodes must visibly separate under repulsion")
}

func TestSpringScenario_ChainApproachesRestLength(t *testing.T) {
	g := graph.New()
	for _, id := range []string{"a", "b", "c"} {
		g.AddNode(&graph.Node{ID: id, Size: 1})
	}
	g.AddEdge(&graph.Edge{ID: "ab", From: "a", To: "b", Kind: "supports"})
	g.AddEdge(&graph.Edge{ID: "bc", From: "b", To: "c", Kind: "related"})

	o := newOrchestrator(t, g, nil)
	o.Place(Circular{Radius: 1.0})
	o.RunIterations(50)

	k := physics.DefaultParams().OptimalDistance
	ab := g.Node("a").Position.DistanceTo(g.Node("b").Position)
	bc := g.Node("b").Position.DistanceTo(g.Node("c").Position)
	avgErr := (math.Abs(ab-k) + math.Abs(bc-k)) / 2
	assert.Less(t, avgErr, 0.2)
}

func TestRunIterations_AdvancesCounter(t *testing.T) {
	g := chainGraph(5)
	o := newOrchestrator(t, g, nil)
	o.Place(Circular{Radius: 1})

	o.RunIterations(7)
	assert.Equal(t, 7, o.Iteration())
}

func TestReset_ZeroesVelocitiesKeepsPositions(t *testing.T) {
	g := chainGraph(6)
	o := newOrchestrator(t, g, nil)
	o.Place(Spherical{Radius: 1.5})
	o.RunIterations(10)

	before := make(map[string]graph.Vector3)
	for _, n := range g.Nodes() {
		before[n.ID] = n.Position
	}

	o.Reset()
	assert.Zero(t, o.Iteration())
	for _, n := range g.Nodes() {
		assert.Zero(t, n.Velocity.Length())
		assert.Equal(t, before[n.ID], n.Position)
	}
}

func TestStats_ReflectsLayout(t *testing.T) {
	g := chainGraph(4)
	o := newOrchestrator(t, g, nil)
	o.Place(Circular{Radius: 2})

	stats := o.Stats()
	assert.Equal(t, 4, stats.NodeCount)
	assert.Equal(t, 3, stats.EdgeCount)
	assert.Positive(t, stats.MeanEdgeLength)
	assert.Positive(t, stats.BoundsDiagonal)

	empty, err := New(graph.New(), physics.DefaultParams(), nil)
	require.NoError(t, err)
	zero := empty.Stats()
	assert.Zero(t, zero.NodeCount)
	assert.Zero(t, zero.MeanEdgeLength)
	assert.Zero(t, zero.BoundsDiagonal)
}

func TestStats_IgnoresDanglingAndSelfLoopEdges(t *testing.T) {
	g := graph.New()
	g.AddNode(&graph.Node{ID: "a", Size: 1})
	g.AddNode(&graph.Node{ID: "b", Position: graph.Vector3{X: 2}, Size: 1})
	g.AddEdge(&graph.Edge{ID: "real", From: "a", To: "b"})
	g.AddEdge(&graph.Edge{ID: "loop", From: "a", To: "a"})
	g.AddEdge(&graph.Edge{ID: "dangle", From: "a", To: "ghost"})

	o := newOrchestrator(t, g, nil)
	stats := o.Stats()

	assert.Equal(t, 3, stats.EdgeCount)
	assert.InDelta(t, 2.0, stats.MeanEdgeLength, 1e-9)
}
