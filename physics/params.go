// Package physics implements the force simulator at the heart of the layout
// engine: one Step combines pairwise repulsion, edge springs, a weak
// centering pull and velocity damping into a single discrete tick over a
// graph's node positions.
package physics

import "fmt"

// Accel selects how the repulsion pass is computed.
type Accel string

const (
	// AccelExact computes every node pair, O(n^2) per tick.
	AccelExact Accel = "exact"
	// AccelGrid restricts repulsion to a uniform-grid neighborhood.
	AccelGrid Accel = "grid"
	// AccelOctree approximates far-field repulsion with Barnes-Hut.
	AccelOctree Accel = "octree"
)

// Params holds every tunable of the simulation. Zero values are invalid;
// start from DefaultParams and override.
type Params struct {
	// OptimalDistance is the spring rest length k. Repulsion scales with
	// k^2 so the two forces balance near this distance.
	OptimalDistance float64 `yaml:"optimalDistance"`
	// AttractionStrength is the spring stiffness applied along edges.
	AttractionStrength float64 `yaml:"attractionStrength"`
	// RepulsionStrength scales the pairwise k^2/distance repulsion.
	RepulsionStrength float64 `yaml:"repulsionStrength"`
	// CenteringForce pulls every node toward the origin proportionally to
	// its distance, keeping the layout from drifting.
	CenteringForce float64 `yaml:"centeringForce"`
	// Damping multiplies velocities each tick; must be in (0, 1].
	Damping float64 `yaml:"damping"`
	// TimeStep is the integration step size.
	TimeStep float64 `yaml:"timeStep"`
	// BoundsRadius clamps every position component to [-r, r].
	BoundsRadius float64 `yaml:"boundsRadius"`

	// MaxIterations caps a convergence run.
	MaxIterations int `yaml:"maxIterations"`
	// ConvergenceThreshold is the average per-node displacement below which
	// the layout counts as settled.
	ConvergenceThreshold float64 `yaml:"convergenceThreshold"`

	// Accel picks the repulsion path.
	Accel Accel `yaml:"accel"`
	// CellSize is the uniform grid's cell edge (grid mode).
	CellSize float64 `yaml:"cellSize"`
	// GridRadius is the neighborhood radius for grid repulsion (grid mode).
	GridRadius float64 `yaml:"gridRadius"`
	// Theta is the Barnes-Hut acceptance parameter (octree mode).
	Theta float64 `yaml:"theta"`

	// Workers caps the goroutines used by the parallel exact pass.
	// Zero means one per CPU, capped at 8.
	Workers int `yaml:"workers"`
}

// DefaultParams returns the tuning used throughout the tests: rest length 1,
// a gently damped integrator and exact repulsion.
func DefaultParams() Params {
	return Params{
		OptimalDistance:      1.0,
		AttractionStrength:   0.3,
		RepulsionStrength:    0.04,
		CenteringForce:       0.05,
		Damping:              0.8,
		TimeStep:             0.5,
		BoundsRadius:         10.0,
		MaxIterations:        300,
		ConvergenceThreshold: 0.01,
		Accel:                AccelExact,
		CellSize:             1.0,
		GridRadius:           3.0,
		Theta:                0.5,
	}
}

// Validate reports the first misconfigured field. Parameter mistakes are
// programmer errors, so they fail here rather than surfacing mid-run.
func (p Params) Validate() error {
	switch {
	case p.OptimalDistance <= 0:
		return fmt.Errorf("physics: optimalDistance must be positive, got %v", p.OptimalDistance)
	case p.AttractionStrength < 0:
		return fmt.Errorf("physics: attractionStrength must not be negative, got %v", p.AttractionStrength)
	case p.RepulsionStrength < 0:
		return fmt.Errorf("physics: repulsionStrength must not be negative, got %v", p.RepulsionStrength)
	case p.CenteringForce < 0:
		return fmt.Errorf("physics: centeringForce must not be negative, got %v", p.CenteringForce)
	case p.Damping <= 0 || p.Damping > 1:
		return fmt.Errorf("physics: damping must be in (0, 1], got %v", p.Damping)
	case p.TimeStep <= 0:
		return fmt.Errorf("physics: timeStep must be positive, got %v", p.TimeStep)
	case p.BoundsRadius <= 0:
		return fmt.Errorf("physics: boundsRadius must be positive, got %v", p.BoundsRadius)
	case p.MaxIterations <= 0:
		return fmt.Errorf("physics: maxIterations must be positive, got %d", p.MaxIterations)
	case p.ConvergenceThreshold <= 0:
		return fmt.Errorf("physics: convergenceThreshold must be positive, got %v", p.ConvergenceThreshold)
	case p.Workers < 0:
		return fmt.Errorf("physics: workers must not be negative, got %d", p.Workers)
	}

	switch p.Accel {
	case AccelExact:
	case AccelGrid:
		if p.CellSize <= 0 {
			return fmt.Errorf("physics: cellSize must be positive, got %v", p.CellSize)
		}
		if p.GridRadius <= 0 {
			return fmt.Errorf("physics: gridRadius must be positive, got %v", p.GridRadius)
		}
	case AccelOctree:
		if p.Theta <= 0 {
			return fmt.Errorf("physics: theta must be positive, got %v", p.Theta)
		}
	default:
		return fmt.Errorf("physics: unknown accel %q (want exact, grid or octree)", p.Accel)
	}
	return nil
}
