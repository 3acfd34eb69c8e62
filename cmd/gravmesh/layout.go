package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/TFMV/gravmesh/export"
	"github.com/TFMV/gravmesh/ingest"
	"github.com/TFMV/gravmesh/layout"
	"github.com/TFMV/gravmesh/physics"
)

type layoutOptions struct {
	input      string
	output     string
	format     string
	paramsFile string
	placement  string
	seed       int64
	radius     float64
	spacing    float64
	drift      float64
	accel      string
	iterations int
}

func newLayoutCmd() *cobra.Command {
	opts := &layoutOptions{}

	cmd := &cobra.Command{
		Use:   "layout",
		Short: "Compute a layout for a graph document",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLayout(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.input, "input", "i", "", "graph document (.json, .yaml)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "json", "output format: json or dot")
	cmd.Flags().StringVar(&opts.paramsFile, "params", "", "YAML layout parameter file")
	cmd.Flags().StringVar(&opts.placement, "placement", "spherical", "initial placement: spherical, circular, grid or random")
	cmd.Flags().Int64Var(&opts.seed, "seed", 1, "seed for random placement and drift")
	cmd.Flags().Float64Var(&opts.radius, "radius", 1.5, "placement radius (spherical, circular, random)")
	cmd.Flags().Float64Var(&opts.spacing, "spacing", 1.0, "lattice spacing (grid placement)")
	cmd.Flags().Float64Var(&opts.drift, "drift", 0, "organic noise amplitude applied after placement")
	cmd.Flags().StringVar(&opts.accel, "accel", "", "repulsion path override: exact, grid or octree")
	cmd.Flags().IntVar(&opts.iterations, "iterations", 0, "max iteration override")
	_ = cmd.MarkFlagRequired("input")

	return cmd
}

func runLayout(cmd *cobra.Command, opts *layoutOptions) error {
	logger := newLogger()

	g, err := ingest.LoadGraph(opts.input)
	if err != nil {
		return err
	}

	params := physics.DefaultParams()
	if opts.paramsFile != "" {
		if params, err = ingest.LoadParams(opts.paramsFile); err != nil {
			return err
		}
	}
	if opts.accel != "" {
		params.Accel = physics.Accel(opts.accel)
	}
	if opts.iterations > 0 {
		params.MaxIterations = opts.iterations
	}

	strategy, err := pickStrategy(opts)
	if err != nil {
		return err
	}

	orch, err := layout.New(g, params, logger)
	if err != nil {
		return err
	}
	orch.Place(strategy)

	// Let SIGINT/SIGTERM stop the run at the next tick boundary; partial
	// layouts are still valid output.
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	res := orch.RunUntilConvergence(ctx)
	stats := orch.Stats()
	logger.Info("layout statistics",
		"nodes", stats.NodeCount,
		"edges", stats.EdgeCount,
		"meanEdgeLength", stats.MeanEdgeLength,
		"boundsDiagonal", stats.BoundsDiagonal,
		"outcome", res.Outcome.String())

	exporter, err := export.New(opts.format)
	if err != nil {
		return err
	}
	out, err := exporter.Export(g)
	if err != nil {
		return err
	}

	if opts.output == "" {
		_, err = cmd.OutOrStdout().Write(out)
		return err
	}
	return os.WriteFile(opts.output, out, 0o644)
}

func pickStrategy(opts *layoutOptions) (layout.Strategy, error) {
	var base layout.Strategy
	switch opts.placement {
	case "spherical":
		base = layout.Spherical{Radius: opts.radius}
	case "circular":
		base = layout.Circular{Radius: opts.radius}
	case "grid":
		base = layout.GridLattice{Spacing: opts.spacing}
	case "random":
		base = layout.Random{Radius: opts.radius, Seed: opts.seed}
	default:
		return nil, fmt.Errorf("unknown placement %q", opts.placement)
	}
	if opts.drift > 0 {
		return layout.OrganicDrift{Base: base, Seed: opts.seed, Amplitude: opts.drift}, nil
	}
	return base, nil
}
