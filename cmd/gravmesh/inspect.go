package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/TFMV/gravmesh/ingest"
	"github.com/TFMV/gravmesh/layout"
	"github.com/TFMV/gravmesh/physics"
)

func newInspectCmd() *cobra.Command {
	var input string

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Print summary statistics for a graph document",
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := ingest.LoadGraph(input)
			if err != nil {
				return err
			}

			orch, err := layout.New(g, physics.DefaultParams(), nil)
			if err != nil {
				return err
			}
			stats := orch.Stats()

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "nodes:            %d\n", stats.NodeCount)
			fmt.Fprintf(out, "edges:            %d\n", stats.EdgeCount)
			fmt.Fprintf(out, "mean edge length: %.4f\n", stats.MeanEdgeLength)
			fmt.Fprintf(out, "bounds diagonal:  %.4f\n", stats.BoundsDiagonal)

			pinned := 0
			for _, n := range g.Nodes() {
				if n.Pinned {
					pinned++
				}
			}
			fmt.Fprintf(out, "pinned nodes:     %d\n", pinned)
			return nil
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "graph document (.json, .yaml)")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}
