// Command gravmesh runs the force-directed layout engine over a graph
// document and writes the positioned result.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var verbose bool

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "gravmesh",
		Short:         "3D force-directed graph layout",
		Long:          "gravmesh computes 3D positions for graph nodes using a force-directed\nsimulation so connected entities cluster and unconnected ones separate.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	root.AddCommand(newLayoutCmd())
	root.AddCommand(newInspectCmd())
	return root
}

// newLogger builds the CLI's logger honoring --verbose.
func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "gravmesh:", err)
		os.Exit(1)
	}
}
