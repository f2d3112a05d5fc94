package main

import (
	"fmt"
	"math"

	"github.com/spf13/cobra"

	"github.com/zhouzirui/z-counsel/backend/internal/analysis/topic"
)

func newDistanceCmd() *cobra.Command {
	var graphPath string
	cmd := &cobra.Command{
		Use:   "distance FROM TO",
		Short: "Print the shortest-path distance between two topics",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			graph := topic.DefaultGraph()
			if graphPath != "" {
				var err error
				if graph, err = topic.LoadGraphJSON(graphPath); err != nil {
					return err
				}
			}

			d := graph.Distance(args[0], args[1])
			if math.IsInf(d, 1) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s: unreachable\n", args[0], args[1])
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s: %g\n", args[0], args[1], d)
			return nil
		},
	}
	cmd.Flags().StringVar(&graphPath, "graph", "", "JSON topic graph file (default built-in graph)")
	return cmd
}
