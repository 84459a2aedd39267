package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "islmesh",
	Short: "Static ISL mesh planner for fixed-degree constellations",
	Long: `islmesh builds the inter-satellite link mesh for a fixed-geometry
constellation: it generates the neighbor topology, computes static
shortest-path routes, materializes links with distance-based delays,
assigns per-link /30 address blocks, and installs one host route per
satellite pair.`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
