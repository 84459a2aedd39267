package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/signalsfoundry/isl-mesh/core"
)

var topoFlags struct {
	satellites int
	neighbors  int
}

var topologyCmd = &cobra.Command{
	Use:   "topology",
	Short: "Inspect the abstract ISL neighbor graph without building links",
	RunE:  runTopology,
}

func init() {
	topologyCmd.Flags().IntVar(&topoFlags.satellites, "satellites", core.ValidatedShape.Satellites(), "constellation size")
	topologyCmd.Flags().IntVar(&topoFlags.neighbors, "neighbors", core.DefaultNeighborsPerSatellite, "ISL terminals per satellite")
	rootCmd.AddCommand(topologyCmd)
}

func runTopology(cmd *cobra.Command, args []string) error {
	topo := core.GenerateTopology(topoFlags.satellites, topoFlags.neighbors)
	if topo.IsEmpty() {
		return fmt.Errorf("no ISL generator rule for %d satellites with %d neighbors",
			topoFlags.satellites, topoFlags.neighbors)
	}

	fmt.Printf("satellites:   %d\n", topo.NumSatellites)
	fmt.Printf("unique links: %d\n", topo.NumLinks)
	fmt.Printf("connectivity: %.3f\n", topo.MeshConnectivity())
	fmt.Println("adjacency:")
	for id, peers := range topo.Neighbors {
		fmt.Printf("  %2d -> %v\n", id, peers)
	}

	dist := topo.HopDistances(0)
	fmt.Println("hop distances from satellite 0:")
	for id, d := range dist {
		fmt.Printf("  %2d: %d\n", id, d)
	}
	return nil
}
