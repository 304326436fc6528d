package main

import (
	"fmt"
	"math"

	ptopo "github.com/rttopo/topology/pkg/topo"
	"github.com/spf13/cobra"
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Build a small topology in memory and print its resulting faces",
	RunE:  runDemo,
}

func runDemo(cmd *cobra.Command, args []string) error {
	factory, geom := ptopo.NewMemoryFactory(0, 1e-9, false)

	t, err := ptopo.LoadTopology(factory, geom, "")
	if err != nil {
		return fmt.Errorf("load topology: %w", err)
	}
	defer func() {
		if err := ptopo.FreeTopology(t); err != nil {
			log.WithError(err).Warn("failed to release topology handle")
		}
	}()

	ring := ptopo.Polygon{
		Outer: ptopo.Ring{
			{X: 0, Y: 0, Z: math.NaN()},
			{X: 10, Y: 0, Z: math.NaN()},
			{X: 10, Y: 10, Z: math.NaN()},
			{X: 0, Y: 10, Z: math.NaN()},
			{X: 0, Y: 0, Z: math.NaN()},
		},
	}

	covered, err := t.AddPolygon(ring, 1e-9)
	if err != nil {
		return fmt.Errorf("add polygon: %w", err)
	}
	log.WithField("faces", covered).Info("added square ring")

	nodeID, err := t.AddIsoNode(ptopo.Unset, ptopo.Point{X: 5, Y: 5, Z: math.NaN()}, false)
	if err != nil {
		return fmt.Errorf("add iso node: %w", err)
	}
	log.WithField("node", nodeID).Info("added isolated node inside the ring")

	face, err := t.GetFaceEdges(ptopo.Universe)
	if err != nil {
		return fmt.Errorf("get universe edges: %w", err)
	}
	log.WithField("count", len(face)).Info("edges bounding the universe face")

	fmt.Printf("topology ready: %d face(s) covered by the ring, isolated node %d, %d edges on the universe face\n", len(covered), nodeID, len(face))
	return nil
}
