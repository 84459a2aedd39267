package core

import (
	"context"
	"runtime"

	"github.com/emirpasic/gods/trees/binaryheap"
	"golang.org/x/sync/errgroup"
)

// NoRoute is the sentinel next-hop value for pairs without a usable
// route: unreachable destinations, self-routes, and loop detections.
const NoRoute = -1

// RoutingTable holds the static next hop for every ordered
// (src, dst) satellite pair. It is computed once from a Topology and
// treated as immutable afterwards.
type RoutingTable struct {
	next [][]int
}

// NewRoutingTable creates a table for n satellites with every entry set
// to NoRoute.
func NewRoutingTable(n int) *RoutingTable {
	next := make([][]int, n)
	for i := range next {
		row := make([]int, n)
		for j := range row {
			row[j] = NoRoute
		}
		next[i] = row
	}
	return &RoutingTable{next: next}
}

// Size returns the number of satellites the table covers.
func (rt *RoutingTable) Size() int { return len(rt.next) }

// NextHop returns the neighbor that traffic from src should take toward
// dst, or NoRoute when no route is known. Self pairs are always NoRoute.
func (rt *RoutingTable) NextHop(src, dst int) int {
	if src < 0 || src >= len(rt.next) || dst < 0 || dst >= len(rt.next) {
		return NoRoute
	}
	return rt.next[src][dst]
}

// SetNextHop records the next hop for an ordered pair. Out-of-range
// pairs are ignored.
func (rt *RoutingTable) SetNextHop(src, dst, hop int) {
	if src < 0 || src >= len(rt.next) || dst < 0 || dst >= len(rt.next) {
		return
	}
	rt.next[src][dst] = hop
}

// HopCount walks the table from src to dst and returns the number of
// hops on the installed path. It returns NoRoute when the walk hits a
// missing entry or revisits a satellite (a routing loop); it never
// spins forever on a corrupted table.
func (rt *RoutingTable) HopCount(src, dst int) int {
	if src == dst {
		return 0
	}

	hops := 0
	current := src
	visited := make(map[int]struct{})
	for current != dst {
		if _, seen := visited[current]; seen {
			return NoRoute // loop
		}
		visited[current] = struct{}{}

		current = rt.NextHop(current, dst)
		if current == NoRoute {
			return NoRoute
		}

		hops++
		if hops > rt.Size() {
			// A loop the visited set somehow missed; a simple path can
			// never exceed the satellite count.
			return NoRoute
		}
	}
	return hops
}

// pqItem orders the Dijkstra frontier by tentative distance, then by
// satellite ID so equal-length candidates pop in a reproducible order.
type pqItem struct {
	dist int
	node int
}

func pqCompare(a, b interface{}) int {
	ia := a.(pqItem)
	ib := b.(pqItem)
	if ia.dist != ib.dist {
		return ia.dist - ib.dist
	}
	return ia.node - ib.node
}

// ComputeRoutes derives the all-pairs next-hop table from the topology
// using unit-cost shortest paths: one Dijkstra run per source with a
// predecessor array, then a backward walk to the first hop.
//
// The result is deterministic for a given topology. Neighbors are
// relaxed in adjacency-list order and the frontier breaks distance ties
// toward the lower satellite ID, so repeated calls produce identical
// tables. Unreachable destinations keep the NoRoute sentinel.
func ComputeRoutes(topo Topology) *RoutingTable {
	rt := NewRoutingTable(topo.NumSatellites)
	for src := 0; src < topo.NumSatellites; src++ {
		nextHopsFrom(topo, src, rt.next[src])
	}
	return rt
}

// ComputeRoutesParallel is ComputeRoutes with the per-source searches
// fanned out across CPUs. Each source's row is independent, so this is
// a pure optimization: the table is identical to the sequential result.
func ComputeRoutesParallel(ctx context.Context, topo Topology) (*RoutingTable, error) {
	rt := NewRoutingTable(topo.NumSatellites)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for src := 0; src < topo.NumSatellites; src++ {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			nextHopsFrom(topo, src, rt.next[src])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return rt, nil
}

// nextHopsFrom runs the single-source search and fills row with the
// first hop toward every reachable destination.
func nextHopsFrom(topo Topology, src int, row []int) {
	n := topo.NumSatellites
	const unvisited = -1

	dist := make([]int, n)
	prev := make([]int, n)
	done := make([]bool, n)
	for i := 0; i < n; i++ {
		dist[i] = unvisited
		prev[i] = unvisited
	}
	dist[src] = 0

	frontier := binaryheap.NewWith(pqCompare)
	frontier.Push(pqItem{dist: 0, node: src})

	for !frontier.Empty() {
		top, _ := frontier.Pop()
		u := top.(pqItem).node
		if done[u] {
			continue
		}
		done[u] = true

		for _, v := range topo.Neighbors[u] {
			if v < 0 || v >= n || done[v] {
				continue
			}
			newDist := dist[u] + 1 // every ISL hop costs 1
			if dist[v] == unvisited || newDist < dist[v] {
				dist[v] = newDist
				prev[v] = u
				frontier.Push(pqItem{dist: newDist, node: v})
			}
		}
	}

	// Extract the first hop by tracing each destination back to src.
	for dst := 0; dst < n; dst++ {
		if dst == src || dist[dst] == unvisited {
			continue // self pairs and unreachable members keep NoRoute
		}
		current := dst
		for prev[current] != src && prev[current] != unvisited {
			current = prev[current]
		}
		if prev[current] == src {
			row[dst] = current
		}
	}
}
