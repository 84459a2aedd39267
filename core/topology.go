package core

// DefaultNeighborsPerSatellite is the ISL terminal count assumed by the
// validated constellation: 2 intra-plane plus 2 inter-plane neighbors.
const DefaultNeighborsPerSatellite = 4

// WalkerShape describes a fixed-degree constellation layout: Planes
// equally-spaced orbital planes with SatsPerPlane members each.
type WalkerShape struct {
	Planes       int
	SatsPerPlane int
}

// ValidatedShape is the Walker-Delta 53:24/3/1 layout the planner is
// validated against: 3 planes of 8 satellites.
var ValidatedShape = WalkerShape{Planes: 3, SatsPerPlane: 8}

// Satellites returns the member count of the shape.
func (s WalkerShape) Satellites() int { return s.Planes * s.SatsPerPlane }

// supported reports whether the shape yields four distinct neighbors
// per satellite: ring adjacency needs at least 3 slots per plane, and
// same-slot coupling needs at least 3 planes.
func (s WalkerShape) supported() bool {
	return s.Planes >= 3 && s.SatsPerPlane >= 3
}

// Topology is the abstract ISL neighbor graph. Satellites are
// identified by index; Neighbors[id] lists the ISL peers of id in a
// fixed enumeration order (intra-plane forward, intra-plane backward,
// next plane, previous plane). The adjacency is symmetric.
//
// A Topology with NumLinks == 0 is the explicit "unsupported
// configuration" signal: callers must check before building links.
type Topology struct {
	NumSatellites int
	Neighbors     [][]int
	NumLinks      int
}

// IsEmpty reports whether the topology carries no ISL edges, i.e. the
// requested configuration had no defined generator rule.
func (t Topology) IsEmpty() bool { return t.NumLinks == 0 }

// GenerateTopology builds the ISL neighbor graph for a constellation of
// satelliteCount members with neighborsPerSatellite ISL terminals each.
//
// Only the validated 24-satellite, 4-neighbor combination is accepted;
// any other combination returns an explicitly empty topology rather
// than an error.
func GenerateTopology(satelliteCount, neighborsPerSatellite int) Topology {
	if neighborsPerSatellite != DefaultNeighborsPerSatellite ||
		satelliteCount != ValidatedShape.Satellites() {
		return Topology{
			NumSatellites: satelliteCount,
			Neighbors:     make([][]int, max(satelliteCount, 0)),
		}
	}
	return GenerateWalkerTopology(ValidatedShape)
}

// GenerateWalkerTopology builds the 4-neighbor graph for an arbitrary
// Walker shape: 2 intra-plane neighbors via modular ring adjacency and
// 2 inter-plane neighbors via same-slot coupling to the adjacent planes.
// Shapes too small for four distinct neighbors yield an empty topology.
func GenerateWalkerTopology(shape WalkerShape) Topology {
	n := shape.Satellites()
	topo := Topology{
		NumSatellites: n,
		Neighbors:     make([][]int, max(n, 0)),
	}
	if !shape.supported() {
		return topo
	}

	s := shape.SatsPerPlane
	p := shape.Planes
	for plane := 0; plane < p; plane++ {
		for idx := 0; idx < s; idx++ {
			id := plane*s + idx

			forward := plane*s + (idx+1)%s
			backward := plane*s + (idx+s-1)%s

			nextPlane := (plane + 1) % p
			prevPlane := (plane + p - 1) % p
			right := nextPlane*s + idx
			left := prevPlane*s + idx

			topo.Neighbors[id] = []int{forward, backward, right, left}
		}
	}

	// Count each undirected edge once.
	seen := make(map[[2]int]struct{}, n*2)
	for id, peers := range topo.Neighbors {
		for _, peer := range peers {
			edge := canonicalEdge(id, peer)
			seen[edge] = struct{}{}
		}
	}
	topo.NumLinks = len(seen)
	return topo
}

// canonicalEdge normalizes an undirected edge so the smaller ID is first.
func canonicalEdge(a, b int) [2]int {
	if a < b {
		return [2]int{a, b}
	}
	return [2]int{b, a}
}

// Reachable performs a breadth-first traversal from src and reports,
// per satellite, whether it can be reached over the ISL mesh. An
// out-of-range source yields an all-false vector.
func (t Topology) Reachable(src int) []bool {
	visited := make([]bool, t.NumSatellites)
	if src < 0 || src >= t.NumSatellites {
		return visited
	}

	visited[src] = true
	queue := []int{src}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, peer := range t.Neighbors[current] {
			if peer >= 0 && peer < t.NumSatellites && !visited[peer] {
				visited[peer] = true
				queue = append(queue, peer)
			}
		}
	}
	return visited
}

// MeshConnectivity returns the fraction of ordered satellite pairs that
// are mutually reachable over the mesh; 1.0 means fully connected.
func (t Topology) MeshConnectivity() float64 {
	totalPairs := t.NumSatellites * (t.NumSatellites - 1)
	if totalPairs == 0 {
		return 0
	}

	reachablePairs := 0
	for src := 0; src < t.NumSatellites; src++ {
		for dst, ok := range t.Reachable(src) {
			if ok && dst != src {
				reachablePairs++
			}
		}
	}
	return float64(reachablePairs) / float64(totalPairs)
}

// HopDistances returns the unit-cost shortest hop count from src to
// every satellite, with -1 for unreachable members (and everything,
// when src is out of range).
func (t Topology) HopDistances(src int) []int {
	dist := make([]int, t.NumSatellites)
	for i := range dist {
		dist[i] = -1
	}
	if src < 0 || src >= t.NumSatellites {
		return dist
	}

	dist[src] = 0
	queue := []int{src}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, peer := range t.Neighbors[current] {
			if peer >= 0 && peer < t.NumSatellites && dist[peer] == -1 {
				dist[peer] = dist[current] + 1
				queue = append(queue, peer)
			}
		}
	}
	return dist
}
