package core

import (
	"errors"
	"fmt"
	"time"

	"github.com/signalsfoundry/isl-mesh/model"
)

// ErrNodeCountMismatch is returned when the physical satellite list
// disagrees with the topology's declared member count. The index space
// would be inconsistent, so no link may be created.
var ErrNodeCountMismatch = errors.New("satellite count mismatch")

// LinkParams carries the fixed transmission properties shared by every
// ISL in the mesh.
type LinkParams struct {
	DataRateBps       uint64
	QueueLimitPackets int
}

// DefaultLinkParams matches the validated optical-ISL configuration:
// 10 Gbps with a 100-packet drop-tail queue.
func DefaultLinkParams() LinkParams {
	return LinkParams{
		DataRateBps:       10_000_000_000,
		QueueLimitPackets: 100,
	}
}

// Link is one full-duplex ISL between satellites A and B, A < B.
// IfaceA and IfaceB are the local interface indices the link occupies
// at each endpoint: the position of this edge among all edges touching
// that satellite, in creation order. Downstream route installation
// relies on that contract.
type Link struct {
	Index int
	A, B  int

	IfaceA, IfaceB int

	DistanceM float64
	Delay     time.Duration

	DataRateBps       uint64
	QueueLimitPackets int
}

// LinkSet is the materialized ISL fabric: every link in creation order
// plus the per-satellite interface tally.
type LinkSet struct {
	Links []Link

	numSatellites int
	ifaceCount    []int
}

// NumSatellites returns the member count the fabric was built for.
func (ls *LinkSet) NumSatellites() int { return ls.numSatellites }

// InterfaceCount returns how many ISL interfaces the satellite carries.
func (ls *LinkSet) InterfaceCount(node int) int {
	if node < 0 || node >= len(ls.ifaceCount) {
		return 0
	}
	return ls.ifaceCount[node]
}

// LinkInstaller is the physical-layer collaborator: it receives each
// link as it is created, in creation order, and realizes the transport
// connection. Implementations must not reorder installation.
type LinkInstaller interface {
	InstallLink(l Link) error
}

// LinkFabricBuilder instantiates one physical link per topology edge,
// deriving distance and propagation delay from the satellites' current
// positions.
type LinkFabricBuilder struct {
	Params LinkParams

	// Installer, when non-nil, is invoked for every created link.
	Installer LinkInstaller
}

// Build walks the adjacency structure in ascending satellite order and
// creates exactly one link per canonical (A,B) edge, A < B, even if
// both directions are enumerated. The scan order is deterministic for
// a given topology; it implicitly assigns each satellite's local
// interface index in creation order.
func (b *LinkFabricBuilder) Build(nodes []*model.Satellite, topo Topology) (*LinkSet, error) {
	if len(nodes) != topo.NumSatellites {
		return nil, fmt.Errorf("%w: %d nodes vs %d satellites in topology",
			ErrNodeCountMismatch, len(nodes), topo.NumSatellites)
	}

	params := b.Params
	if params.DataRateBps == 0 && params.QueueLimitPackets == 0 {
		params = DefaultLinkParams()
	}

	ls := &LinkSet{
		numSatellites: topo.NumSatellites,
		ifaceCount:    make([]int, topo.NumSatellites),
	}
	created := make(map[[2]int]struct{})

	for sat := 0; sat < topo.NumSatellites; sat++ {
		for _, neighbor := range topo.Neighbors[sat] {
			if sat >= neighbor {
				continue // canonical direction only
			}
			edge := [2]int{sat, neighbor}
			if _, dup := created[edge]; dup {
				continue
			}

			posA := Vec3FromMotion(nodes[sat].Coordinates)
			posB := Vec3FromMotion(nodes[neighbor].Coordinates)
			distance := posA.DistanceTo(posB)

			link := Link{
				Index:             len(ls.Links),
				A:                 sat,
				B:                 neighbor,
				IfaceA:            ls.ifaceCount[sat],
				IfaceB:            ls.ifaceCount[neighbor],
				DistanceM:         distance,
				Delay:             PropagationDelay(distance),
				DataRateBps:       params.DataRateBps,
				QueueLimitPackets: params.QueueLimitPackets,
			}
			ls.ifaceCount[sat]++
			ls.ifaceCount[neighbor]++
			ls.Links = append(ls.Links, link)
			created[edge] = struct{}{}

			if b.Installer != nil {
				if err := b.Installer.InstallLink(link); err != nil {
					return nil, fmt.Errorf("install link %d<->%d: %w", sat, neighbor, err)
				}
			}
		}
	}

	return ls, nil
}

// BuildLinkFabric builds the ISL fabric with default link parameters
// and no physical-layer installer.
func BuildLinkFabric(nodes []*model.Satellite, topo Topology) (*LinkSet, error) {
	b := &LinkFabricBuilder{Params: DefaultLinkParams()}
	return b.Build(nodes, topo)
}
