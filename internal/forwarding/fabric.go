// Package forwarding is an in-memory realization of the satellite
// network stacks: per-node interface handles created during link-fabric
// construction and per-node forwarding tables fed by route
// installation. Lookups use longest-prefix match so the tables behave
// like the real thing even though the planner only writes host routes.
package forwarding

import (
	"errors"
	"fmt"
	"net/netip"

	"github.com/gaissmai/bart"

	"github.com/signalsfoundry/isl-mesh/core"
)

var (
	ErrUnknownNode      = errors.New("unknown satellite")
	ErrUnknownInterface = errors.New("unknown interface")
	ErrInterfaceOrder   = errors.New("link installed out of interface order")
)

// HostRoute is one installed forwarding rule on a satellite.
type HostRoute struct {
	Dst     netip.Addr
	Gateway netip.Addr
	Iface   int
}

// Iface is an addressable interface handle on a satellite: its local
// index, the ISL it terminates, and the address stamped on it during
// address assignment.
type Iface struct {
	Index int
	Link  core.Link
	Addr  netip.Addr
}

// Fabric implements both core.LinkInstaller and core.ForwardingSink.
type Fabric struct {
	ifaces [][]Iface
	tables []bart.Table[HostRoute]
}

// NewFabric creates an empty fabric for n satellites.
func NewFabric(n int) *Fabric {
	return &Fabric{
		ifaces: make([][]Iface, n),
		tables: make([]bart.Table[HostRoute], n),
	}
}

// NumSatellites returns the node count the fabric was sized for.
func (f *Fabric) NumSatellites() int { return len(f.ifaces) }

// InstallLink creates the interface handle at both endpoints of l. The
// link's interface indices must match each endpoint's creation order;
// anything else means the caller broke the ordering contract.
func (f *Fabric) InstallLink(l core.Link) error {
	for _, end := range []struct {
		node, iface int
	}{{l.A, l.IfaceA}, {l.B, l.IfaceB}} {
		if end.node < 0 || end.node >= len(f.ifaces) {
			return fmt.Errorf("%w: %d", ErrUnknownNode, end.node)
		}
		if end.iface != len(f.ifaces[end.node]) {
			return fmt.Errorf("%w: satellite %d expected interface %d, got %d",
				ErrInterfaceOrder, end.node, len(f.ifaces[end.node]), end.iface)
		}
		f.ifaces[end.node] = append(f.ifaces[end.node], Iface{Index: end.iface, Link: l})
	}
	return nil
}

// BindAddresses stamps each interface handle with the address the
// allocator chose for it.
func (f *Fabric) BindAddresses(ls *core.LinkSet, ib *core.InterfaceBindings) error {
	for _, l := range ls.Links {
		for _, end := range []struct {
			local, remote int
		}{{l.A, l.B}, {l.B, l.A}} {
			b, ok := ib.Local(end.local, end.remote)
			if !ok {
				return fmt.Errorf("no binding for satellite %d toward %d", end.local, end.remote)
			}
			if end.local < 0 || end.local >= len(f.ifaces) || b.Interface >= len(f.ifaces[end.local]) {
				return fmt.Errorf("%w: satellite %d interface %d", ErrUnknownInterface, end.local, b.Interface)
			}
			f.ifaces[end.local][b.Interface].Addr = b.Addr
		}
	}
	return nil
}

// Interfaces returns the satellite's interface handles in index order.
func (f *Fabric) Interfaces(node int) []Iface {
	if node < 0 || node >= len(f.ifaces) {
		return nil
	}
	return f.ifaces[node]
}

// AddHostRoute installs one forwarding rule on the satellite,
// implementing core.ForwardingSink. The egress interface must already
// exist on the node.
func (f *Fabric) AddHostRoute(node int, dst netip.Addr, gateway netip.Addr, ifaceIndex int) error {
	if node < 0 || node >= len(f.tables) {
		return fmt.Errorf("%w: %d", ErrUnknownNode, node)
	}
	if ifaceIndex < 0 || ifaceIndex >= len(f.ifaces[node]) {
		return fmt.Errorf("%w: satellite %d interface %d", ErrUnknownInterface, node, ifaceIndex)
	}
	f.tables[node].Insert(netip.PrefixFrom(dst, dst.BitLen()), HostRoute{
		Dst:     dst,
		Gateway: gateway,
		Iface:   ifaceIndex,
	})
	return nil
}

// Lookup resolves dst in the satellite's forwarding table.
func (f *Fabric) Lookup(node int, dst netip.Addr) (HostRoute, bool) {
	if node < 0 || node >= len(f.tables) {
		return HostRoute{}, false
	}
	return f.tables[node].Lookup(dst)
}

// RouteCount returns the number of rules installed on the satellite.
func (f *Fabric) RouteCount(node int) int {
	if node < 0 || node >= len(f.tables) {
		return 0
	}
	return f.tables[node].Size()
}
