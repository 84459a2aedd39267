package core

import (
	"fmt"
	"net/netip"
)

// SkipReason classifies why a computed (src, dst) pair could not be
// materialized as a forwarding rule.
type SkipReason string

const (
	SkipNoRoute           SkipReason = "no-route"
	SkipNoDestinationAddr SkipReason = "no-destination-address"
	SkipNoEgressInterface SkipReason = "no-egress-interface"
	SkipNoGateway         SkipReason = "no-gateway"
)

// SkippedRoute identifies one ordered pair that was left without a
// forwarding rule, and why.
type SkippedRoute struct {
	Src    int
	Dst    int
	Reason SkipReason
}

// InstallReport is the outcome of route installation: how many host
// routes were written and exactly which pairs were skipped. Tests and
// callers assert on this directly instead of scraping log output.
type InstallReport struct {
	Installed int
	Skipped   []SkippedRoute
}

// ForwardingSink is the forwarding-table collaborator: it accepts one
// host-route installation request per (node, destination) with the
// gateway address and egress interface index already resolved.
type ForwardingSink interface {
	AddHostRoute(node int, dst netip.Addr, gateway netip.Addr, ifaceIndex int) error
}

// InstallRoutes converts the next-hop table plus the link/address
// bindings into concrete forwarding rules: exactly one host route per
// ordered (src, dst) pair, no equal-cost multipathing.
//
// A pair whose next hop or bindings cannot be resolved is skipped and
// recorded; installation continues for all remaining pairs. Only a
// sink failure aborts, since at that point the node's forwarding state
// is no longer trustworthy.
func InstallRoutes(sink ForwardingSink, rt *RoutingTable, bindings *InterfaceBindings) (InstallReport, error) {
	var report InstallReport
	n := rt.Size()

	for src := 0; src < n; src++ {
		for dst := 0; dst < n; dst++ {
			if src == dst {
				continue
			}

			nextHop := rt.NextHop(src, dst)
			if nextHop == NoRoute {
				report.Skipped = append(report.Skipped, SkippedRoute{Src: src, Dst: dst, Reason: SkipNoRoute})
				continue
			}

			dstAddr, ok := bindings.NodeAddr(dst)
			if !ok {
				report.Skipped = append(report.Skipped, SkippedRoute{Src: src, Dst: dst, Reason: SkipNoDestinationAddr})
				continue
			}

			// Local interface on src toward the next hop.
			egress, ok := bindings.Local(src, nextHop)
			if !ok {
				report.Skipped = append(report.Skipped, SkippedRoute{Src: src, Dst: dst, Reason: SkipNoEgressInterface})
				continue
			}

			// Gateway is the next hop's address on the shared link,
			// i.e. the reverse binding.
			gateway, ok := bindings.Local(nextHop, src)
			if !ok {
				report.Skipped = append(report.Skipped, SkippedRoute{Src: src, Dst: dst, Reason: SkipNoGateway})
				continue
			}

			if err := sink.AddHostRoute(src, dstAddr, gateway.Addr, egress.Interface); err != nil {
				return report, fmt.Errorf("add host route %d->%d via %d: %w", src, dst, nextHop, err)
			}
			report.Installed++
		}
	}

	return report, nil
}
