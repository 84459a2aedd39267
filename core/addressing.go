package core

import (
	"errors"
	"fmt"
	"net/netip"
)

// ErrAddressSpaceExhausted is returned when the 10.0.0.0/8 ISL range
// cannot hold another /30 block.
var ErrAddressSpaceExhausted = errors.New("isl address space exhausted")

// addressBlockBits is the prefix length of one point-to-point block:
// network, two hosts, broadcast.
const addressBlockBits = 30

// Binding records how a satellite reaches one ISL neighbor: the local
// interface index carrying the shared link and the local address on it.
type Binding struct {
	Interface int
	Addr      netip.Addr
}

// InterfaceBindings is the address/interface index built during
// address assignment and consumed by route installation. It is
// read-only for the rest of the run.
type InterfaceBindings struct {
	byPair   map[[2]int]Binding
	nodeAddr map[int]netip.Addr
	subnets  []netip.Prefix
}

// Local resolves the binding for the (local, remote) satellite pair:
// local's interface toward remote and local's address on that link.
func (ib *InterfaceBindings) Local(local, remote int) (Binding, bool) {
	b, ok := ib.byPair[[2]int{local, remote}]
	return b, ok
}

// NodeAddr returns one representative reachable address for the
// satellite: its side of the first link it joined.
func (ib *InterfaceBindings) NodeAddr(node int) (netip.Addr, bool) {
	a, ok := ib.nodeAddr[node]
	return a, ok
}

// Subnets lists the per-link /30 blocks in link-creation order.
func (ib *InterfaceBindings) Subnets() []netip.Prefix { return ib.subnets }

// AssignAddresses gives every link a disjoint /30 block numbered by
// link-creation order. The lower-ID endpoint takes the first host
// address, the higher-ID endpoint the second; blocks never collide
// because the third octet rolls into the second every 64 links.
func AssignAddresses(ls *LinkSet) (*InterfaceBindings, error) {
	ib := &InterfaceBindings{
		byPair:   make(map[[2]int]Binding, len(ls.Links)*2),
		nodeAddr: make(map[int]netip.Addr, ls.NumSatellites()),
		subnets:  make([]netip.Prefix, 0, len(ls.Links)),
	}

	for _, link := range ls.Links {
		base, err := linkSubnetBase(link.Index)
		if err != nil {
			return nil, err
		}
		ib.subnets = append(ib.subnets, netip.PrefixFrom(base, addressBlockBits))

		hostA := base.Next()        // .1, lower satellite ID
		hostB := hostA.Next()       // .2, higher satellite ID
		ib.byPair[[2]int{link.A, link.B}] = Binding{Interface: link.IfaceA, Addr: hostA}
		ib.byPair[[2]int{link.B, link.A}] = Binding{Interface: link.IfaceB, Addr: hostB}

		// First assigned address becomes the satellite's representative
		// destination address.
		if _, ok := ib.nodeAddr[link.A]; !ok {
			ib.nodeAddr[link.A] = hostA
		}
		if _, ok := ib.nodeAddr[link.B]; !ok {
			ib.nodeAddr[link.B] = hostB
		}
	}

	return ib, nil
}

// linkSubnetBase computes the network address of block i:
// 10.(i/64).((i%64)*4).0. 64 blocks of 4 addresses fill the third
// octet, after which allocation rolls into the second octet.
func linkSubnetBase(i int) (netip.Addr, error) {
	hi := i / 64
	lo := (i % 64) * 4
	if i < 0 || hi > 255 {
		return netip.Addr{}, fmt.Errorf("%w: link index %d", ErrAddressSpaceExhausted, i)
	}
	return netip.AddrFrom4([4]byte{10, byte(hi), byte(lo), 0}), nil
}
