package core

import (
	"errors"
	"net/netip"
	"testing"
)

// syntheticLinkSet builds a LinkSet of n sequential links between
// distinct satellite pairs, bypassing geometry.
func syntheticLinkSet(n int) *LinkSet {
	ls := &LinkSet{
		numSatellites: 2 * n,
		ifaceCount:    make([]int, 2*n),
	}
	for i := 0; i < n; i++ {
		ls.Links = append(ls.Links, Link{Index: i, A: 2 * i, B: 2*i + 1})
		ls.ifaceCount[2*i] = 1
		ls.ifaceCount[2*i+1] = 1
	}
	return ls
}

func TestAssignAddressesHostPair(t *testing.T) {
	ib, err := AssignAddresses(syntheticLinkSet(1))
	if err != nil {
		t.Fatalf("AssignAddresses error: %v", err)
	}

	a, ok := ib.Local(0, 1)
	if !ok {
		t.Fatal("missing binding for (0,1)")
	}
	if want := netip.MustParseAddr("10.0.0.1"); a.Addr != want {
		t.Fatalf("lower endpoint addr = %v, want %v", a.Addr, want)
	}

	b, ok := ib.Local(1, 0)
	if !ok {
		t.Fatal("missing binding for (1,0)")
	}
	if want := netip.MustParseAddr("10.0.0.2"); b.Addr != want {
		t.Fatalf("higher endpoint addr = %v, want %v", b.Addr, want)
	}
}

func TestAssignAddressesDisjointBlocks(t *testing.T) {
	topo := GenerateTopology(24, 4)
	ls, err := BuildLinkFabric(walkerSatellites(t), topo)
	if err != nil {
		t.Fatalf("BuildLinkFabric error: %v", err)
	}
	ib, err := AssignAddresses(ls)
	if err != nil {
		t.Fatalf("AssignAddresses error: %v", err)
	}

	subnets := ib.Subnets()
	if len(subnets) != 48 {
		t.Fatalf("%d subnets, want 48", len(subnets))
	}
	for i := 0; i < len(subnets); i++ {
		if subnets[i].Bits() != 30 {
			t.Errorf("subnet %d has /%d, want /30", i, subnets[i].Bits())
		}
		for j := i + 1; j < len(subnets); j++ {
			if subnets[i].Overlaps(subnets[j]) {
				t.Errorf("subnets %v and %v overlap", subnets[i], subnets[j])
			}
		}
	}
}

// Block numbering rolls into the second octet after 64 blocks fill the
// third.
func TestAssignAddressesOctetRollover(t *testing.T) {
	ib, err := AssignAddresses(syntheticLinkSet(65))
	if err != nil {
		t.Fatalf("AssignAddresses error: %v", err)
	}

	subnets := ib.Subnets()
	if want := netip.MustParsePrefix("10.0.0.0/30"); subnets[0] != want {
		t.Fatalf("subnet 0 = %v, want %v", subnets[0], want)
	}
	if want := netip.MustParsePrefix("10.0.252.0/30"); subnets[63] != want {
		t.Fatalf("subnet 63 = %v, want %v", subnets[63], want)
	}
	if want := netip.MustParsePrefix("10.1.0.0/30"); subnets[64] != want {
		t.Fatalf("subnet 64 = %v, want %v", subnets[64], want)
	}
}

func TestAssignAddressesExhaustion(t *testing.T) {
	// 256*64 blocks fit; one more must fail rather than collide.
	_, err := AssignAddresses(syntheticLinkSet(256*64 + 1))
	if !errors.Is(err, ErrAddressSpaceExhausted) {
		t.Fatalf("error = %v, want ErrAddressSpaceExhausted", err)
	}
}

func TestNodeAddrIsFirstAssigned(t *testing.T) {
	topo := GenerateTopology(24, 4)
	ls, err := BuildLinkFabric(walkerSatellites(t), topo)
	if err != nil {
		t.Fatalf("BuildLinkFabric error: %v", err)
	}
	ib, err := AssignAddresses(ls)
	if err != nil {
		t.Fatalf("AssignAddresses error: %v", err)
	}

	for node := 0; node < topo.NumSatellites; node++ {
		addr, ok := ib.NodeAddr(node)
		if !ok {
			t.Fatalf("no representative address for satellite %d", node)
		}

		// Find the first link touching this node; its binding must
		// supply the representative address.
		for _, l := range ls.Links {
			if l.A != node && l.B != node {
				continue
			}
			remote := l.B
			if l.B == node {
				remote = l.A
			}
			b, ok := ib.Local(node, remote)
			if !ok {
				t.Fatalf("missing binding (%d,%d)", node, remote)
			}
			if addr != b.Addr {
				t.Errorf("satellite %d representative %v, want first-link addr %v", node, addr, b.Addr)
			}
			break
		}
	}
}
