package wrapper

import (
	"encoding/json"
	"net/netip"

	"github.com/aretw0/elicitation/pkg/contract"
	"github.com/aretw0/elicitation/pkg/domain"
	"github.com/aretw0/elicitation/pkg/foundation"
)

type (
	IsIPv4             struct{}
	IsIPv6             struct{}
	IsPrivateIP        struct{}
	IsPublicIP         struct{}
	IsLoopbackIP       struct{}
	IsUnicastMAC       struct{}
	IsMulticastMAC     struct{}
	IsUniversalMAC     struct{}
	IsLocalMAC         struct{}
	IsAnyPort          struct{}
	IsNonZeroPort      struct{}
	IsPrivilegedPort   struct{}
	IsUnprivilegedPort struct{}
)

func (IsIPv4) Proposition() string { return "ipv4 address" }
func (IsIPv6) Proposition() string { return "ipv6 address" }
func (IsPrivateIP) Proposition() string { return "private address" }
func (IsPublicIP) Proposition() string { return "public address" }
func (IsLoopbackIP) Proposition() string { return "loopback address" }
func (IsUnicastMAC) Proposition() string { return "unicast mac" }
func (IsMulticastMAC) Proposition() string { return "multicast mac" }
func (IsUniversalMAC) Proposition() string { return "universally administered mac" }
func (IsLocalMAC) Proposition() string { return "locally administered mac" }
func (IsAnyPort) Proposition() string { return "socket address" }
func (IsNonZeroPort) Proposition() string { return "non-zero port" }
func (IsPrivilegedPort) Proposition() string { return "privileged port" }
func (IsUnprivilegedPort) Proposition() string { return "unprivileged port" }

func (IsPrivateIP) ipClass() foundation.IPClass { return foundation.IPPrivate }
func (IsPublicIP) ipClass() foundation.IPClass { return foundation.IPPublic }
func (IsLoopbackIP) ipClass() foundation.IPClass { return foundation.IPLoopback }

func (IsUnicastMAC) macClass() foundation.MACClass { return foundation.MACUnicast }
func (IsMulticastMAC) macClass() foundation.MACClass { return foundation.MACMulticast }
func (IsUniversalMAC) macClass() foundation.MACClass { return foundation.MACUniversal }
func (IsLocalMAC) macClass() foundation.MACClass { return foundation.MACLocal }

func (IsAnyPort) portClass() foundation.PortClass { return foundation.PortAny }
func (IsNonZeroPort) portClass() foundation.PortClass { return foundation.PortNonZero }
func (IsPrivilegedPort) portClass() foundation.PortClass { return foundation.PortPrivileged }
func (IsUnprivilegedPort) portClass() foundation.PortClass { return foundation.PortUnprivileged }

// IPClass is the set of address class propositions.
type IPClass interface {
	contract.Prop
	ipClass() foundation.IPClass
}

// MACClass is the set of MAC class propositions.
type MACClass interface {
	contract.Prop
	macClass() foundation.MACClass
}

// PortClass is the set of port class propositions.
type PortClass interface {
	contract.Prop
	portClass() foundation.PortClass
}

// IPv4 is any well-formed IPv4 address.
type IPv4 struct {
	ip    foundation.IPv4Bytes
	valid bool
}

func NewIPv4(s string) (IPv4, error) {
	ip, err := foundation.ParseIPv4(s)
	if err != nil {
		return IPv4{}, err
	}
	return IPv4{ip: ip, valid: true}, nil
}

func (i IPv4) Get() foundation.IPv4Bytes { return i.ip }
func (i IPv4) String() string { return i.ip.String() }
func (i IPv4) Invariant() bool { return i.valid }
func (i IPv4) Establishes() IsIPv4 { return IsIPv4{} }
func (i IPv4) MarshalJSON() ([]byte, error) { return json.Marshal(i.String()) }

// IPv6 is any well-formed IPv6 address that is not IPv4-mapped.
type IPv6 struct {
	ip    foundation.IPv6Bytes
	valid bool
}

func NewIPv6(s string) (IPv6, error) {
	ip, err := foundation.ParseIPv6(s)
	if err != nil {
		return IPv6{}, err
	}
	return IPv6{ip: ip, valid: true}, nil
}

func (i IPv6) Get() foundation.IPv6Bytes { return i.ip }
func (i IPv6) String() string { return i.ip.String() }
func (i IPv6) Invariant() bool { return i.valid }
func (i IPv6) Establishes() IsIPv6 { return IsIPv6{} }
func (i IPv6) MarshalJSON() ([]byte, error) { return json.Marshal(i.String()) }

// IP is an IPv4 or IPv6 address in class C.
type IP[C IPClass] struct {
	addr  netip.Addr
	valid bool
}

// NewIP parses s, then checks the class.
func NewIP[C IPClass](s string) (IP[C], error) {
	var c C
	addr, err := netip.ParseAddr(s)
	if err != nil || addr.Is4In6() {
		return IP[C]{}, &domain.ParseError{Type: "IP", Expected: "ip address", Received: s}
	}
	if addr.Is4() {
		if _, err := foundation.NewIPv4Classified(addr.As4(), c.ipClass()); err != nil {
			return IP[C]{}, err
		}
	} else if _, err := foundation.NewIPv6Classified(addr.As16(), c.ipClass()); err != nil {
		return IP[C]{}, err
	}
	return IP[C]{addr: addr, valid: true}, nil
}

func (i IP[C]) Get() netip.Addr { return i.addr }
func (i IP[C]) String() string { return i.addr.String() }
func (i IP[C]) Is4() bool { return i.addr.Is4() }
func (i IP[C]) Establishes() C { return *new(C) }
func (i IP[C]) MarshalJSON() ([]byte, error) { return json.Marshal(i.String()) }

func (i IP[C]) Invariant() bool {
	if !i.valid || !i.addr.IsValid() {
		return false
	}
	var c C
	if i.addr.Is4() {
		_, err := foundation.NewIPv4Classified(i.addr.As4(), c.ipClass())
		return err == nil
	}
	_, err := foundation.NewIPv6Classified(i.addr.As16(), c.ipClass())
	return err == nil
}

type (
	IPPrivate  = IP[IsPrivateIP]
	IPPublic   = IP[IsPublicIP]
	IPLoopback = IP[IsLoopbackIP]
)

// MAC is an EUI-48 address in class C.
type MAC[C MACClass] struct {
	m foundation.MACClassified
}

// NewMAC parses s, then checks the class bits.
func NewMAC[C MACClass](s string) (MAC[C], error) {
	var c C
	raw, err := foundation.ParseMAC(s)
	if err != nil {
		return MAC[C]{}, err
	}
	m, err := foundation.NewMACClassified(raw, c.macClass())
	if err != nil {
		return MAC[C]{}, err
	}
	return MAC[C]{m: m}, nil
}

func (m MAC[C]) Get() foundation.MACBytes { return m.m.Get() }
func (m MAC[C]) String() string { return m.m.String() }

func (m MAC[C]) Invariant() bool {
	var c C
	return m.m.Invariant() && m.m.Class() == c.macClass()
}

func (m MAC[C]) Establishes() C { return *new(C) }
func (m MAC[C]) MarshalJSON() ([]byte, error) { return json.Marshal(m.String()) }

type (
	MACUnicast   = MAC[IsUnicastMAC]
	MACMulticast = MAC[IsMulticastMAC]
	MACUniversal = MAC[IsUniversalMAC]
	MACLocal     = MAC[IsLocalMAC]
)

// Socket is an ip:port pair whose port is in class C.
type Socket[C PortClass] struct {
	s foundation.SocketAddrBytes
}

// NewSocket parses "ip:port" (IPv6 in brackets), then checks the port class.
func NewSocket[C PortClass](s string) (Socket[C], error) {
	var c C
	addr, err := foundation.ParseSocketAddr(s, c.portClass())
	if err != nil {
		return Socket[C]{}, err
	}
	return Socket[C]{s: addr}, nil
}

func (s Socket[C]) Get() foundation.SocketAddrBytes { return s.s }
func (s Socket[C]) Port() uint16 { return s.s.Port() }
func (s Socket[C]) String() string { return s.s.String() }
func (s Socket[C]) Invariant() bool { return s.s.Invariant() }
func (s Socket[C]) Establishes() C { return *new(C) }
func (s Socket[C]) MarshalJSON() ([]byte, error) { return json.Marshal(s.String()) }

type (
	SocketAddr       = Socket[IsAnyPort]
	PortNonZero      = Socket[IsNonZeroPort]
	PortPrivileged   = Socket[IsPrivilegedPort]
	PortUnprivileged = Socket[IsUnprivilegedPort]
)
