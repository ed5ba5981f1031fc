package foundation

import (
	"fmt"
	"net"
	"net/netip"
	"strconv"

	"github.com/aretw0/elicitation/pkg/domain"
)

// IPv4Bytes is a raw IPv4 address.
type IPv4Bytes [4]byte

// IsPrivate reports RFC 1918 space: 10/8, 172.16/12, 192.168/16.
func (ip IPv4Bytes) IsPrivate() bool {
	switch ip[0] {
	case 10:
		return true
	case 172:
		return ip[1]&0xF0 == 16
	case 192:
		return ip[1] == 168
	}
	return false
}

// IsLoopback reports 127/8.
func (ip IPv4Bytes) IsLoopback() bool { return ip[0] == 127 }

// IsMulticast reports 224/4.
func (ip IPv4Bytes) IsMulticast() bool { return ip[0]&0xF0 == 0xE0 }

// IsLinkLocal reports 169.254/16.
func (ip IPv4Bytes) IsLinkLocal() bool { return ip[0] == 169 && ip[1] == 254 }

// IsUnspecified reports 0.0.0.0.
func (ip IPv4Bytes) IsUnspecified() bool { return ip == IPv4Bytes{} }

// IsBroadcast reports 255.255.255.255.
func (ip IPv4Bytes) IsBroadcast() bool { return ip == IPv4Bytes{255, 255, 255, 255} }

// IsPublic is neither private, loopback, unspecified nor broadcast.
func (ip IPv4Bytes) IsPublic() bool {
	return !ip.IsPrivate() && !ip.IsLoopback() && !ip.IsUnspecified() && !ip.IsBroadcast()
}

func (ip IPv4Bytes) String() string { return netip.AddrFrom4(ip).String() }

// IPv6Bytes is a raw IPv6 address.
type IPv6Bytes [16]byte

// IsPrivate reports unique local space fc00::/7.
func (ip IPv6Bytes) IsPrivate() bool { return ip[0]&0xFE == 0xFC }

// IsLoopback reports ::1.
func (ip IPv6Bytes) IsLoopback() bool { return ip == IPv6Bytes{15: 1} }

// IsMulticast reports ff00::/8.
func (ip IPv6Bytes) IsMulticast() bool { return ip[0] == 0xFF }

// IsLinkLocal reports fe80::/10.
func (ip IPv6Bytes) IsLinkLocal() bool { return ip[0] == 0xFE && ip[1]&0xC0 == 0x80 }

// IsUnspecified reports ::.
func (ip IPv6Bytes) IsUnspecified() bool { return ip == IPv6Bytes{} }

// IsPublic is neither private, loopback, unspecified nor multicast.
func (ip IPv6Bytes) IsPublic() bool {
	return !ip.IsPrivate() && !ip.IsLoopback() && !ip.IsUnspecified() && !ip.IsMulticast()
}

// Segments returns the eight big-endian 16-bit groups.
func (ip IPv6Bytes) Segments() [8]uint16 {
	var s [8]uint16
	for i := range s {
		s[i] = uint16(ip[2*i])<<8 | uint16(ip[2*i+1])
	}
	return s
}

func (ip IPv6Bytes) String() string { return netip.AddrFrom16(ip).String() }

// ParseIPv4 parses dotted-quad text with net/netip, the trusted parser.
func ParseIPv4(s string) (IPv4Bytes, error) {
	addr, err := netip.ParseAddr(s)
	if err != nil || !addr.Is4() {
		return IPv4Bytes{}, &domain.ParseError{Type: "IPv4Bytes", Expected: "IPv4 address", Received: s}
	}
	return addr.As4(), nil
}

// ParseIPv6 parses IPv6 text with net/netip. IPv4-mapped forms are rejected.
func ParseIPv6(s string) (IPv6Bytes, error) {
	addr, err := netip.ParseAddr(s)
	if err != nil || !addr.Is6() || addr.Is4In6() {
		return IPv6Bytes{}, &domain.ParseError{Type: "IPv6Bytes", Expected: "IPv6 address", Received: s}
	}
	return addr.As16(), nil
}

// IPClass selects which classification an address wrapper enforces.
type IPClass int

const (
	IPPrivate IPClass = iota
	IPPublic
	IPLoopback
)

func (c IPClass) String() string {
	switch c {
	case IPPublic:
		return "public"
	case IPLoopback:
		return "loopback"
	}
	return "private"
}

// IPv4Classified is an IPv4 address proven to belong to its class.
type IPv4Classified struct {
	ip    IPv4Bytes
	class IPClass
	valid bool
}

func NewIPv4Classified(ip IPv4Bytes, class IPClass) (IPv4Classified, error) {
	if !ipv4In(ip, class) {
		return IPv4Classified{}, domain.Invalid(domain.ViolationIPClass, "IPv4"+titleClass(class), class.String()+" address", ip.String())
	}
	return IPv4Classified{ip: ip, class: class, valid: true}, nil
}

func (c IPv4Classified) Get() IPv4Bytes { return c.ip }
func (c IPv4Classified) Class() IPClass { return c.class }
func (c IPv4Classified) Invariant() bool { return c.valid && ipv4In(c.ip, c.class) }
func (c IPv4Classified) String() string { return c.ip.String() }

func ipv4In(ip IPv4Bytes, class IPClass) bool {
	switch class {
	case IPPublic:
		return ip.IsPublic()
	case IPLoopback:
		return ip.IsLoopback()
	}
	return ip.IsPrivate()
}

// IPv6Classified is an IPv6 address proven to belong to its class.
type IPv6Classified struct {
	ip    IPv6Bytes
	class IPClass
	valid bool
}

func NewIPv6Classified(ip IPv6Bytes, class IPClass) (IPv6Classified, error) {
	if !ipv6In(ip, class) {
		return IPv6Classified{}, domain.Invalid(domain.ViolationIPClass, "IPv6"+titleClass(class), class.String()+" address", ip.String())
	}
	return IPv6Classified{ip: ip, class: class, valid: true}, nil
}

func (c IPv6Classified) Get() IPv6Bytes { return c.ip }
func (c IPv6Classified) Class() IPClass { return c.class }
func (c IPv6Classified) Invariant() bool { return c.valid && ipv6In(c.ip, c.class) }
func (c IPv6Classified) String() string { return c.ip.String() }

func ipv6In(ip IPv6Bytes, class IPClass) bool {
	switch class {
	case IPPublic:
		return ip.IsPublic()
	case IPLoopback:
		return ip.IsLoopback()
	}
	return ip.IsPrivate()
}

func titleClass(c IPClass) string {
	switch c {
	case IPPublic:
		return "Public"
	case IPLoopback:
		return "Loopback"
	}
	return "Private"
}

// MACBytes is a 48-bit hardware address.
type MACBytes [6]byte

// IsMulticast reports the I/G bit (bit 0 of the first octet).
func (m MACBytes) IsMulticast() bool { return m[0]&0x01 != 0 }

// IsUnicast is the complement of IsMulticast.
func (m MACBytes) IsUnicast() bool { return m[0]&0x01 == 0 }

// IsLocal reports the U/L bit (bit 1 of the first octet).
func (m MACBytes) IsLocal() bool { return m[0]&0x02 != 0 }

// IsUniversal is the complement of IsLocal.
func (m MACBytes) IsUniversal() bool { return m[0]&0x02 == 0 }

// IsBroadcast reports ff:ff:ff:ff:ff:ff.
func (m MACBytes) IsBroadcast() bool { return m == MACBytes{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF} }

func (m MACBytes) String() string { return net.HardwareAddr(m[:]).String() }

// ParseMAC parses colon or dash separated EUI-48 text with net.ParseMAC.
func ParseMAC(s string) (MACBytes, error) {
	hw, err := net.ParseMAC(s)
	if err != nil || len(hw) != 6 {
		return MACBytes{}, &domain.ParseError{Type: "MACBytes", Expected: "EUI-48 address", Received: s}
	}
	var m MACBytes
	copy(m[:], hw)
	return m, nil
}

// MACClass selects which bit pattern a MAC wrapper enforces.
type MACClass int

const (
	MACUnicast MACClass = iota
	MACMulticast
	MACUniversal
	MACLocal
)

func (c MACClass) String() string {
	switch c {
	case MACMulticast:
		return "multicast"
	case MACUniversal:
		return "universal"
	case MACLocal:
		return "local"
	}
	return "unicast"
}

// MACClassified is a MAC address proven to carry its class bits.
type MACClassified struct {
	mac   MACBytes
	class MACClass
	valid bool
}

func NewMACClassified(m MACBytes, class MACClass) (MACClassified, error) {
	if !macIn(m, class) {
		return MACClassified{}, domain.Invalid(domain.ViolationMACClass, "MAC", class.String()+" address", m.String())
	}
	return MACClassified{mac: m, class: class, valid: true}, nil
}

func (c MACClassified) Get() MACBytes { return c.mac }
func (c MACClassified) Class() MACClass { return c.class }
func (c MACClassified) Invariant() bool { return c.valid && macIn(c.mac, c.class) }
func (c MACClassified) String() string { return c.mac.String() }

func macIn(m MACBytes, class MACClass) bool {
	switch class {
	case MACMulticast:
		return m.IsMulticast()
	case MACUniversal:
		return m.IsUniversal()
	case MACLocal:
		return m.IsLocal()
	}
	return m.IsUnicast()
}

// PortClass selects the port constraint of a socket address wrapper.
type PortClass int

const (
	PortAny PortClass = iota
	PortNonZero
	PortPrivileged
	PortUnprivileged
)

func (c PortClass) String() string {
	switch c {
	case PortNonZero:
		return "non-zero"
	case PortPrivileged:
		return "privileged (1-1023)"
	case PortUnprivileged:
		return "unprivileged (1024-65535)"
	}
	return "any"
}

func portIn(p uint16, class PortClass) bool {
	switch class {
	case PortNonZero:
		return p != 0
	case PortPrivileged:
		return p != 0 && p < 1024
	case PortUnprivileged:
		return p >= 1024
	}
	return true
}

// SocketAddrBytes is an IP address (v4 or v6) with a port.
type SocketAddrBytes struct {
	addr  netip.Addr
	port  uint16
	class PortClass
	valid bool
}

// NewSocketAddrV4 checks the port class.
func NewSocketAddrV4(ip IPv4Bytes, port uint16, class PortClass) (SocketAddrBytes, error) {
	return newSocket(netip.AddrFrom4(ip), port, class)
}

// NewSocketAddrV6 checks the port class.
func NewSocketAddrV6(ip IPv6Bytes, port uint16, class PortClass) (SocketAddrBytes, error) {
	return newSocket(netip.AddrFrom16(ip), port, class)
}

// ParseSocketAddr parses "host:port" with net/netip, the trusted parser.
func ParseSocketAddr(s string, class PortClass) (SocketAddrBytes, error) {
	ap, err := netip.ParseAddrPort(s)
	if err != nil {
		return SocketAddrBytes{}, &domain.ParseError{Type: "SocketAddrBytes", Expected: "ip:port", Received: s}
	}
	return newSocket(ap.Addr(), ap.Port(), class)
}

func newSocket(addr netip.Addr, port uint16, class PortClass) (SocketAddrBytes, error) {
	if !portIn(port, class) {
		return SocketAddrBytes{}, domain.Invalid(domain.ViolationPort, "SocketAddr", class.String()+" port", strconv.Itoa(int(port)))
	}
	return SocketAddrBytes{addr: addr, port: port, class: class, valid: true}, nil
}

func (s SocketAddrBytes) Port() uint16 { return s.port }
func (s SocketAddrBytes) Is4() bool { return s.addr.Is4() }

// IPv4 returns the address bytes when the socket is IPv4.
func (s SocketAddrBytes) IPv4() (IPv4Bytes, bool) {
	if !s.addr.Is4() {
		return IPv4Bytes{}, false
	}
	return s.addr.As4(), true
}

// IPv6 returns the address bytes when the socket is IPv6.
func (s SocketAddrBytes) IPv6() (IPv6Bytes, bool) {
	if !s.addr.Is6() {
		return IPv6Bytes{}, false
	}
	return s.addr.As16(), true
}

func (s SocketAddrBytes) Invariant() bool { return s.valid && s.addr.IsValid() && portIn(s.port, s.class) }

func (s SocketAddrBytes) String() string {
	return netip.AddrPortFrom(s.addr, s.port).String()
}

// GoString keeps %#v output readable in test failures.
func (s SocketAddrBytes) GoString() string {
	return fmt.Sprintf("SocketAddrBytes(%s, %s)", s.String(), s.class)
}
