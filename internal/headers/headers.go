// Package headers implements packed, fixed-layout header views overlaid on
// packet bytes at known offsets: Mac (with 802.1Q/802.1ad VLAN detection),
// IPv4, TCP, UDP, and ARP-over-IPv4. Each view reads and writes through
// explicit big-endian accessors rather than an unsafe struct overlay — wire
// headers aren't guaranteed word-aligned at arbitrary slice offsets, and
// encoding/binary is the idiomatic way to parse network framing in Go.
//
// A view never outlives the buffer bytes it indexes: any operation that
// shifts or regrows the owning buffer's data region invalidates every
// existing view, and callers must reparse (see DESIGN.md).
package headers

import (
	"encoding/binary"
	"fmt"
	"net"
)

// Kind identifies which header type a view decodes.
type Kind int

const (
	KindMac Kind = iota
	KindIPv4
	KindTCP
	KindUDP
	KindArp
)

func (k Kind) String() string {
	switch k {
	case KindMac:
		return "mac"
	case KindIPv4:
		return "ipv4"
	case KindTCP:
		return "tcp"
	case KindUDP:
		return "udp"
	case KindArp:
		return "arp"
	default:
		return "unknown"
	}
}

// EtherType values recognised while walking the Mac header.
const (
	EtherTypeIPv4    uint16 = 0x0800
	EtherTypeIPv4Alt uint16 = 0x08FE // alternate IPv4 ethertype some drivers emit
	EtherTypeIPv4Alt2 uint16 = 0x08FF
	EtherTypeARP     uint16 = 0x0806
	EtherTypeVLAN    uint16 = 0x8100 // 802.1Q
	EtherTypeQinQ    uint16 = 0x88A8 // 802.1ad
	EtherTypeIPv6    uint16 = 0x86DD // recognised, never decomposed (non-goal)
)

// IPProtocol values recognised while walking the IPv4 header.
const (
	IPProtoTCP = 6
	IPProtoUDP = 17
)

// Header is the common contract every header view satisfies.
type Header interface {
	Kind() Kind
	// Offset returns the header's byte length on the wire: fixed for UDP
	// and ARP, variable for Mac (VLAN tags), IPv4 (IHL), and TCP (data
	// offset).
	Offset() int
	Bytes() []byte
}

// ---- Mac ----

// Mac is a view over an Ethernet header, including any 802.1Q/802.1ad tags.
type Mac struct {
	b        []byte
	tagBytes int // 0, 4 (single VLAN tag), or 8 (QinQ)
}

// ParseMac parses an Ethernet header (with VLAN/QinQ detection) from the
// front of buf. Returns nil, false if buf is too short even for the
// untagged 14-byte header.
func ParseMac(buf []byte) (*Mac, bool) {
	if len(buf) < 14 {
		return nil, false
	}
	m := &Mac{b: buf}
	et := binary.BigEndian.Uint16(buf[12:14])
	switch et {
	case EtherTypeQinQ:
		if len(buf) >= 22 {
			m.tagBytes = 8
		}
	case EtherTypeVLAN:
		if len(buf) >= 18 {
			m.tagBytes = 4
		}
	}
	return m, true
}

func (m *Mac) Kind() Kind   { return KindMac }
func (m *Mac) Offset() int  { return 14 + m.tagBytes }
func (m *Mac) Bytes() []byte { return m.b[:m.Offset()] }

func (m *Mac) DstMAC() net.HardwareAddr { return net.HardwareAddr(m.b[0:6]) }
func (m *Mac) SrcMAC() net.HardwareAddr { return net.HardwareAddr(m.b[6:12]) }

func (m *Mac) SetDstMAC(addr net.HardwareAddr) { copy(m.b[0:6], addr) }
func (m *Mac) SetSrcMAC(addr net.HardwareAddr) { copy(m.b[6:12], addr) }

// SwapAddrs exchanges source and destination MAC addresses in place (the
// mac-swap scenario).
func (m *Mac) SwapAddrs() {
	var tmp [6]byte
	copy(tmp[:], m.b[0:6])
	copy(m.b[0:6], m.b[6:12])
	copy(m.b[6:12], tmp[:])
}

// HasVLANTag reports whether a single 802.1Q tag was detected.
func (m *Mac) HasVLANTag() bool { return m.tagBytes == 4 }

// HasQinQTag reports whether an 802.1ad (QinQ) double tag was detected.
func (m *Mac) HasQinQTag() bool { return m.tagBytes == 8 }

// EtherType returns the ethertype that follows any VLAN tags — i.e. the
// type of the payload header.
func (m *Mac) EtherType() uint16 {
	return binary.BigEndian.Uint16(m.b[12+m.tagBytes : 14+m.tagBytes])
}

func (m *Mac) SetEtherType(et uint16) {
	binary.BigEndian.PutUint16(m.b[12+m.tagBytes:14+m.tagBytes], et)
}

// ---- IPv4 ----

// IPv4 is a view over an IPv4 header (including options).
type IPv4 struct{ b []byte }

// ParseIPv4 parses an IPv4 header from the front of buf, trusting the IHL
// field for length. Returns nil, false if buf is shorter than the declared
// header length or than the fixed 20-byte minimum.
func ParseIPv4(buf []byte) (*IPv4, bool) {
	if len(buf) < 20 {
		return nil, false
	}
	ihl := int(buf[0]&0x0F) * 4
	if ihl < 20 || len(buf) < ihl {
		return nil, false
	}
	return &IPv4{b: buf[:ihl]}, true
}

func (h *IPv4) Kind() Kind    { return KindIPv4 }
func (h *IPv4) Offset() int   { return len(h.b) }
func (h *IPv4) Bytes() []byte { return h.b }

func (h *IPv4) Version() uint8 { return h.b[0] >> 4 }
func (h *IPv4) IHL() uint8     { return h.b[0] & 0x0F }
func (h *IPv4) DSCP() uint8    { return h.b[1] >> 2 }
func (h *IPv4) TotalLength() uint16 { return binary.BigEndian.Uint16(h.b[2:4]) }
func (h *IPv4) SetTotalLength(v uint16) { binary.BigEndian.PutUint16(h.b[2:4], v) }
func (h *IPv4) Identification() uint16  { return binary.BigEndian.Uint16(h.b[4:6]) }
func (h *IPv4) TTL() uint8              { return h.b[8] }
func (h *IPv4) SetTTL(v uint8)          { h.b[8] = v }
func (h *IPv4) Protocol() uint8         { return h.b[9] }
func (h *IPv4) SetProtocol(v uint8)     { h.b[9] = v }
func (h *IPv4) Checksum() uint16        { return binary.BigEndian.Uint16(h.b[10:12]) }
func (h *IPv4) SetChecksum(v uint16)    { binary.BigEndian.PutUint16(h.b[10:12], v) }
func (h *IPv4) SrcIP() net.IP           { return net.IP(h.b[12:16]) }
func (h *IPv4) DstIP() net.IP           { return net.IP(h.b[16:20]) }
func (h *IPv4) SetSrcIP(ip net.IP)      { copy(h.b[12:16], ip.To4()) }
func (h *IPv4) SetDstIP(ip net.IP)      { copy(h.b[16:20], ip.To4()) }

// ---- TCP ----

// TCP is a view over a TCP header (including options).
type TCP struct{ b []byte }

// ParseTCP parses a TCP header from the front of buf, trusting the data
// offset field for length.
func ParseTCP(buf []byte) (*TCP, bool) {
	if len(buf) < 20 {
		return nil, false
	}
	doff := int(buf[12]>>4) * 4
	if doff < 20 || len(buf) < doff {
		return nil, false
	}
	return &TCP{b: buf[:doff]}, true
}

func (h *TCP) Kind() Kind    { return KindTCP }
func (h *TCP) Offset() int   { return len(h.b) }
func (h *TCP) Bytes() []byte { return h.b }

func (h *TCP) SrcPort() uint16     { return binary.BigEndian.Uint16(h.b[0:2]) }
func (h *TCP) DstPort() uint16     { return binary.BigEndian.Uint16(h.b[2:4]) }
func (h *TCP) SetSrcPort(p uint16) { binary.BigEndian.PutUint16(h.b[0:2], p) }
func (h *TCP) SetDstPort(p uint16) { binary.BigEndian.PutUint16(h.b[2:4], p) }
func (h *TCP) SeqNum() uint32      { return binary.BigEndian.Uint32(h.b[4:8]) }
func (h *TCP) AckNum() uint32      { return binary.BigEndian.Uint32(h.b[8:12]) }
func (h *TCP) Flags() uint8        { return h.b[13] }
func (h *TCP) Checksum() uint16    { return binary.BigEndian.Uint16(h.b[16:18]) }
func (h *TCP) SetChecksum(v uint16) { binary.BigEndian.PutUint16(h.b[16:18], v) }

// ---- UDP ----

// UDP is a view over a fixed 8-byte UDP header.
type UDP struct{ b []byte }

func ParseUDP(buf []byte) (*UDP, bool) {
	if len(buf) < 8 {
		return nil, false
	}
	return &UDP{b: buf[:8]}, true
}

func (h *UDP) Kind() Kind    { return KindUDP }
func (h *UDP) Offset() int   { return 8 }
func (h *UDP) Bytes() []byte { return h.b }

func (h *UDP) SrcPort() uint16      { return binary.BigEndian.Uint16(h.b[0:2]) }
func (h *UDP) DstPort() uint16      { return binary.BigEndian.Uint16(h.b[2:4]) }
func (h *UDP) Length() uint16       { return binary.BigEndian.Uint16(h.b[4:6]) }
func (h *UDP) Checksum() uint16     { return binary.BigEndian.Uint16(h.b[6:8]) }
func (h *UDP) SetChecksum(v uint16) { binary.BigEndian.PutUint16(h.b[6:8], v) }

// ---- ARP (over IPv4/Ethernet) ----

// Arp is a view over a fixed 28-byte ARP packet for the Ethernet/IPv4
// combination (HTYPE=1, PTYPE=0x0800, HLEN=6, PLEN=4).
type Arp struct{ b []byte }

func ParseArp(buf []byte) (*Arp, bool) {
	if len(buf) < 28 {
		return nil, false
	}
	return &Arp{b: buf[:28]}, true
}

func (h *Arp) Kind() Kind    { return KindArp }
func (h *Arp) Offset() int   { return 28 }
func (h *Arp) Bytes() []byte { return h.b }

func (h *Arp) HWType() uint16     { return binary.BigEndian.Uint16(h.b[0:2]) }
func (h *Arp) ProtoType() uint16  { return binary.BigEndian.Uint16(h.b[2:4]) }
func (h *Arp) Opcode() uint16     { return binary.BigEndian.Uint16(h.b[6:8]) }
func (h *Arp) SenderHW() net.HardwareAddr  { return net.HardwareAddr(h.b[8:14]) }
func (h *Arp) SenderProto() net.IP         { return net.IP(h.b[14:18]) }
func (h *Arp) TargetHW() net.HardwareAddr  { return net.HardwareAddr(h.b[18:24]) }
func (h *Arp) TargetProto() net.IP         { return net.IP(h.b[24:28]) }

// GoString renders a Kind for diagnostics.
func (k Kind) GoString() string { return fmt.Sprintf("headers.Kind(%s)", k.String()) }
