// Package flow implements the five-tuple flow key used by classifier
// closures (GroupBy, NAT/ACL-style sample pipelines) to bucket packets.
package flow

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"

	"github.com/ochrecore/flowcore/internal/headers"
)

// FiveTupleV4 identifies an IPv4 flow by source/destination address, port,
// and transport protocol.
type FiveTupleV4 struct {
	SrcIP    [4]byte
	DstIP    [4]byte
	SrcPort  uint16
	DstPort  uint16
	Protocol uint8
}

// ExtractFiveTupleV4 builds a FiveTupleV4 from an IPv4 header and, if the
// transport is TCP or UDP, its following header's ports. Non-TCP/UDP
// protocols yield a tuple with zeroed ports.
func ExtractFiveTupleV4(ip *headers.IPv4, l4 []byte) FiveTupleV4 {
	var t FiveTupleV4
	copy(t.SrcIP[:], ip.SrcIP().To4())
	copy(t.DstIP[:], ip.DstIP().To4())
	t.Protocol = ip.Protocol()

	switch t.Protocol {
	case headers.IPProtoTCP, headers.IPProtoUDP:
		if len(l4) >= 4 {
			t.SrcPort = binary.BigEndian.Uint16(l4[0:2])
			t.DstPort = binary.BigEndian.Uint16(l4[2:4])
		}
	}
	return t
}

// Swap returns the reverse-direction tuple (src/dst addresses and ports
// exchanged, protocol unchanged) — the key a response packet would carry.
func (t FiveTupleV4) Swap() FiveTupleV4 {
	return FiveTupleV4{
		SrcIP:    t.DstIP,
		DstIP:    t.SrcIP,
		SrcPort:  t.DstPort,
		DstPort:  t.SrcPort,
		Protocol: t.Protocol,
	}
}

// Stamp writes the tuple into dst in big-endian wire order: src ip, dst
// ip, src port, dst port, protocol (13 bytes). Panics if dst is shorter
// than 13 bytes, consistent with other fixed-size buffer writers in this
// package.
func (t FiveTupleV4) Stamp(dst []byte) {
	copy(dst[0:4], t.SrcIP[:])
	copy(dst[4:8], t.DstIP[:])
	binary.BigEndian.PutUint16(dst[8:10], t.SrcPort)
	binary.BigEndian.PutUint16(dst[10:12], t.DstPort)
	dst[12] = t.Protocol
}

// StampedSize is the number of bytes Stamp writes.
const StampedSize = 13

// ExtractFiveTupleV4FromStamp is Stamp's inverse: it rebuilds a
// FiveTupleV4 from a buffer Stamp previously wrote. Panics if buf is
// shorter than StampedSize, mirroring Stamp's own bounds contract.
func ExtractFiveTupleV4FromStamp(buf []byte) FiveTupleV4 {
	var t FiveTupleV4
	copy(t.SrcIP[:], buf[0:4])
	copy(t.DstIP[:], buf[4:8])
	t.SrcPort = binary.BigEndian.Uint16(buf[8:10])
	t.DstPort = binary.BigEndian.Uint16(buf[10:12])
	t.Protocol = buf[12]
	return t
}

// HashFiveTuple hashes the tuple's stamped wire form with xxhash, for use
// as a GroupBy classifier key or flow-table index.
func HashFiveTuple(t FiveTupleV4) uint64 {
	var buf [StampedSize]byte
	t.Stamp(buf[:])
	return xxhash.Sum64(buf[:])
}
