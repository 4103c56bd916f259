package headers

import "encoding/binary"

// Checksum helpers implement the internet checksum (RFC 1071) used by IPv4,
// TCP, and UDP, including the pseudo-header construction TCP/UDP require.
// Ported from the arithmetic in NetBricks' framework/src/utils/check.rs,
// expressed with encoding/binary rather than raw pointer casts.

func ones16(sum uint32) uint16 {
	for sum>>16 != 0 {
		sum = (sum & 0xFFFF) + (sum >> 16)
	}
	return ^uint16(sum)
}

func sumBytes(b []byte) uint32 {
	var sum uint32
	n := len(b)
	i := 0
	for ; i+1 < n; i += 2 {
		sum += uint32(binary.BigEndian.Uint16(b[i : i+2]))
	}
	if i < n {
		sum += uint32(b[i]) << 8
	}
	return sum
}

// IPv4Checksum computes the header checksum over an IPv4 header with the
// checksum field itself treated as zero.
func IPv4Checksum(h *IPv4) uint16 {
	b := make([]byte, len(h.b))
	copy(b, h.b)
	b[10], b[11] = 0, 0
	return ones16(sumBytes(b))
}

// VerifyIPv4Checksum reports whether the header's stored checksum matches
// its computed value.
func VerifyIPv4Checksum(h *IPv4) bool {
	return IPv4Checksum(h) == h.Checksum()
}

func pseudoHeaderSum(src, dst []byte, protocol uint8, length int) uint32 {
	var sum uint32
	sum += uint32(binary.BigEndian.Uint16(src[0:2]))
	sum += uint32(binary.BigEndian.Uint16(src[2:4]))
	sum += uint32(binary.BigEndian.Uint16(dst[0:2]))
	sum += uint32(binary.BigEndian.Uint16(dst[2:4]))
	sum += uint32(protocol)
	sum += uint32(length)
	return sum
}

// TCPChecksum computes the TCP checksum over the pseudo-header (from the
// enclosing IPv4 header) plus the TCP header and payload, with the
// checksum field treated as zero.
func TCPChecksum(ip *IPv4, tcpAndPayload []byte) uint16 {
	b := make([]byte, len(tcpAndPayload))
	copy(b, tcpAndPayload)
	b[16], b[17] = 0, 0
	sum := pseudoHeaderSum(ip.b[12:16], ip.b[16:20], IPProtoTCP, len(tcpAndPayload))
	sum += sumBytes(b)
	return ones16(sum)
}

// UDPChecksum computes the UDP checksum over the pseudo-header (from the
// enclosing IPv4 header) plus the UDP header and payload, with the
// checksum field treated as zero. A computed value of 0 is transmitted as
// 0xFFFF per RFC 768.
func UDPChecksum(ip *IPv4, udpAndPayload []byte) uint16 {
	b := make([]byte, len(udpAndPayload))
	copy(b, udpAndPayload)
	b[6], b[7] = 0, 0
	sum := pseudoHeaderSum(ip.b[12:16], ip.b[16:20], IPProtoUDP, len(udpAndPayload))
	sum += sumBytes(b)
	result := ones16(sum)
	if result == 0 {
		return 0xFFFF
	}
	return result
}
