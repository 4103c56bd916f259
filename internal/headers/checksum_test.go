package headers

import (
	"encoding/binary"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIPv4ChecksumRoundTrips(t *testing.T) {
	buf := make([]byte, 20)
	buf[0] = 0x45
	buf[8] = 64
	buf[9] = IPProtoUDP
	copy(buf[12:16], net.IPv4(192, 168, 1, 1).To4())
	copy(buf[16:20], net.IPv4(192, 168, 1, 2).To4())

	ip, ok := ParseIPv4(buf)
	require.True(t, ok)

	csum := IPv4Checksum(ip)
	ip.SetChecksum(csum)
	assert.True(t, VerifyIPv4Checksum(ip))

	ip.SetTTL(ip.TTL() - 1)
	assert.False(t, VerifyIPv4Checksum(ip), "mutated header must invalidate stale checksum")
}

func TestUDPChecksumZeroBecomesAllOnes(t *testing.T) {
	ipBuf := make([]byte, 20)
	ipBuf[0] = 0x45
	ipBuf[9] = IPProtoUDP
	copy(ipBuf[12:16], net.IPv4(0, 0, 0, 0).To4())
	copy(ipBuf[16:20], net.IPv4(0, 0, 0, 0).To4())
	ip, _ := ParseIPv4(ipBuf)

	udp := make([]byte, 8)
	binary.BigEndian.PutUint16(udp[4:6], 8)
	// Pseudo-header (protocol 17 + length 8) plus the UDP length field (8)
	// plus this source port sum to 0xFFFF, whose ones' complement is 0.
	binary.BigEndian.PutUint16(udp[0:2], 0xFFDE)

	csum := UDPChecksum(ip, udp)
	assert.Equal(t, uint16(0xFFFF), csum)
}

func TestTCPChecksumDiffersOnPayloadChange(t *testing.T) {
	ipBuf := make([]byte, 20)
	ipBuf[0] = 0x45
	ipBuf[9] = IPProtoTCP
	copy(ipBuf[12:16], net.IPv4(10, 0, 0, 1).To4())
	copy(ipBuf[16:20], net.IPv4(10, 0, 0, 2).To4())
	ip, _ := ParseIPv4(ipBuf)

	seg1 := make([]byte, 24)
	seg1[12] = 5 << 4
	seg2 := append([]byte(nil), seg1...)
	seg2[23] = 0xFF

	c1 := TCPChecksum(ip, seg1)
	c2 := TCPChecksum(ip, seg2)
	assert.NotEqual(t, c1, c2)
}
