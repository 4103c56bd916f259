package flow

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ochrecore/flowcore/internal/headers"
)

func TestSwapReversesDirection(t *testing.T) {
	t1 := FiveTupleV4{
		SrcIP: [4]byte{10, 0, 0, 1}, DstIP: [4]byte{10, 0, 0, 2},
		SrcPort: 1234, DstPort: 80, Protocol: headers.IPProtoTCP,
	}
	t2 := t1.Swap()
	assert.Equal(t, t1.SrcIP, t2.DstIP)
	assert.Equal(t, t1.DstIP, t2.SrcIP)
	assert.Equal(t, t1.SrcPort, t2.DstPort)
	assert.Equal(t, t1.DstPort, t2.SrcPort)
	assert.Equal(t, t1.Protocol, t2.Protocol)
}

func TestStampRoundTrips(t *testing.T) {
	orig := FiveTupleV4{
		SrcIP: [4]byte{192, 168, 1, 1}, DstIP: [4]byte{192, 168, 1, 2},
		SrcPort: 4321, DstPort: 443, Protocol: headers.IPProtoTCP,
	}
	var buf [StampedSize]byte
	orig.Stamp(buf[:])

	assert.Equal(t, orig.SrcIP[:], buf[0:4])
	assert.Equal(t, orig.DstIP[:], buf[4:8])
	assert.Equal(t, orig, ExtractFiveTupleV4FromStamp(buf[:]))
}

func TestHashFiveTupleIsStableAndDirectional(t *testing.T) {
	a := FiveTupleV4{SrcIP: [4]byte{1, 1, 1, 1}, DstIP: [4]byte{2, 2, 2, 2}, SrcPort: 1, DstPort: 2, Protocol: 6}
	b := a
	assert.Equal(t, HashFiveTuple(a), HashFiveTuple(b))
	assert.NotEqual(t, HashFiveTuple(a), HashFiveTuple(a.Swap()))
}
