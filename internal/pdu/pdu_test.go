package pdu

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ochrecore/flowcore/internal/headers"
	"github.com/ochrecore/flowcore/internal/mbuf"
)

func buildEthIPv4TCPFrame(payload []byte) []byte {
	buf := make([]byte, 14+20+20+len(payload))
	copy(buf[0:6], []byte{0xAA, 0xAA, 0xAA, 0xAA, 0xAA, 0xAA})
	copy(buf[6:12], []byte{0xBB, 0xBB, 0xBB, 0xBB, 0xBB, 0xBB})
	buf[12], buf[13] = 0x08, 0x00

	ip := buf[14:34]
	ip[0] = 0x45
	ip[8] = 64
	ip[9] = headers.IPProtoTCP
	copy(ip[12:16], net.IPv4(10, 0, 0, 1).To4())
	copy(ip[16:20], net.IPv4(10, 0, 0, 2).To4())

	tcp := buf[34:54]
	tcp[12] = 5 << 4

	copy(buf[54:], payload)
	return buf
}

func newParsedPDU(t *testing.T, payload []byte) (*PDU, *mbuf.Pool) {
	pool := mbuf.NewPool(4, 256)
	b, err := pool.Allocate()
	require.NoError(t, err)
	frame := buildEthIPv4TCPFrame(payload)
	require.True(t, b.GrowTail(len(frame)))
	copy(b.Bytes(), frame)
	return Parse(b), pool
}

func TestParsePopulatesStack(t *testing.T) {
	p, _ := newParsedPDU(t, []byte("hello"))
	require.Equal(t, 3, p.NumHeaders())

	mac, ok := p.HeaderAt(0)
	require.True(t, ok)
	assert.Equal(t, headers.KindMac, mac.Kind)

	ip, ok := p.HeaderAt(1)
	require.True(t, ok)
	assert.Equal(t, headers.KindIPv4, ip.Kind)

	tcp, ok := p.HeaderAt(2)
	require.True(t, ok)
	assert.Equal(t, headers.KindTCP, tcp.Kind)
}

func TestParseTruncatedYieldsShorterStack(t *testing.T) {
	pool := mbuf.NewPool(1, 64)
	b, err := pool.Allocate()
	require.NoError(t, err)
	b.GrowTail(14) // mac only, no ethertype-addressed payload
	p := Parse(b)
	assert.LessOrEqual(t, p.NumHeaders(), 1)
}

func TestGetPayload(t *testing.T) {
	p, _ := newParsedPDU(t, []byte("hello"))
	payload := p.GetPayload(2)
	assert.Equal(t, []byte("hello"), payload)
	assert.Equal(t, 5, p.PayloadSize(2))
}

func TestCopyPayloadFromSliceGrowsBuffer(t *testing.T) {
	p, _ := newParsedPDU(t, nil)
	n := p.CopyPayloadFromSlice([]byte("world"), 2)
	assert.Equal(t, 5, n)
	assert.Equal(t, []byte("world"), p.GetPayload(2))
}

func TestPushHeaderShiftsPayloadRight(t *testing.T) {
	pool := mbuf.NewPool(1, 256)
	b, err := pool.Allocate()
	require.NoError(t, err)
	require.True(t, b.GrowTail(10))
	copy(b.Bytes(), []byte("0123456789"))
	p := Parse(b) // no recognisable L2 header in this payload, depth 0

	raw := make([]byte, 14)
	raw[12], raw[13] = 0x08, 0x00
	ok := p.PushHeader(headers.KindMac, raw)
	require.True(t, ok)
	require.Equal(t, 1, p.NumHeaders())

	data := p.Buffer().Bytes()
	assert.Equal(t, raw, data[0:14])
	assert.Equal(t, []byte("0123456789"), data[14:24])
}

func TestPushHeaderFailsWithoutTailroom(t *testing.T) {
	pool := mbuf.NewPool(1, 4)
	b, err := pool.Allocate()
	require.NoError(t, err)
	p := Parse(b)
	ok := p.PushHeader(headers.KindMac, make([]byte, 14))
	assert.False(t, ok)
}

func TestReplaceHeaderRequiresMatchingKindAndLength(t *testing.T) {
	p, _ := newParsedPDU(t, []byte("x"))
	err := p.ReplaceHeader(0, headers.KindIPv4, make([]byte, 14))
	assert.Error(t, err)

	err = p.ReplaceHeader(0, headers.KindMac, make([]byte, 10))
	assert.Error(t, err)

	err = p.ReplaceHeader(0, headers.KindMac, make([]byte, 14))
	assert.NoError(t, err)
}

func TestCloneSharesBufferAndIncrementsRefcount(t *testing.T) {
	p, _ := newParsedPDU(t, []byte("x"))
	before := p.Buffer().RefCount()
	clone := p.Clone()
	assert.Equal(t, before+1, clone.Buffer().RefCount())
	assert.Equal(t, p.Buffer(), clone.Buffer())
}

func TestCopyProducesIndependentBuffer(t *testing.T) {
	p, pool := newParsedPDU(t, []byte("hello"))
	cp, err := p.Copy(pool)
	require.NoError(t, err)
	assert.NotEqual(t, p.Buffer(), cp.Buffer())
	assert.Equal(t, p.Buffer().Bytes(), cp.Buffer().Bytes())
}

func TestReleaseMbufNullsPointer(t *testing.T) {
	p, _ := newParsedPDU(t, []byte("x"))
	b := p.ReleaseMbuf()
	assert.NotNil(t, b)
	assert.Nil(t, p.Buffer())
}

func TestWriteFromTailDown(t *testing.T) {
	p, _ := newParsedPDU(t, []byte("abcdef"))
	p.WriteFromTailDown(3, 0)
	tail := p.Buffer().Bytes()
	n := len(tail)
	assert.Equal(t, []byte{0, 0, 0}, tail[n-3:])
}
