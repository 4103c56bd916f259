package mbuf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBuffer(t *testing.T, room int) *Buffer {
	p := NewPool(1, room)
	b, err := p.Allocate()
	require.NoError(t, err)
	return b
}

func TestGrowAndTrimTail(t *testing.T) {
	b := newTestBuffer(t, 128)
	ok := b.GrowTail(64)
	require.True(t, ok)
	assert.Equal(t, 64, b.DataLen())
	assert.Equal(t, 64, b.Tailroom())

	ok = b.GrowTail(128)
	assert.False(t, ok, "grow past capacity must fail")

	ok = b.TrimTail(10)
	require.True(t, ok)
	assert.Equal(t, 54, b.DataLen())
}

func TestGrowHeadConsumesHeadroom(t *testing.T) {
	b := newTestBuffer(t, 64)
	assert.False(t, b.GrowHead(1), "fresh buffer has no headroom")
}

func TestWriteAtGrowsTailWhenNeeded(t *testing.T) {
	b := newTestBuffer(t, 16)
	n, err := b.WriteAt(0, []byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, 5, b.DataLen())
	assert.Equal(t, []byte("hello"), b.Bytes())
}

func TestWriteAtBadOffset(t *testing.T) {
	b := newTestBuffer(t, 16)
	_, err := b.WriteAt(100, []byte("x"))
	require.Error(t, err)
}

func TestFillTail(t *testing.T) {
	b := newTestBuffer(t, 16)
	b.GrowTail(8)
	b.FillTail(4, 0xAA)
	data := b.Bytes()
	for i := 4; i < 8; i++ {
		assert.EqualValues(t, 0xAA, data[i])
	}
	for i := 0; i < 4; i++ {
		assert.EqualValues(t, 0, data[i])
	}
}

func TestMetadataSlotBounds(t *testing.T) {
	b := newTestBuffer(t, 16)
	require.NoError(t, b.SetMetadata(0, 42))
	v, err := b.Metadata(0)
	require.NoError(t, err)
	assert.EqualValues(t, 42, v)

	require.Error(t, b.SetMetadata(16, 1))
	_, err = b.Metadata(-1)
	require.Error(t, err)
}

func TestValidateTxOffload(t *testing.T) {
	b := newTestBuffer(t, 16)
	assert.Equal(t, 0, b.ValidateTxOffload())

	b.SetOffload(OffloadIPv4Cksum, true)
	assert.Equal(t, 1, b.ValidateTxOffload(), "checksum offload without l3 len must be rejected")

	b.SetTxLens(14, 20, 0)
	assert.Equal(t, 0, b.ValidateTxOffload())
}
