// Package mbuf implements the zero-copy network buffer primitive: a
// fixed-capacity byte region owned by a pool, with headroom/tailroom
// accounting, a reference count, offload flags, and a trailing area of
// framework metadata slots. Every other layer of the runtime (headers, PDU,
// ports, operators) is a view over a *Buffer.
package mbuf

import (
	"sync/atomic"

	"github.com/ochrecore/flowcore/internal/constants"
	"github.com/ochrecore/flowcore/internal/rerr"
)

// OffloadFlags is a bitmask of NIC TX/RX offload hints carried on a Buffer.
type OffloadFlags uint32

const (
	OffloadIPv4Cksum OffloadFlags = 1 << iota
	OffloadTCPCksum
	OffloadUDPCksum
	OffloadTSO
)

// Buffer is a mempool-owned network buffer: data region with
// headroom/tailroom accounting, a refcount, a port id, offload flags, TX
// segmentation lengths, and metadata slots.
//
// Invariant: dataOff+dataLen <= bufLen at all times; refcnt >= 1 while any
// view holds a non-nil pointer to the Buffer.
type Buffer struct {
	data []byte // full backing storage, length == bufLen

	dataOff int
	dataLen int

	refcnt atomic.Int32

	portID uint16
	flags  OffloadFlags
	l2Len  uint16
	l3Len  uint16
	l4Len  uint16

	metadata [constants.MetadataSlots]uint64

	pool  *Pool
	shard int // which pool shard to return to on free
}

// reset restores a buffer to its just-allocated state: full headroom
// cleared, refcnt 1, no offload flags, zeroed metadata. Called by the pool
// both at construction and whenever a buffer is recycled.
func (b *Buffer) reset() {
	b.dataOff = 0
	b.dataLen = 0
	b.refcnt.Store(1)
	b.portID = 0
	b.flags = 0
	b.l2Len, b.l3Len, b.l4Len = 0, 0, 0
	for i := range b.metadata {
		b.metadata[i] = 0
	}
}

// BufLen returns the total backing capacity.
func (b *Buffer) BufLen() int { return len(b.data) }

// DataOff returns the current offset of the data region's start.
func (b *Buffer) DataOff() int { return b.dataOff }

// DataLen returns the current length of the data region.
func (b *Buffer) DataLen() int { return b.dataLen }

// Headroom returns the bytes available before the data region.
func (b *Buffer) Headroom() int { return b.dataOff }

// Tailroom returns the bytes available after the data region.
func (b *Buffer) Tailroom() int { return len(b.data) - b.dataOff - b.dataLen }

// PortID returns the ingress/assigned port id.
func (b *Buffer) PortID() uint16 { return b.portID }

// SetPortID sets the ingress/assigned port id.
func (b *Buffer) SetPortID(id uint16) { b.portID = id }

// RefCount returns the current reference count. Exposed for tests and
// invariant checks (P3); not meant for production control flow.
func (b *Buffer) RefCount() int32 { return b.refcnt.Load() }

// Reference increments the buffer's reference count; used when a second
// view (e.g. Clone) wants to share ownership.
func (b *Buffer) Reference() { b.refcnt.Add(1) }

// Dereference decrements the reference count and, if it reaches zero,
// returns the buffer to its owning pool. Returns true if this call freed
// the buffer.
func (b *Buffer) Dereference() bool {
	if b.refcnt.Add(-1) > 0 {
		return false
	}
	if b.pool != nil {
		b.pool.put(b)
	}
	return true
}

// Bytes returns the current data region as a slice. The slice aliases the
// buffer's backing storage and is invalidated by any operation that grows,
// shrinks, or shifts the data region (see DESIGN.md's note on header
// reference invalidation).
func (b *Buffer) Bytes() []byte {
	return b.data[b.dataOff : b.dataOff+b.dataLen]
}

// Raw returns the full backing array, for operations that need to read or
// write outside the current data region (e.g. push_header's tail growth).
func (b *Buffer) Raw() []byte { return b.data }

// GrowTail extends the data region by delta bytes if tailroom allows,
// returning false otherwise.
func (b *Buffer) GrowTail(delta int) bool {
	if delta < 0 {
		return b.TrimTail(-delta)
	}
	if delta > b.Tailroom() {
		return false
	}
	b.dataLen += delta
	return true
}

// TrimTail shrinks the data region by delta bytes, clamped to zero.
func (b *Buffer) TrimTail(delta int) bool {
	if delta < 0 {
		return false
	}
	if delta > b.dataLen {
		delta = b.dataLen
	}
	b.dataLen -= delta
	return true
}

// GrowHead extends the data region at the front by delta bytes, consuming
// headroom, if available.
func (b *Buffer) GrowHead(delta int) bool {
	if delta < 0 || delta > b.Headroom() {
		return false
	}
	b.dataOff -= delta
	b.dataLen += delta
	return true
}

// WriteAt writes src into the data region starting at byte offset off,
// growing the tail first if src would not otherwise fit. Returns the
// number of bytes actually written and a BadOffset error if off itself is
// out of bounds of the buffer's total capacity.
func (b *Buffer) WriteAt(off int, src []byte) (int, error) {
	if off < 0 || off > b.BufLen() {
		return 0, rerr.New("mbuf.WriteAt", rerr.CodeBadOffset, "offset exceeds buffer capacity")
	}
	need := off + len(src) - (b.dataOff + b.dataLen)
	if need > 0 {
		if need > b.Tailroom() {
			avail := b.Tailroom()
			if avail < 0 {
				avail = 0
			}
			b.GrowTail(avail)
			src = src[:max0(len(src)-(need-avail))]
		} else {
			b.GrowTail(need)
		}
	}
	n := copy(b.data[off:b.dataOff+b.dataLen], src)
	return n, nil
}

// FillTail fills the last min(length, DataLen) bytes of the data region
// with value, used by write_from_tail_down scrubbing.
func (b *Buffer) FillTail(length int, value byte) {
	if length > b.dataLen {
		length = b.dataLen
	}
	start := b.dataOff + b.dataLen - length
	end := b.dataOff + b.dataLen
	for i := start; i < end; i++ {
		b.data[i] = value
	}
}

// Metadata reads one of the 16 framework metadata slots.
func (b *Buffer) Metadata(slot int) (uint64, error) {
	if slot < 0 || slot >= constants.MetadataSlots {
		return 0, rerr.New("mbuf.Metadata", rerr.CodeMetadataTooLarge, "metadata slot out of range")
	}
	return b.metadata[slot], nil
}

// SetMetadata writes one of the 16 framework metadata slots.
func (b *Buffer) SetMetadata(slot int, v uint64) error {
	if slot < 0 || slot >= constants.MetadataSlots {
		return rerr.New("mbuf.SetMetadata", rerr.CodeMetadataTooLarge, "metadata slot out of range")
	}
	b.metadata[slot] = v
	return nil
}

// SetOffload sets or clears one or more offload flags.
func (b *Buffer) SetOffload(flags OffloadFlags, on bool) {
	if on {
		b.flags |= flags
	} else {
		b.flags &^= flags
	}
}

// Offload returns the current offload flag set.
func (b *Buffer) Offload() OffloadFlags { return b.flags }

// SetTxLens sets the L2/L3/L4 segmentation lengths used for TX offload.
func (b *Buffer) SetTxLens(l2, l3, l4 uint16) {
	b.l2Len, b.l3Len, b.l4Len = l2, l3, l4
}

// TxLens returns the L2/L3/L4 segmentation lengths.
func (b *Buffer) TxLens() (l2, l3, l4 uint16) { return b.l2Len, b.l3Len, b.l4Len }

// ValidateTxOffload reports whether the currently configured offload flags
// and segmentation lengths are a combination the driver would accept: a
// non-zero L3/L4 checksum offload flag requires a non-zero corresponding
// length. Returns 0 when valid, matching the spec's "0 on acceptance"
// contract.
func (b *Buffer) ValidateTxOffload() int {
	if b.flags&OffloadIPv4Cksum != 0 && b.l3Len == 0 {
		return 1
	}
	if b.flags&OffloadTCPCksum != 0 && b.l4Len == 0 {
		return 1
	}
	if b.flags&OffloadUDPCksum != 0 && b.l4Len == 0 {
		return 1
	}
	return 0
}

func max0(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
