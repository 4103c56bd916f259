// Package pdu implements the parsed-packet view: an MBuf plus an ordered
// stack of typed header references built by walking the wire bytes L2
// through L4. It is the primary type every operator in internal/batch
// passes around.
package pdu

import (
	"github.com/ochrecore/flowcore/internal/constants"
	"github.com/ochrecore/flowcore/internal/headers"
	"github.com/ochrecore/flowcore/internal/mbuf"
	"github.com/ochrecore/flowcore/internal/rerr"
)

// HeaderRef records one entry in a PDU's header stack: which kind was
// found, and where its bytes start and end within the buffer's data
// region.
type HeaderRef struct {
	Kind  headers.Kind
	Start int
	End   int
}

func (r HeaderRef) Len() int { return r.End - r.Start }

// PDU is a parsed packet: an MBuf plus a bounded stack of header
// references. A PDU holds exclusive ownership of its MBuf; ReleaseMbuf
// transfers that ownership out, nulling the PDU's own pointer.
type PDU struct {
	buf   *mbuf.Buffer
	stack [constants.MaxHeaderStackDepth]HeaderRef
	depth int
}

// Allocate obtains a fresh MBuf from pool and wraps it in an empty PDU
// (no headers parsed — the caller is building a packet from scratch, not
// receiving one).
func Allocate(pool *mbuf.Pool) (*PDU, error) {
	b, err := pool.Allocate()
	if err != nil {
		return nil, rerr.Wrap("pdu.Allocate", rerr.CodeFailedAllocation, err)
	}
	return &PDU{buf: b}, nil
}

// AllocateBulk obtains n fresh MBufs and wraps each in an empty PDU.
func AllocateBulk(pool *mbuf.Pool, n int) ([]*PDU, error) {
	bufs, err := pool.AllocateBulk(n)
	if err != nil {
		return nil, rerr.Wrap("pdu.AllocateBulk", rerr.CodeFailedAllocation, err)
	}
	out := make([]*PDU, len(bufs))
	for i, b := range bufs {
		out[i] = &PDU{buf: b}
	}
	return out, nil
}

// Parse walks b's data region L2 through L4 and returns a PDU with its
// header stack populated. Parsing never fails: a truncated or
// unrecognised packet simply yields a shorter stack.
func Parse(b *mbuf.Buffer) *PDU {
	p := &PDU{buf: b}
	data := b.Bytes()

	mac, ok := headers.ParseMac(data)
	if !ok {
		return p
	}
	p.push(headers.KindMac, 0, mac.Offset())
	cursor := mac.Offset()

	switch mac.EtherType() {
	case headers.EtherTypeIPv4, headers.EtherTypeIPv4Alt, headers.EtherTypeIPv4Alt2:
		if cursor >= len(data) {
			return p
		}
		ip, ok := headers.ParseIPv4(data[cursor:])
		if !ok {
			return p
		}
		p.push(headers.KindIPv4, cursor, cursor+ip.Offset())
		cursor += ip.Offset()

		if ip.Protocol() == headers.IPProtoTCP {
			if cursor >= len(data) {
				return p
			}
			tcp, ok := headers.ParseTCP(data[cursor:])
			if !ok {
				return p
			}
			p.push(headers.KindTCP, cursor, cursor+tcp.Offset())
		} else if ip.Protocol() == headers.IPProtoUDP {
			if cursor >= len(data) {
				return p
			}
			udp, ok := headers.ParseUDP(data[cursor:])
			if !ok {
				return p
			}
			p.push(headers.KindUDP, cursor, cursor+udp.Offset())
		}
	case headers.EtherTypeARP:
		if cursor >= len(data) {
			return p
		}
		arp, ok := headers.ParseArp(data[cursor:])
		if !ok {
			return p
		}
		p.push(headers.KindArp, cursor, cursor+arp.Offset())
	}
	return p
}

func (p *PDU) push(kind headers.Kind, start, end int) bool {
	if p.depth >= constants.MaxHeaderStackDepth {
		return false
	}
	p.stack[p.depth] = HeaderRef{Kind: kind, Start: start, End: end}
	p.depth++
	return true
}

// NumHeaders returns how many header stack entries were found.
func (p *PDU) NumHeaders() int { return p.depth }

// HeaderAt returns the header stack entry at the given level.
func (p *PDU) HeaderAt(level int) (HeaderRef, bool) {
	if level < 0 || level >= p.depth {
		return HeaderRef{}, false
	}
	return p.stack[level], true
}

// HeaderBytes returns the raw bytes of the header at the given level.
func (p *PDU) HeaderBytes(level int) ([]byte, bool) {
	ref, ok := p.HeaderAt(level)
	if !ok {
		return nil, false
	}
	data := p.buf.Bytes()
	return data[ref.Start:ref.End], true
}

// Buffer returns the underlying MBuf. The returned pointer must not be
// retained past a call that transfers ownership (ReleaseMbuf, Send,
// MPSC enqueue).
func (p *PDU) Buffer() *mbuf.Buffer { return p.buf }

// ReleaseMbuf transfers ownership of the underlying MBuf out of the PDU,
// nulling the PDU's own pointer: a second ReleaseMbuf returns nil rather
// than handing out the same buffer twice, and Buffer returns nil afterwards.
func (p *PDU) ReleaseMbuf() *mbuf.Buffer {
	b := p.buf
	p.buf = nil
	return b
}

// Clone produces a second PDU view over the same MBuf, incrementing its
// refcount. The two views must never mutate the buffer concurrently.
func (p *PDU) Clone() *PDU {
	p.buf.Reference()
	clone := &PDU{buf: p.buf, depth: p.depth}
	clone.stack = p.stack
	return clone
}

// CloneNoRef produces a second PDU view over the same MBuf without
// incrementing the refcount — the caller is asserting that this view's
// lifetime is strictly contained within the original's.
func (p *PDU) CloneNoRef() *PDU {
	clone := &PDU{buf: p.buf, depth: p.depth}
	clone.stack = p.stack
	return clone
}

// Copy allocates a fresh MBuf from pool, copies this PDU's data bytes and
// header stack into it, and returns an independent PDU.
func (p *PDU) Copy(pool *mbuf.Pool) (*PDU, error) {
	nb, err := pool.Allocate()
	if err != nil {
		return nil, rerr.Wrap("pdu.Copy", rerr.CodeFailedAllocation, err)
	}
	src := p.buf.Bytes()
	if !nb.GrowTail(len(src)) {
		nb.Dereference()
		return nil, rerr.New("pdu.Copy", rerr.CodeBadOffset, "destination mbuf too small for copy")
	}
	copy(nb.Bytes(), src)
	out := &PDU{buf: nb, depth: p.depth}
	out.stack = p.stack
	return out, nil
}

// GetPayload returns the byte slice following the header at level: from
// the end of that header to the end of the data region.
func (p *PDU) GetPayload(level int) []byte {
	off := p.payloadOffset(level)
	data := p.buf.Bytes()
	if off >= len(data) {
		return data[len(data):]
	}
	return data[off:]
}

// GetPayloadMut is identical to GetPayload: slices returned by Bytes()
// are already mutable views into the buffer's backing array.
func (p *PDU) GetPayloadMut(level int) []byte { return p.GetPayload(level) }

// PayloadSize returns len(GetPayload(level)).
func (p *PDU) PayloadSize(level int) int {
	off := p.payloadOffset(level)
	n := p.buf.DataLen() - off
	if n < 0 {
		return 0
	}
	return n
}

func (p *PDU) payloadOffset(level int) int {
	if level < 0 {
		return 0
	}
	if level >= p.depth {
		if p.depth == 0 {
			return 0
		}
		return p.stack[p.depth-1].End
	}
	return p.stack[level].End
}

// IncreasePayloadSize grows or shrinks (delta may be negative) the tail of
// the data region, returning false if it doesn't fit in tailroom.
func (p *PDU) IncreasePayloadSize(delta int) bool { return p.buf.GrowTail(delta) }

// AddToTail is an alias for IncreasePayloadSize, matching the operation
// name spec callers expect.
func (p *PDU) AddToTail(delta int) bool { return p.IncreasePayloadSize(delta) }

// TrimPayload shrinks the data region's tail by delta bytes.
func (p *PDU) TrimPayload(delta int) bool { return p.buf.TrimTail(delta) }

// WriteFromTailDown fills the last min(length, payload size) bytes of the
// data region with value — field-preserving scrubbing.
func (p *PDU) WriteFromTailDown(length int, value byte) {
	if max := p.PayloadSize(p.depth - 1); length > max {
		length = max
	}
	p.buf.FillTail(length, value)
}

// CopyPayloadFromSlice writes src into the payload starting at level,
// growing the buffer's tail if necessary. Returns the number of bytes
// actually written.
func (p *PDU) CopyPayloadFromSlice(src []byte, level int) int {
	off := p.payloadOffset(level)
	n, err := p.buf.WriteAt(off, src)
	if err != nil {
		return 0
	}
	return n
}

// PushHeader extends the buffer's tail by len(raw), shifts any existing
// payload at the innermost header right by that amount, writes raw in
// the freed span, and pushes kind onto the header stack. Returns false
// if there isn't tailroom for the shift.
func (p *PDU) PushHeader(kind headers.Kind, raw []byte) bool {
	n := len(raw)
	if n > p.buf.Tailroom() {
		return false
	}
	innerEnd := 0
	if p.depth > 0 {
		innerEnd = p.stack[p.depth-1].End
	}
	data := p.buf.Raw()
	oldLen := p.buf.DataLen()
	oldOff := p.buf.DataOff()
	p.buf.GrowTail(n)

	// shift [innerEnd, oldLen) right by n bytes to make room at innerEnd
	src := data[oldOff+innerEnd : oldOff+oldLen]
	dst := data[oldOff+innerEnd+n : oldOff+oldLen+n]
	copy(dst, src)
	copy(data[oldOff+innerEnd:oldOff+innerEnd+n], raw)

	for i := range p.stack[:p.depth] {
		if p.stack[i].Start >= innerEnd {
			p.stack[i].Start += n
			p.stack[i].End += n
		}
	}
	return p.push(kind, innerEnd, innerEnd+n)
}

// ReplaceHeader overwrites the header at level with raw in place. raw
// must be the same length as the existing header and kind must match;
// both are checked.
func (p *PDU) ReplaceHeader(level int, kind headers.Kind, raw []byte) error {
	ref, ok := p.HeaderAt(level)
	if !ok {
		return rerr.New("pdu.ReplaceHeader", rerr.CodeHeaderMismatch, "no header at level")
	}
	if ref.Kind != kind {
		return rerr.New("pdu.ReplaceHeader", rerr.CodeHeaderMismatch, "replacement kind does not match existing header")
	}
	if len(raw) != ref.Len() {
		return rerr.New("pdu.ReplaceHeader", rerr.CodeHeaderMismatch, "replacement length does not match existing header")
	}
	data := p.buf.Bytes()
	copy(data[ref.Start:ref.End], raw)
	return nil
}

// ---- TX offload surface ----

func (p *PDU) SetIPv4Cksum(on bool) { p.buf.SetOffload(mbuf.OffloadIPv4Cksum, on) }
func (p *PDU) SetTCPCksum(on bool)  { p.buf.SetOffload(mbuf.OffloadTCPCksum, on) }
func (p *PDU) SetUDPCksum(on bool)  { p.buf.SetOffload(mbuf.OffloadUDPCksum, on) }

func (p *PDU) SetTxLens(l2, l3, l4 uint16) { p.buf.SetTxLens(l2, l3, l4) }

// ValidateTxOffload returns 0 when the driver would accept the currently
// configured offload combination.
func (p *PDU) ValidateTxOffload() int { return p.buf.ValidateTxOffload() }
