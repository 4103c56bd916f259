package batch

// MergeStatic fans in several upstreams through an index-indexed
// round-robin selector, driving exactly one parent per Act call.
type MergeStatic struct {
	parents []Operator
	next    int
}

// NewMergeStatic wraps parents in static round-robin order.
func NewMergeStatic(parents []Operator) *MergeStatic {
	return &MergeStatic{parents: parents}
}

func (m *MergeStatic) Act() (int, int) {
	p := m.parents[m.next]
	m.next = (m.next + 1) % len(m.parents)
	return p.Act()
}

func (m *MergeStatic) Batch() *PacketBatch { return m.parents[m.lastIndex()].Batch() }
func (m *MergeStatic) Queued() int {
	total := 0
	for _, p := range m.parents {
		total += p.Queued()
	}
	return total
}
func (m *MergeStatic) Done() {
	for _, p := range m.parents {
		p.Done()
	}
}

func (m *MergeStatic) lastIndex() int {
	i := m.next - 1
	if i < 0 {
		i = len(m.parents) - 1
	}
	return i
}

// MergePolicy selects which parent MergeAuto drives on a given Act call.
type MergePolicy int

const (
	// MergeRoundRobin advances to the next ready (depth > 0) parent in
	// rotation, falling back to strict rotation if none are ready.
	MergeRoundRobin MergePolicy = iota
	// MergeLongestQueue always picks the parent reporting the greatest
	// queue depth.
	MergeLongestQueue
)

// MergeAuto fans in several upstreams, picking one parent per Act call
// according to policy after refreshing every parent's observed queue
// depth. Only the chosen parent is driven on that call — matching
// NetBricks' merge_batch_auto, which refreshes depths once per act()
// before selecting.
type MergeAuto struct {
	parents []Operator
	policy  MergePolicy
	depths  []int
	cursor  int
	current int
}

// NewMergeAuto wraps parents under the given selection policy.
func NewMergeAuto(parents []Operator, policy MergePolicy) *MergeAuto {
	return &MergeAuto{parents: parents, policy: policy, depths: make([]int, len(parents))}
}

// refreshDepths polls every parent's Queued() once, ahead of selection.
func (m *MergeAuto) refreshDepths() {
	for i, p := range m.parents {
		m.depths[i] = p.Queued()
	}
}

func (m *MergeAuto) selectParent() int {
	switch m.policy {
	case MergeLongestQueue:
		best := 0
		for i, d := range m.depths {
			if d > m.depths[best] {
				best = i
			}
		}
		return best
	default: // MergeRoundRobin
		for i := 0; i < len(m.parents); i++ {
			idx := (m.cursor + i) % len(m.parents)
			if m.depths[idx] > 0 {
				m.cursor = (idx + 1) % len(m.parents)
				return idx
			}
		}
		idx := m.cursor
		m.cursor = (m.cursor + 1) % len(m.parents)
		return idx
	}
}

func (m *MergeAuto) Act() (int, int) {
	m.refreshDepths()
	m.current = m.selectParent()
	return m.parents[m.current].Act()
}

func (m *MergeAuto) Batch() *PacketBatch { return m.parents[m.current].Batch() }
func (m *MergeAuto) Queued() int {
	total := 0
	for _, d := range m.depths {
		total += d
	}
	return total
}
func (m *MergeAuto) Done() {
	for _, p := range m.parents {
		p.Done()
	}
}
