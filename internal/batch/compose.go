package batch

// Compose is a transparent wrapper around a parent operator, erasing any
// header-type specificity its Go type might otherwise carry so
// heterogeneous sub-pipelines can be composed under one Operator value.
type Compose struct {
	parent Operator
}

// NewCompose wraps parent for type-erased composition.
func NewCompose(parent Operator) *Compose {
	return &Compose{parent: parent}
}

func (c *Compose) Act() (int, int)     { return c.parent.Act() }
func (c *Compose) Batch() *PacketBatch { return c.parent.Batch() }
func (c *Compose) Queued() int         { return c.parent.Queued() }
func (c *Compose) Done()               { c.parent.Done() }
