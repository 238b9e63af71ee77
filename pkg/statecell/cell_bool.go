package statecell

// BoolCell wraps Cell[bool] with convenience methods for boolean operations.
type BoolCell struct {
	*Cell[bool]
}

// NewBool creates a new BoolCell with the given initial value.
func NewBool(initial bool, opts ...Option) *BoolCell {
	return &BoolCell{New(initial, opts...)}
}

// Toggle inverts the value.
func (c *BoolCell) Toggle() {
	c.Update(func(b bool) bool { return !b })
}

// SetTrue sets the value to true.
func (c *BoolCell) SetTrue() {
	c.Set(true)
}

// SetFalse sets the value to false.
func (c *BoolCell) SetFalse() {
	c.Set(false)
}
