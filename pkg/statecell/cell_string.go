package statecell

// StringCell wraps Cell[string] with convenience methods for string operations.
type StringCell struct {
	*Cell[string]
}

// NewString creates a new StringCell with the given initial value.
func NewString(initial string, opts ...Option) *StringCell {
	return &StringCell{New(initial, opts...)}
}

// Append appends a suffix to the value.
func (c *StringCell) Append(suffix string) {
	c.Update(func(s string) string { return s + suffix })
}

// Prepend prepends a prefix to the value.
func (c *StringCell) Prepend(prefix string) {
	c.Update(func(s string) string { return prefix + s })
}

// Clear sets the value to the empty string.
func (c *StringCell) Clear() {
	c.Set("")
}
