package statecell

import "testing"

func TestIntCellOps(t *testing.T) {
	c := NewInt(10)

	c.Inc()
	c.Inc()
	c.Dec()
	c.Add(5)
	c.Sub(2)

	if c.Get() != 14 {
		t.Errorf("Get() = %d, want 14", c.Get())
	}
}

func TestIntCellFansOut(t *testing.T) {
	c := NewInt(0)
	x := mount(c.Cell)

	c.Inc()
	if x.snap != 1 {
		t.Errorf("snapshot after Inc = %d, want 1", x.snap)
	}
}

func TestBoolCellOps(t *testing.T) {
	c := NewBool(false)

	c.Toggle()
	if !c.Get() {
		t.Error("Toggle() should flip false to true")
	}

	c.SetFalse()
	if c.Get() {
		t.Error("SetFalse() should set false")
	}

	c.SetTrue()
	if !c.Get() {
		t.Error("SetTrue() should set true")
	}
}

func TestStringCellOps(t *testing.T) {
	c := NewString("world")

	c.Prepend("hello ")
	c.Append("!")
	if c.Get() != "hello world!" {
		t.Errorf("Get() = %q, want %q", c.Get(), "hello world!")
	}

	c.Clear()
	if c.Get() != "" {
		t.Errorf("Get() after Clear = %q, want empty", c.Get())
	}
}
