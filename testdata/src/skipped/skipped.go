// Package skipped contains fixtures where an intermediate override is bypassed.
package skipped

type A struct{}

func (A) M() {}

type B1 struct{ A }

func (b B1) M() { b.A.M() }

type B2 struct{ A }

// ===== SHOULD REPORT =====

// [BAD]: Grandparent called directly, B1.M bypassed
type Chain struct{ B1 }

func (c Chain) M() { // want `virtual override function M is not calling direct parent implementation\.`
	c.B1.A.M()
}

// [BAD]: Diamond, A reached through B2 while B1 overrides M
type E struct {
	B1
	B2
}

func (e E) M() { // want `virtual override function M is not calling direct parent implementation\.`
	e.B2.A.M()
}

// [BAD]: Diamond, promoted A.M through B2
type F struct {
	B1
	B2
}

func (f F) M() { // want `virtual override function M is not calling direct parent implementation\.`
	f.B2.M()
}

// [BAD]: Conditional wins over skipped
type G struct{ B1 }

func (g G) M() { // want `virtual override function M is not calling parent implementation unconditionally\.`
	if true {
		g.B1.A.M()
	}
}

// ===== SHOULD NOT REPORT =====

// [GOOD]: Diamond, direct parent B1 called
type D struct {
	B1
	B2
}

func (d D) M() {
	d.B1.M()
}

// [GOOD]: First qualifying call decides
type H struct{ B1 }

func (h H) M() {
	h.B1.M()
	h.B1.A.M()
}
