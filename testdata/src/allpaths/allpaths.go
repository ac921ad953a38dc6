// Package allpaths runs the diamond fixtures with -skip-policy=all.
package allpaths

type A struct{}

func (A) M() {}

type B1 struct{ A }

func (b B1) M() { b.A.M() }

type B2 struct{ A }

// [BAD]: The only path bypasses B1.M
type Chain struct{ B1 }

func (c Chain) M() { // want `virtual override function M is not calling direct parent implementation\.`
	c.B1.A.M()
}

// [GOOD]: The path through B2 bypasses nothing
type E struct {
	B1
	B2
}

func (e E) M() {
	e.B2.A.M()
}
