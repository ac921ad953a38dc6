// Package simple runs fixtures with -mode=simple.
package simple

type A struct{}

func (A) M() {}

type B struct{ A }

func (b B) M() { b.A.M() }

// [GOOD]: Skipping B.M is accepted in simple mode
type C struct{ B }

func (c C) M() {
	c.B.A.M()
}

// [BAD]: Still missing
type D struct{ B }

func (D) M() {} // want `virtual override function M is not calling parent implementation\.`

// [BAD]: Still conditional
type E struct{ B }

func (e E) M() { // want `virtual override function M is not calling parent implementation unconditionally\.`
	for i := range 2 {
		if i == 0 {
			e.B.M()
		}
	}
}
