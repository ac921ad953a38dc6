// Package noconditional runs with -conditional=false -mode=simple.
package noconditional

type Base struct{}

func (Base) Run(n int) {}

type Guarded struct{ Base }

func (g Guarded) Run(n int) {
	if n > 0 {
		g.Base.Run(n)
	}
}

type Forgetful struct{ Base }

func (Forgetful) Run(n int) {} // want `virtual override function Run is not calling parent implementation\.`
