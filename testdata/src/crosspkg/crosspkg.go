// Package crosspkg embeds types from another package.
package crosspkg

import "shapes"

// [GOOD]
type Circle struct{ *shapes.Shape }

func (c Circle) Draw() {
	c.Shape.Draw()
}

// [BAD]
type Square struct{ shapes.Shape }

func (s *Square) Draw() {} // want `virtual override function Draw is not calling parent implementation\.`

// [BAD]: Styled.Draw bypassed
type Fancy struct{ shapes.Styled }

func (f *Fancy) Draw() { // want `virtual override function Draw is not calling direct parent implementation\.`
	f.Styled.Shape.Draw()
}
