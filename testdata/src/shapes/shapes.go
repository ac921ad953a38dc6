// Package shapes is imported by the crosspkg fixtures.
package shapes

type Shape struct{}

func (*Shape) Draw() {}

type Styled struct{ Shape }

func (s *Styled) Draw() { s.Shape.Draw() }
