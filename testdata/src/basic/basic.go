// Package basic contains test fixtures for the override call checker.
// This file covers daily patterns - direct calls, missing calls and branches.
package basic

import "fmt"

type Shape struct {
	name string
}

func (s Shape) Draw()          { fmt.Println(s.name) }
func (s *Shape) Area() float64 { return 0 }
func (s Shape) Resize(n int)   {}

// ===== SHOULD REPORT =====

// [BAD]: No call at all
type Square struct{ Shape }

func (s Square) Draw() { // want `virtual override function Draw is not calling parent implementation\.`
	s.render()
}

func (s Square) render() {}

// [BAD]: Parent call only inside an if
type Circle struct {
	Shape
	filled bool
}

func (c Circle) Draw() { // want `virtual override function Draw is not calling parent implementation unconditionally\.`
	if c.filled {
		c.Shape.Draw()
	}
	c.render()
}

func (c Circle) render() {}

// [BAD]: Parent call only inside a switch case
type Ellipse struct {
	Shape
	kind int
}

func (e Ellipse) Draw() { // want `virtual override function Draw is not calling parent implementation unconditionally\.`
	switch e.kind {
	case 1:
		e.Shape.Draw()
	default:
	}
}

// [BAD]: Parent call only in the else branch
type Ring struct {
	Shape
	hidden bool
}

func (r Ring) Draw() { // want `virtual override function Draw is not calling parent implementation unconditionally\.`
	if r.hidden {
		return
	} else {
		r.Shape.Draw()
	}
}

// [BAD]: Calls a different method of the parent
type Hexagon struct{ Shape }

func (h Hexagon) Draw() { // want `virtual override function Draw is not calling parent implementation\.`
	h.Shape.Resize(1)
}

// [BAD]: Calls Draw on some other Shape value
type Star struct {
	Shape
	outline Shape
}

func (s Star) Draw() { // want `virtual override function Draw is not calling parent implementation\.`
	s.outline.Draw()
}

// [BAD]: Calls through a method value
type Oval struct{ Shape }

func (o Oval) Draw() { // want `virtual override function Draw is not calling parent implementation\.`
	f := o.Shape.Draw
	f()
}

// [BAD]: Unnamed receiver cannot reach the parent
type Triangle struct{ Shape }

func (Triangle) Draw() {} // want `virtual override function Draw is not calling parent implementation\.`

// [BAD]: Parent call only inside a select case
type Blinker struct {
	Shape
	tick chan struct{}
}

func (b Blinker) Draw() { // want `virtual override function Draw is not calling parent implementation unconditionally\.`
	select {
	case <-b.tick:
		b.Shape.Draw()
	default:
	}
}

// [BAD]: Parent call in the if condition
type Badge struct{ Shape }

func (b Badge) Area() float64 { // want `virtual override function Area is not calling parent implementation unconditionally\.`
	if a := b.Shape.Area(); a > 0 {
		return a
	}
	return 1
}

// [BAD]: Parent call in the switch tag
type Medal struct{ Shape }

func (m Medal) Area() float64 { // want `virtual override function Area is not calling parent implementation unconditionally\.`
	switch m.Shape.Area() {
	case 0:
		return 1
	}
	return 2
}

// ===== SHOULD NOT REPORT =====

// [GOOD]: Direct unconditional call
type Rect struct{ Shape }

func (r Rect) Draw() {
	r.Shape.Draw()
	r.render()
}

func (r Rect) render() {}

// [GOOD]: Pointer receiver and explicit dereference
type Polygon struct{ Shape }

func (p *Polygon) Area() float64 {
	return (*p).Shape.Area() * 2
}

func (p *Polygon) Draw() {
	p.Shape.Draw()
}

// [GOOD]: Deferred call still runs on every path
type Label struct{ Shape }

func (l Label) Draw() {
	defer l.Shape.Draw()
	fmt.Println("label")
}

// [GOOD]: Parent call as an argument of another call
type Caption struct{ Shape }

func (c Caption) Area() float64 {
	return max(c.Shape.Area(), 1)
}

// [GOOD]: Intermediate type without its own Draw
type Plain struct{ Shape }

type Deep struct{ Plain }

func (d Deep) Draw() {
	d.Plain.Draw()
}

// [GOOD]: Different signature does not override
type Sprite struct{ Shape }

func (s Sprite) Resize(f float64) {}

// [GOOD]: Only an interface is embedded, nothing to call
type Drawer interface{ Draw() }

type Lazy struct{ Drawer }

func (Lazy) Draw() {}

// [GOOD]: Not embedded, so not an override
type Canvas struct{ shape Shape }

func (Canvas) Draw() {}
