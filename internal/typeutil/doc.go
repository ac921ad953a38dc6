// Package typeutil provides go/types helpers for supercall.
//
// # Embedding as Inheritance
//
// supercall treats an embedded field as a base class. [NamedOf] maps a field
// type to the class it denotes:
//
//	type Circle struct {
//	    Shape       // NamedOf -> Shape
//	    *Outline    // NamedOf -> Outline (pointer unwrapped)
//	    Box[int]    // NamedOf -> Box (generic origin)
//	}
//
// Only struct and interface types become classes, see [IsStruct] and
// [IsInterface].
//
// # Signature Keys
//
// [SignatureKey] renders the parameter and result types with package-path
// qualified type names. Receiver and parameter names are not part of the key:
//
//	func (Shape) Draw(c *Canvas, n int) error   // "(*example.com/gfx.Canvas,int)(error)"
//	func (Circle) Draw(dst *Canvas, _ int) error // same key
//
// Two methods correspond iff their names and keys are equal.
package typeutil
