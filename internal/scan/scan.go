// Package scan finds the first call to the ancestor implementation inside an
// overriding method's body.
package scan

import (
	"github.com/mpyw/supercall/internal/hierarchy"
	"github.com/mpyw/supercall/internal/stmt"
)

// Result is the outcome of a scan.
type Result struct {
	Found       bool
	Conditional bool // the call is nested under a Branch
	Target      hierarchy.MethodID
	TargetClass hierarchy.ClassID
}

type item struct {
	node        *stmt.Node
	conditional bool
}

// Scan walks body depth-first in document order and stops at the first call
// that invokes the ancestor implementation of overriding.
//
// The walk uses an explicit stack, so nesting depth is bounded by memory only.
func Scan(g *hierarchy.Graph, overriding hierarchy.MethodID, body *stmt.Node) Result {
	if body == nil {
		return Result{Target: hierarchy.NoMethod}
	}

	stack := []item{{node: body}}
	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		n := it.node
		conditional := it.conditional

		switch n.Kind {
		case stmt.Branch:
			conditional = true
		case stmt.Call:
			if target, ok := qualifies(g, overriding, n.Call); ok {
				return Result{
					Found:       true,
					Conditional: conditional,
					Target:      target,
					TargetClass: g.Method(target).Class,
				}
			}
		case stmt.Sequence, stmt.Other:
		}

		for i := len(n.Children) - 1; i >= 0; i-- {
			stack = append(stack, item{node: n.Children[i], conditional: conditional})
		}
	}

	return Result{Target: hierarchy.NoMethod}
}

// qualifies reports whether call invokes the implementation that overriding
// corresponds to in the callee's class.
func qualifies(g *hierarchy.Graph, overriding hierarchy.MethodID, call *stmt.CallInfo) (hierarchy.MethodID, bool) {
	if call == nil || !call.Qualified || call.Target == hierarchy.NoMethod {
		return hierarchy.NoMethod, false
	}

	m := g.Method(overriding)
	target := g.Method(call.Target)
	if target.Sig.Name != m.Sig.Name {
		return hierarchy.NoMethod, false
	}

	corresponding, ok := g.Corresponding(target.Class, m.Sig)
	if !ok || corresponding != call.Target {
		return hierarchy.NoMethod, false
	}

	if !g.IsDerivedFrom(m.Class, target.Class) {
		return hierarchy.NoMethod, false
	}

	return call.Target, true
}
