package gofront

import (
	"go/ast"
	"go/types"

	"github.com/mpyw/supercall/internal/hierarchy"
	"github.com/mpyw/supercall/internal/stmt"
)

// converter lowers a method body into a stmt tree.
type converter struct {
	info   *types.Info
	recv   types.Object
	lookup func(*types.Func) (hierarchy.MethodID, bool)
}

// frame is a node under construction.
type frame struct {
	kind stmt.Kind
	info stmt.CallInfo
	src  []ast.Node
	next int
	out  []*stmt.Node
}

// node lowers n with an explicit stack, so body nesting depth does not grow
// the goroutine stack.
func (c *converter) node(n ast.Node) *stmt.Node {
	if n == nil {
		return nil
	}

	var result *stmt.Node
	stack := []*frame{c.open(n)}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		if top.next < len(top.src) {
			stack = append(stack, c.open(top.src[top.next]))
			top.next++
			continue
		}

		stack = stack[:len(stack)-1]
		built := top.close()
		if len(stack) == 0 {
			result = built
		} else {
			parent := stack[len(stack)-1]
			parent.out = append(parent.out, built)
		}
	}
	return result
}

func (c *converter) open(n ast.Node) *frame {
	switch n := n.(type) {
	case *ast.BlockStmt:
		return &frame{kind: stmt.Sequence, src: children(n)}

	// Init statements, conditions and tags belong to the branch.
	case *ast.IfStmt, *ast.SwitchStmt, *ast.TypeSwitchStmt, *ast.SelectStmt:
		return &frame{kind: stmt.Branch, src: children(n)}

	case *ast.CallExpr:
		if info, ok := c.call(n); ok {
			return &frame{kind: stmt.Call, info: info, src: children(n)}
		}
	}

	return &frame{kind: stmt.Other, src: children(n)}
}

func (f *frame) close() *stmt.Node {
	switch f.kind {
	case stmt.Sequence:
		return stmt.NewSequence(f.out...)
	case stmt.Branch:
		return stmt.NewBranch(f.out...)
	case stmt.Call:
		return stmt.NewCall(f.info, f.out...)
	default:
		return stmt.NewOther(f.out...)
	}
}

// children returns the direct children of n in source order.
func children(n ast.Node) []ast.Node {
	var out []ast.Node

	ast.Inspect(n, func(child ast.Node) bool {
		if child == nil {
			return false
		}
		if child == n {
			return true
		}
		out = append(out, child)
		return false
	})

	return out
}

// call describes a method call. Calls of plain functions, conversions and
// builtins are not Call nodes.
func (c *converter) call(call *ast.CallExpr) (stmt.CallInfo, bool) {
	sel, ok := ast.Unparen(call.Fun).(*ast.SelectorExpr)
	if !ok {
		return stmt.CallInfo{}, false
	}

	selection := c.info.Selections[sel]
	if selection == nil || selection.Kind() != types.MethodVal {
		return stmt.CallInfo{}, false
	}

	fn, ok := selection.Obj().(*types.Func)
	if !ok {
		return stmt.CallInfo{}, false
	}

	target, ok := c.lookup(fn)
	if !ok {
		target = hierarchy.NoMethod
	}

	return stmt.CallInfo{
		Name:      fn.Name(),
		Qualified: c.isBaseAccess(sel.X),
		Target:    target,
	}, true
}

// isBaseAccess reports whether x selects an embedded field of the receiver,
// possibly through further embedded fields: r.Base, r.B1.A, (*r).Base.
func (c *converter) isBaseAccess(x ast.Expr) bool {
	if c.recv == nil {
		return false
	}

	depth := 0
	for {
		switch e := ast.Unparen(x).(type) {
		case *ast.SelectorExpr:
			s := c.info.Selections[e]
			if s == nil || s.Kind() != types.FieldVal {
				return false
			}
			if v, ok := s.Obj().(*types.Var); !ok || !v.Embedded() {
				return false
			}
			depth++
			x = e.X
		case *ast.StarExpr:
			x = e.X
		case *ast.Ident:
			return depth > 0 && c.info.Uses[e] == c.recv
		default:
			return false
		}
	}
}
