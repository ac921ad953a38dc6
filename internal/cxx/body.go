package cxx

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/mpyw/supercall/internal/hierarchy"
	"github.com/mpyw/supercall/internal/stmt"
)

// bodyBuilder converts a function body into a statement tree, collecting
// the qualified calls that still need a target.
type bodyBuilder struct {
	e     *extractor
	calls []pendingCall
}

// frame is a node under construction: its kind, the source children still
// to lower and the lowered ones so far.
type frame struct {
	kind      stmt.Kind
	info      stmt.CallInfo
	qualifier string
	src       []*sitter.Node
	next      int
	out       []*stmt.Node
}

// node lowers n with an explicit stack, so body nesting depth does not grow
// the goroutine stack.
func (b *bodyBuilder) node(n *sitter.Node) *stmt.Node {
	if skip(n) {
		return nil
	}

	var result *stmt.Node
	stack := []*frame{b.open(n)}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		if top.next < len(top.src) {
			c := top.src[top.next]
			top.next++
			if !skip(c) {
				stack = append(stack, b.open(c))
			}
			continue
		}

		stack = stack[:len(stack)-1]
		built := b.close(top)
		if len(stack) == 0 {
			result = built
		} else {
			parent := stack[len(stack)-1]
			parent.out = append(parent.out, built)
		}
	}
	return result
}

func skip(n *sitter.Node) bool {
	return n == nil || n.Type() == "comment"
}

func (b *bodyBuilder) open(n *sitter.Node) *frame {
	switch n.Type() {
	case "compound_statement":
		return &frame{kind: stmt.Sequence, src: namedChildren(n)}

	// The condition is part of the branch: a call there is conditional too.
	case "if_statement", "switch_statement":
		return &frame{kind: stmt.Branch, src: namedChildren(n)}

	case "call_expression":
		if info, qualifier, ok := b.call(n.ChildByFieldName("function")); ok {
			return &frame{
				kind:      stmt.Call,
				info:      info,
				qualifier: qualifier,
				src:       []*sitter.Node{n.ChildByFieldName("arguments")},
			}
		}
	}

	return &frame{kind: stmt.Other, src: namedChildren(n)}
}

func (b *bodyBuilder) close(f *frame) *stmt.Node {
	switch f.kind {
	case stmt.Sequence:
		return stmt.NewSequence(f.out...)
	case stmt.Branch:
		return stmt.NewBranch(f.out...)
	case stmt.Call:
		call := stmt.NewCall(f.info, f.out...)
		b.calls = append(b.calls, pendingCall{info: call.Call, qualifier: f.qualifier})
		return call
	default:
		return stmt.NewOther(f.out...)
	}
}

func namedChildren(n *sitter.Node) []*sitter.Node {
	out := make([]*sitter.Node, 0, n.NamedChildCount())
	for i := range int(n.NamedChildCount()) {
		out = append(out, n.NamedChild(i))
	}
	return out
}

// call recognises Base::m(...), this->Base::m(...) and (*this).Base::m(...).
func (b *bodyBuilder) call(fn *sitter.Node) (stmt.CallInfo, string, bool) {
	if fn == nil {
		return stmt.CallInfo{}, "", false
	}

	var name string
	switch fn.Type() {
	case "qualified_identifier":
		name = b.e.text(fn)
	case "field_expression":
		if !isThis(fn.ChildByFieldName("argument")) {
			return stmt.CallInfo{}, "", false
		}
		field := fn.ChildByFieldName("field")
		if field == nil {
			return stmt.CallInfo{}, "", false
		}
		name = b.e.text(field)
	default:
		return stmt.CallInfo{}, "", false
	}

	segments := splitQualified(name)
	if len(segments) < 2 {
		return stmt.CallInfo{}, "", false
	}

	info := stmt.CallInfo{
		Name:      segments[len(segments)-1],
		Qualified: true,
		Target:    hierarchy.NoMethod,
	}
	return info, segments[len(segments)-2], true
}

func isThis(n *sitter.Node) bool {
	for n != nil {
		switch n.Type() {
		case "this":
			return true
		case "parenthesized_expression":
			n = n.NamedChild(0)
		case "pointer_expression":
			// (*this)
			if op := n.ChildByFieldName("operator"); op == nil || op.Type() != "*" {
				return false
			}
			n = n.ChildByFieldName("argument")
		default:
			return false
		}
	}
	return false
}
