// Package stmt defines the statement tree a method body is reduced to before
// it is scanned for ancestor calls.
//
// The tree is a closed set of four node kinds. Frontends translate their own
// syntax trees into it:
//
//	Sequence  { ... }               block of statements
//	Branch    if / switch / select  children run conditionally
//	Call      x.Base.M(...)         call with a statically known target
//	Other     anything else         opaque, children still searched
package stmt

import "github.com/mpyw/supercall/internal/hierarchy"

// Kind is the variant tag of a Node.
type Kind uint8

const (
	Other Kind = iota
	Sequence
	Branch
	Call
)

func (k Kind) String() string {
	switch k {
	case Sequence:
		return "Sequence"
	case Branch:
		return "Branch"
	case Call:
		return "Call"
	default:
		return "Other"
	}
}

// Node is a statement tree node. Call is non-nil iff Kind == Call.
type Node struct {
	Kind     Kind
	Children []*Node
	Call     *CallInfo
}

// CallInfo describes the callee of a Call node.
type CallInfo struct {
	Name string
	// Qualified is set when the call goes through a base-class qualified
	// member access (C++ Base::m(), Go x.Base.M()).
	Qualified bool
	// Target is the resolved declaration, or hierarchy.NoMethod.
	Target hierarchy.MethodID
}

// NewSequence returns a Sequence node.
func NewSequence(children ...*Node) *Node {
	return &Node{Kind: Sequence, Children: compact(children)}
}

// NewBranch returns a Branch node.
func NewBranch(children ...*Node) *Node {
	return &Node{Kind: Branch, Children: compact(children)}
}

// NewOther returns an Other node.
func NewOther(children ...*Node) *Node {
	return &Node{Kind: Other, Children: compact(children)}
}

// NewCall returns a Call node. Children hold the receiver and argument subtrees.
func NewCall(info CallInfo, children ...*Node) *Node {
	return &Node{Kind: Call, Call: &info, Children: compact(children)}
}

// compact drops nil children so frontends can pass optional parts directly.
func compact(nodes []*Node) []*Node {
	var out []*Node
	for _, n := range nodes {
		if n != nil {
			out = append(out, n)
		}
	}
	return out
}
