// Package hierarchy models a class inheritance graph as an index-addressed DAG
// and answers the override-resolution queries used by supercall.
package hierarchy

import (
	"errors"
	"fmt"
)

// ClassID identifies a class in a Graph.
type ClassID int

// MethodID identifies a method declaration in a Graph.
type MethodID int

// NoMethod is the zero-knowledge method reference.
const NoMethod MethodID = -1

var (
	// ErrCycle is returned by Builder.Build when a class derives from itself.
	ErrCycle = errors.New("inheritance cycle")
	// ErrUnknownClass is returned when a base edge refers to a class that was never added.
	ErrUnknownClass = errors.New("unknown class")
)

// Signature identifies a method for override matching.
// Two methods correspond iff their signatures are equal.
type Signature struct {
	Name string
	Key  string // parameter/result/qualifier identity
}

func (s Signature) String() string {
	return s.Name + s.Key
}

// Class is a type in the hierarchy.
type Class struct {
	ID    ClassID
	Name  string
	Bases []ClassID // direct bases, declaration order

	methods map[Signature]MethodID
	byName  map[string][]MethodID
}

// Method is a method declaration owned by a class.
type Method struct {
	ID      MethodID
	Class   ClassID
	Sig     Signature
	HasBody bool
	Virtual bool
}

// Graph is an immutable class hierarchy. It is safe for concurrent use.
type Graph struct {
	classes []Class
	methods []Method
}

// Class returns the class with the given id.
func (g *Graph) Class(id ClassID) *Class {
	return &g.classes[id]
}

// Method returns the method with the given id.
func (g *Graph) Method(id MethodID) *Method {
	return &g.methods[id]
}

// NumClasses returns the number of classes.
func (g *Graph) NumClasses() int {
	return len(g.classes)
}

// NumMethods returns the number of method declarations.
func (g *Graph) NumMethods() int {
	return len(g.methods)
}

// Builder assembles a Graph. The zero value is not usable; call NewBuilder.
type Builder struct {
	classes []Class
	methods []Method
	edges   [][]ClassID
}

// NewBuilder creates an empty Builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// AddClass registers a class and returns its id.
func (b *Builder) AddClass(name string) ClassID {
	id := ClassID(len(b.classes))
	b.classes = append(b.classes, Class{
		ID:      id,
		Name:    name,
		methods: make(map[Signature]MethodID),
		byName:  make(map[string][]MethodID),
	})
	b.edges = append(b.edges, nil)
	return id
}

// AddBase records base as a direct base of derived. Repeated edges are collapsed.
func (b *Builder) AddBase(derived, base ClassID) {
	for _, e := range b.edges[derived] {
		if e == base {
			return
		}
	}
	b.edges[derived] = append(b.edges[derived], base)
}

// AddMethod declares a method in class. Redeclaring a signature merges the
// declaration: a body or virtual marker seen on any declaration sticks.
func (b *Builder) AddMethod(class ClassID, sig Signature, hasBody, virtual bool) MethodID {
	c := &b.classes[class]
	if id, ok := c.methods[sig]; ok {
		m := &b.methods[id]
		m.HasBody = m.HasBody || hasBody
		m.Virtual = m.Virtual || virtual
		return id
	}

	id := MethodID(len(b.methods))
	b.methods = append(b.methods, Method{
		ID:      id,
		Class:   class,
		Sig:     sig,
		HasBody: hasBody,
		Virtual: virtual,
	})
	c.methods[sig] = id
	c.byName[sig.Name] = append(c.byName[sig.Name], id)
	return id
}

// Build validates the graph and freezes it.
func (b *Builder) Build() (*Graph, error) {
	n := ClassID(len(b.classes))
	for derived, bases := range b.edges {
		for _, base := range bases {
			if base < 0 || base >= n {
				return nil, fmt.Errorf("class %q base #%d: %w", b.classes[derived].Name, base, ErrUnknownClass)
			}
		}
	}

	if c, ok := findCycle(b.edges); ok {
		return nil, fmt.Errorf("class %q: %w", b.classes[c].Name, ErrCycle)
	}

	g := &Graph{
		classes: make([]Class, len(b.classes)),
		methods: append([]Method(nil), b.methods...),
	}
	for i := range b.classes {
		g.classes[i] = b.classes[i]
		g.classes[i].Bases = append([]ClassID(nil), b.edges[i]...)
	}
	return g, nil
}

// findCycle reports a class on a cycle, using an iterative three-colour DFS.
func findCycle(edges [][]ClassID) (ClassID, bool) {
	const (
		white = iota
		grey
		black
	)

	type frame struct {
		id   ClassID
		next int
	}

	color := make([]uint8, len(edges))
	for start := range edges {
		if color[start] != white {
			continue
		}

		stack := []frame{{id: ClassID(start)}}
		color[start] = grey
		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			if top.next == len(edges[top.id]) {
				color[top.id] = black
				stack = stack[:len(stack)-1]
				continue
			}

			base := edges[top.id][top.next]
			top.next++
			switch color[base] {
			case grey:
				return base, true
			case white:
				color[base] = grey
				stack = append(stack, frame{id: base})
			}
		}
	}

	return 0, false
}
