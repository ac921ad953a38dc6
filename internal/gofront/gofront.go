// Package gofront builds supercall's class hierarchy and statement trees from
// type-checked Go code.
//
// Go has no inheritance, but struct embedding gives the same shape: a method
// declared on the outer type shadows the promoted method of the embedded one,
// and the embedded implementation stays reachable through the field:
//
//	type Shape struct{}
//	func (Shape) Draw() {}
//
//	type Circle struct{ Shape }
//	func (c Circle) Draw() { c.Shape.Draw() }  // base-qualified call
//
// Embedded fields are bases, declared methods are (always virtual) method
// declarations, and interface methods are declarations without a body.
package gofront

import (
	"fmt"
	"go/ast"
	"go/types"

	"golang.org/x/tools/go/ast/inspector"

	"github.com/mpyw/supercall/internal/engine"
	"github.com/mpyw/supercall/internal/hierarchy"
	"github.com/mpyw/supercall/internal/typeutil"
)

// Program is the result of loading a package.
type Program struct {
	Graph    *hierarchy.Graph
	Subjects []engine.Subject
	// Owners maps every class back to its Go type name.
	Owners []*types.TypeName
}

// Options configure Load.
type Options struct {
	// Skip reports files to leave out of subject collection.
	Skip func(*ast.File) bool
	// Exempt reports base types whose implementations need not be called.
	Exempt func(*types.TypeName) bool
}

type loader struct {
	b          *hierarchy.Builder
	classOf    map[*types.TypeName]hierarchy.ClassID
	inProgress map[*types.TypeName]bool
	methodOf   map[*types.Func]hierarchy.MethodID
	owners     []*types.TypeName
}

// Load builds the hierarchy for every named struct and interface type of pkg
// (and the types they embed, across packages) and collects the overriding
// methods declared in the files insp covers.
func Load(pkg *types.Package, info *types.Info, insp *inspector.Inspector, opts Options) (*Program, error) {
	l := &loader{
		b:          hierarchy.NewBuilder(),
		classOf:    make(map[*types.TypeName]hierarchy.ClassID),
		inProgress: make(map[*types.TypeName]bool),
		methodOf:   make(map[*types.Func]hierarchy.MethodID),
	}

	scope := pkg.Scope()
	for _, name := range scope.Names() {
		tn, ok := scope.Lookup(name).(*types.TypeName)
		if !ok || tn.IsAlias() {
			continue
		}
		if named := typeutil.NamedOf(tn.Type()); named != nil {
			l.addType(named)
		}
	}

	g, err := l.b.Build()
	if err != nil {
		return nil, fmt.Errorf("build hierarchy of %s: %w", pkg.Path(), err)
	}

	prog := &Program{Graph: g, Owners: l.owners}

	// Files precede their declarations in preorder.
	var skip bool
	nodeFilter := []ast.Node{(*ast.File)(nil), (*ast.FuncDecl)(nil)}
	insp.Preorder(nodeFilter, func(n ast.Node) {
		switch n := n.(type) {
		case *ast.File:
			skip = opts.Skip != nil && opts.Skip(n)
		case *ast.FuncDecl:
			if skip {
				return
			}
			if s, ok := l.subject(g, info, n, opts); ok {
				prog.Subjects = append(prog.Subjects, s)
			}
		}
	})

	return prog, nil
}

// addType registers named and everything it embeds. Embedding edges that
// close a cycle (legal through pointers, e.g. type T struct{ *T }) are dropped.
func (l *loader) addType(named *types.Named) (hierarchy.ClassID, bool) {
	obj := named.Obj()
	if id, ok := l.classOf[obj]; ok {
		return id, !l.inProgress[obj]
	}
	if !typeutil.IsStruct(named) && !typeutil.IsInterface(named) {
		return 0, false
	}

	id := l.b.AddClass(typeutil.QualifiedName(obj))
	l.classOf[obj] = id
	l.owners = append(l.owners, obj)
	l.inProgress[obj] = true
	defer delete(l.inProgress, obj)

	switch u := named.Underlying().(type) {
	case *types.Struct:
		for i := range u.NumFields() {
			f := u.Field(i)
			if !f.Embedded() {
				continue
			}
			l.addBase(id, f.Type())
		}
		for i := range named.NumMethods() {
			fn := named.Method(i)
			l.methodOf[fn] = l.b.AddMethod(id, signatureOf(fn), true, true)
		}
	case *types.Interface:
		for i := range u.NumEmbeddeds() {
			l.addBase(id, u.EmbeddedType(i))
		}
		for i := range u.NumExplicitMethods() {
			fn := u.ExplicitMethod(i)
			l.methodOf[fn] = l.b.AddMethod(id, signatureOf(fn), false, true)
		}
	}

	return id, true
}

func (l *loader) addBase(derived hierarchy.ClassID, t types.Type) {
	base := typeutil.NamedOf(t)
	if base == nil {
		return
	}
	if id, ok := l.addType(base); ok {
		l.b.AddBase(derived, id)
	}
}

func signatureOf(fn *types.Func) hierarchy.Signature {
	return hierarchy.Signature{
		Name: fn.Name(),
		Key:  typeutil.SignatureKey(fn.Signature()),
	}
}

// lookup maps a (possibly instantiated) method to its declaration.
func (l *loader) lookup(fn *types.Func) (hierarchy.MethodID, bool) {
	id, ok := l.methodOf[fn.Origin()]
	return id, ok
}

// subject converts fd if it declares an overriding method with a body.
func (l *loader) subject(g *hierarchy.Graph, info *types.Info, fd *ast.FuncDecl, opts Options) (engine.Subject, bool) {
	if fd.Recv == nil || fd.Body == nil {
		return engine.Subject{}, false
	}

	fn, ok := info.Defs[fd.Name].(*types.Func)
	if !ok {
		return engine.Subject{}, false
	}
	id, ok := l.lookup(fn)
	if !ok || !g.Overrides(id) {
		return engine.Subject{}, false
	}
	if opts.Exempt != nil && l.exempt(g, id, opts.Exempt) {
		return engine.Subject{}, false
	}

	c := &converter{info: info, recv: receiverOf(info, fd), lookup: l.lookup}
	return engine.Subject{
		Method: id,
		Name:   fd.Name.Name,
		Pos:    fd.Name.Pos(),
		Body:   c.node(fd.Body),
	}, true
}

// exempt reports whether the implementation an override would call belongs
// to an exempt type.
func (l *loader) exempt(g *hierarchy.Graph, id hierarchy.MethodID, exempt func(*types.TypeName) bool) bool {
	m := g.Method(id)
	parent, ok := g.FindDeclaredAncestorMethod(m.Class, m.Sig)
	if !ok {
		return false
	}

	return exempt(l.owners[g.Method(parent).Class])
}

// receiverOf returns the receiver variable, or nil if it is unnamed or blank.
func receiverOf(info *types.Info, fd *ast.FuncDecl) types.Object {
	if len(fd.Recv.List) == 0 || len(fd.Recv.List[0].Names) == 0 {
		return nil
	}

	name := fd.Recv.List[0].Names[0]
	if name.Name == "_" {
		return nil
	}

	return info.Defs[name]
}
