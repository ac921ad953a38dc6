package typeutil

import (
	"go/types"
	"strings"
)

// unwrapPointer returns the element type if t is a pointer, otherwise returns t.
func unwrapPointer(t types.Type) types.Type {
	if ptr, ok := t.(*types.Pointer); ok {
		return ptr.Elem()
	}

	return t
}

// NamedOf returns the generic origin of the named type behind t.
// It handles pointer types and aliases automatically.
func NamedOf(t types.Type) *types.Named {
	t = types.Unalias(unwrapPointer(types.Unalias(t)))

	named, ok := t.(*types.Named)
	if !ok {
		return nil
	}

	return named.Origin()
}

// IsStruct checks if the named type is a struct.
func IsStruct(named *types.Named) bool {
	_, ok := named.Underlying().(*types.Struct)
	return ok
}

// IsInterface checks if the named type is an interface.
func IsInterface(named *types.Named) bool {
	_, ok := named.Underlying().(*types.Interface)
	return ok
}

// QualifiedName returns "pkg/path.Type", or just "Type" for universe types.
func QualifiedName(obj *types.TypeName) string {
	if obj.Pkg() == nil {
		return obj.Name()
	}

	return obj.Pkg().Path() + "." + obj.Name()
}

// SignatureKey encodes the parameter and result types of sig, ignoring the
// receiver and parameter names, so that overriding methods compare equal.
func SignatureKey(sig *types.Signature) string {
	qf := func(p *types.Package) string { return p.Path() }

	var b strings.Builder
	writeTuple(&b, sig.Params(), qf)
	writeTuple(&b, sig.Results(), qf)
	if sig.Variadic() {
		b.WriteString("...")
	}

	return b.String()
}

func writeTuple(b *strings.Builder, tuple *types.Tuple, qf types.Qualifier) {
	b.WriteByte('(')
	for i := range tuple.Len() {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(types.TypeString(tuple.At(i).Type(), qf))
	}
	b.WriteByte(')')
}
