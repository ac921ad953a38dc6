package hierarchy

// Path is one inheritance chain from a derived class to one of its ancestors,
// both ends included.
type Path []ClassID

// SkipPolicy decides how disagreeing derivation paths are combined when
// testing for a skipped intermediate override.
type SkipPolicy int

const (
	// SkipAny treats a call as skipping its direct parent if any path skips.
	SkipAny SkipPolicy = iota
	// SkipAll treats a call as skipping only if every path skips.
	SkipAll
)

func (p SkipPolicy) String() string {
	switch p {
	case SkipAny:
		return "any"
	case SkipAll:
		return "all"
	default:
		return "unknown"
	}
}

// ParseSkipPolicy parses "any" or "all".
func ParseSkipPolicy(s string) (SkipPolicy, bool) {
	switch s {
	case "any", "":
		return SkipAny, true
	case "all":
		return SkipAll, true
	default:
		return 0, false
	}
}

// Corresponding returns the declaration of sig in exactly class.
func (g *Graph) Corresponding(class ClassID, sig Signature) (MethodID, bool) {
	id, ok := g.classes[class].methods[sig]
	return id, ok
}

// Named returns the declarations in class named name.
func (g *Graph) Named(class ClassID, name string) []MethodID {
	return g.classes[class].byName[name]
}

// Ancestors returns every proper ancestor of class in breadth-first order,
// direct bases first, each class once.
func (g *Graph) Ancestors(class ClassID) []ClassID {
	seen := map[ClassID]bool{class: true}
	queue := append([]ClassID(nil), g.classes[class].Bases...)

	var out []ClassID
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		if seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
		queue = append(queue, g.classes[c].Bases...)
	}

	return out
}

// FindDeclaredAncestorMethod returns the nearest ancestor declaration of sig
// that has a body, searching outward from the direct bases of class.
func (g *Graph) FindDeclaredAncestorMethod(class ClassID, sig Signature) (MethodID, bool) {
	for _, c := range g.Ancestors(class) {
		if id, ok := g.classes[c].methods[sig]; ok && g.methods[id].HasBody {
			return id, true
		}
	}

	return NoMethod, false
}

// IsDerivedFrom reports whether base is a proper ancestor of derived.
func (g *Graph) IsDerivedFrom(derived, base ClassID) bool {
	for _, c := range g.Ancestors(derived) {
		if c == base {
			return true
		}
	}

	return false
}

// Overrides reports whether method replaces a virtual declaration inherited
// from some proper ancestor of its class.
func (g *Graph) Overrides(method MethodID) bool {
	m := &g.methods[method]
	for _, c := range g.Ancestors(m.Class) {
		if id, ok := g.classes[c].methods[m.Sig]; ok && g.methods[id].Virtual {
			return true
		}
	}

	return false
}

// DerivationPaths enumerates every inheritance chain from -> to, in base
// declaration order. The result is empty unless to is a proper ancestor.
func (g *Graph) DerivationPaths(from, to ClassID) []Path {
	if from == to {
		return nil
	}

	type frame struct {
		id   ClassID
		next int
	}

	var paths []Path
	stack := []frame{{id: from}}
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		bases := g.classes[top.id].Bases
		if top.next == len(bases) {
			stack = stack[:len(stack)-1]
			continue
		}

		base := bases[top.next]
		top.next++
		if base == to {
			p := make(Path, 0, len(stack)+1)
			for _, f := range stack {
				p = append(p, f.id)
			}
			paths = append(paths, append(p, to))
			continue
		}
		stack = append(stack, frame{id: base})
	}

	return paths
}

// skips reports whether an intermediate class on p declares an invocable
// implementation of sig.
func (g *Graph) skips(p Path, sig Signature) bool {
	if len(p) < 3 {
		return false
	}
	for _, c := range p[1 : len(p)-1] {
		if id, ok := g.classes[c].methods[sig]; ok && g.methods[id].HasBody {
			return true
		}
	}

	return false
}

// IsDirectCorrespondence reports whether a call from overriding to the
// implementation declared in target reaches the direct parent, i.e. no
// intermediate override is bypassed. Paths are combined according to policy.
func (g *Graph) IsDirectCorrespondence(overriding MethodID, target ClassID, policy SkipPolicy) bool {
	m := &g.methods[overriding]
	paths := g.DerivationPaths(m.Class, target)
	if len(paths) == 0 {
		return false
	}

	skipped := 0
	for _, p := range paths {
		if g.skips(p, m.Sig) {
			if policy == SkipAny {
				return false
			}
			skipped++
		}
	}

	return skipped < len(paths)
}

// ResolveByName resolves a call naming class explicitly, as in Q::name(...).
// The search starts at class and continues through its ancestors; within a
// class a declaration matching sig wins, then a sole declaration of name.
func (g *Graph) ResolveByName(class ClassID, name string, sig Signature) (MethodID, bool) {
	search := append([]ClassID{class}, g.Ancestors(class)...)
	for _, c := range search {
		if id, ok := g.Corresponding(c, sig); ok && sig.Name == name {
			return id, true
		}
		if named := g.Named(c, name); len(named) == 1 {
			return named[0], true
		} else if len(named) > 1 {
			// Overloads without a matching signature are ambiguous here.
			return NoMethod, false
		}
	}

	return NoMethod, false
}
