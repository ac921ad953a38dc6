package cxx

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/mpyw/supercall/internal/engine"
	"github.com/mpyw/supercall/internal/hierarchy"
)

// Unit collects parsed files that share one class hierarchy.
type Unit struct {
	files  []*File
	logger *slog.Logger
}

// NewUnit creates an empty Unit.
func NewUnit(logger *slog.Logger) *Unit {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Unit{logger: logger}
}

// Add appends a parsed file. Classes are numbered in the order files are added.
func (u *Unit) Add(f *File) {
	u.files = append(u.files, f)
}

// Program is a resolved hierarchy and the method bodies to check against it.
type Program struct {
	Graph    *hierarchy.Graph
	Subjects []engine.Subject
}

type bodied struct {
	id   hierarchy.MethodID
	decl *MethodDecl
}

// Build merges the files into one hierarchy, resolves qualified calls, and
// selects every overriding method with a body.
func (u *Unit) Build() (*Program, error) {
	b := hierarchy.NewBuilder()
	classes := make(map[string]hierarchy.ClassID)

	classOf := func(name string) hierarchy.ClassID {
		if id, ok := classes[name]; ok {
			return id
		}
		id := b.AddClass(name)
		classes[name] = id
		return id
	}

	for _, f := range u.files {
		for i := range f.Classes {
			classOf(f.Classes[i].Name)
		}
	}

	var bodies []bodied
	for _, f := range u.files {
		for i := range f.Classes {
			c := &f.Classes[i]
			id := classes[c.Name]
			for _, base := range c.Bases {
				bid, ok := classes[base]
				if !ok {
					u.logger.Debug("base class not defined in inputs",
						slog.String("class", c.Name), slog.String("base", base))
					continue
				}
				b.AddBase(id, bid)
			}
			for j := range c.Methods {
				m := &c.Methods[j]
				mid := b.AddMethod(id, hierarchy.Signature{Name: m.Name, Key: m.Key}, m.HasBody, m.Virtual || m.Override)
				if m.HasBody {
					bodies = append(bodies, bodied{id: mid, decl: m})
				}
			}
		}
	}

	for _, f := range u.files {
		for i := range f.Defs {
			d := &f.Defs[i]
			id, ok := classes[d.Class]
			if !ok {
				u.logger.Debug("out-of-line definition for unknown class",
					slog.String("class", d.Class), slog.String("method", d.Name))
				continue
			}
			mid := b.AddMethod(id, hierarchy.Signature{Name: d.Name, Key: d.Key}, true, false)
			bodies = append(bodies, bodied{id: mid, decl: &d.MethodDecl})
		}
	}

	g, err := b.Build()
	if err != nil {
		return nil, fmt.Errorf("build class hierarchy: %w", err)
	}

	prog := &Program{Graph: g}
	for _, bd := range bodies {
		owner := g.Method(bd.id)
		for _, pc := range bd.decl.calls {
			cid, ok := classes[pc.qualifier]
			if !ok {
				continue
			}
			if target, ok := g.ResolveByName(cid, pc.info.Name, owner.Sig); ok {
				pc.info.Target = target
			}
		}

		if !g.Overrides(bd.id) {
			continue
		}
		prog.Subjects = append(prog.Subjects, engine.Subject{
			Method: bd.id,
			Name:   bd.decl.Name,
			Pos:    bd.decl.Pos,
			Body:   bd.decl.Body,
		})
	}

	return prog, nil
}
