package cxx

import (
	"context"
	"fmt"
	"go/token"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpyw/supercall/internal/classify"
	"github.com/mpyw/supercall/internal/engine"
	"github.com/mpyw/supercall/internal/hierarchy"
)

// check parses the sources as one unit and returns "file:line: message" lines.
func check(t *testing.T, opts classify.Options, sources ...string) []string {
	t.Helper()

	fset := token.NewFileSet()
	p := NewParser(fset, nil)
	u := NewUnit(nil)
	for i, src := range sources {
		f, err := p.ParseSource(context.Background(), fmt.Sprintf("f%d.cpp", i), []byte(src))
		require.NoError(t, err)
		u.Add(f)
	}

	prog, err := u.Build()
	require.NoError(t, err)

	var got []string
	err = engine.Run(context.Background(), prog.Graph, prog.Subjects, engine.Options{Classify: opts},
		engine.ReporterFunc(func(d engine.Diagnostic) {
			pos := fset.Position(d.Pos)
			got = append(got, fmt.Sprintf("%s:%d: %s", pos.Filename, pos.Line, d.Message))
		}))
	require.NoError(t, err)
	return got
}

const shape = `class Shape {
public:
    virtual void draw() { }
};
`

func TestShapeCircle(t *testing.T) {
	tests := []struct {
		name string
		body string
		want []string
	}{
		{
			name: "unconditional",
			body: `Shape::draw(); render();`,
		},
		{
			name: "missing",
			body: `render();`,
			want: []string{"f0.cpp:7: virtual override function draw is not calling parent implementation."},
		},
		{
			name: "conditional",
			body: `if (visible) { Shape::draw(); }`,
			want: []string{"f0.cpp:7: virtual override function draw is not calling parent implementation unconditionally."},
		},
		{
			name: "unrelated call in condition",
			body: `if (ready()) { render(); } Shape::draw();`,
		},
		{
			name: "switch arm",
			body: `switch (mode) { case 1: Shape::draw(); break; }`,
			want: []string{"f0.cpp:7: virtual override function draw is not calling parent implementation unconditionally."},
		},
		{
			name: "call as argument",
			body: `log(Shape::draw());`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := shape + `class Circle : public Shape {
public:
    void draw() override { ` + tt.body + ` }
};
`
			got := check(t, classify.Options{}, src)
			assert.Equal(t, tt.want, got)
		})
	}
}

const gauge = `class Gauge {
public:
    virtual bool ok() { return true; }
};
`

func TestBranchConditions(t *testing.T) {
	const unconditionally = "f0.cpp:6: virtual override function ok is not calling parent implementation unconditionally."

	tests := []struct {
		name string
		body string
		want []string
	}{
		{
			name: "if condition",
			body: `if (Gauge::ok()) { render(); } return true;`,
			want: []string{unconditionally},
		},
		{
			name: "if condition through this",
			body: `if (!this->Gauge::ok()) { return false; } return true;`,
			want: []string{unconditionally},
		},
		{
			name: "switch condition",
			body: `switch (Gauge::ok()) { case true: break; } return true;`,
			want: []string{unconditionally},
		},
		{
			name: "ternary",
			body: `return visible ? Gauge::ok() : false;`,
		},
		{
			name: "ternary inside if",
			body: `if (visible) { return visible ? Gauge::ok() : false; } return true;`,
			want: []string{unconditionally},
		},
		{
			name: "dereferenced this",
			body: `return (*this).Gauge::ok();`,
		},
		{
			name: "loop",
			body: `for (;;) { return Gauge::ok(); }`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := gauge + `class Dial : public Gauge {
    bool ok() override { ` + tt.body + ` }
    bool visible;
};
`
			got := check(t, classify.Options{}, src)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDeeplyNestedBody(t *testing.T) {
	const depth = 2000

	tests := []struct {
		name  string
		inner string
		want  []string
	}{
		{
			name:  "blocks",
			inner: `Shape::draw();`,
		},
		{
			name:  "innermost if",
			inner: `if (visible) { Shape::draw(); }`,
			want:  []string{"f0.cpp:7: virtual override function draw is not calling parent implementation unconditionally."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := strings.Repeat("{ ", depth) + tt.inner + strings.Repeat(" }", depth)
			src := shape + `class Circle : public Shape {
public:
    void draw() override { ` + body + ` }
    bool visible;
};
`
			got := check(t, classify.Options{}, src)
			assert.Equal(t, tt.want, got)
		})
	}
}

const diamond = `struct A { virtual void m(); };
struct B1 : A { void m() override; };
struct B2 : A {};
struct D : B1, B2 { void m() override; };

void A::m() {}
void B1::m() { A::m(); }
`

func TestDiamond(t *testing.T) {
	tests := []struct {
		name string
		body string
		opts classify.Options
		want []string
	}{
		{
			name: "direct parent",
			body: `B1::m();`,
		},
		{
			name: "grandparent skips B1",
			body: `A::m();`,
			want: []string{"f0.cpp:8: virtual override function m is not calling direct parent implementation."},
		},
		{
			name: "grandparent, all-paths policy",
			body: `A::m();`,
			opts: classify.Options{SkipPolicy: hierarchy.SkipAll},
		},
		{
			name: "grandparent, simple mode",
			body: `A::m();`,
			opts: classify.Options{Mode: classify.ModeSimple},
		},
		{
			name: "none",
			body: ``,
			want: []string{"f0.cpp:8: virtual override function m is not calling parent implementation."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := check(t, tt.opts, diamond+"void D::m() { "+tt.body+" }\n")
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOutOfLineAcrossFiles(t *testing.T) {
	header := `namespace gfx {
class Shape {
public:
    virtual ~Shape();
    virtual void draw(int depth) const = 0;
    virtual void fill(int depth) const;
};
class Circle : public Shape {
public:
    void fill(int depth) const override;
};
}
`
	impl := `namespace gfx {
void Shape::fill(int) const {}
void Circle::fill(int d) const {
    if (d > 0) {
        Shape::fill(d);
    }
}
}
`
	got := check(t, classify.Options{}, header, impl)
	assert.Equal(t, []string{"f1.cpp:3: virtual override function fill is not calling parent implementation unconditionally."}, got)
}

func TestPureVirtualBaseOutOfScope(t *testing.T) {
	src := `class Shape {
public:
    virtual void draw() = 0;
};
class Circle : public Shape {
public:
    void draw() override {}
};
`
	assert.Empty(t, check(t, classify.Options{}, src))
}

func TestNonVirtualHidingOutOfScope(t *testing.T) {
	src := `class Shape {
public:
    void draw() {}
};
class Circle : public Shape {
public:
    void draw() {}
};
`
	assert.Empty(t, check(t, classify.Options{}, src))
}

func TestParseSourceExtractsDeclarations(t *testing.T) {
	src := `class Base {
public:
    virtual void set(const std::string & name, int x = 3);
};
class Derived final : public Base, protected Other {
public:
    void set(const std::string&, int) override { }
    Derived() {}
};
`
	p := NewParser(token.NewFileSet(), nil)
	f, err := p.ParseSource(context.Background(), "decls.cpp", []byte(src))
	require.NoError(t, err)
	require.Len(t, f.Classes, 2)

	base := f.Classes[0]
	assert.Equal(t, "Base", base.Name)
	require.Len(t, base.Methods, 1)
	assert.Equal(t, "set", base.Methods[0].Name)
	assert.Equal(t, "(const std::string&,int)", base.Methods[0].Key)
	assert.True(t, base.Methods[0].Virtual)
	assert.False(t, base.Methods[0].HasBody)

	derived := f.Classes[1]
	assert.Equal(t, "Derived", derived.Name)
	assert.Equal(t, []string{"Base", "Other"}, derived.Bases)
	require.Len(t, derived.Methods, 1)
	assert.Equal(t, base.Methods[0].Key, derived.Methods[0].Key)
	assert.True(t, derived.Methods[0].Override)
	assert.True(t, derived.Methods[0].HasBody)
}

func TestBuildRejectsCyclicBases(t *testing.T) {
	src := `struct X : Y { };
struct Y : X { };
`
	p := NewParser(token.NewFileSet(), nil)
	f, err := p.ParseSource(context.Background(), "cycle.cpp", []byte(src))
	require.NoError(t, err)

	u := NewUnit(nil)
	u.Add(f)
	_, err = u.Build()
	require.ErrorIs(t, err, hierarchy.ErrCycle)
}

func TestParseSourceCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := NewParser(token.NewFileSet(), nil)
	_, err := p.ParseSource(ctx, "x.cpp", []byte(shape))
	require.ErrorIs(t, err, context.Canceled)
}

func TestSplitQualified(t *testing.T) {
	assert.Equal(t, []string{"ns", "Base", "m"}, splitQualified("ns::Base<std::map<int, int>>::m"))
	assert.Equal(t, "Shape", lastSegment("gfx::Shape"))
}
