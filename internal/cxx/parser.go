// Package cxx extracts class hierarchies and method bodies from C++ sources
// using tree-sitter, for the override call check.
package cxx

import (
	"context"
	"fmt"
	"go/token"
	"io"
	"log/slog"
	"os"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/cpp"

	"github.com/mpyw/supercall/internal/stmt"
)

// File holds the declarations extracted from one source file.
type File struct {
	Name    string
	Classes []ClassDecl
	// Defs are out-of-line member definitions, Class::method(...) { ... }.
	Defs     []MethodDef
	Comments []Comment
}

// Comment is a source comment, kept for suppression directives.
type Comment struct {
	Line int
	Pos  token.Pos
	Text string
}

// ClassDecl is a class or struct definition.
type ClassDecl struct {
	Name    string
	Bases   []string
	Methods []MethodDecl
}

// MethodDecl is a member function declaration or inline definition.
type MethodDecl struct {
	Name     string
	Key      string
	Virtual  bool
	Override bool // override or final
	HasBody  bool
	Pos      token.Pos
	Body     *stmt.Node

	calls []pendingCall
}

// MethodDef is an out-of-line member function definition.
type MethodDef struct {
	Class string
	MethodDecl
}

// pendingCall is a qualified call whose target is resolved once the whole
// hierarchy is known.
type pendingCall struct {
	info      *stmt.CallInfo
	qualifier string
}

// Parser extracts declarations from C++ source files.
// It is safe for concurrent use.
type Parser struct {
	fset   *token.FileSet
	logger *slog.Logger
}

// NewParser creates a Parser recording file positions in fset.
func NewParser(fset *token.FileSet, logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Parser{fset: fset, logger: logger}
}

// ParseFile parses a single C++ file.
func (p *Parser) ParseFile(ctx context.Context, path string) (*File, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	return p.ParseSource(ctx, path, content)
}

// ParseSource parses C++ source held in memory; name is used for positions.
func (p *Parser) ParseSource(ctx context.Context, name string, src []byte) (*File, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(cpp.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		p.logger.Warn("syntax errors in source, results may be incomplete", slog.String("file", name))
	}

	tf := p.fset.AddFile(name, -1, len(src))
	tf.SetLinesForContent(src)

	e := &extractor{src: src, file: tf, out: &File{Name: name}}
	e.walk(root)
	e.comments(root)

	p.logger.Debug("parsed source",
		slog.String("file", name),
		slog.Int("classes", len(e.out.Classes)),
		slog.Int("out_of_line", len(e.out.Defs)))

	return e.out, nil
}

// extractor walks one syntax tree.
type extractor struct {
	src  []byte
	file *token.File
	out  *File
}

func (e *extractor) text(n *sitter.Node) string {
	return n.Content(e.src)
}

func (e *extractor) pos(n *sitter.Node) token.Pos {
	return e.file.Pos(int(n.StartByte()))
}

// walk finds class definitions and out-of-line member definitions at any
// namespace depth. Function bodies are not searched.
func (e *extractor) walk(n *sitter.Node) {
	switch n.Type() {
	case "class_specifier", "struct_specifier":
		e.class(n)
		return
	case "function_definition":
		e.outOfLine(n)
		return
	case "compound_statement":
		return
	}

	for i := range int(n.NamedChildCount()) {
		e.walk(n.NamedChild(i))
	}
}

func (e *extractor) comments(n *sitter.Node) {
	if n.Type() == "comment" {
		pos := e.pos(n)
		e.out.Comments = append(e.out.Comments, Comment{
			Line: e.file.Line(pos),
			Pos:  pos,
			Text: e.text(n),
		})
		return
	}
	for i := range int(n.NamedChildCount()) {
		e.comments(n.NamedChild(i))
	}
}

func (e *extractor) class(n *sitter.Node) {
	name := n.ChildByFieldName("name")
	body := n.ChildByFieldName("body")
	if name == nil || body == nil {
		return // forward declaration or anonymous
	}

	decl := ClassDecl{Name: lastSegment(e.text(name))}
	for i := range int(n.NamedChildCount()) {
		if c := n.NamedChild(i); c.Type() == "base_class_clause" {
			decl.Bases = e.bases(c)
		}
	}

	for i := range int(body.NamedChildCount()) {
		member := body.NamedChild(i)
		switch member.Type() {
		case "function_definition", "field_declaration", "declaration":
			if m, ok := e.member(member); ok && m.Name != decl.Name {
				decl.Methods = append(decl.Methods, m)
			}
		case "template_declaration":
			// Member templates cannot be virtual.
		default:
			// Nested classes.
			e.walk(member)
		}
	}

	e.out.Classes = append(e.out.Classes, decl)
}

func (e *extractor) bases(clause *sitter.Node) []string {
	var bases []string
	for i := range int(clause.NamedChildCount()) {
		c := clause.NamedChild(i)
		switch c.Type() {
		case "type_identifier", "qualified_identifier", "template_type", "qualified_type_identifier":
			bases = append(bases, lastSegment(e.text(c)))
		}
	}
	return bases
}

// member extracts a member function declaration or inline definition.
func (e *extractor) member(n *sitter.Node) (MethodDecl, bool) {
	fd := findFunctionDeclarator(n.ChildByFieldName("declarator"))
	if fd == nil {
		return MethodDecl{}, false
	}
	nameNode := innermostName(fd.ChildByFieldName("declarator"))
	if nameNode == nil || !isPlainName(nameNode) {
		return MethodDecl{}, false // destructors, operators
	}

	m := MethodDecl{
		Name:     e.text(nameNode),
		Key:      e.signatureKey(fd),
		Virtual:  hasVirtual(n),
		Override: e.hasOverride(fd),
		Pos:      e.pos(nameNode),
	}
	e.attachBody(&m, n)
	return m, true
}

func (e *extractor) outOfLine(n *sitter.Node) {
	fd := findFunctionDeclarator(n.ChildByFieldName("declarator"))
	if fd == nil {
		return
	}
	qualified := fd.ChildByFieldName("declarator")
	if qualified == nil || qualified.Type() != "qualified_identifier" {
		return // free function
	}

	segments := splitQualified(e.text(qualified))
	if len(segments) < 2 {
		return
	}
	nameNode := innermostName(qualified)
	if nameNode == nil || !isPlainName(nameNode) {
		return
	}

	if segments[len(segments)-1] == segments[len(segments)-2] {
		return // constructor
	}

	def := MethodDef{
		Class: segments[len(segments)-2],
		MethodDecl: MethodDecl{
			Name: segments[len(segments)-1],
			Key:  e.signatureKey(fd),
			Pos:  e.pos(nameNode),
		},
	}
	e.attachBody(&def.MethodDecl, n)
	if def.HasBody {
		e.out.Defs = append(e.out.Defs, def)
	}
}

func (e *extractor) attachBody(m *MethodDecl, n *sitter.Node) {
	body := n.ChildByFieldName("body")
	if body == nil || body.Type() != "compound_statement" {
		return
	}

	m.HasBody = true
	b := &bodyBuilder{e: e}
	m.Body = b.node(body)
	m.calls = b.calls
}

// findFunctionDeclarator unwraps pointer/reference declarators around a
// function declarator.
func findFunctionDeclarator(n *sitter.Node) *sitter.Node {
	for n != nil {
		if n.Type() == "function_declarator" {
			return n
		}
		next := n.ChildByFieldName("declarator")
		if next == nil {
			// reference_declarator has no field name on its inner declarator.
			for i := range int(n.NamedChildCount()) {
				if c := n.NamedChild(i); strings.HasSuffix(c.Type(), "declarator") {
					next = c
					break
				}
			}
		}
		n = next
	}
	return nil
}

// innermostName follows qualified identifiers to the final name.
func innermostName(n *sitter.Node) *sitter.Node {
	for n != nil && n.Type() == "qualified_identifier" {
		n = n.ChildByFieldName("name")
	}
	return n
}

func isPlainName(n *sitter.Node) bool {
	switch n.Type() {
	case "field_identifier", "identifier":
		return true
	}
	return false
}

func hasVirtual(n *sitter.Node) bool {
	for i := range int(n.ChildCount()) {
		switch n.Child(i).Type() {
		case "virtual", "virtual_function_specifier":
			return true
		}
	}
	return false
}

func (e *extractor) hasOverride(fd *sitter.Node) bool {
	for i := range int(fd.ChildCount()) {
		c := fd.Child(i)
		if c.Type() == "virtual_specifier" {
			return true
		}
	}
	return false
}

// signatureKey renders parameter types and trailing qualifiers.
func (e *extractor) signatureKey(fd *sitter.Node) string {
	var params []string
	if list := fd.ChildByFieldName("parameters"); list != nil {
		for i := range int(list.NamedChildCount()) {
			if p := e.parameterType(list.NamedChild(i)); p != "" {
				params = append(params, p)
			}
		}
	}
	if len(params) == 1 && params[0] == "void" {
		params = nil
	}

	var quals []string
	for i := range int(fd.NamedChildCount()) {
		c := fd.NamedChild(i)
		switch c.Type() {
		case "type_qualifier", "ref_qualifier":
			quals = append(quals, e.text(c))
		}
	}

	key := "(" + strings.Join(params, ",") + ")"
	if len(quals) > 0 {
		key += " " + strings.Join(quals, " ")
	}
	return key
}

// parameterType renders a parameter without its name and default value.
func (e *extractor) parameterType(p *sitter.Node) string {
	switch p.Type() {
	case "comment":
		return ""
	case "variadic_parameter":
		return "..."
	}

	start, end := p.StartByte(), p.EndByte()
	if def := p.ChildByFieldName("default_value"); def != nil {
		end = def.StartByte()
	}

	var name *sitter.Node
	if d := p.ChildByFieldName("declarator"); d != nil {
		name = findIdentifier(d)
	}

	var b strings.Builder
	if name != nil {
		b.Write(e.src[start:name.StartByte()])
		b.Write(e.src[name.EndByte():end])
	} else {
		b.Write(e.src[start:end])
	}

	return normalizeType(b.String())
}

func findIdentifier(n *sitter.Node) *sitter.Node {
	if n.Type() == "identifier" {
		return n
	}
	for i := range int(n.NamedChildCount()) {
		c := n.NamedChild(i)
		if c.Type() == "parameter_list" {
			continue
		}
		if id := findIdentifier(c); id != nil {
			return id
		}
	}
	return nil
}

// normalizeType collapses whitespace so that "const Foo &", "const Foo&" and
// "const  Foo &" compare equal.
func normalizeType(s string) string {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "="))
	fields := strings.Fields(s)
	s = strings.Join(fields, " ")
	for _, punct := range []string{"*", "&", ",", "<", ">", "(", ")", "[", "]", "::"} {
		s = strings.ReplaceAll(s, " "+punct, punct)
		s = strings.ReplaceAll(s, punct+" ", punct)
	}
	return s
}

// splitQualified splits "ns::Class<T>::name" into {"ns", "Class", "name"}.
func splitQualified(s string) []string {
	parts := strings.Split(stripTemplateArgs(s), "::")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(p), "template "))
	}
	return parts
}

func lastSegment(s string) string {
	parts := splitQualified(s)
	return parts[len(parts)-1]
}

// stripTemplateArgs drops every <...> group, nested ones included.
func stripTemplateArgs(s string) string {
	var b strings.Builder
	depth := 0
	for _, r := range s {
		switch {
		case r == '<':
			depth++
		case r == '>' && depth > 0:
			depth--
		case depth == 0:
			b.WriteRune(r)
		}
	}
	return b.String()
}
