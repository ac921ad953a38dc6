// Package ignore handles supercall:ignore directives.
//
// A directive suppresses diagnostics reported on its own line or on the line
// below it. It may name the outcomes it suppresses and carry a reason:
//
//	//supercall:ignore
//	//supercall:ignore conditional
//	//supercall:ignore missing,skipped - base is a no-op
//
// The same syntax works in C++ line and block comments.
package ignore

import (
	"go/ast"
	"go/token"
	"slices"
	"strings"

	"github.com/mpyw/supercall/internal/classify"
)

const directive = "supercall:ignore"

// CheckerName names a diagnostic outcome that can be suppressed.
type CheckerName string

const (
	Missing     CheckerName = "missing"
	Conditional CheckerName = "conditional"
	Skipped     CheckerName = "skipped"
)

// AllCheckerNames returns all valid checker names.
func AllCheckerNames() []CheckerName {
	return []CheckerName{Missing, Conditional, Skipped}
}

// ForOutcome maps a diagnostic outcome to its checker name.
func ForOutcome(o classify.Outcome) CheckerName {
	switch o {
	case classify.ConditionalCall:
		return Conditional
	case classify.SkippedAncestor:
		return Skipped
	default:
		return Missing
	}
}

// EnabledCheckers tracks which checkers are currently enabled.
type EnabledCheckers map[CheckerName]bool

// entry is one directive. An empty names list suppresses everything.
type entry struct {
	pos   token.Pos
	names []CheckerName
	used  map[CheckerName]bool
}

func (e *entry) covers(name CheckerName) bool {
	return len(e.names) == 0 || slices.Contains(e.names, name)
}

// Map holds the directives of one file by line.
type Map map[int]*entry

// Build collects the directives in the comments of a Go file.
func Build(fset *token.FileSet, file *ast.File) Map {
	m := make(Map)
	for _, cg := range file.Comments {
		for _, c := range cg.List {
			m.Add(fset.Position(c.Slash).Line, c.Slash, c.Text)
		}
	}
	return m
}

// Add records comment text found at pos on line if it is a directive.
// It reports whether it was one.
func (m Map) Add(line int, pos token.Pos, text string) bool {
	names, ok := parseIgnoreComment(text)
	if !ok {
		return false
	}
	m[line] = &entry{pos: pos, names: names, used: make(map[CheckerName]bool)}
	return true
}

// parseIgnoreComment extracts the checker names of a directive. A nil slice
// means every checker. Anything after " - " or "//" is a free-form reason.
func parseIgnoreComment(text string) ([]CheckerName, bool) {
	text = strings.TrimSpace(text)
	switch {
	case strings.HasPrefix(text, "//"):
		text = text[2:]
	case strings.HasPrefix(text, "/*"):
		text = strings.TrimSuffix(text[2:], "*/")
	}

	rest, ok := strings.CutPrefix(strings.TrimSpace(text), directive)
	if !ok {
		return nil, false
	}
	// "supercall:ignorefoo" is not a directive.
	if rest != "" && rest[0] != ' ' && rest[0] != '\t' {
		return nil, false
	}

	rest, _, _ = strings.Cut(rest, "//")
	rest = " " + strings.TrimSpace(rest)
	rest, _, _ = strings.Cut(rest, " -")

	var names []CheckerName
	for _, field := range strings.FieldsFunc(rest, func(r rune) bool { return r == ',' || r == ' ' }) {
		names = append(names, CheckerName(field))
	}
	return names, true
}

// ShouldIgnore reports whether a diagnostic of checker on line is suppressed
// by a directive on that line or the one above, and marks the directive used.
func (m Map) ShouldIgnore(line int, checker CheckerName) bool {
	for _, l := range []int{line, line - 1} {
		if e := m[l]; e != nil && e.covers(checker) {
			e.used[checker] = true
			return true
		}
	}
	return false
}

// UnusedIgnore is a directive, or the part of it, that suppressed nothing.
type UnusedIgnore struct {
	Pos token.Pos
	// Checkers lists unused names; empty when the whole directive is unused.
	Checkers []CheckerName
}

// Unused returns the directives that suppressed nothing, in source order.
// Names of disabled checkers are always reported.
func (m Map) Unused(enabled EnabledCheckers) []UnusedIgnore {
	var out []UnusedIgnore

	for _, e := range m {
		if len(e.names) == 0 {
			used := false
			for name := range enabled {
				used = used || e.used[name]
			}
			if !used {
				out = append(out, UnusedIgnore{Pos: e.pos})
			}
			continue
		}

		var names []CheckerName
		for _, name := range e.names {
			if !enabled[name] || !e.used[name] {
				names = append(names, name)
			}
		}
		if len(names) > 0 {
			out = append(out, UnusedIgnore{Pos: e.pos, Checkers: names})
		}
	}

	slices.SortFunc(out, func(a, b UnusedIgnore) int { return int(a.Pos) - int(b.Pos) })
	return out
}

// Message renders the diagnostic text for u.
func (u UnusedIgnore) Message() string {
	if len(u.Checkers) == 0 {
		return "unused " + directive + " directive"
	}

	names := make([]string, len(u.Checkers))
	for i, c := range u.Checkers {
		names[i] = string(c)
	}
	return "unused " + directive + " directive for checker(s): " + strings.Join(names, ", ")
}
