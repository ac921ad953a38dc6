// Package typespec provides type specification parsing and matching.
package typespec

import (
	"go/types"
	"strings"
)

// Spec holds parsed components of a type specification.
// Format: "pkg/path.Type". A trailing "*" in Type matches a name prefix,
// e.g. "google.golang.org/grpc/examples/helloworld.Unimplemented*".
type Spec struct {
	PkgPath  string
	TypeName string
}

// Parse parses a single type specification string into components.
func Parse(s string) Spec {
	lastDot := strings.LastIndex(s, ".")
	if lastDot == -1 {
		return Spec{TypeName: s}
	}

	return Spec{
		PkgPath:  s[:lastDot],
		TypeName: s[lastDot+1:],
	}
}

// ParseList parses a comma-separated list of specifications.
func ParseList(s string) []Spec {
	if s == "" {
		return nil
	}

	var specs []Spec

	for part := range strings.SplitSeq(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		specs = append(specs, Parse(part))
	}

	return specs
}

// Matches checks if a type name matches this specification.
// An empty PkgPath matches any package.
func (s Spec) Matches(obj *types.TypeName) bool {
	if obj == nil {
		return false
	}

	if s.PkgPath != "" {
		pkg := obj.Pkg()
		if pkg == nil || pkg.Path() != s.PkgPath {
			return false
		}
	}

	if prefix, ok := strings.CutSuffix(s.TypeName, "*"); ok {
		return strings.HasPrefix(obj.Name(), prefix)
	}

	return obj.Name() == s.TypeName
}

// MatchesAny checks if obj matches any of specs.
func MatchesAny(specs []Spec, obj *types.TypeName) bool {
	for _, s := range specs {
		if s.Matches(obj) {
			return true
		}
	}

	return false
}
