// Package classify turns a scan result into one of the override call outcomes.
package classify

import (
	"fmt"

	"github.com/mpyw/supercall/internal/hierarchy"
	"github.com/mpyw/supercall/internal/scan"
	"github.com/mpyw/supercall/internal/stmt"
)

// Outcome is the terminal state of analysing one overriding method.
type Outcome int

const (
	// DirectCall means the direct parent implementation is always called.
	DirectCall Outcome = iota
	// Missing means no ancestor implementation is called.
	Missing
	// ConditionalCall means the parent call only happens inside a branch.
	ConditionalCall
	// SkippedAncestor means an implementation further up is called,
	// bypassing an intermediate override.
	SkippedAncestor
)

func (o Outcome) String() string {
	switch o {
	case DirectCall:
		return "direct"
	case Missing:
		return "missing"
	case ConditionalCall:
		return "conditional"
	case SkippedAncestor:
		return "skipped"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// Outcomes lists every outcome that produces a diagnostic.
func Outcomes() []Outcome {
	return []Outcome{Missing, ConditionalCall, SkippedAncestor}
}

// Message renders the diagnostic for o, or "" for DirectCall.
func (o Outcome) Message(name string) string {
	switch o {
	case Missing:
		return "virtual override function " + name + " is not calling parent implementation."
	case ConditionalCall:
		return "virtual override function " + name + " is not calling parent implementation unconditionally."
	case SkippedAncestor:
		return "virtual override function " + name + " is not calling direct parent implementation."
	default:
		return ""
	}
}

// Mode selects the outcome set.
type Mode int

const (
	// ModeFull distinguishes all four outcomes.
	ModeFull Mode = iota
	// ModeSimple folds SkippedAncestor into DirectCall.
	ModeSimple
)

func (m Mode) String() string {
	if m == ModeSimple {
		return "simple"
	}
	return "full"
}

// ParseMode parses "full" or "simple".
func ParseMode(s string) (Mode, bool) {
	switch s {
	case "full", "":
		return ModeFull, true
	case "simple":
		return ModeSimple, true
	default:
		return 0, false
	}
}

// Options tune classification.
type Options struct {
	Mode       Mode
	SkipPolicy hierarchy.SkipPolicy
}

// Classify analyses one overriding method. It returns false when the method
// is out of scope: it has no name, or no ancestor provides an implementation
// to call.
func Classify(g *hierarchy.Graph, method hierarchy.MethodID, body *stmt.Node, opts Options) (Outcome, bool) {
	m := g.Method(method)
	if m.Sig.Name == "" {
		return DirectCall, false
	}
	if _, ok := g.FindDeclaredAncestorMethod(m.Class, m.Sig); !ok {
		return DirectCall, false
	}

	return Decide(g, method, scan.Scan(g, method, body), opts), true
}

// Decide maps a scan result to an outcome.
func Decide(g *hierarchy.Graph, method hierarchy.MethodID, res scan.Result, opts Options) Outcome {
	switch {
	case !res.Found:
		return Missing
	case res.Conditional:
		return ConditionalCall
	case opts.Mode == ModeSimple:
		return DirectCall
	case !g.IsDirectCorrespondence(method, res.TargetClass, opts.SkipPolicy):
		return SkippedAncestor
	default:
		return DirectCall
	}
}
