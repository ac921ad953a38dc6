// Package supercall provides a go/analysis based analyzer that checks
// overriding methods call the implementation they override.
//
// A method declared on a struct shadows the method of the same signature
// promoted from an embedded type. supercall expects such an override to
// extend the embedded implementation rather than silently replace it:
//
//	func (c *Circle) Draw() {
//	    c.Shape.Draw() // parent implementation, called unconditionally
//	    c.render()
//	}
package supercall

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"go/ast"
	"go/types"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/passes/inspect"
	"golang.org/x/tools/go/ast/inspector"

	"github.com/mpyw/supercall/internal/classify"
	"github.com/mpyw/supercall/internal/directives/ignore"
	"github.com/mpyw/supercall/internal/engine"
	"github.com/mpyw/supercall/internal/gofront"
	"github.com/mpyw/supercall/internal/hierarchy"
	"github.com/mpyw/supercall/internal/typespec"
)

// Flags for the analyzer.
var (
	mode        string
	skipPolicy  string
	exemptBases string

	// Outcome enable/disable flags (all enabled by default).
	enableMissing     bool
	enableConditional bool
	enableSkipped     bool
)

func init() {
	Analyzer.Flags.StringVar(&mode, "mode", "full",
		"outcome set: full (missing, conditional, skipped) or simple (skipped ancestors are accepted)")
	Analyzer.Flags.StringVar(&skipPolicy, "skip-policy", "any",
		"with several embedding paths to the called implementation, report skipped if any (or all) paths bypass an override")
	Analyzer.Flags.StringVar(&exemptBases, "exempt-bases", "",
		"comma-separated list of embedded types whose methods need not be called (e.g., pkg/path.Type or pkg/path.Unimplemented*)")

	Analyzer.Flags.BoolVar(&enableMissing, "missing", true, "report overrides that never call the parent implementation")
	Analyzer.Flags.BoolVar(&enableConditional, "conditional", true, "report overrides that call the parent implementation only conditionally")
	Analyzer.Flags.BoolVar(&enableSkipped, "skipped", true, "report overrides that bypass the direct parent implementation")
}

// Analyzer is the main analyzer for supercall.
var Analyzer = &analysis.Analyzer{
	Name:     "supercall",
	Doc:      "checks that overriding methods call the implementation of the embedded type they shadow",
	Requires: []*analysis.Analyzer{inspect.Analyzer},
	Run:      run,
	Flags:    flag.FlagSet{},
}

var (
	// ErrNoInspector is returned when the inspect pass result is missing.
	ErrNoInspector = errors.New("inspector analyzer result not found")
	// ErrInvalidMode is returned for a -mode value other than full or simple.
	ErrInvalidMode = errors.New("invalid -mode")
	// ErrInvalidSkipPolicy is returned for a -skip-policy value other than any or all.
	ErrInvalidSkipPolicy = errors.New("invalid -skip-policy")
)

func run(pass *analysis.Pass) (any, error) {
	insp, ok := pass.ResultOf[inspect.Analyzer].(*inspector.Inspector)
	if !ok {
		return nil, ErrNoInspector
	}

	opts, err := parseOptions()
	if err != nil {
		return nil, err
	}

	// Build set of files to skip
	skipFiles := buildSkipFiles(pass)

	// Build ignore maps for each file (excluding skipped files)
	ignoreMaps := buildIgnoreMaps(pass, skipFiles)

	exempt := typespec.ParseList(exemptBases)

	prog, err := gofront.Load(pass.Pkg, pass.TypesInfo, insp, gofront.Options{
		Skip: func(f *ast.File) bool {
			return skipFiles[pass.Fset.Position(f.Pos()).Filename]
		},
		Exempt: func(obj *types.TypeName) bool {
			return typespec.MatchesAny(exempt, obj)
		},
	})
	if err != nil {
		return nil, err
	}

	enabled := buildEnabledCheckers()

	reporter := engine.ReporterFunc(func(d engine.Diagnostic) {
		name := ignore.ForOutcome(d.Outcome)
		if !enabled[name] {
			return
		}

		position := pass.Fset.Position(d.Pos)
		if m, ok := ignoreMaps[position.Filename]; ok && m.ShouldIgnore(position.Line, name) {
			return
		}

		pass.Reportf(d.Pos, "%s", d.Message)
	})

	// Packages are already analysed concurrently by the driver.
	err = engine.Run(context.Background(), prog.Graph, prog.Subjects, engine.Options{
		Classify: opts,
		Workers:  1,
	}, reporter)
	if err != nil {
		return nil, err
	}

	// Report unused ignore directives
	reportUnusedIgnores(pass, ignoreMaps, enabled)

	return nil, nil
}

func parseOptions() (classify.Options, error) {
	m, ok := classify.ParseMode(mode)
	if !ok {
		return classify.Options{}, fmt.Errorf("%w: %q", ErrInvalidMode, mode)
	}

	p, ok := hierarchy.ParseSkipPolicy(skipPolicy)
	if !ok {
		return classify.Options{}, fmt.Errorf("%w: %q", ErrInvalidSkipPolicy, skipPolicy)
	}

	return classify.Options{Mode: m, SkipPolicy: p}, nil
}

// buildSkipFiles creates a set of filenames to skip.
// Generated files are always skipped.
// Test files can be skipped via the driver's built-in -test flag.
func buildSkipFiles(pass *analysis.Pass) map[string]bool {
	skipFiles := make(map[string]bool)

	for _, file := range pass.Files {
		filename := pass.Fset.Position(file.Pos()).Filename

		// Always skip generated files
		if ast.IsGenerated(file) {
			skipFiles[filename] = true
		}
	}

	return skipFiles
}

// buildIgnoreMaps creates ignore maps for each file in the pass.
func buildIgnoreMaps(pass *analysis.Pass, skipFiles map[string]bool) map[string]ignore.Map {
	ignoreMaps := make(map[string]ignore.Map)

	for _, file := range pass.Files {
		filename := pass.Fset.Position(file.Pos()).Filename
		if skipFiles[filename] {
			continue
		}
		ignoreMaps[filename] = ignore.Build(pass.Fset, file)
	}

	return ignoreMaps
}

// buildEnabledCheckers creates a map of which checkers are enabled.
func buildEnabledCheckers() ignore.EnabledCheckers {
	enabled := make(ignore.EnabledCheckers)

	if enableMissing {
		enabled[ignore.Missing] = true
	}

	if enableConditional {
		enabled[ignore.Conditional] = true
	}

	// Simple mode never produces skipped diagnostics.
	if enableSkipped && mode != classify.ModeSimple.String() {
		enabled[ignore.Skipped] = true
	}

	return enabled
}

// reportUnusedIgnores reports any ignore directives that were not used.
func reportUnusedIgnores(pass *analysis.Pass, ignoreMaps map[string]ignore.Map, enabled ignore.EnabledCheckers) {
	for _, ignoreMap := range ignoreMaps {
		for _, unused := range ignoreMap.Unused(enabled) {
			pass.Reportf(unused.Pos, "%s", unused.Message())
		}
	}
}
