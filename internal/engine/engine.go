// Package engine runs the override call check over many methods at once and
// hands the resulting diagnostics to a Reporter in a stable order.
package engine

import (
	"context"
	"go/token"
	"io"
	"log/slog"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/mpyw/supercall/internal/classify"
	"github.com/mpyw/supercall/internal/hierarchy"
	"github.com/mpyw/supercall/internal/stmt"
)

// Subject is one overriding method supplied by a frontend.
type Subject struct {
	Method hierarchy.MethodID
	Name   string
	Pos    token.Pos
	Body   *stmt.Node
}

// Diagnostic is a finding for one Subject.
type Diagnostic struct {
	Pos     token.Pos
	Name    string
	Method  hierarchy.MethodID
	Outcome classify.Outcome
	Message string
}

// Reporter receives diagnostics.
type Reporter interface {
	Report(Diagnostic)
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(Diagnostic)

// Report calls f(d).
func (f ReporterFunc) Report(d Diagnostic) { f(d) }

// Observer is notified of every analysed subject, including those that
// produce no diagnostic. It may be nil.
type Observer interface {
	Observe(outcome classify.Outcome, inScope bool)
}

// Options configure Run.
type Options struct {
	Classify classify.Options
	// Workers bounds parallelism; <= 0 means GOMAXPROCS.
	Workers  int
	Logger   *slog.Logger
	Observer Observer
}

type result struct {
	outcome classify.Outcome
	inScope bool
}

// Run classifies every subject and reports diagnostics in subject order.
// If ctx is cancelled, queued subjects are dropped, nothing is reported and
// ctx.Err() is returned.
func Run(ctx context.Context, g *hierarchy.Graph, subjects []Subject, opts Options, reporter Reporter) error {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	results := make([]result, len(subjects))

	eg, ectx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)
	for i := range subjects {
		if ectx.Err() != nil {
			break
		}
		eg.Go(func() error {
			if err := ectx.Err(); err != nil {
				return err
			}
			outcome, ok := classify.Classify(g, subjects[i].Method, subjects[i].Body, opts.Classify)
			results[i] = result{outcome: outcome, inScope: ok}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	for i, s := range subjects {
		r := results[i]
		if opts.Observer != nil {
			opts.Observer.Observe(r.outcome, r.inScope)
		}
		if !r.inScope {
			logger.Debug("override out of scope", slog.String("method", s.Name))
			continue
		}
		if r.outcome == classify.DirectCall {
			continue
		}

		logger.Debug("override diagnostic",
			slog.String("method", s.Name),
			slog.String("outcome", r.outcome.String()))
		reporter.Report(Diagnostic{
			Pos:     s.Pos,
			Name:    s.Name,
			Method:  s.Method,
			Outcome: r.outcome,
			Message: r.outcome.Message(s.Name),
		})
	}

	return nil
}
