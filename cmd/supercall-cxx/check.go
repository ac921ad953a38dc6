package main

import (
	"context"
	"fmt"
	"go/token"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/mpyw/supercall/internal/classify"
	"github.com/mpyw/supercall/internal/config"
	"github.com/mpyw/supercall/internal/cxx"
	"github.com/mpyw/supercall/internal/directives/ignore"
	"github.com/mpyw/supercall/internal/engine"
	"github.com/mpyw/supercall/internal/metrics"
)

type checkFlags struct {
	configPath  string
	mode        string
	skipPolicy  string
	jobs        int
	logLevel    string
	metricsPath string
}

func checkCmd() *cobra.Command {
	var f checkFlags

	cmd := &cobra.Command{
		Use:   "check [paths...]",
		Short: "Check C++ files and directories",
		Long: `Check parses every matching file under the given paths (default ".") as one
program and prints one line per finding:

  file:line:col: virtual override function NAME is not calling parent implementation.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				args = []string{"."}
			}

			cfg, err := f.resolve(cmd)
			if err != nil {
				return err
			}

			logger := newLogger(cmd.ErrOrStderr(), f.logLevel)
			return runCheck(cmd.Context(), cfg, args, f.metricsPath, cmd.OutOrStdout(), logger)
		},
	}

	cmd.Flags().StringVarP(&f.configPath, "config", "c", "", "Config file path (YAML)")
	cmd.Flags().StringVar(&f.mode, "mode", "full", "Outcome set (full, simple)")
	cmd.Flags().StringVar(&f.skipPolicy, "skip-policy", "any", "Report skipped ancestors when any or all derivation paths skip (any, all)")
	cmd.Flags().IntVarP(&f.jobs, "jobs", "j", 0, "Parallel workers (0 = GOMAXPROCS)")
	cmd.Flags().StringVar(&f.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	cmd.Flags().StringVar(&f.metricsPath, "metrics-textfile", "", "Write outcome counters to this file in Prometheus text format")

	return cmd
}

// resolve loads the config file, if any, and overlays explicitly set flags.
func (f *checkFlags) resolve(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if f.configPath != "" {
		loaded, err := config.LoadFromFile(f.configPath)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("mode") {
		cfg.Mode = f.mode
	}
	if flags.Changed("skip-policy") {
		cfg.SkipPolicy = f.skipPolicy
	}
	if flags.Changed("jobs") {
		cfg.Workers = f.jobs
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(w io.Writer, logLevel string) *slog.Logger {
	level := slog.LevelWarn
	switch strings.ToLower(logLevel) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "error":
		level = slog.LevelError
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func runCheck(ctx context.Context, cfg *config.Config, paths []string, metricsPath string, stdout io.Writer, logger *slog.Logger) error {
	files, err := collectFiles(cfg, paths)
	if err != nil {
		return err
	}
	logger.Info("checking files", slog.Int("files", len(files)), slog.Int("jobs", cfg.Jobs()))

	recorder := metrics.NewRecorder()
	fset := token.NewFileSet()
	parser := cxx.NewParser(fset, logger)

	parsed := make([]*cxx.File, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Jobs())
	for i, path := range files {
		g.Go(func() error {
			f, err := parser.ParseFile(gctx, path)
			recorder.FileParsed(err == nil)
			if err != nil {
				return err
			}
			parsed[i] = f
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	unit := cxx.NewUnit(logger)
	for _, f := range parsed {
		unit.Add(f)
	}
	prog, err := unit.Build()
	if err != nil {
		return err
	}

	ignoreMaps := make(map[string]ignore.Map, len(parsed))
	for _, f := range parsed {
		m := make(ignore.Map)
		for _, c := range f.Comments {
			m.Add(c.Line, c.Pos, c.Text)
		}
		ignoreMaps[f.Name] = m
	}

	var findings int
	emit := func(p token.Pos, msg string) {
		findings++
		pos := fset.Position(p)
		_, _ = fmt.Fprintf(stdout, "%s:%d:%d: %s\n", pos.Filename, pos.Line, pos.Column, msg)
	}

	opts := cfg.Options()
	err = engine.Run(ctx, prog.Graph, prog.Subjects, engine.Options{
		Classify: opts,
		Workers:  cfg.Jobs(),
		Logger:   logger,
		Observer: recorder,
	}, engine.ReporterFunc(func(d engine.Diagnostic) {
		pos := fset.Position(d.Pos)
		if ignoreMaps[pos.Filename].ShouldIgnore(pos.Line, ignore.ForOutcome(d.Outcome)) {
			logger.Debug("diagnostic suppressed", slog.String("file", pos.Filename), slog.Int("line", pos.Line))
			return
		}
		emit(d.Pos, d.Message)
	}))
	if err != nil {
		return err
	}

	enabled := ignore.EnabledCheckers{ignore.Missing: true, ignore.Conditional: true}
	if opts.Mode != classify.ModeSimple {
		enabled[ignore.Skipped] = true
	}
	for _, f := range parsed {
		for _, u := range ignoreMaps[f.Name].Unused(enabled) {
			emit(u.Pos, u.Message())
		}
	}

	if metricsPath != "" {
		if err := recorder.WriteTextfile(metricsPath); err != nil {
			return err
		}
	}

	if findings > 0 {
		return fmt.Errorf("%d %w", findings, errFindings)
	}
	return nil
}

// collectFiles expands directories into the files the config selects.
// Files named explicitly are always checked.
func collectFiles(cfg *config.Config, paths []string) ([]string, error) {
	var files []string
	seen := make(map[string]bool)
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			files = append(files, p)
		}
	}

	for _, root := range paths {
		info, err := os.Stat(root)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			add(root)
			continue
		}

		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path != root && strings.HasPrefix(d.Name(), ".") {
					return filepath.SkipDir
				}
				return nil
			}
			rel, err := filepath.Rel(root, path)
			if err != nil {
				return err
			}
			if cfg.Match(rel) {
				add(path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", root, err)
		}
	}

	return files, nil
}
