// Command supercall-cxx reports C++ virtual overrides that do not call the
// implementation they override.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

const (
	Version = "0.1.0"
	appName = "supercall-cxx"
)

// errFindings is returned by check when it printed diagnostics.
var errFindings = errors.New("diagnostics reported")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// execute runs the command line and returns the exit status:
// 0 when clean, 1 when diagnostics were printed, 2 on errors.
func execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := rootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)
	switch {
	case err == nil:
		return 0
	case errors.Is(err, errFindings):
		return 1
	default:
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   appName,
		Short: "Check that C++ overrides call the implementation they override",
		Long: `supercall-cxx parses C++ sources with tree-sitter, rebuilds the class
hierarchy across all given files and reports virtual overrides that

- never call the parent implementation,
- call it only under a condition, or
- call an ancestor above an intermediate override.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(checkCmd())
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Printf("%s version %s\n", appName, Version)
		},
	})

	return cmd
}
