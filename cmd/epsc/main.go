package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"epscript/internal/version"
)

// errFailed: диагностики уже напечатаны, нужен только код выхода.
var errFailed = errors.New("compilation failed")

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "epsc",
		Short:         "epScript compiler",
		Long:          `epsc compiles epScript sources into stack-machine programs and inspects them`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := setupProfiling(cmd); err != nil {
				return err
			}
			if cmd.Annotations[annotationNoSettings] != "" {
				return nil
			}
			st, err := loadSettings(cmd, startDir(args))
			if err != nil {
				return err
			}
			cmd.SetContext(withSettings(cmd.Context(), st))
			return setupTracing(cmd, st)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if err := closeTracing(cmd); err != nil {
				return err
			}
			return stopProfiling()
		},
	}

	// Глобальные флаги
	flags := rootCmd.PersistentFlags()
	flags.String("color", "auto", "colorize output (auto|on|off)")
	flags.Bool("debug", false, "enable debug mode (stderr tracing, panic stacks)")
	flags.Bool("timings", false, "show timing information")
	flags.Int("max-diagnostics", 0, "maximum number of diagnostics to keep (0 = manifest or 100)")
	flags.String("config", "", "path to epscript.toml (default: search upwards from the working directory)")
	flags.String("trace", "", "trace output file (\"-\" for stderr)")
	flags.String("trace-level", "", "trace level (off|error|phase|detail|debug)")
	flags.String("trace-mode", "stream", "trace storage mode (stream|ring|both)")
	flags.String("trace-format", "auto", "trace format (auto|text|ndjson)")
	flags.String("cpu-profile", "", "write a CPU profile to file")
	flags.String("mem-profile", "", "write a heap profile to file on exit")
	flags.String("runtime-trace", "", "write a Go runtime trace to file")

	rootCmd.AddCommand(
		newCompileCmd(),
		newTokenizeCmd(),
		newParseCmd(),
		newDiagCmd(),
		newBuildCmd(),
		newVersionCmd(),
	)
	return rootCmd
}

// main builds the command tree and exits with status 1 when a command fails.
func main() {
	err := newRootCmd().Execute()
	// при ошибке PersistentPostRunE не вызывается
	if stopErr := stopProfiling(); stopErr != nil && err == nil {
		err = stopErr
	}
	if err != nil {
		if !errors.Is(err, errFailed) {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		os.Exit(1)
	}
}

// isTerminal проверяет, является ли файл терминалом
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd())) //nolint:gosec // fd fits int
}

func isTerminalWriter(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && isTerminal(f)
}
