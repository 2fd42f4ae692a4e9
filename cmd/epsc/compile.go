package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"epscript/internal/diagfmt"
	"epscript/internal/driver"
)

func newCompileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compile [flags] file.eps",
		Short: "Compile an epScript source file",
		Long:  `Compile runs the full pipeline and writes the program listing (or its JSON/msgpack form)`,
		Args:  cobra.ExactArgs(1),
		RunE:  runCompile,
	}
	cmd.Flags().StringP("output", "o", "", "output file (default: stdout)")
	cmd.Flags().String("emit", "", "output format (text|json|msgpack); default from manifest")
	addConstantFlags(cmd)
	return cmd
}

func runCompile(cmd *cobra.Command, args []string) error {
	st := settingsFrom(cmd)
	if err := st.applyConstantFlags(cmd); err != nil {
		return err
	}
	emitStr, _ := cmd.Flags().GetString("emit")
	if emitStr == "" {
		emitStr = st.config.Build.Emit
	}
	emit, err := diagfmt.ParseEmitFormat(emitStr)
	if err != nil {
		return err
	}
	outPath, _ := cmd.Flags().GetString("output")
	if emit == diagfmt.EmitMsgpack && outPath == "" && cmd.OutOrStdout() == os.Stdout && isTerminal(os.Stdout) {
		return fmt.Errorf("refusing to write msgpack to a terminal; use -o")
	}

	res, err := compileFile(cmd, st, args[0], driver.StageAll)
	if err != nil {
		return err
	}
	if res.Errors > 0 {
		return errFailed
	}

	var buf bytes.Buffer
	if err := diagfmt.WriteProgram(&buf, res.Program, emit); err != nil {
		return err
	}
	if outPath == "" {
		_, err = cmd.OutOrStdout().Write(buf.Bytes())
		return err
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return err
	}
	return os.WriteFile(outPath, buf.Bytes(), 0o600)
}

// compileFile runs the driver up to stage and prints diagnostics to stderr.
// Only fatal failures come back as errors.
func compileFile(cmd *cobra.Command, st *settings, path string, stage driver.Stage) (*driver.Result, error) {
	res, err := runDriver(cmd, st, path, stage)
	if err != nil {
		return res, err
	}
	if res.Bag.Len() > 0 {
		diagfmt.Pretty(cmd.ErrOrStderr(), res.Bag, res.FileSet, st.prettyOpts())
		if dropped := res.Errors - res.Bag.ErrorCount(); dropped > 0 {
			fmt.Fprintf(cmd.ErrOrStderr(), "... and %d more errors\n", dropped) //nolint:errcheck
		}
	}
	st.printTimings(cmd)
	return res, nil
}

func runDriver(cmd *cobra.Command, st *settings, path string, stage driver.Stage) (*driver.Result, error) {
	return driver.CompileFile(cmd.Context(), path, driver.Options{
		Constants:      st.registry.Snapshot(),
		MaxDiagnostics: st.maxDiagnostics,
		Stage:          stage,
		Timer:          st.timer,
	})
}
