package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"epscript/internal/diag"
	"epscript/internal/diagfmt"
	"epscript/internal/driver"
)

func newDiagCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "diag [flags] file.eps",
		Short: "Report diagnostics for an epScript source file",
		Long:  `Diag runs the pipeline up to --stage and prints every diagnostic; the exit status is 1 when errors were found`,
		Args:  cobra.ExactArgs(1),
		RunE:  runDiag,
	}
	cmd.Flags().String("format", "pretty", "output format (pretty|json|short)")
	cmd.Flags().String("stage", "all", "last stage to run (tokenize|syntax|sema|all)")
	cmd.Flags().String("path-mode", "auto", "how to print file paths (auto|absolute|relative|basename)")
	cmd.Flags().Int("context", 1, "source lines of context around each diagnostic")
	cmd.Flags().Bool("notes", true, "print diagnostic notes")
	addConstantFlags(cmd)
	return cmd
}

func runDiag(cmd *cobra.Command, args []string) error {
	st := settingsFrom(cmd)
	if err := st.applyConstantFlags(cmd); err != nil {
		return err
	}
	format, _ := cmd.Flags().GetString("format")
	stageStr, _ := cmd.Flags().GetString("stage")
	stage, err := driver.ParseStage(stageStr)
	if err != nil {
		return err
	}
	pathModeStr, _ := cmd.Flags().GetString("path-mode")
	pathMode, err := diagfmt.ParsePathMode(pathModeStr)
	if err != nil {
		return err
	}

	res, err := runDriver(cmd, st, args[0], stage)
	if err != nil {
		return err
	}

	switch format {
	case "json":
		err = diagfmt.JSON(cmd.OutOrStdout(), res.Bag, res.FileSet, diagfmt.JSONOpts{
			IncludePositions: true,
			PathMode:         pathMode,
			IncludeNotes:     true,
		})
	case "pretty":
		opts := st.prettyOpts()
		opts.PathMode = pathMode
		opts.Context, _ = cmd.Flags().GetInt("context")
		opts.ShowNotes, _ = cmd.Flags().GetBool("notes")
		diagfmt.Pretty(cmd.OutOrStdout(), res.Bag, res.FileSet, opts)
		if res.Errors > 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "\n%d %s\n", res.Errors, plural(res.Errors, "error")) //nolint:errcheck
		}
	case "short":
		if out := diag.FormatShortDiagnostics(res.Bag.Items(), res.FileSet, true); out != "" {
			fmt.Fprintln(cmd.OutOrStdout(), out) //nolint:errcheck
		}
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
	if err != nil {
		return err
	}
	st.printTimings(cmd)
	if res.Errors > 0 {
		return errFailed
	}
	return nil
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
