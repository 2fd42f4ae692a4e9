package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"epscript/internal/diagfmt"
	"epscript/internal/driver"
)

func newParseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse [flags] file.eps",
		Short: "Parse an epScript source file and dump its syntax tree",
		Args:  cobra.ExactArgs(1),
		RunE:  runParse,
	}
	cmd.Flags().String("format", "pretty", "output format (pretty|json)")
	return cmd
}

func runParse(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	if format != "pretty" && format != "json" {
		return fmt.Errorf("unknown format: %s", format)
	}
	res, err := compileFile(cmd, settingsFrom(cmd), args[0], driver.StageSyntax)
	if err != nil {
		return err
	}
	if format == "json" {
		return diagfmt.FormatASTJSON(cmd.OutOrStdout(), res.Builder, res.FileID)
	}
	return diagfmt.FormatASTPretty(cmd.OutOrStdout(), res.Builder, res.FileID, res.FileSet)
}
