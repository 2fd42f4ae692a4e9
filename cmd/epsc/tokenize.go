package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"epscript/internal/diagfmt"
	"epscript/internal/driver"
)

func newTokenizeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tokenize [flags] file.eps",
		Short: "Tokenize an epScript source file",
		Long:  `Tokenize breaks down an epScript source file into its constituent tokens`,
		Args:  cobra.ExactArgs(1),
		RunE:  runTokenize,
	}
	cmd.Flags().String("format", "pretty", "output format (pretty|json)")
	return cmd
}

func runTokenize(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	if format != "pretty" && format != "json" {
		return fmt.Errorf("unknown format: %s", format)
	}
	res, err := compileFile(cmd, settingsFrom(cmd), args[0], driver.StageTokenize)
	if err != nil {
		return err
	}
	if format == "json" {
		return diagfmt.FormatTokensJSON(cmd.OutOrStdout(), res.Tokens)
	}
	return diagfmt.FormatTokensPretty(cmd.OutOrStdout(), res.Tokens, res.FileSet)
}
