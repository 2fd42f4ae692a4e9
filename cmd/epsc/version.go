package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"epscript/internal/version"
)

func newVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:         "version",
		Short:       "Show epsc build information",
		Annotations: map[string]string{annotationNoSettings: "true"},
		Args:        cobra.NoArgs,
		RunE:        runVersion,
	}
	cmd.Flags().String("format", "pretty", "output format (pretty|json)")
	return cmd
}

func runVersion(cmd *cobra.Command, _ []string) error {
	format, _ := cmd.Flags().GetString("format")
	info := version.Current()
	out := cmd.OutOrStdout()
	switch strings.ToLower(format) {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(info)
	case "pretty":
		colorFlag, _ := cmd.Root().PersistentFlags().GetString("color")
		useColor := colorFlag == "on" || (colorFlag == "auto" && isTerminalWriter(out))
		fmt.Fprintf(out, "epsc %s\n", version.Colored(useColor)) //nolint:errcheck
		if info.GitCommit != "" {
			fmt.Fprintf(out, "commit: %s\n", info.GitCommit) //nolint:errcheck
		}
		if info.BuildDate != "" {
			fmt.Fprintf(out, "built:  %s\n", info.BuildDate) //nolint:errcheck
		}
		fmt.Fprintf(out, "%s %s\n", info.GoVersion, info.Platform) //nolint:errcheck
		return nil
	default:
		return fmt.Errorf("unsupported format %q (must be pretty or json)", format)
	}
}
