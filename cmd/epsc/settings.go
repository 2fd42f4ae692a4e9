package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"epscript/internal/diagfmt"
	"epscript/internal/observ"
	"epscript/internal/project"
	"epscript/internal/registry"
	"epscript/internal/trace"
)

// settings merge the manifest with command-line flags; flags win.
type settings struct {
	manifest       *project.Manifest
	config         project.Config
	root           string
	registry       *registry.Registry
	maxDiagnostics int
	color          bool
	timer          *observ.Timer
	tracer         trace.Tracer
}

const annotationNoSettings = "epsc/no-settings"

type settingsKey struct{}

func withSettings(ctx context.Context, st *settings) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, settingsKey{}, st)
}

// settingsFrom returns the settings loaded by the root pre-run hook.
func settingsFrom(cmd *cobra.Command) *settings {
	if st, ok := cmd.Context().Value(settingsKey{}).(*settings); ok {
		return st
	}
	return &settings{config: project.DefaultConfig(), registry: registry.New()}
}

// startDir picks where the manifest search begins: the first argument's
// directory, or the working directory.
func startDir(args []string) string {
	if len(args) == 0 {
		return "."
	}
	info, err := os.Stat(args[0])
	if err == nil && info.IsDir() {
		return args[0]
	}
	return filepath.Dir(args[0])
}

func loadSettings(cmd *cobra.Command, startDir string) (*settings, error) {
	flags := cmd.Root().PersistentFlags()
	st := &settings{config: project.DefaultConfig(), root: startDir, registry: registry.New()}

	configPath, _ := flags.GetString("config")
	switch {
	case configPath != "":
		m, err := project.LoadManifestFile(configPath)
		if err != nil {
			return nil, err
		}
		st.manifest = m
	default:
		m, _, err := project.LoadManifest(startDir)
		if err != nil {
			return nil, err
		}
		st.manifest = m
	}
	if st.manifest != nil {
		st.config = st.manifest.Config
		st.root = st.manifest.Root
		if err := st.manifest.LoadConstants(st.registry); err != nil {
			return nil, err
		}
		if st.config.Compiler.Debug {
			trace.SetDebug(true)
		}
	}

	st.maxDiagnostics = st.config.Compiler.MaxDiagnostics
	if n, _ := flags.GetInt("max-diagnostics"); n > 0 {
		st.maxDiagnostics = n
	}

	colorFlag, _ := flags.GetString("color")
	switch strings.ToLower(colorFlag) {
	case "on", "always":
		st.color = true
	case "off", "never":
		st.color = false
	case "auto", "":
		st.color = isTerminal(os.Stderr)
	default:
		return nil, fmt.Errorf("invalid --color value %q (expected auto|on|off)", colorFlag)
	}

	if debug, _ := flags.GetBool("debug"); debug {
		trace.SetDebug(true)
	}
	if timings, _ := flags.GetBool("timings"); timings {
		st.timer = observ.NewTimer()
	}
	return st, nil
}

// addConstantFlags registers --constants / --constants-file on cmd.
func addConstantFlags(cmd *cobra.Command) {
	cmd.Flags().StringSlice("constants", nil, "extra built-in constant names (comma separated)")
	cmd.Flags().StringArray("constants-file", nil, "newline-separated constant list (.lst); repeatable")
}

func (st *settings) applyConstantFlags(cmd *cobra.Command) error {
	names, _ := cmd.Flags().GetStringSlice("constants")
	if err := st.registry.RegisterStrings(names...); err != nil {
		return fmt.Errorf("--constants: %w", err)
	}
	files, _ := cmd.Flags().GetStringArray("constants-file")
	for _, f := range files {
		if err := project.LoadConstantsFile(st.registry, f); err != nil {
			return err
		}
	}
	return nil
}

func (st *settings) prettyOpts() diagfmt.PrettyOpts {
	return diagfmt.PrettyOpts{Color: st.color, Context: 1, ShowNotes: true}
}

func (st *settings) printTimings(cmd *cobra.Command) {
	if st.timer == nil {
		return
	}
	fmt.Fprint(cmd.ErrOrStderr(), st.timer.Summary()) //nolint:errcheck
}
