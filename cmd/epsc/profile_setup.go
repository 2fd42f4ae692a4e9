package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"epscript/internal/prof"
)

// profiling живёт от PersistentPreRunE до конца main; Stop идемпотентен.
var profiling *prof.Session

// setupProfiling reads the profiler flags and starts the requested profilers.
func setupProfiling(cmd *cobra.Command) error {
	flags := cmd.Root().PersistentFlags()
	var cfg prof.Config
	cfg.CPUProfile, _ = flags.GetString("cpu-profile")
	cfg.MemProfile, _ = flags.GetString("mem-profile")
	cfg.RuntimeTrace, _ = flags.GetString("runtime-trace")
	if !cfg.Enabled() {
		return nil
	}
	s, err := prof.Start(cfg)
	if err != nil {
		return err
	}
	profiling = s
	return nil
}

func stopProfiling() error {
	s := profiling
	profiling = nil
	if err := s.Stop(); err != nil {
		return fmt.Errorf("profiling: %w", err)
	}
	return nil
}
