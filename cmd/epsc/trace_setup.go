package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"epscript/internal/trace"
)

// setupTracing inspects trace-related flags (falling back to the manifest's
// trace_level) and attaches the tracer to the command context.
func setupTracing(cmd *cobra.Command, st *settings) error {
	flags := cmd.Root().PersistentFlags()

	traceOutput, _ := flags.GetString("trace")
	levelStr, _ := flags.GetString("trace-level")
	if !flags.Changed("trace-level") {
		levelStr = st.config.Compiler.TraceLevel
	}
	if levelStr == "" && traceOutput != "" {
		levelStr = "phase"
	}
	level, err := trace.ParseLevel(levelStr)
	if err != nil {
		return err
	}
	if level == trace.LevelOff {
		return nil
	}

	modeStr, _ := flags.GetString("trace-mode")
	mode, err := trace.ParseMode(modeStr)
	if err != nil {
		return err
	}
	formatStr, _ := flags.GetString("trace-format")
	format, err := trace.ParseFormat(formatStr)
	if err != nil {
		return err
	}

	tracer, err := trace.New(trace.Config{
		Level:      level,
		Mode:       mode,
		Format:     format,
		OutputPath: traceOutput,
	})
	if err != nil {
		return fmt.Errorf("failed to create tracer: %w", err)
	}
	st.tracer = tracer
	cmd.SetContext(trace.WithTracer(cmd.Context(), tracer))
	return nil
}

// closeTracing flushes the tracer; a ring buffer is dumped to stderr.
func closeTracing(cmd *cobra.Command) error {
	st := settingsFrom(cmd)
	if st.tracer == nil {
		return nil
	}
	if ring, ok := st.tracer.(*trace.RingTracer); ok {
		if err := ring.Dump(os.Stderr, trace.FormatText); err != nil {
			return err
		}
	}
	return st.tracer.Close()
}
