package trace

import (
	"context"
	"os"
	"sync"
	"sync/atomic"
)

var (
	debugMode   atomic.Bool
	debugOnce   sync.Once
	debugTracer Tracer
)

// SetDebug toggles the process-wide debug switch.
func SetDebug(enabled bool) { debugMode.Store(enabled) }

// Debug reports the process-wide debug switch.
func Debug() bool { return debugMode.Load() }

// DebugTracer is the shared stderr tracer used in debug mode.
func DebugTracer() Tracer {
	debugOnce.Do(func() {
		debugTracer = NewStreamTracer(os.Stderr, LevelDebug, FormatText)
	})
	return debugTracer
}

// Resolve returns the tracer carried by ctx, falling back to DebugTracer
// when ctx has none and debug mode is on.
func Resolve(ctx context.Context) Tracer {
	if t := FromContext(ctx); t.Enabled() {
		return t
	}
	if Debug() {
		return DebugTracer()
	}
	return Nop
}
