// Package trace records compiler phase events.
//
// A Tracer travels through the pipeline in a context.Context
// (WithTracer / FromContext). The driver opens a ScopeDriver span per
// compilation and a ScopePass span per phase (lex, parse, resolve, sema,
// codegen); the build pipeline opens ScopeUnit spans per source file.
//
// Implementations:
//
//   - Nop: disabled tracing
//   - StreamTracer: writes each event as text or NDJSON
//   - RingTracer: keeps the last N events for crash dumps
//   - MultiTracer: fans events out to several tracers
//
// The process-wide debug switch (SetDebug) makes callers without an explicit
// tracer fall back to DebugTracer, a stderr stream at LevelDebug.
package trace
