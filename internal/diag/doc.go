// Package diag defines the diagnostic model shared by all compiler phases.
//
// A Diagnostic carries a Severity, a numeric Code with a stable string form
// (LEXnnnn, SYNnnnn, SEMnnnn, ...), a short message, the primary source span
// and optional notes pointing at related spans ("previous declaration here").
//
// Phases never store diagnostics themselves. They emit through a Reporter;
// BagReporter collects into a Bag, DedupReporter filters repeats and
// CountingReporter keeps an exact error count even when the bag is bounded.
//
// Rendering lives in internal/diagfmt. The short single-line form used by
// tests and "epsc diag --format short" is FormatShortDiagnostics.
package diag
