package driver

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidEncoding: the source is not valid UTF-8.
	ErrInvalidEncoding = errors.New("source is not valid UTF-8")
	// ErrInternal: a compiler invariant was violated (including recovered panics).
	ErrInternal = errors.New("internal invariant violation")
)

// FatalKind classifies conditions that stop a compilation.
type FatalKind uint8

const (
	FatalInvalidEncoding FatalKind = iota + 1
	FatalInternal
)

func (k FatalKind) String() string {
	switch k {
	case FatalInvalidEncoding:
		return "InvalidEncoding"
	case FatalInternal:
		return "InternalInvariantViolation"
	}
	return "Unknown"
}

// FatalError aborts a compilation. Ordinary diagnostics never produce one.
type FatalError struct {
	Kind  FatalKind
	Phase State // состояние, в котором случился сбой
	Err   error
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("%s during %s: %v", e.Kind, e.Phase, e.Err)
}

func (e *FatalError) Unwrap() error { return e.Err }

func fatal(kind FatalKind, phase State, err error) *FatalError {
	sentinel := ErrInternal
	if kind == FatalInvalidEncoding {
		sentinel = ErrInvalidEncoding
	}
	if err == nil || errors.Is(err, sentinel) {
		if err == nil {
			err = sentinel
		}
		return &FatalError{Kind: kind, Phase: phase, Err: err}
	}
	return &FatalError{Kind: kind, Phase: phase, Err: fmt.Errorf("%w: %w", sentinel, err)}
}
