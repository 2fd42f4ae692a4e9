// Package registry holds the vocabulary of built-in constant names the host
// runtime provides (unit names, player ids, trigger constants...).
//
// Names are registered once (usually at host start-up) and consulted by the
// resolver as the outermost implicit scope. Each compilation works on an
// immutable Snapshot so concurrent registration never tears a lookup.
package registry

import (
	"bytes"
	"errors"
	"fmt"
	"slices"
	"sync"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// ErrInvalidEncoding is returned when a name is not valid UTF-8.
var ErrInvalidEncoding = errors.New("constant name is not valid UTF-8")

// Registry is a set of constant names safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	names map[string]struct{} // copy-on-write: never mutated after publication
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{names: map[string]struct{}{}}
}

var defaultRegistry = New()

// Default returns the process-wide registry used by the host API.
func Default() *Registry {
	return defaultRegistry
}

// Register inserts names. Either every name is inserted or, when one of them
// is not valid UTF-8, none is.
func (r *Registry) Register(names ...[]byte) error {
	keys := make([]string, 0, len(names))
	for i, raw := range names {
		if !utf8.Valid(raw) {
			return fmt.Errorf("name #%d (%q): %w", i, raw, ErrInvalidEncoding)
		}
		if len(raw) == 0 {
			continue
		}
		keys = append(keys, Normalize(string(raw)))
	}
	if len(keys) == 0 {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	fresh := keys[:0:0]
	for _, k := range keys {
		if _, ok := r.names[k]; !ok {
			fresh = append(fresh, k)
		}
	}
	if len(fresh) == 0 {
		return nil
	}
	next := make(map[string]struct{}, len(r.names)+len(fresh))
	for k := range r.names {
		next[k] = struct{}{}
	}
	for _, k := range fresh {
		next[k] = struct{}{}
	}
	r.names = next
	return nil
}

// RegisterStrings is Register for already decoded names.
func (r *Registry) RegisterStrings(names ...string) error {
	raw := make([][]byte, len(names))
	for i, n := range names {
		raw[i] = []byte(n)
	}
	return r.Register(raw...)
}

// RegisterNullSeparated splits blob on NUL bytes and registers every non-empty segment.
func (r *Registry) RegisterNullSeparated(blob []byte) error {
	return r.Register(bytes.Split(blob, []byte{0})...)
}

// RegisterLines registers one name per line, ignoring blank lines and '#' comments.
// This is the format of the *.lst constant lists shipped with the runtime.
func (r *Registry) RegisterLines(data []byte) error {
	var names [][]byte
	for _, line := range bytes.Split(data, []byte{'\n'}) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 || line[0] == '#' {
			continue
		}
		names = append(names, line)
	}
	return r.Register(names...)
}

func (r *Registry) Contains(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.names[Normalize(name)]
	return ok
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.names)
}

// Names returns every registered name, sorted.
func (r *Registry) Names() []string {
	return r.Snapshot().Names()
}

// Snapshot returns an immutable view of the current contents.
func (r *Registry) Snapshot() *Snapshot {
	if r == nil {
		return &Snapshot{}
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return &Snapshot{names: r.names}
}

// Snapshot is a point-in-time view; later registrations are not visible through it.
type Snapshot struct {
	names map[string]struct{}
}

func (s *Snapshot) Contains(name string) bool {
	if s == nil {
		return false
	}
	_, ok := s.names[Normalize(name)]
	return ok
}

func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.names)
}

func (s *Snapshot) Names() []string {
	if s == nil {
		return nil
	}
	out := make([]string, 0, len(s.names))
	for k := range s.names {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

// Normalize brings a name to NFC so canonically equivalent spellings compare equal.
func Normalize(name string) string {
	if isASCII(name) {
		return name
	}
	return norm.NFC.String(name)
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
