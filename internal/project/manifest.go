package project

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/BurntSushi/toml"

	"epscript/internal/trace"
)

// Manifest is a parsed epscript.toml together with its location.
type Manifest struct {
	Path   string
	Root   string
	Config Config
}

type Config struct {
	Compiler  CompilerConfig  `toml:"compiler"`
	Constants ConstantsConfig `toml:"constants"`
	Build     BuildConfig     `toml:"build"`
}

type CompilerConfig struct {
	MaxDiagnostics int    `toml:"max_diagnostics"`
	Debug          bool   `toml:"debug"`
	TraceLevel     string `toml:"trace_level"`
}

type ConstantsConfig struct {
	Names []string `toml:"names"`
	// Files - списки имён по одному на строку (*.lst), пути от корня проекта
	Files []string `toml:"files"`
}

type BuildConfig struct {
	Sources []string `toml:"sources"`
	OutDir  string   `toml:"out_dir"`
	Jobs    int      `toml:"jobs"`
	Emit    string   `toml:"emit"`
	Cache   *bool    `toml:"cache"`
}

const (
	DefaultMaxDiagnostics = 100
	DefaultOutDir         = "build"
	DefaultSourceGlob     = "*.eps"
)

// DefaultConfig is used when no manifest exists.
func DefaultConfig() Config {
	return Config{
		Compiler: CompilerConfig{MaxDiagnostics: DefaultMaxDiagnostics},
		Build: BuildConfig{
			Sources: []string{DefaultSourceGlob},
			OutDir:  DefaultOutDir,
			Jobs:    runtime.GOMAXPROCS(0),
			Emit:    "text",
		},
	}
}

// CacheEnabled reports whether [build].cache is on (the default).
func (b BuildConfig) CacheEnabled() bool {
	return b.Cache == nil || *b.Cache
}

// LoadManifest finds and parses the manifest above startDir.
// ok is false when there is no epscript.toml.
func LoadManifest(startDir string) (*Manifest, bool, error) {
	manifestPath, ok, err := FindManifest(startDir)
	if err != nil || !ok {
		return nil, ok, err
	}
	m, err := LoadManifestFile(manifestPath)
	if err != nil {
		return nil, true, err
	}
	return m, true, nil
}

// LoadManifestFile parses path and fills unset fields with defaults.
func LoadManifestFile(path string) (*Manifest, error) {
	cfg := DefaultConfig()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return nil, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %q: %w", path, err)
	}
	return &Manifest{Path: abs, Root: filepath.Dir(abs), Config: cfg}, nil
}

func (c *Config) validate() error {
	if c.Compiler.MaxDiagnostics < 0 {
		return fmt.Errorf("[compiler].max_diagnostics must be >= 0, got %d", c.Compiler.MaxDiagnostics)
	}
	if _, err := trace.ParseLevel(c.Compiler.TraceLevel); err != nil {
		return fmt.Errorf("[compiler].trace_level: %w", err)
	}
	if c.Build.Jobs < 0 {
		return fmt.Errorf("[build].jobs must be >= 0, got %d", c.Build.Jobs)
	}
	if c.Build.Jobs == 0 {
		c.Build.Jobs = runtime.GOMAXPROCS(0)
	}
	switch strings.ToLower(c.Build.Emit) {
	case "", "text", "json", "msgpack":
	default:
		return fmt.Errorf("[build].emit must be text|json|msgpack, got %q", c.Build.Emit)
	}
	if len(c.Build.Sources) == 0 {
		c.Build.Sources = []string{DefaultSourceGlob}
	}
	for _, pattern := range c.Build.Sources {
		if _, err := filepath.Match(pattern, ""); err != nil {
			return fmt.Errorf("[build].sources: bad pattern %q: %w", pattern, err)
		}
	}
	if strings.TrimSpace(c.Build.OutDir) == "" {
		c.Build.OutDir = DefaultOutDir
	}
	return nil
}

// Abs resolves a manifest-relative path.
func (m *Manifest) Abs(rel string) string {
	if filepath.IsAbs(rel) {
		return rel
	}
	return filepath.Join(m.Root, filepath.FromSlash(rel))
}

// OutDir returns the absolute output directory.
func (m *Manifest) OutDir() string {
	return m.Abs(m.Config.Build.OutDir)
}
