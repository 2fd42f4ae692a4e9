package project

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

func resolve(root, rel string) string {
	if filepath.IsAbs(rel) || root == "" {
		return rel
	}
	return filepath.Join(root, filepath.FromSlash(rel))
}

// Sources expands [build].sources against the project root.
func (m *Manifest) Sources() ([]string, error) {
	return CollectSources(m.Root, m.Config.Build.Sources)
}

// CollectSources expands glob patterns relative to root and returns a sorted,
// deduplicated list of files. A pattern naming a directory picks up every
// *.eps file directly inside it. The output directory is never descended into.
func CollectSources(root string, patterns []string) ([]string, error) {
	if len(patterns) == 0 {
		patterns = []string{DefaultSourceGlob}
	}
	seen := make(map[string]struct{})
	var out []string
	add := func(path string) {
		if _, ok := seen[path]; ok {
			return
		}
		seen[path] = struct{}{}
		out = append(out, path)
	}
	for _, pattern := range patterns {
		full := resolve(root, pattern)
		if info, err := os.Stat(full); err == nil && info.IsDir() {
			full = filepath.Join(full, DefaultSourceGlob)
		}
		matches, err := filepath.Glob(full)
		if err != nil {
			return nil, fmt.Errorf("bad source pattern %q: %w", pattern, err)
		}
		for _, match := range matches {
			info, err := os.Stat(match)
			if err != nil {
				return nil, fmt.Errorf("failed to stat %q: %w", match, err)
			}
			if info.IsDir() {
				continue
			}
			add(match)
		}
	}
	slices.Sort(out)
	return out, nil
}

// OutputPath maps a source file to its artifact path inside outDir, keeping
// the layout relative to root.
func OutputPath(root, outDir, src, ext string) string {
	rel, err := filepath.Rel(root, src)
	if err != nil || strings.HasPrefix(rel, "..") {
		rel = filepath.Base(src)
	}
	rel = strings.TrimSuffix(rel, filepath.Ext(rel)) + ext
	return filepath.Join(outDir, rel)
}
