package project

import (
	"fmt"
	"os"

	"epscript/internal/registry"
)

// LoadConstants registers [constants].names and every *.lst file into reg.
func (m *Manifest) LoadConstants(reg *registry.Registry) error {
	return LoadConstants(reg, m.Config.Constants, m.Root)
}

// LoadConstants fills reg from cfg; relative files are resolved against root.
func LoadConstants(reg *registry.Registry, cfg ConstantsConfig, root string) error {
	if err := reg.RegisterStrings(cfg.Names...); err != nil {
		return fmt.Errorf("[constants].names: %w", err)
	}
	for _, file := range cfg.Files {
		if err := LoadConstantsFile(reg, resolve(root, file)); err != nil {
			return err
		}
	}
	return nil
}

// LoadConstantsFile registers one name per line of a .lst file.
func LoadConstantsFile(reg *registry.Registry, path string) error {
	// #nosec G304 -- path comes from the manifest or the command line
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read constants list: %w", err)
	}
	if err := reg.RegisterLines(data); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}
