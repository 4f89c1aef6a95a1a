package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/temirov/srcview/internal/utils"
)

// InitTarget identifies where configuration should be initialized.
type InitTarget string

const (
	// InitTargetLocal writes configuration into the working directory.
	InitTargetLocal  InitTarget = "local"
	// InitTargetGlobal writes configuration into the global configuration directory.
	InitTargetGlobal InitTarget = "global"

	defaultConfigurationTemplate = `# Names excluded at any depth, in addition to .git, node_modules, .DS_Store and .github.
ignore: []
# Extension to language tag overrides. Keys may omit the leading dot.
languages:
  go: go
  yaml: yaml
  yml: yaml
default_language: text
padding_lines: 20
# Document path relative to the working directory. Without it the document is
# written to index.html inside the root being built.
# output: site/index.html
title: Source Preview
use_gitignore: false
serve:
  address: 127.0.0.1:8080
  cache_entries: 256
`)

// InitOptions controls how configuration initialization behaves.
type InitOptions struct {
	Target           InitTarget
	Force            bool
	WorkingDirectory string
	// HomeDirectory overrides os.UserHomeDir for the global target.
	HomeDirectory string
}

// InitializeConfiguration writes the annotated default configuration to the
// requested target and returns the written path. Existing files are kept
// unless Force is set.
func InitializeConfiguration(options InitOptions) (string, error) {
	destinationPath, resolveErr := resolveInitDestination(options)
	if resolveErr != nil {
		return "", resolveErr
	}

	if _, statErr := os.Stat(destinationPath); statErr == nil {
		if !options.Force {
			return "", fmt.Errorf("configuration file already exists at %s", destinationPath)
		}
	} else if !os.IsNotExist(statErr) {
		return "", fmt.Errorf("inspect configuration path %s: %w", destinationPath, statErr)
	}

	if mkdirErr := os.MkdirAll(filepath.Dir(destinationPath), 0o755); mkdirErr != nil {
		return "", fmt.Errorf("create configuration directory %s: %w", filepath.Dir(destinationPath), mkdirErr)
	}
	if writeErr := os.WriteFile(destinationPath, []byte(defaultConfigurationTemplate), 0o600); writeErr != nil {
		return "", fmt.Errorf("write configuration to %s: %w", destinationPath, writeErr)
	}
	return destinationPath, nil
}

func resolveInitDestination(options InitOptions) (string, error) {
	switch options.Target {
	case "", InitTargetLocal:
		workingDirectory := options.WorkingDirectory
		if workingDirectory == "" {
			current, err := os.Getwd()
			if err != nil {
				return "", fmt.Errorf("determine working directory for configuration: %w", err)
			}
			workingDirectory = current
		}
		return filepath.Join(workingDirectory, utils.ConfigFileName), nil
	case InitTargetGlobal:
		homeDirectory := options.HomeDirectory
		if homeDirectory == "" {
			resolvedHome, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("resolve home directory for configuration: %w", err)
			}
			homeDirectory = resolvedHome
		}
		return filepath.Join(homeDirectory, utils.GlobalConfigDirectoryName, utils.ConfigFileName), nil
	default:
		return "", fmt.Errorf("unsupported init target %q", options.Target)
	}
}
