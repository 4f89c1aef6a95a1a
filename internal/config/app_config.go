// Package config loads srcview settings from configuration files, a dotenv
// file and the environment, and resolves them into concrete build settings.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/temirov/srcview/internal/language"
	"github.com/temirov/srcview/internal/navigator"
	"github.com/temirov/srcview/internal/utils"
)

const (
	// DefaultOutputFileName is the document written into the root when no output is configured.
	DefaultOutputFileName = "index.html"
	// DefaultTitle is the generated document title.
	DefaultTitle          = "Source Preview"
	// DefaultServeAddress is the listen address of the serve command.
	DefaultServeAddress   = "127.0.0.1:8080"
	// DefaultCacheEntries bounds the serve command's content cache.
	DefaultCacheEntries   = 256

	environmentKeySeparator = "_"
	configKeySeparator      = "."
	// fileKeyDelimiter keeps dotted extension keys such as ".go" intact.
	fileKeyDelimiter        = "::"
)

// DefaultIgnoreNames are excluded at every depth unless configuration says otherwise.
var DefaultIgnoreNames = []string{".git", "node_modules", ".DS_Store", ".github"}

// environmentKeys are the configuration keys that SRCVIEW_* variables may override.
var environmentKeys = []string{
	"output",
	"title",
	"padding_lines",
	"use_gitignore",
	"default_language",
	"serve.address",
	"serve.cache_entries",
}

// LoadOptions controls how application configuration is discovered.
type LoadOptions struct {
	WorkingDirectory string
	ExplicitFilePath string
	// HomeDirectory overrides os.UserHomeDir when set.
	HomeDirectory string
}

// ApplicationConfiguration mirrors the configuration file. Pointer fields
// distinguish unset values from explicit zero values during merging.
type ApplicationConfiguration struct {
	Ignore          []string           `mapstructure:"ignore"`
	Languages       map[string]string  `mapstructure:"languages"`
	DefaultLanguage string             `mapstructure:"default_language"`
	PaddingLines    *int               `mapstructure:"padding_lines"`
	Output          string             `mapstructure:"output"`
	Title           string             `mapstructure:"title"`
	UseGitignore    *bool              `mapstructure:"use_gitignore"`
	Serve           ServeConfiguration `mapstructure:"serve"`
}

// ServeConfiguration holds defaults for the serve command.
type ServeConfiguration struct {
	Address      string `mapstructure:"address"`
	CacheEntries *int   `mapstructure:"cache_entries"`
}

// Settings are fully resolved values with defaults applied.
type Settings struct {
	IgnoreNames  []string
	Languages    language.Map
	PaddingLines int
	// OutputPath is empty unless configured; the document then goes into the root.
	OutputPath   string
	Title        string
	UseGitignore bool
	ServeAddress string
	CacheEntries int
}

// LoadApplicationConfiguration loads configuration from the global file, the
// local (or explicit) file, the working directory's .env file and SRCVIEW_*
// environment variables, later sources overriding earlier ones.
func LoadApplicationConfiguration(options LoadOptions) (ApplicationConfiguration, error) {
	workingDirectory := options.WorkingDirectory
	if workingDirectory == "" {
		currentDirectory, err := os.Getwd()
		if err != nil {
			return ApplicationConfiguration{}, fmt.Errorf("determine working directory: %w", err)
		}
		workingDirectory = currentDirectory
	}

	var merged ApplicationConfiguration

	homeDirectory := options.HomeDirectory
	if homeDirectory == "" {
		if resolvedHome, err := os.UserHomeDir(); err == nil {
			homeDirectory = resolvedHome
		}
	}
	if homeDirectory != "" {
		globalPath := filepath.Join(homeDirectory, utils.GlobalConfigDirectoryName, utils.ConfigFileName)
		globalConfig, loadErr := loadConfigurationFromPath(globalPath, false)
		if loadErr != nil {
			return ApplicationConfiguration{}, loadErr
		}
		merged = merged.Merge(globalConfig)
	}

	localPath := resolveLocalConfigPath(workingDirectory, options.ExplicitFilePath)
	localConfig, loadErr := loadConfigurationFromPath(localPath, options.ExplicitFilePath != "")
	if loadErr != nil {
		return ApplicationConfiguration{}, loadErr
	}
	merged = merged.Merge(localConfig)

	if envErr := loadEnvironmentFile(filepath.Join(workingDirectory, utils.EnvironmentFileName)); envErr != nil {
		return ApplicationConfiguration{}, envErr
	}
	environmentConfig, envErr := loadEnvironmentOverrides()
	if envErr != nil {
		return ApplicationConfiguration{}, envErr
	}
	merged = merged.Merge(environmentConfig)

	merged.Ignore = utils.DeduplicateNames(merged.Ignore)
	return merged, nil
}

func resolveLocalConfigPath(workingDirectory, explicitPath string) string {
	if explicitPath == "" {
		return filepath.Join(workingDirectory, utils.ConfigFileName)
	}
	if filepath.IsAbs(explicitPath) {
		return explicitPath
	}
	return filepath.Join(workingDirectory, explicitPath)
}

// loadConfigurationFromPath reads one configuration file. A missing file is
// only an error when it was requested explicitly.
func loadConfigurationFromPath(path string, required bool) (ApplicationConfiguration, error) {
	info, statErr := os.Stat(path)
	if statErr != nil {
		if os.IsNotExist(statErr) && !required {
			return ApplicationConfiguration{}, nil
		}
		return ApplicationConfiguration{}, fmt.Errorf("stat configuration %s: %w", path, statErr)
	}
	if info.IsDir() {
		return ApplicationConfiguration{}, fmt.Errorf("configuration path %s is a directory", path)
	}

	reader := viper.NewWithOptions(viper.KeyDelimiter(fileKeyDelimiter))
	reader.SetConfigFile(path)
	if readErr := reader.ReadInConfig(); readErr != nil {
		return ApplicationConfiguration{}, fmt.Errorf("read configuration from %s: %w", path, readErr)
	}
	var config ApplicationConfiguration
	if decodeErr := reader.Unmarshal(&config); decodeErr != nil {
		return ApplicationConfiguration{}, fmt.Errorf("decode configuration from %s: %w", path, decodeErr)
	}
	return config, nil
}

// loadEnvironmentFile exports variables from a dotenv file without replacing
// variables that are already set.
func loadEnvironmentFile(path string) error {
	if loadErr := godotenv.Load(path); loadErr != nil && !errors.Is(loadErr, os.ErrNotExist) {
		return fmt.Errorf("load environment file %s: %w", path, loadErr)
	}
	return nil
}

func loadEnvironmentOverrides() (ApplicationConfiguration, error) {
	reader := viper.New()
	for _, key := range environmentKeys {
		environmentName := utils.EnvironmentPrefix + environmentKeySeparator +
			strings.ToUpper(strings.ReplaceAll(key, configKeySeparator, environmentKeySeparator))
		if bindErr := reader.BindEnv(key, environmentName); bindErr != nil {
			return ApplicationConfiguration{}, fmt.Errorf("bind environment %s: %w", environmentName, bindErr)
		}
	}
	var config ApplicationConfiguration
	if decodeErr := reader.Unmarshal(&config); decodeErr != nil {
		return ApplicationConfiguration{}, fmt.Errorf("decode environment overrides: %w", decodeErr)
	}
	return config, nil
}

// Merge overlays override onto the receiver returning the combined configuration.
// Ignore lists accumulate; language maps are merged key by key.
func (config ApplicationConfiguration) Merge(override ApplicationConfiguration) ApplicationConfiguration {
	result := config
	if len(override.Ignore) > 0 {
		result.Ignore = utils.DeduplicateNames(append(append([]string{}, config.Ignore...), override.Ignore...))
	}
	if len(override.Languages) > 0 {
		languages := make(map[string]string, len(config.Languages)+len(override.Languages))
		for extension, tag := range config.Languages {
			languages[extension] = tag
		}
		for extension, tag := range override.Languages {
			languages[extension] = tag
		}
		result.Languages = languages
	}
	if override.DefaultLanguage != "" {
		result.DefaultLanguage = override.DefaultLanguage
	}
	if override.PaddingLines != nil {
		result.PaddingLines = cloneInt(override.PaddingLines)
	}
	if override.Output != "" {
		result.Output = override.Output
	}
	if override.Title != "" {
		result.Title = override.Title
	}
	if override.UseGitignore != nil {
		result.UseGitignore = cloneBool(override.UseGitignore)
	}
	result.Serve = result.Serve.merge(override.Serve)
	return result
}

func (config ServeConfiguration) merge(override ServeConfiguration) ServeConfiguration {
	result := config
	if override.Address != "" {
		result.Address = override.Address
	}
	if override.CacheEntries != nil {
		result.CacheEntries = cloneInt(override.CacheEntries)
	}
	return result
}

// Resolve applies defaults and returns concrete settings.
func (config ApplicationConfiguration) Resolve() Settings {
	settings := Settings{
		IgnoreNames:  utils.DeduplicateNames(append(append([]string{}, DefaultIgnoreNames...), config.Ignore...)),
		Languages:    language.NewMap(config.Languages, config.DefaultLanguage),
		PaddingLines: navigator.DefaultPaddingLines,
		OutputPath:   config.Output,
		Title:        config.Title,
		ServeAddress: config.Serve.Address,
		CacheEntries: DefaultCacheEntries,
	}
	if settings.Title == "" {
		settings.Title = DefaultTitle
	}
	if settings.ServeAddress == "" {
		settings.ServeAddress = DefaultServeAddress
	}
	if config.PaddingLines != nil {
		settings.PaddingLines = max(*config.PaddingLines, 0)
	}
	if config.UseGitignore != nil {
		settings.UseGitignore = *config.UseGitignore
	}
	if config.Serve.CacheEntries != nil && *config.Serve.CacheEntries > 0 {
		settings.CacheEntries = *config.Serve.CacheEntries
	}
	return settings
}

// NavigatorOptions converts the padding setting for the navigator.
func (settings Settings) NavigatorOptions() navigator.Options {
	if settings.PaddingLines <= 0 {
		return navigator.Options{PaddingLines: navigator.NoPadding}
	}
	return navigator.Options{PaddingLines: settings.PaddingLines}
}

func cloneBool(value *bool) *bool {
	if value == nil {
		return nil
	}
	cloned := *value
	return &cloned
}

func cloneInt(value *int) *int {
	if value == nil {
		return nil
	}
	cloned := *value
	return &cloned
}
