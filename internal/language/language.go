// Package language classifies files by extension into highlighting tags.
package language

import (
	"path/filepath"
	"sort"
	"strings"
)

const (
	// DefaultTag is assigned to files whose extension is not mapped.
	DefaultTag = "text"

	extensionPrefix = "."
)

var defaultExtensions = map[string]string{
	".js":   "javascript",
	".html": "markup",
	".css":  "css",
	".json": "json",
	".py":   "python",
	".md":   "markdown",
	".java": "java",
	".cpp":  "cpp",
	".h":    "c",
	".ts":   "typescript",
	".sh":   "bash",
}

// Map resolves lowercase extensions (including the leading dot) to tags.
type Map struct {
	extensions map[string]string
	defaultTag string
}

// DefaultMap returns the built-in extension table.
func DefaultMap() Map {
	return NewMap(nil, "")
}

// NewMap builds a Map from the built-in table overlaid with overrides.
// Override keys are normalized to lowercase and gain a leading dot when missing;
// an empty tag removes the extension. An empty defaultTag selects DefaultTag.
func NewMap(overrides map[string]string, defaultTag string) Map {
	extensions := make(map[string]string, len(defaultExtensions)+len(overrides))
	for extension, tag := range defaultExtensions {
		extensions[extension] = tag
	}
	for extension, tag := range overrides {
		normalizedExtension := NormalizeExtension(extension)
		if normalizedExtension == "" {
			continue
		}
		trimmedTag := strings.TrimSpace(tag)
		if trimmedTag == "" {
			delete(extensions, normalizedExtension)
			continue
		}
		extensions[normalizedExtension] = trimmedTag
	}
	trimmedDefault := strings.TrimSpace(defaultTag)
	if trimmedDefault == "" {
		trimmedDefault = DefaultTag
	}
	return Map{extensions: extensions, defaultTag: trimmedDefault}
}

// NormalizeExtension lowercases an extension and ensures the leading dot.
func NormalizeExtension(extension string) string {
	trimmed := strings.ToLower(strings.TrimSpace(extension))
	if trimmed == "" || trimmed == extensionPrefix {
		return ""
	}
	if !strings.HasPrefix(trimmed, extensionPrefix) {
		trimmed = extensionPrefix + trimmed
	}
	return trimmed
}

// Classify returns the tag for a file name.
func (languageMap Map) Classify(fileName string) string {
	extension := strings.ToLower(filepath.Ext(fileName))
	extensions := languageMap.extensions
	if extensions == nil {
		extensions = defaultExtensions
	}
	if tag, found := extensions[extension]; found {
		return tag
	}
	return languageMap.Default()
}

// Default returns the tag used for unmapped extensions.
func (languageMap Map) Default() string {
	if languageMap.defaultTag == "" {
		return DefaultTag
	}
	return languageMap.defaultTag
}

// Tags lists every distinct tag the map can produce, sorted, default included.
func (languageMap Map) Tags() []string {
	extensions := languageMap.extensions
	if extensions == nil {
		extensions = defaultExtensions
	}
	seen := map[string]struct{}{languageMap.Default(): {}}
	for _, tag := range extensions {
		seen[tag] = struct{}{}
	}
	tags := make([]string, 0, len(seen))
	for tag := range seen {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}
