// Package treepath defines the root-relative, forward-slash path used as the
// address of every node in a source tree. The same value is used as the node key
// in the encoded document, as the same-origin fetch key and as the lookup key in
// the navigator, so it is only ever produced by the constructors in this package.
package treepath

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

const (
	// RootValue is the sentinel path of the root directory.
	RootValue = "."
	// Separator joins path segments.
	Separator = "/"

	parentSegment = ".."

	errorInvalidPathFormat    = "%w: %q"
	errorInvalidSegmentFormat = "%w: segment %q"
)

// ErrInvalidPath is returned when a value cannot be used as a tree path.
var ErrInvalidPath = errors.New("invalid tree path")

// Path is a validated tree path. The zero value is not a valid path; use Root.
type Path struct {
	value string
}

// Root returns the path of the root directory.
func Root() Path {
	return Path{value: RootValue}
}

// FromRelative converts an operating-system relative path (as returned by
// filepath.Rel) into a tree path, normalizing separators.
func FromRelative(relativePath string) (Path, error) {
	slashed := filepath.ToSlash(filepath.Clean(relativePath))
	if slashed == "" || slashed == RootValue {
		return Root(), nil
	}
	if filepath.IsAbs(relativePath) || strings.HasPrefix(slashed, Separator) {
		return Path{}, fmt.Errorf(errorInvalidPathFormat, ErrInvalidPath, relativePath)
	}
	return Parse(slashed)
}

// Parse validates an encoded path such as one read back from a data-path
// attribute or a request URL.
func Parse(encoded string) (Path, error) {
	if encoded == RootValue {
		return Root(), nil
	}
	if encoded == "" || strings.HasPrefix(encoded, Separator) || strings.HasSuffix(encoded, Separator) {
		return Path{}, fmt.Errorf(errorInvalidPathFormat, ErrInvalidPath, encoded)
	}
	for _, segment := range strings.Split(encoded, Separator) {
		if validationError := validateSegment(segment); validationError != nil {
			return Path{}, validationError
		}
	}
	return Path{value: encoded}, nil
}

// MustParse is Parse for literals known to be valid. It panics otherwise.
func MustParse(encoded string) Path {
	parsed, parseError := Parse(encoded)
	if parseError != nil {
		panic(parseError)
	}
	return parsed
}

func validateSegment(segment string) error {
	if segment == "" || segment == RootValue || segment == parentSegment || strings.Contains(segment, Separator) {
		return fmt.Errorf(errorInvalidSegmentFormat, ErrInvalidPath, segment)
	}
	return nil
}

// Child returns the path of the entry called name inside p.
func (p Path) Child(name string) (Path, error) {
	if p.IsZero() {
		return Path{}, fmt.Errorf(errorInvalidPathFormat, ErrInvalidPath, name)
	}
	if validationError := validateSegment(name); validationError != nil {
		return Path{}, validationError
	}
	if p.IsRoot() {
		return Path{value: name}, nil
	}
	return Path{value: p.value + Separator + name}, nil
}

// String returns the encoded form.
func (p Path) String() string {
	return p.value
}

// IsRoot reports whether p is the root sentinel.
func (p Path) IsRoot() bool {
	return p.value == RootValue
}

// IsZero reports whether p was never constructed.
func (p Path) IsZero() bool {
	return p.value == ""
}

// Segments splits p on the separator. The root has no segments.
func (p Path) Segments() []string {
	if p.IsZero() || p.IsRoot() {
		return nil
	}
	return strings.Split(p.value, Separator)
}

// Depth is the number of segments in p.
func (p Path) Depth() int {
	return len(p.Segments())
}

// Base returns the last segment, or the root sentinel for the root.
func (p Path) Base() string {
	if p.IsRoot() || p.IsZero() {
		return p.value
	}
	lastSeparator := strings.LastIndex(p.value, Separator)
	return p.value[lastSeparator+1:]
}

// Prefix returns the path made of the first count segments joined with the
// separator, the first one bare. A count of zero yields the root.
func (p Path) Prefix(count int) Path {
	segments := p.Segments()
	if count <= 0 {
		return Root()
	}
	if count >= len(segments) {
		return p
	}
	return Path{value: strings.Join(segments[:count], Separator)}
}

// Parent returns the directory containing p. The root has no parent.
func (p Path) Parent() (Path, bool) {
	if p.IsRoot() || p.IsZero() {
		return Path{}, false
	}
	return p.Prefix(p.Depth() - 1), true
}

// Ancestors returns every strict ancestor of p, root first.
func (p Path) Ancestors() []Path {
	depth := p.Depth()
	if depth == 0 {
		return nil
	}
	ancestors := make([]Path, 0, depth)
	for count := 0; count < depth; count++ {
		ancestors = append(ancestors, p.Prefix(count))
	}
	return ancestors
}

// IsAncestorOf reports whether p is a strict ancestor of other.
func (p Path) IsAncestorOf(other Path) bool {
	if p.IsZero() || other.IsZero() || p == other || other.IsRoot() {
		return false
	}
	if p.IsRoot() {
		return true
	}
	return strings.HasPrefix(other.value, p.value+Separator)
}

// MarshalText encodes p for JSON and XML.
func (p Path) MarshalText() ([]byte, error) {
	return []byte(p.value), nil
}

// UnmarshalText decodes and validates an encoded path.
func (p *Path) UnmarshalText(text []byte) error {
	parsed, parseError := Parse(string(text))
	if parseError != nil {
		return parseError
	}
	*p = parsed
	return nil
}
