// Package navigator keeps the browsing state of a generated source document in
// step with user actions: which directories are open, which file is active and
// how lines of the viewed file are addressed. Every transition is a function from
// one State to the next; rendering is a projection of the result.
package navigator

import (
	"sort"

	"github.com/temirov/srcview/internal/treepath"
)

// Phase is the viewer pane state for the loaded file.
type Phase string

const (
	PhaseEmpty    Phase = "empty"
	PhaseLoading  Phase = "loading"
	PhaseRendered Phase = "rendered"
)

// Theme is the page color scheme.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

const (
	// DefaultFontSize is the viewer font size in pixels on load.
	DefaultFontSize = 14
	// FontSizeStep is the increment applied by the font size buttons.
	FontSizeStep    = 2
	// MinimumFontSize bounds shrinking.
	MinimumFontSize = 6
)

// Crumb is one clickable breadcrumb segment.
type Crumb struct {
	Segment string
	Target  treepath.Path
}

// viewSnapshot is what a failed fetch restores.
type viewSnapshot struct {
	activePath      treepath.Path
	viewedLineCount int
	renderedRows    int
	phase           Phase
	language        string
	displayText     string
	breadcrumb      []Crumb
}

// State is the complete navigation state of one document session.
// Values are never mutated in place by transitions; each returns a new State.
type State struct {
	expanded map[treepath.Path]struct{}

	// ActivePath is the selected file; the zero Path means none.
	ActivePath treepath.Path
	// ViewedLineCount counts real lines of the committed content, padding excluded.
	ViewedLineCount int
	// RenderedRows counts line rows on screen, padding included.
	RenderedRows int
	Phase        Phase
	// Language is the display language of the committed content.
	Language string
	// DisplayText is the committed content followed by the padding lines.
	DisplayText string
	Breadcrumb  []Crumb

	FontSize    int
	WrapEnabled bool
	Theme       Theme

	// fetchSequence identifies the newest content request.
	fetchSequence uint64
	// rollback is restored when the outstanding fetch fails.
	rollback *viewSnapshot
}

// NewState returns the state of a freshly loaded document.
func NewState() State {
	return State{
		expanded: map[treepath.Path]struct{}{},
		Phase:    PhaseEmpty,
		FontSize: DefaultFontSize,
		Theme:    ThemeLight,
	}
}

// HasActive reports whether a file is active.
func (state State) HasActive() bool {
	return !state.ActivePath.IsZero()
}

// IsActive reports whether path is the active file.
func (state State) IsActive(path treepath.Path) bool {
	return state.HasActive() && state.ActivePath == path
}

// IsExpanded reports whether the directory at path is open.
func (state State) IsExpanded(path treepath.Path) bool {
	_, expanded := state.expanded[path]
	return expanded
}

// ExpandedPaths lists open directories in lexical order.
func (state State) ExpandedPaths() []treepath.Path {
	paths := make([]treepath.Path, 0, len(state.expanded))
	for path := range state.expanded {
		paths = append(paths, path)
	}
	sort.Slice(paths, func(left, right int) bool {
		return paths[left].String() < paths[right].String()
	})
	return paths
}

// Loading reports whether a fetch is outstanding.
func (state State) Loading() bool {
	return state.Phase == PhaseLoading
}

func (state State) withExpanded(mutate func(map[treepath.Path]struct{})) State {
	cloned := make(map[treepath.Path]struct{}, len(state.expanded)+1)
	for path := range state.expanded {
		cloned[path] = struct{}{}
	}
	mutate(cloned)
	state.expanded = cloned
	return state
}

func (state State) snapshot() *viewSnapshot {
	return &viewSnapshot{
		activePath:      state.ActivePath,
		viewedLineCount: state.ViewedLineCount,
		renderedRows:    state.RenderedRows,
		phase:           state.Phase,
		language:        state.Language,
		displayText:     state.DisplayText,
		breadcrumb:      state.Breadcrumb,
	}
}

func (state State) restore(snapshot *viewSnapshot) State {
	state.ActivePath = snapshot.activePath
	state.ViewedLineCount = snapshot.viewedLineCount
	state.RenderedRows = snapshot.renderedRows
	state.Phase = snapshot.phase
	state.Language = snapshot.language
	state.DisplayText = snapshot.displayText
	state.Breadcrumb = snapshot.breadcrumb
	state.rollback = nil
	return state
}
