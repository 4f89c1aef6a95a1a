package navigator

import (
	"strings"

	"github.com/temirov/srcview/internal/tree"
	"github.com/temirov/srcview/internal/treepath"
)

const (
	// DefaultPaddingLines is the number of blank lines shown after the content.
	DefaultPaddingLines = 20

	lineBreak = "\n"
)

// Options configures a Navigator.
type Options struct {
	// PaddingLines overrides DefaultPaddingLines when positive. Use NoPadding to
	// disable padding entirely.
	PaddingLines int
}

// NoPadding disables the blank lines appended after viewed content.
const NoPadding = -1

// ContentRequest asks the fetch collaborator for the text of a file.
type ContentRequest struct {
	Path     treepath.Path
	sequence uint64
}

// Navigator resolves user actions against a pre-built tree.
type Navigator struct {
	index        *tree.Index
	paddingLines int
}

// New creates a Navigator over index.
func New(index *tree.Index, options Options) *Navigator {
	paddingLines := options.PaddingLines
	switch {
	case paddingLines == 0:
		paddingLines = DefaultPaddingLines
	case paddingLines < 0:
		paddingLines = 0
	}
	return &Navigator{index: index, paddingLines: paddingLines}
}

// PaddingLines returns the number of blank lines appended to viewed content.
func (navigator *Navigator) PaddingLines() int {
	return navigator.paddingLines
}

// Index returns the tree the navigator resolves paths against.
func (navigator *Navigator) Index() *tree.Index {
	return navigator.index
}

// SelectFile makes path the active file and requests its content. A nil
// request means no fetch is needed because path is already active and its
// content is rendered or on its way. Selecting anything but a file is a no-op.
func (navigator *Navigator) SelectFile(state State, path treepath.Path) (State, *ContentRequest) {
	node, found := navigator.index.Lookup(path)
	if !found || !node.IsFile() {
		return state, nil
	}
	if state.IsActive(path) && state.Phase != PhaseEmpty {
		return state, nil
	}
	if state.rollback == nil {
		state.rollback = state.snapshot()
	}
	state.ActivePath = path
	state.Phase = PhaseLoading
	state.Breadcrumb = BuildBreadcrumb(path)
	state.fetchSequence++
	return state, &ContentRequest{Path: path, sequence: state.fetchSequence}
}

// CompleteFetch commits fetched text when request is still the newest one for
// the active file. Stale completions return the state unchanged and false.
func (navigator *Navigator) CompleteFetch(state State, request ContentRequest, text string) (State, bool) {
	if !navigator.isCurrent(state, request) {
		return state, false
	}
	node, _ := navigator.index.Lookup(request.Path)
	state.ViewedLineCount = CountLines(text)
	state.RenderedRows = state.ViewedLineCount + navigator.paddingLines
	state.DisplayText = text + strings.Repeat(lineBreak, navigator.paddingLines)
	state.Language = node.Language
	state.Phase = PhaseRendered
	state.rollback = nil
	return state, true
}

// FailFetch reverts the selection made for request. Stale failures are ignored
// and report false.
func (navigator *Navigator) FailFetch(state State, request ContentRequest) (State, bool) {
	if !navigator.isCurrent(state, request) {
		return state, false
	}
	if state.rollback == nil {
		state.Phase = PhaseEmpty
		return state, true
	}
	return state.restore(state.rollback), true
}

func (navigator *Navigator) isCurrent(state State, request ContentRequest) bool {
	return state.Phase == PhaseLoading &&
		state.IsActive(request.Path) &&
		request.sequence == state.fetchSequence
}

// Locate reveals path in the tree by opening every ancestor directory. When
// path is a file it also becomes the active file, fetching its content only if
// it was not already active. Unknown paths are ignored.
func (navigator *Navigator) Locate(state State, path treepath.Path) (State, *ContentRequest) {
	node, found := navigator.index.Lookup(path)
	if !found {
		return state, nil
	}
	state = state.withExpanded(func(expanded map[treepath.Path]struct{}) {
		for _, ancestor := range path.Ancestors() {
			expanded[ancestor] = struct{}{}
		}
	})
	if !node.IsFile() {
		return state, nil
	}
	return navigator.SelectFile(state, path)
}

// LocateActive locates the active file, if any.
func (navigator *Navigator) LocateActive(state State) (State, *ContentRequest) {
	if !state.HasActive() {
		return state, nil
	}
	return navigator.Locate(state, state.ActivePath)
}

// ExpandAll opens every directory.
func (navigator *Navigator) ExpandAll(state State) State {
	return state.withExpanded(func(expanded map[treepath.Path]struct{}) {
		for _, directoryPath := range navigator.index.Directories() {
			expanded[directoryPath] = struct{}{}
		}
	})
}

// CollapseAll closes every directory.
func (navigator *Navigator) CollapseAll(state State) State {
	state.expanded = map[treepath.Path]struct{}{}
	return state
}

// ToggleDirectory opens or closes a single directory.
func (navigator *Navigator) ToggleDirectory(state State, path treepath.Path) State {
	node, found := navigator.index.Lookup(path)
	if !found || !node.IsDirectory() {
		return state
	}
	return state.withExpanded(func(expanded map[treepath.Path]struct{}) {
		if _, open := expanded[path]; open {
			delete(expanded, path)
			return
		}
		expanded[path] = struct{}{}
	})
}

// CountLines returns the number of newline separated segments in text. Empty
// text has one line and a trailing newline starts an empty final line.
func CountLines(text string) int {
	return strings.Count(text, lineBreak) + 1
}
