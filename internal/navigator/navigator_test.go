package navigator_test

import (
	"reflect"
	"strings"
	"testing"

	"github.com/temirov/srcview/internal/navigator"
	"github.com/temirov/srcview/internal/tree"
	"github.com/temirov/srcview/internal/treepath"
	"github.com/temirov/srcview/internal/types"
)

var (
	readmePath  = treepath.MustParse("README.md")
	sourcePath  = treepath.MustParse("src")
	pythonPath  = treepath.MustParse("src/a.py")
	libraryPath = treepath.MustParse("src/lib")
	deepPath    = treepath.MustParse("src/lib/deep/b.py")
)

func fileNode(path treepath.Path, languageTag string) *types.TreeNode {
	return &types.TreeNode{Kind: types.NodeKindFile, Name: path.Base(), Path: path, Language: languageTag}
}

func directoryNode(path treepath.Path, children ...*types.TreeNode) *types.TreeNode {
	return &types.TreeNode{Kind: types.NodeKindDirectory, Name: path.Base(), Path: path, Children: children}
}

func sampleNavigator(options navigator.Options) *navigator.Navigator {
	root := directoryNode(treepath.Root(),
		fileNode(readmePath, "markdown"),
		directoryNode(sourcePath,
			fileNode(pythonPath, "python"),
			directoryNode(libraryPath,
				directoryNode(treepath.MustParse("src/lib/deep"), fileNode(deepPath, "python")),
			),
		),
	)
	return navigator.New(tree.NewIndex(root), options)
}

func selectAndCommit(testingHandle *testing.T, nav *navigator.Navigator, state navigator.State, path treepath.Path, text string) navigator.State {
	testingHandle.Helper()
	nextState, request := nav.SelectFile(state, path)
	if request == nil {
		testingHandle.Fatalf("expected a content request for %s", path)
	}
	committedState, committed := nav.CompleteFetch(nextState, *request, text)
	if !committed {
		testingHandle.Fatalf("expected %s to commit", path)
	}
	return committedState
}

// TestSelectFileScenario covers a trailing newline file and its breadcrumb.
func TestSelectFileScenario(testingHandle *testing.T) {
	nav := sampleNavigator(navigator.Options{})
	loadingState, request := nav.SelectFile(navigator.NewState(), pythonPath)
	if request == nil || request.Path != pythonPath {
		testingHandle.Fatalf("unexpected request %+v", request)
	}
	if loadingState.Phase != navigator.PhaseLoading || !loadingState.IsActive(pythonPath) {
		testingHandle.Fatalf("unexpected loading state %+v", loadingState)
	}
	expectedCrumbs := []navigator.Crumb{
		{Segment: "src", Target: sourcePath},
		{Segment: "a.py", Target: pythonPath},
	}
	if !reflect.DeepEqual(loadingState.Breadcrumb, expectedCrumbs) {
		testingHandle.Fatalf("expected crumbs %+v, got %+v", expectedCrumbs, loadingState.Breadcrumb)
	}

	renderedState, committed := nav.CompleteFetch(loadingState, *request, "x=1\n")
	if !committed {
		testingHandle.Fatalf("expected commit")
	}
	if renderedState.ViewedLineCount != 2 {
		testingHandle.Fatalf("expected 2 viewed lines, got %d", renderedState.ViewedLineCount)
	}
	if renderedState.RenderedRows != 2+navigator.DefaultPaddingLines {
		testingHandle.Fatalf("unexpected rendered rows %d", renderedState.RenderedRows)
	}
	if renderedState.DisplayText != "x=1\n"+strings.Repeat("\n", navigator.DefaultPaddingLines) {
		testingHandle.Fatalf("unexpected display text %q", renderedState.DisplayText)
	}
	if renderedState.Language != "python" || renderedState.Phase != navigator.PhaseRendered {
		testingHandle.Fatalf("unexpected rendered state %+v", renderedState)
	}
}

func TestCountLines(testingHandle *testing.T) {
	testCases := map[string]int{
		"":        1,
		"a":       1,
		"a\nb\nc": 3,
		"x=1\n":   2,
		"\n\n":    3,
	}
	for text, expected := range testCases {
		if counted := navigator.CountLines(text); counted != expected {
			testingHandle.Fatalf("%q: expected %d, got %d", text, expected, counted)
		}
	}
}

// TestSelectingAnotherFileMovesActiveMarker verifies exactly one file is active.
func TestSelectingAnotherFileMovesActiveMarker(testingHandle *testing.T) {
	nav := sampleNavigator(navigator.Options{})
	state := selectAndCommit(testingHandle, nav, navigator.NewState(), readmePath, "# a")
	state = selectAndCommit(testingHandle, nav, state, pythonPath, "x")
	if state.IsActive(readmePath) || !state.IsActive(pythonPath) {
		testingHandle.Fatalf("expected only %s active, got %s", pythonPath, state.ActivePath)
	}
}

func TestSelectFileIgnoresDirectoriesAndUnknownPaths(testingHandle *testing.T) {
	nav := sampleNavigator(navigator.Options{})
	initial := navigator.NewState()
	for _, path := range []treepath.Path{sourcePath, treepath.MustParse("nope.txt"), treepath.Root()} {
		nextState, request := nav.SelectFile(initial, path)
		if request != nil || nextState.HasActive() || nextState.Phase != navigator.PhaseEmpty {
			testingHandle.Fatalf("%s: expected no-op", path)
		}
	}
}

// TestSelectActiveFileSkipsFetch documents that re-selecting the active file does not re-fetch.
func TestSelectActiveFileSkipsFetch(testingHandle *testing.T) {
	nav := sampleNavigator(navigator.Options{})
	state := selectAndCommit(testingHandle, nav, navigator.NewState(), pythonPath, "x")
	if _, request := nav.SelectFile(state, pythonPath); request != nil {
		testingHandle.Fatalf("expected no request for the active file")
	}
	loadingState, firstRequest := nav.SelectFile(navigator.NewState(), readmePath)
	if _, secondRequest := nav.SelectFile(loadingState, readmePath); firstRequest == nil || secondRequest != nil {
		testingHandle.Fatalf("expected the in-flight request to be reused")
	}
}

// TestStaleCompletionIsDiscarded verifies last-write-wins between overlapping selections.
func TestStaleCompletionIsDiscarded(testingHandle *testing.T) {
	nav := sampleNavigator(navigator.Options{})
	firstState, firstRequest := nav.SelectFile(navigator.NewState(), readmePath)
	secondState, secondRequest := nav.SelectFile(firstState, pythonPath)

	afterStale, committed := nav.CompleteFetch(secondState, *firstRequest, "stale\ncontent\nhere")
	if committed {
		testingHandle.Fatalf("stale completion must not commit")
	}
	if !afterStale.IsActive(pythonPath) || afterStale.ViewedLineCount != 0 || afterStale.Phase != navigator.PhaseLoading {
		testingHandle.Fatalf("stale completion changed state: %+v", afterStale)
	}
	if _, failed := nav.FailFetch(afterStale, *firstRequest); failed {
		testingHandle.Fatalf("stale failure must be ignored")
	}
	finalState, committed := nav.CompleteFetch(afterStale, *secondRequest, "x=1")
	if !committed || finalState.ViewedLineCount != 1 || finalState.Language != "python" {
		testingHandle.Fatalf("unexpected final state %+v", finalState)
	}
}

// TestReselectingEarlierPathDropsItsOlderFetch verifies the guard also compares request identity.
func TestReselectingEarlierPathDropsItsOlderFetch(testingHandle *testing.T) {
	nav := sampleNavigator(navigator.Options{})
	stateA, requestA := nav.SelectFile(navigator.NewState(), readmePath)
	stateB, _ := nav.SelectFile(stateA, pythonPath)
	stateA2, requestA2 := nav.SelectFile(stateB, readmePath)
	if _, committed := nav.CompleteFetch(stateA2, *requestA, "old"); committed {
		testingHandle.Fatalf("superseded request for the same path must not commit")
	}
	if _, committed := nav.CompleteFetch(stateA2, *requestA2, "new"); !committed {
		testingHandle.Fatalf("newest request must commit")
	}
}

// TestFailedFetchRestoresPreviousView verifies no partial selection survives a failure.
func TestFailedFetchRestoresPreviousView(testingHandle *testing.T) {
	nav := sampleNavigator(navigator.Options{})
	rendered := selectAndCommit(testingHandle, nav, navigator.NewState(), readmePath, "a\nb\nc")

	loading, _ := nav.SelectFile(rendered, pythonPath)
	intermediate, lastRequest := nav.SelectFile(loading, deepPath)
	if lastRequest == nil {
		testingHandle.Fatalf("expected a request for %s", deepPath)
	}

	reverted, current := nav.FailFetch(intermediate, *lastRequest)
	if !current {
		testingHandle.Fatalf("expected newest failure to apply")
	}
	if !reverted.IsActive(readmePath) || reverted.ViewedLineCount != 3 || reverted.Phase != navigator.PhaseRendered {
		testingHandle.Fatalf("expected previous view restored, got %+v", reverted)
	}
	if !reflect.DeepEqual(reverted.Breadcrumb, rendered.Breadcrumb) || reverted.DisplayText != rendered.DisplayText {
		testingHandle.Fatalf("breadcrumb or text not restored")
	}
}

func TestFailedFirstFetchReturnsToEmpty(testingHandle *testing.T) {
	nav := sampleNavigator(navigator.Options{})
	loading, request := nav.SelectFile(navigator.NewState(), pythonPath)
	reverted, current := nav.FailFetch(loading, *request)
	if !current || reverted.HasActive() || reverted.Phase != navigator.PhaseEmpty || reverted.Breadcrumb != nil {
		testingHandle.Fatalf("expected empty state, got %+v", reverted)
	}
	if _, request := nav.SelectFile(reverted, pythonPath); request == nil {
		testingHandle.Fatalf("expected retry to issue a new request")
	}
}

// TestLocateExpandsEveryAncestor verifies locate is a monotonic union over ancestors.
func TestLocateExpandsEveryAncestor(testingHandle *testing.T) {
	nav := sampleNavigator(navigator.Options{})
	state := nav.ToggleDirectory(navigator.NewState(), sourcePath)

	located, request := nav.Locate(state, deepPath)
	for _, ancestor := range deepPath.Ancestors() {
		if !located.IsExpanded(ancestor) {
			testingHandle.Fatalf("ancestor %s not expanded", ancestor)
		}
	}
	if located.IsExpanded(deepPath) {
		testingHandle.Fatalf("file must not be in the expanded set")
	}
	if request == nil || !located.IsActive(deepPath) {
		testingHandle.Fatalf("expected locate of an inactive file to select it")
	}
	if len(located.ExpandedPaths()) != 4 {
		testingHandle.Fatalf("unexpected expanded set %v", located.ExpandedPaths())
	}
	if state.IsExpanded(libraryPath) {
		testingHandle.Fatalf("locate mutated its input state")
	}

	relocated, secondRequest := nav.Locate(located, deepPath)
	if secondRequest != nil || !reflect.DeepEqual(relocated.ExpandedPaths(), located.ExpandedPaths()) {
		testingHandle.Fatalf("second locate must be idempotent")
	}
}

func TestLocateDirectoryAndUnknownPath(testingHandle *testing.T) {
	nav := sampleNavigator(navigator.Options{})
	active := selectAndCommit(testingHandle, nav, navigator.NewState(), readmePath, "x")

	located, request := nav.Locate(active, libraryPath)
	if request != nil || !located.IsActive(readmePath) {
		testingHandle.Fatalf("locating a directory must not change the active file")
	}
	if !located.IsExpanded(sourcePath) || !located.IsExpanded(treepath.Root()) || located.IsExpanded(libraryPath) {
		testingHandle.Fatalf("unexpected expanded set %v", located.ExpandedPaths())
	}

	unchanged, request := nav.Locate(active, treepath.MustParse("src/missing.py"))
	if request != nil || len(unchanged.ExpandedPaths()) != 0 || !unchanged.IsActive(readmePath) {
		testingHandle.Fatalf("unknown path must be a no-op")
	}
}

func TestLocateActive(testingHandle *testing.T) {
	nav := sampleNavigator(navigator.Options{})
	if state, request := nav.LocateActive(navigator.NewState()); request != nil || len(state.ExpandedPaths()) != 0 {
		testingHandle.Fatalf("locate without an active file must be a no-op")
	}
	active := selectAndCommit(testingHandle, nav, navigator.NewState(), deepPath, "x")
	located, request := nav.LocateActive(active)
	if request != nil || !located.IsExpanded(treepath.MustParse("src/lib/deep")) {
		testingHandle.Fatalf("unexpected locate result %v", located.ExpandedPaths())
	}
}

func TestExpandAllCollapseAll(testingHandle *testing.T) {
	nav := sampleNavigator(navigator.Options{})
	expanded := nav.ExpandAll(navigator.NewState())
	expandedTwice := nav.ExpandAll(expanded)
	if len(expanded.ExpandedPaths()) != 4 || !reflect.DeepEqual(expanded.ExpandedPaths(), expandedTwice.ExpandedPaths()) {
		testingHandle.Fatalf("unexpected expand all result %v", expanded.ExpandedPaths())
	}
	collapsed := nav.CollapseAll(expanded)
	if len(nav.CollapseAll(collapsed).ExpandedPaths()) != 0 || len(collapsed.ExpandedPaths()) != 0 {
		testingHandle.Fatalf("collapse all left directories open")
	}
	if len(expanded.ExpandedPaths()) != 4 {
		testingHandle.Fatalf("collapse all mutated its input")
	}
}

func TestToggleDirectory(testingHandle *testing.T) {
	nav := sampleNavigator(navigator.Options{})
	opened := nav.ToggleDirectory(navigator.NewState(), sourcePath)
	if !opened.IsExpanded(sourcePath) {
		testingHandle.Fatalf("expected open")
	}
	if nav.ToggleDirectory(opened, sourcePath).IsExpanded(sourcePath) {
		testingHandle.Fatalf("expected closed")
	}
	if len(nav.ToggleDirectory(opened, pythonPath).ExpandedPaths()) != 1 {
		testingHandle.Fatalf("toggling a file must be a no-op")
	}
}

func TestPresentationKeepsSelection(testingHandle *testing.T) {
	nav := sampleNavigator(navigator.Options{})
	state := selectAndCommit(testingHandle, nav, navigator.NewState(), pythonPath, "a\nb")
	presented := navigator.SwitchTheme(navigator.ChangeFontSize(navigator.ToggleWrap(state), navigator.FontSizeStep))
	if presented.ActivePath != state.ActivePath || presented.ViewedLineCount != state.ViewedLineCount || presented.Phase != navigator.PhaseRendered {
		testingHandle.Fatalf("presentation changed core state")
	}
	if !presented.WrapEnabled || presented.FontSize != navigator.DefaultFontSize+navigator.FontSizeStep || presented.Theme != navigator.ThemeDark {
		testingHandle.Fatalf("unexpected presentation %+v", presented)
	}
	if navigator.ChangeFontSize(state, -100).FontSize != navigator.MinimumFontSize {
		testingHandle.Fatalf("font size not bounded")
	}
	if navigator.SwitchTheme(presented).Theme != navigator.ThemeLight {
		testingHandle.Fatalf("theme did not switch back")
	}
}

func TestPaddingIsConfigurable(testingHandle *testing.T) {
	padded := sampleNavigator(navigator.Options{PaddingLines: 5})
	state := selectAndCommit(testingHandle, padded, navigator.NewState(), pythonPath, "a\nb")
	if state.RenderedRows != 7 || state.DisplayText != "a\nb"+strings.Repeat("\n", 5) {
		testingHandle.Fatalf("unexpected padded state %+v", state)
	}
	unpadded := sampleNavigator(navigator.Options{PaddingLines: navigator.NoPadding})
	state = selectAndCommit(testingHandle, unpadded, navigator.NewState(), pythonPath, "a\nb")
	if state.RenderedRows != 2 || state.DisplayText != "a\nb" || unpadded.PaddingLines() != 0 {
		testingHandle.Fatalf("unexpected unpadded state %+v", state)
	}
}

func TestBuildBreadcrumb(testingHandle *testing.T) {
	single := navigator.BuildBreadcrumb(readmePath)
	if len(single) != 1 || single[0].Segment != "README.md" || single[0].Target != readmePath {
		testingHandle.Fatalf("unexpected root-level crumb %+v", single)
	}
	deep := navigator.BuildBreadcrumb(deepPath)
	expectedTargets := []string{"src", "src/lib", "src/lib/deep", "src/lib/deep/b.py"}
	for crumbIndex, crumb := range deep {
		if crumb.Target.String() != expectedTargets[crumbIndex] {
			testingHandle.Fatalf("crumb %d: expected %s, got %s", crumbIndex, expectedTargets[crumbIndex], crumb.Target)
		}
	}
	rootCrumbs := navigator.BuildBreadcrumb(treepath.Root())
	if len(rootCrumbs) != 1 || !rootCrumbs[0].Target.IsRoot() {
		testingHandle.Fatalf("unexpected root crumb %+v", rootCrumbs)
	}
}
