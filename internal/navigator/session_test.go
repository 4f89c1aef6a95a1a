package navigator_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/temirov/srcview/internal/navigator"
	"github.com/temirov/srcview/internal/treepath"
)

type recordingNotifier struct {
	mutex    sync.Mutex
	messages []string
}

func (notifier *recordingNotifier) Notify(message string) {
	notifier.mutex.Lock()
	defer notifier.mutex.Unlock()
	notifier.messages = append(notifier.messages, message)
}

func (notifier *recordingNotifier) count() int {
	notifier.mutex.Lock()
	defer notifier.mutex.Unlock()
	return len(notifier.messages)
}

func staticFetcher(contents map[treepath.Path]string) navigator.Fetcher {
	return navigator.FetcherFunc(func(_ context.Context, path treepath.Path) (string, error) {
		text, found := contents[path]
		if !found {
			return "", errors.New("not found")
		}
		return text, nil
	})
}

func TestSessionSelectAndJump(testingHandle *testing.T) {
	session := navigator.NewSession(
		sampleNavigator(navigator.Options{}),
		staticFetcher(map[treepath.Path]string{pythonPath: "1\n2\n3\n4\n5\n6\n7\n8\n9\n10"}),
		nil,
	)
	if _, found := session.JumpToLine(1); found {
		testingHandle.Fatalf("jump before loading must be a no-op")
	}
	if selectError := session.SelectFile(context.Background(), pythonPath); selectError != nil {
		testingHandle.Fatalf("select: %v", selectError)
	}
	state := session.State()
	if state.ViewedLineCount != 10 || state.RenderedRows != 30 {
		testingHandle.Fatalf("unexpected state %+v", state)
	}

	if _, found := session.JumpToLine(999); found {
		testingHandle.Fatalf("jump past the rendered rows must be a no-op")
	}
	if session.State().ActivePath != state.ActivePath || session.State().ViewedLineCount != 10 {
		testingHandle.Fatalf("no-op jump altered state")
	}
	target, found := session.JumpFromInput("")
	if !found || target.Row != 10 || target.Alignment != navigator.AlignCenter || target.Highlight != navigator.JumpHighlightDuration {
		testingHandle.Fatalf("default jump must target the last real line, got %+v", target)
	}
	if target, found := session.JumpToLine(25); !found || target.Row != 25 {
		testingHandle.Fatalf("explicit jump into the padding must be allowed")
	}
	if _, found := session.JumpToLine(31); found {
		testingHandle.Fatalf("row 31 does not exist")
	}
	if _, found := session.JumpFromInput("abc"); found {
		testingHandle.Fatalf("non numeric input must be ignored")
	}
	first := navigator.JumpToFirst(state)
	if first.Row != 1 || first.Highlight != navigator.FirstLineHighlightDuration {
		testingHandle.Fatalf("unexpected first line target %+v", first)
	}
}

func TestJumpToFirstWithoutContent(testingHandle *testing.T) {
	target := navigator.JumpToFirst(navigator.NewState())
	if target.Row != 0 || target.Alignment != navigator.AlignTop {
		testingHandle.Fatalf("expected scroll to top, got %+v", target)
	}
}

func TestSessionFetchFailure(testingHandle *testing.T) {
	notifier := &recordingNotifier{}
	session := navigator.NewSession(
		sampleNavigator(navigator.Options{}),
		staticFetcher(map[treepath.Path]string{readmePath: "a\nb"}),
		notifier,
	)
	if selectError := session.SelectFile(context.Background(), readmePath); selectError != nil {
		testingHandle.Fatalf("select: %v", selectError)
	}
	selectError := session.SelectFile(context.Background(), pythonPath)
	var failure *navigator.FetchFailure
	if !errors.As(selectError, &failure) || failure.Path != pythonPath {
		testingHandle.Fatalf("expected FetchFailure, got %v", selectError)
	}
	if notifier.count() != 1 {
		testingHandle.Fatalf("expected one notice, got %d", notifier.count())
	}
	state := session.State()
	if !state.IsActive(readmePath) || state.ViewedLineCount != 2 {
		testingHandle.Fatalf("failure must keep the previous selection, got %+v", state)
	}
}

// TestSessionStaleResponseIsDropped lets a slow first fetch finish after a
// second selection has already committed.
func TestSessionStaleResponseIsDropped(testingHandle *testing.T) {
	releaseSlow := make(chan struct{})
	slowStarted := make(chan struct{})
	fetcher := navigator.FetcherFunc(func(_ context.Context, path treepath.Path) (string, error) {
		if path == readmePath {
			close(slowStarted)
			<-releaseSlow
			return "slow\nslow\nslow\nslow", nil
		}
		return "fast", nil
	})
	session := navigator.NewSession(sampleNavigator(navigator.Options{}), fetcher, nil)

	slowDone := make(chan error, 1)
	go func() {
		slowDone <- session.SelectFile(context.Background(), readmePath)
	}()
	<-slowStarted
	if selectError := session.SelectFile(context.Background(), pythonPath); selectError != nil {
		testingHandle.Fatalf("select: %v", selectError)
	}
	close(releaseSlow)
	if slowError := <-slowDone; slowError != nil {
		testingHandle.Fatalf("stale completion must not error: %v", slowError)
	}
	state := session.State()
	if !state.IsActive(pythonPath) || state.ViewedLineCount != 1 {
		testingHandle.Fatalf("stale response overwrote state: %+v", state)
	}
}

func TestSessionLocateAndApply(testingHandle *testing.T) {
	session := navigator.NewSession(
		sampleNavigator(navigator.Options{}),
		staticFetcher(map[treepath.Path]string{deepPath: "deep"}),
		nil,
	)
	if locateError := session.Locate(context.Background(), deepPath); locateError != nil {
		testingHandle.Fatalf("locate: %v", locateError)
	}
	state := session.State()
	if !state.IsActive(deepPath) || !state.IsExpanded(libraryPath) || state.Phase != navigator.PhaseRendered {
		testingHandle.Fatalf("unexpected state after locate %+v", state)
	}
	collapsed := session.Apply(session.Navigator().CollapseAll)
	if len(collapsed.ExpandedPaths()) != 0 || !collapsed.IsActive(deepPath) {
		testingHandle.Fatalf("collapse all must keep the selection")
	}
}

// gatedFetcher blocks every fetch until release is closed and counts calls.
type gatedFetcher struct {
	started chan struct{}
	release chan struct{}
	text    string
	err     error

	mutex sync.Mutex
	calls int
}

func newGatedFetcher(text string, err error) *gatedFetcher {
	return &gatedFetcher{started: make(chan struct{}, 1), release: make(chan struct{}), text: text, err: err}
}

func (fetcher *gatedFetcher) Fetch(_ context.Context, _ treepath.Path) (string, error) {
	fetcher.mutex.Lock()
	fetcher.calls++
	fetcher.mutex.Unlock()
	fetcher.started <- struct{}{}
	<-fetcher.release
	return fetcher.text, fetcher.err
}

func (fetcher *gatedFetcher) callCount() int {
	fetcher.mutex.Lock()
	defer fetcher.mutex.Unlock()
	return fetcher.calls
}

func TestSessionRepeatedSelectionWaitsForRunningFetch(testingHandle *testing.T) {
	testCases := []struct {
		name          string
		fetchError    error
		expectFailure bool
		expectedPhase navigator.Phase
	}{
		{name: "success", expectedPhase: navigator.PhaseRendered},
		{name: "failure", fetchError: errors.New("unreadable"), expectFailure: true, expectedPhase: navigator.PhaseEmpty},
	}
	for _, testCase := range testCases {
		testingHandle.Run(testCase.name, func(testingHandle *testing.T) {
			fetcher := newGatedFetcher("a\nb", testCase.fetchError)
			session := navigator.NewSession(sampleNavigator(navigator.Options{}), fetcher, nil)

			firstResult := make(chan error, 1)
			go func() { firstResult <- session.SelectFile(context.Background(), pythonPath) }()
			<-fetcher.started

			secondResult := make(chan error, 1)
			go func() { secondResult <- session.Locate(context.Background(), pythonPath) }()
			select {
			case <-secondResult:
				testingHandle.Fatalf("a repeated selection must not return while the content is loading")
			case <-time.After(50 * time.Millisecond):
			}

			close(fetcher.release)
			for _, result := range []chan error{firstResult, secondResult} {
				selectError := <-result
				var failure *navigator.FetchFailure
				if testCase.expectFailure != errors.As(selectError, &failure) {
					testingHandle.Fatalf("unexpected result %v", selectError)
				}
			}
			if fetcher.callCount() != 1 {
				testingHandle.Fatalf("expected one fetch, got %d", fetcher.callCount())
			}
			if phase := session.State().Phase; phase != testCase.expectedPhase {
				testingHandle.Fatalf("expected phase %s, got %s", testCase.expectedPhase, phase)
			}
		})
	}
}

func TestSessionRepeatedSelectionHonorsContext(testingHandle *testing.T) {
	fetcher := newGatedFetcher("a", nil)
	session := navigator.NewSession(sampleNavigator(navigator.Options{}), fetcher, nil)
	firstResult := make(chan error, 1)
	go func() { firstResult <- session.SelectFile(context.Background(), pythonPath) }()
	<-fetcher.started

	canceledContext, cancel := context.WithCancel(context.Background())
	cancel()
	if selectError := session.SelectFile(canceledContext, pythonPath); !errors.Is(selectError, context.Canceled) {
		testingHandle.Fatalf("expected context cancellation, got %v", selectError)
	}
	close(fetcher.release)
	if selectError := <-firstResult; selectError != nil {
		testingHandle.Fatalf("first selection: %v", selectError)
	}
	if selectError := session.SelectFile(context.Background(), pythonPath); selectError != nil {
		testingHandle.Fatalf("selecting the rendered file: %v", selectError)
	}
	if fetcher.callCount() != 1 {
		testingHandle.Fatalf("expected one fetch, got %d", fetcher.callCount())
	}
}
