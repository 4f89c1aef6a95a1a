package navigator

import (
	"context"
	"fmt"
	"sync"

	"github.com/temirov/srcview/internal/treepath"
)

const (
	errorFetchFailureFormat = "reading %s failed: %v"
	// FetchFailureNotice is shown to the user when content cannot be read.
	FetchFailureNotice      = "Reading failed, please check the path."
)

// Fetcher resolves a tree path to the raw text of that file.
type Fetcher interface {
	Fetch(ctx context.Context, path treepath.Path) (string, error)
}

// FetcherFunc adapts a function into a Fetcher.
type FetcherFunc func(context.Context, treepath.Path) (string, error)

// Fetch invokes the underlying function.
func (fetcher FetcherFunc) Fetch(ctx context.Context, path treepath.Path) (string, error) {
	return fetcher(ctx, path)
}

// Notifier surfaces one-shot messages to the user.
type Notifier interface {
	Notify(message string)
}

// NotifierFunc adapts a function into a Notifier.
type NotifierFunc func(string)

// Notify invokes the underlying function.
func (notifier NotifierFunc) Notify(message string) {
	notifier(message)
}

// FetchFailure reports content that could not be read. The selection that
// requested it has already been reverted when this is returned.
type FetchFailure struct {
	Path treepath.Path
	Err  error
}

// Error returns the error string.
func (failure *FetchFailure) Error() string {
	return fmt.Sprintf(errorFetchFailureFormat, failure.Path, failure.Err)
}

// Unwrap exposes the underlying cause.
func (failure *FetchFailure) Unwrap() error {
	return failure.Err
}

// Session owns the State of one document and performs fetches for it. Only the
// newest selection can commit; completions of superseded fetches are dropped.
type Session struct {
	navigator *Navigator
	fetcher   Fetcher
	notifier  Notifier

	mutex   sync.Mutex
	state   State
	pending *pendingFetch
}

// pendingFetch lets repeated selections of a loading file wait for the fetch
// that is already running instead of starting another one.
type pendingFetch struct {
	settled chan struct{}
	err     error
}

func (pending *pendingFetch) wait(ctx context.Context) error {
	select {
	case <-pending.settled:
		return pending.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// NewSession creates a session with a fresh State.
func NewSession(navigator *Navigator, fetcher Fetcher, notifier Notifier) *Session {
	return &Session{
		navigator: navigator,
		fetcher:   fetcher,
		notifier:  notifier,
		state:     NewState(),
	}
}

// State returns a copy of the current state.
func (session *Session) State() State {
	session.mutex.Lock()
	defer session.mutex.Unlock()
	return session.state
}

// Navigator returns the navigator the session applies transitions with.
func (session *Session) Navigator() *Navigator {
	return session.navigator
}

// Apply runs a state-only transition such as ExpandAll or ToggleWrap.
func (session *Session) Apply(transition func(State) State) State {
	session.mutex.Lock()
	defer session.mutex.Unlock()
	session.state = transition(session.state)
	return session.state
}

// SelectFile selects path and blocks until its content is committed, dropped
// as stale, or has failed. A failure is reported to the notifier and returned
// as a *FetchFailure. Selecting a file whose fetch is still running waits for
// that fetch and returns its outcome.
func (session *Session) SelectFile(ctx context.Context, path treepath.Path) error {
	return session.resolve(ctx, path, func(state State) (State, *ContentRequest) {
		return session.navigator.SelectFile(state, path)
	})
}

// Locate reveals path and fetches it if it is a file that was not active. Like
// SelectFile it waits for a fetch of path that is already running.
func (session *Session) Locate(ctx context.Context, path treepath.Path) error {
	return session.resolve(ctx, path, func(state State) (State, *ContentRequest) {
		return session.navigator.Locate(state, path)
	})
}

func (session *Session) resolve(ctx context.Context, path treepath.Path, transition func(State) (State, *ContentRequest)) error {
	session.mutex.Lock()
	nextState, request := transition(session.state)
	session.state = nextState
	if request == nil {
		outstanding := session.pending
		joinsRunningFetch := nextState.Phase == PhaseLoading && nextState.IsActive(path)
		session.mutex.Unlock()
		if !joinsRunningFetch || outstanding == nil {
			return nil
		}
		return outstanding.wait(ctx)
	}
	outstanding := &pendingFetch{settled: make(chan struct{})}
	session.pending = outstanding
	session.mutex.Unlock()

	text, fetchError := session.fetcher.Fetch(ctx, request.Path)

	session.mutex.Lock()
	defer session.mutex.Unlock()
	defer close(outstanding.settled)
	if fetchError != nil {
		revertedState, current := session.navigator.FailFetch(session.state, *request)
		if !current {
			return nil
		}
		session.state = revertedState
		if session.notifier != nil {
			session.notifier.Notify(FetchFailureNotice)
		}
		failure := &FetchFailure{Path: request.Path, Err: fetchError}
		outstanding.err = failure
		return failure
	}
	session.state, _ = session.navigator.CompleteFetch(session.state, *request, text)
	return nil
}

// JumpToLine resolves a jump against the current state.
func (session *Session) JumpToLine(requestedLine int) (ScrollTarget, bool) {
	return JumpToLine(session.State(), requestedLine)
}

// JumpFromInput resolves a jump typed into the line box.
func (session *Session) JumpFromInput(input string) (ScrollTarget, bool) {
	return JumpFromInput(session.State(), input)
}
