package navigator

import (
	"strconv"
	"strings"
	"time"
)

const (
	// JumpHighlightDuration is how long a jumped-to row stays highlighted.
	JumpHighlightDuration      = 1500 * time.Millisecond
	// FirstLineHighlightDuration is how long the first row stays highlighted.
	FirstLineHighlightDuration = 1000 * time.Millisecond
)

// ScrollAlignment tells the view where to place the target.
type ScrollAlignment string

const (
	AlignCenter ScrollAlignment = "center"
	AlignTop    ScrollAlignment = "top"
)

// ScrollTarget is the view effect of a jump.
type ScrollTarget struct {
	// Row is the 1-based line row to reveal. Zero with AlignTop scrolls the
	// viewer container to its top.
	Row       int
	Alignment ScrollAlignment
	Highlight time.Duration
}

// DefaultJumpLine is the line targeted when no line is given: the last real
// line of the viewed file, never a padding row.
func (state State) DefaultJumpLine() int {
	return state.ViewedLineCount
}

// JumpToLine resolves a 1-based line to a row in the rendered set. It reports
// false when no such row exists, including when no file is rendered. Lines past
// the real content but within the padding are valid targets.
func JumpToLine(state State, requestedLine int) (ScrollTarget, bool) {
	if state.Phase != PhaseRendered || requestedLine < 1 || requestedLine > state.RenderedRows {
		return ScrollTarget{}, false
	}
	return ScrollTarget{Row: requestedLine, Alignment: AlignCenter, Highlight: JumpHighlightDuration}, true
}

// JumpToLastLine jumps to DefaultJumpLine.
func JumpToLastLine(state State) (ScrollTarget, bool) {
	return JumpToLine(state, state.DefaultJumpLine())
}

// JumpFromInput interprets the line box: blank input jumps to the last real
// line, anything that is not a whole number is ignored.
func JumpFromInput(state State, input string) (ScrollTarget, bool) {
	trimmedInput := strings.TrimSpace(input)
	if trimmedInput == "" {
		return JumpToLastLine(state)
	}
	requestedLine, parseError := strconv.Atoi(trimmedInput)
	if parseError != nil {
		return ScrollTarget{}, false
	}
	return JumpToLine(state, requestedLine)
}

// JumpToFirst reveals line 1, or scrolls the empty viewer to its top when no
// rows are rendered yet.
func JumpToFirst(state State) ScrollTarget {
	if target, found := JumpToLine(state, 1); found {
		target.Highlight = FirstLineHighlightDuration
		return target
	}
	return ScrollTarget{Alignment: AlignTop}
}
