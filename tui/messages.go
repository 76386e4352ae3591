package tui

import "github.com/spektr-org/wrangle/session"

// entryKind selects how a transcript line is styled.
type entryKind int

const (
	entryInfo entryKind = iota
	entryUser
	entrySuccess
	entryWarning
	entryError
	entryCode
	entryTable
)

// entry is one block of the session transcript.
type entry struct {
	kind entryKind
	text string
}

// applyDoneMsg is sent when an instruction finished translating and
// executing.
type applyDoneMsg struct {
	outcome *session.Outcome
	err     error
}

// loadDoneMsg is sent when a file finished loading.
type loadDoneMsg struct {
	name   string
	reinit bool
	err    error
}
