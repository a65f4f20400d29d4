package model

import (
	"errors"
	"fmt"
)

// ErrEmptyPattern is returned when a search request carries no pattern.
var ErrEmptyPattern = errors.New("empty search term")

// EOL is the dominant line-ending style of a document.
type EOL int

const (
	EOLNone EOL = iota
	EOLLF
	EOLCRLF
)

// Sep returns the line separator written after each extracted line.
func (e EOL) Sep() string {
	switch e {
	case EOLLF:
		return "\n"
	case EOLCRLF:
		return "\r\n"
	default:
		return ""
	}
}

func (e EOL) String() string {
	switch e {
	case EOLLF:
		return "LF"
	case EOLCRLF:
		return "CRLF"
	default:
		return "none"
	}
}

// ParseFileFormat maps a Neovim 'fileformat' value to an EOL.
func ParseFileFormat(ff string) EOL {
	switch ff {
	case "unix":
		return EOLLF
	case "dos":
		return EOLCRLF
	default:
		return EOLNone
	}
}

// LineSpan addresses one line of a document including its trailing line break.
// Start and End are byte offsets; the last line of a document has no break.
type LineSpan struct {
	Line  int
	Start int
	End   int
}

// MatchResult holds the matched lines in document order and their joined text.
type MatchResult struct {
	Spans []LineSpan
	Text  string
}

// Empty reports whether no line matched.
func (r MatchResult) Empty() bool {
	return len(r.Spans) == 0
}

// Lines returns the matched line indexes.
func (r MatchResult) Lines() []int {
	lines := make([]int, len(r.Spans))
	for i, s := range r.Spans {
		lines[i] = s.Line
	}
	return lines
}

// SearchRequest is what the user submitted at the prompt.
type SearchRequest struct {
	Pattern       string
	CaseSensitive bool
}

// Validate rejects requests that must not reach the matcher.
func (r SearchRequest) Validate() error {
	if r.Pattern == "" {
		return ErrEmptyPattern
	}
	return nil
}

// Action is what happens to the matched lines.
type Action int

const (
	Delete Action = iota
	Cut
	Copy
)

// Verb is the past-tense form used in status messages.
func (a Action) Verb() string {
	switch a {
	case Delete:
		return "deleted"
	case Cut:
		return "cut"
	case Copy:
		return "copied"
	default:
		return fmt.Sprintf("action(%d)", int(a))
	}
}

// Copies reports whether the action writes the clipboard.
func (a Action) Copies() bool { return a == Cut || a == Copy }

// Deletes reports whether the action removes lines from the document.
func (a Action) Deletes() bool { return a == Cut || a == Delete }

// Mode combines an action with its target.
type Mode struct {
	Action        Action
	ToNewDocument bool
}

// State is the terminal state of one command invocation.
type State int

const (
	Cancelled State = iota
	EmptyPattern
	PatternInvalid
	NoMatch
	Reported
	Failed
)

func (s State) String() string {
	switch s {
	case Cancelled:
		return "cancelled"
	case EmptyPattern:
		return "empty-pattern"
	case PatternInvalid:
		return "pattern-invalid"
	case NoMatch:
		return "no-match"
	case Reported:
		return "reported"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Outcome summarizes one command invocation for display.
type Outcome struct {
	State   State
	Count   int
	Message string
}
