package host

import (
	"context"
	"errors"

	"github.com/sokinpui/linecut/internal/matcher"
	"github.com/sokinpui/linecut/model"
)

var (
	// ErrNoDocument is returned when there is no active document to work on.
	ErrNoDocument = errors.New("no active document")
	// ErrStaleDocument is returned when a document changed between matching and editing.
	ErrStaleDocument = errors.New("document changed since it was read")
)

// Prompter asks the user for a search term. ok is false when the prompt was
// dismissed without submitting.
type Prompter interface {
	Prompt(ctx context.Context, title string, caseSensitive bool) (req model.SearchRequest, ok bool, err error)
}

// Editor reads and edits documents owned by the host.
type Editor interface {
	// ActiveDocument returns a snapshot of the document currently in focus.
	ActiveDocument(ctx context.Context) (matcher.Document, error)
	// DeleteLines removes all spans from doc as a single edit.
	DeleteLines(ctx context.Context, doc matcher.Document, spans []model.LineSpan) error
	// OpenDocument creates a new untitled document and inserts text at its start.
	OpenDocument(ctx context.Context, title, text string) error
}

type Clipboard interface {
	ReadAll() (string, error)
	WriteAll(text string) error
}

type Notifier interface {
	Info(msg string)
	Error(msg string)
}

// Host is everything a command needs from the editor environment.
type Host struct {
	Prompter  Prompter
	Editor    Editor
	Clipboard Clipboard
	Notifier  Notifier
}

// Validate reports the first missing capability.
func (h Host) Validate() error {
	switch {
	case h.Prompter == nil:
		return errors.New("host: prompter is required")
	case h.Editor == nil:
		return errors.New("host: editor is required")
	case h.Clipboard == nil:
		return errors.New("host: clipboard is required")
	case h.Notifier == nil:
		return errors.New("host: notifier is required")
	}
	return nil
}

// Notifiers fans a notification out to several notifiers.
type Notifiers []Notifier

func (ns Notifiers) Info(msg string) {
	for _, n := range ns {
		n.Info(msg)
	}
}

func (ns Notifiers) Error(msg string) {
	for _, n := range ns {
		n.Error(msg)
	}
}

// StaticPrompter answers every prompt with a fixed request. It backs the
// non-interactive --pattern flag.
type StaticPrompter struct {
	Request model.SearchRequest
}

func (p StaticPrompter) Prompt(ctx context.Context, _ string, _ bool) (model.SearchRequest, bool, error) {
	if err := ctx.Err(); err != nil {
		return model.SearchRequest{}, false, err
	}
	return p.Request, true, nil
}
