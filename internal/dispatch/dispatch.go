package dispatch

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/sokinpui/linecut/internal/host"
	"github.com/sokinpui/linecut/internal/matcher"
	"github.com/sokinpui/linecut/model"
)

const (
	msgEmptyPattern = "Empty search term"
	msgNoMatch      = "No match found"
	msgUnexpected   = "Unable to complete action due to unexpected error: "
	msgInvalidRegex = "Invalid regular expression: "

	titleLayout = "15:04:05 Mon Jan 02 2006"
)

// Command is one invocable entry point.
type Command struct {
	Name  string
	Title string
	Mode  model.Mode
}

// Commands lists every command in the order they are shown in help output.
var Commands = []Command{
	{Name: "delete-lines", Title: "Delete matching lines", Mode: model.Mode{Action: model.Delete}},
	{Name: "cut-lines", Title: "Cut matching lines", Mode: model.Mode{Action: model.Cut}},
	{Name: "copy-lines", Title: "Copy matching lines", Mode: model.Mode{Action: model.Copy}},
	{Name: "cut-lines-to-new", Title: "Cut matching lines to new document", Mode: model.Mode{Action: model.Cut, ToNewDocument: true}},
	{Name: "copy-lines-to-new", Title: "Copy matching lines to new document", Mode: model.Mode{Action: model.Copy, ToNewDocument: true}},
}

// Lookup finds a command by name.
func Lookup(name string) (Command, bool) {
	for _, c := range Commands {
		if c.Name == name {
			return c, true
		}
	}
	return Command{}, false
}

// DetailedError enhances a standard error with a stack trace.
type DetailedError struct {
	Err   error
	Stack []byte
}

func (e *DetailedError) Error() string {
	return e.Err.Error()
}

func (e *DetailedError) Unwrap() error {
	return e.Err
}

// UntitledTitle names a new document after its creation time.
func UntitledTitle(t time.Time) string {
	return "Untitled - " + t.Format(titleLayout)
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithCaseSensitive sets the initial state of the prompt's case toggle.
func WithCaseSensitive(on bool) Option {
	return func(d *Dispatcher) { d.caseSensitive = on }
}

// WithClock replaces time.Now when naming new documents.
func WithClock(now func() time.Time) Option {
	return func(d *Dispatcher) { d.now = now }
}

// Dispatcher runs commands against a host. Invocations through the same
// Dispatcher are serialized.
type Dispatcher struct {
	host          host.Host
	caseSensitive bool
	now           func() time.Time

	mu sync.Mutex
}

// New creates a Dispatcher for h.
func New(h host.Host, opts ...Option) (*Dispatcher, error) {
	if err := h.Validate(); err != nil {
		return nil, err
	}
	d := &Dispatcher{host: h, now: time.Now}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Execute prompts for a search term and applies cmd to the matching lines of
// the active document. Every terminal state except cancellation is reported
// through the host notifier. The returned error is non-nil only for invalid
// patterns and host failures, both of which were already reported.
func (d *Dispatcher) Execute(ctx context.Context, cmd Command) (model.Outcome, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	req, ok, err := d.host.Prompter.Prompt(ctx, cmd.Title, d.caseSensitive)
	if err != nil {
		return d.fail(fmt.Errorf("prompt: %w", err))
	}
	if !ok {
		return model.Outcome{State: model.Cancelled}, nil
	}
	return d.run(ctx, cmd.Mode, req)
}

// Run applies mode for an already submitted request, skipping the prompt.
func (d *Dispatcher) Run(ctx context.Context, mode model.Mode, req model.SearchRequest) (model.Outcome, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.run(ctx, mode, req)
}

func (d *Dispatcher) run(ctx context.Context, mode model.Mode, req model.SearchRequest) (out model.Outcome, err error) {
	if err := req.Validate(); err != nil {
		d.host.Notifier.Error(msgEmptyPattern)
		return model.Outcome{State: model.EmptyPattern, Message: msgEmptyPattern}, nil
	}

	defer func() {
		if r := recover(); r != nil {
			out, err = d.fail(&DetailedError{
				Err:   fmt.Errorf("internal panic: %v", r),
				Stack: debug.Stack(),
			})
		}
	}()

	doc, err := d.host.Editor.ActiveDocument(ctx)
	if err != nil {
		return d.fail(fmt.Errorf("read active document: %w", err))
	}

	res, err := matcher.Match(doc, req.Pattern, req.CaseSensitive)
	if err != nil {
		var perr *matcher.PatternError
		if errors.As(err, &perr) {
			msg := msgInvalidRegex + perr.Err.Error()
			d.host.Notifier.Error(msg)
			return model.Outcome{State: model.PatternInvalid, Message: msg}, err
		}
		return d.fail(err)
	}
	if res.Empty() {
		d.host.Notifier.Info(msgNoMatch)
		return model.Outcome{State: model.NoMatch, Message: msgNoMatch}, nil
	}

	if err := d.apply(ctx, mode, doc, res); err != nil {
		return d.fail(err)
	}

	msg := fmt.Sprintf("%d lines were %s", len(res.Spans), mode.Action.Verb())
	d.host.Notifier.Info(msg)
	return model.Outcome{State: model.Reported, Count: len(res.Spans), Message: msg}, nil
}

func (d *Dispatcher) apply(ctx context.Context, mode model.Mode, doc matcher.Document, res model.MatchResult) error {
	// Delete first: a refused delete must leave the clipboard alone.
	if mode.Action.Deletes() {
		if err := d.host.Editor.DeleteLines(ctx, doc, res.Spans); err != nil {
			return fmt.Errorf("delete lines: %w", err)
		}
	}
	if mode.Action.Copies() {
		if err := d.host.Clipboard.WriteAll(res.Text); err != nil {
			return fmt.Errorf("write clipboard: %w", err)
		}
	}
	if mode.ToNewDocument {
		if err := d.host.Editor.OpenDocument(ctx, UntitledTitle(d.now()), res.Text); err != nil {
			return fmt.Errorf("open new document: %w", err)
		}
	}
	return nil
}

func (d *Dispatcher) fail(err error) (model.Outcome, error) {
	msg := msgUnexpected + err.Error()
	d.host.Notifier.Error(msg)
	return model.Outcome{State: model.Failed, Message: msg}, err
}
