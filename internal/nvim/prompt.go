package nvim

import (
	"context"
	"fmt"
	"strings"

	"github.com/sokinpui/linecut/internal/document"
	"github.com/sokinpui/linecut/model"
)

// cancelReturn is what input() yields when the prompt is dismissed with <Esc>.
const cancelReturn = "\x1b"

// Prompt asks for a search term on the Neovim command line. A leading \C
// forces a case-sensitive match and a leading \c an insensitive one, the
// same switches Vim's own search understands.
func (m *Manager) Prompt(ctx context.Context, title string, caseSensitive bool) (model.SearchRequest, bool, error) {
	if err := ctx.Err(); err != nil {
		return model.SearchRequest{}, false, err
	}

	opts := map[string]interface{}{
		"prompt":       fmt.Sprintf("%s [%s, \\C/\\c to toggle]: ", title, CaseHint(caseSensitive)),
		"cancelreturn": cancelReturn,
	}
	var input string
	if err := m.nvim.Call("input", &input, opts); err != nil {
		return model.SearchRequest{}, false, fmt.Errorf("nvim input: %w", err)
	}
	// Clear the prompt line.
	_ = m.nvim.Command("redraw")

	if input == cancelReturn {
		return model.SearchRequest{}, false, nil
	}
	pattern, cs := ParseCaseFlag(input, caseSensitive)
	return model.SearchRequest{Pattern: pattern, CaseSensitive: cs}, true, nil
}

// CaseHint is the label shown next to the prompt.
func CaseHint(caseSensitive bool) string {
	if caseSensitive {
		return "Match case"
	}
	return "Ignore case"
}

// ParseCaseFlag strips a leading \C or \c from input.
func ParseCaseFlag(input string, caseSensitive bool) (string, bool) {
	switch {
	case strings.HasPrefix(input, `\C`):
		return input[2:], true
	case strings.HasPrefix(input, `\c`):
		return input[2:], false
	default:
		return input, caseSensitive
	}
}

// Info echoes msg on the Neovim message line.
func (m *Manager) Info(msg string) {
	_ = m.nvim.WriteOut(msg + "\n")
}

// Error shows msg as an error message.
func (m *Manager) Error(msg string) {
	_ = m.nvim.WritelnErr(msg)
}

// Register uses a Neovim register as the clipboard. The "+" register is
// shared with the system clipboard when Neovim has a provider for it.
type Register struct {
	m    *Manager
	name string
}

// Register returns a clipboard backed by register name.
func (m *Manager) Register(name string) *Register {
	return &Register{m: m, name: name}
}

func (r *Register) ReadAll() (string, error) {
	var text string
	if err := r.m.nvim.Call("getreg", &text, r.name); err != nil {
		return "", fmt.Errorf("failed to read register %s: %w", r.name, err)
	}
	return text, nil
}

func (r *Register) WriteAll(text string) error {
	// Whole lines go in linewise, so "p" puts them below the cursor.
	var value interface{} = text
	regtype := "v"
	if strings.HasSuffix(text, "\n") {
		value = document.Parse(text).Lines()
		regtype = "V"
	}
	if err := r.m.nvim.Call("setreg", nil, r.name, value, regtype); err != nil {
		return fmt.Errorf("failed to write register %s: %w", r.name, err)
	}
	return nil
}
