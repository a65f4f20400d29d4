package tui

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sokinpui/linecut/model"
)

const placeholder = "Search term (regular expression)"

// --- Styles ---
var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63")) // Mauve
	matchStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("78"))            // Green
	caseStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))           // Pink
	faintStyle = lipgloss.NewStyle().Faint(true)
)

// --- Model ---

// Model is a single-line prompt with a case-sensitivity toggle.
type Model struct {
	title         string
	input         textinput.Model
	caseSensitive bool
	state         state
}

type state int

const (
	stateEditing state = iota
	stateSubmitted
	stateCancelled
)

// New creates a prompt model.
func New(title string, caseSensitive bool) Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Prompt = "> "
	ti.CharLimit = 0
	ti.Focus()
	return Model{
		title:         title,
		input:         ti,
		caseSensitive: caseSensitive,
	}
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "enter":
			m.state = stateSubmitted
			return m, tea.Quit
		case "esc", "ctrl+c":
			m.state = stateCancelled
			return m, tea.Quit
		case "ctrl+t", "alt+c":
			m.caseSensitive = !m.caseSensitive
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if m.state != stateEditing {
		return ""
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render(m.title))
	b.WriteString("  ")
	hint := caseStyle
	if m.caseSensitive {
		hint = matchStyle
	}
	b.WriteString(hint.Render(CaseHint(m.caseSensitive)))
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(faintStyle.Render("enter: run • esc: cancel • ctrl+t: toggle case"))
	b.WriteString("\n")
	return b.String()
}

// Result reports what the user submitted. ok is false when the prompt was
// cancelled.
func (m Model) Result() (model.SearchRequest, bool) {
	if m.state != stateSubmitted {
		return model.SearchRequest{}, false
	}
	return model.SearchRequest{Pattern: m.input.Value(), CaseSensitive: m.caseSensitive}, true
}

// CaseHint is the label shown for the current toggle state.
func CaseHint(caseSensitive bool) string {
	if caseSensitive {
		return "Match case"
	}
	return "Ignore case"
}

// Prompter runs the prompt on the terminal.
type Prompter struct {
	In  io.Reader
	Out io.Writer
}

func (p Prompter) Prompt(ctx context.Context, title string, caseSensitive bool) (model.SearchRequest, bool, error) {
	opts := []tea.ProgramOption{tea.WithContext(ctx)}
	if p.In != nil {
		opts = append(opts, tea.WithInput(p.In))
	}
	if p.Out != nil {
		opts = append(opts, tea.WithOutput(p.Out))
	}

	final, err := tea.NewProgram(New(title, caseSensitive), opts...).Run()
	if err != nil {
		return model.SearchRequest{}, false, fmt.Errorf("prompt: %w", err)
	}
	req, ok := final.(Model).Result()
	return req, ok, nil
}
