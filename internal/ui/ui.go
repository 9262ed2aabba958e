package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/tunebar/internal/dispatch"
)

// Model represents the control surface state: one query input, the
// current result list, and the outcome of the last selection.
type Model struct {
	ctx        context.Context
	dispatcher *dispatch.Dispatcher

	input   textinput.Model
	results list.Model
	help    help.Model
	keys    keyMap

	// seq numbers outgoing dispatches; applied remembers the newest
	// sequence whose results are on screen so stale output is dropped.
	seq      uint64
	applied  uint64
	inflight int

	status   string
	statusOK bool

	width  int
	height int
}

// NewModel creates a control surface around the dispatcher.
func NewModel(ctx context.Context, dispatcher *dispatch.Dispatcher) *Model {
	input := textinput.New()
	input.Placeholder = "Search, or type a command (" + strings.Join(dispatcher.Commands(), ", ") + ")"
	input.Prompt = "> "
	input.Focus()

	return &Model{
		ctx:        ctx,
		dispatcher: dispatcher,
		input:      input,
		results:    newResultList(),
		help:       help.New(),
		keys:       newKeyMap(),
	}
}

// Init focuses the input and dispatches the blank query so the
// now-playing view greets the user.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.dispatchCmd(""))
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = msg.Width - 4
		m.results.SetSize(msg.Width-4, msg.Height-8)
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.quit):
			return m, tea.Quit

		case key.Matches(msg, m.keys.up), key.Matches(msg, m.keys.down):
			var cmd tea.Cmd
			m.results, cmd = m.results.Update(msg)
			return m, cmd

		case key.Matches(msg, m.keys.enter):
			return m, m.selectCmd()

		case key.Matches(msg, m.keys.clear):
			m.input.SetValue("")
			m.status = ""
			return m, m.dispatchCmd("")

		default:
			return m.handleInput(msg)
		}

	case resultsMsg:
		return m.applyResults(msg)

	case selectionMsg:
		m.status = msg.title
		m.statusOK = msg.ok
		// Refresh the view so toggles reflect the new playback state.
		return m, m.dispatchCmd(m.input.Value())
	}

	return m, nil
}

// View renders the control surface.
func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(styles.title.Render("tunebar"))
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")
	b.WriteString(m.results.View())
	b.WriteString("\n")

	if m.inflight > 0 {
		b.WriteString(styles.warn.Render("searching..."))
		b.WriteString("\n")
	}
	if m.status != "" {
		mark := styles.ok.Render("✓ " + m.status)
		if !m.statusOK {
			mark = styles.err.Render("✗ " + m.status)
		}
		b.WriteString(mark)
		b.WriteString("\n")
	}

	b.WriteString(m.help.ShortHelpView(m.keys.ShortHelp()))
	return b.String()
}

// handleInput feeds a key to the text input and dispatches when the query
// changed. Every keystroke is its own dispatch; the dispatcher coalesces.
func (m *Model) handleInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	before := m.input.Value()

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)

	if m.input.Value() == before {
		return m, cmd
	}

	m.status = ""
	return m, tea.Batch(cmd, m.dispatchCmd(m.input.Value()))
}

// dispatchCmd issues one dispatch on the command goroutine.
func (m *Model) dispatchCmd(query string) tea.Cmd {
	m.seq++
	m.inflight++
	seq := m.seq

	return func() tea.Msg {
		return resultsMsg{seq: seq, results: m.dispatcher.Dispatch(m.ctx, query)}
	}
}

// applyResults replaces the list unless the dispatch was superseded (nil
// sentinel) or older than what is already showing.
func (m *Model) applyResults(msg resultsMsg) (tea.Model, tea.Cmd) {
	if m.inflight > 0 {
		m.inflight--
	}

	if msg.results == nil || msg.seq < m.applied {
		return m, nil
	}

	m.applied = msg.seq
	cmd := m.results.SetItems(resultItems(msg.results))
	m.results.Select(0)
	return m, cmd
}

// selectCmd runs the selected result's action off the UI goroutine.
func (m *Model) selectCmd() tea.Cmd {
	selected := m.results.SelectedItem()
	if selected == nil {
		return nil
	}

	item, ok := selected.(resultItem)
	if !ok {
		return nil
	}

	return func() tea.Msg {
		return selectionMsg{title: item.result.Title, ok: item.result.OnSelect()}
	}
}

// Run starts the program and blocks until the user quits.
func Run(ctx context.Context, dispatcher *dispatch.Dispatcher) error {
	program := tea.NewProgram(NewModel(ctx, dispatcher), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("control surface exited: %w", err)
	}
	return nil
}
