// Package tui provides the interactive chat screen for the event assistant.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/raphaelgruber/eventqa/internal/service"
)

// askTimeout bounds one question including generation.
const askTimeout = 2 * time.Minute

// Asker is the chat-facing subset of the query service.
type Asker interface {
	Ask(ctx context.Context, question string) (service.Answer, error)
}

type exchange struct {
	question string
	answer   string
	failed   bool
}

// answerMsg carries the result of an asynchronous Ask.
type answerMsg struct {
	answer service.Answer
	err    error
}

// Model is the bubbletea model for the chat screen.
type Model struct {
	asker    Asker
	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model
	history  []exchange
	pending  string
	status   string
	ready    bool
}

// New creates a chat model.
func New(asker Asker) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask about upcoming events and press Enter"
	ti.Focus()
	ti.CharLimit = 500

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = statusStyle

	return Model{
		asker:    asker,
		input:    ti,
		viewport: viewport.New(0, 0),
		spinner:  sp,
		status:   "Ctrl+C to quit.",
	}
}

// Init starts the cursor blink.
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key, resize and answer messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, qh := inputBoxStyle.GetFrameSize()
		_, ch := historyBoxStyle.GetFrameSize()
		reserved := 1 + 1 + qh + 1 + ch // header, status, input line, frames
		m.viewport.Width = max(20, msg.Width-2)
		m.viewport.Height = max(3, msg.Height-reserved)
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		if msg.Type == tea.KeyEnter {
			q := strings.TrimSpace(m.input.Value())
			if q == "" || m.pending != "" {
				return m, nil
			}
			m.pending = q
			m.input.Reset()
			m.status = "Searching events..."
			m.refresh()
			return m, tea.Batch(m.ask(q), m.spinner.Tick)
		}
		if msg.Type == tea.KeyPgUp || msg.Type == tea.KeyPgDown {
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}

	case answerMsg:
		ex := exchange{question: m.pending}
		if msg.err != nil {
			ex.answer = service.UserMessage(msg.err)
			ex.failed = true
			m.status = "Something went wrong."
		} else {
			ex.answer = msg.answer.Text
			m.status = fmt.Sprintf("%d matching events.", msg.answer.Results)
		}
		m.history = append(m.history, ex)
		m.pending = ""
		m.refresh()
		return m, nil

	case spinner.TickMsg:
		if m.pending == "" {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) ask(q string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), askTimeout)
		defer cancel()
		ans, err := m.asker.Ask(ctx, q)
		return answerMsg{answer: ans, err: err}
	}
}

// refresh re-renders the conversation and scrolls to the newest entry.
func (m *Model) refresh() {
	m.viewport.SetContent(m.renderHistory())
	m.viewport.GotoBottom()
}

func (m Model) renderHistory() string {
	if len(m.history) == 0 && m.pending == "" {
		return hintStyle.Render("Try: \"free technical events in March 2024\"")
	}
	var b strings.Builder
	for _, ex := range m.history {
		b.WriteString(questionStyle.Render("You: " + ex.question))
		b.WriteString("\n")
		if ex.failed {
			b.WriteString(errorStyle.Render(ex.answer))
		} else {
			b.WriteString(ex.answer)
		}
		b.WriteString("\n\n")
	}
	if m.pending != "" {
		b.WriteString(questionStyle.Render("You: " + m.pending))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// View renders the chat layout.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := headerStyle.Render("Event Assistant")
	history := historyBoxStyle.Render(m.viewport.View())
	input := inputBoxStyle.Render(m.input.View())
	status := statusStyle.Render(m.status)
	if m.pending != "" {
		status = m.spinner.View() + " " + status
	}
	return header + "\n" + history + "\n" + input + "\n" + status
}

var (
	headerStyle     = lipgloss.NewStyle().Bold(true)
	historyBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	inputBoxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	questionStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#5FAFD7")).Bold(true)
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF005F"))
	statusStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#00D787"))
	hintStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#6C6C6C")).Italic(true)
)

// Run starts the chat program on the terminal.
func Run(asker Asker) error {
	_, err := tea.NewProgram(New(asker), tea.WithAltScreen()).Run()
	return err
}
