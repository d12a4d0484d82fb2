package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/raphaelgruber/eventqa/internal/service"
)

// Theme holds the color scheme for the progress display.
type Theme struct {
	Status  lipgloss.Color
	Success lipgloss.Color
	Error   lipgloss.Color
	Hint    lipgloss.Color
}

// defaultTheme provides default colors.
var defaultTheme = Theme{
	Status:  lipgloss.Color("#5FAFD7"), // light blue
	Success: lipgloss.Color("#00D787"), // green
	Error:   lipgloss.Color("#FF005F"), // red
	Hint:    lipgloss.Color("#6C6C6C"), // dim gray
}

func (t Theme) statusStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Status)
}

func (t Theme) completedStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Success).Bold(true)
}

func (t Theme) errorStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Error).Bold(true)
}

func (t Theme) hintStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Hint).Italic(true)
}

// eventDoneMsg reports one imported event.
type eventDoneMsg struct {
	done, total int
	name        string
	err         error
}

// importDoneMsg carries the final import outcome.
type importDoneMsg struct {
	result service.ImportResult
	err    error
}

// progressModel is the bubbletea model for an import in progress.
type progressModel struct {
	path     string
	progress progress.Model
	theme    Theme
	done     int
	total    int
	current  string
	failed   int
	result   *service.ImportResult
	err      error
	cancel   context.CancelFunc
	quitting bool
}

func newProgressModel(path string, cancel context.CancelFunc) progressModel {
	return progressModel{
		path:     path,
		progress: progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
		theme:    defaultTheme,
		cancel:   cancel,
	}
}

func (m progressModel) Init() tea.Cmd {
	return nil
}

func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.quitting = true
			m.cancel()
			return m, tea.Quit
		}

	case eventDoneMsg:
		m.done, m.total, m.current = msg.done, msg.total, msg.name
		if msg.err != nil {
			m.failed++
		}
		var pct float64
		if m.total > 0 {
			pct = float64(m.done) / float64(m.total)
		}
		return m, m.progress.SetPercent(pct)

	case importDoneMsg:
		m.result = &msg.result
		m.err = msg.err
		return m, tea.Quit

	case progress.FrameMsg:
		pm, cmd := m.progress.Update(msg)
		m.progress = pm.(progress.Model)
		return m, cmd
	}

	return m, nil
}

func (m progressModel) View() string {
	if m.result != nil || m.quitting {
		return m.finalView()
	}
	if m.total == 0 {
		return m.theme.statusStyle().Render("Reading "+m.path+"...") + "\n"
	}

	status := m.theme.statusStyle().Render("[importing]")
	counts := fmt.Sprintf("%d/%d events", m.done, m.total)
	line := fmt.Sprintf("%s %s %s\n", status, m.progress.View(), counts)
	if m.current != "" {
		line += m.theme.hintStyle().Render("  last: "+m.current) + "\n"
	}
	return line
}

func (m progressModel) finalView() string {
	if m.quitting && m.result == nil {
		return m.theme.hintStyle().Render("\nImport cancelled.\n")
	}
	if m.err != nil {
		return m.theme.errorStyle().Render(fmt.Sprintf("\n✗ Import failed: %s\n", m.err))
	}
	return renderImportResult(m.theme, *m.result)
}

func renderImportResult(theme Theme, r service.ImportResult) string {
	var b strings.Builder
	b.WriteString(theme.completedStyle().Render("✓ Completed") + "\n\n")
	fmt.Fprintf(&b, "  Events added:   %d\n", r.Added)
	if len(r.Failures) > 0 {
		fmt.Fprintf(&b, "  Events failed:  %d\n", len(r.Failures))
		b.WriteString(theme.errorStyle().Render(fmt.Sprintf("\nWarnings (%d):\n", len(r.Failures))))
		for _, f := range r.Failures {
			fmt.Fprintf(&b, "  • #%d %s: %s\n", f.Index, f.Name, f.Error)
		}
	}
	return b.String()
}

// RunImportProgress imports path while showing a progress bar.
// Ctrl+C cancels the remaining events.
func RunImportProgress(ctx context.Context, ingest *service.IngestService, path string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(newProgressModel(path, cancel))
	go func() {
		res, err := ingest.ImportFile(ctx, path, func(done, total int, name string, err error) {
			p.Send(eventDoneMsg{done: done, total: total, name: name, err: err})
		})
		p.Send(importDoneMsg{result: res, err: err})
	}()

	finalModel, err := p.Run()
	if err != nil {
		return fmt.Errorf("progress UI error: %w", err)
	}
	if m, ok := finalModel.(progressModel); ok && m.err != nil {
		return m.err
	}
	return nil
}
