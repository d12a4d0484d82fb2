package tui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raphaelgruber/eventqa/internal/service"
)

type stubAsker struct {
	answer service.Answer
	err    error
	asked  []string
}

func (s *stubAsker) Ask(_ context.Context, q string) (service.Answer, error) {
	s.asked = append(s.asked, q)
	return s.answer, s.err
}

func sized(t *testing.T, m Model) Model {
	t.Helper()
	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	return next.(Model)
}

func TestChatRoundTrip(t *testing.T) {
	asker := &stubAsker{answer: service.Answer{Text: "Robot Expo on 10-Feb-2024.", Found: true, Results: 1}}
	m := sized(t, New(asker))
	assert.Contains(t, m.View(), "Event Assistant")

	m.input.SetValue("robot events")
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(Model)
	require.NotNil(t, cmd)
	assert.Equal(t, "robot events", m.pending)
	assert.Empty(t, m.input.Value())

	msg := m.ask("robot events")()
	next, _ = m.Update(msg)
	m = next.(Model)

	assert.Equal(t, []string{"robot events"}, asker.asked)
	assert.Empty(t, m.pending)
	require.Len(t, m.history, 1)
	assert.Contains(t, m.View(), "Robot Expo on 10-Feb-2024.")
	assert.Contains(t, m.status, "1 matching events")
}

func TestChatShowsGenericError(t *testing.T) {
	m := sized(t, New(&stubAsker{err: errors.New("connection refused")}))
	m.pending = "anything"

	next, _ := m.Update(m.ask("anything")())
	m = next.(Model)

	require.Len(t, m.history, 1)
	assert.True(t, m.history[0].failed)
	assert.Equal(t, service.UnavailableMessage, m.history[0].answer)
}

func TestChatIgnoresBlankAndBusyInput(t *testing.T) {
	m := sized(t, New(&stubAsker{}))

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)

	m.pending = "first"
	m.input.SetValue("second")
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.Equal(t, "first", next.(Model).pending)
}

func TestChatQuits(t *testing.T) {
	m := sized(t, New(&stubAsker{}))
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}
