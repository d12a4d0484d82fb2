package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raphaelgruber/eventqa/internal/service"
)

type scriptedAsker struct {
	answers map[string]string
}

func (s scriptedAsker) Ask(_ context.Context, q string) (service.Answer, error) {
	if a, ok := s.answers[q]; ok {
		return service.Answer{Text: a, Found: true}, nil
	}
	return service.Answer{}, errors.New("store offline")
}

func TestChatREPL(t *testing.T) {
	asker := scriptedAsker{answers: map[string]string{"robots?": "Robot Expo on 10-Feb-2024."}}
	in := strings.NewReader("robots?\n\nbroken\nexit\nnever asked\n")
	var out bytes.Buffer

	require.NoError(t, chatREPL(context.Background(), in, &out, asker))

	got := out.String()
	assert.Contains(t, got, "Robot Expo on 10-Feb-2024.")
	assert.Contains(t, got, service.UnavailableMessage)
	assert.NotContains(t, got, "store offline")
}

func TestChatREPLStopsAtEOF(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, chatREPL(context.Background(), strings.NewReader(""), &out, scriptedAsker{}))
	assert.Equal(t, "> \n", out.String())
}

func TestRenderImportResult(t *testing.T) {
	out := renderImportResult(defaultTheme, service.ImportResult{
		Added: 2,
		Failures: []service.ImportFailure{
			{Index: 1, Name: "Broken", Error: "invalid event: missing event_domain"},
		},
	})
	assert.Contains(t, out, "Events added:   2")
	assert.Contains(t, out, "Events failed:  1")
	assert.Contains(t, out, "#1 Broken: invalid event: missing event_domain")
}

func TestProgressModel(t *testing.T) {
	cancelled := false
	m := newProgressModel("events.yaml", func() { cancelled = true })
	assert.Contains(t, m.View(), "Reading events.yaml")

	next, _ := m.Update(eventDoneMsg{done: 1, total: 2, name: "AI Workshop"})
	m = next.(progressModel)
	assert.Contains(t, m.View(), "1/2 events")
	assert.Contains(t, m.View(), "AI Workshop")

	next, _ = m.Update(eventDoneMsg{done: 2, total: 2, name: "Broken", err: errors.New("bad date")})
	m = next.(progressModel)
	assert.Equal(t, 1, m.failed)

	next, cmd := m.Update(importDoneMsg{result: service.ImportResult{Added: 1}})
	m = next.(progressModel)
	require.NotNil(t, cmd)
	assert.Contains(t, m.View(), "Events added:   1")
	assert.False(t, cancelled)
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"version"})
	t.Cleanup(func() { rootCmd.SetArgs(nil); rootCmd.SetOut(nil) })

	require.NoError(t, rootCmd.Execute())
	assert.Equal(t, "eventqa "+Version+"\n", out.String())
}
