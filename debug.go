package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"charm.land/bubbles/v2/viewport"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"chatwidget/chatapi"
	"chatwidget/markdown"
	"chatwidget/widget"
)

// DebugModel is the debug tab showing diagnostics from the widget.
type DebugModel struct {
	viewport viewport.Model
	lines    []string
	width    int
	height   int
}

// NewDebugModel creates a new debug tab model.
func NewDebugModel() DebugModel {
	vp := viewport.New(viewport.WithWidth(80), viewport.WithHeight(20))
	return DebugModel{viewport: vp}
}

// Update handles messages for the debug tab.
func (m DebugModel) Update(msg tea.Msg) (DebugModel, tea.Cmd) {
	switch msg := msg.(type) {
	case widget.ReplyMsg:
		if msg.Err != nil {
			m.addEntry("error", "9", describeError(msg.Err))
		}
		return m, nil

	case widget.CapabilityMsg:
		color := "10"
		if msg.State != markdown.StateAvailable {
			color = "11"
		}
		m.addEntry("md", color, "markdown capability "+msg.State.String())
		return m, nil

	case widget.ExportedMsg:
		if msg.Err != nil {
			m.addEntry("export", "9", msg.Err.Error())
		} else {
			m.addEntry("export", "10", "wrote "+msg.Path)
		}
		return m, nil

	case DiagnosticMsg:
		m.addEntry(msg.Label, "11", msg.Message)
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// describeError names the failure class behind a generic error bubble.
func describeError(err error) string {
	var se *chatapi.StatusError
	switch {
	case errors.As(err, &se):
		return fmt.Sprintf("status %d: %s", se.StatusCode, firstLine(se.Body, 120))
	case errors.Is(err, chatapi.ErrMalformedResponse):
		return "malformed response: " + err.Error()
	default:
		return "transport: " + err.Error()
	}
}

func (m *DebugModel) addEntry(label, color, text string) {
	ts := time.Now().Format("15:04:05.000")
	tsStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	labelStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(color))
	line := fmt.Sprintf("%s %s %s", tsStyle.Render(ts), labelStyle.Render(fmt.Sprintf("[%-6s]", label)), text)
	m.lines = append(m.lines, line)
	m.viewport.SetContent(strings.Join(m.lines, "\n"))
	m.viewport.GotoBottom()
}

// SetSize updates the debug tab dimensions.
func (m *DebugModel) SetSize(w, h int) {
	m.width = w
	m.height = h
	m.viewport.SetWidth(w)
	m.viewport.SetHeight(h)
}

// View renders the debug tab.
func (m DebugModel) View() string {
	return m.viewport.View()
}
