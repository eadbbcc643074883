package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"charm.land/bubbles/v2/viewport"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/rs/zerolog"

	"chatwidget/widget"
)

// WireModel shows the request and response of every chat exchange and
// mirrors them to the wire log.
type WireModel struct {
	viewport viewport.Model
	lines    []string
	log      zerolog.Logger
	width    int
	height   int
}

func NewWireModel(log zerolog.Logger) WireModel {
	vp := viewport.New(viewport.WithWidth(80), viewport.WithHeight(20))
	return WireModel{viewport: vp, log: log}
}

func (m WireModel) Update(msg tea.Msg) (WireModel, tea.Cmd) {
	switch msg := msg.(type) {
	case widget.ReplyMsg:
		m.addExchange(msg)
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *WireModel) addExchange(r widget.ReplyMsg) {
	reqStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("13"))
	respStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	headStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("8"))

	ex := r.Exchange
	if ex == nil {
		m.lines = append(m.lines, dimStyle.Render(time.Now().Format("15:04:05.000"))+" "+
			errStyle.Render(fmt.Sprintf("#%d error: %v", r.Seq, r.Err)))
		m.refresh()
		return
	}

	ts := dimStyle.Render(ex.StartedAt.Format("15:04:05.000"))
	status := fmt.Sprintf("%d", ex.Status)
	if ex.Status == 0 {
		status = "---"
	}
	m.lines = append(m.lines, ts+" "+headStyle.Render(fmt.Sprintf("#%d POST %s -> %s (%s, %s)",
		r.Seq, ex.Endpoint, status, ex.Duration.Round(time.Millisecond), formatSize(len(ex.ResponseBody)))))
	m.lines = append(m.lines, dimStyle.Render("  request-id "+ex.ID))
	m.lines = append(m.lines, reqStyle.Render("→ ")+prettyJSON(ex.RequestBody))
	if len(ex.ResponseBody) > 0 {
		m.lines = append(m.lines, respStyle.Render("← ")+prettyJSON(ex.ResponseBody))
	}
	if r.Err != nil {
		m.lines = append(m.lines, errStyle.Render("✗ "+firstLine(r.Err.Error(), max(m.width-2, 20))))
	}
	m.lines = append(m.lines, dimStyle.Render("---"))
	m.refresh()

	m.logExchange(r)
}

func (m *WireModel) logExchange(r widget.ReplyMsg) {
	ex := r.Exchange
	ev := m.log.Info()
	if r.Err != nil {
		ev = m.log.Warn().Err(r.Err)
	}
	ev = ev.Str("request_id", ex.ID).
		Uint64("seq", r.Seq).
		Str("bot_id", ex.BotID).
		Str("endpoint", ex.Endpoint).
		Int("status", ex.Status).
		Dur("duration", ex.Duration)
	ev = rawOrString(ev, "request", ex.RequestBody)
	ev = rawOrString(ev, "response", ex.ResponseBody)
	ev.Msg("exchange")
}

func rawOrString(ev *zerolog.Event, key string, body []byte) *zerolog.Event {
	if len(body) == 0 {
		return ev
	}
	if json.Valid(body) {
		return ev.RawJSON(key, body)
	}
	return ev.Str(key, string(body))
}

// prettyJSON indents body when it is JSON and returns it unchanged otherwise.
func prettyJSON(body []byte) string {
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, body, "", "  "); err != nil {
		return string(body)
	}
	return pretty.String()
}

func (m *WireModel) refresh() {
	m.viewport.SetContent(strings.Join(m.lines, "\n"))
	m.viewport.GotoBottom()
}

func (m *WireModel) SetSize(w, h int) {
	m.width = w
	m.height = h
	m.viewport.SetWidth(w)
	m.viewport.SetHeight(h)
}

func (m WireModel) View() string {
	return m.viewport.View()
}
