// Command hitprobe runs the chat widget alone and logs every mouse event
// together with the widget layer it hits.
package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"chatwidget/chatapi"
	"chatwidget/widget"
)

type model struct {
	widget widget.Model
	events []string
}

func (m model) Init() tea.Cmd { return m.widget.Init() }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		if msg.String() == "ctrl+q" || msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		m.events = append(m.events, fmt.Sprintf("key: %s", msg.String()))
	case tea.WindowSizeMsg:
		m.widget.SetSize(msg.Width, msg.Height)
		return m, nil
	case tea.MouseClickMsg:
		id := m.hit(msg.X, msg.Y)
		m.events = append(m.events, fmt.Sprintf("click: %s -> %q", msg.String(), id))
		m.trim()
		if id == "" {
			return m, nil
		}
		var cmd tea.Cmd
		m.widget, cmd = m.widget.Update(widget.ClickMsg{ID: id})
		return m, cmd
	case tea.MouseWheelMsg:
		m.events = append(m.events, fmt.Sprintf("wheel: %s -> %q", msg.String(), m.hit(msg.X, msg.Y)))
	case tea.MouseMsg:
		mouse := msg.Mouse()
		m.events = append(m.events, fmt.Sprintf("mouse: %s -> %q", msg.String(), m.hit(mouse.X, mouse.Y)))
	}
	m.trim()

	var cmd tea.Cmd
	m.widget, cmd = m.widget.Update(msg)
	return m, cmd
}

func (m model) hit(x, y int) string {
	return lipgloss.NewCanvas(m.widget.Layers(0, 0)...).Hit(x, y)
}

func (m *model) trim() {
	if len(m.events) > 20 {
		m.events = m.events[len(m.events)-20:]
	}
}

func (m model) View() tea.View {
	s := "Hit probe - click the widget, ctrl+o toggles, ctrl+q quits\n\n"
	s += strings.Join(m.events, "\n")

	layers := []*lipgloss.Layer{lipgloss.NewLayer(s)}
	layers = append(layers, m.widget.Layers(0, 0)...)
	v := tea.NewView(lipgloss.NewCanvas(layers...).Render())
	v.AltScreen = true
	v.MouseMode = tea.MouseModeCellMotion
	return v
}

func main() {
	endpoint := chatapi.DefaultEndpoint
	if len(os.Args) > 1 {
		endpoint = os.Args[1]
	}
	w := widget.New(widget.Options{
		Embed:     `<script src="chat-widget.js" data-bot-id="hitprobe"></script>`,
		Exchanger: chatapi.NewClient(endpoint),
	})
	if _, err := tea.NewProgram(model{widget: w}).Run(); err != nil {
		log.Fatal(err)
	}
}
