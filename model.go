package main

import (
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"chatwidget/widget"
)

const (
	numTabs      = 3
	tabBarHeight = 2
)

const (
	tabPage = iota
	tabWire
	tabDebug
)

// Model is the root TUI model: the host page with the widget on top of it,
// plus wire and debug tabs.
type Model struct {
	activeTab int
	width     int
	height    int
	page      pageDoc
	widget    widget.Model
	wire      WireModel
	debug     DebugModel
	startup   []DiagnosticMsg
}

// NewModel creates the root model around an embedded widget.
func NewModel(page pageDoc, w widget.Model, wire WireModel, startup ...DiagnosticMsg) Model {
	return Model{
		page:    page,
		widget:  w,
		wire:    wire,
		debug:   NewDebugModel(),
		startup: startup,
	}
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.widget.Init()}
	for _, d := range m.startup {
		cmds = append(cmds, func() tea.Msg { return d })
	}
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		switch msg.String() {
		case "tab":
			m.activeTab = (m.activeTab + 1) % numTabs
			return m, nil
		case "ctrl+1":
			m.activeTab = tabPage
			return m, nil
		case "ctrl+2":
			m.activeTab = tabWire
			return m, nil
		case "ctrl+3":
			m.activeTab = tabDebug
			return m, nil
		case "ctrl+c", "ctrl+q":
			return m, tea.Quit
		}
		return m.updateActive(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		contentHeight := m.height - tabBarHeight
		m.widget.SetSize(m.width, contentHeight)
		m.wire.SetSize(m.width, contentHeight)
		m.debug.SetSize(m.width, contentHeight)
		return m, nil

	case tea.MouseClickMsg:
		if m.activeTab != tabPage || msg.Button != tea.MouseLeft {
			return m, nil
		}
		id := lipgloss.NewCanvas(m.widget.Layers(0, tabBarHeight)...).Hit(msg.X, msg.Y)
		if id == "" {
			return m, nil
		}
		var cmd tea.Cmd
		m.widget, cmd = m.widget.Update(widget.ClickMsg{ID: id})
		return m, cmd

	case widget.ReplyMsg:
		var cmd tea.Cmd
		m.widget, cmd = m.widget.Update(msg)
		cmds = append(cmds, cmd)
		m.wire, cmd = m.wire.Update(msg)
		cmds = append(cmds, cmd)
		m.debug, cmd = m.debug.Update(msg)
		cmds = append(cmds, cmd)
		return m, tea.Batch(cmds...)

	case widget.CapabilityMsg, widget.ExportedMsg:
		var cmd tea.Cmd
		m.widget, cmd = m.widget.Update(msg)
		cmds = append(cmds, cmd)
		m.debug, cmd = m.debug.Update(msg)
		cmds = append(cmds, cmd)
		return m, tea.Batch(cmds...)

	case DiagnosticMsg:
		var cmd tea.Cmd
		m.debug, cmd = m.debug.Update(msg)
		return m, cmd

	case tea.KeyMsg, tea.MouseMsg:
		return m.updateActive(msg)
	}

	// Timers, spinner ticks and cursor blinks belong to the widget.
	var cmd tea.Cmd
	m.widget, cmd = m.widget.Update(msg)
	return m, cmd
}

// updateActive sends input to the active tab only.
func (m Model) updateActive(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.activeTab {
	case tabPage:
		m.widget, cmd = m.widget.Update(msg)
	case tabWire:
		m.wire, cmd = m.wire.Update(msg)
	case tabDebug:
		m.debug, cmd = m.debug.Update(msg)
	}
	return m, cmd
}

func (m Model) View() tea.View {
	if m.width == 0 {
		v := tea.NewView("Starting...")
		v.AltScreen = true
		v.MouseMode = tea.MouseModeCellMotion
		return v
	}

	tabBar := m.renderTabBar()
	contentHeight := m.height - tabBarHeight

	var content string
	switch m.activeTab {
	case tabPage:
		layers := []*lipgloss.Layer{
			lipgloss.NewLayer(tabBar),
			lipgloss.NewLayer(m.page.render(m.width, contentHeight)).Y(tabBarHeight),
		}
		layers = append(layers, m.widget.Layers(0, tabBarHeight)...)
		content = lipgloss.NewCanvas(layers...).Render()
	case tabWire:
		content = tabBar + "\n\n" + m.wire.View()
	case tabDebug:
		content = tabBar + "\n\n" + m.debug.View()
	}

	v := tea.NewView(content)
	v.AltScreen = true
	v.MouseMode = tea.MouseModeCellMotion
	return v
}

func (m Model) renderTabBar() string {
	activeStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("15")).
		Background(lipgloss.Color("4")).
		Padding(0, 1)
	inactiveStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("7")).
		Padding(0, 1)
	helpStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("8"))

	title := m.page.Title
	if title == "" {
		title = "Page"
	}
	tabs := []string{truncateRunes(title, 24), "Wire", "Debug"}
	var parts []string
	for i, tab := range tabs {
		if i == m.activeTab {
			parts = append(parts, activeStyle.Render(tab))
		} else {
			parts = append(parts, inactiveStyle.Render(tab))
		}
	}

	bar := lipgloss.JoinHorizontal(lipgloss.Top, parts...)
	keys := m.widget.KeyMap()
	help := helpStyle.Render("  Tab: switch | " + keys.Toggle.Help().Key + ": chat | " +
		keys.Export.Help().Key + ": export | Ctrl+Q: quit")
	return bar + help
}
