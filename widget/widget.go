// Package widget is the embeddable chat widget: a launcher and a panel that a
// host Bubble Tea program draws on top of its own content.
package widget

import (
	"context"
	"strings"

	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/spinner"
	"charm.land/bubbles/v2/textinput"
	"charm.land/bubbles/v2/viewport"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"
	"github.com/rs/zerolog"

	"chatwidget/identity"
	"chatwidget/markdown"
)

// Layer IDs used for mouse hit testing.
const (
	LauncherID = "chatwidget.launcher"
	PanelID    = "chatwidget.panel"
	CloseID    = "chatwidget.close"
	SendID     = "chatwidget.send"
)

const (
	maxPanelWidth  = 56
	maxPanelHeight = 24
	minPanelWidth  = 28
	// panel rows that are not transcript: borders, header, two dividers, input
	panelChrome = 6

	launcherLabel = "✦ Chat"
	sendLabel     = " ➤ Send "
	closeLabel    = " ✕ "
)

// ClickMsg reports a click on one of the widget's layers. Hosts produce it
// from a canvas hit test.
type ClickMsg struct {
	ID string
}

// CapabilityMsg reports how markdown negotiation resolved.
type CapabilityMsg struct {
	State markdown.State
}

// Options configure a widget instance.
type Options struct {
	// Embed is the host page document (or just the embed declaration) the
	// bot identity is read from.
	Embed     string
	Exchanger Exchanger
	Ordering  Ordering
	// Markdown options apply only if this is the first negotiation in the process.
	Markdown  []markdown.Option
	ExportDir string
	Logger    zerolog.Logger
}

// Model is the widget component.
type Model struct {
	botID        identity.BotID
	keys         KeyMap
	presentation Presentation
	pipeline     Pipeline
	renderer     Renderer
	transcript   Transcript
	future       *markdown.Future
	viewport     viewport.Model
	input        textinput.Model
	spinner      spinner.Model
	exportDir    string
	logger       zerolog.Logger

	width       int
	height      int
	panelWidth  int
	panelHeight int
}

// New resolves the bot identity from opts.Embed, starts markdown
// negotiation and returns a closed widget.
func New(opts Options) Model {
	botID := identity.ResolveString(opts.Embed)
	logger := opts.Logger.With().Str("component", "widget").Str("bot_id", botID.String()).Logger()
	logger.Info().Bool("default", botID == identity.DefaultBotID).Msg("bot identity resolved")

	future := markdown.Negotiate(opts.Markdown...)

	ti := textinput.New()
	ti.Placeholder = "Type a message..."
	ti.Prompt = "> "
	ti.CharLimit = 2000

	vp := viewport.New(viewport.WithWidth(maxPanelWidth-2), viewport.WithHeight(maxPanelHeight-panelChrome))
	vp.KeyMap.Left = key.NewBinding(key.WithDisabled())
	vp.KeyMap.Right = key.NewBinding(key.WithDisabled())

	exportDir := opts.ExportDir
	if exportDir == "" {
		exportDir = "."
	}

	m := Model{
		botID:     botID,
		keys:      DefaultKeyMap(),
		pipeline:  NewPipeline(opts.Exchanger, botID, opts.Ordering),
		renderer:  NewRenderer(future, maxPanelWidth-4),
		future:    future,
		viewport:  vp,
		input:     ti,
		spinner:   spinner.New(spinner.WithSpinner(spinner.MiniDot)),
		exportDir: exportDir,
		logger:    logger,
	}
	m.SetSize(maxPanelWidth+2, maxPanelHeight+4)
	return m
}

// BotID returns the identity resolved at construction.
func (m Model) BotID() identity.BotID { return m.botID }

// State returns the presentation state.
func (m Model) State() PresentationState { return m.presentation.State() }

// Presentation returns a copy of the presentation state machine.
func (m Model) Presentation() Presentation { return m.presentation }

// Messages returns the transcript messages in order.
func (m Model) Messages() []Message { return m.transcript.Messages() }

// Transcript returns the rendered transcript.
func (m Model) Transcript() Transcript { return m.transcript }

// InFlight returns the number of exchanges awaiting a reply.
func (m Model) InFlight() int { return m.pipeline.InFlight() }

// Capability returns the markdown future shared by every widget in the process.
func (m Model) Capability() *markdown.Future { return m.future }

// KeyMap returns the widget bindings, for host help views.
func (m Model) KeyMap() KeyMap { return m.keys }

// Focused reports whether the widget wants keyboard input.
func (m Model) Focused() bool {
	s := m.presentation.State()
	return s == Opening || s == Open
}

// Init waits for markdown negotiation in the background.
func (m Model) Init() tea.Cmd {
	f := m.future
	return func() tea.Msg {
		<-f.Done()
		return CapabilityMsg{State: f.State()}
	}
}

// Update handles messages for the widget.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		switch {
		case key.Matches(msg, m.keys.Toggle):
			return m.toggle()
		case !m.Focused():
			return m, nil
		case key.Matches(msg, m.keys.Close):
			return m.toggle()
		case key.Matches(msg, m.keys.Submit):
			return m.submit()
		case key.Matches(msg, m.keys.Export):
			return m, m.exportCmd()
		}

	case ClickMsg:
		switch msg.ID {
		case LauncherID, CloseID:
			return m.toggle()
		case SendID:
			if m.Focused() {
				return m.submit()
			}
		}
		return m, nil

	case TransitionMsg:
		if m.presentation.Advance(msg) {
			m.logger.Debug().Str("state", m.presentation.State().String()).Msg("presentation settled")
		}
		return m, nil

	case ReplyMsg:
		return m.receive(msg), nil

	case CapabilityMsg:
		m.logger.Info().Str("state", msg.State.String()).Msg("markdown capability resolved")
		return m, nil

	case ExportedMsg:
		if msg.Err != nil {
			m.logger.Error().Err(msg.Err).Msg("transcript export failed")
		} else {
			m.logger.Info().Str("path", msg.Path).Msg("transcript exported")
		}
		return m, nil

	case spinner.TickMsg:
		if m.pipeline.InFlight() == 0 {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	if !m.Focused() {
		return m, nil
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if cmd != nil {
		cmds = append(cmds, cmd)
	}
	m.viewport, cmd = m.viewport.Update(msg)
	if cmd != nil {
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

func (m Model) toggle() (Model, tea.Cmd) {
	tr := m.presentation.Toggle()
	m.logger.Debug().Str("state", m.presentation.State().String()).Msg("presentation toggled")

	cmds := []tea.Cmd{tr.Cmd()}
	if m.Focused() {
		cmds = append(cmds, m.input.Focus())
	} else {
		m.input.Blur()
	}
	return m, tea.Batch(cmds...)
}

// submit appends the user message right away and returns the exchange
// command. The reply is rendered inside the command so that waiting for the
// markdown capability never blocks Update.
func (m Model) submit() (Model, tea.Cmd) {
	user, send, ok := m.pipeline.Send(m.input.Value())
	if !ok {
		return m, nil
	}
	m.input.Reset()
	m.append(m.renderer.RenderNow(user))

	renderer := m.renderer
	cmds := []tea.Cmd{func() tea.Msg {
		reply := send().(ReplyMsg)
		reply.Node = renderer.Render(context.Background(), reply.Message())
		return reply
	}}
	if m.pipeline.InFlight() == 1 {
		cmds = append(cmds, m.spinner.Tick)
	}
	return m, tea.Batch(cmds...)
}

func (m Model) receive(r ReplyMsg) Model {
	if r.Err != nil {
		m.logger.Warn().Err(r.Err).Uint64("seq", r.Seq).Msg("chat exchange failed")
	}
	for _, ready := range m.pipeline.Receive(r) {
		n := ready.Node
		// Replies rendered before a resize are redone at the current width.
		if n.View == "" || n.Width != m.renderer.width {
			n = m.renderer.RenderNow(ready.Message())
		}
		m.append(n)
	}
	return m
}

func (m *Model) append(n Node) {
	m.transcript.Append(n)
	m.viewport.SetContent(m.transcript.Content())
	m.viewport.GotoBottom()
}

// SetSize sets the host area the widget is anchored in.
func (m *Model) SetSize(w, h int) {
	m.width = w
	m.height = h

	pw := min(maxPanelWidth, w-2)
	pw = max(pw, minPanelWidth)
	ph := min(maxPanelHeight, h-lipgloss.Height(m.launcherView())-1)
	ph = max(ph, panelChrome+3)

	resized := pw != m.panelWidth
	m.panelWidth = pw
	m.panelHeight = ph

	inner := pw - 2
	m.viewport.SetWidth(inner)
	m.viewport.SetHeight(ph - panelChrome)
	m.input.SetWidth(inner - lipgloss.Width(sendLabel) - lipgloss.Width(m.input.Prompt) - 1)

	if resized {
		m.renderer = m.renderer.WithWidth(inner - 2)
		m.transcript.rerender(m.renderer.RenderNow)
		m.viewport.SetContent(m.transcript.Content())
		m.viewport.GotoBottom()
	}
}

// Layers returns the widget's layers anchored to the bottom-right corner of
// the host area whose top-left corner is (x0, y0).
func (m Model) Layers(x0, y0 int) []*lipgloss.Layer {
	var out []*lipgloss.Layer

	launcher := m.launcherView()
	lw, lh := lipgloss.Width(launcher), lipgloss.Height(launcher)
	if m.presentation.LauncherVisible() {
		out = append(out, lipgloss.NewLayer(launcher).
			X(x0+m.width-lw-1).
			Y(y0+m.height-lh).
			Z(10).
			ID(LauncherID))
	}

	if m.presentation.PanelVisible() {
		panel := m.panelView()
		px := x0 + m.width - lipgloss.Width(panel) - 1
		py := y0 + m.height - lh - lipgloss.Height(panel)
		if !m.presentation.PanelSettled() {
			// Unsettled panels sit lower, where the launcher was.
			py += lh
		}
		inner := m.panelWidth - 2
		sendX := 1 + inner - lipgloss.Width(sendLabel)
		sendY := 1 + 1 + 1 + m.viewport.Height() + 1
		closeX := 1 + inner - lipgloss.Width(closeLabel)

		l := lipgloss.NewLayer(panel).X(px).Y(py).Z(20).ID(PanelID)
		l.AddLayers(
			lipgloss.NewLayer(m.sendButton()).X(sendX).Y(sendY).ID(SendID),
			lipgloss.NewLayer(m.closeButton()).X(closeX).Y(1).ID(CloseID),
		)
		out = append(out, l)
	}
	return out
}

// View renders the widget alone, panel above launcher.
func (m Model) View() string {
	var parts []string
	if m.presentation.PanelVisible() {
		parts = append(parts, m.panelView())
	}
	if m.presentation.LauncherVisible() {
		parts = append(parts, m.launcherView())
	}
	return lipgloss.JoinVertical(lipgloss.Right, parts...)
}

func (m Model) launcherView() string {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("12")).
		Foreground(lipgloss.Color("15")).
		Bold(true).
		Padding(0, 1).
		Render(launcherLabel)
}

func (m Model) sendButton() string {
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("15")).
		Background(lipgloss.Color("12")).
		Render(sendLabel)
}

func (m Model) closeButton() string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render(closeLabel)
}

func (m Model) panelView() string {
	inner := m.panelWidth - 2
	dim := lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	divider := dim.Render(strings.Repeat("─", inner))

	title := "Chat · " + m.botID.String()
	if m.pipeline.InFlight() > 0 {
		title += " " + m.spinner.View()
	}
	closeW := lipgloss.Width(closeLabel)
	title = ansi.Truncate(title, inner-closeW-1, "…")
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
	header := lipgloss.NewStyle().Width(inner-closeW).Render(titleStyle.Render(title)) + m.closeButton()

	inputW := inner - lipgloss.Width(sendLabel)
	inputRow := lipgloss.NewStyle().Width(inputW).MaxWidth(inputW).Render(m.input.View()) + m.sendButton()

	body := lipgloss.JoinVertical(lipgloss.Left,
		header,
		divider,
		m.viewport.View(),
		divider,
		inputRow,
	)

	border := lipgloss.Color("12")
	if !m.presentation.PanelSettled() {
		border = lipgloss.Color("8")
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Render(lipgloss.NewStyle().Width(inner).MaxWidth(inner).Render(body))
}
