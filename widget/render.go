package widget

import (
	"context"
	"strings"

	"charm.land/lipgloss/v2"

	"chatwidget/markdown"
)

// Palette is the colour scheme of one kind of message card.
type Palette struct {
	Label  string
	Accent string
	Text   string
}

var (
	userPalette  = Palette{Label: "You", Accent: "12", Text: "15"}
	botPalette   = Palette{Label: "Bot", Accent: "10", Text: "15"}
	errorPalette = Palette{Label: "Error", Accent: "9", Text: "9"}
)

// Renderer turns messages into transcript nodes. Bot replies use the
// markdown capability when the negotiator resolved it; everything else is
// inserted as literal text.
type Renderer struct {
	future *markdown.Future
	width  int
}

// NewRenderer returns a renderer for cards of the given width.
func NewRenderer(future *markdown.Future, width int) Renderer {
	return Renderer{future: future, width: width}
}

// WithWidth returns a copy rendering at width.
func (r Renderer) WithWidth(width int) Renderer {
	r.width = width
	return r
}

// Render renders msg, waiting for the capability if msg is a bot reply.
// Call it from a command, never from Update.
func (r Renderer) Render(ctx context.Context, msg Message) Node {
	if msg.Sender != SenderBot || msg.IsError || r.future == nil {
		return r.render(msg, nil)
	}
	c, _ := r.future.Wait(ctx)
	return r.render(msg, c)
}

// RenderNow renders msg without blocking, treating an unresolved capability
// as unavailable.
func (r Renderer) RenderNow(msg Message) Node {
	var c markdown.Capability
	if r.future != nil && msg.Sender == SenderBot && !msg.IsError {
		c, _ = r.future.Peek()
	}
	return r.render(msg, c)
}

func (r Renderer) render(msg Message, c markdown.Capability) Node {
	width := r.width
	if width < 20 {
		width = 20
	}
	contentWidth := width - 4

	p := palette(msg)
	body := literalBody(msg.Text)
	if c != nil {
		if out, err := c.Render(msg.Text, contentWidth); err == nil {
			body = out
		}
	}

	labelStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(p.Accent))
	card := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(p.Accent)).
		Padding(0, 1).
		Width(width)
	text := body
	if c == nil {
		text = lipgloss.NewStyle().Foreground(lipgloss.Color(p.Text)).Render(body)
	}

	return Node{
		Message: msg,
		Body:    body,
		View:    card.Render(labelStyle.Render(p.Label+":") + "\n" + text),
		Width:   r.width,
	}
}

func palette(msg Message) Palette {
	switch {
	case msg.IsError:
		return errorPalette
	case msg.Sender == SenderBot:
		return botPalette
	default:
		return userPalette
	}
}

// literalBody makes text safe to print verbatim: control characters other
// than newline and tab are replaced by their visible control pictures.
func literalBody(text string) string {
	var sb strings.Builder
	sb.Grow(len(text))
	for _, r := range text {
		switch {
		case r == '\n' || r == '\t':
			sb.WriteRune(r)
		case r < 0x20:
			sb.WriteRune(0x2400 + r)
		case r == 0x7f:
			sb.WriteRune(0x2421)
		case r >= 0x80 && r <= 0x9f:
			sb.WriteRune(0xfffd)
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
