// Package markdown provides the optional markdown-rendering capability used
// for bot replies and the process-wide negotiator that makes it available.
package markdown

import (
	"bytes"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/ansi"
	xansi "github.com/charmbracelet/x/ansi"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// Capability converts markdown text into display markup.
type Capability interface {
	Render(text string, width int) (string, error)
}

// configurable is implemented by capabilities that accept the widget's
// parsing and style settings after they were created elsewhere.
type configurable interface {
	Configure()
}

// TermCapability renders markdown to ANSI with glamour. One renderer is kept
// per wrap width.
type TermCapability struct {
	mu               sync.Mutex
	style            ansi.StyleConfig
	preserveNewLines bool
	renderers        map[int]*glamour.TermRenderer
}

// NewTermCapability returns an unconfigured terminal capability using style.
func NewTermCapability(style ansi.StyleConfig) *TermCapability {
	return &TermCapability{
		style:     style,
		renderers: make(map[int]*glamour.TermRenderer),
	}
}

// Configure enables line-break-sensitive parsing and applies the widget
// style pass. Cached renderers are dropped.
func (c *TermCapability) Configure() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.style = WidgetStyle(c.style)
	c.preserveNewLines = true
	c.renderers = make(map[int]*glamour.TermRenderer)
}

// Render converts sanitized text to ANSI wrapped at width.
func (c *TermCapability) Render(text string, width int) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if width < 10 {
		width = 10
	}
	r, ok := c.renderers[width]
	if !ok {
		opts := []glamour.TermRendererOption{
			glamour.WithStyles(c.style),
			glamour.WithWordWrap(width),
		}
		if c.preserveNewLines {
			opts = append(opts, glamour.WithPreservedNewLines())
		}
		var err error
		r, err = glamour.NewTermRenderer(opts...)
		if err != nil {
			return "", err
		}
		c.renderers[width] = r
	}

	out, err := r.Render(Sanitize(text))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// HTMLCapability renders markdown to sanitized HTML fragments: GFM,
// hard line breaks, no automatic heading IDs.
type HTMLCapability struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

// NewHTMLCapability returns the HTML flavour of the capability.
func NewHTMLCapability() *HTMLCapability {
	return &HTMLCapability{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(html.WithHardWraps()),
		),
		policy: bluemonday.UGCPolicy(),
	}
}

// Render converts text to HTML and strips executable content. width is ignored.
func (c *HTMLCapability) Render(text string, _ int) (string, error) {
	var buf bytes.Buffer
	if err := c.md.Convert([]byte(Sanitize(text)), &buf); err != nil {
		return "", err
	}
	return c.policy.Sanitize(buf.String()), nil
}

// Sanitize removes terminal control sequences and stray control characters
// from untrusted text, keeping newlines and tabs.
func Sanitize(s string) string {
	s = xansi.Strip(s)
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\n' || r == '\t':
			return r
		case r < 0x20, r == 0x7f, r >= 0x80 && r <= 0x9f:
			return -1
		}
		return r
	}, s)
}
