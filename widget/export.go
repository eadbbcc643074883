package widget

import (
	"bufio"
	"fmt"
	"html"
	"io"
	"os"
	"path/filepath"
	"strings"

	tea "charm.land/bubbletea/v2"

	"chatwidget/markdown"
)

// ExportedMsg reports the outcome of a transcript export.
type ExportedMsg struct {
	Path string
	Err  error
}

const exportCSS = `body { font-family: sans-serif; max-width: 44em; margin: 2em auto; }
.msg { border-radius: 8px; padding: 0.4em 0.8em; margin: 0.6em 0; }
.user { background: #e8f0fe; }
.bot { background: #f1f3f4; }
.error { background: #fce8e6; color: #a50e0e; }
.label { font-weight: bold; font-size: 0.85em; }
.body p { margin: 0.3em 0; }
.body h1, .body h2, .body h3, .body h4, .body h5, .body h6 { font-weight: bold; margin: 0.4em 0; }
.body a { color: #1a73e8; text-decoration: none; }
.body code { font-family: monospace; background: #e0e0e0; padding: 0 0.25em; }
.body pre { font-family: monospace; background: #e0e0e0; padding: 0.5em; overflow-x: auto; }
`

// ExportHTML writes the transcript as a standalone HTML document. Bot replies
// go through the HTML capability when markdown is available; user and error
// text is escaped.
func (m Model) ExportHTML(w io.Writer) error {
	_, available := m.future.Peek()
	return writeTranscriptHTML(w, m.botID.String(), m.Messages(), available)
}

func writeTranscriptHTML(w io.Writer, botID string, msgs []Message, markdownOK bool) error {
	bw := bufio.NewWriter(w)
	title := html.EscapeString("Chat with " + botID)
	fmt.Fprintf(bw, "<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>%s</title>\n<style>\n%s</style>\n</head>\n<body>\n<h1>%s</h1>\n", title, exportCSS, title)

	hc := markdown.NewHTMLCapability()
	for _, msg := range msgs {
		class := "msg " + msg.Sender.String()
		if msg.IsError {
			class += " error"
		}
		p := palette(msg)

		body := literalHTML(msg.Text)
		if markdownOK && msg.Sender == SenderBot && !msg.IsError {
			if out, err := hc.Render(msg.Text, 0); err == nil {
				body = out
			}
		}
		fmt.Fprintf(bw, "<div class=\"%s\"><div class=\"label\">%s</div><div class=\"body\">%s</div></div>\n",
			class, html.EscapeString(p.Label), body)
	}

	fmt.Fprint(bw, "</body>\n</html>\n")
	return bw.Flush()
}

func literalHTML(text string) string {
	escaped := html.EscapeString(markdown.Sanitize(text))
	return "<p>" + strings.ReplaceAll(escaped, "\n", "<br>\n") + "</p>"
}

// ExportPath returns the file the transcript of botID is exported to.
func ExportPath(dir, botID string) string {
	safe := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, botID)
	return filepath.Join(dir, "transcript-"+safe+".html")
}

func (m Model) exportCmd() tea.Cmd {
	path := ExportPath(m.exportDir, m.botID.String())
	botID := m.botID.String()
	msgs := m.Messages()
	_, available := m.future.Peek()

	return func() tea.Msg {
		f, err := os.Create(path)
		if err != nil {
			return ExportedMsg{Path: path, Err: err}
		}
		if err := writeTranscriptHTML(f, botID, msgs, available); err != nil {
			f.Close()
			return ExportedMsg{Path: path, Err: err}
		}
		return ExportedMsg{Path: path, Err: f.Close()}
	}
}
