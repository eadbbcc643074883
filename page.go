package main

import (
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// defaultPage is shown when no host page is configured. Its declaration
// carries no bot id, so the widget falls back to the default bot.
const defaultPage = `<!DOCTYPE html>
<html>
<head><title>Example Store</title></head>
<body>
<h1>Example Store</h1>
<p>Welcome to the example store. Browse the catalogue, or open the chat in
the bottom-right corner to talk to our assistant.</p>
<h2>Opening hours</h2>
<ul>
<li>Monday to Friday: 9:00 to 18:00</li>
<li>Saturday: 10:00 to 14:00</li>
</ul>
<script src="/static/chat-widget.js"></script>
</body>
</html>
`

// pageDoc is the readable text of a host page.
type pageDoc struct {
	Title string
	Lines []string
}

var blockElements = map[atom.Atom]bool{
	atom.P: true, atom.Div: true, atom.Br: true, atom.Li: true,
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
	atom.Section: true, atom.Article: true, atom.Header: true, atom.Footer: true,
	atom.Ul: true, atom.Ol: true, atom.Tr: true, atom.Pre: true, atom.Blockquote: true,
}

// parsePage extracts the title and visible text of doc. Script and style
// contents are skipped; block elements start new lines.
func parsePage(doc string) pageDoc {
	var (
		p       pageDoc
		cur     strings.Builder
		skip    int
		inTitle bool
	)
	flush := func() {
		line := strings.Join(strings.Fields(cur.String()), " ")
		cur.Reset()
		if line != "" {
			p.Lines = append(p.Lines, line)
		}
	}

	z := html.NewTokenizer(strings.NewReader(doc))
	for {
		switch z.Next() {
		case html.ErrorToken:
			flush()
			return p
		case html.StartTagToken, html.SelfClosingTagToken:
			t := z.Token()
			switch {
			case t.DataAtom == atom.Script || t.DataAtom == atom.Style:
				if t.Type == html.StartTagToken {
					skip++
				}
			case t.DataAtom == atom.Title:
				inTitle = true
			case t.DataAtom == atom.Li:
				flush()
				cur.WriteString("• ")
			case blockElements[t.DataAtom]:
				flush()
			}
		case html.EndTagToken:
			t := z.Token()
			switch {
			case t.DataAtom == atom.Script || t.DataAtom == atom.Style:
				if skip > 0 {
					skip--
				}
			case t.DataAtom == atom.Title:
				inTitle = false
			case blockElements[t.DataAtom]:
				flush()
			}
		case html.TextToken:
			if skip > 0 {
				continue
			}
			text := string(z.Text())
			if inTitle {
				p.Title += strings.TrimSpace(text)
				continue
			}
			cur.WriteString(text)
			cur.WriteByte(' ')
		}
	}
}

// render lays the page out in a w×h box.
func (p pageDoc) render(w, h int) string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
	textStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("7"))

	var lines []string
	if p.Title != "" {
		lines = append(lines, titleStyle.Render(truncateRunes(p.Title, w)), "")
	}
	for _, l := range p.Lines {
		for _, wrapped := range strings.Split(ansi.Wrap(l, max(w-2, 1), ""), "\n") {
			lines = append(lines, " "+textStyle.Render(wrapped))
		}
	}
	if len(lines) > h {
		lines = lines[:h]
	}
	return lipgloss.NewStyle().Width(w).Height(h).Render(strings.Join(lines, "\n"))
}
