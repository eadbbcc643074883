// Package identity resolves which bot a widget instance talks to by reading
// the embed declaration in the host page.
package identity

import (
	"fmt"
	"html"
	"io"
	"net/url"
	"os"
	"path"
	"strings"

	xhtml "golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ScriptName is the source path the embed declaration must reference.
const ScriptName = "chat-widget.js"

// BotAttr is the attribute on the embed declaration carrying the bot identifier.
const BotAttr = "data-bot-id"

// DefaultBotID is used when the host page carries no usable declaration.
const DefaultBotID BotID = "default-bot"

// BotID identifies the backend bot. It is resolved once and never changes.
type BotID string

func (id BotID) String() string { return string(id) }

// Resolve scans an HTML document for the script element that loaded the
// widget and returns its bot identifier. Missing elements, missing or empty
// attributes and unreadable input all resolve to DefaultBotID.
func Resolve(r io.Reader) BotID {
	z := xhtml.NewTokenizer(r)
	for {
		switch z.Next() {
		case xhtml.ErrorToken:
			return DefaultBotID
		case xhtml.StartTagToken, xhtml.SelfClosingTagToken:
			tok := z.Token()
			if tok.DataAtom != atom.Script {
				continue
			}
			var src, bot string
			var hasBot bool
			for _, a := range tok.Attr {
				switch strings.ToLower(a.Key) {
				case "src":
					src = a.Val
				case BotAttr:
					bot, hasBot = strings.TrimSpace(a.Val), true
				}
			}
			if !referencesWidget(src) {
				continue
			}
			// Only the first declaration counts.
			if !hasBot || bot == "" {
				return DefaultBotID
			}
			return BotID(bot)
		}
	}
}

// ResolveString is Resolve over an in-memory document.
func ResolveString(doc string) BotID {
	return Resolve(strings.NewReader(doc))
}

// ResolveFile resolves the identity from a host page on disk. Only opening
// the file can fail; callers fall back to DefaultBotID on error.
func ResolveFile(name string) (BotID, error) {
	f, err := os.Open(name)
	if err != nil {
		return DefaultBotID, fmt.Errorf("open host page: %w", err)
	}
	defer f.Close()
	return Resolve(f), nil
}

// Declaration renders the canonical embed tag for a widget served from base.
func Declaration(base string, id BotID) string {
	src := strings.TrimRight(base, "/") + "/" + ScriptName
	return fmt.Sprintf(`<script src="%s" %s="%s"></script>`,
		html.EscapeString(src), BotAttr, html.EscapeString(string(id)))
}

func referencesWidget(src string) bool {
	if src == "" {
		return false
	}
	p := src
	if u, err := url.Parse(src); err == nil {
		p = u.Path
	} else if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	return path.Base(p) == ScriptName
}
