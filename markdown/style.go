package markdown

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/charmbracelet/glamour/ansi"
	"github.com/charmbracelet/glamour/styles"
)

// Fixed look of rendered bot replies.
const (
	LinkColor       = "39"
	CodeBackground  = "236"
	CodeBlockMargin = 1
	CodeBlockIndent = 1
	ParagraphMargin = 0
	maxStyleBytes   = 1 << 20
)

// DefaultStyle is the built-in style sheet used when no remote style is configured.
func DefaultStyle() ansi.StyleConfig {
	return styles.DarkStyleConfig
}

// WidgetStyle applies the post-processing style pass to base: padded code
// blocks on a fixed background, bold headings, fixed-colour links without
// underline and fixed paragraph margins. base is not modified.
func WidgetStyle(base ansi.StyleConfig) ansi.StyleConfig {
	s := base

	s.Document.Margin = uintPtr(0)
	s.Document.BlockPrefix = ""
	s.Document.BlockSuffix = ""

	s.CodeBlock.Margin = uintPtr(CodeBlockMargin)
	s.CodeBlock.Indent = uintPtr(CodeBlockIndent)
	s.CodeBlock.BackgroundColor = stringPtr(CodeBackground)
	s.Code.Prefix = " "
	s.Code.Suffix = " "
	s.Code.BackgroundColor = stringPtr(CodeBackground)

	s.Heading.Bold = boolPtr(true)
	s.H1.Bold = boolPtr(true)
	s.H6.Bold = boolPtr(true)

	s.Link.Color = stringPtr(LinkColor)
	s.Link.Underline = boolPtr(false)
	s.LinkText.Color = stringPtr(LinkColor)
	s.LinkText.Underline = boolPtr(false)

	s.Paragraph.Margin = uintPtr(ParagraphMargin)
	return s
}

// FetchStyle downloads a glamour JSON style sheet.
func FetchStyle(ctx context.Context, client *http.Client, url string) (ansi.StyleConfig, error) {
	var style ansi.StyleConfig

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return style, fmt.Errorf("build style request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return style, fmt.Errorf("fetch style: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return style, fmt.Errorf("fetch style: unexpected status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxStyleBytes))
	if err != nil {
		return style, fmt.Errorf("read style: %w", err)
	}
	if err := json.Unmarshal(body, &style); err != nil {
		return style, fmt.Errorf("decode style: %w", err)
	}
	return style, nil
}

func boolPtr(b bool) *bool       { return &b }
func stringPtr(s string) *string { return &s }
func uintPtr(u uint) *uint       { return &u }
