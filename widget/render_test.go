package widget

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"chatwidget/markdown"
)

func TestLiteralBody(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"plain", "plain"},
		{"two\nlines\tand tab", "two\nlines\tand tab"},
		{"bell\x07", "bell␇"},
		{"\x1b[31mred", "␛[31mred"},
		{"del\x7f", "del␡"},
		{"c1\u009b", "c1�"},
		{"<b>x</b>", "<b>x</b>"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, literalBody(tt.in), "input %q", tt.in)
	}
}

func TestRenderNowTreatsUnresolvedAsUnavailable(t *testing.T) {
	markdown.Reset()
	t.Cleanup(markdown.Reset)

	block := make(chan struct{})
	defer close(block)
	future := markdown.Negotiate(markdown.WithLoader(func(ctx context.Context) (markdown.Capability, error) {
		select {
		case <-block:
		case <-ctx.Done():
		}
		return prefixCapability{}, nil
	}))

	r := NewRenderer(future, 40)
	n := r.RenderNow(BotMessage("**x**"))
	assert.Equal(t, "**x**", n.Body)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	n = r.Render(ctx, BotMessage("**x**"))
	assert.Equal(t, "**x**", n.Body)
}

func TestRenderLabels(t *testing.T) {
	r := NewRenderer(nil, 40)
	assert.Contains(t, r.RenderNow(UserMessage("a")).View, "You:")
	assert.Contains(t, r.RenderNow(BotMessage("a")).View, "Bot:")
	assert.Contains(t, r.RenderNow(ErrorMessage()).View, "Error:")
}
