package main

import (
	"testing"
)

func TestFormatSize(t *testing.T) {
	tests := []struct {
		name string
		n    int
		want string
	}{
		{name: "zero", n: 0, want: "0B"},
		{name: "below 1k", n: 1023, want: "1023B"},
		{name: "exactly 1k", n: 1024, want: "1.0k"},
		{name: "1.5k", n: 1536, want: "1.5k"},
		{name: "exactly 1M", n: 1 << 20, want: "1.0M"},
		{name: "2.5M", n: 5 << 19, want: "2.5M"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := formatSize(tt.n)
			if got != tt.want {
				t.Errorf("formatSize(%d) = %q, want %q", tt.n, got, tt.want)
			}
		})
	}
}

func TestFirstLine(t *testing.T) {
	tests := []struct {
		name   string
		s      string
		maxLen int
		want   string
	}{
		{name: "single line short", s: "hello", maxLen: 10, want: "hello"},
		{name: "multiline", s: "first\nsecond\nthird", maxLen: 100, want: "first"},
		{name: "empty string", s: "", maxLen: 10, want: ""},
		{name: "whitespace only", s: "   \n  ", maxLen: 10, want: ""},
		{name: "truncation", s: "a very long line", maxLen: 10, want: "a very ..."},
		{name: "leading whitespace", s: "  hello\nworld", maxLen: 100, want: "hello"},
		{name: "trailing whitespace on first line", s: "hello  \nworld", maxLen: 100, want: "hello"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := firstLine(tt.s, tt.maxLen)
			if got != tt.want {
				t.Errorf("firstLine(%q, %d) = %q, want %q", tt.s, tt.maxLen, got, tt.want)
			}
		})
	}
}

func TestTruncateRunes(t *testing.T) {
	tests := []struct {
		name   string
		s      string
		maxLen int
		want   string
	}{
		{name: "short ASCII", s: "hello", maxLen: 10, want: "hello"},
		{name: "exact length", s: "hello", maxLen: 5, want: "hello"},
		{name: "truncate ASCII", s: "hello world", maxLen: 8, want: "hello..."},
		{name: "maxLen=0 returns original", s: "hello", maxLen: 0, want: "hello"},
		{name: "maxLen<=3 no ellipsis", s: "hello", maxLen: 3, want: "hel"},
		{name: "maxLen=1", s: "hello", maxLen: 1, want: "h"},
		{name: "negative maxLen returns original", s: "hello", maxLen: -1, want: "hello"},
		{name: "emoji multi-byte", s: "🎉🎉🎉🎉🎉", maxLen: 4, want: "🎉..."},
		{name: "emoji exact", s: "🎉🎉🎉", maxLen: 3, want: "🎉🎉🎉"},
		{name: "CJK characters", s: "你好世界测试", maxLen: 5, want: "你好..."},
		{name: "CJK exact length", s: "你好世", maxLen: 3, want: "你好世"},
		{name: "mixed ASCII and emoji", s: "hi🎉bye", maxLen: 5, want: "hi..."},
		{name: "empty string", s: "", maxLen: 10, want: ""},
		{
			name:   "combining characters",
			s:      "e\u0301e\u0301e\u0301e\u0301e\u0301", // é as e + combining accent (5 graphemes)
			maxLen: 4,
			want:   "e\u0301...",
		},
		{
			name:   "combining characters exact",
			s:      "e\u0301e\u0301e\u0301", // 3 graphemes
			maxLen: 3,
			want:   "e\u0301e\u0301e\u0301",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncateRunes(tt.s, tt.maxLen)
			if got != tt.want {
				t.Errorf("truncateRunes(%q, %d) = %q, want %q", tt.s, tt.maxLen, got, tt.want)
			}
		})
	}
}
