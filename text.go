package main

import (
	"fmt"
	"strings"

	"github.com/rivo/uniseg"
)

// truncateRunes truncates s to maxLen grapheme clusters, appending "..." if truncated.
func truncateRunes(s string, maxLen int) string {
	if maxLen <= 0 {
		return s
	}
	gr := uniseg.NewGraphemes(s)
	boundaries := []int{0}
	for gr.Next() {
		_, to := gr.Positions()
		boundaries = append(boundaries, to)
	}
	count := len(boundaries) - 1
	if count <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:boundaries[maxLen]]
	}
	return s[:boundaries[maxLen-3]] + "..."
}

// formatSize renders a byte count for the wire tab.
func formatSize(n int) string {
	if n >= 1<<20 {
		return fmt.Sprintf("%.1fM", float64(n)/(1<<20))
	}
	if n >= 1<<10 {
		return fmt.Sprintf("%.1fk", float64(n)/(1<<10))
	}
	return fmt.Sprintf("%dB", n)
}

// firstLine returns the first non-empty line of s, truncated to maxLen.
func firstLine(s string, maxLen int) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return truncateRunes(strings.TrimSpace(s), maxLen)
}
