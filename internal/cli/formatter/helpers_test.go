package formatter

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// stripANSI removes escape codes so assertions are terminal-independent.
func stripANSI(s string) string {
	return ansiPattern.ReplaceAllString(s, "")
}

func TestHumanDate(t *testing.T) {
	now := time.Date(2026, 2, 7, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		input time.Time
		want  string
	}{
		{"today", now.Add(-2 * time.Hour), "Today"},
		{"yesterday", now.Add(-24 * time.Hour), "Yesterday"},
		{"older", time.Date(2022, 9, 30, 0, 0, 0, 0, time.UTC), "Sep 30, 2022"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HumanDate(tt.input, now))
		})
	}
}

func TestHumanTimestamp(t *testing.T) {
	now := time.Date(2026, 2, 7, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		input time.Time
		want  string
	}{
		{"just now", now.Add(-10 * time.Second), "Just now"},
		{"minutes", now.Add(-5 * time.Minute), "5m ago"},
		{"hours", now.Add(-3 * time.Hour), "3h ago"},
		{"days", now.Add(-48 * time.Hour), "Feb 5, 2026"},
		{"future", now.Add(72 * time.Hour), "Feb 10, 2026"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HumanTimestamp(tt.input, now))
		})
	}
}

func TestFormatDistance(t *testing.T) {
	assert.Equal(t, "850 m", FormatDistance(850))
	assert.Equal(t, "1.0 km", FormatDistance(1000))
	assert.Equal(t, "12.4 km", FormatDistance(12_400))
}

func TestTruncID(t *testing.T) {
	assert.Equal(t, "abcdef12", stripANSI(TruncID("abcdef12-3456-7890")))
	assert.Equal(t, "short", stripANSI(TruncID("short")))
}

func TestRenderTable(t *testing.T) {
	out := stripANSI(RenderTable([]string{"ID", "NAME"}, [][]string{
		{"1", "Food"},
		{"22", Bold("Dairy")},
	}, "nothing"))
	assert.Equal(t, "ID  NAME\n──  ─────\n1   Food\n22  Dairy\n", out)

	assert.Equal(t, "nothing\n", stripANSI(RenderTable([]string{"ID"}, nil, "nothing")))
}
