package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// shortID renders the first 8 characters of an opaque session id,
// matching how operators refer to sessions.
func shortID(id string) string {
	if len(id) <= 8 {
		return "#" + id
	}
	return "#" + id[:8]
}

// formatTimestamp renders an absolute timestamp, or a dash when the
// backend never sent one.
func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return "—"
	}
	return t.Local().Format("Jan 2 2006 15:04")
}

// formatAge renders how long ago t was, coarsely.
func formatAge(t time.Time, now time.Time) string {
	if t.IsZero() {
		return "never"
	}
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}

// formatLatency renders a round-trip time in ms or seconds.
func formatLatency(ms float64) string {
	if ms < 1000 {
		return fmt.Sprintf("%.0fms", ms)
	}
	return fmt.Sprintf("%.1fs", ms/1000)
}

// truncate cuts s to at most n runes, appending an ellipsis.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 1 {
		return "…"
	}
	return string(runes[:n-1]) + "…"
}

// firstLine returns s up to its first newline.
func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

// stressStyle picks the color band for a 0-10 stress level.
func stressStyle(level float64) lipgloss.Style {
	switch {
	case level <= 3:
		return healthyStyle
	case level <= 6:
		return warningStyle
	default:
		return errorStyle
	}
}

// formatFieldName turns a snake_case wellness key into a label.
func formatFieldName(key string) string {
	words := strings.Split(key, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// formatFieldValue renders an arbitrary wellness value.
func formatFieldValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "not specified"
	case string:
		if val == "" {
			return "not specified"
		}
		return val
	case float64:
		if val == float64(int64(val)) {
			return fmt.Sprintf("%d", int64(val))
		}
		return fmt.Sprintf("%.1f", val)
	case bool:
		if val {
			return "yes"
		}
		return "no"
	case []any:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			parts = append(parts, formatFieldValue(item))
		}
		return strings.Join(parts, ", ")
	default:
		return fmt.Sprintf("%v", val)
	}
}

// statusDot renders a colored liveness indicator.
func statusDot(up bool) string {
	if up {
		return healthyStyle.Render("●")
	}
	return errorStyle.Render("●")
}
