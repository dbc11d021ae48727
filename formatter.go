package bookchat

import (
	"fmt"
	"strings"
)

// FormatConfidence renders a confidence score as a percentage with one
// decimal place, e.g. "Confidence: 90.0%".
func FormatConfidence(score float64) string {
	return fmt.Sprintf("Confidence: %.1f%%", score*100)
}

// FormatSourceHeading renders a citation's section and, when present, its page.
func FormatSourceHeading(s Source) string {
	if s.Page == "" {
		return s.Section
	}
	return s.Section + ", Page: " + s.Page
}

// FormatSources renders citations as a plain-text list.
// Returns an empty string when there are no sources.
func FormatSources(sources []Source) string {
	if len(sources) == 0 {
		return ""
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Sources (%d)", len(sources))
	for _, s := range sources {
		sb.WriteString("\n  - ")
		sb.WriteString(FormatSourceHeading(s))
		if s.Text != "" {
			sb.WriteString("\n    ")
			sb.WriteString(s.Text)
		}
	}
	return sb.String()
}

// FormatMessage renders a message for line-oriented output.
func FormatMessage(m *Message) string {
	label := "Assistant"
	if m.Type == MessageUser {
		label = "You"
	}

	parts := []string{label + ": " + m.Content}
	if s := FormatSources(m.Sources); s != "" {
		parts = append(parts, s)
	}
	if m.Confidence != nil {
		parts = append(parts, FormatConfidence(*m.Confidence))
	}
	return strings.Join(parts, "\n")
}
