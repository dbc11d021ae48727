// Package fs provides file-based export of chat transcripts.
package fs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fwojciec/bookchat"
)

// FormatTranscript formats a conversation as markdown with YAML frontmatter.
func FormatTranscript(messages []*bookchat.Message, exported time.Time) string {
	var b strings.Builder
	b.WriteString("---\n")
	b.WriteString("session: ")
	b.WriteString(bookchat.SessionID)
	b.WriteString("\nexported: ")
	b.WriteString(exported.Format("2006-01-02"))
	fmt.Fprintf(&b, "\nmessages: %d", len(messages))
	b.WriteString("\n---\n")

	for _, m := range messages {
		b.WriteString("\n")
		if m.Type == bookchat.MessageUser {
			b.WriteString("## Question\n\n")
		} else {
			b.WriteString("## Answer\n\n")
		}
		b.WriteString(m.Content)
		b.WriteString("\n")

		if len(m.Sources) > 0 {
			fmt.Fprintf(&b, "\n### Sources (%d)\n\n", len(m.Sources))
			for _, s := range m.Sources {
				b.WriteString("- **")
				b.WriteString(bookchat.FormatSourceHeading(s))
				b.WriteString("**")
				if s.Text != "" {
					b.WriteString(": ")
					b.WriteString(s.Text)
				}
				b.WriteString("\n")
			}
		}
		if m.Confidence != nil {
			b.WriteString("\n_")
			b.WriteString(bookchat.FormatConfidence(*m.Confidence))
			b.WriteString("_\n")
		}
	}
	return b.String()
}

// Ensure Writer implements bookchat.TranscriptWriter at compile time.
var _ bookchat.TranscriptWriter = (*Writer)(nil)

// Writer writes transcripts as markdown files.
// The file is written to a temporary sibling and renamed into place, so
// readers never observe a partial transcript.
type Writer struct {
	path string
	now  func() time.Time
}

// NewWriter creates a new Writer that writes to the given path.
func NewWriter(path string) *Writer {
	return &Writer{path: path, now: time.Now}
}

// WriteTranscript writes messages to disk. Empty conversations are skipped.
func (w *Writer) WriteTranscript(ctx context.Context, messages []*bookchat.Message) error {
	if w.path == "" {
		return bookchat.Errorf(bookchat.EINVALID, "transcript path required")
	}
	if len(messages) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	// Create parent directories
	if err := os.MkdirAll(filepath.Dir(w.path), 0755); err != nil {
		return err
	}

	tmp := w.path + ".tmp"
	content := FormatTranscript(messages, w.now())
	if err := os.WriteFile(tmp, []byte(content), 0644); err != nil {
		return err
	}

	// Atomically rename temp to final
	if err := os.Rename(tmp, w.path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}
