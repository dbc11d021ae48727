package bookchat

import (
	"context"
	"strings"
)

// Question is a request to the Q&A backend.
type Question struct {
	Question  string `json:"question"`
	SessionID string `json:"session_id"`
}

// Validate returns an error if the question contains invalid fields.
func (q *Question) Validate() error {
	if strings.TrimSpace(q.Question) == "" {
		return Errorf(EINVALID, "question required")
	}
	return nil
}

// SelectionQuestion asks about a passage of text the reader selected.
type SelectionQuestion struct {
	Question     string `json:"question"`
	SelectedText string `json:"selected_text"`
	SessionID    string `json:"session_id"`
}

// Validate returns an error if the question contains invalid fields.
func (q *SelectionQuestion) Validate() error {
	if strings.TrimSpace(q.Question) == "" {
		return Errorf(EINVALID, "question required")
	}
	if strings.TrimSpace(q.SelectedText) == "" {
		return Errorf(EINVALID, "selected text required")
	}
	return nil
}

// Answer is the backend's reply to a question.
// ConfidenceScore is nil when the backend did not report one.
type Answer struct {
	ID              string   `json:"id,omitempty"`
	Answer          string   `json:"answer"`
	SourceCitations []Source `json:"source_citations"`
	ConfidenceScore *float64 `json:"confidence_score,omitempty"`
	CreatedAt       string   `json:"created_at,omitempty"`
}

// Asker provides natural language question answering over the book.
type Asker interface {
	// Ask sends a question to the backend and returns its answer.
	// Transport failures return ENETWORK, non-2xx responses return EHTTP
	// and undecodable responses return EPARSE.
	Ask(ctx context.Context, q *Question) (*Answer, error)
}

// SelectionAsker answers questions scoped to a selected passage.
type SelectionAsker interface {
	AskFromSelection(ctx context.Context, q *SelectionQuestion) (*Answer, error)
}

// Health reports the backend's status.
type Health struct {
	Status    string `json:"status"`
	Version   string `json:"version"`
	APIPrefix string `json:"api_prefix"`
}

// HealthChecker reports whether the backend is reachable.
type HealthChecker interface {
	Health(ctx context.Context) (*Health, error)
}

// TranscriptWriter exports a conversation log.
type TranscriptWriter interface {
	WriteTranscript(ctx context.Context, messages []*Message) error
}
