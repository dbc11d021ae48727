package bookchat

import (
	"bytes"
	"encoding/json"
	"slices"
)

// MessageType identifies the author of a message.
type MessageType string

// MessageType constants.
const (
	MessageUser MessageType = "user"
	MessageBot  MessageType = "bot"
)

// Message is a single entry in a conversation log.
// Messages are immutable once appended to a log.
type Message struct {
	ID         int64       `json:"id"`
	Type       MessageType `json:"type"`
	Content    string      `json:"content"`
	Sources    []Source    `json:"sources,omitempty"`
	Confidence *float64    `json:"confidence,omitempty"`
}

// Source is a citation attached to an answer. It is display-only.
type Source struct {
	Section string `json:"section"`
	Page    string `json:"page,omitempty"`
	Text    string `json:"text"`
}

// UnmarshalJSON decodes a source citation. The backend reports the page as
// either a number or a string; both are stored as a string.
func (s *Source) UnmarshalJSON(data []byte) error {
	var raw struct {
		Section string          `json:"section"`
		Page    json.RawMessage `json:"page"`
		Text    string          `json:"text"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	s.Section = raw.Section
	s.Text = raw.Text
	s.Page = ""

	page := bytes.TrimSpace(raw.Page)
	switch {
	case len(page) == 0, bytes.Equal(page, []byte("null")):
	case page[0] == '"':
		if err := json.Unmarshal(page, &s.Page); err != nil {
			return err
		}
	default:
		var n json.Number
		if err := json.Unmarshal(page, &n); err != nil {
			return Errorf(EPARSE, "invalid source page %s", page)
		}
		s.Page = n.String()
	}
	return nil
}

// Clone returns a copy of m that shares no memory with it.
func (m *Message) Clone() *Message {
	c := *m
	c.Sources = slices.Clone(m.Sources)
	if m.Confidence != nil {
		c.Confidence = Float64(*m.Confidence)
	}
	return &c
}

// ConversationState is a snapshot of a chat widget.
type ConversationState struct {
	IsOpen     bool
	Messages   []*Message
	InputValue string
	IsLoading  bool
}

// LastMessage returns the newest message, or nil for an empty log.
func (s ConversationState) LastMessage() *Message {
	if len(s.Messages) == 0 {
		return nil
	}
	return s.Messages[len(s.Messages)-1]
}

// Float64 returns a pointer to v.
func Float64(v float64) *float64 {
	return &v
}
