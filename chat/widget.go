// Package chat implements the chat widget: a toggleable panel that sends the
// user's question to an Asker and appends the answer to an append-only log.
package chat

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fwojciec/bookchat"
)

// State is the widget's position in its state machine.
type State int

// State constants.
const (
	StateClosed State = iota
	StateOpenIdle
	StateOpenWaiting
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpenIdle:
		return "open-idle"
	case StateOpenWaiting:
		return "open-waiting"
	default:
		return "unknown"
	}
}

// Widget holds one conversation. At most one question is in flight at a time.
// A Widget is safe for concurrent use.
type Widget struct {
	asker    bookchat.Asker
	now      func() time.Time
	onChange func(bookchat.ConversationState)

	mu       sync.Mutex
	isOpen   bool
	messages []*bookchat.Message
	input    string
	loading  bool
	lastID   int64
}

// Option configures a Widget.
type Option func(*Widget)

// WithClock sets the time source used to derive message IDs.
func WithClock(now func() time.Time) Option {
	return func(w *Widget) {
		w.now = now
	}
}

// WithOnChange registers a callback invoked with a snapshot after every
// state change. It is called without the widget lock held, possibly from the
// goroutine that received the answer.
func WithOnChange(fn func(bookchat.ConversationState)) Option {
	return func(w *Widget) {
		w.onChange = fn
	}
}

// NewWidget creates a closed widget with an empty log.
func NewWidget(asker bookchat.Asker, opts ...Option) *Widget {
	w := &Widget{
		asker: asker,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Toggle opens a closed panel or closes an open one.
func (w *Widget) Toggle() {
	w.mu.Lock()
	w.isOpen = !w.isOpen
	state := w.snapshot()
	w.mu.Unlock()

	w.notify(state)
}

// IsOpen reports whether the panel is visible.
func (w *Widget) IsOpen() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.isOpen
}

// IsLoading reports whether a question is in flight.
func (w *Widget) IsLoading() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.loading
}

// State returns the current state. A question submitted before the panel was
// closed keeps gating resubmission but is reported as StateClosed.
func (w *Widget) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	switch {
	case !w.isOpen:
		return StateClosed
	case w.loading:
		return StateOpenWaiting
	default:
		return StateOpenIdle
	}
}

// Input returns the current input value.
func (w *Widget) Input() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.input
}

// SetInput replaces the input value.
func (w *Widget) SetInput(text string) {
	w.mu.Lock()
	w.input = text
	state := w.snapshot()
	w.mu.Unlock()

	w.notify(state)
}

// Messages returns a copy of the log in submission order. The messages are
// copies too, so changing them does not affect the log.
func (w *Widget) Messages() []*bookchat.Message {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.cloneMessages()
}

// Snapshot returns the whole conversation state.
func (w *Widget) Snapshot() bookchat.ConversationState {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.snapshot()
}

// SubmitInput submits the current input value.
func (w *Widget) SubmitInput(ctx context.Context) <-chan *bookchat.Message {
	return w.Submit(ctx, w.Input())
}

// Submit sends text to the Asker.
//
// Submit is a no-op returning nil when text is blank or a question is
// already in flight. Otherwise it appends the user message, clears the
// input and returns immediately. The bot message, built from the answer or
// from the error, is appended once the Asker returns and is then delivered on
// the returned channel, which is closed afterwards.
func (w *Widget) Submit(ctx context.Context, text string) <-chan *bookchat.Message {
	w.mu.Lock()
	if strings.TrimSpace(text) == "" || w.loading {
		w.mu.Unlock()
		return nil
	}
	w.append(&bookchat.Message{Type: bookchat.MessageUser, Content: text})
	w.input = ""
	w.loading = true
	state := w.snapshot()
	w.mu.Unlock()

	w.notify(state)

	done := make(chan *bookchat.Message, 1)
	go func() {
		defer close(done)

		ans, err := w.asker.Ask(ctx, &bookchat.Question{Question: text, SessionID: bookchat.SessionID})
		if err == nil && ans == nil {
			err = bookchat.Errorf(bookchat.EPARSE, "empty response")
		}

		m := &bookchat.Message{Type: bookchat.MessageBot}
		if err != nil {
			m.Content = ErrorContent(err)
		} else {
			m.Content = ans.Answer
			m.Sources = slices.Clone(ans.SourceCitations)
			if ans.ConfidenceScore != nil {
				m.Confidence = bookchat.Float64(*ans.ConfidenceScore)
			}
		}

		w.mu.Lock()
		w.append(m)
		w.loading = false
		state := w.snapshot()
		w.mu.Unlock()

		w.notify(state)
		done <- m.Clone()
	}()
	return done
}

// Listen subscribes to src and toggles the widget once per event until ctx
// is done or src closes its channel. Events published before Listen has
// subscribed are missed; use ConsumeToggles with a channel obtained up front
// when that matters.
func (w *Widget) Listen(ctx context.Context, src bookchat.ToggleSource) error {
	toggles, err := src.Toggles(ctx)
	if err != nil {
		return fmt.Errorf("subscribe to toggles: %w", err)
	}
	return w.ConsumeToggles(ctx, toggles)
}

// ConsumeToggles toggles the widget once per event and acknowledges each
// event after the toggle is applied. It returns when ctx is done or toggles
// is closed.
func (w *Widget) ConsumeToggles(ctx context.Context, toggles <-chan bookchat.ToggleEvent) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-toggles:
			if !ok {
				return nil
			}
			w.Toggle()
			ev.Ack()
		}
	}
}

// ErrorContent renders a failed request as a message the user can read.
func ErrorContent(err error) string {
	reason := err.Error()
	var e *bookchat.Error
	if errors.As(err, &e) {
		reason = e.Message
	}
	return fmt.Sprintf("Sorry, I encountered an error: %s. Please make sure the backend server is running.", reason)
}

// append assigns a monotonic, timestamp-derived ID and adds m to the log.
// Callers must hold w.mu.
func (w *Widget) append(m *bookchat.Message) {
	id := w.now().UnixMilli()
	if id <= w.lastID {
		id = w.lastID + 1
	}
	w.lastID = id
	m.ID = id
	w.messages = append(w.messages, m)
}

// snapshot copies the state. Callers must hold w.mu.
func (w *Widget) snapshot() bookchat.ConversationState {
	return bookchat.ConversationState{
		IsOpen:     w.isOpen,
		Messages:   w.cloneMessages(),
		InputValue: w.input,
		IsLoading:  w.loading,
	}
}

// cloneMessages deep-copies the log. Callers must hold w.mu.
func (w *Widget) cloneMessages() []*bookchat.Message {
	out := make([]*bookchat.Message, len(w.messages))
	for i, m := range w.messages {
		out[i] = m.Clone()
	}
	return out
}

func (w *Widget) notify(state bookchat.ConversationState) {
	if w.onChange != nil {
		w.onChange(state)
	}
}
