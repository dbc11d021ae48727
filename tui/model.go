// Package tui renders a chat.Widget as a terminal chat panel using Bubble Tea.
package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/fwojciec/bookchat"
	"github.com/fwojciec/bookchat/chat"
)

// Renderer turns markdown answers into terminal output.
// *glamour.TermRenderer satisfies it.
type Renderer interface {
	Render(markdown string) (string, error)
}

// Changes coalesces widget change notifications for the UI loop.
// Pass Changes.Notify to chat.WithOnChange.
type Changes chan struct{}

// NewChanges creates a Changes with room for one pending notification.
func NewChanges() Changes {
	return make(Changes, 1)
}

// Notify records that the widget changed. It never blocks.
func (c Changes) Notify(bookchat.ConversationState) {
	select {
	case c <- struct{}{}:
	default:
	}
}

// ChangedMsg tells the model to re-read the widget state.
type ChangedMsg struct{}

func waitForChange(ch Changes) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return ChangedMsg{}
	}
}

// Model is the Bubble Tea model for the chat panel.
type Model struct {
	ctx     context.Context
	widget  *chat.Widget
	changes Changes
	publish func() error

	renderer Renderer
	input    textarea.Model
	viewport viewport.Model
	spinner  spinner.Model

	width  int
	height int
	state  bookchat.ConversationState
	err    error
}

// Option configures a Model.
type Option func(*Model)

// WithRenderer sets the markdown renderer for answers.
func WithRenderer(r Renderer) Option {
	return func(m *Model) {
		m.renderer = r
	}
}

// WithTogglePublisher binds ctrl+o to publish, which broadcasts a toggle
// event to every widget listening on the host's bus.
func WithTogglePublisher(publish func() error) Option {
	return func(m *Model) {
		m.publish = publish
	}
}

// NewModel creates a Model for widget. Submitted questions use ctx.
func NewModel(ctx context.Context, widget *chat.Widget, changes Changes, opts ...Option) Model {
	ta := textarea.New()
	ta.Placeholder = "Ask a question about the book..."
	ta.ShowLineNumbers = false
	ta.SetHeight(2)
	ta.KeyMap.InsertNewline.SetEnabled(false)
	ta.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Points
	sp.Style = typingStyle

	m := Model{
		ctx:      ctx,
		widget:   widget,
		changes:  changes,
		input:    ta,
		viewport: viewport.New(defaultWidth-4, defaultHeight-panelChrome),
		spinner:  sp,
		width:    defaultWidth,
		height:   defaultHeight,
		state:    widget.Snapshot(),
	}
	for _, opt := range opts {
		opt(&m)
	}
	if m.renderer == nil {
		m.renderer = newGlamourRenderer(m.width)
	}
	m.refresh()
	return m
}

// Init starts the typing indicator and the change listener.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, m.spinner.Tick, waitForChange(m.changes))
}

// Update handles a message.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case ChangedMsg:
		m.refresh()
		return m, waitForChange(m.changes)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		if m.state.IsLoading {
			m.refresh()
		}
		return m, cmd

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "ctrl+t":
			m.widget.Toggle()
			m.refresh()
			return m, nil
		case "ctrl+o":
			if m.publish != nil {
				m.err = m.publish()
			}
			return m, nil
		case "esc":
			if m.state.IsOpen {
				m.widget.Toggle()
				m.refresh()
			}
			return m, nil
		case "enter":
			if m.state.IsOpen && !m.state.IsLoading {
				m.widget.SetInput(m.input.Value())
				if m.widget.SubmitInput(m.ctx) != nil {
					m.input.Reset()
				}
				m.refresh()
			}
			return m, nil
		}

		if !m.state.IsOpen || m.state.IsLoading {
			return m, nil
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		m.widget.SetInput(m.input.Value())
		return m, cmd

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// refresh re-reads the widget and scrolls to the newest message when the
// log or the typing indicator changed.
func (m *Model) refresh() {
	prev := m.state
	m.state = m.widget.Snapshot()

	m.viewport.SetContent(m.renderLog())
	if len(prev.Messages) != len(m.state.Messages) || prev.IsLoading != m.state.IsLoading || m.state.IsLoading {
		m.viewport.GotoBottom()
	}
}

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height

	m.input.SetWidth(max(width-4, 10))
	m.viewport.Width = max(width-4, 10)
	m.viewport.Height = max(height-panelChrome, 3)
	if _, ok := m.renderer.(*glamour.TermRenderer); ok {
		m.renderer = newGlamourRenderer(width)
	}
	m.refresh()
}

// Err returns the last error from publishing a toggle event.
func (m Model) Err() error {
	return m.err
}

func newGlamourRenderer(width int) Renderer {
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(max(width-8, 20)),
	)
	if err != nil {
		return plainRenderer{}
	}
	return r
}

// plainRenderer returns markdown unchanged.
type plainRenderer struct{}

func (plainRenderer) Render(markdown string) (string, error) {
	return markdown, nil
}
