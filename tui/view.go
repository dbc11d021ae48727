package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/bookchat"
)

const (
	defaultWidth  = 80
	defaultHeight = 24

	// Rows taken by the border, header, input and help line.
	panelChrome = 9
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	userStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	botStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("118"))
	sourceStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("246"))
	scoreStyle  = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("244"))
	typingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("63")).Bold(true)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	buttonStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Foreground(lipgloss.Color("#FFFDF5")).
			Background(lipgloss.Color("62"))
	panelStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 1)
)

const welcomeText = "Hello! I'm your textbook assistant.\n" +
	"Ask me anything about the book content, and I'll provide answers based on the material."

// View renders the toggle button, or the open panel.
func (m Model) View() string {
	if !m.state.IsOpen {
		return buttonStyle.Render("Ask the book") + " " + helpStyle.Render("ctrl+t open · ctrl+c quit")
	}

	var sb strings.Builder
	sb.WriteString(headerStyle.Render("Book Assistant"))
	sb.WriteString("\n")
	sb.WriteString(m.viewport.View())
	sb.WriteString("\n")
	sb.WriteString(m.input.View())
	sb.WriteString("\n")
	help := "enter send · esc close · ctrl+c quit"
	if m.state.IsLoading {
		help = "waiting for answer · esc close · ctrl+c quit"
	}
	sb.WriteString(helpStyle.Render(help))
	if m.err != nil {
		sb.WriteString("\n")
		sb.WriteString(errorStyle.Render(m.err.Error()))
	}

	return panelStyle.Width(max(m.width-2, 10)).Render(sb.String())
}

// renderLog renders the message log followed by the typing indicator.
func (m Model) renderLog() string {
	if len(m.state.Messages) == 0 && !m.state.IsLoading {
		return welcomeText
	}

	parts := make([]string, 0, len(m.state.Messages)+1)
	for _, msg := range m.state.Messages {
		parts = append(parts, m.renderMessage(msg))
	}
	if m.state.IsLoading {
		parts = append(parts, botStyle.Render("Assistant")+" "+m.spinner.View())
	}
	return strings.Join(parts, "\n\n")
}

func (m Model) renderMessage(msg *bookchat.Message) string {
	if msg.Type == bookchat.MessageUser {
		return userStyle.Render("You") + "\n" + msg.Content
	}

	var sb strings.Builder
	sb.WriteString(botStyle.Render("Assistant"))
	sb.WriteString("\n")
	sb.WriteString(m.renderMarkdown(msg.Content))

	if len(msg.Sources) > 0 {
		sb.WriteString("\n")
		sb.WriteString(sourceStyle.Render(bookchat.FormatSources(msg.Sources)))
	}
	if msg.Confidence != nil {
		sb.WriteString("\n")
		sb.WriteString(scoreStyle.Render(bookchat.FormatConfidence(*msg.Confidence)))
	}
	return sb.String()
}

func (m Model) renderMarkdown(content string) string {
	out, err := m.renderer.Render(content)
	if err != nil {
		return content
	}
	return strings.Trim(out, "\n")
}
