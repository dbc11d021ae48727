package main

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/fwojciec/bookchat"
)

// ToggleBus broadcasts and delivers toggle events for the chat panel.
type ToggleBus interface {
	bookchat.ToggleSource
	PublishToggle() error
}

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx     context.Context
	Stdin   io.Reader
	Stdout  io.Writer
	Stderr  io.Writer
	Logger  *slog.Logger
	BaseURL string

	Asker          bookchat.Asker
	SelectionAsker bookchat.SelectionAsker
	Health         bookchat.HealthChecker

	// Chat command only.
	Bus                 ToggleBus
	Interactive         bool
	NewTranscriptWriter func(path string) bookchat.TranscriptWriter
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	BaseURL string        `name:"base-url" help:"Backend base URL, e.g. http://localhost:8000 or https://docs.example.com/api"`
	Timeout time.Duration `default:"0s" help:"Request timeout (0 waits indefinitely)"`
	Verbose bool          `short:"v" help:"Log backend requests to stderr"`

	Chat   ChatCmd   `cmd:"" help:"Open the chat widget"`
	Ask    AskCmd    `cmd:"" help:"Ask a single question about the book"`
	Health HealthCmd `cmd:"" help:"Check that the backend is reachable"`
}

// ChatCmd is the "chat" subcommand.
type ChatCmd struct {
	Transcript string `short:"t" type:"path" help:"Write the conversation to this markdown file on exit"`
}

// AskCmd is the "ask" subcommand.
type AskCmd struct {
	Question  string `arg:"" help:"Question to ask about the book"`
	Selection string `short:"s" help:"Ask about this selected passage instead of the whole book"`
}

// HealthCmd is the "health" subcommand.
type HealthCmd struct{}
