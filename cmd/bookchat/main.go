package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/bookchat"
	"github.com/fwojciec/bookchat/fs"
	bchttp "github.com/fwojciec/bookchat/http"
	bcslog "github.com/fwojciec/bookchat/slog"
	"github.com/fwojciec/bookchat/watermill"
	"github.com/joho/godotenv"
	"github.com/mattn/go-isatty"
)

func main() {
	ctx := context.Background()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Optional .env file loaded before resolving configuration.
	// Variables already present in the environment win.
	EnvFile string

	// Environment lookup. Set before calling Run().
	Getenv func(string) string

	// Input for the chat command.
	Stdin io.Reader

	// Reports whether Stdin is an interactive terminal.
	IsTerminal func() bool

	// Services for end-to-end testing. When nil, HTTP implementations are
	// wired against the resolved backend URL.
	Asker          bookchat.Asker
	SelectionAsker bookchat.SelectionAsker
	HealthChecker  bookchat.HealthChecker
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		EnvFile: ".env",
		Getenv:  os.Getenv,
		Stdin:   os.Stdin,
		IsTerminal: func() bool {
			fd := os.Stdin.Fd()
			return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
		},
	}
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	// Initialize dependencies struct for Kong binding
	deps := &Dependencies{
		Ctx:    ctx,
		Stdin:  m.Stdin,
		Stdout: stdout,
		Stderr: stderr,
	}

	// Create Kong parser with dependency binding
	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("bookchat"),
		kong.Description("Ask questions about the book and get answers with citations."),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	// Handle help flags using Kong
	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'bookchat --help' to see available commands")
	}

	cmd := args[0]
	if cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	// Parse arguments first to know which command and its flags
	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	if m.EnvFile != "" {
		// A missing .env file is not an error.
		_ = godotenv.Load(m.EnvFile)
	}

	// The interactive widget behaves like a browser client and always uses
	// the default backend; scripted commands honor BACKEND_URL.
	runtime := bookchat.RuntimeServer
	if strings.HasPrefix(kongCtx.Command(), "chat") {
		runtime = bookchat.RuntimeBrowser
	}
	deps.BaseURL = cli.BaseURL
	if deps.BaseURL == "" {
		deps.BaseURL = bookchat.APIBaseURL(runtime, m.Getenv)
	}

	logOutput := io.Discard
	if cli.Verbose {
		logOutput = stderr
	}
	deps.Logger = slog.New(slog.NewTextHandler(logOutput, nil))

	// Wire core services into dependencies
	client := bchttp.NewClient(deps.BaseURL, bchttp.WithTimeout(cli.Timeout))
	deps.Asker = m.Asker
	if deps.Asker == nil {
		deps.Asker = client
	}
	deps.Asker = bcslog.NewLoggingAsker(deps.Asker, deps.Logger)

	deps.SelectionAsker = m.SelectionAsker
	if deps.SelectionAsker == nil {
		deps.SelectionAsker = client
	}
	deps.SelectionAsker = bcslog.NewLoggingSelectionAsker(deps.SelectionAsker, deps.Logger)

	deps.Health = m.HealthChecker
	if deps.Health == nil {
		deps.Health = client
	}
	deps.Health = bcslog.NewLoggingHealthChecker(deps.Health, deps.Logger)

	deps.NewTranscriptWriter = func(path string) bookchat.TranscriptWriter {
		return fs.NewWriter(path)
	}

	// Wire command-specific dependencies based on command
	if runtime == bookchat.RuntimeBrowser {
		var busLogger *slog.Logger
		if cli.Verbose {
			busLogger = deps.Logger
		}
		bus := watermill.NewBus(busLogger)
		defer bus.Close()
		deps.Bus = bus

		if m.IsTerminal != nil {
			deps.Interactive = m.IsTerminal()
		}
	}

	return kongCtx.Run(deps)
}
