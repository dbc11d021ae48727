package main

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fwojciec/bookchat"
	"github.com/fwojciec/bookchat/chat"
	"github.com/fwojciec/bookchat/tui"
	"golang.org/x/sync/errgroup"
)

// Line-mode commands.
const (
	toggleCommand = "/toggle"
	quitCommand   = "/quit"
)

// Run executes the chat command.
func (c *ChatCmd) Run(deps *Dependencies) error {
	var (
		widget *chat.Widget
		err    error
	)
	if deps.Interactive {
		widget, err = c.runTerminal(deps)
	} else {
		widget, err = c.runLines(deps)
	}
	if err != nil {
		return err
	}

	if c.Transcript == "" {
		return nil
	}
	w := deps.NewTranscriptWriter(c.Transcript)
	if err := w.WriteTranscript(deps.Ctx, widget.Messages()); err != nil {
		fmt.Fprintf(deps.Stderr, "error: failed to write transcript: %s\n", err)
		return err
	}
	fmt.Fprintf(deps.Stderr, "Transcript written to %s\n", c.Transcript)
	return nil
}

// runTerminal shows the widget as a full-screen terminal panel.
func (c *ChatCmd) runTerminal(deps *Dependencies) (*chat.Widget, error) {
	ctx, cancel := context.WithCancel(deps.Ctx)
	defer cancel()

	changes := tui.NewChanges()
	widget := chat.NewWidget(deps.Asker, chat.WithOnChange(changes.Notify))

	var opts []tui.Option
	if deps.Bus != nil {
		opts = append(opts, tui.WithTogglePublisher(deps.Bus.PublishToggle))
	}
	model := tui.NewModel(ctx, widget, changes, opts...)

	eg, ctx := errgroup.WithContext(ctx)
	if err := listenToggles(ctx, eg, deps, widget); err != nil {
		return widget, err
	}
	eg.Go(func() error {
		defer cancel()
		p := tea.NewProgram(model,
			tea.WithContext(ctx),
			tea.WithInput(deps.Stdin),
			tea.WithOutput(deps.Stdout),
			tea.WithAltScreen(),
			tea.WithMouseCellMotion(),
		)
		_, err := p.Run()
		return err
	})

	return widget, eg.Wait()
}

// runLines reads one question per line and prints each answer.
// The panel starts open. "/toggle" broadcasts a toggle event on the bus and
// "/quit" ends the session. A toggle is applied before the next line is read.
func (c *ChatCmd) runLines(deps *Dependencies) (*chat.Widget, error) {
	ctx, cancel := context.WithCancel(deps.Ctx)
	defer cancel()

	widget := chat.NewWidget(deps.Asker)
	widget.Toggle()

	eg, ctx := errgroup.WithContext(ctx)
	if err := listenToggles(ctx, eg, deps, widget); err != nil {
		return widget, err
	}
	eg.Go(func() error {
		defer cancel()
		return c.readLines(ctx, deps, widget)
	})

	return widget, eg.Wait()
}

// listenToggles subscribes widget to the bus before returning, so no toggle
// published afterwards is missed, and consumes events in eg.
func listenToggles(ctx context.Context, eg *errgroup.Group, deps *Dependencies, widget *chat.Widget) error {
	if deps.Bus == nil {
		return nil
	}
	toggles, err := deps.Bus.Toggles(ctx)
	if err != nil {
		return fmt.Errorf("subscribe to toggles: %w", err)
	}
	eg.Go(func() error {
		return widget.ConsumeToggles(ctx, toggles)
	})
	return nil
}

func (c *ChatCmd) readLines(ctx context.Context, deps *Dependencies, widget *chat.Widget) error {
	fmt.Fprintf(deps.Stdout, "Book Assistant (%s). Type a question, %s to show or hide the panel, %s to exit.\n", deps.BaseURL, toggleCommand, quitCommand)

	scanner := bufio.NewScanner(deps.Stdin)
	for scanner.Scan() {
		line := scanner.Text()
		switch strings.TrimSpace(line) {
		case quitCommand:
			return nil
		case toggleCommand:
			if deps.Bus == nil {
				widget.Toggle()
				continue
			}
			if err := deps.Bus.PublishToggle(); err != nil {
				return fmt.Errorf("publish toggle: %w", err)
			}
			continue
		case "":
			continue
		}

		if !widget.IsOpen() {
			fmt.Fprintf(deps.Stdout, "(panel closed, type %s to open it)\n", toggleCommand)
			continue
		}

		done := widget.Submit(ctx, line)
		if done == nil {
			continue
		}
		select {
		case m := <-done:
			fmt.Fprintln(deps.Stdout, bookchat.FormatMessage(m))
		case <-ctx.Done():
			return nil
		}
	}
	return scanner.Err()
}
