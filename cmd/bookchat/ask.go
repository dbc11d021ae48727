package main

import (
	"fmt"

	"github.com/fwojciec/bookchat"
)

// Run executes the ask command.
func (c *AskCmd) Run(deps *Dependencies) error {
	var (
		ans *bookchat.Answer
		err error
	)
	if c.Selection != "" {
		ans, err = deps.SelectionAsker.AskFromSelection(deps.Ctx, &bookchat.SelectionQuestion{
			Question:     c.Question,
			SelectedText: c.Selection,
			SessionID:    bookchat.SessionID,
		})
	} else {
		ans, err = deps.Asker.Ask(deps.Ctx, &bookchat.Question{
			Question:  c.Question,
			SessionID: bookchat.SessionID,
		})
	}
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", bookchat.ErrorMessage(err))
		printHint(deps, err)
		return err
	}

	fmt.Fprintln(deps.Stdout, ans.Answer)
	if s := bookchat.FormatSources(ans.SourceCitations); s != "" {
		fmt.Fprintf(deps.Stdout, "\n%s\n", s)
	}
	if ans.ConfidenceScore != nil {
		fmt.Fprintf(deps.Stdout, "\n%s\n", bookchat.FormatConfidence(*ans.ConfidenceScore))
	}
	return nil
}

// printHint suggests a fix for backend connectivity errors.
func printHint(deps *Dependencies, err error) {
	if bookchat.ErrorCode(err) == bookchat.ENETWORK {
		fmt.Fprintf(deps.Stderr, "Hint: is the backend running at %s? Set %s or --base-url to use a different backend.\n", deps.BaseURL, bookchat.BaseURLEnv)
	}
}
