package main

import (
	"fmt"

	"github.com/fwojciec/bookchat"
)

// Run executes the health command.
func (c *HealthCmd) Run(deps *Dependencies) error {
	h, err := deps.Health.Health(deps.Ctx)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", bookchat.ErrorMessage(err))
		printHint(deps, err)
		return err
	}

	fmt.Fprintf(deps.Stdout, "backend:    %s\n", deps.BaseURL)
	fmt.Fprintf(deps.Stdout, "status:     %s\n", h.Status)
	if h.Version != "" {
		fmt.Fprintf(deps.Stdout, "version:    %s\n", h.Version)
	}
	if h.APIPrefix != "" {
		fmt.Fprintf(deps.Stdout, "api prefix: %s\n", h.APIPrefix)
	}
	return nil
}
