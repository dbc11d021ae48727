package mock

import (
	"context"

	"github.com/fwojciec/bookchat"
)

var (
	_ bookchat.Asker          = (*Asker)(nil)
	_ bookchat.SelectionAsker = (*SelectionAsker)(nil)
	_ bookchat.HealthChecker  = (*HealthChecker)(nil)
)

// Asker is a mock implementation of bookchat.Asker.
type Asker struct {
	AskFn func(ctx context.Context, q *bookchat.Question) (*bookchat.Answer, error)
}

func (a *Asker) Ask(ctx context.Context, q *bookchat.Question) (*bookchat.Answer, error) {
	return a.AskFn(ctx, q)
}

// SelectionAsker is a mock implementation of bookchat.SelectionAsker.
type SelectionAsker struct {
	AskFromSelectionFn func(ctx context.Context, q *bookchat.SelectionQuestion) (*bookchat.Answer, error)
}

func (a *SelectionAsker) AskFromSelection(ctx context.Context, q *bookchat.SelectionQuestion) (*bookchat.Answer, error) {
	return a.AskFromSelectionFn(ctx, q)
}

// HealthChecker is a mock implementation of bookchat.HealthChecker.
type HealthChecker struct {
	HealthFn func(ctx context.Context) (*bookchat.Health, error)
}

func (h *HealthChecker) Health(ctx context.Context) (*bookchat.Health, error) {
	return h.HealthFn(ctx)
}
