package mock

import (
	"context"

	"github.com/fwojciec/bookchat"
)

var (
	_ bookchat.ToggleSource = (*ToggleSource)(nil)
	_ bookchat.ToggleEvent  = (*ToggleEvent)(nil)
)

// ToggleSource is a mock implementation of bookchat.ToggleSource.
type ToggleSource struct {
	TogglesFn func(ctx context.Context) (<-chan bookchat.ToggleEvent, error)
}

func (s *ToggleSource) Toggles(ctx context.Context) (<-chan bookchat.ToggleEvent, error) {
	return s.TogglesFn(ctx)
}

// ToggleEvent is a mock implementation of bookchat.ToggleEvent.
type ToggleEvent struct {
	AckFn func() bool
}

func (e *ToggleEvent) Ack() bool {
	return e.AckFn()
}
