package mock

import (
	"context"

	"github.com/fwojciec/bookchat"
)

var _ bookchat.TranscriptWriter = (*TranscriptWriter)(nil)

// TranscriptWriter is a mock implementation of bookchat.TranscriptWriter.
type TranscriptWriter struct {
	WriteTranscriptFn func(ctx context.Context, messages []*bookchat.Message) error
}

func (w *TranscriptWriter) WriteTranscript(ctx context.Context, messages []*bookchat.Message) error {
	return w.WriteTranscriptFn(ctx, messages)
}
