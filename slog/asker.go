// Package slog provides logging decorators for bookchat services.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/bookchat"
)

// Ensure LoggingAsker implements bookchat.Asker.
var _ bookchat.Asker = (*LoggingAsker)(nil)

// LoggingAsker wraps an Asker with logging.
type LoggingAsker struct {
	next   bookchat.Asker
	logger *slog.Logger
}

// NewLoggingAsker creates a new LoggingAsker.
func NewLoggingAsker(next bookchat.Asker, logger *slog.Logger) *LoggingAsker {
	return &LoggingAsker{next: next, logger: logger}
}

// Ask delegates to the wrapped asker and logs the exchange.
// The question text itself is not logged.
func (a *LoggingAsker) Ask(ctx context.Context, q *bookchat.Question) (ans *bookchat.Answer, err error) {
	defer func(begin time.Time) {
		logAnswer(a.logger, "ask", []any{
			"question_len", len(q.Question),
			"session", q.SessionID,
			"duration", time.Since(begin),
		}, ans, err)
	}(time.Now())
	return a.next.Ask(ctx, q)
}

// Ensure LoggingSelectionAsker implements bookchat.SelectionAsker.
var _ bookchat.SelectionAsker = (*LoggingSelectionAsker)(nil)

// LoggingSelectionAsker wraps a SelectionAsker with logging.
type LoggingSelectionAsker struct {
	next   bookchat.SelectionAsker
	logger *slog.Logger
}

// NewLoggingSelectionAsker creates a new LoggingSelectionAsker.
func NewLoggingSelectionAsker(next bookchat.SelectionAsker, logger *slog.Logger) *LoggingSelectionAsker {
	return &LoggingSelectionAsker{next: next, logger: logger}
}

// AskFromSelection delegates to the wrapped asker and logs the exchange.
// Neither the question nor the selected text is logged.
func (a *LoggingSelectionAsker) AskFromSelection(ctx context.Context, q *bookchat.SelectionQuestion) (ans *bookchat.Answer, err error) {
	defer func(begin time.Time) {
		logAnswer(a.logger, "ask_from_selection", []any{
			"question_len", len(q.Question),
			"selection_len", len(q.SelectedText),
			"session", q.SessionID,
			"duration", time.Since(begin),
		}, ans, err)
	}(time.Now())
	return a.next.AskFromSelection(ctx, q)
}

// logAnswer logs msg with attrs plus the outcome of an ask. Failures are
// logged at error level with their code.
func logAnswer(logger *slog.Logger, msg string, attrs []any, ans *bookchat.Answer, err error) {
	if ans != nil {
		attrs = append(attrs, "sources", len(ans.SourceCitations))
		if ans.ConfidenceScore != nil {
			attrs = append(attrs, "confidence", *ans.ConfidenceScore)
		}
	}
	if err != nil {
		attrs = append(attrs, "code", bookchat.ErrorCode(err), "err", err)
		logger.Error(msg, attrs...)
		return
	}
	logger.Info(msg, attrs...)
}

// Ensure LoggingHealthChecker implements bookchat.HealthChecker.
var _ bookchat.HealthChecker = (*LoggingHealthChecker)(nil)

// LoggingHealthChecker wraps a HealthChecker with logging.
type LoggingHealthChecker struct {
	next   bookchat.HealthChecker
	logger *slog.Logger
}

// NewLoggingHealthChecker creates a new LoggingHealthChecker.
func NewLoggingHealthChecker(next bookchat.HealthChecker, logger *slog.Logger) *LoggingHealthChecker {
	return &LoggingHealthChecker{next: next, logger: logger}
}

// Health delegates to the wrapped checker and logs the result.
func (c *LoggingHealthChecker) Health(ctx context.Context) (h *bookchat.Health, err error) {
	defer func(begin time.Time) {
		status := ""
		if h != nil {
			status = h.Status
		}
		c.logger.Info("health",
			"status", status,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return c.next.Health(ctx)
}
