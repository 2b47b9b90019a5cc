// Package slog provides log/slog decorators for pinexport services.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/pinexport"
)

// Ensure LoggingFeed implements pinexport.Feed.
var _ pinexport.Feed = (*LoggingFeed)(nil)

// LoggingFeed wraps a Feed with debug logging.
type LoggingFeed struct {
	next   pinexport.Feed
	logger *slog.Logger
}

// NewLoggingFeed creates a new LoggingFeed.
func NewLoggingFeed(next pinexport.Feed, logger *slog.Logger) *LoggingFeed {
	return &LoggingFeed{next: next, logger: logger}
}

// Cards delegates to the wrapped feed and logs how many cards were read.
func (f *LoggingFeed) Cards(ctx context.Context) (cards []pinexport.Card, err error) {
	defer func(begin time.Time) {
		f.logger.Debug("feed cards",
			"count", len(cards),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return f.next.Cards(ctx)
}

// Advance delegates to the wrapped feed and logs the scroll.
func (f *LoggingFeed) Advance(ctx context.Context) (err error) {
	defer func(begin time.Time) {
		f.logger.Debug("feed advance",
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return f.next.Advance(ctx)
}
