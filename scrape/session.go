// Package scrape collects records from a live feed.
// A Session polls the feed on a fixed interval, extracts new cards,
// deduplicates them by link and scrolls the feed forward to load more.
package scrape

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fwojciec/pinexport"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// DefaultInterval is the time between two ticks.
const DefaultInterval = 500 * time.Millisecond

// Option configures a Session.
type Option func(*Session)

// WithInterval sets the time between ticks. Defaults to DefaultInterval.
func WithInterval(d time.Duration) Option {
	return func(s *Session) {
		s.interval = d
	}
}

// WithLogger sets the logger for session lifecycle events.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// WithCountFunc sets a function called after every tick with the number of
// distinct records collected. It runs on the tick goroutine and must not
// call Stop.
func WithCountFunc(fn pinexport.CountFunc) Option {
	return func(s *Session) {
		s.onCount = fn
	}
}

// WithResetVisited controls whether Start forgets the cards examined by a
// previous run. Defaults to true, giving every card a fresh chance after a
// restart. With false, cards examined before a restart are never parsed
// again and only cards new to the feed are collected.
func WithResetVisited(reset bool) Option {
	return func(s *Session) {
		s.resetVisited = reset
	}
}

// Session owns the record store and the polling loop over a Feed.
// At most one loop runs at a time and ticks never overlap.
//
// Session is safe for concurrent use.
type Session struct {
	feed         pinexport.Feed
	extractor    *Extractor
	interval     time.Duration
	logger       *slog.Logger
	onCount      pinexport.CountFunc
	resetVisited bool

	// lifecycle serializes Start and Stop.
	lifecycle sync.Mutex
	cancel    context.CancelFunc
	group     *errgroup.Group
	running   atomic.Bool

	// mu guards the fields below, which the tick goroutine writes.
	mu    sync.Mutex
	id    string
	store *Store
}

// NewSession returns an idle Session reading cards from feed.
func NewSession(feed pinexport.Feed, parser pinexport.CardParser, opts ...Option) *Session {
	s := &Session{
		feed:         feed,
		extractor:    NewExtractor(parser),
		interval:     DefaultInterval,
		logger:       slog.New(slog.DiscardHandler),
		resetVisited: true,
		store:        NewStore(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start begins polling the feed with an empty store.
// Returns false without doing anything if the session is already running.
//
// Canceling ctx halts further ticks. Stop must still be called to end the
// session and take the records.
func (s *Session) Start(ctx context.Context) bool {
	s.lifecycle.Lock()
	defer s.lifecycle.Unlock()

	if s.cancel != nil {
		return false
	}

	if s.resetVisited {
		s.extractor.Reset()
	}

	store := NewStore()
	id := uuid.NewString()
	s.mu.Lock()
	s.store = store
	s.id = id
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	g := &errgroup.Group{}
	g.Go(func() error {
		s.run(ctx, id, store)
		return nil
	})

	s.cancel = cancel
	s.group = g
	s.running.Store(true)

	s.logger.Info("session started", "session", id, "interval", s.interval)
	return true
}

// Stop halts the polling loop and returns the collected records in the order
// they were first seen. No tick runs once Stop returns. The caller owns the
// returned slice. Returns nil if the session is not running.
func (s *Session) Stop() []pinexport.Record {
	s.lifecycle.Lock()
	defer s.lifecycle.Unlock()

	if s.cancel == nil {
		return nil
	}

	s.cancel()
	_ = s.group.Wait()
	s.cancel = nil
	s.group = nil
	s.running.Store(false)

	s.mu.Lock()
	records := s.store.Records()
	id := s.id
	s.mu.Unlock()

	s.logger.Info("session stopped", "session", id, "records", len(records))
	return records
}

// Running reports whether the session has been started and not yet stopped.
func (s *Session) Running() bool {
	return s.running.Load()
}

// Count returns the number of distinct records collected by the current or
// most recent run.
func (s *Session) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Len()
}

// ID returns the identifier of the current or most recent run.
// Returns an empty string before the first Start.
func (s *Session) ID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id
}

// run ticks until ctx is done. The limiter holds a single token, so a slow
// tick delays the next one instead of letting ticks pile up.
func (s *Session) run(ctx context.Context, id string, store *Store) {
	limiter := rate.NewLimiter(rate.Every(s.interval), 1)
	for {
		if err := limiter.Wait(ctx); err != nil {
			// Wait fails early when the deadline is closer than the next
			// token; the session still ends only when ctx is done.
			<-ctx.Done()
			return
		}
		s.tick(ctx, id, store)
	}
}

// tick runs one polling cycle: read cards, extract, merge, report the count
// and scroll the feed forward. Failures are logged and never end the loop.
func (s *Session) tick(ctx context.Context, id string, store *Store) {
	cards, err := s.feed.Cards(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		s.logger.Warn("reading feed", "session", id, "err", err)
	}

	records := s.extractor.Extract(cards)

	s.mu.Lock()
	added := 0
	for _, r := range records {
		if store.Add(r) {
			added++
		}
	}
	count := store.Len()
	s.mu.Unlock()

	s.logger.Debug("tick",
		"session", id,
		"cards", len(cards),
		"added", added,
		"count", count,
	)

	if s.onCount != nil {
		s.onCount(count)
	}

	if err := s.feed.Advance(ctx); err != nil && ctx.Err() == nil {
		s.logger.Warn("advancing feed", "session", id, "err", err)
	}
}
