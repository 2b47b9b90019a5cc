package scrape_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fwojciec/pinexport"
	"github.com/fwojciec/pinexport/mock"
	"github.com/fwojciec/pinexport/scrape"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testInterval = 5 * time.Millisecond

// virtualFeed renders a window of cards over a longer list. Each Advance
// moves the window forward by step, dropping cards off the top the way a
// virtualized feed does.
type virtualFeed struct {
	mu       sync.Mutex
	total    int
	window   int
	step     int
	offset   int
	reads    int
	advances int
}

func (f *virtualFeed) mock() *mock.Feed {
	return &mock.Feed{
		CardsFn: func(ctx context.Context) ([]pinexport.Card, error) {
			f.mu.Lock()
			defer f.mu.Unlock()
			f.reads++
			var out []pinexport.Card
			for i := f.offset; i < f.offset+f.window && i < f.total; i++ {
				out = append(out, pinexport.Card{
					Key:  fmt.Sprintf("node-%d", i),
					HTML: fmt.Sprintf("https://example.com/pin/%d", i),
				})
			}
			return out, nil
		},
		AdvanceFn: func(ctx context.Context) error {
			f.mu.Lock()
			defer f.mu.Unlock()
			f.advances++
			f.offset += f.step
			return nil
		},
	}
}

func (f *virtualFeed) readCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reads
}

func (f *virtualFeed) advanceCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.advances
}

func TestSession_CollectsEveryCardOnce(t *testing.T) {
	t.Parallel()

	feed := &virtualFeed{total: 20, window: 6, step: 2}
	calls := map[string]int{}
	var callsMu sync.Mutex
	parser := &mock.CardParser{
		ParseCardFn: func(card pinexport.Card) (*pinexport.Record, error) {
			callsMu.Lock()
			calls[card.Key]++
			callsMu.Unlock()
			return &pinexport.Record{Link: card.HTML, Views: "0", Pins: "0", Clicks: "0"}, nil
		},
	}

	s := scrape.NewSession(feed.mock(), parser, scrape.WithInterval(testInterval))
	require.True(t, s.Start(context.Background()))

	require.Eventually(t, func() bool { return s.Count() == 20 }, 2*time.Second, testInterval)
	records := s.Stop()

	require.Len(t, records, 20)
	for i, r := range records {
		assert.Equal(t, fmt.Sprintf("https://example.com/pin/%d", i), r.Link)
	}
	callsMu.Lock()
	defer callsMu.Unlock()
	for key, n := range calls {
		assert.Equal(t, 1, n, "card %s parsed more than once", key)
	}
}

func TestSession_DeduplicatesByLink(t *testing.T) {
	t.Parallel()

	// Two different elements render the same pin.
	feed := &mock.Feed{
		CardsFn: func(ctx context.Context) ([]pinexport.Card, error) {
			return []pinexport.Card{
				{Key: "a", HTML: "https://example.com/pin/1"},
				{Key: "b", HTML: "https://example.com/pin/1"},
				{Key: "c", HTML: "https://example.com/pin/2"},
			}, nil
		},
		AdvanceFn: func(ctx context.Context) error { return nil },
	}
	parser := &mock.CardParser{
		ParseCardFn: func(card pinexport.Card) (*pinexport.Record, error) {
			return &pinexport.Record{Link: card.HTML, Views: card.Key}, nil
		},
	}

	s := scrape.NewSession(feed, parser, scrape.WithInterval(testInterval))
	s.Start(context.Background())
	require.Eventually(t, func() bool { return s.Count() == 2 }, time.Second, testInterval)
	records := s.Stop()

	require.Len(t, records, 2)
	assert.Equal(t, pinexport.Record{Link: "https://example.com/pin/1", Views: "a"}, records[0])
	assert.Equal(t, "https://example.com/pin/2", records[1].Link)
}

func TestSession_SnapshotKeepsFirstSeenOrder(t *testing.T) {
	t.Parallel()

	var tick atomic.Int64
	feed := &mock.Feed{
		CardsFn: func(ctx context.Context) ([]pinexport.Card, error) {
			// Later ticks render the cards in reverse DOM order.
			if tick.Add(1) == 1 {
				return cards("1", "2"), nil
			}
			return cards("3", "2", "1"), nil
		},
		AdvanceFn: func(ctx context.Context) error { return nil },
	}

	s := scrape.NewSession(feed, linkParserSafe(), scrape.WithInterval(testInterval))
	s.Start(context.Background())
	require.Eventually(t, func() bool { return s.Count() == 3 }, time.Second, testInterval)
	records := s.Stop()

	require.Len(t, records, 3)
	assert.Equal(t, "https://example.com/pin/1", records[0].Link)
	assert.Equal(t, "https://example.com/pin/2", records[1].Link)
	assert.Equal(t, "https://example.com/pin/3", records[2].Link)
}

func TestSession_StartWhileRunningIsNoOp(t *testing.T) {
	t.Parallel()

	feed := &virtualFeed{total: 3, window: 3, step: 0}
	s := scrape.NewSession(feed.mock(), linkParserSafe(), scrape.WithInterval(testInterval))

	require.True(t, s.Start(context.Background()))
	id := s.ID()
	require.Eventually(t, func() bool { return s.Count() == 3 }, time.Second, testInterval)

	assert.False(t, s.Start(context.Background()))
	assert.Equal(t, id, s.ID())
	assert.Equal(t, 3, s.Count())
	assert.True(t, s.Running())

	s.Stop()
}

func TestSession_StopWhenIdleReturnsNil(t *testing.T) {
	t.Parallel()

	s := scrape.NewSession(&mock.Feed{}, linkParserSafe())

	assert.Nil(t, s.Stop())
	assert.False(t, s.Running())
	assert.Equal(t, 0, s.Count())
	assert.Empty(t, s.ID())
}

func TestSession_NoTickAfterStop(t *testing.T) {
	t.Parallel()

	feed := &virtualFeed{total: 100, window: 5, step: 1}
	s := scrape.NewSession(feed.mock(), linkParserSafe(), scrape.WithInterval(testInterval))
	s.Start(context.Background())
	require.Eventually(t, func() bool { return feed.readCount() >= 3 }, time.Second, testInterval)

	records := s.Stop()
	reads := feed.readCount()
	advances := feed.advanceCount()
	time.Sleep(10 * testInterval)

	assert.False(t, s.Running())
	assert.Equal(t, reads, feed.readCount())
	assert.Equal(t, advances, feed.advanceCount())
	assert.Len(t, records, s.Count())
}

func TestSession_AdvancesFeedEveryTick(t *testing.T) {
	t.Parallel()

	feed := &virtualFeed{total: 0, window: 0, step: 1}
	s := scrape.NewSession(feed.mock(), linkParserSafe(), scrape.WithInterval(testInterval))
	s.Start(context.Background())
	require.Eventually(t, func() bool { return feed.advanceCount() >= 3 }, time.Second, testInterval)
	s.Stop()

	assert.Equal(t, feed.readCount(), feed.advanceCount())
}

func TestSession_SurvivesFeedErrors(t *testing.T) {
	t.Parallel()

	var reads atomic.Int64
	feed := &mock.Feed{
		CardsFn: func(ctx context.Context) ([]pinexport.Card, error) {
			if reads.Add(1) <= 2 {
				return nil, errors.New("target closed")
			}
			return cards("1"), nil
		},
		AdvanceFn: func(ctx context.Context) error {
			return errors.New("scroll failed")
		},
	}

	s := scrape.NewSession(feed, linkParserSafe(), scrape.WithInterval(testInterval))
	s.Start(context.Background())
	require.Eventually(t, func() bool { return s.Count() == 1 }, time.Second, testInterval)

	assert.True(t, s.Running())
	assert.Len(t, s.Stop(), 1)
}

func TestSession_ReportsCount(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	var counts []int
	feed := &virtualFeed{total: 6, window: 2, step: 2}
	s := scrape.NewSession(feed.mock(), linkParserSafe(),
		scrape.WithInterval(testInterval),
		scrape.WithCountFunc(func(n int) {
			mu.Lock()
			counts = append(counts, n)
			mu.Unlock()
		}),
	)

	s.Start(context.Background())
	require.Eventually(t, func() bool { return s.Count() == 6 }, time.Second, testInterval)
	s.Stop()

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, counts)
	assert.Equal(t, 2, counts[0])
	for i := 1; i < len(counts); i++ {
		assert.GreaterOrEqual(t, counts[i], counts[i-1])
	}
	assert.Equal(t, 6, counts[len(counts)-1])
}

func TestSession_Restart(t *testing.T) {
	t.Parallel()

	t.Run("starts with an empty store and forgets visited cards", func(t *testing.T) {
		t.Parallel()

		feed := &virtualFeed{total: 2, window: 2, step: 0}
		s := scrape.NewSession(feed.mock(), linkParserSafe(), scrape.WithInterval(testInterval))

		s.Start(context.Background())
		require.Eventually(t, func() bool { return s.Count() == 2 }, time.Second, testInterval)
		first := s.Stop()
		firstID := s.ID()

		s.Start(context.Background())
		assert.NotEqual(t, firstID, s.ID())
		require.Eventually(t, func() bool { return s.Count() == 2 }, time.Second, testInterval)
		second := s.Stop()

		assert.Equal(t, first, second)
	})

	t.Run("keeps visited cards when reset is disabled", func(t *testing.T) {
		t.Parallel()

		feed := &virtualFeed{total: 2, window: 2, step: 0}
		s := scrape.NewSession(feed.mock(), linkParserSafe(),
			scrape.WithInterval(testInterval),
			scrape.WithResetVisited(false),
		)

		s.Start(context.Background())
		require.Eventually(t, func() bool { return s.Count() == 2 }, time.Second, testInterval)
		s.Stop()

		s.Start(context.Background())
		require.Eventually(t, func() bool { return feed.readCount() >= 10 }, time.Second, testInterval)
		second := s.Stop()

		assert.Empty(t, second)
	})
}

func TestSession_ParentContextCancelHaltsTicks(t *testing.T) {
	t.Parallel()

	feed := &virtualFeed{total: 100, window: 1, step: 1}
	s := scrape.NewSession(feed.mock(), linkParserSafe(), scrape.WithInterval(testInterval))
	ctx, cancel := context.WithCancel(context.Background())

	s.Start(ctx)
	require.Eventually(t, func() bool { return s.Count() >= 2 }, time.Second, testInterval)
	cancel()
	time.Sleep(4 * testInterval)
	reads := feed.readCount()
	time.Sleep(10 * testInterval)

	assert.Equal(t, reads, feed.readCount())
	assert.True(t, s.Running())
	assert.NotEmpty(t, s.Stop())
}

// linkParserSafe is linkParser without call tracking, safe for use from the
// tick goroutine.
func linkParserSafe() *mock.CardParser {
	return linkParser(nil)
}
