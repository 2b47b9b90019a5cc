package mock

import (
	"context"

	"github.com/fwojciec/pinexport"
)

// Compile-time interface verification.
var (
	_ pinexport.Feed       = (*Feed)(nil)
	_ pinexport.CardParser = (*CardParser)(nil)
)

// Feed is a mock implementation of pinexport.Feed.
type Feed struct {
	CardsFn   func(ctx context.Context) ([]pinexport.Card, error)
	AdvanceFn func(ctx context.Context) error
}

func (f *Feed) Cards(ctx context.Context) ([]pinexport.Card, error) {
	return f.CardsFn(ctx)
}

func (f *Feed) Advance(ctx context.Context) error {
	return f.AdvanceFn(ctx)
}

// CardParser is a mock implementation of pinexport.CardParser.
type CardParser struct {
	ParseCardFn func(card pinexport.Card) (*pinexport.Record, error)
}

func (p *CardParser) ParseCard(card pinexport.Card) (*pinexport.Record, error) {
	return p.ParseCardFn(card)
}
