package rod

import (
	"context"
	"strconv"

	"github.com/fwojciec/pinexport"
	"github.com/go-rod/rod"
)

// Ensure Feed implements pinexport.Feed at compile time.
var _ pinexport.Feed = (*Feed)(nil)

// scrollJS scrolls the viewport forward by one screen height.
const scrollJS = `() => window.scrollBy(0, window.innerHeight)`

// Feed reads cards from a board opened in a browser tab.
//
// Cards are keyed by the browser's backend node id, which stays the same for
// as long as the element is in the document. Elements are never modified.
type Feed struct {
	page *rod.Page
}

// NewFeed creates a Feed over an already loaded page.
func NewFeed(page *rod.Page) *Feed {
	return &Feed{page: page}
}

// Cards returns the cards currently rendered in the tab.
// Cards removed from the document while being read are left out.
func (f *Feed) Cards(ctx context.Context) ([]pinexport.Card, error) {
	page := f.page.Context(ctx)

	info, err := page.Info()
	if err != nil {
		return nil, err
	}

	elements, err := page.Elements(pinexport.CardSelector)
	if err != nil {
		return nil, err
	}

	cards := make([]pinexport.Card, 0, len(elements))
	for _, el := range elements {
		node, err := el.Describe(0, false)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			continue
		}
		html, err := el.HTML()
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			continue
		}
		cards = append(cards, pinexport.Card{
			Key:     strconv.Itoa(int(node.BackendNodeID)),
			HTML:    html,
			BaseURL: info.URL,
		})
	}
	return cards, nil
}

// Advance scrolls the tab forward by one screen height, which makes the
// board load its next cards.
func (f *Feed) Advance(ctx context.Context) error {
	_, err := f.page.Context(ctx).Eval(scrollJS)
	return err
}

// Close closes the tab.
func (f *Feed) Close() error {
	return f.page.Close()
}
