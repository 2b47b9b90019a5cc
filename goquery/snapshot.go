package goquery

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/pinexport"
)

var _ pinexport.Feed = (*Snapshot)(nil)

// Snapshot is a Feed over a saved, static page.
// Cards are keyed by their position in the document, which never changes.
// Advance does nothing since a static page loads no further cards.
type Snapshot struct {
	cards []pinexport.Card
}

// NewSnapshot parses a saved page. baseURL is the address the page was
// saved from and is used to resolve relative pin links.
func NewSnapshot(html string, baseURL string) (*Snapshot, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, pinexport.Errorf(pinexport.EINVALID, "failed to parse HTML: %v", err)
	}

	var cards []pinexport.Card
	var renderErr error
	doc.Find(pinexport.CardSelector).EachWithBreak(func(i int, sel *goquery.Selection) bool {
		outer, err := goquery.OuterHtml(sel)
		if err != nil {
			renderErr = err
			return false
		}
		cards = append(cards, pinexport.Card{
			Key:     fmt.Sprintf("card-%d", i),
			HTML:    outer,
			BaseURL: baseURL,
		})
		return true
	})
	if renderErr != nil {
		return nil, fmt.Errorf("rendering card HTML: %w", renderErr)
	}

	return &Snapshot{cards: cards}, nil
}

// Cards returns every card in the saved page.
func (s *Snapshot) Cards(ctx context.Context) ([]pinexport.Card, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.cards, nil
}

// Advance is a no-op.
func (s *Snapshot) Advance(ctx context.Context) error {
	return ctx.Err()
}
