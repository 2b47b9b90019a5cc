package pinexport

import "context"

// CardSelector matches one item card in a board feed.
const CardSelector = `div[aria-label="Pin card"]`

// Card is an item card as rendered in the feed at the time it was read.
type Card struct {
	// Key identifies the underlying element for as long as it stays in the
	// document. It says nothing about the pin itself.
	Key string

	// HTML is the outer HTML of the card element.
	HTML string

	// BaseURL is the URL of the page the card was read from.
	// Relative links inside the card resolve against it.
	BaseURL string
}

// Feed is a live, virtualized list of cards that loads more content as the
// viewport moves forward. The caller does not know when new cards arrive and
// is expected to poll.
type Feed interface {
	// Cards returns the cards currently present in the document.
	Cards(ctx context.Context) ([]Card, error)

	// Advance scrolls the viewport forward by one screen height.
	Advance(ctx context.Context) error
}

// CardParser converts a single card into a record.
type CardParser interface {
	// ParseCard extracts the link and stats of a card.
	// Returns ENOTFOUND if the card has no link yet; the card may still be
	// rendering and can be tried again later. Any other error means the card
	// cannot be parsed.
	ParseCard(card Card) (*Record, error)
}
