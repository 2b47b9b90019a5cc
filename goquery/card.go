// Package goquery parses pin cards from HTML with CSS selectors.
package goquery

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/pinexport"
)

// Selectors for the markup inside a card.
const (
	// LinkSelector matches the anchor holding the pin link inside a card.
	LinkSelector = `div > div > div > a`

	// StatsSelector matches the container whose first three children hold
	// the view, save and click counts.
	StatsSelector = `div[data-test-id="pin-stats-footer"] > div`
)

var _ pinexport.CardParser = (*CardParser)(nil)

// CardParser extracts records from card HTML.
type CardParser struct{}

// NewCardParser creates a new CardParser.
func NewCardParser() *CardParser {
	return &CardParser{}
}

// ParseCard extracts the pin link and the three stat counts from a card.
// Missing stats default to "0". A card without a link returns ENOTFOUND.
func (p *CardParser) ParseCard(card pinexport.Card) (*pinexport.Record, error) {
	if strings.TrimSpace(card.HTML) == "" {
		return nil, pinexport.Errorf(pinexport.EINVALID, "empty card HTML")
	}

	// On the live page cards sit several divs deep, and selectors are
	// matched against the card's ancestors too.
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<div><div>" + card.HTML + "</div></div>"))
	if err != nil {
		return nil, pinexport.Errorf(pinexport.EINVALID, "failed to parse card HTML: %v", err)
	}

	href, ok := doc.Find(LinkSelector).First().Attr("href")
	if !ok || strings.TrimSpace(href) == "" {
		return nil, pinexport.Errorf(pinexport.ENOTFOUND, "card %s has no link", card.Key)
	}

	link, err := resolveURL(card.BaseURL, href)
	if err != nil {
		return nil, pinexport.Errorf(pinexport.EINVALID, "invalid card link %q: %v", href, err)
	}

	record := &pinexport.Record{
		Link:   link,
		Views:  "0",
		Pins:   "0",
		Clicks: "0",
	}

	stats := doc.Find(StatsSelector).First().Children()
	if stats.Length() >= 3 {
		record.Views = digits(stats.Eq(0).Text())
		record.Pins = digits(stats.Eq(1).Text())
		record.Clicks = digits(stats.Eq(2).Text())
	}

	return record, nil
}

// resolveURL resolves href against base the way a browser resolves an
// anchor's href property. A missing base leaves href as is.
func resolveURL(base, href string) (string, error) {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return "", err
	}
	if base == "" {
		return ref.String(), nil
	}
	b, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	return b.ResolveReference(ref).String(), nil
}

// digits strips every non-digit character from s. "1.2K views" becomes "12".
// Returns "0" if nothing is left.
func digits(s string) string {
	out := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
	if out == "" {
		return "0"
	}
	return out
}
