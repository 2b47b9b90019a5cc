package scrape

import (
	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/pinexport"
)

// Extractor turns cards into records and remembers which cards it has
// already examined, so each card is parsed at most once.
//
// A card whose link has not rendered yet is left unmarked and is tried
// again on the next call. Every other outcome marks the card, including
// parse failures: a broken card is not expected to fix itself.
//
// Extractor is not safe for concurrent use.
type Extractor struct {
	parser  pinexport.CardParser
	visited map[uint64]struct{}
}

// NewExtractor returns an Extractor that parses cards with parser.
func NewExtractor(parser pinexport.CardParser) *Extractor {
	return &Extractor{
		parser:  parser,
		visited: make(map[uint64]struct{}),
	}
}

// Extract parses every card not yet visited and returns the records produced,
// in card order. Cards that fail to parse are skipped.
func (e *Extractor) Extract(cards []pinexport.Card) []pinexport.Record {
	var records []pinexport.Record
	for _, card := range cards {
		h := xxhash.Sum64String(card.Key)
		if _, ok := e.visited[h]; ok {
			continue
		}

		record, err := e.parse(card)
		if pinexport.ErrorCode(err) == pinexport.ENOTFOUND {
			continue
		}
		e.visited[h] = struct{}{}
		if err != nil || record == nil {
			continue
		}

		records = append(records, *record)
	}
	return records
}

// Visited reports whether the card with the given key has been examined.
func (e *Extractor) Visited(key string) bool {
	_, ok := e.visited[xxhash.Sum64String(key)]
	return ok
}

// Reset forgets every visited card.
func (e *Extractor) Reset() {
	clear(e.visited)
}

// parse calls the parser, turning a panic into an error so one malformed
// card cannot abort the batch.
func (e *Extractor) parse(card pinexport.Card) (record *pinexport.Record, err error) {
	defer func() {
		if r := recover(); r != nil {
			record = nil
			err = pinexport.Errorf(pinexport.EINTERNAL, "parsing card %s: %v", card.Key, r)
		}
	}()
	return e.parser.ParseCard(card)
}
