package main

import (
	"fmt"

	"github.com/fwojciec/pinexport"
	"github.com/fwojciec/pinexport/scrape"
)

// Run executes the parse command: one extraction pass over a saved page.
func (c *ParseCmd) Run(deps *Dependencies) error {
	cards, err := deps.Feed.Cards(deps.Ctx)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", pinexport.ErrorMessage(err))
		return err
	}

	store := scrape.NewStore()
	for _, r := range scrape.NewExtractor(deps.Parser).Extract(cards) {
		store.Add(r)
	}

	fmt.Fprintf(deps.Stdout, "Found %d cards, %d pins\n", len(cards), store.Len())

	return export(deps, store.Records())
}
