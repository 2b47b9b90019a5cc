package main

import (
	"context"
	"fmt"
	"sync"

	"github.com/fwojciec/pinexport"
	"github.com/fwojciec/pinexport/scrape"
)

// Run executes the scrape command. It collects pins until interrupted, until
// Duration elapses or until IdleTicks ticks in a row add nothing, then exports.
func (c *ScrapeCmd) Run(deps *Dependencies) error {
	ctx := deps.Ctx
	if c.Duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Duration)
		defer cancel()
	}

	exhausted := make(chan struct{})
	var once sync.Once
	last, idle := -1, 0
	onCount := func(n int) {
		fmt.Fprintf(deps.Stdout, "\rPins collected: %d", n)
		if n == last {
			idle++
		} else {
			last, idle = n, 0
		}
		if c.IdleTicks > 0 && idle >= c.IdleTicks {
			once.Do(func() { close(exhausted) })
		}
	}

	opts := []scrape.Option{
		scrape.WithCountFunc(onCount),
	}
	if deps.Logger != nil {
		opts = append(opts, scrape.WithLogger(deps.Logger))
	}
	if deps.Interval > 0 {
		opts = append(opts, scrape.WithInterval(deps.Interval))
	}

	session := scrape.NewSession(deps.Feed, deps.Parser, opts...)
	session.Start(ctx)

	select {
	case <-ctx.Done():
	case <-exhausted:
	}

	records := session.Stop()
	fmt.Fprintln(deps.Stdout)

	return export(deps, records)
}

// export hands records to the exporter. Having nothing to export is reported
// to the user but is not an error.
func export(deps *Dependencies, records []pinexport.Record) error {
	// The run may have ended on an interrupt; the export still has to happen.
	ctx := context.WithoutCancel(deps.Ctx)

	path, err := deps.Exporter.Export(ctx, records)
	if pinexport.ErrorCode(err) == pinexport.ENODATA {
		fmt.Fprintln(deps.Stdout, "No data collected yet!")
		return nil
	} else if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %v\n", err)
		return err
	}

	fmt.Fprintf(deps.Stdout, "Saved %d pins to %s\n", len(records), path)
	return nil
}
