package main

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/fwojciec/pinexport"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx    context.Context
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger

	Feed     pinexport.Feed
	Parser   pinexport.CardParser
	Exporter pinexport.Exporter

	// Interval overrides the tick interval. Zero uses the default.
	Interval time.Duration
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Verbose bool `short:"v" help:"Log every tick"`

	Scrape ScrapeCmd `cmd:"" help:"Scroll a board in Chrome and export its pins"`
	Parse  ParseCmd  `cmd:"" help:"Export the pins of a saved board page"`
}

// ScrapeCmd is the "scrape" subcommand.
type ScrapeCmd struct {
	URL         string        `arg:"" help:"Board URL"`
	Out         string        `short:"o" default:"." help:"Directory for the CSV export"`
	Headless    bool          `default:"true" negatable:"" help:"Run Chrome without a window"`
	UserDataDir string        `name:"user-data-dir" help:"Chrome profile directory, keeps a signed-in session between runs"`
	ControlURL  string        `name:"control-url" help:"DevTools websocket URL of a running Chrome to attach to"`
	Duration    time.Duration `short:"d" help:"Stop after this long (0 runs until interrupted)"`
	IdleTicks   int           `name:"idle-ticks" default:"20" help:"Stop after this many ticks without new pins (0 never stops)"`
}

// ParseCmd is the "parse" subcommand.
type ParseCmd struct {
	File    string `arg:"" type:"existingfile" help:"Saved board HTML file"`
	BaseURL string `name:"base-url" default:"https://www.pinterest.com/" help:"URL the page was saved from"`
	Out     string `short:"o" default:"." help:"Directory for the CSV export"`
}
