package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/pinexport/fs"
	"github.com/fwojciec/pinexport/goquery"
	"github.com/fwojciec/pinexport/rod"
	pinslog "github.com/fwojciec/pinexport/slog"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	m := NewMain()

	err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct{}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{}
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("pinexport"),
		kong.Description("Collect pin links and stats from a board and export them as CSV"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'pinexport --help' to see available commands")
	}

	if args[0] == "help" || args[0] == "--help" || args[0] == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	level := slog.LevelInfo
	if cli.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
		Logger: logger,
		Parser: goquery.NewCardParser(),
	}

	// Wire command-specific dependencies
	switch kongCtx.Selected().Name {
	case "scrape":
		deps.Exporter = pinslog.NewLoggingExporter(fs.NewExporter(cli.Scrape.Out), logger)

		browser, err := rod.NewBrowser(
			rod.WithHeadless(cli.Scrape.Headless),
			rod.WithUserDataDir(cli.Scrape.UserDataDir),
			rod.WithControlURL(cli.Scrape.ControlURL),
		)
		if err != nil {
			fmt.Fprintln(stderr, "Hint: Chrome or Chromium must be installed")
			return fmt.Errorf("failed to start browser: %w", err)
		}
		defer browser.Close()

		feed, err := browser.OpenFeed(ctx, cli.Scrape.URL)
		if err != nil {
			return fmt.Errorf("failed to open board: %w", err)
		}
		defer feed.Close()

		deps.Feed = pinslog.NewLoggingFeed(feed, logger)

	case "parse":
		deps.Exporter = pinslog.NewLoggingExporter(fs.NewExporter(cli.Parse.Out), logger)

		data, err := os.ReadFile(cli.Parse.File)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", cli.Parse.File, err)
		}
		snapshot, err := goquery.NewSnapshot(string(data), cli.Parse.BaseURL)
		if err != nil {
			return fmt.Errorf("failed to parse %s: %w", cli.Parse.File, err)
		}
		deps.Feed = pinslog.NewLoggingFeed(snapshot, logger)
	}

	return kongCtx.Run(deps)
}
