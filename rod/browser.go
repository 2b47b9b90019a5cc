// Package rod reads a live board feed through Chrome browser automation.
package rod

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/fwojciec/pinexport"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// Browser is a Chrome instance used to open board feeds. It either launches
// its own browser or attaches to one that is already running, which lets the
// feed reuse a signed-in profile.
//
// Browser is safe for concurrent use.
type Browser struct {
	browser  *rod.Browser
	launcher *launcher.Launcher

	headless    bool
	userDataDir string
	controlURL  string

	mu     sync.Mutex
	closed atomic.Bool
}

// BrowserOption configures a Browser.
type BrowserOption func(*Browser)

// WithHeadless sets whether a launched browser runs without a window.
// Defaults to true.
func WithHeadless(headless bool) BrowserOption {
	return func(b *Browser) {
		b.headless = headless
	}
}

// WithUserDataDir sets the profile directory of a launched browser.
// Cookies stored there, such as a signed-in session, carry over between runs.
func WithUserDataDir(dir string) BrowserOption {
	return func(b *Browser) {
		b.userDataDir = dir
	}
}

// WithControlURL attaches to a running browser through its DevTools
// websocket URL instead of launching one.
func WithControlURL(u string) BrowserOption {
	return func(b *Browser) {
		b.controlURL = u
	}
}

// NewBrowser launches or attaches to a browser.
// Close must be called when the Browser is no longer needed.
//
// Returns an error if Chrome/Chromium cannot be found, launched or reached.
func NewBrowser(opts ...BrowserOption) (*Browser, error) {
	b := &Browser{headless: true}
	for _, opt := range opts {
		opt(b)
	}

	if b.controlURL != "" {
		browser := rod.New().ControlURL(b.controlURL)
		if err := browser.Connect(); err != nil {
			return nil, fmt.Errorf("connecting to browser: %w", err)
		}
		b.browser = browser
		return b, nil
	}

	if err := b.launchBrowser(); err != nil {
		return nil, err
	}
	return b, nil
}

// OpenFeed opens url in a new tab and waits for it to load.
// The returned Feed must be closed when no longer needed.
func (b *Browser) OpenFeed(ctx context.Context, url string) (*Feed, error) {
	if b.closed.Load() {
		return nil, pinexport.Errorf(pinexport.EINVALID, "browser is closed")
	}

	b.mu.Lock()
	page, err := b.browser.Page(proto.TargetCreateTarget{})
	b.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("opening tab: %w", err)
	}

	p := page.Context(ctx)
	if err := p.Navigate(url); err != nil {
		_ = page.Close()
		return nil, fmt.Errorf("navigating to %s: %w", url, err)
	}
	if err := p.WaitLoad(); err != nil {
		_ = page.Close()
		return nil, fmt.Errorf("waiting for %s: %w", url, err)
	}

	return NewFeed(page), nil
}

// Close releases browser resources. A browser attached through a control
// URL is left running. Close is safe to call multiple times.
func (b *Browser) Close() error {
	if !b.closed.CompareAndSwap(false, true) {
		return nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.launcher == nil {
		b.browser = nil
		return nil
	}

	err := b.browser.Close()
	b.browser = nil
	b.launcher.Kill()
	b.launcher = nil
	return err
}

// launchBrowser starts a new browser instance. Background throttling is
// disabled so a hidden tab keeps loading cards at full speed.
func (b *Browser) launchBrowser() error {
	lnchr := launcher.New().
		Set("disable-background-timer-throttling").
		Set("disable-backgrounding-occluded-windows").
		Set("disable-renderer-backgrounding").
		Set("disable-dev-shm-usage").
		Leakless(true).
		Headless(b.headless)
	if b.userDataDir != "" {
		lnchr = lnchr.UserDataDir(b.userDataDir)
	}

	u, err := lnchr.Launch()
	if err != nil {
		return fmt.Errorf("launching browser: %w", err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		lnchr.Kill()
		return fmt.Errorf("connecting to browser: %w", err)
	}

	b.browser = browser
	b.launcher = lnchr
	return nil
}

// LauncherPID returns the process ID of the browser launcher, or 0 when
// attached to an existing browser.
// This method exists for testing purposes to verify proper cleanup.
func (b *Browser) LauncherPID() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.launcher == nil {
		return 0
	}
	return b.launcher.PID()
}
