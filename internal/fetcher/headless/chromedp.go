// Package headless drives the forecast page through a headless browser.
package headless

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"github.com/avilchesi/pronostico-service/internal/forecast"
)

const (
	defaultNavigationTimeout = 60 * time.Second
	defaultReadinessTimeout  = 30 * time.Second
	defaultReadySelector     = "table, .pronostico, .forecast"
)

// Config controls the behavior of the headless fetcher.
type Config struct {
	URL               string
	UserAgent         string
	NavigationTimeout time.Duration
	ReadinessTimeout  time.Duration
	ReadySelector     string
}

// Fetcher implements forecast.PageFetcher using chromedp. Each Fetch runs in
// a fresh browser context with no persistent profile; the shared allocator
// only caches the Chrome binary launch options.
type Fetcher struct {
	cfg         Config
	allocator   context.Context
	allocCancel context.CancelFunc
}

// New creates a headless fetcher backed by chromedp.
func New(cfg Config) (*Fetcher, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("fetch url is required")
	}
	if cfg.NavigationTimeout <= 0 {
		cfg.NavigationTimeout = defaultNavigationTimeout
	}
	if cfg.ReadinessTimeout <= 0 {
		cfg.ReadinessTimeout = defaultReadinessTimeout
	}
	if cfg.ReadySelector == "" {
		cfg.ReadySelector = defaultReadySelector
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", "new"),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("hide-scrollbars", true),
		chromedp.Flag("enable-automation", false),
	)
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)

	return &Fetcher{
		cfg:         cfg,
		allocator:   allocCtx,
		allocCancel: allocCancel,
	}, nil
}

// Close cancels the allocator context, tearing down any lingering browser.
func (f *Fetcher) Close() {
	f.allocCancel()
}

// Fetch navigates to the forecast page, waits for a table-like element and
// returns the rendered DOM. The session is torn down on every exit path via
// the deferred cancels; failures come back as classified FetchErrors and are
// never retried here.
func (f *Fetcher) Fetch(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, forecast.NewFetchError(forecast.FetchKindSessionLaunch, err)
	}

	taskCtx, taskCancel := chromedp.NewContext(f.allocator)
	defer taskCancel()

	navCtx, navCancel := context.WithTimeout(taskCtx, f.cfg.NavigationTimeout)
	defer navCancel()
	if err := chromedp.Run(navCtx, f.sessionSetup(), chromedp.Navigate(f.cfg.URL)); err != nil {
		return nil, classify(err, forecast.FetchKindNavigationTimeout)
	}

	readyCtx, readyCancel := context.WithTimeout(taskCtx, f.cfg.ReadinessTimeout)
	defer readyCancel()
	if err := chromedp.Run(readyCtx, chromedp.WaitReady(f.cfg.ReadySelector, chromedp.ByQuery)); err != nil {
		return nil, classify(err, forecast.FetchKindReadinessTimeout)
	}

	var html string
	captureCtx, captureCancel := context.WithTimeout(taskCtx, f.cfg.ReadinessTimeout)
	defer captureCancel()
	if err := chromedp.Run(captureCtx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return nil, classify(err, forecast.FetchKindReadinessTimeout)
	}
	return []byte(html), nil
}

func (f *Fetcher) sessionSetup() chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		if err := network.Enable().Do(ctx); err != nil {
			return fmt.Errorf("enable network domain: %w", err)
		}
		if f.cfg.UserAgent != "" {
			if err := emulation.SetUserAgentOverride(f.cfg.UserAgent).Do(ctx); err != nil {
				return fmt.Errorf("set user-agent: %w", err)
			}
		}
		return nil
	})
}

// classify maps a stage failure onto the fetch taxonomy: a deadline hit is
// the stage's own timeout kind, anything else means the browser session
// itself failed.
func classify(err error, timeoutKind forecast.FetchErrorKind) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return forecast.NewFetchError(timeoutKind, err)
	}
	return forecast.NewFetchError(forecast.FetchKindSessionLaunch, err)
}
