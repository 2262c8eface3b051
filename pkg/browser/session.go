// Package browser wraps chromedp behind the small page-session
// capability the crawler needs, so the crawl state machine stays
// independent of the automation backend.
package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
)

// Options configures the browser context for a crawl session.
type Options struct {
	Headless  bool
	UserAgent string
	Width     int
	Height    int
	Locale    string
}

// Session drives a single Chrome tab for the lifetime of one crawl.
type Session struct {
	allocCtx    context.Context
	allocCancel context.CancelFunc
	tabCtx      context.Context
	tabCancel   context.CancelFunc
}

// NewSession launches a browser context. Challenge pages need a human
// in front of a visible window, so headless defaults to off.
func NewSession(ctx context.Context, opts Options) (*Session, error) {
	if opts.Width <= 0 {
		opts.Width = 1600
	}
	if opts.Height <= 0 {
		opts.Height = 900
	}
	if opts.Locale == "" {
		opts.Locale = "en-US"
	}

	execOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("lang", opts.Locale),
		chromedp.WindowSize(opts.Width, opts.Height),
	)
	if opts.UserAgent != "" {
		execOpts = append(execOpts, chromedp.UserAgent(opts.UserAgent))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, execOpts...)
	tabCtx, tabCancel := chromedp.NewContext(allocCtx)

	err := chromedp.Run(tabCtx,
		network.Enable(),
		network.SetExtraHTTPHeaders(network.Headers(map[string]interface{}{
			"Accept-Language": opts.Locale + ",en;q=0.9",
		})),
		emulation.SetDeviceMetricsOverride(int64(opts.Width), int64(opts.Height), 1.0, false),
	)
	if err != nil {
		tabCancel()
		allocCancel()
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}

	return &Session{
		allocCtx:    allocCtx,
		allocCancel: allocCancel,
		tabCtx:      tabCtx,
		tabCancel:   tabCancel,
	}, nil
}

// Navigate loads the URL and waits for the document to settle, bounded
// by the context deadline.
func (s *Session) Navigate(ctx context.Context, url string) error {
	runCtx, cancel := s.bound(ctx)
	defer cancel()

	err := chromedp.Run(runCtx,
		chromedp.Navigate(url),
		waitForDocumentReady(),
		// Dynamic results keep trickling in after readyState flips.
		chromedp.Sleep(2*time.Second),
	)
	if err != nil {
		return fmt.Errorf("navigation to %s failed: %w", url, err)
	}
	return nil
}

// Content returns the rendered page's outer HTML.
func (s *Session) Content(ctx context.Context) (string, error) {
	runCtx, cancel := s.bound(ctx)
	defer cancel()

	var html string
	if err := chromedp.Run(runCtx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("failed to read page content: %w", err)
	}
	return html, nil
}

// ClickFirstVisible probes the selectors in order and clicks the first
// one visible within the per-selector timeout. It returns the clicked
// selector, or "" when nothing matched; absence is not an error.
func (s *Session) ClickFirstVisible(ctx context.Context, selectors []string, perSelector time.Duration) (string, error) {
	for _, sel := range selectors {
		probeCtx, cancel := context.WithTimeout(s.tabCtx, perSelector)
		err := chromedp.Run(probeCtx,
			chromedp.Click(sel, chromedp.ByQuery, chromedp.NodeVisible),
		)
		cancel()
		if err == nil {
			// Let the dialog dismiss settle before the next step.
			settleCtx, settleCancel := context.WithTimeout(s.tabCtx, 2*time.Second)
			_ = chromedp.Run(settleCtx, chromedp.Sleep(time.Second))
			settleCancel()
			return sel, nil
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
	}
	return "", nil
}

// Close tears down the tab and the browser process. Safe to call more
// than once.
func (s *Session) Close() error {
	s.tabCancel()
	s.allocCancel()
	return nil
}

// bound derives a run context from the tab that also honors the
// caller's deadline and cancellation.
func (s *Session) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if deadline, ok := ctx.Deadline(); ok {
		return context.WithDeadline(s.tabCtx, deadline)
	}
	return context.WithCancel(s.tabCtx)
}

func waitForDocumentReady() chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()
		for {
			var readyState string
			if err := chromedp.Evaluate(`document.readyState`, &readyState).Do(ctx); err != nil {
				return err
			}
			if readyState == "complete" {
				return nil
			}
			select {
			case <-ticker.C:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	})
}
