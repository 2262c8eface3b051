// Package crawler paginates search engine results in a browser
// session and extracts direct file links.
package crawler

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"

	"dorkwright/pkg/links"
	"dorkwright/pkg/logger"
)

const (
	searchURLFormat = "https://www.google.com/search?q=%s&start=%d"
	resultsPerPage  = 10

	// nextControl is the anchor the results page renders when more
	// pages are available.
	nextControl = "a#pnnext"

	consentProbeTimeout = 2 * time.Second
)

// consentSelectors are probed in order after every page load; the
// first visible one is clicked. Absence of all of them is normal.
var consentSelectors = []string{
	"#L2AGLb",
	"button#W0wltc",
	`button[aria-label*="Accept"]`,
	`button[aria-label*="Agree"]`,
	`form[action*="consent"] button`,
}

// challengeMarkers are matched case-insensitively against the
// rendered page content to detect anti-automation challenges.
var challengeMarkers = []string{
	"recaptcha",
	"captcha",
}

// PageSession is the browser capability the crawl state machine runs
// against. pkg/browser provides the chromedp implementation; tests
// supply fakes.
type PageSession interface {
	Navigate(ctx context.Context, url string) error
	Content(ctx context.Context) (string, error)
	ClickFirstVisible(ctx context.Context, selectors []string, perSelector time.Duration) (string, error)
	Close() error
}

// Gate blocks until an operator resolves an anti-automation
// challenge. The wait has no timeout; only context cancellation
// (process termination) gets out of it.
type Gate interface {
	Wait(ctx context.Context) error
}

// Reason records why a crawl stopped.
type Reason string

const (
	// ReasonExhausted means no next-page control was present.
	ReasonExhausted Reason = "exhausted"
	// ReasonPageCap means the requested page limit was reached.
	ReasonPageCap Reason = "page_cap"
	// ReasonAborted means the context was cancelled mid-crawl.
	ReasonAborted Reason = "aborted"
)

// Config controls one crawl invocation.
type Config struct {
	MaxPages       int
	InterPageDelay time.Duration
	PageTimeout    time.Duration
}

// Crawler owns a browser session for the duration of one crawl.
type Crawler struct {
	session PageSession
	gate    Gate
	cfg     Config
	logger  logger.Logger

	// OnLink, when set, is invoked once per newly discovered file
	// link, in discovery order.
	OnLink func(url string)
}

// New creates a crawler around a page session. The crawler takes
// ownership of the session and closes it when Crawl returns.
func New(session PageSession, gate Gate, cfg Config, log logger.Logger) *Crawler {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Crawler{
		session: session,
		gate:    gate,
		cfg:     cfg,
		logger:  log,
	}
}

// Crawl pages through the results for the query, collecting file
// links until the page cap is hit, the results run out, or the
// context is cancelled. The returned slice is deduplicated and
// sorted. Errors on a single page are isolated: the page is logged
// and skipped.
func (c *Crawler) Crawl(ctx context.Context, query string) ([]string, Reason, error) {
	defer c.session.Close()

	found := make(map[string]struct{})
	reason := ReasonPageCap

	// Burst 1 makes the first page load immediate and spaces every
	// later load by the inter-page delay.
	limiter := rate.NewLimiter(rate.Every(c.cfg.InterPageDelay), 1)

	for page := 0; page < c.cfg.MaxPages; page++ {
		if err := limiter.Wait(ctx); err != nil {
			return c.collect(found), ReasonAborted, err
		}

		pageLog := c.logger.WithField("page", page+1)
		pageLog.Info("searching results page")

		content, err := c.processPage(ctx, query, page)
		if err != nil {
			if ctx.Err() != nil {
				return c.collect(found), ReasonAborted, ctx.Err()
			}
			pageLog.WithError(err).Warn("page failed, continuing with next page")
			continue
		}

		added := c.extract(content, found)
		pageLog.WithFields(map[string]interface{}{
			"new_links":   added,
			"total_links": len(found),
		}).Info("extracted file links")

		if !hasNextControl(content) {
			reason = ReasonExhausted
			pageLog.Info("no more result pages")
			break
		}
	}

	return c.collect(found), reason, nil
}

// processPage runs one page through LOAD, CONSENT_CHECK and
// CHALLENGE_CHECK and returns the rendered content.
func (c *Crawler) processPage(ctx context.Context, query string, page int) (string, error) {
	searchURL := fmt.Sprintf(searchURLFormat, url.QueryEscape(query), page*resultsPerPage)

	navCtx, cancel := context.WithTimeout(ctx, c.cfg.PageTimeout)
	defer cancel()

	if err := c.session.Navigate(navCtx, searchURL); err != nil {
		return "", err
	}

	if sel, err := c.session.ClickFirstVisible(ctx, consentSelectors, consentProbeTimeout); err == nil && sel != "" {
		c.logger.WithField("selector", sel).Debug("dismissed consent dialog")
	}

	content, err := c.session.Content(ctx)
	if err != nil {
		return "", err
	}

	if hasChallenge(content) {
		c.logger.Warn("anti-automation challenge detected, waiting for operator")
		if err := c.gate.Wait(ctx); err != nil {
			return "", err
		}
		// Re-read the page the operator just unblocked.
		content, err = c.session.Content(ctx)
		if err != nil {
			return "", err
		}
	}

	return content, nil
}

// extract pulls every anchor href from the rendered page, normalizes
// redirect wrappers, and keeps the file-like ones. Returns how many
// links were new.
func (c *Crawler) extract(content string, found map[string]struct{}) int {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		c.logger.WithError(err).Warn("failed to parse page content")
		return 0
	}

	added := 0
	doc.Find("a").Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok || href == "" {
			return
		}

		target, ok := links.Normalize(href)
		if !ok || !links.IsFileLink(target) {
			return
		}

		if _, seen := found[target]; seen {
			return
		}
		found[target] = struct{}{}
		added++

		if c.OnLink != nil {
			c.OnLink(target)
		}
	})
	return added
}

func hasChallenge(content string) bool {
	lower := strings.ToLower(content)
	for _, marker := range challengeMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

func hasNextControl(content string) bool {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return false
	}
	return doc.Find(nextControl).Length() > 0
}

func (c *Crawler) collect(found map[string]struct{}) []string {
	out := make([]string, 0, len(found))
	for link := range found {
		out = append(out, link)
	}
	sort.Strings(out)
	return out
}
