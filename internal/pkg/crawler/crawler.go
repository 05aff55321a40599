// Package crawler implements a bounded same-host website crawl.
//
// The crawl is a frontier traversal over internal links: pop an
// unvisited URL, fetch it, extract the visible text and outbound links,
// keep links whose host matches the seed's host, stop when the frontier
// drains or max pages have been visited. A URL is never fetched twice,
// and a failed fetch is recorded as visited so it is not retried.
package crawler

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/kart-io/logger"
)

// Page is one successfully fetched page.
type Page struct {
	URL  string
	Text string
}

// Crawler fetches same-host pages starting from a seed URL.
type Crawler struct {
	client    *http.Client
	userAgent string
}

// Option configures a Crawler.
type Option func(*Crawler)

// WithTimeout sets the per-page fetch timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Crawler) {
		c.client.Timeout = d
	}
}

// WithUserAgent sets the User-Agent header sent on fetches.
func WithUserAgent(ua string) Option {
	return func(c *Crawler) {
		c.userAgent = ua
	}
}

// WithHTTPClient replaces the HTTP client entirely.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Crawler) {
		c.client = client
	}
}

// New creates a Crawler.
func New(opts ...Option) *Crawler {
	c := &Crawler{
		client:    &http.Client{Timeout: 15 * time.Second},
		userAgent: "sitebot/1.0",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Crawl visits up to maxPages distinct URLs reachable from seedURL on
// the same host and returns the pages that fetched successfully, in
// visit order.
//
// Individual fetch failures are skipped without aborting the crawl. An
// unreachable seed, or a crawl that yields no pages at all, returns an
// error.
func (c *Crawler) Crawl(ctx context.Context, seedURL string, maxPages int) ([]Page, error) {
	seed, err := url.Parse(seedURL)
	if err != nil || seed.Host == "" {
		return nil, fmt.Errorf("invalid seed url %q", seedURL)
	}

	frontier := []string{seed.String()}
	enqueued := map[string]struct{}{seed.String(): {}}
	visited := make(map[string]struct{})

	var pages []Page

	for len(frontier) > 0 && len(visited) < maxPages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		current := frontier[0]
		frontier = frontier[1:]
		if _, done := visited[current]; done {
			continue
		}
		visited[current] = struct{}{}

		text, links, err := c.fetch(ctx, current, seed.Host)
		if err != nil {
			logger.Warnw("page fetch failed, skipping",
				"url", current,
				"error", err.Error(),
			)
			continue
		}

		pages = append(pages, Page{URL: current, Text: text})

		for _, link := range links {
			if _, seen := enqueued[link]; seen {
				continue
			}
			enqueued[link] = struct{}{}
			frontier = append(frontier, link)
		}
	}

	if len(pages) == 0 {
		return nil, fmt.Errorf("crawl of %s produced no pages", seedURL)
	}

	logger.Infow("crawl finished",
		"seed", seedURL,
		"visited", len(visited),
		"pages", len(pages),
	)

	return pages, nil
}

// fetch downloads one page and returns its visible text plus the
// normalized internal links it references.
func (c *Crawler) fetch(ctx context.Context, pageURL, seedHost string) (string, []string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", nil, fmt.Errorf("status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", nil, err
	}

	base, err := url.Parse(pageURL)
	if err != nil {
		return "", nil, err
	}

	var links []string
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok {
			return
		}
		abs := normalizeLink(base, href)
		if abs == "" {
			return
		}
		if target, err := url.Parse(abs); err == nil && target.Host == seedHost {
			links = append(links, abs)
		}
	})

	doc.Find("script, style, noscript").Remove()
	text := strings.TrimSpace(doc.Find("body").Text())

	return text, links, nil
}

// normalizeLink resolves href against base and strips fragments.
// Non-HTTP schemes (mailto, tel, javascript) yield "".
func normalizeLink(base *url.URL, href string) string {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return ""
	}
	abs := base.ResolveReference(ref)
	if abs.Scheme != "http" && abs.Scheme != "https" {
		return ""
	}
	abs.Fragment = ""
	return abs.String()
}
