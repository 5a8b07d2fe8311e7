package crawler

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/amosWeiskopf/headsmith/internal/models"
	"github.com/amosWeiskopf/headsmith/pkg/extractor"
)

// Crawler follows the links of a seed page exactly one hop deep
type Crawler struct {
	getter Getter
	logger *log.Logger
}

var _ Collector = (*Crawler)(nil)

// Option configures a Crawler
type Option func(*Crawler)

// WithLogger sets the logger used for per-link tracing
func WithLogger(l *log.Logger) Option {
	return func(c *Crawler) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates a Crawler that fetches through g
func New(g Getter, opts ...Option) *Crawler {
	c := &Crawler{
		getter: g,
		logger: log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Collect fetches seed, follows every anchor that resolves to the seed's host
// and returns one record per distinct resolved URL in first-seen order.
//
// A failure fetching seed fails the call. A failure fetching an individual
// link drops that link and the crawl carries on.
func (c *Crawler) Collect(ctx context.Context, seed string) ([]models.Subpage, error) {
	base, err := url.Parse(seed)
	if err != nil {
		return nil, fmt.Errorf("invalid seed URL %q: %w", seed, err)
	}

	body, err := c.getter.Get(ctx, seed)
	if err != nil {
		return nil, fmt.Errorf("fetch seed: %w", err)
	}

	doc, err := extractor.Parse(body)
	if err != nil {
		// Nothing to follow on a page we cannot read.
		c.logger.Debug("unparseable seed page", "url", seed, "err", err)
		return []models.Subpage{}, nil
	}

	links := sameHostLinks(base, doc.Hrefs())

	pages := make([]models.Subpage, 0, len(links))
	for _, link := range links {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		title, err := c.title(ctx, link)
		if err != nil {
			c.logger.Debug("skipped link", "url", link, "err", err)
			continue
		}
		pages = append(pages, models.Subpage{URL: link, Title: title})
	}

	c.logger.Debug("collected subpages", "seed", seed, "links", len(links), "pages", len(pages))
	return pages, nil
}

func (c *Crawler) title(ctx context.Context, link string) (string, error) {
	body, err := c.getter.Get(ctx, link)
	if err != nil {
		return "", err
	}
	doc, err := extractor.Parse(body)
	if err != nil {
		return "", nil
	}
	return doc.Title(), nil
}

// sameHostLinks resolves hrefs against base and keeps those on base's host,
// dropping exact duplicates of an earlier resolved URL.
func sameHostLinks(base *url.URL, hrefs []string) []string {
	visited := make(map[string]struct{}, len(hrefs))
	var links []string

	for _, href := range hrefs {
		abs, ok := resolveURL(base, href)
		if !ok {
			continue
		}
		if abs.Host != base.Host {
			continue
		}

		key := abs.String()
		if _, seen := visited[key]; seen {
			continue
		}
		visited[key] = struct{}{}
		links = append(links, key)
	}
	return links
}

func resolveURL(base *url.URL, href string) (*url.URL, bool) {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return nil, false
	}
	return base.ResolveReference(ref), true
}
