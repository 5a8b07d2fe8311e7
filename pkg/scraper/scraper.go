// Package scraper implements the single-request operations run against a
// seed URL: headline extraction and favicon retrieval.
package scraper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"

	"github.com/charmbracelet/log"

	"github.com/amosWeiskopf/headsmith/pkg/crawler"
	"github.com/amosWeiskopf/headsmith/pkg/extractor"
)

// ErrNoOrigin is returned for URLs lacking a scheme or host
var ErrNoOrigin = errors.New("URL has no scheme or host")

// FaviconPath is the well-known location probed on every origin
const FaviconPath = "/favicon.ico"

// Scraper runs headline and favicon fetches
type Scraper struct {
	getter crawler.Getter
	logger *log.Logger
}

// Option configures a Scraper
type Option func(*Scraper)

// WithLogger sets the logger
func WithLogger(l *log.Logger) Option {
	return func(s *Scraper) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates a Scraper that fetches through g
func New(g crawler.Getter, opts ...Option) *Scraper {
	s := &Scraper{
		getter: g,
		logger: log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Headlines fetches rawURL and returns the trimmed text of every element
// matching selector, in document order. A page without matches yields an
// empty slice and no error.
func (s *Scraper) Headlines(ctx context.Context, rawURL, selector string) ([]string, error) {
	sel, err := extractor.CompileSelector(selector)
	if err != nil {
		return nil, err
	}

	body, err := s.getter.Get(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	doc, err := extractor.Parse(body)
	if err != nil {
		s.logger.Debug("unparseable page", "url", rawURL, "err", err)
		return []string{}, nil
	}

	headlines := doc.Texts(sel)
	s.logger.Debug("extracted headlines", "url", rawURL, "selector", selector, "count", len(headlines))
	return headlines, nil
}

// Favicon fetches /favicon.ico from the origin of rawURL and returns the
// body untouched.
func (s *Scraper) Favicon(ctx context.Context, rawURL string) ([]byte, error) {
	origin, err := Origin(rawURL)
	if err != nil {
		return nil, err
	}

	data, err := s.getter.Get(ctx, origin+FaviconPath)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("fetched favicon", "origin", origin, "bytes", len(data))
	return data, nil
}

// Origin returns scheme://host for rawURL; the host keeps any explicit port
func Origin(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid URL %q: %w", rawURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("%w: %q", ErrNoOrigin, rawURL)
	}
	return u.Scheme + "://" + u.Host, nil
}
