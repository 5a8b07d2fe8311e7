package batch

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/amosWeiskopf/headsmith/internal/config"
	"github.com/amosWeiskopf/headsmith/internal/models"
	"github.com/amosWeiskopf/headsmith/pkg/crawler"
	"github.com/amosWeiskopf/headsmith/pkg/fetcher"
	"github.com/amosWeiskopf/headsmith/pkg/scraper"
	"github.com/amosWeiskopf/headsmith/pkg/storage"
)

// NoHeadlinesMessage is printed for a seed whose selector matched nothing
const NoHeadlinesMessage = "No headlines found with that selector."

// Progress is notified around each seed URL
type Progress interface {
	Start(url string)
	Stop()
}

// Driver runs the headline, favicon and subpage operations for a list of
// seed URLs. Operations are independent: a failure is recorded and the
// batch moves on.
type Driver struct {
	selector  string
	getter    crawler.Getter
	scraper   *scraper.Scraper
	collector crawler.Collector
	store     *storage.Store
	out       io.Writer
	logger    *log.Logger
	progress  Progress
}

// Option configures a Driver
type Option func(*Driver)

// WithLogger sets the logger shared by the driver and its components
func WithLogger(l *log.Logger) Option {
	return func(d *Driver) {
		if l != nil {
			d.logger = l
		}
	}
}

// WithOutput sets where headline listings are printed
func WithOutput(w io.Writer) Option {
	return func(d *Driver) {
		if w != nil {
			d.out = w
		}
	}
}

// WithGetter replaces the HTTP fetcher built from the configuration
func WithGetter(g crawler.Getter) Option {
	return func(d *Driver) {
		if g != nil {
			d.getter = g
		}
	}
}

// WithProgress reports each seed to p while it is being processed
func WithProgress(p Progress) Option {
	return func(d *Driver) {
		d.progress = p
	}
}

// New builds a Driver from cfg
func New(cfg *config.Config, opts ...Option) *Driver {
	d := &Driver{
		selector: cfg.Scrape.Selector,
		store:    storage.New(cfg.Paths.ResultsDir, cfg.Paths.FaviconsDir),
		out:      io.Discard,
		logger:   log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(d)
	}

	if d.getter == nil {
		d.getter = fetcher.New(
			fetcher.WithUserAgent(cfg.Crawler.UserAgent),
			fetcher.WithTimeout(cfg.Crawler.Timeout),
			fetcher.WithLogger(d.logger),
		)
	}
	d.scraper = scraper.New(d.getter, scraper.WithLogger(d.logger))
	d.collector = crawler.New(d.getter, crawler.WithLogger(d.logger))

	return d
}

// ReadURLFile reads a URL list from path
func ReadURLFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open URL list: %w", err)
	}
	defer f.Close()

	return ReadURLs(f)
}

// ReadURLs reads one URL per line, skipping blank lines
func ReadURLs(r io.Reader) ([]string, error) {
	var urls []string

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		urls = append(urls, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read URL list: %w", err)
	}
	return urls, nil
}

// Run processes urls in order and returns every outcome. It only returns
// early when ctx is done.
func (d *Driver) Run(ctx context.Context, urls []string) *models.BatchReport {
	report := &models.BatchReport{
		StartedAt: time.Now(),
		URLs:      len(urls),
		Outcomes:  make([]models.Outcome, 0, len(urls)*len(models.Operations)),
	}

	for _, u := range urls {
		if ctx.Err() != nil {
			break
		}
		report.Outcomes = append(report.Outcomes, d.Process(ctx, u)...)
	}

	report.FinishedAt = time.Now()
	d.logger.Info("batch finished",
		"urls", report.URLs,
		"succeeded", report.Succeeded(),
		"failed", len(report.Failed()),
		"elapsed", report.FinishedAt.Sub(report.StartedAt).Round(time.Millisecond))
	return report
}

// Process runs the three operations for a single seed URL
func (d *Driver) Process(ctx context.Context, seed string) []models.Outcome {
	if d.progress != nil {
		d.progress.Start(seed)
		defer d.progress.Stop()
	}
	d.logger.Info("processing", "url", seed)

	return []models.Outcome{
		d.record(seed, models.OpHeadlines, func() (string, int, error) { return d.saveHeadlines(ctx, seed) }),
		d.record(seed, models.OpFavicon, func() (string, int, error) { return d.saveFavicon(ctx, seed) }),
		d.record(seed, models.OpSubpages, func() (string, int, error) { return d.saveSubpages(ctx, seed) }),
	}
}

func (d *Driver) record(seed string, op models.Operation, fn func() (string, int, error)) models.Outcome {
	path, count, err := fn()
	o := models.Outcome{URL: seed, Operation: op, Path: path, Count: count, Err: err}
	if err != nil {
		o.Path = ""
		o.Error = err.Error()
		d.logger.Error("operation failed", "url", seed, "op", op, "err", err)
		return o
	}
	d.logger.Info("saved", "url", seed, "op", op, "path", path, "count", count)
	return o
}

func (d *Driver) saveHeadlines(ctx context.Context, seed string) (string, int, error) {
	headlines, err := d.scraper.Headlines(ctx, seed, d.selector)
	if err != nil {
		return "", 0, err
	}

	path, err := d.store.SaveHeadlines(seed, headlines)
	if err != nil {
		return "", 0, err
	}

	PrintHeadlines(d.out, seed, headlines)
	return path, len(headlines), nil
}

func (d *Driver) saveFavicon(ctx context.Context, seed string) (string, int, error) {
	data, err := d.scraper.Favicon(ctx, seed)
	if err != nil {
		return "", 0, err
	}
	path, err := d.store.SaveFavicon(seed, data)
	if err != nil {
		return "", 0, err
	}
	return path, len(data), nil
}

func (d *Driver) saveSubpages(ctx context.Context, seed string) (string, int, error) {
	pages, err := d.collector.Collect(ctx, seed)
	if err != nil {
		return "", 0, err
	}
	path, err := d.store.SaveSubpages(seed, pages)
	if err != nil {
		return "", 0, err
	}
	return path, len(pages), nil
}

// PrintHeadlines writes a numbered listing of headlines for seed, or
// NoHeadlinesMessage when there are none.
func PrintHeadlines(w io.Writer, seed string, headlines []string) {
	fmt.Fprintf(w, "%s\n", seed)
	if len(headlines) == 0 {
		fmt.Fprintln(w, NoHeadlinesMessage)
		return
	}
	for i, h := range headlines {
		fmt.Fprintf(w, "%d. %s\n", i+1, h)
	}
}
