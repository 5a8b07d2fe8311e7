package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"

	"github.com/amosWeiskopf/headsmith/internal/config"
	"github.com/amosWeiskopf/headsmith/internal/logging"
	"github.com/amosWeiskopf/headsmith/pkg/batch"
	"github.com/amosWeiskopf/headsmith/pkg/fetcher"
	"github.com/amosWeiskopf/headsmith/pkg/reporter"
	"github.com/amosWeiskopf/headsmith/pkg/scraper"
	"github.com/amosWeiskopf/headsmith/pkg/storage"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "headsmith",
		Short: "headsmith - headline, favicon and subpage scraper",
		Long: `headsmith reads a list of URLs and, for each one, saves the text of the
elements matching a CSS selector, the site's favicon, and the titles of the
same-host pages it links to.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			logger, err := logging.New(stderr, cfg.Logging)
			if err != nil {
				return err
			}

			rep, err := reporter.New(cfg.Output.Report)
			if err != nil {
				return err
			}

			urls, err := batch.ReadURLFile(cfg.Paths.URLs)
			if err != nil {
				return fmt.Errorf("cannot read URL list %s: %w", cfg.Paths.URLs, err)
			}

			opts := []batch.Option{batch.WithLogger(logger), batch.WithOutput(stdout)}
			if cfg.Output.Progress {
				opts = append(opts, batch.WithProgress(newSpinner(stderr)))
			}

			report := batch.New(cfg, opts...).Run(cmd.Context(), urls)

			summary, err := rep.Render(report)
			if err != nil {
				return err
			}
			fmt.Fprint(stdout, summary)
			return nil
		},
	}
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	scrapeCmd := &cobra.Command{
		Use:   "scrape [URL]",
		Short: "Extract headlines from a single page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			seed := args[0]

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			logger, err := logging.New(stderr, cfg.Logging)
			if err != nil {
				return err
			}

			f := fetcher.New(
				fetcher.WithUserAgent(cfg.Crawler.UserAgent),
				fetcher.WithTimeout(cfg.Crawler.Timeout),
				fetcher.WithLogger(logger),
			)
			headlines, err := scraper.New(f, scraper.WithLogger(logger)).Headlines(cmd.Context(), seed, cfg.Scrape.Selector)
			if err != nil {
				return fmt.Errorf("scrape failed: %w", err)
			}

			store := storage.New(cfg.Paths.ResultsDir, cfg.Paths.FaviconsDir)
			path, saveErr := store.SaveHeadlines(seed, headlines)
			if saveErr != nil {
				logger.Error("error writing file", "err", saveErr)
			} else {
				logger.Info("saved", "url", seed, "path", path, "count", len(headlines))
			}

			batch.PrintHeadlines(stdout, seed, headlines)
			return saveErr
		},
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(stdout, "headsmith %s\n", rootCmd.Version)
		},
	}

	// Global flags
	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "Config file path (YAML)")
	pf.String("selector", "h2", "CSS selector for headlines")
	pf.String("results-dir", "results", "Directory for headline and subpage files")
	pf.String("user-agent", "headsmith/1.0", "User-Agent header sent with every request")
	pf.Duration("timeout", 0, "Per-request timeout (0 waits indefinitely)")
	pf.String("log-level", "info", "Log level (debug, info, warn, error)")
	pf.String("log-format", "text", "Log format (text, json, logfmt)")

	// Batch flags
	f := rootCmd.Flags()
	f.String("root", ".", "Install root the default URL list is resolved against")
	f.String("urls", "", "URL list file (default <root>/input/urls.txt)")
	f.String("favicons-dir", "favicons", "Directory for favicon files")
	f.String("report", "text", "Summary format after a batch (text, json, markdown, none)")
	f.Bool("progress", false, "Show a spinner on stderr while each URL is processed")

	rootCmd.AddCommand(scrapeCmd)
	rootCmd.AddCommand(versionCmd)

	return rootCmd
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	configPath, _ := cmd.Flags().GetString("config")

	cfg, err := config.Load(configPath, cmd.Flags())
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

type spinnerProgress struct {
	s *spinner.Spinner
}

func newSpinner(w io.Writer) *spinnerProgress {
	return &spinnerProgress{
		s: spinner.New(spinner.CharSets[9], 100*time.Millisecond, spinner.WithWriter(w)),
	}
}

func (p *spinnerProgress) Start(url string) {
	p.s.Suffix = " " + url
	p.s.Start()
}

func (p *spinnerProgress) Stop() {
	p.s.Stop()
}

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
