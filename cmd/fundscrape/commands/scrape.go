package commands

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/jmylchreest/fundscrape/cmd/fundscrape/browser"
	"github.com/jmylchreest/fundscrape/internal/crawler"
	"github.com/jmylchreest/fundscrape/internal/logger"
	"github.com/jmylchreest/fundscrape/internal/output"
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Search and export funded projects",
	Long: `Search fund.cingta.com for a keyword over a range of award years and
export every project in the result listing.

Output goes to fund_<keyword>_<start>-<end>.<ext> in output_dir. Tunables
such as format, max_pages or retry_delay come from the config file or
FUNDSCRAPE_* environment variables.

Examples:
  fundscrape scrape -k 电动汽车 -s 2022 -e 2026
  FUNDSCRAPE_FORMAT=json fundscrape scrape -k 储能`,
	RunE: runScrape,
}

func init() {
	rootCmd.AddCommand(scrapeCmd)

	addScrapeFlags(scrapeCmd.Flags())
}

func addScrapeFlags(flags *pflag.FlagSet) {
	flags.StringP("keyword", "k", "电动汽车", "search keyword")
	flags.IntP("start-year", "s", 2022, "first award year")
	flags.IntP("end-year", "e", 2026, "last award year")
	flags.IntP("wait", "w", 30, "seconds to wait for a manual login")
}

// scrapeOptions is everything a scrape run needs, resolved from flags and
// config.
type scrapeOptions struct {
	target    crawler.SearchTarget
	loginWait time.Duration
	format    output.Format
	outputDir string
	bom       bool
	indent    string // JSON indent, empty for compact output
	crawler   crawler.Config
	browser   browser.Config
}

func resolveScrapeOptions(cmd *cobra.Command, v *viper.Viper) (scrapeOptions, error) {
	keyword, _ := cmd.Flags().GetString("keyword")
	start, _ := cmd.Flags().GetInt("start-year")
	end, _ := cmd.Flags().GetInt("end-year")
	wait, _ := cmd.Flags().GetInt("wait")

	opts := scrapeOptions{
		target:    crawler.SearchTarget{Keyword: keyword, StartYear: start, EndYear: end},
		loginWait: time.Duration(wait) * time.Second,
		outputDir: v.GetString("output_dir"),
		bom:       v.GetBool("csv_bom"),
		indent:    v.GetString("json_indent"),
		crawler:   crawlerConfig(v),
		browser:   browserConfig(v),
	}
	opts.browser.LoginWait = opts.loginWait

	if wait < 0 {
		return opts, errors.New("wait must not be negative")
	}
	if err := opts.target.Validate(); err != nil {
		return opts, err
	}
	format, err := output.ParseFormat(v.GetString("format"))
	if err != nil {
		return opts, err
	}
	opts.format = format
	if err := opts.crawler.Validate(); err != nil {
		return opts, err
	}
	return opts, nil
}

// writerOptions returns the output writer settings for the run.
func (o scrapeOptions) writerOptions() []output.WriterOption {
	return []output.WriterOption{
		output.WithBOM(o.bom),
		output.WithPretty(o.indent != ""),
		output.WithIndent(o.indent),
	}
}

func runScrape(cmd *cobra.Command, args []string) error {
	v := viper.GetViper()
	logger.Init(logger.Options{
		Debug: v.GetBool("debug"),
		Quiet: v.GetBool("quiet"),
		File:  v.GetString("log_file"),
	})
	defer func() { _ = logger.Close() }()

	opts, err := resolveScrapeOptions(cmd, v)
	if err != nil {
		logger.Error("invalid arguments", "error", err)
		return err
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger.Info("starting scrape",
		"keyword", opts.target.Keyword,
		"years", opts.target.String(),
		"login_wait", opts.loginWait,
		"format", opts.format)

	ctrl, err := crawler.New(opts.crawler)
	if err != nil {
		logger.Error("invalid crawler config", "error", err)
		return err
	}

	result, err := scrape(ctx, ctrl, opts)
	if err != nil {
		logger.ErrorContext(ctx, "scrape failed", "error", err)
		return nil
	}

	if len(result.Records) == 0 {
		logger.Warn("no records collected, nothing written", "outcome", result.Outcome)
		return nil
	}

	name := output.FileName(opts.target.Keyword, opts.target.StartYear, opts.target.EndYear, opts.format)
	path, err := output.WriteFile(opts.outputDir, name, opts.format, result.Records, opts.writerOptions()...)
	if err != nil {
		logger.ErrorContext(ctx, "writing output failed", "error", err)
		return nil
	}

	attrs := []any{
		"path", path,
		"records", humanize.Comma(int64(len(result.Records))),
		"outcome", result.Outcome,
	}
	if result.TotalKnown {
		attrs = append(attrs, "reported_total", humanize.Comma(int64(result.ReportedTotal)))
	}
	logger.Info("output written", attrs...)
	return nil
}

// scrape launches the browser, runs the login step and drives the crawler.
func scrape(ctx context.Context, ctrl *crawler.Controller, opts scrapeOptions) (crawler.Result, error) {
	b, err := browser.Launch(ctx, opts.browser)
	if err != nil {
		return crawler.Result{}, err
	}
	defer func() { _ = b.Close() }()

	if err := b.Login(ctx, opts.crawler.BaseURL); err != nil {
		if ctx.Err() != nil {
			return crawler.Result{}, err
		}
		logger.Warn("login step failed, continuing without it", "error", err)
	}

	start := time.Now()
	result := ctrl.Run(ctx, b.Navigator(), opts.target)
	logger.Debug("crawl finished",
		"session", result.SessionID,
		"pages", result.Pages,
		"elapsed", time.Since(start).Round(time.Second))
	return result, nil
}
