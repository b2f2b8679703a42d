package commands

import (
	"strings"

	"github.com/spf13/viper"

	"github.com/jmylchreest/fundscrape/cmd/fundscrape/browser"
	"github.com/jmylchreest/fundscrape/internal/crawler"
)

// setDefaults registers the defaults for every config key so they show up
// for env lookups and in the values viper reports.
func setDefaults(v *viper.Viper) {
	c := crawler.DefaultConfig()
	b := browser.DefaultConfig()

	v.SetDefault("base_url", c.BaseURL)
	v.SetDefault("output_dir", ".")
	v.SetDefault("format", "csv")
	v.SetDefault("csv_bom", true)
	v.SetDefault("json_indent", "  ")
	v.SetDefault("log_file", "")

	v.SetDefault("max_pages", c.MaxPages)
	v.SetDefault("max_retries", c.MaxRetries)
	v.SetDefault("retry_delay", c.RetryDelay)
	v.SetDefault("render_timeout", c.RenderTimeout)
	v.SetDefault("fallback_timeout", c.FallbackTimeout)
	v.SetDefault("poll_interval", c.PollInterval)
	v.SetDefault("poll_count", c.PollCount)
	v.SetDefault("page_interval", c.PageInterval)
	v.SetDefault("navigate_timeout", c.NavigateTimeout)

	v.SetDefault("headless", b.Headless)
	v.SetDefault("stealth", b.Stealth)
	v.SetDefault("chrome_path", "")
	v.SetDefault("user_agent", b.UserAgent)
	v.SetDefault("cookie_file", b.CookieFile)
	v.SetDefault("settle", b.Settle)
	v.SetDefault("action_timeout", b.ActionTimeout)
	v.SetDefault("screenshot_dir", "")
}

// crawlerConfig builds the crawler configuration from v. Selectors are not
// configurable; they follow the site's markup.
func crawlerConfig(v *viper.Viper) crawler.Config {
	cfg := crawler.DefaultConfig()
	cfg.BaseURL = strings.TrimRight(v.GetString("base_url"), "/")
	cfg.MaxPages = v.GetInt("max_pages")
	cfg.MaxRetries = v.GetInt("max_retries")
	cfg.RetryDelay = v.GetDuration("retry_delay")
	cfg.RenderTimeout = v.GetDuration("render_timeout")
	cfg.FallbackTimeout = v.GetDuration("fallback_timeout")
	cfg.PollInterval = v.GetDuration("poll_interval")
	cfg.PollCount = v.GetInt("poll_count")
	cfg.PageInterval = v.GetDuration("page_interval")
	cfg.NavigateTimeout = v.GetDuration("navigate_timeout")
	return cfg
}

// browserConfig builds the browser configuration from v.
func browserConfig(v *viper.Viper) browser.Config {
	cfg := browser.DefaultConfig()
	cfg.Headless = v.GetBool("headless")
	cfg.Stealth = v.GetBool("stealth")
	cfg.ChromePath = v.GetString("chrome_path")
	if ua := v.GetString("user_agent"); ua != "" {
		cfg.UserAgent = ua
	}
	cfg.CookieFile = v.GetString("cookie_file")
	cfg.Settle = v.GetDuration("settle")
	cfg.NavigateTimeout = v.GetDuration("navigate_timeout")
	cfg.ActionTimeout = v.GetDuration("action_timeout")
	cfg.ScreenshotDir = v.GetString("screenshot_dir")
	return cfg
}
