// Package browser drives a real Chrome tab for the crawler through chromedp.
// It provides the page Navigator, cookie persistence and the manual login
// step the site needs before it shows full results.
package browser

import (
	"time"
)

// Config holds configuration for the browser session.
type Config struct {
	UserAgent  string
	ChromePath string // empty = search the usual install locations
	Headless   bool   // the login step needs a visible window
	Stealth    bool   // inject the anti-automation script

	CookieFile string        // cookies restored before and saved after login
	LoginWait  time.Duration // time left for a manual login
	Settle     time.Duration // pause after opening the home page

	NavigateTimeout time.Duration
	ActionTimeout   time.Duration // bound on single element operations

	ScreenshotDir string // save a screenshot here when a wait times out
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		UserAgent:       defaultUserAgent,
		Headless:        false,
		Stealth:         true,
		CookieFile:      "cookies.json",
		LoginWait:       30 * time.Second,
		Settle:          3 * time.Second,
		NavigateTimeout: 60 * time.Second,
		ActionTimeout:   10 * time.Second,
	}
}

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"
