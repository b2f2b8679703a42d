package browser

import (
	"os"
	"os/exec"

	"github.com/jmylchreest/fundscrape/internal/logger"
)

// Binary names looked up on PATH, in order of preference.
var chromeNames = []string{
	"google-chrome-stable",
	"google-chrome",
	"chromium",
	"chromium-browser",
	"chrome",
}

// Fixed install locations checked when PATH has nothing.
var chromeLocations = []string{
	"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
	"/Applications/Chromium.app/Contents/MacOS/Chromium",
	"/usr/bin/google-chrome-stable",
	"/usr/bin/chromium",
	"/snap/bin/chromium",
	`C:\Program Files\Google\Chrome\Application\chrome.exe`,
	`C:\Program Files (x86)\Google\Chrome\Application\chrome.exe`,
}

// FindChromePath returns the first Chrome or Chromium binary found on PATH
// or in a known install location, or "" when there is none.
func FindChromePath() string {
	for _, name := range chromeNames {
		if path, err := exec.LookPath(name); err == nil {
			logger.Debug("found Chrome binary", "name", name, "path", path)
			return path
		}
	}
	for _, path := range chromeLocations {
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			logger.Debug("found Chrome binary", "path", path)
			return path
		}
	}
	logger.Warn("no Chrome binary found, relying on chromedp's default lookup")
	return ""
}
