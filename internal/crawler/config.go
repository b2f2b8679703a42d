package crawler

import (
	"time"

	"github.com/jmylchreest/fundscrape/internal/navigator"
)

// DefaultBaseURL is the funding database the listing selectors target.
const DefaultBaseURL = "https://fund.cingta.com"

// Config holds crawler configuration.
type Config struct {
	BaseURL string `validate:"required,url"`

	// Selectors
	RenderLocator      navigator.Locator `validate:"min=1,dive,required"` // waited on before extracting
	ItemLocator        navigator.Locator `validate:"min=1,dive,required"` // one element per record
	TotalSelector      string            // reported-total summary, optional
	NextLocator        navigator.Locator `validate:"min=1,dive,required"` // next page control
	FirstTitleSelector string            `validate:"required"`            // stability fingerprint

	// Ceilings
	MaxPages   int `validate:"min=1"`
	MaxRetries int `validate:"min=0"`

	// Timing
	RetryDelay      time.Duration `validate:"gte=0"`
	RenderTimeout   time.Duration `validate:"gt=0"`
	FallbackTimeout time.Duration `validate:"gt=0"`
	PollInterval    time.Duration `validate:"gt=0"`
	PollCount       int           `validate:"min=1"`
	PageInterval    time.Duration `validate:"gte=0"` // minimum spacing between next clicks
	NavigateTimeout time.Duration `validate:"gte=0"` // 0 = no timeout
}

// DefaultConfig returns defaults tuned for the live site.
func DefaultConfig() Config {
	return Config{
		BaseURL:            DefaultBaseURL,
		RenderLocator:      navigator.Locator{".list-item", ".result-list"},
		ItemLocator:        navigator.Locator{".list-item"},
		TotalSelector:      ".result-message",
		NextLocator:        navigator.Locator{".el-pagination .btn-next"},
		FirstTitleSelector: ".list-item .title",
		MaxPages:           100,
		MaxRetries:         3,
		RetryDelay:         3 * time.Second,
		RenderTimeout:      30 * time.Second,
		FallbackTimeout:    10 * time.Second,
		PollInterval:       500 * time.Millisecond,
		PollCount:          10,
		PageInterval:       2 * time.Second,
		NavigateTimeout:    60 * time.Second,
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	return validateStruct("crawler config", c)
}

// RetryPolicy returns the retry policy the config describes.
func (c Config) RetryPolicy() RetryPolicy {
	return RetryPolicy{Ceiling: c.MaxRetries, Delay: c.RetryDelay}
}

// Probe returns the stability probe the config describes.
func (c Config) Probe() StabilityProbe {
	return StabilityProbe{Selector: c.FirstTitleSelector, Interval: c.PollInterval, Polls: c.PollCount}
}

// IterationBudget is the most render waits a run may make before it is
// forced to stop.
func (c Config) IterationBudget() int {
	return c.MaxPages + c.MaxRetries
}
