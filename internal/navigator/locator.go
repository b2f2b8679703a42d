package navigator

import (
	"context"
	"errors"
	"time"

	"github.com/jmylchreest/fundscrape/internal/logger"
)

// Locator is an ordered list of candidate selectors. Lookups try each
// candidate in turn and stop at the first one that matches.
type Locator []string

var errEmptyLocator = errors.New("locator has no candidates")

// WaitAny waits for the first candidate with timeout, then for each later
// candidate with fallback. It returns the selector that matched, or the
// last ErrTimeout when none did. Non-timeout errors stop the search.
func (l Locator) WaitAny(ctx context.Context, nav Navigator, timeout, fallback time.Duration) (string, error) {
	if len(l) == 0 {
		return "", errEmptyLocator
	}

	var lastErr error
	for i, sel := range l {
		d := timeout
		if i > 0 {
			d = fallback
		}
		err := nav.WaitFor(ctx, sel, d)
		if err == nil {
			return sel, nil
		}
		if !errors.Is(err, ErrTimeout) {
			return "", err
		}
		logger.Debug("locator candidate timed out", "selector", sel, "timeout", d)
		lastErr = err
	}
	return "", lastErr
}

// First returns the first element matched by any candidate.
func (l Locator) First(ctx context.Context, nav Navigator) (Handle, bool, error) {
	for _, sel := range l {
		h, ok, err := nav.Query(ctx, sel)
		if err != nil {
			return nil, false, err
		}
		if ok {
			return h, true, nil
		}
	}
	return nil, false, nil
}

// All returns the elements of the first candidate that matches anything.
func (l Locator) All(ctx context.Context, nav Navigator) ([]Handle, error) {
	for _, sel := range l {
		hs, err := nav.QueryAll(ctx, sel)
		if err != nil {
			return nil, err
		}
		if len(hs) > 0 {
			return hs, nil
		}
	}
	return nil, nil
}
