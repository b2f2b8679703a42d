package crawler

import (
	"context"
	"errors"
	"time"

	"github.com/jmylchreest/fundscrape/internal/extractor"
	"github.com/jmylchreest/fundscrape/internal/navigator"
)

// Fingerprint identifies the page currently on screen by its first title.
type Fingerprint string

// StabilityProbe detects whether a next click actually changed the page.
type StabilityProbe struct {
	Selector string
	Interval time.Duration
	Polls    int
}

// Capture reads the fingerprint of the current page. An empty list, or a
// first item that detaches while being read, yields an empty fingerprint.
func (p StabilityProbe) Capture(ctx context.Context, nav navigator.Navigator) (Fingerprint, error) {
	h, ok, err := nav.Query(ctx, p.Selector)
	if err != nil || !ok {
		return "", err
	}
	text, err := h.Text(ctx)
	if errors.Is(err, navigator.ErrDetached) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return Fingerprint(extractor.NormalizeTitle(extractor.CleanTitle(text))), nil
}

// WaitForChange polls until the fingerprint differs from before or the poll
// budget runs out. An empty fingerprint is never treated as a change, since
// the list is usually blank while the next page loads.
func (p StabilityProbe) WaitForChange(ctx context.Context, nav navigator.Navigator, before Fingerprint) (bool, error) {
	for i := 0; i < p.Polls; i++ {
		if err := sleep(ctx, p.Interval); err != nil {
			return false, err
		}
		now, err := p.Capture(ctx, nav)
		if err != nil {
			return false, err
		}
		if now != "" && now != before {
			return true, nil
		}
	}
	return false, nil
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
