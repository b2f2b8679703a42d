// Package crawler drives a search listing page by page, extracting each
// record once and deciding when the run is finished.
package crawler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dustin/go-humanize"
	"golang.org/x/time/rate"

	"github.com/jmylchreest/fundscrape/internal/extractor"
	"github.com/jmylchreest/fundscrape/internal/logger"
	"github.com/jmylchreest/fundscrape/internal/navigator"
)

// Outcome is how a run ended.
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeFailed
)

func (o Outcome) String() string {
	if o == OutcomeFailed {
		return "failed"
	}
	return "success"
}

// Result is the outcome of a run. Records holds everything collected,
// including on failed runs.
type Result struct {
	SessionID     string
	Records       []extractor.Record
	Outcome       Outcome
	Reason        error
	Pages         int
	ReportedTotal int
	TotalKnown    bool
}

// Controller runs the pagination loop against a Navigator.
type Controller struct {
	config Config
	retry  RetryPolicy
	probe  StabilityProbe
	next   *PaginationSelector
	pacer  *rate.Limiter
}

// New creates a Controller after validating cfg.
func New(cfg Config) (*Controller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	limit := rate.Inf
	if cfg.PageInterval > 0 {
		limit = rate.Every(cfg.PageInterval)
	}
	return &Controller{
		config: cfg,
		retry:  cfg.RetryPolicy(),
		probe:  cfg.Probe(),
		next:   NewPaginationSelector(cfg.NextLocator),
		pacer:  rate.NewLimiter(limit, 1),
	}, nil
}

type state int

const (
	stateInit state = iota
	stateAwaitRender
	stateExtract
	stateCheckCompletion
	stateAdvance
	stateTerminal
)

func (s state) String() string {
	return [...]string{"init", "await_render", "extract", "check_completion", "advance", "terminal"}[s]
}

// run is the per-call state of Controller.Run.
type run struct {
	c       *Controller
	nav     navigator.Navigator
	target  SearchTarget
	s       *Session
	log     *slog.Logger
	outcome Outcome
	reason  error
}

// Run scrapes target until the listing is exhausted, the reported total is
// reached, or a ceiling forces it to stop. It never returns an error; the
// Result carries the outcome and whatever was collected.
func (c *Controller) Run(ctx context.Context, nav navigator.Navigator, target SearchTarget) Result {
	s := NewSession()
	r := &run{
		c:      c,
		nav:    nav,
		target: target,
		s:      s,
		log:    logger.With("session", s.ID),
	}

	for st := stateInit; st != stateTerminal; {
		r.log.Debug("crawler state", "state", st, "page", s.PageNumber, "retry", s.RetryCount)
		switch st {
		case stateInit:
			st = r.init(ctx)
		case stateAwaitRender:
			st = r.awaitRender(ctx)
		case stateExtract:
			st = r.extract(ctx)
		case stateCheckCompletion:
			st = r.checkCompletion()
		case stateAdvance:
			st = r.advance(ctx)
		}
	}

	attrs := []any{
		"outcome", r.outcome,
		"records", humanize.Comma(int64(len(s.Collected))),
		"pages", s.PageNumber,
	}
	if s.TotalKnown {
		attrs = append(attrs, "reported_total", humanize.Comma(int64(s.ReportedTotal)))
	}
	if r.reason != nil {
		attrs = append(attrs, "reason", r.reason)
	}
	if r.outcome == OutcomeFailed {
		r.log.Warn("scrape stopped", attrs...)
	} else {
		r.log.Info("scrape finished", attrs...)
	}

	return Result{
		SessionID:     s.ID,
		Records:       s.Collected,
		Outcome:       r.outcome,
		Reason:        r.reason,
		Pages:         s.PageNumber,
		ReportedTotal: s.ReportedTotal,
		TotalKnown:    s.TotalKnown,
	}
}

func (r *run) succeed(reason error) state {
	r.outcome = OutcomeSuccess
	r.reason = reason
	return stateTerminal
}

func (r *run) fail(reason error) state {
	r.outcome = OutcomeFailed
	r.reason = reason
	return stateTerminal
}

func (r *run) init(ctx context.Context) state {
	if err := r.target.Validate(); err != nil {
		return r.fail(err)
	}
	u, err := r.target.URL(r.c.config.BaseURL)
	if err != nil {
		return r.fail(err)
	}
	r.log.Info("opening search", "url", u, "target", r.target.String())

	navCtx := ctx
	if r.c.config.NavigateTimeout > 0 {
		var cancel context.CancelFunc
		navCtx, cancel = context.WithTimeout(ctx, r.c.config.NavigateTimeout)
		defer cancel()
	}
	if err := r.nav.Navigate(navCtx, u); err != nil {
		if ctx.Err() != nil {
			return r.fail(ctx.Err())
		}
		return r.fail(fmt.Errorf("opening search: %w", err))
	}
	return stateAwaitRender
}

func (r *run) awaitRender(ctx context.Context) state {
	cfg := r.c.config
	r.s.Iterations++
	if r.s.Iterations > cfg.IterationBudget() {
		return r.fail(fmt.Errorf("%w: %d render waits", ErrPageBudgetExhausted, r.s.Iterations-1))
	}

	sel, err := cfg.RenderLocator.WaitAny(ctx, r.nav, cfg.RenderTimeout, cfg.FallbackTimeout)
	if err != nil {
		if ctx.Err() != nil {
			return r.fail(ctx.Err())
		}
		return r.recover(ctx, RenderTimeout, err)
	}
	r.log.Debug("list rendered", "selector", sel, "page", r.s.PageNumber)

	if !r.s.TotalKnown {
		r.readTotal(ctx)
	}
	return stateExtract
}

func (r *run) readTotal(ctx context.Context) {
	sel := r.c.config.TotalSelector
	if sel == "" {
		return
	}
	h, ok, err := r.nav.Query(ctx, sel)
	if err != nil || !ok {
		return
	}
	text, err := h.Text(ctx)
	if err != nil {
		return
	}
	if n, known := extractor.ParseReportedTotal(text); known {
		r.s.SetReportedTotal(n)
		r.log.Info("reported total", "total", humanize.Comma(int64(n)))
	}
}

func (r *run) extract(ctx context.Context) state {
	items, err := r.c.config.ItemLocator.All(ctx, r.nav)
	if err != nil {
		if ctx.Err() != nil {
			return r.fail(ctx.Err())
		}
		r.log.Warn("listing items failed", "page", r.s.PageNumber, "error", err)
		return stateCheckCompletion
	}

	added := 0
	for i, item := range items {
		rec, err := extractor.Extract(ctx, item)
		if err != nil {
			if ctx.Err() != nil {
				return r.fail(ctx.Err())
			}
			r.log.Debug("skipping item", "page", r.s.PageNumber, "index", i, "error", err)
			continue
		}
		if r.s.Accept(rec) {
			added++
		}
	}

	r.log.Info("page extracted",
		"page", r.s.PageNumber,
		"items", len(items),
		"new", added,
		"collected", humanize.Comma(int64(len(r.s.Collected))))
	return stateCheckCompletion
}

func (r *run) checkCompletion() state {
	if IsDone(len(r.s.Collected), r.s.ReportedTotal, r.s.TotalKnown) {
		return r.succeed(nil)
	}
	return stateAdvance
}

func (r *run) advance(ctx context.Context) state {
	next, control, err := r.c.next.FindNext(ctx, r.nav)
	if err != nil {
		if ctx.Err() != nil {
			return r.fail(ctx.Err())
		}
		return r.recover(ctx, StaleTransition, err)
	}
	switch control {
	case ControlMissing:
		r.log.Info("no next page control", "page", r.s.PageNumber)
		return r.succeed(ErrMissingPaginationControl)
	case ControlDisabled:
		r.log.Info("reached last page", "page", r.s.PageNumber)
		return r.succeed(nil)
	}

	if r.s.PageNumber >= r.c.config.MaxPages {
		return r.fail(fmt.Errorf("%w: reached page %d", ErrPageBudgetExhausted, r.s.PageNumber))
	}

	if err := r.c.pacer.Wait(ctx); err != nil {
		return r.fail(err)
	}

	before, err := r.c.probe.Capture(ctx, r.nav)
	if err != nil {
		if ctx.Err() != nil {
			return r.fail(ctx.Err())
		}
		return r.recover(ctx, StaleTransition, err)
	}
	if err := next.ScrollIntoView(ctx); err != nil {
		r.log.Debug("scroll to next control failed", "error", err)
	}
	if err := next.Click(ctx); err != nil {
		if ctx.Err() != nil {
			return r.fail(ctx.Err())
		}
		return r.recover(ctx, StaleTransition, fmt.Errorf("clicking next: %w", err))
	}

	changed, err := r.c.probe.WaitForChange(ctx, r.nav, before)
	if err != nil {
		if ctx.Err() != nil {
			return r.fail(ctx.Err())
		}
		return r.recover(ctx, StaleTransition, err)
	}
	if !changed {
		return r.recover(ctx, StaleTransition, ErrStaleTransition)
	}

	r.s.RetryCount = 0
	r.s.PageNumber++
	r.log.Debug("advanced", "page", r.s.PageNumber)
	return stateAwaitRender
}

// recover consults the retry policy after a failed transition. A retry
// waits, reloads and renders again; already collected items are then
// skipped by the dedup set.
func (r *run) recover(ctx context.Context, class FailureClass, cause error) state {
	d := r.c.retry.Decide(class, r.s.RetryCount)
	if !d.Retry {
		r.log.Debug("giving up", "failure", class, "error", cause)
		return r.fail(fmt.Errorf("%w: %w", ErrRetryBudgetExhausted, class.Err()))
	}
	r.s.RetryCount++
	r.log.Warn("retrying",
		"failure", class,
		"attempt", r.s.RetryCount,
		"max", r.c.retry.Ceiling,
		"delay", d.Delay,
		"page", r.s.PageNumber,
		"error", cause)

	if err := sleep(ctx, d.Delay); err != nil {
		return r.fail(err)
	}
	if err := r.nav.Reload(ctx); err != nil {
		if ctx.Err() != nil {
			return r.fail(ctx.Err())
		}
		if errors.Is(err, navigator.ErrTimeout) {
			r.log.Debug("reload timed out", "error", err)
		} else {
			r.log.Warn("reload failed", "error", err)
		}
	}
	return stateAwaitRender
}
