package browser

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"github.com/jmylchreest/fundscrape/internal/logger"
	"github.com/jmylchreest/fundscrape/internal/navigator"
)

// Browser owns one Chrome process and the single tab the crawler drives.
type Browser struct {
	config      Config
	cancelAlloc context.CancelFunc
	tab         context.Context
	cancelTab   context.CancelFunc
}

// Launch starts Chrome and opens a blank tab.
func Launch(ctx context.Context, cfg Config) (*Browser, error) {
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultConfig().UserAgent
	}
	if cfg.ActionTimeout == 0 {
		cfg.ActionTimeout = DefaultConfig().ActionTimeout
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, allocatorOptions(cfg)...)
	tab, cancelTab := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(func(format string, args ...any) {
			logger.Debug("chromedp", "msg", fmt.Sprintf(format, args...))
		}),
	)

	actions := []chromedp.Action{network.Enable()}
	if cfg.Stealth {
		actions = append(actions, injectStealth())
	}
	if err := chromedp.Run(tab, actions...); err != nil {
		cancelTab()
		cancelAlloc()
		return nil, fmt.Errorf("starting chrome: %w", err)
	}

	logger.Debug("browser started",
		"headless", cfg.Headless,
		"stealth", cfg.Stealth,
		"cookie_file", cfg.CookieFile)

	return &Browser{
		config:      cfg,
		cancelAlloc: cancelAlloc,
		tab:         tab,
		cancelTab:   cancelTab,
	}, nil
}

// Navigator returns a Navigator bound to the browser's tab.
func (b *Browser) Navigator() *Navigator {
	return &Navigator{tab: b.tab, config: b.config}
}

// Close shuts the tab and the browser process down.
func (b *Browser) Close() error {
	if b.cancelTab != nil {
		b.cancelTab()
	}
	if b.cancelAlloc != nil {
		b.cancelAlloc()
	}
	return nil
}

// Navigator implements navigator.Navigator over a chromedp tab.
type Navigator struct {
	tab    context.Context
	config Config
}

var _ navigator.Navigator = (*Navigator)(nil)

// run executes actions on the tab, bounded by ctx's cancellation and
// deadline.
func (n *Navigator) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithCancel(n.tab)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()
	if deadline, ok := ctx.Deadline(); ok {
		var cancelDeadline context.CancelFunc
		runCtx, cancelDeadline = context.WithDeadline(runCtx, deadline)
		defer cancelDeadline()
	}

	err := chromedp.Run(runCtx, actions...)
	if err != nil && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

// runAction is run bounded by the configured single-action timeout, which
// is reported as onTimeout.
func (n *Navigator) runAction(ctx context.Context, onTimeout error, actions ...chromedp.Action) error {
	actx, cancel := context.WithTimeout(ctx, n.config.ActionTimeout)
	defer cancel()
	err := n.run(actx, actions...)
	if err != nil && ctx.Err() == nil && actx.Err() != nil {
		return fmt.Errorf("%w: no response after %s", onTimeout, n.config.ActionTimeout)
	}
	return mapNodeError(err)
}

// Navigate loads url and waits for the document to be ready.
func (n *Navigator) Navigate(ctx context.Context, url string) error {
	if n.config.NavigateTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, n.config.NavigateTimeout)
		defer cancel()
	}
	logger.DebugContext(ctx, "navigating", "url", url)
	return n.run(ctx, chromedp.Navigate(url), chromedp.WaitReady("body", chromedp.ByQuery))
}

// Reload reloads the tab.
func (n *Navigator) Reload(ctx context.Context) error {
	if n.config.NavigateTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, n.config.NavigateTimeout)
		defer cancel()
	}
	return n.run(ctx, chromedp.Reload())
}

// WaitFor waits for selector to be present in the DOM.
func (n *Navigator) WaitFor(ctx context.Context, selector string, timeout time.Duration) error {
	wctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	err := n.run(wctx, chromedp.WaitReady(selector, chromedp.ByQuery))
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if errors.Is(err, context.DeadlineExceeded) {
		n.saveScreenshot()
		return fmt.Errorf("%w: %s after %s", navigator.ErrTimeout, selector, timeout)
	}
	return err
}

// QueryAll returns every node currently matching selector, without waiting.
func (n *Navigator) QueryAll(ctx context.Context, selector string) ([]navigator.Handle, error) {
	var nodes []*cdp.Node
	if err := n.runAction(ctx, navigator.ErrTimeout, chromedp.Nodes(selector, &nodes, chromedp.ByQueryAll, chromedp.AtLeast(0))); err != nil {
		return nil, err
	}
	handles := make([]navigator.Handle, 0, len(nodes))
	for _, node := range nodes {
		handles = append(handles, &nodeHandle{n: n, node: node})
	}
	return handles, nil
}

// Query returns the first node matching selector, without waiting.
func (n *Navigator) Query(ctx context.Context, selector string) (navigator.Handle, bool, error) {
	var nodes []*cdp.Node
	if err := n.runAction(ctx, navigator.ErrTimeout, chromedp.Nodes(selector, &nodes, chromedp.ByQuery, chromedp.AtLeast(0))); err != nil {
		return nil, false, err
	}
	if len(nodes) == 0 {
		return nil, false, nil
	}
	return &nodeHandle{n: n, node: nodes[0]}, true, nil
}

func (n *Navigator) saveScreenshot() {
	dir := n.config.ScreenshotDir
	if dir == "" {
		return
	}
	shot := captureScreenshot(n.tab)
	if shot == nil {
		return
	}
	path := filepath.Join(dir, fmt.Sprintf("fundscrape-debug-%d.png", time.Now().UnixNano()))
	if err := os.WriteFile(path, shot, 0o644); err != nil {
		logger.Debug("debug screenshot failed", "error", err)
		return
	}
	logger.Debug("debug screenshot saved", "path", path)
}

// nodeHandle addresses one DOM node by its node ID. The ID goes stale when
// the page re-renders the element.
type nodeHandle struct {
	n    *Navigator
	node *cdp.Node
}

func (h *nodeHandle) ids() []cdp.NodeID {
	return []cdp.NodeID{h.node.NodeID}
}

func (h *nodeHandle) Text(ctx context.Context) (string, error) {
	var text string
	if err := h.n.runAction(ctx, navigator.ErrDetached, chromedp.TextContent(h.ids(), &text, chromedp.ByNodeID)); err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

func (h *nodeHandle) HTML(ctx context.Context) (string, error) {
	var html string
	if err := h.n.runAction(ctx, navigator.ErrDetached, chromedp.OuterHTML(h.ids(), &html, chromedp.ByNodeID)); err != nil {
		return "", err
	}
	return html, nil
}

func (h *nodeHandle) Attribute(ctx context.Context, name string) (string, bool, error) {
	var value string
	var ok bool
	if err := h.n.runAction(ctx, navigator.ErrDetached, chromedp.AttributeValue(h.ids(), name, &value, &ok, chromedp.ByNodeID)); err != nil {
		return "", false, err
	}
	return value, ok, nil
}

func (h *nodeHandle) Click(ctx context.Context) error {
	return h.n.runAction(ctx, navigator.ErrDetached, chromedp.Click(h.ids(), chromedp.ByNodeID))
}

func (h *nodeHandle) ScrollIntoView(ctx context.Context) error {
	return h.n.runAction(ctx, navigator.ErrDetached, chromedp.ScrollIntoView(h.ids(), chromedp.ByNodeID))
}

// mapNodeError reports protocol errors about vanished nodes as
// navigator.ErrDetached.
func mapNodeError(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	if strings.Contains(msg, "No node with given id") ||
		strings.Contains(msg, "Could not find node") ||
		strings.Contains(msg, "Node is detached") {
		return fmt.Errorf("%w: %v", navigator.ErrDetached, err)
	}
	return err
}
