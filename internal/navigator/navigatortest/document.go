// Package navigatortest provides a navigator.Navigator over static HTML
// snapshots for tests.
package navigatortest

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/jmylchreest/fundscrape/internal/logger"
	"github.com/jmylchreest/fundscrape/internal/navigator"
)

// ErrNotFound indicates a page source has nothing for the requested URL.
var ErrNotFound = errors.New("page not found")

// PageSource loads the HTML served at url.
type PageSource func(ctx context.Context, url string) (string, error)

// Pages returns a PageSource serving fixed HTML per URL.
func Pages(pages map[string]string) PageSource {
	return func(_ context.Context, u string) (string, error) {
		html, ok := pages[u]
		if !ok {
			return "", fmt.Errorf("%w: %s", ErrNotFound, u)
		}
		return html, nil
	}
}

// Document is a navigator.Navigator over static HTML snapshots parsed with goquery.
// A snapshot never changes on its own, so WaitFor answers immediately.
// Clicking an element with an href loads that URL from the source; other
// clicks go to OnClick, or do nothing when it is nil.
type Document struct {
	source PageSource
	url    string
	doc    *goquery.Document
	gen    int

	// OnClick handles clicks on elements without a followable href.
	OnClick func(ctx context.Context, d *Document, h navigator.Handle) error
}

var _ navigator.Navigator = (*Document)(nil)

// NewDocument creates a Document navigator backed by source.
func NewDocument(source PageSource) *Document {
	return &Document{source: source}
}

// URL returns the address of the current snapshot.
func (d *Document) URL() string { return d.url }

// Navigate loads url from the page source.
func (d *Document) Navigate(ctx context.Context, u string) error {
	if d.source == nil {
		return fmt.Errorf("%w: no page source", ErrNotFound)
	}
	html, err := d.source(ctx, u)
	if err != nil {
		return err
	}
	if err := d.SetHTML(html); err != nil {
		return err
	}
	d.url = u
	logger.Debug("document navigated", "url", u, "size", len(html))
	return nil
}

// SetHTML replaces the current snapshot. Handles read from the previous
// snapshot become detached.
func (d *Document) SetHTML(html string) error {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return fmt.Errorf("parsing page: %w", err)
	}
	d.doc = doc
	d.gen++
	return nil
}

// Reload loads the current URL again.
func (d *Document) Reload(ctx context.Context) error {
	if d.url == "" {
		return nil
	}
	return d.Navigate(ctx, d.url)
}

// WaitFor reports whether selector matches the current snapshot.
func (d *Document) WaitFor(ctx context.Context, selector string, _ time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if d.doc == nil || d.doc.Find(selector).Length() == 0 {
		return fmt.Errorf("%w: %s", navigator.ErrTimeout, selector)
	}
	return nil
}

// QueryAll returns every element matching selector.
func (d *Document) QueryAll(ctx context.Context, selector string) ([]navigator.Handle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if d.doc == nil {
		return nil, nil
	}
	var hs []navigator.Handle
	d.doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
		hs = append(hs, &docHandle{d: d, sel: s, gen: d.gen})
	})
	return hs, nil
}

// Query returns the first element matching selector.
func (d *Document) Query(ctx context.Context, selector string) (navigator.Handle, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	if d.doc == nil {
		return nil, false, nil
	}
	s := d.doc.Find(selector).First()
	if s.Length() == 0 {
		return nil, false, nil
	}
	return &docHandle{d: d, sel: s, gen: d.gen}, true, nil
}

type docHandle struct {
	d   *Document
	sel *goquery.Selection
	gen int
}

func (h *docHandle) check() error {
	if h.gen != h.d.gen {
		return navigator.ErrDetached
	}
	return nil
}

func (h *docHandle) Text(_ context.Context) (string, error) {
	if err := h.check(); err != nil {
		return "", err
	}
	return strings.TrimSpace(h.sel.Text()), nil
}

func (h *docHandle) HTML(_ context.Context) (string, error) {
	if err := h.check(); err != nil {
		return "", err
	}
	return goquery.OuterHtml(h.sel)
}

func (h *docHandle) Attribute(_ context.Context, name string) (string, bool, error) {
	if err := h.check(); err != nil {
		return "", false, err
	}
	v, ok := h.sel.Attr(name)
	return v, ok, nil
}

func (h *docHandle) ScrollIntoView(_ context.Context) error {
	return h.check()
}

func (h *docHandle) Click(ctx context.Context) error {
	if err := h.check(); err != nil {
		return err
	}
	if target, ok := h.followable(); ok {
		return h.d.Navigate(ctx, target)
	}
	if h.d.OnClick != nil {
		return h.d.OnClick(ctx, h.d, h)
	}
	return nil
}

// followable resolves the element's href against the current URL.
func (h *docHandle) followable() (string, bool) {
	href, exists := h.sel.Attr("href")
	if !exists || href == "" {
		return "", false
	}
	if strings.HasPrefix(href, "#") || strings.HasPrefix(href, "javascript:") {
		return "", false
	}
	link, err := url.Parse(href)
	if err != nil {
		return "", false
	}
	if !link.IsAbs() {
		base, err := url.Parse(h.d.url)
		if err != nil {
			return "", false
		}
		link = base.ResolveReference(link)
	}
	link.Fragment = ""
	return link.String(), true
}
