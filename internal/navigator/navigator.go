// Package navigator defines the query/wait/click facade the crawler uses
// to drive a rendered page, independent of the browser backend.
package navigator

import (
	"context"
	"errors"
	"time"
)

// Error types for distinguishing failure reasons.
// Check with errors.Is(err, navigator.ErrTimeout).
var (
	// ErrTimeout indicates a wait gave up before the selector appeared.
	ErrTimeout = errors.New("wait timed out")
	// ErrDetached indicates a handle outlived the page it was read from.
	ErrDetached = errors.New("element detached from page")
)

// Navigator exposes render/query/wait/click primitives over the live page.
type Navigator interface {
	// Navigate loads url in the current page.
	Navigate(ctx context.Context, url string) error

	// WaitFor blocks until selector matches or timeout elapses, returning
	// ErrTimeout in the latter case.
	WaitFor(ctx context.Context, selector string, timeout time.Duration) error

	// QueryAll returns every element currently matching selector.
	QueryAll(ctx context.Context, selector string) ([]Handle, error)

	// Query returns the first element matching selector, if any.
	Query(ctx context.Context, selector string) (Handle, bool, error)

	// Reload reloads the current page.
	Reload(ctx context.Context) error
}

// Handle is an opaque reference to one rendered element.
type Handle interface {
	Text(ctx context.Context) (string, error)
	HTML(ctx context.Context) (string, error)
	Attribute(ctx context.Context, name string) (string, bool, error)
	Click(ctx context.Context) error
	ScrollIntoView(ctx context.Context) error
}
