package crawler

import (
	"context"
	"strings"

	"github.com/jmylchreest/fundscrape/internal/navigator"
)

// ControlState describes the next-page control on the current page.
type ControlState int

const (
	ControlMissing ControlState = iota
	ControlDisabled
	ControlEnabled
)

func (s ControlState) String() string {
	switch s {
	case ControlDisabled:
		return "disabled"
	case ControlEnabled:
		return "enabled"
	default:
		return "missing"
	}
}

// PaginationSelector finds the next page control.
type PaginationSelector struct {
	Next navigator.Locator
}

// NewPaginationSelector creates a pagination selector.
func NewPaginationSelector(next navigator.Locator) *PaginationSelector {
	return &PaginationSelector{Next: next}
}

// FindNext locates the next control and reports whether it can be clicked.
// The handle is nil unless the state is ControlEnabled.
func (ps *PaginationSelector) FindNext(ctx context.Context, nav navigator.Navigator) (navigator.Handle, ControlState, error) {
	h, ok, err := ps.Next.First(ctx, nav)
	if err != nil || !ok {
		return nil, ControlMissing, err
	}
	disabled, err := isDisabled(ctx, h)
	if err != nil {
		return nil, ControlMissing, err
	}
	if disabled {
		return nil, ControlDisabled, nil
	}
	return h, ControlEnabled, nil
}

// isDisabled treats either a disabled attribute or a class name containing
// "disabled" as a disabled control.
func isDisabled(ctx context.Context, h navigator.Handle) (bool, error) {
	if _, ok, err := h.Attribute(ctx, "disabled"); err != nil || ok {
		return ok, err
	}
	class, _, err := h.Attribute(ctx, "class")
	if err != nil {
		return false, err
	}
	return strings.Contains(class, "disabled"), nil
}
