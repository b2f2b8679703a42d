package crawler

import "errors"

// Error types for distinguishing why a run stopped.
// Check with errors.Is(result.Reason, crawler.ErrRetryBudgetExhausted).
var (
	// ErrRenderTimeout indicates the result list did not render in time.
	ErrRenderTimeout = errors.New("result list did not render")
	// ErrStaleTransition indicates clicking next left the same page on screen.
	ErrStaleTransition = errors.New("page did not change after clicking next")
	// ErrMissingPaginationControl indicates no next-page control was found.
	// Runs that end this way still succeed.
	ErrMissingPaginationControl = errors.New("next page control not found")
	// ErrRetryBudgetExhausted indicates a transition failed more often than
	// the retry ceiling allows.
	ErrRetryBudgetExhausted = errors.New("retry budget exhausted")
	// ErrPageBudgetExhausted indicates the page or iteration ceiling was hit.
	ErrPageBudgetExhausted = errors.New("page budget exhausted")
)
