package crawler

import "time"

// FailureClass identifies which transition failed.
type FailureClass int

const (
	// RenderTimeout is a result list that never appeared.
	RenderTimeout FailureClass = iota
	// StaleTransition is a next click that did not change the page.
	StaleTransition
)

func (c FailureClass) String() string {
	switch c {
	case RenderTimeout:
		return "render_timeout"
	case StaleTransition:
		return "stale_transition"
	default:
		return "unknown"
	}
}

// Err returns the sentinel error for the class.
func (c FailureClass) Err() error {
	if c == StaleTransition {
		return ErrStaleTransition
	}
	return ErrRenderTimeout
}

// Decision is the outcome of consulting a RetryPolicy.
type Decision struct {
	Retry bool
	Delay time.Duration
}

// RetryPolicy allows a fixed number of retries per transition, each after
// the same fixed delay.
type RetryPolicy struct {
	Ceiling int
	Delay   time.Duration
}

// Decide reports whether a failure of class should be retried given the
// number of retries already spent on the current transition.
func (p RetryPolicy) Decide(_ FailureClass, retryCount int) Decision {
	if retryCount < p.Ceiling {
		return Decision{Retry: true, Delay: p.Delay}
	}
	return Decision{}
}
