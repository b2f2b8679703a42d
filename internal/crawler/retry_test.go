package crawler

import (
	"errors"
	"testing"
	"time"
)

// --- RetryPolicy Tests ---

func TestRetryPolicy_Decide(t *testing.T) {
	p := RetryPolicy{Ceiling: 3, Delay: 3 * time.Second}

	tests := []struct {
		count int
		retry bool
	}{
		{0, true},
		{1, true},
		{2, true},
		{3, false},
		{4, false},
	}
	for _, class := range []FailureClass{RenderTimeout, StaleTransition} {
		for _, tt := range tests {
			d := p.Decide(class, tt.count)
			if d.Retry != tt.retry {
				t.Errorf("Decide(%v, %d).Retry = %v, want %v", class, tt.count, d.Retry, tt.retry)
			}
			if d.Retry && d.Delay != 3*time.Second {
				t.Errorf("Decide(%v, %d).Delay = %v, want fixed 3s", class, tt.count, d.Delay)
			}
		}
	}
}

func TestRetryPolicy_ZeroCeiling(t *testing.T) {
	if (RetryPolicy{}).Decide(RenderTimeout, 0).Retry {
		t.Error("a zero ceiling should never retry")
	}
}

func TestFailureClass(t *testing.T) {
	if RenderTimeout.String() != "render_timeout" || StaleTransition.String() != "stale_transition" {
		t.Errorf("unexpected names %q, %q", RenderTimeout, StaleTransition)
	}
	if !errors.Is(RenderTimeout.Err(), ErrRenderTimeout) {
		t.Error("RenderTimeout should map to ErrRenderTimeout")
	}
	if !errors.Is(StaleTransition.Err(), ErrStaleTransition) {
		t.Error("StaleTransition should map to ErrStaleTransition")
	}
}

// --- IsDone Tests ---

func TestIsDone(t *testing.T) {
	tests := []struct {
		name      string
		collected int
		total     int
		known     bool
		want      bool
	}{
		{"unknown total", 500, 0, false, false},
		{"zero total", 0, 0, true, false},
		{"below total", 44, 45, true, false},
		{"at total", 45, 45, true, true},
		{"over total", 60, 45, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsDone(tt.collected, tt.total, tt.known); got != tt.want {
				t.Errorf("IsDone(%d, %d, %v) = %v, want %v", tt.collected, tt.total, tt.known, got, tt.want)
			}
		})
	}
}

func TestIsDone_Monotonic(t *testing.T) {
	done := false
	for n := 0; n <= 100; n++ {
		now := IsDone(n, 45, true)
		if done && !now {
			t.Fatalf("IsDone flipped back to false at %d", n)
		}
		done = now
	}
}
