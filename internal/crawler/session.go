package crawler

import (
	"github.com/google/uuid"

	"github.com/jmylchreest/fundscrape/internal/extractor"
)

// Session is the mutable state of one run. It is owned by a single
// Controller.Run call and never shared.
type Session struct {
	ID         string
	PageNumber int
	RetryCount int
	Seen       *Fingerprints
	Collected  []extractor.Record

	ReportedTotal int
	TotalKnown    bool

	// Iterations counts render waits, retries included.
	Iterations int
}

// NewSession starts a session on page one.
func NewSession() *Session {
	return &Session{
		ID:         uuid.NewString(),
		PageNumber: 1,
		Seen:       NewFingerprints(),
	}
}

// Accept appends rec unless it has no title or was already collected.
func (s *Session) Accept(rec extractor.Record) bool {
	if !s.Seen.Add(rec.Fingerprint()) {
		return false
	}
	s.Collected = append(s.Collected, rec)
	return true
}

// SetReportedTotal records the site's total the first time it is known.
func (s *Session) SetReportedTotal(n int) {
	if s.TotalKnown {
		return
	}
	s.ReportedTotal = n
	s.TotalKnown = true
}
