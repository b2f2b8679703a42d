package crawler

import (
	"testing"

	"github.com/jmylchreest/fundscrape/internal/extractor"
)

// --- Fingerprints Tests ---

func TestFingerprints_Add(t *testing.T) {
	f := NewFingerprints()

	if !f.Add("固态电池 研究") {
		t.Error("Add() should return true for a new title")
	}
	if f.Add("固态电池 研究") {
		t.Error("Add() should return false for a duplicate")
	}
	if f.Add("  固态电池\t研究 ") {
		t.Error("Add() should treat whitespace variants as duplicates")
	}
	if !f.Add("固态电池研究") {
		t.Error("Add() should keep titles that differ in inner spacing apart")
	}
}

func TestFingerprints_RejectsBlank(t *testing.T) {
	f := NewFingerprints()
	if f.Add("") || f.Add("   ") {
		t.Error("blank titles should not be added")
	}
	if !f.Add("x") {
		t.Error("a rejected blank should leave the set usable")
	}
}

// --- Session Tests ---

func TestNewSession(t *testing.T) {
	s := NewSession()
	if s.PageNumber != 1 || s.RetryCount != 0 {
		t.Errorf("unexpected start state page=%d retry=%d", s.PageNumber, s.RetryCount)
	}
	if s.ID == "" || s.ID == NewSession().ID {
		t.Error("sessions should get distinct ids")
	}
}

func TestSession_Accept(t *testing.T) {
	s := NewSession()

	if s.Accept(extractor.Record{PI: "张三"}) {
		t.Error("untitled record should be rejected")
	}
	if !s.Accept(extractor.Record{Title: "A", Year: "2023"}) {
		t.Error("first record should be accepted")
	}
	if s.Accept(extractor.Record{Title: "A ", Year: "2024"}) {
		t.Error("duplicate title should be rejected")
	}
	if len(s.Collected) != 1 || s.Collected[0].Year != "2023" {
		t.Errorf("Collected = %+v", s.Collected)
	}
}

func TestSession_AcceptIdempotent(t *testing.T) {
	s := NewSession()
	batch := []extractor.Record{{Title: "A"}, {Title: "B"}, {Title: "C"}}
	for range 3 {
		for _, r := range batch {
			s.Accept(r)
		}
	}
	if len(s.Collected) != 3 {
		t.Errorf("re-extracting the same page added records: %d", len(s.Collected))
	}
}

func TestSession_SetReportedTotalOnce(t *testing.T) {
	s := NewSession()
	s.SetReportedTotal(45)
	s.SetReportedTotal(90)
	if !s.TotalKnown || s.ReportedTotal != 45 {
		t.Errorf("ReportedTotal = %d (known=%v), want first value kept", s.ReportedTotal, s.TotalKnown)
	}
}
