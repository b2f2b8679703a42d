package crawler

import "github.com/jmylchreest/fundscrape/internal/extractor"

// Fingerprints is the set of normalized titles already collected.
// It is owned by a single Session and is not safe for concurrent use.
type Fingerprints struct {
	seen map[string]struct{}
}

// NewFingerprints creates an empty set.
func NewFingerprints() *Fingerprints {
	return &Fingerprints{seen: make(map[string]struct{})}
}

// Add records title and reports whether it was new. Titles that
// normalize to nothing are never added.
func (f *Fingerprints) Add(title string) bool {
	key := extractor.NormalizeTitle(title)
	if key == "" {
		return false
	}
	if _, ok := f.seen[key]; ok {
		return false
	}
	f.seen[key] = struct{}{}
	return true
}
