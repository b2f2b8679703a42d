package crawler

import (
	"fmt"
	"net/url"
	"strings"
)

// SearchTarget is one keyword search over a range of award years.
type SearchTarget struct {
	Keyword   string `validate:"required"`
	StartYear int
	EndYear   int `validate:"gtefield=StartYear"`
}

// Validate checks the target's year range and keyword.
func (t SearchTarget) Validate() error {
	return validateStruct("search target", t)
}

// URL builds the listing URL for the target under base.
func (t SearchTarget) URL(base string) (string, error) {
	u, err := url.Parse(strings.TrimRight(base, "/") + "/fund/list")
	if err != nil {
		return "", fmt.Errorf("invalid base url %q: %w", base, err)
	}
	q := url.Values{}
	q.Set("keyword", t.Keyword)
	q.Set("searchtype", fmt.Sprintf("(立项年份=%d-%d)", t.StartYear, t.EndYear))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (t SearchTarget) String() string {
	return fmt.Sprintf("%s %d-%d", t.Keyword, t.StartYear, t.EndYear)
}
