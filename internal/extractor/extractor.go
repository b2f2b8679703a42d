// Package extractor parses rendered result list items into Records.
//
// Every detail field is matched independently from the item's text
// segments using a declarative rule table, so markers appearing in an
// unexpected order only cost the affected field.
package extractor

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/jmylchreest/fundscrape/internal/navigator"
)

// Selectors inside a single list item.
const (
	TitleSelector   = ".title"
	SegmentSelector = ".item-wrap .item"
	segmentFallback = ".item"
)

// favoriteMarker is the bookmark button label rendered after the title.
const favoriteMarker = "收藏"

// placeholderBlank is what the site prints for an empty declared field.
const placeholderBlank = "--"

type fieldRule struct {
	cue     string
	pattern *regexp.Regexp
	apply   func(r *Record, value string)
}

var fieldRules = []fieldRule{
	{
		cue:     "受资机构",
		pattern: regexp.MustCompile(`受资机构[：:]\s*(.+?)(?:\s*¥|\s*金额)`),
		apply:   func(r *Record, v string) { r.Institution = v },
	},
	{
		cue:     "受资机构",
		pattern: regexp.MustCompile(`(?:¥|金额[：:])\s*([\d.]+)\s*万元`),
		apply:   func(r *Record, v string) { r.Amount = v + "万元" },
	},
	{
		cue:     "负责人",
		pattern: regexp.MustCompile(`负责人[：:]\s*(.+?)\s*立项年份`),
		apply:   func(r *Record, v string) { r.PI = v },
	},
	{
		cue:     "负责人",
		pattern: regexp.MustCompile(`立项年份[：:]\s*(\d{4})`),
		apply:   func(r *Record, v string) { r.Year = v },
	},
	{
		cue:     "资助机构",
		pattern: regexp.MustCompile(`资助机构[：:]\s*(.+?)\s*申报领域`),
		apply:   func(r *Record, v string) { r.Funder = v },
	},
	{
		cue:     "资助机构",
		pattern: regexp.MustCompile(`申报领域[：:]*\s*(.+?)$`),
		apply: func(r *Record, v string) {
			if v == placeholderBlank {
				v = ""
			}
			r.Field = &v
		},
	},
}

var totalPattern = regexp.MustCompile(`项目数\s*(\d+)`)

// Extract reads a list item's markup through the navigator handle and
// parses it. A record with an empty Title must be discarded by the caller.
func Extract(ctx context.Context, item navigator.Handle) (Record, error) {
	html, err := item.HTML(ctx)
	if err != nil {
		return Record{}, fmt.Errorf("reading item markup: %w", err)
	}
	return FromHTML(html)
}

// FromHTML parses one list item from its outer HTML.
func FromHTML(html string) (Record, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return Record{}, fmt.Errorf("parsing item markup: %w", err)
	}

	var rec Record
	rec.Title = CleanTitle(doc.Find(TitleSelector).First().Text())

	segments := doc.Find(SegmentSelector)
	if segments.Length() == 0 {
		segments = doc.Find(segmentFallback)
	}
	segments.Each(func(_ int, s *goquery.Selection) {
		applyRules(&rec, collapseSpace(s.Text()))
	})

	return rec, nil
}

func applyRules(rec *Record, text string) {
	for _, rule := range fieldRules {
		if !strings.Contains(text, rule.cue) {
			continue
		}
		m := rule.pattern.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		rule.apply(rec, strings.TrimSpace(m[1]))
	}
}

// CleanTitle trims a raw title and cuts the trailing favorite button label.
func CleanTitle(raw string) string {
	title := collapseSpace(raw)
	if i := strings.Index(title, favoriteMarker); i >= 0 {
		title = title[:i]
	}
	return strings.TrimSpace(title)
}

// NormalizeTitle is the fingerprint normalisation used for deduplication.
func NormalizeTitle(title string) string {
	return collapseSpace(title)
}

// ParseReportedTotal reads the site's "项目数 N" summary. The boolean is
// false when the text carries no usable count.
func ParseReportedTotal(text string) (int, bool) {
	m := totalPattern.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
