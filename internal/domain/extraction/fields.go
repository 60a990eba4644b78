package extraction

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	reDateYearFirst = regexp.MustCompile(`(\d{4})[/-](\d{1,2})[/-](\d{1,2})`)
	reDateShort     = regexp.MustCompile(`(\d{1,2})[/-](\d{1,2})[/-](\d{2,4})`)
	reDateTextual   = regexp.MustCompile(`([A-Za-z]{3,9})\s+(\d{1,2}),\s+(\d{4})`)

	reLabeledTotal = regexp.MustCompile(`(?i)(?:total|grand\s+total|amount\s+due|balance)[:\s]*\$?\s*(\d{1,3}(?:[.,]\d{3})*(?:\.\d{2})?)`)
	reMarkedAmount = regexp.MustCompile(`(?i)\$\s*(\d{1,3}(?:[.,]\d{3})*(?:\.\d{2})?)\s*(?:total|due|amount)?`)
)

// totalScanDepth is how many trailing lines the total extractor inspects;
// totals are expected near the end of a receipt.
const totalScanDepth = 10

// ExtractShop scans the first lines of the receipt for a shop name. A line
// containing a retail-indicator keyword wins immediately; otherwise the
// first sufficiently long line that is not a metadata label is kept as a
// fallback candidate while scanning continues.
func ExtractShop(lines []string, p *Profile) string {
	shop := UnknownShop
	depth := p.ShopScanDepth
	if depth > len(lines) {
		depth = len(lines)
	}

	for _, raw := range lines[:depth] {
		line := strings.TrimSpace(raw)
		if line == "" || len(line) <= 3 {
			continue
		}
		lower := strings.ToLower(line)
		if p.SkipMetadataLines && containsAny(lower, p.MetadataKeywords) {
			continue
		}
		if containsAny(lower, p.RetailKeywords) {
			return line
		}
		if shop == UnknownShop && len(line) > 5 &&
			(p.SkipMetadataLines || !containsAny(lower, p.MetadataKeywords)) {
			shop = line
		}
	}
	return shop
}

// ExtractDate scans lines in document order and returns the first date any
// pattern family parses. It falls back to now when nothing parses; that is a
// soft failure, not an error.
func ExtractDate(lines []string, now time.Time) time.Time {
	for _, line := range lines {
		if d, ok := tryParseDate(line); ok {
			return d
		}
	}
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

// tryParseDate attempts the three pattern families against one line. The
// four-digit-year form is tried first so "2025-09-02" is never carved up by
// the short numeric pattern.
func tryParseDate(line string) (time.Time, bool) {
	if m := reDateYearFirst.FindStringSubmatch(line); m != nil {
		if d, ok := calendarDate(m[1], m[2], m[3]); ok {
			return d, true
		}
	}
	if m := reDateShort.FindStringSubmatch(line); m != nil {
		first, second, year := m[1], m[2], m[3]
		if len(year) == 2 {
			year = "20" + year
		}
		// Day-first only when the leading value cannot be a month;
		// ambiguous dates default to month-first.
		if v, err := strconv.Atoi(first); err == nil && v > 12 {
			if d, ok := calendarDate(year, second, first); ok {
				return d, true
			}
		} else if d, ok := calendarDate(year, first, second); ok {
			return d, true
		}
	}
	if m := reDateTextual.FindStringSubmatch(line); m != nil {
		candidate := fmt.Sprintf("%s %s, %s", m[1], m[2], m[3])
		for _, layout := range []string{"January 2, 2006", "Jan 2, 2006"} {
			if d, err := time.Parse(layout, candidate); err == nil {
				return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC), true
			}
		}
	}
	return time.Time{}, false
}

// calendarDate validates year/month/day strings into a real calendar date.
func calendarDate(year, month, day string) (time.Time, bool) {
	y, err := strconv.Atoi(year)
	if err != nil {
		return time.Time{}, false
	}
	m, err := strconv.Atoi(month)
	if err != nil || m < 1 || m > 12 {
		return time.Time{}, false
	}
	d, err := strconv.Atoi(day)
	if err != nil || d < 1 || d > 31 {
		return time.Time{}, false
	}
	t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	if t.Day() != d || t.Month() != time.Month(m) {
		return time.Time{}, false // e.g. February 30th
	}
	return t, true
}

// ExtractTotal scans the last lines for a declared total. It returns zero
// when nothing matches; the caller derives the total from the item sum.
func ExtractTotal(lines []string) decimal.Decimal {
	start := len(lines) - totalScanDepth
	if start < 0 {
		start = 0
	}
	for _, line := range lines[start:] {
		for _, re := range []*regexp.Regexp{reLabeledTotal, reMarkedAmount} {
			m := re.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			if amount, ok := parseAmount(m[1]); ok && amount.Sign() > 0 {
				return amount
			}
		}
	}
	return decimal.Zero
}

// parseAmount strips thousands separators and parses a decimal value.
func parseAmount(s string) (decimal.Decimal, bool) {
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, " ", "")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
