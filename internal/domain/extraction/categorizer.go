package extraction

import (
	"regexp"
	"sort"
	"strings"
)

var (
	reDateLikeName  = regexp.MustCompile(`^\d{1,2}[/-]\d{1,2}[/-]\d{2,4}`)
	reQtyPriceStart = regexp.MustCompile(`^\d+(\.\d+)?[xX]`)
)

// keywordRule is one compiled keyword. Multi-word keywords match as
// substrings; single-word keywords only match on word boundaries so that
// "ham" never fires inside "shampoo".
type keywordRule struct {
	keyword string
	re      *regexp.Regexp // nil for multi-word keywords
}

type categoryRule struct {
	name     string
	keywords []keywordRule
}

// Categorizer maps free-text item names to the fixed taxonomy. The rule
// table is compiled once at construction; Categorize is deterministic, does
// no I/O and is safe for concurrent use.
type Categorizer struct {
	rules []categoryRule
}

// NewCategorizer compiles the taxonomy into an ordered rule table. Within a
// category, keywords are sorted longest-first so that a more specific
// multi-word keyword ("greek yogurt") is tried before a shorter one
// ("yogurt") that would otherwise pre-empt it.
func NewCategorizer() *Categorizer {
	taxonomy := Taxonomy()
	rules := make([]categoryRule, 0, len(taxonomy))
	for _, cat := range taxonomy {
		keywords := make([]string, len(cat.Keywords))
		copy(keywords, cat.Keywords)
		sort.SliceStable(keywords, func(i, j int) bool {
			return len(keywords[i]) > len(keywords[j])
		})

		compiled := make([]keywordRule, 0, len(keywords))
		for _, kw := range keywords {
			rule := keywordRule{keyword: kw}
			if !strings.Contains(kw, " ") {
				rule.re = regexp.MustCompile(`\b` + regexp.QuoteMeta(kw) + `\b`)
			}
			compiled = append(compiled, rule)
		}
		rules = append(rules, categoryRule{name: cat.Name, keywords: compiled})
	}
	return &Categorizer{rules: rules}
}

// Categorize returns the category for an item name, or Uncategorized when
// the name is empty, too short, purely numeric, date-like, a quantity-price
// shorthand, or contains a security-sensitive keyword.
func (c *Categorizer) Categorize(name string) string {
	lower := strings.ToLower(strings.TrimSpace(name))
	if len(lower) < 2 {
		return Uncategorized
	}
	if isNumericName(lower) ||
		reDateLikeName.MatchString(lower) ||
		reQtyPriceStart.MatchString(lower) ||
		strings.Contains(lower, "password") ||
		strings.Contains(lower, "pin") {
		return Uncategorized
	}

	for _, cat := range c.rules {
		for _, kw := range cat.keywords {
			if kw.re != nil {
				if kw.re.MatchString(lower) {
					return cat.name
				}
			} else if strings.Contains(lower, kw.keyword) {
				return cat.name
			}
		}
	}
	return Uncategorized
}

// isNumericName reports whether a name is just digits once separators are
// stripped, e.g. "1234" or "1,234.00".
func isNumericName(s string) bool {
	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
