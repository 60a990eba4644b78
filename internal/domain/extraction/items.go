package extraction

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	reQtyShorthand = regexp.MustCompile(`^\d+(\.\d+)?[xX]\s*\$?\s*\d+`)
	reBareNumber   = regexp.MustCompile(`^\s*\$?\s*\d{1,2}(?:[.,]\d{3})*(?:\.\d{2})?\s*$`)
	reLeadingDate  = regexp.MustCompile(`^\d{1,2}[/-]`)
)

// ExtractItems scans every line against the profile's ordered pattern set
// and returns the items that survive the noise filters, the post-match name
// validation and the price sanity bound.
func ExtractItems(lines []string, p *Profile, cat *Categorizer, maxPrice decimal.Decimal) []ExtractedItem {
	var items []ExtractedItem
	for _, raw := range lines {
		line := strings.TrimSpace(raw)
		if item, ok := extractItemLine(line, p, cat, maxPrice); ok {
			items = append(items, item)
		}
	}
	return items
}

// extractItemLine runs the full rejection pipeline for one line and, when a
// pattern matches, builds the item.
func extractItemLine(line string, p *Profile, cat *Categorizer, maxPrice decimal.Decimal) (ExtractedItem, bool) {
	if len(line) < 3 {
		return ExtractedItem{}, false
	}
	lower := strings.ToLower(line)
	if p.IsNoise(lower) {
		return ExtractedItem{}, false
	}
	// A quantity-price shorthand standing alone ("2x $5") is noise, and so
	// is a line that is just a bare number with no item name.
	if reQtyShorthand.MatchString(line) || reBareNumber.MatchString(line) {
		return ExtractedItem{}, false
	}

	for _, pattern := range p.ItemPatterns {
		m := pattern.re.FindStringSubmatch(line)
		if m == nil {
			continue
		}

		name := strings.TrimSpace(m[1])
		// The pattern matched noise, not a real item.
		if len(name) < 2 || isNumericName(strings.ToLower(name)) || reLeadingDate.MatchString(name) {
			return ExtractedItem{}, false
		}

		quantity := decimal.NewFromInt(1)
		var price decimal.Decimal
		var ok bool
		if pattern.HasQuantity {
			if quantity, ok = parseAmount(m[2]); !ok || quantity.Sign() <= 0 {
				return ExtractedItem{}, false
			}
			if price, ok = parseAmount(m[3]); !ok {
				return ExtractedItem{}, false
			}
		} else if price, ok = parseAmount(m[2]); !ok {
			return ExtractedItem{}, false
		}

		total := price.Mul(quantity).Round(2)

		// Sanity bound: OCR misreads produce absurd values. This is a
		// heuristic limit on receipt-scale prices, not a business rule.
		if price.Sign() <= 0 || price.GreaterThanOrEqual(maxPrice) || total.GreaterThanOrEqual(maxPrice) {
			return ExtractedItem{}, false
		}

		return NewItem(name, quantity, price, total, cat.Categorize(name)), true
	}
	return ExtractedItem{}, false
}
