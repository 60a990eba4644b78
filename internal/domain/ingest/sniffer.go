package ingest

import (
	"encoding/csv"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// Format identifies which CSV schema an upload uses.
type Format int

const (
	FormatLegacy Format = iota
	FormatWide
)

func (f Format) String() string {
	if f == FormatWide {
		return "wide"
	}
	return "legacy"
}

// DetectFormat sniffs the schema from the header row. Any header that
// resembles "item name" marks the wide per-item export; everything else falls
// back to the legacy per-bill schema. Fuzzy matching absorbs export quirks
// like "Item  Name" or "Item Name ".
func DetectFormat(content string) Format {
	r := csv.NewReader(strings.NewReader(content))
	r.LazyQuotes = true
	r.TrimLeadingSpace = true
	headers, err := r.Read()
	if err != nil {
		return FormatLegacy
	}
	for _, h := range headers {
		h = strings.ToLower(strings.TrimSpace(h))
		if strings.Contains(h, "item") && fuzzy.Match("item name", h) {
			return FormatWide
		}
	}
	return FormatLegacy
}
