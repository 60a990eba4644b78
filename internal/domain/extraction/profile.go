package extraction

import (
	"regexp"

	"github.com/cloudflare/ahocorasick"
)

// ItemPattern is one line shape the item extractor recognizes. Group 1 is
// always the item name; with HasQuantity set, groups 2 and 3 are quantity
// and unit price, otherwise group 2 is the price.
type ItemPattern struct {
	re          *regexp.Regexp
	HasQuantity bool
}

// Profile parameterizes one extraction pass. The primary and enhanced passes
// share the whole pipeline and differ only in scan depth, keyword-list
// strictness and pattern permissiveness.
type Profile struct {
	Name string

	// Shop extraction.
	ShopScanDepth     int
	SkipMetadataLines bool // skip metadata lines even when they come first
	RetailKeywords    []string
	MetadataKeywords  []string

	// Item extraction.
	ItemPatterns []ItemPattern

	noise *ahocorasick.Matcher
}

// IsNoise reports whether a lower-cased line contains any block-listed
// header/footer keyword. The matcher runs all keywords in a single pass.
func (p *Profile) IsNoise(lower string) bool {
	return len(p.noise.Match([]byte(lower))) > 0
}

// PrimaryProfile is the strict first-pass configuration.
func PrimaryProfile() *Profile {
	return &Profile{
		Name:          "primary",
		ShopScanDepth: 10,
		RetailKeywords: []string{
			"store", "shop", "mart", "market", "supermarket", "retail", "grocery",
			"costco", "walmart", "target", "safeway", "kroger",
		},
		MetadataKeywords: []string{"date", "time", "invoice", "receipt"},
		ItemPatterns: []ItemPattern{
			// Explicit-quantity shapes come first so "Apple 2 x 1.50" is a
			// quantity line, not an item named "Apple 2 x".
			{re: regexp.MustCompile(`^(.+?)\s+(\d+(?:\.\d+)?)\s*[xX]\s*\$?\s*(\d+(?:\.\d+)?)\s*$`), HasQuantity: true},
			{re: regexp.MustCompile(`^(.+?)\s+[xX]\s*(\d+(?:\.\d+)?)\s+\$?\s*(\d+(?:\.\d+)?)\s*$`), HasQuantity: true},
			{re: regexp.MustCompile(`^(.+?)\s+\$\s*(\d+\.\d{2})\s*$`)},
			{re: regexp.MustCompile(`^(.+?)\s+(\d+\.\d{2})\s*\$?\s*$`)},
		},
		noise: ahocorasick.NewStringMatcher([]string{
			"item", "description", "qty", "quantity", "price", "total", "subtotal",
			"tax", "receipt", "invoice", "date", "time", "cashier", "register",
			"password", "pin", "card", "signature", "thank", "visit", "change",
			"cash", "tendered", "balance", "discount", "coupon", "voucher",
			"refund", "return", "exchange", "void", "cancelled", "transaction",
		}),
	}
}

// EnhancedProfile is the permissive retry configuration: deeper shop scan,
// shorter noise list, integer-only explicit quantities.
func EnhancedProfile() *Profile {
	return &Profile{
		Name:              "enhanced",
		ShopScanDepth:     15,
		SkipMetadataLines: true,
		RetailKeywords: []string{
			"store", "shop", "mart", "market", "supermarket", "retail", "grocery",
		},
		MetadataKeywords: []string{"date", "time", "invoice", "receipt", "total", "subtotal"},
		ItemPatterns: []ItemPattern{
			{re: regexp.MustCompile(`^(.+?)\s+(\d+)\s*[xX]\s*\$?\s*(\d+(?:\.\d+)?)\s*$`), HasQuantity: true},
			{re: regexp.MustCompile(`^(.+?)\s+[xX]\s*(\d+)\s+\$?\s*(\d+(?:\.\d+)?)\s*$`), HasQuantity: true},
			{re: regexp.MustCompile(`^(.+?)\s+\$\s*(\d+\.\d{2})\s*$`)},
			{re: regexp.MustCompile(`^(.+?)\s+(\d+\.\d{2})\s*\$?\s*$`)},
		},
		noise: ahocorasick.NewStringMatcher([]string{
			"item", "description", "qty", "quantity", "price", "total", "subtotal",
			"tax", "receipt", "invoice", "date", "time", "password", "pin", "card",
			"signature", "thank", "visit", "change", "cash", "tendered", "balance",
		}),
	}
}
