package extraction

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Config carries the hand-tuned pipeline constants. They are configurable on
// purpose: the price bound and the retry threshold encode assumptions about
// receipt scale that deployments may need to revisit.
type Config struct {
	// MinTextLength is the minimum usable OCR text length; shorter input
	// triggers the fallback bill.
	MinTextLength int

	// RetryItemThreshold triggers the one-shot enhanced retry when the
	// primary pass yields fewer items.
	RetryItemThreshold int

	// MaxItemPrice rejects line items whose unit price or line total
	// reaches it.
	MaxItemPrice decimal.Decimal

	// Now supplies the current time for the date and fallback defaults.
	// Injectable so parsing is deterministic under test.
	Now func() time.Time
}

// DefaultConfig returns the production constants.
func DefaultConfig() Config {
	return Config{
		MinTextLength:      10,
		RetryItemThreshold: 2,
		MaxItemPrice:       decimal.NewFromInt(1000),
		Now:                time.Now,
	}
}

// Parser orchestrates the field extractors and the line-item extractor into
// a canonical bill. One Parser is safe for concurrent use.
type Parser struct {
	cfg         Config
	categorizer *Categorizer
	primary     *Profile
	enhanced    *Profile
}

// NewParser builds a parser with compiled profiles and categorizer tables.
func NewParser(cfg Config) *Parser {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.MaxItemPrice.Sign() <= 0 {
		cfg.MaxItemPrice = decimal.NewFromInt(1000)
	}
	return &Parser{
		cfg:         cfg,
		categorizer: NewCategorizer(),
		primary:     PrimaryProfile(),
		enhanced:    EnhancedProfile(),
	}
}

// Categorizer exposes the shared category table so the CSV path stays in
// sync with the OCR path.
func (p *Parser) Categorizer() *Categorizer { return p.categorizer }

// Parse turns raw OCR text into a canonical bill. Text too short to be a
// receipt yields the fallback bill. A primary pass that finds fewer than the
// retry threshold of items is re-run once with the enhanced profile.
func (p *Parser) Parse(rawText string) CanonicalBill {
	if len(strings.TrimSpace(rawText)) < p.cfg.MinTextLength {
		return p.FallbackBill()
	}

	lines := strings.Split(rawText, "\n")

	bill := p.parseWith(lines, p.primary)
	if len(bill.Items) < p.cfg.RetryItemThreshold {
		bill = p.parseWith(lines, p.enhanced)
	}
	return bill
}

func (p *Parser) parseWith(lines []string, profile *Profile) CanonicalBill {
	shop := ExtractShop(lines, profile)
	date := ExtractDate(lines, p.cfg.Now())
	total := ExtractTotal(lines)
	items := ExtractItems(lines, profile, p.categorizer, p.cfg.MaxItemPrice)

	return NewBill(shop, date, total, SourceImage, items)
}

// FallbackBill returns the fixed demonstration bill used when recognition
// fails or produces unusable text. It is deterministic apart from the
// injected clock and carries the Fallback flag so callers can tell it apart
// from a real extraction.
func (p *Parser) FallbackBill() CanonicalBill {
	now := p.cfg.Now()
	bill := NewBill(
		"Sample Store",
		time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC),
		decimal.RequireFromString("14.98"),
		SourceImage,
		[]ExtractedItem{
			NewItem("Milk 2L", decimal.NewFromInt(1), decimal.RequireFromString("3.99"), decimal.RequireFromString("3.99"), "Dairy"),
			NewItem("Bread", decimal.NewFromInt(2), decimal.RequireFromString("2.50"), decimal.RequireFromString("5.00"), "Grain"),
			NewItem("Apple", decimal.RequireFromString("1.5"), decimal.RequireFromString("3.99"), decimal.RequireFromString("5.99"), "Fruit"),
		},
	)
	bill.Fallback = true
	return bill
}
