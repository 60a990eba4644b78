// Package search provides full-text search over line items using Bleve.
package search

import (
	"context"
	"fmt"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/simple"
	"github.com/blevesearch/bleve/v2/mapping"

	"github.com/FACorreiaa/bill-tracker/internal/domain/bills"
)

// ItemDocument is one indexed line item.
type ItemDocument struct {
	ID       string  `json:"id"`
	BillID   string  `json:"bill_id"`
	ItemName string  `json:"item_name"`
	ShopName string  `json:"shop_name"`
	Category string  `json:"category"`
	Date     string  `json:"date"`
	Total    float64 `json:"total"`
}

// Hit is a search result with its relevance score.
type Hit struct {
	Document ItemDocument `json:"document"`
	Score    float64      `json:"score"`
}

// Index is an in-memory Bleve index over line items. It implements the bills
// Indexer so created bills are searchable immediately.
type Index struct {
	mu    sync.RWMutex
	index bleve.Index
}

func NewIndex() (*Index, error) {
	index, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create index: %w", err)
	}
	return &Index{index: index}, nil
}

func buildIndexMapping() mapping.IndexMapping {
	textFieldMapping := bleve.NewTextFieldMapping()
	textFieldMapping.Analyzer = simple.Name

	keywordFieldMapping := bleve.NewTextFieldMapping()
	keywordFieldMapping.Analyzer = keyword.Name

	docMapping := bleve.NewDocumentMapping()
	docMapping.AddFieldMappingsAt("item_name", textFieldMapping)
	docMapping.AddFieldMappingsAt("shop_name", textFieldMapping)
	docMapping.AddFieldMappingsAt("category", textFieldMapping)
	docMapping.AddFieldMappingsAt("bill_id", keywordFieldMapping)
	docMapping.AddFieldMappingsAt("date", keywordFieldMapping)
	docMapping.AddFieldMappingsAt("total", bleve.NewNumericFieldMapping())

	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultMapping = docMapping
	indexMapping.DefaultAnalyzer = simple.Name
	return indexMapping
}

// IndexBill adds every line item of the bill in one batch.
func (idx *Index) IndexBill(ctx context.Context, bill *bills.Bill) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	batch := idx.index.NewBatch()
	for _, item := range bill.Items {
		total, _ := item.LineTotal.Float64()
		doc := ItemDocument{
			ID:       item.ID.String(),
			BillID:   bill.ID.String(),
			ItemName: item.Name,
			ShopName: bill.ShopName,
			Category: item.Category,
			Date:     bill.Date.Format("2006-01-02"),
			Total:    total,
		}
		if err := batch.Index(doc.ID, doc); err != nil {
			return fmt.Errorf("failed to index item %s: %w", doc.ID, err)
		}
	}

	if err := idx.index.Batch(batch); err != nil {
		return fmt.Errorf("failed to execute batch index: %w", err)
	}
	return nil
}

// RemoveAll drops the whole index. Rebuilding a fresh in-memory index is
// cheaper than deleting documents one by one.
func (idx *Index) RemoveAll(ctx context.Context) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	fresh, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return fmt.Errorf("failed to recreate index: %w", err)
	}
	old := idx.index
	idx.index = fresh
	return old.Close()
}

// Search runs a fuzzy match query over the indexed items.
func (idx *Index) Search(ctx context.Context, query string, limit int) ([]Hit, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if limit <= 0 {
		limit = 10
	}

	matchQuery := bleve.NewMatchQuery(query)
	matchQuery.SetFuzziness(1) // Allow 1 edit distance for typo tolerance

	searchRequest := bleve.NewSearchRequest(matchQuery)
	searchRequest.Size = limit
	searchRequest.Fields = []string{"*"}

	searchResults, err := idx.index.Search(searchRequest)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	hits := make([]Hit, 0, len(searchResults.Hits))
	for _, hit := range searchResults.Hits {
		doc := ItemDocument{ID: hit.ID}
		if v, ok := hit.Fields["bill_id"].(string); ok {
			doc.BillID = v
		}
		if v, ok := hit.Fields["item_name"].(string); ok {
			doc.ItemName = v
		}
		if v, ok := hit.Fields["shop_name"].(string); ok {
			doc.ShopName = v
		}
		if v, ok := hit.Fields["category"].(string); ok {
			doc.Category = v
		}
		if v, ok := hit.Fields["date"].(string); ok {
			doc.Date = v
		}
		if v, ok := hit.Fields["total"].(float64); ok {
			doc.Total = v
		}
		hits = append(hits, Hit{Document: doc, Score: hit.Score})
	}
	return hits, nil
}

// Count returns the number of indexed items.
func (idx *Index) Count() (uint64, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.index.DocCount()
}
