package bills

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/bill-tracker/internal/domain/extraction"
	"github.com/FACorreiaa/bill-tracker/internal/domain/ingest"
	"github.com/FACorreiaa/bill-tracker/pkg/storage"
)

// MockRepository implements Repository for testing
type MockRepository struct {
	created   []*Bill
	duplicate *Bill
	listed    []Bill
	stats     DeleteStats
	err       error
}

func (m *MockRepository) FindDuplicate(ctx context.Context, shop string, date time.Time, total decimal.Decimal) (*Bill, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.duplicate != nil && m.duplicate.ShopName == shop && m.duplicate.TotalAmount.Equal(total) {
		return m.duplicate, nil
	}
	return nil, nil
}

func (m *MockRepository) Create(ctx context.Context, bill *Bill) error {
	if m.err != nil {
		return m.err
	}
	m.created = append(m.created, bill)
	return nil
}

func (m *MockRepository) List(ctx context.Context, filter Filter) ([]Bill, error) {
	return m.listed, m.err
}

func (m *MockRepository) DeleteAll(ctx context.Context) (DeleteStats, error) {
	return m.stats, m.err
}

// MockStorage implements storage.Storage in memory
type MockStorage struct {
	uploads []string
	removed []string
}

func (m *MockStorage) Upload(ctx context.Context, filename, contentType string, r io.Reader) (*storage.FileInfo, error) {
	path := "/uploads/" + filename
	m.uploads = append(m.uploads, path)
	return &storage.FileInfo{Name: filename, ContentType: contentType, Path: path}, nil
}

func (m *MockStorage) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader("")), nil
}

func (m *MockStorage) Remove(ctx context.Context, path string) error {
	m.removed = append(m.removed, path)
	return nil
}

func (m *MockStorage) PurgeOlderThan(ctx context.Context, age time.Duration) (int, error) {
	return 0, nil
}

// MockRecognizer returns canned OCR text
type MockRecognizer struct {
	text string
	err  error
}

func (m *MockRecognizer) Recognize(ctx context.Context, path string) (string, error) {
	return m.text, m.err
}

// MockIndexer records indexed bills
type MockIndexer struct {
	indexed []*Bill
	cleared bool
}

func (m *MockIndexer) IndexBill(ctx context.Context, bill *Bill) error {
	m.indexed = append(m.indexed, bill)
	return nil
}

func (m *MockIndexer) RemoveAll(ctx context.Context) error {
	m.cleared = true
	return nil
}

const receiptText = `Corner Market
Date: 02/09/2025
Milk 2L  3.99
Apple  2 x 1.50
Bread  2.50
TOTAL  $9.49`

func fixedClock() time.Time {
	return time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)
}

func newTestService(repo *MockRepository, store *MockStorage, recog *MockRecognizer, index *MockIndexer) *Service {
	cfg := extraction.DefaultConfig()
	cfg.Now = fixedClock
	parser := extraction.NewParser(cfg)

	return NewService(ServiceConfig{
		Repo:       repo,
		Store:      store,
		Recognizer: recog,
		Parser:     parser,
		Normalizer: ingest.NewNormalizer(parser.Categorizer(), fixedClock),
		Index:      index,
		Logger:     slog.Default(),
	})
}

func TestService_UploadImage(t *testing.T) {
	t.Run("creates a bill from recognized text", func(t *testing.T) {
		repo := &MockRepository{}
		store := &MockStorage{}
		index := &MockIndexer{}
		svc := newTestService(repo, store, &MockRecognizer{text: receiptText}, index)

		bill, err := svc.UploadImage(context.Background(), "receipt.png", "image/png", strings.NewReader("img"))
		require.NoError(t, err)

		assert.Equal(t, "Corner Market", bill.ShopName)
		assert.Equal(t, "9.49", bill.TotalAmount.StringFixed(2))
		assert.Equal(t, UploadImage, bill.UploadType)
		assert.Equal(t, "/uploads/receipt.png", bill.FilePath)
		assert.False(t, bill.IsFallback)
		assert.Len(t, bill.Items, 3)

		require.Len(t, repo.created, 1)
		require.Len(t, index.indexed, 1)
		assert.Equal(t, bill.ID, index.indexed[0].ID)
	})

	t.Run("ocr failure degrades to the fallback bill", func(t *testing.T) {
		repo := &MockRepository{}
		svc := newTestService(repo, &MockStorage{}, &MockRecognizer{err: errors.New("tesseract exploded")}, &MockIndexer{})

		bill, err := svc.UploadImage(context.Background(), "receipt.png", "image/png", strings.NewReader("img"))
		require.NoError(t, err)

		assert.True(t, bill.IsFallback)
		assert.Equal(t, "Sample Store", bill.ShopName)
		assert.Equal(t, "14.98", bill.TotalAmount.StringFixed(2))
		assert.Len(t, repo.created, 1)
	})

	t.Run("duplicate removes the stored file", func(t *testing.T) {
		existing := &Bill{
			ShopName:    "Corner Market",
			Date:        time.Date(2025, 2, 9, 0, 0, 0, 0, time.UTC),
			TotalAmount: decimal.RequireFromString("9.49"),
		}
		repo := &MockRepository{duplicate: existing}
		store := &MockStorage{}
		svc := newTestService(repo, store, &MockRecognizer{text: receiptText}, &MockIndexer{})

		_, err := svc.UploadImage(context.Background(), "receipt.png", "image/png", strings.NewReader("img"))

		var dup *DuplicateError
		require.ErrorAs(t, err, &dup)
		assert.Equal(t, "Corner Market", dup.Existing.ShopName)
		assert.Equal(t, []string{"/uploads/receipt.png"}, store.removed)
		assert.Empty(t, repo.created)
	})
}

func TestService_ImportCSV(t *testing.T) {
	const wideCSV = `Date,Shop Address,Item Name,Quantity,Cost per unit,Total amount paid,Item Type,Item Sub Type
02/09/2025,Corner Market,Milk 2L,1,3.99,3.99,Dairy,
02/09/2025,Corner Market,Bread,2,2.50,5.00,Grain,
03/15/2025,Green Grocer,Apple,1.5,3.99,5.99,,
`

	t.Run("imports grouped bills", func(t *testing.T) {
		repo := &MockRepository{}
		index := &MockIndexer{}
		svc := newTestService(repo, &MockStorage{}, &MockRecognizer{}, index)

		result, err := svc.ImportCSV(context.Background(), wideCSV)
		require.NoError(t, err)

		assert.Equal(t, 2, result.BillsCreated)
		assert.Empty(t, result.Errors)
		require.Len(t, repo.created, 2)
		assert.Equal(t, UploadCSV, repo.created[0].UploadType)
		assert.Equal(t, "8.99", repo.created[0].TotalAmount.StringFixed(2))
		assert.Len(t, index.indexed, 2)
	})

	t.Run("duplicates are skipped with a note", func(t *testing.T) {
		existing := &Bill{
			ShopName:    "Corner Market",
			Date:        time.Date(2025, 2, 9, 0, 0, 0, 0, time.UTC),
			TotalAmount: decimal.RequireFromString("8.99"),
		}
		repo := &MockRepository{duplicate: existing}
		svc := newTestService(repo, &MockStorage{}, &MockRecognizer{}, &MockIndexer{})

		result, err := svc.ImportCSV(context.Background(), wideCSV)
		require.NoError(t, err)

		assert.Equal(t, 1, result.BillsCreated)
		require.Len(t, result.Errors, 1)
		assert.Contains(t, result.Errors[0], "duplicate bill skipped")
		assert.Contains(t, result.Errors[0], "Corner Market")
	})
}

func TestService_DeleteAll(t *testing.T) {
	repo := &MockRepository{stats: DeleteStats{Bills: 3, LineItems: 9}}
	index := &MockIndexer{}
	svc := newTestService(repo, &MockStorage{}, &MockRecognizer{}, index)

	stats, err := svc.DeleteAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.Bills)
	assert.Equal(t, int64(9), stats.LineItems)
	assert.True(t, index.cleared)
}
