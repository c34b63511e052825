package sqlite

import (
	"context"
	"database/sql"
	"time"

	"baul-admin-api/internal/models"
	"baul-admin-api/internal/repositories"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// SaleRepository implements repositories.SaleRepository for SQLite
type SaleRepository struct {
	*BaseRepository[models.Sale]
}

// NewSaleRepository creates a new SQLite sale repository
func NewSaleRepository(db *sql.DB, logger *logrus.Logger) *SaleRepository {
	return &SaleRepository{
		BaseRepository: NewBaseRepository(db, repositories.CollectionSales, "sale",
			func(s *models.Sale, id string) { s.ID = id }, logger),
	}
}

// Create records a sale, generating its id when missing
func (r *SaleRepository) Create(ctx context.Context, sale *models.Sale) error {
	if sale.ID == "" {
		sale.ID = uuid.New().String()
	}
	if sale.CreatedAt.IsZero() {
		sale.CreatedAt = models.NewTimestamp(time.Now())
	}
	return r.insert(ctx, sale.ID, sale)
}

// List retrieves every sale
func (r *SaleRepository) List(ctx context.Context) ([]*models.Sale, error) {
	return r.list(ctx, "list", "")
}

// QuoteRepository implements repositories.QuoteRepository for SQLite
type QuoteRepository struct {
	*BaseRepository[models.Quote]
}

// NewQuoteRepository creates a new SQLite quote repository
func NewQuoteRepository(db *sql.DB, logger *logrus.Logger) *QuoteRepository {
	return &QuoteRepository{
		BaseRepository: NewBaseRepository(db, repositories.CollectionQuotes, "quote",
			func(q *models.Quote, id string) { q.ID = id }, logger),
	}
}

// Create records a quote, generating its id when missing
func (r *QuoteRepository) Create(ctx context.Context, quote *models.Quote) error {
	if quote.ID == "" {
		quote.ID = uuid.New().String()
	}
	if quote.CreatedAt.IsZero() {
		quote.CreatedAt = models.NewTimestamp(time.Now())
	}
	return r.insert(ctx, quote.ID, quote)
}

// List retrieves every quote
func (r *QuoteRepository) List(ctx context.Context) ([]*models.Quote, error) {
	return r.list(ctx, "list", "")
}
