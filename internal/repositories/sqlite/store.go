package sqlite

import (
	"context"
	"database/sql"

	"baul-admin-api/internal/repositories"

	"github.com/sirupsen/logrus"
)

// Store implements repositories.Store on a SQLite database
type Store struct {
	db           *sql.DB
	logger       *logrus.Logger
	productRepo  *ProductRepository
	saleRepo     *SaleRepository
	quoteRepo    *QuoteRepository
	customerRepo *CustomerRepository
}

// NewStore creates a store over an open, migrated database connection
func NewStore(db *sql.DB, logger *logrus.Logger) *Store {
	if logger == nil {
		logger = logrus.New()
	}

	tm := NewTransactionManager(db, logger)

	return &Store{
		db:           db,
		logger:       logger,
		productRepo:  NewProductRepository(db, tm, logger),
		saleRepo:     NewSaleRepository(db, logger),
		quoteRepo:    NewQuoteRepository(db, logger),
		customerRepo: NewCustomerRepository(db, logger),
	}
}

// Products returns the product repository
func (s *Store) Products() repositories.ProductRepository {
	return s.productRepo
}

// Sales returns the sale repository
func (s *Store) Sales() repositories.SaleRepository {
	return s.saleRepo
}

// Quotes returns the quote repository
func (s *Store) Quotes() repositories.QuoteRepository {
	return s.quoteRepo
}

// Customers returns the customer repository
func (s *Store) Customers() repositories.CustomerRepository {
	return s.customerRepo
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Health checks the health of the database connection
func (s *Store) Health(ctx context.Context) error {
	if s.db == nil {
		return repositories.ConnectionError(repositories.ErrConnection)
	}

	if err := s.db.PingContext(ctx); err != nil {
		return repositories.ConnectionError(err)
	}

	var result int
	if err := s.db.QueryRowContext(ctx, "SELECT 1").Scan(&result); err != nil {
		return repositories.ConnectionError(err)
	}

	if result != 1 {
		return repositories.ConnectionError(repositories.ErrConnection)
	}

	return nil
}
