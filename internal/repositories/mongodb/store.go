// Package mongodb stores the collections in a MongoDB database, one
// collection per entity with the document id as _id.
package mongodb

import (
	"context"

	"baul-admin-api/internal/repositories"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Store implements repositories.Store on MongoDB
type Store struct {
	client       *mongo.Client
	productRepo  *ProductRepository
	saleRepo     *SaleRepository
	quoteRepo    *QuoteRepository
	customerRepo *CustomerRepository
}

// NewStore creates a store over a connected client and database
func NewStore(client *mongo.Client, db *mongo.Database, logger *logrus.Logger) *Store {
	if logger == nil {
		logger = logrus.New()
	}

	tm := NewTransactionManager(client, logger)

	return &Store{
		client:       client,
		productRepo:  NewProductRepository(db, tm, logger),
		saleRepo:     NewSaleRepository(db, logger),
		quoteRepo:    NewQuoteRepository(db, logger),
		customerRepo: NewCustomerRepository(db, logger),
	}
}

// Products returns the product repository
func (s *Store) Products() repositories.ProductRepository { return s.productRepo }

// Sales returns the sale repository
func (s *Store) Sales() repositories.SaleRepository { return s.saleRepo }

// Quotes returns the quote repository
func (s *Store) Quotes() repositories.QuoteRepository { return s.quoteRepo }

// Customers returns the customer repository
func (s *Store) Customers() repositories.CustomerRepository { return s.customerRepo }

// Health pings the primary
func (s *Store) Health(ctx context.Context) error {
	if err := s.client.Ping(ctx, readpref.Primary()); err != nil {
		return repositories.ConnectionError(err)
	}
	return nil
}

// Close disconnects the client
func (s *Store) Close() error {
	return s.client.Disconnect(context.Background())
}
