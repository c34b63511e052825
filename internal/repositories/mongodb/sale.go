package mongodb

import (
	"context"
	"time"

	"baul-admin-api/internal/models"
	"baul-admin-api/internal/repositories"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// SaleRepository implements repositories.SaleRepository for MongoDB
type SaleRepository struct {
	*baseRepository[models.Sale]
}

// NewSaleRepository creates a new MongoDB sale repository
func NewSaleRepository(db *mongo.Database, logger *logrus.Logger) *SaleRepository {
	return &SaleRepository{newBaseRepository[models.Sale](db, repositories.CollectionSales, "sale", logger)}
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
	return r.find(ctx, "list", bson.M{})
}

// QuoteRepository implements repositories.QuoteRepository for MongoDB
type QuoteRepository struct {
	*baseRepository[models.Quote]
}

// NewQuoteRepository creates a new MongoDB quote repository
func NewQuoteRepository(db *mongo.Database, logger *logrus.Logger) *QuoteRepository {
	return &QuoteRepository{newBaseRepository[models.Quote](db, repositories.CollectionQuotes, "quote", logger)}
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
	return r.find(ctx, "list", bson.M{})
}

// CustomerRepository implements repositories.CustomerRepository for MongoDB
type CustomerRepository struct {
	*baseRepository[models.Customer]
}

// NewCustomerRepository creates a new MongoDB customer repository
func NewCustomerRepository(db *mongo.Database, logger *logrus.Logger) *CustomerRepository {
	return &CustomerRepository{newBaseRepository[models.Customer](db, repositories.CollectionCustomers, "customer", logger)}
}

// Create creates a new customer
func (r *CustomerRepository) Create(ctx context.Context, customer *models.Customer) error {
	if err := customer.Validate(); err != nil {
		return repositories.ValidationError("customer", customer.ID, err)
	}
	if customer.ID == "" {
		customer.ID = uuid.New().String()
	}
	return r.insert(ctx, customer.ID, customer)
}

// List retrieves every customer
func (r *CustomerRepository) List(ctx context.Context) ([]*models.Customer, error) {
	return r.find(ctx, "list", bson.M{})
}
