package repositories

import (
	"context"

	"baul-admin-api/internal/models"
)

// Collection names shared by every store implementation.
const (
	CollectionProducts  = "productos"
	CollectionSales     = "ventas"
	CollectionQuotes    = "presupuestos"
	CollectionCustomers = "clientes"
)

// ProductRepository defines operations on the product catalog
type ProductRepository interface {
	// Create inserts a new product; an existing id is a duplicate error
	Create(ctx context.Context, product *models.Product) error

	// GetByID retrieves a product by id regardless of its published flag
	GetByID(ctx context.Context, id string) (*models.Product, error)

	// FindPublishedBySKU returns the first published product with the given SKU
	FindPublishedBySKU(ctx context.Context, sku string) (*models.Product, error)

	// FindPublishedByName returns the first published product with exactly the given name
	FindPublishedByName(ctx context.Context, name string) (*models.Product, error)

	// List retrieves every product
	List(ctx context.Context) ([]*models.Product, error)

	// ListPublished retrieves every product with publicado = true
	ListPublished(ctx context.Context) ([]*models.Product, error)

	// Update replaces an existing product document
	Update(ctx context.Context, product *models.Product) error

	// DeleteMany removes all given products as one atomic unit
	DeleteMany(ctx context.Context, ids []string) error

	// SetPublished sets the published flag of all given products as one atomic unit
	SetPublished(ctx context.Context, ids []string, published bool) error

	// Count returns the number of stored products
	Count(ctx context.Context) (int64, error)
}

// SaleRepository defines operations on recorded sales
type SaleRepository interface {
	Create(ctx context.Context, sale *models.Sale) error
	List(ctx context.Context) ([]*models.Sale, error)
}

// QuoteRepository defines operations on quotes
type QuoteRepository interface {
	Create(ctx context.Context, quote *models.Quote) error
	List(ctx context.Context) ([]*models.Quote, error)
}

// CustomerRepository defines operations on customers
type CustomerRepository interface {
	Create(ctx context.Context, customer *models.Customer) error
	List(ctx context.Context) ([]*models.Customer, error)
	Count(ctx context.Context) (int64, error)
}

// Store provides access to all collections of one backing database
type Store interface {
	Products() ProductRepository
	Sales() SaleRepository
	Quotes() QuoteRepository
	Customers() CustomerRepository

	// Health checks the connection to the backing database
	Health(ctx context.Context) error

	// Close releases the underlying connection
	Close() error
}
