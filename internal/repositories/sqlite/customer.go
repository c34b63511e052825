package sqlite

import (
	"context"
	"database/sql"

	"baul-admin-api/internal/models"
	"baul-admin-api/internal/repositories"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// CustomerRepository implements repositories.CustomerRepository for SQLite
type CustomerRepository struct {
	*BaseRepository[models.Customer]
}

// NewCustomerRepository creates a new SQLite customer repository
func NewCustomerRepository(db *sql.DB, logger *logrus.Logger) *CustomerRepository {
	return &CustomerRepository{
		BaseRepository: NewBaseRepository(db, repositories.CollectionCustomers, "customer",
			func(c *models.Customer, id string) { c.ID = id }, logger),
	}
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
	return r.list(ctx, "list", "")
}
