package sqlite

import (
	"context"
	"database/sql"
	"time"

	"baul-admin-api/internal/models"
	"baul-admin-api/internal/repositories"

	"github.com/sirupsen/logrus"
)

// ProductRepository implements repositories.ProductRepository for SQLite.
// nombre, sku and publicado are mirrored into columns for the published lookups.
type ProductRepository struct {
	*BaseRepository[models.Product]
	tm repositories.TransactionManager
}

// NewProductRepository creates a new SQLite product repository
func NewProductRepository(db *sql.DB, tm repositories.TransactionManager, logger *logrus.Logger) *ProductRepository {
	return &ProductRepository{
		BaseRepository: NewBaseRepository(db, repositories.CollectionProducts, "product",
			func(p *models.Product, id string) { p.ID = id }, logger),
		tm: tm,
	}
}

// Create creates a new product
func (r *ProductRepository) Create(ctx context.Context, product *models.Product) error {
	if err := product.Validate(); err != nil {
		return repositories.ValidationError("product", product.ID, err)
	}

	data, err := r.encode(product)
	if err != nil {
		return repositories.NewRepositoryError("create", "product", product.ID, err)
	}

	now := time.Now().UTC()
	query := `
		INSERT INTO productos (
			id, nombre, sku, publicado, data, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)`

	_, err = r.executeExec(ctx, "create", query,
		product.ID,
		product.Name,
		product.SKU,
		product.Published,
		data,
		now,
		now,
	)
	if err != nil {
		return r.mapInsertError(product.ID, err)
	}

	return nil
}

// GetByID retrieves a product by ID
func (r *ProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	return r.get(ctx, id)
}

// FindPublishedBySKU returns the first published product with the given SKU
func (r *ProductRepository) FindPublishedBySKU(ctx context.Context, sku string) (*models.Product, error) {
	return r.first(ctx, "find_published_by_sku", "WHERE sku = ? AND publicado = 1", sku)
}

// FindPublishedByName returns the first published product with the given name
func (r *ProductRepository) FindPublishedByName(ctx context.Context, name string) (*models.Product, error) {
	return r.first(ctx, "find_published_by_name", "WHERE nombre = ? AND publicado = 1", name)
}

// List retrieves every product
func (r *ProductRepository) List(ctx context.Context) ([]*models.Product, error) {
	return r.list(ctx, "list", "")
}

// ListPublished retrieves every published product
func (r *ProductRepository) ListPublished(ctx context.Context) ([]*models.Product, error) {
	return r.list(ctx, "list_published", "WHERE publicado = 1")
}

// Update replaces an existing product. The document is not revalidated.
func (r *ProductRepository) Update(ctx context.Context, product *models.Product) error {
	if err := r.validateID(product.ID); err != nil {
		return err
	}

	data, err := r.encode(product)
	if err != nil {
		return repositories.NewRepositoryError("update", "product", product.ID, err)
	}

	query := `
		UPDATE productos
		SET nombre = ?, sku = ?, publicado = ?, data = ?, updated_at = ?
		WHERE id = ?`

	result, err := r.executeExec(ctx, "update", query,
		product.Name,
		product.SKU,
		product.Published,
		data,
		time.Now().UTC(),
		product.ID,
	)
	if err != nil {
		return err
	}

	return r.checkRowsAffected(result, "update", product.ID)
}

// DeleteMany removes the given products in one transaction. Unknown ids are ignored.
func (r *ProductRepository) DeleteMany(ctx context.Context, ids []string) error {
	return r.tm.WithTransaction(ctx, func(ctx context.Context) error {
		for _, id := range ids {
			if err := r.validateID(id); err != nil {
				return err
			}
			if _, err := r.executeExec(ctx, "delete", "DELETE FROM productos WHERE id = ?", id); err != nil {
				return err
			}
		}
		return nil
	})
}

// SetPublished updates the published flag of the given products in one
// transaction. An unknown id aborts the whole batch.
func (r *ProductRepository) SetPublished(ctx context.Context, ids []string, published bool) error {
	now := time.Now()
	return r.tm.WithTransaction(ctx, func(ctx context.Context) error {
		for _, id := range ids {
			product, err := r.get(ctx, id)
			if err != nil {
				return err
			}
			product.Published = published
			product.Touch(now)
			if err := r.Update(ctx, product); err != nil {
				return err
			}
		}
		return nil
	})
}
