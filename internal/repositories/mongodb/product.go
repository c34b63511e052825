package mongodb

import (
	"context"
	"time"

	"baul-admin-api/internal/models"
	"baul-admin-api/internal/repositories"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// ProductRepository implements repositories.ProductRepository for MongoDB
type ProductRepository struct {
	*baseRepository[models.Product]
	tm repositories.TransactionManager
}

// NewProductRepository creates a new MongoDB product repository
func NewProductRepository(db *mongo.Database, tm repositories.TransactionManager, logger *logrus.Logger) *ProductRepository {
	return &ProductRepository{
		baseRepository: newBaseRepository[models.Product](db, repositories.CollectionProducts, "product", logger),
		tm:             tm,
	}
}

// Create creates a new product
func (r *ProductRepository) Create(ctx context.Context, product *models.Product) error {
	if err := product.Validate(); err != nil {
		return repositories.ValidationError("product", product.ID, err)
	}
	return r.insert(ctx, product.ID, product)
}

// GetByID retrieves a product by ID
func (r *ProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	return r.get(ctx, id)
}

// FindPublishedBySKU returns the first published product with the given SKU
func (r *ProductRepository) FindPublishedBySKU(ctx context.Context, sku string) (*models.Product, error) {
	return r.findOne(ctx, "find_published_by_sku", bson.M{"sku": sku, "publicado": true})
}

// FindPublishedByName returns the first published product with the given name
func (r *ProductRepository) FindPublishedByName(ctx context.Context, name string) (*models.Product, error) {
	return r.findOne(ctx, "find_published_by_name", bson.M{"nombre": name, "publicado": true})
}

// List retrieves every product
func (r *ProductRepository) List(ctx context.Context) ([]*models.Product, error) {
	return r.find(ctx, "list", bson.M{})
}

// ListPublished retrieves every published product
func (r *ProductRepository) ListPublished(ctx context.Context) ([]*models.Product, error) {
	return r.find(ctx, "list_published", bson.M{"publicado": true})
}

// Update replaces an existing product. The document is not revalidated.
func (r *ProductRepository) Update(ctx context.Context, product *models.Product) error {
	start := time.Now()
	filter := bson.M{"_id": product.ID}
	result, err := r.coll.ReplaceOne(ctx, filter, product)
	r.logOperation("update", filter, start, err)
	if err != nil {
		return repositories.NewRepositoryError("update", "product", product.ID, err)
	}
	if result.MatchedCount == 0 {
		return repositories.NotFoundError("product", product.ID)
	}
	return nil
}

// DeleteMany removes the given products in one transaction. Unknown ids are ignored.
func (r *ProductRepository) DeleteMany(ctx context.Context, ids []string) error {
	return r.tm.WithTransaction(ctx, func(ctx context.Context) error {
		start := time.Now()
		filter := bson.M{"_id": bson.M{"$in": ids}}
		_, err := r.coll.DeleteMany(ctx, filter)
		r.logOperation("delete_many", filter, start, err)
		if err != nil {
			return repositories.NewRepositoryError("delete_many", "product", "", err)
		}
		return nil
	})
}

// SetPublished updates the published flag of the given products in one
// transaction. An unknown id aborts the whole batch.
func (r *ProductRepository) SetPublished(ctx context.Context, ids []string, published bool) error {
	update := bson.M{"$set": bson.M{
		"publicado":          published,
		"fechaActualizacion": models.NewTimestamp(time.Now()),
	}}

	return r.tm.WithTransaction(ctx, func(ctx context.Context) error {
		for _, id := range ids {
			start := time.Now()
			filter := bson.M{"_id": id}
			result, err := r.coll.UpdateOne(ctx, filter, update)
			r.logOperation("set_published", filter, start, err)
			if err != nil {
				return repositories.NewRepositoryError("set_published", "product", id, err)
			}
			if result.MatchedCount == 0 {
				return repositories.NotFoundError("product", id)
			}
		}
		return nil
	})
}
