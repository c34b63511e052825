package services

import (
	"context"
	"fmt"
	"io"
	"math"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"baul-admin-api/internal/importer"
	"baul-admin-api/internal/models"
	"baul-admin-api/internal/pricing"
	"baul-admin-api/internal/repositories"
)

const (
	// DefaultPageSize is the number of products per listing page
	DefaultPageSize = 20

	FilterPublished   = "Publicado"
	FilterUnpublished = "No Publicado"
)

// productService implements the ProductService interface
type productService struct {
	productRepo repositories.ProductRepository
	cache       pricing.Cache
	validator   *validator.Validate
	logger      *logrus.Logger
	now         func() time.Time
}

// NewProductService creates a new product service instance
func NewProductService(productRepo repositories.ProductRepository, cache pricing.Cache, logger *logrus.Logger) ProductService {
	if cache == nil {
		cache = pricing.NoopCache{}
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &productService{
		productRepo: productRepo,
		cache:       cache,
		validator:   validator.New(),
		logger:      logger,
		now:         time.Now,
	}
}

// CreateProduct creates a new product from the admin form
func (s *productService) CreateProduct(ctx context.Context, req *CreateProductRequest) (*models.Product, error) {
	if req == nil {
		return nil, fmt.Errorf("create product request cannot be nil")
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Price.Discounted != nil && *req.Price.Discounted == 0 {
		req.Price.Discounted = nil
	}

	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err)
	}

	product := &models.Product{
		ID:         strings.TrimSpace(req.ID),
		Name:       req.Name,
		SKU:        req.SKU,
		Type:       req.Type,
		Published:  true,
		Price:      models.Price{Normal: models.Number(req.Price.Normal)},
		Inventory:  models.Number(math.Max(float64(req.Inventory), 0)),
		Categories: []string(req.Categories),
		Images:     []string(req.Images),
		Attributes: map[string]any(req.Attributes),
	}
	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	if req.Published != nil {
		product.Published = *req.Published
	}
	if req.Price.Discounted != nil {
		discounted := models.Number(*req.Price.Discounted)
		product.Price.Discounted = &discounted
	}
	product.Normalize()
	product.Stamp(s.now())

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"product_id": product.ID,
		"nombre":     product.Name,
	}).Info("Product created")

	return product, nil
}

// GetProduct retrieves a product by ID
func (s *productService) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	if strings.TrimSpace(id) == "" {
		return nil, validationError(fmt.Errorf("product ID cannot be empty"))
	}

	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	return product, nil
}

// ListProducts filters, orders and paginates the catalog. Products are
// ordered by name with in-stock products first.
func (s *productService) ListProducts(ctx context.Context, filters *ProductFilters) (*ProductPage, error) {
	if filters == nil {
		filters = &ProductFilters{}
	}

	products, err := s.productRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	sort.SliceStable(products, func(i, j int) bool {
		return products[i].Name < products[j].Name
	})

	matcher := newTextMatcher(filters.Query)
	filtered := make([]*models.Product, 0, len(products))
	for _, p := range products {
		if !matcher.match(p.Name, p.ID) {
			continue
		}
		if filters.Category != "" && !containsString(p.Categories, filters.Category) {
			continue
		}
		switch filters.Published {
		case FilterPublished:
			if !p.Published {
				continue
			}
		case FilterUnpublished:
			if p.Published {
				continue
			}
		}
		filtered = append(filtered, p)
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].InStock() && !filtered[j].InStock()
	})

	return paginate(filtered, filters.Page, filters.PerPage), nil
}

func paginate(products []*models.Product, page, perPage int) *ProductPage {
	if perPage <= 0 {
		perPage = DefaultPageSize
	}
	if page <= 0 {
		page = 1
	}

	total := len(products)
	start := (page - 1) * perPage
	end := start + perPage
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	return &ProductPage{
		Items:   products[start:end],
		Total:   total,
		Page:    page,
		PerPage: perPage,
		Pages:   int(math.Ceil(float64(total) / float64(perPage))),
	}
}

// textMatcher compares text ignoring case and whitespace. A trailing "."
// in the query asks for a prefix match instead of a substring match.
type textMatcher struct {
	term   string
	prefix bool
}

func newTextMatcher(query string) textMatcher {
	term := normalizeText(query)
	if strings.HasSuffix(term, ".") {
		return textMatcher{term: strings.TrimSuffix(term, "."), prefix: true}
	}
	return textMatcher{term: term}
}

func (m textMatcher) match(fields ...string) bool {
	if m.term == "" {
		return true
	}
	for _, f := range fields {
		f = normalizeText(f)
		if m.prefix && strings.HasPrefix(f, m.term) {
			return true
		}
		if !m.prefix && strings.Contains(f, m.term) {
			return true
		}
	}
	return false
}

func normalizeText(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return unicode.ToLower(r)
	}, s)
}

func containsString(items []string, want string) bool {
	for _, item := range items {
		if item == want {
			return true
		}
	}
	return false
}

// GetCategories returns the sorted distinct categories of the catalog
func (s *productService) GetCategories(ctx context.Context) ([]string, error) {
	products, err := s.productRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	seen := make(map[string]struct{})
	categories := []string{}
	for _, p := range products {
		for _, c := range p.Categories {
			if _, ok := seen[c]; ok || c == "" {
				continue
			}
			seen[c] = struct{}{}
			categories = append(categories, c)
		}
	}
	sort.Strings(categories)

	return categories, nil
}

// UpdatePrice sets the normal price of a product
func (s *productService) UpdatePrice(ctx context.Context, id string, req *UpdatePriceRequest) (*models.Product, error) {
	if req == nil {
		return nil, fmt.Errorf("update price request cannot be nil")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err)
	}

	return s.update(ctx, id, "price", func(p *models.Product) {
		p.Price.Normal = models.Number(req.Normal)
	})
}

// UpdateInventory sets the inventory of a product
func (s *productService) UpdateInventory(ctx context.Context, id string, req *UpdateInventoryRequest) (*models.Product, error) {
	if req == nil {
		return nil, fmt.Errorf("update inventory request cannot be nil")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err)
	}

	return s.update(ctx, id, "inventory", func(p *models.Product) {
		p.Inventory = models.Number(req.Inventory)
	})
}

func (s *productService) update(ctx context.Context, id, field string, apply func(*models.Product)) (*models.Product, error) {
	product, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	apply(product)
	product.Touch(s.now())

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to update product %s: %w", field, err)
	}
	s.cache.Invalidate(ctx, product.ID)

	s.logger.WithFields(logrus.Fields{
		"product_id": product.ID,
		"field":      field,
	}).Info("Product updated")

	return product, nil
}

// DeleteProducts removes the selected products in one batch
func (s *productService) DeleteProducts(ctx context.Context, req *BulkDeleteRequest) (int, error) {
	if req == nil {
		return 0, fmt.Errorf("delete request cannot be nil")
	}
	if err := s.validator.Struct(req); err != nil {
		return 0, validationError(err)
	}

	if err := s.productRepo.DeleteMany(ctx, req.IDs); err != nil {
		return 0, fmt.Errorf("failed to delete products: %w", err)
	}
	s.cache.Invalidate(ctx, req.IDs...)

	s.logger.WithField("count", len(req.IDs)).Info("Products deleted")
	return len(req.IDs), nil
}

// SetPublished changes the published flag of the selected products in one batch
func (s *productService) SetPublished(ctx context.Context, req *BulkPublishRequest) (int, error) {
	if req == nil {
		return 0, fmt.Errorf("publish request cannot be nil")
	}
	if err := s.validator.Struct(req); err != nil {
		return 0, validationError(err)
	}

	if err := s.productRepo.SetPublished(ctx, req.IDs, *req.Published); err != nil {
		return 0, fmt.Errorf("failed to update products: %w", err)
	}
	s.cache.Invalidate(ctx, req.IDs...)

	s.logger.WithFields(logrus.Fields{
		"count":     len(req.IDs),
		"publicado": *req.Published,
	}).Info("Products publish flag updated")
	return len(req.IDs), nil
}

// ExportProducts writes every product, ordered by name, as import CSV
func (s *productService) ExportProducts(ctx context.Context, w io.Writer) error {
	products, err := s.productRepo.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list products: %w", err)
	}
	sort.SliceStable(products, func(i, j int) bool {
		return products[i].Name < products[j].Name
	})

	if err := importer.WriteProducts(w, products); err != nil {
		return fmt.Errorf("failed to write products: %w", err)
	}
	return nil
}
