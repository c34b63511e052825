package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/sirupsen/logrus"

	"baul-admin-api/internal/models"
	"baul-admin-api/internal/pricing"
	"baul-admin-api/internal/repositories"
)

// pricingService implements the PricingService interface
type pricingService struct {
	productRepo repositories.ProductRepository
	cache       pricing.Cache
	logger      *logrus.Logger
}

// NewPricingService creates a new pricing service instance
func NewPricingService(productRepo repositories.ProductRepository, cache pricing.Cache, logger *logrus.Logger) PricingService {
	if cache == nil {
		cache = pricing.NoopCache{}
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &pricingService{
		productRepo: productRepo,
		cache:       cache,
		logger:      logger,
	}
}

// Lookup prices a single product found by id, SKU or name, in that order
// of precedence. Only published products are priced.
func (s *pricingService) Lookup(ctx context.Context, req *PriceLookupRequest) (*pricing.Quote, error) {
	if req == nil {
		return nil, pricing.ErrMissingLookup
	}

	var (
		product *models.Product
		err     error
	)
	switch {
	case req.ID != "":
		product, err = s.byID(ctx, req.ID)
		if err == nil && !product.Published {
			return nil, &pricing.NotPublishedError{ProductID: product.ID, Published: product.Published}
		}
	case req.Code != "":
		product, err = s.productRepo.FindPublishedBySKU(ctx, req.Code)
	case req.Name != "":
		product, err = s.productRepo.FindPublishedByName(ctx, req.Name)
	default:
		return nil, pricing.ErrMissingLookup
	}
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, pricing.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to look up product: %w", err)
	}

	quote := pricing.NewQuote(product, req.Quantity)
	return &quote, nil
}

// byID reads through the cache. Unpublished products are cached too so the
// publish gate answers without a store read.
func (s *pricingService) byID(ctx context.Context, id string) (*models.Product, error) {
	if product, ok := s.cache.Get(ctx, id); ok {
		return product, nil
	}

	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.cache.Set(ctx, product)
	return product, nil
}

// Catalog prices every published product at the given quantity
func (s *pricingService) Catalog(ctx context.Context, quantity float64) (*pricing.Catalog, error) {
	products, err := s.productRepo.ListPublished(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list published products: %w", err)
	}

	items := make([]pricing.Quote, 0, len(products))
	for _, p := range products {
		items = append(items, pricing.NewQuote(p, quantity))
	}

	return &pricing.Catalog{
		Items:  items,
		Total:  len(items),
		Filter: pricing.PublishedOnlyFilter,
	}, nil
}

type priceItem struct {
	Product  json.RawMessage `json:"producto"`
	ID       json.RawMessage `json:"id"`
	Quantity json.RawMessage `json:"cantidad"`
}

// PriceItems prices a batch. Items resolve either from an embedded product
// or by id; an unresolved item becomes an error entry at its position.
// Store failures other than a missing product abort the batch.
func (s *pricingService) PriceItems(ctx context.Context, items []json.RawMessage) ([]pricing.ItemResult, error) {
	if len(items) == 0 {
		return nil, pricing.ErrEmptyItems
	}

	results := make([]pricing.ItemResult, 0, len(items))
	for _, raw := range items {
		result, err := s.priceItem(ctx, raw)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}

	s.logger.WithField("items", len(items)).Debug("Priced batch")
	return results, nil
}

func (s *pricingService) priceItem(ctx context.Context, raw json.RawMessage) (pricing.ItemResult, error) {
	var item priceItem
	if err := json.Unmarshal(raw, &item); err != nil {
		return pricing.InvalidItem(err, raw), nil
	}

	qty := pricing.QuantityFromJSON(item.Quantity)

	if !isNull(item.Product) {
		if !embeddedPublished(item.Product) {
			return pricing.NotPublishedItem(isTruthy(publishedField(item.Product)), raw), nil
		}
		var product models.Product
		if err := json.Unmarshal(item.Product, &product); err != nil {
			return pricing.InvalidItem(err, raw), nil
		}
		quote := pricing.NewQuote(&product, qty)
		return pricing.ItemResult{Quote: &quote}, nil
	}

	id := pricing.IDFromJSON(item.ID)
	if id == "" {
		return pricing.NotFoundItem(raw), nil
	}

	product, err := s.byID(ctx, id)
	if err != nil {
		if repositories.IsNotFound(err) {
			return pricing.NotFoundItem(raw), nil
		}
		return pricing.ItemResult{}, fmt.Errorf("failed to look up product %s: %w", id, err)
	}
	if !product.Published {
		return pricing.NotPublishedItem(false, raw), nil
	}

	quote := pricing.NewQuote(product, qty)
	return pricing.ItemResult{Quote: &quote}, nil
}

func isNull(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) == 0 || string(raw) == "null"
}

// embeddedPublished requires the flag to be literally true.
func embeddedPublished(product json.RawMessage) bool {
	return string(bytes.TrimSpace(publishedField(product))) == "true"
}

func publishedField(product json.RawMessage) json.RawMessage {
	var probe struct {
		Published json.RawMessage `json:"publicado"`
	}
	if err := json.Unmarshal(product, &probe); err != nil {
		return nil
	}
	return probe.Published
}

// isTruthy follows the loose truthiness of the clients sending embedded
// products: null, false, 0 and "" are false.
func isTruthy(raw json.RawMessage) bool {
	switch v := string(bytes.TrimSpace(raw)); v {
	case "", "null", "false", "0", `""`:
		return false
	default:
		return true
	}
}
