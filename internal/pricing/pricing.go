package pricing

import (
	"encoding/json"
	"errors"
	"math"
	"strings"

	"baul-admin-api/internal/models"
)

// PublishedOnlyFilter describes the catalog listing filter.
const PublishedOnlyFilter = "Solo productos publicados (publicado: true)"

// Pricing is the price of a quantity of a product. The unit price is the
// normal price; discounts are not applied.
type Pricing struct {
	Quantity   float64 `json:"cantidad"`
	UnitPrice  float64 `json:"precioUnitario"`
	TotalPrice float64 `json:"precioTotal"`
}

// Quote is a priced product.
type Quote struct {
	ID      string          `json:"id"`
	Product *models.Product `json:"producto"`
	Pricing Pricing         `json:"pricing"`
}

// Catalog is the priced list of every published product.
type Catalog struct {
	Items  []Quote `json:"items"`
	Total  int     `json:"total"`
	Filter string  `json:"filtro"`
}

// ItemError is a failed entry of a batch price request.
type ItemError struct {
	Error     string          `json:"error"`
	Published *bool           `json:"publicado,omitempty"`
	Message   string          `json:"mensaje,omitempty"`
	Input     json.RawMessage `json:"input"`
}

// ItemResult is one entry of a batch price response: either a quote or an error.
type ItemResult struct {
	*Quote
	*ItemError
}

// Calculate prices qty units of p. Non-positive or non-finite quantities count as 1.
func Calculate(p *models.Product, qty float64) Pricing {
	if math.IsNaN(qty) || math.IsInf(qty, 0) || qty <= 0 {
		qty = 1
	}
	unit := 0.0
	if p != nil {
		unit = p.Price.Normal.Float()
	}
	return Pricing{Quantity: qty, UnitPrice: unit, TotalPrice: unit * qty}
}

// NewQuote normalizes p and prices it.
func NewQuote(p *models.Product, qty float64) Quote {
	p.Normalize()
	return Quote{ID: p.ID, Product: p, Pricing: Calculate(p, qty)}
}

// ParseQuantity reads a quantity query parameter; empty means 1.
// Unreadable input yields NaN, which Calculate treats as 1.
func ParseQuantity(raw string) float64 {
	if raw == "" {
		return 1
	}
	v, ok := models.ParseFloatPrefix(raw)
	if !ok {
		return math.NaN()
	}
	return v
}

// QuantityFromJSON reads the quantity of a batch item, which may be a
// JSON number or a string.
func QuantityFromJSON(raw json.RawMessage) float64 {
	if len(raw) == 0 || string(raw) == "null" {
		return 1
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return n
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return ParseQuantity(s)
	}
	return ParseQuantity(string(raw))
}

// IDFromJSON reads an item id given as a JSON string or number.
func IDFromJSON(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

// IsTruthy reports whether a flag parameter asks for the full listing.
func IsTruthy(raw string) bool {
	switch strings.ToLower(raw) {
	case "1", "true", "t", "si", "sí", "yes":
		return true
	default:
		return false
	}
}

var (
	// ErrMissingLookup is returned when no lookup key is given.
	ErrMissingLookup = errors.New("Debe enviar id, codigo o nombre")

	// ErrProductNotFound is returned when no published product matches.
	ErrProductNotFound = errors.New("Producto no encontrado")

	// ErrEmptyItems is returned for batch requests without items.
	ErrEmptyItems = errors.New("items vacío")
)

// NotPublishedError is returned when a known product is not published.
type NotPublishedError struct {
	ProductID string
	Published bool
}

func (e *NotPublishedError) Error() string {
	return "Producto no publicado"
}

// Message is the explanation shown to API clients.
func (e *NotPublishedError) Message() string {
	return "Solo se pueden consultar precios de productos publicados"
}

// NotPublishedItem builds the batch entry for an unpublished product.
func NotPublishedItem(published bool, input json.RawMessage) ItemResult {
	err := &NotPublishedError{Published: published}
	return ItemResult{ItemError: &ItemError{
		Error:     err.Error(),
		Published: &published,
		Message:   err.Message(),
		Input:     input,
	}}
}

// NotFoundItem builds the batch entry for an unresolved product.
func NotFoundItem(input json.RawMessage) ItemResult {
	return ItemResult{ItemError: &ItemError{Error: ErrProductNotFound.Error(), Input: input}}
}

// InvalidItem builds the batch entry for an item that could not be decoded.
func InvalidItem(err error, input json.RawMessage) ItemResult {
	return ItemResult{ItemError: &ItemError{Error: "Producto inválido", Message: err.Error(), Input: input}}
}
