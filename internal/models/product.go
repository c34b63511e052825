package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ProductType is the catalog variant kind.
type ProductType string

const (
	ProductTypeSimple    ProductType = "simple"
	ProductTypeVariation ProductType = "variation"

	// productTypeVariantAlias is accepted on input and stored as variation.
	productTypeVariantAlias ProductType = "variant"
)

// Known reports whether t is a type the catalog stores. Empty counts as
// simple.
func (t ProductType) Known() bool {
	switch t {
	case "", ProductTypeSimple, ProductTypeVariation, productTypeVariantAlias:
		return true
	default:
		return false
	}
}

// ParseProductType reads a type name case-insensitively.
func ParseProductType(s string) ProductType {
	return ProductType(strings.ToLower(strings.TrimSpace(s)))
}

// Price holds the list price and the optional discounted price.
type Price struct {
	Normal     Number  `json:"normal" bson:"normal"`
	Discounted *Number `json:"rebajado" bson:"rebajado"`
}

// Product represents a catalog entry
type Product struct {
	ID         string         `json:"id" bson:"_id" validate:"required"`
	Name       string         `json:"nombre" bson:"nombre" validate:"required"`
	SKU        *string        `json:"sku" bson:"sku"`
	Type       ProductType    `json:"tipo" bson:"tipo" validate:"omitempty,oneof=simple variation variant"`
	Published  bool           `json:"publicado" bson:"publicado"`
	Price      Price          `json:"precio" bson:"precio"`
	Inventory  Number         `json:"inventario" bson:"inventario" validate:"min=0"`
	Categories []string       `json:"categorias" bson:"categorias" validate:"required,min=1"`
	Images     []string       `json:"imagenes" bson:"imagenes"`
	Attributes map[string]any `json:"atributos" bson:"atributos"`
	CreatedAt  Timestamp      `json:"fechaCreacion" bson:"fechaCreacion"`
	UpdatedAt  Timestamp      `json:"fechaActualizacion" bson:"fechaActualizacion"`
}

// NewProduct creates a published simple product with a generated ID
func NewProduct(name string, normalPrice float64, categories ...string) *Product {
	p := &Product{
		ID:         uuid.New().String(),
		Name:       name,
		Type:       ProductTypeSimple,
		Published:  true,
		Price:      Price{Normal: Number(normalPrice)},
		Categories: categories,
	}
	p.Normalize()
	p.Stamp(time.Now())
	return p
}

// Normalize fills the defaults every stored product is expected to carry.
func (p *Product) Normalize() {
	switch p.Type {
	case "":
		p.Type = ProductTypeSimple
	case productTypeVariantAlias:
		p.Type = ProductTypeVariation
	}
	if p.Categories == nil {
		p.Categories = []string{}
	}
	if p.Images == nil {
		p.Images = []string{}
	}
	if p.Attributes == nil {
		p.Attributes = map[string]any{}
	}
}

// Stamp sets the creation timestamp (when missing) and the update timestamp to now.
func (p *Product) Stamp(now time.Time) {
	ts := NewTimestamp(now)
	if p.CreatedAt.IsZero() {
		p.CreatedAt = ts
	}
	p.UpdatedAt = ts
}

// Touch marks the product as modified at now.
func (p *Product) Touch(now time.Time) {
	p.UpdatedAt = NewTimestamp(now)
}

// SKUValue returns the SKU or an empty string.
func (p *Product) SKUValue() string {
	if p.SKU == nil {
		return ""
	}
	return *p.SKU
}

// DiscountedPrice returns the discounted price, if any.
func (p *Product) DiscountedPrice() (float64, bool) {
	if p.Price.Discounted == nil {
		return 0, false
	}
	return p.Price.Discounted.Float(), true
}

// InStock reports whether there is inventory on hand.
func (p *Product) InStock() bool {
	return p.Inventory > 0
}

// Validate validates the product data
func (p *Product) Validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return fmt.Errorf("product ID is required")
	}

	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("product name is required")
	}

	if len(p.Categories) == 0 {
		return fmt.Errorf("product requires at least one category")
	}

	if p.Price.Normal <= 0 {
		return fmt.Errorf("normal price must be greater than 0")
	}

	if p.Price.Discounted != nil && *p.Price.Discounted <= 0 {
		return fmt.Errorf("discounted price must be greater than 0")
	}

	if p.Inventory < 0 {
		return fmt.Errorf("inventory cannot be negative")
	}

	if !p.Type.Known() {
		return fmt.Errorf("invalid product type: %s", p.Type)
	}

	return nil
}
