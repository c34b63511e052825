package services

import (
	"context"
	"encoding/json"
	"io"

	"baul-admin-api/internal/adapters/storage"
	"baul-admin-api/internal/analytics"
	"baul-admin-api/internal/importer"
	"baul-admin-api/internal/models"
	"baul-admin-api/internal/pricing"
)

// ProductService defines the interface for product administration
type ProductService interface {
	// CRUD operations
	CreateProduct(ctx context.Context, req *CreateProductRequest) (*models.Product, error)
	GetProduct(ctx context.Context, id string) (*models.Product, error)
	ListProducts(ctx context.Context, filters *ProductFilters) (*ProductPage, error)
	GetCategories(ctx context.Context) ([]string, error)

	// In-place edits
	UpdatePrice(ctx context.Context, id string, req *UpdatePriceRequest) (*models.Product, error)
	UpdateInventory(ctx context.Context, id string, req *UpdateInventoryRequest) (*models.Product, error)

	// Batched edits, applied atomically
	DeleteProducts(ctx context.Context, req *BulkDeleteRequest) (int, error)
	SetPublished(ctx context.Context, req *BulkPublishRequest) (int, error)

	// ExportProducts writes the full catalog in the import CSV format
	ExportProducts(ctx context.Context, w io.Writer) error
}

// StatsService computes the sales statistics dashboard
type StatsService interface {
	SalesReport(ctx context.Context, req *SalesReportRequest) (*analytics.Report, error)
}

// PricingService answers public price queries for published products
type PricingService interface {
	Lookup(ctx context.Context, req *PriceLookupRequest) (*pricing.Quote, error)
	Catalog(ctx context.Context, quantity float64) (*pricing.Catalog, error)
	PriceItems(ctx context.Context, items []json.RawMessage) ([]pricing.ItemResult, error)
}

// ImportService runs bulk uploads
type ImportService interface {
	ImportProducts(ctx context.Context, filename string, content []byte) (*importer.Result, error)
	SeedCustomers(ctx context.Context, customers []*models.Customer) (int, error)
	ListImports(ctx context.Context) ([]storage.FileMetadata, error)
	GetImport(ctx context.Context, name string) ([]byte, error)
	DeleteImport(ctx context.Context, name string) error
}

// AuthService signs the administrator in
type AuthService interface {
	Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error)
}

// Product service types

// CreateProductRequest is the single-product form. Lists may be sent as
// arrays or comma-separated text, attributes as an object or JSON text.
type CreateProductRequest struct {
	ID         string             `json:"id,omitempty"`
	Name       string             `json:"nombre" validate:"required"`
	SKU        *string            `json:"sku,omitempty"`
	Type       models.ProductType `json:"tipo,omitempty" validate:"omitempty,oneof=simple variation variant"`
	Published  *bool              `json:"publicado,omitempty"`
	Price      PriceInput         `json:"precio"`
	Inventory  FormNumber         `json:"inventario"`
	Categories StringList         `json:"categorias" validate:"min=1,dive,required"`
	Images     StringList         `json:"imagenes" validate:"dive,url"`
	Attributes AttributeMap       `json:"atributos"`
}

// PriceInput is the nested price of the product form.
type PriceInput struct {
	Normal     FormNumber  `json:"normal" validate:"gt=0"`
	Discounted *FormNumber `json:"rebajado,omitempty" validate:"omitempty,gt=0"`
}

// ProductFilters holds the catalog listing controls
type ProductFilters struct {
	Query     string `form:"q"`
	Category  string `form:"categoria"`
	Published string `form:"publicado"`
	Page      int    `form:"pagina"`
	PerPage   int    `form:"por_pagina"`
}

// ProductPage is one page of the filtered catalog
type ProductPage struct {
	Items   []*models.Product `json:"items"`
	Total   int               `json:"total"`
	Page    int               `json:"pagina"`
	PerPage int               `json:"porPagina"`
	Pages   int               `json:"paginas"`
}

type UpdatePriceRequest struct {
	Normal FormNumber `json:"normal" validate:"gt=0"`
}

type UpdateInventoryRequest struct {
	Inventory FormNumber `json:"inventario" validate:"gte=0"`
}

type BulkDeleteRequest struct {
	IDs []string `json:"ids" validate:"min=1,dive,required"`
}

type BulkPublishRequest struct {
	IDs       []string `json:"ids" validate:"min=1,dive,required"`
	Published *bool    `json:"publicado" validate:"required"`
}

// Statistics types

// SalesReportRequest selects the reporting window
type SalesReportRequest struct {
	Preset string `form:"rango"`
	From   string `form:"desde"`
	To     string `form:"hasta"`
}

// Pricing types

// PriceLookupRequest mirrors the query parameters of the pricing endpoint
type PriceLookupRequest struct {
	ID       string
	Code     string
	Name     string
	Quantity float64
}

// Auth types

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=4"`
}

type LoginResponse struct {
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expires_in"`
	Email     string `json:"email"`
}
