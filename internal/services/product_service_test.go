package services

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"baul-admin-api/internal/importer"
	"baul-admin-api/internal/models"
	"baul-admin-api/internal/repositories"
)

func decodeCreateRequest(t *testing.T, body string) *CreateProductRequest {
	t.Helper()
	var req CreateProductRequest
	require.NoError(t, json.Unmarshal([]byte(body), &req))
	return &req
}

func TestProductService_CreateProductFromForm(t *testing.T) {
	store := setupTestStore(t)
	service := NewProductService(store.Products(), nil, testLogger())

	req := decodeCreateRequest(t, `{
		"nombre": "  Tela de lino  ",
		"precio": {"normal": "1500,5", "rebajado": 0},
		"inventario": -3,
		"categorias": "Telas, Lino ,",
		"imagenes": ["https://cdn.example.com/lino.jpg"],
		"atributos": "{\"Color\": \"Crudo\"}"
	}`)

	product, err := service.CreateProduct(context.Background(), req)
	require.NoError(t, err)

	assert.NotEmpty(t, product.ID)
	assert.Equal(t, "Tela de lino", product.Name)
	assert.Equal(t, models.ProductTypeSimple, product.Type)
	assert.True(t, product.Published)
	assert.Equal(t, models.Number(1500.5), product.Price.Normal)
	assert.Nil(t, product.Price.Discounted)
	assert.Equal(t, models.Number(0), product.Inventory)
	assert.Equal(t, []string{"Telas", "Lino"}, product.Categories)
	assert.Equal(t, "Crudo", product.Attributes["Color"])
	assert.False(t, product.CreatedAt.IsZero())
	assert.Equal(t, product.CreatedAt, product.UpdatedAt)

	stored, err := store.Products().GetByID(context.Background(), product.ID)
	require.NoError(t, err)
	assert.Equal(t, product.Name, stored.Name)
}

func TestProductService_CreateProductKeepsExplicitValues(t *testing.T) {
	store := setupTestStore(t)
	service := NewProductService(store.Products(), nil, testLogger())

	req := decodeCreateRequest(t, `{
		"id": "P-1",
		"nombre": "Botones",
		"tipo": "variant",
		"publicado": false,
		"precio": {"normal": 200, "rebajado": "150"},
		"inventario": "12",
		"categorias": ["Merceria"],
		"atributos": "no es json"
	}`)

	product, err := service.CreateProduct(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, "P-1", product.ID)
	assert.Equal(t, models.ProductTypeVariation, product.Type)
	assert.False(t, product.Published)
	discounted, ok := product.DiscountedPrice()
	assert.True(t, ok)
	assert.Equal(t, 150.0, discounted)
	assert.Equal(t, models.Number(12), product.Inventory)
	assert.Empty(t, product.Attributes)

	_, err = service.CreateProduct(context.Background(), decodeCreateRequest(t, `{
		"id": "P-1", "nombre": "Otro", "precio": {"normal": 1}, "categorias": ["X"]
	}`))
	assert.True(t, repositories.IsDuplicate(err), "expected duplicate error, got %v", err)
}

func TestProductService_CreateProductValidation(t *testing.T) {
	store := setupTestStore(t)
	service := NewProductService(store.Products(), nil, testLogger())

	tests := []struct {
		name string
		body string
	}{
		{"missing name", `{"nombre": " ", "precio": {"normal": 10}, "categorias": ["X"]}`},
		{"zero price", `{"nombre": "A", "precio": {"normal": 0}, "categorias": ["X"]}`},
		{"negative discount", `{"nombre": "A", "precio": {"normal": 10, "rebajado": -1}, "categorias": ["X"]}`},
		{"no categories", `{"nombre": "A", "precio": {"normal": 10}, "categorias": ""}`},
		{"bad image", `{"nombre": "A", "precio": {"normal": 10}, "categorias": ["X"], "imagenes": ["no-es-url"]}`},
		{"bad type", `{"nombre": "A", "tipo": "bundle", "precio": {"normal": 10}, "categorias": ["X"]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.CreateProduct(context.Background(), decodeCreateRequest(t, tt.body))
			assert.True(t, IsValidation(err), "expected validation error, got %v", err)
		})
	}

	count, err := store.Products().Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestProductService_ListProducts(t *testing.T) {
	store := setupTestStore(t)
	service := NewProductService(store.Products(), nil, testLogger())
	ctx := context.Background()

	seedProduct(t, store, "p1", "Boton Azul", 0, true, "Merceria")
	seedProduct(t, store, "p2", "Aguja", 5, true, "Merceria", "Agujas")
	seedProduct(t, store, "p3", "Boton Rojo", 2, false, "Merceria")
	seedProduct(t, store, "z-lino", "Tela", 1, true, "Telas")

	names := func(page *ProductPage) []string {
		out := []string{}
		for _, p := range page.Items {
			out = append(out, p.Name)
		}
		return out
	}

	tests := []struct {
		name    string
		filters *ProductFilters
		want    []string
	}{
		{"all, in stock first then by name", nil, []string{"Aguja", "Boton Rojo", "Tela", "Boton Azul"}},
		{"substring ignoring case and spaces", &ProductFilters{Query: "BOTON ROJO"}, []string{"Boton Rojo"}},
		{"substring", &ProductFilters{Query: "ton"}, []string{"Boton Rojo", "Boton Azul"}},
		{"prefix", &ProductFilters{Query: "bot."}, []string{"Boton Rojo", "Boton Azul"}},
		{"prefix does not match inside", &ProductFilters{Query: "ton."}, []string{}},
		{"matches id", &ProductFilters{Query: "z-li"}, []string{"Tela"}},
		{"category", &ProductFilters{Category: "Agujas"}, []string{"Aguja"}},
		{"published", &ProductFilters{Published: FilterPublished, Category: "Merceria"}, []string{"Aguja", "Boton Azul"}},
		{"unpublished", &ProductFilters{Published: FilterUnpublished}, []string{"Boton Rojo"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := service.ListProducts(ctx, tt.filters)
			require.NoError(t, err)
			assert.Equal(t, tt.want, names(page))
			assert.Equal(t, len(tt.want), page.Total)
		})
	}

	page, err := service.ListProducts(ctx, &ProductFilters{Page: 2, PerPage: 3})
	require.NoError(t, err)
	assert.Equal(t, []string{"Boton Azul"}, names(page))
	assert.Equal(t, 4, page.Total)
	assert.Equal(t, 2, page.Pages)

	page, err = service.ListProducts(ctx, &ProductFilters{Page: 9})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Equal(t, 1, page.Pages)
	assert.Equal(t, DefaultPageSize, page.PerPage)
}

func TestProductService_GetCategories(t *testing.T) {
	store := setupTestStore(t)
	service := NewProductService(store.Products(), nil, testLogger())

	seedProduct(t, store, "p1", "A", 1, true, "Telas", "Merceria")
	seedProduct(t, store, "p2", "B", 1, false, "Merceria", "Avios")

	categories, err := service.GetCategories(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Avios", "Merceria", "Telas"}, categories)
}

func TestProductService_InPlaceUpdates(t *testing.T) {
	store := setupTestStore(t)
	cache := newMemoryCache()
	service := NewProductService(store.Products(), cache, testLogger()).(*productService)
	ctx := context.Background()

	original := seedProduct(t, store, "p1", "Hilo", 3, true, "Merceria")
	later := time.Now().Add(time.Hour)
	service.now = func() time.Time { return later }

	updated, err := service.UpdatePrice(ctx, "p1", &UpdatePriceRequest{Normal: 250})
	require.NoError(t, err)
	assert.Equal(t, models.Number(250), updated.Price.Normal)
	assert.NotEqual(t, original.UpdatedAt, updated.UpdatedAt)
	assert.Equal(t, original.CreatedAt, updated.CreatedAt)

	updated, err = service.UpdateInventory(ctx, "p1", &UpdateInventoryRequest{Inventory: 0})
	require.NoError(t, err)
	assert.Equal(t, models.Number(0), updated.Inventory)

	stored, err := store.Products().GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, models.Number(250), stored.Price.Normal)
	assert.Equal(t, models.Number(0), stored.Inventory)
	assert.Equal(t, []string{"p1", "p1"}, cache.invalidated)

	_, err = service.UpdatePrice(ctx, "p1", &UpdatePriceRequest{Normal: 0})
	assert.True(t, IsValidation(err))

	_, err = service.UpdateInventory(ctx, "p1", &UpdateInventoryRequest{Inventory: -1})
	assert.True(t, IsValidation(err))

	_, err = service.UpdatePrice(ctx, "missing", &UpdatePriceRequest{Normal: 10})
	assert.True(t, repositories.IsNotFound(err), "expected not found, got %v", err)
}

func TestProductService_BatchEdits(t *testing.T) {
	store := setupTestStore(t)
	cache := newMemoryCache()
	service := NewProductService(store.Products(), cache, testLogger())
	ctx := context.Background()

	seedProduct(t, store, "p1", "A", 1, true, "X")
	seedProduct(t, store, "p2", "B", 1, true, "X")
	seedProduct(t, store, "p3", "C", 1, true, "X")

	hidden := false
	_, err := service.SetPublished(ctx, &BulkPublishRequest{IDs: []string{"p1", "missing"}, Published: &hidden})
	assert.True(t, repositories.IsNotFound(err), "expected not found, got %v", err)

	p1, err := store.Products().GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.True(t, p1.Published, "failed batch must not change anything")

	n, err := service.SetPublished(ctx, &BulkPublishRequest{IDs: []string{"p1", "p2"}, Published: &hidden})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	published, err := store.Products().ListPublished(ctx)
	require.NoError(t, err)
	require.Len(t, published, 1)
	assert.Equal(t, "p3", published[0].ID)

	_, err = service.SetPublished(ctx, &BulkPublishRequest{IDs: []string{"p1"}})
	assert.True(t, IsValidation(err), "publicado is required")

	n, err = service.DeleteProducts(ctx, &BulkDeleteRequest{IDs: []string{"p1", "p3"}})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	count, err := store.Products().Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
	assert.Contains(t, cache.invalidated, "p3")

	_, err = service.DeleteProducts(ctx, &BulkDeleteRequest{})
	assert.True(t, IsValidation(err))
}

func TestProductService_ExportRoundTrips(t *testing.T) {
	store := setupTestStore(t)
	service := NewProductService(store.Products(), nil, testLogger())
	ctx := context.Background()

	p := seedProduct(t, store, "p1", "Tela; Lino", 4, true, "Telas", "Lino")
	discounted := models.Number(80.5)
	p.Price.Discounted = &discounted
	p.Attributes = map[string]any{"Color": "Crudo"}
	require.NoError(t, store.Products().Update(ctx, p))
	seedProduct(t, store, "p2", "Aguja", 0, false, "Merceria")

	var buf bytes.Buffer
	require.NoError(t, service.ExportProducts(ctx, &buf))

	rows, records, err := importer.Parse("export.csv", buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, 2, rows)

	products, err := importer.Validate(records)
	require.NoError(t, err)
	require.Len(t, products, 2)

	assert.Equal(t, "p2", products[0].ID, "export is ordered by name")
	assert.False(t, products[0].Published)
	assert.Equal(t, "Tela; Lino", products[1].Name)
	assert.Equal(t, []string{"Telas", "Lino"}, products[1].Categories)
	got, ok := products[1].DiscountedPrice()
	assert.True(t, ok)
	assert.Equal(t, 80.5, got)
	assert.Equal(t, "Crudo", products[1].Attributes["Color"])
}
