package pricing

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"baul-admin-api/internal/models"
)

func TestCalculate_IgnoresDiscount(t *testing.T) {
	discounted := models.Number(700)
	p := &models.Product{Price: models.Price{Normal: 1000, Discounted: &discounted}}

	got := Calculate(p, 3)

	assert.Equal(t, Pricing{Quantity: 3, UnitPrice: 1000, TotalPrice: 3000}, got)
}

func TestCalculate_QuantityFallback(t *testing.T) {
	p := &models.Product{Price: models.Price{Normal: 50}}

	for _, qty := range []float64{0, -2, math.NaN(), math.Inf(1)} {
		assert.Equal(t, 1.0, Calculate(p, qty).Quantity)
	}
	assert.Equal(t, 2.5, Calculate(p, 2.5).Quantity)
	assert.Equal(t, 125.0, Calculate(p, 2.5).TotalPrice)
}

func TestParseQuantity(t *testing.T) {
	assert.Equal(t, 1.0, ParseQuantity(""))
	assert.Equal(t, 4.0, ParseQuantity("4"))
	assert.Equal(t, 2.5, ParseQuantity("2.5kg"))
	assert.True(t, math.IsNaN(ParseQuantity("muchos")))
}

func TestQuantityFromJSON(t *testing.T) {
	assert.Equal(t, 1.0, QuantityFromJSON(nil))
	assert.Equal(t, 3.0, QuantityFromJSON(json.RawMessage(`3`)))
	assert.Equal(t, 0.0, QuantityFromJSON(json.RawMessage(`0`)))
	assert.Equal(t, 7.0, QuantityFromJSON(json.RawMessage(`"7"`)))
	assert.Equal(t, 1.0, QuantityFromJSON(json.RawMessage(`""`)))
}

func TestIDFromJSON(t *testing.T) {
	assert.Equal(t, "abc", IDFromJSON(json.RawMessage(`"abc"`)))
	assert.Equal(t, "9625", IDFromJSON(json.RawMessage(`9625`)))
	assert.Equal(t, "", IDFromJSON(json.RawMessage(`{}`)))
}

func TestIsTruthy(t *testing.T) {
	for _, v := range []string{"1", "true", "T", "si", "Sí", "YES"} {
		assert.True(t, IsTruthy(v), v)
	}
	for _, v := range []string{"", "0", "no", "false"} {
		assert.False(t, IsTruthy(v), v)
	}
}

func TestItemResult_JSON(t *testing.T) {
	input := json.RawMessage(`{"id":"x"}`)

	encoded, err := json.Marshal([]ItemResult{
		NotPublishedItem(false, input),
		NotFoundItem(input),
	})
	require.NoError(t, err)

	assert.JSONEq(t, `[
		{"error":"Producto no publicado","publicado":false,"mensaje":"Solo se pueden consultar precios de productos publicados","input":{"id":"x"}},
		{"error":"Producto no encontrado","input":{"id":"x"}}
	]`, string(encoded))
}

func TestNewQuote_NormalizesProduct(t *testing.T) {
	p := &models.Product{ID: "p1", Published: true, Price: models.Price{Normal: 10}}

	q := NewQuote(p, 2)

	encoded, err := json.Marshal(q)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"id":"p1",
		"producto":{"id":"p1","nombre":"","sku":null,"tipo":"simple","publicado":true,
			"precio":{"normal":10,"rebajado":null},"inventario":0,"categorias":[],"imagenes":[],
			"atributos":{},"fechaCreacion":null,"fechaActualizacion":null},
		"pricing":{"cantidad":2,"precioUnitario":10,"precioTotal":20}
	}`, string(encoded))
}
