package importer

import (
	"encoding/json"
	"math"
	"strings"

	"baul-admin-api/internal/models"
)

// Column names of the import format.
const (
	ColumnID            = "id"
	ColumnName          = "nombre"
	ColumnSKU           = "sku"
	ColumnType          = "tipo"
	ColumnPublished     = "publicado"
	ColumnNormalPrice   = "precio_normal"
	ColumnDiscountPrice = "precio_rebajado"
	ColumnInventory     = "inventario"
	ColumnCategories    = "categorias"
	ColumnImages        = "imagenes"
	ColumnAttributes    = "atributos"
)

const listSeparator = ";"

// Columns lists the import format in file order.
var Columns = []string{
	ColumnID, ColumnName, ColumnSKU, ColumnType, ColumnPublished,
	ColumnNormalPrice, ColumnDiscountPrice, ColumnInventory,
	ColumnCategories, ColumnImages, ColumnAttributes,
}

// Record is a coerced row awaiting validation.
type Record struct {
	Line      int
	Product   models.Product
	HasPrice  bool
	Inventory float64
}

// Coerce converts a row's tokens to typed product fields. Coercion never
// fails: unreadable numbers become 0, unreadable attributes an empty map.
func Coerce(row Row) *Record {
	rec := &Record{Line: row.Ordinal}
	p := &rec.Product

	p.ID = unquote(row.Get(ColumnID))
	p.Name = unquote(row.Get(ColumnName))
	if sku := unquote(row.Get(ColumnSKU)); sku != "" {
		p.SKU = &sku
	}
	p.Type = models.ParseProductType(unquote(row.Get(ColumnType)))

	p.Published = true
	if row.Has(ColumnPublished) {
		p.Published = parseFlag(unquote(row.Get(ColumnPublished)))
	}

	normal := parseLocaleNumber(unquote(row.Get(ColumnNormalPrice)))
	if normal != 0 {
		rec.HasPrice = true
		p.Price.Normal = models.Number(normal)
		if discounted := parseLocaleNumber(unquote(row.Get(ColumnDiscountPrice))); discounted != 0 {
			d := models.Number(discounted)
			p.Price.Discounted = &d
		}
	}

	rec.Inventory = parseLocaleNumber(unquote(row.Get(ColumnInventory)))
	p.Inventory = models.Number(math.Trunc(rec.Inventory))

	p.Categories = splitList(unquote(row.Get(ColumnCategories)))
	p.Images = splitList(unquote(row.Get(ColumnImages)))
	p.Attributes = parseAttributes(unquote(row.Get(ColumnAttributes)))

	return rec
}

// unquote strips one pair of enclosing double quotes.
func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && strings.HasPrefix(s, `"`) && strings.HasSuffix(s, `"`) {
		return s[1 : len(s)-1]
	}
	return s
}

// parseLocaleNumber reads numbers written with a decimal comma. Only the
// first comma is taken as the separator.
func parseLocaleNumber(s string) float64 {
	s = strings.Replace(s, ",", ".", 1)
	v, ok := models.ParseFloatPrefix(s)
	if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func parseFlag(s string) bool {
	switch strings.ToLower(s) {
	case "true", "1", "si":
		return true
	default:
		return false
	}
}

func splitList(s string) []string {
	out := []string{}
	if s == "" {
		return out
	}
	for _, item := range strings.Split(s, listSeparator) {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func parseAttributes(s string) map[string]any {
	attrs := map[string]any{}
	if s == "" {
		return attrs
	}
	if err := json.Unmarshal([]byte(s), &attrs); err != nil || attrs == nil {
		return map[string]any{}
	}
	return attrs
}
