package importer

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"
	"strings"

	"baul-admin-api/internal/models"
)

// TemplateFilename is the download name of the blank import template.
const TemplateFilename = "plantilla_productos.csv"

var templateExample = []string{
	"9625",
	"Curso de Costura - Jueves 10hs",
	"CSV-001",
	"variation",
	"true",
	"1000",
	"800",
	"4",
	"Costura;Taller",
	"https://ejemplo.com/imagen1.jpg;https://ejemplo.com/imagen2.jpg",
	`{"Turno": "Jueves 10hs", "Seminario": "Seminario"}`,
}

// WriteTemplate writes the import header and one example row.
func WriteTemplate(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return err
	}
	if err := cw.Write(templateExample); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}

// WriteProducts exports products in the import format, so the output can
// be edited and uploaded again.
func WriteProducts(w io.Writer, products []*models.Product) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return err
	}
	for _, p := range products {
		if err := cw.Write(productRow(p)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func productRow(p *models.Product) []string {
	discounted := ""
	if d, ok := p.DiscountedPrice(); ok {
		discounted = formatNumber(d)
	}

	attributes := ""
	if len(p.Attributes) > 0 {
		if encoded, err := json.Marshal(p.Attributes); err == nil {
			attributes = string(encoded)
		}
	}

	return []string{
		p.ID,
		p.Name,
		p.SKUValue(),
		string(p.Type),
		strconv.FormatBool(p.Published),
		formatNumber(p.Price.Normal.Float()),
		discounted,
		formatNumber(p.Inventory.Float()),
		strings.Join(p.Categories, listSeparator),
		strings.Join(p.Images, listSeparator),
		attributes,
	}
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
