package importer

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"baul-admin-api/internal/models"
)

type memoryWriter struct {
	products []*models.Product
	failOn   string
}

func (w *memoryWriter) Create(ctx context.Context, p *models.Product) error {
	if p.ID == w.failOn {
		return errors.New("quota exceeded")
	}
	if err := p.Validate(); err != nil {
		return err
	}
	w.products = append(w.products, p)
	return nil
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

const header = "id,nombre,sku,tipo,publicado,precio_normal,precio_rebajado,inventario,categorias,imagenes,atributos"

func TestSplitLine(t *testing.T) {
	assert.Equal(t, []string{"x", "a,b", "y"}, SplitLine(`x,"a,b",y`))
	assert.Equal(t, []string{"", "", ""}, SplitLine(",,"))
	assert.Equal(t, []string{`say "hi"`}, SplitLine(`"say ""hi"""`))
	assert.Equal(t, []string{"a", "b"}, SplitLine(" a , b "))
}

func TestCheckFormat(t *testing.T) {
	assert.NoError(t, CheckFormat("productos.CSV"))
	assert.ErrorIs(t, CheckFormat("productos.xlsx"), ErrUnsupportedFormat)
	assert.ErrorIs(t, CheckFormat("productos"), ErrUnsupportedFormat)
}

func TestTokenize(t *testing.T) {
	table, err := Tokenize("\uFEFF\"id\", nombre ,precio_normal\r\n1,Hilo,\"12,5\"\r\n\r\n2,Aguja\n")
	require.NoError(t, err)

	assert.Equal(t, []string{"id", "nombre", "precio_normal"}, table.Headers)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, 1, table.Rows[0].Ordinal)
	assert.Equal(t, "12,5", table.Rows[0].Get("precio_normal"))
	assert.Equal(t, 2, table.Rows[1].Ordinal)
	assert.True(t, table.Rows[1].Has("precio_normal"))
	assert.Equal(t, "", table.Rows[1].Get("precio_normal"))
}

func TestTokenize_NoDataRows(t *testing.T) {
	for _, content := range []string{"", header, header + "\n", header + "\n  \n"} {
		_, err := Tokenize(content)
		assert.ErrorIs(t, err, ErrNoDataRows)
	}
}

func TestCoerce(t *testing.T) {
	table, err := Tokenize(header + "\n" +
		`9625,Curso,CSV-001,variation,SI,"1000,50",800,"4,9",Costura; Taller;,https://a/1.jpg,"{""Turno"": ""Jueves""}"`)
	require.NoError(t, err)

	rec := Coerce(table.Rows[0])
	p := rec.Product

	assert.Equal(t, "9625", p.ID)
	require.NotNil(t, p.SKU)
	assert.Equal(t, "CSV-001", *p.SKU)
	assert.Equal(t, models.ProductTypeVariation, p.Type)
	assert.True(t, p.Published)
	assert.True(t, rec.HasPrice)
	assert.Equal(t, models.Number(1000.5), p.Price.Normal)
	require.NotNil(t, p.Price.Discounted)
	assert.Equal(t, models.Number(800), *p.Price.Discounted)
	assert.Equal(t, models.Number(4), p.Inventory)
	assert.Equal(t, []string{"Costura", "Taller"}, p.Categories)
	assert.Equal(t, []string{"https://a/1.jpg"}, p.Images)
	assert.Equal(t, map[string]any{"Turno": "Jueves"}, p.Attributes)
}

func TestCoerce_Defaults(t *testing.T) {
	table, err := Tokenize("id,nombre,precio_normal,categorias,atributos\n1,Hilo,abc,Merceria,{roto")
	require.NoError(t, err)

	rec := Coerce(table.Rows[0])

	assert.True(t, rec.Product.Published, "missing published column defaults to true")
	assert.False(t, rec.HasPrice)
	assert.Nil(t, rec.Product.SKU)
	assert.Equal(t, map[string]any{}, rec.Product.Attributes)

	table, err = Tokenize("id,publicado\n1,")
	require.NoError(t, err)
	assert.False(t, Coerce(table.Rows[0]).Product.Published, "an empty published cell is false")
}

func TestValidate_RuleOrder(t *testing.T) {
	content := header + "\n" +
		",Sin id,,,,100,,,Cat,,\n" +
		"2,Sin precio,,,,,,,Cat,,\n" +
		"3,Precio negativo,,,,-5,,,Cat,,\n" +
		"4,Rebaja negativa,,,,100,-1,,Cat,,\n" +
		"5,Stock negativo,,,,100,,-2,Cat,,\n" +
		"6,Ok,,,,100,,,Cat,,\n"
	_, records, err := Parse("lote.csv", []byte(content))
	require.NoError(t, err)

	products, err := Validate(records)
	assert.Nil(t, products)

	var rejected *BatchRejectedError
	require.ErrorAs(t, err, &rejected)
	assert.Equal(t, []LineError{
		{Line: 1, ID: "Sin ID", Reason: ReasonMissingFields},
		{Line: 2, ID: "2", Reason: ReasonMissingPrice},
		{Line: 3, ID: "3", Reason: ReasonNonPositivePrice},
		{Line: 4, ID: "4", Reason: ReasonNonPositiveDiscount},
		{Line: 5, ID: "5", Reason: ReasonNegativeInventory},
	}, rejected.Errors)
	assert.Contains(t, err.Error(), "obligatorios")
	assert.True(t, strings.HasPrefix(err.Error(), "Se encontraron 5 productos con errores:\n\nLínea 1 (Sin ID): "))
}

func TestValidate_AppliesDefaults(t *testing.T) {
	_, records, err := Parse("ok.csv", []byte("id,nombre,precio_normal,categorias\n1,Hilo,10,Merceria"))
	require.NoError(t, err)

	products, err := Validate(records)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, models.ProductTypeSimple, products[0].Type)
	assert.Equal(t, models.Number(0), products[0].Inventory)
	assert.True(t, products[0].Published)
}

func TestPipeline_RejectedBatchWritesNothing(t *testing.T) {
	writer := &memoryWriter{}
	pipeline := NewPipeline(NewPersister(writer, 0, quietLogger()), quietLogger())

	content := header + "\n" +
		"1,Bueno,,,,100,,,Cat,,\n" +
		",Malo,,,,100,,,Cat,,\n"
	_, err := pipeline.Run(context.Background(), "lote.csv", []byte(content), nil)

	assert.True(t, IsRejected(err))
	assert.Empty(t, writer.products)
}

func TestValidate_ProductType(t *testing.T) {
	content := header + "\n" +
		"1,Uno,,Simple,,100,,,Cat,,\n" +
		"2,Dos,,VARIANT,,100,,,Cat,,\n" +
		"3,Tres,,combo,,100,,,Cat,,\n"
	_, records, err := Parse("lote.csv", []byte(content))
	require.NoError(t, err)

	_, err = Validate(records)

	var rejected *BatchRejectedError
	require.ErrorAs(t, err, &rejected)
	assert.Equal(t, []LineError{{Line: 3, ID: "3", Reason: ReasonInvalidType}}, rejected.Errors)
	assert.Equal(t, models.ProductTypeSimple, records[0].Product.Type)
	assert.Equal(t, models.ProductTypeVariation, records[1].Product.Type)
}

func TestValidate_DuplicateIDs(t *testing.T) {
	content := header + "\n" +
		"1,Uno,,,,100,,,Cat,,\n" +
		"2,Dos,,,,100,,,Cat,,\n" +
		"1,Otra vez,,,,100,,,Cat,,\n"
	_, records, err := Parse("lote.csv", []byte(content))
	require.NoError(t, err)

	_, err = Validate(records)

	var rejected *BatchRejectedError
	require.ErrorAs(t, err, &rejected)
	assert.Equal(t, []LineError{{Line: 3, ID: "1", Reason: ReasonDuplicateID}}, rejected.Errors)
}

func TestPipeline_InvalidTypeWritesNothing(t *testing.T) {
	writer := &memoryWriter{}
	pipeline := NewPipeline(NewPersister(writer, 0, quietLogger()), quietLogger())

	content := header + "\n" +
		"P1,Uno,,simple,,10,,,Telas,,\n" +
		"P2,Dos,,kit,,20,,,Telas,,\n"
	_, err := pipeline.Run(context.Background(), "lote.csv", []byte(content), nil)

	assert.True(t, IsRejected(err))
	assert.Empty(t, writer.products)
}

func TestPipeline_Success(t *testing.T) {
	writer := &memoryWriter{}
	pipeline := NewPipeline(NewPersister(writer, 0, quietLogger()), quietLogger())

	content := header + "\n" +
		"1,Uno,,,,100,,,Cat,,\n" +
		"2,Dos,,,,200,,3,Cat,,\n"
	var seen []Progress
	result, err := pipeline.Run(context.Background(), "lote.csv", []byte(content), func(p Progress) {
		seen = append(seen, p)
	})

	require.NoError(t, err)
	assert.Equal(t, 2, result.Imported)
	assert.Equal(t, "Se cargaron exitosamente 2 productos.", result.Message)
	assert.Equal(t, []Progress{{Current: 1, Total: 2}, {Current: 2, Total: 2}}, seen)
	require.Len(t, writer.products, 2)
	assert.False(t, writer.products[0].CreatedAt.IsZero())
	assert.Equal(t, writer.products[0].CreatedAt, writer.products[0].UpdatedAt)
}

func TestPipeline_StopsAtFirstWriteFailure(t *testing.T) {
	writer := &memoryWriter{failOn: "2"}
	pipeline := NewPipeline(NewPersister(writer, 0, quietLogger()), quietLogger())

	content := header + "\n" +
		"1,Uno,,,,100,,,Cat,,\n" +
		"2,Dos,,,,200,,,Cat,,\n" +
		"3,Tres,,,,300,,,Cat,,\n"
	result, err := pipeline.Run(context.Background(), "lote.csv", []byte(content), nil)

	var writeErr *WriteError
	require.ErrorAs(t, err, &writeErr)
	assert.Equal(t, "Error al guardar producto 2: quota exceeded", err.Error())
	assert.Equal(t, 1, result.Imported)
	require.Len(t, writer.products, 1)
	assert.Equal(t, "1", writer.products[0].ID)
}

func TestPipeline_StructuralErrors(t *testing.T) {
	pipeline := NewPipeline(NewPersister(&memoryWriter{}, 0, quietLogger()), quietLogger())

	_, err := pipeline.Run(context.Background(), "lote.xls", []byte(header), nil)
	assert.True(t, IsStructural(err))

	_, err = pipeline.Run(context.Background(), "lote.csv", []byte(header), nil)
	assert.True(t, IsStructural(err))
}

func TestWriteProducts_RoundTrip(t *testing.T) {
	sku := "SKU-1"
	discounted := models.Number(80)
	original := &models.Product{
		ID:         "p-1",
		Name:       "Tela, algodón",
		SKU:        &sku,
		Type:       models.ProductTypeVariation,
		Published:  false,
		Price:      models.Price{Normal: 100.5, Discounted: &discounted},
		Inventory:  7,
		Categories: []string{"Telas", "Algodón"},
		Images:     []string{"https://x/1.jpg"},
		Attributes: map[string]any{"Color": "Rojo"},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteProducts(&buf, []*models.Product{original}))

	_, records, err := Parse("export.csv", buf.Bytes())
	require.NoError(t, err)
	products, err := Validate(records)
	require.NoError(t, err)
	require.Len(t, products, 1)

	got := products[0]
	assert.Equal(t, original.Name, got.Name)
	assert.Equal(t, *original.SKU, *got.SKU)
	assert.Equal(t, original.Type, got.Type)
	assert.False(t, got.Published)
	assert.Equal(t, original.Price.Normal, got.Price.Normal)
	assert.Equal(t, *original.Price.Discounted, *got.Price.Discounted)
	assert.Equal(t, original.Inventory, got.Inventory)
	assert.Equal(t, original.Categories, got.Categories)
	assert.Equal(t, original.Attributes, got.Attributes)
}

func TestWriteTemplate(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTemplate(&buf))

	_, records, err := Parse(TemplateFilename, buf.Bytes())
	require.NoError(t, err)
	products, err := Validate(records)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "9625", products[0].ID)
	assert.Equal(t, map[string]any{"Turno": "Jueves 10hs", "Seminario": "Seminario"}, products[0].Attributes)
}
