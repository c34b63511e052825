package models

import (
	"encoding/json"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestNumber_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{`12.5`, 12.5},
		{`"300"`, 300},
		{`" 42 "`, 42},
		{`"abc"`, 0},
		{`null`, 0},
		{`""`, 0},
		{`true`, 0},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var n Number
			require.NoError(t, json.Unmarshal([]byte(tt.in), &n))
			assert.Equal(t, tt.want, n.Float())
		})
	}
}

func TestNumber_BSONRoundTrip(t *testing.T) {
	type doc struct {
		Value Number `bson:"value"`
	}

	data, err := bson.Marshal(doc{Value: 7.25})
	require.NoError(t, err)

	var out doc
	require.NoError(t, bson.Unmarshal(data, &out))
	assert.Equal(t, Number(7.25), out.Value)

	data, err = bson.Marshal(bson.M{"value": "19.9"})
	require.NoError(t, err)
	require.NoError(t, bson.Unmarshal(data, &out))
	assert.Equal(t, Number(19.9), out.Value)

	data, err = bson.Marshal(bson.M{"value": int32(3)})
	require.NoError(t, err)
	require.NoError(t, bson.Unmarshal(data, &out))
	assert.Equal(t, Number(3), out.Value)
}

func TestText_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		in   string
		want Text
	}{
		{`"abc"`, "abc"},
		{`42`, "42"},
		{`1122334455`, "1122334455"},
		{`-3.50`, "-3.5"},
		{`1.1e3`, "1100"},
		{`null`, ""},
		{`true`, ""},
		{`{"a":1}`, ""},
	}

	for _, tt := range tests {
		var got Text
		if err := json.Unmarshal([]byte(tt.in), &got); err != nil {
			t.Errorf("Unmarshal(%s) error = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Unmarshal(%s) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestText_UnmarshalBSON(t *testing.T) {
	type doc struct {
		Phone Text `bson:"telefono"`
	}

	for _, value := range []any{"1155550000", int64(1155550000), int32(1155550)} {
		data, err := bson.Marshal(bson.M{"telefono": value})
		require.NoError(t, err)

		var out doc
		require.NoError(t, bson.Unmarshal(data, &out))
		assert.Equal(t, Text(fmt.Sprint(value)), out.Phone)
	}
}

func TestParseFloatPrefix(t *testing.T) {
	tests := []struct {
		in     string
		want   float64
		wantOK bool
	}{
		{"12", 12, true},
		{"  3.5kg", 3.5, true},
		{"-2", -2, true},
		{".5", 0.5, true},
		{"1e3x", 1000, true},
		{"abc", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		got, ok := ParseFloatPrefix(tt.in)
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("ParseFloatPrefix(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}

	got, ok := ParseFloatPrefix("Infinity")
	assert.True(t, ok)
	assert.True(t, math.IsInf(got, 1))
}

func TestTimestamp_JSON(t *testing.T) {
	ts := NewTimestamp(time.Date(2024, 3, 5, 10, 30, 0, 0, time.UTC))
	assert.Equal(t, "2024-03-05T10:30:00.000Z", ts.String())

	data, err := json.Marshal(ts)
	require.NoError(t, err)
	assert.Equal(t, `"2024-03-05T10:30:00.000Z"`, string(data))

	var zero Timestamp
	data, err = json.Marshal(zero)
	require.NoError(t, err)
	assert.Equal(t, "null", string(data))

	var fromText Timestamp
	require.NoError(t, json.Unmarshal([]byte(`"2024-03-05"`), &fromText))
	assert.Equal(t, DateText("2024-03-05"), fromText)

	var fromMillis Timestamp
	require.NoError(t, json.Unmarshal([]byte(`1709634600000`), &fromMillis))
	assert.Equal(t, time.Date(2024, 3, 5, 10, 30, 0, 0, time.UTC), fromMillis.Time)

	var fromExport Timestamp
	require.NoError(t, json.Unmarshal([]byte(`{"seconds":1709634600,"nanoseconds":0}`), &fromExport))
	assert.Equal(t, time.Date(2024, 3, 5, 10, 30, 0, 0, time.UTC), fromExport.Time)
}

func TestTimestamp_BSON(t *testing.T) {
	type doc struct {
		At Timestamp `bson:"at"`
	}

	native := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	data, err := bson.Marshal(doc{At: NativeTime(native)})
	require.NoError(t, err)

	var out doc
	require.NoError(t, bson.Unmarshal(data, &out))
	assert.True(t, out.At.Time.Equal(native))
	assert.Empty(t, out.At.Text)

	data, err = bson.Marshal(doc{At: DateText("2024-01-02")})
	require.NoError(t, err)
	require.NoError(t, bson.Unmarshal(data, &out))
	assert.Equal(t, "2024-01-02", out.At.Text)
	assert.True(t, out.At.Time.IsZero())
}

func TestProduct_NormalizeAndStamp(t *testing.T) {
	p := &Product{ID: "1", Name: "Botón", Type: "variant", Price: Price{Normal: 10}, Categories: []string{"Botones"}}
	p.Normalize()

	assert.Equal(t, ProductTypeVariation, p.Type)
	assert.NotNil(t, p.Images)
	assert.NotNil(t, p.Attributes)
	assert.NoError(t, p.Validate())

	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	p.Stamp(created)
	assert.Equal(t, p.CreatedAt, p.UpdatedAt)

	p.Stamp(created.Add(time.Hour))
	assert.Equal(t, "2024-01-01T00:00:00.000Z", p.CreatedAt.String())
	assert.Equal(t, "2024-01-01T01:00:00.000Z", p.UpdatedAt.String())
}

func TestProduct_Validate(t *testing.T) {
	negative := Number(-1)
	tests := []struct {
		name   string
		modify func(*Product)
	}{
		{"missing name", func(p *Product) { p.Name = " " }},
		{"no categories", func(p *Product) { p.Categories = nil }},
		{"zero price", func(p *Product) { p.Price.Normal = 0 }},
		{"negative discount", func(p *Product) { p.Price.Discounted = &negative }},
		{"negative inventory", func(p *Product) { p.Inventory = -3 }},
		{"unknown type", func(p *Product) { p.Type = "bundle" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewProduct("Cinta", 150, "Merceria")
			tt.modify(p)
			assert.Error(t, p.Validate())
		})
	}
}

func TestSaleLineItem_Amount(t *testing.T) {
	subtotal := Number(99)
	tests := []struct {
		name string
		line SaleLineItem
		want float64
	}{
		{"explicit subtotal", SaleLineItem{Price: 10, Quantity: 3, Subtotal: &subtotal}, 99},
		{"price times quantity", SaleLineItem{Price: 10, Quantity: 3}, 30},
		{"missing quantity", SaleLineItem{Price: 10}, 10},
		{"deck priced per line", SaleLineItem{Price: 500, Quantity: 4, Category: "Maderas", Subcategory: "deck"}, 500},
	}

	for _, tt := range tests {
		if got := tt.line.Amount(); got != tt.want {
			t.Errorf("%s: Amount() = %v, want %v", tt.name, got, tt.want)
		}
	}

	assert.Equal(t, "sin-id", SaleLineItem{}.Key())
	assert.Equal(t, "Cinta", SaleLineItem{Name: "Cinta"}.Key())
}

func TestSale_Accessors(t *testing.T) {
	s := &Sale{
		CreatedAt:     DateText("2024-02-01"),
		PaymentStatus: "PAGADO",
		Items:         []SaleLineItem{{ID: "a"}},
	}

	assert.Equal(t, "2024-02-01", s.EffectiveDate().String())
	assert.Equal(t, PaymentStatusPaid, s.Status())
	assert.Equal(t, UnknownPaymentMethod, s.PaymentMethodLabel())
	assert.Len(t, s.Lines(), 1)
	assert.Empty(t, s.CustomerPhone())
}
