package models

import (
	"strings"
)

// PaymentStatus is the settlement state of a sale.
type PaymentStatus string

const (
	PaymentStatusPaid    PaymentStatus = "pagado"
	PaymentStatusPartial PaymentStatus = "parcial"
	PaymentStatusPending PaymentStatus = "pendiente"
)

// DeliveryMethod is how a sale reaches the customer.
type DeliveryMethod string

const (
	DeliveryHome   DeliveryMethod = "envio_domicilio"
	DeliveryPickup DeliveryMethod = "retiro_local"
)

// UnknownPaymentMethod labels sales with no payment method recorded.
const UnknownPaymentMethod = "-"

// unkeyedLine is the grouping key for line items with neither ID nor name.
const unkeyedLine = "sin-id"

// Material lines whose recorded price already covers the whole line.
const (
	categoryWood      = "Maderas"
	subcategoryTongue = "machimbre"
	subcategoryDeck   = "deck"
)

// SaleCustomer is the customer snapshot embedded in a sale.
type SaleCustomer struct {
	Name  string `json:"nombre,omitempty" bson:"nombre,omitempty"`
	Phone Text   `json:"telefono,omitempty" bson:"telefono,omitempty"`
	TaxID Text   `json:"cuit,omitempty" bson:"cuit,omitempty"`
	Email string `json:"email,omitempty" bson:"email,omitempty"`
}

// SaleLineItem is a product line of a sale.
type SaleLineItem struct {
	ID          Text    `json:"id,omitempty" bson:"id,omitempty"`
	Name        string  `json:"nombre,omitempty" bson:"nombre,omitempty"`
	Quantity    Number  `json:"cantidad" bson:"cantidad"`
	Price       Number  `json:"precio" bson:"precio"`
	Subtotal    *Number `json:"subtotal,omitempty" bson:"subtotal,omitempty"`
	Category    string  `json:"categoria,omitempty" bson:"categoria,omitempty"`
	Subcategory string  `json:"subcategoria,omitempty" bson:"subcategoria,omitempty"`
}

// Key groups line items of the same product across sales.
func (l SaleLineItem) Key() string {
	switch {
	case l.ID != "":
		return l.ID.String()
	case l.Name != "":
		return l.Name
	default:
		return unkeyedLine
	}
}

// Amount is the monetary value of the line. An explicit subtotal wins;
// tongue-and-groove and deck wood lines are priced per line; anything
// else is price times quantity (a missing quantity counts as 1).
func (l SaleLineItem) Amount() float64 {
	if l.Subtotal != nil {
		return l.Subtotal.Float()
	}
	if l.Category == categoryWood && (l.Subcategory == subcategoryTongue || l.Subcategory == subcategoryDeck) {
		return l.Price.Float()
	}
	qty := l.Quantity.Float()
	if qty == 0 {
		qty = 1
	}
	return l.Price.Float() * qty
}

// Sale represents a completed sale record
type Sale struct {
	ID             string         `json:"id" bson:"_id"`
	OrderNumber    any            `json:"numeroPedido,omitempty" bson:"numeroPedido,omitempty"`
	Date           Timestamp      `json:"fecha" bson:"fecha"`
	CreatedAt      Timestamp      `json:"fechaCreacion" bson:"fechaCreacion"`
	Total          Number         `json:"total" bson:"total"`
	PaymentStatus  string         `json:"estadoPago,omitempty" bson:"estadoPago,omitempty"`
	DeliveryMethod string         `json:"tipoEnvio,omitempty" bson:"tipoEnvio,omitempty"`
	PaymentMethod  string         `json:"formaPago,omitempty" bson:"formaPago,omitempty"`
	CustomerID     Text           `json:"clienteId,omitempty" bson:"clienteId,omitempty"`
	Customer       *SaleCustomer  `json:"cliente,omitempty" bson:"cliente,omitempty"`
	Products       []SaleLineItem `json:"productos,omitempty" bson:"productos,omitempty"`
	Items          []SaleLineItem `json:"items,omitempty" bson:"items,omitempty"`
}

// EffectiveDate is the sale date, falling back to the creation date.
func (s *Sale) EffectiveDate() Timestamp {
	if !s.Date.IsZero() {
		return s.Date
	}
	return s.CreatedAt
}

// Lines returns the sale's product lines. Older records keep them under items.
func (s *Sale) Lines() []SaleLineItem {
	if len(s.Products) > 0 {
		return s.Products
	}
	return s.Items
}

// Status returns the payment status lower-cased.
func (s *Sale) Status() PaymentStatus {
	return PaymentStatus(strings.ToLower(s.PaymentStatus))
}

// Delivery returns the delivery method as recorded.
func (s *Sale) Delivery() DeliveryMethod {
	return DeliveryMethod(s.DeliveryMethod)
}

// PaymentMethodLabel returns the lower-cased payment method, or "-" when absent.
func (s *Sale) PaymentMethodLabel() string {
	if s.PaymentMethod == "" {
		return UnknownPaymentMethod
	}
	return strings.ToLower(s.PaymentMethod)
}

// CustomerPhone returns the embedded customer's phone, if any.
func (s *Sale) CustomerPhone() string {
	if s.Customer == nil {
		return ""
	}
	return s.Customer.Phone.String()
}

// CustomerTaxID returns the embedded customer's CUIT, if any.
func (s *Sale) CustomerTaxID() string {
	if s.Customer == nil {
		return ""
	}
	return s.Customer.TaxID.String()
}

// Quote represents a budget (presupuesto) issued to a prospective customer
type Quote struct {
	ID         string         `json:"id" bson:"_id"`
	Date       Timestamp      `json:"fecha" bson:"fecha"`
	CreatedAt  Timestamp      `json:"fechaCreacion" bson:"fechaCreacion"`
	Total      Number         `json:"total" bson:"total"`
	CustomerID Text           `json:"clienteId,omitempty" bson:"clienteId,omitempty"`
	Customer   *SaleCustomer  `json:"cliente,omitempty" bson:"cliente,omitempty"`
	Products   []SaleLineItem `json:"productos,omitempty" bson:"productos,omitempty"`
}

// EffectiveDate is the quote date, falling back to the creation date.
func (q *Quote) EffectiveDate() Timestamp {
	if !q.Date.IsZero() {
		return q.Date
	}
	return q.CreatedAt
}
