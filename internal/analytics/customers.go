package analytics

import (
	"github.com/shopspring/decimal"

	"baul-admin-api/internal/models"
)

// DefaultCommissionRate is the commission percentage applied to matched sales.
var DefaultCommissionRate = decimal.NewFromFloat(2.5)

// CustomerIndex resolves sales to known customers. Phone and tax-id
// lookups keep the first customer carrying each value, matching a scan of
// the customer list in order.
type CustomerIndex struct {
	byID    map[string]*models.Customer
	byPhone map[string]*models.Customer
	byTaxID map[string]*models.Customer
}

// NewCustomerIndex indexes customers by id, phone and tax id.
func NewCustomerIndex(customers []*models.Customer) *CustomerIndex {
	idx := &CustomerIndex{
		byID:    make(map[string]*models.Customer, len(customers)),
		byPhone: make(map[string]*models.Customer),
		byTaxID: make(map[string]*models.Customer),
	}
	for _, c := range customers {
		if c == nil {
			continue
		}
		if c.ID != "" {
			idx.byID[c.ID] = c
		}
		if phone := c.Phone.String(); phone != "" {
			if _, taken := idx.byPhone[phone]; !taken {
				idx.byPhone[phone] = c
			}
		}
		if taxID := c.TaxID.String(); taxID != "" {
			if _, taken := idx.byTaxID[taxID]; !taken {
				idx.byTaxID[taxID] = c
			}
		}
	}
	return idx
}

// Len returns the number of customers indexed by id.
func (idx *CustomerIndex) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.byID)
}

// ByID looks up a customer by document id.
func (idx *CustomerIndex) ByID(id string) (*models.Customer, bool) {
	if idx == nil || id == "" {
		return nil, false
	}
	c, ok := idx.byID[id]
	return c, ok
}

// Match resolves the customer of a sale: by customer id, then by the
// embedded phone, then by the embedded tax id.
func (idx *CustomerIndex) Match(s *models.Sale) (*models.Customer, bool) {
	if idx == nil || s == nil {
		return nil, false
	}
	if c, ok := idx.ByID(s.CustomerID.String()); ok {
		return c, true
	}
	if phone := s.CustomerPhone(); phone != "" {
		if c, ok := idx.byPhone[phone]; ok {
			return c, true
		}
	}
	if taxID := s.CustomerTaxID(); taxID != "" {
		if c, ok := idx.byTaxID[taxID]; ok {
			return c, true
		}
	}
	return nil, false
}

// CustomerSplit counts distinct customers of the period as new or returning.
type CustomerSplit struct {
	New       int `json:"nuevo"`
	Returning int `json:"viejo"`
}

// Total returns the number of classified customers.
func (s CustomerSplit) Total() int { return s.New + s.Returning }

// SplitCustomers classifies the distinct customer ids referenced by the
// sales. Sales without a customer id and ids unknown to the index are skipped.
func SplitCustomers(sales []*models.Sale, idx *CustomerIndex) CustomerSplit {
	var split CustomerSplit
	seen := map[string]struct{}{}
	for _, s := range sales {
		if s == nil || s.CustomerID == "" {
			continue
		}
		id := s.CustomerID.String()
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		c, ok := idx.ByID(id)
		if !ok {
			continue
		}
		if c.Returning {
			split.Returning++
		} else {
			split.New++
		}
	}
	return split
}

// UnmatchedSale is a sale left out of the commission base.
type UnmatchedSale struct {
	ID          string               `json:"id"`
	OrderNumber any                  `json:"numeroPedido,omitempty"`
	Customer    *models.SaleCustomer `json:"cliente,omitempty"`
	Amount      float64              `json:"monto"`
}

// Commission is the commission owed on sales matched to known customers.
type Commission struct {
	Rate           float64         `json:"tasa"`
	MatchedTotal   float64         `json:"totalVentasConCliente"`
	ProcessedTotal float64         `json:"totalVentasProcesadas"`
	Amount         float64         `json:"comisionTotal"`
	UnmatchedCount int             `json:"ventasSinCliente"`
	Unmatched      []UnmatchedSale `json:"ventasClienteNoEncontradoIds"`
}

// ComputeCommission applies ratePercent to the totals of sales that the
// index can match, and lists the rest.
func ComputeCommission(sales []*models.Sale, idx *CustomerIndex, ratePercent decimal.Decimal) Commission {
	matched := decimal.Zero
	out := Commission{
		Rate:      ratePercent.InexactFloat64(),
		Unmatched: []UnmatchedSale{},
	}

	for _, s := range sales {
		if s == nil {
			continue
		}
		if _, ok := idx.Match(s); !ok {
			out.UnmatchedCount++
			out.Unmatched = append(out.Unmatched, UnmatchedSale{
				ID:          s.ID,
				OrderNumber: s.OrderNumber,
				Customer:    s.Customer,
				Amount:      s.Total.Float(),
			})
			continue
		}
		matched = matched.Add(decimal.NewFromFloat(nonNegative(s.Total.Float())))
	}

	commission := matched.Mul(ratePercent).Div(decimal.NewFromInt(100))
	out.MatchedTotal = matched.InexactFloat64()
	out.ProcessedTotal = out.MatchedTotal
	out.Amount = commission.InexactFloat64()
	return out
}
