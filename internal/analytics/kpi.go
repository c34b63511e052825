package analytics

import (
	"encoding/json"
	"sort"

	"baul-admin-api/internal/models"
)

// TopProductsLimit is the number of products kept in the ranking.
const TopProductsLimit = 5

// StatusCounts tallies sales by payment status.
type StatusCounts struct {
	Paid    int `json:"pagado"`
	Partial int `json:"parcial"`
	Pending int `json:"pendiente"`
}

// DeliveryCounts tallies sales by delivery method.
type DeliveryCounts struct {
	Home   int `json:"domicilio"`
	Pickup int `json:"retiro"`
	Other  int `json:"otro"`
}

// MethodCounts tallies sales by lower-cased payment method label. It
// remembers first-seen order so rankings with equal counts are stable.
type MethodCounts struct {
	counts map[string]int
	order  []string
}

func newMethodCounts() MethodCounts {
	return MethodCounts{counts: map[string]int{}}
}

func (m *MethodCounts) add(label string) {
	if m.counts == nil {
		m.counts = map[string]int{}
	}
	if _, seen := m.counts[label]; !seen {
		m.order = append(m.order, label)
	}
	m.counts[label]++
}

// Get returns the count for a label.
func (m MethodCounts) Get(label string) int { return m.counts[label] }

// Len returns the number of distinct labels.
func (m MethodCounts) Len() int { return len(m.order) }

// Labels returns the labels in first-seen order.
func (m MethodCounts) Labels() []string {
	return append([]string(nil), m.order...)
}

// MarshalJSON renders the tally as a plain object.
func (m MethodCounts) MarshalJSON() ([]byte, error) {
	if m.counts == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(m.counts)
}

// ProductRank is one entry of the top products ranking.
type ProductRank struct {
	Key    string  `json:"id"`
	Name   string  `json:"nombre"`
	Units  float64 `json:"unidades"`
	Amount float64 `json:"monto"`
}

// KPIs are the summary statistics of a filtered set of sales.
type KPIs struct {
	SalesCount     int            `json:"ventasCount"`
	SalesAmount    float64        `json:"ventasMonto"`
	AverageTicket  float64        `json:"ticketPromedio"`
	Statuses       StatusCounts   `json:"estados"`
	Deliveries     DeliveryCounts `json:"envios"`
	PaymentMethods MethodCounts   `json:"formasPago"`
	TopProducts    []ProductRank  `json:"topProductos"`
	QuotesCount    int            `json:"presupuestosCount"`
	ConversionRate float64        `json:"conversionAprox"`
}

// ComputeKPIs reduces already filtered sales and quotes. Nil entries are
// skipped and non-numeric amounts count as 0.
func ComputeKPIs(sales []*models.Sale, quotes []*models.Quote) KPIs {
	k := KPIs{
		PaymentMethods: newMethodCounts(),
		TopProducts:    []ProductRank{},
	}

	type accum struct {
		rank  ProductRank
		order int
	}
	products := map[string]*accum{}

	for _, s := range sales {
		if s == nil {
			continue
		}
		k.SalesCount++
		k.SalesAmount += nonNegative(s.Total.Float())

		switch s.Status() {
		case models.PaymentStatusPaid:
			k.Statuses.Paid++
		case models.PaymentStatusPartial:
			k.Statuses.Partial++
		default:
			k.Statuses.Pending++
		}

		switch s.Delivery() {
		case models.DeliveryHome:
			k.Deliveries.Home++
		case models.DeliveryPickup:
			k.Deliveries.Pickup++
		default:
			k.Deliveries.Other++
		}

		k.PaymentMethods.add(s.PaymentMethodLabel())

		for _, line := range s.Lines() {
			key := line.Key()
			a, ok := products[key]
			if !ok {
				name := line.Name
				if name == "" {
					name = key
				}
				a = &accum{rank: ProductRank{Key: key, Name: name}, order: len(products)}
				products[key] = a
			}
			a.rank.Units += line.Quantity.Float()
			a.rank.Amount += nonNegative(line.Amount())
		}
	}

	if k.SalesCount > 0 {
		k.AverageTicket = k.SalesAmount / float64(k.SalesCount)
	}

	ranked := make([]*accum, 0, len(products))
	for _, a := range products {
		ranked = append(ranked, a)
	}
	sort.Slice(ranked, func(i, j int) bool { return ranked[i].order < ranked[j].order })
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].rank.Amount > ranked[j].rank.Amount })
	for i := 0; i < len(ranked) && i < TopProductsLimit; i++ {
		k.TopProducts = append(k.TopProducts, ranked[i].rank)
	}

	for _, q := range quotes {
		if q != nil {
			k.QuotesCount++
		}
	}
	if k.QuotesCount > 0 {
		k.ConversionRate = float64(k.SalesCount) / float64(k.QuotesCount) * 100
	}

	return k
}

// nonNegative keeps stray negative amounts out of the aggregates.
func nonNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
