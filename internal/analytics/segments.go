package analytics

import (
	"math"
	"sort"
)

// Segment is one slice of a breakdown chart.
type Segment struct {
	Label string `json:"label"`
	Value int    `json:"value"`
	Color string `json:"color"`
}

// ArcSegment is a segment of a stacked arc: Percent of the total, starting
// at Offset, the running sum of the preceding percentages.
type ArcSegment struct {
	Segment
	Percent float64 `json:"pct"`
	Offset  float64 `json:"offset"`
}

// Gauge is the conversion rate display. Value is clamped to [0,100] for the
// dial; Label is the unclamped rounded rate.
type Gauge struct {
	Value int `json:"gauge"`
	Label int `json:"label"`
}

// Segments are the renderable breakdowns of one aggregation run.
type Segments struct {
	PaymentStatus  []Segment    `json:"estados"`
	Delivery       []Segment    `json:"envios"`
	PaymentMethods []ArcSegment `json:"formasPago"`
	Customers      []Segment    `json:"clientes"`
	Conversion     Gauge        `json:"conversion"`
}

// methodPalette colors payment methods by rank, cycling when exhausted.
var methodPalette = []string{"#22c55e", "#3b82f6", "#f59e0b", "#ef4444", "#8b5cf6", "#06b6d4", "#84cc16"}

// Project turns reducer output into chart segments.
func Project(k KPIs, split CustomerSplit) Segments {
	return Segments{
		PaymentStatus: []Segment{
			{Label: "Pagado", Value: k.Statuses.Paid, Color: "#10b981"},
			{Label: "Parcial", Value: k.Statuses.Partial, Color: "#f59e0b"},
			{Label: "Pendiente", Value: k.Statuses.Pending, Color: "#ef4444"},
		},
		Delivery: []Segment{
			{Label: "Domicilio", Value: k.Deliveries.Home, Color: "#3b82f6"},
			{Label: "Retiro", Value: k.Deliveries.Pickup, Color: "#6366f1"},
			{Label: "Otro", Value: k.Deliveries.Other, Color: "#64748b"},
		},
		PaymentMethods: projectMethods(k.PaymentMethods),
		Customers: []Segment{
			{Label: "Nuevos", Value: split.New, Color: "#14b8a6"},
			{Label: "Viejos", Value: split.Returning, Color: "#f97316"},
		},
		Conversion: ConversionGauge(k.ConversionRate),
	}
}

func projectMethods(m MethodCounts) []ArcSegment {
	labels := m.Labels()
	sort.SliceStable(labels, func(i, j int) bool { return m.Get(labels[i]) > m.Get(labels[j]) })

	total := 0
	for _, l := range labels {
		total += m.Get(l)
	}

	segments := make([]ArcSegment, 0, len(labels))
	offset := 0.0
	for i, l := range labels {
		v := m.Get(l)
		pct := 0.0
		if total > 0 {
			pct = float64(v) / float64(total) * 100
		}
		segments = append(segments, ArcSegment{
			Segment: Segment{Label: l, Value: v, Color: methodPalette[i%len(methodPalette)]},
			Percent: pct,
			Offset:  offset,
		})
		offset += pct
	}
	return segments
}

// ConversionGauge derives the dial and label values from a raw rate.
func ConversionGauge(raw float64) Gauge {
	if math.IsNaN(raw) || math.IsInf(raw, 0) {
		raw = 0
	}
	label := roundHalfUp(raw)
	gauge := label
	if gauge < 0 {
		gauge = 0
	}
	if gauge > 100 {
		gauge = 100
	}
	return Gauge{Value: gauge, Label: label}
}

func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}
