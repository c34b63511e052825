package analytics

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"baul-admin-api/internal/models"
)

// Dataset is the raw input of an aggregation run.
type Dataset struct {
	Sales     []*models.Sale
	Quotes    []*models.Quote
	Customers []*models.Customer
}

// Report is the full result of an aggregation run.
type Report struct {
	Preset     Preset        `json:"rango"`
	Range      Range         `json:"periodo"`
	KPIs       KPIs          `json:"kpis"`
	Customers  CustomerSplit `json:"clientes"`
	Commission Commission    `json:"comisiones"`
	Segments   Segments      `json:"segmentos"`
}

// EngineConfig configures an Engine.
type EngineConfig struct {
	Location       *time.Location
	CommissionRate decimal.Decimal
	Now            func() time.Time
}

// Engine filters, reduces and projects sales data. It holds no per-run
// state and is safe for concurrent use.
type Engine struct {
	loc    *time.Location
	rate   decimal.Decimal
	now    func() time.Time
	logger *logrus.Logger
}

// NewEngine creates a new aggregation engine
func NewEngine(cfg EngineConfig, logger *logrus.Logger) *Engine {
	if logger == nil {
		logger = logrus.New()
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.CommissionRate.IsZero() {
		cfg.CommissionRate = DefaultCommissionRate
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Engine{
		loc:    cfg.Location,
		rate:   cfg.CommissionRate,
		now:    cfg.Now,
		logger: logger,
	}
}

// Location returns the time zone calendar days are evaluated in.
func (e *Engine) Location() *time.Location { return e.loc }

// Run computes the report for the selection and emits one diagnostic event.
func (e *Engine) Run(data Dataset, sel Selection) *Report {
	if sel.Preset == "" {
		sel.Preset = DefaultPreset
	}
	bounds := sel.Bounds(e.now(), e.loc)
	filter := NewDateFilter(bounds, e.loc)

	sales := filter.FilterSales(data.Sales)
	quotes := filter.FilterQuotes(data.Quotes)
	idx := NewCustomerIndex(data.Customers)

	kpis := ComputeKPIs(sales, quotes)
	split := SplitCustomers(sales, idx)
	commission := ComputeCommission(sales, idx, e.rate)

	report := &Report{
		Preset:     sel.Preset,
		Range:      bounds,
		KPIs:       kpis,
		Customers:  split,
		Commission: commission,
		Segments:   Project(kpis, split),
	}

	fields := logrus.Fields{
		"preset":           sel.Preset,
		"from":             bounds.From,
		"to":               bounds.To,
		"filter_open":      filter.Open(),
		"sales_total":      len(data.Sales),
		"sales_in_range":   len(sales),
		"quotes_in_range":  len(quotes),
		"customers":        idx.Len(),
		"sales_amount":     kpis.SalesAmount,
		"matched_amount":   commission.MatchedTotal,
		"commission":       commission.Amount,
		"unmatched_sales":  commission.UnmatchedCount,
		"conversion_ratio": kpis.ConversionRate,
	}
	// The unmatched sale list is attached only at debug level.
	if e.logger.IsLevelEnabled(logrus.DebugLevel) {
		fields["unmatched"] = commission.Unmatched
		e.logger.WithFields(fields).Debug("Sales aggregation completed")
	} else {
		e.logger.WithFields(fields).Info("Sales aggregation completed")
	}

	return report
}
