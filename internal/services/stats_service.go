package services

import (
	"context"
	"fmt"

	"baul-admin-api/internal/analytics"
	"baul-admin-api/internal/repositories"
)

// statsService implements the StatsService interface
type statsService struct {
	saleRepo     repositories.SaleRepository
	quoteRepo    repositories.QuoteRepository
	customerRepo repositories.CustomerRepository
	engine       *analytics.Engine
}

// NewStatsService creates a new statistics service instance
func NewStatsService(
	saleRepo repositories.SaleRepository,
	quoteRepo repositories.QuoteRepository,
	customerRepo repositories.CustomerRepository,
	engine *analytics.Engine,
) StatsService {
	return &statsService{
		saleRepo:     saleRepo,
		quoteRepo:    quoteRepo,
		customerRepo: customerRepo,
		engine:       engine,
	}
}

// SalesReport reads the three collections once and aggregates them for the
// requested window. A failed read aborts the report.
func (s *statsService) SalesReport(ctx context.Context, req *SalesReportRequest) (*analytics.Report, error) {
	if req == nil {
		req = &SalesReportRequest{}
	}

	preset, err := analytics.ParsePreset(req.Preset)
	if err != nil {
		return nil, validationError(err)
	}
	// Custom bounds pass through as typed; a missing or unreadable bound
	// leaves the filter open.
	sel := analytics.Selection{Preset: preset}
	if preset == analytics.PresetCustom {
		sel.Custom = analytics.Range{From: req.From, To: req.To}
	}

	sales, err := s.saleRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load sales: %w", err)
	}
	quotes, err := s.quoteRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load quotes: %w", err)
	}
	customers, err := s.customerRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load customers: %w", err)
	}

	return s.engine.Run(analytics.Dataset{
		Sales:     sales,
		Quotes:    quotes,
		Customers: customers,
	}, sel), nil
}
