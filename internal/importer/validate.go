package importer

import (
	"baul-admin-api/internal/models"
)

// Check returns the rejection reason for a record, or "" when it passes.
// Rules are evaluated in order and the first failure wins. Missing type
// defaults to simple; any other type must be one the store accepts.
func Check(rec *Record) string {
	p := &rec.Product

	if p.ID == "" || p.Name == "" || len(p.Categories) == 0 {
		return ReasonMissingFields
	}
	if !rec.HasPrice {
		return ReasonMissingPrice
	}

	p.Normalize()

	if p.Price.Normal <= 0 {
		return ReasonNonPositivePrice
	}
	if p.Price.Discounted != nil && *p.Price.Discounted <= 0 {
		return ReasonNonPositiveDiscount
	}
	if rec.Inventory < 0 {
		return ReasonNegativeInventory
	}
	if !p.Type.Known() {
		return ReasonInvalidType
	}
	return ""
}

// Validate checks every record. It returns the accepted products only
// when no record was rejected. An id repeated within the file rejects
// every occurrence after the first.
func Validate(records []*Record) ([]*models.Product, error) {
	var (
		accepted []*models.Product
		rejected []LineError
		seen     = make(map[string]bool, len(records))
	)

	for _, rec := range records {
		reason := Check(rec)
		if reason == "" && seen[rec.Product.ID] {
			reason = ReasonDuplicateID
		}
		if rec.Product.ID != "" {
			seen[rec.Product.ID] = true
		}
		if reason != "" {
			id := rec.Product.ID
			if id == "" {
				id = missingID
			}
			rejected = append(rejected, LineError{Line: rec.Line, ID: id, Reason: reason})
			continue
		}
		product := rec.Product
		accepted = append(accepted, &product)
	}

	if len(rejected) > 0 {
		return nil, &BatchRejectedError{Errors: rejected}
	}
	return accepted, nil
}
