package importer

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"baul-admin-api/internal/models"
)

// DefaultWriteDelay spaces consecutive writes of a batch.
const DefaultWriteDelay = 100 * time.Millisecond

// ProductWriter stores a single product.
type ProductWriter interface {
	Create(ctx context.Context, product *models.Product) error
}

// Progress reports how many records of a batch have been written.
type Progress struct {
	Current int `json:"current"`
	Total   int `json:"total"`
}

// ProgressFunc receives progress after every successful write.
type ProgressFunc func(Progress)

// Persister writes validated products one at a time at a bounded rate.
type Persister struct {
	writer  ProductWriter
	delay   time.Duration
	logger  *logrus.Logger
	nowFunc func() time.Time
}

// NewPersister creates a new persister. A non-positive delay disables throttling.
func NewPersister(writer ProductWriter, delay time.Duration, logger *logrus.Logger) *Persister {
	if logger == nil {
		logger = logrus.New()
	}
	return &Persister{
		writer:  writer,
		delay:   delay,
		logger:  logger,
		nowFunc: time.Now,
	}
}

// Persist writes products in order, stamping timestamps on each. It stops
// at the first failure and returns a *WriteError; earlier writes are kept.
func (p *Persister) Persist(ctx context.Context, products []*models.Product, progress ProgressFunc) (int, error) {
	limiter := rate.NewLimiter(rate.Inf, 1)
	if p.delay > 0 {
		limiter = rate.NewLimiter(rate.Every(p.delay), 1)
	}

	total := len(products)
	for i, product := range products {
		if err := limiter.Wait(ctx); err != nil {
			return i, &WriteError{ProductID: product.ID, Written: i, Err: err}
		}

		product.Normalize()
		product.Stamp(p.nowFunc())

		if err := p.writer.Create(ctx, product); err != nil {
			p.logger.WithFields(logrus.Fields{
				"product_id": product.ID,
				"written":    i,
				"total":      total,
				"error":      err.Error(),
			}).Error("Batch write stopped")
			return i, &WriteError{ProductID: product.ID, Written: i, Err: err}
		}

		if progress != nil {
			progress(Progress{Current: i + 1, Total: total})
		}
	}

	p.logger.WithField("total", total).Debug("Batch written")
	return total, nil
}
