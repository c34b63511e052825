package importer

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
)

// Result summarizes a successful import.
type Result struct {
	Imported int    `json:"importados"`
	Message  string `json:"mensaje"`
}

// Pipeline runs an uploaded file through tokenizing, coercion, validation
// and persistence.
type Pipeline struct {
	persister *Persister
	logger    *logrus.Logger
}

// NewPipeline creates a new import pipeline
func NewPipeline(persister *Persister, logger *logrus.Logger) *Pipeline {
	if logger == nil {
		logger = logrus.New()
	}
	return &Pipeline{persister: persister, logger: logger}
}

// Parse tokenizes, coerces and validates a file without writing anything.
func Parse(filename string, content []byte) (int, []*Record, error) {
	if err := CheckFormat(filename); err != nil {
		return 0, nil, err
	}
	table, err := Tokenize(string(content))
	if err != nil {
		return 0, nil, err
	}
	records := make([]*Record, 0, len(table.Rows))
	for _, row := range table.Rows {
		records = append(records, Coerce(row))
	}
	return len(table.Rows), records, nil
}

// Run imports a file. Structural problems return ErrUnsupportedFormat or
// ErrNoDataRows, a failed validation a *BatchRejectedError with nothing
// written, and a failed write a *WriteError.
func (p *Pipeline) Run(ctx context.Context, filename string, content []byte, progress ProgressFunc) (*Result, error) {
	rows, records, err := Parse(filename, content)
	if err != nil {
		return nil, err
	}

	products, err := Validate(records)
	if err != nil {
		p.logger.WithFields(logrus.Fields{
			"file": filename,
			"rows": rows,
		}).Warn("Import batch rejected")
		return nil, err
	}

	written, err := p.persister.Persist(ctx, products, progress)
	if err != nil {
		return &Result{Imported: written}, err
	}

	p.logger.WithFields(logrus.Fields{
		"file":     filename,
		"imported": written,
	}).Info("Import completed")

	return &Result{
		Imported: written,
		Message:  fmt.Sprintf("Se cargaron exitosamente %d productos.", written),
	}, nil
}
