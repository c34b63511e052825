package importer

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnsupportedFormat is returned for spreadsheet uploads.
	ErrUnsupportedFormat = errors.New("Los archivos Excel (.xlsx, .xls) no están soportados aún. Por favor, guarda tu archivo como CSV y súbelo nuevamente.")

	// ErrNoDataRows is returned when the file has no row after the header.
	ErrNoDataRows = errors.New("El archivo CSV debe tener al menos una fila de encabezados y una fila de datos")
)

// Rejection reasons.
const (
	ReasonMissingFields       = "Faltan campos obligatorios (id, nombre, categorías)"
	ReasonMissingPrice        = "Falta precio normal"
	ReasonNonPositivePrice    = "El precio normal debe ser mayor a 0"
	ReasonNonPositiveDiscount = "El precio rebajado debe ser mayor a 0"
	ReasonNegativeInventory   = "El inventario no puede ser negativo"
	ReasonInvalidType         = "Tipo de producto inválido (simple o variation)"
	ReasonDuplicateID         = "ID repetido en el archivo"
)

// missingID labels rejected records without an id.
const missingID = "Sin ID"

// LineError describes a rejected record.
type LineError struct {
	Line   int    `json:"linea"`
	ID     string `json:"id"`
	Reason string `json:"error"`
}

func (e LineError) String() string {
	return fmt.Sprintf("Línea %d (%s): %s", e.Line, e.ID, e.Reason)
}

// BatchRejectedError is returned when one or more records fail validation.
// Nothing from the batch is persisted.
type BatchRejectedError struct {
	Errors []LineError
}

func (e *BatchRejectedError) Error() string {
	lines := make([]string, len(e.Errors))
	for i, le := range e.Errors {
		lines[i] = le.String()
	}
	return fmt.Sprintf("Se encontraron %d productos con errores:\n\n%s", len(e.Errors), strings.Join(lines, "\n"))
}

// WriteError is returned when persisting a record fails. Records written
// before the failure remain stored.
type WriteError struct {
	ProductID string
	Written   int
	Err       error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("Error al guardar producto %s: %v", e.ProductID, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// IsRejected reports whether err is a validation rejection of the batch.
func IsRejected(err error) bool {
	var rejected *BatchRejectedError
	return errors.As(err, &rejected)
}

// IsStructural reports whether err is a file-level parse failure.
func IsStructural(err error) bool {
	return errors.Is(err, ErrUnsupportedFormat) || errors.Is(err, ErrNoDataRows)
}
