package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Customer represents a store customer
type Customer struct {
	ID        string    `json:"id" bson:"_id"`
	Name      string    `json:"nombre" bson:"nombre" validate:"required"`
	Phone     Text      `json:"telefono,omitempty" bson:"telefono,omitempty"`
	TaxID     Text      `json:"cuit,omitempty" bson:"cuit,omitempty"`
	Email     string    `json:"email,omitempty" bson:"email,omitempty" validate:"omitempty,email"`
	Address   string    `json:"direccion,omitempty" bson:"direccion,omitempty"`
	Returning bool      `json:"esClienteViejo" bson:"esClienteViejo"`
	CreatedAt Timestamp `json:"fechaCreacion" bson:"fechaCreacion"`
}

// NewCustomer creates a new customer with a generated ID
func NewCustomer(name string) *Customer {
	return &Customer{
		ID:        uuid.New().String(),
		Name:      name,
		CreatedAt: NewTimestamp(time.Now()),
	}
}

// Validate validates the customer data
func (c *Customer) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("customer name is required")
	}
	return nil
}
