package model

import "time"

// Product represents a product in the catalogue. Stock is the only field the
// order subsystem ever mutates, and only through the conditional
// decrement/restore queries in the product repository.
type Product struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Price     float64   `json:"price" db:"price"`
	Category  string    `json:"category" db:"category"`
	Image     string    `json:"image" db:"image"`
	Stock     int       `json:"stock" db:"stock"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}
