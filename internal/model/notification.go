package model

import (
	"time"

	"github.com/google/uuid"
)

// Notification types.
const (
	NotificationTypeOrder    = "order"
	NotificationTypeDelivery = "delivery"
	NotificationTypePromo    = "promo"
	NotificationTypeAlert    = "alert"
)

// Notification is a user-facing notification record. Notifications are a
// best-effort side effect: they are written after the business transaction
// commits and their failure never fails the triggering operation.
type Notification struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	UserID    uuid.UUID  `json:"userId" db:"user_id"`
	Type      string     `json:"type" db:"type"`
	Title     string     `json:"title" db:"title"`
	Message   string     `json:"message" db:"message"`
	OrderID   *uuid.UUID `json:"orderId,omitempty" db:"order_id"`
	Read      bool       `json:"read" db:"read"`
	CreatedAt time.Time  `json:"createdAt" db:"created_at"`
}
