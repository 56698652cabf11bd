package service

import (
	"context"

	"shopkart/internal/model"
	"shopkart/internal/notifier"
	"shopkart/internal/status"

	"github.com/google/uuid"
)

// ProductService defines operations for product reads.
type ProductService interface {
	// GetAll retrieves all products with pagination.
	GetAll(ctx context.Context, limit, offset int) ([]model.Product, error)

	// GetByID retrieves a single product by ID.
	GetByID(ctx context.Context, id string) (*model.Product, error)
}

// OrderService defines the order lifecycle operations.
type OrderService interface {
	// Create performs the idempotent checkout: duplicate-payment detection,
	// transactional stock reservation, server-side pricing and the
	// after-commit placement notification.
	Create(ctx context.Context, userID uuid.UUID, req *model.OrderRequest) (*model.CreateOrderResult, error)

	// GetByID retrieves an order; only the owner or an admin may read it.
	GetByID(ctx context.Context, id, requesterID uuid.UUID, admin bool) (*model.Order, error)

	// ListByUser retrieves all orders for a user, newest first.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Order, error)

	// ListPage retrieves one admin page of orders with pagination metadata
	// and the page's total amount.
	ListPage(ctx context.Context, page, limit int) (*model.OrderPage, error)

	// UpdateStatuses runs the status transition engine over a batch of
	// orders towards a single target status.
	UpdateStatuses(ctx context.Context, orderIDs []string, target status.Status) (*model.UpdateOrdersResult, error)

	// Delete bulk-deletes orders by id without restoring stock. Returns the
	// number of deleted rows and the ids that were accepted as valid.
	Delete(ctx context.Context, orderIDs []string) (int64, []uuid.UUID, error)
}

// NotificationService defines operations for notification reads.
type NotificationService interface {
	// ListByUser retrieves all notifications for a user, newest first.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Notification, error)
}

// Notifier is the dispatch capability the order service consumes. It is
// injected explicitly so the non-transactional, best-effort nature of the
// side effect is visible at the constructor.
type Notifier interface {
	Send(ctx context.Context, n *model.Notification) (*model.Notification, error)
	BroadcastOrderUpdates(ctx context.Context, updates []notifier.OrderUpdate)
}
