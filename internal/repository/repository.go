package repository

import (
	"context"

	"shopkart/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ProductRepository defines the interface for product data access operations.
type ProductRepository interface {
	// GetAll retrieves all products with pagination support.
	GetAll(ctx context.Context, limit, offset int) ([]model.Product, error)

	// GetByID retrieves a single product by its ID.
	GetByID(ctx context.Context, id string) (*model.Product, error)

	// GetByIDs retrieves multiple products by their IDs.
	GetByIDs(ctx context.Context, ids []string) ([]model.Product, error)

	// DecrementStock atomically decrements a product's stock by quantity
	// within the provided transaction, but only if the current stock is
	// sufficient. Returns model.ErrInsufficientStock otherwise. This
	// conditional update is the sole serialization point across concurrent
	// checkouts for the same product.
	DecrementStock(ctx context.Context, tx pgx.Tx, productID string, quantity int) error

	// RestoreStock atomically increments a product's stock by quantity
	// within the provided transaction. Inverse of DecrementStock, used on
	// order cancellation.
	RestoreStock(ctx context.Context, tx pgx.Tx, productID string, quantity int) error
}

// OrderRepository defines the interface for order data access operations.
type OrderRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// Create inserts a new order and its items within the provided transaction.
	Create(ctx context.Context, tx pgx.Tx, order *model.Order) error

	// GetByID retrieves an order with its items.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error)

	// GetByIDForUpdate retrieves an order with its items inside the
	// transaction, locking the order row for the duration.
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Order, error)

	// FindByPayment looks up an existing order for the user with the given
	// external payment id. Returns nil when no such order exists.
	FindByPayment(ctx context.Context, userID uuid.UUID, paymentID string) (*model.Order, error)

	// ListByUser retrieves all orders for a user, newest first.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Order, error)

	// CountAll returns the total number of orders.
	CountAll(ctx context.Context) (int, error)

	// ListPage retrieves one page of orders, newest first, with each item
	// annotated with the product's current stock.
	ListPage(ctx context.Context, limit, offset int) ([]model.Order, error)

	// UpdateStatus persists an order's status, stockUpdated flag and status
	// timestamps within the provided transaction.
	UpdateStatus(ctx context.Context, tx pgx.Tx, order *model.Order) error

	// DeleteByIDs removes orders (and, by cascade, their items) in a single
	// bulk delete. Stock is deliberately not restored.
	DeleteByIDs(ctx context.Context, ids []uuid.UUID) (int64, error)
}

// NotificationRepository defines the interface for notification records.
type NotificationRepository interface {
	// Create inserts a notification record.
	Create(ctx context.Context, n *model.Notification) error

	// ListByUser retrieves all notifications for a user, newest first.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Notification, error)
}
