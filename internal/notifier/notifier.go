// Package notifier dispatches user-facing notifications after a business
// transaction commits. Dispatch is best-effort: a persisted record plus an
// optional real-time publish, and failures never roll back or fail the
// operation that triggered them.
package notifier

import (
	"context"
	"time"

	"shopkart/internal/model"
	"shopkart/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// OrderUpdate summarises one order's new status for the batch broadcast.
type OrderUpdate struct {
	OrderID uuid.UUID `json:"orderId"`
	Status  string    `json:"status"`
}

// Publisher pushes events to the real-time channel.
type Publisher interface {
	// PublishNotification delivers a notification to its user's channel.
	PublishNotification(ctx context.Context, n *model.Notification) error

	// PublishOrderUpdates broadcasts a batch status-update summary.
	PublishOrderUpdates(ctx context.Context, updates []OrderUpdate) error

	// Close releases the publisher's resources.
	Close() error
}

// Dispatcher combines the notification store with the real-time publisher.
type Dispatcher struct {
	repo      repository.NotificationRepository
	publisher Publisher
	logger    zerolog.Logger
}

// NewDispatcher creates a notification dispatcher.
func NewDispatcher(repo repository.NotificationRepository, publisher Publisher, logger zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		repo:      repo,
		publisher: publisher,
		logger:    logger.With().Str("component", "notifier").Logger(),
	}
}

// Send persists a notification and publishes it to the user's channel. The
// caller receives the stored record; a publish failure is logged but does
// not fail the send, since the record itself is already durable.
func (d *Dispatcher) Send(ctx context.Context, n *model.Notification) (*model.Notification, error) {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	if n.Type == "" {
		n.Type = model.NotificationTypeAlert
	}

	if err := d.repo.Create(ctx, n); err != nil {
		return nil, err
	}

	if err := d.publisher.PublishNotification(ctx, n); err != nil {
		d.logger.Warn().
			Err(err).
			Str("user_id", n.UserID.String()).
			Msg("failed to publish notification")
	}

	return n, nil
}

// BroadcastOrderUpdates publishes the batch status-update summary. Failures
// are logged only.
func (d *Dispatcher) BroadcastOrderUpdates(ctx context.Context, updates []OrderUpdate) {
	if len(updates) == 0 {
		return
	}

	if err := d.publisher.PublishOrderUpdates(ctx, updates); err != nil {
		d.logger.Warn().
			Err(err).
			Int("count", len(updates)).
			Msg("failed to broadcast order updates")
	}
}
