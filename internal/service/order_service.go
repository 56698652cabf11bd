package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"shopkart/internal/model"
	"shopkart/internal/notifier"
	"shopkart/internal/pricing"
	"shopkart/internal/repository"
	"shopkart/internal/status"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// orderService implements OrderService.
type orderService struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	notifier    Notifier
	pricing     pricing.Config
	logger      zerolog.Logger
}

// NewOrderService creates a new order service.
func NewOrderService(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	notifier Notifier,
	pricingCfg pricing.Config,
	logger zerolog.Logger,
) OrderService {
	return &orderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		notifier:    notifier,
		pricing:     pricingCfg,
		logger:      logger.With().Str("service", "order").Logger(),
	}
}

// Create performs the idempotent checkout.
func (s *orderService) Create(ctx context.Context, userID uuid.UUID, req *model.OrderRequest) (*model.CreateOrderResult, error) {
	if err := s.validateOrderRequest(req); err != nil {
		return nil, err
	}

	// Duplicate payment submissions (retried callbacks, double clicks)
	// return the already-created order instead of creating a second one.
	existing, err := s.orderRepo.FindByPayment(ctx, userID, req.PaymentInfo.ID)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to check for existing order")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}
	if existing != nil {
		s.logger.Info().
			Str("order_id", existing.ID.String()).
			Str("payment_id", req.PaymentInfo.ID).
			Msg("order already exists with this payment id")
		return &model.CreateOrderResult{Order: existing, AlreadyExists: true}, nil
	}

	// Line items snapshot the catalogue's name, price and image at purchase
	// time; the client-submitted copies are never trusted.
	catalogue, err := s.loadCatalogue(ctx, req.Items)
	if err != nil {
		return nil, err
	}

	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	// Ensure transaction is rolled back on error
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	// Reserve stock for every line item, in array order. A single shortfall
	// aborts the whole checkout; the conditional update in the repository
	// is what makes two concurrent checkouts for the last unit safe.
	for _, item := range req.Items {
		if err = s.productRepo.DecrementStock(ctx, tx, item.ProductID, item.Quantity); err != nil {
			s.logger.Warn().
				Err(err).
				Str("product_id", item.ProductID).
				Int("quantity", item.Quantity).
				Msg("stock reservation failed")
			return nil, err
		}
	}

	priceItems := make([]pricing.Item, len(req.Items))
	for i, item := range req.Items {
		priceItems[i] = pricing.Item{Price: catalogue[item.ProductID].Price, Quantity: item.Quantity}
	}
	breakdown := pricing.Calculate(priceItems, s.pricing, s.logger)

	now := time.Now()
	order := &model.Order{
		ID:            uuid.New(),
		UserID:        userID,
		ShippingInfo:  req.ShippingInfo,
		PaymentInfo:   req.PaymentInfo,
		ItemsPrice:    breakdown.ItemsPrice,
		TaxPrice:      breakdown.TaxPrice,
		ShippingPrice: breakdown.ShippingFee,
		TotalPrice:    breakdown.TotalPrice,
		Status:        status.Processing,
		StockUpdated:  true,
		PaidAt:        now,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	order.Items = make([]model.OrderItem, len(req.Items))
	for i, item := range req.Items {
		product := catalogue[item.ProductID]
		order.Items[i] = model.OrderItem{
			ID:        uuid.New(),
			OrderID:   order.ID,
			ProductID: item.ProductID,
			Name:      product.Name,
			Price:     product.Price,
			Image:     product.Image,
			Quantity:  item.Quantity,
		}
	}

	if err = s.orderRepo.Create(ctx, tx, order); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to create order")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to commit transaction")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	s.logger.Info().
		Str("order_id", order.ID.String()).
		Int("item_count", len(order.Items)).
		Msg("order created successfully")

	// The order is committed; the notification runs outside the transaction
	// and its failure must not fail the checkout.
	s.notifyPlacement(ctx, order)

	return &model.CreateOrderResult{Order: order}, nil
}

// loadCatalogue resolves every requested product ID against the products
// table, keyed by ID. A line item referencing a product that does not exist
// rejects the whole order before any stock is touched.
func (s *orderService) loadCatalogue(ctx context.Context, items []model.OrderItemRequest) (map[string]model.Product, error) {
	ids := make([]string, len(items))
	for i, item := range items {
		ids[i] = item.ProductID
	}

	products, err := s.productRepo.GetByIDs(ctx, ids)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to load products for order")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	catalogue := make(map[string]model.Product, len(products))
	for _, p := range products {
		catalogue[p.ID] = p
	}

	for _, item := range items {
		if _, ok := catalogue[item.ProductID]; !ok {
			s.logger.Warn().Str("product_id", item.ProductID).Msg("order references unknown product")
			return nil, model.ErrProductNotFound
		}
	}

	return catalogue, nil
}

// notifyPlacement sends the order-placed notification, best-effort.
func (s *orderService) notifyPlacement(ctx context.Context, order *model.Order) {
	names := make([]string, len(order.Items))
	for i, item := range order.Items {
		names[i] = item.Name
	}

	orderID := order.ID
	_, err := s.notifier.Send(ctx, &model.Notification{
		UserID:  order.UserID,
		Type:    model.NotificationTypeOrder,
		Title:   "Order Placed Successfully",
		Message: fmt.Sprintf("Your order has been placed for: %s", strings.Join(names, ", ")),
		OrderID: &orderID,
	})
	if err != nil {
		s.logger.Warn().Err(err).Str("order_id", order.ID.String()).Msg("order placement notification failed")
	}
}

// GetByID retrieves an order; only the owner or an admin may read it.
func (s *orderService) GetByID(ctx context.Context, id, requesterID uuid.UUID, admin bool) (*model.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to get order")
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	if order == nil {
		return nil, model.ErrOrderNotFound
	}

	if !admin && order.UserID != requesterID {
		s.logger.Warn().
			Str("order_id", id.String()).
			Str("requester", requesterID.String()).
			Msg("unauthorized order access")
		return nil, model.ErrNotOwner
	}

	return order, nil
}

// ListByUser retrieves the user's orders, newest first.
func (s *orderService) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Order, error) {
	orders, err := s.orderRepo.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to list user orders")
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// ListPage retrieves one admin page with pagination metadata. The requested
// page is clamped into [1, totalPages]; totalAmount covers the returned
// page only.
func (s *orderService) ListPage(ctx context.Context, page, limit int) (*model.OrderPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	total, err := s.orderRepo.CountAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	totalPages := (total + limit - 1) / limit
	if totalPages < 1 {
		totalPages = 1
	}
	if page > totalPages {
		page = totalPages
	}

	orders, err := s.orderRepo.ListPage(ctx, limit, (page-1)*limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	var totalAmount float64
	for _, o := range orders {
		totalAmount += o.TotalPrice
	}

	return &model.OrderPage{
		Orders:      orders,
		TotalOrders: total,
		TotalPages:  totalPages,
		CurrentPage: page,
		Limit:       limit,
		TotalAmount: totalAmount,
	}, nil
}

// UpdateStatuses runs the transition engine over a batch of orders. Every
// order is handled independently: malformed or missing ids are skipped,
// illegal transitions are reported in Invalid, while the rest of the batch
// proceeds. All mutations share one transaction, committed once at the end;
// an unexpected error aborts the whole batch. Notifications and the batch
// broadcast happen after the commit.
func (s *orderService) UpdateStatuses(ctx context.Context, orderIDs []string, target status.Status) (*model.UpdateOrdersResult, error) {
	if len(orderIDs) == 0 {
		return nil, model.ErrNoOrderIDs
	}

	result := &model.UpdateOrdersResult{
		Updated:       []*model.Order{},
		Notifications: []*model.Notification{},
		Invalid:       []model.InvalidOrder{},
	}

	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to update orders: %w", err)
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	for _, rawID := range orderIDs {
		id, parseErr := uuid.Parse(rawID)
		if parseErr != nil {
			s.logger.Debug().Str("order_id", rawID).Msg("skipping malformed order id")
			continue
		}

		var order *model.Order
		order, err = s.orderRepo.GetByIDForUpdate(ctx, tx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to update orders: %w", err)
		}
		if order == nil {
			s.logger.Debug().Str("order_id", rawID).Msg("skipping unknown order id")
			continue
		}

		path, pathErr := status.PathTo(order.Status, target)
		if pathErr != nil {
			result.Invalid = append(result.Invalid, model.InvalidOrder{
				OrderID: order.ID,
				Reason:  "Invalid transition",
			})
			continue
		}

		for _, next := range path {
			if next == status.Cancelled && !order.Status.Terminal() {
				if err = s.returnStockOnCancel(ctx, tx, order); err != nil {
					return nil, fmt.Errorf("failed to update orders: %w", err)
				}
			}
			s.applyStatus(order, next)
		}

		if err = s.orderRepo.UpdateStatus(ctx, tx, order); err != nil {
			return nil, fmt.Errorf("failed to update orders: %w", err)
		}

		result.Updated = append(result.Updated, order)
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Msg("failed to commit transaction")
		return nil, fmt.Errorf("failed to update orders: %w", err)
	}

	s.logger.Info().
		Int("updated", len(result.Updated)).
		Int("invalid", len(result.Invalid)).
		Str("target", string(target)).
		Msg("order statuses updated")

	// Committed; everything below is best-effort side effects.
	updates := make([]notifier.OrderUpdate, 0, len(result.Updated))
	for _, order := range result.Updated {
		updates = append(updates, notifier.OrderUpdate{
			OrderID: order.ID,
			Status:  string(order.Status),
		})

		if notif := s.notifyStatus(ctx, order); notif != nil {
			result.Notifications = append(result.Notifications, notif)
		}
	}

	s.notifier.BroadcastOrderUpdates(ctx, updates)

	return result, nil
}

// returnStockOnCancel restores every line item's stock, exactly once per
// order. The stockUpdated flag is the double-restoration guard.
func (s *orderService) returnStockOnCancel(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	if !order.StockUpdated {
		return nil
	}

	for _, item := range order.Items {
		if err := s.productRepo.RestoreStock(ctx, tx, item.ProductID, item.Quantity); err != nil {
			return err
		}
	}

	order.StockUpdated = false
	return nil
}

// applyStatus moves the order to next and stamps the matching timestamp.
func (s *orderService) applyStatus(order *model.Order, next status.Status) {
	now := time.Now()
	order.Status = next

	switch next {
	case status.Shipped:
		order.ShippedAt = &now
	case status.Soon:
		order.SoonAt = &now
	case status.Delivered:
		order.DeliveredAt = &now
	case status.Cancelled:
		order.CancelledAt = &now
	}
}

// notifyStatus sends the per-order status notification, best-effort. Orders
// without line items produce no notification.
func (s *orderService) notifyStatus(ctx context.Context, order *model.Order) *model.Notification {
	names := make([]string, 0, len(order.Items))
	for _, item := range order.Items {
		if item.Name != "" {
			names = append(names, item.Name)
		}
	}
	if len(names) == 0 {
		return nil
	}

	shortID := order.ID.String()
	shortID = shortID[len(shortID)-6:]

	orderID := order.ID
	notif, err := s.notifier.Send(ctx, &model.Notification{
		UserID:  order.UserID,
		Type:    model.NotificationTypeOrder,
		Title:   fmt.Sprintf("Order #%s", shortID),
		Message: fmt.Sprintf("Order status updated to %q for: %s", order.Status, strings.Join(names, ", ")),
		OrderID: &orderID,
	})
	if err != nil {
		s.logger.Warn().Err(err).Str("order_id", order.ID.String()).Msg("status notification failed")
		return nil
	}

	return notif
}

// Delete bulk-deletes orders. Malformed ids are dropped; stock is never
// restored on delete.
func (s *orderService) Delete(ctx context.Context, orderIDs []string) (int64, []uuid.UUID, error) {
	if len(orderIDs) == 0 {
		return 0, nil, model.ErrNoOrderIDs
	}

	validIDs := make([]uuid.UUID, 0, len(orderIDs))
	for _, rawID := range orderIDs {
		id, err := uuid.Parse(rawID)
		if err != nil {
			s.logger.Debug().Str("order_id", rawID).Msg("dropping malformed order id")
			continue
		}
		validIDs = append(validIDs, id)
	}

	if len(validIDs) == 0 {
		return 0, nil, model.ErrNoValidOrderIDs
	}

	deleted, err := s.orderRepo.DeleteByIDs(ctx, validIDs)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to delete orders: %w", err)
	}

	return deleted, validIDs, nil
}

// validateOrderRequest validates the checkout payload.
func (s *orderService) validateOrderRequest(req *model.OrderRequest) error {
	if req == nil {
		return fmt.Errorf("order request is nil")
	}

	if len(req.Items) == 0 {
		return model.ErrEmptyOrder
	}

	if req.PaymentInfo.ID == "" {
		return model.ErrMissingPaymentID
	}

	for i, item := range req.Items {
		if item.ProductID == "" {
			return model.NewDomainError(model.ErrCodeMissingField, fmt.Sprintf("item %d: product ID is required", i))
		}

		if item.Quantity <= 0 {
			s.logger.Warn().
				Int("item_index", i).
				Str("product_id", item.ProductID).
				Int("quantity", item.Quantity).
				Msg("invalid quantity")
			return model.ErrInvalidQuantity
		}
	}

	return nil
}
