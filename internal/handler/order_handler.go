package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"shopkart/internal/model"
	"shopkart/internal/service"
	"shopkart/internal/status"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// OrderHandler handles order-related HTTP requests.
type OrderHandler struct {
	service service.OrderService
	logger  zerolog.Logger
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(service service.OrderService, logger zerolog.Logger) *OrderHandler {
	return &OrderHandler{
		service: service,
		logger:  logger.With().Str("handler", "order").Logger(),
	}
}

// orderResponse is the single-order response envelope.
type orderResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message,omitempty"`
	Order   *model.Order `json:"order"`
}

// ordersResponse is the order-list response envelope.
type ordersResponse struct {
	Success bool          `json:"success"`
	Orders  []model.Order `json:"orders"`
}

// Create handles POST /order/new requests.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", h.logger)
		return
	}

	principal, ok := requireUser(w, r, h.logger)
	if !ok {
		return
	}

	var req model.OrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", h.logger)
		return
	}

	result, err := h.service.Create(r.Context(), principal.UserID, &req)
	if err != nil {
		if strings.Contains(err.Error(), "nil") || strings.Contains(err.Error(), "required") {
			writeError(w, http.StatusBadRequest, err.Error(), h.logger)
			return
		}
		writeDomainError(w, err, h.logger)
		return
	}

	// A duplicate payment id returns the original order with 200 rather
	// than creating a second one.
	if result.AlreadyExists {
		writeJSON(w, http.StatusOK, orderResponse{
			Success: true,
			Message: "Order already exists with this payment ID.",
			Order:   result.Order,
		})
		return
	}

	writeJSON(w, http.StatusCreated, orderResponse{Success: true, Order: result.Order})
}

// GetByID handles GET /order/{id} requests.
func (h *OrderHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", h.logger)
		return
	}

	principal, ok := requireUser(w, r, h.logger)
	if !ok {
		return
	}

	orderIDStr := strings.TrimPrefix(r.URL.Path, "/order/")
	if orderIDStr == "" {
		writeError(w, http.StatusBadRequest, "order ID is required", h.logger)
		return
	}

	orderID, err := uuid.Parse(orderIDStr)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid Order ID", h.logger)
		return
	}

	order, err := h.service.GetByID(r.Context(), orderID, principal.UserID, principal.Admin)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, orderResponse{Success: true, Order: order})
}

// MyOrders handles GET /orders/me requests.
func (h *OrderHandler) MyOrders(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", h.logger)
		return
	}

	principal, ok := requireUser(w, r, h.logger)
	if !ok {
		return
	}

	orders, err := h.service.ListByUser(r.Context(), principal.UserID)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	if orders == nil {
		orders = []model.Order{}
	}

	writeJSON(w, http.StatusOK, ordersResponse{Success: true, Orders: orders})
}

// adminPageResponse is the paginated admin listing envelope.
type adminPageResponse struct {
	Success bool `json:"success"`
	*model.OrderPage
}

// AdminList handles GET /admin/orders requests.
func (h *OrderHandler) AdminList(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAdmin(w, r, h.logger); !ok {
		return
	}

	page := queryInt(r, "page", 1)
	limit := queryInt(r, "limit", 10)

	result, err := h.service.ListPage(r.Context(), page, limit)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	if result.Orders == nil {
		result.Orders = []model.Order{}
	}

	writeJSON(w, http.StatusOK, adminPageResponse{Success: true, OrderPage: result})
}

// updateResponse is the bulk status-update envelope.
type updateResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	*model.UpdateOrdersResult
}

// AdminUpdate handles PUT /admin/orders requests: the bulk status update.
func (h *OrderHandler) AdminUpdate(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAdmin(w, r, h.logger); !ok {
		return
	}

	var req model.UpdateOrdersRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", h.logger)
		return
	}

	if len(req.OrderIDs) == 0 {
		writeError(w, http.StatusBadRequest, "No orders provided", h.logger)
		return
	}

	target, err := status.Parse(req.Status)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), h.logger)
		return
	}

	result, err := h.service.UpdateStatuses(r.Context(), req.OrderIDs, target)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, updateResponse{
		Success:            true,
		Message:            fmt.Sprintf("%d orders updated successfully", len(result.Updated)),
		UpdateOrdersResult: result,
	})
}

// deleteResponse is the bulk delete envelope.
type deleteResponse struct {
	Success       bool        `json:"success"`
	Message       string      `json:"message"`
	DeletedCount  int64       `json:"deletedCount"`
	DeletedOrders []uuid.UUID `json:"deletedOrders"`
}

// AdminDelete handles DELETE /admin/orders requests. The body accepts a
// list of ids or a single bare string; deletion never restores stock.
func (h *OrderHandler) AdminDelete(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAdmin(w, r, h.logger); !ok {
		return
	}

	var req model.DeleteOrdersRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", h.logger)
		return
	}

	deleted, ids, err := h.service.Delete(r.Context(), req.OrderIDs)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, deleteResponse{
		Success:       true,
		Message:       "Orders deleted successfully",
		DeletedCount:  deleted,
		DeletedOrders: ids,
	})
}

// queryInt reads an integer query parameter with a fallback.
func queryInt(r *http.Request, key string, fallback int) int {
	if raw := r.URL.Query().Get(key); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			return v
		}
	}
	return fallback
}
