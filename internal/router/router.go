package router

import (
	"net/http"
	"strings"

	"shopkart/internal/handler"
	"shopkart/internal/middleware"

	"github.com/rs/zerolog"
)

// New creates a new HTTP router with all routes and middleware configured.
func New(
	orderHandler *handler.OrderHandler,
	productHandler *handler.ProductHandler,
	notificationHandler *handler.NotificationHandler,
	apiKey string,
	logger zerolog.Logger,
) http.Handler {
	mux := http.NewServeMux()

	// Health check endpoint (no authentication required)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy"}`))
	})

	// Checkout
	mux.HandleFunc("/order/new", orderHandler.Create)

	// Single order by id
	mux.HandleFunc("/order/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/order/" || r.URL.Path == "/order/new" {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		orderHandler.GetByID(w, r)
	})

	// Current user's orders
	mux.HandleFunc("/orders/me", orderHandler.MyOrders)

	// Admin order collection: list, bulk status update, bulk delete
	mux.HandleFunc("/admin/orders", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			orderHandler.AdminList(w, r)
		case http.MethodPut:
			orderHandler.AdminUpdate(w, r)
		case http.MethodDelete:
			orderHandler.AdminDelete(w, r)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	})

	// Product handler function
	productRouteHandler := func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/products/") && r.URL.Path != "/products/" {
			productHandler.GetByID(w, r)
			return
		}
		productHandler.GetAll(w, r)
	}

	// Register product routes (both with and without trailing slash)
	mux.HandleFunc("/products", productRouteHandler)
	mux.HandleFunc("/products/", productRouteHandler)

	// Current user's notifications
	mux.HandleFunc("/notifications/me", notificationHandler.MyNotifications)

	// Apply middleware in order: Recovery -> Logging -> CORS -> APIKeyAuth -> Identity
	var h http.Handler = mux
	h = middleware.Identity(logger)(h)
	h = middleware.APIKeyAuth(apiKey, logger)(h)
	h = middleware.CORS(h)
	h = middleware.Logging(logger)(h)
	h = middleware.Recovery(logger)(h)

	return h
}
