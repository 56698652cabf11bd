package model

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON       = "INVALID_JSON"
	ErrCodeMissingField      = "MISSING_FIELD"
	ErrCodeEmptyOrder        = "EMPTY_ORDER"
	ErrCodeInvalidQuantity   = "INVALID_QUANTITY"
	ErrCodeProductNotFound   = "PRODUCT_NOT_FOUND"
	ErrCodeInsufficientStock = "INSUFFICIENT_STOCK"
	ErrCodeOrderNotFound     = "ORDER_NOT_FOUND"
	ErrCodeForbidden         = "FORBIDDEN"
)

// DomainError carries a stable code alongside a human-readable message so
// handlers can map business failures to HTTP statuses.
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrEmptyOrder        = NewDomainError(ErrCodeEmptyOrder, "No order items found")
	ErrInvalidQuantity   = NewDomainError(ErrCodeInvalidQuantity, "Quantity must be greater than zero")
	ErrProductNotFound   = NewDomainError(ErrCodeProductNotFound, "One or more products not found")
	ErrInsufficientStock = NewDomainError(ErrCodeInsufficientStock, "Insufficient stock for product")
	ErrOrderNotFound     = NewDomainError(ErrCodeOrderNotFound, "Order not found with this Id")
	ErrNotOwner          = NewDomainError(ErrCodeForbidden, "Not authorized to view this order")
	ErrNoOrderIDs        = NewDomainError(ErrCodeMissingField, "No order IDs provided")
	ErrNoValidOrderIDs   = NewDomainError(ErrCodeMissingField, "No valid order IDs found")
	ErrMissingPaymentID  = NewDomainError(ErrCodeMissingField, "Payment id is required")
)
