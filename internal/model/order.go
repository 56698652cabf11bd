package model

import (
	"encoding/json"
	"fmt"
	"time"

	"shopkart/internal/status"

	"github.com/google/uuid"
)

// ShippingInfo is the address block embedded in every order.
type ShippingInfo struct {
	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	Country string `json:"country"`
	PinCode string `json:"pinCode"`
	PhoneNo string `json:"phoneNo"`
}

// PaymentInfo holds the external payment reference. ID is the idempotency
// key for duplicate checkout detection.
type PaymentInfo struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// OrderItem is a line item. Name, price and image are a snapshot taken at
// order-creation time and never updated afterwards.
type OrderItem struct {
	ID        uuid.UUID `json:"-" db:"id"`
	OrderID   uuid.UUID `json:"-" db:"order_id"`
	ProductID string    `json:"product" db:"product_id"`
	Name      string    `json:"name" db:"name"`
	Price     float64   `json:"price" db:"price"`
	Image     string    `json:"image" db:"image"`
	Quantity  int       `json:"quantity" db:"quantity"`

	// CurrentStock is populated on the admin listing only; it reflects the
	// product's live stock, not the snapshot.
	CurrentStock *int `json:"currentStock,omitempty" db:"-"`
}

// Order represents a customer order. All price fields are server-computed;
// client-submitted totals are never persisted.
type Order struct {
	ID            uuid.UUID     `json:"id" db:"id"`
	UserID        uuid.UUID     `json:"user" db:"user_id"`
	ShippingInfo  ShippingInfo  `json:"shippingInfo"`
	Items         []OrderItem   `json:"orderItems"`
	PaymentInfo   PaymentInfo   `json:"paymentInfo"`
	ItemsPrice    float64       `json:"itemsPrice" db:"items_price"`
	TaxPrice      float64       `json:"taxPrice" db:"tax_price"`
	ShippingPrice float64       `json:"shippingPrice" db:"shipping_price"`
	TotalPrice    float64       `json:"totalPrice" db:"total_price"`
	Status        status.Status `json:"orderStatus" db:"order_status"`

	// StockUpdated is true while product stock is decremented on behalf of
	// this order and not yet restored. It guards against double decrement
	// and double restoration.
	StockUpdated bool `json:"stockUpdated" db:"stock_updated"`

	PaidAt      time.Time  `json:"paidAt" db:"paid_at"`
	ShippedAt   *time.Time `json:"shippedAt,omitempty" db:"shipped_at"`
	SoonAt      *time.Time `json:"soonAt,omitempty" db:"soon_at"`
	DeliveredAt *time.Time `json:"deliveredAt,omitempty" db:"delivered_at"`
	CancelledAt *time.Time `json:"cancelledAt,omitempty" db:"cancelled_at"`

	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// OrderRequest is the request payload for creating an order.
type OrderRequest struct {
	ShippingInfo ShippingInfo       `json:"shippingInfo"`
	Items        []OrderItemRequest `json:"orderItems"`
	PaymentInfo  PaymentInfo        `json:"paymentInfo"`
}

// OrderItemRequest is a single line item in an order request. Only the
// product ID and quantity are honoured; the stored snapshot of name, price
// and image comes from the products table, not from the client.
type OrderItemRequest struct {
	ProductID string  `json:"product"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Image     string  `json:"image"`
	Quantity  int     `json:"quantity"`
}

// CreateOrderResult reports the outcome of a checkout. AlreadyExists is true
// when the order was matched by (user, payment id) instead of created.
type CreateOrderResult struct {
	Order         *Order
	AlreadyExists bool
}

// UpdateOrdersRequest is the bulk status-update payload.
type UpdateOrdersRequest struct {
	OrderIDs []string `json:"orderIds"`
	Status   string   `json:"status"`
}

// InvalidOrder records an order rejected by the transition engine.
type InvalidOrder struct {
	OrderID uuid.UUID `json:"orderId"`
	Reason  string    `json:"reason"`
}

// UpdateOrdersResult is the outcome of a bulk status update. Updated and
// Invalid are disjoint; orders in Invalid were skipped without mutation.
type UpdateOrdersResult struct {
	Updated       []*Order        `json:"updatedOrders"`
	Notifications []*Notification `json:"notifications"`
	Invalid       []InvalidOrder  `json:"invalidOrders"`
}

// OrderIDList accepts either a JSON array of ids or a bare string for a
// single id, matching the delete endpoint's lenient contract.
type OrderIDList []string

// UnmarshalJSON implements the string-or-array decoding.
func (l *OrderIDList) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*l = OrderIDList{single}
		return nil
	}

	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return fmt.Errorf("orderIds must be a string or an array of strings")
	}
	*l = OrderIDList(many)
	return nil
}

// DeleteOrdersRequest is the bulk delete payload.
type DeleteOrdersRequest struct {
	OrderIDs OrderIDList `json:"orderIds"`
}

// OrderPage is one page of the admin order listing. TotalAmount is the sum
// of total prices over this page only.
type OrderPage struct {
	Orders      []Order `json:"orders"`
	TotalOrders int     `json:"totalOrders"`
	TotalPages  int     `json:"totalPages"`
	CurrentPage int     `json:"currentPage"`
	Limit       int     `json:"limit"`
	TotalAmount float64 `json:"totalAmount"`
}
