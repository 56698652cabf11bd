package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"shopkart/internal/middleware"
	"shopkart/internal/model"
	"shopkart/internal/status"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockOrderService is a mock implementation of service.OrderService.
type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) Create(ctx context.Context, userID uuid.UUID, req *model.OrderRequest) (*model.CreateOrderResult, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CreateOrderResult), args.Error(1)
}

func (m *MockOrderService) GetByID(ctx context.Context, id, requesterID uuid.UUID, admin bool) (*model.Order, error) {
	args := m.Called(ctx, id, requesterID, admin)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderService) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Order, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Order), args.Error(1)
}

func (m *MockOrderService) ListPage(ctx context.Context, page, limit int) (*model.OrderPage, error) {
	args := m.Called(ctx, page, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.OrderPage), args.Error(1)
}

func (m *MockOrderService) UpdateStatuses(ctx context.Context, orderIDs []string, target status.Status) (*model.UpdateOrdersResult, error) {
	args := m.Called(ctx, orderIDs, target)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.UpdateOrdersResult), args.Error(1)
}

func (m *MockOrderService) Delete(ctx context.Context, orderIDs []string) (int64, []uuid.UUID, error) {
	args := m.Called(ctx, orderIDs)
	var ids []uuid.UUID
	if args.Get(1) != nil {
		ids = args.Get(1).([]uuid.UUID)
	}
	return args.Get(0).(int64), ids, args.Error(2)
}

func asUser(r *http.Request, userID uuid.UUID, admin bool) *http.Request {
	principal := middleware.Principal{UserID: userID, Admin: admin}
	return r.WithContext(middleware.WithPrincipal(r.Context(), principal))
}

func orderRequestBody(t *testing.T) *bytes.Buffer {
	t.Helper()
	body, err := json.Marshal(model.OrderRequest{
		ShippingInfo: model.ShippingInfo{
			Address: "12 Main Street", City: "Pune", State: "MH",
			Country: "India", PinCode: "411001", PhoneNo: "9876543210",
		},
		Items: []model.OrderItemRequest{
			{ProductID: "P001", Name: "Widget", Price: 100, Quantity: 2},
		},
		PaymentInfo: model.PaymentInfo{ID: "pay_123", Status: "succeeded"},
	})
	require.NoError(t, err)
	return bytes.NewBuffer(body)
}

func TestOrderHandler_Create(t *testing.T) {
	userID := uuid.New()
	order := &model.Order{ID: uuid.New(), UserID: userID, Status: status.Processing}

	tests := []struct {
		name           string
		setupMock      func(*MockOrderService)
		body           *bytes.Buffer
		anonymous      bool
		expectedStatus int
		expectedMsg    string
	}{
		{
			name: "Creates order",
			setupMock: func(m *MockOrderService) {
				m.On("Create", mock.Anything, userID, mock.AnythingOfType("*model.OrderRequest")).
					Return(&model.CreateOrderResult{Order: order}, nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name: "Duplicate payment returns existing order",
			setupMock: func(m *MockOrderService) {
				m.On("Create", mock.Anything, userID, mock.AnythingOfType("*model.OrderRequest")).
					Return(&model.CreateOrderResult{Order: order, AlreadyExists: true}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedMsg:    "Order already exists with this payment ID.",
		},
		{
			name: "Empty order rejected",
			setupMock: func(m *MockOrderService) {
				m.On("Create", mock.Anything, userID, mock.AnythingOfType("*model.OrderRequest")).
					Return(nil, model.ErrEmptyOrder)
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "Unknown product rejected",
			setupMock: func(m *MockOrderService) {
				m.On("Create", mock.Anything, userID, mock.AnythingOfType("*model.OrderRequest")).
					Return(nil, model.ErrProductNotFound)
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "Insufficient stock",
			setupMock: func(m *MockOrderService) {
				m.On("Create", mock.Anything, userID, mock.AnythingOfType("*model.OrderRequest")).
					Return(nil, model.ErrInsufficientStock)
			},
			expectedStatus: http.StatusInternalServerError,
		},
		{
			name:           "Anonymous request rejected",
			setupMock:      func(m *MockOrderService) {},
			anonymous:      true,
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Malformed body rejected",
			setupMock:      func(m *MockOrderService) {},
			body:           bytes.NewBufferString("{not json"),
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockOrderService)
			tt.setupMock(mockService)

			h := NewOrderHandler(mockService, zerolog.Nop())

			body := tt.body
			if body == nil {
				body = orderRequestBody(t)
			}
			req := httptest.NewRequest(http.MethodPost, "/order/new", body)
			if !tt.anonymous {
				req = asUser(req, userID, false)
			}
			rec := httptest.NewRecorder()

			h.Create(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			if tt.expectedMsg != "" {
				var resp orderResponse
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
				assert.Equal(t, tt.expectedMsg, resp.Message)
			}
			mockService.AssertExpectations(t)
		})
	}
}

func TestOrderHandler_Create_MethodNotAllowed(t *testing.T) {
	h := NewOrderHandler(new(MockOrderService), zerolog.Nop())

	req := httptest.NewRequest(http.MethodGet, "/order/new", nil)
	rec := httptest.NewRecorder()

	h.Create(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestOrderHandler_GetByID(t *testing.T) {
	userID := uuid.New()
	orderID := uuid.New()
	order := &model.Order{ID: orderID, UserID: userID, Status: status.Processing}

	tests := []struct {
		name           string
		path           string
		admin          bool
		setupMock      func(*MockOrderService)
		expectedStatus int
	}{
		{
			name: "Owner fetches order",
			path: "/order/" + orderID.String(),
			setupMock: func(m *MockOrderService) {
				m.On("GetByID", mock.Anything, orderID, userID, false).Return(order, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:  "Admin fetches order",
			path:  "/order/" + orderID.String(),
			admin: true,
			setupMock: func(m *MockOrderService) {
				m.On("GetByID", mock.Anything, orderID, userID, true).Return(order, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "Non-owner is forbidden",
			path: "/order/" + orderID.String(),
			setupMock: func(m *MockOrderService) {
				m.On("GetByID", mock.Anything, orderID, userID, false).Return(nil, model.ErrNotOwner)
			},
			expectedStatus: http.StatusForbidden,
		},
		{
			name: "Unknown order",
			path: "/order/" + orderID.String(),
			setupMock: func(m *MockOrderService) {
				m.On("GetByID", mock.Anything, orderID, userID, false).Return(nil, model.ErrOrderNotFound)
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "Malformed id",
			path:           "/order/not-a-uuid",
			setupMock:      func(m *MockOrderService) {},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockOrderService)
			tt.setupMock(mockService)

			h := NewOrderHandler(mockService, zerolog.Nop())

			req := asUser(httptest.NewRequest(http.MethodGet, tt.path, nil), userID, tt.admin)
			rec := httptest.NewRecorder()

			h.GetByID(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			mockService.AssertExpectations(t)
		})
	}
}

func TestOrderHandler_MyOrders(t *testing.T) {
	userID := uuid.New()

	mockService := new(MockOrderService)
	mockService.On("ListByUser", mock.Anything, userID).Return([]model.Order{
		{ID: uuid.New(), UserID: userID},
		{ID: uuid.New(), UserID: userID},
	}, nil)

	h := NewOrderHandler(mockService, zerolog.Nop())

	req := asUser(httptest.NewRequest(http.MethodGet, "/orders/me", nil), userID, false)
	rec := httptest.NewRecorder()

	h.MyOrders(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp ordersResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Len(t, resp.Orders, 2)
}

func TestOrderHandler_AdminList(t *testing.T) {
	adminID := uuid.New()

	tests := []struct {
		name           string
		query          string
		admin          bool
		setupMock      func(*MockOrderService)
		expectedStatus int
	}{
		{
			name:  "Default pagination",
			query: "",
			admin: true,
			setupMock: func(m *MockOrderService) {
				m.On("ListPage", mock.Anything, 1, 10).Return(&model.OrderPage{
					Orders: []model.Order{{ID: uuid.New()}}, TotalOrders: 1,
					TotalPages: 1, CurrentPage: 1, Limit: 10, TotalAmount: 286,
				}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:  "Explicit page and limit",
			query: "?page=3&limit=5",
			admin: true,
			setupMock: func(m *MockOrderService) {
				m.On("ListPage", mock.Anything, 3, 5).Return(&model.OrderPage{
					Orders: []model.Order{}, TotalOrders: 0,
					TotalPages: 1, CurrentPage: 1, Limit: 5,
				}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Non-admin forbidden",
			admin:          false,
			setupMock:      func(m *MockOrderService) {},
			expectedStatus: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockOrderService)
			tt.setupMock(mockService)

			h := NewOrderHandler(mockService, zerolog.Nop())

			req := asUser(httptest.NewRequest(http.MethodGet, "/admin/orders"+tt.query, nil), adminID, tt.admin)
			rec := httptest.NewRecorder()

			h.AdminList(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			mockService.AssertExpectations(t)
		})
	}
}

func TestOrderHandler_AdminUpdate(t *testing.T) {
	adminID := uuid.New()
	orderID := uuid.New()

	tests := []struct {
		name           string
		body           string
		setupMock      func(*MockOrderService)
		expectedStatus int
		expectedMsg    string
	}{
		{
			name: "Updates batch",
			body: `{"orderIds": ["` + orderID.String() + `"], "status": "Shipped"}`,
			setupMock: func(m *MockOrderService) {
				m.On("UpdateStatuses", mock.Anything, []string{orderID.String()}, status.Shipped).
					Return(&model.UpdateOrdersResult{
						Updated: []*model.Order{{ID: orderID, Status: status.Shipped}},
					}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedMsg:    "1 orders updated successfully",
		},
		{
			name: "Illegal transitions reported alongside updates",
			body: `{"orderIds": ["` + orderID.String() + `"], "status": "Shipped"}`,
			setupMock: func(m *MockOrderService) {
				m.On("UpdateStatuses", mock.Anything, []string{orderID.String()}, status.Shipped).
					Return(&model.UpdateOrdersResult{
						Updated: []*model.Order{},
						Invalid: []model.InvalidOrder{{OrderID: orderID, Reason: "Invalid transition"}},
					}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedMsg:    "0 orders updated successfully",
		},
		{
			name:           "Empty id list rejected",
			body:           `{"orderIds": [], "status": "Shipped"}`,
			setupMock:      func(m *MockOrderService) {},
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "No orders provided",
		},
		{
			name:           "Unknown status rejected",
			body:           `{"orderIds": ["` + orderID.String() + `"], "status": "Teleported"}`,
			setupMock:      func(m *MockOrderService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Malformed body rejected",
			body:           `{nope`,
			setupMock:      func(m *MockOrderService) {},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockOrderService)
			tt.setupMock(mockService)

			h := NewOrderHandler(mockService, zerolog.Nop())

			req := asUser(httptest.NewRequest(http.MethodPut, "/admin/orders", bytes.NewBufferString(tt.body)), adminID, true)
			rec := httptest.NewRecorder()

			h.AdminUpdate(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			if tt.expectedMsg != "" {
				var resp map[string]any
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
				assert.Equal(t, tt.expectedMsg, resp["message"])
			}
			mockService.AssertExpectations(t)
		})
	}
}

func TestOrderHandler_AdminDelete(t *testing.T) {
	adminID := uuid.New()
	id1 := uuid.New()
	id2 := uuid.New()

	tests := []struct {
		name           string
		body           string
		setupMock      func(*MockOrderService)
		expectedStatus int
	}{
		{
			name: "Deletes batch",
			body: `{"orderIds": ["` + id1.String() + `", "` + id2.String() + `"]}`,
			setupMock: func(m *MockOrderService) {
				m.On("Delete", mock.Anything, []string{id1.String(), id2.String()}).
					Return(int64(2), []uuid.UUID{id1, id2}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "Empty list rejected",
			body: `{"orderIds": []}`,
			setupMock: func(m *MockOrderService) {
				m.On("Delete", mock.Anything, []string{}).
					Return(int64(0), nil, model.ErrNoOrderIDs)
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "No valid ids rejected",
			body: `{"orderIds": ["garbage"]}`,
			setupMock: func(m *MockOrderService) {
				m.On("Delete", mock.Anything, []string{"garbage"}).
					Return(int64(0), nil, model.ErrNoValidOrderIDs)
			},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockOrderService)
			tt.setupMock(mockService)

			h := NewOrderHandler(mockService, zerolog.Nop())

			req := asUser(httptest.NewRequest(http.MethodDelete, "/admin/orders", bytes.NewBufferString(tt.body)), adminID, true)
			rec := httptest.NewRecorder()

			h.AdminDelete(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			if tt.expectedStatus == http.StatusOK {
				var resp deleteResponse
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
				assert.Equal(t, int64(2), resp.DeletedCount)
				assert.Len(t, resp.DeletedOrders, 2)
			}
			mockService.AssertExpectations(t)
		})
	}
}
