package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jogardn/hoodie-store/internal/orders"
	"github.com/jogardn/hoodie-store/internal/products"
	"github.com/jogardn/hoodie-store/internal/profiles"
	"github.com/jogardn/hoodie-store/internal/storage"
	"github.com/jogardn/hoodie-store/pkg/models"
)

func newTestServer(t *testing.T) (*Server, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)

	wrapped := storage.NewDB(db, time.Second)
	s := New(wrapped,
		products.NewRepository(wrapped, logger),
		orders.NewRepository(wrapped, logger),
		profiles.NewRepository(wrapped, logger),
		nil, nil, logger)
	return s, mock
}

func doJSON(t *testing.T, s *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func TestCreateOrderRejectsEmptyItems(t *testing.T) {
	s, mock := newTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/orders", models.OrderCreate{
		UserID:          "user-1",
		Items:           []models.OrderItemCreate{},
		ShippingAddress: "123 Main St",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateOrderRejectsNonPositiveQuantity(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/orders", models.OrderCreate{
		UserID: "user-1",
		Items: []models.OrderItemCreate{
			{ProductID: "prod-a", Quantity: 0, Price: decimal.NewFromInt(10)},
		},
		ShippingAddress: "123 Main St",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateOrderHappyPath(t *testing.T) {
	s, mock := newTestServer(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO orders").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO order_items").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	rec := doJSON(t, s, http.MethodPost, "/orders", models.OrderCreate{
		UserID: "user-1",
		Items: []models.OrderItemCreate{
			{ProductID: "prod-a", Quantity: 2, Price: decimal.RequireFromString("10.00")},
		},
		ShippingAddress: "123 Main St",
	})

	require.Equal(t, http.StatusCreated, rec.Code)

	var order models.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &order))
	assert.True(t, order.TotalAmount.Equal(decimal.RequireFromString("20.00")))
	assert.Equal(t, models.OrderProcessing, order.OrderStatus)
}

func TestGetOrderMapsNotFound(t *testing.T) {
	s, mock := newTestServer(t)

	mock.ExpectQuery("SELECT (.+) FROM orders WHERE id").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "user_id", "total_amount", "payment_status", "order_status",
			"shipping_address", "created_at", "updated_at"}))

	rec := doJSON(t, s, http.MethodGet, "/orders/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateOrderStatusMapsConflict(t *testing.T) {
	s, mock := newTestServer(t)

	mock.ExpectQuery("SELECT order_status FROM orders WHERE id").
		WillReturnRows(sqlmock.NewRows([]string{"order_status"}).AddRow("cancelled"))

	rec := doJSON(t, s, http.MethodPut, "/orders/o1/status",
		models.OrderStatusUpdate{OrderStatus: models.OrderShipped})

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestUpdateOrderStatusRejectsUnknownValue(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doJSON(t, s, http.MethodPut, "/orders/o1/status",
		map[string]string{"order_status": "refunded"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateProductValidatesRatingRange(t *testing.T) {
	s, _ := newTestServer(t)

	rating := decimal.NullDecimal{Decimal: decimal.NewFromInt(6), Valid: true}
	rec := doJSON(t, s, http.MethodPost, "/products", models.ProductCreate{
		Name:   "Zip Hoodie",
		Price:  decimal.RequireFromString("59.90"),
		Rating: rating,
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListProductsRejectsMalformedPrice(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doJSON(t, s, http.MethodGet, "/products?min_price=cheap", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteProductNotFound(t *testing.T) {
	s, mock := newTestServer(t)

	mock.ExpectExec("DELETE FROM products WHERE id").
		WillReturnResult(sqlmock.NewResult(0, 0))

	rec := doJSON(t, s, http.MethodDelete, "/products/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
