// Package orders manages the Order+OrderItems aggregate. Creation is the
// one multi-statement write in the system and always runs inside a single
// transaction so no reader can observe a header without its items.
package orders

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/jogardn/hoodie-store/internal/sqlbuild"
	"github.com/jogardn/hoodie-store/internal/storage"
	"github.com/jogardn/hoodie-store/pkg/models"
)

const orderColumns = "id, user_id, total_amount, payment_status, order_status, " +
	"shipping_address, created_at, updated_at"

type Repository struct {
	db     *storage.DB
	logger *logrus.Logger
}

func NewRepository(db *storage.DB, logger *logrus.Logger) *Repository {
	return &Repository{db: db, logger: logger}
}

// Create persists the order header and every item as one atomic unit. The
// total is the exact decimal sum of price*quantity across items, never
// taken from the caller.
func (r *Repository) Create(ctx context.Context, req models.OrderCreate) (*models.Order, error) {
	ctx, cancel := r.db.OpContext(ctx)
	defer cancel()

	now := time.Now().UTC()
	order := &models.Order{
		ID:              uuid.New().String(),
		UserID:          req.UserID,
		PaymentStatus:   models.PaymentPending,
		OrderStatus:     models.OrderProcessing,
		ShippingAddress: req.ShippingAddress,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	total := decimal.Zero
	for _, item := range req.Items {
		total = total.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	order.TotalAmount = total

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	headerQuery := `
		INSERT INTO orders (` + orderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err = tx.ExecContext(ctx, headerQuery,
		order.ID, order.UserID, order.TotalAmount,
		string(order.PaymentStatus), string(order.OrderStatus),
		order.ShippingAddress, order.CreatedAt, order.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert order: %w", err)
	}

	itemQuery := `
		INSERT INTO order_items (id, order_id, product_id, quantity, price)
		VALUES ($1, $2, $3, $4, $5)
	`
	for _, item := range req.Items {
		oi := models.OrderItem{
			ID:        uuid.New().String(),
			OrderID:   order.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.Price,
		}
		if _, err := tx.ExecContext(ctx, itemQuery,
			oi.ID, oi.OrderID, oi.ProductID, oi.Quantity, oi.Price); err != nil {
			return nil, fmt.Errorf("failed to insert order item: %w", err)
		}
		order.Items = append(order.Items, oi)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit order: %w", err)
	}

	r.logger.WithFields(logrus.Fields{
		"order_id":     order.ID,
		"user_id":      order.UserID,
		"total_amount": order.TotalAmount.String(),
		"items_count":  len(order.Items),
	}).Info("Order created")

	return order, nil
}

// GetByID reconstructs the aggregate: header first, then all items sharing
// the order id. Item order is not guaranteed.
func (r *Repository) GetByID(ctx context.Context, id string) (*models.Order, error) {
	ctx, cancel := r.db.OpContext(ctx)
	defer cancel()

	order, err := r.getHeader(ctx, id)
	if err != nil {
		return nil, err
	}
	order.Items, err = r.getItems(ctx, id)
	if err != nil {
		return nil, err
	}
	return order, nil
}

// ListForUser returns one page of a user's orders, newest first. Items are
// fetched per order.
func (r *Repository) ListForUser(ctx context.Context, userID string, limit, offset int) ([]*models.Order, error) {
	ctx, cancel := r.db.OpContext(ctx)
	defer cancel()

	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.QueryContext(ctx, query,
		userID, sqlbuild.ClampLimit(limit), sqlbuild.ClampOffset(offset))
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	orders := []*models.Order{}
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read orders: %w", err)
	}

	for _, order := range orders {
		order.Items, err = r.getItems(ctx, order.ID)
		if err != nil {
			return nil, err
		}
	}

	return orders, nil
}

// UpdateStatus moves an order along the status graph. A status unreachable
// from the current one is rejected with storage.ErrInvalidTransition and
// nothing is written.
func (r *Repository) UpdateStatus(ctx context.Context, id string, status models.OrderStatus) (*models.Order, error) {
	ctx, cancel := r.db.OpContext(ctx)
	defer cancel()

	current, err := r.currentStatus(ctx, id)
	if err != nil {
		return nil, err
	}
	if !current.CanTransitionTo(status) {
		return nil, fmt.Errorf("%w: %s -> %s", storage.ErrInvalidTransition, current, status)
	}

	query := `UPDATE orders SET order_status = $1, updated_at = NOW() WHERE id = $2`
	res, err := r.db.ExecContext(ctx, query, string(status), id)
	if err != nil {
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return nil, storage.ErrNotFound
	}

	r.logger.WithFields(logrus.Fields{
		"order_id":     id,
		"order_status": string(status),
	}).Info("Order status updated")

	return r.GetByID(ctx, id)
}

// Update applies a sparse update to the order's mutable scalar fields.
// Zero present fields is a no-op read-through; a present order_status runs
// the same transition check as UpdateStatus.
func (r *Repository) Update(ctx context.Context, id string, req models.OrderUpdate) (*models.Order, error) {
	ctx, cancel := r.db.OpContext(ctx)
	defer cancel()

	if req.OrderStatus != nil {
		current, err := r.currentStatus(ctx, id)
		if err != nil {
			return nil, err
		}
		if !current.CanTransitionTo(*req.OrderStatus) {
			return nil, fmt.Errorf("%w: %s -> %s", storage.ErrInvalidTransition, current, *req.OrderStatus)
		}
	}

	u := sqlbuild.NewUpdate()
	if req.PaymentStatus != nil {
		u.Set("payment_status", string(*req.PaymentStatus))
	}
	if req.OrderStatus != nil {
		u.Set("order_status", string(*req.OrderStatus))
	}
	if req.ShippingAddress != nil {
		u.Set("shipping_address", *req.ShippingAddress)
	}

	query, args, ok := u.Build("orders", "id", id, "updated_at")
	if !ok {
		return r.GetByID(ctx, id)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to update order: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return nil, storage.ErrNotFound
	}

	r.logger.WithField("order_id", id).Info("Order updated")

	return r.GetByID(ctx, id)
}

func (r *Repository) getHeader(ctx context.Context, id string) (*models.Order, error) {
	query := "SELECT " + orderColumns + " FROM orders WHERE id = $1"
	order, err := scanOrder(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return order, nil
}

func (r *Repository) getItems(ctx context.Context, orderID string) ([]models.OrderItem, error) {
	query := `
		SELECT id, order_id, product_id, quantity, price
		FROM order_items WHERE order_id = $1
	`
	rows, err := r.db.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get order items: %w", err)
	}
	defer rows.Close()

	items := []models.OrderItem{}
	for rows.Next() {
		var item models.OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID,
			&item.Quantity, &item.Price); err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read order items: %w", err)
	}

	return items, nil
}

func (r *Repository) currentStatus(ctx context.Context, id string) (models.OrderStatus, error) {
	var status string
	err := r.db.QueryRowContext(ctx,
		"SELECT order_status FROM orders WHERE id = $1", id).Scan(&status)
	if err == sql.ErrNoRows {
		return "", storage.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to get order status: %w", err)
	}
	return models.OrderStatus(status), nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanOrder(row rowScanner) (*models.Order, error) {
	var order models.Order
	var paymentStatus, orderStatus string

	err := row.Scan(
		&order.ID, &order.UserID, &order.TotalAmount,
		&paymentStatus, &orderStatus,
		&order.ShippingAddress, &order.CreatedAt, &order.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	order.PaymentStatus = models.PaymentStatus(paymentStatus)
	order.OrderStatus = models.OrderStatus(orderStatus)
	return &order, nil
}
