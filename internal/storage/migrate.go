package storage

import (
	"context"
	"fmt"
)

// Migrate creates the four relations and their indexes if they do not
// exist. order_items cascade-delete with their parent order; product
// references are enforced by the store, not by the repositories.
func Migrate(ctx context.Context, db *DB) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS products (
			id UUID PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			description TEXT,
			price DECIMAL(10,2) NOT NULL,
			stock INTEGER NOT NULL,
			images TEXT[] NOT NULL DEFAULT '{}',
			color VARCHAR(100),
			size TEXT[] NOT NULL DEFAULT '{}',
			material VARCHAR(100),
			fit_type VARCHAR(100),
			gender VARCHAR(50),
			category VARCHAR(100),
			rating DECIMAL(2,1),
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS profiles (
			id UUID PRIMARY KEY,
			user_id UUID NOT NULL UNIQUE,
			full_name VARCHAR(255),
			phone VARCHAR(20),
			address TEXT,
			created_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS orders (
			id UUID PRIMARY KEY,
			user_id UUID NOT NULL,
			total_amount DECIMAL(10,2) NOT NULL,
			payment_status VARCHAR(20) NOT NULL,
			order_status VARCHAR(20) NOT NULL,
			shipping_address TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS order_items (
			id UUID PRIMARY KEY,
			order_id UUID NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
			product_id UUID NOT NULL REFERENCES products(id),
			quantity INTEGER NOT NULL,
			price DECIMAL(10,2) NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_orders_user_id ON orders(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_order_items_order_id ON order_items(order_id)`,
		`CREATE INDEX IF NOT EXISTS idx_products_category ON products(category)`,
		`CREATE INDEX IF NOT EXISTS idx_products_created_at ON products(created_at)`,
	}

	for _, query := range queries {
		if _, err := db.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}

	return nil
}
