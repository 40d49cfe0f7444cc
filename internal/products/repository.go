// Package products is the CRUD repository for the product catalog. Reads
// are driven by the sqlbuild predicate builder, sparse updates by the
// shared update compiler.
package products

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"github.com/jogardn/hoodie-store/internal/sqlbuild"
	"github.com/jogardn/hoodie-store/internal/storage"
	"github.com/jogardn/hoodie-store/pkg/models"
)

type Repository struct {
	db     *storage.DB
	logger *logrus.Logger
}

func NewRepository(db *storage.DB, logger *logrus.Logger) *Repository {
	return &Repository{db: db, logger: logger}
}

func (r *Repository) Create(ctx context.Context, req models.ProductCreate) (*models.Product, error) {
	ctx, cancel := r.db.OpContext(ctx)
	defer cancel()

	now := time.Now().UTC()
	p := &models.Product{
		ID:          uuid.New().String(),
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		Images:      req.Images,
		Color:       req.Color,
		Size:        req.Size,
		Material:    req.Material,
		FitType:     req.FitType,
		Gender:      req.Gender,
		Category:    req.Category,
		Rating:      req.Rating,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if p.Images == nil {
		p.Images = []string{}
	}
	if p.Size == nil {
		p.Size = []string{}
	}

	query := `
		INSERT INTO products (
			id, name, description, price, stock, images, color, size,
			material, fit_type, gender, category, rating, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`
	_, err := r.db.ExecContext(ctx, query,
		p.ID, p.Name, nullString(p.Description), p.Price, p.Stock,
		pq.Array(p.Images), nullString(p.Color), pq.Array(p.Size),
		nullString(p.Material), nullString(p.FitType), nullString(p.Gender),
		nullString(p.Category), p.Rating, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert product: %w", err)
	}

	r.logger.WithFields(logrus.Fields{
		"product_id": p.ID,
		"name":       p.Name,
	}).Info("Product created")

	return p, nil
}

func (r *Repository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	ctx, cancel := r.db.OpContext(ctx)
	defer cancel()

	query := "SELECT " + sqlbuild.ProductColumns + " FROM products WHERE id = $1"
	p, err := scanProduct(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return p, nil
}

// List returns one page of products matching every present filter field,
// newest first. Callers re-issue with a new offset to advance.
func (r *Repository) List(ctx context.Context, filter models.ProductFilter) ([]*models.Product, error) {
	ctx, cancel := r.db.OpContext(ctx)
	defer cancel()

	query, args := sqlbuild.BuildProductQuery(filter)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	products := []*models.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read products: %w", err)
	}

	return products, nil
}

// Update applies only the fields present in req. A request with no fields
// set is a no-op read-through and leaves updated_at untouched.
func (r *Repository) Update(ctx context.Context, id string, req models.ProductUpdate) (*models.Product, error) {
	u := sqlbuild.NewUpdate()
	if req.Name != nil {
		u.Set("name", *req.Name)
	}
	if req.Description != nil {
		u.Set("description", *req.Description)
	}
	if req.Price != nil {
		u.Set("price", *req.Price)
	}
	if req.Stock != nil {
		u.Set("stock", *req.Stock)
	}
	if req.Images != nil {
		u.Set("images", pq.Array(req.Images))
	}
	if req.Color != nil {
		u.Set("color", *req.Color)
	}
	if req.Size != nil {
		u.Set("size", pq.Array(req.Size))
	}
	if req.Material != nil {
		u.Set("material", *req.Material)
	}
	if req.FitType != nil {
		u.Set("fit_type", *req.FitType)
	}
	if req.Gender != nil {
		u.Set("gender", *req.Gender)
	}
	if req.Category != nil {
		u.Set("category", *req.Category)
	}
	if req.Rating != nil {
		u.Set("rating", *req.Rating)
	}

	query, args, ok := u.Build("products", "id", id, "updated_at")
	if !ok {
		return r.GetByID(ctx, id)
	}

	ctx, cancel := r.db.OpContext(ctx)
	defer cancel()

	query += " RETURNING " + sqlbuild.ProductColumns
	p, err := scanProduct(r.db.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	r.logger.WithField("product_id", id).Info("Product updated")

	return p, nil
}

// Delete removes a product and reports whether a row was actually removed.
func (r *Repository) Delete(ctx context.Context, id string) (bool, error) {
	ctx, cancel := r.db.OpContext(ctx)
	defer cancel()

	res, err := r.db.ExecContext(ctx, "DELETE FROM products WHERE id = $1", id)
	if err != nil {
		return false, fmt.Errorf("failed to delete product: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if affected > 0 {
		r.logger.WithField("product_id", id).Info("Product deleted")
	}
	return affected > 0, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProduct(row rowScanner) (*models.Product, error) {
	var p models.Product
	var description, color, material, fitType, gender, category sql.NullString

	err := row.Scan(
		&p.ID, &p.Name, &description, &p.Price, &p.Stock,
		pq.Array(&p.Images), &color, pq.Array(&p.Size),
		&material, &fitType, &gender, &category,
		&p.Rating, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	p.Description = description.String
	p.Color = color.String
	p.Material = material.String
	p.FitType = fitType.String
	p.Gender = gender.String
	p.Category = category.String

	// Array columns are never nil on the way out.
	if p.Images == nil {
		p.Images = []string{}
	}
	if p.Size == nil {
		p.Size = []string{}
	}

	return &p, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
