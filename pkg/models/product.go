package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID          string              `json:"id"`
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Price       decimal.Decimal     `json:"price"`
	Stock       int                 `json:"stock"`
	Images      []string            `json:"images"`
	Color       string              `json:"color"`
	Size        []string            `json:"size"`
	Material    string              `json:"material"`
	FitType     string              `json:"fit_type"`
	Gender      string              `json:"gender"`
	Category    string              `json:"category"`
	Rating      decimal.NullDecimal `json:"rating"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

type ProductCreate struct {
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Price       decimal.Decimal     `json:"price"`
	Stock       int                 `json:"stock"`
	Images      []string            `json:"images"`
	Color       string              `json:"color"`
	Size        []string            `json:"size"`
	Material    string              `json:"material"`
	FitType     string              `json:"fit_type"`
	Gender      string              `json:"gender"`
	Category    string              `json:"category"`
	Rating      decimal.NullDecimal `json:"rating"`
}

// ProductUpdate follows the sparse-update convention: nil pointers (and nil
// slices) are absent fields and stay untouched in storage.
type ProductUpdate struct {
	Name        *string              `json:"name,omitempty"`
	Description *string              `json:"description,omitempty"`
	Price       *decimal.Decimal     `json:"price,omitempty"`
	Stock       *int                 `json:"stock,omitempty"`
	Images      []string             `json:"images,omitempty"`
	Color       *string              `json:"color,omitempty"`
	Size        []string             `json:"size,omitempty"`
	Material    *string              `json:"material,omitempty"`
	FitType     *string              `json:"fit_type,omitempty"`
	Gender      *string              `json:"gender,omitempty"`
	Category    *string              `json:"category,omitempty"`
	Rating      *decimal.NullDecimal `json:"rating,omitempty"`
}

// ProductFilter is the optional criteria set for product listings. Zero
// values mean "no constraint"; Limit and Offset are clamped by the query
// builder, not here.
type ProductFilter struct {
	Category  string
	Color     string
	Size      string
	MinPrice  *decimal.Decimal
	MaxPrice  *decimal.Decimal
	Gender    string
	FitType   string
	MinRating *decimal.Decimal
	Search    string
	Limit     int
	Offset    int
}
