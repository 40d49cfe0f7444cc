// Package sqlbuild assembles the dynamic pieces of product and profile SQL:
// the filtered product listing and the sparse UPDATE statements shared by
// all repositories. Values are only ever bound through positional
// placeholders, never interpolated.
package sqlbuild

import (
	"fmt"
	"strings"

	"github.com/jogardn/hoodie-store/pkg/models"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// ProductColumns is the select list every product query scans in this order.
const ProductColumns = "id, name, description, price, stock, images, color, size, " +
	"material, fit_type, gender, category, rating, created_at, updated_at"

// ClampLimit normalizes a page size into [1, MaxLimit], defaulting to
// DefaultLimit when unset.
func ClampLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// ClampOffset normalizes a page offset to be non-negative.
func ClampOffset(offset int) int {
	if offset < 0 {
		return 0
	}
	return offset
}

// BuildProductQuery turns an optional filter set into one parameterized
// SELECT. Every present field contributes a single AND-ed clause with a
// fresh placeholder; the free-text term is bound once and referenced by
// both ILIKE clauses. An empty filter is valid and returns newest-first
// pages; a min price above the max is accepted and simply matches nothing.
func BuildProductQuery(f models.ProductFilter) (string, []interface{}) {
	var sb strings.Builder
	sb.WriteString("SELECT " + ProductColumns + " FROM products WHERE 1=1")

	args := make([]interface{}, 0, 11)
	next := func(value interface{}) int {
		args = append(args, value)
		return len(args)
	}

	if f.Category != "" {
		fmt.Fprintf(&sb, " AND category = $%d", next(f.Category))
	}
	if f.Color != "" {
		fmt.Fprintf(&sb, " AND color = $%d", next(f.Color))
	}
	if f.Size != "" {
		fmt.Fprintf(&sb, " AND $%d = ANY(size)", next(f.Size))
	}
	if f.MinPrice != nil {
		fmt.Fprintf(&sb, " AND price >= $%d", next(*f.MinPrice))
	}
	if f.MaxPrice != nil {
		fmt.Fprintf(&sb, " AND price <= $%d", next(*f.MaxPrice))
	}
	if f.Gender != "" {
		fmt.Fprintf(&sb, " AND gender = $%d", next(f.Gender))
	}
	if f.FitType != "" {
		fmt.Fprintf(&sb, " AND fit_type = $%d", next(f.FitType))
	}
	if f.MinRating != nil {
		fmt.Fprintf(&sb, " AND rating >= $%d", next(*f.MinRating))
	}
	if f.Search != "" {
		n := next("%" + f.Search + "%")
		fmt.Fprintf(&sb, " AND (name ILIKE $%d OR description ILIKE $%d)", n, n)
	}

	fmt.Fprintf(&sb, " ORDER BY created_at DESC LIMIT $%d", next(ClampLimit(f.Limit)))
	fmt.Fprintf(&sb, " OFFSET $%d", next(ClampOffset(f.Offset)))

	return sb.String(), args
}
