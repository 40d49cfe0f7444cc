package products

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jogardn/hoodie-store/internal/sqlbuild"
	"github.com/jogardn/hoodie-store/internal/storage"
	"github.com/jogardn/hoodie-store/pkg/models"
)

var productCols = []string{
	"id", "name", "description", "price", "stock", "images", "color", "size",
	"material", "fit_type", "gender", "category", "rating", "created_at", "updated_at",
}

func newTestRepo(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)

	return NewRepository(storage.NewDB(db, time.Second), logger), mock
}

func productRow(id string, now time.Time) *sqlmock.Rows {
	return sqlmock.NewRows(productCols).AddRow(
		id, "Zip Hoodie", "Heavy fleece", "59.90", 10, "{front.jpg,back.jpg}",
		"black", "{M,L,XL}", nil, nil, "unisex", "hoodies", "4.5", now, now,
	)
}

func TestCreateStampsAndDefaults(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectExec("INSERT INTO products").
		WillReturnResult(sqlmock.NewResult(0, 1))

	p, err := repo.Create(context.Background(), models.ProductCreate{
		Name:  "Zip Hoodie",
		Price: decimal.RequireFromString("59.90"),
		Stock: 10,
	})
	require.NoError(t, err)

	assert.NotEmpty(t, p.ID)
	assert.NotNil(t, p.Images)
	assert.NotNil(t, p.Size)
	assert.Empty(t, p.Images)
	assert.Empty(t, p.Size)
	assert.False(t, p.CreatedAt.IsZero())
	assert.Equal(t, p.CreatedAt, p.UpdatedAt)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByIDNotFound(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectQuery("SELECT (.+) FROM products WHERE id").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(productCols))

	_, err := repo.GetByID(context.Background(), "missing")
	assert.True(t, errors.Is(err, storage.ErrNotFound))
}

func TestGetByIDScansOptionalColumns(t *testing.T) {
	repo, mock := newTestRepo(t)
	now := time.Now().UTC()

	mock.ExpectQuery("SELECT (.+) FROM products WHERE id").
		WithArgs("p1").
		WillReturnRows(productRow("p1", now))

	p, err := repo.GetByID(context.Background(), "p1")
	require.NoError(t, err)

	assert.Equal(t, "Zip Hoodie", p.Name)
	assert.Equal(t, []string{"front.jpg", "back.jpg"}, p.Images)
	assert.Equal(t, []string{"M", "L", "XL"}, p.Size)
	assert.Equal(t, "", p.Material)
	assert.Equal(t, "", p.FitType)
	assert.True(t, p.Rating.Valid)
	assert.True(t, p.Rating.Decimal.Equal(decimal.RequireFromString("4.5")))
	assert.True(t, p.Price.Equal(decimal.RequireFromString("59.90")))
}

func TestListUsesFilterPredicates(t *testing.T) {
	repo, mock := newTestRepo(t)
	now := time.Now().UTC()

	mock.ExpectQuery(`SELECT (.+) FROM products WHERE 1=1 AND category = \$1 ORDER BY created_at DESC LIMIT \$2 OFFSET \$3`).
		WithArgs("hoodies", sqlbuild.DefaultLimit, 0).
		WillReturnRows(productRow("p1", now))

	list, err := repo.List(context.Background(), models.ProductFilter{Category: "hoodies"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "p1", list[0].ID)
}

func TestListEmptyResultIsNotAnError(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectQuery("SELECT (.+) FROM products WHERE 1=1").
		WillReturnRows(sqlmock.NewRows(productCols))

	list, err := repo.List(context.Background(), models.ProductFilter{})
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestUpdateZeroFieldsIsReadThrough(t *testing.T) {
	repo, mock := newTestRepo(t)
	now := time.Now().UTC()

	// Only a SELECT may run; an UPDATE would bump updated_at for nothing.
	mock.ExpectQuery("SELECT (.+) FROM products WHERE id").
		WithArgs("p1").
		WillReturnRows(productRow("p1", now))

	p, err := repo.Update(context.Background(), "p1", models.ProductUpdate{})
	require.NoError(t, err)
	assert.Equal(t, "p1", p.ID)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateEmitsOnlyPresentFields(t *testing.T) {
	repo, mock := newTestRepo(t)
	now := time.Now().UTC()

	name := "Oversized Hoodie"
	stock := 3

	mock.ExpectQuery(regexp.QuoteMeta(
		"UPDATE products SET name = $1, stock = $2, updated_at = NOW() WHERE id = $3 RETURNING "+sqlbuild.ProductColumns)).
		WithArgs(name, stock, "p1").
		WillReturnRows(productRow("p1", now))

	_, err := repo.Update(context.Background(), "p1", models.ProductUpdate{
		Name:  &name,
		Stock: &stock,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateNotFound(t *testing.T) {
	repo, mock := newTestRepo(t)
	name := "Renamed"

	mock.ExpectQuery("UPDATE products SET").
		WithArgs(name, "missing").
		WillReturnRows(sqlmock.NewRows(productCols))

	_, err := repo.Update(context.Background(), "missing", models.ProductUpdate{Name: &name})
	assert.True(t, errors.Is(err, storage.ErrNotFound))
}

func TestDeleteReportsWhetherRowRemoved(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectExec("DELETE FROM products WHERE id").
		WithArgs("p1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM products WHERE id").
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	deleted, err := repo.Delete(context.Background(), "p1")
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = repo.Delete(context.Background(), "missing")
	require.NoError(t, err)
	assert.False(t, deleted)
}
