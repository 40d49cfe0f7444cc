// Package profiles is single-row CRUD over user profiles. It shares the
// sparse-update compiler with the product and order repositories.
package profiles

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
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

func (r *Repository) Create(ctx context.Context, req models.ProfileCreate) (*models.Profile, error) {
	ctx, cancel := r.db.OpContext(ctx)
	defer cancel()

	p := &models.Profile{
		ID:        uuid.New().String(),
		UserID:    req.UserID,
		FullName:  req.FullName,
		Phone:     req.Phone,
		Address:   req.Address,
		CreatedAt: time.Now().UTC(),
	}

	query := `
		INSERT INTO profiles (id, user_id, full_name, phone, address, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.ExecContext(ctx, query,
		p.ID, p.UserID, nullString(p.FullName), nullString(p.Phone),
		nullString(p.Address), p.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert profile: %w", err)
	}

	r.logger.WithFields(logrus.Fields{
		"profile_id": p.ID,
		"user_id":    p.UserID,
	}).Info("Profile created")

	return p, nil
}

func (r *Repository) GetByUserID(ctx context.Context, userID string) (*models.Profile, error) {
	ctx, cancel := r.db.OpContext(ctx)
	defer cancel()

	query := `
		SELECT id, user_id, full_name, phone, address, created_at
		FROM profiles WHERE user_id = $1
	`
	p, err := scanProfile(r.db.QueryRowContext(ctx, query, userID))
	if err == sql.ErrNoRows {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return p, nil
}

// Update applies only the present fields; the profiles table carries no
// updated_at column, so no touch column is passed.
func (r *Repository) Update(ctx context.Context, userID string, req models.ProfileUpdate) (*models.Profile, error) {
	u := sqlbuild.NewUpdate()
	if req.FullName != nil {
		u.Set("full_name", *req.FullName)
	}
	if req.Phone != nil {
		u.Set("phone", *req.Phone)
	}
	if req.Address != nil {
		u.Set("address", *req.Address)
	}

	query, args, ok := u.Build("profiles", "user_id", userID, "")
	if !ok {
		return r.GetByUserID(ctx, userID)
	}

	ctx, cancel := r.db.OpContext(ctx)
	defer cancel()

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return nil, storage.ErrNotFound
	}

	r.logger.WithField("user_id", userID).Info("Profile updated")

	return r.GetByUserID(ctx, userID)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProfile(row rowScanner) (*models.Profile, error) {
	var p models.Profile
	var fullName, phone, address sql.NullString

	err := row.Scan(&p.ID, &p.UserID, &fullName, &phone, &address, &p.CreatedAt)
	if err != nil {
		return nil, err
	}

	p.FullName = fullName.String
	p.Phone = phone.String
	p.Address = address.String
	return &p, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
