package db

import (
	"context"
	"fmt"

	"github.com/expotoworld/expotoworld/backend/booking-service/internal/models"
	"github.com/expotoworld/expotoworld/backend/booking-service/internal/store"
)

const userColumns = `id, email, phone, full_name, role, is_active, password_hash, created_at, updated_at`

func scanUser(s scanner) (models.User, error) {
	var u models.User
	err := s.Scan(&u.ID, &u.Email, &u.Phone, &u.FullName, &u.Role, &u.IsActive, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

func (db *Database) CreateUser(ctx context.Context, u *models.User) error {
	_, err := db.Pool.Exec(ctx, `
		INSERT INTO users (id, email, phone, full_name, role, is_active, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		u.ID, u.Email, u.Phone, u.FullName, string(u.Role), u.IsActive, u.PasswordHash, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		return translate(err)
	}
	return nil
}

func (db *Database) GetUser(ctx context.Context, id string) (*models.User, error) {
	u, err := scanUser(db.Pool.QueryRow(ctx, "SELECT "+userColumns+" FROM users WHERE id = $1", id))
	if err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (db *Database) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	u, err := scanUser(db.Pool.QueryRow(ctx, "SELECT "+userColumns+" FROM users WHERE LOWER(email) = LOWER($1)", email))
	if err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

// ListUsers retrieves users with filtering and pagination
func (db *Database) ListUsers(ctx context.Context, f store.UserFilter) ([]models.User, int, error) {
	w := &where{}
	if f.Role != "" {
		w.and("role = %s", f.Role)
	}
	if f.IsActive != nil {
		w.and("is_active = %s", *f.IsActive)
	}
	w.search(f.Search, "email", "full_name")
	return listPage(ctx, db, "users", userColumns, w, store.Filter{Limit: f.Limit, Offset: f.Offset}, scanUser)
}

func (db *Database) UpdateUser(ctx context.Context, u *models.User) error {
	tag, err := db.Pool.Exec(ctx, `
		UPDATE users SET email = $2, phone = $3, full_name = $4, role = $5, is_active = $6,
			password_hash = $7, updated_at = $8
		WHERE id = $1`,
		u.ID, u.Email, u.Phone, u.FullName, string(u.Role), u.IsActive, u.PasswordHash, u.UpdatedAt)
	if err != nil {
		return translate(err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (db *Database) DeleteUser(ctx context.Context, id string) error {
	tag, err := db.Pool.Exec(ctx, "DELETE FROM users WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}
