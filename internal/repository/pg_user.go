package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"todo-api/internal/models"
)

// isUniqueViolation reports whether err is a PostgreSQL unique violation (23505).
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}

type PGUserRepository struct {
	db *sql.DB
}

func NewPGUserRepository(db *sql.DB) *PGUserRepository {
	return &PGUserRepository{db: db}
}

func (r *PGUserRepository) Create(ctx context.Context, u *models.User) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO users (name, email, password, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		u.Name, u.Email, u.PasswordHash, u.CreatedAt, u.UpdatedAt,
	).Scan(&u.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (r *PGUserRepository) findOne(ctx context.Context, where string, arg any) (models.User, error) {
	var u models.User
	err := r.db.QueryRowContext(ctx,
		"SELECT id, name, email, password, created_at, updated_at FROM users WHERE "+where, arg,
	).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrNotFound
	}
	if err != nil {
		return models.User{}, fmt.Errorf("find user: %w", err)
	}
	return u, nil
}

func (r *PGUserRepository) FindByID(ctx context.Context, id int64) (models.User, error) {
	return r.findOne(ctx, "id = $1", id)
}

func (r *PGUserRepository) FindByEmail(ctx context.Context, email string) (models.User, error) {
	return r.findOne(ctx, "email = $1", email)
}

// Delete relies on ON DELETE CASCADE for todos and categories.
func (r *PGUserRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM users WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return requireAffected(res)
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
