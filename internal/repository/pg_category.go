package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"todo-api/internal/models"
)

const categoryColumns = "id, user_id, name, color, created_at, updated_at"

type PGCategoryRepository struct {
	db *sql.DB
}

func NewPGCategoryRepository(db *sql.DB) *PGCategoryRepository {
	return &PGCategoryRepository{db: db}
}

func scanCategory(row interface{ Scan(...any) error }) (models.Category, error) {
	var c models.Category
	err := row.Scan(&c.ID, &c.UserID, &c.Name, &c.Color, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func (r *PGCategoryRepository) Create(ctx context.Context, c *models.Category) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO categories (user_id, name, color, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		c.UserID, c.Name, c.Color, c.CreatedAt, c.UpdatedAt,
	).Scan(&c.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("create category: %w", err)
	}
	return nil
}

func (r *PGCategoryRepository) FindByID(ctx context.Context, id int64) (models.Category, error) {
	c, err := scanCategory(r.db.QueryRowContext(ctx,
		"SELECT "+categoryColumns+" FROM categories WHERE id = $1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Category{}, ErrNotFound
	}
	if err != nil {
		return models.Category{}, fmt.Errorf("find category: %w", err)
	}
	return c, nil
}

func (r *PGCategoryRepository) FindByName(ctx context.Context, userID int64, name string) (models.Category, error) {
	c, err := scanCategory(r.db.QueryRowContext(ctx,
		"SELECT "+categoryColumns+" FROM categories WHERE user_id = $1 AND name = $2", userID, name))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Category{}, ErrNotFound
	}
	if err != nil {
		return models.Category{}, fmt.Errorf("find category: %w", err)
	}
	return c, nil
}

func (r *PGCategoryRepository) ListByUser(ctx context.Context, userID int64) ([]models.Category, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+categoryColumns+" FROM categories WHERE user_id = $1 ORDER BY name ASC, id ASC", userID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	categories := []models.Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (r *PGCategoryRepository) Update(ctx context.Context, c *models.Category) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE categories SET name = $1, color = $2, updated_at = $3
		WHERE id = $4 AND user_id = $5`,
		c.Name, c.Color, c.UpdatedAt, c.ID, c.UserID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("update category: %w", err)
	}
	return requireAffected(res)
}

// Delete relies on ON DELETE SET NULL to detach the category's todos.
func (r *PGCategoryRepository) Delete(ctx context.Context, userID, id int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM categories WHERE id = $1 AND user_id = $2", id, userID)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return requireAffected(res)
}
