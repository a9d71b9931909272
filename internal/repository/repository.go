package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"todo-api/internal/models"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

type UserRepository interface {
	Create(ctx context.Context, u *models.User) error
	FindByID(ctx context.Context, id int64) (models.User, error)
	FindByEmail(ctx context.Context, email string) (models.User, error)
	// Delete removes the user together with its todos and categories.
	Delete(ctx context.Context, id int64) error
}

type CategoryRepository interface {
	Create(ctx context.Context, c *models.Category) error
	FindByID(ctx context.Context, id int64) (models.Category, error)
	FindByName(ctx context.Context, userID int64, name string) (models.Category, error)
	ListByUser(ctx context.Context, userID int64) ([]models.Category, error)
	Update(ctx context.Context, c *models.Category) error
	// Delete removes the category and clears category_id on its todos.
	Delete(ctx context.Context, userID, id int64) error
}

type TodoRepository interface {
	Create(ctx context.Context, t *models.Todo) error
	// FindByID loads a todo with its category, regardless of owner.
	FindByID(ctx context.Context, id int64) (models.Todo, error)
	List(ctx context.Context, userID int64, f models.TodoFilter, now time.Time) ([]models.Todo, error)
	Update(ctx context.Context, userID, id int64, p models.TodoPatch, now time.Time) error
	// Toggle flips is_completed and sets or clears completed_at in one statement.
	Toggle(ctx context.Context, userID, id int64, now time.Time) error
	Delete(ctx context.Context, userID, id int64) error
}

// Store bundles the repositories of one backend.
type Store struct {
	Users      UserRepository
	Categories CategoryRepository
	Todos      TodoRepository
	Close      func() error
}

// likePattern lowercases q and escapes LIKE wildcards with a backslash.
func likePattern(q string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.ToLower(q)) + "%"
}
