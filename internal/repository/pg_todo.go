package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"todo-api/internal/models"
)

const todoSelect = `
	SELECT t.id, t.title, t.description, t.due_date, t.is_completed, t.completed_at,
		t.user_id, t.category_id, t.created_at, t.updated_at,
		c.id, c.user_id, c.name, c.color, c.created_at, c.updated_at
	FROM todos t
	LEFT JOIN categories c ON c.id = t.category_id`

type PGTodoRepository struct {
	db *sql.DB
}

func NewPGTodoRepository(db *sql.DB) *PGTodoRepository {
	return &PGTodoRepository{db: db}
}

func scanTodo(row interface{ Scan(...any) error }) (models.Todo, error) {
	var (
		t           models.Todo
		description sql.NullString
		dueDate     sql.NullTime
		completedAt sql.NullTime
		categoryID  sql.NullInt64

		catID        sql.NullInt64
		catUserID    sql.NullInt64
		catName      sql.NullString
		catColor     sql.NullString
		catCreatedAt sql.NullTime
		catUpdatedAt sql.NullTime
	)
	err := row.Scan(
		&t.ID, &t.Title, &description, &dueDate, &t.IsCompleted, &completedAt,
		&t.UserID, &categoryID, &t.CreatedAt, &t.UpdatedAt,
		&catID, &catUserID, &catName, &catColor, &catCreatedAt, &catUpdatedAt,
	)
	if err != nil {
		return models.Todo{}, err
	}
	if description.Valid {
		t.Description = &description.String
	}
	if dueDate.Valid {
		t.DueDate = &dueDate.Time
	}
	if completedAt.Valid {
		t.CompletedAt = &completedAt.Time
	}
	if categoryID.Valid {
		t.CategoryID = &categoryID.Int64
	}
	if catID.Valid {
		t.Category = &models.Category{
			ID:        catID.Int64,
			UserID:    catUserID.Int64,
			Name:      catName.String,
			Color:     catColor.String,
			CreatedAt: catCreatedAt.Time,
			UpdatedAt: catUpdatedAt.Time,
		}
	}
	return t, nil
}

func (r *PGTodoRepository) Create(ctx context.Context, t *models.Todo) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO todos (user_id, category_id, title, description, due_date,
			is_completed, completed_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id`,
		t.UserID, nullable(t.CategoryID), t.Title, nullable(t.Description), nullable(t.DueDate),
		t.IsCompleted, nullable(t.CompletedAt), t.CreatedAt, t.UpdatedAt,
	).Scan(&t.ID)
	if err != nil {
		return fmt.Errorf("create todo: %w", err)
	}
	return nil
}

func (r *PGTodoRepository) FindByID(ctx context.Context, id int64) (models.Todo, error) {
	t, err := scanTodo(r.db.QueryRowContext(ctx, todoSelect+" WHERE t.id = $1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Todo{}, ErrNotFound
	}
	if err != nil {
		return models.Todo{}, fmt.Errorf("find todo: %w", err)
	}
	return t, nil
}

// nullable turns a nil pointer into an untyped nil for the driver.
func nullable[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}

// queryArgs numbers positional parameters as they are added.
type queryArgs []any

func (a *queryArgs) add(v any) string {
	*a = append(*a, v)
	return fmt.Sprintf("$%d", len(*a))
}

func (r *PGTodoRepository) List(ctx context.Context, userID int64, f models.TodoFilter, now time.Time) ([]models.Todo, error) {
	f = f.Normalized()
	var args queryArgs
	where := []string{"t.user_id = " + args.add(userID)}

	if f.Search != "" {
		p := args.add(likePattern(f.Search))
		where = append(where, fmt.Sprintf("(t.title ILIKE %s OR t.description ILIKE %s)", p, p))
	}
	if f.CategoryID != nil {
		where = append(where, "t.category_id = "+args.add(*f.CategoryID))
	}
	switch f.Status {
	case models.StatusCompleted:
		where = append(where, "t.is_completed = TRUE")
	case models.StatusIncomplete:
		where = append(where, "t.is_completed = FALSE")
	case models.StatusOverdue:
		where = append(where, "t.is_completed = FALSE AND t.due_date IS NOT NULL AND t.due_date < "+args.add(now))
	}

	query := todoSelect + " WHERE " + strings.Join(where, " AND ") + " ORDER BY " + orderClause(f)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}
	defer rows.Close()

	todos := []models.Todo{}
	for rows.Next() {
		t, err := scanTodo(rows)
		if err != nil {
			return nil, fmt.Errorf("scan todo: %w", err)
		}
		todos = append(todos, t)
	}
	return todos, rows.Err()
}

// orderClause only emits allow-listed columns. NULLs sort as the smallest
// value in both directions, matching SQLite.
func orderClause(f models.TodoFilter) string {
	column := f.SortBy
	if !models.SortableColumns[column] {
		column = models.DefaultSortBy
	}
	if f.SortOrder == models.SortAsc {
		return fmt.Sprintf("t.%s ASC NULLS FIRST, t.id ASC", column)
	}
	return fmt.Sprintf("t.%s DESC NULLS LAST, t.id DESC", column)
}

func (r *PGTodoRepository) Update(ctx context.Context, userID, id int64, p models.TodoPatch, now time.Time) error {
	var args queryArgs
	sets := []string{"updated_at = " + args.add(now)}

	if p.Title.Set {
		sets = append(sets, "title = "+args.add(p.Title.Value))
	}
	if p.Description.Set {
		sets = append(sets, "description = "+args.add(nullable(p.Description.Ptr())))
	}
	if p.DueDate.Set {
		sets = append(sets, "due_date = "+args.add(nullable(p.DueDate.Ptr())))
	}
	if p.CategoryID.Set {
		sets = append(sets, "category_id = "+args.add(nullable(p.CategoryID.Ptr())))
	}
	if p.IsCompleted.Set {
		sets = append(sets, "is_completed = "+args.add(p.IsCompleted.Value))
	}
	if p.CompletedAt.Set {
		sets = append(sets, "completed_at = "+args.add(nullable(p.CompletedAt.Ptr())))
	}

	query := fmt.Sprintf("UPDATE todos SET %s WHERE id = %s AND user_id = %s",
		strings.Join(sets, ", "), args.add(id), args.add(userID))
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update todo: %w", err)
	}
	return requireAffected(res)
}

// Toggle reads the pre-update is_completed on both sides of the SET list.
func (r *PGTodoRepository) Toggle(ctx context.Context, userID, id int64, now time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE todos
		SET is_completed = NOT is_completed,
			completed_at = CASE WHEN is_completed THEN NULL ELSE $3::timestamptz END,
			updated_at = $3::timestamptz
		WHERE id = $1 AND user_id = $2`,
		id, userID, now,
	)
	if err != nil {
		return fmt.Errorf("toggle todo: %w", err)
	}
	return requireAffected(res)
}

func (r *PGTodoRepository) Delete(ctx context.Context, userID, id int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM todos WHERE id = $1 AND user_id = $2", id, userID)
	if err != nil {
		return fmt.Errorf("delete todo: %w", err)
	}
	return requireAffected(res)
}

// NewPGStore wires the PostgreSQL repositories around db.
func NewPGStore(db *sql.DB) *Store {
	return &Store{
		Users:      NewPGUserRepository(db),
		Categories: NewPGCategoryRepository(db),
		Todos:      NewPGTodoRepository(db),
		Close:      db.Close,
	}
}
