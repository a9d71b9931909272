package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"todo-api/internal/models"
)

type GormTodoRepository struct {
	db *gorm.DB
}

func NewGormTodoRepository(db *gorm.DB) *GormTodoRepository {
	return &GormTodoRepository{db: db}
}

func scopeOwner(userID int64) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("user_id = ?", userID)
	}
}

func scopeSearch(q string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if q == "" {
			return db
		}
		p := likePattern(q)
		// unicode_lower is registered by database.ConnectSQLite.
		return db.Where(`(unicode_lower(title) LIKE ? ESCAPE '\' OR unicode_lower(COALESCE(description, '')) LIKE ? ESCAPE '\')`, p, p)
	}
}

func scopeCategory(categoryID *int64) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if categoryID == nil {
			return db
		}
		return db.Where("category_id = ?", *categoryID)
	}
}

func scopeStatus(status string, now time.Time) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		switch status {
		case models.StatusCompleted:
			return db.Where("is_completed = ?", true)
		case models.StatusIncomplete:
			return db.Where("is_completed = ?", false)
		case models.StatusOverdue:
			return db.Where("is_completed = ? AND due_date IS NOT NULL AND due_date < ?", false, now)
		}
		return db
	}
}

// scopeSort orders by an allow-listed column with id as tiebreaker. SQLite
// already treats NULL as the smallest value.
func scopeSort(sortBy, sortOrder string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if !models.SortableColumns[sortBy] {
			sortBy = models.DefaultSortBy
		}
		desc := sortOrder != models.SortAsc
		return db.
			Order(clause.OrderByColumn{Column: clause.Column{Name: sortBy}, Desc: desc}).
			Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}, Desc: desc})
	}
}

func (r *GormTodoRepository) Create(ctx context.Context, t *models.Todo) error {
	return gormError("create todo", r.db.WithContext(ctx).Omit(clause.Associations).Create(t).Error)
}

func (r *GormTodoRepository) FindByID(ctx context.Context, id int64) (models.Todo, error) {
	var t models.Todo
	if err := r.db.WithContext(ctx).Preload("Category").First(&t, id).Error; err != nil {
		return models.Todo{}, gormError("find todo", err)
	}
	return t, nil
}

func (r *GormTodoRepository) List(ctx context.Context, userID int64, f models.TodoFilter, now time.Time) ([]models.Todo, error) {
	f = f.Normalized()
	todos := []models.Todo{}
	err := r.db.WithContext(ctx).
		Preload("Category").
		Scopes(
			scopeOwner(userID),
			scopeSearch(f.Search),
			scopeCategory(f.CategoryID),
			scopeStatus(f.Status, now),
			scopeSort(f.SortBy, f.SortOrder),
		).
		Find(&todos).Error
	if err != nil {
		return nil, gormError("list todos", err)
	}
	return todos, nil
}

func (r *GormTodoRepository) Update(ctx context.Context, userID, id int64, p models.TodoPatch, now time.Time) error {
	values := map[string]any{"updated_at": now}
	if p.Title.Set {
		values["title"] = p.Title.Value
	}
	if p.Description.Set {
		values["description"] = nullable(p.Description.Ptr())
	}
	if p.DueDate.Set {
		values["due_date"] = nullable(p.DueDate.Ptr())
	}
	if p.CategoryID.Set {
		values["category_id"] = nullable(p.CategoryID.Ptr())
	}
	if p.IsCompleted.Set {
		values["is_completed"] = p.IsCompleted.Value
	}
	if p.CompletedAt.Set {
		values["completed_at"] = nullable(p.CompletedAt.Ptr())
	}

	res := r.db.WithContext(ctx).Model(&models.Todo{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(values)
	if res.Error != nil {
		return gormError("update todo", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormTodoRepository) Toggle(ctx context.Context, userID, id int64, now time.Time) error {
	res := r.db.WithContext(ctx).Model(&models.Todo{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(map[string]any{
			"is_completed": gorm.Expr("NOT is_completed"),
			"completed_at": gorm.Expr("CASE WHEN is_completed THEN NULL ELSE ? END", now),
			"updated_at":   now,
		})
	if res.Error != nil {
		return gormError("toggle todo", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormTodoRepository) Delete(ctx context.Context, userID, id int64) error {
	res := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&models.Todo{})
	if res.Error != nil {
		return gormError("delete todo", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// NewGormStore wires the gorm repositories around db.
func NewGormStore(db *gorm.DB) *Store {
	return &Store{
		Users:      NewGormUserRepository(db),
		Categories: NewGormCategoryRepository(db),
		Todos:      NewGormTodoRepository(db),
		Close: func() error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	}
}
