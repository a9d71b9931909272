package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"todo-api/internal/models"
)

type GormCategoryRepository struct {
	db *gorm.DB
}

func NewGormCategoryRepository(db *gorm.DB) *GormCategoryRepository {
	return &GormCategoryRepository{db: db}
}

func (r *GormCategoryRepository) Create(ctx context.Context, c *models.Category) error {
	return gormError("create category", r.db.WithContext(ctx).Omit(clause.Associations).Create(c).Error)
}

func (r *GormCategoryRepository) FindByID(ctx context.Context, id int64) (models.Category, error) {
	var c models.Category
	if err := r.db.WithContext(ctx).First(&c, id).Error; err != nil {
		return models.Category{}, gormError("find category", err)
	}
	return c, nil
}

func (r *GormCategoryRepository) FindByName(ctx context.Context, userID int64, name string) (models.Category, error) {
	var c models.Category
	err := r.db.WithContext(ctx).Where("user_id = ? AND name = ?", userID, name).First(&c).Error
	if err != nil {
		return models.Category{}, gormError("find category", err)
	}
	return c, nil
}

func (r *GormCategoryRepository) ListByUser(ctx context.Context, userID int64) ([]models.Category, error) {
	categories := []models.Category{}
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("name ASC, id ASC").Find(&categories).Error
	if err != nil {
		return nil, gormError("list categories", err)
	}
	return categories, nil
}

func (r *GormCategoryRepository) Update(ctx context.Context, c *models.Category) error {
	res := r.db.WithContext(ctx).Model(&models.Category{}).
		Where("id = ? AND user_id = ?", c.ID, c.UserID).
		Updates(map[string]any{"name": c.Name, "color": c.Color, "updated_at": c.UpdatedAt})
	if res.Error != nil {
		return gormError("update category", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete clears category_id on the owner's todos, then removes the category.
func (r *GormCategoryRepository) Delete(ctx context.Context, userID, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&models.Todo{}).
			Where("category_id = ? AND user_id = ?", id, userID).
			Update("category_id", nil).Error
		if err != nil {
			return fmt.Errorf("detach todos: %w", err)
		}
		res := tx.Where("id = ? AND user_id = ?", id, userID).Delete(&models.Category{})
		if res.Error != nil {
			return fmt.Errorf("delete category: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}
