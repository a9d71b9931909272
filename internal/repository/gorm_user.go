package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"todo-api/internal/models"
)

// gormError maps gorm sentinels onto the repository ones.
func gormError(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

// GormUserRepository stores users through gorm, used with SQLite.
type GormUserRepository struct {
	db *gorm.DB
}

func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

func (r *GormUserRepository) Create(ctx context.Context, u *models.User) error {
	return gormError("create user", r.db.WithContext(ctx).Create(u).Error)
}

func (r *GormUserRepository) FindByID(ctx context.Context, id int64) (models.User, error) {
	var u models.User
	if err := r.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return models.User{}, gormError("find user", err)
	}
	return u, nil
}

func (r *GormUserRepository) FindByEmail(ctx context.Context, email string) (models.User, error) {
	var u models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		return models.User{}, gormError("find user", err)
	}
	return u, nil
}

// Delete removes the user's todos and categories before the user row.
func (r *GormUserRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&models.Todo{}).Error; err != nil {
			return fmt.Errorf("delete user todos: %w", err)
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.Category{}).Error; err != nil {
			return fmt.Errorf("delete user categories: %w", err)
		}
		res := tx.Delete(&models.User{}, id)
		if res.Error != nil {
			return fmt.Errorf("delete user: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}
