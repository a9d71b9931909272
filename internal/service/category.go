package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"todo-api/internal/models"
	"todo-api/internal/repository"
	"todo-api/pkg/logger"
)

// DefaultCategoryColor is used when a category is created without a color.
const DefaultCategoryColor = "#6B7280"

type CreateCategoryInput struct {
	Name  string  `json:"name" validate:"required,max=255"`
	Color *string `json:"color" validate:"omitempty,rgbhex"`
}

type UpdateCategoryInput struct {
	Name  models.Optional[string] `json:"name"`
	Color models.Optional[string] `json:"color"`
}

type CategoryService struct {
	categories repository.CategoryRepository
	opts       options
}

func NewCategoryService(store *repository.Store, opts ...Option) *CategoryService {
	return &CategoryService{categories: store.Categories, opts: newOptions(opts)}
}

func (s *CategoryService) Create(ctx context.Context, ownerID int64, in CreateCategoryInput) (models.Category, error) {
	verr := &ValidationError{}
	in.Name = strings.TrimSpace(in.Name)
	in.Color = trimmed(in.Color)
	if err := validateStruct(verr, in); err != nil {
		return models.Category{}, err
	}
	if err := verr.errOrNil(); err != nil {
		return models.Category{}, err
	}

	now := s.opts.now()
	category := models.Category{
		UserID:    ownerID,
		Name:      in.Name,
		Color:     DefaultCategoryColor,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if in.Color != nil {
		category.Color = strings.ToUpper(*in.Color)
	}
	if err := s.categories.Create(ctx, &category); err != nil {
		return models.Category{}, duplicateName(err)
	}

	logger.AuditLogger.Info("Category created", zap.Int64("user_id", ownerID), zap.Int64("category_id", category.ID))
	s.opts.notifier.Publish(ownerID, EventCategoryCreated, category)
	return category, nil
}

func (s *CategoryService) List(ctx context.Context, ownerID int64) ([]models.Category, error) {
	return s.categories.ListByUser(ctx, ownerID)
}

func (s *CategoryService) Get(ctx context.Context, requesterID, id int64) (models.Category, error) {
	category, err := s.categories.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return models.Category{}, &NotFoundError{Resource: "Category"}
	}
	if err != nil {
		return models.Category{}, err
	}
	if category.UserID != requesterID {
		logger.SecurityLogger.Warn("Forbidden category access",
			zap.Int64("user_id", requesterID), zap.Int64("category_id", id), zap.Int64("owner_id", category.UserID))
		return models.Category{}, ErrForbidden
	}
	return category, nil
}

func (s *CategoryService) Update(ctx context.Context, requesterID, id int64, in UpdateCategoryInput) (models.Category, error) {
	category, err := s.Get(ctx, requesterID, id)
	if err != nil {
		return models.Category{}, err
	}

	verr := &ValidationError{}
	if in.Name.Set {
		name := strings.TrimSpace(in.Name.Value)
		if err := validateVar(verr, "name", name, "required,max=255"); err != nil {
			return models.Category{}, err
		}
		category.Name = name
	}
	if in.Color.Set {
		// null resets to the default color.
		color := DefaultCategoryColor
		if c := trimmed(in.Color.Ptr()); c != nil {
			if err := validateVar(verr, "color", *c, "rgbhex"); err != nil {
				return models.Category{}, err
			}
			color = strings.ToUpper(*c)
		}
		category.Color = color
	}
	if err := verr.errOrNil(); err != nil {
		return models.Category{}, err
	}
	if !in.Name.Set && !in.Color.Set {
		return category, nil
	}

	category.UpdatedAt = s.opts.now()
	if err := s.categories.Update(ctx, &category); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return models.Category{}, &NotFoundError{Resource: "Category"}
		}
		return models.Category{}, duplicateName(err)
	}

	logger.AuditLogger.Info("Category updated", zap.Int64("user_id", requesterID), zap.Int64("category_id", id))
	s.opts.notifier.Publish(requesterID, EventCategoryUpdated, category)
	return category, nil
}

// Delete removes the category; its todos stay and lose the reference.
func (s *CategoryService) Delete(ctx context.Context, requesterID, id int64) error {
	if _, err := s.Get(ctx, requesterID, id); err != nil {
		return err
	}
	if err := s.categories.Delete(ctx, requesterID, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return &NotFoundError{Resource: "Category"}
		}
		return err
	}
	logger.AuditLogger.Info("Category deleted", zap.Int64("user_id", requesterID), zap.Int64("category_id", id))
	s.opts.notifier.Publish(requesterID, EventCategoryDeleted, map[string]int64{"id": id})
	return nil
}

// FindOrCreate returns the owner's category with name, creating it with
// color when missing.
func (s *CategoryService) FindOrCreate(ctx context.Context, ownerID int64, name, color string) (models.Category, error) {
	existing, err := s.categories.FindByName(ctx, ownerID, name)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return models.Category{}, err
	}
	return s.Create(ctx, ownerID, CreateCategoryInput{Name: name, Color: &color})
}

func duplicateName(err error) error {
	if errors.Is(err, repository.ErrDuplicate) {
		verr := &ValidationError{}
		verr.Add("name", "The name has already been taken.")
		return verr
	}
	return err
}
