package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"todo-api/internal/models"
	"todo-api/internal/repository"
	"todo-api/pkg/logger"
)

type CreateTodoInput struct {
	Title       string  `json:"title" validate:"required,max=255"`
	Description *string `json:"description"`
	DueDate     *string `json:"due_date"`
	CategoryID  *int64  `json:"category_id"`
}

// UpdateTodoInput tells an absent field apart from an explicit null.
// completed_at is not accepted; it follows is_completed.
type UpdateTodoInput struct {
	Title       models.Optional[string] `json:"title"`
	Description models.Optional[string] `json:"description"`
	DueDate     models.Optional[string] `json:"due_date"`
	CategoryID  models.Optional[int64]  `json:"category_id"`
	IsCompleted models.Optional[bool]   `json:"is_completed"`
}

type TodoService struct {
	todos      repository.TodoRepository
	categories repository.CategoryRepository
	opts       options
}

func NewTodoService(store *repository.Store, opts ...Option) *TodoService {
	return &TodoService{
		todos:      store.Todos,
		categories: store.Categories,
		opts:       newOptions(opts),
	}
}

func (s *TodoService) Create(ctx context.Context, ownerID int64, in CreateTodoInput) (models.Todo, error) {
	verr := &ValidationError{}
	in.Title = strings.TrimSpace(in.Title)
	if err := validateStruct(verr, in); err != nil {
		return models.Todo{}, err
	}
	dueDate := parseDueDate(verr, in.DueDate)
	if err := verr.errOrNil(); err != nil {
		return models.Todo{}, err
	}
	if in.CategoryID != nil {
		if err := s.requireOwnCategory(ctx, ownerID, *in.CategoryID); err != nil {
			return models.Todo{}, err
		}
	}

	now := s.opts.now()
	todo := models.Todo{
		UserID:      ownerID,
		Title:       in.Title,
		Description: trimmed(in.Description),
		DueDate:     dueDate,
		CategoryID:  in.CategoryID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.todos.Create(ctx, &todo); err != nil {
		return models.Todo{}, err
	}
	created, err := s.todos.FindByID(ctx, todo.ID)
	if err != nil {
		return models.Todo{}, err
	}

	logger.AuditLogger.Info("Todo created", zap.Int64("user_id", ownerID), zap.Int64("todo_id", created.ID))
	s.opts.notifier.Publish(ownerID, EventTodoCreated, created)
	return created, nil
}

// Get returns the todo when requesterID owns it.
func (s *TodoService) Get(ctx context.Context, requesterID, id int64) (models.Todo, error) {
	todo, err := s.todos.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return models.Todo{}, &NotFoundError{Resource: "Todo"}
	}
	if err != nil {
		return models.Todo{}, err
	}
	if todo.UserID != requesterID {
		logger.SecurityLogger.Warn("Forbidden todo access",
			zap.Int64("user_id", requesterID), zap.Int64("todo_id", id), zap.Int64("owner_id", todo.UserID))
		return models.Todo{}, ErrForbidden
	}
	return todo, nil
}

func (s *TodoService) List(ctx context.Context, ownerID int64, f models.TodoFilter) ([]models.Todo, error) {
	verr := &ValidationError{}
	if f.SortBy != "" && !models.SortableColumns[f.SortBy] {
		verr.Add("sort_by", "The selected sort by is invalid.")
	}
	switch strings.ToLower(f.SortOrder) {
	case "", models.SortAsc, models.SortDesc:
	default:
		verr.Add("sort_order", "The selected sort order is invalid.")
	}
	if err := verr.errOrNil(); err != nil {
		return nil, err
	}
	return s.todos.List(ctx, ownerID, f, s.opts.now())
}

func (s *TodoService) Update(ctx context.Context, requesterID, id int64, in UpdateTodoInput) (models.Todo, error) {
	current, err := s.Get(ctx, requesterID, id)
	if err != nil {
		return models.Todo{}, err
	}

	patch, err := s.buildPatch(in)
	if err != nil {
		return models.Todo{}, err
	}
	if patch.CategoryID.Set && !patch.CategoryID.Null {
		if err := s.requireOwnCategory(ctx, requesterID, patch.CategoryID.Value); err != nil {
			return models.Todo{}, err
		}
	}
	if patch.Empty() {
		return current, nil
	}

	now := s.opts.now()
	if patch.IsCompleted.Set {
		if patch.IsCompleted.Value {
			patch.CompletedAt = models.Some(now)
		} else {
			patch.CompletedAt = models.Null[time.Time]()
		}
	}
	if err := s.todos.Update(ctx, requesterID, id, patch, now); err != nil {
		return models.Todo{}, s.mapMissing(err)
	}
	updated, err := s.todos.FindByID(ctx, id)
	if err != nil {
		return models.Todo{}, s.mapMissing(err)
	}

	logger.AuditLogger.Info("Todo updated", zap.Int64("user_id", requesterID), zap.Int64("todo_id", id))
	s.opts.notifier.Publish(requesterID, EventTodoUpdated, updated)
	return updated, nil
}

func (s *TodoService) buildPatch(in UpdateTodoInput) (models.TodoPatch, error) {
	verr := &ValidationError{}
	var patch models.TodoPatch

	if in.Title.Set {
		title := strings.TrimSpace(in.Title.Value)
		if err := validateVar(verr, "title", title, "required,max=255"); err != nil {
			return patch, err
		}
		patch.Title = models.Some(title)
	}
	if in.Description.Set {
		if d := trimmed(in.Description.Ptr()); d != nil {
			patch.Description = models.Some(*d)
		} else {
			patch.Description = models.Null[string]()
		}
	}
	if in.DueDate.Set {
		if d := parseDueDate(verr, in.DueDate.Ptr()); d != nil {
			patch.DueDate = models.Some(*d)
		} else {
			patch.DueDate = models.Null[time.Time]()
		}
	}
	if in.CategoryID.Set {
		patch.CategoryID = in.CategoryID
	}
	if in.IsCompleted.Set {
		if in.IsCompleted.Null {
			verr.Add("is_completed", "The is completed field must be true or false.")
		} else {
			patch.IsCompleted = in.IsCompleted
		}
	}
	return patch, verr.errOrNil()
}

func (s *TodoService) Delete(ctx context.Context, requesterID, id int64) error {
	if _, err := s.Get(ctx, requesterID, id); err != nil {
		return err
	}
	if err := s.todos.Delete(ctx, requesterID, id); err != nil {
		return s.mapMissing(err)
	}
	logger.AuditLogger.Info("Todo deleted", zap.Int64("user_id", requesterID), zap.Int64("todo_id", id))
	s.opts.notifier.Publish(requesterID, EventTodoDeleted, map[string]int64{"id": id})
	return nil
}

// Toggle flips completion in a single statement and returns the result.
func (s *TodoService) Toggle(ctx context.Context, requesterID, id int64) (models.Todo, error) {
	if _, err := s.Get(ctx, requesterID, id); err != nil {
		return models.Todo{}, err
	}
	if err := s.todos.Toggle(ctx, requesterID, id, s.opts.now()); err != nil {
		return models.Todo{}, s.mapMissing(err)
	}
	toggled, err := s.todos.FindByID(ctx, id)
	if err != nil {
		return models.Todo{}, s.mapMissing(err)
	}
	logger.AuditLogger.Info("Todo toggled",
		zap.Int64("user_id", requesterID), zap.Int64("todo_id", id), zap.Bool("is_completed", toggled.IsCompleted))
	s.opts.notifier.Publish(requesterID, EventTodoUpdated, toggled)
	return toggled, nil
}

// requireOwnCategory hides other users' categories behind a not-found.
func (s *TodoService) requireOwnCategory(ctx context.Context, ownerID, categoryID int64) error {
	category, err := s.categories.FindByID(ctx, categoryID)
	if errors.Is(err, repository.ErrNotFound) || (err == nil && category.UserID != ownerID) {
		return &NotFoundError{Resource: "Category"}
	}
	return err
}

// mapMissing covers a row deleted between the ownership check and the write.
func (s *TodoService) mapMissing(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return &NotFoundError{Resource: "Todo"}
	}
	return err
}

func parseDueDate(verr *ValidationError, raw *string) *time.Time {
	v := trimmed(raw)
	if v == nil {
		return nil
	}
	t, err := models.ParseDate(*v)
	if err != nil {
		verr.Add("due_date", "The due date field must be a valid date.")
		return nil
	}
	return &t
}
