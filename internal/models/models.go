package models

import (
	"time"
)

type User struct {
	ID           int64     `json:"id" gorm:"primaryKey"`
	Name         string    `json:"name" gorm:"size:255;not null"`
	Email        string    `json:"email" gorm:"size:255;not null;uniqueIndex"`
	PasswordHash string    `json:"-" gorm:"column:password;size:255;not null"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type Category struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	UserID    int64     `json:"user_id" gorm:"not null;index;uniqueIndex:idx_categories_user_name,priority:1"`
	Name      string    `json:"name" gorm:"size:255;not null;uniqueIndex:idx_categories_user_name,priority:2"`
	Color     string    `json:"color" gorm:"size:7;not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	User *User `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// Todo is always returned with its Category attached, or nil when it has none.
type Todo struct {
	ID          int64      `json:"id" gorm:"primaryKey"`
	Title       string     `json:"title" gorm:"size:255;not null"`
	Description *string    `json:"description"`
	DueDate     *time.Time `json:"due_date" gorm:"index"`
	IsCompleted bool       `json:"is_completed" gorm:"not null;default:false;index"`
	CompletedAt *time.Time `json:"completed_at"`
	UserID      int64      `json:"user_id" gorm:"not null;index"`
	CategoryID  *int64     `json:"category_id" gorm:"index"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	Category *Category `json:"category" gorm:"foreignKey:CategoryID;constraint:OnDelete:SET NULL"`
	User     *User     `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// IsOverdue reports whether t is incomplete and its due date is before now.
func (t Todo) IsOverdue(now time.Time) bool {
	return !t.IsCompleted && t.DueDate != nil && t.DueDate.Before(now)
}

// TodoPatch carries the fields of a partial update. Unset fields are left
// untouched; CompletedAt is derived from IsCompleted by the service.
type TodoPatch struct {
	Title       Optional[string]
	Description Optional[string]
	DueDate     Optional[time.Time]
	CategoryID  Optional[int64]
	IsCompleted Optional[bool]
	CompletedAt Optional[time.Time]
}

// Empty reports whether no field is set.
func (p TodoPatch) Empty() bool {
	return !p.Title.Set && !p.Description.Set && !p.DueDate.Set &&
		!p.CategoryID.Set && !p.IsCompleted.Set && !p.CompletedAt.Set
}

type CategoryPatch struct {
	Name  Optional[string]
	Color Optional[string]
}
