package models

import (
	"sort"
	"strings"
	"time"
)

const (
	StatusCompleted  = "completed"
	StatusIncomplete = "incomplete"
	StatusOverdue    = "overdue"

	SortAsc  = "asc"
	SortDesc = "desc"

	DefaultSortBy    = "created_at"
	DefaultSortOrder = SortDesc
)

// SortableColumns is the allow-list for sort_by.
var SortableColumns = map[string]bool{
	"id":           true,
	"title":        true,
	"due_date":     true,
	"is_completed": true,
	"completed_at": true,
	"created_at":   true,
	"updated_at":   true,
}

// TodoFilter holds the list criteria for one owner's todos. The zero value
// matches everything and sorts newest first.
type TodoFilter struct {
	Search     string
	CategoryID *int64
	Status     string
	SortBy     string
	SortOrder  string
}

// Normalized fills in sort defaults and drops unknown statuses.
func (f TodoFilter) Normalized() TodoFilter {
	f.Search = strings.TrimSpace(f.Search)
	switch f.Status {
	case StatusCompleted, StatusIncomplete, StatusOverdue:
	default:
		f.Status = ""
	}
	if f.SortBy == "" {
		f.SortBy = DefaultSortBy
	}
	f.SortOrder = strings.ToLower(f.SortOrder)
	if f.SortOrder == "" {
		f.SortOrder = DefaultSortOrder
	}
	return f
}

// MatchSearch reports whether t's title or description contains q, ignoring case.
func MatchSearch(t Todo, q string) bool {
	if q == "" {
		return true
	}
	q = strings.ToLower(q)
	if strings.Contains(strings.ToLower(t.Title), q) {
		return true
	}
	return t.Description != nil && strings.Contains(strings.ToLower(*t.Description), q)
}

func MatchCategory(t Todo, categoryID *int64) bool {
	if categoryID == nil {
		return true
	}
	return t.CategoryID != nil && *t.CategoryID == *categoryID
}

func MatchStatus(t Todo, status string, now time.Time) bool {
	switch status {
	case StatusCompleted:
		return t.IsCompleted
	case StatusIncomplete:
		return !t.IsCompleted
	case StatusOverdue:
		return t.IsOverdue(now)
	default:
		return true
	}
}

// Match is the conjunction of all predicates in f.
func (f TodoFilter) Match(t Todo, now time.Time) bool {
	return MatchSearch(t, f.Search) &&
		MatchCategory(t, f.CategoryID) &&
		MatchStatus(t, f.Status, now)
}

// Apply filters and sorts todos in memory with the same semantics the
// repositories implement in SQL. Null values sort first ascending.
func (f TodoFilter) Apply(todos []Todo, now time.Time) []Todo {
	f = f.Normalized()
	out := make([]Todo, 0, len(todos))
	for _, t := range todos {
		if f.Match(t, now) {
			out = append(out, t)
		}
	}
	desc := f.SortOrder != SortAsc
	sort.SliceStable(out, func(i, j int) bool {
		c := compareColumn(out[i], out[j], f.SortBy)
		if c == 0 {
			c = compareInt(out[i].ID, out[j].ID)
		}
		if desc {
			return c > 0
		}
		return c < 0
	})
	return out
}

func compareColumn(a, b Todo, column string) int {
	switch column {
	case "id":
		return compareInt(a.ID, b.ID)
	case "title":
		return strings.Compare(a.Title, b.Title)
	case "due_date":
		return compareTimePtr(a.DueDate, b.DueDate)
	case "is_completed":
		return compareBool(a.IsCompleted, b.IsCompleted)
	case "completed_at":
		return compareTimePtr(a.CompletedAt, b.CompletedAt)
	case "updated_at":
		return a.UpdatedAt.Compare(b.UpdatedAt)
	default:
		return a.CreatedAt.Compare(b.CreatedAt)
	}
}

func compareInt(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func compareBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	}
	return 1
}

func compareTimePtr(a, b *time.Time) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	return a.Compare(*b)
}
