package service

import (
	"time"
)

// Notifier receives change events after a successful mutation.
type Notifier interface {
	Publish(userID int64, event string, data any)
}

type nopNotifier struct{}

func (nopNotifier) Publish(int64, string, any) {}

// Event names published to Notifier.
const (
	EventTodoCreated     = "todo.created"
	EventTodoUpdated     = "todo.updated"
	EventTodoDeleted     = "todo.deleted"
	EventCategoryCreated = "category.created"
	EventCategoryUpdated = "category.updated"
	EventCategoryDeleted = "category.deleted"
)

type options struct {
	now        func() time.Time
	notifier   Notifier
	bcryptCost int
}

type Option func(*options)

// WithClock replaces the wall clock. Returned times are stored as given.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func WithNotifier(n Notifier) Option {
	return func(o *options) {
		if n != nil {
			o.notifier = n
		}
	}
}

// WithBcryptCost sets the password hashing cost for AuthService.
func WithBcryptCost(cost int) Option {
	return func(o *options) { o.bcryptCost = cost }
}

func newOptions(opts []Option) options {
	o := options{
		now: func() time.Time {
			// Microseconds are the finest precision PostgreSQL keeps.
			return time.Now().UTC().Truncate(time.Microsecond)
		},
		notifier: nopNotifier{},
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
