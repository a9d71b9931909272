package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"todo-api/internal/models"
	"todo-api/internal/repository"
	"todo-api/pkg/database"
)

// stepClock advances by one second on every call.
type stepClock struct {
	mu  sync.Mutex
	now time.Time
}

func newStepClock() *stepClock {
	return &stepClock{now: time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC)}
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

type event struct {
	userID int64
	name   string
	data   any
}

type recordingNotifier struct {
	events []event
}

func (n *recordingNotifier) Publish(userID int64, name string, data any) {
	n.events = append(n.events, event{userID, name, data})
}

func (n *recordingNotifier) names() []string {
	out := make([]string, len(n.events))
	for i, e := range n.events {
		out[i] = e.name
	}
	return out
}

func newTestStore(t *testing.T) *repository.Store {
	t.Helper()
	db, err := database.ConnectSQLite(":memory:")
	require.NoError(t, err)
	store := repository.NewGormStore(db)
	t.Cleanup(func() { store.Close() })
	return store
}

func createUser(t *testing.T, store *repository.Store, email string) models.User {
	t.Helper()
	now := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	u := models.User{Name: email, Email: email, PasswordHash: "x", CreatedAt: now, UpdatedAt: now}
	require.NoError(t, store.Users.Create(context.Background(), &u))
	return u
}

func strPtr(s string) *string { return &s }
func int64Ptr(n int64) *int64 { return &n }
