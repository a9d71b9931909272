package main

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"todo-api/configs"
	"todo-api/internal/models"
	"todo-api/internal/repository"
	"todo-api/internal/service"
	"todo-api/pkg/database"
)

func TestSeedDemo(t *testing.T) {
	db, err := database.ConnectSQLite(":memory:")
	require.NoError(t, err)
	store := repository.NewGormStore(db)
	t.Cleanup(func() { store.Close() })

	ctx := context.Background()
	cfg := configs.Config{JWTSecret: "secret", TokenTTL: time.Hour}
	cost := service.WithBcryptCost(bcrypt.MinCost)

	user, err := seedDemo(ctx, store, cfg, "demo@example.com", "password", cost)
	require.NoError(t, err)

	categories, err := store.Categories.ListByUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, categories, len(demoCategories))

	all, err := store.Todos.List(ctx, user.ID, models.TodoFilter{}, time.Now().UTC())
	require.NoError(t, err)
	assert.Len(t, all, len(demoTodos))
	for _, todo := range all {
		assert.Equal(t, todo.IsCompleted, todo.CompletedAt != nil, todo.Title)
		assert.NotNil(t, todo.Category, todo.Title)
	}

	overdue, err := store.Todos.List(ctx, user.ID, models.TodoFilter{Status: models.StatusOverdue}, time.Now().UTC())
	require.NoError(t, err)
	assert.Len(t, overdue, 2)

	again, err := seedDemo(ctx, store, cfg, "demo@example.com", "password", cost)
	require.NoError(t, err)
	assert.Equal(t, user.ID, again.ID)
	categories, err = store.Categories.ListByUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, categories, len(demoCategories), "categories are reused")
}

func TestRootCommandHasSubcommands(t *testing.T) {
	root := newRootCmd()
	for _, name := range []string{"serve", "migrate", "seed"} {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err)
		assert.Equal(t, name, cmd.Name())
	}
	migrate, _, _ := root.Find([]string{"migrate"})
	assert.NotNil(t, migrate.Flags().Lookup("drop"))
}
