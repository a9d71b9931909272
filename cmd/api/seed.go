package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"todo-api/configs"
	"todo-api/internal/auth"
	"todo-api/internal/config"
	"todo-api/internal/models"
	"todo-api/internal/repository"
	"todo-api/internal/service"
	"todo-api/pkg/logger"
)

var demoCategories = []struct{ name, color string }{
	{"Work", "#3B82F6"},
	{"Personal", "#10B981"},
	{"Shopping", "#F59E0B"},
	{"Health", "#EF4444"},
	{"Home", "#8B5CF6"},
}

type demoTodo struct {
	title       string
	description string
	category    string
	dueIn       time.Duration
	hasDue      bool
	completed   bool
}

var demoTodos = []demoTodo{
	{title: "Finish quarterly report", category: "Work", dueIn: 72 * time.Hour, hasDue: true},
	{title: "Buy groceries", description: "Milk, eggs, bread", category: "Shopping", dueIn: 24 * time.Hour, hasDue: true},
	{title: "Book dentist appointment", category: "Health", dueIn: -48 * time.Hour, hasDue: true},
	{title: "Pay electricity bill", category: "Home", dueIn: -24 * time.Hour, hasDue: true},
	{title: "Renew gym membership", category: "Health", completed: true},
	{title: "Call mom", category: "Personal"},
}

func newSeedCmd(cfg *configs.Config) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create a demo user with sample categories and todos",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := config.OpenStore(*cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			user, err := seedDemo(ctx, store, *cfg, email, password)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Seeded demo data for %s (user id %d)\n", user.Email, user.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "demo@example.com", "email of the demo user")
	cmd.Flags().StringVar(&password, "password", "password", "password of the demo user")
	return cmd
}

// seedDemo creates the demo user when missing and adds the sample data.
// Categories are reused by name, so running it twice only adds todos.
func seedDemo(ctx context.Context, store *repository.Store, cfg configs.Config, email, password string, opts ...service.Option) (models.User, error) {
	tokens := auth.NewTokenManager([]byte(cfg.JWTSecret), cfg.TokenTTL, auth.NewMemoryRevocationStore())
	authService := service.NewAuthService(store, tokens, opts...)
	categories := service.NewCategoryService(store, opts...)
	todos := service.NewTodoService(store, opts...)

	user, err := store.Users.FindByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		session, regErr := authService.Register(ctx, service.RegisterInput{
			Name:                 "Demo User",
			Email:                email,
			Password:             password,
			PasswordConfirmation: password,
		})
		if regErr != nil {
			return models.User{}, fmt.Errorf("register demo user: %w", regErr)
		}
		user = session.User
	} else if err != nil {
		return models.User{}, err
	}

	categoryIDs := map[string]int64{}
	for _, c := range demoCategories {
		category, err := categories.FindOrCreate(ctx, user.ID, c.name, c.color)
		if err != nil {
			return models.User{}, fmt.Errorf("seed category %q: %w", c.name, err)
		}
		categoryIDs[c.name] = category.ID
	}

	now := time.Now().UTC()
	for _, d := range demoTodos {
		in := service.CreateTodoInput{Title: d.title}
		if d.description != "" {
			description := d.description
			in.Description = &description
		}
		if d.hasDue {
			due := now.Add(d.dueIn).Format(time.RFC3339)
			in.DueDate = &due
		}
		if id, ok := categoryIDs[d.category]; ok {
			in.CategoryID = &id
		}
		todo, err := todos.Create(ctx, user.ID, in)
		if err != nil {
			return models.User{}, fmt.Errorf("seed todo %q: %w", d.title, err)
		}
		if d.completed {
			if _, err := todos.Toggle(ctx, user.ID, todo.ID); err != nil {
				return models.User{}, fmt.Errorf("complete todo %q: %w", d.title, err)
			}
		}
	}

	logger.AuditLogger.Info("Demo data seeded", zap.Int64("user_id", user.ID), zap.Int("todos", len(demoTodos)))
	return user, nil
}
