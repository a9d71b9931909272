package config

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"todo-api/configs"
	"todo-api/internal/auth"
	"todo-api/internal/repository"
	"todo-api/internal/service"
	"todo-api/internal/websocket"
	"todo-api/pkg/database"
	"todo-api/pkg/logger"
)

// Dependencies holds everything the HTTP layer needs.
type Dependencies struct {
	Config configs.Config
	Store  *repository.Store
	Redis  *redis.Client
	Tokens *auth.TokenManager
	Hub    *websocket.Hub

	Auth       *service.AuthService
	Todos      *service.TodoService
	Categories *service.CategoryService
}

// OpenStore connects to the configured backend. PostgreSQL tables are
// created when missing; SQLite is migrated on open.
func OpenStore(cfg configs.Config) (*repository.Store, error) {
	if !cfg.UsesPostgres() {
		db, err := database.ConnectSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		logger.SystemLogger.Info("SQLite connected", zap.String("path", cfg.SQLitePath))
		return repository.NewGormStore(db), nil
	}

	db, err := database.ConnectDB(cfg)
	if err != nil {
		return nil, err
	}
	if err := repository.CreateTableIfNotExists(db); err != nil {
		db.Close()
		return nil, err
	}
	logger.SystemLogger.Info("Database Connected", zap.String("host", cfg.DBHost), zap.String("name", cfg.DBName))
	return repository.NewPGStore(db), nil
}

// NewDependencies opens the store and, when configured, Redis.
func NewDependencies(ctx context.Context, cfg configs.Config) (*Dependencies, error) {
	store, err := OpenStore(cfg)
	if err != nil {
		return nil, err
	}

	var (
		client      *redis.Client
		revocations auth.RevocationStore = auth.NewMemoryRevocationStore()
	)
	if cfg.UsesRedis() {
		client, err = database.ConnectRedis(ctx, cfg)
		if err != nil {
			store.Close()
			return nil, err
		}
		revocations = auth.NewRedisRevocationStore(client)
	} else {
		logger.SystemLogger.Warn("REDIS_HOST not set, token revocation is kept in memory")
	}

	deps := NewDependenciesWithStore(cfg, store, revocations)
	deps.Redis = client
	return deps, nil
}

// NewDependenciesWithStore wires services around an open store.
func NewDependenciesWithStore(cfg configs.Config, store *repository.Store, revocations auth.RevocationStore, opts ...service.Option) *Dependencies {
	hub := websocket.NewHub()
	tokens := auth.NewTokenManager([]byte(cfg.JWTSecret), cfg.TokenTTL, revocations)
	opts = append([]service.Option{service.WithNotifier(hub)}, opts...)
	return &Dependencies{
		Config:     cfg,
		Store:      store,
		Tokens:     tokens,
		Hub:        hub,
		Auth:       service.NewAuthService(store, tokens, opts...),
		Todos:      service.NewTodoService(store, opts...),
		Categories: service.NewCategoryService(store, opts...),
	}
}

func (d *Dependencies) Close() error {
	var err error
	if d.Redis != nil {
		if cerr := d.Redis.Close(); cerr != nil {
			err = multierr.Append(err, fmt.Errorf("close redis: %w", cerr))
		}
	}
	if d.Store != nil && d.Store.Close != nil {
		if cerr := d.Store.Close(); cerr != nil {
			err = multierr.Append(err, fmt.Errorf("close store: %w", cerr))
		}
	}
	return err
}
