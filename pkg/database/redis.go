package database

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"todo-api/configs"
	"todo-api/pkg/logger"
)

func ConnectRedis(ctx context.Context, cfg configs.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.RedisHost, cfg.RedisPort),
		Password: cfg.RedisPassword,
		DB:       0,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		logger.ErrorLogger.Error("Redis connection error", zap.Error(err))
		client.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	return client, nil
}
