package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"todo-api/configs"
	"todo-api/pkg/logger"
)

func TestWarnInsecureSecret(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	previous := logger.SystemLogger
	logger.SystemLogger = zap.New(core)
	t.Cleanup(func() { logger.SystemLogger = previous })

	warnInsecureSecret(configs.Config{AppEnv: "production", JWTSecret: configs.DefaultJWTSecret})
	assert.Equal(t, 1, logs.FilterMessageSnippet("JWT_SECRET not set").Len())

	warnInsecureSecret(configs.Config{AppEnv: "test", JWTSecret: configs.DefaultJWTSecret})
	warnInsecureSecret(configs.Config{AppEnv: "production", JWTSecret: "a-long-random-value"})
	assert.Equal(t, 1, logs.Len())
}
