package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"todo-api/configs"
	v1 "todo-api/internal/api/v1"
	"todo-api/internal/config"
	"todo-api/pkg/logger"
)

func newServeCmd(cfg *configs.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server (default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), *cfg)
		},
	}
}

func runServe(ctx context.Context, cfg configs.Config) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.SystemLogger.Info("Starting application",
		zap.String("time", time.Now().Format(time.RFC3339)),
		zap.String("env", cfg.AppEnv),
		zap.String("db_driver", cfg.DBDriver),
	)
	warnInsecureSecret(cfg)

	deps, err := config.NewDependencies(ctx, cfg)
	if err != nil {
		logger.ErrorLogger.Error("Dependency setup failed", zap.Error(err))
		return err
	}
	defer deps.Close()

	app := v1.NewApp(deps)

	go func() {
		<-ctx.Done()
		logger.SystemLogger.Info("Shutting down")
		_ = app.ShutdownWithTimeout(10 * time.Second)
	}()

	addr := fmt.Sprintf(":%d", cfg.HTTPPort)
	logger.SystemLogger.Info("Application ready", zap.String("addr", addr))
	if err := app.Listen(addr); err != nil {
		logger.ErrorLogger.Error("Application failed to start", zap.Error(err))
		return err
	}
	return nil
}

func warnInsecureSecret(cfg configs.Config) {
	if cfg.InsecureJWTSecret() {
		logger.SystemLogger.Warn("JWT_SECRET not set, tokens are signed with the default secret",
			zap.String("env", cfg.AppEnv))
	}
}
