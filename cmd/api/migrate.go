package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"todo-api/configs"
	"todo-api/internal/repository"
	"todo-api/pkg/database"
	"todo-api/pkg/logger"
)

func newMigrateCmd(cfg *configs.Config) *cobra.Command {
	var drop bool
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create the users, categories and todos tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.UsesPostgres() {
				return migratePostgres(*cfg, drop)
			}
			return migrateSQLite(*cfg, drop)
		},
	}
	cmd.Flags().BoolVar(&drop, "drop", false, "drop existing tables first")
	return cmd
}

func migratePostgres(cfg configs.Config, drop bool) error {
	db, err := database.ConnectDB(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	if drop {
		if err := repository.DeleteAllTable(db); err != nil {
			return err
		}
		logger.SystemLogger.Info("Tables dropped")
	}
	if err := repository.CreateTableIfNotExists(db); err != nil {
		return err
	}
	logger.SystemLogger.Info("Migration complete", zap.String("driver", "postgres"))
	return nil
}

func migrateSQLite(cfg configs.Config, drop bool) error {
	db, err := database.ConnectSQLite(cfg.SQLitePath)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	if drop {
		if err := database.DropSQLite(db); err != nil {
			return err
		}
		if err := database.MigrateSQLite(db); err != nil {
			return err
		}
		logger.SystemLogger.Info("Tables dropped")
	}
	logger.SystemLogger.Info("Migration complete", zap.String("driver", "sqlite"), zap.String("path", cfg.SQLitePath))
	return nil
}
