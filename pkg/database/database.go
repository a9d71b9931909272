package database

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"todo-api/configs"
)

// PostgresDSN builds a lib/pq connection string for dbName.
func PostgresDSN(cfg configs.Config, dbName string) string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, dbName)
}

func ConnectDB(cfg configs.Config) (*sql.DB, error) {
	return OpenPostgres(PostgresDSN(cfg, cfg.DBName))
}

func OpenPostgres(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}
