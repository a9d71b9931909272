package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	sqlite3 "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"todo-api/internal/models"
	"todo-api/pkg/logger"
)

// sqliteDriver is go-sqlite3 with unicode_lower registered on every
// connection. SQLite's LOWER only folds ASCII.
const sqliteDriver = "sqlite3_todo"

func init() {
	sql.Register(sqliteDriver, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			return conn.RegisterFunc("unicode_lower", strings.ToLower, true)
		},
	})
}

// gormWriter routes gorm's slow-query and error output to the system logger.
type gormWriter struct{}

func (gormWriter) Printf(format string, args ...interface{}) {
	logger.SystemLogger.Warn("gorm", zap.String("detail", fmt.Sprintf(format, args...)))
}

// ConnectSQLite opens the SQLite file at path (or ":memory:") with foreign
// keys enabled and migrates the schema.
func ConnectSQLite(path string) (*gorm.DB, error) {
	if path == "" {
		path = "data/todo.db"
	}
	if err := ensureDirForSQLite(path); err != nil {
		return nil, err
	}

	dsn := path
	if strings.Contains(dsn, "?") {
		dsn += "&_foreign_keys=1"
	} else {
		dsn += "?_foreign_keys=1"
	}

	db, err := gorm.Open(sqlite.New(sqlite.Config{DriverName: sqliteDriver, DSN: dsn}), &gorm.Config{
		Logger: gormlogger.New(gormWriter{}, gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		}),
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// One connection keeps an in-memory database alive and serializes writers.
	sqlDB.SetMaxOpenConns(1)

	if err := MigrateSQLite(db); err != nil {
		sqlDB.Close()
		return nil, err
	}
	return db, nil
}

func MigrateSQLite(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.User{}, &models.Category{}, &models.Todo{}); err != nil {
		return fmt.Errorf("migrate sqlite: %w", err)
	}
	return nil
}

func DropSQLite(db *gorm.DB) error {
	if err := db.Migrator().DropTable(&models.Todo{}, &models.Category{}, &models.User{}); err != nil {
		return fmt.Errorf("drop sqlite tables: %w", err)
	}
	return nil
}

// ensureDirForSQLite creates the parent directory of a file DSN.
func ensureDirForSQLite(dsn string) error {
	if strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory") {
		return nil
	}
	clean := strings.TrimPrefix(dsn, "file:")
	clean = strings.Split(clean, "?")[0]
	dir := filepath.Dir(clean)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create db dir %q: %w", dir, err)
	}
	return nil
}
