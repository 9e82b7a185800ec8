// Package db поднимает базу данных сервиса идентичности: миграции и пул соединений.
package db

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"useridentity/internal/identity/config"
	"useridentity/pkg/db/postgres"
	"useridentity/pkg/logger"
)

// Константы для сообщений логгера.
const (
	LogDBInitializing    = "initializing identity database"
	LogDBInitialized     = "identity database initialized successfully"
	LogMigrationStarting = "starting database migrations for identity service"
)

// Константы для сообщений об ошибках.
const (
	ErrDBMigrations = "failed to apply identity database migrations"
	ErrDBConnection = "failed to connect to identity database"
	ErrGetPath      = "failed to get path"
)

const fileScheme = "file://"

// DB представляет соединение с базой данных сервиса идентичности.
type DB struct {
	database *postgres.Database
}

// New применяет миграции и открывает пул соединений.
func New(ctx context.Context, cfg *config.PostgresConfig) (*DB, error) {
	log := logger.Log(ctx)

	log.Info(ctx, LogDBInitializing,
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
		zap.String("database", cfg.Database),
		zap.Int("min_conn", cfg.MinConn),
		zap.Int("max_conn", cfg.MaxConn))

	migrationsPath, err := MigrationsSourceURL(cfg.MigrationsPath)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrDBMigrations, err)
	}

	log.Info(ctx, LogMigrationStarting, zap.String("migrations_path", migrationsPath))
	if err := postgres.MigrateDSN(ctx, cfg.GetConnectionURL(), migrationsPath); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrDBMigrations, err)
	}

	database, err := postgres.New(ctx, cfg.PoolOptions())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrDBConnection, err)
	}

	log.Info(ctx, LogDBInitialized)

	return &DB{database: database}, nil
}

// MigrationsSourceURL приводит каталог миграций к URL источника golang-migrate.
// Значения с явной схемой возвращаются без изменений, пути без схемы становятся абсолютными file://.
func MigrationsSourceURL(path string) (string, error) {
	if strings.Contains(path, "://") {
		if rel, ok := strings.CutPrefix(path, fileScheme); ok && !filepath.IsAbs(rel) {
			return absFileURL(rel)
		}
		return path, nil
	}
	return absFileURL(path)
}

func absFileURL(dir string) (string, error) {
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("%s: %w", ErrGetPath, err)
	}
	return fileScheme + absPath, nil
}

// Close закрывает соединение с базой данных.
func (db *DB) Close(ctx context.Context) {
	db.database.Close(ctx)
}

// Pool возвращает пул соединений с базой данных.
func (db *DB) Pool() *pgxpool.Pool {
	return db.database.Pool()
}

// Ping проверяет соединение с базой данных.
func (db *DB) Ping(ctx context.Context) error {
	return db.database.Ping(ctx)
}
