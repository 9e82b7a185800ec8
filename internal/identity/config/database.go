package config

import (
	"fmt"
	"time"

	"useridentity/pkg/db/postgres"
)

// PostgresConfig содержит настройки подключения к базе данных.
type PostgresConfig struct {
	Host           string `yaml:"host" env:"IDENTITY_POSTGRES_HOST" env-default:"localhost"`
	Port           int    `yaml:"port" env:"IDENTITY_POSTGRES_PORT" env-default:"5432"`
	User           string `yaml:"user" env:"IDENTITY_POSTGRES_USER" env-default:"postgres"`
	Password       string `yaml:"password" env:"IDENTITY_POSTGRES_PASSWORD" env-default:"postgres"`
	Database       string `yaml:"database" env:"IDENTITY_POSTGRES_DB" env-default:"identity"`
	MinConn        int    `yaml:"min_conn" env:"IDENTITY_POSTGRES_MIN_CONN" env-default:"1"`
	MaxConn        int    `yaml:"max_conn" env:"IDENTITY_POSTGRES_MAX_CONN" env-default:"10"`
	MigrationsPath string `yaml:"migrations_path" env:"IDENTITY_POSTGRES_MIGRATIONS_PATH" env-default:"file://migrations/identity"`
}

// GetDSN возвращает строку подключения к PostgreSQL.
func (p *PostgresConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		p.Host, p.Port, p.User, p.Password, p.Database)
}

// GetConnectionURL возвращает URL-строку подключения для миграций.
func (p *PostgresConfig) GetConnectionURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		p.User, p.Password, p.Host, p.Port, p.Database)
}

// PoolOptions возвращает параметры пула соединений.
func (p *PostgresConfig) PoolOptions() postgres.Options {
	return postgres.Options{
		DSN:               p.GetDSN(),
		MinConns:          p.MinConn,
		MaxConns:          p.MaxConn,
		HealthCheckPeriod: time.Minute,
	}
}
