// Package postgres содержит адаптеры хранилища событий и проекции пользователей для PostgreSQL.
package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"useridentity/internal/identity/domain/entities"
)

const pgUniqueViolation = "23505"

type PgxPoolInterface interface {
	QueryRow(ctx context.Context, query string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, query string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, query string, args ...interface{}) (pgx.Rows, error)
	Begin(ctx context.Context) (pgx.Tx, error)
	Close()
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

// storeError классифицирует ошибку драйвера: нарушение уникальности означает
// конфликт версий, остальное - недоступность хранилища.
func storeError(message string, err error) error {
	if isUniqueViolation(err) {
		return entities.WrapError(entities.ErrCodeConflict, message, errors.Join(entities.ErrVersionConflict, err))
	}
	return entities.StoreUnavailable(message, err)
}
