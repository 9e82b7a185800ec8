package repositories

import (
	"context"

	"useridentity/internal/identity/domain/entities"
)

// LookupStore - проекция пользователей для проверок уникальности и маршрутизации команд.
// Методы Find* возвращают nil, nil, если запись не найдена.
type LookupStore interface {
	ExistsByUsername(ctx context.Context, username string) (bool, error)

	ExistsByEmail(ctx context.Context, email string) (bool, error)

	FindByUsername(ctx context.Context, username string) (*entities.IdentityRecord, error)

	FindByExternalID(ctx context.Context, externalID string) (*entities.IdentityRecord, error)
}

// UserViewWriter обновляет проекцию пользователей по событиям.
type UserViewWriter interface {
	// Upsert сохраняет запись, если ее версия новее сохраненной.
	Upsert(ctx context.Context, record *entities.IdentityRecord) error
}
