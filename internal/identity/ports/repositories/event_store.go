package repositories

import (
	"context"

	"useridentity/internal/identity/domain/entities"
)

// EventStore - журнал событий с партициями по идентификатору пользователя.
type EventStore interface {
	// Append атомарно добавляет события, если текущая версия потока равна expectedVersion.
	// Возвращает новую версию потока либо entities.ErrVersionConflict.
	Append(ctx context.Context, id entities.UserIdentifier, expectedVersion int, events []entities.Event) (int, error)

	// LoadHistory возвращает события потока в порядке добавления. Пустой срез для неизвестного потока.
	LoadHistory(ctx context.Context, id entities.UserIdentifier) ([]entities.Event, error)
}
