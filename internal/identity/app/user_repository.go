// Package app содержит обработчик команд и репозиторий агрегата пользователя.
package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"useridentity/internal/identity/domain/aggregate"
	"useridentity/internal/identity/domain/entities"
	"useridentity/internal/identity/ports/repositories"
	"useridentity/pkg/logger"
)

const (
	methodLoad = "Load"
	methodAdd  = "Add"

	msgHistoryEmpty   = "no events for user"
	msgErrLoadHistory = "failed to load event history"
	msgErrReplay      = "failed to replay event history"
	msgErrAppend      = "failed to append events"
	msgEventsAppended = "events appended"

	errCtxLoadingHistory = "loading history"
	errCtxReplaying      = "replaying history"
	errCtxAppending      = "appending events"
)

// UserRepository восстанавливает агрегат из истории событий и сохраняет новые события.
type UserRepository struct {
	store repositories.EventStore
}

// NewUserRepository создает репозиторий поверх хранилища событий.
func NewUserRepository(store repositories.EventStore) *UserRepository {
	return &UserRepository{store: store}
}

// Load воспроизводит историю пользователя. Для пустой истории возвращает entities.ErrUserNotFound.
func (r *UserRepository) Load(ctx context.Context, id entities.UserIdentifier) (entities.User, error) {
	log := logger.Log(ctx).With(zap.String("method", methodLoad), zap.String("user_id", id.String()))

	history, err := r.store.LoadHistory(ctx, id)
	if err != nil {
		log.Error(ctx, msgErrLoadHistory, zap.Error(err))
		return entities.User{}, fmt.Errorf("%s: %w", errCtxLoadingHistory, err)
	}
	if len(history) == 0 {
		log.Debug(ctx, msgHistoryEmpty)
		return entities.User{}, entities.ErrUserNotFound
	}

	state, err := aggregate.Replay(history)
	if err != nil {
		log.Error(ctx, msgErrReplay, zap.Error(err))
		return entities.User{}, fmt.Errorf("%s: %w", errCtxReplaying, err)
	}
	return state, nil
}

// Add добавляет несохраненные события при совпадении версии потока.
// Пустой срез ничего не меняет.
func (r *UserRepository) Add(
	ctx context.Context,
	id entities.UserIdentifier,
	expectedVersion int,
	events []entities.Event,
) (int, error) {
	if len(events) == 0 {
		return expectedVersion, nil
	}

	log := logger.Log(ctx).With(zap.String("method", methodAdd), zap.String("user_id", id.String()))

	version, err := r.store.Append(ctx, id, expectedVersion, events)
	if err != nil {
		log.Debug(ctx, msgErrAppend, zap.Int("expected_version", expectedVersion), zap.Error(err))
		return 0, fmt.Errorf("%s: %w", errCtxAppending, err)
	}

	log.Debug(ctx, msgEventsAppended, zap.Int("version", version), zap.Int("count", len(events)))
	return version, nil
}
