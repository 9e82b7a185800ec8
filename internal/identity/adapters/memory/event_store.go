// Package memory содержит адаптеры хранилищ в памяти процесса для локального запуска и тестов.
package memory

import (
	"context"
	"slices"
	"sync"

	"go.uber.org/zap"

	"useridentity/internal/identity/domain/entities"
	"useridentity/internal/identity/ports/repositories"
	"useridentity/pkg/logger"
)

// EventStore хранит потоки событий в памяти. Проверка версии и добавление
// выполняются под одной блокировкой.
type EventStore struct {
	mu      sync.RWMutex
	streams map[entities.UserIdentifier][]entities.Event
}

// NewEventStore создает пустое хранилище событий.
func NewEventStore() repositories.EventStore {
	return &EventStore{streams: make(map[entities.UserIdentifier][]entities.Event)}
}

// Append добавляет события, если текущая версия потока равна expectedVersion.
func (s *EventStore) Append(
	ctx context.Context,
	id entities.UserIdentifier,
	expectedVersion int,
	events []entities.Event,
) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, entities.StoreUnavailable("appending events", err)
	}
	for _, event := range events {
		if event == nil || event.AggregateID() != id {
			return 0, entities.ErrForeignEvent
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current := len(s.streams[id])
	if current != expectedVersion {
		logger.Log(ctx).Debug(ctx, "version conflict",
			zap.String("store", "memory"),
			zap.String("user_id", id.String()),
			zap.Int("expected_version", expectedVersion),
			zap.Int("actual_version", current))
		return current, entities.ErrVersionConflict
	}

	s.streams[id] = append(s.streams[id], events...)
	return current + len(events), nil
}

// LoadHistory возвращает копию потока событий.
func (s *EventStore) LoadHistory(ctx context.Context, id entities.UserIdentifier) ([]entities.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, entities.StoreUnavailable("loading history", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	history := slices.Clone(s.streams[id])
	if history == nil {
		history = []entities.Event{}
	}
	return history, nil
}
