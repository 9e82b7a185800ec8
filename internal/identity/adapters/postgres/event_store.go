package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"useridentity/internal/identity/domain/entities"
	"useridentity/internal/identity/ports/repositories"
	"useridentity/pkg/logger"
)

const (
	errCtxBeginTx        = "error starting append transaction"
	errCtxCurrentVersion = "error reading stream version"
	errCtxInsertEvent    = "error inserting event"
	errCtxCommitTx       = "error committing append transaction"
	errCtxQueryHistory   = "error querying event history"
	errCtxScanEvent      = "error scanning event row"
	errCtxDecodeEvent    = "error decoding stored event"
)

// EventStore реализует repositories.EventStore поверх таблицы user_events.
// Первичный ключ (aggregate_id, version) отсекает параллельные добавления,
// прошедшие проверку версии.
type EventStore struct {
	pool PgxPoolInterface
}

// NewEventStore создает новый экземпляр хранилища событий.
func NewEventStore(pool PgxPoolInterface) repositories.EventStore {
	return &EventStore{pool: pool}
}

// Append добавляет события в одной транзакции при совпадении версии потока.
func (s *EventStore) Append(
	ctx context.Context,
	id entities.UserIdentifier,
	expectedVersion int,
	events []entities.Event,
) (int, error) {
	log := logger.Log(ctx).With(zap.String("repository", "event_store"), zap.String("method", "Append"),
		zap.String("user_id", id.String()))

	payloads := make([][]byte, len(events))
	for i, event := range events {
		if event == nil || event.AggregateID() != id {
			return 0, entities.ErrForeignEvent
		}
		payload, err := entities.EncodeEvent(event)
		if err != nil {
			return 0, err
		}
		payloads[i] = payload
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		log.Error(ctx, errCtxBeginTx, zap.Error(err))
		return 0, entities.StoreUnavailable(errCtxBeginTx, err)
	}

	var current int
	err = tx.QueryRow(ctx, `
        SELECT COALESCE(MAX(version), 0)
        FROM user_events
        WHERE aggregate_id = $1
    `, id.String()).Scan(&current)
	if err != nil {
		rollback(ctx, tx, log)
		log.Error(ctx, errCtxCurrentVersion, zap.Error(err))
		return 0, entities.StoreUnavailable(errCtxCurrentVersion, err)
	}

	if current != expectedVersion {
		rollback(ctx, tx, log)
		log.Debug(ctx, "version conflict",
			zap.Int("expected_version", expectedVersion), zap.Int("actual_version", current))
		return current, entities.ErrVersionConflict
	}

	for i, event := range events {
		_, err = tx.Exec(ctx, `
            INSERT INTO user_events (aggregate_id, version, event_type, payload, occurred_at)
            VALUES ($1, $2, $3, $4, $5)
        `, id.String(), expectedVersion+i+1, event.EventType(), payloads[i], event.OccurredAt())
		if err != nil {
			rollback(ctx, tx, log)
			log.Error(ctx, errCtxInsertEvent, zap.Error(err))
			return 0, storeError(errCtxInsertEvent, err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		log.Error(ctx, errCtxCommitTx, zap.Error(err))
		return 0, storeError(errCtxCommitTx, err)
	}

	return expectedVersion + len(events), nil
}

// LoadHistory возвращает события потока в порядке версий.
func (s *EventStore) LoadHistory(ctx context.Context, id entities.UserIdentifier) ([]entities.Event, error) {
	log := logger.Log(ctx).With(zap.String("repository", "event_store"), zap.String("method", "LoadHistory"),
		zap.String("user_id", id.String()))

	rows, err := s.pool.Query(ctx, `
        SELECT event_type, payload
        FROM user_events
        WHERE aggregate_id = $1
        ORDER BY version
    `, id.String())
	if err != nil {
		log.Error(ctx, errCtxQueryHistory, zap.Error(err))
		return nil, entities.StoreUnavailable(errCtxQueryHistory, err)
	}
	defer rows.Close()

	history := []entities.Event{}
	for rows.Next() {
		var (
			eventType string
			payload   []byte
		)
		if err := rows.Scan(&eventType, &payload); err != nil {
			log.Error(ctx, errCtxScanEvent, zap.Error(err))
			return nil, entities.StoreUnavailable(errCtxScanEvent, err)
		}

		event, err := entities.DecodeEvent(eventType, payload)
		if err != nil {
			log.Error(ctx, errCtxDecodeEvent, zap.String("event_type", eventType), zap.Error(err))
			return nil, fmt.Errorf("%s: %w", errCtxDecodeEvent, err)
		}
		history = append(history, event)
	}

	if err := rows.Err(); err != nil {
		log.Error(ctx, errCtxQueryHistory, zap.Error(err))
		return nil, entities.StoreUnavailable(errCtxQueryHistory, err)
	}

	return history, nil
}

func rollback(ctx context.Context, tx pgx.Tx, log *logger.Logger) {
	if err := tx.Rollback(ctx); err != nil {
		log.Warn(ctx, "error rolling back append transaction", zap.Error(err))
	}
}
