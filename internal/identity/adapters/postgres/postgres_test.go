package postgres_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"useridentity/internal/identity/adapters/postgres"
	"useridentity/internal/identity/domain/entities"
	"useridentity/internal/identity/ports/repositories"
	"useridentity/pkg/logger"
)

func testContext(t *testing.T) context.Context {
	t.Helper()
	testLogger, err := logger.NewLogger(logger.Development, "debug")
	require.NoError(t, err)
	return logger.NewContext(context.Background(), testLogger)
}

func createdEvent(id entities.UserIdentifier) entities.UserCreated {
	return entities.UserCreated{UserProfile: entities.UserProfile{
		ID:             id,
		Source:         entities.SourceSite,
		Username:       "alice",
		PasswordDigest: "digest",
		Email:          "alice@x.com",
		Roles:          []string{entities.DefaultRole},
		Timestamp:      time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}}
}

func TestEventStore_Append(t *testing.T) {
	ctx := testContext(t)
	event := createdEvent("u1")

	t.Run("Успешное добавление событий", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT COALESCE").
			WithArgs("u1").
			WillReturnRows(pgxmock.NewRows([]string{"version"}).AddRow(0))
		mock.ExpectExec("INSERT INTO user_events").
			WithArgs("u1", 1, entities.EventUserCreated, pgxmock.AnyArg(), event.Timestamp).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		mock.ExpectExec("INSERT INTO user_events").
			WithArgs("u1", 2, entities.EventUserAuthenticated, pgxmock.AnyArg(), pgxmock.AnyArg()).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		mock.ExpectCommit()

		store := postgres.NewEventStore(mock)
		version, err := store.Append(ctx, "u1", 0, []entities.Event{
			event,
			entities.UserAuthenticated{ID: "u1", Timestamp: time.Now().UTC()},
		})

		require.NoError(t, err)
		assert.Equal(t, 2, version)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Несовпадение версии потока", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT COALESCE").
			WithArgs("u1").
			WillReturnRows(pgxmock.NewRows([]string{"version"}).AddRow(3))
		mock.ExpectRollback()

		store := postgres.NewEventStore(mock)
		version, err := store.Append(ctx, "u1", 1, []entities.Event{event})

		assert.ErrorIs(t, err, entities.ErrVersionConflict)
		assert.Equal(t, 3, version)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Нарушение первичного ключа - конфликт версий", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT COALESCE").
			WithArgs("u1").
			WillReturnRows(pgxmock.NewRows([]string{"version"}).AddRow(0))
		mock.ExpectExec("INSERT INTO user_events").
			WithArgs("u1", 1, entities.EventUserCreated, pgxmock.AnyArg(), pgxmock.AnyArg()).
			WillReturnError(&pgconn.PgError{Code: "23505", Message: "duplicate key value"})
		mock.ExpectRollback()

		store := postgres.NewEventStore(mock)
		_, err = store.Append(ctx, "u1", 0, []entities.Event{event})

		assert.ErrorIs(t, err, entities.ErrVersionConflict)
		assert.True(t, entities.IsDomainError(err, entities.ErrCodeConflict))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Ошибка начала транзакции", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectBegin().WillReturnError(errors.New("connection refused"))

		store := postgres.NewEventStore(mock)
		_, err = store.Append(ctx, "u1", 0, []entities.Event{event})

		assert.ErrorIs(t, err, entities.ErrStoreUnavailable)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Ошибка фиксации транзакции", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT COALESCE").
			WithArgs("u1").
			WillReturnRows(pgxmock.NewRows([]string{"version"}).AddRow(0))
		mock.ExpectExec("INSERT INTO user_events").
			WithArgs("u1", 1, entities.EventUserCreated, pgxmock.AnyArg(), pgxmock.AnyArg()).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		mock.ExpectCommit().WillReturnError(errors.New("connection reset"))

		store := postgres.NewEventStore(mock)
		_, err = store.Append(ctx, "u1", 0, []entities.Event{event})

		assert.True(t, entities.IsDomainError(err, entities.ErrCodeStoreUnavailable))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Событие другого агрегата отклоняется до обращения к БД", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		store := postgres.NewEventStore(mock)
		_, err = store.Append(ctx, "u2", 0, []entities.Event{event})

		assert.ErrorIs(t, err, entities.ErrForeignEvent)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestEventStore_LoadHistory(t *testing.T) {
	ctx := testContext(t)
	event := createdEvent("u1")
	payload, err := entities.EncodeEvent(event)
	require.NoError(t, err)

	t.Run("Успешная загрузка истории", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery("SELECT event_type, payload").
			WithArgs("u1").
			WillReturnRows(pgxmock.NewRows([]string{"event_type", "payload"}).
				AddRow(entities.EventUserCreated, payload).
				AddRow(entities.EventUserAuthenticated, []byte(`{"id":"u1","timestamp":"2026-01-02T03:05:00Z"}`)))

		store := postgres.NewEventStore(mock)
		history, err := store.LoadHistory(ctx, "u1")

		require.NoError(t, err)
		require.Len(t, history, 2)
		assert.Equal(t, event, history[0])
		assert.Equal(t, entities.UserIdentifier("u1"), history[1].AggregateID())
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Пустой поток", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery("SELECT event_type, payload").
			WithArgs("missing").
			WillReturnRows(pgxmock.NewRows([]string{"event_type", "payload"}))

		store := postgres.NewEventStore(mock)
		history, err := store.LoadHistory(ctx, "missing")

		require.NoError(t, err)
		assert.NotNil(t, history)
		assert.Empty(t, history)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Неизвестный тип события", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery("SELECT event_type, payload").
			WithArgs("u1").
			WillReturnRows(pgxmock.NewRows([]string{"event_type", "payload"}).
				AddRow("UserDeleted", []byte(`{}`)))

		store := postgres.NewEventStore(mock)
		_, err = store.LoadHistory(ctx, "u1")

		assert.ErrorIs(t, err, entities.ErrUnknownEvent)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Ошибка запроса", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery("SELECT event_type, payload").
			WithArgs("u1").
			WillReturnError(errors.New("database connection error"))

		store := postgres.NewEventStore(mock)
		history, err := store.LoadHistory(ctx, "u1")

		assert.Nil(t, history)
		assert.ErrorIs(t, err, entities.ErrStoreUnavailable)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestLookupStore(t *testing.T) {
	ctx := testContext(t)
	columns := []string{
		"id", "source", "external_id", "username", "email", "password_digest",
		"first_name", "last_name", "profile_picture_url", "gender", "roles",
		"enabled", "account_locked", "account_expired", "credentials_expired", "version",
	}

	t.Run("ExistsByUsername", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery("SELECT EXISTS").
			WithArgs("alice").
			WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

		store := postgres.NewLookupStore(mock)
		ok, err := store.ExistsByUsername(ctx, "alice")

		require.NoError(t, err)
		assert.True(t, ok)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("ExistsByEmail - ошибка БД", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery("SELECT EXISTS").
			WithArgs("alice@x.com").
			WillReturnError(errors.New("timeout"))

		store := postgres.NewLookupStore(mock)
		ok, err := store.ExistsByEmail(ctx, "alice@x.com")

		assert.False(t, ok)
		assert.True(t, entities.IsDomainError(err, entities.ErrCodeStoreUnavailable))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("FindByUsername - запись найдена", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery("FROM users_view\\s+WHERE username = \\$1").
			WithArgs("alice").
			WillReturnRows(pgxmock.NewRows(columns).AddRow(
				"u1", "site", "", "alice", "alice@x.com", "digest",
				"Alice", "Liddell", "", "", []string{entities.DefaultRole},
				true, false, false, false, 1,
			))

		store := postgres.NewLookupStore(mock)
		record, err := store.FindByUsername(ctx, "alice")

		require.NoError(t, err)
		require.NotNil(t, record)
		assert.Equal(t, entities.UserIdentifier("u1"), record.ID)
		assert.Equal(t, entities.SourceSite, record.Source)
		assert.Equal(t, "digest", record.PasswordDigest)
		assert.Equal(t, []string{entities.DefaultRole}, record.Roles)
		assert.True(t, record.Enabled)
		assert.Equal(t, 1, record.Version)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("FindByExternalID - запись не найдена", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery("FROM users_view\\s+WHERE external_id = \\$1").
			WithArgs("fb-1").
			WillReturnError(pgx.ErrNoRows)

		store := postgres.NewLookupStore(mock)
		record, err := store.FindByExternalID(ctx, "fb-1")

		require.NoError(t, err)
		assert.Nil(t, record)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUserViewWriter_Upsert(t *testing.T) {
	ctx := testContext(t)
	record := &entities.IdentityRecord{
		ID:       "u1",
		Source:   entities.SourceSite,
		Username: "alice",
		Email:    "alice@x.com",
		Roles:    []string{entities.DefaultRole},
		Enabled:  true,
		Version:  2,
	}
	args := []interface{}{
		"u1", "site", "", "alice", "alice@x.com", "",
		"", "", "", "", []string{entities.DefaultRole},
		true, false, false, false, 2,
	}

	t.Run("Успешное сохранение", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectExec("INSERT INTO users_view").
			WithArgs(args...).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		writer := postgres.NewUserViewWriter(mock)
		require.NoError(t, writer.Upsert(ctx, record))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Устаревшая версия пропускается без ошибки", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectExec("INSERT INTO users_view").
			WithArgs(args...).
			WillReturnResult(pgxmock.NewResult("INSERT", 0))

		writer := postgres.NewUserViewWriter(mock)
		require.NoError(t, writer.Upsert(ctx, record))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Занятый username", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectExec("INSERT INTO users_view").
			WithArgs(args...).
			WillReturnError(&pgconn.PgError{Code: "23505"})

		writer := postgres.NewUserViewWriter(mock)
		err = writer.Upsert(ctx, record)

		assert.True(t, entities.IsDomainError(err, entities.ErrCodeDuplicate))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Запись без идентификатора", func(t *testing.T) {
		writer := postgres.NewUserViewWriter(nil)
		assert.ErrorIs(t, writer.Upsert(ctx, &entities.IdentityRecord{}), entities.ErrEmptyUserID)
	})
}

func TestNewRepositoryFactory(t *testing.T) {
	mockPool := &pgxpool.Pool{}

	repoFactory := postgres.NewRepositoryFactory(mockPool)

	require.NotNil(t, repoFactory, "new repository factory should not be nil")
	assert.Implements(t, (*repositories.EventStore)(nil), repoFactory.EventStore())
	assert.Implements(t, (*repositories.LookupStore)(nil), repoFactory.LookupStore())
	assert.Implements(t, (*repositories.UserViewWriter)(nil), repoFactory.UserViewWriter())
}
