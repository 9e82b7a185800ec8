package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	identityhttp "useridentity/internal/identity/adapters/http"
	"useridentity/internal/identity/adapters/http/middleware"
	"useridentity/internal/identity/adapters/http/users"
	"useridentity/internal/identity/adapters/memory"
	"useridentity/internal/identity/adapters/services"
	"useridentity/internal/identity/app"
	"useridentity/internal/identity/domain/entities"
	"useridentity/internal/identity/ports/api"
)

const minBcryptCost = 4

func newTestApp(t *testing.T, commands api.CommandHandler) *fiber.App {
	t.Helper()

	fiberApp := fiber.New()
	identityhttp.SetupRouter(fiberApp, commands)
	return fiberApp
}

func newMemoryCommands() api.CommandHandler {
	repos := memory.NewRepositoryFactory()
	return app.NewCommandHandler(
		app.NewUserRepository(repos.EventStore()),
		repos.LookupStore(),
		services.NewServiceFactory(minBcryptCost).PasswordService(),
		app.NewUserProjector(repos.UserViewWriter()),
	)
}

func doJSON(t *testing.T, fiberApp *fiber.App, method, path string, body any) (*http.Response, map[string]any) {
	t.Helper()

	var reader io.Reader = http.NoBody
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")

	resp, err := fiberApp.Test(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	decoded := map[string]any{}
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &decoded))
	}
	return resp, decoded
}

func TestUsersRoutes(t *testing.T) {
	fiberApp := newTestApp(t, newMemoryCommands())

	t.Run("регистрация и аутентификация", func(t *testing.T) {
		resp, body := doJSON(t, fiberApp, http.MethodPost, "/api/v1/users/register", map[string]any{
			"user_id":    "user-1",
			"username":   "Alice",
			"password":   "secret",
			"email":      "Alice@Example.com",
			"first_name": "Alice",
			"last_name":  "Liddell",
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		assert.Equal(t, "user-1", body["user_id"])

		resp, body = doJSON(t, fiberApp, http.MethodPost, "/api/v1/users/authenticate", map[string]any{
			"username": "ALICE",
			"password": "secret",
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "user-1", body["id"])
		assert.Equal(t, "alice", body["username"])
		assert.Equal(t, "Alice Liddell", body["display_name"])
		assert.Equal(t, []any{entities.DefaultRole}, body["roles"])
		assert.NotContains(t, body, "password_digest")
	})

	t.Run("неверный пароль", func(t *testing.T) {
		resp, body := doJSON(t, fiberApp, http.MethodPost, "/api/v1/users/authenticate", map[string]any{
			"username": "alice",
			"password": "wrong",
		})
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, users.ErrorInvalidCredentials, body["error"])
	})

	t.Run("занятый username", func(t *testing.T) {
		resp, body := doJSON(t, fiberApp, http.MethodPost, "/api/v1/users/register", map[string]any{
			"username": "alice",
			"password": "other",
			"email":    "other@example.com",
		})
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
		assert.Equal(t, string(entities.ErrCodeDuplicate), body["code"])
		assert.Equal(t, entities.ErrUsernameTaken.Message, body["error"])
	})

	t.Run("некорректный email", func(t *testing.T) {
		resp, body := doJSON(t, fiberApp, http.MethodPost, "/api/v1/users/register", map[string]any{
			"username": "bob",
			"password": "secret",
			"email":    "not-an-email",
		})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, string(entities.ErrCodeValidation), body["code"])
	})

	t.Run("создание с ролями", func(t *testing.T) {
		resp, body := doJSON(t, fiberApp, http.MethodPost, "/api/v1/users", map[string]any{
			"username": "admin",
			"password": "secret",
			"email":    "admin@example.com",
			"roles":    []string{"ROLE_ADMIN", entities.DefaultRole},
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		assert.NotEmpty(t, body["user_id"])

		resp, body = doJSON(t, fiberApp, http.MethodPost, "/api/v1/users/authenticate", map[string]any{
			"username": "admin",
			"password": "secret",
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, []any{"ROLE_ADMIN", entities.DefaultRole}, body["roles"])
	})

	t.Run("создание без ролей", func(t *testing.T) {
		resp, body := doJSON(t, fiberApp, http.MethodPost, "/api/v1/users", map[string]any{
			"username": "noroles",
			"password": "secret",
			"email":    "noroles@example.com",
		})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, entities.ErrEmptyRoles.Message, body["error"])
	})

	t.Run("upsert внешнего пользователя сохраняет идентификатор", func(t *testing.T) {
		profile := map[string]any{
			"external_id": "fb-1",
			"email":       "ext@example.com",
			"password":    "generated",
			"first_name":  "Ext",
		}

		resp, first := doJSON(t, fiberApp, http.MethodPut, "/api/v1/users/external", profile)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		profile["first_name"] = "Renamed"
		resp, second := doJSON(t, fiberApp, http.MethodPut, "/api/v1/users/external", profile)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, first["user_id"], second["user_id"])

		resp, body := doJSON(t, fiberApp, http.MethodPost, "/api/v1/users/authenticate", map[string]any{
			"username": "ext@example.com",
			"password": "generated",
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "Renamed", body["first_name"])
	})

	t.Run("некорректный JSON", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/users/register", bytes.NewBufferString("{"))
		req.Header.Set("Content-Type", "application/json")

		resp, err := fiberApp.Test(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("неизвестный маршрут", func(t *testing.T) {
		resp, body := doJSON(t, fiberApp, http.MethodGet, "/api/v1/unknown", nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "Route not found", body["error"])
	})

	t.Run("health", func(t *testing.T) {
		resp, body := doJSON(t, fiberApp, http.MethodGet, "/health", nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "ok", body["status"])
	})
}

type mockCommandHandler struct {
	mock.Mock
}

func (m *mockCommandHandler) RegisterUser(ctx context.Context, cmd entities.RegisterUser) (entities.UserIdentifier, error) {
	args := m.Called(ctx, cmd)
	return args.Get(0).(entities.UserIdentifier), args.Error(1)
}

func (m *mockCommandHandler) CreateUser(ctx context.Context, cmd entities.CreateUser) (entities.UserIdentifier, error) {
	args := m.Called(ctx, cmd)
	return args.Get(0).(entities.UserIdentifier), args.Error(1)
}

func (m *mockCommandHandler) CreateOrUpdateExternalUser(
	ctx context.Context,
	cmd entities.CreateOrUpdateExternalUser,
) (entities.UserIdentifier, error) {
	args := m.Called(ctx, cmd)
	return args.Get(0).(entities.UserIdentifier), args.Error(1)
}

func (m *mockCommandHandler) AuthenticateUser(ctx context.Context, cmd entities.AuthenticateUser) (*entities.Principal, error) {
	args := m.Called(ctx, cmd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Principal), args.Error(1)
}

func (m *mockCommandHandler) Handle(ctx context.Context, cmd entities.Command) (any, error) {
	args := m.Called(ctx, cmd)
	return args.Get(0), args.Error(1)
}

func TestErrorMapping(t *testing.T) {
	t.Run("хранилище недоступно", func(t *testing.T) {
		commands := new(mockCommandHandler)
		commands.On("RegisterUser", mock.Anything, mock.Anything).
			Return(entities.UserIdentifier(""), entities.StoreUnavailable("checking username", errors.New("connection refused")))

		resp, body := doJSON(t, newTestApp(t, commands), http.MethodPost, "/api/v1/users/register", map[string]any{
			"username": "alice",
		})
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
		assert.Equal(t, entities.ErrStoreUnavailable.Message, body["error"])
		assert.NotContains(t, body["error"], "connection refused")
		commands.AssertExpectations(t)
	})

	t.Run("конфликт версий", func(t *testing.T) {
		commands := new(mockCommandHandler)
		commands.On("CreateOrUpdateExternalUser", mock.Anything, mock.Anything).
			Return(entities.UserIdentifier(""), entities.ErrVersionConflict)

		resp, body := doJSON(t, newTestApp(t, commands), http.MethodPut, "/api/v1/users/external", map[string]any{
			"external_id": "fb-1",
		})
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
		assert.Equal(t, string(entities.ErrCodeConflict), body["code"])
	})

	t.Run("внутренняя ошибка скрывается", func(t *testing.T) {
		commands := new(mockCommandHandler)
		commands.On("AuthenticateUser", mock.Anything, mock.Anything).
			Return(nil, errors.New("verifying password: bcrypt exploded"))

		resp, body := doJSON(t, newTestApp(t, commands), http.MethodPost, "/api/v1/users/authenticate", map[string]any{
			"username": "alice",
			"password": "secret",
		})
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		assert.Equal(t, users.ErrorFailedToServeRequest, body["error"])
	})

	t.Run("паника обработчика", func(t *testing.T) {
		commands := new(mockCommandHandler)
		commands.On("CreateUser", mock.Anything, mock.Anything).Run(func(mock.Arguments) {
			panic("boom")
		})

		resp, body := doJSON(t, newTestApp(t, commands), http.MethodPost, "/api/v1/users", map[string]any{
			"username": "alice",
		})
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		assert.Equal(t, "Internal Server Error", body["error"])
	})

	t.Run("команда передается без изменений", func(t *testing.T) {
		commands := new(mockCommandHandler)
		expected := entities.CreateUser{
			UserID:   "user-9",
			Username: "Carol",
			Password: "pw",
			Email:    "carol@example.com",
			Roles:    []string{"ROLE_ADMIN"},
		}
		commands.On("CreateUser", mock.Anything, expected).Return(entities.UserIdentifier("user-9"), nil)

		resp, body := doJSON(t, newTestApp(t, commands), http.MethodPost, "/api/v1/users", map[string]any{
			"user_id":  "user-9",
			"username": "Carol",
			"password": "pw",
			"email":    "carol@example.com",
			"roles":    []string{"ROLE_ADMIN"},
		})
		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		assert.Equal(t, "user-9", body["user_id"])
		commands.AssertExpectations(t)
	})
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		code   entities.ErrorCode
		status int
	}{
		{entities.ErrCodeValidation, http.StatusBadRequest},
		{entities.ErrCodeNotFound, http.StatusNotFound},
		{entities.ErrCodeConflict, http.StatusConflict},
		{entities.ErrCodeDuplicate, http.StatusConflict},
		{entities.ErrCodeStoreUnavailable, http.StatusServiceUnavailable},
		{entities.ErrCodeStateConsistency, http.StatusInternalServerError},
		{entities.ErrCodeInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.status, users.StatusFor(tt.code))
		})
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	fiberApp := newTestApp(t, newMemoryCommands())

	t.Run("переданный идентификатор возвращается", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/health", http.NoBody)
		req.Header.Set(middleware.HeaderRequestID, "req-123")

		resp, err := fiberApp.Test(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, "req-123", resp.Header.Get(middleware.HeaderRequestID))
	})

	t.Run("идентификатор генерируется", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/health", http.NoBody)

		resp, err := fiberApp.Test(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.NotEmpty(t, resp.Header.Get(middleware.HeaderRequestID))
	})
}
