// Package users содержит HTTP обработчики команд сервиса идентичности.
package users

import (
	"fmt"
	"net/http"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"useridentity/internal/identity/adapters/http/dto"
	"useridentity/internal/identity/ports/api"
	"useridentity/pkg/logger"
)

// Константы для логирования.
const (
	LogHandlerRegister     = "users handler: register"
	LogHandlerCreate       = "users handler: create"
	LogHandlerUpsert       = "users handler: upsert external"
	LogHandlerAuthenticate = "users handler: authenticate"

	ErrorInvalidRequest       = "invalid request"
	ErrorInvalidCredentials   = "invalid credentials" // #nosec G101 - not a credential
	ErrorFailedToServeRequest = "failed to serve request"
)

// Handler содержит HTTP обработчики команд пользователя.
type Handler struct {
	commands api.CommandHandler
}

// NewHandler создает новый экземпляр обработчика.
func NewHandler(commands api.CommandHandler) *Handler {
	return &Handler{commands: commands}
}

// Register обрабатывает самостоятельную регистрацию.
func (h *Handler) Register(ctx fiber.Ctx) error {
	requestCtx := ctx.Context()
	log := logger.Log(requestCtx)
	log.Info(requestCtx, LogHandlerRegister)

	var req dto.RegisterRequest
	if err := ctx.Bind().JSON(&req); err != nil {
		log.Warn(requestCtx, ErrorInvalidRequest, zap.Error(err))
		return badRequest(ctx)
	}

	id, err := h.commands.RegisterUser(requestCtx, req.ToCommand())
	if err != nil {
		log.Warn(requestCtx, ErrorFailedToServeRequest, zap.Error(err))
		return writeError(ctx, err)
	}

	if err := ctx.Status(http.StatusCreated).JSON(dto.UserIDResponse{UserID: id.String()}); err != nil {
		return fmt.Errorf("sending response: %w", err)
	}
	return nil
}

// Create обрабатывает создание пользователя с явными ролями.
func (h *Handler) Create(ctx fiber.Ctx) error {
	requestCtx := ctx.Context()
	log := logger.Log(requestCtx)
	log.Info(requestCtx, LogHandlerCreate)

	var req dto.CreateUserRequest
	if err := ctx.Bind().JSON(&req); err != nil {
		log.Warn(requestCtx, ErrorInvalidRequest, zap.Error(err))
		return badRequest(ctx)
	}

	id, err := h.commands.CreateUser(requestCtx, req.ToCommand())
	if err != nil {
		log.Warn(requestCtx, ErrorFailedToServeRequest, zap.Error(err))
		return writeError(ctx, err)
	}

	if err := ctx.Status(http.StatusCreated).JSON(dto.UserIDResponse{UserID: id.String()}); err != nil {
		return fmt.Errorf("sending response: %w", err)
	}
	return nil
}

// UpsertExternal создает или перезаписывает пользователя внешнего провайдера.
func (h *Handler) UpsertExternal(ctx fiber.Ctx) error {
	requestCtx := ctx.Context()
	log := logger.Log(requestCtx)
	log.Info(requestCtx, LogHandlerUpsert)

	var req dto.ExternalUserRequest
	if err := ctx.Bind().JSON(&req); err != nil {
		log.Warn(requestCtx, ErrorInvalidRequest, zap.Error(err))
		return badRequest(ctx)
	}

	id, err := h.commands.CreateOrUpdateExternalUser(requestCtx, req.ToCommand())
	if err != nil {
		log.Warn(requestCtx, ErrorFailedToServeRequest, zap.Error(err))
		return writeError(ctx, err)
	}

	if err := ctx.Status(http.StatusOK).JSON(dto.UserIDResponse{UserID: id.String()}); err != nil {
		return fmt.Errorf("sending response: %w", err)
	}
	return nil
}

// Authenticate проверяет учетные данные и возвращает снимок идентичности.
func (h *Handler) Authenticate(ctx fiber.Ctx) error {
	requestCtx := ctx.Context()
	log := logger.Log(requestCtx)
	log.Info(requestCtx, LogHandlerAuthenticate)

	var req dto.AuthenticateRequest
	if err := ctx.Bind().JSON(&req); err != nil {
		log.Warn(requestCtx, ErrorInvalidRequest, zap.Error(err))
		return badRequest(ctx)
	}

	principal, err := h.commands.AuthenticateUser(requestCtx, req.ToCommand())
	if err != nil {
		log.Warn(requestCtx, ErrorFailedToServeRequest, zap.Error(err))
		return writeError(ctx, err)
	}

	if principal == nil {
		if err := ctx.Status(http.StatusUnauthorized).JSON(dto.ErrorResponse{Error: ErrorInvalidCredentials}); err != nil {
			return fmt.Errorf("sending response: %w", err)
		}
		return nil
	}

	if err := ctx.Status(http.StatusOK).JSON(principal); err != nil {
		return fmt.Errorf("sending response: %w", err)
	}
	return nil
}

func badRequest(ctx fiber.Ctx) error {
	if err := ctx.Status(http.StatusBadRequest).JSON(dto.ErrorResponse{Error: ErrorInvalidRequest}); err != nil {
		return fmt.Errorf("sending response: %w", err)
	}
	return nil
}
