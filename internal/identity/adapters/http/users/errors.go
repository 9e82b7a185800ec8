package users

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v3"

	"useridentity/internal/identity/adapters/http/dto"
	"useridentity/internal/identity/domain/entities"
)

// StatusFor сопоставляет код доменной ошибки статусу HTTP.
func StatusFor(code entities.ErrorCode) int {
	switch code {
	case entities.ErrCodeValidation:
		return http.StatusBadRequest
	case entities.ErrCodeNotFound:
		return http.StatusNotFound
	case entities.ErrCodeConflict, entities.ErrCodeDuplicate:
		return http.StatusConflict
	case entities.ErrCodeStoreUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeError отправляет ответ с ошибкой. Внутренние детали наружу не выходят,
// вызывающая сторона получает только сообщение доменной ошибки.
func writeError(ctx fiber.Ctx, err error) error {
	code := entities.CodeOf(err)
	message := ErrorFailedToServeRequest

	var dErr *entities.Error
	if code != entities.ErrCodeInternal && code != entities.ErrCodeStateConsistency && errors.As(err, &dErr) {
		message = dErr.Message
	}

	return ctx.Status(StatusFor(code)).JSON(dto.ErrorResponse{Error: message, Code: string(code)})
}
