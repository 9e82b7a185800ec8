package entities

import (
	"errors"
	"fmt"
)

// ErrorCode классифицирует доменные ошибки для вызывающей стороны и транспорта.
type ErrorCode string

const (
	ErrCodeValidation       ErrorCode = "VALIDATION"
	ErrCodeNotFound         ErrorCode = "NOT_FOUND"
	ErrCodeConflict         ErrorCode = "CONFLICT"
	ErrCodeDuplicate        ErrorCode = "DUPLICATE"
	ErrCodeStoreUnavailable ErrorCode = "STORE_UNAVAILABLE"
	ErrCodeStateConsistency ErrorCode = "STATE_CONSISTENCY"
	ErrCodeInternal         ErrorCode = "INTERNAL"
)

// Error - доменная ошибка с кодом.
type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NewError создает доменную ошибку.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WrapError оборачивает ошибку с доменной классификацией.
func WrapError(code ErrorCode, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// IsDomainError проверяет код доменной ошибки в цепочке.
func IsDomainError(err error, code ErrorCode) bool {
	var dErr *Error
	if errors.As(err, &dErr) {
		return dErr.Code == code
	}
	return false
}

// CodeOf возвращает код первой доменной ошибки в цепочке или ErrCodeInternal.
func CodeOf(err error) ErrorCode {
	var dErr *Error
	if errors.As(err, &dErr) {
		return dErr.Code
	}
	return ErrCodeInternal
}

// Ошибки валидации команд.
var (
	ErrEmptyUserID     = NewError(ErrCodeValidation, "user ID cannot be empty")
	ErrEmptyUsername   = NewError(ErrCodeValidation, "username cannot be empty")
	ErrInvalidEmail    = NewError(ErrCodeValidation, "invalid email format")
	ErrEmptyPassword   = NewError(ErrCodeValidation, "password cannot be empty")
	ErrEmptyRoles      = NewError(ErrCodeValidation, "at least one role is required")
	ErrEmptyExternalID = NewError(ErrCodeValidation, "external account ID cannot be empty")
	ErrUnknownCommand  = NewError(ErrCodeValidation, "unknown command")
	ErrNilCommand      = NewError(ErrCodeValidation, "command cannot be nil")
)

// Ошибки хранилищ и согласованности.
var (
	ErrUserNotFound     = NewError(ErrCodeNotFound, "user not found")
	ErrVersionConflict  = NewError(ErrCodeConflict, "aggregate version conflict")
	ErrUsernameTaken    = NewError(ErrCodeDuplicate, "username already registered")
	ErrEmailTaken       = NewError(ErrCodeDuplicate, "email already registered")
	ErrStoreUnavailable = NewError(ErrCodeStoreUnavailable, "store unavailable")
	ErrAlreadyCreated   = NewError(ErrCodeStateConsistency, "user aggregate already created")
	ErrNotCreated       = NewError(ErrCodeStateConsistency, "user aggregate not created")
	ErrUnknownEvent     = NewError(ErrCodeStateConsistency, "unknown event type")
	ErrForeignEvent     = NewError(ErrCodeStateConsistency, "event belongs to another aggregate")
)

// StoreUnavailable оборачивает инфраструктурную ошибку хранилища.
func StoreUnavailable(message string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStoreUnavailable, message, err)
}
