// Package dto содержит объекты передачи данных HTTP API сервиса идентичности.
package dto

import "useridentity/internal/identity/domain/entities"

// RegisterRequest - запрос на самостоятельную регистрацию.
type RegisterRequest struct {
	UserID            string `json:"user_id,omitempty"`
	Username          string `json:"username"`
	Password          string `json:"password"`
	Email             string `json:"email"`
	FirstName         string `json:"first_name,omitempty"`
	LastName          string `json:"last_name,omitempty"`
	ProfilePictureURL string `json:"profile_picture_url,omitempty"`
	Gender            string `json:"gender,omitempty"`
}

// ToCommand преобразует запрос в команду.
func (r *RegisterRequest) ToCommand() entities.RegisterUser {
	return entities.RegisterUser{
		UserID:            entities.UserIdentifier(r.UserID),
		Username:          r.Username,
		Password:          r.Password,
		Email:             r.Email,
		FirstName:         r.FirstName,
		LastName:          r.LastName,
		ProfilePictureURL: r.ProfilePictureURL,
		Gender:            r.Gender,
	}
}

// CreateUserRequest - запрос на создание пользователя с явными ролями.
type CreateUserRequest struct {
	RegisterRequest
	Roles []string `json:"roles"`
}

func (r *CreateUserRequest) ToCommand() entities.CreateUser {
	return entities.CreateUser{
		UserID:            entities.UserIdentifier(r.UserID),
		Username:          r.Username,
		Password:          r.Password,
		Email:             r.Email,
		FirstName:         r.FirstName,
		LastName:          r.LastName,
		ProfilePictureURL: r.ProfilePictureURL,
		Gender:            r.Gender,
		Roles:             r.Roles,
	}
}

// ExternalUserRequest - профиль пользователя внешнего провайдера.
type ExternalUserRequest struct {
	UserID            string `json:"user_id,omitempty"`
	ExternalID        string `json:"external_id"`
	Email             string `json:"email"`
	Password          string `json:"password"`
	FirstName         string `json:"first_name,omitempty"`
	LastName          string `json:"last_name,omitempty"`
	ProfilePictureURL string `json:"profile_picture_url,omitempty"`
	Gender            string `json:"gender,omitempty"`
}

func (r *ExternalUserRequest) ToCommand() entities.CreateOrUpdateExternalUser {
	return entities.CreateOrUpdateExternalUser{
		UserID:            entities.UserIdentifier(r.UserID),
		ExternalID:        r.ExternalID,
		Email:             r.Email,
		Password:          r.Password,
		FirstName:         r.FirstName,
		LastName:          r.LastName,
		ProfilePictureURL: r.ProfilePictureURL,
		Gender:            r.Gender,
	}
}

// AuthenticateRequest - учетные данные для проверки.
type AuthenticateRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (r *AuthenticateRequest) ToCommand() entities.AuthenticateUser {
	return entities.AuthenticateUser{Username: r.Username, Password: r.Password}
}

// UserIDResponse - ответ команды, создающей или обновляющей пользователя.
type UserIDResponse struct {
	UserID string `json:"user_id"`
}

// ErrorResponse - тело ответа с ошибкой.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}
