package api

import (
	"context"

	"useridentity/internal/identity/domain/entities"
)

// CommandHandler определяет основной порт командной стороны сервиса идентичности.
type CommandHandler interface {
	RegisterUser(ctx context.Context, cmd entities.RegisterUser) (entities.UserIdentifier, error)

	CreateUser(ctx context.Context, cmd entities.CreateUser) (entities.UserIdentifier, error)

	CreateOrUpdateExternalUser(ctx context.Context, cmd entities.CreateOrUpdateExternalUser) (entities.UserIdentifier, error)

	// AuthenticateUser возвращает nil, nil при неверных учетных данных.
	AuthenticateUser(ctx context.Context, cmd entities.AuthenticateUser) (*entities.Principal, error)

	// Handle маршрутизирует команду по ее имени.
	Handle(ctx context.Context, cmd entities.Command) (any, error)
}
