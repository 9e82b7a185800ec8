// Package services содержит адаптеры внешних сервисов командной стороны: хеширование паролей.
package services

import (
	"useridentity/internal/identity/ports/services"
)

// ServiceFactory создает сервисы, от которых зависит обработчик команд.
type ServiceFactory struct {
	passwordService services.PasswordService
}

// NewServiceFactory создает новую фабрику сервисов.
func NewServiceFactory(bcryptCost int) *ServiceFactory {
	return &ServiceFactory{
		passwordService: NewBcrypt(bcryptCost),
	}
}

// PasswordService возвращает сервис для работы с паролями.
func (f *ServiceFactory) PasswordService() services.PasswordService {
	return f.passwordService
}
