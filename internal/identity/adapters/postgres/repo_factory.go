package postgres

import (
	"useridentity/internal/identity/ports/repositories"
)

// RepositoryFactory создает все необходимые репозитории для работы с PostgreSQL.
type RepositoryFactory struct {
	eventStore     repositories.EventStore
	lookupStore    repositories.LookupStore
	userViewWriter repositories.UserViewWriter
}

// NewRepositoryFactory создает новую фабрику репозиториев.
func NewRepositoryFactory(pool PgxPoolInterface) *RepositoryFactory {
	return &RepositoryFactory{
		eventStore:     NewEventStore(pool),
		lookupStore:    NewLookupStore(pool),
		userViewWriter: NewUserViewWriter(pool),
	}
}

// EventStore возвращает хранилище событий.
func (f *RepositoryFactory) EventStore() repositories.EventStore {
	return f.eventStore
}

// LookupStore возвращает проекцию пользователей для чтения.
func (f *RepositoryFactory) LookupStore() repositories.LookupStore {
	return f.lookupStore
}

// UserViewWriter возвращает запись проекции пользователей.
func (f *RepositoryFactory) UserViewWriter() repositories.UserViewWriter {
	return f.userViewWriter
}
