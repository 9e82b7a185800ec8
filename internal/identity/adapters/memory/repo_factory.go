package memory

import (
	"useridentity/internal/identity/ports/repositories"
)

// RepositoryFactory создает хранилища в памяти с общей проекцией пользователей.
type RepositoryFactory struct {
	eventStore  repositories.EventStore
	lookupStore *LookupStore
}

// NewRepositoryFactory создает новую фабрику хранилищ в памяти.
func NewRepositoryFactory() *RepositoryFactory {
	return &RepositoryFactory{
		eventStore:  NewEventStore(),
		lookupStore: NewLookupStore(),
	}
}

// EventStore возвращает хранилище событий.
func (f *RepositoryFactory) EventStore() repositories.EventStore {
	return f.eventStore
}

// LookupStore возвращает проекцию для чтения.
func (f *RepositoryFactory) LookupStore() repositories.LookupStore {
	return f.lookupStore
}

// UserViewWriter возвращает ту же проекцию для записи.
func (f *RepositoryFactory) UserViewWriter() repositories.UserViewWriter {
	return f.lookupStore
}
