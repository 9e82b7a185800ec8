package memory

import (
	"context"
	"slices"
	"sync"

	"useridentity/internal/identity/domain/entities"
)

// LookupStore - проекция пользователей в памяти. Реализует и чтение для
// обработчика команд, и запись для проектора.
type LookupStore struct {
	mu         sync.RWMutex
	byID       map[entities.UserIdentifier]*entities.IdentityRecord
	byUsername map[string]entities.UserIdentifier
	byEmail    map[string]entities.UserIdentifier
	byExternal map[string]entities.UserIdentifier
}

// NewLookupStore создает пустую проекцию.
func NewLookupStore() *LookupStore {
	return &LookupStore{
		byID:       make(map[entities.UserIdentifier]*entities.IdentityRecord),
		byUsername: make(map[string]entities.UserIdentifier),
		byEmail:    make(map[string]entities.UserIdentifier),
		byExternal: make(map[string]entities.UserIdentifier),
	}
}

// ExistsByUsername проверяет, занят ли username.
func (s *LookupStore) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, entities.StoreUnavailable("checking username", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.byUsername[username]
	return ok, nil
}

// ExistsByEmail проверяет, занят ли email.
func (s *LookupStore) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, entities.StoreUnavailable("checking email", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.byEmail[email]
	return ok, nil
}

// FindByUsername ищет запись по username.
func (s *LookupStore) FindByUsername(ctx context.Context, username string) (*entities.IdentityRecord, error) {
	return s.find(ctx, s.byUsername, username)
}

// FindByExternalID ищет запись по идентификатору внешнего провайдера.
func (s *LookupStore) FindByExternalID(ctx context.Context, externalID string) (*entities.IdentityRecord, error) {
	return s.find(ctx, s.byExternal, externalID)
}

// Upsert сохраняет запись, если ее версия новее сохраненной.
func (s *LookupStore) Upsert(ctx context.Context, record *entities.IdentityRecord) error {
	if err := ctx.Err(); err != nil {
		return entities.StoreUnavailable("upserting user view", err)
	}
	if record == nil || record.ID.IsZero() {
		return entities.ErrEmptyUserID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if prev, ok := s.byID[record.ID]; ok {
		if prev.Version >= record.Version {
			return nil
		}
		s.unindex(prev)
	}

	stored := cloneRecord(record)
	s.byID[stored.ID] = stored
	s.byUsername[stored.Username] = stored.ID
	s.byEmail[stored.Email] = stored.ID
	if stored.ExternalID != "" {
		s.byExternal[stored.ExternalID] = stored.ID
	}
	return nil
}

func (s *LookupStore) find(
	ctx context.Context,
	index map[string]entities.UserIdentifier,
	key string,
) (*entities.IdentityRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, entities.StoreUnavailable("finding user view", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := index[key]
	if !ok {
		return nil, nil
	}
	return cloneRecord(s.byID[id]), nil
}

func (s *LookupStore) unindex(r *entities.IdentityRecord) {
	if s.byUsername[r.Username] == r.ID {
		delete(s.byUsername, r.Username)
	}
	if s.byEmail[r.Email] == r.ID {
		delete(s.byEmail, r.Email)
	}
	if r.ExternalID != "" && s.byExternal[r.ExternalID] == r.ID {
		delete(s.byExternal, r.ExternalID)
	}
}

func cloneRecord(r *entities.IdentityRecord) *entities.IdentityRecord {
	c := *r
	c.Roles = slices.Clone(r.Roles)
	return &c
}
