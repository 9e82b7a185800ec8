// Package aggregate содержит функции переходов состояния агрегата пользователя.
//
// Каждый переход возвращает новое состояние и порожденное событие. Несохраненные
// события накапливает вызывающая сторона, сервис хеширования передается явно.
package aggregate

import (
	"context"
	"fmt"
	"slices"
	"time"

	"useridentity/internal/identity/domain/entities"
)

const (
	errCtxHashingPassword   = "hashing password"
	errCtxVerifyingPassword = "verifying password"
	errCtxReplayingEvent    = "replaying event"
)

// Hasher вычисляет необратимый хеш пароля.
type Hasher interface {
	Hash(ctx context.Context, password string) (string, error)
}

// Verifier сверяет пароль с хешем.
type Verifier interface {
	Verify(ctx context.Context, password, hash string) (bool, error)
}

// Registration - данные для создания нового пользователя.
type Registration struct {
	ID                entities.UserIdentifier
	Source            entities.Source
	ExternalID        string
	Username          string
	Password          string
	Email             string
	FirstName         string
	LastName          string
	ProfilePictureURL string
	Gender            string
	Roles             []string
	OccurredAt        time.Time
}

// ExternalProfile - профиль, полученный от внешнего провайдера идентичности.
type ExternalProfile struct {
	ExternalID        string
	Email             string
	Password          string
	FirstName         string
	LastName          string
	ProfilePictureURL string
	Gender            string
	OccurredAt        time.Time
}

// Register порождает первое событие нового пользователя.
// Username и email приводятся к нижнему регистру один раз, здесь.
func Register(ctx context.Context, hasher Hasher, state entities.User, r Registration) (entities.User, entities.Event, error) {
	if !state.IsNew() {
		return state, nil, entities.ErrAlreadyCreated
	}
	if r.ID.IsZero() {
		return state, nil, entities.ErrEmptyUserID
	}

	digest, err := hasher.Hash(ctx, r.Password)
	if err != nil {
		return state, nil, fmt.Errorf("%s: %w", errCtxHashingPassword, err)
	}

	source := r.Source
	if source == "" {
		source = entities.SourceSite
	}

	event := entities.UserCreated{UserProfile: entities.UserProfile{
		ID:                r.ID,
		Source:            source,
		ExternalID:        r.ExternalID,
		Username:          entities.CanonicalUsername(r.Username),
		PasswordDigest:    digest,
		Email:             entities.CanonicalEmail(r.Email),
		FirstName:         r.FirstName,
		LastName:          r.LastName,
		ProfilePictureURL: r.ProfilePictureURL,
		Gender:            r.Gender,
		Roles:             slices.Clone(r.Roles),
		Timestamp:         occurredAt(r.OccurredAt),
	}}

	next, err := Apply(state, event)
	if err != nil {
		return state, nil, err
	}
	return next, event, nil
}

// UpsertExternal создает пользователя внешнего провайдера либо полностью
// перезаписывает профиль существующего, сохраняя его идентификатор.
func UpsertExternal(
	ctx context.Context,
	hasher Hasher,
	existing *entities.User,
	id entities.UserIdentifier,
	p ExternalProfile,
) (entities.User, entities.Event, error) {
	if existing == nil {
		return Register(ctx, hasher, entities.User{}, Registration{
			ID:                id,
			Source:            entities.SourceExternal,
			ExternalID:        p.ExternalID,
			Username:          p.Email,
			Password:          p.Password,
			Email:             p.Email,
			FirstName:         p.FirstName,
			LastName:          p.LastName,
			ProfilePictureURL: p.ProfilePictureURL,
			Gender:            p.Gender,
			Roles:             []string{entities.DefaultRole},
			OccurredAt:        p.OccurredAt,
		})
	}

	state := *existing
	if state.IsNew() {
		return state, nil, entities.ErrNotCreated
	}

	digest, err := hasher.Hash(ctx, p.Password)
	if err != nil {
		return state, nil, fmt.Errorf("%s: %w", errCtxHashingPassword, err)
	}

	event := entities.UserReplaced{UserProfile: entities.UserProfile{
		ID:                state.ID,
		Source:            entities.SourceExternal,
		ExternalID:        p.ExternalID,
		Username:          entities.CanonicalUsername(p.Email),
		PasswordDigest:    digest,
		Email:             entities.CanonicalEmail(p.Email),
		FirstName:         p.FirstName,
		LastName:          p.LastName,
		ProfilePictureURL: p.ProfilePictureURL,
		Gender:            p.Gender,
		Roles:             []string{entities.DefaultRole},
		Timestamp:         occurredAt(p.OccurredAt),
	}}

	next, err := Apply(state, event)
	if err != nil {
		return state, nil, err
	}
	return next, event, nil
}

// Authenticate сверяет пароль с сохраненным хешем. Состояние не меняется.
// При отсутствии хеша или пароля возвращает false.
func Authenticate(ctx context.Context, verifier Verifier, state entities.User, password string) (bool, error) {
	if state.PasswordDigest == "" || password == "" {
		return false, nil
	}

	ok, err := verifier.Verify(ctx, password, state.PasswordDigest)
	if err != nil {
		return false, fmt.Errorf("%s: %w", errCtxVerifyingPassword, err)
	}
	return ok, nil
}

// Authenticated порождает аудиторское событие успешной аутентификации.
func Authenticated(state entities.User, at time.Time) (entities.User, entities.Event, error) {
	event := entities.UserAuthenticated{ID: state.ID, Timestamp: occurredAt(at)}

	next, err := Apply(state, event)
	if err != nil {
		return state, nil, err
	}
	return next, event, nil
}

// Apply применяет одно событие к состоянию.
func Apply(state entities.User, event entities.Event) (entities.User, error) {
	switch e := event.(type) {
	case entities.UserCreated:
		if !state.IsNew() {
			return state, entities.ErrAlreadyCreated
		}
		return fromProfile(e.UserProfile, state.Version+1), nil

	case entities.UserReplaced:
		if state.IsNew() {
			return state, entities.ErrNotCreated
		}
		if e.ID != state.ID {
			return state, entities.ErrForeignEvent
		}
		return fromProfile(e.UserProfile, state.Version+1), nil

	case entities.UserAuthenticated:
		if state.IsNew() {
			return state, entities.ErrNotCreated
		}
		if e.ID != state.ID {
			return state, entities.ErrForeignEvent
		}
		next := state
		next.Roles = slices.Clone(state.Roles)
		next.Version++
		return next, nil

	default:
		return state, entities.ErrUnknownEvent
	}
}

// Replay сворачивает историю событий в состояние, начиная с нулевого значения.
func Replay(events []entities.Event) (entities.User, error) {
	var state entities.User
	for i, event := range events {
		next, err := Apply(state, event)
		if err != nil {
			return entities.User{}, fmt.Errorf("%s %d: %w", errCtxReplayingEvent, i+1, err)
		}
		state = next
	}
	return state, nil
}

func fromProfile(p entities.UserProfile, version int) entities.User {
	return entities.User{
		ID:                p.ID,
		Source:            p.Source,
		ExternalID:        p.ExternalID,
		Username:          p.Username,
		PasswordDigest:    p.PasswordDigest,
		Email:             p.Email,
		FirstName:         p.FirstName,
		LastName:          p.LastName,
		ProfilePictureURL: p.ProfilePictureURL,
		Gender:            p.Gender,
		Roles:             slices.Clone(p.Roles),
		Version:           version,
	}
}

func occurredAt(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now().UTC()
	}
	return t.UTC()
}
