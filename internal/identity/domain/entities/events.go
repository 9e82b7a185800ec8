package entities

import (
	"slices"
	"time"
)

// Типы событий агрегата пользователя.
const (
	EventUserCreated       = "UserCreated"
	EventUserReplaced      = "UserReplaced"
	EventUserAuthenticated = "UserAuthenticated"
)

// Event - неизменяемый факт изменения агрегата пользователя.
type Event interface {
	EventType() string
	AggregateID() UserIdentifier
	OccurredAt() time.Time
}

// UserProfile - набор полей, определяющих идентичность пользователя.
type UserProfile struct {
	ID                UserIdentifier `json:"id"`
	Source            Source         `json:"source"`
	ExternalID        string         `json:"external_id,omitempty"`
	Username          string         `json:"username"`
	PasswordDigest    string         `json:"password_digest"`
	Email             string         `json:"email"`
	FirstName         string         `json:"first_name,omitempty"`
	LastName          string         `json:"last_name,omitempty"`
	ProfilePictureURL string         `json:"profile_picture_url,omitempty"`
	Gender            string         `json:"gender,omitempty"`
	Roles             []string       `json:"roles"`
	Timestamp         time.Time      `json:"timestamp"`
}

// UserCreated - первое событие потока пользователя.
type UserCreated struct {
	UserProfile
}

func (e UserCreated) EventType() string           { return EventUserCreated }
func (e UserCreated) AggregateID() UserIdentifier { return e.ID }
func (e UserCreated) OccurredAt() time.Time       { return e.Timestamp }

// UserReplaced полностью перезаписывает профиль существующего пользователя
// значениями от внешнего провайдера.
type UserReplaced struct {
	UserProfile
}

func (e UserReplaced) EventType() string           { return EventUserReplaced }
func (e UserReplaced) AggregateID() UserIdentifier { return e.ID }
func (e UserReplaced) OccurredAt() time.Time       { return e.Timestamp }

// UserAuthenticated - аудит успешной аутентификации, поля профиля не меняет.
type UserAuthenticated struct {
	ID        UserIdentifier `json:"id"`
	Timestamp time.Time      `json:"timestamp"`
}

func (e UserAuthenticated) EventType() string           { return EventUserAuthenticated }
func (e UserAuthenticated) AggregateID() UserIdentifier { return e.ID }
func (e UserAuthenticated) OccurredAt() time.Time       { return e.Timestamp }

// Clone возвращает копию профиля с собственным срезом ролей.
func (p UserProfile) Clone() UserProfile {
	p.Roles = slices.Clone(p.Roles)
	return p
}

// RecordedEvent - событие с версией потока, присвоенной при добавлении.
type RecordedEvent struct {
	Event
	Version int
}

// Record нумерует события, добавленные к потоку версии from.
func Record(from int, events []Event) []RecordedEvent {
	recorded := make([]RecordedEvent, len(events))
	for i, event := range events {
		recorded[i] = RecordedEvent{Event: event, Version: from + i + 1}
	}
	return recorded
}
