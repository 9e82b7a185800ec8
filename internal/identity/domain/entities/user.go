// Package entities содержит состояние агрегата пользователя, события, команды и доменные ошибки.
package entities

import (
	"slices"
	"strings"
)

// UserIdentifier - неизменяемый глобально уникальный идентификатор пользователя
// и ключ партиции потока событий.
type UserIdentifier string

func (id UserIdentifier) String() string {
	return string(id)
}

// IsZero сообщает, что идентификатор не задан.
func (id UserIdentifier) IsZero() bool {
	return strings.TrimSpace(string(id)) == ""
}

// Source - источник регистрации пользователя.
type Source string

const (
	SourceSite     Source = "site"
	SourceExternal Source = "external"
)

// DefaultRole выдается при регистрации без явного списка ролей.
const DefaultRole = "ROLE_USER"

// User - состояние агрегата пользователя. Поля меняются только при применении событий.
type User struct {
	ID                UserIdentifier
	Source            Source
	ExternalID        string
	Username          string
	PasswordDigest    string
	Email             string
	FirstName         string
	LastName          string
	ProfilePictureURL string
	Gender            string
	Roles             []string
	Version           int
}

// IsNew сообщает, что к агрегату не применено ни одного события.
func (u User) IsNew() bool {
	return u.Version == 0
}

// HasRole проверяет наличие роли.
func (u User) HasRole(role string) bool {
	return slices.Contains(u.Roles, role)
}

// DisplayName собирает отображаемое имя из имени и фамилии, иначе возвращает username.
func DisplayName(firstName, lastName, username string) string {
	name := strings.TrimSpace(strings.TrimSpace(firstName) + " " + strings.TrimSpace(lastName))
	if name == "" {
		return username
	}
	return name
}

// CanonicalUsername приводит username к каноническому виду.
func CanonicalUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// CanonicalEmail приводит email к каноническому виду.
func CanonicalEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
