package entities

import "slices"

// IdentityRecord - денормализованная запись проекции пользователей.
// Не является источником истины, может отставать от потока событий.
type IdentityRecord struct {
	ID                 UserIdentifier
	Source             Source
	ExternalID         string
	Username           string
	Email              string
	PasswordDigest     string
	FirstName          string
	LastName           string
	ProfilePictureURL  string
	Gender             string
	Roles              []string
	Enabled            bool
	AccountLocked      bool
	AccountExpired     bool
	CredentialsExpired bool
	Version            int
}

// Principal - снимок идентичности, возвращаемый после успешной аутентификации.
// Хеш пароля в него не попадает.
type Principal struct {
	ID                 UserIdentifier `json:"id"`
	Username           string         `json:"username"`
	DisplayName        string         `json:"display_name"`
	FirstName          string         `json:"first_name,omitempty"`
	LastName           string         `json:"last_name,omitempty"`
	ProfilePictureURL  string         `json:"profile_picture_url,omitempty"`
	Gender             string         `json:"gender,omitempty"`
	Roles              []string       `json:"roles"`
	Enabled            bool           `json:"enabled"`
	AccountLocked      bool           `json:"account_locked"`
	AccountExpired     bool           `json:"account_expired"`
	CredentialsExpired bool           `json:"credentials_expired"`
}

// NewPrincipal строит Principal по записи проекции.
func NewPrincipal(r *IdentityRecord) *Principal {
	return &Principal{
		ID:                 r.ID,
		Username:           r.Username,
		DisplayName:        DisplayName(r.FirstName, r.LastName, r.Username),
		FirstName:          r.FirstName,
		LastName:           r.LastName,
		ProfilePictureURL:  r.ProfilePictureURL,
		Gender:             r.Gender,
		Roles:              slices.Clone(r.Roles),
		Enabled:            r.Enabled,
		AccountLocked:      r.AccountLocked,
		AccountExpired:     r.AccountExpired,
		CredentialsExpired: r.CredentialsExpired,
	}
}
