package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"useridentity/internal/identity/domain/entities"
	"useridentity/internal/identity/ports/repositories"
	"useridentity/pkg/logger"
)

const (
	errCtxExistsQuery = "error checking user view"
	errCtxFindQuery   = "error querying user view"
	errCtxUpsertView  = "error upserting user view"
)

const selectIdentityRecord = `
        SELECT id, source, external_id, username, email, password_digest,
               first_name, last_name, profile_picture_url, gender, roles,
               enabled, account_locked, account_expired, credentials_expired, version
        FROM users_view
`

// LookupStore реализует repositories.LookupStore поверх таблицы users_view.
type LookupStore struct {
	pool PgxPoolInterface
}

// NewLookupStore создает новый экземпляр проекции пользователей для чтения.
func NewLookupStore(pool PgxPoolInterface) repositories.LookupStore {
	return &LookupStore{pool: pool}
}

// ExistsByUsername проверяет, занят ли username.
func (s *LookupStore) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return s.exists(ctx, "ExistsByUsername", `
        SELECT EXISTS (SELECT 1 FROM users_view WHERE username = $1)
    `, username)
}

// ExistsByEmail проверяет, занят ли email.
func (s *LookupStore) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return s.exists(ctx, "ExistsByEmail", `
        SELECT EXISTS (SELECT 1 FROM users_view WHERE email = $1)
    `, email)
}

// FindByUsername ищет запись по username.
func (s *LookupStore) FindByUsername(ctx context.Context, username string) (*entities.IdentityRecord, error) {
	return s.find(ctx, "FindByUsername", selectIdentityRecord+`WHERE username = $1`, username)
}

// FindByExternalID ищет запись по идентификатору внешнего провайдера.
func (s *LookupStore) FindByExternalID(ctx context.Context, externalID string) (*entities.IdentityRecord, error) {
	return s.find(ctx, "FindByExternalID", selectIdentityRecord+`WHERE external_id = $1`, externalID)
}

func (s *LookupStore) exists(ctx context.Context, method, query, value string) (bool, error) {
	log := logger.Log(ctx).With(zap.String("repository", "users_view"), zap.String("method", method))

	var exists bool
	if err := s.pool.QueryRow(ctx, query, value).Scan(&exists); err != nil {
		log.Error(ctx, errCtxExistsQuery, zap.Error(err))
		return false, entities.StoreUnavailable(errCtxExistsQuery, err)
	}
	return exists, nil
}

func (s *LookupStore) find(ctx context.Context, method, query, value string) (*entities.IdentityRecord, error) {
	log := logger.Log(ctx).With(zap.String("repository", "users_view"), zap.String("method", method))

	var (
		record entities.IdentityRecord
		id     string
		source string
	)
	err := s.pool.QueryRow(ctx, query, value).Scan(
		&id,
		&source,
		&record.ExternalID,
		&record.Username,
		&record.Email,
		&record.PasswordDigest,
		&record.FirstName,
		&record.LastName,
		&record.ProfilePictureURL,
		&record.Gender,
		&record.Roles,
		&record.Enabled,
		&record.AccountLocked,
		&record.AccountExpired,
		&record.CredentialsExpired,
		&record.Version,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			log.Debug(ctx, "user view record not found")
			return nil, nil
		}
		log.Error(ctx, errCtxFindQuery, zap.Error(err))
		return nil, entities.StoreUnavailable(errCtxFindQuery, err)
	}

	record.ID = entities.UserIdentifier(id)
	record.Source = entities.Source(source)
	return &record, nil
}

// UserViewWriter реализует repositories.UserViewWriter поверх таблицы users_view.
type UserViewWriter struct {
	pool PgxPoolInterface
}

// NewUserViewWriter создает новый экземпляр записи проекции.
func NewUserViewWriter(pool PgxPoolInterface) repositories.UserViewWriter {
	return &UserViewWriter{pool: pool}
}

// Upsert сохраняет запись, если ее версия новее сохраненной.
func (w *UserViewWriter) Upsert(ctx context.Context, r *entities.IdentityRecord) error {
	log := logger.Log(ctx).With(zap.String("repository", "users_view"), zap.String("method", "Upsert"))

	if r == nil || r.ID.IsZero() {
		return entities.ErrEmptyUserID
	}

	query := `
        INSERT INTO users_view (id, source, external_id, username, email, password_digest,
                                first_name, last_name, profile_picture_url, gender, roles,
                                enabled, account_locked, account_expired, credentials_expired, version)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
        ON CONFLICT (id) DO UPDATE SET
            source = EXCLUDED.source,
            external_id = EXCLUDED.external_id,
            username = EXCLUDED.username,
            email = EXCLUDED.email,
            password_digest = EXCLUDED.password_digest,
            first_name = EXCLUDED.first_name,
            last_name = EXCLUDED.last_name,
            profile_picture_url = EXCLUDED.profile_picture_url,
            gender = EXCLUDED.gender,
            roles = EXCLUDED.roles,
            enabled = EXCLUDED.enabled,
            account_locked = EXCLUDED.account_locked,
            account_expired = EXCLUDED.account_expired,
            credentials_expired = EXCLUDED.credentials_expired,
            version = EXCLUDED.version,
            updated_at = NOW()
        WHERE users_view.version < EXCLUDED.version
    `

	result, err := w.pool.Exec(ctx, query,
		r.ID.String(),
		string(r.Source),
		r.ExternalID,
		r.Username,
		r.Email,
		r.PasswordDigest,
		r.FirstName,
		r.LastName,
		r.ProfilePictureURL,
		r.Gender,
		r.Roles,
		r.Enabled,
		r.AccountLocked,
		r.AccountExpired,
		r.CredentialsExpired,
		r.Version,
	)
	if err != nil {
		log.Error(ctx, errCtxUpsertView, zap.String("user_id", r.ID.String()), zap.Error(err))
		if isUniqueViolation(err) {
			return entities.WrapError(entities.ErrCodeDuplicate, errCtxUpsertView, err)
		}
		return entities.StoreUnavailable(errCtxUpsertView, err)
	}

	if result.RowsAffected() == 0 {
		log.Debug(ctx, "stale user view record skipped",
			zap.String("user_id", r.ID.String()), zap.Int("version", r.Version))
	}
	return nil
}
