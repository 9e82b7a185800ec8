package app

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"useridentity/internal/identity/domain/entities"
	"useridentity/internal/identity/ports/repositories"
	"useridentity/internal/identity/ports/services"
	"useridentity/pkg/logger"
)

const (
	methodProject = "Project"

	msgRecordProjected  = "user view record projected"
	msgErrProjectRecord = "failed to project user view record"

	errCtxProjecting = "projecting event"
)

// UserProjector поддерживает проекцию пользователей по сохраненным событиям.
type UserProjector struct {
	writer repositories.UserViewWriter
}

// NewUserProjector создает проектор поверх записи проекции.
func NewUserProjector(writer repositories.UserViewWriter) services.EventPublisher {
	return &UserProjector{writer: writer}
}

// Publish переносит события профиля в проекцию. Аудиторские события проекцию не меняют.
func (p *UserProjector) Publish(ctx context.Context, events []entities.RecordedEvent) error {
	log := logger.Log(ctx).With(zap.String("method", methodProject))

	for _, event := range events {
		var profile entities.UserProfile
		switch e := event.Event.(type) {
		case entities.UserCreated:
			profile = e.UserProfile
		case entities.UserReplaced:
			profile = e.UserProfile
		default:
			continue
		}

		record := recordFromProfile(profile, event.Version)
		if err := p.writer.Upsert(ctx, record); err != nil {
			log.Error(ctx, msgErrProjectRecord, zap.String("user_id", record.ID.String()), zap.Error(err))
			return fmt.Errorf("%s %s: %w", errCtxProjecting, event.EventType(), err)
		}
		log.Debug(ctx, msgRecordProjected, zap.String("user_id", record.ID.String()), zap.Int("version", record.Version))
	}
	return nil
}

func recordFromProfile(p entities.UserProfile, version int) *entities.IdentityRecord {
	p = p.Clone()
	return &entities.IdentityRecord{
		ID:                p.ID,
		Source:            p.Source,
		ExternalID:        p.ExternalID,
		Username:          p.Username,
		Email:             p.Email,
		PasswordDigest:    p.PasswordDigest,
		FirstName:         p.FirstName,
		LastName:          p.LastName,
		ProfilePictureURL: p.ProfilePictureURL,
		Gender:            p.Gender,
		Roles:             p.Roles,
		Enabled:           true,
		Version:           version,
	}
}

// Publishers рассылает события всем публикаторам по очереди.
type Publishers []services.EventPublisher

// Publish вызывает все публикаторы и объединяет их ошибки.
func (ps Publishers) Publish(ctx context.Context, events []entities.RecordedEvent) error {
	var errs []error
	for _, p := range ps {
		if p == nil {
			continue
		}
		if err := p.Publish(ctx, events); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
