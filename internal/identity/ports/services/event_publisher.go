package services

import (
	"context"

	"useridentity/internal/identity/domain/entities"
)

// EventPublisher доставляет сохраненные события подписчикам.
// Вызывается только после успешной фиксации в хранилище событий.
type EventPublisher interface {
	Publish(ctx context.Context, events []entities.RecordedEvent) error
}
