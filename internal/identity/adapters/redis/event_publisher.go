// Package redis публикует сохраненные события пользователей в канал Redis.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"useridentity/internal/identity/domain/entities"
	"useridentity/internal/identity/ports/services"
	"useridentity/internal/identity/resilience"
	"useridentity/pkg/logger"
)

// Константы для логирования.
const (
	LogMethodPublish = "publish"

	ErrorFailedToEncode  = "failed to encode event envelope"
	ErrorFailedToPublish = "failed to publish events to redis"
)

// DefaultChannel - канал по умолчанию для событий пользователей.
const DefaultChannel = "identity.user-events"

// ResilienceName - имя Circuit Breaker публикатора в логах.
const ResilienceName = "redis-event-publisher"

// Envelope - сообщение, публикуемое в канал.
type Envelope struct {
	EventType   string          `json:"event_type"`
	AggregateID string          `json:"aggregate_id"`
	Version     int             `json:"version"`
	OccurredAt  time.Time       `json:"occurred_at"`
	Payload     json.RawMessage `json:"payload"`
}

// EventPublisher реализует services.EventPublisher через PUBLISH.
// Повторная отправка после сбоя может продублировать сообщение,
// потребители отбрасывают дубликаты по версии.
type EventPublisher struct {
	client     redis.UniversalClient
	channel    string
	resilience *resilience.ServiceResilience
}

// Option настраивает EventPublisher.
type Option func(*EventPublisher)

// WithResilience задает обертку повторов и Circuit Breaker.
func WithResilience(r *resilience.ServiceResilience) Option {
	return func(p *EventPublisher) {
		if r != nil {
			p.resilience = r
		}
	}
}

// NewEventPublisher создает публикатор событий в указанный канал.
func NewEventPublisher(client redis.UniversalClient, channel string, opts ...Option) services.EventPublisher {
	if channel == "" {
		channel = DefaultChannel
	}
	p := &EventPublisher{
		client:     client,
		channel:    channel,
		resilience: resilience.NewServiceResilience(ResilienceName),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Publish отправляет события одним конвейером в порядке их следования.
func (p *EventPublisher) Publish(ctx context.Context, events []entities.RecordedEvent) error {
	if len(events) == 0 {
		return nil
	}

	log := logger.Log(ctx).With(zap.String("method", LogMethodPublish), zap.String("channel", p.channel))

	messages := make([][]byte, 0, len(events))
	for _, event := range events {
		payload, err := entities.EncodeEvent(withoutDigest(event.Event))
		if err != nil {
			log.Error(ctx, ErrorFailedToEncode, zap.Error(err))
			return fmt.Errorf("%s: %w", ErrorFailedToEncode, err)
		}

		message, err := json.Marshal(Envelope{
			EventType:   event.EventType(),
			AggregateID: event.AggregateID().String(),
			Version:     event.Version,
			OccurredAt:  event.OccurredAt(),
			Payload:     payload,
		})
		if err != nil {
			log.Error(ctx, ErrorFailedToEncode, zap.Error(err))
			return fmt.Errorf("%s: %w", ErrorFailedToEncode, err)
		}
		messages = append(messages, message)
	}

	err := p.resilience.ExecuteWithResilience(ctx, LogMethodPublish, func() error {
		_, err := p.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
			for _, message := range messages {
				pipe.Publish(ctx, p.channel, message)
			}
			return nil
		})
		return err
	})
	if err != nil {
		log.Error(ctx, ErrorFailedToPublish, zap.Error(err))
		return fmt.Errorf("%s: %w", ErrorFailedToPublish, err)
	}

	log.Debug(ctx, "events published", zap.Int("count", len(events)))
	return nil
}

// withoutDigest убирает хеш пароля из публикуемого события: канал доступен любому подписчику.
func withoutDigest(event entities.Event) entities.Event {
	switch e := event.(type) {
	case entities.UserCreated:
		e.PasswordDigest = ""
		return e
	case entities.UserReplaced:
		e.PasswordDigest = ""
		return e
	default:
		return event
	}
}
