package ports

import (
	"context"

	"github.com/samirrijal/geosketch/internal/core/domain"
)

// EventPublisher publishes domain events to a message broker.
type EventPublisher interface {
	PublishShapeChange(ctx context.Context, ev *domain.ShapeChangeEvent) error
	PublishBoardEvent(ctx context.Context, ev *domain.BoardEvent) error
}

// EventSubscriber subscribes to domain events from a message broker.
type EventSubscriber interface {
	SubscribeShapeChanges(ctx context.Context, handler func(ctx context.Context, ev *domain.ShapeChangeEvent) error) error
	SubscribeBoardEvents(ctx context.Context, handler func(ctx context.Context, ev *domain.BoardEvent) error) error
}

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}

// NotificationService sends notifications (push, email, etc.).
type NotificationService interface {
	SendPush(ctx context.Context, userID, title, body string) error
}
