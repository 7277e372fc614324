package webhook

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	webhookQueueKey = "webhook_events"
)

// Типы событий, уходящих подписчикам
const (
	EventIncidentCreated       = "incident.created"
	EventIncidentStatusChanged = "incident.status_changed"
)

// WebhookEvent - структура для данных вебхука
type WebhookEvent struct {
	Event      string    `json:"event"`
	IncidentID uuid.UUID `json:"incident_id"`
	Title      string    `json:"title"`
	Status     string    `json:"status"`
	ActorEmail string    `json:"actor_email"`
	Timestamp  time.Time `json:"timestamp"`
}

//go:generate mockgen -source=publisher.go -destination=mocks/mock_publisher.go -package=mocks

// WebhookPublisher - интерфейс для публикации вебхуков
type WebhookPublisher interface {
	Publish(ctx context.Context, event WebhookEvent) error
}

// RedisWebhookPublisher - реализация WebhookPublisher, использующая Redis
type RedisWebhookPublisher struct {
	redisClient *redis.Client
}

// NewRedisWebhookPublisher создает новый RedisWebhookPublisher
func NewRedisWebhookPublisher(client *redis.Client) *RedisWebhookPublisher {
	return &RedisWebhookPublisher{
		redisClient: client,
	}
}

// Publish публикует событие вебхука в очередь Redis
func (p *RedisWebhookPublisher) Publish(ctx context.Context, event WebhookEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal webhook event: %w", err)
	}

	// Используем LPUSH для добавления события в левую часть списка (очереди)
	if err := p.redisClient.LPush(ctx, webhookQueueKey, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish webhook event to Redis: %w", err)
	}
	return nil
}
