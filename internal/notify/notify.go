package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// claimChannel — канал pub/sub для событий о новых заявках.
const claimChannel = "claim-submitted"

// ClaimEvent — намерение уведомить владельца предмета о поданной заявке.
// Сама доставка (почта, push) вне зоны ответственности сервиса: событие
// лишь публикуется для внешнего потребителя.
type ClaimEvent struct {
	ClaimID    string `json:"claim_id"`
	ItemID     string `json:"item_id"`
	ItemName   string `json:"item_name"`
	OwnerID    int64  `json:"owner_id"`
	OwnerEmail string `json:"owner_email"`
	ClaimantID int64  `json:"claimant_id"`
}

// Notifier публикует события-намерения уведомления.
type Notifier interface {
	ClaimSubmitted(ctx context.Context, ev ClaimEvent) error
	Close() error
}

type redisNotifier struct {
	client *redis.Client
}

// NewRedisNotifier подключается к Redis и возвращает издателя событий.
func NewRedisNotifier(redisURL string) (Notifier, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return &redisNotifier{client: client}, nil
}

func (n *redisNotifier) ClaimSubmitted(ctx context.Context, ev ClaimEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal claim event: %w", err)
	}
	if err := n.client.Publish(ctx, claimChannel, payload).Err(); err != nil {
		return fmt.Errorf("publish claim event: %w", err)
	}
	return nil
}

func (n *redisNotifier) Close() error {
	return n.client.Close()
}

// LogNotifier — запасной издатель: пишет намерение уведомления в лог.
// Используется, когда Redis не сконфигурирован.
type LogNotifier struct {
	Logger *zap.SugaredLogger
}

func (n *LogNotifier) ClaimSubmitted(_ context.Context, ev ClaimEvent) error {
	n.Logger.Infow("notification would be sent to item owner",
		"owner_email", ev.OwnerEmail,
		"item_id", ev.ItemID,
		"item_name", ev.ItemName,
		"claim_id", ev.ClaimID,
	)
	return nil
}

func (n *LogNotifier) Close() error { return nil }
