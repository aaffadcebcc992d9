package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"todoapi/internal/config"
	"todoapi/internal/core/ports"
)

// Publisher is the subset of *redis.Client the notifier needs.
type Publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

type message struct {
	Event  string             `json:"event"`
	UserID int64              `json:"user_id"`
	Data   ports.Notification `json:"data"`
}

// RedisNotifier publishes notifications on a per-user Redis channel,
// "<channel>:<user id>", for push gateways to fan out to clients.
type RedisNotifier struct {
	client  Publisher
	channel string
}

var _ ports.NotificationPublisher = (*RedisNotifier)(nil)

func NewRedisNotifier(client Publisher, channel string) *RedisNotifier {
	return &RedisNotifier{client: client, channel: channel}
}

func (n *RedisNotifier) Notify(ctx context.Context, userID int64, notification ports.Notification) error {
	payload, err := json.Marshal(message{Event: "ReceiveNotification", UserID: userID, Data: notification})
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}

	channel := n.channel + ":" + strconv.FormatInt(userID, 10)
	receivers, err := n.client.Publish(ctx, channel, payload).Result()
	if err != nil {
		return fmt.Errorf("redis publish: %w", err)
	}

	zap.L().Debug("notification published",
		zap.String("channel", channel),
		zap.Int64("todo_id", notification.ID),
		zap.Int64("receivers", receivers),
	)
	return nil
}

func NewRedisClient(cfg config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return rdb, nil
}

// LogNotifier only logs notifications. Used when Redis is not configured.
type LogNotifier struct{}

var _ ports.NotificationPublisher = LogNotifier{}

func (LogNotifier) Notify(_ context.Context, userID int64, notification ports.Notification) error {
	zap.L().Info("notification",
		zap.Int64("user_id", userID),
		zap.Int64("todo_id", notification.ID),
		zap.String("title", notification.Title),
		zap.String("created_at", notification.CreatedAt),
	)
	return nil
}
