package main

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	authadapter "todoapi/internal/adapter/auth"
	dbadapter "todoapi/internal/adapter/db"
	"todoapi/internal/adapter/http/handlers"
	"todoapi/internal/adapter/memory"
	"todoapi/internal/adapter/notify"
	"todoapi/internal/app/cache"
	"todoapi/internal/app/events"
	"todoapi/internal/app/factory"
	"todoapi/internal/app/queue"
	"todoapi/internal/app/service"
	"todoapi/internal/config"
	"todoapi/internal/core/domain"
	"todoapi/internal/core/ports"
)

// application holds the wired services shared by the serve and seed commands.
type application struct {
	db    *sqlx.DB
	redis *redis.Client
	queue *queue.ProcessingQueue

	tokens      *authadapter.JWTIssuer
	authService *service.AuthService
	todoService *service.TodoService

	stopTap func()
}

func newApplication(cfg *config.Config) (*application, error) {
	app := &application{tokens: authadapter.NewJWTIssuer(cfg.Auth)}

	var (
		todoRepository ports.TodoRepository
		userRepository ports.UserRepository
	)
	switch cfg.App.Storage {
	case config.StorageMySQL:
		db, err := dbadapter.ConnectDB(cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to mysql: %w", err)
		}
		app.db = db
		if cfg.MySQL.AutoMigrate {
			if err := dbadapter.Migrate(db.DB); err != nil {
				_ = db.Close()
				return nil, err
			}
		}
		todoRepository = dbadapter.NewTodoRepository(db)
		userRepository = dbadapter.NewUserRepository(db)
	default:
		zap.L().Warn("using in-memory storage, data is lost on restart")
		todoRepository = memory.NewTodoRepository()
		userRepository = memory.NewUserRepository()
	}

	var notifier ports.NotificationPublisher = notify.LogNotifier{}
	if cfg.Redis.Addr != "" {
		rdb, err := notify.NewRedisClient(cfg.Redis)
		if err != nil {
			app.close(context.Background(), time.Second)
			return nil, err
		}
		app.redis = rdb
		notifier = notify.NewRedisNotifier(rdb, cfg.Redis.Channel)
	}

	processingQueue, err := queue.NewProcessingQueue(
		queue.SimulatedProcessor(cfg.Queue.ProcessDelay),
		queue.WithMeterProvider(otel.GetMeterProvider()),
	)
	if err != nil {
		app.close(context.Background(), time.Second)
		return nil, fmt.Errorf("processing queue: %w", err)
	}
	app.queue = processingQueue
	app.stopTap = tapProcessed(processingQueue)

	publisher := events.NewPublisher()
	publisher.RegisterHandler(domain.EventTodoCreated, events.NewTodoCreatedHandler(notifier))

	cacheConfig := cache.DefaultConfig()
	cacheConfig.TTL = cfg.Cache.TTL
	cacheConfig.Capacity = cfg.Cache.Capacity
	cacheConfig.NumShards = cfg.Cache.NumShards

	app.authService = service.NewAuthService(userRepository, app.tokens)
	app.todoService = service.NewTodoService(
		todoRepository,
		factory.NewTodoFactory(nil, nil),
		processingQueue,
		cache.NewTodoCache(cacheConfig),
		publisher,
	)
	return app, nil
}

// tapProcessed logs every todo the queue finishes.
func tapProcessed(q *queue.ProcessingQueue) func() {
	processed, unsubscribe := q.Subscribe(64)
	go func() {
		for todo := range processed {
			zap.L().Debug("todo processed",
				zap.Int64("todo_id", todo.ID),
				zap.Int64("user_id", todo.UserID),
				zap.Bool("is_deleted", todo.IsDeleted),
			)
		}
	}()
	return unsubscribe
}

func (a *application) pingMySQL() handlers.PingFunc {
	if a.db == nil {
		return nil
	}
	return a.db.PingContext
}

func (a *application) pingRedis() handlers.PingFunc {
	if a.redis == nil {
		return nil
	}
	return func(ctx context.Context) error {
		return a.redis.Ping(ctx).Err()
	}
}

// close drains the queue before releasing the stores it may still touch.
func (a *application) close(ctx context.Context, timeout time.Duration) {
	if a.queue != nil {
		drainCtx, cancel := context.WithTimeout(ctx, timeout)
		if err := a.queue.Close(drainCtx); err != nil {
			zap.L().Warn("processing queue did not drain", zap.Error(err))
		}
		cancel()
	}
	if a.stopTap != nil {
		a.stopTap()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			zap.L().Warn("failed to close redis connection", zap.Error(err))
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			zap.L().Warn("failed to close mysql connection", zap.Error(err))
		}
	}
}
