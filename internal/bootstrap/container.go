package bootstrap

import (
	"context"
	"errors"
	"time"

	"notekeeper-be/internal/config"
	"notekeeper-be/internal/controller"
	"notekeeper-be/internal/pkg/logger"
	"notekeeper-be/internal/pkg/metrics"
	"notekeeper-be/internal/pkg/tokenstore"
	"notekeeper-be/internal/repository/unitofwork"
	"notekeeper-be/internal/service"
	pktNats "notekeeper-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const containerModule = "Container"

type Container struct {
	Logger   logger.ILogger
	Metrics  *metrics.Manager
	Registry *prometheus.Registry

	// Services
	NoteService service.INoteService
	AuthService service.IAuthService

	// Controllers
	NoteController     controller.INoteController
	AuthController     controller.IAuthController
	NotePageController controller.INotePageController

	// Background (exposed for main.go to run)
	EventRelay service.INoteEventRelay

	closers []func() error
}

// NewContainer wires every dependency. Redis and NATS are optional: without
// them revocations live in memory and events stay in process.
func NewContainer(db *gorm.DB, cfg *config.Config, log logger.ILogger) *Container {
	c := &Container{Logger: log}

	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	c.Registry = metrics.NewRegistry()
	c.Metrics = metrics.NewManager("notekeeper", "api", c.Registry)

	// 2. Event Bus
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{OutputChannelBuffer: 64},
		watermill.NopLogger{},
	)
	c.closers = append(c.closers, pubSub.Close)

	var sink service.EventSink
	if cfg.Events.NatsURL != "" {
		natsPub, err := pktNats.NewPublisher(cfg.Events.NatsURL)
		if err != nil {
			log.Warn(containerModule, "NATS unavailable, note events stay in process", map[string]interface{}{
				"url":   cfg.Events.NatsURL,
				"error": err,
			})
		}
		if natsPub != nil {
			sink = natsPub
			c.closers = append(c.closers, func() error { natsPub.Close(); return nil })
		}
	}

	// 3. Token revocation
	var revocations tokenstore.RevocationStore = tokenstore.NewMemoryStore()
	if cfg.Auth.RedisURL != "" {
		if rdb := newRedisClient(cfg.Auth.RedisURL, log); rdb != nil {
			revocations = tokenstore.NewRedisStore(rdb)
			c.closers = append(c.closers, rdb.Close)
		}
	}

	// 4. Services
	publisher := service.NewNoteEventPublisher(cfg.Events.NoteTopic, pubSub)
	c.NoteService = service.NewNoteService(uowFactory, publisher, c.Metrics, log)
	c.AuthService = service.NewAuthService(uowFactory, revocations, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, log)
	c.EventRelay = service.NewNoteEventRelay(pubSub, cfg.Events.NoteTopic, sink, c.Metrics, log)

	// 5. Controllers
	sessions := session.New(session.Config{
		KeyLookup:      "cookie:notekeeper_session",
		CookieHTTPOnly: true,
		CookieSecure:   cfg.IsProduction(),
		CookieSameSite: "Lax",
		Expiration:     time.Hour,
	})
	c.NoteController = controller.NewNoteController(c.NoteService)
	c.AuthController = controller.NewAuthController(c.AuthService, cfg.IsProduction())
	c.NotePageController = controller.NewNotePageController(c.NoteService, c.AuthService, sessions, cfg.IsProduction(), log)

	return c
}

func newRedisClient(url string, log logger.ILogger) *redis.Client {
	opt, err := redis.ParseURL(url)
	if err != nil {
		log.Warn(containerModule, "Invalid REDIS_URL, using it as a plain address", map[string]interface{}{"error": err})
		opt = &redis.Options{Addr: url}
	}
	rdb := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Warn(containerModule, "Redis unreachable, token revocations kept in memory", map[string]interface{}{"error": err})
		_ = rdb.Close()
		return nil
	}
	return rdb
}

// Close releases the event bus and external connections.
func (c *Container) Close() error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
