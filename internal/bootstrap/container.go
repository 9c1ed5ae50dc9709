package bootstrap

import (
	"context"
	"fmt"
	"log"
	"time"

	"companion-bot-be/internal/config"
	"companion-bot-be/internal/controller"
	"companion-bot-be/internal/handler"
	"companion-bot-be/internal/pkg/logger"
	"companion-bot-be/internal/pkg/serverutils"
	"companion-bot-be/internal/repository/contract"
	"companion-bot-be/internal/repository/implementation"
	"companion-bot-be/internal/repository/memory"
	redisRepo "companion-bot-be/internal/repository/redis"
	"companion-bot-be/internal/service"
	"companion-bot-be/internal/websocket"
	"companion-bot-be/pkg/dialogue"
	"companion-bot-be/pkg/knowledge"
	pktNats "companion-bot-be/pkg/nats"
	"companion-bot-be/pkg/random"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	Logger logger.ILogger

	// Controllers
	CompanionController controller.ICompanionController
	ArchiveController   controller.IArchiveController // nil without an archive database

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService
	NatsSubscriber  *pktNats.Subscriber // nil when NATS is not configured

	// WebSockets
	CompanionHandler *handler.CompanionHandler
	WebSocketHub     *websocket.Hub

	closers []func()
}

// NewContainer wires the application. db may be nil, in which case ended conversations are only logged.
func NewContainer(db *gorm.DB, cfg *config.Config) (*Container, error) {
	c := &Container{}

	// 1. Logging
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())
	chatLogger := logger.NewIsolatedLogger(cfg.App.ChatLogFilePath)
	c.Logger = sysLogger

	// 2. Knowledge base
	kb, warnings, err := loadKnowledgeBase(cfg.Companion.KnowledgeBaseDir)
	if err != nil {
		return nil, err
	}
	for _, w := range warnings {
		sysLogger.Warn("KnowledgeBase", w, nil)
	}
	sysLogger.Info("KnowledgeBase", "Knowledge base loaded", map[string]interface{}{
		"moods":    kb.MoodNames(),
		"triggers": kb.TriggerNames(),
	})

	dialogueController := dialogue.NewController(kb, random.New(cfg.Companion.RandomSeed), sysLogger)

	// 3. Redis (session store and cross-instance websocket delivery)
	rdb := connectRedis(cfg)
	if rdb != nil {
		c.closers = append(c.closers, func() { rdb.Close() })
	}

	var sessionRepo contract.SessionRepository
	switch cfg.Session.Store {
	case config.SessionStoreRedis:
		if rdb == nil {
			return nil, fmt.Errorf("session store %q requires a reachable REDIS_URL", cfg.Session.Store)
		}
		sessionRepo = redisRepo.NewSessionRepository(rdb, cfg.Session.TTL)
	default:
		sessionRepo = memory.NewSessionRepository(cfg.Session.TTL)
	}
	log.Printf("[INFO] Using session store: %s", cfg.Session.Store)

	// 4. Event Bus
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NewStdLogger(false, false))
	c.closers = append(c.closers, func() { pubSub.Close() })

	var external service.EventPublisher
	if cfg.App.NatsURL != "" {
		natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
		if err != nil {
			log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
		} else {
			external = natsPub
			c.closers = append(c.closers, natsPub.Close)
		}

		natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
		if err != nil {
			log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
		} else {
			c.NatsSubscriber = natsSub
			c.closers = append(c.closers, natsSub.Close)
		}
	}

	var archiveRepo contract.ConversationArchiveRepository
	if db != nil {
		archiveRepo = implementation.NewConversationArchiveRepository(db)
	}

	// 5. Services
	publisherService := service.NewPublisherService(cfg.Companion.EventsTopic, pubSub, external, sysLogger)
	c.ConsumerService = service.NewConsumerService(pubSub, cfg.Companion.EventsTopic, archiveRepo, sysLogger)
	companionService := service.NewCompanionService(dialogueController, sessionRepo, publisherService, sysLogger)

	// 6. Transport
	auth := serverutils.NewJwtMiddleware(cfg.Keys.JWTSecret)
	c.WebSocketHub = websocket.NewHub(rdb, chatLogger)
	c.CompanionHandler = handler.NewCompanionHandler(companionService, c.WebSocketHub, auth, cfg.Companion.ThinkingDelay, chatLogger)
	c.CompanionController = controller.NewCompanionController(companionService, auth)
	if archiveRepo != nil {
		c.ArchiveController = controller.NewArchiveController(service.NewArchiveService(archiveRepo), auth)
	}

	c.closers = append(c.closers, func() {
		sysLogger.Sync()
		chatLogger.Sync()
	})
	return c, nil
}

// Close releases connections in reverse order of creation.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
}

func loadKnowledgeBase(dir string) (*knowledge.KnowledgeBase, []string, error) {
	if dir == "" {
		return knowledge.Default()
	}
	kb, warnings, err := knowledge.LoadDir(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("load knowledge base from %s: %w", dir, err)
	}
	return kb, warnings, nil
}

// connectRedis returns nil when redis is not configured or not reachable.
func connectRedis(cfg *config.Config) *redis.Client {
	if cfg.App.RedisURL == "" {
		return nil
	}

	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{Addr: cfg.App.RedisURL}
	}
	rdb := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
		rdb.Close()
		return nil
	}
	return rdb
}
