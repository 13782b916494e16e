package bootstrap

import (
	"context"
	"log"

	"chatlink-be/internal/config"
	"chatlink-be/internal/controller"
	"chatlink-be/internal/handler"
	"chatlink-be/internal/pkg/logger"
	"chatlink-be/internal/pkg/mailer"
	"chatlink-be/internal/pkg/serverutils"
	"chatlink-be/internal/repository/memory"
	"chatlink-be/internal/repository/unitofwork"
	"chatlink-be/internal/service"
	"chatlink-be/internal/websocket"

	pktNats "chatlink-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	ChatRequestController  controller.IChatRequestController
	ConversationController controller.IConversationController

	// Background Services (Exposed for main.go to run)
	NotifierService service.INotifierService

	// WebSockets
	ChatHandler  *handler.ChatHandler
	WebSocketHub *websocket.Hub
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	emailService := mailer.NewEmailService(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Email,
		cfg.SMTP.Password,
		cfg.SMTP.SenderName,
	)

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 2.5 Infrastructure
	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
	}

	// Redis
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
	}

	// Auth collaborators
	verifier := serverutils.NewJWTVerifier(cfg.Auth.JWTSecret)
	profileRepo := memory.NewProfileRepository()
	jwtMiddleware := serverutils.NewJwtMiddleware(verifier, profileRepo)

	// 3. Services
	publisherService := service.NewPublisherService(cfg.Chat.RequestEventTopic, pubSub)
	presenceService := service.NewPresenceService()
	conversationService := service.NewConversationService(uowFactory)
	chatRequestService := service.NewChatRequestService(uowFactory, publisherService, sysLogger)

	// WebSocket Hub + Dispatcher
	wsLogger := logger.NewIsolatedLogger("logs/chat.log")
	registry := websocket.NewRegistry()
	wsHub := websocket.NewHub(registry, rdb, wsLogger)
	dispatcher := websocket.NewDispatcher(
		wsHub,
		registry,
		conversationService,
		presenceService,
		cfg.Chat.MaxMessageLength,
		wsLogger,
	)
	wsHub.SetDispatcher(dispatcher)
	go wsHub.Run()

	// Notifier (in-process bus -> NATS -> websocket/email)
	notifierService := service.NewNotifierService(
		pubSub,
		cfg.Chat.RequestEventTopic,
		natsPub,
		natsSub,
		wsHub,
		emailService,
		profileRepo,
		presenceService,
		sysLogger,
	)
	if natsSub != nil {
		go notifierService.Start()
	}

	// Handler
	chatHandler := handler.NewChatHandler(wsHub, verifier, wsLogger, profileRepo)

	// 4. Controllers
	return &Container{
		ChatRequestController:  controller.NewChatRequestController(chatRequestService, jwtMiddleware),
		ConversationController: controller.NewConversationController(conversationService, jwtMiddleware),

		NotifierService: notifierService,

		ChatHandler:  chatHandler,
		WebSocketHub: wsHub,
	}
}
