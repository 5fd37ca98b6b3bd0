package bootstrap

import (
	"context"
	"log"

	"ai-chatbot-be/internal/config"
	"ai-chatbot-be/internal/controller"
	"ai-chatbot-be/internal/pkg/logger"
	"ai-chatbot-be/internal/repository/memory"
	"ai-chatbot-be/internal/repository/unitofwork"
	"ai-chatbot-be/internal/service"
	"ai-chatbot-be/internal/websocket"
	"ai-chatbot-be/pkg/ocr"
	"ai-chatbot-be/pkg/poster"
	"ai-chatbot-be/pkg/recommend"
	"ai-chatbot-be/pkg/risk"
	"ai-chatbot-be/pkg/translate"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	ChatController controller.IChatController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	// WebSockets
	WebSocketHub *websocket.Hub
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. Predictor Collaborators
	predictor := risk.NewHTTPPredictor(cfg.Services.PredictorBaseURL)
	extractor := ocr.NewHTTPExtractor(cfg.Services.OcrBaseURL)

	var translator translate.Translator = translate.Noop{}
	if cfg.Services.TranslatorBaseURL != "" {
		translator = translate.NewHTTPTranslator(cfg.Services.TranslatorBaseURL, cfg.Keys.Translator)
	} else {
		log.Println("[WARN] TRANSLATOR_BASE_URL not set, Persian queries fall back to dictionary matching only")
	}

	posters := poster.NewTMDBClient(cfg.Keys.TMDB)

	catalog, err := recommend.LoadCatalog(cfg.Services.MovieCatalogPath)
	if err != nil {
		log.Fatalf("[FATAL] Failed to load movie catalog: %v", err)
	}
	resolver := recommend.NewResolver(catalog, translator, posters, nil)

	// Initialize In-Memory Session Storage
	sessionRepo := memory.NewSessionRepository()

	// 3.5 Infrastructure
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

	// WebSocket Hub
	wsLogger := logger.NewIsolatedLogger("logs/transcript.log")
	wsHub := websocket.NewHub(rdb, wsLogger)
	go wsHub.Run()

	// 4. Services
	publisherService := service.NewPublisherService(cfg.App.ArchiveTopic, pubSub)
	consumerService := service.NewConsumerService(
		pubSub,
		cfg.App.ArchiveTopic,
		uowFactory,
	)

	chatService := service.NewChatService(
		sessionRepo,
		uowFactory,
		predictor,
		resolver,
		extractor,
		publisherService,
		wsHub,
		sysLogger,
	)

	// 5. Controllers
	return &Container{
		WebSocketHub:    wsHub,
		ChatController:  controller.NewChatController(chatService, wsHub),
		ConsumerService: consumerService,
	}
}
