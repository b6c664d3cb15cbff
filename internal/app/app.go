package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"jobboard_backend/database"
	"jobboard_backend/internal/auth"
	"jobboard_backend/internal/config"
	"jobboard_backend/internal/handlers"
	"jobboard_backend/internal/logger"
	"jobboard_backend/internal/metrics"
	"jobboard_backend/internal/middleware"
	"jobboard_backend/internal/ratelimit"
	"jobboard_backend/internal/realtime"
	"jobboard_backend/internal/repositories"
	"jobboard_backend/internal/repositories/memory"
	"jobboard_backend/internal/routes"
	"jobboard_backend/internal/services"
	"jobboard_backend/internal/validator"
	"jobboard_backend/internal/workers"
	"jobboard_backend/pkg/apperrors"
	"jobboard_backend/ws"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// Repositories - хранилища, выбранные по storage.driver
type Repositories struct {
	Jobs         repositories.JobRepository
	Applications repositories.ApplicationRepository
	Messages     repositories.MessageRepository
	// Check проверяет доступность хранилища для /health; nil - проверять нечего
	Check func(ctx context.Context) error
}

// App - собранное приложение
type App struct {
	Router   *gin.Engine
	Tokens   *auth.TokenManager
	Hub      *realtime.Hub
	Manager  *ws.WebSocketManager
	Services *services.ServiceContainer
}

func Run() {
	cfg := config.GetConfig()
	logger.Init(cfg.Server.Env)
	logger.Info("Logger initialized", "env", cfg.Server.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repos, err := OpenRepositories(cfg)
	if err != nil {
		logger.Fatal("Failed to initialize storage", "error", err)
	}
	logger.Info("Storage initialized", "driver", cfg.Storage.Driver)

	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Fatal("Redis unavailable", "addr", cfg.Redis.Addr, "error", err)
		}
		defer redisClient.Close()
		logger.Info("Redis connected", "addr", cfg.Redis.Addr)
	}

	application := New(ctx, cfg, repos, redisClient)

	srv := &http.Server{
		Addr:    cfg.Address(),
		Handler: application.Router,
	}
	go func() {
		logger.Info("Server starting", "address", cfg.Address())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server startup error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}
}

// OpenRepositories подключает memory или postgres
func OpenRepositories(cfg *config.Config) (*Repositories, error) {
	switch cfg.Storage.Driver {
	case config.StorageDriverMemory:
		store := memory.NewStore()
		return &Repositories{
			Jobs:         memory.NewJobRepository(store),
			Applications: memory.NewApplicationRepository(store),
			Messages:     memory.NewMessageRepository(store),
		}, nil

	case config.StorageDriverPostgres:
		db, err := database.Connect(cfg.Database.DSN)
		if err != nil {
			return nil, err
		}
		if cfg.Database.AutoMigrate {
			if err := database.AutoMigrate(db); err != nil {
				return nil, err
			}
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		return &Repositories{
			Jobs:         repositories.NewJobRepository(db),
			Applications: repositories.NewApplicationRepository(db),
			Messages:     repositories.NewMessageRepository(db),
			Check:        sqlDB.PingContext,
		}, nil

	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

// New собирает сервисы, хэндлеры и роутер. Фоновые горутины живут до отмены ctx.
// redisClient == nil - брокер и лимитер работают внутри процесса.
func New(ctx context.Context, cfg *config.Config, repos *Repositories, redisClient *redis.Client) *App {
	apperrors.Debug = cfg.Server.Env != "production"

	hub := realtime.NewHub()
	var broker realtime.Broker = hub
	if redisClient != nil {
		redisBroker := realtime.NewRedisBroker(redisClient, hub, cfg.Redis.Prefix)
		go redisBroker.Run(ctx)
		broker = redisBroker
	}

	manager := ws.NewWebSocketManager()
	go manager.Run(ctx)

	serviceContainer := initializeServices(ctx, cfg, repos, broker, redisClient, manager)
	appHandlers := initializeHandlers(serviceContainer, repos)
	wsHandler := ws.NewWebSocketHandler(
		manager,
		serviceContainer.ChatService,
		serviceContainer.NotificationService,
		cfg.CORS.AllowedOrigins,
	)

	tokens := auth.NewTokenManager(cfg.JWT.Secret, cfg.TokenTTL())
	ginRouter := initializeGinRouter(cfg)
	routes.RegisterRoutes(ginRouter, appHandlers, wsHandler, middleware.AuthMiddleware(tokens))

	return &App{
		Router:   ginRouter,
		Tokens:   tokens,
		Hub:      hub,
		Manager:  manager,
		Services: serviceContainer,
	}
}

func initializeServices(
	ctx context.Context,
	cfg *config.Config,
	repos *Repositories,
	broker realtime.Broker,
	redisClient *redis.Client,
	manager *ws.WebSocketManager,
) *services.ServiceContainer {
	v := validator.New()

	jobService := services.NewJobService(repos.Jobs, broker, v)
	applicationService := services.NewApplicationService(repos.Applications, repos.Jobs, broker, v)
	chatService := services.NewChatService(repos.Applications, repos.Messages, broker, services.ChatOptions{
		MaxMessageLength: cfg.Chat.MaxMessageLength,
		Limiter:          newSendLimiter(ctx, cfg, redisClient),
		Notifier:         services.Notifiers{services.LogNotifier{}, manager},
	})
	notificationService := services.NewNotificationService(applicationService, repos.Applications, repos.Messages, broker)

	return &services.ServiceContainer{
		JobService:          jobService,
		ApplicationService:  applicationService,
		ChatService:         chatService,
		NotificationService: notificationService,
	}
}

// newSendLimiter: redis - общий лимит для всех инстансов, иначе token bucket в процессе
func newSendLimiter(ctx context.Context, cfg *config.Config, redisClient *redis.Client) ratelimit.Limiter {
	if cfg.Chat.SendRate <= 0 {
		return nil
	}
	burst := cfg.Chat.SendBurst
	if burst <= 0 {
		burst = 1
	}

	if redisClient != nil {
		window := time.Duration(float64(burst) / cfg.Chat.SendRate * float64(time.Second))
		return ratelimit.NewRedisLimiter(redisClient, burst, window, cfg.Redis.Prefix)
	}

	limiter := ratelimit.NewLocalLimiter(cfg.Chat.SendRate, burst)
	workers.NewLimiterCleanupWorker(limiter, time.Minute).Start(ctx)
	return limiter
}

func initializeHandlers(container *services.ServiceContainer, repos *Repositories) *handlers.AppHandlers {
	baseHandler := handlers.NewBaseHandler(validator.New())

	return &handlers.AppHandlers{
		JobHandler:         handlers.NewJobHandler(baseHandler, container.JobService),
		ApplicationHandler: handlers.NewApplicationHandler(baseHandler, container.ApplicationService, container.NotificationService),
		ChatHandler:        handlers.NewChatHandler(baseHandler, container.ChatService),
		HealthHandler:      handlers.NewHealthHandler(repos.Check),
	}
}

func initializeGinRouter(cfg *config.Config) *gin.Engine {
	switch cfg.Server.Env {
	case "production":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(metrics.GinMiddleware())
	router.Use(middleware.CORSMiddleware(cfg.CORS.AllowedOrigins))
	return router
}
