package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/yourusername/edu-api/internal/config"
	"github.com/yourusername/edu-api/internal/domain/repository"
	"github.com/yourusername/edu-api/internal/handler"
	"github.com/yourusername/edu-api/internal/middleware"
	pgRepo "github.com/yourusername/edu-api/internal/repository/postgres"
	redisRepo "github.com/yourusername/edu-api/internal/repository/redis"
	"github.com/yourusername/edu-api/internal/service"
	"github.com/yourusername/edu-api/internal/websocket"
	"github.com/yourusername/edu-api/pkg/auth"
	"github.com/yourusername/edu-api/pkg/database"
)

func main() {
	// Загружаем конфигурацию
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}
	log.Printf("Загрузка конфигурации из %s", configPath)

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Printf("Failed to load config: %v", err)
		os.Exit(1)
	}

	// Инициализируем подключение к PostgreSQL
	db, err := database.NewPostgresDB(cfg.Database)
	if err != nil {
		log.Printf("Failed to connect to database: %v", err)
		os.Exit(1)
	}

	// Применяем миграции
	if err := database.MigrateDB(db, cfg.Database.MigrationsPath); err != nil {
		log.Printf("Failed to migrate database: %v", err)
		os.Exit(1)
	}

	sqlDB, err := database.GetSQLDB(db)
	if err != nil {
		log.Printf("Failed to get sql.DB: %v", err)
		os.Exit(1)
	}

	// Redis нужен для кэша вопросов, лимитов и публикации уведомлений
	redisClient, err := database.NewUniversalRedisClient(cfg.Redis)
	if err != nil {
		log.Printf("Failed to connect to Redis: %v", err)
		os.Exit(1)
	}
	log.Println("Successfully connected to Redis")

	// Инициализируем репозитории
	courseRepo := pgRepo.NewCourseRepo(db)
	testRepo := pgRepo.NewTestRepo(db)
	questionRepo := pgRepo.NewQuestionRepo(db)
	attemptRepo := pgRepo.NewAttemptRepo(db)
	notificationRepo := pgRepo.NewNotificationRepo(db)

	cacheRepo, err := redisRepo.NewCacheRepo(redisClient)
	if err != nil {
		log.Printf("Failed to initialize CacheRepo: %v", err)
		os.Exit(1)
	}

	// При отключенной публикации уведомления только сохраняются, поток по WebSocket не поднимается
	var publisher repository.NotificationPublisher = redisRepo.NoOpPublisher{}
	var notificationStream *websocket.NotificationStream
	if cfg.Notifications.PublishEnabled {
		notificationPublisher, err := redisRepo.NewNotificationPublisher(redisClient, cfg.Notifications.ChannelPrefix)
		if err != nil {
			log.Printf("Failed to initialize NotificationPublisher: %v", err)
			os.Exit(1)
		}
		publisher = notificationPublisher
		notificationStream = websocket.NewNotificationStream(notificationPublisher, cfg.Server.AllowedOrigins, websocket.DefaultClientConfig())
	}

	// Инициализируем сервисы
	notificationService := service.NewNotificationService(notificationRepo, publisher)
	attemptService := service.NewAttemptService(attemptRepo, testRepo, courseRepo)
	courseService := service.NewCourseService(courseRepo, notificationService)
	testService := service.NewTestService(testRepo, courseRepo, questionRepo, attemptRepo, attemptService, notificationService)
	questionService := service.NewQuestionService(questionRepo, testRepo, attemptRepo, cacheRepo)
	userService := service.NewUserService(courseRepo, testRepo, attemptRepo)

	jwtService, err := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.Leeway(), cfg.JWT.ExpirationHrs, cfg.JWT.Issuer)
	if err != nil {
		log.Printf("Failed to initialize JWTService: %v", err)
		os.Exit(1)
	}

	handlers := handler.Handlers{
		Course:       handler.NewCourseHandler(courseService),
		Test:         handler.NewTestHandler(testService),
		Attempt:      handler.NewAttemptHandler(attemptService),
		Question:     handler.NewQuestionHandler(questionService),
		Notification: handler.NewNotificationHandler(notificationService, notificationStream),
		User:         handler.NewUserHandler(userService),
	}

	var limiter *middleware.RateLimiter
	if cfg.RateLimit.Enabled {
		limiter = middleware.NewRateLimiter(redisClient)
	}

	isProduction := os.Getenv("GIN_MODE") == "release"

	router := gin.Default()

	// В production не доверяем прокси-заголовкам (защита от IP spoofing)
	if isProduction {
		if err := router.SetTrustedProxies(nil); err != nil {
			log.Printf("Warning: failed to set trusted proxies: %v", err)
		}
	} else {
		if err := router.SetTrustedProxies([]string{"127.0.0.1", "::1"}); err != nil {
			log.Printf("Warning: failed to set trusted proxies: %v", err)
		}
	}

	router.Use(middleware.RequestID())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/health", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := sqlDB.PingContext(ctx); err != nil {
			c.String(http.StatusServiceUnavailable, "DB unavailable")
			return
		}
		c.String(http.StatusOK, "OK")
	})

	api := router.Group("/api")
	api.Use(limiter.LimitByIP(middleware.GlobalRateLimitConfig(
		cfg.RateLimit.GlobalMaxRequests,
		time.Duration(cfg.RateLimit.GlobalWindowSec)*time.Second,
	)))
	handler.RegisterRoutes(api, handlers, handler.RouteOptions{
		Auth:    middleware.NewAuthMiddleware(jwtService),
		Limiter: limiter,
		AttemptLimit: middleware.AttemptRateLimitConfig(
			cfg.RateLimit.AttemptMaxRequests,
			time.Duration(cfg.RateLimit.AttemptWindowSec)*time.Second,
		),
	})

	// Настраиваем HTTP сервер с тайм-аутами для защиты от slow client attacks
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	if err := redisClient.Close(); err != nil {
		log.Printf("Error closing Redis client: %v", err)
	}
	if err := sqlDB.Close(); err != nil {
		log.Printf("Error closing database: %v", err)
	}

	log.Println("Server exited properly")
}
