package main

import (
	"log"
	"net/http"

	_ "homesite/docs" // swagger docs

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"homesite/internal/auth"
	"homesite/internal/cache"
	"homesite/internal/config"
	"homesite/internal/db"
	"homesite/internal/handler"
	"homesite/internal/model"
	"homesite/internal/repository"
	"homesite/internal/router"
	"homesite/internal/service"
)

// @title Homesite API
// @version 1.0
// @description Personal site backend: accounts with cookie sessions, a shared todo board, a review board and a cookie demo.
// @host localhost:8080
// @BasePath /api
// @schemes http
func main() {
	cfg := config.Load()

	e := echo.New()
	e.Use(echomw.RequestID())

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("database init: %v", err)
	}

	// Run migrations for all models
	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.Todo{},
		&model.Feedback{},
	); err != nil {
		log.Fatalf("auto-migrate: %v", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPass,
		DB:       cfg.RedisDB,
	})
	cacheClient := cache.NewFromClient(redisClient)

	// Initialize repositories
	userRepo := repository.NewUserRepository(gormDB)
	todoRepo := repository.NewTodoRepository(gormDB)
	feedbackRepo := repository.NewFeedbackRepository(gormDB)

	// Initialize session components
	tokens := auth.NewTokenService(cfg.SessionSecret, cfg.SessionTTL, cfg.RememberTTL)
	sessions := auth.NewSessionStore(redisClient)

	// Initialize services
	identity := service.NewIdentityService(userRepo, tokens, sessions, cacheClient, cfg.RevokeSessionsOnPasswordChange)
	todos := service.NewTodoService(todoRepo)
	feedback := service.NewFeedbackService(feedbackRepo)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(identity, cfg.RememberTTL, cfg.SecureCookies)
	accountHandler := handler.NewAccountHandler(identity)
	userHandler := handler.NewUserHandler(identity)
	todoHandler := handler.NewTodoHandler(todos)
	feedbackHandler := handler.NewFeedbackHandler(feedback)
	cookieHandler := handler.NewCookieHandler()

	// Register routes
	router.Register(
		e,
		cfg,
		identity,
		authHandler,
		accountHandler,
		userHandler,
		todoHandler,
		feedbackHandler,
		cookieHandler,
	)

	addr := ":" + cfg.ServerPort
	if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server start: %v", err)
	}
}
