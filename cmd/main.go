package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"mindcare/backend/internal/alerts"
	"mindcare/backend/internal/api/handler"
	"mindcare/backend/internal/auth"
	"mindcare/backend/internal/config"
	"mindcare/backend/internal/metrics"
	"mindcare/backend/internal/models"
	"mindcare/backend/internal/realtime"
	"mindcare/backend/internal/storage"
)

func setupDependencies(cfg *config.Config) (*gorm.DB, *redis.Client) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect PostgreSQL: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	})
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Fatalf("Failed to connect Redis: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.Appointment{},
		&models.ChatMessage{},
		&models.Notification{},
	)
	if err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Database and Redis connections established, migrations complete.")
	return db, rdb
}

func main() {
	log.Println("Starting MindCare realtime backend...")

	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Error loading .env file")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	db, rdb := setupDependencies(cfg)
	store := storage.NewService(db, rdb)

	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	hub := realtime.NewHub(store, collector)
	authenticator := auth.NewJWTAuthenticator(cfg.JWTSecret)

	go hub.Run()
	go hub.RunNotificationListener(store.SubscribeNotifications())

	if cfg.TelegramBotToken != "" && cfg.TelegramAdminChatID != "" {
		notifier, err := alerts.NewNotifier(cfg.TelegramBotToken, cfg.TelegramAdminChatID)
		if err != nil {
			log.Fatalf("Failed to start alert bridge: %v", err)
		}
		go notifier.Run(store.SubscribeNotifications())
	}

	r := gin.Default()
	h := handler.NewHandler(hub, store, authenticator)

	r.GET("/ws", h.ServeWebSocket)
	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/metrics", gin.WrapH(metrics.Handler(registry)))

	api := r.Group("/api", h.AuthRequired())
	{
		api.GET("/notifications", h.ListNotifications)
		api.PUT("/notifications/:id/read", h.MarkNotificationRead)
		api.DELETE("/notifications/:id", h.DeleteNotification)
		api.GET("/appointments/:id/messages", h.GetChatHistory)
	}

	internal := r.Group("/internal", h.AuthRequired(), h.AdminRequired())
	{
		internal.POST("/notifications", h.DispatchNotification)
	}

	server := &http.Server{
		Addr:           cfg.HTTPAddr,
		Handler:        r,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	log.Fatal(server.ListenAndServe())
}
