package config

import (
	"fmt"
	"os"
	"time"
)

// Hub tunables.
const (
	// WriteWait is the deadline for a single socket write.
	WriteWait = 10 * time.Second
	// PongWait bounds how long a connection may stay silent before it is
	// considered dead.
	PongWait   = 60 * time.Second
	PingPeriod = (PongWait * 9) / 10
	// AuthWait bounds how long an upgraded connection may stay
	// unauthenticated before the server closes it.
	AuthWait = 15 * time.Second

	MaxMessageSize = 4096
	SendBufferSize = 256
)

// NotificationsChannel is the Redis Pub/Sub channel carrying cross-node
// notification fan-out.
const NotificationsChannel = "mindcare:notifications"

// PresenceKey is the Redis set mirroring the in-memory online-user set.
const PresenceKey = "presence:online"

// Config holds everything read from the environment at startup.
type Config struct {
	HTTPAddr  string
	JWTSecret string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	RedisAddr     string
	RedisPassword string

	TelegramBotToken    string
	TelegramAdminChatID string
}

// Load reads the configuration from the environment. Only the JWT secret is
// mandatory; everything else has a local-development default.
func Load() (*Config, error) {
	cfg := &Config{
		HTTPAddr:  getenv("HTTP_ADDR", ":8080"),
		JWTSecret: os.Getenv("JWT_SECRET"),

		DBHost:     getenv("DB_HOST", "localhost"),
		DBPort:     getenv("DB_PORT", "5432"),
		DBUser:     getenv("DB_USER", "mindcare"),
		DBPassword: getenv("DB_PASSWORD", "mindcare"),
		DBName:     getenv("DB_NAME", "mindcare"),

		RedisAddr:     getenv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		TelegramBotToken:    os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramAdminChatID: os.Getenv("TELEGRAM_ADMIN_CHAT_ID"),
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is not set")
	}
	return cfg, nil
}

// DSN builds the PostgreSQL connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort)
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
