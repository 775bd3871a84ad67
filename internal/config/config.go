package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server    ServerConfig
	Logging   LoggingConfig
	Mongo     MongoConfig
	Security  SecurityConfig
	Redis     RedisConfig
	Kafka     KafkaConfig
	AI        AIConfig
	Websocket WebsocketConfig
}

type ServerConfig struct {
	Port           string
	PublicDir      string
	AllowedOrigins []string
	Production     bool
}

type LoggingConfig struct {
	Directory string
	Level     string
	Format    string
}

// MongoConfig points at the document store. An empty URI selects the in-memory store.
type MongoConfig struct {
	URI      string
	Database string
	Timeout  time.Duration
}

type SecurityConfig struct {
	TokenSecret   string
	TokenTTL      time.Duration
	GuestMode     bool
	GuestEmail    string
	GuestPassword string
}

// RedisConfig enables token revocation on logout when URL is set.
type RedisConfig struct {
	URL string
}

type KafkaConfig struct {
	Brokers            []string
	GroupID            string
	EventsTopic        string
	NotificationsTopic string
}

type AIConfig struct {
	BaseURL string
	Path    string
	APIKey  string
	Timeout time.Duration
}

type WebsocketConfig struct {
	SendBuffer int
}

var defaultOrigins = []string{
	"http://127.0.0.1:3000",
	"http://localhost:3000",
	"http://127.0.0.1:5173",
	"http://localhost:5173",
}

// Load reads the configuration from the process environment.
func Load() (*Config, error) {
	return load(os.Getenv)
}

func load(getenv func(string) string) (*Config, error) {
	var errs []error
	duration := func(key string, fallback time.Duration) time.Duration {
		raw := strings.TrimSpace(getenv(key))
		if raw == "" {
			return fallback
		}
		d, err := time.ParseDuration(raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
			return fallback
		}
		return d
	}
	boolean := func(key string) bool {
		raw := strings.TrimSpace(getenv(key))
		if raw == "" {
			return false
		}
		v, err := strconv.ParseBool(raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
		}
		return v
	}
	integer := func(key string, fallback int) int {
		raw := strings.TrimSpace(getenv(key))
		if raw == "" {
			return fallback
		}
		v, err := strconv.Atoi(raw)
		if err != nil || v <= 0 {
			errs = append(errs, fmt.Errorf("%s: expected positive integer, got %q", key, raw))
			return fallback
		}
		return v
	}

	production := strings.EqualFold(strings.TrimSpace(getenv("NODE_ENV")), "production") || boolean("PRODUCTION")

	cfg := &Config{
		Server: ServerConfig{
			Port:           valueOr(getenv("PORT"), "3030"),
			PublicDir:      valueOr(getenv("PUBLIC_DIR"), "public"),
			AllowedOrigins: splitList(getenv("ALLOWED_ORIGINS")),
			Production:     production,
		},
		Logging: LoggingConfig{
			Directory: valueOr(getenv("LOG_DIR"), "./logs"),
			Level:     valueOr(getenv("LOG_LEVEL"), "info"),
			Format:    valueOr(getenv("LOG_FORMAT"), "text"),
		},
		Mongo: MongoConfig{
			URI:      strings.TrimSpace(getenv("MONGO_URI")),
			Database: valueOr(getenv("MONGO_DB"), "kanban"),
			Timeout:  duration("MONGO_TIMEOUT", 10*time.Second),
		},
		Security: SecurityConfig{
			TokenSecret:   strings.TrimSpace(getenv("TOKEN_SECRET")),
			TokenTTL:      duration("TOKEN_TTL", 7*24*time.Hour),
			GuestMode:     boolean("GUEST_MODE"),
			GuestEmail:    strings.TrimSpace(getenv("GUEST_EMAIL")),
			GuestPassword: getenv("GUEST_PASSWORD"),
		},
		Redis: RedisConfig{URL: strings.TrimSpace(getenv("REDIS_URL"))},
		Kafka: KafkaConfig{
			Brokers:            splitList(firstNonEmpty(getenv("KAFKA_BROKERS"), getenv("KAFKA_BROKER"))),
			GroupID:            valueOr(getenv("KAFKA_GROUP_ID"), "kanban-api"),
			EventsTopic:        valueOr(getenv("KAFKA_EVENTS_TOPIC"), "board-events"),
			NotificationsTopic: valueOr(getenv("KAFKA_NOTIFICATIONS_TOPIC"), "user-notifications"),
		},
		AI: AIConfig{
			BaseURL: strings.TrimSpace(getenv("AI_BASE_URL")),
			Path:    valueOr(getenv("AI_GENERATE_PATH"), "/generate"),
			APIKey:  strings.TrimSpace(getenv("AI_API_KEY")),
			Timeout: duration("AI_TIMEOUT", 60*time.Second),
		},
		Websocket: WebsocketConfig{SendBuffer: integer("WS_SEND_BUFFER", 32)},
	}

	if len(cfg.Server.AllowedOrigins) == 0 {
		cfg.Server.AllowedOrigins = append([]string(nil), defaultOrigins...)
	}
	if cfg.Security.TokenSecret == "" {
		errs = append(errs, errors.New("TOKEN_SECRET is required"))
	}
	if cfg.Security.GuestMode && (cfg.Security.GuestEmail == "" || cfg.Security.GuestPassword == "") {
		errs = append(errs, errors.New("GUEST_MODE requires GUEST_EMAIL and GUEST_PASSWORD"))
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return cfg, nil
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func valueOr(raw, fallback string) string {
	if trimmed := strings.TrimSpace(raw); trimmed != "" {
		return trimmed
	}
	return fallback
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
