package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration loaded from environment.
type Config struct {
	DB struct {
		DSN string
	}
	API struct {
		Port     string
		BasePath string
		Mode     string
	}
	Logging struct {
		Dir   string
		Level string
	}
	Scan struct {
		Schedule    string
		DedupWindow time.Duration
		Timezone    string
		Locale      string
		LockTTL     time.Duration
	}
	Kafka struct {
		Broker string
		Topic  string
	}
	Redis struct {
		Addr     string
		Password string
		DB       int
	}
	Telegram struct {
		BotToken  string
		Chats     map[string]int64
		RateLimit int
	}
}

// Load reads environment variables, applies defaults, and returns a Config.
func Load() (Config, error) {
	// Load .env if present
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("failed to load .env file: %w", err)
	}

	var cfg Config

	cfg.DB.DSN = os.Getenv("DB_DSN")

	// API settings
	cfg.API.Port = os.Getenv("API_PORT")
	cfg.API.BasePath = os.Getenv("API_BASE_PATH")
	cfg.API.Mode = os.Getenv("GIN_MODE")

	cfg.Logging.Dir = os.Getenv("LOG_DIR")
	cfg.Logging.Level = os.Getenv("LOG_LEVEL")

	// Scan settings
	cfg.Scan.Schedule = os.Getenv("SCAN_SCHEDULE")
	cfg.Scan.Timezone = os.Getenv("TIMEZONE")
	cfg.Scan.Locale = os.Getenv("LOCALE")
	var err error
	if cfg.Scan.DedupWindow, err = durationEnv("DEDUP_WINDOW"); err != nil {
		return Config{}, err
	}
	if cfg.Scan.LockTTL, err = durationEnv("SCAN_LOCK_TTL"); err != nil {
		return Config{}, err
	}

	cfg.Kafka.Broker = os.Getenv("KAFKA_BROKER")
	cfg.Kafka.Topic = os.Getenv("KAFKA_TOPIC")

	cfg.Redis.Addr = os.Getenv("REDIS_ADDR")
	cfg.Redis.Password = os.Getenv("REDIS_PASSWORD")
	if v := os.Getenv("REDIS_DB"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid REDIS_DB %q: %w", v, err)
		}
		cfg.Redis.DB = n
	}

	// Telegram settings
	cfg.Telegram.BotToken = os.Getenv("TELEGRAM_BOT_TOKEN")
	if cfg.Telegram.Chats, err = parseChats(os.Getenv("TELEGRAM_CHATS")); err != nil {
		return Config{}, err
	}
	if rl, err := strconv.Atoi(os.Getenv("TELEGRAM_RATE_LIMIT")); err == nil {
		cfg.Telegram.RateLimit = rl
	}

	// Validate required settings
	missing := []string{}
	if cfg.DB.DSN == "" {
		missing = append(missing, "DB_DSN")
	}
	if len(missing) > 0 {
		return Config{}, fmt.Errorf("missing required configurations: %v", missing)
	}

	applyDefaults(&cfg)
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.API.Port == "" {
		cfg.API.Port = ":8080"
	}
	if cfg.API.BasePath == "" {
		cfg.API.BasePath = "/api/v1"
	}
	if cfg.Logging.Dir == "" {
		cfg.Logging.Dir = "logs"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Scan.Schedule == "" {
		cfg.Scan.Schedule = "@every 1h"
	}
	if cfg.Scan.DedupWindow == 0 {
		cfg.Scan.DedupWindow = 24 * time.Hour
	}
	if cfg.Scan.Timezone == "" {
		cfg.Scan.Timezone = "Local"
	}
	if cfg.Scan.Locale == "" {
		cfg.Scan.Locale = "en-IN"
	}
	if cfg.Scan.LockTTL == 0 {
		cfg.Scan.LockTTL = 10 * time.Minute
	}
	if cfg.Kafka.Topic == "" {
		cfg.Kafka.Topic = "order_notifications"
	}
	if cfg.Telegram.RateLimit == 0 {
		cfg.Telegram.RateLimit = 20
	}
}

// Location resolves the configured scan time zone.
func (c Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Scan.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", c.Scan.Timezone, err)
	}
	return loc, nil
}

func durationEnv(key string) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return d, nil
}

// parseChats reads "userID:chatID" pairs separated by commas.
func parseChats(raw string) (map[string]int64, error) {
	chats := make(map[string]int64)
	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		userID, chat, ok := strings.Cut(pair, ":")
		if !ok || strings.TrimSpace(userID) == "" {
			return nil, fmt.Errorf("invalid TELEGRAM_CHATS entry %q", pair)
		}
		chatID, err := strconv.ParseInt(strings.TrimSpace(chat), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid chat id in TELEGRAM_CHATS entry %q: %w", pair, err)
		}
		chats[strings.TrimSpace(userID)] = chatID
	}
	return chats, nil
}
