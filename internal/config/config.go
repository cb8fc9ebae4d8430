package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// DotEnvFile is read before the environment if it exists. Variables already
// present in the environment win.
const DotEnvFile = ".env"

const (
	PlatformDiscord  = "discord"
	PlatformTelegram = "telegram"

	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
)

// Config holds application configuration loaded from environment variables.
type Config struct {
	BotToken      string `envconfig:"BOT_TOKEN" required:"true" validate:"required"`
	Platform      string `envconfig:"PLATFORM" default:"discord" validate:"oneof=discord telegram"`
	ApplicationID string `envconfig:"APPLICATION_ID"`
	InvitationURL string `envconfig:"INVITATION_URL" default:"https://discord.com/api/oauth2/authorize?client_id=YOUR_CLIENT_ID"`

	StoreDriver string `envconfig:"STORE_DRIVER" default:"sqlite" validate:"oneof=sqlite postgres"`
	DBPath      string `envconfig:"DB_PATH" default:"./data/calendar.db"`
	PostgresDSN string `envconfig:"POSTGRES_DSN" validate:"required_if=StoreDriver postgres"`

	// Redis backs the optional sent-marker; empty disables it.
	RedisAddr     string        `envconfig:"REDIS_ADDR"`
	RedisPassword string        `envconfig:"REDIS_PASSWORD"`
	RedisDB       int           `envconfig:"REDIS_DB" default:"0" validate:"gte=0"`
	SentMarkerTTL time.Duration `envconfig:"SENT_MARKER_TTL" default:"72h" validate:"gte=0"`

	NotifyInterval time.Duration `envconfig:"NOTIFY_INTERVAL" default:"60s" validate:"gt=0"`
	LogLevel       string        `envconfig:"LOG_LEVEL" default:"info"`  // debug|info|warn|error
	HTTPAddr       string        `envconfig:"HTTP_ADDR" default:":8080"` // healthz + metrics
}

// Load reads environment variables into Config and validates the result.
func Load() (Config, error) {
	var cfg Config
	if err := loadDotEnv(DotEnvFile); err != nil {
		return cfg, err
	}
	if err := envconfig.Process("", &cfg); err != nil {
		return cfg, err
	}
	if err := validator.New().Struct(cfg); err != nil {
		return cfg, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("load %s: %w", path, err)
}
