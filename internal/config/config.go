package config

import (
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// Config holds every runtime setting of the service.
type Config struct {
	AppName  string `mapstructure:"APP_NAME"`
	AppPort  string `mapstructure:"APP_PORT"`
	LogLevel string `mapstructure:"LOG_LEVEL"`

	// Database
	DBDriver string `mapstructure:"DB_DRIVER"` // postgres or sqlite
	DBDSN    string `mapstructure:"DB_DSN"`

	JWTSecret string `mapstructure:"JWT_SECRET"`

	// RabbitMQ; an empty URL disables event publishing
	RabbitMQURL    string `mapstructure:"RABBITMQ_URL"`
	EventsExchange string `mapstructure:"EVENTS_EXCHANGE"`
	EventsQueue    string `mapstructure:"EVENTS_QUEUE"`

	// Redis; an empty address disables the tracking cache
	RedisAddr        string        `mapstructure:"REDIS_ADDR"`
	RedisPassword    string        `mapstructure:"REDIS_PASSWORD"`
	RedisDB          int           `mapstructure:"REDIS_DB"`
	TrackingCacheTTL time.Duration `mapstructure:"TRACKING_CACHE_TTL"`

	// Push notifications; an empty server key disables delivery
	FCMURL        string        `mapstructure:"FCM_URL"`
	FCMServerKey  string        `mapstructure:"FCM_SERVER_KEY"`
	NotifyTimeout time.Duration `mapstructure:"NOTIFY_TIMEOUT"`

	SeedDemoData bool `mapstructure:"SEED_DEMO_DATA"`
}

// LoadConfig reads app.env from path if present, then environment variables,
// falling back to defaults.
func LoadConfig(path string) (config Config, err error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("app")
	v.SetConfigType("env")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err = v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Info().Msg("No config file found, using environment variables and defaults.")
			err = nil
		} else {
			log.Error().Err(err).Msg("Error reading config file")
			return
		}
	}

	err = v.Unmarshal(&config)
	return
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_NAME", "apotek")
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("LOG_LEVEL", "info")

	v.SetDefault("DB_DRIVER", "sqlite")
	v.SetDefault("DB_DSN", "file:apotek.db?cache=shared")

	v.SetDefault("JWT_SECRET", "change_me")

	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("EVENTS_EXCHANGE", "apotek.events")
	v.SetDefault("EVENTS_QUEUE", "apotek_order_events")

	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("TRACKING_CACHE_TTL", "30s")

	v.SetDefault("FCM_URL", "https://fcm.googleapis.com/fcm/send")
	v.SetDefault("FCM_SERVER_KEY", "")
	v.SetDefault("NOTIFY_TIMEOUT", "5s")

	v.SetDefault("SEED_DEMO_DATA", false)
}
