package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// DefaultOwner is stored as the owner of every contact when no principal is
// supplied with the request.
const DefaultOwner = "0x0A92DD7B30f0f57343AD99a151dBC37a3F3F95F3"

// DatabaseConfig holds the storage driver and connection pool settings.
type DatabaseConfig struct {
	Driver             string `validate:"required,oneof=postgres sqlite memory"`
	DSN                string `validate:"required_unless=Driver memory"`
	MaxOpenConns       int    `validate:"gte=0"`
	MaxIdleConns       int    `validate:"gte=0"`
	ConnMaxLifetimeSec int    `validate:"gte=0"`
}

// RabbitMQConfig holds the event publisher settings. An empty URL disables it.
type RabbitMQConfig struct {
	URL      string `validate:"omitempty,url"`
	Exchange string `validate:"required_with=URL"`
}

// Config is the service configuration.
type Config struct {
	AppPort      string `validate:"required"`
	AssetsDir    string `validate:"required"`
	DefaultOwner string `validate:"required"`
	JWTSecret    string
	BodyLimitMB  int    `validate:"gt=0"`
	LogLevel     string `validate:"oneof=debug info warn error"`
	LogFormat    string `validate:"oneof=json console"`
	Database     DatabaseConfig
	RabbitMQ     RabbitMQConfig
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("ASSETS_DIR", "assets")
	v.SetDefault("DEFAULT_OWNER", DefaultOwner)
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("BODY_LIMIT_MB", 10)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("DATABASE_DRIVER", "sqlite")
	v.SetDefault("DATABASE_DSN", "contacts.db")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_CONN_MAX_LIFETIME_SEC", 300)
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("RABBITMQ_EXCHANGE", "contacts")
}

// Load reads the configuration from defaults, an optional file named by
// CONFIG_FILE, and environment variables, in increasing precedence.
func Load(v *viper.Viper) (*Config, error) {
	SetDefaults(v)
	v.AutomaticEnv()

	if file := v.GetString("CONFIG_FILE"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", file, err)
		}
	}

	cfg := &Config{
		AppPort:      v.GetString("APP_PORT"),
		AssetsDir:    v.GetString("ASSETS_DIR"),
		DefaultOwner: v.GetString("DEFAULT_OWNER"),
		JWTSecret:    v.GetString("JWT_SECRET"),
		BodyLimitMB:  v.GetInt("BODY_LIMIT_MB"),
		LogLevel:     v.GetString("LOG_LEVEL"),
		LogFormat:    v.GetString("LOG_FORMAT"),
		Database: DatabaseConfig{
			Driver:             v.GetString("DATABASE_DRIVER"),
			DSN:                v.GetString("DATABASE_DSN"),
			MaxOpenConns:       v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:       v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetimeSec: v.GetInt("DB_CONN_MAX_LIFETIME_SEC"),
		},
		RabbitMQ: RabbitMQConfig{
			URL:      v.GetString("RABBITMQ_URL"),
			Exchange: v.GetString("RABBITMQ_EXCHANGE"),
		},
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
