package config

import (
	"time"

	"github.com/Skotchmaster/delivery_platform/pkg/config"
)

type ServiceConfig struct {
	config.Base

	DatabaseDriver string `env:"DATABASE_DRIVER" env-default:"postgres" env-description:"postgres or sqlite"`
	DatabaseURL    string `env:"DATABASE_URL" env-required:"true"`

	JWTSecret       string        `env:"JWT_SECRET" env-required:"true" env-description:"HS256 signing secret"`
	AccessTokenTTL  time.Duration `env:"ACCESS_TOKEN_TTL" env-default:"30m"`
	RefreshTokenTTL time.Duration `env:"REFRESH_TOKEN_TTL" env-default:"168h"`

	KafkaBrokers []string `env:"KAFKA_BROKERS" env-separator:","`
	KafkaTopic   string   `env:"KAFKA_TOPIC" env-default:"auth_events"`

	ESAddresses []string `env:"ES_ADDRESSES" env-separator:","`
	ESUsername  string   `env:"ES_USERNAME"`
	ESPassword  string   `env:"ES_PASSWORD"`
	ESIndex     string   `env:"ES_INDEX" env-default:"auth-audit"`

	RedisAddr     string `env:"REDIS_ADDR" env-description:"revocation cache; empty disables it"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" env-default:"0"`

	LedgerPurgeInterval time.Duration `env:"LEDGER_PURGE_INTERVAL" env-default:"24h" env-description:"0 disables the purge job"`

	BootstrapAdminUsername string `env:"BOOTSTRAP_ADMIN_USERNAME"`
	BootstrapAdminEmail    string `env:"BOOTSTRAP_ADMIN_EMAIL"`
	BootstrapAdminPassword string `env:"BOOTSTRAP_ADMIN_PASSWORD"`
}

func (c *ServiceConfig) BootstrapAdmin() bool {
	return c.BootstrapAdminUsername != "" && c.BootstrapAdminEmail != "" && c.BootstrapAdminPassword != ""
}

func Load(envFiles ...string) *ServiceConfig {
	var cfg ServiceConfig
	config.MustLoad(&cfg, envFiles...)
	config.MustNonEmptyBytes([]byte(cfg.JWTSecret), "JWT_SECRET")
	return &cfg
}
