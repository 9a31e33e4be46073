package config

import (
	"github.com/Skotchmaster/delivery_platform/pkg/config"
)

type Config struct {
	ServiceName string `env:"SERVICE_NAME" env-default:"gateway"`
	ListenAddr  string `env:"GATEWAY_ADDR" env-default:":8080"`
	LogLevel    string `env:"LOG_LEVEL" env-default:"info"`
	LogFormat   string `env:"LOG_FORMAT" env-default:"json"`

	AuthURL     string `env:"AUTH_URL" env-required:"true" env-description:"auth service base URL, also used for token introspection"`
	PedidosURL  string `env:"PEDIDOS_URL" env-required:"true"`
	FlotaURL    string `env:"FLOTA_URL" env-required:"true"`
	FacturasURL string `env:"FACTURAS_URL" env-required:"true"`

	JWTSecret string `env:"JWT_SECRET" env-required:"true"`
}

func Load(envFiles ...string) *Config {
	var cfg Config
	config.MustLoad(&cfg, envFiles...)
	config.MustNonEmptyBytes([]byte(cfg.JWTSecret), "JWT_SECRET")
	return &cfg
}
