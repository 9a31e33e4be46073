package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Base holds the keys every binary in the platform reads.
type Base struct {
	ServiceName string `env:"SERVICE_NAME" env-default:"delivery"`
	HTTPAddr    string `env:"HTTP_ADDR" env-default:":8080"`
	LogLevel    string `env:"LOG_LEVEL" env-default:"info"`
	LogFormat   string `env:"LOG_FORMAT" env-default:"json"`
}

// Load reads the given dotenv files, skipping missing ones, and then fills
// cfg from the process environment using its env struct tags. Values already
// present in the environment win over dotenv values.
func Load(cfg any, envFiles ...string) error {
	for _, f := range envFiles {
		if f == "" {
			continue
		}
		if _, err := os.Stat(f); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	if err := cleanenv.ReadEnv(cfg); err != nil {
		return fmt.Errorf("read env: %w", err)
	}
	return nil
}

// Usage renders the documented variables of cfg, for --help output.
func Usage(cfg any) string {
	text, err := cleanenv.GetDescription(cfg, nil)
	if err != nil {
		return ""
	}
	return text
}
