package config

import (
	"log"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Port       string `env:"PORT" envDefault:"8080"`
	DBURL      string `env:"DB_URL,required,notEmpty"`
	JWTSecret  string `env:"JWT_SECRET,required,notEmpty"`
	CORSOrigin string `env:"CORS_ORIGIN" envDefault:"*"`

	DefaultLang  string   `env:"DEFAULT_LANG" envDefault:"ru"`
	Languages    []string `env:"LANGUAGES" envSeparator:"," envDefault:"ru,en"`
	SearchConfig string   `env:"SEARCH_CONFIG" envDefault:"simple"`
	AutoMigrate  bool     `env:"AUTO_MIGRATE" envDefault:"true"`
	LogLevel     string   `env:"LOG_LEVEL" envDefault:"info"`
}

// C is the loaded configuration. Set by LoadEnv.
var C Config

func LoadEnv() {
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found. Using system environment variables.")
	}

	cfg, err := Parse()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	C = cfg
}

// Parse reads the configuration from the process environment.
func Parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// SlogLevel maps LOG_LEVEL onto a slog level; unknown values mean info.
func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
