package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type AppCfg struct {
	Env          string        `yaml:"env"`
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout"`
	ShutdownSecs int           `yaml:"shutdown_seconds"`
}

type MongoCfg struct {
	URI      string `yaml:"uri"`
	Database string `yaml:"database"`
}

type RedisCfg struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type JWTCfg struct {
	Secret       string `yaml:"secret"`
	ExpiresHours int    `yaml:"expiresHours"`
}

type KafkaCfg struct {
	Enabled bool     `yaml:"enabled"`
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

type GoogleCfg struct {
	ClientID     string `yaml:"clientID"`
	ClientSecret string `yaml:"clientSecret"`
	RedirectURL  string `yaml:"redirectURL"`
}

type SecurityCfg struct {
	PasswordHashCost    int `yaml:"passwordHashCost"`
	AuthRateLimit       int `yaml:"authRateLimit"`
	AuthRateWindowSecs  int `yaml:"authRateWindowSeconds"`
	PresenceTTLMinutes  int `yaml:"presenceTTLMinutes"`
	MinVerificationPics int `yaml:"minVerificationPics"`
}

type AdminCfg struct {
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
}

type Config struct {
	App      AppCfg      `yaml:"app"`
	Mongo    MongoCfg    `yaml:"mongo"`
	Redis    RedisCfg    `yaml:"redis"`
	JWT      JWTCfg      `yaml:"jwt"`
	Kafka    KafkaCfg    `yaml:"kafka"`
	Google   GoogleCfg   `yaml:"google"`
	Security SecurityCfg `yaml:"security"`
	Admin    AdminCfg    `yaml:"admin"`
}

func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg := &Config{}
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config YAML: %w", err)
	}

	override := func(env string, apply func(string)) {
		if v := os.Getenv(env); v != "" {
			apply(v)
		}
	}

	override("APP_ENV", func(v string) { cfg.App.Env = v })
	override("APP_PORT", func(v string) {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.App.Port = n
		}
	})
	override("MONGO_URI", func(v string) { cfg.Mongo.URI = v })
	override("MONGO_DB", func(v string) { cfg.Mongo.Database = v })
	override("REDIS_ADDR", func(v string) { cfg.Redis.Addr = v })
	override("REDIS_PASSWORD", func(v string) { cfg.Redis.Password = v })
	override("JWT_SECRET", func(v string) { cfg.JWT.Secret = v })
	override("JWT_EXPIRES_HOURS", func(v string) {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.JWT.ExpiresHours = n
		}
	})
	override("KAFKA_BROKERS", func(v string) { cfg.Kafka.Brokers = strings.Split(v, ",") })
	override("KAFKA_TOPIC", func(v string) { cfg.Kafka.Topic = v })
	override("GOOGLE_CLIENT_ID", func(v string) { cfg.Google.ClientID = v })
	override("GOOGLE_CLIENT_SECRET", func(v string) { cfg.Google.ClientSecret = v })
	override("GOOGLE_REDIRECT_URL", func(v string) { cfg.Google.RedirectURL = v })
	override("PASSWORD_HASH_COST", func(v string) {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Security.PasswordHashCost = n
		}
	})
	override("ADMIN_EMAIL", func(v string) { cfg.Admin.Email = v })
	override("ADMIN_PASSWORD", func(v string) { cfg.Admin.Password = v })

	if v := os.Getenv("KAFKA_ENABLED"); v == "true" {
		cfg.Kafka.Enabled = true
	}

	if cfg.JWT.Secret == "" {
		return nil, errors.New("JWT_SECRET is required (set in .env or config.yaml)")
	}
	if cfg.Mongo.URI == "" {
		return nil, errors.New("MONGO_URI is required")
	}
	if cfg.Kafka.Enabled && (len(cfg.Kafka.Brokers) == 0 || cfg.Kafka.Topic == "") {
		return nil, errors.New("kafka enabled but missing brokers or topic")
	}

	applyDefaults(cfg)
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.App.Port == 0 {
		cfg.App.Port = 5000
	}
	if cfg.App.ShutdownSecs == 0 {
		cfg.App.ShutdownSecs = 15
	}
	if cfg.JWT.ExpiresHours == 0 {
		cfg.JWT.ExpiresHours = 72
	}
	if cfg.Mongo.Database == "" {
		cfg.Mongo.Database = "marketplace"
	}
	if cfg.Security.PasswordHashCost == 0 {
		cfg.Security.PasswordHashCost = 10
	}
	if cfg.Security.AuthRateLimit == 0 {
		cfg.Security.AuthRateLimit = 20
	}
	if cfg.Security.AuthRateWindowSecs == 0 {
		cfg.Security.AuthRateWindowSecs = 60
	}
	if cfg.Security.PresenceTTLMinutes == 0 {
		cfg.Security.PresenceTTLMinutes = 30
	}
	if cfg.Security.MinVerificationPics == 0 {
		cfg.Security.MinVerificationPics = 3
	}
}

func (c *Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.App.ShutdownSecs) * time.Second
}
