package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Storage drivers.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverRedis    = "redis"
	DriverPostgres = "postgres"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format" validate:"oneof=json pretty"`
	} `yaml:"log"`
	Storage struct {
		Driver     string `yaml:"driver" validate:"oneof=memory sqlite redis postgres"`
		SQLitePath string `yaml:"sqlite_path"`
		Profile    string `yaml:"profile"`
	} `yaml:"storage"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Questions struct {
		Path          string `yaml:"path"`
		TTL           string `yaml:"ttl"`
		PerQuiz       int    `yaml:"per_quiz" validate:"gte=0"`
		Comprehensive int    `yaml:"comprehensive" validate:"gte=0"`
	} `yaml:"questions"`
	Share struct {
		Secret  string `yaml:"secret"`
		MaxAge  string `yaml:"max_age"`
		BaseURL string `yaml:"base_url"`
	} `yaml:"share"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	cfg := Config{}
	cfg.Server.Port = "8080"
	cfg.Log.Level = "info"
	cfg.Log.Format = "pretty"
	cfg.Storage.Driver = DriverSQLite
	cfg.Storage.SQLitePath = "quizzy.db"
	cfg.Questions.Path = "questions"
	cfg.Questions.TTL = "10m"
	cfg.Questions.PerQuiz = 10
	cfg.Questions.Comprehensive = 20
	cfg.Share.MaxAge = "8760h"
	cfg.Share.BaseURL = "http://localhost:8080/share"
	return cfg
}

// Load reads .env (optional), the YAML file at path (optional when missing)
// and QUIZZY_* environment overrides, in that order.
func Load(path string) (Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return cfg, err
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parse %s: %w", path, err)
			}
		}
	}
	applyEnv(&cfg)

	if err := validator.New().Struct(cfg); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	setString(&cfg.Server.Port, "QUIZZY_PORT")
	setString(&cfg.Log.Level, "QUIZZY_LOG_LEVEL")
	setString(&cfg.Log.Format, "QUIZZY_LOG_FORMAT")
	setString(&cfg.Storage.Driver, "QUIZZY_STORAGE_DRIVER")
	setString(&cfg.Storage.SQLitePath, "QUIZZY_SQLITE_PATH")
	setString(&cfg.Storage.Profile, "QUIZZY_PROFILE")
	setString(&cfg.Redis.Addr, "QUIZZY_REDIS_ADDR")
	setString(&cfg.Redis.Password, "QUIZZY_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "QUIZZY_REDIS_DB")
	setString(&cfg.Postgres.URL, "QUIZZY_POSTGRES_URL")
	setString(&cfg.Questions.Path, "QUIZZY_QUESTIONS_PATH")
	setInt(&cfg.Questions.PerQuiz, "QUIZZY_QUESTIONS_PER_QUIZ")
	setString(&cfg.Share.Secret, "QUIZZY_SHARE_SECRET")
	setString(&cfg.Share.MaxAge, "QUIZZY_SHARE_MAX_AGE")
	setString(&cfg.Share.BaseURL, "QUIZZY_SHARE_BASE_URL")
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	if n, err := strconv.Atoi(v); err == nil {
		*dst = n
	}
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
