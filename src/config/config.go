package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/jackc/pgx/v5/tracelog"
	"github.com/rs/zerolog"
)

type Environment string

const (
	Live Environment = "live"
	Beta Environment = "beta"
	Dev  Environment = "dev"
)

type DiscourseConfig struct {
	Env      Environment
	Addr     string
	BaseUrl  string
	LogLevel zerolog.Level

	Postgres PostgresConfig
	Redis    RedisConfig
}

type PostgresConfig struct {
	User     string
	Password string
	Hostname string
	Port     int
	DbName   string
	LogLevel tracelog.LogLevel
	MinConn  int32
	MaxConn  int32
}

func (info PostgresConfig) DSN() string {
	return fmt.Sprintf("user=%s password=%s host=%s port=%d dbname=%s", info.User, info.Password, info.Hostname, info.Port, info.DbName)
}

type RedisConfig struct {
	Url string
}

// Loaded once at startup. Windowing knobs (page size etc.) are deliberately
// not in here; they get passed explicitly to the topicview constructors.
var Config = DiscourseConfig{
	Env:      Environment(getenv("DISCOURSE_ENV", string(Dev))),
	Addr:     getenv("DISCOURSE_ADDR", ":9001"),
	BaseUrl:  getenv("DISCOURSE_BASE_URL", "http://localhost:9001"),
	LogLevel: zerolog.Level(getenvInt("DISCOURSE_LOG_LEVEL", int(zerolog.InfoLevel))),
	Postgres: PostgresConfig{
		User:     getenv("DISCOURSE_PG_USER", "discourse"),
		Password: getenv("DISCOURSE_PG_PASSWORD", "discourse"),
		Hostname: getenv("DISCOURSE_PG_HOST", "localhost"),
		Port:     getenvInt("DISCOURSE_PG_PORT", 5432),
		DbName:   getenv("DISCOURSE_PG_DBNAME", "discourse"),
		LogLevel: tracelog.LogLevelWarn,
		MinConn:  int32(getenvInt("DISCOURSE_PG_MIN_CONN", 2)),
		MaxConn:  int32(getenvInt("DISCOURSE_PG_MAX_CONN", 10)),
	},
	Redis: RedisConfig{
		Url: getenv("DISCOURSE_REDIS_URL", "redis://localhost:6379/0"),
	},
}

func getenv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}
