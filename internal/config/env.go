package config

import (
	"os"
	"strconv"
	"time"
)

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func Load() *Config {
	return &Config{
		Service: &ServiceConfig{
			Name: getEnv("SERVICE_NAME", "chatapp-backend"),
			Env:  getEnv("SERVICE_ENV", "development"),
			Addr: getEnv("SERVICE_ADDR", ":5000"),
		},
		Redis: &RedisConfig{
			URL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			DialTimeout:   getEnvDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:   getEnvDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout:  getEnvDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
			PoolSize:      getEnvInt("REDIS_POOL_SIZE", 10),
			MinIdleConns:  getEnvInt("REDIS_MIN_IDLE", 2),
			PingTimeout:   getEnvDuration("REDIS_PING_TIMEOUT", 2*time.Second),
			MessageStream: getEnv("REDIS_MESSAGE_STREAM", "messages"),
		},
		Mongo: &MongoConfig{
			URI:         getEnv("MONGODB_URI", "mongodb://localhost:27017"),
			Database:    getEnv("MONGODB_DATABASE", "chatapp"),
			PingTimeout: getEnvDuration("MONGODB_PING_TIMEOUT", 5*time.Second),
		},
		Worker: &WorkerConfig{
			MessageGroup: getEnv("WORKER_MESSAGE_GROUP", "message-persisters"),
		},
		Tracer: &TracerConfig{
			Address: getEnv("OTLP_ADDR", "localhost:4317"),
		},
		Logger: &LoggerConfig{
			Level:  getEnv("LOG_LEVEL", "INFO"),
			Format: getEnv("LOG_FORMAT", "JSON"),
		},
		SecretToken: getEnv("JWT_SECRET", ""),
	}
}
