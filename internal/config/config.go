package config

import "time"

type Config struct {
	Service     *ServiceConfig
	Redis       *RedisConfig
	Mongo       *MongoConfig
	Worker      *WorkerConfig
	Tracer      *TracerConfig
	Logger      *LoggerConfig
	SecretToken string
}

type ServiceConfig struct {
	Name string
	Env  string
	Addr string
}

type RedisConfig struct {
	URL           string
	DialTimeout   time.Duration
	ReadTimeout   time.Duration
	WriteTimeout  time.Duration
	PoolSize      int
	MinIdleConns  int
	PingTimeout   time.Duration
	MessageStream string
}

type MongoConfig struct {
	URI         string
	Database    string
	PingTimeout time.Duration
}

type WorkerConfig struct {
	MessageGroup string
}

type TracerConfig struct {
	Address string
}

type LoggerConfig struct {
	Level  string
	Format string
}
