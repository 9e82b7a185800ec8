package config

import (
	"time"

	"useridentity/pkg/db/redis"
)

// RedisConfig представляет конфигурацию публикации событий в Redis.
type RedisConfig struct {
	Enabled        bool          `yaml:"enabled" env:"IDENTITY_REDIS_ENABLED" env-default:"false"`
	Host           string        `yaml:"host" env:"IDENTITY_REDIS_HOST" env-default:"localhost"`
	Port           int           `yaml:"port" env:"IDENTITY_REDIS_PORT" env-default:"6379"`
	Password       string        `yaml:"password" env:"IDENTITY_REDIS_PASSWORD" env-default:""`
	DB             int           `yaml:"db" env:"IDENTITY_REDIS_DB" env-default:"0"`
	ConnectTimeout time.Duration `yaml:"connect_timeout" env:"IDENTITY_REDIS_CONNECT_TIMEOUT" env-default:"5s"`
	ReadTimeout    time.Duration `yaml:"read_timeout" env:"IDENTITY_REDIS_READ_TIMEOUT" env-default:"3s"`
	WriteTimeout   time.Duration `yaml:"write_timeout" env:"IDENTITY_REDIS_WRITE_TIMEOUT" env-default:"3s"`
	PoolSize       int           `yaml:"pool_size" env:"IDENTITY_REDIS_POOL_SIZE" env-default:"10"`
	EventsChannel  string        `yaml:"events_channel" env:"IDENTITY_REDIS_EVENTS_CHANNEL" env-default:"identity.user-events"`
}

// ClientConfig возвращает параметры клиента Redis.
func (c *RedisConfig) ClientConfig() *redis.Config {
	return &redis.Config{
		Host:         c.Host,
		Port:         c.Port,
		Password:     c.Password,
		DB:           c.DB,
		PoolSize:     c.PoolSize,
		DialTimeout:  c.ConnectTimeout,
		ReadTimeout:  c.ReadTimeout,
		WriteTimeout: c.WriteTimeout,
	}
}
