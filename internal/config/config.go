package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix префикс переменных окружения, переопределяющих config.toml
const EnvPrefix = "BOOKING"

// Config конфигурация сервиса
type Config struct {
	Server         ServerConfig         `toml:"server" envconfig:"SERVER"`
	Database       DatabaseConfig       `toml:"database" envconfig:"DATABASE"`
	Logs           LogsConfig           `toml:"logs" envconfig:"LOGS"`
	Metrics        MetricsConfig        `toml:"metrics" envconfig:"METRICS"`
	Redis          RedisConfig          `toml:"redis" envconfig:"REDIS"`
	RabbitMQ       RabbitMQConfig       `toml:"rabbitmq" envconfig:"RABBITMQ"`
	ProfileService ProfileServiceConfig `toml:"profile_service" envconfig:"PROFILE_SERVICE"`
	Booking        BookingConfig        `toml:"booking" envconfig:"BOOKING"`
}

type ServerConfig struct {
	HTTPPort        int `toml:"http_port" envconfig:"HTTP_PORT"`
	ReadTimeout     int `toml:"read_timeout" envconfig:"READ_TIMEOUT"`
	WriteTimeout    int `toml:"write_timeout" envconfig:"WRITE_TIMEOUT"`
	IdleTimeout     int `toml:"idle_timeout" envconfig:"IDLE_TIMEOUT"`
	ShutdownTimeout int `toml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`
}

type DatabaseConfig struct {
	Host            string `toml:"host" envconfig:"HOST"`
	Port            int    `toml:"port" envconfig:"PORT"`
	User            string `toml:"user" envconfig:"USER"`
	Password        string `toml:"password" envconfig:"PASSWORD"`
	DBName          string `toml:"dbname" envconfig:"DBNAME"`
	SSLMode         string `toml:"sslmode" envconfig:"SSLMODE"`
	MaxOpenConns    int    `toml:"max_open_conns" envconfig:"MAX_OPEN_CONNS"`
	MaxIdleConns    int    `toml:"max_idle_conns" envconfig:"MAX_IDLE_CONNS"`
	ConnMaxLifetime int    `toml:"conn_max_lifetime" envconfig:"CONN_MAX_LIFETIME"`
}

// DSN строка подключения для lib/pq
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

type LogsConfig struct {
	File  string `toml:"file" envconfig:"FILE"`
	Level string `toml:"level" envconfig:"LEVEL"`
}

type MetricsConfig struct {
	Enabled     bool   `toml:"enabled" envconfig:"ENABLED"`
	Path        string `toml:"path" envconfig:"PATH"`
	ServiceName string `toml:"service_name" envconfig:"SERVICE_NAME"`
}

type RedisConfig struct {
	Enabled bool   `toml:"enabled" envconfig:"ENABLED"`
	Addr    string `toml:"addr" envconfig:"ADDR"`
	DB      int    `toml:"db" envconfig:"DB"`
	// PolicyTTL время жизни закэшированной политики бронирования, в секундах
	PolicyTTL int `toml:"policy_ttl" envconfig:"POLICY_TTL"`
}

type RabbitMQConfig struct {
	Enabled  bool   `toml:"enabled" envconfig:"ENABLED"`
	URL      string `toml:"url" envconfig:"URL"`
	Exchange string `toml:"exchange" envconfig:"EXCHANGE"`
}

type ProfileServiceConfig struct {
	URL     string `toml:"url" envconfig:"URL"`
	Timeout int    `toml:"timeout" envconfig:"TIMEOUT"`
}

// BookingConfig настройки фоновых воркеров и транзакций
type BookingConfig struct {
	SweepInterval   int `toml:"sweep_interval" envconfig:"SWEEP_INTERVAL"`
	SweepBatchSize  int `toml:"sweep_batch_size" envconfig:"SWEEP_BATCH_SIZE"`
	OutboxInterval  int `toml:"outbox_interval" envconfig:"OUTBOX_INTERVAL"`
	OutboxBatchSize int `toml:"outbox_batch_size" envconfig:"OUTBOX_BATCH_SIZE"`
	TxMaxRetries    int `toml:"tx_max_retries" envconfig:"TX_MAX_RETRIES"`
	TxBackoffMs     int `toml:"tx_backoff_ms" envconfig:"TX_BACKOFF_MS"`
}

// Load читает config.toml, затем применяет переменные окружения BOOKING_*
// и заполняет незаданные значения значениями по умолчанию.
// Отсутствующий файл не является ошибкой: конфигурация может целиком прийти из окружения.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("config: decode %s: %w", path, err)
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("config: env override: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) applyDefaults() {
	setDefault(&c.Server.HTTPPort, 8080)
	setDefault(&c.Server.ReadTimeout, 15)
	setDefault(&c.Server.WriteTimeout, 15)
	setDefault(&c.Server.IdleTimeout, 60)
	setDefault(&c.Server.ShutdownTimeout, 10)

	setDefaultString(&c.Database.Host, "localhost")
	setDefault(&c.Database.Port, 5432)
	setDefaultString(&c.Database.SSLMode, "disable")
	setDefault(&c.Database.MaxOpenConns, 25)
	setDefault(&c.Database.MaxIdleConns, 5)
	setDefault(&c.Database.ConnMaxLifetime, 300)

	setDefaultString(&c.Logs.Level, "info")

	setDefaultString(&c.Metrics.Path, "/metrics")
	setDefaultString(&c.Metrics.ServiceName, "companion-booking")

	setDefaultString(&c.Redis.Addr, "localhost:6379")
	setDefault(&c.Redis.PolicyTTL, 30)

	setDefaultString(&c.RabbitMQ.Exchange, "booking.events")

	setDefault(&c.ProfileService.Timeout, 5)

	setDefault(&c.Booking.SweepInterval, 60)
	setDefault(&c.Booking.SweepBatchSize, 100)
	setDefault(&c.Booking.OutboxInterval, 5)
	setDefault(&c.Booking.OutboxBatchSize, 50)
	setDefault(&c.Booking.TxMaxRetries, 3)
	setDefault(&c.Booking.TxBackoffMs, 20)
}

func (c *Config) validate() error {
	if c.Database.DBName == "" {
		return fmt.Errorf("config: database.dbname is required")
	}
	if c.ProfileService.URL == "" {
		return fmt.Errorf("config: profile_service.url is required")
	}
	if c.RabbitMQ.Enabled && c.RabbitMQ.URL == "" {
		return fmt.Errorf("config: rabbitmq.url is required when rabbitmq is enabled")
	}
	return nil
}

func setDefault(v *int, def int) {
	if *v == 0 {
		*v = def
	}
}

func setDefaultString(v *string, def string) {
	if *v == "" {
		*v = def
	}
}
