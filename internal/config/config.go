// Package config предоставялет структуры и функцию для парсинга и загрузки конфига
package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Config общая структура для хранения настроек
type Config struct {
	Env                     string `yaml:"env" env:"ENV" env-default:"local"`
	StorageConnectionString string `yaml:"storage_connection_string" env:"STORAGE_CONNECTION_STRING"`
	MigrationsPath          string `yaml:"migrations_path" env-default:"./migrations"`
	MetricsAddress          string `yaml:"metrics_address" env-default:":9090"`
	HTTPServer              `yaml:"http_server"`
	RedisConnection         `yaml:"redis_connection"`
	RabbitMQ                `yaml:"rabbitmq"`
	SwitchBot               `yaml:"switchbot"`
	Resend                  `yaml:"resend"`
	Session                 `yaml:"session"`
	Door                    `yaml:"door"`
	Schedule                `yaml:"schedule"`
}

// HTTPServer структура для настройки сервера
type HTTPServer struct {
	AddressHTTP string        `yaml:"addresshttp" env-default:":8080"`
	TimeoutHTTP time.Duration `yaml:"timeouthttp" env-default:"10s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
}

// RedisConnection структура для настройки подключения к redis
type RedisConnection struct {
	AddressRedis string        `yaml:"addressredis" env:"REDIS_ADDRESS"`
	Password     string        `yaml:"password" env:"REDIS_PASSWORD"`
	User         string        `yaml:"user"`
	DB           int           `yaml:"db"`
	MaxRetries   int           `yaml:"max_retries"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
	TimeoutRedis time.Duration `yaml:"timeoutredis"`
}

// RabbitMQ структура для настройки очереди событий пользователей.
// Prefetch задает размер батча, MaxConcurrency число одновременно
// обрабатываемых сообщений.
type RabbitMQ struct {
	RabbitMQURL        string        `yaml:"url" env:"RABBITMQ_URL"`
	RabbitMQMaxRetries int           `yaml:"connect_retries" env-default:"5"`
	RabbitMQRetryDelay time.Duration `yaml:"connect_delay" env-default:"2s"`
	Exchange           string        `yaml:"exchange" env-default:"user_events"`
	Queue              string        `yaml:"queue" env-default:"user_events"`
	RoutingKey         string        `yaml:"routing_key" env-default:"user_event"`
	Prefetch           int           `yaml:"prefetch" env-default:"1"`
	MaxConcurrency     int           `yaml:"max_concurrency" env-default:"1"`
	RetryDelay         time.Duration `yaml:"retry_delay" env-default:"15s"`
	MaxDeliveries      int           `yaml:"max_deliveries" env-default:"3"`
}

// SwitchBot структура с учетными данными замка двери
type SwitchBot struct {
	BaseURL  string        `yaml:"base_url" env-default:"https://api.switch-bot.com"`
	Token    string        `yaml:"token" env:"SWITCHBOT_TOKEN"`
	Secret   string        `yaml:"secret" env:"SWITCHBOT_KEY"`
	DeviceID string        `yaml:"device_id" env:"SWITCHBOT_DEVICE_ID"`
	Timeout  time.Duration `yaml:"timeout" env-default:"10s"`
}

// Resend структура для работы с почтовым сервисом и аудиторией рассылки
type Resend struct {
	ResendBaseURL string        `yaml:"base_url" env-default:"https://api.resend.com"`
	APIKey        string        `yaml:"api_key" env:"RESEND_API_KEY"`
	AudienceID    string        `yaml:"audience_id" env:"RESEND_AUDIENCE_ID"`
	From          string        `yaml:"from" env-default:"noreply@sideprojectsaturday.com"`
	EventsFrom    string        `yaml:"events_from" env-default:"Side Project Saturday <events@sideprojectsaturday.com>"`
	SiteURL       string        `yaml:"site_url" env:"PROD_URL" env-default:"http://localhost:8080"`
	ResendTimeout time.Duration `yaml:"timeout" env-default:"10s"`
}

// Session структура для проверки сессионных токенов
type Session struct {
	JWTSecretKey string        `yaml:"jwt_secret_key" env:"SESSION_SECRET"`
	TokenTTL     time.Duration `yaml:"token_ttl" env-default:"720h"`
}

// Door структура для настройки открытия двери
type Door struct {
	PressCooldown time.Duration `yaml:"press_cooldown" env-default:"5s"`
}

// Schedule структура для настройки еженедельного планировщика встреч
type Schedule struct {
	Timezone   string `yaml:"timezone" env-default:"America/New_York"`
	CronSpec   string `yaml:"cron_spec" env-default:"0 9 * * 1"`
	WeeksAhead int    `yaml:"weeks_ahead" env-default:"1"`
}

// MustLoad функция для загрузки конфига. Перед чтением yaml подгружает .env, если он есть.
func MustLoad() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("cannot load .env: %s", err)
	}

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("file: %s - does not exist", configPath)
	}
	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	return &cfg
}

// IsLocal сообщает, запущен ли сервис в локальном окружении.
func (c *Config) IsLocal() bool {
	return c.Env == "local"
}

func (c *Config) String() string {
	return fmt.Sprintf(
		"Env: %s\n"+
			"HTTPServer:\n"+
			"  Address: %s\n"+
			"  Timeout: %s\n"+
			"  IdleTimeout: %s\n"+
			"RedisConnection:\n"+
			"  Addr: %s\n"+
			"  DB: %d\n"+
			"RabbitMQ:\n"+
			"  Queue: %s\n"+
			"  Prefetch: %d\n"+
			"  MaxConcurrency: %d\n"+
			"  RetryDelay: %s\n"+
			"SwitchBot:\n"+
			"  BaseURL: %s\n"+
			"  DeviceID: %s\n"+
			"Resend:\n"+
			"  AudienceID: %s\n"+
			"Schedule:\n"+
			"  Timezone: %s\n"+
			"  CronSpec: %s\n",
		c.Env,
		c.AddressHTTP,
		c.TimeoutHTTP,
		c.IdleTimeout,
		c.AddressRedis,
		c.DB,
		c.Queue,
		c.Prefetch,
		c.MaxConcurrency,
		c.RetryDelay,
		c.SwitchBot.BaseURL,
		c.DeviceID,
		c.AudienceID,
		c.Timezone,
		c.CronSpec,
	)
}
