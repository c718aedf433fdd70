// Package config предоставляет структуры и функцию для парсинга и загрузки конфига.
//
// Конфиг читается из yaml-файла, путь к которому задаётся переменной окружения
// CONFIG_PATH, отдельные значения могут быть переопределены через окружение.
// В окружении prod отсутствие обязательных секретов фатально при старте.
package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// devJWTSecret используется только вне prod, когда секрет подписи не задан.
const devJWTSecret = "dev-secret-change-me"

// Config общая структура для хранения настроек сервиса.
type Config struct {
	Env                     string `yaml:"env" env:"ENV" env-default:"local"`
	StorageConnectionString string `yaml:"storage_connection_string" env:"STORAGE_CONNECTION_STRING"`
	MigrationsPath          string `yaml:"migrations_path" env:"MIGRATIONS_PATH" env-default:"./migrations"`
	AMQPConnectionString    string `yaml:"amqp_connection_string" env:"AMQP_CONNECTION_STRING"`
	RedisConnection         `yaml:"redis_connection"`
	HTTPServer              `yaml:"http_server"`
	JWTToken                `yaml:"jwttoken"`
	PaymentProvider         `yaml:"payment_provider"`
	EmergencyAccess         `yaml:"emergency_access"`
}

// HTTPServer структура для настройки сервера.
type HTTPServer struct {
	AddressHTTP string        `yaml:"addresshttp" env:"ADDRESS_HTTP" env-default:":8080"`
	TimeoutHTTP time.Duration `yaml:"timeouthttp" env-default:"5s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
}

// RedisConnection структура для настройки подключения к redis.
type RedisConnection struct {
	AddressRedis string        `yaml:"addressredis" env:"ADDRESS_REDIS" env-default:"localhost:6379"`
	Password     string        `yaml:"password" env:"REDIS_PASSWORD"`
	User         string        `yaml:"user"`
	DB           int           `yaml:"db"`
	MaxRetries   int           `yaml:"max_retries" env-default:"3"`
	DialTimeout  time.Duration `yaml:"dial_timeout" env-default:"5s"`
	TimeoutRedis time.Duration `yaml:"timeoutredis" env-default:"3s"`
}

// JWTToken структура для работы с jwt-токеном.
//
// TokenTTL — срок жизни обычного токена (30 дней),
// EmergencyTokenTTL — укороченный срок токена аварийного доступа владельца.
type JWTToken struct {
	JWTSecretKey      string        `yaml:"jwt_secret_key" env:"JWT_SECRET_KEY"`
	TokenTTL          time.Duration `yaml:"token_ttl" env-default:"720h"`
	EmergencyTokenTTL time.Duration `yaml:"emergency_token_ttl" env-default:"24h"`
}

// PaymentProvider структура с настройками внешнего платёжного провайдера.
type PaymentProvider struct {
	SecretKey       string `yaml:"secret_key" env:"PROVIDER_SECRET_KEY"`
	WebhookSecret   string `yaml:"webhook_secret" env:"PROVIDER_WEBHOOK_SECRET"`
	PriceID         string `yaml:"price_id" env:"PROVIDER_PRICE_ID"`
	APIURL          string `yaml:"api_url"`
	SuccessURL      string `yaml:"success_url"`
	CancelURL       string `yaml:"cancel_url"`
	TrialPeriodDays int    `yaml:"trial_period_days" env-default:"14"`
}

// EmergencyAccess структура аварийного входа владельца.
//
// Путь полностью выключен по умолчанию и включается только явной конфигурацией.
type EmergencyAccess struct {
	Enabled    bool   `yaml:"enabled" env:"EMERGENCY_ACCESS_ENABLED" env-default:"false"`
	OwnerEmail string `yaml:"owner_email" env:"EMERGENCY_OWNER_EMAIL"`
	OwnerName  string `yaml:"owner_name" env:"EMERGENCY_OWNER_NAME"`
}

// MustLoad загружает конфиг и валидирует обязательные значения.
//
// Завершает процесс при любой ошибке: сервис без корректного конфига не стартует.
func MustLoad() *Config {
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
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %s", err)
	}
	return &cfg
}

// Validate проверяет обязательные значения конфига.
//
// В prod отсутствие секрета подписи, строки подключения к БД или секретов
// провайдера — фатальная ошибка. Вне prod для jwt подставляется дефолт
// разработчика.
func (c *Config) Validate() error {
	if c.Env == "prod" {
		switch {
		case c.JWTSecretKey == "":
			return errMissing("jwttoken.jwt_secret_key")
		case c.StorageConnectionString == "":
			return errMissing("storage_connection_string")
		case c.PaymentProvider.SecretKey == "":
			return errMissing("payment_provider.secret_key")
		case c.PaymentProvider.WebhookSecret == "":
			return errMissing("payment_provider.webhook_secret")
		}
		return nil
	}
	if c.JWTSecretKey == "" {
		c.JWTSecretKey = devJWTSecret
	}
	return nil
}

func errMissing(field string) error {
	return fmt.Errorf("required config value is missing: %s", field)
}
