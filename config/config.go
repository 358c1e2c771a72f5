package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config armazena todas as configurações do aplicativo GoCabin.
type Config struct {
	// Geral
	Port        string `envconfig:"PORT" default:"8080"`
	Environment string `envconfig:"ENV" default:"development"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	// Banco de Dados (PostgreSQL)
	DatabaseURL  string `envconfig:"DATABASE_URL" required:"true"`
	DBTimeoutSec int    `envconfig:"DB_TIMEOUT_SEC" default:"5"`

	// Cache (Redis). Vazio desativa o cache e o rate limiting.
	RedisAddr   string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	CacheTTLSec int    `envconfig:"CACHE_TTL_SEC" default:"300"`

	// Segurança (JWT)
	AuthSecret   string `envconfig:"AUTH_SECRET" required:"true"`
	JWTExpiryMin int    `envconfig:"JWT_EXPIRY_MIN" default:"60"`

	// Login federado (Google). Habilitado apenas com os três valores.
	GoogleClientID     string `envconfig:"AUTH_GOOGLE_ID"`
	GoogleClientSecret string `envconfig:"AUTH_GOOGLE_SECRET"`
	GoogleRedirectURL  string `envconfig:"AUTH_GOOGLE_REDIRECT_URL"`

	// Rate Limiting
	RateLimitMaxRequests int `envconfig:"RATE_LIMIT_MAX_REQUESTS" default:"100"`
	RateLimitPeriodMin   int `envconfig:"RATE_LIMIT_PERIOD_MIN" default:"1"`

	// Eventos (RabbitMQ). Vazio desativa a publicação.
	RabbitMQURL      string `envconfig:"RABBITMQ_URL"`
	RabbitMQExchange string `envconfig:"RABBITMQ_EXCHANGE" default:"gocabin.bookings"`
}

// LoadConfig carrega as configurações a partir das variáveis de ambiente e as valida.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("erro de configuração: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate confere os valores que o envconfig não consegue validar sozinho.
func (c *Config) Validate() error {
	var errs []error
	if c.DatabaseURL == "" {
		errs = append(errs, errors.New("DATABASE_URL não pode ser vazio"))
	}
	if c.DBTimeoutSec <= 0 {
		errs = append(errs, errors.New("DB_TIMEOUT_SEC deve ser positivo"))
	}
	if c.JWTExpiryMin <= 0 {
		errs = append(errs, errors.New("JWT_EXPIRY_MIN deve ser positivo"))
	}
	if len(c.AuthSecret) < 16 {
		errs = append(errs, errors.New("AUTH_SECRET deve ter pelo menos 16 caracteres"))
	}
	if c.RateLimitMaxRequests <= 0 || c.RateLimitPeriodMin <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_MAX_REQUESTS e RATE_LIMIT_PERIOD_MIN devem ser positivos"))
	}
	google := []string{c.GoogleClientID, c.GoogleClientSecret, c.GoogleRedirectURL}
	set := 0
	for _, v := range google {
		if v != "" {
			set++
		}
	}
	if set != 0 && set != len(google) {
		errs = append(errs, errors.New("AUTH_GOOGLE_ID, AUTH_GOOGLE_SECRET e AUTH_GOOGLE_REDIRECT_URL devem ser definidos juntos"))
	}
	return errors.Join(errs...)
}

// DBTimeout é o timeout aplicado a cada chamada ao banco.
func (c *Config) DBTimeout() time.Duration { return time.Duration(c.DBTimeoutSec) * time.Second }

// CacheTTL é o tempo de vida das entradas de cache.
func (c *Config) CacheTTL() time.Duration { return time.Duration(c.CacheTTLSec) * time.Second }

// TokenExpiry é a validade do token de sessão.
func (c *Config) TokenExpiry() time.Duration { return time.Duration(c.JWTExpiryMin) * time.Minute }

// RateLimitPeriod é a janela do rate limiter.
func (c *Config) RateLimitPeriod() time.Duration {
	return time.Duration(c.RateLimitPeriodMin) * time.Minute
}

// GoogleEnabled informa se o login federado está configurado.
func (c *Config) GoogleEnabled() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != "" && c.GoogleRedirectURL != ""
}
