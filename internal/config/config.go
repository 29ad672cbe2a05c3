package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// PSP base hosts. The sandbox flag selects one at load time and the choice
// stays fixed for the process lifetime, so a multi-call sequence can never
// mix environments.
const (
	sandboxBaseURL    = "https://pix-h.api.efipay.com.br"
	productionBaseURL = "https://pix.api.efipay.com.br"
)

// Config holds all application configuration. It is built once at process
// start and passed by reference into constructors; components never read
// ambient environment state themselves.
type Config struct {
	Server  ServerConfig
	PSP     PSPConfig
	Refund  RefundConfig
	Ledger  LedgerConfig
	Secrets SecretsConfig
	Logger  LoggerConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port        int
	Host        string
	MetricsPort int
}

// PSPConfig holds Efí PSP credentials and connection settings
type PSPConfig struct {
	Sandbox        bool
	ClientID       string
	ClientSecret   string
	CertPath       string // PKCS#12 bundle
	CertPassphrase string
	ReceiverKey    string // operator's own receiving key; matching requests go dynamic
	PayerKey       string // key with pix.send scope, source of validation micro-deposits
	TokenTimeout   time.Duration
	RequestTimeout time.Duration
}

// BaseURL returns the PSP host for the configured environment.
func (c *PSPConfig) BaseURL() string {
	if c.Sandbox {
		return sandboxBaseURL
	}
	return productionBaseURL
}

// RefundConfig holds refund amount bounds
type RefundConfig struct {
	MinAmount decimal.Decimal
	MaxAmount decimal.Decimal
}

// LedgerConfig holds idempotency ledger configuration
type LedgerConfig struct {
	Backend       string // "memory" or "redis"
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	TTL           time.Duration
}

// SecretsConfig holds secret manager backend configuration
type SecretsConfig struct {
	Backend string // "env", "local", "vault" or "aws"

	// local backend
	BasePath string

	// vault backend
	VaultAddr      string
	VaultToken     string
	VaultMountPath string

	// aws backend
	AWSRegion string
	AWSPrefix string
}

// LoggerConfig holds logging configuration
type LoggerConfig struct {
	Level       string // debug, info, warn, error
	Development bool
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:        getEnvAsInt("SERVER_PORT", 8080),
			Host:        getEnv("SERVER_HOST", "0.0.0.0"),
			MetricsPort: getEnvAsInt("METRICS_PORT", 9090),
		},
		PSP: PSPConfig{
			Sandbox:        getEnvAsBool("EFI_SANDBOX", false),
			ClientID:       getEnv("EFI_CLIENT_ID", ""),
			ClientSecret:   getEnv("EFI_CLIENT_SECRET", ""),
			CertPath:       getEnv("EFI_CERT_PATH", ""),
			CertPassphrase: getEnv("EFI_CERT_PASS", ""),
			ReceiverKey:    getEnv("EFI_RECEIVER_KEY", ""),
			PayerKey:       getEnv("EFI_PAYER_KEY", ""),
			TokenTimeout:   time.Duration(getEnvAsInt("EFI_TOKEN_TIMEOUT", 15)) * time.Second,
			RequestTimeout: time.Duration(getEnvAsInt("EFI_REQUEST_TIMEOUT", 20)) * time.Second,
		},
		Refund: RefundConfig{
			MinAmount: getEnvAsDecimal("PIX_MIN_AMOUNT", "0.01"),
			MaxAmount: getEnvAsDecimal("PIX_MAX_AMOUNT", "2000.00"),
		},
		Ledger: LedgerConfig{
			Backend:       getEnv("LEDGER_BACKEND", "memory"),
			RedisAddr:     getEnv("LEDGER_REDIS_ADDR", "localhost:6379"),
			RedisPassword: getEnv("LEDGER_REDIS_PASSWORD", ""),
			RedisDB:       getEnvAsInt("LEDGER_REDIS_DB", 0),
			TTL:           time.Duration(getEnvAsInt("LEDGER_TTL_HOURS", 72)) * time.Hour,
		},
		Secrets: SecretsConfig{
			Backend:        getEnv("SECRETS_BACKEND", "env"),
			BasePath:       getEnv("SECRETS_BASE_PATH", "./secrets"),
			VaultAddr:      getEnv("VAULT_ADDR", ""),
			VaultToken:     getEnv("VAULT_TOKEN", ""),
			VaultMountPath: getEnv("VAULT_MOUNT_PATH", "secret"),
			AWSRegion:      getEnv("AWS_REGION", "sa-east-1"),
			AWSPrefix:      getEnv("AWS_SECRETS_PREFIX", "pix-service"),
		},
		Logger: LoggerConfig{
			Level:       getEnv("LOG_LEVEL", "info"),
			Development: getEnvAsBool("LOG_DEVELOPMENT", false),
		},
	}

	// Validate required fields
	if cfg.PSP.ClientID == "" {
		return nil, fmt.Errorf("EFI_CLIENT_ID is required")
	}
	if cfg.PSP.CertPath == "" {
		return nil, fmt.Errorf("EFI_CERT_PATH is required")
	}
	if cfg.Secrets.Backend == "env" && cfg.PSP.ClientSecret == "" {
		return nil, fmt.Errorf("EFI_CLIENT_SECRET is required with the env secrets backend")
	}
	if cfg.Refund.MinAmount.GreaterThan(cfg.Refund.MaxAmount) {
		return nil, fmt.Errorf("PIX_MIN_AMOUNT must not exceed PIX_MAX_AMOUNT")
	}

	return cfg, nil
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDecimal(key, defaultValue string) decimal.Decimal {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}
	value, err := decimal.NewFromString(valueStr)
	if err != nil {
		return decimal.RequireFromString(defaultValue)
	}
	return value
}
