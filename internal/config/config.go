package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	HTTPAddr    string
	PostgresDSN string
	LogLevel    string

	// Pinning service (Pinata-compatible).
	PinningAPIURL  string
	PinningJWT     string
	GatewayBaseURL string
	PinRetries     int
	PinRetryDelay  time.Duration

	// Integrity ledger.
	LedgerRPCURL          string
	LedgerPrivateKeyHex   string
	LedgerContractAddress string
	LedgerChainID         int64
	LedgerWaitTimeout     time.Duration

	// Master secret for key wrapping. When VaultAddr is set the secret is
	// read from Vault KV instead.
	MasterSecret    string
	VaultAddr       string
	VaultToken      string
	VaultSecretPath string

	MaxUploadBytes int64

	AuthMode         string
	RolePolicyPath   string
	RolePolicyBundle string

	RateLimitRequests      int
	RateLimitWindowSeconds int
	RateLimitFailClosed    bool
	RateLimitMaxKeys       int

	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

func FromEnv() Config {
	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		addr = ":4000"
	}
	return Config{
		HTTPAddr:               addr,
		PostgresDSN:            os.Getenv("POSTGRES_DSN"),
		LogLevel:               envDefault("LOG_LEVEL", "info"),
		PinningAPIURL:          envDefault("PINNING_API_URL", "https://api.pinata.cloud"),
		PinningJWT:             os.Getenv("PINNING_JWT"),
		GatewayBaseURL:         envDefault("GATEWAY_BASE_URL", "https://gateway.pinata.cloud/ipfs"),
		PinRetries:             envIntDefault("PIN_RETRIES", 3),
		PinRetryDelay:          envDurationDefault("PIN_RETRY_DELAY", 500*time.Millisecond),
		LedgerRPCURL:           os.Getenv("LEDGER_RPC_URL"),
		LedgerPrivateKeyHex:    os.Getenv("LEDGER_PRIVATE_KEY_HEX"),
		LedgerContractAddress:  os.Getenv("LEDGER_CONTRACT_ADDRESS"),
		LedgerChainID:          envInt64Default("LEDGER_CHAIN_ID", 11155111),
		LedgerWaitTimeout:      envDurationDefault("LEDGER_WAIT_TIMEOUT", 90*time.Second),
		MasterSecret:           os.Getenv("MASTER_SECRET"),
		VaultAddr:              os.Getenv("VAULT_ADDR"),
		VaultToken:             os.Getenv("VAULT_TOKEN"),
		VaultSecretPath:        envDefault("VAULT_SECRET_PATH", "secret/data/guardian/master"),
		MaxUploadBytes:         envInt64Default("MAX_UPLOAD_BYTES", 100*1024*1024),
		AuthMode:               envDefault("AUTH_MODE", "rbac"),
		RolePolicyPath:         os.Getenv("ROLE_POLICY_PATH"),
		RolePolicyBundle:       envDefault("ROLE_POLICY_BUNDLE", "guardian-roles"),
		RateLimitRequests:      envIntDefault("RATE_LIMIT_REQUESTS", 0),
		RateLimitWindowSeconds: envIntDefault("RATE_LIMIT_WINDOW_SECONDS", 60),
		RateLimitFailClosed:    envBoolDefault("RATE_LIMIT_FAIL_CLOSED", false),
		RateLimitMaxKeys:       envIntDefault("RATE_LIMIT_MAX_KEYS", 10000),
		RedisAddr:              os.Getenv("REDIS_ADDR"),
		RedisPassword:          os.Getenv("REDIS_PASSWORD"),
		RedisDB:                envIntDefault("REDIS_DB", 0),
	}
}

func envDefault(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func envIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	parsed, err := strconv.Atoi(v)
	if err != nil || parsed < 0 {
		return def
	}
	return parsed
}

func envInt64Default(key string, def int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	parsed, err := strconv.ParseInt(v, 10, 64)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func envDurationDefault(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	parsed, err := time.ParseDuration(v)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func envBoolDefault(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	switch v {
	case "1", "true", "TRUE", "True", "yes", "YES", "Yes":
		return true
	case "0", "false", "FALSE", "False", "no", "NO", "No":
		return false
	default:
		return def
	}
}

func (c Config) RateLimitWindow() time.Duration {
	if c.RateLimitWindowSeconds <= 0 {
		return time.Minute
	}
	return time.Duration(c.RateLimitWindowSeconds) * time.Second
}
