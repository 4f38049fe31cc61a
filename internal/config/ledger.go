package config

import (
	"os"
	"strconv"
	"time"
)

type LedgerConfig struct {
	AllowOverdraft     bool
	OverdraftLimit     int64 // in minor units; only meaningful with AllowOverdraft
	FundingAccountID   string
	FundingUserID      string
	FundingFloat       int64 // initial treasury balance for deposits
	SettlementQueueKey string
	PaymentRequestTTL  time.Duration
}

func LoadLedgerConfig() *LedgerConfig {
	return &LedgerConfig{
		AllowOverdraft:     getEnvAsBool("LEDGER_ALLOW_OVERDRAFT", false),
		OverdraftLimit:     getEnvAsInt64("LEDGER_OVERDRAFT_LIMIT", 0),
		FundingAccountID:   getEnv("LEDGER_FUNDING_ACCOUNT_ID", "treasury-0001"),
		FundingUserID:      getEnv("LEDGER_FUNDING_USER_ID", "system"),
		FundingFloat:       getEnvAsInt64("LEDGER_FUNDING_FLOAT", 100_000_000),
		SettlementQueueKey: getEnv("SETTLEMENT_QUEUE_KEY", "settlement_queue"),
		PaymentRequestTTL:  getEnvAsDuration("PAYMENT_REQUEST_TTL", 5*time.Minute),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvAsBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}

func getEnvAsInt64(key string, defaultVal int64) int64 {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.ParseInt(val, 10, 64); err == nil {
			return n
		}
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if duration, err := time.ParseDuration(val); err == nil {
			return duration
		}
	}
	return defaultVal
}
