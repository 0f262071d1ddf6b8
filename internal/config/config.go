package config

import (
	"os"
	"strconv"
)

// Config holds the process configuration, read from the environment once
// at startup.
type Config struct {
	Port             string // Port the API listens on
	DBPath           string // Path of the sqlite database, ignored when DB_HOST is set
	APIURL           string // Base URL the API is served on, used for link generation
	CORSAllowOrigins string // Space separated list of allowed CORS origins
	EnablePprof      bool   // Serve pprof handlers under /debug/pprof
	AMQPURL          string // AMQP broker URL, empty disables event publishing
	AMQPExchange     string // Exchange events are published to
}

// Load reads the configuration from the environment.
func Load() Config {
	return Config{
		Port:             getEnv("PORT", "8080"),
		DBPath:           getEnv("DB_PATH", "data/hearthledger.db"),
		APIURL:           getEnv("API_URL", "http://localhost:8080"),
		CORSAllowOrigins: getEnv("CORS_ALLOW_ORIGINS", ""),
		EnablePprof:      getEnvBool("ENABLE_PPROF", false),
		AMQPURL:          getEnv("AMQP_URL", ""),
		AMQPExchange:     getEnv("AMQP_EXCHANGE", "hearthledger"),
	}
}

// LoanInterestTransfers reports whether interest accruals are mirrored to
// the lender account as ledger transactions.
func LoanInterestTransfers() bool {
	return getEnvBool("LOAN_INTEREST_TRANSFERS", false)
}

func getEnv(key, fallback string) string {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback
	}

	return value
}

func getEnvBool(key string, fallback bool) bool {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback
	}

	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}

	return parsed
}
