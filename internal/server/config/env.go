package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// dotenvFile is loaded, when present, before reading the environment.
// Variables already set in the process environment win over the file.
var dotenvFile = ".env"

// parseEnv overlays Config with environment variables. Unset or empty
// variables leave the current value untouched; malformed numbers are ignored.
//
//	PORT                    HTTP port (":" is prepended)
//	HTTP_ADDR               full HTTP bind address, wins over PORT
//	GRPC_ADDR               gRPC health bind address
//	DATABASE_DSN            PostgreSQL DSN
//	DB_MAX_OPEN_CONNS       pool size
//	REQUEST_TIMEOUT         Go duration, e.g. "15s"
//	JWT_SECRET              session signing key
//	SESSION_TTL             Go duration, e.g. "168h"
//	S3_ACCESS_KEY, S3_SECRET_KEY, S3_BUCKET, S3_REGION, S3_ENDPOINT, S3_PUBLIC_URL
//	AUTH_RATE_LIMIT, AUTH_RATE_BURST
//	LOG_LEVEL
func parseEnv(config *Config) {
	_ = godotenv.Load(dotenvFile)

	if v := os.Getenv("PORT"); v != "" {
		config.EndpointAddrHTTP = ":" + v
	}
	setString(&config.EndpointAddrHTTP, "HTTP_ADDR")
	setString(&config.EndpointAddrGRPC, "GRPC_ADDR")
	setString(&config.DatabaseDSN, "DATABASE_DSN")
	setInt(&config.DBMaxOpenConns, "DB_MAX_OPEN_CONNS")
	setDuration(&config.RequestTimeout, "REQUEST_TIMEOUT")
	setString(&config.SecretKey, "JWT_SECRET")
	setDuration(&config.SessionValidityDuration, "SESSION_TTL")
	setString(&config.S3RootUser, "S3_ACCESS_KEY")
	setString(&config.S3RootPassword, "S3_SECRET_KEY")
	setString(&config.S3Bucket, "S3_BUCKET")
	setString(&config.S3Region, "S3_REGION")
	setString(&config.S3BaseEndpoint, "S3_ENDPOINT")
	setString(&config.S3PublicBaseURL, "S3_PUBLIC_URL")
	setInt(&config.AuthRateLimit, "AUTH_RATE_LIMIT")
	setInt(&config.AuthRateBurst, "AUTH_RATE_BURST")
	setString(&config.LogLevel, "LOG_LEVEL")
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}
