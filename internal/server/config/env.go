package config

import (
	"errors"
	"os"
	"strings"

	"github.com/dmitrijs2005/linkkeeper/internal/flagx"
)

// parseEnv overlays values from LINKKEEPER_* variables. The unprefixed names
// (PORT, DATABASE_URL, JWT_ACCESS_SECRET, ...) are honoured as fallbacks.
func parseEnv(config *Config) error {
	if port := strings.TrimSpace(os.Getenv("PORT")); port != "" {
		config.EndpointAddrHTTP = ":" + port
	}
	flagx.EnvString(&config.EndpointAddrHTTP, "LINKKEEPER_HTTP_ADDR")
	flagx.EnvString(&config.EndpointAddrGRPC, "LINKKEEPER_GRPC_ADDR")
	flagx.EnvString(&config.DatabaseDSN, "LINKKEEPER_DATABASE_DSN", "DATABASE_URL")
	flagx.EnvString(&config.StorageType, "LINKKEEPER_STORAGE")
	flagx.EnvString(&config.AccessSecretKey, "LINKKEEPER_JWT_ACCESS_SECRET", "JWT_ACCESS_SECRET")
	flagx.EnvString(&config.RefreshSecretKey, "LINKKEEPER_JWT_REFRESH_SECRET", "JWT_REFRESH_SECRET")
	flagx.EnvString(&config.FrontendURL, "LINKKEEPER_FRONTEND_URL", "FRONTEND_URL")
	flagx.EnvString(&config.Env, "LINKKEEPER_ENV", "APP_ENV")
	flagx.EnvString(&config.LogLevel, "LINKKEEPER_LOG_LEVEL")
	flagx.EnvString(&config.RedisAddr, "LINKKEEPER_REDIS_ADDR", "REDIS_ADDR")
	flagx.EnvString(&config.AdminUsername, "LINKKEEPER_ADMIN_USERNAME")
	flagx.EnvString(&config.AdminEmail, "LINKKEEPER_ADMIN_EMAIL")
	flagx.EnvString(&config.AdminPassword, "LINKKEEPER_ADMIN_PASSWORD")

	return errors.Join(
		flagx.EnvDuration(&config.AccessTokenValidityDuration, "LINKKEEPER_JWT_ACCESS_TTL"),
		flagx.EnvDuration(&config.RefreshTokenValidityDuration, "LINKKEEPER_JWT_REFRESH_TTL"),
		flagx.EnvInt(&config.LoginMaxAttempts, "LINKKEEPER_LOGIN_MAX_ATTEMPTS"),
		flagx.EnvDuration(&config.LoginWindow, "LINKKEEPER_LOGIN_WINDOW"),
		flagx.EnvDuration(&config.HealthProbeInterval, "LINKKEEPER_HEALTH_PROBE_INTERVAL"),
	)
}
