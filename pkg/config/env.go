package config

const (
	EnvPrefix = ""

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv       = "STOREFRONT_APP_ENV"
	EnvPort         = "STOREFRONT_APP_PORT"
	EnvLogLevel     = "STOREFRONT_LOG_LEVEL"
	EnvAPIBaseURL   = "STOREFRONT_API_BASE_URL"
	EnvImageBaseURL = "STOREFRONT_IMAGE_BASE_URL"
	EnvAPITimeout   = "STOREFRONT_API_TIMEOUT"
	EnvRedisURL     = "STOREFRONT_REDIS_URL"
	EnvRedisAddr    = "STOREFRONT_REDIS_ADDR"
	EnvFilterTTL    = "STOREFRONT_FILTER_CACHE_TTL"
	EnvSessionTTL   = "STOREFRONT_SESSION_TTL"
	EnvCORSOrigins  = "STOREFRONT_CORS_ORIGINS"
)
