package constants

// Environment variable keys read by internal/config
const (
	EnvBackend            = "LIFEOS_BACKEND"
	EnvDatabase           = "LIFEOS_DATABASE"
	EnvAPIURL             = "LIFEOS_API_URL"
	EnvAPIToken           = "LIFEOS_API_TOKEN"
	EnvUserID             = "LIFEOS_USER_ID"
	EnvTimezone           = "LIFEOS_TIMEZONE"
	EnvRevalidateInterval = "LIFEOS_REVALIDATE_INTERVAL"
	EnvMetricsAddr        = "LIFEOS_METRICS_ADDR"
	EnvDebug              = "LIFEOS_DEBUG"
	EnvDBConnection       = "LIFEOS_DB_CONNECTION"
	EnvFileName           = ".env"
)

// Backend names
const (
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendHTTP     = "http"
)
