package config

const EnvPrefix = "SPLITWALLET"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv              = "SPLITWALLET_APP_ENV"
	EnvPort                = "SPLITWALLET_APP_PORT"
	EnvDBDSN               = "SPLITWALLET_DB_DSN"
	EnvDBHost              = "SPLITWALLET_DB_HOST"
	EnvDBUser              = "SPLITWALLET_DB_USER"
	EnvDBName              = "SPLITWALLET_DB_NAME"
	EnvDBPassword          = "SPLITWALLET_DB_PASSWORD"
	EnvRedisURL            = "SPLITWALLET_REDIS_URL"
	EnvUseSQLite           = "SPLITWALLET_USE_SQLITE"
	EnvRemainderPolicy     = "SPLITWALLET_REMAINDER_POLICY"
	EnvSettlementTolerance = "SPLITWALLET_SETTLEMENT_TOLERANCE"
	EnvBalanceCacheTTL     = "SPLITWALLET_BALANCE_CACHE_TTL"
)

var componentDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
