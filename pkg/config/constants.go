package config

const (
	EnvPrefix = "tripovia"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "TRIPOVIA_DB_DSN"
	EnvDBHost = "TRIPOVIA_DB_HOST"
	EnvDBUser = "TRIPOVIA_DB_USER"
	EnvDBName = "TRIPOVIA_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
