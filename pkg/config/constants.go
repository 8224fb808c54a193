package config

const (
	// EnvPrefix is the envconfig prefix shared by every setting.
	EnvPrefix = "VELORA"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "VELORA_DB_DSN"
	EnvDBHost = "VELORA_DB_HOST"
	EnvDBUser = "VELORA_DB_USER"
	EnvDBName = "VELORA_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
