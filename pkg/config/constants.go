package config

// EnvPrefix is passed to envconfig; individual fields carry explicit
// ECOTRACK_* tags so the prefix stays empty.
const EnvPrefix = ""

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvDBDSN  = "ECOTRACK_DB_DSN"
	EnvDBHost = "ECOTRACK_DB_HOST"
	EnvDBUser = "ECOTRACK_DB_USER"
	EnvDBName = "ECOTRACK_DB_NAME"
)

var requiredDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
