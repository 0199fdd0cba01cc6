package config

// EnvPrefix is passed to envconfig; individual fields carry fully qualified
// env var names so the prefix stays empty on purpose.
const EnvPrefix = ""

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvDBDSN  = "MAMBA_DB_DSN"
	EnvDBHost = "MAMBA_DB_HOST"
	EnvDBUser = "MAMBA_DB_USER"
	EnvDBName = "MAMBA_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

const (
	// DBDriverPostgres selects the durable GORM store.
	DBDriverPostgres = "postgres"
	// DBDriverMemory selects the in-process store. Dev and tests only;
	// it is never picked implicitly.
	DBDriverMemory = "memory"
)
