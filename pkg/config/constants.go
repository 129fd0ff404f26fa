package config

const (
	EnvPrefix = "auctionhub"

	AppEnvDev  = "development"
	AppEnvProd = "production"

	EnvAppEnv   = "AUCTIONHUB_APP_ENV"
	EnvPort     = "AUCTIONHUB_APP_PORT"
	EnvDBDSN    = "AUCTIONHUB_DB_DSN"
	EnvDBHost   = "AUCTIONHUB_DB_HOST"
	EnvDBUser   = "AUCTIONHUB_DB_USER"
	EnvDBName   = "AUCTIONHUB_DB_NAME"
	EnvRedisURL = "AUCTIONHUB_REDIS_URL"

	EnvJWTSecret = "AUCTIONHUB_JWT_SECRET"
	EnvJWTIssuer = "AUCTIONHUB_JWT_ISSUER"

	EnvGCPProjectID = "AUCTIONHUB_GCP_PROJECT_ID"
)

var requiredDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
