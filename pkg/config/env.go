package config

const (
	EnvPrefix = "HAANI"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv = "HAANI_APP_ENV"
	EnvPort   = "HAANI_APP_PORT"

	EnvDBDSN  = "HAANI_DB_DSN"
	EnvDBHost = "HAANI_DB_HOST"
	EnvDBUser = "HAANI_DB_USER"
	EnvDBName = "HAANI_DB_NAME"

	EnvRedisURL = "HAANI_REDIS_URL"

	EnvJWTSecret = "HAANI_JWT_SECRET"
	EnvJWTIssuer = "HAANI_JWT_ISSUER"

	EnvGCPProjectID            = "HAANI_GCP_PROJECT_ID"
	EnvPubSubNotificationTopic = "HAANI_PUBSUB_NOTIFICATION_TOPIC"

	EnvRefundWindow        = "HAANI_REFUND_WINDOW"
	EnvSafetyWindow        = "HAANI_SAFETY_WINDOW"
	EnvPlatformFeePercent  = "HAANI_PLATFORM_FEE_PERCENT"
	EnvPremiumFeePolicy    = "HAANI_PREMIUM_FEE_POLICY"
	EnvWorkerConcurrency   = "HAANI_WORKER_CONCURRENCY"
	EnvFinalizerBatchLimit = "HAANI_FINALIZER_BATCH_LIMIT"
	EnvDiscountSchedule    = "HAANI_DISCOUNT_SCHEDULE"
	EnvSafetySchedule      = "HAANI_SAFETY_SCHEDULE"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
